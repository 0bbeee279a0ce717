// Package logging builds the application logger.
//
// The terminal belongs to the UI, so logs always go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/llehouerou/reprise/internal/config"
)

// DefaultPath returns the log file location under the XDG state directory.
func DefaultPath() string {
	return filepath.Join(xdg.StateHome, "reprise", "reprise.log")
}

// Setup opens the log file on fsys and returns a logger writing to it.
// The returned closer releases the file.
func Setup(fsys afero.Fs, cfg config.LogConfig) (*logrus.Logger, io.Closer, error) {
	path := cfg.File
	if path == "" {
		path = DefaultPath()
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := fsys.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	log := logrus.New()
	log.SetOutput(f)
	log.SetFormatter(Formatter(cfg.Format))
	log.SetLevel(ParseLevel(cfg.Level))

	return log, f, nil
}

// Formatter returns the JSON formatter for "json" and the text one otherwise.
func Formatter(format string) logrus.Formatter {
	if format == "json" {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
}

// ParseLevel parses a logrus level name, falling back to info.
func ParseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

// Discard returns a logger that drops everything, for commands that run
// before or without a log file.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
