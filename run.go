package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/llehouerou/reprise/internal/config"
	"github.com/llehouerou/reprise/internal/engine"
	"github.com/llehouerou/reprise/internal/errmsg"
	"github.com/llehouerou/reprise/internal/logging"
	"github.com/llehouerou/reprise/internal/media"
	"github.com/llehouerou/reprise/internal/mpris"
	"github.com/llehouerou/reprise/internal/notify"
	"github.com/llehouerou/reprise/internal/playback"
	"github.com/llehouerou/reprise/internal/positions"
	"github.com/llehouerou/reprise/internal/state"
	"github.com/llehouerou/reprise/internal/stderr"
	"github.com/llehouerou/reprise/internal/tui"
)

// run wires the player together, runs the TUI until the user quits and
// tears everything down in reverse order.
func run(cfg *config.Config, path string) error {
	fsys := afero.NewOsFs()

	log, logFile, err := logging.Setup(fsys, cfg.GetLogConfig())
	if err != nil {
		return err
	}
	defer logFile.Close()

	if path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	// C audio libraries write to stderr, which would corrupt the TUI.
	if err := stderr.Start(log); err != nil {
		log.WithError(err).Warn("stderr capture unavailable")
	}
	defer stderr.Stop()

	store := positions.New(fsys, cfg.GetPositionsFile())
	if err := store.Load(); err != nil {
		log.WithError(err).Warn(errmsg.Format(errmsg.OpPositionLoad, err))
	}

	var prefs state.Interface
	if mgr, err := state.Open(); err != nil {
		log.WithError(err).Warn(errmsg.Format(errmsg.OpPreferencesLoad, err))
	} else {
		prefs = mgr
		defer mgr.Close()
	}

	eng, err := engine.New(cfg.GetEngineConfig(), log)
	if err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	defer eng.Close()

	mode, err := playback.ParseResumeMode(cfg.GetResumeMode())
	if err != nil {
		return err
	}

	prompter := tui.NewPrompter()
	ctrl := playback.New(eng, store, playback.Options{
		Log:        log,
		Confirmer:  prompter,
		ResumeMode: mode,
		Extensions: cfg.GetExtensions(),
		SeekStep:   cfg.GetSeekStep(),
		Volume:     cfg.GetDefaultVolume(),
		Prefs:      prefs,
		ReadInfo:   media.ReadInfo,
	})
	// Shutdown is idempotent; this covers exits that bypass the quit key.
	defer func() {
		if err := ctrl.Shutdown(); err != nil {
			log.WithError(err).Warn(errmsg.Format(errmsg.OpShutdown, err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	log.WithFields(logrus.Fields{
		"engine":  cfg.GetEngineConfig().Backend,
		"resume":  mode,
		"version": version,
	}).Info("reprise started")

	model := tui.New(ctrl, tui.Options{Log: log, Prompter: prompter, Path: path})
	p := tea.NewProgram(model, tea.WithAltScreen())

	if cfg.MPRISEnabled() {
		adapter, err := mpris.New(ctrl, mpris.Options{
			Log:  log,
			Quit: func() { p.Send(tui.QuitMsg{}) },
			Fs:   fsys,
		})
		if err != nil {
			log.WithError(err).Warn(errmsg.Format(errmsg.OpMPRISStart, err))
		} else {
			defer adapter.Close()
		}
	}

	if cfg.NotifyEnabled() {
		if n, err := notify.New(); err != nil {
			log.WithError(err).Warn(errmsg.Format(errmsg.OpNotify, err))
		} else {
			go notify.Watch(ctx, n, ctrl.Subscribe(), notify.Options{
				Player: ctrl,
				Fs:     fsys,
				Log:    log.WithField("component", "notify"),
			})
		}
	}

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	if m, ok := final.(tui.Model); ok {
		if err := m.ShutdownErr(); err != nil && !errors.Is(err, playback.ErrClosed) {
			return fmt.Errorf("shut down: %w", err)
		}
	}
	return nil
}
