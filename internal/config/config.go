package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
)

// Resume modes.
const (
	ResumeAuto   = "auto"
	ResumePrompt = "prompt"
	ResumeOff    = "off"
)

// Engine backends.
const (
	BackendMPV  = "mpv"
	BackendBeep = "beep"
)

// Presets reproduce the two historical variants of the player.
const (
	PresetMinimal = "minimal"
	PresetRich    = "rich"
)

var (
	richExtensions    = []string{"mp3", "mp4", "avi", "mkv", "wav", "flac", "m4a"}
	minimalExtensions = []string{"mp4"}
)

const (
	defaultSeekStep      = 2000 * time.Millisecond
	defaultVolume        = 50
	defaultPositionsFile = "last_positions.json"
)

type Config struct {
	Preset        string   `koanf:"preset"`     // "minimal" or "rich"
	Extensions    []string `koanf:"extensions"` // accepted media extensions, without dot
	SeekStepMs    int      `koanf:"seek_step_ms"`
	PositionsFile string   `koanf:"positions_file"`
	DefaultVolume *int     `koanf:"default_volume"` // 0-100, used until a preference is saved

	Resume ResumeConfig  `koanf:"resume"`
	Engine EngineConfig  `koanf:"engine"`
	Log    LogConfig     `koanf:"log"`
	MPRIS  FeatureConfig `koanf:"mpris"`
	Notify FeatureConfig `koanf:"notify"`
}

// ResumeConfig selects what happens when a file with a saved offset is opened.
type ResumeConfig struct {
	Mode string `koanf:"mode"` // "auto", "prompt" or "off"
}

// EngineConfig selects the playback backend.
type EngineConfig struct {
	Backend string `koanf:"backend"`  // "mpv" (video and audio) or "beep" (audio only)
	MPVPath string `koanf:"mpv_path"` // mpv binary, looked up in PATH by default
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`  // logrus level name (default: info)
	Format string `koanf:"format"` // "text" or "json"
	File   string `koanf:"file"`   // empty means the XDG state dir
}

// FeatureConfig toggles an optional integration.
type FeatureConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

// Load reads ~/.config/reprise/config.toml, then ./config.toml, then any
// extra paths. Later files override earlier ones; missing files are skipped.
func Load(extra ...string) (*Config, error) {
	return loadFrom(append(getConfigPaths(), extra...))
}

func loadFrom(paths []string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.PositionsFile != "" {
		cfg.PositionsFile = expandPath(cfg.PositionsFile)
	}
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}
	if cfg.Engine.MPVPath != "" {
		cfg.Engine.MPVPath = expandPath(cfg.Engine.MPVPath)
	}

	return cfg, nil
}

// Preset returns the configuration of a historical variant.
// "minimal" plays mp4 only, seeks by one second and asks before resuming;
// "rich" accepts the wider extension set, seeks by two seconds and resumes
// silently.
func Preset(name string) (*Config, error) {
	switch name {
	case PresetMinimal:
		return &Config{
			Preset:     PresetMinimal,
			Extensions: minimalExtensions,
			SeekStepMs: 1000,
			Resume:     ResumeConfig{Mode: ResumePrompt},
		}, nil
	case PresetRich:
		return &Config{
			Preset:     PresetRich,
			Extensions: richExtensions,
			SeekStepMs: 2000,
			Resume:     ResumeConfig{Mode: ResumeAuto},
		}, nil
	default:
		return nil, fmt.Errorf("unknown preset %q", name)
	}
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/reprise/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "reprise", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func (c *Config) preset() *Config {
	if c.Preset == "" {
		return nil
	}
	p, err := Preset(c.Preset)
	if err != nil {
		return nil
	}
	return p
}

// GetExtensions returns the accepted extensions, lowercased and without dot.
func (c *Config) GetExtensions() []string {
	exts := c.Extensions
	if len(exts) == 0 {
		if p := c.preset(); p != nil {
			exts = p.Extensions
		} else {
			exts = richExtensions
		}
	}
	normalized := lo.Map(exts, func(e string, _ int) string {
		return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
	})
	return lo.Uniq(lo.Compact(normalized))
}

// GetSeekStep returns the relative seek step.
func (c *Config) GetSeekStep() time.Duration {
	if c.SeekStepMs > 0 {
		return time.Duration(c.SeekStepMs) * time.Millisecond
	}
	if p := c.preset(); p != nil {
		return time.Duration(p.SeekStepMs) * time.Millisecond
	}
	return defaultSeekStep
}

// GetResumeMode returns the resume mode, defaulting to auto.
func (c *Config) GetResumeMode() string {
	mode := strings.ToLower(strings.TrimSpace(c.Resume.Mode))
	switch mode {
	case ResumeAuto, ResumePrompt, ResumeOff:
		return mode
	}
	if p := c.preset(); p != nil {
		return p.Resume.Mode
	}
	return ResumeAuto
}

// GetPositionsFile returns the position store location.
func (c *Config) GetPositionsFile() string {
	if c.PositionsFile == "" {
		return defaultPositionsFile
	}
	return c.PositionsFile
}

// GetDefaultVolume returns the initial volume percent.
func (c *Config) GetDefaultVolume() int {
	if c.DefaultVolume == nil {
		return defaultVolume
	}
	return lo.Clamp(*c.DefaultVolume, 0, 100)
}

// GetEngineConfig returns the engine configuration with defaults applied.
func (c *Config) GetEngineConfig() EngineConfig {
	cfg := c.Engine
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.Backend != BackendBeep {
		cfg.Backend = BackendMPV
	}
	if cfg.MPVPath == "" {
		cfg.MPVPath = "mpv"
	}
	return cfg
}

// GetLogConfig returns the logging configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format != "json" {
		cfg.Format = "text"
	}
	return cfg
}

// MPRISEnabled reports whether the MPRIS D-Bus surface should be exported.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS.Enabled == nil || *c.MPRIS.Enabled
}

// NotifyEnabled reports whether desktop notifications are sent.
func (c *Config) NotifyEnabled() bool {
	return c.Notify.Enabled == nil || *c.Notify.Enabled
}
