package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llehouerou/reprise/internal/config"
	"github.com/llehouerou/reprise/internal/playback"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "reprise [file]",
	Short: "A terminal media player that remembers where you stopped",
	Long: "reprise plays audio and video files and saves the playback position of\n" +
		"every file it opens, so the next time the file is opened playback\n" +
		"resumes where it was left.",
	Version:       version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		return run(cfg, path)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Read an extra config file after the default ones")
	rootCmd.PersistentFlags().StringP("preset", "p", "", "Start from a preset (minimal or rich)")
	rootCmd.Flags().StringP("resume", "r", "", "Override the resume mode (auto, prompt or off)")
	rootCmd.Flags().StringP("engine", "e", "", "Override the playback engine (mpv or beep)")

	_ = rootCmd.RegisterFlagCompletionFunc("resume", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{config.ResumeAuto, config.ResumePrompt, config.ResumeOff}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("preset", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{config.PresetMinimal, config.PresetRich}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("engine", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{config.BackendMPV, config.BackendBeep}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(positionsCmd)
}

// loadConfig reads the config files and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var extra []string
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		extra = append(extra, p)
	}

	cfg, err := config.Load(extra...)
	if err != nil {
		return nil, err
	}

	if name, _ := cmd.Flags().GetString("preset"); name != "" {
		if _, err := config.Preset(name); err != nil {
			return nil, err
		}
		cfg.Preset = name
	}
	if f := cmd.Flags().Lookup("resume"); f != nil && f.Changed {
		if _, err := playback.ParseResumeMode(f.Value.String()); err != nil {
			return nil, err
		}
		cfg.Resume.Mode = f.Value.String()
	}
	if f := cmd.Flags().Lookup("engine"); f != nil && f.Changed {
		backend := strings.ToLower(f.Value.String())
		if backend != config.BackendMPV && backend != config.BackendBeep {
			return nil, fmt.Errorf("unknown engine %q", f.Value.String())
		}
		cfg.Engine.Backend = backend
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
