package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/llehouerou/reprise/internal/errmsg"
	"github.com/llehouerou/reprise/internal/positions"
	"github.com/llehouerou/reprise/internal/timefmt"
)

var positionsCmd = &cobra.Command{
	Use:   "positions [filter]",
	Short: "List saved playback positions",
	Long: "List every file with a saved playback position. With a filter, only\n" +
		"paths containing it (case-insensitive) are shown.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		var filter string
		if len(args) == 1 {
			filter = args[0]
		}
		started, _ := cmd.Flags().GetBool("started")
		listPositions(cmd, afero.NewOsFs(), cfg.GetPositionsFile(), filter, started)
		return nil
	},
}

func init() {
	positionsCmd.Flags().BoolP("started", "s", false, "Hide files whose saved position is the start")
}

// listPositions prints the saved positions. An unreadable or corrupt store is
// reported on stderr and listed as empty, the way the player treats it.
func listPositions(cmd *cobra.Command, fsys afero.Fs, file, filter string, startedOnly bool) {
	store := positions.New(fsys, file)
	if err := store.Load(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", errmsg.Format(errmsg.OpPositionLoad, err))
	}
	printPositions(cmd.OutOrStdout(), store.Entries(), filter, startedOnly)
}

func printPositions(w io.Writer, entries []positions.Entry, filter string, startedOnly bool) {
	filter = strings.ToLower(filter)
	entries = lo.Filter(entries, func(e positions.Entry, _ int) bool {
		if startedOnly && e.Offset == 0 {
			return false
		}
		return filter == "" || strings.Contains(strings.ToLower(e.Path), filter)
	})

	if len(entries) == 0 {
		fmt.Fprintln(w, "No saved positions.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s\n", timefmt.Format(e.Offset), e.Path)
	}
}
