package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"routinetracker/internal/routine"
	"routinetracker/pkg/logger"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Print this week's completion table",
	RunE:  runProgress,
}

func runProgress(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.Log.Development)
	defer log.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ds, err := openDatastore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer ds.close()

	tracker, err := newTracker(ctx, cfg, ds, log.WithOptions(zap.IncreaseLevel(zap.WarnLevel)))
	if err != nil {
		return err
	}

	writeWeek(cmd.OutOrStdout(), tracker.WeekProgress())
	return nil
}

func writeWeek(w io.Writer, week routine.WeekProgress) {
	fmt.Fprintf(w, "%-10s %5s %5s %5s\n", "DAY", "DONE", "TOTAL", "PCT")
	for _, d := range week.Days {
		mark := ""
		if d.Perfect {
			mark = " *"
		}
		fmt.Fprintf(w, "%-10s %5d %5d %4d%%%s\n", d.Label, d.Completed, d.Total, d.Percent, mark)
	}
	fmt.Fprintln(w, strings.Repeat("-", 29))
	fmt.Fprintf(w, "%-10s %17d%%\n", "AVERAGE", week.Average)
}
