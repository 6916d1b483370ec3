package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"photosync/internal/repositories"
)

// History lists past sync runs, or the per-file results of one run when
// --run is given.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	history := repositories.NewHistoryRepository(db)

	if runID := cmd.String("run"); runID != "" {
		return r.historyResults(history, runID)
	}

	runs, err := history.ListRuns(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		return r.writePlain("No sync runs recorded yet.\n")
	}

	r.writePlainHeader("Sync History")
	for _, run := range runs {
		r.writePlain("%s  %s\n", run.StartedAt.Local().Format(time.DateTime), run.ID)
		r.writePlain("  folder %s -> album %s\n", run.FolderID, run.AlbumID)
		r.writePlain("  %d uploaded, %d skipped, %d errors\n\n", run.Succeeded, run.Skipped, run.Errored)
	}
	return nil
}

func (r *Runner) historyResults(history *repositories.HistoryRepository, runID string) error {
	results, err := history.GetResults(runID)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		return r.writePlain("No results recorded for run %s.\n", runID)
	}

	r.writePlainHeader("Run " + runID)
	for _, result := range results {
		r.writePlain("%s\n", result.String())
	}
	return nil
}
