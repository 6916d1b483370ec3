package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"photosync/internal/formatter"
	"photosync/internal/models"
	"photosync/internal/repositories"
	"photosync/internal/services"
	"photosync/internal/shared"
	"photosync/internal/tasks"
)

// Sync runs a full Drive folder to Photos album sync.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	folderID := shared.ExtractFolderID(cmd.StringArg("folder"))
	if folderID == "" {
		return fmt.Errorf("%w: a Drive folder ID or URL is required", shared.ErrMissingArgument)
	}

	albumName := cmd.String("album-name")
	albumID := cmd.String("album-id")
	if albumName != "" && albumID != "" {
		return fmt.Errorf("%w: --album-name and --album-id are mutually exclusive", shared.ErrInvalidFlag)
	}
	if albumName == "" && albumID == "" {
		return fmt.Errorf("%w: one of --album-name or --album-id is required", shared.ErrMissingArgument)
	}

	if cmd.Bool("reset-auth") {
		if err := r.AuthReset(ctx, cmd); err != nil {
			return err
		}
		if err := r.AuthLogin(ctx, cmd); err != nil {
			return err
		}
	}

	client, err := r.authenticatedClient(ctx)
	if err != nil {
		return err
	}

	source := services.NewDriveService(client)
	target := services.NewPhotosService(client, r.config.Sync.RateLimit)
	engine := tasks.NewSyncEngine(source, target, r.logger)

	params := r.runParams(cmd, folderID, albumID, albumName)

	r.logger.Info("starting sync", "folder", folderID)
	r.writePlain("Syncing Drive folder %s to %s...\n\n", folderID, target.Name())

	progressCh := make(chan tasks.ProgressUpdate, 100)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ResolveAlbum, tasks.ScanSource, tasks.ApplyFiltersPhase:
				r.writePlain("• %s\n", update.Message)
			case tasks.ProcessBatches:
				if _, ok := update.Data.(models.SyncResult); ok {
					r.writePlain("  %s\n", update.Message)
				} else {
					r.writePlain("\n%s\n", update.Message)
				}
			}
		}
	}()

	summary, runErr := engine.Run(ctx, progressCh, params)
	close(progressCh)
	<-progressDone

	if summary != nil {
		r.saveHistory(folderID, summary)

		if path := cmd.String("report"); path != "" {
			r.writeReport(path, folderID, summary)
		}
	}

	if runErr != nil {
		return runErr
	}

	r.writePlain("\n")
	r.writePlainHeader("Sync Complete!")
	r.writePlain("Uploaded: %d\n", summary.Succeeded)
	r.writePlain("Skipped: %d\n", summary.Skipped)
	r.writePlain("Errors: %d\n", summary.Errored)
	r.writePlain("Album: %s\n", summary.AlbumURL)

	return nil
}

// runParams merges config-file sync defaults with per-run flag overrides.
func (r *Runner) runParams(cmd *cli.Command, folderID, albumID, albumName string) tasks.RunParams {
	sync := r.config.Sync

	filters := tasks.FilterOptions{
		FileTypes: sync.FileTypes,
		Pattern:   sync.RegexFilter,
		MinSizeKB: sync.MinSizeKB,
		MaxSizeMB: sync.MaxSizeMB,
	}
	if cmd.IsSet("file-types") {
		filters.FileTypes = cmd.StringSlice("file-types")
	}
	if cmd.IsSet("regex-filter") {
		filters.Pattern = cmd.String("regex-filter")
	}
	if cmd.IsSet("min-size-kb") {
		filters.MinSizeKB = cmd.Int64("min-size-kb")
	}
	if cmd.IsSet("max-size-mb") {
		filters.MaxSizeMB = cmd.Int64("max-size-mb")
	}

	skipErrors := sync.SkipErrors
	if cmd.IsSet("skip-errors") {
		skipErrors = cmd.Bool("skip-errors")
	}

	launchBrowser := sync.LaunchBrowser
	if cmd.Bool("no-browser") {
		launchBrowser = false
	}

	return tasks.RunParams{
		FolderID:      folderID,
		AlbumID:       albumID,
		AlbumName:     albumName,
		Filters:       filters,
		SkipErrors:    skipErrors,
		LaunchBrowser: launchBrowser,
	}
}

// saveHistory persists the run for the history command. Failures are logged
// and never fail the sync.
func (r *Runner) saveHistory(folderID string, summary *tasks.RunSummary) {
	db, err := r.openDatabase()
	if err != nil {
		r.logger.Warn("failed to open database, run not recorded", "error", err)
		return
	}

	history := repositories.NewHistoryRepository(db)
	run := models.SyncRun{
		FolderID:   folderID,
		AlbumID:    summary.AlbumID,
		Succeeded:  summary.Succeeded,
		Skipped:    summary.Skipped,
		Errored:    summary.Errored,
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
	}

	id, err := history.SaveRun(run, summary.Results)
	if err != nil {
		r.logger.Warn("failed to record run", "error", err)
		return
	}
	r.logger.Debug("run recorded", "id", id)
}

// writeReport exports per-file outcomes. Failures are logged and never fail
// the sync.
func (r *Runner) writeReport(path, folderID string, summary *tasks.RunSummary) {
	run := models.SyncRun{
		FolderID:   folderID,
		AlbumID:    summary.AlbumID,
		Succeeded:  summary.Succeeded,
		Skipped:    summary.Skipped,
		Errored:    summary.Errored,
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
	}

	if err := formatter.WriteReportFile(path, run, summary.Results); err != nil {
		r.logger.Warn("failed to write report", "path", path, "error", err)
		return
	}
	r.logger.Info("report written", "path", path)
}
