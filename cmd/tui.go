package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"photosync/internal/services"
	"photosync/internal/shared"
	"photosync/internal/tasks"
	"photosync/internal/ui"
)

// TUI launches the interactive album picker and sync view.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	folderID := shared.ExtractFolderID(cmd.StringArg("folder"))
	if folderID == "" {
		return fmt.Errorf("%w: a Drive folder ID or URL is required", shared.ErrMissingArgument)
	}

	client, err := r.authenticatedClient(ctx)
	if err != nil {
		return err
	}

	source := services.NewDriveService(client)
	target := services.NewPhotosService(client, r.config.Sync.RateLimit)

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/photosync-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine := tasks.NewSyncEngine(source, target, fileLogger)

	params := tasks.RunParams{
		FolderID: folderID,
		Filters: tasks.FilterOptions{
			FileTypes: r.config.Sync.FileTypes,
			Pattern:   r.config.Sync.RegexFilter,
			MinSizeKB: r.config.Sync.MinSizeKB,
			MaxSizeMB: r.config.Sync.MaxSizeMB,
		},
		SkipErrors: r.config.Sync.SkipErrors,
	}

	model := ui.NewModel(ctx, engine, target, params)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
