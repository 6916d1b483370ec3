package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"photosync/internal/models"
	"photosync/internal/services"
	"photosync/internal/shared"
)

// RunParams configures one sync run.
//
// Exactly one of AlbumID and AlbumName should be set; AlbumName also accepts
// a full album URL. An AlbumName with no existing match creates the album.
type RunParams struct {
	FolderID      string
	AlbumID       string
	AlbumName     string
	Filters       FilterOptions
	SkipErrors    bool
	LaunchBrowser bool
}

// RunSummary contains all data from a completed sync run.
type RunSummary struct {
	AlbumID    string              // Resolved target album
	AlbumURL   string              // Web URL of the target album
	Results    []models.SyncResult // Per-file outcomes in processing order
	Succeeded  int
	Skipped    int
	Errored    int
	StartedAt  time.Time
	FinishedAt time.Time
}

// SyncEngine orchestrates one-directional file sync runs from a source
// folder tree to a target album.
type SyncEngine struct {
	source  services.SourceService
	target  services.TargetService
	backoff shared.Backoff
	logger  *log.Logger
	opener  func(string) error
}

// NewSyncEngine creates a SyncEngine with the default retry policy.
func NewSyncEngine(source services.SourceService, target services.TargetService, logger *log.Logger) *SyncEngine {
	return &SyncEngine{
		source:  source,
		target:  target,
		backoff: shared.DefaultBackoff,
		logger:  logger,
		opener:  shared.OpenBrowser,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *SyncEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run performs a full folder-to-album sync: resolve the album, list the
// folder tree, filter, then process the survivors in batches. Per-file
// results stream through progress as they are produced.
//
// An empty filtered list short-circuits with a zero summary and no target
// mutations. Errors during resolution, listing, or processing abort the run;
// the returned summary still carries whatever results were produced.
func (e *SyncEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, params RunParams) (*RunSummary, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: source service not initialized", shared.ErrServiceUnavailable)
	}
	if e.target == nil {
		return nil, fmt.Errorf("%w: target service not initialized", shared.ErrServiceUnavailable)
	}

	summary := &RunSummary{StartedAt: time.Now()}

	albumID, err := e.resolveAlbum(ctx, params, progress)
	if err != nil {
		return summary, err
	}
	summary.AlbumID = albumID
	summary.AlbumURL = e.target.AlbumURL(albumID)
	e.sendProgress(progress, albumResolvedUpdate(albumID))

	e.sendProgress(progress, scanningUpdate(params.FolderID))
	records, err := e.source.ListRecursive(ctx, params.FolderID)
	if err != nil {
		return summary, err
	}
	e.sendProgress(progress, scannedUpdate(len(records)))

	filtered := ApplyFilters(e.logger, records, params.Filters)
	e.sendProgress(progress, filteredUpdate(len(records), len(filtered)))

	if len(filtered) > 0 {
		tracker := newDedupTracker(e.target, albumID)
		results, err := e.processRecords(ctx, albumID, filtered, tracker, params.SkipErrors, progress)
		summary.Results = results
		if err != nil {
			e.tally(summary)
			summary.FinishedAt = time.Now()
			return summary, err
		}
	}

	e.tally(summary)
	summary.FinishedAt = time.Now()
	e.sendProgress(progress, summaryUpdate(summary))

	e.notify(summary, params.LaunchBrowser, progress)

	return summary, nil
}

// resolveAlbum turns run params into an album ID: explicit ID as-is, album
// URL by extraction, otherwise exact title match across all pages with
// create-on-miss.
func (e *SyncEngine) resolveAlbum(ctx context.Context, params RunParams, progress chan<- ProgressUpdate) (string, error) {
	if params.AlbumID != "" {
		return params.AlbumID, nil
	}
	if params.AlbumName == "" {
		return "", fmt.Errorf("%w: album name or ID required", shared.ErrAlbumResolution)
	}

	e.sendProgress(progress, resolvingAlbumUpdate(params.AlbumName))

	if id := shared.ExtractAlbumID(params.AlbumName); id != "" {
		return id, nil
	}

	id, err := e.target.FindAlbumByTitle(ctx, params.AlbumName)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAlbumResolution, err)
	}
	if id != "" {
		return id, nil
	}

	e.logger.Info("album not found, creating", "title", params.AlbumName)
	id, err = e.target.CreateAlbum(ctx, params.AlbumName)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAlbumResolution, err)
	}
	return id, nil
}

func (e *SyncEngine) tally(summary *RunSummary) {
	summary.Succeeded, summary.Skipped, summary.Errored = 0, 0, 0
	for _, r := range summary.Results {
		switch r.Outcome {
		case models.OutcomeSuccess:
			summary.Succeeded++
		case models.OutcomeSkipped:
			summary.Skipped++
		case models.OutcomeError:
			summary.Errored++
		}
	}
}

// notify surfaces the album URL after a successful run. Failures are logged
// and never affect the sync outcome.
func (e *SyncEngine) notify(summary *RunSummary, launchBrowser bool, progress chan<- ProgressUpdate) {
	if !launchBrowser || summary.Succeeded == 0 {
		return
	}

	e.sendProgress(progress, notifyUpdate(summary.AlbumURL))
	if err := e.opener(summary.AlbumURL); err != nil {
		e.logger.Warn("failed to open browser", "url", summary.AlbumURL, "error", err)
	}
}
