package tasks

import (
	"fmt"

	"photosync/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveAlbum Phase = iota
	ScanSource
	ApplyFiltersPhase
	ProcessBatches
	Report
	Notify
)

func (p Phase) String() string {
	switch p {
	case ResolveAlbum:
		return "resolve_album"
	case ScanSource:
		return "scan_source"
	case ApplyFiltersPhase:
		return "apply_filters"
	case ProcessBatches:
		return "process_batches"
	case Report:
		return "report"
	case Notify:
		return "notify"
	default:
		return ""
	}
}

func resolvingAlbumUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveAlbum,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolving album %q...", name),
	}
}

func albumResolvedUpdate(albumID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveAlbum,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Using album %s", albumID),
		Data:    albumID,
	}
}

func scanningUpdate(folderID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Scanning folder %s recursively...", folderID),
	}
}

func scannedUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d files", count),
	}
}

func filteredUpdate(before, after int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyFiltersPhase,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%d of %d files match the configured filters", after, before),
	}
}

func batchUpdate(batch, totalBatches, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProcessBatches,
		Step:    batch,
		Total:   totalBatches,
		Message: fmt.Sprintf("[batch %d/%d] Processing %d files...", batch, totalBatches, size),
	}
}

func fileResultUpdate(step, total int, result models.SyncResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProcessBatches,
		Step:    step,
		Total:   total,
		Message: result.String(),
		Data:    result,
	}
}

func summaryUpdate(summary *RunSummary) ProgressUpdate {
	return ProgressUpdate{
		Phase: Report,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("Sync complete: %d uploaded, %d skipped, %d errors",
			summary.Succeeded, summary.Skipped, summary.Errored),
		Data: summary,
	}
}

func notifyUpdate(albumURL string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Notify,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Album: %s", albumURL),
		Data:    albumURL,
	}
}
