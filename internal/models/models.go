package models

import (
	"fmt"
	"time"
)

// FileRecord is a snapshot of a source file's metadata taken at discovery
// time. It is produced by the Drive lister and read-only downstream.
type FileRecord struct {
	ID       string    // Source-assigned, stable identifier
	Name     string    // Filename as reported by the source
	MimeType string    // MIME type, e.g. "image/jpeg"
	Size     int64     // Size in bytes; meaningful only when HasSize is true
	HasSize  bool      // False when the source reported no size
	MD5      string    // Content hash, empty when unavailable
	Created  time.Time // Creation timestamp
	Modified time.Time // Last-modified timestamp
}

// IsMedia reports whether the record describes an image or video.
func (f FileRecord) IsMedia() bool {
	const img, vid = "image/", "video/"
	return len(f.MimeType) >= len(img) &&
		(f.MimeType[:len(img)] == img || f.MimeType[:len(vid)] == vid)
}

// Album represents a Photos album.
type Album struct {
	ID        string
	Title     string
	ItemCount int
}

// MediaItem represents a committed media item in Photos.
type MediaItem struct {
	ID       string
	Filename string
}

// Outcome is the terminal state of a single file's sync attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeError   Outcome = "error"
)

// SyncResult is the outcome of syncing a single file. Exactly one is produced
// per FileRecord that enters processing; immutable once created.
type SyncResult struct {
	Filename string
	Outcome  Outcome
	Message  string // Human-readable detail for success/skipped
	Err      string // Error text for error outcomes
}

func (r SyncResult) String() string {
	if r.Err != "" {
		return fmt.Sprintf("%s: %s - %s", r.Filename, r.Outcome, r.Err)
	}
	if r.Message != "" {
		return fmt.Sprintf("%s: %s - %s", r.Filename, r.Outcome, r.Message)
	}
	return fmt.Sprintf("%s: %s", r.Filename, r.Outcome)
}

// SyncRun is the run-level summary persisted for the history command.
// It is reporting data only and never feeds back into dedup decisions.
type SyncRun struct {
	ID         string
	FolderID   string
	AlbumID    string
	Succeeded  int
	Skipped    int
	Errored    int
	StartedAt  time.Time
	FinishedAt time.Time
}
