package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"photosync/internal/models"
	"photosync/internal/services"
	"photosync/internal/shared"
)

// mockSource implements [services.SourceService] for testing.
type mockSource struct {
	files         []models.FileRecord
	listErr       error
	downloadCalls int
	downloadErr   error
}

func (m *mockSource) ListChildren(ctx context.Context, folderID, pageToken string) ([]models.FileRecord, string, error) {
	return m.files, "", m.listErr
}

func (m *mockSource) ListRecursive(ctx context.Context, folderID string) ([]models.FileRecord, error) {
	return m.files, m.listErr
}

func (m *mockSource) Download(ctx context.Context, fileID string) ([]byte, error) {
	m.downloadCalls++
	if m.downloadErr != nil {
		return nil, m.downloadErr
	}
	return []byte("content-" + fileID), nil
}

func (m *mockSource) Name() string { return "MockSource" }

// mockTarget implements [services.TargetService] for testing. Committed item
// IDs are derived from the staged filename so tests can predict them.
type mockTarget struct {
	albums        []models.Album
	created       []string
	existingItems []models.MediaItem

	listItemCalls int
	stageCalls    int
	stageErr      error
	commitCalls   int
	commitErrOn   map[int]error
	addCalls      [][]string
	addErr        error
}

func (m *mockTarget) FindAlbumByTitle(ctx context.Context, title string) (string, error) {
	for _, a := range m.albums {
		if a.Title == title {
			return a.ID, nil
		}
	}
	return "", nil
}

func (m *mockTarget) CreateAlbum(ctx context.Context, title string) (string, error) {
	m.created = append(m.created, title)
	return "created-" + title, nil
}

func (m *mockTarget) ListAlbums(ctx context.Context, pageToken string) ([]models.Album, string, error) {
	return m.albums, "", nil
}

func (m *mockTarget) ListAlbumItems(ctx context.Context, albumID, pageToken string) ([]models.MediaItem, string, error) {
	m.listItemCalls++
	return m.existingItems, "", nil
}

func (m *mockTarget) StageBytes(ctx context.Context, content []byte, filename string) (string, error) {
	m.stageCalls++
	if m.stageErr != nil {
		return "", m.stageErr
	}
	return "token-" + filename, nil
}

func (m *mockTarget) CommitItems(ctx context.Context, uploads []services.StagedUpload) ([]models.MediaItem, error) {
	m.commitCalls++
	if err := m.commitErrOn[m.commitCalls]; err != nil {
		return nil, err
	}

	items := make([]models.MediaItem, len(uploads))
	for i, up := range uploads {
		items[i] = models.MediaItem{ID: "item-" + up.Filename, Filename: up.Filename}
	}
	return items, nil
}

func (m *mockTarget) AddToAlbum(ctx context.Context, albumID string, itemIDs []string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.addCalls = append(m.addCalls, itemIDs)
	return nil
}

func (m *mockTarget) AlbumURL(albumID string) string {
	return "https://photos.google.com/lr/album/" + albumID
}

func (m *mockTarget) Name() string { return "MockTarget" }

func newTestEngine(source *mockSource, target *mockTarget) *SyncEngine {
	engine := NewSyncEngine(source, target, shared.NewLogger(io.Discard))
	engine.backoff = shared.Backoff{MaxAttempts: 1, BaseDelay: time.Millisecond}
	return engine
}

func mediaFiles(n int) []models.FileRecord {
	files := make([]models.FileRecord, n)
	for i := range files {
		files[i] = models.FileRecord{
			ID:       fmt.Sprintf("id%d", i),
			Name:     fmt.Sprintf("photo%d.jpg", i),
			MimeType: "image/jpeg",
			Size:     2048,
			HasSize:  true,
			MD5:      fmt.Sprintf("hash%d", i),
		}
	}
	return files
}

func TestSyncEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("requires both services", func(t *testing.T) {
		engine := NewSyncEngine(nil, &mockTarget{}, shared.NewLogger(io.Discard))
		if _, err := engine.Run(ctx, nil, RunParams{}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}

		engine = NewSyncEngine(&mockSource{}, nil, shared.NewLogger(io.Discard))
		if _, err := engine.Run(ctx, nil, RunParams{}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("album resolution", func(t *testing.T) {
		t.Run("explicit ID passes through", func(t *testing.T) {
			target := &mockTarget{}
			engine := newTestEngine(&mockSource{}, target)

			summary, err := engine.Run(ctx, nil, RunParams{FolderID: "f", AlbumID: "explicit"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if summary.AlbumID != "explicit" {
				t.Errorf("expected album 'explicit', got %s", summary.AlbumID)
			}
			if len(target.created) != 0 {
				t.Error("no album should be created for explicit ID")
			}
		})

		t.Run("album URL is extracted", func(t *testing.T) {
			engine := newTestEngine(&mockSource{}, &mockTarget{})

			summary, err := engine.Run(ctx, nil, RunParams{
				FolderID:  "f",
				AlbumName: "https://photos.google.com/lr/album/fromurl",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if summary.AlbumID != "fromurl" {
				t.Errorf("expected album 'fromurl', got %s", summary.AlbumID)
			}
		})

		t.Run("title matches exactly", func(t *testing.T) {
			target := &mockTarget{albums: []models.Album{{ID: "a1", Title: "Vacation"}}}
			engine := newTestEngine(&mockSource{}, target)

			summary, err := engine.Run(ctx, nil, RunParams{FolderID: "f", AlbumName: "Vacation"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if summary.AlbumID != "a1" {
				t.Errorf("expected existing album a1, got %s", summary.AlbumID)
			}
		})

		t.Run("creates album on miss", func(t *testing.T) {
			target := &mockTarget{}
			engine := newTestEngine(&mockSource{}, target)

			summary, err := engine.Run(ctx, nil, RunParams{FolderID: "f", AlbumName: "New Album"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if summary.AlbumID != "created-New Album" {
				t.Errorf("expected created album, got %s", summary.AlbumID)
			}
			if len(target.created) != 1 {
				t.Errorf("expected 1 create call, got %d", len(target.created))
			}
		})

		t.Run("missing name and ID fails", func(t *testing.T) {
			engine := newTestEngine(&mockSource{}, &mockTarget{})

			if _, err := engine.Run(ctx, nil, RunParams{FolderID: "f"}); !errors.Is(err, shared.ErrAlbumResolution) {
				t.Errorf("expected ErrAlbumResolution, got %v", err)
			}
		})
	})

	t.Run("empty filtered list short-circuits", func(t *testing.T) {
		source := &mockSource{files: []models.FileRecord{
			{ID: "doc1", Name: "notes.pdf", MimeType: "application/pdf"},
		}}
		target := &mockTarget{}
		engine := newTestEngine(source, target)

		summary, err := engine.Run(ctx, nil, RunParams{FolderID: "f", AlbumID: "a1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if summary.Succeeded != 0 || summary.Skipped != 0 || summary.Errored != 0 {
			t.Errorf("expected zero counts, got %+v", summary)
		}
		if source.downloadCalls != 0 || target.stageCalls != 0 || target.commitCalls != 0 {
			t.Error("expected no download/stage/commit calls for empty list")
		}
	})

	t.Run("successful run", func(t *testing.T) {
		source := &mockSource{files: mediaFiles(3)}
		target := &mockTarget{}
		engine := newTestEngine(source, target)

		summary, err := engine.Run(ctx, nil, RunParams{FolderID: "f", AlbumID: "a1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if summary.Succeeded != 3 || summary.Skipped != 0 || summary.Errored != 0 {
			t.Errorf("expected 3/0/0, got %d/%d/%d", summary.Succeeded, summary.Skipped, summary.Errored)
		}
		if len(summary.Results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(summary.Results))
		}
		for _, r := range summary.Results {
			if r.Outcome != models.OutcomeSuccess {
				t.Errorf("expected success for %s, got %s", r.Filename, r.Outcome)
			}
			if !strings.Contains(r.Message, "uploaded successfully (2.0 KB)") {
				t.Errorf("unexpected message: %s", r.Message)
			}
		}
		if len(target.addCalls) != 1 || len(target.addCalls[0]) != 3 {
			t.Errorf("expected one add call with 3 items, got %v", target.addCalls)
		}
		if summary.AlbumURL != "https://photos.google.com/lr/album/a1" {
			t.Errorf("unexpected album URL: %s", summary.AlbumURL)
		}
	})

	t.Run("same-run content hash dedup", func(t *testing.T) {
		files := mediaFiles(2)
		files[1].MD5 = files[0].MD5
		source := &mockSource{files: files}
		target := &mockTarget{}
		engine := newTestEngine(source, target)

		summary, err := engine.Run(ctx, nil, RunParams{FolderID: "f", AlbumID: "a1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if summary.Succeeded != 1 || summary.Skipped != 1 {
			t.Errorf("expected 1 success and 1 skip, got %d/%d", summary.Succeeded, summary.Skipped)
		}
		var skip *models.SyncResult
		for i := range summary.Results {
			if summary.Results[i].Outcome == models.OutcomeSkipped {
				skip = &summary.Results[i]
			}
		}
		if skip == nil || skip.Message != "duplicate content (already processed this run)" {
			t.Errorf("unexpected skip result: %+v", skip)
		}
		if source.downloadCalls != 1 {
			t.Errorf("duplicate must not be downloaded, got %d downloads", source.downloadCalls)
		}
	})

	t.Run("target-detected duplicate", func(t *testing.T) {
		source := &mockSource{files: mediaFiles(1)}
		// the committed item ID collides with an existing album member
		target := &mockTarget{existingItems: []models.MediaItem{
			{ID: "item-photo0.jpg", Filename: "other.jpg"},
		}}
		engine := newTestEngine(source, target)

		summary, err := engine.Run(ctx, nil, RunParams{FolderID: "f", AlbumID: "a1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if summary.Skipped != 1 || summary.Succeeded != 0 {
			t.Errorf("expected 0/1/0, got %d/%d/%d", summary.Succeeded, summary.Skipped, summary.Errored)
		}
		if summary.Results[0].Message != "duplicate content (target-detected)" {
			t.Errorf("unexpected message: %s", summary.Results[0].Message)
		}
		if len(target.addCalls) != 0 {
			t.Error("duplicate item must not be added to the album")
		}
	})

	t.Run("batch boundaries with isolated commit failure", func(t *testing.T) {
		source := &mockSource{files: mediaFiles(120)}
		target := &mockTarget{commitErrOn: map[int]error{2: errors.New("commit blew up")}}
		engine := newTestEngine(source, target)

		summary, err := engine.Run(ctx, nil, RunParams{FolderID: "f", AlbumID: "a1", SkipErrors: true})
		if err != nil {
			t.Fatalf("expected no error in skip mode, got %v", err)
		}

		if target.commitCalls != 3 {
			t.Errorf("expected 3 batches, got %d commit calls", target.commitCalls)
		}
		if summary.Succeeded != 70 || summary.Errored != 50 {
			t.Errorf("expected 70 successes and 50 errors, got %d/%d", summary.Succeeded, summary.Errored)
		}
		if len(target.addCalls) != 2 {
			t.Errorf("expected add calls for batches 1 and 3, got %d", len(target.addCalls))
		}
		if len(target.addCalls[0]) != 50 || len(target.addCalls[1]) != 20 {
			t.Errorf("unexpected add batch sizes: %d, %d", len(target.addCalls[0]), len(target.addCalls[1]))
		}

		// errors confined to batch 2's files (indexes 50-99)
		for i, r := range summary.Results[:50] {
			if r.Outcome != models.OutcomeSuccess {
				t.Fatalf("batch 1 result %d: expected success, got %s", i, r.Outcome)
			}
		}
		for i, r := range summary.Results[50:100] {
			if r.Outcome != models.OutcomeError {
				t.Fatalf("batch 2 result %d: expected error, got %s", i, r.Outcome)
			}
		}
		for i, r := range summary.Results[100:] {
			if r.Outcome != models.OutcomeSuccess {
				t.Fatalf("batch 3 result %d: expected success, got %s", i, r.Outcome)
			}
		}
	})

	t.Run("abort mode stops on first failure", func(t *testing.T) {
		source := &mockSource{files: mediaFiles(120)}
		target := &mockTarget{commitErrOn: map[int]error{1: errors.New("commit blew up")}}
		engine := newTestEngine(source, target)

		_, err := engine.Run(ctx, nil, RunParams{FolderID: "f", AlbumID: "a1", SkipErrors: false})
		if err == nil {
			t.Fatal("expected run to abort")
		}
		if target.commitCalls != 1 {
			t.Errorf("expected no further batches after abort, got %d commits", target.commitCalls)
		}
	})

	t.Run("download failure in skip mode", func(t *testing.T) {
		source := &mockSource{files: mediaFiles(2), downloadErr: errors.New("network down")}
		target := &mockTarget{}
		engine := newTestEngine(source, target)

		summary, err := engine.Run(ctx, nil, RunParams{FolderID: "f", AlbumID: "a1", SkipErrors: true})
		if err != nil {
			t.Fatalf("expected no error in skip mode, got %v", err)
		}
		if summary.Errored != 2 {
			t.Errorf("expected 2 errors, got %d", summary.Errored)
		}
		if target.commitCalls != 0 {
			t.Error("no commit expected when nothing staged")
		}
	})

	t.Run("filename collision renames on upload", func(t *testing.T) {
		source := &mockSource{files: mediaFiles(1)}
		target := &mockTarget{existingItems: []models.MediaItem{
			{ID: "old", Filename: "photo0.jpg"},
		}}
		engine := newTestEngine(source, target)

		summary, err := engine.Run(ctx, nil, RunParams{FolderID: "f", AlbumID: "a1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if summary.Succeeded != 1 {
			t.Fatalf("expected success, got %+v", summary.Results)
		}
		if !strings.Contains(summary.Results[0].Message, "renamed to photo0_1.jpg") {
			t.Errorf("expected rename note, got %s", summary.Results[0].Message)
		}
	})

	t.Run("progress updates stream per file", func(t *testing.T) {
		source := &mockSource{files: mediaFiles(2)}
		engine := newTestEngine(source, &mockTarget{})

		progress := make(chan ProgressUpdate, 64)
		_, err := engine.Run(ctx, progress, RunParams{FolderID: "f", AlbumID: "a1"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progress)

		fileResults := 0
		sawReport := false
		for update := range progress {
			if update.Phase == ProcessBatches {
				if _, ok := update.Data.(models.SyncResult); ok {
					fileResults++
				}
			}
			if update.Phase == Report {
				sawReport = true
			}
		}
		if fileResults != 2 {
			t.Errorf("expected 2 per-file updates, got %d", fileResults)
		}
		if !sawReport {
			t.Error("expected a report update")
		}
	})

	t.Run("notify", func(t *testing.T) {
		t.Run("opens browser after successes", func(t *testing.T) {
			source := &mockSource{files: mediaFiles(1)}
			engine := newTestEngine(source, &mockTarget{})

			var opened string
			engine.opener = func(url string) error {
				opened = url
				return nil
			}

			_, err := engine.Run(ctx, nil, RunParams{FolderID: "f", AlbumID: "a1", LaunchBrowser: true})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if opened != "https://photos.google.com/lr/album/a1" {
				t.Errorf("unexpected opened URL: %s", opened)
			}
		})

		t.Run("skipped with zero successes", func(t *testing.T) {
			engine := newTestEngine(&mockSource{}, &mockTarget{})

			engine.opener = func(url string) error {
				t.Error("browser must not open with zero successes")
				return nil
			}

			if _, err := engine.Run(ctx, nil, RunParams{FolderID: "f", AlbumID: "a1", LaunchBrowser: true}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("opener failure never fails the run", func(t *testing.T) {
			source := &mockSource{files: mediaFiles(1)}
			engine := newTestEngine(source, &mockTarget{})

			engine.opener = func(url string) error {
				return errors.New("no display")
			}

			if _, err := engine.Run(ctx, nil, RunParams{FolderID: "f", AlbumID: "a1", LaunchBrowser: true}); err != nil {
				t.Fatalf("notify failure must not fail the run, got %v", err)
			}
		})
	})

	t.Run("listing failure aborts", func(t *testing.T) {
		source := &mockSource{listErr: fmt.Errorf("%w: boom", shared.ErrListing)}
		engine := newTestEngine(source, &mockTarget{})

		if _, err := engine.Run(ctx, nil, RunParams{FolderID: "f", AlbumID: "a1"}); !errors.Is(err, shared.ErrListing) {
			t.Errorf("expected ErrListing, got %v", err)
		}
	})
}
