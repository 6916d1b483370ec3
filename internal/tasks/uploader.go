package tasks

import (
	"context"
	"fmt"

	"photosync/internal/formatter"
	"photosync/internal/models"
	"photosync/internal/services"
)

// batchSize matches the Photos API cap on mediaItems:batchCreate.
const batchSize = 50

// stagedFile is a record whose bytes have been uploaded and are waiting on
// the batch commit.
type stagedFile struct {
	record   models.FileRecord
	token    string
	filename string
	renamed  bool
}

// processRecords runs the staged upload pipeline over records in batches.
//
// Each batch stages file bytes one at a time, then commits the whole batch
// with one batchCreate and one batchAddMediaItems call. With skipErrors set,
// a failure marks the affected files as errors and the run continues;
// otherwise the first failure aborts. Batches are independent: a failed
// commit in one never touches the results of another.
func (e *SyncEngine) processRecords(ctx context.Context, albumID string, records []models.FileRecord, tracker *dedupTracker, skipErrors bool, progress chan<- ProgressUpdate) ([]models.SyncResult, error) {
	results := make([]models.SyncResult, 0, len(records))
	total := len(records)
	done := 0

	emit := func(result models.SyncResult) {
		results = append(results, result)
		done++
		e.sendProgress(progress, fileResultUpdate(done, total, result))
	}

	totalBatches := (total + batchSize - 1) / batchSize

	for start := 0; start < total; start += batchSize {
		end := min(start+batchSize, total)
		batch := records[start:end]
		batchNum := start/batchSize + 1

		e.sendProgress(progress, batchUpdate(batchNum, totalBatches, len(batch)))

		staged := make([]stagedFile, 0, len(batch))
		// content hashes already staged in this batch but not yet committed
		pending := map[string]bool{}
		for _, rec := range batch {
			if tracker.seenHash(rec.MD5) || (rec.MD5 != "" && pending[rec.MD5]) {
				emit(models.SyncResult{
					Filename: rec.Name,
					Outcome:  models.OutcomeSkipped,
					Message:  "duplicate content (already processed this run)",
				})
				continue
			}

			sf, err := e.stageFile(ctx, rec, tracker)
			if err != nil {
				if !skipErrors {
					return results, err
				}
				emit(models.SyncResult{
					Filename: rec.Name,
					Outcome:  models.OutcomeError,
					Err:      err.Error(),
				})
				continue
			}

			if rec.MD5 != "" {
				pending[rec.MD5] = true
			}
			staged = append(staged, sf)
		}

		if len(staged) == 0 {
			continue
		}

		committed, err := e.commitBatch(ctx, albumID, staged, tracker, emit)
		if err != nil {
			if !skipErrors {
				return results, err
			}
			for _, sf := range committed {
				emit(models.SyncResult{
					Filename: sf.record.Name,
					Outcome:  models.OutcomeError,
					Err:      err.Error(),
				})
			}
		}
	}

	return results, nil
}

// stageFile downloads one record and stages its bytes under a
// collision-free filename. Both network calls run under the retry policy.
func (e *SyncEngine) stageFile(ctx context.Context, rec models.FileRecord, tracker *dedupTracker) (stagedFile, error) {
	filename, renamed, err := tracker.uniqueFilename(ctx, rec.Name)
	if err != nil {
		return stagedFile{}, fmt.Errorf("resolving filename for %s: %w", rec.Name, err)
	}

	var content []byte
	err = e.backoff.Do(ctx, func() error {
		var downloadErr error
		content, downloadErr = e.source.Download(ctx, rec.ID)
		return downloadErr
	})
	if err != nil {
		return stagedFile{}, err
	}

	var token string
	err = e.backoff.Do(ctx, func() error {
		var stageErr error
		token, stageErr = e.target.StageBytes(ctx, content, filename)
		return stageErr
	})
	if err != nil {
		return stagedFile{}, err
	}

	return stagedFile{record: rec, token: token, filename: filename, renamed: renamed}, nil
}

// commitBatch redeems a batch's upload tokens and adds the resulting items
// to the album. On error it returns the staged files still pending so the
// caller can mark them, paired with the error.
func (e *SyncEngine) commitBatch(ctx context.Context, albumID string, staged []stagedFile, tracker *dedupTracker, emit func(models.SyncResult)) ([]stagedFile, error) {
	uploads := make([]services.StagedUpload, len(staged))
	for i, sf := range staged {
		uploads[i] = services.StagedUpload{Token: sf.token, Filename: sf.filename}
	}

	var items []models.MediaItem
	err := e.backoff.Do(ctx, func() error {
		var commitErr error
		items, commitErr = e.target.CommitItems(ctx, uploads)
		return commitErr
	})
	if err != nil {
		return staged, err
	}

	// Committed items already present in the album are duplicates the
	// target content-addressed for us; they are skipped, not re-added.
	var toAdd []stagedFile
	var addIDs []string
	for i, item := range items {
		sf := staged[i]

		dup, err := tracker.isAlbumItem(ctx, item.ID)
		if err != nil {
			return staged[i:], err
		}
		if dup {
			emit(models.SyncResult{
				Filename: sf.record.Name,
				Outcome:  models.OutcomeSkipped,
				Message:  "duplicate content (target-detected)",
			})
			continue
		}

		toAdd = append(toAdd, sf)
		addIDs = append(addIDs, item.ID)
	}

	if len(addIDs) > 0 {
		err = e.backoff.Do(ctx, func() error {
			return e.target.AddToAlbum(ctx, albumID, addIDs)
		})
		if err != nil {
			return toAdd, err
		}
	}

	for i, sf := range toAdd {
		tracker.recordHash(sf.record.MD5)
		tracker.recordItem(addIDs[i])

		message := fmt.Sprintf("uploaded successfully (%s)", formatter.FormatFileSize(sf.record.Size))
		if sf.renamed {
			message += fmt.Sprintf(", renamed to %s", sf.filename)
		}

		emit(models.SyncResult{
			Filename: sf.record.Name,
			Outcome:  models.OutcomeSuccess,
			Message:  message,
		})
	}

	return nil, nil
}
