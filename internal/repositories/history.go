package repositories

import (
	"database/sql"
	"fmt"

	"photosync/internal/models"
	"photosync/internal/shared"
)

// HistoryRepository persists completed sync runs and their per-file results.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new [HistoryRepository] with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// SaveRun inserts a completed run and its results in one transaction. A run
// with no ID gets a generated one; the stored ID is returned.
func (r *HistoryRepository) SaveRun(run models.SyncRun, results []models.SyncResult) (string, error) {
	if run.ID == "" {
		run.ID = shared.GenerateID()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO sync_runs (id, folder_id, album_id, succeeded, skipped, errored, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query, run.ID, run.FolderID, run.AlbumID, run.Succeeded, run.Skipped, run.Errored, run.StartedAt, run.FinishedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, result := range results {
		detail := result.Message
		if result.Err != "" {
			detail = result.Err
		}
		_, err = tx.Exec(
			"INSERT INTO sync_results (run_id, filename, outcome, detail) VALUES (?, ?, ?, ?)",
			run.ID, result.Filename, string(result.Outcome), detail,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	return run.ID, nil
}

// ListRuns returns the most recent runs, newest first, capped at limit.
// A non-positive limit defaults to 20.
func (r *HistoryRepository) ListRuns(limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, folder_id, album_id, succeeded, skipped, errored, started_at, finished_at
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.SyncRun
	for rows.Next() {
		var run models.SyncRun
		err := rows.Scan(&run.ID, &run.FolderID, &run.AlbumID, &run.Succeeded, &run.Skipped, &run.Errored, &run.StartedAt, &run.FinishedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetResults returns the per-file outcomes for a run in insertion order.
func (r *HistoryRepository) GetResults(runID string) ([]models.SyncResult, error) {
	query := `
		SELECT filename, outcome, detail
		FROM sync_results
		WHERE run_id = ?
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []models.SyncResult
	for rows.Next() {
		var (
			result  models.SyncResult
			outcome string
			detail  string
		)
		if err := rows.Scan(&result.Filename, &outcome, &detail); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		result.Outcome = models.Outcome(outcome)
		if result.Outcome == models.OutcomeError {
			result.Err = detail
		} else {
			result.Message = detail
		}
		results = append(results, result)
	}

	return results, rows.Err()
}
