// package formatter provides human-readable size formatting and sync report
// export to CSV and JSON.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"photosync/internal/models"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatFileSize renders a byte count with one decimal place in the largest
// unit under 1024, e.g. 1536 -> "1.5 KB".
func FormatFileSize(size int64) string {
	value := float64(size)
	for _, unit := range sizeUnits {
		if value < 1024 || unit == "TB" {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return ""
}

// syncReport is the JSON export shape for one sync run.
type syncReport struct {
	FolderID   string             `json:"folder_id"`
	AlbumID    string             `json:"album_id"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Succeeded  int                `json:"succeeded"`
	Skipped    int                `json:"skipped"`
	Errored    int                `json:"errored"`
	Results    []syncReportResult `json:"results"`
}

type syncReportResult struct {
	Filename string `json:"filename"`
	Outcome  string `json:"outcome"`
	Detail   string `json:"detail,omitempty"`
}

// ReportToJSON converts a run and its per-file results to indented JSON.
func ReportToJSON(run models.SyncRun, results []models.SyncResult) ([]byte, error) {
	report := syncReport{
		FolderID:   run.FolderID,
		AlbumID:    run.AlbumID,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Succeeded:  run.Succeeded,
		Skipped:    run.Skipped,
		Errored:    run.Errored,
		Results:    make([]syncReportResult, len(results)),
	}
	for i, r := range results {
		report.Results[i] = syncReportResult{
			Filename: r.Filename,
			Outcome:  string(r.Outcome),
			Detail:   r.Message,
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// ReportToCSV converts per-file results to CSV with columns: Filename,
// Outcome, Detail.
func ReportToCSV(results []models.SyncResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Filename", "Outcome", "Detail"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range results {
		record := []string{r.Filename, string(r.Outcome), r.Message}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteReportFile writes a run report to path, choosing the format from the
// extension: .json for JSON, anything else CSV.
func WriteReportFile(path string, run models.SyncRun, results []models.SyncResult) error {
	var (
		data []byte
		err  error
	)

	if len(path) > 5 && path[len(path)-5:] == ".json" {
		data, err = ReportToJSON(run, results)
	} else {
		data, err = ReportToCSV(results)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}
