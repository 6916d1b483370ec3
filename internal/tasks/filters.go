package tasks

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"photosync/internal/models"
	"photosync/internal/shared"
)

// FilterOptions configures the filter chain applied to listed files.
//
// Zero values disable the corresponding stage; the media-type stage always
// runs.
type FilterOptions struct {
	FileTypes []string // extension allow-list, without dots
	Pattern   string   // regex matched against filenames (search semantics)
	MinSizeKB int64
	MaxSizeMB int64
}

// ApplyFilters runs the fixed filter order: media type, extension allow-list,
// regex, size window. Each stage returns a new slice and never grows the
// input.
func ApplyFilters(logger *log.Logger, records []models.FileRecord, opts FilterOptions) []models.FileRecord {
	records = filterMediaType(records)
	records = filterExtensions(records, opts.FileTypes)
	records = filterPattern(logger, records, opts.Pattern)
	records = filterSize(records, opts.MinSizeKB, opts.MaxSizeMB)
	return records
}

// filterMediaType keeps only image/* and video/* records.
func filterMediaType(records []models.FileRecord) []models.FileRecord {
	kept := make([]models.FileRecord, 0, len(records))
	for _, rec := range records {
		if rec.IsMedia() {
			kept = append(kept, rec)
		}
	}
	return kept
}

// filterExtensions keeps records whose filename ends with one of the
// configured extensions, case-insensitive. An empty allow-list keeps
// everything.
func filterExtensions(records []models.FileRecord, fileTypes []string) []models.FileRecord {
	if len(fileTypes) == 0 {
		return records
	}

	suffixes := make([]string, len(fileTypes))
	for i, ext := range fileTypes {
		suffixes[i] = "." + strings.ToLower(strings.TrimPrefix(ext, "."))
	}

	kept := make([]models.FileRecord, 0, len(records))
	for _, rec := range records {
		name := strings.ToLower(rec.Name)
		for _, suffix := range suffixes {
			if strings.HasSuffix(name, suffix) {
				kept = append(kept, rec)
				break
			}
		}
	}
	return kept
}

// filterPattern keeps records whose filename contains a match for pattern.
// An invalid pattern fails open: the error is logged and the input returned
// unchanged.
func filterPattern(logger *log.Logger, records []models.FileRecord, pattern string) []models.FileRecord {
	if pattern == "" {
		return records
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		if logger != nil {
			logger.Error("invalid regex filter, skipping", "pattern", pattern, "error", shared.ErrFilterConfig, "cause", err)
		}
		return records
	}

	kept := make([]models.FileRecord, 0, len(records))
	for _, rec := range records {
		if re.MatchString(rec.Name) {
			kept = append(kept, rec)
		}
	}
	return kept
}

// filterSize keeps records whose size falls within [minKB*1024,
// maxMB*1024*1024], inclusive at both ends. Records without a reported size
// are dropped when the stage is active. Both bounds zero disables the stage.
func filterSize(records []models.FileRecord, minKB, maxMB int64) []models.FileRecord {
	if minKB <= 0 && maxMB <= 0 {
		return records
	}

	minBytes := int64(0)
	if minKB > 0 {
		minBytes = minKB * 1024
	}
	maxBytes := int64(0)
	if maxMB > 0 {
		maxBytes = maxMB * 1024 * 1024
	}

	kept := make([]models.FileRecord, 0, len(records))
	for _, rec := range records {
		if !rec.HasSize {
			continue
		}
		if rec.Size < minBytes {
			continue
		}
		if maxBytes > 0 && rec.Size > maxBytes {
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}
