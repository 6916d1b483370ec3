// package shared defines shared helpers
package shared

import (
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// NewFileLogger creates a [log.Logger] writing to the file at path, creating
// parent directories as needed. Used by the TUI to keep log output off the
// alternate screen.
func NewFileLogger(path string) (*log.Logger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return NewLogger(f), nil
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

var (
	folderIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/folders/([a-zA-Z0-9-_]+)`),
		regexp.MustCompile(`id=([a-zA-Z0-9-_]+)`),
	}
	albumIDPattern = regexp.MustCompile(`/album/([a-zA-Z0-9-_]+)`)
)

// ExtractFolderID extracts a Drive folder ID from a folder URL.
//
// Bare IDs (no path separators, longer than 10 characters) pass through
// unchanged. Returns "" when the input is neither an ID nor a recognized URL.
func ExtractFolderID(s string) string {
	if !containsSlash(s) && len(s) > 10 {
		return s
	}
	for _, p := range folderIDPatterns {
		if m := p.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}

// ExtractAlbumID extracts a Photos album ID from an album share URL.
//
// Returns "" when the input does not look like an album URL, which callers
// treat as "this is an album title".
func ExtractAlbumID(s string) string {
	if m := albumIDPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func containsSlash(s string) bool {
	for _, r := range s {
		if r == '/' {
			return true
		}
	}
	return false
}
