package shared

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExtractFolderID(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare id passes through",
			input: "1A2b3C4d5E6f7G8h",
			want:  "1A2b3C4d5E6f7G8h",
		},
		{
			name:  "folders url",
			input: "https://drive.google.com/drive/folders/1A2b3C4d5E6f7G8h",
			want:  "1A2b3C4d5E6f7G8h",
		},
		{
			name:  "folders url with query",
			input: "https://drive.google.com/drive/folders/1A2b3C4d5E6f7G8h?usp=sharing",
			want:  "1A2b3C4d5E6f7G8h",
		},
		{
			name:  "open url with id param",
			input: "https://drive.google.com/open?id=1A2b3C4d5E6f7G8h",
			want:  "1A2b3C4d5E6f7G8h",
		},
		{
			name:  "unrecognized url",
			input: "https://example.com/nothing-here",
			want:  "",
		},
		{
			name:  "too short for a bare id",
			input: "abc",
			want:  "",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractFolderID(tt.input); got != tt.want {
				t.Errorf("ExtractFolderID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractAlbumID(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "album url",
			input: "https://photos.google.com/lr/album/AF1QipN-abc_123",
			want:  "AF1QipN-abc_123",
		},
		{
			name:  "plain title",
			input: "Summer Vacation",
			want:  "",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractAlbumID(tt.input); got != tt.want {
				t.Errorf("ExtractAlbumID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == "" || b == "" {
		t.Fatal("expected non-empty IDs")
	}
	if a == b {
		t.Error("expected distinct IDs")
	}
}

func TestBrowserCommand(t *testing.T) {
	tc := []struct {
		goos string
		name string
	}{
		{goos: "darwin", name: "open"},
		{goos: "linux", name: "xdg-open"},
		{goos: "windows", name: "cmd"},
		{goos: "plan9", name: ""},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			name, _ := browserCommand(tt.goos, "https://example.com")
			if name != tt.name {
				t.Errorf("browserCommand(%q) = %q, want %q", tt.goos, name, tt.name)
			}
		})
	}
}

func TestBackoff(t *testing.T) {
	t.Run("returns immediately on success", func(t *testing.T) {
		calls := 0
		b := Backoff{MaxAttempts: 3, BaseDelay: time.Millisecond}

		err := b.Do(context.Background(), func() error {
			calls++
			return nil
		})

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		b := Backoff{MaxAttempts: 3, BaseDelay: time.Millisecond}

		err := b.Do(context.Background(), func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("returns last error when attempts run out", func(t *testing.T) {
		calls := 0
		b := Backoff{MaxAttempts: 3, BaseDelay: time.Millisecond}
		failure := errors.New("persistent")

		err := b.Do(context.Background(), func() error {
			calls++
			return failure
		})

		if !errors.Is(err, failure) {
			t.Errorf("expected the last error, got %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("zero attempts still runs once", func(t *testing.T) {
		calls := 0
		b := Backoff{}

		b.Do(context.Background(), func() error {
			calls++
			return errors.New("fail")
		})

		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		b := Backoff{MaxAttempts: 5, BaseDelay: time.Minute}

		err := b.Do(ctx, func() error {
			calls++
			cancel()
			return errors.New("fail")
		})

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call before cancellation, got %d", calls)
		}
	})
}
