package tasks

import (
	"context"
	"fmt"
	"strings"

	"photosync/internal/services"
)

// dedupTracker holds the per-run mutable state that keeps one sync run from
// uploading the same content or filename twice.
//
// Album filenames and item IDs are fetched lazily, once per run, on first
// use. Content hashes and chosen filenames grow as the run progresses and
// are never persisted; a fresh run starts empty.
type dedupTracker struct {
	target  services.TargetService
	albumID string

	hashes      map[string]bool
	chosenNames map[string]bool

	albumNames  map[string]bool
	namesLoaded bool

	albumItems  map[string]bool
	itemsLoaded bool
}

func newDedupTracker(target services.TargetService, albumID string) *dedupTracker {
	return &dedupTracker{
		target:      target,
		albumID:     albumID,
		hashes:      map[string]bool{},
		chosenNames: map[string]bool{},
		albumNames:  map[string]bool{},
		albumItems:  map[string]bool{},
	}
}

// seenHash reports whether a content hash succeeded earlier in this run.
// Empty hashes never match.
func (t *dedupTracker) seenHash(hash string) bool {
	return hash != "" && t.hashes[hash]
}

// recordHash marks a content hash as uploaded. Call only after a successful
// commit.
func (t *dedupTracker) recordHash(hash string) {
	if hash != "" {
		t.hashes[hash] = true
	}
}

// uniqueFilename returns a filename free of collisions with the album's
// existing items and with names chosen earlier this run. Colliding names get
// a _N suffix before the extension, with N ascending from 1.
func (t *dedupTracker) uniqueFilename(ctx context.Context, name string) (string, bool, error) {
	if err := t.loadAlbumNames(ctx); err != nil {
		return "", false, err
	}

	if !t.taken(name) {
		t.chosenNames[name] = true
		return name, false, nil
	}

	base, ext := splitExtension(name)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, ext)
		if !t.taken(candidate) {
			t.chosenNames[candidate] = true
			return candidate, true, nil
		}
	}
}

// isAlbumItem reports whether a committed media item already belongs to the
// album, either before the run started or from an earlier batch.
func (t *dedupTracker) isAlbumItem(ctx context.Context, itemID string) (bool, error) {
	if err := t.loadAlbumItems(ctx); err != nil {
		return false, err
	}
	return t.albumItems[itemID], nil
}

// recordItem marks a media item as an album member added this run.
func (t *dedupTracker) recordItem(itemID string) {
	t.albumItems[itemID] = true
}

func (t *dedupTracker) taken(name string) bool {
	return t.albumNames[name] || t.chosenNames[name]
}

func (t *dedupTracker) loadAlbumNames(ctx context.Context) error {
	if t.namesLoaded {
		return nil
	}

	err := t.eachAlbumItem(ctx, func(item itemRef) {
		t.albumNames[item.filename] = true
	})
	if err != nil {
		return err
	}

	t.namesLoaded = true
	return nil
}

func (t *dedupTracker) loadAlbumItems(ctx context.Context) error {
	if t.itemsLoaded {
		return nil
	}

	err := t.eachAlbumItem(ctx, func(item itemRef) {
		t.albumItems[item.id] = true
	})
	if err != nil {
		return err
	}

	t.itemsLoaded = true
	return nil
}

type itemRef struct {
	id       string
	filename string
}

func (t *dedupTracker) eachAlbumItem(ctx context.Context, fn func(itemRef)) error {
	pageToken := ""
	for {
		items, next, err := t.target.ListAlbumItems(ctx, t.albumID, pageToken)
		if err != nil {
			return err
		}

		for _, item := range items {
			fn(itemRef{id: item.ID, filename: item.Filename})
		}

		if next == "" {
			return nil
		}
		pageToken = next
	}
}

// splitExtension splits "a.jpg" into ("a", ".jpg"). Extensionless names and
// dotfiles return the whole name as base.
func splitExtension(name string) (string, string) {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return name, ""
	}
	return name[:idx], name[idx:]
}
