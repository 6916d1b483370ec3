package services

import (
	"context"

	"photosync/internal/models"
)

// SourceService is the file-storage side of a sync: enumerate a folder tree
// and download file content.
type SourceService interface {
	// ListChildren fetches one page of non-trashed entries directly under
	// folderID. An empty next token means the folder is fully drained.
	ListChildren(ctx context.Context, folderID, pageToken string) ([]models.FileRecord, string, error)

	// ListRecursive walks folderID and all descendant folders breadth-first
	// and returns every non-folder entry. Folders are never returned.
	ListRecursive(ctx context.Context, folderID string) ([]models.FileRecord, error)

	// Download returns the full content of a file.
	Download(ctx context.Context, fileID string) ([]byte, error)

	// Name returns the service name for logging.
	Name() string
}

// TargetService is the photo-album side of a sync: albums, staged uploads,
// and batched commits.
type TargetService interface {
	// FindAlbumByTitle returns the ID of the first album whose title matches
	// exactly (case-sensitive), scanning all pages; "" when no album matches.
	FindAlbumByTitle(ctx context.Context, title string) (string, error)

	// CreateAlbum creates a new album and returns its ID.
	CreateAlbum(ctx context.Context, title string) (string, error)

	// ListAlbums fetches one page of the user's albums.
	ListAlbums(ctx context.Context, pageToken string) ([]models.Album, string, error)

	// ListAlbumItems fetches one page of the media items in an album.
	ListAlbumItems(ctx context.Context, albumID, pageToken string) ([]models.MediaItem, string, error)

	// StageBytes uploads raw content bound to filename and returns an opaque
	// upload token redeemable by CommitItems.
	StageBytes(ctx context.Context, content []byte, filename string) (string, error)

	// CommitItems redeems a batch of upload tokens as media items. The
	// returned slice is positionally aligned with the input.
	CommitItems(ctx context.Context, uploads []StagedUpload) ([]models.MediaItem, error)

	// AddToAlbum appends committed media items to an album.
	AddToAlbum(ctx context.Context, albumID string, itemIDs []string) error

	// AlbumURL returns the web URL for an album.
	AlbumURL(albumID string) string

	// Name returns the service name for logging.
	Name() string
}

// StagedUpload pairs an upload token with the filename it was staged under.
type StagedUpload struct {
	Token    string
	Filename string
}
