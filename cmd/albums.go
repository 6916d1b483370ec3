package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"photosync/internal/services"
	"photosync/internal/shared"
)

// AlbumsList prints every album in the Photos library.
func (r *Runner) AlbumsList(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	target, err := r.photosService(ctx)
	if err != nil {
		return err
	}

	r.writePlainHeader("Google Photos Albums")

	count := 0
	pageToken := ""
	for {
		albums, next, err := target.ListAlbums(ctx, pageToken)
		if err != nil {
			return err
		}

		for _, album := range albums {
			count++
			r.writePlain("%d. %s (%d items)\n   %s\n", count, album.Title, album.ItemCount, album.ID)
		}

		if next == "" {
			break
		}
		pageToken = next
	}

	if count == 0 {
		return r.writePlain("No albums found.\n")
	}
	return r.writePlain("\n%d albums\n", count)
}

// AlbumsBrowse opens an album in the browser, accepting an ID or a title.
func (r *Runner) AlbumsBrowse(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	ref := cmd.StringArg("album")
	if ref == "" {
		return fmt.Errorf("%w: an album ID or title is required", shared.ErrMissingArgument)
	}

	target, err := r.photosService(ctx)
	if err != nil {
		return err
	}

	albumID, err := target.FindAlbumByTitle(ctx, ref)
	if err != nil {
		return err
	}
	if albumID == "" {
		// not a known title, treat the argument as an album ID
		albumID = ref
	}

	url := target.AlbumURL(albumID)
	r.writePlain("Opening %s\n", url)
	if err := shared.OpenBrowser(url); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

func (r *Runner) photosService(ctx context.Context) (*services.PhotosService, error) {
	client, err := r.authenticatedClient(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewPhotosService(client, r.config.Sync.RateLimit), nil
}
