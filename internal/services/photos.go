// Google Photos Library implementation of [TargetService]
//
// Response types follow https://developers.google.com/photos/library/reference/rest
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"photosync/internal/models"
	"photosync/internal/shared"
)

const (
	photosBaseURL   = "https://photoslibrary.googleapis.com/v1"
	photosUploadURL = photosBaseURL + "/uploads"
	photosAlbumURL  = "https://photos.google.com/lr/album/"

	defaultRateLimit = 5.0 // requests per second
)

type photosAlbum struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	ProductURL      string `json:"productUrl,omitempty"`
	MediaItemsCount string `json:"mediaItemsCount,omitempty"`
}

type photosAlbumList struct {
	Albums        []photosAlbum `json:"albums"`
	NextPageToken string        `json:"nextPageToken,omitempty"`
}

type photosMediaItem struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

type mediaItemSearchResponse struct {
	MediaItems    []photosMediaItem `json:"mediaItems"`
	NextPageToken string            `json:"nextPageToken,omitempty"`
}

type newMediaItemResult struct {
	UploadToken string `json:"uploadToken"`
	Status      struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"status"`
	MediaItem *photosMediaItem `json:"mediaItem,omitempty"`
}

// PhotosService implements [TargetService] against the Photos Library API.
//
// All calls pass through a [rate.Limiter] so batched syncs stay inside the
// library API's per-minute write quota.
type PhotosService struct {
	baseURL    string
	uploadURL  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewPhotosService creates a Photos client using the given authenticated HTTP
// client. rps bounds outgoing requests per second; zero or negative selects
// the default of 5.
func NewPhotosService(client *http.Client, rps float64) *PhotosService {
	if client == nil {
		client = http.DefaultClient
	}
	if rps <= 0 {
		rps = defaultRateLimit
	}

	return &PhotosService{
		baseURL:    photosBaseURL,
		uploadURL:  photosUploadURL,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (p *PhotosService) Name() string {
	return "Google Photos"
}

// FindAlbumByTitle scans all album pages for an exact, case-sensitive title
// match and returns the first hit, or "" when no album matches.
func (p *PhotosService) FindAlbumByTitle(ctx context.Context, title string) (string, error) {
	pageToken := ""
	for {
		albums, next, err := p.ListAlbums(ctx, pageToken)
		if err != nil {
			return "", err
		}

		for _, album := range albums {
			if album.Title == title {
				return album.ID, nil
			}
		}

		if next == "" {
			return "", nil
		}
		pageToken = next
	}
}

// CreateAlbum creates a new album and returns its ID.
func (p *PhotosService) CreateAlbum(ctx context.Context, title string) (string, error) {
	body := map[string]any{
		"album": map[string]string{"title": title},
	}

	var created photosAlbum
	if err := p.doRequest(ctx, http.MethodPost, "/albums", body, &created); err != nil {
		return "", fmt.Errorf("failed to create album %q: %w", title, err)
	}

	return created.ID, nil
}

// ListAlbums fetches one page of the user's albums.
func (p *PhotosService) ListAlbums(ctx context.Context, pageToken string) ([]models.Album, string, error) {
	endpoint := "/albums"
	if pageToken != "" {
		endpoint += "?pageToken=" + url.QueryEscape(pageToken)
	}

	var list photosAlbumList
	if err := p.doRequest(ctx, http.MethodGet, endpoint, nil, &list); err != nil {
		return nil, "", err
	}

	albums := make([]models.Album, len(list.Albums))
	for i, a := range list.Albums {
		count, _ := strconv.Atoi(a.MediaItemsCount)
		albums[i] = models.Album{
			ID:        a.ID,
			Title:     a.Title,
			ItemCount: count,
		}
	}

	return albums, list.NextPageToken, nil
}

// ListAlbumItems fetches one page of an album's media items via
// mediaItems:search.
func (p *PhotosService) ListAlbumItems(ctx context.Context, albumID, pageToken string) ([]models.MediaItem, string, error) {
	body := map[string]any{"albumId": albumID}
	if pageToken != "" {
		body["pageToken"] = pageToken
	}

	var result mediaItemSearchResponse
	if err := p.doRequest(ctx, http.MethodPost, "/mediaItems:search", body, &result); err != nil {
		return nil, "", fmt.Errorf("failed to list items in album %s: %w", albumID, err)
	}

	items := make([]models.MediaItem, len(result.MediaItems))
	for i, m := range result.MediaItems {
		items[i] = models.MediaItem{ID: m.ID, Filename: m.Filename}
	}

	return items, result.NextPageToken, nil
}

// StageBytes uploads raw content using the raw upload protocol and returns
// the upload token from the response body.
func (p *PhotosService) StageBytes(ctx context.Context, content []byte, filename string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.uploadURL, bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Goog-Upload-File-Name", filename)
	req.Header.Set("X-Goog-Upload-Protocol", "raw")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrStaging, err)
	}
	defer resp.Body.Close()

	token, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading upload token: %v", shared.ErrStaging, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: photos upload status %d", shared.ErrStaging, resp.StatusCode)
	}

	return strings.TrimSpace(string(token)), nil
}

// CommitItems redeems a batch of upload tokens via mediaItems:batchCreate.
//
// The Photos API caps batchCreate at 50 items; the orchestrator's batch size
// matches. A per-item failure status fails the whole call so the caller can
// apply its skip-or-abort policy uniformly.
func (p *PhotosService) CommitItems(ctx context.Context, uploads []StagedUpload) ([]models.MediaItem, error) {
	if len(uploads) == 0 {
		return nil, nil
	}

	newItems := make([]map[string]any, len(uploads))
	for i, up := range uploads {
		newItems[i] = map[string]any{
			"description": fmt.Sprintf("Uploaded from Google Drive: %s", up.Filename),
			"simpleMediaItem": map[string]string{
				"fileName":    up.Filename,
				"uploadToken": up.Token,
			},
		}
	}

	var result struct {
		NewMediaItemResults []newMediaItemResult `json:"newMediaItemResults"`
	}

	body := map[string]any{"newMediaItems": newItems}
	if err := p.doRequest(ctx, http.MethodPost, "/mediaItems:batchCreate", body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCommit, err)
	}

	if len(result.NewMediaItemResults) != len(uploads) {
		return nil, fmt.Errorf("%w: expected %d item results, got %d", shared.ErrCommit, len(uploads), len(result.NewMediaItemResults))
	}

	items := make([]models.MediaItem, len(result.NewMediaItemResults))
	for i, r := range result.NewMediaItemResults {
		if r.MediaItem == nil {
			msg := r.Status.Message
			if msg == "" {
				msg = "unknown error"
			}
			return nil, fmt.Errorf("%w: item %q: %s", shared.ErrCommit, uploads[i].Filename, msg)
		}
		items[i] = models.MediaItem{ID: r.MediaItem.ID, Filename: r.MediaItem.Filename}
	}

	return items, nil
}

// AddToAlbum appends committed media items to an album via
// albums/{id}:batchAddMediaItems.
func (p *PhotosService) AddToAlbum(ctx context.Context, albumID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}

	endpoint := fmt.Sprintf("/albums/%s:batchAddMediaItems", url.PathEscape(albumID))
	body := map[string]any{"mediaItemIds": itemIDs}

	if err := p.doRequest(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		return fmt.Errorf("%w: adding %d items to album %s: %v", shared.ErrCommit, len(itemIDs), albumID, err)
	}

	return nil
}

// AlbumURL returns the web URL for an album.
func (p *PhotosService) AlbumURL(albumID string) string {
	return photosAlbumURL + albumID
}

// doRequest performs a rate-limited, authenticated request against the Photos
// API and decodes the JSON response into result.
func (p *PhotosService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	apiURL := p.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			return fmt.Errorf("photos API error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("photos API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
