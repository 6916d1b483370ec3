// Google Drive v3 implementation of [SourceService]
//
// Response types follow https://developers.google.com/drive/api/reference/rest/v3/files
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"photosync/internal/models"
	"photosync/internal/shared"
)

const (
	driveBaseURL  = "https://www.googleapis.com/drive/v3"
	folderMime    = "application/vnd.google-apps.folder"
	drivePageSize = 100
)

// driveFile is the subset of the Drive file resource the sync pipeline needs.
// Drive reports size as a decimal string; it is absent for folders and for
// Google-native documents.
type driveFile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	Size         string `json:"size,omitempty"`
	MD5Checksum  string `json:"md5Checksum,omitempty"`
	CreatedTime  string `json:"createdTime,omitempty"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
}

type driveFileList struct {
	Files         []driveFile `json:"files"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
}

// DriveService implements [SourceService] against the Google Drive REST API.
type DriveService struct {
	baseURL    string
	httpClient *http.Client
}

// NewDriveService creates a Drive client using the given authenticated HTTP
// client (an oauth2 client carrying a bearer token).
func NewDriveService(client *http.Client) *DriveService {
	if client == nil {
		client = http.DefaultClient
	}

	return &DriveService{
		baseURL:    driveBaseURL,
		httpClient: client,
	}
}

func (d *DriveService) Name() string {
	return "Google Drive"
}

// ListChildren fetches one page of non-trashed entries directly under folderID.
func (d *DriveService) ListChildren(ctx context.Context, folderID, pageToken string) ([]models.FileRecord, string, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("'%s' in parents and trashed=false", folderID))
	params.Set("fields", "nextPageToken, files(id, name, mimeType, size, md5Checksum, createdTime, modifiedTime)")
	params.Set("pageSize", strconv.Itoa(drivePageSize))
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var list driveFileList
	endpoint := "/files?" + params.Encode()
	if err := d.doRequest(ctx, endpoint, &list); err != nil {
		return nil, "", fmt.Errorf("%w: folder %s: %v", shared.ErrListing, folderID, err)
	}

	records := make([]models.FileRecord, len(list.Files))
	for i, f := range list.Files {
		records[i] = f.toRecord()
	}

	return records, list.NextPageToken, nil
}

// ListRecursive walks folderID and all descendant folders breadth-first,
// returning every non-folder entry.
//
// The worklist is a FIFO of pending folder IDs seeded with the root; each
// folder is fully paginated before the next is dequeued. A visited set guards
// against the source reporting a folder as its own descendant.
func (d *DriveService) ListRecursive(ctx context.Context, folderID string) ([]models.FileRecord, error) {
	pending := []string{folderID}
	visited := map[string]bool{folderID: true}

	var records []models.FileRecord
	for len(pending) > 0 {
		current := pending[0]
		pending = pending[1:]

		pageToken := ""
		for {
			page, next, err := d.ListChildren(ctx, current, pageToken)
			if err != nil {
				return nil, err
			}

			for _, rec := range page {
				if rec.MimeType == folderMime {
					if !visited[rec.ID] {
						visited[rec.ID] = true
						pending = append(pending, rec.ID)
					}
					continue
				}
				records = append(records, rec)
			}

			if next == "" {
				break
			}
			pageToken = next
		}
	}

	return records, nil
}

// Download returns the full content of a file via ?alt=media.
func (d *DriveService) Download(ctx context.Context, fileID string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/files/%s?alt=media", d.baseURL, url.PathEscape(fileID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: drive API status %d", shared.ErrDownload, resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", shared.ErrDownload, err)
	}

	return content, nil
}

// doRequest performs an authenticated GET against the Drive API and decodes
// the JSON response into result.
func (d *DriveService) doRequest(ctx context.Context, endpoint string, result any) error {
	apiURL := d.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("drive API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func (f driveFile) toRecord() models.FileRecord {
	rec := models.FileRecord{
		ID:       f.ID,
		Name:     f.Name,
		MimeType: f.MimeType,
		MD5:      f.MD5Checksum,
	}

	if f.Size != "" {
		if size, err := strconv.ParseInt(f.Size, 10, 64); err == nil {
			rec.Size = size
			rec.HasSize = true
		}
	}
	if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
		rec.Created = t
	}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		rec.Modified = t
	}

	return rec
}
