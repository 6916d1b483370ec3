package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"photosync/internal/shared"
)

func newPhotosTestServer(t *testing.T, handler http.HandlerFunc) *PhotosService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv := NewPhotosService(server.Client(), 1000)
	srv.baseURL = server.URL
	srv.uploadURL = server.URL + "/uploads"

	return srv
}

func TestPhotosService(t *testing.T) {
	t.Run("NewPhotosService", func(t *testing.T) {
		srv := NewPhotosService(nil, 0)
		if srv == nil {
			t.Fatal("expected service to be created")
		}
		if srv.Name() != "Google Photos" {
			t.Errorf("expected service name 'Google Photos', got %s", srv.Name())
		}

		var _ TargetService = srv
	})

	t.Run("FindAlbumByTitle", func(t *testing.T) {
		t.Run("scans pages until exact match", func(t *testing.T) {
			srv := newPhotosTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("pageToken") == "" {
					json.NewEncoder(w).Encode(photosAlbumList{
						Albums:        []photosAlbum{{ID: "a1", Title: "vacation"}},
						NextPageToken: "page2",
					})
					return
				}
				json.NewEncoder(w).Encode(photosAlbumList{
					Albums: []photosAlbum{{ID: "a2", Title: "Vacation"}},
				})
			})

			id, err := srv.FindAlbumByTitle(context.Background(), "Vacation")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if id != "a2" {
				t.Errorf("expected case-sensitive match 'a2', got %s", id)
			}
		})

		t.Run("returns empty ID when absent", func(t *testing.T) {
			srv := newPhotosTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(photosAlbumList{
					Albums: []photosAlbum{{ID: "a1", Title: "Other"}},
				})
			})

			id, err := srv.FindAlbumByTitle(context.Background(), "Missing")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if id != "" {
				t.Errorf("expected empty ID, got %s", id)
			}
		})
	})

	t.Run("CreateAlbum", func(t *testing.T) {
		srv := newPhotosTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["album"]["title"] != "New Album" {
				t.Errorf("unexpected create body: %v", body)
			}
			json.NewEncoder(w).Encode(photosAlbum{ID: "created1", Title: "New Album"})
		})

		id, err := srv.CreateAlbum(context.Background(), "New Album")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != "created1" {
			t.Errorf("expected album ID 'created1', got %s", id)
		}
	})

	t.Run("ListAlbums", func(t *testing.T) {
		srv := newPhotosTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(photosAlbumList{
				Albums:        []photosAlbum{{ID: "a1", Title: "Trip", MediaItemsCount: "42"}},
				NextPageToken: "next",
			})
		})

		albums, next, err := srv.ListAlbums(context.Background(), "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(albums) != 1 || albums[0].ItemCount != 42 {
			t.Errorf("unexpected albums: %+v", albums)
		}
		if next != "next" {
			t.Errorf("expected next token, got %s", next)
		}
	})

	t.Run("ListAlbumItems", func(t *testing.T) {
		srv := newPhotosTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if body["albumId"] != "a1" {
				t.Errorf("expected albumId in search body, got %v", body)
			}
			json.NewEncoder(w).Encode(mediaItemSearchResponse{
				MediaItems: []photosMediaItem{{ID: "m1", Filename: "a.jpg"}},
			})
		})

		items, next, err := srv.ListAlbumItems(context.Background(), "a1", "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 1 || items[0].Filename != "a.jpg" {
			t.Errorf("unexpected items: %+v", items)
		}
		if next != "" {
			t.Errorf("expected no next token, got %s", next)
		}
	})

	t.Run("StageBytes", func(t *testing.T) {
		t.Run("sends raw upload headers", func(t *testing.T) {
			srv := newPhotosTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("X-Goog-Upload-Protocol") != "raw" {
					t.Error("expected raw upload protocol header")
				}
				if r.Header.Get("X-Goog-Upload-File-Name") != "pic.jpg" {
					t.Errorf("unexpected file name header: %s", r.Header.Get("X-Goog-Upload-File-Name"))
				}
				content, _ := io.ReadAll(r.Body)
				if string(content) != "jpeg-bytes" {
					t.Errorf("unexpected body: %s", content)
				}
				w.Write([]byte("upload-token-1\n"))
			})

			token, err := srv.StageBytes(context.Background(), []byte("jpeg-bytes"), "pic.jpg")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if token != "upload-token-1" {
				t.Errorf("expected trimmed token, got %q", token)
			}
		})

		t.Run("wraps staging errors", func(t *testing.T) {
			srv := newPhotosTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			})

			_, err := srv.StageBytes(context.Background(), []byte("x"), "pic.jpg")
			if !errors.Is(err, shared.ErrStaging) {
				t.Errorf("expected ErrStaging, got %v", err)
			}
		})
	})

	t.Run("CommitItems", func(t *testing.T) {
		t.Run("returns items aligned with input", func(t *testing.T) {
			srv := newPhotosTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				var body struct {
					NewMediaItems []struct {
						SimpleMediaItem struct {
							FileName    string `json:"fileName"`
							UploadToken string `json:"uploadToken"`
						} `json:"simpleMediaItem"`
					} `json:"newMediaItems"`
				}
				json.NewDecoder(r.Body).Decode(&body)
				if len(body.NewMediaItems) != 2 {
					t.Fatalf("expected 2 new items, got %d", len(body.NewMediaItems))
				}
				if body.NewMediaItems[0].SimpleMediaItem.UploadToken != "t1" {
					t.Errorf("unexpected first token: %s", body.NewMediaItems[0].SimpleMediaItem.UploadToken)
				}

				json.NewEncoder(w).Encode(map[string]any{
					"newMediaItemResults": []map[string]any{
						{"uploadToken": "t1", "mediaItem": map[string]string{"id": "m1", "filename": "a.jpg"}},
						{"uploadToken": "t2", "mediaItem": map[string]string{"id": "m2", "filename": "b.jpg"}},
					},
				})
			})

			items, err := srv.CommitItems(context.Background(), []StagedUpload{
				{Token: "t1", Filename: "a.jpg"},
				{Token: "t2", Filename: "b.jpg"},
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(items) != 2 || items[0].ID != "m1" || items[1].ID != "m2" {
				t.Errorf("unexpected items: %+v", items)
			}
		})

		t.Run("empty batch makes no request", func(t *testing.T) {
			srv := newPhotosTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				t.Error("no request expected for empty batch")
			})

			items, err := srv.CommitItems(context.Background(), nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if items != nil {
				t.Errorf("expected nil items, got %+v", items)
			}
		})

		t.Run("per-item failure fails the batch", func(t *testing.T) {
			srv := newPhotosTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"newMediaItemResults": []map[string]any{
						{"uploadToken": "t1", "status": map[string]any{"message": "quota exceeded"}},
					},
				})
			})

			_, err := srv.CommitItems(context.Background(), []StagedUpload{{Token: "t1", Filename: "a.jpg"}})
			if !errors.Is(err, shared.ErrCommit) {
				t.Errorf("expected ErrCommit, got %v", err)
			}
		})
	})

	t.Run("AddToAlbum", func(t *testing.T) {
		t.Run("posts item IDs", func(t *testing.T) {
			srv := newPhotosTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				var body map[string][]string
				json.NewDecoder(r.Body).Decode(&body)
				if len(body["mediaItemIds"]) != 2 {
					t.Errorf("unexpected body: %v", body)
				}
				w.Write([]byte("{}"))
			})

			if err := srv.AddToAlbum(context.Background(), "a1", []string{"m1", "m2"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("skips empty batches", func(t *testing.T) {
			srv := newPhotosTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				t.Error("no request expected for empty batch")
			})

			if err := srv.AddToAlbum(context.Background(), "a1", nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	})

	t.Run("AlbumURL", func(t *testing.T) {
		srv := NewPhotosService(nil, 0)
		if got := srv.AlbumURL("abc"); got != "https://photos.google.com/lr/album/abc" {
			t.Errorf("unexpected album URL: %s", got)
		}
	})

	t.Run("doRequest surfaces API error messages", func(t *testing.T) {
		srv := newPhotosTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "invalid page token"},
			})
		})

		_, _, err := srv.ListAlbums(context.Background(), "bogus")
		if err == nil {
			t.Fatal("expected error")
		}
	})
}
