package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vermapushpendra/FullBackend/internal/middleware"
	"github.com/vermapushpendra/FullBackend/internal/models"
)

func TestCreatePlaylistDuplicateNameConflicts(t *testing.T) {
	playlists := newStubPlaylistStore()
	handler := PlaylistHandler{Playlists: playlists, Videos: newStubVideoStore(), Views: &stubViews{}}

	owner := models.PublicUser{ID: "owner"}

	create := func() *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"name": "Favorites"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists", bytes.NewReader(body))
		req = req.WithContext(middleware.WithUser(req.Context(), owner))
		rec := httptest.NewRecorder()
		handler.Create(rec, req)
		return rec
	}

	if rec := create(); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec := create(); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate name, got %d", rec.Code)
	}
}

func TestAddVideoToPlaylistDeduplicates(t *testing.T) {
	playlists := newStubPlaylistStore()
	videos := newStubVideoStore()
	handler := PlaylistHandler{Playlists: playlists, Videos: videos, Views: &stubViews{}}

	owner := models.PublicUser{ID: "owner"}
	if err := videos.Create(context.Background(), models.Video{ID: "video-1", OwnerID: owner.ID}); err != nil {
		t.Fatalf("seed video: %v", err)
	}
	playlist := models.Playlist{ID: "playlist-1", Name: "Favorites", OwnerID: owner.ID, Videos: []string{}}
	if err := playlists.Create(context.Background(), playlist); err != nil {
		t.Fatalf("seed playlist: %v", err)
	}

	add := func() {
		body, _ := json.Marshal(map[string]string{"playlistId": playlist.ID, "videoId": "video-1"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists/videos/add", bytes.NewReader(body))
		req = req.WithContext(middleware.WithUser(req.Context(), owner))
		rec := httptest.NewRecorder()
		handler.AddVideo(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	add()
	add()

	stored, err := playlists.FindByID(context.Background(), playlist.ID)
	if err != nil {
		t.Fatalf("find playlist: %v", err)
	}
	if len(stored.Videos) != 1 {
		t.Fatalf("expected membership to stay a set, got %v", stored.Videos)
	}
}

func TestPlaylistModificationRejectsNonOwner(t *testing.T) {
	playlists := newStubPlaylistStore()
	handler := PlaylistHandler{Playlists: playlists, Videos: newStubVideoStore(), Views: &stubViews{}}

	playlist := models.Playlist{ID: "playlist-1", Name: "Favorites", OwnerID: "owner", Videos: []string{}}
	if err := playlists.Create(context.Background(), playlist); err != nil {
		t.Fatalf("seed playlist: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"playlistId": playlist.ID, "name": "Stolen"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists/update", bytes.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), models.PublicUser{ID: "intruder"}))
	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-owner, got %d", rec.Code)
	}
}
