package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vermapushpendra/FullBackend/internal/apperrors"
	"github.com/vermapushpendra/FullBackend/internal/middleware"
	"github.com/vermapushpendra/FullBackend/internal/models"
	"github.com/vermapushpendra/FullBackend/internal/repositories"
)

// PlaylistHandler implements playlist management endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	Views     ViewProvider
	NowFunc   func() time.Time
}

// Create handles POST /api/v1/playlists requests.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, apperrors.Unauthorized("authentication required"))
		return
	}

	var req createPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(ctx, w, apperrors.Validation("name is required"))
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		OwnerID:     user.ID,
		Videos:      []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, apperrors.Conflict("a playlist with that name already exists"))
			return
		}
		respondError(ctx, w, apperrors.Internal("failed to create playlist", err))
		return
	}

	respondJSON(ctx, w, http.StatusCreated, toPlaylistResponse(playlist))
}

// List handles GET /api/v1/playlists requests. Playlists are returned with
// their owner and fully joined video contents.
func (h PlaylistHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	ownerID := strings.TrimSpace(r.URL.Query().Get("ownerId"))
	if ownerID == "" {
		if user, ok := middleware.UserFromContext(ctx); ok {
			ownerID = user.ID
		}
	}
	if ownerID == "" {
		respondError(ctx, w, apperrors.Validation("ownerId query parameter is required"))
		return
	}

	playlists, err := h.Views.PlaylistsWithContents(ctx, ownerID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"playlists": playlists})
}

// Update handles POST /api/v1/playlists/update requests.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var req updatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.PlaylistID == "" || req.Name == "" {
		respondError(ctx, w, apperrors.Validation("playlistId and name are required"))
		return
	}

	playlist, ok := h.requireOwnedPlaylist(w, r, req.PlaylistID)
	if !ok {
		return
	}

	if err := h.Playlists.UpdateDetails(ctx, playlist.ID, req.Name, strings.TrimSpace(req.Description)); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, apperrors.Conflict("a playlist with that name already exists"))
			return
		}
		respondError(ctx, w, apperrors.Internal("failed to update playlist", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "playlist updated"})
}

// Delete handles DELETE /api/v1/playlists requests.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	playlistID := strings.TrimSpace(r.URL.Query().Get("id"))
	if playlistID == "" {
		respondError(ctx, w, apperrors.Validation("id query parameter is required"))
		return
	}

	playlist, ok := h.requireOwnedPlaylist(w, r, playlistID)
	if !ok {
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		respondError(ctx, w, apperrors.Internal("failed to delete playlist", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "playlist deleted"})
}

// AddVideo handles POST /api/v1/playlists/videos/add requests. Adding a video
// that is already a member is a no-op.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, true)
}

// RemoveVideo handles POST /api/v1/playlists/videos/remove requests.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, false)
}

func (h PlaylistHandler) changeMembership(w http.ResponseWriter, r *http.Request, add bool) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var req playlistVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.PlaylistID == "" || req.VideoID == "" {
		respondError(ctx, w, apperrors.Validation("playlistId and videoId are required"))
		return
	}

	playlist, ok := h.requireOwnedPlaylist(w, r, req.PlaylistID)
	if !ok {
		return
	}

	if add {
		if _, err := h.Videos.FindByID(ctx, req.VideoID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				respondError(ctx, w, apperrors.NotFound("video does not exist"))
				return
			}
			respondError(ctx, w, apperrors.Internal("failed to load video", err))
			return
		}
		if err := h.Playlists.AddVideo(ctx, playlist.ID, req.VideoID); err != nil {
			respondError(ctx, w, apperrors.Internal("failed to add video to playlist", err))
			return
		}
		respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "video added"})
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlist.ID, req.VideoID); err != nil {
		respondError(ctx, w, apperrors.Internal("failed to remove video from playlist", err))
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "video removed"})
}

func (h PlaylistHandler) requireOwnedPlaylist(w http.ResponseWriter, r *http.Request, playlistID string) (models.Playlist, bool) {
	ctx := r.Context()

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, apperrors.Unauthorized("authentication required"))
		return models.Playlist{}, false
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperrors.NotFound("playlist does not exist"))
			return models.Playlist{}, false
		}
		respondError(ctx, w, apperrors.Internal("failed to load playlist", err))
		return models.Playlist{}, false
	}

	if playlist.OwnerID != user.ID {
		respondError(ctx, w, apperrors.Unauthorized("only the owner can modify this playlist"))
		return models.Playlist{}, false
	}

	return playlist, true
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updatePlaylistRequest struct {
	PlaylistID  string `json:"playlistId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type playlistVideoRequest struct {
	PlaylistID string `json:"playlistId"`
	VideoID    string `json:"videoId"`
}

type playlistResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"ownerId"`
	Videos      []string  `json:"videos"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toPlaylistResponse(playlist models.Playlist) playlistResponse {
	return playlistResponse{
		ID:          playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		OwnerID:     playlist.OwnerID,
		Videos:      playlist.Videos,
		CreatedAt:   playlist.CreatedAt,
	}
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
