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

// LikeHandler implements like toggles and the liked-videos listing.
type LikeHandler struct {
	Likes    LikeStore
	Videos   VideoStore
	Comments CommentStore
	Views    ViewProvider
	NowFunc  func() time.Time
}

// ToggleVideoLike handles POST /api/v1/likes/video requests.
func (h LikeHandler) ToggleVideoLike(w http.ResponseWriter, r *http.Request) {
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

	var req likeVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	videoID := strings.TrimSpace(req.VideoID)
	if videoID == "" {
		respondError(ctx, w, apperrors.Validation("videoId is required"))
		return
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperrors.NotFound("video does not exist"))
			return
		}
		respondError(ctx, w, apperrors.Internal("failed to load video", err))
		return
	}

	h.toggle(w, r, user.ID, models.Like{
		ID:        uuid.NewString(),
		LikedBy:   user.ID,
		VideoID:   videoID,
		CreatedAt: h.now(),
	}, func() (models.Like, error) {
		return h.Likes.FindVideoLike(ctx, user.ID, videoID)
	})
}

// ToggleCommentLike handles POST /api/v1/likes/comment requests.
func (h LikeHandler) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
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

	var req likeCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	commentID := strings.TrimSpace(req.CommentID)
	if commentID == "" {
		respondError(ctx, w, apperrors.Validation("commentId is required"))
		return
	}

	if _, err := h.Comments.FindByID(ctx, commentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperrors.NotFound("comment does not exist"))
			return
		}
		respondError(ctx, w, apperrors.Internal("failed to load comment", err))
		return
	}

	h.toggle(w, r, user.ID, models.Like{
		ID:        uuid.NewString(),
		LikedBy:   user.ID,
		CommentID: commentID,
		CreatedAt: h.now(),
	}, func() (models.Like, error) {
		return h.Likes.FindCommentLike(ctx, user.ID, commentID)
	})
}

// toggle removes an existing like edge or creates a fresh one. Best-effort
// read-then-write; the store's partial unique indexes backstop races.
func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, userID string, fresh models.Like, find func() (models.Like, error)) {
	ctx := r.Context()

	existing, err := find()
	switch {
	case err == nil:
		if err := h.Likes.Delete(ctx, existing.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperrors.Internal("failed to remove like", err))
			return
		}
		respondJSON(ctx, w, http.StatusOK, toggleLikeResponse{Liked: false})
	case errors.Is(err, repositories.ErrNotFound):
		if err := h.Likes.Create(ctx, fresh); err != nil && !errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, apperrors.Internal("failed to create like", err))
			return
		}
		respondJSON(ctx, w, http.StatusOK, toggleLikeResponse{Liked: true})
	default:
		respondError(ctx, w, apperrors.Internal("failed to look up like", err))
	}
}

// LikedVideos handles GET /api/v1/likes/videos requests. Comment likes never
// appear in the result.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, apperrors.Unauthorized("authentication required"))
		return
	}

	liked, err := h.Views.LikedVideos(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"videos": liked})
}

type likeVideoRequest struct {
	VideoID string `json:"videoId"`
}

type likeCommentRequest struct {
	CommentID string `json:"commentId"`
}

type toggleLikeResponse struct {
	Liked bool `json:"liked"`
}

func (h LikeHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
