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
	"github.com/vermapushpendra/FullBackend/internal/views"
)

// CommentHandler implements comment endpoints.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	Views    ViewProvider
	NowFunc  func() time.Time
}

// List handles GET /api/v1/comments requests.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	query := r.URL.Query()

	videoID := strings.TrimSpace(query.Get("videoId"))
	if videoID == "" {
		respondError(ctx, w, apperrors.Validation("videoId query parameter is required"))
		return
	}

	page := views.NormalizePagination(query.Get("page"), query.Get("limit"))

	feed, err := h.Views.CommentFeed(ctx, videoID, page)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, feed)
}

// Add handles POST /api/v1/comments requests.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
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

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.VideoID == "" || req.Content == "" {
		respondError(ctx, w, apperrors.Validation("videoId and content are required"))
		return
	}

	if _, err := h.Videos.FindByID(ctx, req.VideoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperrors.NotFound("video does not exist"))
			return
		}
		respondError(ctx, w, apperrors.Internal("failed to load video", err))
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		Content:   req.Content,
		OwnerID:   user.ID,
		VideoID:   req.VideoID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondError(ctx, w, apperrors.Internal("failed to create comment", err))
		return
	}

	respondJSON(ctx, w, http.StatusCreated, toCommentResponse(comment))
}

// Update handles POST /api/v1/comments/update requests.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var req updateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.CommentID == "" || req.Content == "" {
		respondError(ctx, w, apperrors.Validation("commentId and content are required"))
		return
	}

	comment, ok := h.requireOwnedComment(w, r, req.CommentID)
	if !ok {
		return
	}

	if err := h.Comments.UpdateContent(ctx, comment.ID, req.Content); err != nil {
		respondError(ctx, w, apperrors.Internal("failed to update comment", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "comment updated"})
}

// Delete handles DELETE /api/v1/comments requests.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	commentID := strings.TrimSpace(r.URL.Query().Get("id"))
	if commentID == "" {
		respondError(ctx, w, apperrors.Validation("id query parameter is required"))
		return
	}

	comment, ok := h.requireOwnedComment(w, r, commentID)
	if !ok {
		return
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		respondError(ctx, w, apperrors.Internal("failed to delete comment", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "comment deleted"})
}

func (h CommentHandler) requireOwnedComment(w http.ResponseWriter, r *http.Request, commentID string) (models.Comment, bool) {
	ctx := r.Context()

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, apperrors.Unauthorized("authentication required"))
		return models.Comment{}, false
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperrors.NotFound("comment does not exist"))
			return models.Comment{}, false
		}
		respondError(ctx, w, apperrors.Internal("failed to load comment", err))
		return models.Comment{}, false
	}

	if comment.OwnerID != user.ID {
		respondError(ctx, w, apperrors.Unauthorized("only the author can modify this comment"))
		return models.Comment{}, false
	}

	return comment, true
}

type addCommentRequest struct {
	VideoID string `json:"videoId"`
	Content string `json:"content"`
}

type updateCommentRequest struct {
	CommentID string `json:"commentId"`
	Content   string `json:"content"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	OwnerID   string    `json:"ownerId"`
	VideoID   string    `json:"videoId"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCommentResponse(comment models.Comment) commentResponse {
	return commentResponse{
		ID:        comment.ID,
		Content:   comment.Content,
		OwnerID:   comment.OwnerID,
		VideoID:   comment.VideoID,
		CreatedAt: comment.CreatedAt,
	}
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
