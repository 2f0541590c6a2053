package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vermapushpendra/FullBackend/internal/apperrors"
	"github.com/vermapushpendra/FullBackend/internal/logging"
	"github.com/vermapushpendra/FullBackend/internal/middleware"
	"github.com/vermapushpendra/FullBackend/internal/models"
	"github.com/vermapushpendra/FullBackend/internal/repositories"
	"github.com/vermapushpendra/FullBackend/internal/views"
)

const maxVideoUploadBytes = 512 << 20

// VideoHandler implements video publishing, playback, and feed endpoints.
type VideoHandler struct {
	Videos  VideoStore
	Users   UserStore
	Views   ViewProvider
	Assets  AssetStorage
	NowFunc func() time.Time
}

// Feed handles GET /api/v1/videos/feed requests.
func (h VideoHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	query := r.URL.Query()

	ownerID := strings.TrimSpace(query.Get("ownerId"))
	if ownerID == "" {
		respondError(ctx, w, apperrors.Validation("ownerId query parameter is required"))
		return
	}

	page := views.NormalizePagination(query.Get("page"), query.Get("limit"))
	descending := query.Get("order") != "asc"

	feed, err := h.Views.VideoFeed(ctx, ownerID, query.Get("sortBy"), descending, page)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, feed)
}

// Get handles GET /api/v1/videos requests. For authenticated viewers the view
// counter is incremented at most once per viewer; watch-history membership is
// the dedup key.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	videoID := strings.TrimSpace(r.URL.Query().Get("id"))
	if videoID == "" {
		respondError(ctx, w, apperrors.Validation("id query parameter is required"))
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperrors.NotFound("video does not exist"))
			return
		}
		respondError(ctx, w, apperrors.Internal("failed to load video", err))
		return
	}

	if viewer, ok := middleware.UserFromContext(ctx); ok {
		appended, err := h.Users.AppendWatchHistory(ctx, viewer.ID, video.ID)
		if err != nil {
			logger.Warn("failed to record watch", "videoId", video.ID, "error", err)
		} else if appended {
			if err := h.Videos.IncrementViews(ctx, video.ID); err != nil {
				logger.Warn("failed to increment views", "videoId", video.ID, "error", err)
			} else {
				video.Views++
			}
		}
	}

	respondJSON(ctx, w, http.StatusOK, toVideoResponse(video))
}

// Publish handles POST /api/v1/videos/publish multipart requests.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, span := logging.StartSpan(r.Context(), "video.publish")
	defer span.End()
	logger := logging.FromContext(ctx)

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, apperrors.Unauthorized("authentication required"))
		return
	}

	if err := r.ParseMultipartForm(maxVideoUploadBytes); err != nil {
		respondError(ctx, w, apperrors.Validation("expected multipart form with videoFile and thumbnail"))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		respondError(ctx, w, apperrors.Validation("title is required"))
		return
	}
	description := strings.TrimSpace(r.FormValue("description"))

	duration := 0.0
	if raw := strings.TrimSpace(r.FormValue("duration")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			respondError(ctx, w, apperrors.Validation("duration must be a non-negative number"))
			return
		}
		duration = parsed
	}

	videoFile, videoHeader, err := r.FormFile("videoFile")
	if err != nil {
		respondError(ctx, w, apperrors.Validation("videoFile is required"))
		return
	}
	defer videoFile.Close()

	thumbFile, thumbHeader, err := r.FormFile("thumbnail")
	if err != nil {
		respondError(ctx, w, apperrors.Validation("thumbnail is required"))
		return
	}
	defer thumbFile.Close()

	videoID := uuid.NewString()

	videoKey := fmt.Sprintf("videos/%s%s", videoID, path.Ext(videoHeader.Filename))
	storedVideo, err := h.Assets.Save(ctx, videoKey, videoFile, videoHeader.Header.Get("Content-Type"))
	if err != nil {
		respondError(ctx, w, apperrors.Internal("failed to store video file", err))
		return
	}

	thumbKey := fmt.Sprintf("thumbnails/%s%s", videoID, path.Ext(thumbHeader.Filename))
	storedThumb, err := h.Assets.Save(ctx, thumbKey, thumbFile, thumbHeader.Header.Get("Content-Type"))
	if err != nil {
		if cleanupErr := h.Assets.Delete(ctx, storedVideo.Key); cleanupErr != nil {
			logger.Warn("failed to delete orphaned video file", "key", storedVideo.Key, "error", cleanupErr)
		}
		respondError(ctx, w, apperrors.Internal("failed to store thumbnail", err))
		return
	}

	now := h.now()
	video := models.Video{
		ID:                videoID,
		VideoFile:         storedVideo.URL,
		VideoPublicID:     storedVideo.Key,
		Thumbnail:         storedThumb.URL,
		ThumbnailPublicID: storedThumb.Key,
		Title:             title,
		Description:       description,
		Duration:          duration,
		IsPublished:       true,
		OwnerID:           user.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		for _, key := range []string{storedVideo.Key, storedThumb.Key} {
			if cleanupErr := h.Assets.Delete(ctx, key); cleanupErr != nil {
				logger.Warn("failed to delete orphaned asset", "key", key, "error", cleanupErr)
			}
		}
		respondError(ctx, w, apperrors.Internal("failed to create video", err))
		return
	}

	respondJSON(ctx, w, http.StatusCreated, toVideoResponse(video))
}

// UpdateDetails handles POST /api/v1/videos/details requests.
func (h VideoHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var req updateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.VideoID == "" || req.Title == "" {
		respondError(ctx, w, apperrors.Validation("videoId and title are required"))
		return
	}

	video, ok := h.requireOwnedVideo(w, r, req.VideoID)
	if !ok {
		return
	}

	if err := h.Videos.UpdateDetails(ctx, video.ID, req.Title, strings.TrimSpace(req.Description)); err != nil {
		respondError(ctx, w, apperrors.Internal("failed to update video", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "video updated"})
}

// UpdateVideoFile handles POST /api/v1/videos/file multipart requests,
// replacing the stored media file of an existing video.
func (h VideoHandler) UpdateVideoFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := r.ParseMultipartForm(maxVideoUploadBytes); err != nil {
		respondError(ctx, w, apperrors.Validation("expected multipart form with a videoFile"))
		return
	}

	videoID := strings.TrimSpace(r.FormValue("videoId"))
	if videoID == "" {
		respondError(ctx, w, apperrors.Validation("videoId is required"))
		return
	}

	duration := 0.0
	if raw := strings.TrimSpace(r.FormValue("duration")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			respondError(ctx, w, apperrors.Validation("duration must be a non-negative number"))
			return
		}
		duration = parsed
	}

	video, ok := h.requireOwnedVideo(w, r, videoID)
	if !ok {
		return
	}

	file, header, err := r.FormFile("videoFile")
	if err != nil {
		respondError(ctx, w, apperrors.Validation("videoFile is required"))
		return
	}
	defer file.Close()

	key := fmt.Sprintf("videos/%s%s", uuid.NewString(), path.Ext(header.Filename))
	stored, err := h.Assets.Save(ctx, key, file, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(ctx, w, apperrors.Internal("failed to store video file", err))
		return
	}

	if duration == 0 {
		duration = video.Duration
	}

	if err := h.Videos.UpdateAssets(ctx, video.ID, stored.URL, stored.Key, duration); err != nil {
		if cleanupErr := h.Assets.Delete(ctx, stored.Key); cleanupErr != nil {
			logger.Warn("failed to delete orphaned video file", "key", stored.Key, "error", cleanupErr)
		}
		respondError(ctx, w, apperrors.Internal("failed to update video file", err))
		return
	}

	if video.VideoPublicID != "" {
		if err := h.Assets.Delete(ctx, video.VideoPublicID); err != nil {
			logger.Warn("failed to delete superseded video file", "key", video.VideoPublicID, "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"videoFile": stored.URL})
}

// UpdateThumbnail handles POST /api/v1/videos/thumbnail multipart requests.
func (h VideoHandler) UpdateThumbnail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		respondError(ctx, w, apperrors.Validation("expected multipart form with a thumbnail file"))
		return
	}

	videoID := strings.TrimSpace(r.FormValue("videoId"))
	if videoID == "" {
		respondError(ctx, w, apperrors.Validation("videoId is required"))
		return
	}

	video, ok := h.requireOwnedVideo(w, r, videoID)
	if !ok {
		return
	}

	file, header, err := r.FormFile("thumbnail")
	if err != nil {
		respondError(ctx, w, apperrors.Validation("thumbnail file is required"))
		return
	}
	defer file.Close()

	key := fmt.Sprintf("thumbnails/%s%s", uuid.NewString(), path.Ext(header.Filename))
	stored, err := h.Assets.Save(ctx, key, file, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(ctx, w, apperrors.Internal("failed to store thumbnail", err))
		return
	}

	if err := h.Videos.UpdateThumbnail(ctx, video.ID, stored.URL, stored.Key); err != nil {
		respondError(ctx, w, apperrors.Internal("failed to update thumbnail", err))
		return
	}

	if video.ThumbnailPublicID != "" {
		if err := h.Assets.Delete(ctx, video.ThumbnailPublicID); err != nil {
			logger.Warn("failed to delete superseded thumbnail", "key", video.ThumbnailPublicID, "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"thumbnail": stored.URL})
}

// TogglePublish handles POST /api/v1/videos/toggle-publish requests.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var req videoIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.VideoID == "" {
		respondError(ctx, w, apperrors.Validation("videoId is required"))
		return
	}

	video, ok := h.requireOwnedVideo(w, r, req.VideoID)
	if !ok {
		return
	}

	published, err := h.Videos.TogglePublish(ctx, video.ID)
	if err != nil {
		respondError(ctx, w, apperrors.Internal("failed to toggle publish state", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"isPublished": published})
}

// Delete handles DELETE /api/v1/videos requests. Object-storage cleanup is
// non-critical: failures are logged and the deletion still succeeds.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, span := logging.StartSpan(r.Context(), "video.delete")
	defer span.End()
	logger := logging.FromContext(ctx)

	videoID := strings.TrimSpace(r.URL.Query().Get("id"))
	if videoID == "" {
		respondError(ctx, w, apperrors.Validation("id query parameter is required"))
		return
	}

	video, ok := h.requireOwnedVideo(w, r, videoID)
	if !ok {
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		respondError(ctx, w, apperrors.Internal("failed to delete video", err))
		return
	}

	for _, key := range []string{video.VideoPublicID, video.ThumbnailPublicID} {
		if key == "" {
			continue
		}
		if err := h.Assets.Delete(ctx, key); err != nil {
			logger.Warn("failed to delete video asset", "key", key, "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "video deleted"})
}

// requireOwnedVideo loads the video and verifies the authenticated caller owns
// it, writing the error response itself when either check fails.
func (h VideoHandler) requireOwnedVideo(w http.ResponseWriter, r *http.Request, videoID string) (models.Video, bool) {
	ctx := r.Context()

	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, apperrors.Unauthorized("authentication required"))
		return models.Video{}, false
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperrors.NotFound("video does not exist"))
			return models.Video{}, false
		}
		respondError(ctx, w, apperrors.Internal("failed to load video", err))
		return models.Video{}, false
	}

	if video.OwnerID != user.ID {
		respondError(ctx, w, apperrors.Unauthorized("only the owner can modify this video"))
		return models.Video{}, false
	}

	return video, true
}

type updateVideoRequest struct {
	VideoID     string `json:"videoId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type videoIDRequest struct {
	VideoID string `json:"videoId"`
}

type videoResponse struct {
	ID          string    `json:"id"`
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toVideoResponse(video models.Video) videoResponse {
	return videoResponse{
		ID:          video.ID,
		VideoFile:   video.VideoFile,
		Thumbnail:   video.Thumbnail,
		Title:       video.Title,
		Description: video.Description,
		Duration:    video.Duration,
		Views:       video.Views,
		IsPublished: video.IsPublished,
		OwnerID:     video.OwnerID,
		CreatedAt:   video.CreatedAt,
	}
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
