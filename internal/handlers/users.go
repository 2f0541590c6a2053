package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/vermapushpendra/FullBackend/internal/apperrors"
	"github.com/vermapushpendra/FullBackend/internal/logging"
	"github.com/vermapushpendra/FullBackend/internal/middleware"
	"github.com/vermapushpendra/FullBackend/internal/repositories"
)

const maxImageUploadBytes = 8 << 20

// UserHandler implements profile management and watch history endpoints.
type UserHandler struct {
	Users  UserStore
	Views  ViewProvider
	Assets AssetStorage
}

// UpdateProfile handles POST /api/v1/users/profile requests.
func (h UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
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

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FullName == "" || req.Email == "" {
		respondError(ctx, w, apperrors.Validation("fullName and email are required"))
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(ctx, w, apperrors.Validation("invalid email address"))
		return
	}

	if err := h.Users.UpdateProfile(ctx, user.ID, req.FullName, req.Email); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, apperrors.Conflict("email already registered"))
			return
		}
		respondError(ctx, w, apperrors.Internal("failed to update profile", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "profile updated"})
}

// UpdateAvatar handles POST /api/v1/users/avatar multipart requests.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar")
}

// UpdateCoverImage handles POST /api/v1/users/cover-image multipart requests.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage")
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	current, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, apperrors.Unauthorized("authentication required"))
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		respondError(ctx, w, apperrors.Validation("expected multipart form with a %s file", field))
		return
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		respondError(ctx, w, apperrors.Validation("%s file is required", field))
		return
	}
	defer file.Close()

	key := fmt.Sprintf("%ss/%s%s", field, uuid.NewString(), path.Ext(header.Filename))
	stored, err := h.Assets.Save(ctx, key, file, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(ctx, w, apperrors.Internal("failed to store image", err))
		return
	}

	user, err := h.Users.FindByID(ctx, current.ID)
	if err != nil {
		respondError(ctx, w, apperrors.Internal("failed to load account", err))
		return
	}

	previousKey := user.AvatarPublicID
	update := h.Users.UpdateAvatar
	if field == "coverImage" {
		previousKey = user.CoverImagePublicID
		update = h.Users.UpdateCoverImage
	}

	if err := update(ctx, current.ID, stored.URL, stored.Key); err != nil {
		respondError(ctx, w, apperrors.Internal("failed to update image reference", err))
		return
	}

	if previousKey != "" {
		if err := h.Assets.Delete(ctx, previousKey); err != nil {
			logger.Warn("failed to delete superseded image", "key", previousKey, "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"url": stored.URL})
}

// WatchHistory handles GET /api/v1/users/history requests. Entries preserve
// the order in which videos were first watched.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
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

	history, err := h.Views.WatchHistory(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"history": history})
}

type updateProfileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}
