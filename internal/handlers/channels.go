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

// ChannelHandler implements channel profile, statistics, and subscription
// endpoints.
type ChannelHandler struct {
	Views         ViewProvider
	Subscriptions SubscriptionStore
	NowFunc       func() time.Time
}

// Profile handles GET /api/v1/channels/profile requests. When the caller is
// authenticated, the response reports whether they subscribe to the channel.
func (h ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	handle := strings.TrimSpace(strings.ToLower(r.URL.Query().Get("handle")))
	if handle == "" {
		respondError(ctx, w, apperrors.Validation("handle query parameter is required"))
		return
	}

	viewerID := ""
	if viewer, ok := middleware.UserFromContext(ctx); ok {
		viewerID = viewer.ID
	}

	profile, err := h.Views.ChannelProfile(ctx, handle, viewerID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, profile)
}

// Stats handles GET /api/v1/channels/stats requests.
func (h ChannelHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	channelID := strings.TrimSpace(r.URL.Query().Get("channelId"))
	if channelID == "" {
		respondError(ctx, w, apperrors.Validation("channelId query parameter is required"))
		return
	}

	stats, err := h.Views.ChannelStats(ctx, channelID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, stats)
}

// Subscribers handles GET /api/v1/channels/subscribers requests.
func (h ChannelHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	channelID := strings.TrimSpace(r.URL.Query().Get("channelId"))
	if channelID == "" {
		respondError(ctx, w, apperrors.Validation("channelId query parameter is required"))
		return
	}

	subscribers, err := h.Views.ChannelSubscribers(ctx, channelID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"subscribers":      subscribers,
		"subscribersCount": len(subscribers),
	})
}

// SubscribedTo handles GET /api/v1/channels/subscribed requests. Without a
// subscriberId query parameter the authenticated caller's subscriptions are
// returned.
func (h ChannelHandler) SubscribedTo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	subscriberID := strings.TrimSpace(r.URL.Query().Get("subscriberId"))
	if subscriberID == "" {
		user, ok := middleware.UserFromContext(ctx)
		if !ok {
			respondError(ctx, w, apperrors.Validation("subscriberId query parameter is required"))
			return
		}
		subscriberID = user.ID
	}

	channels, err := h.Views.SubscribedChannels(ctx, subscriberID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"channels": channels})
}

// ToggleSubscription handles POST /api/v1/channels/subscription requests. The
// toggle is a best-effort read-then-write; the store's uniqueness constraint
// backstops concurrent toggles for the same pair.
func (h ChannelHandler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
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

	var req toggleSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	channelID := strings.TrimSpace(req.ChannelID)
	if channelID == "" {
		respondError(ctx, w, apperrors.Validation("channelId is required"))
		return
	}
	if channelID == user.ID {
		respondError(ctx, w, apperrors.Validation("cannot subscribe to your own channel"))
		return
	}

	existing, err := h.Subscriptions.Find(ctx, user.ID, channelID)
	switch {
	case err == nil:
		if err := h.Subscriptions.Delete(ctx, existing.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperrors.Internal("failed to remove subscription", err))
			return
		}
		respondJSON(ctx, w, http.StatusOK, toggleSubscriptionResponse{Subscribed: false})
	case errors.Is(err, repositories.ErrNotFound):
		sub := models.Subscription{
			ID:           uuid.NewString(),
			SubscriberID: user.ID,
			ChannelID:    channelID,
			CreatedAt:    h.now(),
		}
		if err := h.Subscriptions.Create(ctx, sub); err != nil && !errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, apperrors.Internal("failed to create subscription", err))
			return
		}
		respondJSON(ctx, w, http.StatusOK, toggleSubscriptionResponse{Subscribed: true})
	default:
		respondError(ctx, w, apperrors.Internal("failed to look up subscription", err))
	}
}

type toggleSubscriptionRequest struct {
	ChannelID string `json:"channelId"`
}

type toggleSubscriptionResponse struct {
	Subscribed bool `json:"subscribed"`
}

func (h ChannelHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
