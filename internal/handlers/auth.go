package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vermapushpendra/FullBackend/internal/apperrors"
	"github.com/vermapushpendra/FullBackend/internal/logging"
	"github.com/vermapushpendra/FullBackend/internal/middleware"
	"github.com/vermapushpendra/FullBackend/internal/models"
	"github.com/vermapushpendra/FullBackend/internal/repositories"
)

// AuthHandler implements account registration and session endpoints.
type AuthHandler struct {
	Users     UserStore
	Sessions  SessionEngine
	Passwords PasswordHasher
	Limiter   RateLimiter
	NowFunc   func() time.Time
}

// Register handles POST /api/v1/auth/register requests.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "register") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid register payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)

	if req.Username == "" || req.Email == "" || req.FullName == "" || req.Password == "" {
		respondError(ctx, w, apperrors.Validation("username, email, fullName, and password are required"))
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(ctx, w, apperrors.Validation("invalid email address"))
		return
	}
	if len(req.Password) < 8 {
		respondError(ctx, w, apperrors.Validation("password must be at least 8 characters"))
		return
	}

	digest, err := h.Passwords.Hash(req.Password)
	if err != nil {
		respondError(ctx, w, apperrors.Internal("failed to secure password", err))
		return
	}

	now := h.now()
	user := models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		Password:     digest,
		WatchHistory: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, apperrors.Conflict("username or email already registered"))
			return
		}
		respondError(ctx, w, apperrors.Internal("failed to create account", err))
		return
	}

	tokens, err := h.Sessions.IssueTokens(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setAuthCookies(w, tokens)
	respondJSON(ctx, w, http.StatusCreated, sessionResponse{User: user.Public(), Tokens: tokens})
}

// Login handles POST /api/v1/auth/login requests. The identifier may be a
// username or an email address.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "login") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	identifier := strings.TrimSpace(strings.ToLower(req.Identifier))
	if identifier == "" {
		identifier = strings.TrimSpace(strings.ToLower(req.Username))
	}
	if identifier == "" {
		identifier = strings.TrimSpace(strings.ToLower(req.Email))
	}

	user, tokens, err := h.Sessions.Login(ctx, identifier, req.Password)
	if err != nil {
		logger.Warn("login rejected", "identifier", identifier, "error", err)
		respondError(ctx, w, err)
		return
	}

	setAuthCookies(w, tokens)
	respondJSON(ctx, w, http.StatusOK, sessionResponse{User: user, Tokens: tokens})
}

// Refresh handles POST /api/v1/auth/refresh requests. The refresh token is
// read from the refreshToken cookie, falling back to the request body.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "refresh") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	presented := ""
	if cookie, err := r.Cookie("refreshToken"); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			presented = strings.TrimSpace(req.RefreshToken)
		}
	}

	tokens, err := h.Sessions.Refresh(ctx, presented)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setAuthCookies(w, tokens)
	respondJSON(ctx, w, http.StatusOK, tokenResponse{Tokens: tokens})
}

// Logout handles POST /api/v1/auth/logout requests.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Sessions.Logout(ctx, user.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	clearAuthCookies(w)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me handles GET /api/v1/auth/me requests.
func (h AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
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

	respondJSON(ctx, w, http.StatusOK, map[string]models.PublicUser{"user": user})
}

// ChangePassword handles POST /api/v1/auth/change-password requests.
func (h AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	current, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, apperrors.Unauthorized("authentication required"))
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		respondError(ctx, w, apperrors.Validation("oldPassword and newPassword are required"))
		return
	}
	if len(req.NewPassword) < 8 {
		respondError(ctx, w, apperrors.Validation("password must be at least 8 characters"))
		return
	}

	user, err := h.Users.FindByID(ctx, current.ID)
	if err != nil {
		respondError(ctx, w, apperrors.Internal("failed to load account", err))
		return
	}

	if !h.Passwords.Compare(req.OldPassword, user.Password) {
		respondError(ctx, w, apperrors.Unauthorized("current password is incorrect"))
		return
	}

	digest, err := h.Passwords.Hash(req.NewPassword)
	if err != nil {
		respondError(ctx, w, apperrors.Internal("failed to secure password", err))
		return
	}

	if err := h.Users.UpdatePassword(ctx, user.ID, digest); err != nil {
		respondError(ctx, w, apperrors.Internal("failed to update password", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "password changed"})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type sessionResponse struct {
	User   models.PublicUser `json:"user"`
	Tokens models.TokenPair  `json:"tokens"`
}

type tokenResponse struct {
	Tokens models.TokenPair `json:"tokens"`
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func setAuthCookies(w http.ResponseWriter, tokens models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.AccessExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    tokens.RefreshToken,
		Path:     "/",
		Expires:  tokens.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
