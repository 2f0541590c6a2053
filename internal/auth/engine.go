package auth

import (
	"context"
	"errors"

	"github.com/vermapushpendra/FullBackend/internal/apperrors"
	"github.com/vermapushpendra/FullBackend/internal/models"
	"github.com/vermapushpendra/FullBackend/internal/repositories"
)

// UserStore is the session store adapter: it resolves user records and
// persists the single currently-valid refresh token on them.
type UserStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (models.User, error)
	UpdateRefreshToken(ctx context.Context, userID, refreshToken string) error
}

// Engine orchestrates login, logout, refresh rotation, and access-token
// authentication. Exactly one refresh token is live per user at any time;
// issuing or clearing always fully replaces the stored value.
type Engine struct {
	users  UserStore
	tokens *TokenService
	creds  *CredentialVerifier
}

// NewEngine constructs a session token engine.
func NewEngine(users UserStore, tokens *TokenService, creds *CredentialVerifier) *Engine {
	if users == nil || tokens == nil || creds == nil {
		panic("auth: engine dependencies must not be nil")
	}
	return &Engine{users: users, tokens: tokens, creds: creds}
}

// IssueTokens mints a fresh access/refresh pair for the user and overwrites
// the stored refresh token. The overwrite is the revocation point for every
// previously issued refresh token for that user.
func (e *Engine) IssueTokens(ctx context.Context, userID string) (models.TokenPair, error) {
	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return models.TokenPair{}, apperrors.Internal("failed to load user for token issuance", err)
	}

	access, accessExpiry, err := e.tokens.SignAccess(user)
	if err != nil {
		return models.TokenPair{}, apperrors.Internal("failed to sign access token", err)
	}

	refresh, refreshExpiry, err := e.tokens.SignRefresh(user.ID)
	if err != nil {
		return models.TokenPair{}, apperrors.Internal("failed to sign refresh token", err)
	}

	if err := e.users.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		return models.TokenPair{}, apperrors.Internal("failed to persist refresh token", err)
	}

	return models.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

// Login authenticates a user by handle or email and issues a token pair.
func (e *Engine) Login(ctx context.Context, identifier, password string) (models.PublicUser, models.TokenPair, error) {
	if identifier == "" || password == "" {
		return models.PublicUser{}, models.TokenPair{}, apperrors.Validation("username or email and password are required")
	}

	user, err := e.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.PublicUser{}, models.TokenPair{}, apperrors.NotFound("user does not exist")
		}
		return models.PublicUser{}, models.TokenPair{}, apperrors.Internal("failed to look up user", err)
	}

	if !e.creds.Compare(password, user.Password) {
		return models.PublicUser{}, models.TokenPair{}, apperrors.Unauthorized("invalid user credentials")
	}

	pair, err := e.IssueTokens(ctx, user.ID)
	if err != nil {
		return models.PublicUser{}, models.TokenPair{}, err
	}

	return user.Public(), pair, nil
}

// Refresh rotates a presented refresh token into a brand-new pair. A token
// that verifies cryptographically but no longer matches the stored value has
// been revoked by an intervening login, refresh, or logout and is rejected.
func (e *Engine) Refresh(ctx context.Context, presented string) (models.TokenPair, error) {
	if presented == "" {
		return models.TokenPair{}, apperrors.Unauthorized("refresh token is required")
	}

	claims, err := e.tokens.VerifyRefresh(presented)
	if err != nil {
		return models.TokenPair{}, apperrors.Unauthorized("refresh token is expired or invalid")
	}

	user, err := e.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.TokenPair{}, apperrors.Unauthorized("refresh token is expired or invalid")
		}
		return models.TokenPair{}, apperrors.Internal("failed to look up user", err)
	}

	// Exact-equality comparison against the stored value, not cryptographic
	// verification alone: this is the revocation check.
	if user.RefreshToken != presented {
		return models.TokenPair{}, apperrors.Unauthorized("refresh token has been revoked")
	}

	return e.IssueTokens(ctx, user.ID)
}

// Logout clears the stored refresh token, unconditionally invalidating any
// outstanding refresh token for the user.
func (e *Engine) Logout(ctx context.Context, userID string) error {
	if err := e.users.UpdateRefreshToken(ctx, userID, ""); err != nil {
		return apperrors.Internal("failed to clear refresh token", err)
	}
	return nil
}

// Authenticate verifies an access token and loads the referenced user for
// downstream authorization. No revocation check is performed: access tokens
// are trusted until natural expiry, which bounds the exposure window after a
// logout.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (models.PublicUser, error) {
	if accessToken == "" {
		return models.PublicUser{}, apperrors.Unauthorized("access token is required")
	}

	claims, err := e.tokens.VerifyAccess(accessToken)
	if err != nil {
		return models.PublicUser{}, apperrors.Unauthorized("access token is expired or invalid")
	}

	user, err := e.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.PublicUser{}, apperrors.Unauthorized("access token references an unknown user")
		}
		return models.PublicUser{}, apperrors.Internal("failed to look up user", err)
	}

	return user.Public(), nil
}
