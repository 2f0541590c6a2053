package repositories

import (
	"context"

	"github.com/vermapushpendra/FullBackend/internal/models"
)

// UserRepository defines the data access contract for users. The refresh
// token and watch history live on the user record itself, so their updates
// are single-row atomic writes.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (models.User, error)
	UpdateRefreshToken(ctx context.Context, userID, refreshToken string) error
	UpdateProfile(ctx context.Context, userID, fullName, email string) error
	UpdatePassword(ctx context.Context, userID, passwordDigest string) error
	UpdateAvatar(ctx context.Context, userID, url, publicID string) error
	UpdateCoverImage(ctx context.Context, userID, url, publicID string) error
	AppendWatchHistory(ctx context.Context, userID, videoID string) (bool, error)
}
