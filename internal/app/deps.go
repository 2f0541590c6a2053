package app

import (
	"context"
	"time"

	"github.com/vermapushpendra/FullBackend/internal/auth"
	"github.com/vermapushpendra/FullBackend/internal/config"
	"github.com/vermapushpendra/FullBackend/internal/db"
	"github.com/vermapushpendra/FullBackend/internal/handlers"
	"github.com/vermapushpendra/FullBackend/internal/middleware"
	"github.com/vermapushpendra/FullBackend/internal/repositories"
	"github.com/vermapushpendra/FullBackend/internal/storage"
	"github.com/vermapushpendra/FullBackend/internal/views"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	users := repositories.NewPostgresUserRepository(pool)
	tokens := auth.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	creds := auth.NewCredentialVerifier()
	engine := auth.NewEngine(users, tokens, creds)

	assets, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	builder := views.NewBuilder(repositories.NewPostgresDocumentSource(pool))

	limiter := middleware.NewIPRateLimiter(
		cfg.AuthRateLimit.Requests,
		cfg.AuthRateLimit.Window,
		cfg.AuthRateLimit.Burst,
		10*time.Minute,
	)

	return handlers.Dependencies{
		Users:         users,
		Sessions:      engine,
		Passwords:     creds,
		Auth:          engine,
		Views:         builder,
		Assets:        assets,
		Videos:        repositories.NewPostgresVideoRepository(pool),
		Comments:      repositories.NewPostgresCommentRepository(pool),
		Likes:         repositories.NewPostgresLikeRepository(pool),
		Subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		Playlists:     repositories.NewPostgresPlaylistRepository(pool),
		AuthLimiter:   limiter,
	}, nil
}
