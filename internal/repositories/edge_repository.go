package repositories

import (
	"context"

	"github.com/vermapushpendra/FullBackend/internal/models"
)

// SubscriptionRepository defines the data access contract for the directed
// subscriber→channel edges. Toggle logic lives in the handlers; the store
// backstops the one-edge-per-pair invariant with a uniqueness constraint.
type SubscriptionRepository interface {
	Find(ctx context.Context, subscriberID, channelID string) (models.Subscription, error)
	Create(ctx context.Context, sub models.Subscription) error
	Delete(ctx context.Context, id string) error
}

// LikeRepository defines the data access contract for like edges. A like
// targets exactly one of a video or a comment.
type LikeRepository interface {
	FindVideoLike(ctx context.Context, userID, videoID string) (models.Like, error)
	FindCommentLike(ctx context.Context, userID, commentID string) (models.Like, error)
	Create(ctx context.Context, like models.Like) error
	Delete(ctx context.Context, id string) error
}

// PlaylistRepository defines the data access contract for playlists. Video
// membership is a set held on the playlist record.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	FindByOwnerAndName(ctx context.Context, ownerID, name string) (models.Playlist, error)
	UpdateDetails(ctx context.Context, playlistID, name, description string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	Delete(ctx context.Context, playlistID string) error
}
