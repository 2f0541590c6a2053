package handlers

import (
	"context"
	"io"

	"github.com/vermapushpendra/FullBackend/internal/models"
	"github.com/vermapushpendra/FullBackend/internal/storage"
	"github.com/vermapushpendra/FullBackend/internal/views"
)

// SessionEngine issues, rotates, and revokes authentication tokens.
type SessionEngine interface {
	Login(ctx context.Context, identifier, password string) (models.PublicUser, models.TokenPair, error)
	Refresh(ctx context.Context, presented string) (models.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	IssueTokens(ctx context.Context, userID string) (models.TokenPair, error)
}

// PasswordHasher hashes and verifies login credentials.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, digest string) bool
}

// ViewProvider assembles the denormalized read models served by GET endpoints.
type ViewProvider interface {
	ChannelProfile(ctx context.Context, handle, viewerID string) (views.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]views.Document, error)
	VideoFeed(ctx context.Context, ownerID, sortBy string, descending bool, page views.Pagination) (views.FeedPage, error)
	CommentFeed(ctx context.Context, videoID string, page views.Pagination) (views.CommentPage, error)
	LikedVideos(ctx context.Context, userID string) ([]views.Document, error)
	PlaylistsWithContents(ctx context.Context, ownerID string) ([]views.Document, error)
	ChannelStats(ctx context.Context, channelID string) (views.ChannelStats, error)
	ChannelSubscribers(ctx context.Context, channelID string) ([]views.Document, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]views.Document, error)
}

// AssetStorage persists uploaded media and serves back public references.
type AssetStorage interface {
	Save(ctx context.Context, name string, r io.Reader, contentType string) (storage.StoredObject, error)
	Delete(ctx context.Context, key string) error
}

// UserStore captures the persistence operations required by the account handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	UpdateProfile(ctx context.Context, userID, fullName, email string) error
	UpdatePassword(ctx context.Context, userID, passwordDigest string) error
	UpdateAvatar(ctx context.Context, userID, url, publicID string) error
	UpdateCoverImage(ctx context.Context, userID, url, publicID string) error
	AppendWatchHistory(ctx context.Context, userID, videoID string) (bool, error)
}

// VideoStore captures persistence for video publishing workflows.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	UpdateDetails(ctx context.Context, videoID, title, description string) error
	UpdateAssets(ctx context.Context, videoID, videoFile, videoPublicID string, duration float64) error
	UpdateThumbnail(ctx context.Context, videoID, thumbnail, thumbnailPublicID string) error
	TogglePublish(ctx context.Context, videoID string) (bool, error)
	IncrementViews(ctx context.Context, videoID string) error
	Delete(ctx context.Context, videoID string) error
}

// CommentStore captures persistence for video comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	UpdateContent(ctx context.Context, commentID, content string) error
	Delete(ctx context.Context, commentID string) error
}

// SubscriptionStore captures persistence for subscriber→channel edges.
type SubscriptionStore interface {
	Find(ctx context.Context, subscriberID, channelID string) (models.Subscription, error)
	Create(ctx context.Context, sub models.Subscription) error
	Delete(ctx context.Context, id string) error
}

// LikeStore captures persistence for like edges.
type LikeStore interface {
	FindVideoLike(ctx context.Context, userID, videoID string) (models.Like, error)
	FindCommentLike(ctx context.Context, userID, commentID string) (models.Like, error)
	Create(ctx context.Context, like models.Like) error
	Delete(ctx context.Context, id string) error
}

// PlaylistStore captures persistence for playlists.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	FindByOwnerAndName(ctx context.Context, ownerID, name string) (models.Playlist, error)
	UpdateDetails(ctx context.Context, playlistID, name, description string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	Delete(ctx context.Context, playlistID string) error
}
