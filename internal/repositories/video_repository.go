package repositories

import (
	"context"

	"github.com/vermapushpendra/FullBackend/internal/models"
)

// VideoRepository defines the data access contract for videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	UpdateDetails(ctx context.Context, videoID, title, description string) error
	UpdateAssets(ctx context.Context, videoID, videoFile, videoPublicID string, duration float64) error
	UpdateThumbnail(ctx context.Context, videoID, thumbnail, thumbnailPublicID string) error
	TogglePublish(ctx context.Context, videoID string) (bool, error)
	IncrementViews(ctx context.Context, videoID string) error
	Delete(ctx context.Context, videoID string) error
}

// CommentRepository defines the data access contract for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	UpdateContent(ctx context.Context, commentID, content string) error
	Delete(ctx context.Context, commentID string) error
}
