package views

import (
	"context"

	"github.com/vermapushpendra/FullBackend/internal/apperrors"
)

// ownerIdentity is the minimal public identity attached wherever a view
// exposes the owner of a joined record.
var ownerIdentity = []string{"id", "username", "fullName", "avatar"}

// videoFeedSortFields whitelists caller-supplied sort keys for the video feed.
var videoFeedSortFields = map[string]bool{
	"title":     true,
	"createdAt": true,
	"views":     true,
	"duration":  true,
}

// Builder produces the response-ready aggregates of the platform. Every view
// is a composition of pipeline stages over the normalized collections.
type Builder struct {
	src Source
}

// NewBuilder constructs a view builder over the provided source.
func NewBuilder(src Source) *Builder {
	if src == nil {
		panic("views: source must not be nil")
	}
	return &Builder{src: src}
}

// ChannelProfile is the public channel page for a handle: subscriber counts
// plus whether the requesting viewer is subscribed.
type ChannelProfile struct {
	ID                   string `json:"id"`
	Username             string `json:"username"`
	FullName             string `json:"fullName"`
	Avatar               string `json:"avatar"`
	CoverImage           string `json:"coverImage"`
	SubscribersCount     int    `json:"subscribersCount"`
	ChannelsSubscribedTo int    `json:"channelsSubscribedToCount"`
	IsSubscribed         bool   `json:"isSubscribed"`
}

// ChannelProfile assembles the channel page for the given handle. viewerID
// identifies the requesting user and may be empty for anonymous viewers.
func (b *Builder) ChannelProfile(ctx context.Context, handle, viewerID string) (ChannelProfile, error) {
	docs, err := Run(ctx, b.src, "users", []Stage{
		Match{Field: "username", Value: handle},
		Join{From: "subscriptions", LocalField: "id", ForeignField: "channel", As: "subscribers", Mode: JoinMany},
		Join{From: "subscriptions", LocalField: "id", ForeignField: "subscriber", As: "subscribedTo", Mode: JoinMany},
	})
	if err != nil {
		return ChannelProfile{}, apperrors.Internal("failed to build channel profile", err)
	}
	if len(docs) == 0 {
		return ChannelProfile{}, apperrors.NotFound("channel does not exist")
	}

	doc := docs[0]
	subscribers, _ := doc["subscribers"].([]Document)
	subscribedTo, _ := doc["subscribedTo"].([]Document)

	isSubscribed := false
	if viewerID != "" {
		for _, edge := range subscribers {
			if equalValues(edge["subscriber"], viewerID) {
				isSubscribed = true
				break
			}
		}
	}

	return ChannelProfile{
		ID:                   stringValue(doc["id"]),
		Username:             stringValue(doc["username"]),
		FullName:             stringValue(doc["fullName"]),
		Avatar:               stringValue(doc["avatar"]),
		CoverImage:           stringValue(doc["coverImage"]),
		SubscribersCount:     len(subscribers),
		ChannelsSubscribedTo: len(subscribedTo),
		IsSubscribed:         isSubscribed,
	}, nil
}

// WatchHistory returns the user's watched videos in exactly the stored
// sequence order, each with its owner's public identity attached. The builder
// never re-sorts the history.
func (b *Builder) WatchHistory(ctx context.Context, userID string) ([]Document, error) {
	docs, err := Run(ctx, b.src, "users", []Stage{
		Match{Field: "id", Value: userID},
		Join{
			From:         "videos",
			LocalField:   "watchHistory",
			ForeignField: "id",
			As:           "watchHistory",
			Mode:         JoinMany,
			Pipeline: []Stage{
				Join{From: "users", LocalField: "owner", ForeignField: "id", As: "owner", Mode: JoinOne, Project: ownerIdentity},
			},
		},
	})
	if err != nil {
		return nil, apperrors.Internal("failed to build watch history", err)
	}
	if len(docs) == 0 {
		return nil, apperrors.NotFound("user does not exist")
	}

	history, _ := docs[0]["watchHistory"].([]Document)
	return history, nil
}

// FeedPage is one page of a channel's video feed.
type FeedPage struct {
	Videos     []Document `json:"videos"`
	Total      int        `json:"totalVideos"`
	TotalPages int        `json:"totalPages"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
}

// VideoFeed returns a sorted, paginated page of the owner's videos with owner
// identity attached, along with the separately computed totals.
func (b *Builder) VideoFeed(ctx context.Context, ownerID, sortBy string, descending bool, page Pagination) (FeedPage, error) {
	if !videoFeedSortFields[sortBy] {
		sortBy = "createdAt"
	}

	matched, err := Run(ctx, b.src, "videos", []Stage{
		Match{Field: "owner", Value: ownerID},
	})
	if err != nil {
		return FeedPage{}, apperrors.Internal("failed to count videos", err)
	}
	total := len(matched)

	docs, err := Run(ctx, b.src, "videos", []Stage{
		Match{Field: "owner", Value: ownerID},
		Join{From: "users", LocalField: "owner", ForeignField: "id", As: "owner", Mode: JoinOne, Project: ownerIdentity},
		Sort{Field: sortBy, Descending: descending},
		Page{Skip: page.Skip(), Limit: page.Limit},
	})
	if err != nil {
		return FeedPage{}, apperrors.Internal("failed to build video feed", err)
	}

	return FeedPage{
		Videos:     docs,
		Total:      total,
		TotalPages: TotalPages(total, page.Limit),
		Page:       page.Page,
		Limit:      page.Limit,
	}, nil
}

// CommentPage is one page of a video's comments.
type CommentPage struct {
	Comments   []Document `json:"comments"`
	Total      int        `json:"totalComments"`
	TotalPages int        `json:"totalPages"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
}

// CommentFeed returns a paginated page of a video's comments, each with its
// author's public identity joined first.
func (b *Builder) CommentFeed(ctx context.Context, videoID string, page Pagination) (CommentPage, error) {
	matched, err := Run(ctx, b.src, "comments", []Stage{
		Match{Field: "video", Value: videoID},
	})
	if err != nil {
		return CommentPage{}, apperrors.Internal("failed to count comments", err)
	}
	total := len(matched)

	docs, err := Run(ctx, b.src, "comments", []Stage{
		Match{Field: "video", Value: videoID},
		Join{From: "users", LocalField: "owner", ForeignField: "id", As: "owner", Mode: JoinOne, Project: []string{"username", "fullName", "avatar"}},
		Sort{Field: "createdAt", Descending: true},
		Page{Skip: page.Skip(), Limit: page.Limit},
	})
	if err != nil {
		return CommentPage{}, apperrors.Internal("failed to build comment feed", err)
	}

	return CommentPage{
		Comments:   docs,
		Total:      total,
		TotalPages: TotalPages(total, page.Limit),
		Page:       page.Page,
		Limit:      page.Limit,
	}, nil
}

// LikedVideos returns the videos the user has liked. Comment likes are
// excluded by matching only like edges with a video target.
func (b *Builder) LikedVideos(ctx context.Context, userID string) ([]Document, error) {
	docs, err := Run(ctx, b.src, "likes", []Stage{
		Match{Field: "likedBy", Value: userID},
		Match{Pred: func(doc Document) bool {
			return stringValue(doc["video"]) != ""
		}},
		Join{
			From:         "videos",
			LocalField:   "video",
			ForeignField: "id",
			As:           "video",
			Mode:         JoinOne,
			Pipeline: []Stage{
				Join{From: "users", LocalField: "owner", ForeignField: "id", As: "owner", Mode: JoinOne, Project: ownerIdentity},
			},
			Project: []string{"id", "videoFile", "thumbnail", "title", "description", "views", "owner"},
		},
		Project{Keep: []string{"id", "likedBy", "video"}},
	})
	if err != nil {
		return nil, apperrors.Internal("failed to build liked videos", err)
	}
	return docs, nil
}

// PlaylistsWithContents returns the owner's playlists with owner identity and
// every referenced video resolved, each video carrying its own owner identity.
func (b *Builder) PlaylistsWithContents(ctx context.Context, ownerID string) ([]Document, error) {
	docs, err := Run(ctx, b.src, "playlists", []Stage{
		Match{Field: "owner", Value: ownerID},
		Join{From: "users", LocalField: "owner", ForeignField: "id", As: "owner", Mode: JoinOne, Project: ownerIdentity},
		Join{
			From:         "videos",
			LocalField:   "videos",
			ForeignField: "id",
			As:           "videos",
			Mode:         JoinMany,
			Pipeline: []Stage{
				Join{From: "users", LocalField: "owner", ForeignField: "id", As: "owner", Mode: JoinOne, Project: ownerIdentity},
			},
			Project: []string{"id", "videoFile", "thumbnail", "title", "views", "owner"},
		},
	})
	if err != nil {
		return nil, apperrors.Internal("failed to build playlists", err)
	}
	return docs, nil
}

// ChannelSubscribers returns the subscription edges for the channel with each
// subscriber's public identity joined.
func (b *Builder) ChannelSubscribers(ctx context.Context, channelID string) ([]Document, error) {
	docs, err := Run(ctx, b.src, "subscriptions", []Stage{
		Match{Field: "channel", Value: channelID},
		Join{From: "users", LocalField: "subscriber", ForeignField: "id", As: "subscriber", Mode: JoinOne, Project: ownerIdentity},
		Project{Keep: []string{"id", "subscriber", "createdAt"}},
	})
	if err != nil {
		return nil, apperrors.Internal("failed to build subscriber list", err)
	}
	return docs, nil
}

// SubscribedChannels returns the channels the user subscribes to with each
// channel's public identity joined.
func (b *Builder) SubscribedChannels(ctx context.Context, subscriberID string) ([]Document, error) {
	docs, err := Run(ctx, b.src, "subscriptions", []Stage{
		Match{Field: "subscriber", Value: subscriberID},
		Join{From: "users", LocalField: "channel", ForeignField: "id", As: "channel", Mode: JoinOne, Project: ownerIdentity},
		Project{Keep: []string{"id", "channel", "createdAt"}},
	})
	if err != nil {
		return nil, apperrors.Internal("failed to build subscribed channels", err)
	}
	return docs, nil
}

// ChannelStats are the aggregate counters for a channel dashboard. Every
// counter defaults to zero when the channel has no matching rows.
type ChannelStats struct {
	TotalSubscribers   int64 `json:"totalSubscribers"`
	TotalVideos        int64 `json:"totalVideos"`
	TotalVideosViews   int64 `json:"totalVideosViews"`
	TotalVideosLikes   int64 `json:"totalVideosLikes"`
	TotalCommentsLikes int64 `json:"totalCommentsLikes"`
	TotalLikes         int64 `json:"totalLikes"`
}

// ChannelStats computes the dashboard counters for the channel owner.
func (b *Builder) ChannelStats(ctx context.Context, channelID string) (ChannelStats, error) {
	subscribers, err := Run(ctx, b.src, "subscriptions", []Stage{
		Match{Field: "channel", Value: channelID},
		Group{As: "total", Op: Count},
	})
	if err != nil {
		return ChannelStats{}, apperrors.Internal("failed to count subscribers", err)
	}

	videos, err := Run(ctx, b.src, "videos", []Stage{
		Match{Field: "owner", Value: channelID},
		Group{As: "total", Op: Count},
	})
	if err != nil {
		return ChannelStats{}, apperrors.Internal("failed to count videos", err)
	}

	// Views are summed only over rows with positive view counts.
	views, err := Run(ctx, b.src, "videos", []Stage{
		Match{Field: "owner", Value: channelID},
		Match{Pred: func(doc Document) bool {
			n, ok := numericValue(doc["views"])
			return ok && n > 0
		}},
		Group{As: "total", Op: Sum, Of: "views"},
	})
	if err != nil {
		return ChannelStats{}, apperrors.Internal("failed to sum video views", err)
	}

	videoLikes, err := Run(ctx, b.src, "likes", []Stage{
		Join{From: "videos", LocalField: "video", ForeignField: "id", As: "likedVideo", Mode: JoinMany},
		Unwind{Field: "likedVideo"},
		Match{Pred: func(doc Document) bool {
			video, _ := doc["likedVideo"].(Document)
			return video != nil && equalValues(video["owner"], channelID)
		}},
		Group{As: "total", Op: Count},
	})
	if err != nil {
		return ChannelStats{}, apperrors.Internal("failed to count video likes", err)
	}

	commentLikes, err := Run(ctx, b.src, "likes", []Stage{
		Join{From: "comments", LocalField: "comment", ForeignField: "id", As: "likedComment", Mode: JoinMany},
		Unwind{Field: "likedComment"},
		Match{Pred: func(doc Document) bool {
			comment, _ := doc["likedComment"].(Document)
			return comment != nil && equalValues(comment["owner"], channelID)
		}},
		Group{As: "total", Op: Count},
	})
	if err != nil {
		return ChannelStats{}, apperrors.Internal("failed to count comment likes", err)
	}

	stats := ChannelStats{
		TotalSubscribers:   aggValue(subscribers, "total"),
		TotalVideos:        aggValue(videos, "total"),
		TotalVideosViews:   aggValue(views, "total"),
		TotalVideosLikes:   aggValue(videoLikes, "total"),
		TotalCommentsLikes: aggValue(commentLikes, "total"),
	}
	stats.TotalLikes = stats.TotalVideosLikes + stats.TotalCommentsLikes

	return stats, nil
}

func aggValue(docs []Document, field string) int64 {
	if len(docs) == 0 {
		return 0
	}
	if n, ok := numericValue(docs[0][field]); ok {
		return int64(n)
	}
	return 0
}

func stringValue(val any) string {
	s, _ := val.(string)
	return s
}
