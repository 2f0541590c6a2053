package models

import "time"

// User represents an account within the StreamTube platform. The refresh token
// field holds the single currently-valid refresh token for the account; every
// login, refresh rotation, or logout fully replaces it.
type User struct {
	ID                 string
	Username           string
	Email              string
	FullName           string
	Password           string
	Avatar             string
	AvatarPublicID     string
	CoverImage         string
	CoverImagePublicID string
	WatchHistory       []string
	RefreshToken       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PublicUser is the response-safe projection of a User with the password
// digest and refresh token stripped.
type PublicUser struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Public strips credentials from the user record.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
	}
}

// Video stores object-storage references for an uploaded media file along with
// its display metadata. The view counter is monotonic non-negative.
type Video struct {
	ID                string
	VideoFile         string
	VideoPublicID     string
	Thumbnail         string
	ThumbnailPublicID string
	Title             string
	Description       string
	Duration          float64
	Views             int64
	IsPublished       bool
	OwnerID           string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Subscription is a directed edge from a subscriber to a channel; both ends
// reference users. At most one edge exists per (subscriber, channel) pair.
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// Like is an edge from a user to exactly one of a video or a comment. The
// unset target is empty; at most one like exists per (user, target) pair.
type Like struct {
	ID        string
	LikedBy   string
	VideoID   string
	CommentID string
	CreatedAt time.Time
}

// Comment is a user remark attached to a video.
type Comment struct {
	ID        string
	Content   string
	OwnerID   string
	VideoID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Playlist groups video references under a name. Membership behaves as a set:
// adding the same video twice must not accumulate duplicates.
type Playlist struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	Videos      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TokenPair groups the bearer credentials issued to authenticated users.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
