package handlers

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/vermapushpendra/FullBackend/internal/models"
	"github.com/vermapushpendra/FullBackend/internal/repositories"
	"github.com/vermapushpendra/FullBackend/internal/storage"
	"github.com/vermapushpendra/FullBackend/internal/views"
)

// stubUserStore satisfies both the handler-facing UserStore and the session
// engine's store contract so handler tests can run against the real engine.
type stubUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: make(map[string]models.User)}
}

func (s *stubUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *stubUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *stubUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *stubUserStore) FindByIdentifier(_ context.Context, identifier string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == identifier || user.Email == identifier {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *stubUserStore) UpdateRefreshToken(_ context.Context, userID, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RefreshToken = refreshToken
	s.users[userID] = user
	return nil
}

func (s *stubUserStore) UpdateProfile(_ context.Context, userID, fullName, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.FullName = fullName
	user.Email = email
	s.users[userID] = user
	return nil
}

func (s *stubUserStore) UpdatePassword(_ context.Context, userID, passwordDigest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Password = passwordDigest
	s.users[userID] = user
	return nil
}

func (s *stubUserStore) UpdateAvatar(_ context.Context, userID, url, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Avatar = url
	user.AvatarPublicID = publicID
	s.users[userID] = user
	return nil
}

func (s *stubUserStore) UpdateCoverImage(_ context.Context, userID, url, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.CoverImage = url
	user.CoverImagePublicID = publicID
	s.users[userID] = user
	return nil
}

func (s *stubUserStore) AppendWatchHistory(_ context.Context, userID, videoID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	for _, existing := range user.WatchHistory {
		if existing == videoID {
			return false, nil
		}
	}
	user.WatchHistory = append(user.WatchHistory, videoID)
	s.users[userID] = user
	return true, nil
}

type stubVideoStore struct {
	mu     sync.Mutex
	videos map[string]models.Video
}

func newStubVideoStore() *stubVideoStore {
	return &stubVideoStore{videos: make(map[string]models.Video)}
}

func (s *stubVideoStore) Create(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[video.ID] = video
	return nil
}

func (s *stubVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *stubVideoStore) UpdateDetails(_ context.Context, videoID, title, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Title = title
	video.Description = description
	s.videos[videoID] = video
	return nil
}

func (s *stubVideoStore) UpdateAssets(_ context.Context, videoID, videoFile, videoPublicID string, duration float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok {
		return repositories.ErrNotFound
	}
	video.VideoFile = videoFile
	video.VideoPublicID = videoPublicID
	video.Duration = duration
	s.videos[videoID] = video
	return nil
}

func (s *stubVideoStore) UpdateThumbnail(_ context.Context, videoID, thumbnail, thumbnailPublicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Thumbnail = thumbnail
	video.ThumbnailPublicID = thumbnailPublicID
	s.videos[videoID] = video
	return nil
}

func (s *stubVideoStore) TogglePublish(_ context.Context, videoID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	video.IsPublished = !video.IsPublished
	s.videos[videoID] = video
	return video.IsPublished, nil
}

func (s *stubVideoStore) IncrementViews(_ context.Context, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[videoID] = video
	return nil
}

func (s *stubVideoStore) Delete(_ context.Context, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[videoID]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, videoID)
	return nil
}

type stubCommentStore struct {
	mu       sync.Mutex
	comments map[string]models.Comment
}

func newStubCommentStore() *stubCommentStore {
	return &stubCommentStore{comments: make(map[string]models.Comment)}
}

func (s *stubCommentStore) Create(_ context.Context, comment models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[comment.ID] = comment
	return nil
}

func (s *stubCommentStore) FindByID(_ context.Context, id string) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *stubCommentStore) UpdateContent(_ context.Context, commentID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[commentID]
	if !ok {
		return repositories.ErrNotFound
	}
	comment.Content = content
	s.comments[commentID] = comment
	return nil
}

func (s *stubCommentStore) Delete(_ context.Context, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[commentID]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, commentID)
	return nil
}

type stubSubscriptionStore struct {
	mu   sync.Mutex
	subs map[string]models.Subscription
}

func newStubSubscriptionStore() *stubSubscriptionStore {
	return &stubSubscriptionStore{subs: make(map[string]models.Subscription)}
}

func (s *stubSubscriptionStore) Find(_ context.Context, subscriberID, channelID string) (models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.SubscriberID == subscriberID && sub.ChannelID == channelID {
			return sub, nil
		}
	}
	return models.Subscription{}, repositories.ErrNotFound
}

func (s *stubSubscriptionStore) Create(_ context.Context, sub models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.subs {
		if existing.SubscriberID == sub.SubscriberID && existing.ChannelID == sub.ChannelID {
			return repositories.ErrConflict
		}
	}
	s.subs[sub.ID] = sub
	return nil
}

func (s *stubSubscriptionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.subs, id)
	return nil
}

func (s *stubSubscriptionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

type stubLikeStore struct {
	mu    sync.Mutex
	likes map[string]models.Like
}

func newStubLikeStore() *stubLikeStore {
	return &stubLikeStore{likes: make(map[string]models.Like)}
}

func (s *stubLikeStore) FindVideoLike(_ context.Context, userID, videoID string) (models.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, like := range s.likes {
		if like.LikedBy == userID && like.VideoID == videoID {
			return like, nil
		}
	}
	return models.Like{}, repositories.ErrNotFound
}

func (s *stubLikeStore) FindCommentLike(_ context.Context, userID, commentID string) (models.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, like := range s.likes {
		if like.LikedBy == userID && like.CommentID == commentID {
			return like, nil
		}
	}
	return models.Like{}, repositories.ErrNotFound
}

func (s *stubLikeStore) Create(_ context.Context, like models.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likes[like.ID] = like
	return nil
}

func (s *stubLikeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.likes[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.likes, id)
	return nil
}

func (s *stubLikeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.likes)
}

type stubPlaylistStore struct {
	mu        sync.Mutex
	playlists map[string]models.Playlist
}

func newStubPlaylistStore() *stubPlaylistStore {
	return &stubPlaylistStore{playlists: make(map[string]models.Playlist)}
}

func (s *stubPlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.playlists {
		if existing.OwnerID == playlist.OwnerID && existing.Name == playlist.Name {
			return repositories.ErrConflict
		}
	}
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *stubPlaylistStore) FindByID(_ context.Context, id string) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

func (s *stubPlaylistStore) FindByOwnerAndName(_ context.Context, ownerID, name string) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, playlist := range s.playlists {
		if playlist.OwnerID == ownerID && playlist.Name == name {
			return playlist, nil
		}
	}
	return models.Playlist{}, repositories.ErrNotFound
}

func (s *stubPlaylistStore) UpdateDetails(_ context.Context, playlistID, name, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[playlistID]
	if !ok {
		return repositories.ErrNotFound
	}
	playlist.Name = name
	playlist.Description = description
	s.playlists[playlistID] = playlist
	return nil
}

func (s *stubPlaylistStore) AddVideo(_ context.Context, playlistID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[playlistID]
	if !ok {
		return repositories.ErrNotFound
	}
	for _, existing := range playlist.Videos {
		if existing == videoID {
			return nil
		}
	}
	playlist.Videos = append(playlist.Videos, videoID)
	s.playlists[playlistID] = playlist
	return nil
}

func (s *stubPlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[playlistID]
	if !ok {
		return repositories.ErrNotFound
	}
	kept := playlist.Videos[:0]
	for _, existing := range playlist.Videos {
		if existing != videoID {
			kept = append(kept, existing)
		}
	}
	playlist.Videos = kept
	s.playlists[playlistID] = playlist
	return nil
}

func (s *stubPlaylistStore) Delete(_ context.Context, playlistID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[playlistID]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.playlists, playlistID)
	return nil
}

// stubAssets records uploads and deletions instead of talking to a bucket.
type stubAssets struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
	failOn  string
}

func (s *stubAssets) Save(_ context.Context, name string, r io.Reader, _ string) (storage.StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && name == s.failOn {
		return storage.StoredObject{}, fmt.Errorf("stub save failure for %s", name)
	}
	_, _ = io.Copy(io.Discard, r)
	s.saved = append(s.saved, name)
	return storage.StoredObject{URL: "https://cdn.test/" + name, Key: name}, nil
}

func (s *stubAssets) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	return nil
}

// stubViews returns canned view results; handlers only forward them.
type stubViews struct {
	profile     views.ChannelProfile
	history     []views.Document
	feed        views.FeedPage
	comments    views.CommentPage
	liked       []views.Document
	playlists   []views.Document
	stats       views.ChannelStats
	subscribers []views.Document
	subscribed  []views.Document
	err         error
}

func (s *stubViews) ChannelProfile(context.Context, string, string) (views.ChannelProfile, error) {
	return s.profile, s.err
}

func (s *stubViews) WatchHistory(context.Context, string) ([]views.Document, error) {
	return s.history, s.err
}

func (s *stubViews) VideoFeed(context.Context, string, string, bool, views.Pagination) (views.FeedPage, error) {
	return s.feed, s.err
}

func (s *stubViews) CommentFeed(context.Context, string, views.Pagination) (views.CommentPage, error) {
	return s.comments, s.err
}

func (s *stubViews) LikedVideos(context.Context, string) ([]views.Document, error) {
	return s.liked, s.err
}

func (s *stubViews) PlaylistsWithContents(context.Context, string) ([]views.Document, error) {
	return s.playlists, s.err
}

func (s *stubViews) ChannelStats(context.Context, string) (views.ChannelStats, error) {
	return s.stats, s.err
}

func (s *stubViews) ChannelSubscribers(context.Context, string) ([]views.Document, error) {
	return s.subscribers, s.err
}

func (s *stubViews) SubscribedChannels(context.Context, string) ([]views.Document, error) {
	return s.subscribed, s.err
}
