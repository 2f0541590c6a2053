package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vermapushpendra/FullBackend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "alice")

	dup := user
	dup.ID = uuid.NewString()
	dup.Email = "other@example.com"
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate username, got %v", err)
	}

	fetched, err := repo.FindByUsername(ctx, user.Username)
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if fetched.ID != user.ID || fetched.Email != user.Email || fetched.Password != user.Password {
		t.Fatalf("unexpected user fetched: %+v", fetched)
	}

	byEmail, err := repo.FindByIdentifier(ctx, user.Email)
	if err != nil {
		t.Fatalf("find by email identifier: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Fatalf("expected identifier lookup to resolve %s, got %s", user.ID, byEmail.ID)
	}

	if _, err := repo.FindByID(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestPostgresUserRepository_RefreshTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "bob")

	if err := repo.UpdateRefreshToken(ctx, user.ID, "token-one"); err != nil {
		t.Fatalf("store refresh token: %v", err)
	}
	if err := repo.UpdateRefreshToken(ctx, user.ID, "token-two"); err != nil {
		t.Fatalf("rotate refresh token: %v", err)
	}

	fetched, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if fetched.RefreshToken != "token-two" {
		t.Fatalf("expected rotation to overwrite token, got %q", fetched.RefreshToken)
	}

	if err := repo.UpdateRefreshToken(ctx, user.ID, ""); err != nil {
		t.Fatalf("clear refresh token: %v", err)
	}
	fetched, err = repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find user after clear: %v", err)
	}
	if fetched.RefreshToken != "" {
		t.Fatalf("expected cleared token, got %q", fetched.RefreshToken)
	}

	if err := repo.UpdateRefreshToken(ctx, uuid.NewString(), "token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestPostgresUserRepository_AppendWatchHistory(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)

	owner := createTestUser(t, userRepo, "owner")
	viewer := createTestUser(t, userRepo, "viewer")
	first := createTestVideo(t, videoRepo, owner.ID, "First")
	second := createTestVideo(t, videoRepo, owner.ID, "Second")

	appended, err := userRepo.AppendWatchHistory(ctx, viewer.ID, first.ID)
	if err != nil {
		t.Fatalf("append first watch: %v", err)
	}
	if !appended {
		t.Fatalf("expected first watch to append")
	}

	appended, err = userRepo.AppendWatchHistory(ctx, viewer.ID, second.ID)
	if err != nil {
		t.Fatalf("append second watch: %v", err)
	}
	if !appended {
		t.Fatalf("expected second watch to append")
	}

	appended, err = userRepo.AppendWatchHistory(ctx, viewer.ID, first.ID)
	if err != nil {
		t.Fatalf("append repeat watch: %v", err)
	}
	if appended {
		t.Fatalf("expected repeat watch to be deduplicated")
	}

	fetched, err := userRepo.FindByID(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("find viewer: %v", err)
	}
	if len(fetched.WatchHistory) != 2 || fetched.WatchHistory[0] != first.ID || fetched.WatchHistory[1] != second.ID {
		t.Fatalf("expected ordered history [%s %s], got %v", first.ID, second.ID, fetched.WatchHistory)
	}
}

func TestPostgresVideoRepository_TogglePublishAndViews(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)

	owner := createTestUser(t, userRepo, "creator")
	video := createTestVideo(t, videoRepo, owner.ID, "Tour")

	published, err := videoRepo.TogglePublish(ctx, video.ID)
	if err != nil {
		t.Fatalf("toggle publish: %v", err)
	}
	if published {
		t.Fatalf("expected toggle to unpublish a published video")
	}

	published, err = videoRepo.TogglePublish(ctx, video.ID)
	if err != nil {
		t.Fatalf("toggle publish back: %v", err)
	}
	if !published {
		t.Fatalf("expected second toggle to republish")
	}

	if _, err := videoRepo.TogglePublish(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound toggling unknown video, got %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := videoRepo.IncrementViews(ctx, video.ID); err != nil {
			t.Fatalf("increment views: %v", err)
		}
	}

	fetched, err := videoRepo.FindByID(ctx, video.ID)
	if err != nil {
		t.Fatalf("find video: %v", err)
	}
	if fetched.Views != 3 {
		t.Fatalf("expected 3 views, got %d", fetched.Views)
	}
}

func TestPostgresVideoRepository_UpdateAssets(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)

	owner := createTestUser(t, userRepo, "creator")
	video := createTestVideo(t, videoRepo, owner.ID, "Tour")

	if err := videoRepo.UpdateAssets(ctx, video.ID, "https://cdn.test/v/new.mp4", "videos/new.mp4", 99.5); err != nil {
		t.Fatalf("update assets: %v", err)
	}

	fetched, err := videoRepo.FindByID(ctx, video.ID)
	if err != nil {
		t.Fatalf("find video: %v", err)
	}
	if fetched.VideoFile != "https://cdn.test/v/new.mp4" || fetched.VideoPublicID != "videos/new.mp4" {
		t.Fatalf("expected media reference replaced, got %+v", fetched)
	}
	if fetched.Duration != 99.5 {
		t.Fatalf("expected duration 99.5, got %v", fetched.Duration)
	}

	if err := videoRepo.UpdateAssets(ctx, uuid.NewString(), "u", "k", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown video, got %v", err)
	}
}

func TestPostgresSubscriptionRepository_EdgeUniqueness(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	repo := NewPostgresSubscriptionRepository(testPool)

	subscriber := createTestUser(t, userRepo, "subscriber")
	channel := createTestUser(t, userRepo, "channel")

	edge := models.Subscription{
		ID:           uuid.NewString(),
		SubscriberID: subscriber.ID,
		ChannelID:    channel.ID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(ctx, edge); err != nil {
		t.Fatalf("create subscription: %v", err)
	}

	dup := edge
	dup.ID = uuid.NewString()
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate pair, got %v", err)
	}

	found, err := repo.Find(ctx, subscriber.ID, channel.ID)
	if err != nil {
		t.Fatalf("find subscription: %v", err)
	}
	if found.ID != edge.ID {
		t.Fatalf("expected edge %s, got %s", edge.ID, found.ID)
	}

	if err := repo.Delete(ctx, edge.ID); err != nil {
		t.Fatalf("delete subscription: %v", err)
	}
	if _, err := repo.Find(ctx, subscriber.ID, channel.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, edge.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestPostgresLikeRepository_OneTargetPerLike(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	commentRepo := NewPostgresCommentRepository(testPool)
	repo := NewPostgresLikeRepository(testPool)

	owner := createTestUser(t, userRepo, "owner")
	fan := createTestUser(t, userRepo, "fan")
	video := createTestVideo(t, videoRepo, owner.ID, "Liked")

	comment := models.Comment{
		ID:        uuid.NewString(),
		Content:   "nice one",
		OwnerID:   owner.ID,
		VideoID:   video.ID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := commentRepo.Create(ctx, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	videoLike := models.Like{
		ID:        uuid.NewString(),
		LikedBy:   fan.ID,
		VideoID:   video.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, videoLike); err != nil {
		t.Fatalf("create video like: %v", err)
	}

	dup := videoLike
	dup.ID = uuid.NewString()
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate video like, got %v", err)
	}

	commentLike := models.Like{
		ID:        uuid.NewString(),
		LikedBy:   fan.ID,
		CommentID: comment.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, commentLike); err != nil {
		t.Fatalf("create comment like: %v", err)
	}

	found, err := repo.FindVideoLike(ctx, fan.ID, video.ID)
	if err != nil {
		t.Fatalf("find video like: %v", err)
	}
	if found.ID != videoLike.ID || found.CommentID != "" {
		t.Fatalf("unexpected video like: %+v", found)
	}

	found, err = repo.FindCommentLike(ctx, fan.ID, comment.ID)
	if err != nil {
		t.Fatalf("find comment like: %v", err)
	}
	if found.ID != commentLike.ID || found.VideoID != "" {
		t.Fatalf("unexpected comment like: %+v", found)
	}

	if err := repo.Delete(ctx, videoLike.ID); err != nil {
		t.Fatalf("delete like: %v", err)
	}
	if _, err := repo.FindVideoLike(ctx, fan.ID, video.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after unlike, got %v", err)
	}
}

func TestPostgresPlaylistRepository_MembershipIsASet(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	repo := NewPostgresPlaylistRepository(testPool)

	owner := createTestUser(t, userRepo, "curator")
	first := createTestVideo(t, videoRepo, owner.ID, "First")
	second := createTestVideo(t, videoRepo, owner.ID, "Second")

	playlist := models.Playlist{
		ID:          uuid.NewString(),
		Name:        "Favorites",
		Description: "The good stuff",
		OwnerID:     owner.ID,
		Videos:      []string{},
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := repo.Create(ctx, playlist); err != nil {
		t.Fatalf("create playlist: %v", err)
	}

	dup := playlist
	dup.ID = uuid.NewString()
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate name, got %v", err)
	}

	for _, videoID := range []string{first.ID, second.ID, first.ID} {
		if err := repo.AddVideo(ctx, playlist.ID, videoID); err != nil {
			t.Fatalf("add video %s: %v", videoID, err)
		}
	}

	fetched, err := repo.FindByID(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("find playlist: %v", err)
	}
	if len(fetched.Videos) != 2 || fetched.Videos[0] != first.ID || fetched.Videos[1] != second.ID {
		t.Fatalf("expected set membership [%s %s], got %v", first.ID, second.ID, fetched.Videos)
	}

	if err := repo.AddVideo(ctx, uuid.NewString(), first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound adding to unknown playlist, got %v", err)
	}

	if err := repo.RemoveVideo(ctx, playlist.ID, first.ID); err != nil {
		t.Fatalf("remove video: %v", err)
	}
	fetched, err = repo.FindByID(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("find playlist after removal: %v", err)
	}
	if len(fetched.Videos) != 1 || fetched.Videos[0] != second.ID {
		t.Fatalf("expected remaining [%s], got %v", second.ID, fetched.Videos)
	}

	byName, err := repo.FindByOwnerAndName(ctx, owner.ID, playlist.Name)
	if err != nil {
		t.Fatalf("find playlist by name: %v", err)
	}
	if byName.ID != playlist.ID {
		t.Fatalf("expected playlist %s, got %s", playlist.ID, byName.ID)
	}
}

func TestPostgresDocumentSource_ScanAndFind(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	src := NewPostgresDocumentSource(testPool)

	owner := createTestUser(t, userRepo, "channelowner")
	other := createTestUser(t, userRepo, "bystander")
	video := createTestVideo(t, videoRepo, owner.ID, "Scanned")
	createTestVideo(t, videoRepo, other.ID, "Unrelated")

	users, err := src.Scan(ctx, "users")
	if err != nil {
		t.Fatalf("scan users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 user documents, got %d", len(users))
	}
	for _, doc := range users {
		if _, ok := doc["password"]; ok {
			t.Fatalf("user document leaked password digest: %v", doc)
		}
		if _, ok := doc["refreshToken"]; ok {
			t.Fatalf("user document leaked refresh token: %v", doc)
		}
	}

	docs, err := src.Find(ctx, "videos", "owner", []any{owner.ID})
	if err != nil {
		t.Fatalf("find videos by owner: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 video document, got %d", len(docs))
	}
	if docs[0]["id"] != video.ID || docs[0]["title"] != "Scanned" || docs[0]["owner"] != owner.ID {
		t.Fatalf("unexpected video document: %v", docs[0])
	}

	if _, err := src.Find(ctx, "videos", "password", []any{"x"}); err == nil {
		t.Fatalf("expected error for unknown field")
	}
	if _, err := src.Scan(ctx, "nope"); err == nil {
		t.Fatalf("expected error for unknown collection")
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE likes, comments, playlists, subscriptions, videos, users CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, username string) models.User {
	t.Helper()
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		FullName:     "Test " + username,
		Password:     "password-hash",
		WatchHistory: []string{},
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func createTestVideo(t *testing.T, repo *PostgresVideoRepository, ownerID, title string) models.Video {
	t.Helper()
	video := models.Video{
		ID:          uuid.NewString(),
		VideoFile:   "https://cdn.example.com/v/" + title + ".mp4",
		Thumbnail:   "https://cdn.example.com/t/" + title + ".jpg",
		Title:       title,
		Duration:    42,
		IsPublished: true,
		OwnerID:     ownerID,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), video); err != nil {
		t.Fatalf("create test video: %v", err)
	}
	return video
}
