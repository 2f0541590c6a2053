package handlers

import (
	"net/http"

	"github.com/vermapushpendra/FullBackend/internal/middleware"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	requireAuth := middleware.RequireAuth(deps.Auth)
	optionalAuth := middleware.OptionalAuth(deps.Auth)

	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Passwords: deps.Passwords, Limiter: deps.AuthLimiter}
	users := UserHandler{Users: deps.Users, Views: deps.Views, Assets: deps.Assets}
	channels := ChannelHandler{Views: deps.Views, Subscriptions: deps.Subscriptions}
	videos := VideoHandler{Videos: deps.Videos, Users: deps.Users, Views: deps.Views, Assets: deps.Assets}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos, Views: deps.Views}
	likes := LikeHandler{Likes: deps.Likes, Videos: deps.Videos, Comments: deps.Comments, Views: deps.Views}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos, Views: deps.Views}

	mux.HandleFunc("/healthz", health.Handle)

	mux.HandleFunc("/api/v1/auth/register", auth.Register)
	mux.HandleFunc("/api/v1/auth/login", auth.Login)
	mux.HandleFunc("/api/v1/auth/refresh", auth.Refresh)
	mux.Handle("/api/v1/auth/logout", requireAuth(http.HandlerFunc(auth.Logout)))
	mux.Handle("/api/v1/auth/me", requireAuth(http.HandlerFunc(auth.Me)))
	mux.Handle("/api/v1/auth/change-password", requireAuth(http.HandlerFunc(auth.ChangePassword)))

	mux.Handle("/api/v1/users/profile", requireAuth(http.HandlerFunc(users.UpdateProfile)))
	mux.Handle("/api/v1/users/avatar", requireAuth(http.HandlerFunc(users.UpdateAvatar)))
	mux.Handle("/api/v1/users/cover-image", requireAuth(http.HandlerFunc(users.UpdateCoverImage)))
	mux.Handle("/api/v1/users/history", requireAuth(http.HandlerFunc(users.WatchHistory)))

	mux.Handle("/api/v1/channels/profile", optionalAuth(http.HandlerFunc(channels.Profile)))
	mux.HandleFunc("/api/v1/channels/stats", channels.Stats)
	mux.HandleFunc("/api/v1/channels/subscribers", channels.Subscribers)
	mux.Handle("/api/v1/channels/subscribed", optionalAuth(http.HandlerFunc(channels.SubscribedTo)))
	mux.Handle("/api/v1/channels/subscription", requireAuth(http.HandlerFunc(channels.ToggleSubscription)))

	mux.HandleFunc("/api/v1/videos/feed", videos.Feed)
	mux.Handle("/api/v1/videos/publish", requireAuth(http.HandlerFunc(videos.Publish)))
	mux.Handle("/api/v1/videos/details", requireAuth(http.HandlerFunc(videos.UpdateDetails)))
	mux.Handle("/api/v1/videos/file", requireAuth(http.HandlerFunc(videos.UpdateVideoFile)))
	mux.Handle("/api/v1/videos/thumbnail", requireAuth(http.HandlerFunc(videos.UpdateThumbnail)))
	mux.Handle("/api/v1/videos/toggle-publish", requireAuth(http.HandlerFunc(videos.TogglePublish)))
	mux.Handle("/api/v1/videos", optionalAuth(http.HandlerFunc(videosDispatch(videos))))

	mux.Handle("/api/v1/comments", optionalAuth(http.HandlerFunc(commentsDispatch(comments))))
	mux.Handle("/api/v1/comments/update", requireAuth(http.HandlerFunc(comments.Update)))

	mux.Handle("/api/v1/likes/video", requireAuth(http.HandlerFunc(likes.ToggleVideoLike)))
	mux.Handle("/api/v1/likes/comment", requireAuth(http.HandlerFunc(likes.ToggleCommentLike)))
	mux.Handle("/api/v1/likes/videos", requireAuth(http.HandlerFunc(likes.LikedVideos)))

	mux.Handle("/api/v1/playlists", optionalAuth(http.HandlerFunc(playlistsDispatch(playlists))))
	mux.Handle("/api/v1/playlists/update", requireAuth(http.HandlerFunc(playlists.Update)))
	mux.Handle("/api/v1/playlists/videos/add", requireAuth(http.HandlerFunc(playlists.AddVideo)))
	mux.Handle("/api/v1/playlists/videos/remove", requireAuth(http.HandlerFunc(playlists.RemoveVideo)))
}

// videosDispatch splits the /api/v1/videos endpoint by method: GET fetches a
// video, DELETE removes one.
func videosDispatch(h VideoHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.Get(w, r)
		case http.MethodDelete:
			h.Delete(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func commentsDispatch(h CommentHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.List(w, r)
		case http.MethodPost:
			h.Add(w, r)
		case http.MethodDelete:
			h.Delete(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func playlistsDispatch(h PlaylistHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.List(w, r)
		case http.MethodPost:
			h.Create(w, r)
		case http.MethodDelete:
			h.Delete(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionEngine
	Passwords     PasswordHasher
	Auth          middleware.Authenticator
	Views         ViewProvider
	Assets        AssetStorage
	Videos        VideoStore
	Comments      CommentStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	Playlists     PlaylistStore
	AuthLimiter   RateLimiter
}
