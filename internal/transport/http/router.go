package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"socialfeed/internal/handler"
	"socialfeed/internal/httputil"
	authmw "socialfeed/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	RelationshipHandler *handler.RelationshipHandler
	SearchHandler       *handler.SearchHandler
	PostHandler         *handler.PostHandler
	CommentHandler      *handler.CommentHandler
	LikeHandler         *handler.LikeHandler
	FeedHandler         *handler.FeedHandler
	JWTSecret           string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
	})

	// Public reads with optional authentication for viewer annotations
	r.Group(func(r chi.Router) {
		r.Use(authmw.OptionalAuthMiddleware(cfg.JWTSecret))

		r.Get("/users/{username}", cfg.UserHandler.GetProfile)
		r.Get("/posts/{id}", cfg.PostHandler.GetByID)
		r.Get("/posts/{id}/comments", cfg.CommentHandler.List)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		r.Get("/me", cfg.AuthHandler.Me)
		r.Post("/auth/logout", cfg.AuthHandler.Logout)
		r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

		r.Delete("/users/me", cfg.UserHandler.DeleteAccount)

		// Relational search: every list is a username substring filter over a
		// different base set
		r.Get("/users/search", cfg.SearchHandler.SearchAllUsers)
		r.Get("/users/{username}/following", cfg.SearchHandler.SearchFollowing)
		r.Get("/users/{username}/followers", cfg.SearchHandler.SearchFollowers)
		r.Get("/posts/{id}/likes", cfg.SearchHandler.SearchPostLikers)
		r.Get("/comments/{id}/likes", cfg.SearchHandler.SearchCommentLikers)

		// Relationship actions
		r.Get("/users/{username}/relationship", cfg.RelationshipHandler.Get)
		r.Post("/users/{username}/relationship", cfg.RelationshipHandler.Update)

		// Posts, comments, likes
		r.Post("/posts", cfg.PostHandler.Create)
		r.Delete("/posts/{id}", cfg.PostHandler.Delete)
		r.Post("/posts/{id}/comments", cfg.CommentHandler.Create)
		r.Post("/posts/{id}/likes", cfg.LikeHandler.Toggle)

		// Home feed
		r.Get("/feed", cfg.FeedHandler.GetFeed)
	})

	return r
}
