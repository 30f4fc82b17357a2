package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"socialfeed/internal/httputil"
	"socialfeed/internal/model"
	"socialfeed/internal/service"
	"socialfeed/internal/transport/http/middleware"
)

type SearchHandler struct {
	searchService *service.SearchService
	userService   *service.UserService
}

func NewSearchHandler(searchService *service.SearchService, userService *service.UserService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		userService:   userService,
	}
}

// SearchAllUsers handles GET /users/search?q=
// Searches the whole user base. An empty query returns an empty list rather
// than every account.
func (h *SearchHandler) SearchAllUsers(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query().Get("q")

	users, err := h.searchService.Search(r.Context(), viewerID, model.ScopeAllUsers, nil, query)
	if err != nil {
		log.Printf("[ERROR] SearchAllUsers handler: viewer=%d err=%v", viewerID, err)
		httputil.WriteInternalError(w, "Search failed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &model.SearchResponse{
		UserList:         users,
		ShowBio:          true,
		ShowRelationship: true,
	})
}

// SearchFollowing handles GET /users/{username}/following?q=
func (h *SearchHandler) SearchFollowing(w http.ResponseWriter, r *http.Request) {
	h.searchFollowScope(w, r, model.ScopeFollowing)
}

// SearchFollowers handles GET /users/{username}/followers?q=
// When the viewer is looking at their own follower list the rows carry the
// remove affordance.
func (h *SearchHandler) SearchFollowers(w http.ResponseWriter, r *http.Request) {
	h.searchFollowScope(w, r, model.ScopeFollowers)
}

func (h *SearchHandler) searchFollowScope(w http.ResponseWriter, r *http.Request, scope model.SearchScope) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	username := chi.URLParam(r, "username")
	query := r.URL.Query().Get("q")

	users, err := h.searchService.Search(r.Context(), viewerID, scope, &username, query)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] Search handler: scope=%s viewer=%d target=%s err=%v", scope, viewerID, username, err)
		httputil.WriteInternalError(w, "Search failed")
		return
	}

	showRemove := false
	if scope == model.ScopeFollowers {
		if viewer, err := h.userService.GetByID(r.Context(), viewerID); err == nil {
			showRemove = viewer.Username == username
		}
	}

	httputil.WriteJSON(w, http.StatusOK, &model.SearchResponse{
		UserList:         users,
		ProfileUser:      username,
		ShowRelationship: true,
		ShowRemove:       showRemove,
	})
}

// SearchPostLikers handles GET /posts/{id}/likes?q=
// Searches the post's like set by username.
func (h *SearchHandler) SearchPostLikers(w http.ResponseWriter, r *http.Request) {
	h.searchLikeScope(w, r, model.ScopePostLikes)
}

// SearchCommentLikers handles GET /comments/{id}/likes?q=
func (h *SearchHandler) SearchCommentLikers(w http.ResponseWriter, r *http.Request) {
	h.searchLikeScope(w, r, model.ScopeCommentLikes)
}

func (h *SearchHandler) searchLikeScope(w http.ResponseWriter, r *http.Request, scope model.SearchScope) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	target := chi.URLParam(r, "id")
	query := r.URL.Query().Get("q")

	users, err := h.searchService.Search(r.Context(), viewerID, scope, &target, query)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		case errors.Is(err, model.ErrInvalidSearchTarget):
			httputil.WriteBadRequest(w, "Invalid ID")
		default:
			log.Printf("[ERROR] Search handler: scope=%s viewer=%d target=%s err=%v", scope, viewerID, target, err)
			httputil.WriteInternalError(w, "Search failed")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &model.SearchResponse{
		UserList:         users,
		ShowRelationship: true,
	})
}
