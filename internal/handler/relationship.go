package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"socialfeed/internal/httputil"
	"socialfeed/internal/model"
	"socialfeed/internal/service"
	"socialfeed/internal/transport/http/middleware"
)

type RelationshipHandler struct {
	graphService *service.GraphService
}

func NewRelationshipHandler(graphService *service.GraphService) *RelationshipHandler {
	return &RelationshipHandler{
		graphService: graphService,
	}
}

// Update handles POST /users/{username}/relationship
// The body carries a tagged action ({action, target}); the route's username
// names the page whose counters the response reports. The action tag is
// decoded into its closed variant before anything touches the store.
func (h *RelationshipHandler) Update(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	pageUsername := chi.URLParam(r, "username")

	var req model.RelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	action, err := model.ParseRelationshipAction(req.Action)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid relationship action")
		return
	}

	if req.Target == nil {
		httputil.WriteBadRequest(w, "Missing 'target' key")
		return
	}

	result, err := h.graphService.HandleRelationship(r.Context(), viewerID, action, *req.Target, pageUsername)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, "Cannot follow yourself")
		default:
			log.Printf("[ERROR] Relationship handler: viewer=%d target=%s err=%v", viewerID, *req.Target, err)
			httputil.WriteInternalError(w, "Failed to update relationship")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Get handles GET /users/{username}/relationship
// Reports whether the viewer follows the user plus the user's live counts.
func (h *RelationshipHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	username := chi.URLParam(r, "username")

	result, err := h.graphService.RelationshipByUsername(r.Context(), viewerID, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] Relationship get handler: viewer=%d username=%s err=%v", viewerID, username, err)
		httputil.WriteInternalError(w, "Failed to get relationship")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
