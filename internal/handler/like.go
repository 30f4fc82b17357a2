package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"socialfeed/internal/httputil"
	"socialfeed/internal/model"
	"socialfeed/internal/service"
	"socialfeed/internal/transport/http/middleware"
)

type LikeHandler struct {
	likeService *service.LikeService
}

func NewLikeHandler(likeService *service.LikeService) *LikeHandler {
	return &LikeHandler{
		likeService: likeService,
	}
}

// Toggle handles POST /posts/{id}/likes
// The body carries a tagged union ({object, objID}) naming the like target.
// For the post object the route id is the target; for the comment object the
// objID key must name a comment under this post. The same toggle engine
// serves both: liked becomes unliked and back.
func (h *LikeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	var req model.ToggleLikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	object, err := model.ParseLikeObject(req.Object)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid like object")
		return
	}

	// Post toggles target the route's post; comment toggles must name the
	// comment explicitly.
	targetID := postID
	if object == model.LikeObjectComment {
		if req.ObjectID == nil {
			httputil.WriteBadRequest(w, "Missing 'objID' key")
			return
		}
		targetID = *req.ObjectID
	}

	result, err := h.likeService.Toggle(r.Context(), object, targetID, viewerID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		default:
			log.Printf("[ERROR] Like toggle handler: viewer=%d object=%s target=%d err=%v",
				viewerID, object, targetID, err)
			httputil.WriteInternalError(w, "Failed to toggle like")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
