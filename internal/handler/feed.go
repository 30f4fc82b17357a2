package handler

import (
	"log"
	"net/http"
	"strconv"

	"socialfeed/internal/httputil"
	"socialfeed/internal/service"
	"socialfeed/internal/transport/http/middleware"
)

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

// GetFeed handles GET /feed?limit=
// Returns published posts from the accounts the viewer follows, in store
// order, at most 25 per request.
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	feed, err := h.feedService.GetFeed(r.Context(), viewerID, limit)
	if err != nil {
		log.Printf("[ERROR] Feed handler: viewer=%d err=%v", viewerID, err)
		httputil.WriteInternalError(w, "Failed to get feed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, feed)
}
