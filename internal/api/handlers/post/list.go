package post

import (
	"net/http"
	"strconv"

	"Morsel/internal/api/handlers"
	"Morsel/internal/core/posts"
)

// ListHandler serves the feed
type ListHandler struct {
	service posts.Service
}

// NewListHandler creates a new list posts handler
func NewListHandler(service posts.Service) *ListHandler {
	return &ListHandler{service: service}
}

// HandleList returns a page of posts, newest first
// GET /api/posts?limit=20&offset=0
func (h *ListHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	req, ok := parseListRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.service.ListPosts(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, resp)
}

func parseListRequest(w http.ResponseWriter, r *http.Request) (posts.ListPostsRequest, bool) {
	var req posts.ListPostsRequest
	query := r.URL.Query()

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "limit must be an integer")
			return req, false
		}
		req.Limit = limit
	}

	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "offset must be an integer")
			return req, false
		}
		req.Offset = offset
	}

	return req, true
}
