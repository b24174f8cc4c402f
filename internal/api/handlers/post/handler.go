package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Regatta/internal/api/handlers"
	"Regatta/internal/api/middleware"
	"Regatta/internal/core/posts"
)

// Handler serves post, vote and comment endpoints
type Handler struct {
	service posts.Service
}

// NewHandler creates a new post handler
func NewHandler(service posts.Service) *Handler {
	return &Handler{service: service}
}

// HandleCreate publishes a post to a community or venue
// POST /api/v1/posts
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req posts.CreatePostRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}
	req.AuthorID = middleware.GetUserID(r)

	post, err := h.service.CreatePost(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, post)
}

// HandleGet returns one post with the caller's vote state
// GET /api/v1/posts/{postID}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPost(r.Context(), chi.URLParam(r, "postID"), middleware.GetUserID(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, post)
}

// HandleVote upvotes a post and returns it refetched
// POST /api/v1/posts/{postID}/vote
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.Vote(r.Context(), chi.URLParam(r, "postID"), middleware.GetUserID(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, post)
}

// HandleUnvote removes the caller's vote and returns the post refetched
// DELETE /api/v1/posts/{postID}/vote
func (h *Handler) HandleUnvote(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.Unvote(r.Context(), chi.URLParam(r, "postID"), middleware.GetUserID(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, post)
}

// HandleAddComment comments on a post
// POST /api/v1/posts/{postID}/comments
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	var req posts.CreateCommentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}
	req.PostID = chi.URLParam(r, "postID")
	req.AuthorID = middleware.GetUserID(r)

	comment, err := h.service.AddComment(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusCreated, comment)
}
