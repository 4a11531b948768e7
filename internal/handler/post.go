package handler

import (
	"log/slog"
	"net/http"

	"github.com/performproject/backend/internal/auth"
	"github.com/performproject/backend/internal/model"
	"github.com/performproject/backend/internal/repository"
	"github.com/performproject/backend/internal/service"
)

// PostHandler serves the community board endpoints.
type PostHandler struct {
	postService *service.PostService
	logger      *slog.Logger
}

func NewPostHandler(postService *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{postService: postService, logger: logger}
}

type postRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// HandleCreate creates a board post.
//
// HTTP: POST /api/posts
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.postService.CreatePost(r.Context(), user.UserID, &model.Post{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// HandleList lists posts, optionally filtered by category.
//
// HTTP: GET /api/posts?category=&limit=&offset=
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListPosts(r.Context(), r.URL.Query().Get("category"), repository.ListOptions{
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// HandleGet returns one post and counts the view.
//
// HTTP: GET /api/posts/{postID}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	post, err := h.postService.GetPost(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleDelete deletes the caller's post.
//
// HTTP: DELETE /api/posts/{postID}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.postService.DeletePost(r.Context(), user.UserID, postID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type commentRequest struct {
	Content         string `json:"content"`
	ParentCommentID *int64 `json:"parentCommentId"`
}

// HandleAddComment comments on a post.
//
// HTTP: POST /api/posts/{postID}/comments
func (h *PostHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.postService.AddComment(r.Context(), user.UserID, postID, &model.Comment{
		Content:         req.Content,
		ParentCommentID: req.ParentCommentID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// HandleListComments lists a post's comments.
//
// HTTP: GET /api/posts/{postID}/comments
func (h *PostHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	comments, err := h.postService.ListComments(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HandleDeleteComment deletes the caller's comment.
//
// HTTP: DELETE /api/posts/comments/{commentID}
func (h *PostHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	commentID, err := pathID(r, "commentID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.postService.DeleteComment(r.Context(), user.UserID, commentID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleLike likes a post. Liking twice is a 409.
//
// HTTP: POST /api/posts/{postID}/likes
func (h *PostHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.postService.LikePost(r.Context(), user.UserID, postID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUnlike removes the caller's like from a post.
//
// HTTP: DELETE /api/posts/{postID}/likes
func (h *PostHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.postService.UnlikePost(r.Context(), user.UserID, postID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
