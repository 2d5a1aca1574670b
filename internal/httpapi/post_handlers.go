package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"tuitter/internal/dbsql"
	"tuitter/internal/feed"
)

const (
	defaultFeedLimit    = 50
	maxFeedLimit        = 200
	defaultMessageLimit = 100
	maxMessageLimit     = 500
)

// viewerID resolves the optional viewer query parameter so listings can
// carry liked_by_user / reposted_by_user flags. Empty when absent.
func (s *Server) viewerID(ctx context.Context, r *http.Request) string {
	handle := r.URL.Query().Get("viewer")
	if handle == "" {
		return ""
	}
	u, err := s.users.Resolve(ctx, handle)
	if err != nil {
		return ""
	}
	return u.ID
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request, list func(context.Context, int) ([]dbsql.Post, error)) {
	limit, err := parseLimit(r, defaultFeedLimit, maxFeedLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	posts, err := list(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	viewer := s.viewerID(r.Context(), r)
	out := make([]PostOut, 0, len(posts))
	for i := range posts {
		out = append(out, s.newPostOut(r.Context(), &posts[i], viewer))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	s.listPosts(w, r, s.feed.Timeline)
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	s.listPosts(w, r, s.feed.Discover)
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	s.listPosts(w, r, s.feed.Timeline)
}

type postCreateRequest struct {
	Content      string           `json:"content"`
	AuthorHandle string           `json:"author_handle"`
	ParentID     *string          `json:"parent_id"`
	Attachments  []map[string]any `json:"attachments"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req postCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AuthorHandle == "" {
		req.AuthorHandle = "yourname"
	}

	author, err := s.users.Resolve(r.Context(), req.AuthorHandle)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve author")
		return
	}

	post, err := s.feed.CreatePost(r.Context(), author, req.Content, req.ParentID, req.Attachments)
	if err != nil {
		switch {
		case errors.Is(err, feed.ErrAttachmentsTooLarge):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			writeError(w, http.StatusNotFound, "Parent post not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create post")
		}
		return
	}
	s.metrics.PostsCreated.Inc()
	writeJSON(w, http.StatusCreated, s.newPostOut(r.Context(), post, author.ID))
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.feed.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch post")
		return
	}
	writeJSON(w, http.StatusOK, s.newPostOut(r.Context(), post, s.viewerID(r.Context(), r)))
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	err := s.feed.DeletePost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	s.toggleInteraction(w, r, s.feed.ToggleLike)
}

func (s *Server) handleRepost(w http.ResponseWriter, r *http.Request) {
	s.toggleInteraction(w, r, s.feed.ToggleRepost)
}

func (s *Server) toggleInteraction(w http.ResponseWriter, r *http.Request, toggle func(context.Context, string, *dbsql.User) (*dbsql.Post, bool, error)) {
	viewer, err := s.users.Resolve(r.Context(), handleParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve user")
		return
	}

	post, _, err := toggle(r.Context(), mux.Vars(r)["id"], viewer)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to toggle interaction")
		return
	}
	writeJSON(w, http.StatusOK, s.newPostOut(r.Context(), post, viewer.ID))
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.feed.ListComments(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list comments")
		return
	}

	out := make([]CommentOut, 0, len(comments))
	for _, c := range comments {
		out = append(out, CommentOut{User: c.Username, Text: c.Text})
	}
	writeJSON(w, http.StatusOK, out)
}

type commentRequest struct {
	Text string `json:"text"`
	User string `json:"user"`
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.User == "" {
		req.User = "yourname"
	}

	author, err := s.users.Resolve(r.Context(), req.User)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve user")
		return
	}

	comment, err := s.feed.AddComment(r.Context(), mux.Vars(r)["id"], author, req.Text)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, CommentOut{User: comment.Username, Text: comment.Text})
}
