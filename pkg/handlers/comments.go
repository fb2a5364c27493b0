package handlers

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"socialfeed/pkg/comments"
	"socialfeed/pkg/session"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type CommentHandler struct {
	PostsRepo    PostsRepo
	CommentsRepo CommentsRepo
	UsersRepo    UsersRepo
	Notifier     Notifier
	Sm           session.SessionManager
	Logger       *zap.SugaredLogger
}

type CommentsRepo interface {
	GetByPostID(ctx context.Context, postID interface{}) ([]*comments.Comment, error)
	GetByID(ctx context.Context, id interface{}) (*comments.Comment, error)
	Count(ctx context.Context, postID interface{}) (int64, error)
	Add(ctx context.Context, c *comments.Comment) (interface{}, error)
	Delete(ctx context.Context, id interface{}) (bool, error)
	DeleteByPostID(ctx context.Context, postID interface{}) (int64, error)

	ParseID(in string) (interface{}, error)
}

type Notifier interface {
	NewComment(ctx context.Context, postID interface{}, recipientID, senderID int64) error
}

type AddCommentRequest struct {
	Content  string `json:"content"`
	AuthorID int64  `json:"authorId"`
}

type DeleteCommentRequest struct {
	UserID int64 `json:"userId"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	postID, err := h.CommentsRepo.ParseID(mux.Vars(r)["post_id"])
	if err != nil {
		WriteError(w, "invalid post id", http.StatusBadRequest)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var req AddCommentRequest
	err = json.Unmarshal(body, &req)
	if err != nil {
		WriteError(w, "bad request", http.StatusBadRequest)
		return
	}

	if req.Content == "" || req.AuthorID == 0 {
		WriteError(w, "Missing content or authorId", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, err := h.PostsRepo.GetByID(ctx, postID)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to add comment", http.StatusInternalServerError)
		return
	}
	if post == nil {
		WriteError(w, "Post not found", http.StatusNotFound)
		return
	}

	comment := &comments.Comment{
		PostID:   postID,
		AuthorID: req.AuthorID,
		Content:  req.Content,
		Created:  time.Now(),
	}

	id, err := h.CommentsRepo.Add(ctx, comment)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to add comment", http.StatusInternalServerError)
		return
	}
	comment.ID = id

	// the notifier suppresses self-comments itself; a failed insert must not
	// fail the comment
	err = h.Notifier.NewComment(ctx, postID, post.AuthorID, req.AuthorID)
	if err != nil {
		h.Logger.Errorf("failed to notify about comment %v: %v", id, err)
	}

	author, err := lookupAuthor(h.UsersRepo, comment.AuthorID)
	if err != nil {
		h.Logger.Error(err.Error())
	}

	writeJSON(w, mapToCommentResponse(comment, author), http.StatusCreated)
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	postID, err := h.CommentsRepo.ParseID(mux.Vars(r)["post_id"])
	if err != nil {
		WriteError(w, "invalid post id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	commentsDb, err := h.CommentsRepo.GetByPostID(ctx, postID)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to fetch comments", http.StatusInternalServerError)
		return
	}

	resp, err := mapToCommentsResponse(commentsDb, h.UsersRepo)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to fetch comments", http.StatusInternalServerError)
		return
	}

	writeJSON(w, resp, http.StatusOK)
}

func (h *CommentHandler) Count(w http.ResponseWriter, r *http.Request) {
	postID, err := h.CommentsRepo.ParseID(mux.Vars(r)["post_id"])
	if err != nil {
		WriteError(w, "invalid post id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := h.CommentsRepo.Count(ctx, postID)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to count comments", http.StatusInternalServerError)
		return
	}

	writeJSON(w, &CountResponse{Count: count}, http.StatusOK)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.CommentsRepo.ParseID(mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, "invalid comment id", http.StatusBadRequest)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var req DeleteCommentRequest
	err = json.Unmarshal(body, &req)
	if err != nil {
		WriteError(w, "bad request", http.StatusBadRequest)
		return
	}

	userID := req.UserID

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// a valid session wins over the client-supplied id
	if r.Header.Get("Authorization") != "" {
		sess, err := h.Sm.Check(ctx, r)
		if err == nil && sess != nil && sess.User != nil {
			userID = sess.User.ID
		}
	}

	comment, err := h.CommentsRepo.GetByID(ctx, id)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to delete comment", http.StatusInternalServerError)
		return
	}
	if comment == nil {
		WriteError(w, "Comment not found", http.StatusNotFound)
		return
	}

	if comment.AuthorID != userID {
		WriteError(w, "You can only delete your own comments", http.StatusForbidden)
		return
	}

	ok, err := h.CommentsRepo.Delete(ctx, id)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to delete comment", http.StatusInternalServerError)
		return
	}
	if !ok {
		WriteError(w, "Comment not found", http.StatusNotFound)
		return
	}

	WriteMessage(w, "Comment deleted", http.StatusOK)
}
