package handlers

import (
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"strconv"
	"time"

	"socialfeed/pkg/posts"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type PostHandler struct {
	PostsRepo         PostsRepo
	CommentsRepo      CommentsRepo
	NotificationsRepo NotificationsRepo
	UsersRepo         UsersRepo
	Media             MediaStore
	Logger            *zap.SugaredLogger
}

type PostsRepo interface {
	ListOther(ctx context.Context, excludeAuthorID, limit, offset int64) ([]*posts.Post, int64, error)
	GetByAuthorID(ctx context.Context, authorID int64) ([]*posts.Post, error)
	GetByID(ctx context.Context, id interface{}) (*posts.Post, error)
	Add(ctx context.Context, p *posts.Post) (interface{}, error)
	Update(ctx context.Context, id interface{}, title, content string, updated time.Time) (bool, error)
	Delete(ctx context.Context, id interface{}) (bool, error)
	Upvote(ctx context.Context, id interface{}) (bool, error)
	Unvote(ctx context.Context, id interface{}) (bool, error)

	ParseID(in string) (interface{}, error)
}

type MediaStore interface {
	Save(origName string, src io.Reader) (string, error)
	Remove(url string) error
}

type FeedResponse struct {
	Posts []*PostResponse `json:"posts"`
	Total int64           `json:"total"`
}

type UpdatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

const maxUploadSize = 32 << 20

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(maxUploadSize)
	if err != nil {
		WriteError(w, "bad request", http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	content := r.FormValue("content")
	authorIDStr := r.FormValue("authorId")

	if title == "" || content == "" || authorIDStr == "" {
		WriteError(w, "Title, content, and authorId are required", http.StatusBadRequest)
		return
	}

	authorID, err := strconv.ParseInt(authorIDStr, 10, 64)
	if err != nil {
		WriteError(w, "invalid authorId", http.StatusBadRequest)
		return
	}

	mediaURL := ""
	file, header, err := r.FormFile("media")
	if err == nil {
		mediaURL, err = h.Media.Save(header.Filename, file)
		file.Close()
		if err != nil {
			h.Logger.Error(err.Error())
			WriteError(w, "Failed to store media", http.StatusInternalServerError)
			return
		}
	} else if err != http.ErrMissingFile {
		WriteError(w, "bad request", http.StatusBadRequest)
		return
	}

	now := time.Now()
	post := &posts.Post{
		Title:    title,
		Content:  content,
		MediaURL: mediaURL,
		Upvotes:  0,
		AuthorID: authorID,
		Created:  now,
		Updated:  now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := h.PostsRepo.Add(ctx, post)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to create post", http.StatusInternalServerError)
		return
	}
	post.ID = id

	writeJSON(w, mapToPostResponse(post, nil), http.StatusCreated)
}

func (h *PostHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := h.PostsRepo.ParseID(mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, "invalid post id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	post, err := h.PostsRepo.GetByID(ctx, id)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if post == nil {
		WriteError(w, "Post not found", http.StatusNotFound)
		return
	}

	author, err := lookupAuthor(h.UsersRepo, post.AuthorID)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	count, err := h.CommentsRepo.Count(ctx, post.ID)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := mapToPostResponse(post, author)
	resp.CommentCount = &count

	writeJSON(w, resp, http.StatusOK)
}

// ListOther serves the feed: everyone's posts except the viewer's own,
// most recently updated first.
func (h *PostHandler) ListOther(w http.ResponseWriter, r *http.Request) {
	excludeID, err := ParseInt64Param(r, "user_id")
	if err != nil {
		WriteError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	page := int64(1)
	limit := int64(10)
	if v := r.URL.Query().Get("page"); v != "" {
		page, err = strconv.ParseInt(v, 10, 64)
		if err != nil || page < 1 {
			WriteError(w, "invalid page", http.StatusBadRequest)
			return
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.ParseInt(v, 10, 64)
		if err != nil || limit < 1 {
			WriteError(w, "invalid limit", http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	postsDb, total, err := h.PostsRepo.ListOther(ctx, excludeID, limit, (page-1)*limit)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to fetch posts", http.StatusInternalServerError)
		return
	}

	postsResp, err := mapToPostsResponse(postsDb, h.UsersRepo)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to fetch posts", http.StatusInternalServerError)
		return
	}

	writeJSON(w, &FeedResponse{Posts: postsResp, Total: total}, http.StatusOK)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.PostsRepo.ParseID(mux.Vars(r)["id"])
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

	var req UpdatePostRequest
	err = json.Unmarshal(body, &req)
	if err != nil {
		WriteError(w, "bad request", http.StatusBadRequest)
		return
	}

	if req.Title == "" || req.Content == "" {
		WriteError(w, "Title and content are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ok, err := h.PostsRepo.Update(ctx, id, req.Title, req.Content, time.Now())
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to update post", http.StatusInternalServerError)
		return
	}
	if !ok {
		WriteError(w, "Post not found", http.StatusNotFound)
		return
	}

	post, err := h.PostsRepo.GetByID(ctx, id)
	if err != nil || post == nil {
		if err != nil {
			h.Logger.Error(err.Error())
		}
		WriteError(w, "Failed to update post", http.StatusInternalServerError)
		return
	}

	writeJSON(w, mapToPostResponse(post, nil), http.StatusOK)
}

// Delete removes the post together with its comments, its notifications and
// its stored media. The cascade is explicit and best-effort: a failed step is
// logged, not surfaced.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.PostsRepo.ParseID(mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, "invalid post id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	post, err := h.PostsRepo.GetByID(ctx, id)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to delete post", http.StatusInternalServerError)
		return
	}
	if post == nil {
		WriteError(w, "Post not found", http.StatusNotFound)
		return
	}

	ok, err := h.PostsRepo.Delete(ctx, id)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to delete post", http.StatusInternalServerError)
		return
	}
	if !ok {
		WriteError(w, "Post not found", http.StatusNotFound)
		return
	}

	if _, err := h.CommentsRepo.DeleteByPostID(ctx, id); err != nil {
		h.Logger.Errorf("failed to delete comments of post %v: %v", id, err)
	}

	if _, err := h.NotificationsRepo.DeleteByPostID(ctx, id); err != nil {
		h.Logger.Errorf("failed to delete notifications of post %v: %v", id, err)
	}

	if post.MediaURL != "" {
		if err := h.Media.Remove(post.MediaURL); err != nil {
			h.Logger.Errorf("failed to remove media %v: %v", post.MediaURL, err)
		}
	}

	WriteSuccess(w)
}

func (h *PostHandler) Upvote(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, h.PostsRepo.Upvote)
}

func (h *PostHandler) Unvote(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, h.PostsRepo.Unvote)
}

func (h *PostHandler) vote(w http.ResponseWriter, r *http.Request,
	voteRepo func(context.Context, interface{}) (bool, error)) {
	id, err := h.PostsRepo.ParseID(mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, "invalid post id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ok, err := voteRepo(ctx, id)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !ok {
		WriteError(w, "Post not found", http.StatusNotFound)
		return
	}

	WriteSuccess(w)
}
