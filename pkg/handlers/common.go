package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"socialfeed/pkg/comments"
	"socialfeed/pkg/notifications"
	"socialfeed/pkg/posts"

	"github.com/gorilla/mux"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type Author struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

type PostResponse struct {
	ID           interface{} `json:"id"`
	Title        string      `json:"title"`
	Content      string      `json:"content"`
	MediaURL     string      `json:"mediaUrl,omitempty"`
	Upvotes      int         `json:"upvotes"`
	AuthorID     int64       `json:"authorId"`
	Created      time.Time   `json:"createdAt"`
	Updated      time.Time   `json:"updatedAt"`
	Author       *Author     `json:"author,omitempty"`
	CommentCount *int64      `json:"commentCount,omitempty"`
}

type CommentResponse struct {
	ID       interface{} `json:"id"`
	PostID   interface{} `json:"postId"`
	AuthorID int64       `json:"authorId"`
	Content  string      `json:"content"`
	Created  time.Time   `json:"createdAt"`
	Author   *Author     `json:"author,omitempty"`
}

type NotificationResponse struct {
	ID        interface{}        `json:"id"`
	Type      notifications.Type `json:"type"`
	Read      bool               `json:"read"`
	IsCleared bool               `json:"isCleared"`
	Created   time.Time          `json:"createdAt"`
	Post      *PostRef           `json:"post,omitempty"`
	Sender    *Author            `json:"sender,omitempty"`
}

type PostRef struct {
	ID    interface{} `json:"id"`
	Title string      `json:"title"`
}

func WriteError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, &ErrorResponse{Error: msg}, status)
}

func WriteMessage(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, &MessageResponse{Message: msg}, status)
}

func WriteSuccess(w http.ResponseWriter) {
	writeJSON(w, &SuccessResponse{Success: true}, http.StatusOK)
}

func writeJSON(w http.ResponseWriter, payload interface{}, status int) {
	res, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(res)
}

func ParseInt64Param(r *http.Request, name string) (int64, error) {
	vars := mux.Vars(r)
	varStr := vars[name]
	val, err := strconv.ParseInt(varStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("wrong id value: %v", varStr)
	}

	return val, nil
}

func mapToPostResponse(p *posts.Post, author *Author) *PostResponse {
	return &PostResponse{
		ID:       p.ID,
		Title:    p.Title,
		Content:  p.Content,
		MediaURL: p.MediaURL,
		Upvotes:  p.Upvotes,
		AuthorID: p.AuthorID,
		Created:  p.Created,
		Updated:  p.Updated,
		Author:   author,
	}
}

func mapToPostsResponse(postsDb []*posts.Post, usersRepo UsersRepo) ([]*PostResponse, error) {
	result := make([]*PostResponse, 0, len(postsDb))
	for _, p := range postsDb {
		author, err := lookupAuthor(usersRepo, p.AuthorID)
		if err != nil {
			return nil, err
		}

		result = append(result, mapToPostResponse(p, author))
	}

	return result, nil
}

func mapToCommentsResponse(commentsDb []*comments.Comment, usersRepo UsersRepo) ([]*CommentResponse, error) {
	result := make([]*CommentResponse, 0, len(commentsDb))
	for _, c := range commentsDb {
		author, err := lookupAuthor(usersRepo, c.AuthorID)
		if err != nil {
			return nil, err
		}

		result = append(result, mapToCommentResponse(c, author))
	}

	return result, nil
}

func mapToCommentResponse(c *comments.Comment, author *Author) *CommentResponse {
	return &CommentResponse{
		ID:       c.ID,
		PostID:   c.PostID,
		AuthorID: c.AuthorID,
		Content:  c.Content,
		Created:  c.Created,
		Author:   author,
	}
}

func lookupAuthor(usersRepo UsersRepo, id int64) (*Author, error) {
	u, err := usersRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}

	return &Author{ID: u.ID, Username: u.Username, Avatar: u.Avatar}, nil
}
