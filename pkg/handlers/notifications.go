package handlers

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strconv"
	"time"

	"socialfeed/pkg/notifications"

	"go.uber.org/zap"
)

type NotificationHandler struct {
	NotificationsRepo NotificationsRepo
	PostsRepo         PostsRepo
	UsersRepo         UsersRepo
	Logger            *zap.SugaredLogger
}

type NotificationsRepo interface {
	Add(ctx context.Context, n *notifications.Notification) (interface{}, error)
	GetByRecipient(ctx context.Context, userID, limit int64, cleared *bool) ([]*notifications.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	ClearAll(ctx context.Context, userID int64) (int64, error)
	DeleteByPostID(ctx context.Context, postID interface{}) (int64, error)
}

type MarkReadRequest struct {
	UserID int64 `json:"userId"`
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := ParseInt64Param(r, "user_id")
	if err != nil {
		WriteError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	limit := int64(0)
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.ParseInt(v, 10, 64)
		if err != nil || limit < 1 {
			WriteError(w, "invalid limit", http.StatusBadRequest)
			return
		}
	}

	var cleared *bool
	if v := r.URL.Query().Get("cleared"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			WriteError(w, "invalid cleared value", http.StatusBadRequest)
			return
		}
		cleared = &parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	notifsDb, err := h.NotificationsRepo.GetByRecipient(ctx, userID, limit, cleared)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to fetch notifications", http.StatusInternalServerError)
		return
	}

	resp := make([]*NotificationResponse, 0, len(notifsDb))
	for _, n := range notifsDb {
		mapped := &NotificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			Read:      n.Read,
			IsCleared: n.IsCleared,
			Created:   n.Created,
		}

		post, err := h.PostsRepo.GetByID(ctx, n.PostID)
		if err != nil {
			h.Logger.Error(err.Error())
			WriteError(w, "Failed to fetch notifications", http.StatusInternalServerError)
			return
		}
		if post != nil {
			mapped.Post = &PostRef{ID: post.ID, Title: post.Title}
		}

		sender, err := lookupAuthor(h.UsersRepo, n.SenderID)
		if err != nil {
			h.Logger.Error(err.Error())
			WriteError(w, "Failed to fetch notifications", http.StatusInternalServerError)
			return
		}
		mapped.Sender = sender

		resp = append(resp, mapped)
	}

	writeJSON(w, resp, http.StatusOK)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, err := ParseInt64Param(r, "user_id")
	if err != nil {
		WriteError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := h.NotificationsRepo.UnreadCount(ctx, userID)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to count notifications", http.StatusInternalServerError)
		return
	}

	writeJSON(w, &CountResponse{Count: count}, http.StatusOK)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDFromBody(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.NotificationsRepo.MarkAllRead(ctx, userID)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to update notifications", http.StatusInternalServerError)
		return
	}

	WriteMessage(w, "Notifications marked as read", http.StatusOK)
}

func (h *NotificationHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDFromBody(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.NotificationsRepo.ClearAll(ctx, userID)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to update notifications", http.StatusInternalServerError)
		return
	}

	WriteMessage(w, "All notifications cleared", http.StatusOK)
}

func (h *NotificationHandler) userIDFromBody(w http.ResponseWriter, r *http.Request) (int64, bool) {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return 0, false
	}

	var req MarkReadRequest
	err = json.Unmarshal(body, &req)
	if err != nil {
		WriteError(w, "bad request", http.StatusBadRequest)
		return 0, false
	}

	if req.UserID == 0 {
		WriteError(w, "userId is required", http.StatusBadRequest)
		return 0, false
	}

	return req.UserID, true
}
