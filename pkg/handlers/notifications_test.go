package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialfeed/pkg/notifications"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	notificationID   = primitive.NewObjectID()
	testNotification = &notifications.Notification{
		ID:          notificationID,
		Type:        notifications.TypeNewComment,
		PostID:      postID,
		RecipientID: authorID,
		SenderID:    viewerID,
		Read:        false,
		IsCleared:   false,
		Created:     testTime,
	}
)

func newNotificationHandler(ctrl *gomock.Controller) (*NotificationHandler, *MockNotificationsRepo, *MockPostsRepo, *MockUsersRepo) {
	notificationsRepo := NewMockNotificationsRepo(ctrl)
	postsRepo := NewMockPostsRepo(ctrl)
	usersRepo := NewMockUsersRepo(ctrl)
	h := &NotificationHandler{
		NotificationsRepo: notificationsRepo,
		PostsRepo:         postsRepo,
		UsersRepo:         usersRepo,
		Logger:            zap.NewNop().Sugar(),
	}
	return h, notificationsRepo, postsRepo, usersRepo
}

func TestListNotifications(t *testing.T) {
	boolPtr := func(v bool) *bool { return &v }

	cases := []struct {
		name    string
		query   string
		limit   int64
		cleared *bool
	}{
		{name: "all", query: "", limit: 0, cleared: nil},
		{name: "active only", query: "?cleared=false", limit: 0, cleared: boolPtr(false)},
		{name: "cleared with limit", query: "?cleared=true&limit=5", limit: 5, cleared: boolPtr(true)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			h, notificationsRepo, postsRepo, usersRepo := newNotificationHandler(ctrl)

			notificationsRepo.EXPECT().
				GetByRecipient(gomock.Any(), authorID, tc.limit, matchBoolPtr(tc.cleared)).
				Return([]*notifications.Notification{testNotification}, nil)
			postsRepo.EXPECT().GetByID(gomock.Any(), postID).Return(testPost, nil)
			usersRepo.EXPECT().GetByID(viewerID).Return(testAuthor, nil)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/notifications/%d%s", authorID, tc.query), nil)
			r = mux.SetURLVars(r, map[string]string{"user_id": fmt.Sprint(authorID)})

			h.List(w, r)

			if w.Result().StatusCode != http.StatusOK {
				t.Fatalf("wrong status code: %d, body %s", w.Result().StatusCode, w.Body.String())
			}

			var resp []*NotificationResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("bad response body: %s", w.Body.String())
			}
			if len(resp) != 1 {
				t.Fatalf("unexpected notifications: %+v", resp)
			}
			if resp[0].Type != notifications.TypeNewComment {
				t.Errorf("wrong type: %s", resp[0].Type)
			}
			if resp[0].Post == nil || resp[0].Post.Title != testPost.Title {
				t.Errorf("post not embedded: %+v", resp[0].Post)
			}
			if resp[0].Sender == nil || resp[0].Sender.Username != testAuthor.Username {
				t.Errorf("sender not embedded: %+v", resp[0].Sender)
			}
		})
	}
}

func TestListNotificationsBadCleared(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, _, _, _ := newNotificationHandler(ctrl)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/notifications/%d?cleared=maybe", authorID), nil)
	r = mux.SetURLVars(r, map[string]string{"user_id": fmt.Sprint(authorID)})

	h.List(w, r)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}
}

func TestUnreadCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, notificationsRepo, _, _ := newNotificationHandler(ctrl)

	notificationsRepo.EXPECT().UnreadCount(gomock.Any(), authorID).Return(int64(3), nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/notifications/%d/unread-count", authorID), nil)
	r = mux.SetURLVars(r, map[string]string{"user_id": fmt.Sprint(authorID)})

	h.UnreadCount(w, r)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}
	if got := w.Body.String(); got != `{"count":3}` {
		t.Errorf("unexpected response: %s", got)
	}
}

func TestMarkAllRead(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, notificationsRepo, _, _ := newNotificationHandler(ctrl)

	notificationsRepo.EXPECT().MarkAllRead(gomock.Any(), authorID).Return(int64(3), nil)

	body, _ := json.Marshal(&MarkReadRequest{UserID: authorID})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/notifications/mark-as-read", bytes.NewBuffer(body))

	h.MarkAllRead(w, r)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}
	if got := w.Body.String(); got != `{"message":"Notifications marked as read"}` {
		t.Errorf("unexpected response: %s", got)
	}
}

func TestClearAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, notificationsRepo, _, _ := newNotificationHandler(ctrl)

	notificationsRepo.EXPECT().ClearAll(gomock.Any(), authorID).Return(int64(3), nil)

	body, _ := json.Marshal(&MarkReadRequest{UserID: authorID})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/notifications/clear-all", bytes.NewBuffer(body))

	h.ClearAll(w, r)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}
	if got := w.Body.String(); got != `{"message":"All notifications cleared"}` {
		t.Errorf("unexpected response: %s", got)
	}
}

func TestMarkAllReadMissingUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, _, _, _ := newNotificationHandler(ctrl)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/notifications/mark-as-read", bytes.NewBufferString(`{}`))

	h.MarkAllRead(w, r)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}
}

// matchBoolPtr compares *bool values, not pointers.
type boolPtrMatcher struct {
	want *bool
}

func matchBoolPtr(want *bool) gomock.Matcher {
	return boolPtrMatcher{want: want}
}

func (m boolPtrMatcher) Matches(x interface{}) bool {
	got, ok := x.(*bool)
	if !ok {
		return false
	}
	if m.want == nil || got == nil {
		return m.want == nil && got == nil
	}
	return *m.want == *got
}

func (m boolPtrMatcher) String() string {
	if m.want == nil {
		return "is nil *bool"
	}
	return fmt.Sprintf("is *bool %v", *m.want)
}
