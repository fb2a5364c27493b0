package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialfeed/pkg/posts"
	"socialfeed/pkg/session"
	"socialfeed/pkg/user"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func newProfileHandler(ctrl *gomock.Controller) (*ProfileHandler, *MockUsersRepo, *MockPostsRepo, *session.MockSessionManager) {
	usersRepo := NewMockUsersRepo(ctrl)
	postsRepo := NewMockPostsRepo(ctrl)
	sm := session.NewMockSessionManager(ctrl)
	h := &ProfileHandler{
		UsersRepo: usersRepo,
		PostsRepo: postsRepo,
		Sm:        sm,
		Logger:    zap.NewNop().Sugar(),
	}
	return h, usersRepo, postsRepo, sm
}

func TestGetProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, usersRepo, _, _ := newProfileHandler(ctrl)

	u := &user.User{
		ID:       authorID,
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret",
		Avatar:   "https://example.com/a.png",
		Bio:      "hi there",
		Created:  testTime,
	}
	usersRepo.EXPECT().GetByID(authorID).Return(u, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/profile/%d", authorID), nil)
	r = mux.SetURLVars(r, map[string]string{"id": fmt.Sprint(authorID)})

	h.GetProfile(w, r)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}

	var resp ProfileResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %s", w.Body.String())
	}
	if resp.Name != u.Username || resp.Email != u.Email || resp.Bio != u.Bio {
		t.Errorf("unexpected profile: %+v", resp)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("secret")) {
		t.Errorf("password leaked into profile: %s", w.Body.String())
	}
}

func TestGetProfileNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, usersRepo, _, _ := newProfileHandler(ctrl)

	usersRepo.EXPECT().GetByID(authorID).Return(nil, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/profile/%d", authorID), nil)
	r = mux.SetURLVars(r, map[string]string{"id": fmt.Sprint(authorID)})

	h.GetProfile(w, r)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}
	if got := w.Body.String(); got != `{"error":"User not found"}` {
		t.Errorf("unexpected response: %s", got)
	}
}

func TestGetProfilePosts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, usersRepo, postsRepo, _ := newProfileHandler(ctrl)

	postsRepo.EXPECT().GetByAuthorID(gomock.Any(), authorID).Return([]*posts.Post{testPost}, nil)
	usersRepo.EXPECT().GetByID(authorID).Return(testAuthor, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/profile/%d/posts", authorID), nil)
	r = mux.SetURLVars(r, map[string]string{"id": fmt.Sprint(authorID)})

	h.GetProfilePosts(w, r)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}

	var resp []*PostResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %s", w.Body.String())
	}
	if len(resp) != 1 || resp[0].Title != testPost.Title {
		t.Errorf("unexpected posts: %+v", resp)
	}
}

func TestChangePassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, usersRepo, _, sm := newProfileHandler(ctrl)

	u := &user.User{ID: authorID, Username: "alice", Password: "old_password"}
	usersRepo.EXPECT().GetByID(authorID).Return(u, nil)
	usersRepo.EXPECT().UpdatePassword(authorID, "new_password").Return(true, nil)
	sm.EXPECT().DestroyAll(gomock.Any(), authorID).Return(nil)

	body, _ := json.Marshal(&ChangePasswordRequest{CurrentPassword: "old_password", NewPassword: "new_password"})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/profile/%d/password", authorID), bytes.NewBuffer(body))
	r = mux.SetURLVars(r, map[string]string{"id": fmt.Sprint(authorID)})

	h.ChangePassword(w, r)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("wrong status code: %d, body %s", w.Result().StatusCode, w.Body.String())
	}
	if got := w.Body.String(); got != `{"success":true,"message":"Password updated successfully"}` {
		t.Errorf("unexpected response: %s", got)
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, usersRepo, _, _ := newProfileHandler(ctrl)

	u := &user.User{ID: authorID, Username: "alice", Password: "old_password"}
	usersRepo.EXPECT().GetByID(authorID).Return(u, nil)

	body, _ := json.Marshal(&ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "new_password"})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/profile/%d/password", authorID), bytes.NewBuffer(body))
	r = mux.SetURLVars(r, map[string]string{"id": fmt.Sprint(authorID)})

	h.ChangePassword(w, r)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}
	if got := w.Body.String(); got != `{"error":"Current password is incorrect"}` {
		t.Errorf("unexpected response: %s", got)
	}
}

func TestChangePasswordMissingFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, _, _, _ := newProfileHandler(ctrl)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/profile/%d/password", authorID), bytes.NewBufferString(`{"newPassword":"x"}`))
	r = mux.SetURLVars(r, map[string]string{"id": fmt.Sprint(authorID)})

	h.ChangePassword(w, r)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}
}

func TestGetUserID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, usersRepo, _, _ := newProfileHandler(ctrl)

	usersRepo.EXPECT().GetByUsername("alice").Return(testAuthor, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/user/alice", nil)
	r = mux.SetURLVars(r, map[string]string{"username": "alice"})

	h.GetUserID(w, r)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}
	if got := w.Body.String(); got != `{"id":1}` {
		t.Errorf("unexpected response: %s", got)
	}
}

func TestGetUserIDNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	h, usersRepo, _, _ := newProfileHandler(ctrl)

	usersRepo.EXPECT().GetByUsername("ghost").Return(nil, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/user/ghost", nil)
	r = mux.SetURLVars(r, map[string]string{"username": "ghost"})

	h.GetUserID(w, r)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("wrong status code: %d", w.Result().StatusCode)
	}
}
