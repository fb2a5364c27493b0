package handlers

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"socialfeed/pkg/session"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	UsersRepo UsersRepo
	PostsRepo PostsRepo
	Sm        session.SessionManager
	Logger    *zap.SugaredLogger
}

type ProfileResponse struct {
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Avatar  string    `json:"avatar"`
	Created time.Time `json:"createdAt"`
	Bio     string    `json:"bio"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type UserIDResponse struct {
	ID int64 `json:"id"`
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := ParseInt64Param(r, "id")
	if err != nil {
		WriteError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	u, err := h.UsersRepo.GetByID(id)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if u == nil {
		WriteError(w, "User not found", http.StatusNotFound)
		return
	}

	resp := &ProfileResponse{
		Name:    u.Username,
		Email:   u.Email,
		Avatar:  u.Avatar,
		Created: u.Created,
		Bio:     u.Bio,
	}

	writeJSON(w, resp, http.StatusOK)
}

func (h *ProfileHandler) GetProfilePosts(w http.ResponseWriter, r *http.Request) {
	id, err := ParseInt64Param(r, "id")
	if err != nil {
		WriteError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	postsDb, err := h.PostsRepo.GetByAuthorID(ctx, id)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to fetch posts", http.StatusInternalServerError)
		return
	}

	resp, err := mapToPostsResponse(postsDb, h.UsersRepo)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to fetch posts", http.StatusInternalServerError)
		return
	}

	writeJSON(w, resp, http.StatusOK)
}

func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := ParseInt64Param(r, "id")
	if err != nil {
		WriteError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var req ChangePasswordRequest
	err = json.Unmarshal(body, &req)
	if err != nil {
		WriteError(w, "bad request", http.StatusBadRequest)
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		WriteError(w, "Current and new password are required", http.StatusBadRequest)
		return
	}

	u, err := h.UsersRepo.GetByID(id)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if u == nil {
		WriteError(w, "User not found", http.StatusNotFound)
		return
	}

	if u.Password != req.CurrentPassword {
		WriteError(w, "Current password is incorrect", http.StatusUnauthorized)
		return
	}

	ok, err := h.UsersRepo.UpdatePassword(id, req.NewPassword)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to update password", http.StatusInternalServerError)
		return
	}
	if !ok {
		WriteError(w, "User not found", http.StatusNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// revoke open sessions, but the password is already changed
	if err := h.Sm.DestroyAll(ctx, id); err != nil {
		h.Logger.Errorf("failed to destroy sessions of user %v: %v", id, err)
	}

	writeJSON(w, &SuccessResponse{Success: true, Message: "Password updated successfully"}, http.StatusOK)
}

func (h *ProfileHandler) GetUserID(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	u, err := h.UsersRepo.GetByUsername(username)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if u == nil {
		WriteError(w, "User not found", http.StatusNotFound)
		return
	}

	writeJSON(w, &UserIDResponse{ID: u.ID}, http.StatusOK)
}
