package handlers

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"socialfeed/pkg/session"
	"socialfeed/pkg/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserHandler struct {
	Sm     session.SessionManager
	Repo   UsersRepo
	Logger *zap.SugaredLogger
}

type UsersRepo interface {
	GetByID(id int64) (*user.User, error)
	GetByUsername(username string) (*user.User, error)
	GetByEmail(email string) (*user.User, error)
	Add(u *user.User) (int64, error)
	UpdatePassword(id int64, password string) (bool, error)
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *user.User `json:"user"`
	Token string     `json:"token,omitempty"`
}

const avatarURLPrefix = "https://api.dicebear.com/7.x/initials/svg?seed="

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var req RegisterRequest
	err = json.Unmarshal(body, &req)
	if err != nil {
		WriteError(w, "bad request", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		WriteError(w, "Username, email, and password are required", http.StatusBadRequest)
		return
	}

	existing, err := h.Repo.GetByUsername(req.Username)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		WriteError(w, "Username already taken", http.StatusConflict)
		return
	}

	existing, err = h.Repo.GetByEmail(req.Email)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		WriteError(w, "Email already registered", http.StatusConflict)
		return
	}

	u := &user.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   avatarURLPrefix + req.Username,
		Created:  time.Now(),
	}

	id, err := h.Repo.Add(u)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Failed to register", http.StatusInternalServerError)
		return
	}
	u.ID = id

	h.writeAuthResponse(w, u, http.StatusCreated)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var req LoginRequest
	err = json.Unmarshal(body, &req)
	if err != nil {
		WriteError(w, "bad request", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		WriteError(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	u, err := h.Repo.GetByUsername(req.Username)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// passwords are stored and compared as given
	if u == nil || u.Password != req.Password {
		WriteError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	h.writeAuthResponse(w, u, http.StatusOK)
}

func (h *UserHandler) writeAuthResponse(w http.ResponseWriter, u *user.User, status int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sessID := uuid.New().String()
	expiresAt := time.Now().Add(2 * time.Hour).Unix()
	token, err := h.Sm.Create(ctx, &session.User{ID: u.ID, Username: u.Username}, sessID, expiresAt)
	if err != nil {
		h.Logger.Error(err.Error())
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, &AuthResponse{User: u, Token: token}, status)
}
