package user

import "time"

type User struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"-"`
	Avatar   string    `json:"avatar"`
	Bio      string    `json:"bio,omitempty"`
	Created  time.Time `json:"createdAt"`
}
