package user

import (
	"database/sql"
)

type UserRepoSQL struct {
	db *sql.DB
}

func NewUserRepoSQL(db *sql.DB) *UserRepoSQL {
	return &UserRepoSQL{db: db}
}

const selectFields = "SELECT `id`, `username`, `email`, `password`, `avatar`, `bio`, `created_at` FROM users"

func (repo *UserRepoSQL) GetByID(id int64) (*User, error) {
	r := repo.db.QueryRow(selectFields+" WHERE id = ?", id)
	return scanUser(r)
}

func (repo *UserRepoSQL) GetByUsername(username string) (*User, error) {
	r := repo.db.QueryRow(selectFields+" WHERE username = ?", username)
	return scanUser(r)
}

func (repo *UserRepoSQL) GetByEmail(email string) (*User, error) {
	r := repo.db.QueryRow(selectFields+" WHERE email = ?", email)
	return scanUser(r)
}

func (repo *UserRepoSQL) Add(user *User) (int64, error) {
	query := "INSERT INTO users (`username`, `email`, `password`, `avatar`, `bio`, `created_at`) VALUES (?, ?, ?, ?, ?, ?)"
	r, err := repo.db.Exec(query, user.Username, user.Email, user.Password, user.Avatar, user.Bio, user.Created)
	if err != nil {
		return 0, err
	}

	lastID, err := r.LastInsertId()
	if err != nil {
		return 0, err
	}

	return lastID, nil
}

func (repo *UserRepoSQL) UpdatePassword(id int64, password string) (bool, error) {
	r, err := repo.db.Exec("UPDATE users SET `password` = ? WHERE id = ?", password, id)
	if err != nil {
		return false, err
	}

	affected, err := r.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func scanUser(r *sql.Row) (*User, error) {
	u := User{}
	err := r.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Avatar, &u.Bio, &u.Created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}
