package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
)

// --- Users ---

func (r *queries) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (username, email, password_hash, date_joined) VALUES (?, ?, ?, ?)`

	res, err := r.q.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.DateJoined)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *queries) getUserBy(ctx context.Context, column string, value any) (*domain.User, error) {
	query := `SELECT id, username, email, password_hash, date_joined, last_login FROM users WHERE ` + column + ` = ?`

	var u domain.User
	var lastLogin sql.NullTime
	err := r.q.QueryRowContext(ctx, query, value).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DateJoined, &lastLogin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return &u, nil
}

func (r *queries) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return r.getUserBy(ctx, "id", id)
}

func (r *queries) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getUserBy(ctx, "username", username)
}

func (r *queries) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUserBy(ctx, "email", email)
}

func (r *queries) TouchLogin(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, time.Now().UTC(), id)
	return err
}

func (r *queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}
