package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"amsvault/internal/store"
)

const userColumns = "id, name, email, password_hash, COALESCE(created_at, '')"

func scanUser(row scanner) (store.User, error) {
	var (
		u         store.User
		createdAt string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &createdAt); err != nil {
		return store.User{}, err
	}
	t, err := scanTime(createdAt)
	if err != nil {
		return store.User{}, err
	}
	u.CreatedAt = t
	return u, nil
}

func (db *DB) CreateUser(ctx context.Context, name, email, password string) (store.User, error) {
	name = strings.TrimSpace(name)
	email = store.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return store.User{}, store.ErrInvalid
	}
	hash, err := store.HashPassword(password)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	now := db.now().UTC()
	res, err := db.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		name, email, hash, formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return store.User{}, store.ErrDuplicateEmail
		}
		return store.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return store.User{}, err
	}
	return store.User{ID: id, Name: name, Email: email, PasswordHash: hash, CreatedAt: now}, nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	row := db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", store.NormalizeEmail(email))
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (db *DB) AuthenticateUser(ctx context.Context, email, password string) (*store.User, error) {
	u, err := db.GetUserByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, err
	}
	if !store.CheckPassword(u.PasswordHash, password) {
		return nil, nil
	}
	return u, nil
}

func (db *DB) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteUser removes the user; bookmarks go with it through the foreign key.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	res, err := db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return affectedOne(res)
}
