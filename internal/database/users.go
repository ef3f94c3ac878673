// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/librarium-app/librarium/internal/models"
)

const userColumns = `id, name, email, phone, created_at`

func scanUser(s bookScanner) (*models.User, error) {
	var (
		u     models.User
		phone sql.NullString
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &phone, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Phone = phone.String
	return &u, nil
}

// CreateUser registers a new borrower. The id and creation timestamp are
// assigned by the store. Returns ErrDuplicateKey when the email is taken.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackWithLog(tx.Rollback)

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM users WHERE email = ?`, u.Email).Scan(&count); err != nil {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("email %q: %w", u.Email, ErrDuplicateKey)
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO users (name, email, phone)
		VALUES (?, ?, ?)
		RETURNING id, created_at`,
		u.Name, u.Email, nullStr(u.Phone))
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		observe("insert", "users", start, err)
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user insert: %w", err)
	}
	observe("insert", "users", start, nil)
	return nil
}

// GetUser fetches one borrower by id.
func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	row := db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		observe("select", "users", start, nil)
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		observe("select", "users", start, err)
		return nil, fmt.Errorf("failed to fetch user %d: %w", id, err)
	}
	observe("select", "users", start, nil)
	return u, nil
}

// ListUsers returns all registered borrowers in insertion order.
func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		observe("select", "users", start, err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer closeQuietly(rows)

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			observe("select", "users", start, err)
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		observe("select", "users", start, err)
		return nil, fmt.Errorf("user row iteration failed: %w", err)
	}
	observe("select", "users", start, nil)
	return users, nil
}

// UpdateUser applies a partial update to a borrower. Returns the updated
// user, ErrNotFound, or ErrDuplicateKey when a changed email collides.
func (db *DB) UpdateUser(ctx context.Context, id int64, req *models.UpdateUserRequest) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackWithLog(tx.Rollback)

	row := tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %d: %w", id, err)
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil && *req.Email != u.Email {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM users WHERE email = ? AND id <> ?`, *req.Email, id).Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("email %q: %w", *req.Email, ErrDuplicateKey)
		}
		u.Email = *req.Email
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}

	_, err = tx.ExecContext(ctx, `UPDATE users SET name = ?, email = ?, phone = ? WHERE id = ?`,
		u.Name, u.Email, nullStr(u.Phone), id)
	if err != nil {
		observe("update", "users", start, err)
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user update: %w", err)
	}
	observe("update", "users", start, nil)
	return u, nil
}

// DeleteUser removes a borrower. An open loan always blocks deletion with
// ErrConflict; historical loans block it unless purgeHistory is set.
func (db *DB) DeleteUser(ctx context.Context, id int64, purgeHistory bool) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackWithLog(tx.Rollback)

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM users WHERE id = ?`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check user %d: %w", id, err)
	}
	if exists == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}

	var open, closed int
	row := tx.QueryRowContext(ctx, `
		SELECT
			count(*) FILTER (WHERE NOT returned),
			count(*) FILTER (WHERE returned)
		FROM loans WHERE user_id = ?`, id)
	if err := row.Scan(&open, &closed); err != nil {
		return fmt.Errorf("failed to count loans for user %d: %w", id, err)
	}
	if open > 0 {
		return fmt.Errorf("user %d has an open loan: %w", id, ErrConflict)
	}
	if closed > 0 {
		if !purgeHistory {
			return fmt.Errorf("user %d has %d historical loans: %w", id, closed, ErrConflict)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM loans WHERE user_id = ? AND returned`, id); err != nil {
			return fmt.Errorf("failed to purge loan history for user %d: %w", id, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		observe("delete", "users", start, err)
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user delete: %w", err)
	}
	observe("delete", "users", start, nil)
	return nil
}
