package folio

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const userColumns = "id, username, email, password_hash, is_admin, created_at"

// ListUsers returns every user by username.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := s.selectAll(ctx, s.db, &out, "SELECT "+userColumns+" FROM users ORDER BY username"); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// GetUser loads a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.get(ctx, s.db, &u, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return u, err
}

// GetUserByEmail loads a user by email, compared case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.get(ctx, s.db, &u, "SELECT "+userColumns+" FROM users WHERE LOWER(email) = LOWER(?)", email)
	return u, err
}

// UserFieldTaken reports whether another user than excludeID already has
// value in column, which must be "username" or "email".
func (s *Store) UserFieldTaken(ctx context.Context, column, value string, excludeID int64) (bool, error) {
	if column != "username" && column != "email" {
		return false, fmt.Errorf("unknown user column %q", column)
	}
	var n int
	err := s.get(ctx, s.db, &n, "SELECT COUNT(*) FROM users WHERE LOWER("+column+") = LOWER(?) AND id <> ?", value, excludeID)
	return n > 0, err
}

// CountUsers returns the number of users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.get(ctx, s.db, &n, "SELECT COUNT(*) FROM users")
	return n, err
}

// CreateUser inserts u and sets its id. Unique violations are reported as
// duplicates on "username" or "email".
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	id, err := s.insert(ctx, s.db,
		"INSERT INTO users (username, email, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?, ?)",
		u.Username, u.Email, u.PasswordHash, u.IsAdmin, u.CreatedAt)
	if err != nil {
		return classifyUnique(err, "username", "email")
	}
	u.ID = id
	return nil
}

// UpdateUser writes username, email, admin flag and password hash.
func (s *Store) UpdateUser(ctx context.Context, u *User) error {
	err := expectRow(s.exec(ctx, s.db,
		"UPDATE users SET username = ?, email = ?, password_hash = ?, is_admin = ? WHERE id = ?",
		u.Username, u.Email, u.PasswordHash, u.IsAdmin, u.ID))
	return classifyUnique(err, "username", "email")
}

// DeleteUser hands the user's posts and uploads to heirID and removes the
// user, in one transaction.
func (s *Store) DeleteUser(ctx context.Context, id, heirID int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.exec(ctx, tx, "UPDATE posts SET author_id = ? WHERE author_id = ?", heirID, id); err != nil {
			return fmt.Errorf("reassign posts: %w", err)
		}
		if _, err := s.exec(ctx, tx, "UPDATE media SET uploaded_by = ? WHERE uploaded_by = ?", heirID, id); err != nil {
			return fmt.Errorf("reassign media: %w", err)
		}
		return expectRow(s.exec(ctx, tx, "DELETE FROM users WHERE id = ?", id))
	})
}
