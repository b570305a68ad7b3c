package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/formworks/formworks/ports"
)

// AdminStore is a SQLite implementation of ports.AdminStore.
type AdminStore struct {
	db *DB
}

// NewAdminStore creates a new SQLite admin store.
func NewAdminStore(db *DB) *AdminStore {
	return &AdminStore{db: db}
}

// Create stores a new admin.
func (s *AdminStore) Create(ctx context.Context, a ports.Admin) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (id, username, password_hash, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.Username, a.PasswordHash, nullString(a.Email), a.CreatedAt, a.UpdatedAt)
	if isUniqueConstraintError(err) {
		return ports.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

// GetByUsername retrieves an admin by lowercase username.
func (s *AdminStore) GetByUsername(ctx context.Context, username string) (ports.Admin, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, email, created_at, updated_at
		FROM admins WHERE username = ?
	`, username)

	a, err := scanAdmin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.Admin{}, ports.ErrNotFound
	}
	if err != nil {
		return ports.Admin{}, fmt.Errorf("query admin: %w", err)
	}
	return a, nil
}

// List returns all admins, newest first.
func (s *AdminStore) List(ctx context.Context) ([]ports.Admin, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, password_hash, email, created_at, updated_at
		FROM admins ORDER BY created_at DESC, username ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query admins: %w", err)
	}
	defer rows.Close()

	var out []ports.Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admins: %w", err)
	}
	return out, nil
}

// Count returns the total admin count.
func (s *AdminStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM admins").Scan(&count); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

func scanAdmin(row rowScanner) (ports.Admin, error) {
	var a ports.Admin
	var email sql.NullString
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &email, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return ports.Admin{}, err
	}
	a.Email = email.String
	return a, nil
}

// Ensure interface compliance.
var _ ports.AdminStore = (*AdminStore)(nil)
