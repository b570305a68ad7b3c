package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/formworks/formworks/domain/field"
	"github.com/formworks/formworks/domain/form"
	"github.com/formworks/formworks/ports"
)

// FormStore is a SQLite implementation of ports.FormStore.
type FormStore struct {
	db *DB
}

// NewFormStore creates a new SQLite form store.
func NewFormStore(db *DB) *FormStore {
	return &FormStore{db: db}
}

const formColumns = "id, title, description, version, is_active, previous_version, created_at, updated_at"

// Create stores a new lineage root.
func (s *FormStore) Create(ctx context.Context, f form.Form) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO forms (id, title, description, version, is_active, previous_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.Title, nullString(f.Description), f.Version, f.IsActive, nullString(f.PreviousVersion), f.CreatedAt, f.UpdatedAt)
	if isUniqueConstraintError(err) {
		return ports.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert form: %w", err)
	}
	return nil
}

// Get retrieves a form by ID without its fields.
func (s *FormStore) Get(ctx context.Context, id string) (form.Form, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+formColumns+" FROM forms WHERE id = ?", id)
	f, err := scanForm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return form.Form{}, ports.ErrNotFound
	}
	if err != nil {
		return form.Form{}, fmt.Errorf("query form: %w", err)
	}
	return f, nil
}

// GetWithFields retrieves any form version with its fields in display order.
func (s *FormStore) GetWithFields(ctx context.Context, id string) (form.Form, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return form.Form{}, err
	}
	fields, err := queryFields(ctx, s.db.DB, id)
	if err != nil {
		return form.Form{}, err
	}
	f.Fields = fields
	return f, nil
}

// GetActiveWithFields retrieves a form only if it is active.
func (s *FormStore) GetActiveWithFields(ctx context.Context, id string) (form.Form, error) {
	f, err := s.GetWithFields(ctx, id)
	if err != nil {
		return form.Form{}, err
	}
	if !f.IsActive {
		return form.Form{}, ports.ErrNotFound
	}
	return f, nil
}

// ListActive returns active forms with fields, newest first.
func (s *FormStore) ListActive(ctx context.Context) ([]form.Form, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+formColumns+` FROM forms
		WHERE is_active = 1
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query active forms: %w", err)
	}
	defer rows.Close()

	var out []form.Form
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan form: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forms: %w", err)
	}

	for i := range out {
		fields, err := queryFields(ctx, s.db.DB, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Fields = fields
	}
	return out, nil
}

// Update modifies form metadata.
func (s *FormStore) Update(ctx context.Context, f form.Form) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE forms SET title = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, f.Title, nullString(f.Description), f.UpdatedAt, f.ID)
	if err != nil {
		return fmt.Errorf("update form: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// CreateVersion inserts the successor with its copied fields and deactivates
// the source in one transaction, so no reader observes a half-swapped lineage.
func (s *FormStore) CreateVersion(ctx context.Context, next form.Form, fields []field.Field, sourceID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM forms WHERE id = ?", sourceID).Scan(&exists); err != nil {
		return fmt.Errorf("check source form: %w", err)
	}
	if exists == 0 {
		return ports.ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO forms (id, title, description, version, is_active, previous_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, next.ID, next.Title, nullString(next.Description), next.Version, next.IsActive, nullString(next.PreviousVersion), next.CreatedAt, next.UpdatedAt)
	if isUniqueConstraintError(err) {
		return ports.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	for _, f := range fields {
		if err := insertField(ctx, tx, f); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE forms SET is_active = 0, updated_at = ? WHERE id = ?
	`, next.CreatedAt, sourceID)
	if err != nil {
		return fmt.Errorf("deactivate source form: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit version: %w", err)
	}
	return nil
}

// Delete removes the form and its fields in one transaction.
func (s *FormStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM fields WHERE form_id = ?", id); err != nil {
		return fmt.Errorf("delete fields: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM forms WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanForm(row rowScanner) (form.Form, error) {
	var f form.Form
	var description, previous sql.NullString
	err := row.Scan(&f.ID, &f.Title, &description, &f.Version, &f.IsActive, &previous, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return form.Form{}, err
	}
	f.Description = description.String
	f.PreviousVersion = previous.String
	return f, nil
}

// Ensure interface compliance.
var _ ports.FormStore = (*FormStore)(nil)
