package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/formworks/formworks/domain/field"
	"github.com/formworks/formworks/ports"
)

// FieldStore is a SQLite implementation of ports.FieldStore.
type FieldStore struct {
	db *DB
}

// NewFieldStore creates a new SQLite field store.
func NewFieldStore(db *DB) *FieldStore {
	return &FieldStore{db: db}
}

const fieldColumns = "id, form_id, label, type, name, required, options, validation, display_order, created_at, updated_at"

// Create stores a new field, enforcing per-form name uniqueness.
func (s *FieldStore) Create(ctx context.Context, f field.Field) error {
	return insertField(ctx, s.db.DB, f)
}

// Get retrieves a field by ID scoped to its form.
func (s *FieldStore) Get(ctx context.Context, formID, fieldID string) (field.Field, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+fieldColumns+" FROM fields WHERE id = ? AND form_id = ?", fieldID, formID)
	f, err := scanField(row)
	if errors.Is(err, sql.ErrNoRows) {
		return field.Field{}, ports.ErrNotFound
	}
	if err != nil {
		return field.Field{}, fmt.Errorf("query field: %w", err)
	}
	return f, nil
}

// ListByForm returns the form's fields sorted by order ascending.
func (s *FieldStore) ListByForm(ctx context.Context, formID string) ([]field.Field, error) {
	return queryFields(ctx, s.db.DB, formID)
}

// Update replaces a field row.
func (s *FieldStore) Update(ctx context.Context, f field.Field) error {
	options, validation, err := encodeFieldJSON(f)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE fields
		SET label = ?, type = ?, name = ?, required = ?, options = ?, validation = ?, display_order = ?, updated_at = ?
		WHERE id = ? AND form_id = ?
	`, f.Label, string(f.Type), f.Name, f.Required, options, validation, f.Order, f.UpdatedAt, f.ID, f.FormID)
	if isUniqueConstraintError(err) {
		return ports.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("update field: %w", err)
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

// Delete removes a field.
func (s *FieldStore) Delete(ctx context.Context, formID, fieldID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM fields WHERE id = ? AND form_id = ?", fieldID, formID)
	if err != nil {
		return fmt.Errorf("delete field: %w", err)
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

// UpdateOrder sets the display order of a single field.
func (s *FieldStore) UpdateOrder(ctx context.Context, formID, fieldID string, order int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE fields SET display_order = ? WHERE id = ? AND form_id = ?", order, fieldID, formID)
	if err != nil {
		return fmt.Errorf("update field order: %w", err)
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

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func insertField(ctx context.Context, ex execer, f field.Field) error {
	options, validation, err := encodeFieldJSON(f)
	if err != nil {
		return err
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO fields (id, form_id, label, type, name, required, options, validation, display_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.FormID, f.Label, string(f.Type), f.Name, f.Required, options, validation, f.Order, f.CreatedAt, f.UpdatedAt)
	if isUniqueConstraintError(err) {
		return ports.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert field: %w", err)
	}
	return nil
}

// queryFields loads a form's fields sorted by display order, with rowid as
// the tiebreak for equal orders.
func queryFields(ctx context.Context, q queryer, formID string) ([]field.Field, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+fieldColumns+` FROM fields
		WHERE form_id = ?
		ORDER BY display_order ASC, rowid ASC
	`, formID)
	if err != nil {
		return nil, fmt.Errorf("query fields: %w", err)
	}
	defer rows.Close()

	var out []field.Field
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fields: %w", err)
	}
	return out, nil
}

func scanField(row rowScanner) (field.Field, error) {
	var f field.Field
	var typ string
	var options, validation sql.NullString
	err := row.Scan(&f.ID, &f.FormID, &f.Label, &typ, &f.Name, &f.Required, &options, &validation, &f.Order, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return field.Field{}, err
	}
	f.Type = field.Type(typ)
	if options.Valid && options.String != "" {
		if err := json.Unmarshal([]byte(options.String), &f.Options); err != nil {
			return field.Field{}, fmt.Errorf("decode options: %w", err)
		}
	}
	if validation.Valid && validation.String != "" {
		var rules field.Rules
		if err := json.Unmarshal([]byte(validation.String), &rules); err != nil {
			return field.Field{}, fmt.Errorf("decode validation rules: %w", err)
		}
		f.Rules = &rules
	}
	return f, nil
}

func encodeFieldJSON(f field.Field) (options, validation sql.NullString, err error) {
	if len(f.Options) > 0 {
		b, err := json.Marshal(f.Options)
		if err != nil {
			return options, validation, fmt.Errorf("encode options: %w", err)
		}
		options = sql.NullString{String: string(b), Valid: true}
	}
	if f.Rules != nil {
		b, err := json.Marshal(f.Rules)
		if err != nil {
			return options, validation, fmt.Errorf("encode validation rules: %w", err)
		}
		validation = sql.NullString{String: string(b), Valid: true}
	}
	return options, validation, nil
}

// Ensure interface compliance.
var _ ports.FieldStore = (*FieldStore)(nil)
