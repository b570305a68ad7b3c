package memory

import (
	"context"

	"github.com/formworks/formworks/domain/field"
	"github.com/formworks/formworks/ports"
)

// FieldStore is an in-memory implementation of ports.FieldStore.
type FieldStore struct {
	db *DB
}

// NewFieldStore creates a new in-memory field store.
func NewFieldStore(db *DB) *FieldStore {
	return &FieldStore{db: db}
}

// Create stores a new field, enforcing per-form name uniqueness.
func (s *FieldStore) Create(ctx context.Context, f field.Field) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.fields {
		if existing.FormID == f.FormID && existing.Name == f.Name {
			return ports.ErrDuplicate
		}
	}

	s.db.fields[f.ID] = copyField(f)
	s.db.fieldSeq[f.ID] = s.db.nextSeq()
	return nil
}

// Get retrieves a field by ID scoped to its form.
func (s *FieldStore) Get(ctx context.Context, formID, fieldID string) (field.Field, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	f, ok := s.db.fields[fieldID]
	if !ok || f.FormID != formID {
		return field.Field{}, ports.ErrNotFound
	}
	return copyField(f), nil
}

// ListByForm returns the form's fields sorted by order ascending.
func (s *FieldStore) ListByForm(ctx context.Context, formID string) ([]field.Field, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.db.fieldsOfLocked(formID), nil
}

// Update replaces a field row.
func (s *FieldStore) Update(ctx context.Context, f field.Field) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	current, ok := s.db.fields[f.ID]
	if !ok || current.FormID != f.FormID {
		return ports.ErrNotFound
	}
	for id, sibling := range s.db.fields {
		if id != f.ID && sibling.FormID == f.FormID && sibling.Name == f.Name {
			return ports.ErrDuplicate
		}
	}
	s.db.fields[f.ID] = copyField(f)
	return nil
}

// Delete removes a field.
func (s *FieldStore) Delete(ctx context.Context, formID, fieldID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	f, ok := s.db.fields[fieldID]
	if !ok || f.FormID != formID {
		return ports.ErrNotFound
	}
	delete(s.db.fields, fieldID)
	delete(s.db.fieldSeq, fieldID)
	return nil
}

// UpdateOrder sets the display order of a single field.
func (s *FieldStore) UpdateOrder(ctx context.Context, formID, fieldID string, order int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	f, ok := s.db.fields[fieldID]
	if !ok || f.FormID != formID {
		return ports.ErrNotFound
	}
	f.Order = order
	s.db.fields[fieldID] = f
	return nil
}

// Ensure interface compliance.
var _ ports.FieldStore = (*FieldStore)(nil)
