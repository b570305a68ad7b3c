package memory

import (
	"context"
	"sort"

	"github.com/formworks/formworks/domain/field"
	"github.com/formworks/formworks/domain/form"
	"github.com/formworks/formworks/ports"
)

// FormStore is an in-memory implementation of ports.FormStore.
type FormStore struct {
	db *DB
}

// NewFormStore creates a new in-memory form store.
func NewFormStore(db *DB) *FormStore {
	return &FormStore{db: db}
}

// Create stores a new lineage root.
func (s *FormStore) Create(ctx context.Context, f form.Form) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.forms[f.ID]; exists {
		return ports.ErrDuplicate
	}
	s.db.forms[f.ID] = copyForm(f)
	return nil
}

// Get retrieves a form by ID without its fields.
func (s *FormStore) Get(ctx context.Context, id string) (form.Form, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	f, ok := s.db.forms[id]
	if !ok {
		return form.Form{}, ports.ErrNotFound
	}
	return copyForm(f), nil
}

// GetWithFields retrieves any form version with its fields in display order.
func (s *FormStore) GetWithFields(ctx context.Context, id string) (form.Form, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	f, ok := s.db.forms[id]
	if !ok {
		return form.Form{}, ports.ErrNotFound
	}
	out := copyForm(f)
	out.Fields = s.db.fieldsOfLocked(id)
	return out, nil
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
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var out []form.Form
	for _, f := range s.db.forms {
		if !f.IsActive {
			continue
		}
		c := copyForm(f)
		c.Fields = s.db.fieldsOfLocked(f.ID)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Update modifies form metadata.
func (s *FormStore) Update(ctx context.Context, f form.Form) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.forms[f.ID]; !ok {
		return ports.ErrNotFound
	}
	s.db.forms[f.ID] = copyForm(f)
	return nil
}

// CreateVersion inserts the successor with its fields and deactivates the
// source under a single lock, so no reader observes a half-swapped lineage.
func (s *FormStore) CreateVersion(ctx context.Context, next form.Form, fields []field.Field, sourceID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	src, ok := s.db.forms[sourceID]
	if !ok {
		return ports.ErrNotFound
	}
	if _, exists := s.db.forms[next.ID]; exists {
		return ports.ErrDuplicate
	}

	s.db.forms[next.ID] = copyForm(next)
	for _, f := range fields {
		s.db.fields[f.ID] = copyField(f)
		s.db.fieldSeq[f.ID] = s.db.nextSeq()
	}

	src.IsActive = false
	src.UpdatedAt = next.CreatedAt
	s.db.forms[sourceID] = src
	return nil
}

// Delete removes the form and its fields.
func (s *FormStore) Delete(ctx context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.forms[id]; !ok {
		return ports.ErrNotFound
	}
	delete(s.db.forms, id)
	for fid, f := range s.db.fields {
		if f.FormID == id {
			delete(s.db.fields, fid)
			delete(s.db.fieldSeq, fid)
		}
	}
	return nil
}

// fieldsOfLocked collects a form's fields sorted by order ascending, with
// insertion sequence as the tiebreak. Caller must hold db.mu.
func (db *DB) fieldsOfLocked(formID string) []field.Field {
	var out []field.Field
	for _, f := range db.fields {
		if f.FormID == formID {
			out = append(out, copyField(f))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return db.fieldSeq[out[i].ID] < db.fieldSeq[out[j].ID]
	})
	return out
}

// Ensure interface compliance.
var _ ports.FormStore = (*FormStore)(nil)
