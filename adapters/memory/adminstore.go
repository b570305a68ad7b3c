package memory

import (
	"context"
	"sort"

	"github.com/formworks/formworks/ports"
)

// AdminStore is an in-memory implementation of ports.AdminStore.
type AdminStore struct {
	db *DB
}

// NewAdminStore creates a new in-memory admin store.
func NewAdminStore(db *DB) *AdminStore {
	return &AdminStore{db: db}
}

// Create stores a new admin.
func (s *AdminStore) Create(ctx context.Context, a ports.Admin) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.admins[a.Username]; exists {
		return ports.ErrDuplicate
	}
	s.db.admins[a.Username] = a
	return nil
}

// GetByUsername retrieves an admin by lowercase username.
func (s *AdminStore) GetByUsername(ctx context.Context, username string) (ports.Admin, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	a, ok := s.db.admins[username]
	if !ok {
		return ports.Admin{}, ports.ErrNotFound
	}
	return a, nil
}

// List returns all admins, newest first.
func (s *AdminStore) List(ctx context.Context) ([]ports.Admin, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]ports.Admin, 0, len(s.db.admins))
	for _, a := range s.db.admins {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Username < out[j].Username
	})
	return out, nil
}

// Count returns the total admin count.
func (s *AdminStore) Count(ctx context.Context) (int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return len(s.db.admins), nil
}

// Ensure interface compliance.
var _ ports.AdminStore = (*AdminStore)(nil)
