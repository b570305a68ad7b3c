// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/formworks/formworks/domain/field"
	"github.com/formworks/formworks/domain/form"
	"github.com/formworks/formworks/domain/submission"
)

// ErrNotFound is returned by stores when an entity is absent.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned by stores when a uniqueness constraint is
// violated, e.g. two fields with the same name on one form.
var ErrDuplicate = errors.New("already exists")

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher provides password hashing.
type Hasher interface {
	// Hash generates a hash from a plaintext value.
	Hash(plaintext string) ([]byte, error)

	// Compare checks if plaintext matches hash.
	Compare(hash []byte, plaintext string) bool
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// FormStore persists form versions.
type FormStore interface {
	// Create stores a new lineage root.
	Create(ctx context.Context, f form.Form) error

	// Get retrieves a form by ID without its fields.
	Get(ctx context.Context, id string) (form.Form, error)

	// GetWithFields retrieves any form version with fields in display order.
	GetWithFields(ctx context.Context, id string) (form.Form, error)

	// GetActiveWithFields retrieves a form only if it is active.
	// Returns ErrNotFound for absent and inactive forms alike.
	GetActiveWithFields(ctx context.Context, id string) (form.Form, error)

	// ListActive returns active forms with fields, newest first.
	ListActive(ctx context.Context) ([]form.Form, error)

	// Update modifies form metadata (title/description). Never versions.
	Update(ctx context.Context, f form.Form) error

	// CreateVersion atomically inserts the successor form with its copied
	// fields and deactivates the source, so no reader observes a lineage
	// with zero or two active forms.
	CreateVersion(ctx context.Context, next form.Form, fields []field.Field, sourceID string) error

	// Delete removes the form and its fields in one transaction.
	// Submissions are cascaded separately through SubmissionStore.
	Delete(ctx context.Context, id string) error
}

// FieldStore persists field definitions scoped to a form.
type FieldStore interface {
	// Create stores a new field. Returns ErrDuplicate when the form
	// already has a field with the same name.
	Create(ctx context.Context, f field.Field) error

	// Get retrieves a field by ID scoped to its form.
	Get(ctx context.Context, formID, fieldID string) (field.Field, error)

	// ListByForm returns the form's fields sorted by order ascending.
	ListByForm(ctx context.Context, formID string) ([]field.Field, error)

	// Update replaces a field row. Returns ErrDuplicate when a rename
	// collides with a sibling field.
	Update(ctx context.Context, f field.Field) error

	// Delete removes a field. Returns ErrNotFound if absent.
	Delete(ctx context.Context, formID, fieldID string) error

	// UpdateOrder sets the display order of a single field.
	UpdateOrder(ctx context.Context, formID, fieldID string, order int) error
}

// SubmissionStore persists immutable submission snapshots.
type SubmissionStore interface {
	// Create stores a new submission.
	Create(ctx context.Context, s submission.Submission) error

	// ListByForm returns submissions newest first, with pagination.
	ListByForm(ctx context.Context, formID string, limit, offset int) ([]submission.Submission, error)

	// CountByForm returns the number of submissions for a form.
	CountByForm(ctx context.Context, formID string) (int, error)

	// ListAllByForm returns every submission for a form, newest first.
	ListAllByForm(ctx context.Context, formID string) ([]submission.Submission, error)

	// DeleteByForm removes all submissions referencing a form.
	DeleteByForm(ctx context.Context, formID string) error
}

// Admin represents an administrator account.
type Admin struct {
	ID           string
	Username     string // stored lowercase, unique
	PasswordHash []byte // bcrypt hash
	Email        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AdminStore persists administrator accounts.
type AdminStore interface {
	// Create stores a new admin. Returns ErrDuplicate on username clash.
	Create(ctx context.Context, a Admin) error

	// GetByUsername retrieves an admin by lowercase username.
	GetByUsername(ctx context.Context, username string) (Admin, error)

	// List returns all admins, newest first.
	List(ctx context.Context) ([]Admin, error)

	// Count returns the total admin count.
	Count(ctx context.Context) (int, error)
}
