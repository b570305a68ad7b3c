package app

import (
	"errors"
	"fmt"
	"sort"

	"github.com/formworks/formworks/domain/field"
	"github.com/formworks/formworks/ports"
)

// Error taxonomy surfaced to the API layer. Handlers map these to HTTP
// status codes; anything else is an internal failure (500, logged only).
var (
	// ErrNotFound covers absent entities and inactive forms when activity
	// is required.
	ErrNotFound = errors.New("not found")

	// ErrConflict covers uniqueness violations, e.g. a duplicate field
	// name within a form.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized covers missing, invalid, or expired credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError carries the complete list of per-field problems so a
// client can render all corrections at once.
type ValidationError struct {
	Errors []field.Error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d error(s)", len(e.Errors))
}

// NewValidationError builds a ValidationError from an attribute->message
// map, with attributes in sorted order for determinism.
func NewValidationError(byAttr map[string]string) *ValidationError {
	ve := &ValidationError{}
	for _, attr := range sortedKeys(byAttr) {
		ve.Errors = append(ve.Errors, field.Error{
			FieldName: attr,
			Message:   byAttr[attr],
		})
	}
	return ve
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// mapStoreErr converts store sentinels into the app taxonomy.
func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ports.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ports.ErrDuplicate):
		return ErrConflict
	default:
		return err
	}
}
