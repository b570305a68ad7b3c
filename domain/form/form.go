// Package form provides form value types and the pure copy-on-write
// versioning rules. This package has NO dependencies on I/O.
package form

import (
	"time"

	"github.com/formworks/formworks/domain/field"
)

// Form is a titled, versioned collection of fields (immutable value type).
// Versions of one form are linked into a lineage through PreviousVersion;
// exactly one form in a lineage is active at a time.
type Form struct {
	ID              string
	Title           string
	Description     string
	Version         int
	IsActive        bool
	PreviousVersion string // ID of the superseded version, "" for the root
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Fields attached to this version, in display order. Loaded on demand;
	// a nil slice means the fields were not requested.
	Fields []field.Field
}

// New creates a lineage root: version 1, active, no back-link.
func New(id, title, description string, now time.Time) Form {
	return Form{
		ID:          id,
		Title:       title,
		Description: description,
		Version:     1,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Overrides optionally replaces title/description on the successor version.
// Nil members copy the source value.
type Overrides struct {
	Title       *string
	Description *string
}

// Patch describes a partial metadata update. Nil members retain prior values.
// Metadata edits never create a new version.
type Patch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Apply merges the patch into the form, returning the updated copy.
func (f Form) Apply(p Patch) Form {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	return f
}

// NextVersion derives the successor of src: version+1, active, back-linked
// to src, metadata from the overrides where given. Fields are not copied
// here; CopyFields pairs each source field with a fresh identity.
// This is a PURE function.
func NextVersion(src Form, id string, ov Overrides, now time.Time) Form {
	next := Form{
		ID:              id,
		Title:           src.Title,
		Description:     src.Description,
		Version:         src.Version + 1,
		IsActive:        true,
		PreviousVersion: src.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if ov.Title != nil {
		next.Title = *ov.Title
	}
	if ov.Description != nil {
		next.Description = *ov.Description
	}
	return next
}

// CopyFields deep-copies every source field into a record owned by the new
// form, preserving label/type/name/required/options/validation/order
// verbatim. newID must yield a fresh identity per call.
// This is a PURE function apart from the supplied ID generator.
func CopyFields(src []field.Field, formID string, newID func() string) []field.Field {
	copies := make([]field.Field, 0, len(src))
	for _, f := range src {
		copies = append(copies, f.Clone(newID(), formID))
	}
	return copies
}

// Deactivate returns a copy of the form marked inactive.
func (f Form) Deactivate(now time.Time) Form {
	f.IsActive = false
	f.UpdatedAt = now
	return f
}

// ValidateLineage checks versioning invariants over a previous-version chain
// ordered root first: versions strictly increase from 1 and at most one form
// is active. Used by tests and consistency checks.
func ValidateLineage(chain []Form) bool {
	active := 0
	for i, f := range chain {
		if f.Version != i+1 {
			return false
		}
		if i > 0 && f.PreviousVersion != chain[i-1].ID {
			return false
		}
		if f.IsActive {
			active++
		}
	}
	return active <= 1
}

// MetadataResult represents the outcome of form metadata validation.
type MetadataResult struct {
	Valid  bool
	Errors map[string]string // attribute -> error message
}

// ValidateMetadata checks title/description constraints (pure function).
func ValidateMetadata(title, description string) MetadataResult {
	errors := make(map[string]string)

	if title == "" {
		errors["title"] = "Title is required"
	} else if len(title) > 200 {
		errors["title"] = "Title must not exceed 200 characters"
	}

	if len(description) > 1000 {
		errors["description"] = "Description must not exceed 1000 characters"
	}

	return MetadataResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}
