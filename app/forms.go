// Package app provides application services that orchestrate domain logic.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/formworks/formworks/domain/field"
	"github.com/formworks/formworks/domain/form"
	"github.com/formworks/formworks/ports"
	"github.com/rs/zerolog"
)

// FormService orchestrates form lifecycle: CRUD, field management, and
// copy-on-write versioning.
type FormService struct {
	forms       ports.FormStore
	fields      ports.FieldStore
	submissions ports.SubmissionStore
	clock       ports.Clock
	idgen       ports.IDGenerator
	logger      zerolog.Logger
}

// FormDeps contains dependencies for the form service.
type FormDeps struct {
	Forms       ports.FormStore
	Fields      ports.FieldStore
	Submissions ports.SubmissionStore
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      zerolog.Logger
}

// NewFormService creates a new form service.
func NewFormService(deps FormDeps) *FormService {
	return &FormService{
		forms:       deps.Forms,
		fields:      deps.Fields,
		submissions: deps.Submissions,
		clock:       deps.Clock,
		idgen:       deps.IDGen,
		logger:      deps.Logger.With().Str("service", "forms").Logger(),
	}
}

// CreateForm creates a new lineage root: version 1, active.
func (s *FormService) CreateForm(ctx context.Context, title, description string) (form.Form, error) {
	if result := form.ValidateMetadata(title, description); !result.Valid {
		return form.Form{}, NewValidationError(result.Errors)
	}

	f := form.New(s.idgen.New(), title, description, s.clock.Now().UTC())
	if err := s.forms.Create(ctx, f); err != nil {
		return form.Form{}, fmt.Errorf("create form: %w", err)
	}

	s.logger.Info().Str("form_id", f.ID).Str("title", f.Title).Msg("form created")
	return f, nil
}

// ListForms returns all active forms with their fields, newest first.
func (s *FormService) ListForms(ctx context.Context) ([]form.Form, error) {
	forms, err := s.forms.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	return forms, nil
}

// GetForm retrieves any form version, active or not, with its fields.
func (s *FormService) GetForm(ctx context.Context, id string) (form.Form, error) {
	f, err := s.forms.GetWithFields(ctx, id)
	if err != nil {
		return form.Form{}, mapStoreErr(err)
	}
	return f, nil
}

// UpdateForm edits title/description in place. Metadata edits never create
// a new version.
func (s *FormService) UpdateForm(ctx context.Context, id string, patch form.Patch) (form.Form, error) {
	f, err := s.forms.Get(ctx, id)
	if err != nil {
		return form.Form{}, mapStoreErr(err)
	}

	updated := f.Apply(patch)
	if result := form.ValidateMetadata(updated.Title, updated.Description); !result.Valid {
		return form.Form{}, NewValidationError(result.Errors)
	}

	updated.UpdatedAt = s.clock.Now().UTC()
	if err := s.forms.Update(ctx, updated); err != nil {
		return form.Form{}, mapStoreErr(err)
	}
	return updated, nil
}

// DeleteForm destroys a form version with its fields and submissions.
// This is a destructive, non-versioned operation distinct from deactivation.
func (s *FormService) DeleteForm(ctx context.Context, id string) error {
	if err := s.forms.Delete(ctx, id); err != nil {
		return mapStoreErr(err)
	}
	if err := s.submissions.DeleteByForm(ctx, id); err != nil {
		return fmt.Errorf("cascade submissions: %w", err)
	}

	s.logger.Info().Str("form_id", id).Msg("form deleted with fields and submissions")
	return nil
}

// CreateVersion produces the copy-on-write successor of a form: a new record
// at version+1 with deep-copied fields, activated in the same transaction
// that deactivates the source. Submissions recorded against the source stay
// paired with the exact field set they were validated with.
func (s *FormService) CreateVersion(ctx context.Context, formID string, overrides form.Overrides) (form.Form, error) {
	src, err := s.forms.GetWithFields(ctx, formID)
	if err != nil {
		return form.Form{}, mapStoreErr(err)
	}

	now := s.clock.Now().UTC()
	next := form.NextVersion(src, s.idgen.New(), overrides, now)

	if result := form.ValidateMetadata(next.Title, next.Description); !result.Valid {
		return form.Form{}, NewValidationError(result.Errors)
	}

	copies := form.CopyFields(src.Fields, next.ID, s.idgen.New)
	for i := range copies {
		copies[i].CreatedAt = now
		copies[i].UpdatedAt = now
	}

	if err := s.forms.CreateVersion(ctx, next, copies, src.ID); err != nil {
		return form.Form{}, fmt.Errorf("create version: %w", err)
	}

	next.Fields = copies
	s.logger.Info().
		Str("form_id", next.ID).
		Str("source_id", src.ID).
		Int("version", next.Version).
		Int("fields", len(copies)).
		Msg("form version created")
	return next, nil
}

// CreateField adds a field to a form. Name uniqueness within the form is
// enforced by the store's insert-time constraint, not application locking.
func (s *FormService) CreateField(ctx context.Context, formID string, f field.Field) (field.Field, error) {
	if _, err := s.forms.Get(ctx, formID); err != nil {
		return field.Field{}, mapStoreErr(err)
	}

	f.ID = s.idgen.New()
	f.FormID = formID
	now := s.clock.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now

	if result := field.ValidateDefinition(f); !result.Valid {
		return field.Field{}, NewValidationError(result.Errors)
	}

	if err := s.fields.Create(ctx, f); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return field.Field{}, fmt.Errorf("%w: name must be unique within the form", ErrConflict)
		}
		return field.Field{}, fmt.Errorf("create field: %w", err)
	}
	return f, nil
}

// GetField retrieves a field scoped to its form.
func (s *FormService) GetField(ctx context.Context, formID, fieldID string) (field.Field, error) {
	f, err := s.fields.Get(ctx, formID, fieldID)
	if err != nil {
		return field.Field{}, mapStoreErr(err)
	}
	return f, nil
}

// UpdateField applies a partial merge: attributes absent from the patch
// retain their prior value.
func (s *FormService) UpdateField(ctx context.Context, formID, fieldID string, patch field.Patch) (field.Field, error) {
	f, err := s.fields.Get(ctx, formID, fieldID)
	if err != nil {
		return field.Field{}, mapStoreErr(err)
	}

	updated := f.Apply(patch)
	if result := field.ValidateDefinition(updated); !result.Valid {
		return field.Field{}, NewValidationError(result.Errors)
	}

	updated.UpdatedAt = s.clock.Now().UTC()
	if err := s.fields.Update(ctx, updated); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return field.Field{}, fmt.Errorf("%w: name must be unique within the form", ErrConflict)
		}
		return field.Field{}, mapStoreErr(err)
	}
	return updated, nil
}

// DeleteField removes a field from its form.
func (s *FormService) DeleteField(ctx context.Context, formID, fieldID string) error {
	return mapStoreErr(s.fields.Delete(ctx, formID, fieldID))
}

// FieldOrder assigns a display order to one field.
type FieldOrder struct {
	FieldID string `json:"fieldId"`
	Order   int    `json:"order"`
}

// ReorderFields applies the given order values; fields not mentioned keep
// their prior order. Pairs naming unknown fields are skipped, matching the
// silent per-field updates of a settle-then-read reorder. Returns the form
// with fields sorted by the new order ascending.
func (s *FormService) ReorderFields(ctx context.Context, formID string, orders []FieldOrder) (form.Form, error) {
	if _, err := s.forms.Get(ctx, formID); err != nil {
		return form.Form{}, mapStoreErr(err)
	}

	for _, o := range orders {
		err := s.fields.UpdateOrder(ctx, formID, o.FieldID, o.Order)
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return form.Form{}, fmt.Errorf("reorder field %s: %w", o.FieldID, err)
		}
	}

	// All updates have settled; read back the sorted result.
	f, err := s.forms.GetWithFields(ctx, formID)
	if err != nil {
		return form.Form{}, mapStoreErr(err)
	}
	return f, nil
}
