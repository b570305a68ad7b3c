package admin

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/formworks/formworks/domain/field"
	"github.com/formworks/formworks/domain/form"
)

// FieldResponse is the JSON rendering of a field definition.
type FieldResponse struct {
	ID         string       `json:"id"`
	FormID     string       `json:"formId"`
	Label      string       `json:"label"`
	Type       string       `json:"type"`
	Name       string       `json:"name"`
	Required   bool         `json:"required"`
	Options    []string     `json:"options,omitempty"`
	Validation *field.Rules `json:"validation,omitempty"`
	Order      int          `json:"order"`
	CreatedAt  string       `json:"createdAt"`
	UpdatedAt  string       `json:"updatedAt"`
}

// FormResponse is the JSON rendering of a form version.
type FormResponse struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Version         int             `json:"version"`
	IsActive        bool            `json:"isActive"`
	PreviousVersion string          `json:"previousVersion,omitempty"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
	Fields          []FieldResponse `json:"fields"`
}

func toFieldResponse(f field.Field) FieldResponse {
	return FieldResponse{
		ID:         f.ID,
		FormID:     f.FormID,
		Label:      f.Label,
		Type:       string(f.Type),
		Name:       f.Name,
		Required:   f.Required,
		Options:    f.Options,
		Validation: f.Rules,
		Order:      f.Order,
		CreatedAt:  f.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  f.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toFormResponse(f form.Form) FormResponse {
	fields := make([]FieldResponse, 0, len(f.Fields))
	for _, fld := range f.Fields {
		fields = append(fields, toFieldResponse(fld))
	}
	return FormResponse{
		ID:              f.ID,
		Title:           f.Title,
		Description:     f.Description,
		Version:         f.Version,
		IsActive:        f.IsActive,
		PreviousVersion: f.PreviousVersion,
		CreatedAt:       f.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       f.UpdatedAt.UTC().Format(time.RFC3339),
		Fields:          fields,
	}
}

type createFormRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CreateForm creates a new form at version 1.
func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	var req createFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	f, err := h.forms.CreateForm(r.Context(), req.Title, req.Description)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.FormsCreated.Inc()
	}
	h.logger.Info().Str("admin", actor(r)).Str("form_id", f.ID).Msg("form created")
	writeJSON(w, http.StatusCreated, toFormResponse(f))
}

// ListForms returns all active forms with their fields, newest first.
func (h *Handler) ListForms(w http.ResponseWriter, r *http.Request) {
	forms, err := h.forms.ListForms(r.Context())
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	out := make([]FormResponse, 0, len(forms))
	for _, f := range forms {
		out = append(out, toFormResponse(f))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetForm returns any form version, active or superseded, with its fields.
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	f, err := h.forms.GetForm(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFormResponse(f))
}

// UpdateForm edits title/description in place without creating a version.
func (h *Handler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	var patch form.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	f, err := h.forms.UpdateForm(r.Context(), chi.URLParam(r, "formID"), patch)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFormResponse(f))
}

// DeleteForm destroys a form version with its fields and submissions.
func (h *Handler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")
	if err := h.forms.DeleteForm(r.Context(), formID); err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.logger.Info().Str("admin", actor(r)).Str("form_id", formID).Msg("form deleted")
	w.WriteHeader(http.StatusNoContent)
}

type createVersionRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// CreateVersion produces the copy-on-write successor of a form. The body may
// override title/description; an empty body copies both from the source.
func (h *Handler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	var req createVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	next, err := h.forms.CreateVersion(r.Context(), chi.URLParam(r, "formID"), form.Overrides{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.FormVersions.Inc()
	}
	h.logger.Info().
		Str("admin", actor(r)).
		Str("source_id", chi.URLParam(r, "formID")).
		Str("form_id", next.ID).
		Int("version", next.Version).
		Msg("form version created")
	writeJSON(w, http.StatusCreated, toFormResponse(next))
}
