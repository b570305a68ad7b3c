package admin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/formworks/formworks/app"
	"github.com/formworks/formworks/domain/field"
)

type createFieldRequest struct {
	Label      string       `json:"label"`
	Type       string       `json:"type"`
	Name       string       `json:"name"`
	Required   bool         `json:"required"`
	Options    []string     `json:"options"`
	Validation *field.Rules `json:"validation"`
	Order      int          `json:"order"`
}

// CreateField adds a field definition to a form.
func (h *Handler) CreateField(w http.ResponseWriter, r *http.Request) {
	var req createFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	f, err := h.forms.CreateField(r.Context(), chi.URLParam(r, "formID"), field.Field{
		Label:    req.Label,
		Type:     field.Type(req.Type),
		Name:     req.Name,
		Required: req.Required,
		Options:  req.Options,
		Rules:    req.Validation,
		Order:    req.Order,
	})
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFieldResponse(f))
}

// ListFields returns the form's fields in display order.
func (h *Handler) ListFields(w http.ResponseWriter, r *http.Request) {
	f, err := h.forms.GetForm(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	out := make([]FieldResponse, 0, len(f.Fields))
	for _, fld := range f.Fields {
		out = append(out, toFieldResponse(fld))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetField returns a single field definition.
func (h *Handler) GetField(w http.ResponseWriter, r *http.Request) {
	f, err := h.forms.GetField(r.Context(), chi.URLParam(r, "formID"), chi.URLParam(r, "fieldID"))
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFieldResponse(f))
}

// UpdateField applies a partial update; attributes absent from the body keep
// their prior value.
func (h *Handler) UpdateField(w http.ResponseWriter, r *http.Request) {
	var patch field.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	f, err := h.forms.UpdateField(r.Context(), chi.URLParam(r, "formID"), chi.URLParam(r, "fieldID"), patch)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFieldResponse(f))
}

// DeleteField removes a field definition from its form.
func (h *Handler) DeleteField(w http.ResponseWriter, r *http.Request) {
	err := h.forms.DeleteField(r.Context(), chi.URLParam(r, "formID"), chi.URLParam(r, "fieldID"))
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	FieldOrders []app.FieldOrder `json:"fieldOrders"`
}

// ReorderFields applies new display orders in one request and returns the
// form with fields sorted by the result.
func (h *Handler) ReorderFields(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if len(req.FieldOrders) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "At least one field order is required")
		return
	}

	f, err := h.forms.ReorderFields(r.Context(), chi.URLParam(r, "formID"), req.FieldOrders)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFormResponse(f))
}
