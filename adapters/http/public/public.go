// Package public provides the unauthenticated form API: discovering active
// forms and submitting responses to them.
package public

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/formworks/formworks/adapters/metrics"
	"github.com/formworks/formworks/app"
	"github.com/formworks/formworks/domain/field"
)

// maxSubmissionBody bounds the accepted request size for submissions.
const maxSubmissionBody = 1 << 20 // 1MB

// Handler provides public API endpoints.
type Handler struct {
	forms       *app.FormService
	submissions *app.SubmissionService
	logger      zerolog.Logger
	metrics     *metrics.Collector
}

// Deps contains dependencies for the public handler.
type Deps struct {
	Forms       *app.FormService
	Submissions *app.SubmissionService
	Logger      zerolog.Logger
	Metrics     *metrics.Collector
}

// NewHandler creates a new public API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		forms:       deps.Forms,
		submissions: deps.Submissions,
		logger:      deps.Logger.With().Str("component", "public_api").Logger(),
		metrics:     deps.Metrics,
	}
}

// Router returns the public API router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListForms)
	r.Get("/{formID}", h.GetForm)
	r.Post("/{formID}/submit", h.Submit)
	return r
}

// FormSummary is the discovery listing entry for an active form.
type FormSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
}

// FieldView is a field definition trimmed to what a renderer needs.
type FieldView struct {
	ID         string       `json:"id"`
	Label      string       `json:"label"`
	Type       string       `json:"type"`
	Name       string       `json:"name"`
	Required   bool         `json:"required"`
	Options    []string     `json:"options,omitempty"`
	Validation *field.Rules `json:"validation,omitempty"`
	Order      int          `json:"order"`
}

// FormView is the public rendering of an active form.
type FormView struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Version     int         `json:"version"`
	Fields      []FieldView `json:"fields"`
}

// ListForms returns all active forms, newest first.
func (h *Handler) ListForms(w http.ResponseWriter, r *http.Request) {
	forms, err := h.forms.ListForms(r.Context())
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	out := make([]FormSummary, 0, len(forms))
	for _, f := range forms {
		out = append(out, FormSummary{
			ID:          f.ID,
			Title:       f.Title,
			Description: f.Description,
			CreatedAt:   f.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetForm returns the rendering attributes of an active form. Superseded
// versions are not publicly addressable.
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	f, err := h.forms.GetForm(r.Context(), chi.URLParam(r, "formID"))
	if err != nil || !f.IsActive {
		if err == nil {
			err = app.ErrNotFound
		}
		h.writeAppError(w, r, err)
		return
	}

	fields := make([]FieldView, 0, len(f.Fields))
	for _, fld := range f.Fields {
		fields = append(fields, FieldView{
			ID:         fld.ID,
			Label:      fld.Label,
			Type:       string(fld.Type),
			Name:       fld.Name,
			Required:   fld.Required,
			Options:    fld.Options,
			Validation: fld.Rules,
			Order:      fld.Order,
		})
	}
	writeJSON(w, http.StatusOK, FormView{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Version:     f.Version,
		Fields:      fields,
	})
}

// SubmitResponse acknowledges a recorded submission.
type SubmitResponse struct {
	ID          string `json:"id"`
	FormID      string `json:"formId"`
	FormVersion int    `json:"formVersion"`
	SubmittedAt string `json:"submittedAt"`
}

// Submit validates answers against the form's field set and records an
// immutable snapshot. The raw body is tokenized once to learn the order
// answer keys were written in, which drives unknown-field error ordering.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSubmissionBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Failed to read request body")
		return
	}

	var envelope struct {
		Answers json.RawMessage `json:"answers"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if len(envelope.Answers) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "answers object is required")
		return
	}

	var answers map[string]any
	if err := json.Unmarshal(envelope.Answers, &answers); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "answers must be an object")
		return
	}

	keyOrder, err := objectKeyOrder(envelope.Answers)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "answers must be an object")
		return
	}

	sub, err := h.submissions.Submit(r.Context(), chi.URLParam(r, "formID"), app.SubmitRequest{
		Answers:   answers,
		KeyOrder:  keyOrder,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.countSubmission("rejected")
		var ve *app.ValidationError
		if errors.As(err, &ve) && h.metrics != nil {
			h.metrics.ValidationFailures.Inc()
		}
		h.writeAppError(w, r, err)
		return
	}

	h.countSubmission("accepted")
	writeJSON(w, http.StatusCreated, SubmitResponse{
		ID:          sub.ID,
		FormID:      sub.FormID,
		FormVersion: sub.FormVersion,
		SubmittedAt: sub.SubmittedAt.UTC().Format(time.RFC3339),
	})
}

// objectKeyOrder returns the top-level keys of a JSON object in document
// order. Go maps lose this order, so it has to come from the raw bytes.
func objectKeyOrder(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("not a JSON object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("malformed JSON object")
		}
		keys = append(keys, key)

		// Consume the value, whatever shape it has.
		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func (h *Handler) countSubmission(outcome string) {
	if h.metrics != nil {
		h.metrics.SubmissionsTotal.WithLabelValues(outcome).Inc()
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// -----------------------------------------------------------------------------
// Response helpers
// -----------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func (h *Handler) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *app.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]string{
				"code":    "validation_failed",
				"message": ve.Error(),
			},
			"errors": ve.Errors,
		})
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Form not found")
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
