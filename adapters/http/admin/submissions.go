package admin

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/formworks/formworks/domain/submission"
)

// SubmissionResponse is the JSON rendering of a recorded submission.
type SubmissionResponse struct {
	ID          string              `json:"id"`
	FormID      string              `json:"formId"`
	FormVersion int                 `json:"formVersion"`
	Answers     []submission.Answer `json:"answers"`
	SubmittedAt string              `json:"submittedAt"`
	IP          string              `json:"ip,omitempty"`
	UserAgent   string              `json:"userAgent,omitempty"`
}

// SubmissionPage is one page of submissions with pagination bookkeeping.
type SubmissionPage struct {
	Items     []SubmissionResponse `json:"items"`
	Page      int                  `json:"page"`
	Limit     int                  `json:"limit"`
	Total     int                  `json:"total"`
	PageCount int                  `json:"pageCount"`
}

func toSubmissionResponse(s submission.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:          s.ID,
		FormID:      s.FormID,
		FormVersion: s.FormVersion,
		Answers:     s.Answers,
		SubmittedAt: s.SubmittedAt.UTC().Format(time.RFC3339),
		IP:          s.IP,
		UserAgent:   s.UserAgent,
	}
}

// ListSubmissions returns a form's submissions, newest first, paginated with
// ?page= and ?limit= (1-indexed, default page 1 limit 10).
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")

	// Missing forms answer 404 rather than an empty page.
	if _, err := h.forms.GetForm(r.Context(), formID); err != nil {
		h.writeAppError(w, r, err)
		return
	}

	page := parseIntQuery(r, "page", 1)
	limit := parseIntQuery(r, "limit", 10)

	result, err := h.submissions.List(r.Context(), formID, page, limit)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	items := make([]SubmissionResponse, 0, len(result.Items))
	for _, s := range result.Items {
		items = append(items, toSubmissionResponse(s))
	}
	writeJSON(w, http.StatusOK, SubmissionPage{
		Items:     items,
		Page:      result.Page,
		Limit:     result.Limit,
		Total:     result.Total,
		PageCount: result.PageCount,
	})
}

// ExportSubmissions streams every submission for a form as a CSV attachment.
// Columns follow the current field order of the addressed form version.
func (h *Handler) ExportSubmissions(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")

	csv, err := h.submissions.ExportCSV(r.Context(), formID)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ExportsTotal.Inc()
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "form-"+formID+"-submissions.csv"))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(csv))
}

func parseIntQuery(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
