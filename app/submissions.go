package app

import (
	"context"
	"fmt"

	"github.com/formworks/formworks/domain/field"
	"github.com/formworks/formworks/domain/submission"
	"github.com/formworks/formworks/ports"
	"github.com/rs/zerolog"
)

// SubmissionService validates and records public form submissions.
type SubmissionService struct {
	forms       ports.FormStore
	submissions ports.SubmissionStore
	clock       ports.Clock
	idgen       ports.IDGenerator
	logger      zerolog.Logger
}

// SubmissionDeps contains dependencies for the submission service.
type SubmissionDeps struct {
	Forms       ports.FormStore
	Submissions ports.SubmissionStore
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      zerolog.Logger
}

// NewSubmissionService creates a new submission service.
func NewSubmissionService(deps SubmissionDeps) *SubmissionService {
	return &SubmissionService{
		forms:       deps.Forms,
		submissions: deps.Submissions,
		clock:       deps.Clock,
		idgen:       deps.IDGen,
		logger:      deps.Logger.With().Str("service", "submissions").Logger(),
	}
}

// SubmitRequest carries one public submission.
type SubmitRequest struct {
	Answers map[string]any

	// KeyOrder preserves the order answer keys appeared in the request
	// document; it drives unknown-field error ordering and answer layout.
	// Nil falls back to sorted keys.
	KeyOrder []string

	IP        string
	UserAgent string
}

// Submit validates answers against the form's current field set and records
// an immutable snapshot. Inactive (superseded) form versions reject new
// submissions with ErrNotFound even though their id is still addressable.
func (s *SubmissionService) Submit(ctx context.Context, formID string, req SubmitRequest) (submission.Submission, error) {
	f, err := s.forms.GetActiveWithFields(ctx, formID)
	if err != nil {
		return submission.Submission{}, mapStoreErr(err)
	}

	if errs := field.ValidateAnswers(f.Fields, req.Answers, req.KeyOrder); len(errs) > 0 {
		return submission.Submission{}, &ValidationError{Errors: errs}
	}

	sub := submission.Submission{
		ID:          s.idgen.New(),
		FormID:      f.ID,
		FormVersion: f.Version, // snapshot at validation time
		Answers:     submission.BuildAnswers(req.Answers, req.KeyOrder),
		SubmittedAt: s.clock.Now().UTC(),
		IP:          req.IP,
		UserAgent:   req.UserAgent,
	}

	if err := s.submissions.Create(ctx, sub); err != nil {
		return submission.Submission{}, fmt.Errorf("store submission: %w", err)
	}

	s.logger.Info().
		Str("form_id", f.ID).
		Int("form_version", f.Version).
		Str("submission_id", sub.ID).
		Msg("submission recorded")
	return sub, nil
}

// Page is one page of submissions with pagination bookkeeping.
type Page struct {
	Items     []submission.Submission `json:"items"`
	Page      int                     `json:"page"`
	Limit     int                     `json:"limit"`
	Total     int                     `json:"total"`
	PageCount int                     `json:"pageCount"`
}

// List returns submissions for a form, newest first, 1-indexed pagination.
func (s *SubmissionService) List(ctx context.Context, formID string, page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	items, err := s.submissions.ListByForm(ctx, formID, limit, offset)
	if err != nil {
		return Page{}, fmt.Errorf("list submissions: %w", err)
	}
	total, err := s.submissions.CountByForm(ctx, formID)
	if err != nil {
		return Page{}, fmt.Errorf("count submissions: %w", err)
	}

	if items == nil {
		items = []submission.Submission{}
	}
	return Page{
		Items:     items,
		Page:      page,
		Limit:     limit,
		Total:     total,
		PageCount: (total + limit - 1) / limit,
	}, nil
}

// ExportCSV renders every submission for a form as CSV. Columns follow the
// field order of the form currently stored under formID.
func (s *SubmissionService) ExportCSV(ctx context.Context, formID string) (string, error) {
	f, err := s.forms.GetWithFields(ctx, formID)
	if err != nil {
		return "", mapStoreErr(err)
	}

	subs, err := s.submissions.ListAllByForm(ctx, formID)
	if err != nil {
		return "", fmt.Errorf("load submissions: %w", err)
	}

	names := make([]string, 0, len(f.Fields))
	for _, fld := range f.Fields {
		names = append(names, fld.Name)
	}

	return submission.ExportCSV(names, subs), nil
}
