package memory

import (
	"context"
	"sort"

	"github.com/formworks/formworks/domain/submission"
	"github.com/formworks/formworks/ports"
)

// SubmissionStore is an in-memory implementation of ports.SubmissionStore.
type SubmissionStore struct {
	db *DB
}

// NewSubmissionStore creates a new in-memory submission store.
func NewSubmissionStore(db *DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

// Create stores a new submission.
func (s *SubmissionStore) Create(ctx context.Context, sub submission.Submission) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.submissions[sub.ID]; exists {
		return ports.ErrDuplicate
	}
	s.db.submissions[sub.ID] = copySubmission(sub)
	s.db.subSeq[sub.ID] = s.db.nextSeq()
	return nil
}

// ListByForm returns submissions newest first, with pagination.
func (s *SubmissionStore) ListByForm(ctx context.Context, formID string, limit, offset int) ([]submission.Submission, error) {
	all := s.allOf(formID)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// CountByForm returns the number of submissions for a form.
func (s *SubmissionStore) CountByForm(ctx context.Context, formID string) (int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	count := 0
	for _, sub := range s.db.submissions {
		if sub.FormID == formID {
			count++
		}
	}
	return count, nil
}

// ListAllByForm returns every submission for a form, newest first.
func (s *SubmissionStore) ListAllByForm(ctx context.Context, formID string) ([]submission.Submission, error) {
	return s.allOf(formID), nil
}

// DeleteByForm removes all submissions referencing a form.
func (s *SubmissionStore) DeleteByForm(ctx context.Context, formID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for id, sub := range s.db.submissions {
		if sub.FormID == formID {
			delete(s.db.submissions, id)
			delete(s.db.subSeq, id)
		}
	}
	return nil
}

func (s *SubmissionStore) allOf(formID string) []submission.Submission {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var out []submission.Submission
	for _, sub := range s.db.submissions {
		if sub.FormID == formID {
			out = append(out, copySubmission(sub))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return s.db.subSeq[out[i].ID] > s.db.subSeq[out[j].ID]
	})
	return out
}

// Ensure interface compliance.
var _ ports.SubmissionStore = (*SubmissionStore)(nil)
