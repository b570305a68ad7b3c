package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/formworks/formworks/domain/submission"
	"github.com/formworks/formworks/ports"
)

// SubmissionStore is a SQLite implementation of ports.SubmissionStore.
type SubmissionStore struct {
	db *DB
}

// NewSubmissionStore creates a new SQLite submission store.
func NewSubmissionStore(db *DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

// Create stores a new submission. Answers are serialized as a JSON array so
// their submitted order survives the round trip.
func (s *SubmissionStore) Create(ctx context.Context, sub submission.Submission) error {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, form_id, form_version, answers, submitted_at, ip, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sub.ID, sub.FormID, sub.FormVersion, string(answers), sub.SubmittedAt, nullString(sub.IP), nullString(sub.UserAgent))
	if isUniqueConstraintError(err) {
		return ports.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// ListByForm returns submissions newest first, with pagination.
func (s *SubmissionStore) ListByForm(ctx context.Context, formID string, limit, offset int) ([]submission.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, form_version, answers, submitted_at, ip, user_agent
		FROM submissions
		WHERE form_id = ?
		ORDER BY submitted_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, formID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	return collectSubmissions(rows)
}

// CountByForm returns the number of submissions for a form.
func (s *SubmissionStore) CountByForm(ctx context.Context, formID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM submissions WHERE form_id = ?", formID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return count, nil
}

// ListAllByForm returns every submission for a form, newest first.
func (s *SubmissionStore) ListAllByForm(ctx context.Context, formID string) ([]submission.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, form_version, answers, submitted_at, ip, user_agent
		FROM submissions
		WHERE form_id = ?
		ORDER BY submitted_at DESC, rowid DESC
	`, formID)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	return collectSubmissions(rows)
}

// DeleteByForm removes all submissions referencing a form.
func (s *SubmissionStore) DeleteByForm(ctx context.Context, formID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM submissions WHERE form_id = ?", formID)
	if err != nil {
		return fmt.Errorf("delete submissions: %w", err)
	}
	return nil
}

func collectSubmissions(rows *sql.Rows) ([]submission.Submission, error) {
	defer rows.Close()

	var out []submission.Submission
	for rows.Next() {
		var sub submission.Submission
		var answers string
		var ip, userAgent sql.NullString
		err := rows.Scan(&sub.ID, &sub.FormID, &sub.FormVersion, &answers, &sub.SubmittedAt, &ip, &userAgent)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if err := json.Unmarshal([]byte(answers), &sub.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
		sub.IP = ip.String
		sub.UserAgent = userAgent.String
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

// Ensure interface compliance.
var _ ports.SubmissionStore = (*SubmissionStore)(nil)
