// Package submission provides submission value types and the pure CSV
// export. Submissions are immutable snapshots: once recorded, later edits to
// the form or its fields never alter them.
package submission

import (
	"sort"
	"time"
)

// Answer pairs a field name with the submitted value.
// Values arrive from JSON: string, float64, bool, or []any of those.
type Answer struct {
	FieldName string `json:"fieldName"`
	Value     any    `json:"value"`
}

// Submission is one recorded response to a specific form version.
type Submission struct {
	ID          string
	FormID      string
	FormVersion int // denormalized from the form at submit time
	Answers     []Answer
	SubmittedAt time.Time
	IP          string
	UserAgent   string
}

// BuildAnswers converts a submitted mapping into the ordered answer list.
// keyOrder preserves the order keys appeared in the request document; keys
// missing from it (or a nil keyOrder) are appended in sorted order so the
// result is deterministic either way.
func BuildAnswers(answers map[string]any, keyOrder []string) []Answer {
	out := make([]Answer, 0, len(answers))
	seen := make(map[string]bool, len(answers))

	for _, name := range keyOrder {
		value, ok := answers[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, Answer{FieldName: name, Value: value})
	}

	rest := make([]string, 0, len(answers))
	for name := range answers {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, Answer{FieldName: name, Value: answers[name]})
	}

	return out
}

// AnswerMap indexes the answers by field name.
func (s Submission) AnswerMap() map[string]any {
	m := make(map[string]any, len(s.Answers))
	for _, a := range s.Answers {
		m[a.FieldName] = a.Value
	}
	return m
}
