// Package memory provides in-memory implementations of the storage ports.
// Useful for tests and throwaway environments; state lives and dies with
// the process.
package memory

import (
	"sync"

	"github.com/formworks/formworks/domain/field"
	"github.com/formworks/formworks/domain/form"
	"github.com/formworks/formworks/domain/submission"
	"github.com/formworks/formworks/ports"
)

// DB holds the shared in-memory state behind all memory stores. A single
// mutex spans every entity so multi-record operations (version swaps,
// cascading deletes) are observed atomically, which is what the sqlite
// adapter gets from transactions.
type DB struct {
	mu sync.RWMutex

	forms       map[string]form.Form
	fields      map[string]field.Field
	fieldSeq    map[string]uint64 // insertion sequence, stable sort tiebreak
	submissions map[string]submission.Submission
	subSeq      map[string]uint64
	admins      map[string]ports.Admin // keyed by lowercase username

	seq uint64
}

// NewDB creates an empty in-memory database.
func NewDB() *DB {
	return &DB{
		forms:       make(map[string]form.Form),
		fields:      make(map[string]field.Field),
		fieldSeq:    make(map[string]uint64),
		submissions: make(map[string]submission.Submission),
		subSeq:      make(map[string]uint64),
		admins:      make(map[string]ports.Admin),
	}
}

func (db *DB) nextSeq() uint64 {
	db.seq++
	return db.seq
}

// copyField returns a detached copy so callers cannot alias stored state.
func copyField(f field.Field) field.Field {
	return f.Clone(f.ID, f.FormID)
}

func copyForm(f form.Form) form.Form {
	c := f
	c.Fields = nil
	return c
}

func copySubmission(s submission.Submission) submission.Submission {
	c := s
	c.Answers = append([]submission.Answer(nil), s.Answers...)
	return c
}
