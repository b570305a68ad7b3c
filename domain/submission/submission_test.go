package submission

import (
	"reflect"
	"testing"
)

func TestBuildAnswers_KeyOrder(t *testing.T) {
	answers := map[string]any{
		"zeta":  "first submitted",
		"alpha": 2.0,
		"mid":   true,
	}

	got := BuildAnswers(answers, []string{"zeta", "mid", "alpha"})

	want := []Answer{
		{FieldName: "zeta", Value: "first submitted"},
		{FieldName: "mid", Value: true},
		{FieldName: "alpha", Value: 2.0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildAnswers() = %+v, want %+v", got, want)
	}
}

func TestBuildAnswers_SortedFallback(t *testing.T) {
	answers := map[string]any{"c": 1.0, "a": 2.0, "b": 3.0}

	got := BuildAnswers(answers, nil)

	if len(got) != 3 || got[0].FieldName != "a" || got[1].FieldName != "b" || got[2].FieldName != "c" {
		t.Errorf("sorted fallback broken: %+v", got)
	}
}

func TestBuildAnswers_KeysMissingFromOrder(t *testing.T) {
	answers := map[string]any{"known": 1.0, "z_extra": 2.0, "a_extra": 3.0}

	// Keys absent from keyOrder append afterwards, sorted.
	got := BuildAnswers(answers, []string{"known"})

	if len(got) != 3 {
		t.Fatalf("got %d answers, want 3", len(got))
	}
	if got[0].FieldName != "known" || got[1].FieldName != "a_extra" || got[2].FieldName != "z_extra" {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestBuildAnswers_IgnoresUnsubmittedAndDuplicateKeys(t *testing.T) {
	answers := map[string]any{"a": 1.0}

	got := BuildAnswers(answers, []string{"ghost", "a", "a"})

	want := []Answer{{FieldName: "a", Value: 1.0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildAnswers() = %+v, want %+v", got, want)
	}
}

func TestAnswerMap(t *testing.T) {
	s := Submission{Answers: []Answer{
		{FieldName: "a", Value: 1.0},
		{FieldName: "b", Value: "x"},
	}}

	m := s.AnswerMap()
	if m["a"] != 1.0 || m["b"] != "x" {
		t.Errorf("AnswerMap() = %+v", m)
	}
}
