package form

import (
	"testing"
	"time"

	"github.com/formworks/formworks/domain/field"
)

func strptr(s string) *string { return &s }

func TestNew(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f := New("form-1", "Contact", "Get in touch", now)

	if f.Version != 1 {
		t.Errorf("Version = %d, want 1", f.Version)
	}
	if !f.IsActive {
		t.Error("new form should be active")
	}
	if f.PreviousVersion != "" {
		t.Errorf("root should have no previous version, got %q", f.PreviousVersion)
	}
	if !f.CreatedAt.Equal(now) || !f.UpdatedAt.Equal(now) {
		t.Errorf("timestamps wrong: %+v", f)
	}
}

func TestNextVersion(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := created.Add(48 * time.Hour)
	src := New("form-1", "Contact", "Get in touch", created)

	t.Run("copies metadata by default", func(t *testing.T) {
		next := NextVersion(src, "form-2", Overrides{}, later)

		if next.Version != 2 {
			t.Errorf("Version = %d, want 2", next.Version)
		}
		if next.PreviousVersion != "form-1" {
			t.Errorf("PreviousVersion = %q, want form-1", next.PreviousVersion)
		}
		if !next.IsActive {
			t.Error("successor should be active")
		}
		if next.Title != "Contact" || next.Description != "Get in touch" {
			t.Errorf("metadata not copied: %+v", next)
		}
		if !next.CreatedAt.Equal(later) {
			t.Errorf("CreatedAt = %v, want %v", next.CreatedAt, later)
		}
	})

	t.Run("overrides replace metadata", func(t *testing.T) {
		next := NextVersion(src, "form-2", Overrides{
			Title:       strptr("Contact v2"),
			Description: strptr(""),
		}, later)

		if next.Title != "Contact v2" || next.Description != "" {
			t.Errorf("overrides not applied: %+v", next)
		}
	})

	t.Run("source is untouched", func(t *testing.T) {
		_ = NextVersion(src, "form-2", Overrides{Title: strptr("X")}, later)
		if src.Title != "Contact" || !src.IsActive || src.Version != 1 {
			t.Errorf("source mutated: %+v", src)
		}
	})
}

func TestCopyFields(t *testing.T) {
	src := []field.Field{
		{ID: "fld-1", FormID: "form-1", Label: "Name", Type: field.TypeText, Name: "name", Order: 0},
		{ID: "fld-2", FormID: "form-1", Label: "Color", Type: field.TypeSelect, Name: "color",
			Options: []string{"red", "blue"}, Order: 1},
	}

	n := 0
	newID := func() string {
		n++
		return "copy-" + string(rune('0'+n))
	}

	copies := CopyFields(src, "form-2", newID)

	if len(copies) != 2 {
		t.Fatalf("got %d copies, want 2", len(copies))
	}
	for i, c := range copies {
		if c.FormID != "form-2" {
			t.Errorf("copy %d: FormID = %q", i, c.FormID)
		}
		if c.ID == src[i].ID {
			t.Errorf("copy %d: identity not replaced", i)
		}
		if c.Name != src[i].Name || c.Label != src[i].Label || c.Order != src[i].Order {
			t.Errorf("copy %d: attributes not preserved", i)
		}
	}

	// Deep copy of options.
	copies[1].Options[0] = "mutated"
	if src[1].Options[0] != "red" {
		t.Error("options alias the source")
	}
}

func TestDeactivate(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)

	f := New("form-1", "Contact", "", created).Deactivate(later)
	if f.IsActive {
		t.Error("form should be inactive")
	}
	if !f.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %v, want %v", f.UpdatedAt, later)
	}
}

func TestValidateLineage(t *testing.T) {
	now := time.Now()
	v1 := New("form-1", "Contact", "", now).Deactivate(now)
	v2 := NextVersion(New("form-1", "Contact", "", now), "form-2", Overrides{}, now)
	v2prime := v2
	v2prime.IsActive = false
	v3 := NextVersion(v2, "form-3", Overrides{}, now)

	tests := []struct {
		name  string
		chain []Form
		want  bool
	}{
		{"single root", []Form{New("form-1", "Contact", "", now)}, true},
		{"well-formed chain", []Form{v1, v2prime, v3}, true},
		{"two active", []Form{New("form-1", "X", "", now), v2}, false},
		{
			name: "broken back-link",
			chain: []Form{v1, func() Form {
				f := v2
				f.PreviousVersion = "elsewhere"
				return f
			}()},
			want: false,
		},
		{
			name: "version gap",
			chain: []Form{v1, func() Form {
				f := v2
				f.Version = 5
				return f
			}()},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateLineage(tt.chain); got != tt.want {
				t.Errorf("ValidateLineage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateMetadata(t *testing.T) {
	long := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = 'x'
		}
		return string(b)
	}

	tests := []struct {
		name        string
		title       string
		description string
		wantAttr    string
	}{
		{"valid", "Contact", "Get in touch", ""},
		{"empty description ok", "Contact", "", ""},
		{"missing title", "", "", "title"},
		{"title too long", long(201), "", "title"},
		{"description too long", "Contact", long(1001), "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateMetadata(tt.title, tt.description)
			if tt.wantAttr == "" {
				if !result.Valid {
					t.Errorf("expected valid, got %+v", result.Errors)
				}
				return
			}
			if result.Valid {
				t.Fatal("expected invalid")
			}
			if _, ok := result.Errors[tt.wantAttr]; !ok {
				t.Errorf("expected error on %q, got %+v", tt.wantAttr, result.Errors)
			}
		})
	}
}
