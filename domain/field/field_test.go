package field

import (
	"testing"
	"time"
)

func TestType_IsValid(t *testing.T) {
	for _, typ := range Types {
		if !typ.IsValid() {
			t.Errorf("%s should be valid", typ)
		}
	}
	if Type("hologram").IsValid() {
		t.Error("unknown type should not be valid")
	}
}

func TestType_HasOptions(t *testing.T) {
	withOptions := []Type{TypeCheckbox, TypeRadio, TypeSelect}
	for _, typ := range withOptions {
		if !typ.HasOptions() {
			t.Errorf("%s should have options", typ)
		}
	}
	if TypeText.HasOptions() {
		t.Error("text should not have options")
	}
}

func TestField_Clone(t *testing.T) {
	src := Field{
		ID:       "fld-1",
		FormID:   "form-1",
		Label:    "Age",
		Type:     TypeNumber,
		Name:     "age",
		Required: true,
		Options:  []string{"a", "b"},
		Rules:    &Rules{Min: fptr(18)},
		Order:    3,
	}

	c := src.Clone("fld-2", "form-2")

	if c.ID != "fld-2" || c.FormID != "form-2" {
		t.Errorf("identity not replaced: %+v", c)
	}
	if c.Label != src.Label || c.Type != src.Type || c.Name != src.Name ||
		c.Required != src.Required || c.Order != src.Order {
		t.Errorf("attributes not preserved: %+v", c)
	}

	// Deep copy: mutating the clone must not leak into the source.
	c.Options[0] = "mutated"
	*c.Rules.Min = 99
	if src.Options[0] != "a" {
		t.Error("options alias the source slice")
	}
	if *src.Rules.Min != 18 {
		t.Error("rules alias the source struct")
	}
}

func TestField_Apply(t *testing.T) {
	f := Field{Label: "Old", Type: TypeText, Name: "old", Required: false, Order: 1}

	label := "New"
	required := true
	got := f.Apply(Patch{Label: &label, Required: &required})

	if got.Label != "New" || !got.Required {
		t.Errorf("patch not applied: %+v", got)
	}
	// Untouched members keep prior values.
	if got.Type != TypeText || got.Name != "old" || got.Order != 1 {
		t.Errorf("unpatched attributes changed: %+v", got)
	}
}

func TestValidateDefinition(t *testing.T) {
	valid := Field{Label: "Age", Type: TypeNumber, Name: "age"}

	tests := []struct {
		name     string
		mutate   func(Field) Field
		wantAttr string
	}{
		{
			name:     "missing label",
			mutate:   func(f Field) Field { f.Label = ""; return f },
			wantAttr: "label",
		},
		{
			name: "label too long",
			mutate: func(f Field) Field {
				for len(f.Label) <= 200 {
					f.Label += "x"
				}
				return f
			},
			wantAttr: "label",
		},
		{
			name:     "invalid type",
			mutate:   func(f Field) Field { f.Type = "hologram"; return f },
			wantAttr: "type",
		},
		{
			name:     "missing name",
			mutate:   func(f Field) Field { f.Name = ""; return f },
			wantAttr: "name",
		},
		{
			name:     "name starts with digit",
			mutate:   func(f Field) Field { f.Name = "1age"; return f },
			wantAttr: "name",
		},
		{
			name:     "name with dash",
			mutate:   func(f Field) Field { f.Name = "my-field"; return f },
			wantAttr: "name",
		},
		{
			name:     "radio without options",
			mutate:   func(f Field) Field { f.Type = TypeRadio; return f },
			wantAttr: "options",
		},
		{
			name:     "select without options",
			mutate:   func(f Field) Field { f.Type = TypeSelect; return f },
			wantAttr: "options",
		},
		{
			name:     "negative order",
			mutate:   func(f Field) Field { f.Order = -1; return f },
			wantAttr: "order",
		},
		{
			name:     "negative minLength",
			mutate:   func(f Field) Field { f.Rules = &Rules{MinLength: iptr(-1)}; return f },
			wantAttr: "validation",
		},
	}

	if result := ValidateDefinition(valid); !result.Valid {
		t.Fatalf("valid field rejected: %+v", result.Errors)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateDefinition(tt.mutate(valid))
			if result.Valid {
				t.Fatal("expected invalid")
			}
			if _, ok := result.Errors[tt.wantAttr]; !ok {
				t.Errorf("expected error on %q, got %+v", tt.wantAttr, result.Errors)
			}
		})
	}

	// Checkbox without options is allowed: free-form multi-value.
	checkbox := Field{Label: "Tags", Type: TypeCheckbox, Name: "tags"}
	if result := ValidateDefinition(checkbox); !result.Valid {
		t.Errorf("checkbox without options rejected: %+v", result.Errors)
	}
}

func TestSortByOrder(t *testing.T) {
	now := time.Now()
	fields := []Field{
		{ID: "c", Order: 2, CreatedAt: now},
		{ID: "a", Order: 0, CreatedAt: now},
		{ID: "b1", Order: 1, CreatedAt: now},
		{ID: "b2", Order: 1, CreatedAt: now},
	}

	sorted := SortByOrder(fields)

	want := []string{"a", "b1", "b2", "c"}
	for i, id := range want {
		if sorted[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, sorted[i].ID, id)
		}
	}
	// Input slice is not reordered.
	if fields[0].ID != "c" {
		t.Error("input slice was mutated")
	}
}
