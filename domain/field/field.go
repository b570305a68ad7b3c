// Package field provides field definition value types and the pure
// validation engine that checks submitted answers against them.
// This package has NO dependencies on I/O or external packages.
package field

import (
	"regexp"
	"sort"
	"time"
)

// Type identifies how a field is rendered and validated.
type Type string

const (
	TypeText     Type = "text"
	TypeTextarea Type = "textarea"
	TypeNumber   Type = "number"
	TypeEmail    Type = "email"
	TypeDate     Type = "date"
	TypeCheckbox Type = "checkbox"
	TypeRadio    Type = "radio"
	TypeSelect   Type = "select"
	TypeFile     Type = "file"
)

// Types lists every supported field type.
var Types = []Type{
	TypeText, TypeTextarea, TypeNumber, TypeEmail, TypeDate,
	TypeCheckbox, TypeRadio, TypeSelect, TypeFile,
}

// IsValid reports whether t is a supported field type.
func (t Type) IsValid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// HasOptions reports whether fields of this type select from an option list.
func (t Type) HasOptions() bool {
	return t == TypeCheckbox || t == TypeRadio || t == TypeSelect
}

// Rules holds optional validation bounds for a field.
// Pointers distinguish "unset" from legitimate zero values.
type Rules struct {
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// Clone returns a deep copy of the rules.
func (r *Rules) Clone() *Rules {
	if r == nil {
		return nil
	}
	c := Rules{Pattern: r.Pattern}
	if r.Min != nil {
		v := *r.Min
		c.Min = &v
	}
	if r.Max != nil {
		v := *r.Max
		c.Max = &v
	}
	if r.MinLength != nil {
		v := *r.MinLength
		c.MinLength = &v
	}
	if r.MaxLength != nil {
		v := *r.MaxLength
		c.MaxLength = &v
	}
	return &c
}

// Field is a typed form field definition (immutable value type).
// (FormID, Name) is unique within a form.
type Field struct {
	ID        string
	FormID    string
	Label     string
	Type      Type
	Name      string
	Required  bool
	Options   []string
	Rules     *Rules
	Order     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName returns the text used to address the field in error messages.
func (f Field) DisplayName() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Clone returns a copy of the field with a new identity and owning form.
// Label, type, name, required, options, rules and order are preserved verbatim.
func (f Field) Clone(id, formID string) Field {
	c := f
	c.ID = id
	c.FormID = formID
	c.Options = append([]string(nil), f.Options...)
	c.Rules = f.Rules.Clone()
	return c
}

// Patch describes a partial field update. Nil members retain the prior value.
type Patch struct {
	Label    *string   `json:"label"`
	Type     *Type     `json:"type"`
	Name     *string   `json:"name"`
	Required *bool     `json:"required"`
	Options  *[]string `json:"options"`
	Rules    *Rules    `json:"validation"`
	Order    *int      `json:"order"`
}

// Apply merges the patch into the field, returning the updated copy.
func (f Field) Apply(p Patch) Field {
	if p.Label != nil {
		f.Label = *p.Label
	}
	if p.Type != nil {
		f.Type = *p.Type
	}
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Required != nil {
		f.Required = *p.Required
	}
	if p.Options != nil {
		f.Options = append([]string(nil), (*p.Options)...)
	}
	if p.Rules != nil {
		f.Rules = p.Rules.Clone()
	}
	if p.Order != nil {
		f.Order = *p.Order
	}
	return f
}

var nameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidNamePattern is the machine-key format documented to API callers.
const ValidNamePattern = `^[A-Za-z][A-Za-z0-9_]*$`

// DefinitionResult represents the outcome of definition validation.
type DefinitionResult struct {
	Valid  bool
	Errors map[string]string // attribute -> error message
}

// ValidateDefinition checks a field definition for structural problems
// (pure function). It does not check name uniqueness; that is the store's
// insert-time constraint.
func ValidateDefinition(f Field) DefinitionResult {
	errors := make(map[string]string)

	if f.Label == "" {
		errors["label"] = "Label is required"
	} else if len(f.Label) > 200 {
		errors["label"] = "Label must not exceed 200 characters"
	}

	if !f.Type.IsValid() {
		errors["type"] = "Invalid field type"
	}

	if f.Name == "" {
		errors["name"] = "Name is required"
	} else if len(f.Name) > 100 {
		errors["name"] = "Name must not exceed 100 characters"
	} else if !nameRegex.MatchString(f.Name) {
		errors["name"] = "Name must start with a letter and contain only letters, numbers, and underscores"
	}

	if (f.Type == TypeRadio || f.Type == TypeSelect) && len(f.Options) == 0 {
		errors["options"] = "Options are required for radio/select fields"
	}

	if f.Order < 0 {
		errors["order"] = "Order must not be negative"
	}

	if f.Rules != nil {
		if f.Rules.MinLength != nil && *f.Rules.MinLength < 0 {
			errors["validation"] = "minLength must not be negative"
		}
		if f.Rules.MaxLength != nil && *f.Rules.MaxLength < 0 {
			errors["validation"] = "maxLength must not be negative"
		}
	}

	return DefinitionResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

// SortByOrder returns the fields sorted ascending by Order (stable on the
// incoming order for equal values). The input slice is not modified.
func SortByOrder(fields []Field) []Field {
	sorted := append([]Field(nil), fields...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}
