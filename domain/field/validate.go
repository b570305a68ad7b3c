package field

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Error describes a single validation problem with a submitted answer.
type Error struct {
	FieldName string `json:"fieldName"`
	Message   string `json:"message"`
}

// Validate checks a submitted value against a field definition.
// Returns an error message, or "" when the value is acceptable.
// This is a PURE function - no side effects, deterministic.
func Validate(f Field, value any) string {
	label := f.DisplayName()

	// Required check comes first; an absent optional value short-circuits
	// every other rule.
	if isEmpty(value) {
		if f.Required {
			return label + " is required"
		}
		return ""
	}

	switch f.Type {
	case TypeText, TypeTextarea:
		s, ok := asString(value)
		if !ok {
			return label + " must be a string"
		}
		return validateText(label, s, f.Rules)

	case TypeEmail:
		s, ok := asString(value)
		if !ok {
			return label + " must be a string"
		}
		if !emailRegex.MatchString(s) {
			return label + " must be a valid email address"
		}

	case TypeNumber:
		n, ok := asNumber(value)
		if !ok {
			return label + " must be a number"
		}
		if f.Rules != nil {
			if f.Rules.Min != nil && n < *f.Rules.Min {
				return label + " must be at least " + formatNumber(*f.Rules.Min)
			}
			if f.Rules.Max != nil && n > *f.Rules.Max {
				return label + " must be at most " + formatNumber(*f.Rules.Max)
			}
		}

	case TypeDate:
		s, ok := asString(value)
		if !ok {
			return label + " must be a date string"
		}
		if !isParseableDate(s) {
			return label + " must be a valid date"
		}

	case TypeCheckbox:
		items, ok := asStringSlice(value)
		if !ok {
			return label + " must be an array"
		}
		if len(f.Options) > 0 {
			for _, item := range items {
				if !containsOption(f.Options, item) {
					return label + " contains invalid options"
				}
			}
		}

	case TypeRadio, TypeSelect:
		if len(f.Options) > 0 {
			s, isString := asString(value)
			if !isString || !containsOption(f.Options, s) {
				return label + " must be one of: " + joinOptions(f.Options)
			}
		}

	case TypeFile:
		// Extension point: a path or encoded payload, nothing more yet.
		if _, ok := asString(value); !ok {
			return label + " must be a file path or base64 string"
		}

	default:
		return label + " has unsupported field type"
	}

	return ""
}

// ValidateAnswers runs the per-field check for every field and flags answer
// keys that match no field. Field errors come first in field order, then
// unknown-key errors in keyOrder. A nil keyOrder falls back to sorted keys
// so the result stays deterministic.
// This is a PURE function.
func ValidateAnswers(fields []Field, answers map[string]any, keyOrder []string) []Error {
	var errors []Error

	for _, f := range fields {
		if msg := Validate(f, answers[f.Name]); msg != "" {
			errors = append(errors, Error{FieldName: f.Name, Message: msg})
		}
	}

	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Name] = true
	}

	if keyOrder == nil {
		keyOrder = make([]string, 0, len(answers))
		for name := range answers {
			keyOrder = append(keyOrder, name)
		}
		sort.Strings(keyOrder)
	}

	seen := make(map[string]bool, len(keyOrder))
	for _, name := range keyOrder {
		if _, submitted := answers[name]; !submitted || known[name] || seen[name] {
			continue
		}
		seen[name] = true
		errors = append(errors, Error{
			FieldName: name,
			Message:   "Unknown field: " + name,
		})
	}

	return errors
}

func validateText(label, s string, rules *Rules) string {
	if rules == nil {
		return ""
	}
	length := utf8.RuneCountInString(s)
	if rules.MinLength != nil && length < *rules.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", label, *rules.MinLength)
	}
	if rules.MaxLength != nil && length > *rules.MaxLength {
		return fmt.Sprintf("%s must be at most %d characters", label, *rules.MaxLength)
	}
	if rules.Pattern != "" {
		re, err := regexp.Compile(rules.Pattern)
		if err != nil {
			// A broken pattern is a field error, never a crash.
			return label + " has invalid regex pattern"
		}
		if !re.MatchString(s) {
			return label + " format is invalid"
		}
	}
	return ""
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// dateLayouts are the accepted answer formats for date fields.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func isParseableDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

func asString(value any) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

func asNumber(value any) (float64, bool) {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func asStringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				// Keep non-strings; option membership will reject them.
				s = fmt.Sprint(item)
			}
			items = append(items, s)
		}
		return items, true
	default:
		return nil, false
	}
}

func containsOption(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}

func joinOptions(options []string) string {
	return strings.Join(options, ", ")
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
