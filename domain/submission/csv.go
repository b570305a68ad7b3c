package submission

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CSV columns always start with these, followed by one column per field name.
var csvFixedHeader = []string{"Submitted At", "IP Address", "Form Version"}

// ExportCSV renders submissions as CSV against the given field-name columns.
// Timestamps use RFC 3339 UTC. List answers join with "; ". Every answer cell
// is quote-wrapped with internal quotes doubled; answers for columns the
// submission never filled render empty.
//
// Columns come from the form *currently* attached to the submissions' form
// id; answers recorded under a field name the current version no longer has
// render blank. Re-deriving columns per submission from its FormVersion
// snapshot would give exact historical fidelity, at the cost of ragged rows.
// This is a PURE function.
func ExportCSV(fieldNames []string, submissions []Submission) string {
	var b strings.Builder

	header := append(append([]string(nil), csvFixedHeader...), fieldNames...)
	b.WriteString(strings.Join(header, ","))

	for _, s := range submissions {
		answers := s.AnswerMap()

		row := make([]string, 0, len(csvFixedHeader)+len(fieldNames))
		row = append(row,
			s.SubmittedAt.UTC().Format(time.RFC3339),
			s.IP,
			strconv.Itoa(s.FormVersion),
		)
		for _, name := range fieldNames {
			row = append(row, formatCell(answers[name]))
		}

		b.WriteString("\n")
		b.WriteString(strings.Join(row, ","))
	}

	return b.String()
}

func formatCell(value any) string {
	if value == nil {
		return ""
	}

	if items, ok := asList(value); ok {
		return quote(strings.Join(items, "; "))
	}

	return quote(stringify(value))
}

func asList(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, stringify(item))
		}
		return items, true
	default:
		return nil, false
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
