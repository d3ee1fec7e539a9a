// File: internal/actions/remap.go
package actions

import "strings"

// ValueKind is the coarse semantic type of a form value or field label, used
// to detect value/target mismatches (e.g. a priority value aimed at an
// assignee combobox).
type ValueKind string

const (
	KindEmail    ValueKind = "email"
	KindPriority ValueKind = "priority"
	KindLabel    ValueKind = "label"
	KindOther    ValueKind = "other"
)

var priorityWords = []string{"high", "medium", "low", "urgent", "priority"}
var labelWords = []string{"bug", "feature", "improvement", "task", "label"}

// ClassifyValue returns the semantic kind of a value and/or element name.
// Both arguments are checked together so it can classify either side of a
// value-to-field mapping.
func ClassifyValue(value, name string) ValueKind {
	text := strings.ToLower(value + " " + name)

	if strings.Contains(text, "@") && strings.Contains(text, ".") {
		return KindEmail
	}
	for _, w := range priorityWords {
		if strings.Contains(text, w) {
			return KindPriority
		}
	}
	for _, w := range labelWords {
		if strings.Contains(text, w) {
			return KindLabel
		}
	}
	return KindOther
}
