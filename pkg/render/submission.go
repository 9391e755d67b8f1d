package render

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// MethodOverrideField carries the intended verb when a form posts with a
// method browsers cannot send natively.
const MethodOverrideField = "_method"

// HiddenField is a hidden input emitted alongside the visible schema.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// CSRFToken constructs a hidden field carrying token under name (for example
// "_csrf" or "csrf_token").
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// MergeHiddenFields returns a copy of base with fields applied. Empty names
// are ignored and later fields win on collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		if field.Name != "" {
			out[field.Name] = field.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields orders hidden fields by name for deterministic output.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	names := make([]string, 0, len(fields))
	for name := range fields {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]HiddenField, 0, len(names))
	for _, name := range names {
		out = append(out, HiddenField{Name: strings.TrimSpace(name), Value: fields[name]})
	}
	return out
}

// ResolveMethod maps the requested verb onto what an HTML form can send.
// It returns the form method and, when needed, the override value for the
// hidden _method input.
func ResolveMethod(method string) (formMethod, override string) {
	switch upper := strings.ToUpper(strings.TrimSpace(method)); upper {
	case "", http.MethodPost:
		return http.MethodPost, ""
	case http.MethodGet:
		return http.MethodGet, ""
	default:
		return http.MethodPost, upper
	}
}
