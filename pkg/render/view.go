package render

import (
	"maps"
	"slices"
	"strings"

	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/widgets"
)

// View is an immutable snapshot of a form session: everything a renderer
// needs to draw it without reaching back into session state.
type View struct {
	ID              string
	Title           string
	Schema          schema.Schema
	Values          map[string]any
	Errors          map[string]string
	FormErrors      []string
	Touched         map[string]bool
	Expanded        []string
	Submitting      bool
	Submitted       bool
	SubmitLabel     string
	SubmittingLabel string
	// Registry is the field type registry the session coerces with. Renderers
	// draw controls from it unless configured with their own; nil means the
	// built-in types.
	Registry *widgets.Registry
}

// IsExpanded reports whether the named section is open.
func (v View) IsExpanded(section string) bool {
	return slices.Contains(v.Expanded, section)
}

// Value returns the current value of a field.
func (v View) Value(name string) any {
	return v.Values[name]
}

// Error returns the visible error of a field.
func (v View) Error(name string) string {
	return v.Errors[name]
}

// ButtonLabel is the submit caption for the current state.
func (v View) ButtonLabel() string {
	if v.Submitting {
		return firstNonEmpty(v.SubmittingLabel, "Submitting...")
	}
	return firstNonEmpty(v.SubmitLabel, "Submit")
}

// Clone returns a copy whose maps and slices can be mutated freely.
func (v View) Clone() View {
	out := v
	out.Values = maps.Clone(v.Values)
	out.Errors = maps.Clone(v.Errors)
	out.Touched = maps.Clone(v.Touched)
	out.FormErrors = slices.Clone(v.FormErrors)
	out.Expanded = slices.Clone(v.Expanded)
	out.Schema = v.Schema.Clone()
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
