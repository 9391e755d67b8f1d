package render

import (
	"strings"

	"github.com/goliatone/go-formkit/pkg/schema"
)

// FieldSubset selects part of a form. Names compare case-insensitively and a
// field is kept when it matches either list.
type FieldSubset struct {
	Sections []string
	Fields   []string
}

// Empty reports whether the subset selects everything.
func (s FieldSubset) Empty() bool {
	return len(normaliseTokens(s.Sections)) == 0 && len(normaliseTokens(s.Fields)) == 0
}

// ApplySubset prunes view.Schema to the selected fields. Sections left
// without fields are dropped so renderers do not draw empty groups.
func ApplySubset(view *View, subset FieldSubset) {
	if view == nil || subset.Empty() {
		return
	}
	sections := normaliseTokens(subset.Sections)
	fields := normaliseTokens(subset.Fields)

	keep := func(section string, field schema.FieldConfig) bool {
		if _, ok := fields[normaliseToken(field.Name)]; ok {
			return true
		}
		if section == "" {
			return false
		}
		_, ok := sections[normaliseToken(section)]
		return ok
	}

	out := schema.Schema{}
	for _, field := range view.Schema.Fields {
		if keep("", field) {
			out.Fields = append(out.Fields, field)
		}
	}
	for _, section := range view.Schema.Sections {
		var kept []schema.FieldConfig
		for _, field := range section.Fields {
			if keep(section.Name, field) {
				kept = append(kept, field)
			}
		}
		if len(kept) > 0 {
			section.Fields = kept
			out.Sections = append(out.Sections, section)
		}
	}
	view.Schema = out
}

func normaliseTokens(values []string) map[string]struct{} {
	result := make(map[string]struct{}, len(values))
	for _, value := range values {
		if token := normaliseToken(value); token != "" {
			result[token] = struct{}{}
		}
	}
	return result
}

func normaliseToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
