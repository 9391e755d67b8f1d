package openapi

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formkit/internal/openapi/parser"
	"github.com/goliatone/go-formkit/pkg/schema"
)

// Violation is one problem found by Lint.
type Violation struct {
	Location string
	Message  string
}

func (v Violation) String() string {
	return v.Location + " -> " + v.Message
}

// Extensions lists the supported x-formkit-* keys.
func Extensions() []string {
	return []string{extAccept, extOrder, extPlaceholder, extSection, extWidget}
}

// Lint reports unsupported or malformed x-formkit-* extensions on the
// request-body schemas of every operation. Documents without paths are
// accepted.
func Lint(ctx context.Context, raw []byte, opts ...Option) ([]Violation, error) {
	cfg := newConfig(opts)
	doc, err := parser.Load(ctx, raw, parser.Options{
		ResolveReferences:     cfg.resolveRefs,
		AllowPartialDocuments: true,
	})
	if err != nil {
		return nil, err
	}

	var out []Violation
	for _, op := range parser.Operations(doc) {
		ref, _ := parser.RequestSchema(op)
		if ref == nil || ref.Value == nil {
			continue
		}
		base := []string{"operation", op.ID, "requestBody"}
		out = append(out, lintSchema(base, ref.Value, 0)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Location == out[j].Location {
			return out[i].Message < out[j].Message
		}
		return out[i].Location < out[j].Location
	})
	return out, nil
}

func lintSchema(path []string, s *openapi3.Schema, depth int) []Violation {
	if s == nil || depth > 16 {
		return nil
	}
	out := lintExtensions(path, s.Extensions)
	for _, member := range s.AllOf {
		if member != nil {
			out = append(out, lintSchema(path, member.Value, depth+1)...)
		}
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if prop := s.Properties[name]; prop != nil {
			out = append(out, lintSchema(appendPath(path, "properties."+name), prop.Value, depth+1)...)
		}
	}
	if s.Items != nil {
		out = append(out, lintSchema(appendPath(path, "items"), s.Items.Value, depth+1)...)
	}
	return out
}

func lintExtensions(path []string, ext map[string]any) []Violation {
	keys := make([]string, 0, len(ext))
	for key := range ext {
		if strings.HasPrefix(key, extensionNamespace) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var out []Violation
	location := strings.Join(path, " > ")
	for _, key := range keys {
		value := ext[key]
		switch key {
		case extWidget:
			widget, ok := value.(string)
			if !ok || !schema.FieldType(strings.ToLower(strings.TrimSpace(widget))).Known() {
				out = append(out, Violation{location, fmt.Sprintf("%s must name a field type, got %v", key, value)})
			}
		case extSection, extPlaceholder, extAccept:
			if _, ok := value.(string); !ok {
				out = append(out, Violation{location, fmt.Sprintf("%s must be a string (got %T)", key, value)})
			}
		case extOrder:
			if _, ok := extNumber(ext, key); !ok {
				out = append(out, Violation{location, fmt.Sprintf("%s must be a number (got %T)", key, value)})
			}
		default:
			out = append(out, Violation{location, fmt.Sprintf("unsupported extension %q (supported: %s)", key, strings.Join(Extensions(), ", "))})
		}
	}
	return out
}

func appendPath(path []string, segment string) []string {
	next := append([]string(nil), path...)
	return append(next, segment)
}
