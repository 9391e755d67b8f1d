package render

import (
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-formkit/pkg/schema"
)

// ErrorMapping is a server error payload split into per-field messages and
// form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// envelopeKeys are leading path segments that wrap the submitted values in
// common API error formats ("/body/email", "data.attributes.email").
var envelopeKeys = map[string]bool{
	"body":       true,
	"request":    true,
	"payload":    true,
	"data":       true,
	"attributes": true,
	"values":     true,
}

// formKeys address the form as a whole.
var formKeys = map[string]bool{
	"":                 true,
	"form":             true,
	"__all__":          true,
	"non_field_errors": true,
	"non-field-errors": true,
}

// MapErrorPayload assigns each payload entry to a field of s. Keys may be
// plain field names, JSON pointers ("/body/email") or dotted/indexed paths
// ("data.guests[0]"). Entries that name no field become form-level errors
// so messages are never dropped. Messages are trimmed and deduplicated and
// keys are visited in sorted order.
func MapErrorPayload(s schema.Schema, payload map[string][]string) ErrorMapping {
	var mapping ErrorMapping
	if len(payload) == 0 {
		return mapping
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		messages := normalizeMessages(payload[key])
		if len(messages) == 0 {
			continue
		}
		name, ok := fieldForPath(s, key)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[name] = normalizeMessages(append(mapping.Fields[name], messages...))
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MergeFormErrors appends extras to existing, trimming and dropping
// duplicates while keeping first-seen order.
func MergeFormErrors(existing []string, extras ...string) []string {
	return normalizeMessages(append(slices.Clone(existing), extras...))
}

// FirstErrors keeps the first message per field, the one a field shows.
func (m ErrorMapping) FirstErrors() map[string]string {
	if len(m.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(m.Fields))
	for name, messages := range m.Fields {
		if len(messages) > 0 {
			out[name] = messages[0]
		}
	}
	return out
}

// fieldForPath resolves key to a field name. Field names are flat, so after
// envelope segments are skipped the first segment that names a field wins;
// array indexes and nested keys after it are ignored.
func fieldForPath(s schema.Schema, key string) (string, bool) {
	key = strings.TrimSpace(key)
	if _, ok := s.Lookup(key); ok {
		return key, true
	}
	segments := pathSegments(key)
	if len(segments) == 0 || formKeys[strings.ToLower(segments[0])] {
		return "", false
	}
	for len(segments) > 0 && envelopeKeys[strings.ToLower(segments[0])] {
		segments = segments[1:]
	}
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		if _, ok := s.Lookup(segment); ok {
			return segment, true
		}
		break
	}
	return "", false
}

// pathSegments splits a JSON pointer or dotted path. "~1" and "~0" are
// unescaped per RFC 6901 and "[n]" becomes its own segment.
func pathSegments(path string) []string {
	path = strings.TrimLeft(path, "#$/.")
	path = strings.NewReplacer("[", ".", "]", "").Replace(path)
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '.' })
	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		out = append(out, strings.ReplaceAll(part, "~0", "~"))
	}
	return out
}

func normalizeMessages(messages []string) []string {
	var out []string
	for _, message := range messages {
		message = strings.TrimSpace(message)
		if message != "" && !slices.Contains(out, message) {
			out = append(out, message)
		}
	}
	return out
}
