// Package parser loads OpenAPI 3 documents with kin-openapi and locates
// operations and their request-body schemas.
package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrOperationNotFound is returned when no operation matches the requested id.
var ErrOperationNotFound = errors.New("openapi parser: operation not found")

// Options tune document loading.
type Options struct {
	// ResolveReferences allows external $refs and validates the document.
	ResolveReferences bool
	// AllowPartialDocuments accepts documents without paths.
	AllowPartialDocuments bool
}

// Operation is one method/path pair of a document.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	Value       *openapi3.Operation
}

// Load parses raw (JSON or YAML) into a kin-openapi document.
func Load(ctx context.Context, raw []byte, opts Options) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: opts.ResolveReferences,
	}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if (doc.Paths == nil || doc.Paths.Len() == 0) && !opts.AllowPartialDocuments {
		return nil, errors.New("openapi parser: document does not contain any paths")
	}
	if opts.ResolveReferences {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}
	return doc, nil
}

// Operations lists every operation sorted by id. Operations without an
// operationId get "<method>:<path>".
func Operations(doc *openapi3.T) []Operation {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	var out []Operation
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, method := range []string{"GET", "PUT", "POST", "DELETE", "PATCH", "HEAD", "OPTIONS", "TRACE"} {
			op := item.GetOperation(method)
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			out = append(out, Operation{
				ID:          id,
				Method:      method,
				Path:        path,
				Summary:     op.Summary,
				Description: op.Description,
				Value:       op,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindOperation returns the operation with the given id.
func FindOperation(doc *openapi3.T, id string) (Operation, error) {
	id = strings.TrimSpace(id)
	for _, op := range Operations(doc) {
		if op.ID == id {
			return op, nil
		}
	}
	return Operation{}, fmt.Errorf("%w: %q", ErrOperationNotFound, id)
}

// RequestSchema returns the request body schema of op, preferring JSON, then
// urlencoded, then multipart, then any other media type.
func RequestSchema(op Operation) (*openapi3.SchemaRef, string) {
	if op.Value == nil || op.Value.RequestBody == nil || op.Value.RequestBody.Value == nil {
		return nil, ""
	}
	content := op.Value.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt != nil {
			return mt.Schema, mediaType
		}
	}
	types := make([]string, 0, len(content))
	for mediaType := range content {
		types = append(types, mediaType)
	}
	sort.Strings(types)
	for _, mediaType := range types {
		if mt := content[mediaType]; mt != nil {
			return mt.Schema, mediaType
		}
	}
	return nil, ""
}

// FirstType returns the first declared type, or "".
func FirstType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	for _, v := range values {
		if v != "null" {
			return v
		}
	}
	return values[0]
}

// Flatten merges the properties and required lists of s and its allOf
// members. Later members win on name collisions.
func Flatten(s *openapi3.Schema) (openapi3.Schemas, []string) {
	if s == nil {
		return nil, nil
	}
	props := make(openapi3.Schemas)
	required := make(map[string]struct{})
	var walk func(*openapi3.Schema, int)
	walk = func(cur *openapi3.Schema, depth int) {
		if cur == nil || depth > 16 {
			return
		}
		for _, ref := range cur.AllOf {
			if ref != nil {
				walk(ref.Value, depth+1)
			}
		}
		for name, prop := range cur.Properties {
			props[name] = prop
		}
		for _, name := range cur.Required {
			required[name] = struct{}{}
		}
	}
	walk(s, 0)

	names := make([]string, 0, len(required))
	for name := range required {
		names = append(names, name)
	}
	sort.Strings(names)
	return props, names
}
