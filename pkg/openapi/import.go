package openapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formkit/internal/openapi/parser"
	"github.com/goliatone/go-formkit/pkg/schema"
)

// ErrOperationNotFound is returned when the document has no such operation.
var ErrOperationNotFound = parser.ErrOperationNotFound

// Option configures an import.
type Option func(*config)

type config struct {
	resolveRefs    bool
	defaultSection string
	submitLabel    string
}

// WithResolveReferences allows external $refs and validates the document.
func WithResolveReferences(enabled bool) Option {
	return func(c *config) {
		c.resolveRefs = enabled
	}
}

// WithDefaultSection names the section that collects fields without
// x-formkit-section when other fields declare one. Defaults to "General".
func WithDefaultSection(name string) Option {
	return func(c *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			c.defaultSection = trimmed
		}
	}
}

// WithSubmitLabel sets the submit caption of imported definitions.
func WithSubmitLabel(label string) Option {
	return func(c *config) {
		c.submitLabel = strings.TrimSpace(label)
	}
}

// OperationInfo summarises an operation for listings.
type OperationInfo struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	HasRequest  bool
	ContentType string
}

// Operations lists the operations of raw sorted by id.
func Operations(ctx context.Context, raw []byte, opts ...Option) ([]OperationInfo, error) {
	cfg := newConfig(opts)
	doc, err := parser.Load(ctx, raw, parser.Options{ResolveReferences: cfg.resolveRefs})
	if err != nil {
		return nil, err
	}
	ops := parser.Operations(doc)
	out := make([]OperationInfo, 0, len(ops))
	for _, op := range ops {
		ref, mediaType := parser.RequestSchema(op)
		out = append(out, OperationInfo{
			ID:          op.ID,
			Method:      op.Method,
			Path:        op.Path,
			Summary:     op.Summary,
			HasRequest:  ref != nil,
			ContentType: mediaType,
		})
	}
	return out, nil
}

// ImportOperation converts the request body of operationID into a schema.
func ImportOperation(ctx context.Context, raw []byte, operationID string, opts ...Option) (schema.Schema, error) {
	def, err := ImportDefinition(ctx, raw, operationID, opts...)
	if err != nil {
		return schema.Schema{}, err
	}
	return def.Schema, nil
}

// ImportDefinition is ImportOperation plus a title taken from the
// operation's summary (or id).
func ImportDefinition(ctx context.Context, raw []byte, operationID string, opts ...Option) (schema.Definition, error) {
	cfg := newConfig(opts)
	doc, err := parser.Load(ctx, raw, parser.Options{ResolveReferences: cfg.resolveRefs})
	if err != nil {
		return schema.Definition{}, err
	}
	op, err := parser.FindOperation(doc, operationID)
	if err != nil {
		return schema.Definition{}, err
	}
	ref, _ := parser.RequestSchema(op)
	if ref == nil || ref.Value == nil {
		return schema.Definition{}, fmt.Errorf("openapi: operation %q has no request body schema", op.ID)
	}

	fields, err := buildFields(ref.Value)
	if err != nil {
		return schema.Definition{}, fmt.Errorf("openapi: operation %q: %w", op.ID, err)
	}
	sch, err := assemble(fields, cfg.defaultSection)
	if err != nil {
		return schema.Definition{}, fmt.Errorf("openapi: operation %q: %w", op.ID, err)
	}

	title := strings.TrimSpace(op.Summary)
	if title == "" {
		title = op.ID
	}
	return schema.Definition{Title: title, SubmitLabel: cfg.submitLabel, Schema: sch}, nil
}

func newConfig(opts []Option) config {
	cfg := config{defaultSection: "General"}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
