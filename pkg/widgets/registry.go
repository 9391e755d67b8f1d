// Package widgets maps field types to their control renderers and value
// handling. Unknown types never fail: callers fall back to Unsupported.
package widgets

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-formkit/pkg/rules"
	"github.com/goliatone/go-formkit/pkg/schema"
)

// ErrCoerce marks raw input that cannot be converted to a type's value shape.
var ErrCoerce = errors.New("widgets: cannot coerce value")

// ZeroFunc produces the initial value of a field.
type ZeroFunc func(field schema.FieldConfig) any

// CoerceFunc normalises raw input into the type's value shape.
type CoerceFunc func(field schema.FieldConfig, raw any) (any, error)

// Descriptor bundles everything the engine needs to know about a type.
type Descriptor struct {
	Type schema.FieldType
	// Partial is the template key a theme can override.
	Partial string
	Render  Renderer
	Zero    ZeroFunc
	Coerce  CoerceFunc
	Empty   rules.EmptyFunc
}

// Registry tracks descriptors keyed by field type.
type Registry struct {
	mu    sync.RWMutex
	types map[schema.FieldType]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{types: make(map[schema.FieldType]Descriptor)}
}

// NewRegistry returns a registry holding the ten built-in types.
func NewRegistry() *Registry {
	reg := New()
	reg.registerBuiltins()
	return reg
}

// Register associates a descriptor with t, replacing any previous entry.
// Missing Zero/Coerce/Empty hooks fall back to the text behaviour.
func (r *Registry) Register(t schema.FieldType, descriptor Descriptor) error {
	key := normalize(t)
	if key == "" {
		return fmt.Errorf("widgets: field type is required")
	}
	if descriptor.Render == nil {
		return fmt.Errorf("widgets: renderer for %q is nil", key)
	}
	descriptor.Type = key
	if descriptor.Partial == "" {
		descriptor.Partial = "forms." + string(key)
	}
	if descriptor.Zero == nil {
		descriptor.Zero = zeroString
	}
	if descriptor.Coerce == nil {
		descriptor.Coerce = coerceString
	}
	if descriptor.Empty == nil {
		descriptor.Empty = rules.IsEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[key] = descriptor
	return nil
}

// MustRegister mirrors Register but panics on error.
func (r *Registry) MustRegister(t schema.FieldType, descriptor Descriptor) {
	if err := r.Register(t, descriptor); err != nil {
		panic(err)
	}
}

// Lookup fetches the descriptor for t.
func (r *Registry) Lookup(t schema.FieldType) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.types[normalize(t)]
	return descriptor, ok
}

// Types returns the registered types sorted by name.
func (r *Registry) Types() []schema.FieldType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]schema.FieldType, 0, len(r.types))
	for t := range r.types {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy so callers can override entries
// without touching a shared registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := New()
	for t, d := range r.types {
		out.types[t] = d
	}
	return out
}

// Zero returns the initial value for field. Unknown types start as "".
func (r *Registry) Zero(field schema.FieldConfig) any {
	if d, ok := r.Lookup(field.Type); ok {
		return d.Zero(field)
	}
	return ""
}

// Coerce normalises raw for field. Unknown types keep strings as-is.
func (r *Registry) Coerce(field schema.FieldConfig, raw any) (any, error) {
	if d, ok := r.Lookup(field.Type); ok {
		return d.Coerce(field, raw)
	}
	return coerceString(field, raw)
}

// EmptyFunc returns the presence check for field.
func (r *Registry) EmptyFunc(field schema.FieldConfig) rules.EmptyFunc {
	if d, ok := r.Lookup(field.Type); ok {
		return d.Empty
	}
	return rules.IsEmpty
}

func normalize(t schema.FieldType) schema.FieldType {
	return schema.FieldType(strings.ToLower(strings.TrimSpace(string(t))))
}

func (r *Registry) registerBuiltins() {
	text := func(t schema.FieldType, render Renderer) {
		r.MustRegister(t, Descriptor{Render: render, Zero: zeroString, Coerce: coerceString})
	}
	text(schema.FieldTypeText, inputRenderer("text"))
	text(schema.FieldTypeEmail, inputRenderer("email"))
	text(schema.FieldTypePassword, passwordRenderer)
	text(schema.FieldTypeTextarea, textareaRenderer)

	r.MustRegister(schema.FieldTypeNumber, Descriptor{Render: inputRenderer("number"), Zero: zeroNil, Coerce: coerceNumber})
	r.MustRegister(schema.FieldTypeDate, Descriptor{Render: inputRenderer("date"), Zero: zeroString, Coerce: coerceDate})
	r.MustRegister(schema.FieldTypeSelect, Descriptor{Render: selectRenderer, Zero: zeroChoice, Coerce: coerceChoice})
	r.MustRegister(schema.FieldTypeRadio, Descriptor{Render: radioRenderer, Zero: zeroString, Coerce: coerceChoice})
	r.MustRegister(schema.FieldTypeCheckbox, Descriptor{Render: checkboxRenderer, Zero: zeroChoice, Coerce: coerceCheckbox})
	r.MustRegister(schema.FieldTypeFile, Descriptor{Render: fileRenderer, Zero: zeroFiles, Coerce: coerceFiles})
}
