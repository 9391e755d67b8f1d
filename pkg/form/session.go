package form

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/rules"
	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/sections"
	"github.com/goliatone/go-formkit/pkg/widgets"
)

var (
	// ErrUnknownField is returned for names the schema does not declare.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrFieldDisabled is returned when changing a disabled field.
	ErrFieldDisabled = errors.New("form: field is disabled")
	// ErrSubmitInProgress is returned when Submit is called while another
	// submit is pending.
	ErrSubmitInProgress = errors.New("form: submit in progress")
	// ErrSubmitFailed wraps the error returned by a submit handler.
	ErrSubmitFailed = errors.New("form: submit failed")
)

// ValidationError carries the per-field messages of a failed validation pass.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "form: validation failed"
	}
	names := e.Names()
	return fmt.Sprintf("form: validation failed: %s: %s", names[0], e.Fields[names[0]]) +
		plural(len(names)-1)
}

// Names lists the failing fields in sorted order.
func (e *ValidationError) Names() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func plural(more int) string {
	switch {
	case more <= 0:
		return ""
	case more == 1:
		return " (and 1 more)"
	default:
		return fmt.Sprintf(" (and %d more)", more)
	}
}

// Session is the runtime state of one form instance.
type Session struct {
	id       string
	schema   schema.Schema
	cfg      config
	registry *widgets.Registry
	logger   *zap.Logger

	order    []string
	fields   map[string]schema.FieldConfig
	rules    map[string]rules.RuleSet
	initial  map[string]any
	sections *sections.Organizer

	mu           sync.Mutex
	st           state
	submitting   bool
	submitted    bool
	submitFailed bool
	submitCount  int
}

// New builds a session for s. The schema is validated, every field's rules
// are compiled, and values are seeded from WithDefaultValues, then
// FieldConfig.DefaultValue, then the field type's zero value.
func New(s schema.Schema, opts ...Option) (*Session, error) {
	sch, err := schema.New(s)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.registry == nil {
		cfg.registry = widgets.NewRegistry()
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}

	sess := &Session{
		id:       cfg.id,
		schema:   sch,
		cfg:      cfg,
		registry: cfg.registry,
		logger:   cfg.logger.With(zap.String("session", cfg.id)),
		fields:   make(map[string]schema.FieldConfig),
		rules:    make(map[string]rules.RuleSet),
		initial:  make(map[string]any),
		sections: sections.New(sch.SectionNames(), cfg.expandAll),
	}

	ruleOpts := []rules.Option{}
	if len(cfg.messages) > 0 {
		ruleOpts = append(ruleOpts, rules.WithMessages(cfg.messages))
	}
	if cfg.translator != nil {
		ruleOpts = append(ruleOpts, rules.WithTranslator(cfg.translator, cfg.locale))
	}

	for _, field := range sch.AllFields() {
		rs, err := rules.Compile(field, append(ruleOpts, rules.WithEmptyFunc(cfg.registry.EmptyFunc(field)))...)
		if err != nil {
			return nil, fmt.Errorf("form: field %q: %w", field.Name, err)
		}
		value, err := sess.seed(field)
		if err != nil {
			return nil, fmt.Errorf("form: field %q: %w", field.Name, err)
		}
		sess.order = append(sess.order, field.Name)
		sess.fields[field.Name] = field
		sess.rules[field.Name] = rs
		sess.initial[field.Name] = value
	}
	for name := range cfg.defaults {
		if _, ok := sess.fields[name]; !ok {
			sess.logger.Debug("ignoring default for unknown field", zap.String("field", name))
		}
	}

	sess.st = newState(sess.initial)
	return sess, nil
}

// FromDefinition builds a session from a loaded schema document. The
// document's title, submit label and expandAll act as defaults that opts can
// override.
func FromDefinition(def schema.Definition, opts ...Option) (*Session, error) {
	base := []Option{
		WithTitle(def.Title),
		WithSubmitLabel(def.SubmitLabel),
		WithExpandAll(def.ExpandAll),
	}
	return New(def.Schema, append(base, opts...)...)
}

// MustNew is New that panics on error.
func MustNew(s schema.Schema, opts ...Option) *Session {
	sess, err := New(s, opts...)
	if err != nil {
		panic(err)
	}
	return sess
}

func (s *Session) seed(field schema.FieldConfig) (any, error) {
	if raw, ok := s.cfg.defaults[field.Name]; ok {
		return s.registry.Coerce(field, raw)
	}
	if field.DefaultValue != nil {
		return s.registry.Coerce(field, field.DefaultValue)
	}
	return s.registry.Zero(field), nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Schema returns a copy of the session's schema.
func (s *Session) Schema() schema.Schema {
	return s.schema.Clone()
}

// Sections returns the section organizer.
func (s *Session) Sections() *sections.Organizer {
	return s.sections
}

// Registry returns the field type registry the session coerces with.
func (s *Session) Registry() *widgets.Registry {
	return s.registry
}

// Field returns the binding for name.
func (s *Session) Field(name string) (*Binding, error) {
	field, ok := s.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return &Binding{session: s, field: field}, nil
}

// Fields returns bindings for every field in display order.
func (s *Session) Fields() []*Binding {
	out := make([]*Binding, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, &Binding{session: s, field: s.fields[name]})
	}
	return out
}

// Values returns a copy of the current values.
func (s *Session) Values() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneValues(s.st.values)
}

// Errors returns a copy of the visible field errors.
func (s *Session) Errors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.errorsCopy()
}

// FormErrors returns server-side messages that matched no field.
func (s *Session) FormErrors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.st.formErrors...)
}

// IsSubmitting reports whether a submit handler is running.
func (s *Session) IsSubmitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// SubmitCount is the number of Submit calls that passed validation.
func (s *Session) SubmitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitCount
}

// Validate checks every field, replaces the visible errors and returns a
// *ValidationError when any field fails.
func (s *Session) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateAllLocked()
}

// ValidateField checks one field, updates its visible error and returns the
// message ("" when valid).
func (s *Session) ValidateField(name string) (string, error) {
	if _, ok := s.fields[name]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateLocked(name), nil
}

// Reset restores the initial values and clears errors, touched flags, submit
// state and section expansion.
func (s *Session) Reset() {
	s.mu.Lock()
	s.st = newState(s.initial)
	s.submitted = false
	s.submitFailed = false
	s.mu.Unlock()
	s.sections.Reset()
}

// ApplyErrors maps a server error payload onto the fields and returns the
// names that received an error. Keys that match no field become form-level
// errors. After ApplyErrors, changes revalidate like after a failed submit.
func (s *Session) ApplyErrors(payload map[string][]string) []string {
	mapping := render.MapErrorPayload(s.schema, payload)
	first := mapping.FirstErrors()

	names := make([]string, 0, len(first))
	for name := range first {
		names = append(names, name)
	}
	sort.Strings(names)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		s.st.setError(name, first[name])
	}
	s.st.formErrors = render.MergeFormErrors(s.st.formErrors, mapping.Form...)
	if len(names) > 0 || len(mapping.Form) > 0 {
		s.submitFailed = true
	}
	return names
}

// View snapshots the session for renderers.
func (s *Session) View() render.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	touched := make(map[string]bool, len(s.st.touched))
	for k, v := range s.st.touched {
		touched[k] = v
	}
	return render.View{
		ID:              s.id,
		Title:           s.cfg.title,
		Schema:          s.schema.Clone(),
		Values:          cloneValues(s.st.values),
		Errors:          s.st.errorsCopy(),
		FormErrors:      append([]string(nil), s.st.formErrors...),
		Touched:         touched,
		Expanded:        s.sections.ExpandedSet(),
		Submitting:      s.submitting,
		Submitted:       s.submitted,
		SubmitLabel:     s.cfg.submitLabel,
		SubmittingLabel: s.cfg.submittingLabel,
		Registry:        s.registry,
	}
}

func (s *Session) validateLocked(name string) string {
	field := s.fields[name]
	if field.Disabled {
		s.st.setError(name, "")
		return ""
	}
	message := s.st.typeErrors[name]
	if message != "" {
		s.st.setError(name, message)
		return message
	}
	if violation := s.rules[name].Check(s.st.values[name], s.st.values); violation != nil {
		message = violation.Message
	}
	s.st.setError(name, message)
	return message
}

func (s *Session) validateAllLocked() error {
	failed := make(map[string]string)
	for _, name := range s.order {
		if message := s.validateLocked(name); message != "" {
			failed[name] = message
		}
	}
	if len(failed) > 0 {
		return &ValidationError{Fields: failed}
	}
	return nil
}
