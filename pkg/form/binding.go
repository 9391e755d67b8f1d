package form

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/rules"
	"github.com/goliatone/go-formkit/pkg/schema"
)

// Binding connects one field to its session: it reads the field's value and
// error and routes change and blur events.
type Binding struct {
	session *Session
	field   schema.FieldConfig
}

// Name returns the field name.
func (b *Binding) Name() string {
	return b.field.Name
}

// Config returns the field configuration.
func (b *Binding) Config() schema.FieldConfig {
	return b.field
}

// Value returns a copy of the current value.
func (b *Binding) Value() any {
	s := b.session
	s.mu.Lock()
	defer s.mu.Unlock()
	return deepCopy(s.st.values[b.field.Name])
}

// Error returns the visible error, or "".
func (b *Binding) Error() string {
	s := b.session
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.errors[b.field.Name]
}

// Touched reports whether the field has been blurred at least once.
func (b *Binding) Touched() bool {
	s := b.session
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.touched[b.field.Name]
}

// OnChange coerces raw through the field type and stores it. Input that cannot
// be coerced leaves the value unchanged and sets a type error that validation
// keeps reporting until a later change succeeds, so Submit never sends the
// stale value in its place. The field is
// revalidated in OnChange and All modes, and in every mode once a submit has
// failed.
func (b *Binding) OnChange(raw any) error {
	if b.field.Disabled {
		return fmt.Errorf("%w: %q", ErrFieldDisabled, b.field.Name)
	}
	s := b.session
	name := b.field.Name

	value, coerceErr := s.registry.Coerce(b.field, raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	if coerceErr != nil {
		message := s.rules[name].Message(rules.KindType)
		s.st.typeErrors[name] = message
		s.st.setError(name, message)
		return fmt.Errorf("form: field %q: %w", name, coerceErr)
	}
	delete(s.st.typeErrors, name)
	s.st.values[name] = value
	if s.cfg.mode == OnChange || s.cfg.mode == All || s.submitFailed {
		s.validateLocked(name)
	}
	return nil
}

// OnBlur marks the field touched, validates it in OnBlur and All modes and
// then invokes the form's BlurFunc with the field's name and value. Blur on a
// disabled field does nothing.
func (b *Binding) OnBlur() {
	if b.field.Disabled {
		return
	}
	s := b.session
	name := b.field.Name

	s.mu.Lock()
	s.st.touched[name] = true
	if s.cfg.mode == OnBlur || s.cfg.mode == All || s.submitFailed {
		s.validateLocked(name)
	}
	value := deepCopy(s.st.values[name])
	s.mu.Unlock()

	if s.cfg.onBlur != nil {
		s.callBlur(name, value)
	}
}

func (s *Session) callBlur(name string, value any) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("blur callback panicked",
				zap.String("field", name),
				zap.Any("panic", r),
			)
		}
	}()
	s.cfg.onBlur(name, value)
}
