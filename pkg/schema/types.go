package schema

import (
	"errors"
	"strings"
)

// FieldType is the closed set of input kinds understood by the engine.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeNumber   FieldType = "number"
	FieldTypeEmail    FieldType = "email"
	FieldTypePassword FieldType = "password"
	FieldTypeDate     FieldType = "date"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeFile     FieldType = "file"
)

// FieldTypes lists the built-in types in declaration order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeTextarea,
		FieldTypeNumber,
		FieldTypeEmail,
		FieldTypePassword,
		FieldTypeDate,
		FieldTypeSelect,
		FieldTypeRadio,
		FieldTypeCheckbox,
		FieldTypeFile,
	}
}

// Known reports whether t is one of the built-in types.
func (t FieldType) Known() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeNumber, FieldTypeEmail,
		FieldTypePassword, FieldTypeDate, FieldTypeSelect, FieldTypeRadio,
		FieldTypeCheckbox, FieldTypeFile:
		return true
	default:
		return false
	}
}

// NeedsOptions reports whether the type renders a choice list.
func (t FieldType) NeedsOptions() bool {
	return t == FieldTypeSelect || t == FieldTypeRadio
}

// Option is a single {value, label} choice for select, radio and checkbox
// fields.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// DisplayLabel falls back to the value when no label is set.
func (o Option) DisplayLabel() string {
	if strings.TrimSpace(o.Label) != "" {
		return o.Label
	}
	return o.Value
}

// ErrInvalid is the idiomatic "false" result for a CustomFunc: the field fails
// with the default invalid-value message.
var ErrInvalid = errors.New("schema: invalid value")

// CustomFunc is an in-process validation predicate. A nil return passes; any
// other error fails the field with err.Error() as its message (ErrInvalid
// yields the catalogue default instead).
type CustomFunc func(value any) error

// ExprRule is a declarative custom rule evaluated against the form values.
// The identifier `value` refers to the field being validated; other
// identifiers resolve to sibling fields.
type ExprRule struct {
	Expr    string `json:"expr" yaml:"expr"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Validation bundles the optional constraints of a field. Pointer bounds are
// honoured whenever present, including zero.
type Validation struct {
	Min       *float64   `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64   `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength *int       `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int       `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string     `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Message   string     `json:"message,omitempty" yaml:"message,omitempty"`
	Rule      *ExprRule  `json:"rule,omitempty" yaml:"rule,omitempty"`
	Custom    CustomFunc `json:"-" yaml:"-"`
}

// IsZero reports whether no constraint is configured.
func (v *Validation) IsZero() bool {
	if v == nil {
		return true
	}
	return v.Min == nil && v.Max == nil && v.MinLength == nil && v.MaxLength == nil &&
		v.Pattern == "" && v.Rule == nil && v.Custom == nil
}

// FieldConfig declares one input.
type FieldConfig struct {
	Name         string      `json:"name" yaml:"name"`
	Type         FieldType   `json:"type" yaml:"type"`
	Label        string      `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder  string      `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description  string      `json:"description,omitempty" yaml:"description,omitempty"`
	Required     bool        `json:"required,omitempty" yaml:"required,omitempty"`
	Validation   *Validation `json:"validation,omitempty" yaml:"validation,omitempty"`
	Options      []Option    `json:"options,omitempty" yaml:"options,omitempty"`
	Multiple     bool        `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Accept       string      `json:"accept,omitempty" yaml:"accept,omitempty"`
	Disabled     bool        `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	DefaultValue any         `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
}

// DisplayLabel returns the label, falling back to the field name.
func (f FieldConfig) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return f.Name
}

// MultiValued reports whether the field collects a list of strings.
func (f FieldConfig) MultiValued() bool {
	switch f.Type {
	case FieldTypeCheckbox:
		return len(f.Options) > 0
	case FieldTypeSelect:
		return f.Multiple
	default:
		return false
	}
}

// AcceptList splits the accept attribute into trimmed, lower-cased tokens.
func (f FieldConfig) AcceptList() []string {
	if strings.TrimSpace(f.Accept) == "" {
		return nil
	}
	parts := strings.Split(f.Accept, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.ToLower(strings.TrimSpace(part))
		if token != "" {
			out = append(out, token)
		}
	}
	return out
}

// Float returns a pointer to v; handy for Validation literals.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v; handy for Validation literals.
func Int(v int) *int { return &v }
