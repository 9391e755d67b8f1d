package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// Section groups an ordered list of fields under a name. Title is optional
// display text; Name is the stable identity used for expansion state.
type Section struct {
	Name   string        `json:"name" yaml:"name"`
	Title  string        `json:"title,omitempty" yaml:"title,omitempty"`
	Fields []FieldConfig `json:"fields" yaml:"fields"`
}

// DisplayTitle falls back to the section name.
func (s Section) DisplayTitle() string {
	if title := strings.TrimSpace(s.Title); title != "" {
		return title
	}
	return s.Name
}

// Schema is either flat (Fields) or sectioned (Sections), never both.
type Schema struct {
	Fields   []FieldConfig `json:"fields,omitempty" yaml:"fields,omitempty"`
	Sections []Section     `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Flat builds and validates an unsectioned schema.
func Flat(fields ...FieldConfig) (Schema, error) {
	return New(Schema{Fields: fields})
}

// Sectioned builds and validates a sectioned schema.
func Sectioned(sections ...Section) (Schema, error) {
	return New(Schema{Sections: sections})
}

// New validates s and returns it. The returned schema owns copies of the
// field and section slices.
func New(s Schema) (Schema, error) {
	out := s.clone()
	if err := out.Validate(); err != nil {
		return Schema{}, err
	}
	return out, nil
}

// MustNew panics when the schema is invalid. Intended for package-level
// fixtures.
func MustNew(s Schema) Schema {
	out, err := New(s)
	if err != nil {
		panic(err)
	}
	return out
}

// IsSectioned reports whether the schema is organised into sections.
func (s Schema) IsSectioned() bool {
	return len(s.Sections) > 0
}

// Validate checks the construction-time invariants: unique names across the
// whole schema, unique section names, options for choice fields, compilable
// patterns and ordered bounds.
func (s Schema) Validate() error {
	if len(s.Fields) > 0 && len(s.Sections) > 0 {
		return ErrMixedShape
	}

	seen := make(map[string]string)
	check := func(section string, fields []FieldConfig) error {
		for idx, field := range fields {
			name := strings.TrimSpace(field.Name)
			if name == "" {
				return fmt.Errorf("%w (position %d%s)", ErrFieldNameRequired, idx, sectionSuffix(section))
			}
			if prev, exists := seen[name]; exists {
				return fmt.Errorf("%w: %q (first declared%s)", ErrDuplicateField, name, sectionSuffix(prev))
			}
			seen[name] = section
			if err := validateField(field); err != nil {
				return fmt.Errorf("schema: field %q: %w", name, err)
			}
		}
		return nil
	}

	if !s.IsSectioned() {
		return check("", s.Fields)
	}

	sectionNames := make(map[string]struct{}, len(s.Sections))
	for _, section := range s.Sections {
		name := strings.TrimSpace(section.Name)
		if name == "" {
			return ErrSectionNameEmpty
		}
		if _, exists := sectionNames[name]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateSection, name)
		}
		sectionNames[name] = struct{}{}
		if err := check(name, section.Fields); err != nil {
			return err
		}
	}
	return nil
}

func validateField(field FieldConfig) error {
	if field.Type.NeedsOptions() && len(field.Options) == 0 {
		return ErrOptionsRequired
	}
	v := field.Validation
	if v == nil {
		return nil
	}
	if v.Pattern != "" {
		if _, err := regexp.Compile(v.Pattern); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
	}
	if v.Min != nil && v.Max != nil && *v.Min > *v.Max {
		return fmt.Errorf("%w: min %v > max %v", ErrInvalidBounds, *v.Min, *v.Max)
	}
	if v.MinLength != nil && v.MaxLength != nil && *v.MinLength > *v.MaxLength {
		return fmt.Errorf("%w: minLength %d > maxLength %d", ErrInvalidBounds, *v.MinLength, *v.MaxLength)
	}
	if v.MinLength != nil && *v.MinLength < 0 {
		return fmt.Errorf("%w: negative minLength", ErrInvalidBounds)
	}
	if v.MaxLength != nil && *v.MaxLength < 0 {
		return fmt.Errorf("%w: negative maxLength", ErrInvalidBounds)
	}
	return nil
}

func sectionSuffix(section string) string {
	if section == "" {
		return ""
	}
	return " in section " + section
}

// AllFields returns every field in display order, flattening sections.
func (s Schema) AllFields() []FieldConfig {
	if !s.IsSectioned() {
		return append([]FieldConfig(nil), s.Fields...)
	}
	var out []FieldConfig
	for _, section := range s.Sections {
		out = append(out, section.Fields...)
	}
	return out
}

// Lookup finds a field by name.
func (s Schema) Lookup(name string) (FieldConfig, bool) {
	for _, field := range s.AllFields() {
		if field.Name == name {
			return field, true
		}
	}
	return FieldConfig{}, false
}

// SectionNames lists section names in display order.
func (s Schema) SectionNames() []string {
	if !s.IsSectioned() {
		return nil
	}
	names := make([]string, 0, len(s.Sections))
	for _, section := range s.Sections {
		names = append(names, section.Name)
	}
	return names
}

// SectionOf returns the section containing the named field, or "" for flat
// schemas and unknown names.
func (s Schema) SectionOf(name string) string {
	for _, section := range s.Sections {
		for _, field := range section.Fields {
			if field.Name == name {
				return section.Name
			}
		}
	}
	return ""
}

// Clone returns a copy that shares no slices with s.
func (s Schema) Clone() Schema {
	return s.clone()
}

func (s Schema) clone() Schema {
	out := Schema{}
	if len(s.Fields) > 0 {
		out.Fields = cloneFields(s.Fields)
	}
	if len(s.Sections) > 0 {
		out.Sections = make([]Section, len(s.Sections))
		for i, section := range s.Sections {
			out.Sections[i] = Section{
				Name:   strings.TrimSpace(section.Name),
				Title:  section.Title,
				Fields: cloneFields(section.Fields),
			}
		}
	}
	return out
}

func cloneFields(fields []FieldConfig) []FieldConfig {
	out := make([]FieldConfig, len(fields))
	for i, field := range fields {
		field.Name = strings.TrimSpace(field.Name)
		if len(field.Options) > 0 {
			field.Options = append([]Option(nil), field.Options...)
		}
		out[i] = field
	}
	return out
}
