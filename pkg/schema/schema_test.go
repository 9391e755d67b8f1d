package schema

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestNew_RejectsInvalidSchemas(t *testing.T) {
	cases := []struct {
		name   string
		schema Schema
		want   error
	}{
		{
			name:   "empty name",
			schema: Schema{Fields: []FieldConfig{{Name: "  ", Type: FieldTypeText}}},
			want:   ErrFieldNameRequired,
		},
		{
			name: "duplicate flat",
			schema: Schema{Fields: []FieldConfig{
				{Name: "email", Type: FieldTypeEmail},
				{Name: "email", Type: FieldTypeText},
			}},
			want: ErrDuplicateField,
		},
		{
			name: "duplicate across sections",
			schema: Schema{Sections: []Section{
				{Name: "Guest", Fields: []FieldConfig{{Name: "name", Type: FieldTypeText}}},
				{Name: "Billing", Fields: []FieldConfig{{Name: "name", Type: FieldTypeText}}},
			}},
			want: ErrDuplicateField,
		},
		{
			name: "duplicate section",
			schema: Schema{Sections: []Section{
				{Name: "Guest"},
				{Name: "Guest"},
			}},
			want: ErrDuplicateSection,
		},
		{
			name:   "select without options",
			schema: Schema{Fields: []FieldConfig{{Name: "room", Type: FieldTypeSelect}}},
			want:   ErrOptionsRequired,
		},
		{
			name:   "radio without options",
			schema: Schema{Fields: []FieldConfig{{Name: "bed", Type: FieldTypeRadio}}},
			want:   ErrOptionsRequired,
		},
		{
			name: "bad pattern",
			schema: Schema{Fields: []FieldConfig{{
				Name: "code", Type: FieldTypeText,
				Validation: &Validation{Pattern: "("},
			}}},
			want: ErrInvalidPattern,
		},
		{
			name: "inverted range",
			schema: Schema{Fields: []FieldConfig{{
				Name: "guests", Type: FieldTypeNumber,
				Validation: &Validation{Min: Float(5), Max: Float(1)},
			}}},
			want: ErrInvalidBounds,
		},
		{
			name: "inverted length",
			schema: Schema{Fields: []FieldConfig{{
				Name: "notes", Type: FieldTypeTextarea,
				Validation: &Validation{MinLength: Int(10), MaxLength: Int(2)},
			}}},
			want: ErrInvalidBounds,
		},
		{
			name: "mixed",
			schema: Schema{
				Fields:   []FieldConfig{{Name: "a", Type: FieldTypeText}},
				Sections: []Section{{Name: "S"}},
			},
			want: ErrMixedShape,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.schema)
			if !errors.Is(err, tc.want) {
				t.Fatalf("New() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestNew_UnknownTypeIsNotAnError(t *testing.T) {
	s, err := Flat(FieldConfig{Name: "rating", Type: "stars"})
	if err != nil {
		t.Fatalf("Flat: %v", err)
	}
	field, ok := s.Lookup("rating")
	if !ok || field.Type.Known() {
		t.Fatalf("expected unknown field to survive, got %+v ok=%v", field, ok)
	}
}

func TestSchema_AllFieldsPreservesSectionOrder(t *testing.T) {
	s := MustNew(Schema{Sections: []Section{
		{Name: "Guest", Fields: []FieldConfig{{Name: "first", Type: FieldTypeText}, {Name: "last", Type: FieldTypeText}}},
		{Name: "Stay", Fields: []FieldConfig{{Name: "checkin", Type: FieldTypeDate}}},
	}})

	var got []string
	for _, f := range s.AllFields() {
		got = append(got, f.Name)
	}
	if diff := cmp.Diff([]string{"first", "last", "checkin"}, got); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Guest", "Stay"}, s.SectionNames()); diff != "" {
		t.Fatalf("section order mismatch (-want +got):\n%s", diff)
	}
	if got := s.SectionOf("checkin"); got != "Stay" {
		t.Fatalf("SectionOf(checkin) = %q", got)
	}
}

func TestNew_CopiesInput(t *testing.T) {
	fields := []FieldConfig{{Name: "a", Type: FieldTypeRadio, Options: []Option{{Value: "x"}}}}
	s, err := Flat(fields...)
	if err != nil {
		t.Fatalf("Flat: %v", err)
	}
	fields[0].Options[0].Value = "mutated"
	if s.Fields[0].Options[0].Value != "x" {
		t.Fatalf("schema shares option storage with caller")
	}
}

func TestFieldConfig_Helpers(t *testing.T) {
	f := FieldConfig{Name: "docs", Type: FieldTypeFile, Accept: " image/* , .PDF ,"}
	if diff := cmp.Diff([]string{"image/*", ".pdf"}, f.AcceptList()); diff != "" {
		t.Fatalf("AcceptList mismatch (-want +got):\n%s", diff)
	}
	if f.DisplayLabel() != "docs" {
		t.Fatalf("DisplayLabel fallback = %q", f.DisplayLabel())
	}
	if (FieldConfig{Type: FieldTypeCheckbox}).MultiValued() {
		t.Fatalf("single checkbox should not be multi-valued")
	}
	if !(FieldConfig{Type: FieldTypeCheckbox, Options: []Option{{Value: "a"}}}).MultiValued() {
		t.Fatalf("checkbox group should be multi-valued")
	}
	if !(FieldConfig{Type: FieldTypeSelect, Multiple: true}).MultiValued() {
		t.Fatalf("multi-select should be multi-valued")
	}
}

const bookingYAML = `
title: Booking
submitLabel: Book now
expandAll: true
sections:
  - name: Guest details
    fields:
      - name: fullName
        type: text
        label: Full name
        required: true
        validation:
          minLength: 2
  - name: Stay
    fields:
      - name: guests
        type: number
        validation:
          min: 0
          max: 8
      - name: room
        type: select
        options:
          - value: single
          - value: double
            label: Double room
`

func TestParse_YAML(t *testing.T) {
	def, err := Parse([]byte(bookingYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := Definition{
		Title:       "Booking",
		SubmitLabel: "Book now",
		ExpandAll:   true,
		Schema: Schema{Sections: []Section{
			{Name: "Guest details", Fields: []FieldConfig{{
				Name: "fullName", Type: FieldTypeText, Label: "Full name", Required: true,
				Validation: &Validation{MinLength: Int(2)},
			}}},
			{Name: "Stay", Fields: []FieldConfig{
				{Name: "guests", Type: FieldTypeNumber, Validation: &Validation{Min: Float(0), Max: Float(8)}},
				{Name: "room", Type: FieldTypeSelect, Options: []Option{{Value: "single"}, {Value: "double", Label: "Double room"}}},
			}},
		}},
	}
	if diff := cmp.Diff(want, def); diff != "" {
		t.Fatalf("definition mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_JSON(t *testing.T) {
	def, err := Parse([]byte(`{"fields":[{"name":"email","type":"email","required":true}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if def.Schema.IsSectioned() {
		t.Fatalf("expected flat schema")
	}
	if diff := cmp.Diff([]FieldConfig{{Name: "email", Type: FieldTypeEmail, Required: true}}, def.Schema.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := Parse([]byte("   ")); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if _, err := Parse([]byte("fields: [")); err == nil {
		t.Fatalf("expected error for malformed document")
	}
	_, err := Parse([]byte("fields:\n  - name: a\n    type: text\n  - name: a\n    type: text\n"))
	if !errors.Is(err, ErrDuplicateField) {
		t.Fatalf("expected ErrDuplicateField, got %v", err)
	}
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"booking.yml": {Data: []byte(bookingYAML)},
		"notes.txt":   {Data: []byte("nope")},
	}
	def, err := LoadFS(fsys, "booking.yml")
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if diff := cmp.Diff([]string{"Guest details", "Stay"}, def.Schema.SectionNames()); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
	if _, err := LoadFS(fsys, "notes.txt"); err == nil {
		t.Fatalf("expected extension error")
	}
	if _, err := LoadFS(fsys, "missing.yaml"); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestSourceFor(t *testing.T) {
	src, err := SourceFor("https://example.com/form.yaml")
	if err != nil || src.Kind() != SourceKindURL {
		t.Fatalf("SourceFor(url) = %v, %v", src, err)
	}
	src, err = SourceFor("./forms/booking.yaml")
	if err != nil || src.Kind() != SourceKindFile || src.Location() != "forms/booking.yaml" {
		t.Fatalf("SourceFor(file) = %v, %v", src, err)
	}
	if _, err := SourceFromURL("ftp://example.com/x"); err == nil {
		t.Fatalf("expected scheme error")
	}
}
