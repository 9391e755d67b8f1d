package openapi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formkit/pkg/schema"
)

func loadFixture(t *testing.T) []byte {
	t.Helper()
	raw, err := os.ReadFile("testdata/bookings.yaml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return raw
}

func TestOperationsListing(t *testing.T) {
	t.Parallel()

	ops, err := Operations(context.Background(), loadFixture(t))
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	want := []OperationInfo{
		{ID: "createBooking", Method: "POST", Path: "/bookings", Summary: "Create booking", HasRequest: true, ContentType: "application/json"},
		{ID: "listBookings", Method: "GET", Path: "/bookings"},
		{ID: "post:/contact", Method: "POST", Path: "/contact", Summary: "Contact us", HasRequest: true, ContentType: "application/x-www-form-urlencoded"},
	}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestImportDefinitionSectionsAndOrder(t *testing.T) {
	t.Parallel()

	def, err := ImportDefinition(context.Background(), loadFixture(t), "createBooking", WithSubmitLabel("Book"))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if def.Title != "Create booking" || def.SubmitLabel != "Book" {
		t.Fatalf("unexpected definition header: %+v", def)
	}

	choices := func(values ...string) []schema.Option {
		out := make([]schema.Option, 0, len(values))
		for _, v := range values {
			out = append(out, schema.Option{Value: v})
		}
		return out
	}
	want := schema.Schema{Sections: []schema.Section{
		{Name: "Guest", Fields: []schema.FieldConfig{
			{Name: "name", Type: schema.FieldTypeText, Label: "Full name", Placeholder: "Ada Lovelace", Required: true,
				Validation: &schema.Validation{MinLength: schema.Int(2)}},
			{Name: "email", Type: schema.FieldTypeEmail},
		}},
		{Name: "Stay", Fields: []schema.FieldConfig{
			{Name: "guests", Type: schema.FieldTypeNumber, Required: true,
				Validation: &schema.Validation{Min: schema.Float(1), Max: schema.Float(8)}},
			{Name: "room", Type: schema.FieldTypeRadio, Required: true, Options: choices("single", "double", "suite")},
		}},
		{Name: "General", Fields: []schema.FieldConfig{
			{Name: "arrival", Type: schema.FieldTypeDate},
			{Name: "extras", Type: schema.FieldTypeCheckbox, Multiple: true, Options: choices("breakfast", "parking")},
			{Name: "passport", Type: schema.FieldTypeFile, Accept: "application/pdf,image/*"},
			{Name: "reference", Type: schema.FieldTypeText, Disabled: true},
		}},
	}}
	opts := cmp.Options{
		cmpopts.IgnoreFields(schema.FieldConfig{}, "DefaultValue"),
		cmpopts.IgnoreFields(schema.Validation{}, "Custom"),
	}
	if diff := cmp.Diff(want, def.Schema, opts); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}

	guests, ok := def.Schema.Lookup("guests")
	if !ok {
		t.Fatalf("guests field missing")
	}
	if got := fmt.Sprint(guests.DefaultValue); got != "2" {
		t.Fatalf("expected default 2, got %v", guests.DefaultValue)
	}
	if _, ok := def.Schema.Lookup("address"); ok {
		t.Fatalf("nested object should be skipped")
	}
}

func TestImportOperationFlatWithWidgetOverride(t *testing.T) {
	t.Parallel()

	sch, err := ImportOperation(context.Background(), loadFixture(t), "post:/contact")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if sch.IsSectioned() {
		t.Fatalf("expected flat schema")
	}
	want := []schema.FieldConfig{
		{Name: "email", Type: schema.FieldTypeEmail, Required: true},
		{Name: "message", Type: schema.FieldTypeTextarea, Validation: &schema.Validation{MaxLength: schema.Int(500)}},
	}
	if diff := cmp.Diff(want, sch.Fields, cmpopts.IgnoreFields(schema.Validation{}, "Custom")); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestImportDefaultSectionOption(t *testing.T) {
	t.Parallel()

	sch, err := ImportOperation(context.Background(), loadFixture(t), "createBooking", WithDefaultSection("Other"))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if diff := cmp.Diff([]string{"Guest", "Stay", "Other"}, sch.SectionNames()); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestImportErrors(t *testing.T) {
	t.Parallel()

	raw := loadFixture(t)
	if _, err := ImportOperation(context.Background(), raw, "missing"); !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
	if _, err := ImportOperation(context.Background(), raw, "listBookings"); err == nil {
		t.Fatalf("expected error for operation without request body")
	}
	if _, err := ImportOperation(context.Background(), []byte("not: [valid"), "createBooking"); err == nil {
		t.Fatalf("expected load error")
	}
}
