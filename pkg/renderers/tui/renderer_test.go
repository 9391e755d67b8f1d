package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/form"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/schema"
)

var errScriptExhausted = errors.New("script exhausted")

// scriptDriver answers prompts from per-method queues and records what it
// was asked.
type scriptDriver struct {
	inputs    []string
	passwords []string
	confirms  []bool
	selects   []int
	multi     [][]int
	textareas []string

	asked []string
	infos []string
}

func (s *scriptDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.asked = append(s.asked, cfg.Message)
	if len(s.inputs) == 0 {
		return "", errScriptExhausted
	}
	out := s.inputs[0]
	s.inputs = s.inputs[1:]
	return out, nil
}

func (s *scriptDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	s.asked = append(s.asked, cfg.Message)
	if len(s.passwords) == 0 {
		return "", errScriptExhausted
	}
	out := s.passwords[0]
	s.passwords = s.passwords[1:]
	return out, nil
}

func (s *scriptDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.asked = append(s.asked, cfg.Message)
	if len(s.confirms) == 0 {
		return false, errScriptExhausted
	}
	out := s.confirms[0]
	s.confirms = s.confirms[1:]
	return out, nil
}

func (s *scriptDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.asked = append(s.asked, cfg.Message)
	if len(s.selects) == 0 {
		return 0, errScriptExhausted
	}
	out := s.selects[0]
	s.selects = s.selects[1:]
	return out, nil
}

func (s *scriptDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.asked = append(s.asked, cfg.Message)
	if len(s.multi) == 0 {
		return nil, errScriptExhausted
	}
	out := s.multi[0]
	s.multi = s.multi[1:]
	return out, nil
}

func (s *scriptDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.asked = append(s.asked, cfg.Message)
	if len(s.textareas) == 0 {
		return "", errScriptExhausted
	}
	out := s.textareas[0]
	s.textareas = s.textareas[1:]
	return out, nil
}

func (s *scriptDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func signupSession(t *testing.T, opts ...form.Option) *form.Session {
	t.Helper()
	s, err := schema.Sectioned(
		schema.Section{Name: "Account", Fields: []schema.FieldConfig{
			{Name: "email", Type: schema.FieldTypeEmail, Label: "Email", Required: true},
			{Name: "password", Type: schema.FieldTypePassword, Label: "Password", Required: true,
				Validation: &schema.Validation{MinLength: schema.Int(8)}},
		}},
		schema.Section{Name: "Profile", Title: "Your profile", Fields: []schema.FieldConfig{
			{Name: "age", Type: schema.FieldTypeNumber, Label: "Age",
				Validation: &schema.Validation{Min: schema.Float(18)}},
			{Name: "plan", Type: schema.FieldTypeRadio, Label: "Plan", Options: []schema.Option{
				{Value: "free", Label: "Free"}, {Value: "pro", Label: "Pro"},
			}},
			{Name: "topics", Type: schema.FieldTypeCheckbox, Label: "Topics", Options: []schema.Option{
				{Value: "go"}, {Value: "rust"}, {Value: "zig"},
			}},
			{Name: "terms", Type: schema.FieldTypeCheckbox, Label: "Accept terms", Required: true},
			{Name: "bio", Type: schema.FieldTypeTextarea, Label: "Bio"},
		}},
	)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return form.MustNew(s, opts...)
}

func TestFill_CollectsAndSubmits(t *testing.T) {
	driver := &scriptDriver{
		inputs:    []string{"ana@example.com", "30"},
		passwords: []string{"supersecret"},
		selects:   []int{1},
		multi:     [][]int{{0, 2}},
		confirms:  []bool{true},
		textareas: []string{"hi"},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sess := signupSession(t)

	var submitted map[string]any
	out, err := r.Fill(context.Background(), sess, func(_ context.Context, values map[string]any) error {
		submitted = values
		return nil
	})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}

	want := map[string]any{
		"email":    "ana@example.com",
		"password": "supersecret",
		"age":      30.0,
		"plan":     "pro",
		"topics":   []string{"go", "zig"},
		"terms":    true,
		"bio":      "hi",
	}
	if diff := cmp.Diff(want, submitted); diff != "" {
		t.Fatalf("submitted mismatch (-want +got):\n%s", diff)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if decoded["email"] != "ana@example.com" {
		t.Fatalf("unexpected output %s", out)
	}

	wantAsked := []string{"Email *", "Password *", "Age", "Plan", "Topics", "Accept terms *", "Bio"}
	if diff := cmp.Diff(wantAsked, driver.asked); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"== Account", "== Your profile"}, driver.infos); diff != "" {
		t.Fatalf("section headers mismatch (-want +got):\n%s", diff)
	}
	if !sess.Sections().Expanded("Profile") {
		t.Fatalf("filled sections should be expanded")
	}
}

func TestFill_RepromptsOnBlurError(t *testing.T) {
	driver := &scriptDriver{
		inputs:    []string{"nope", "ana@example.com", "abc", "12", "40"},
		passwords: []string{"short", "longenough"},
		selects:   []int{0},
		multi:     [][]int{{}},
		confirms:  []bool{true},
		textareas: []string{""},
	}
	r, _ := New(WithPromptDriver(driver))
	if _, err := r.Fill(context.Background(), signupSession(t), nil); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	for _, want := range []string{
		"! Enter a valid email address",
		"! Password must be at least 8 characters",
		"! Age has an invalid value",
		"! Age must be at least 18",
	} {
		found := false
		for _, info := range driver.infos {
			if info == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected info %q in %v", want, driver.infos)
		}
	}
}

func TestFill_RepromptsOnlyFailingFieldsAfterSubmit(t *testing.T) {
	driver := &scriptDriver{
		inputs:    []string{"ana@example.com", ""},
		passwords: []string{"supersecret"},
		selects:   []int{0},
		multi:     [][]int{{1}},
		confirms:  []bool{false, true},
		textareas: []string{""},
	}
	r, _ := New(WithPromptDriver(driver))
	sess := signupSession(t, form.WithValidationMode(form.OnSubmit))

	calls := 0
	if _, err := r.Fill(context.Background(), sess, func(context.Context, map[string]any) error {
		calls++
		return nil
	}); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one submit, got %d", calls)
	}
	wantAsked := []string{"Email *", "Password *", "Age", "Plan", "Topics", "Accept terms *", "Bio", "Accept terms *"}
	if diff := cmp.Diff(wantAsked, driver.asked); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_MaxAttempts(t *testing.T) {
	driver := &scriptDriver{inputs: []string{"x", "y", "z"}}
	r, _ := New(WithPromptDriver(driver), WithMaxAttempts(2))
	_, err := r.Fill(context.Background(), signupSession(t), nil)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestFill_DriverErrorAborts(t *testing.T) {
	r, _ := New(WithPromptDriver(&scriptDriver{}))
	_, err := r.Fill(context.Background(), signupSession(t), nil)
	if !errors.Is(err, errScriptExhausted) {
		t.Fatalf("expected driver error, got %v", err)
	}
}

func TestFill_Files(t *testing.T) {
	s, _ := schema.Flat(schema.FieldConfig{Name: "doc", Type: schema.FieldTypeFile, Label: "Document", Accept: ".pdf"})
	pdf := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	driver := &scriptDriver{inputs: []string{"notes.txt", "/tmp/scan.pdf"}}
	r, _ := New(
		WithPromptDriver(driver),
		WithOutputFormat(OutputFormatPrettyText),
		WithFileReader(func(path string) ([]byte, error) {
			if strings.HasSuffix(path, ".pdf") {
				return pdf, nil
			}
			return []byte("plain"), nil
		}),
	)
	out, err := r.Fill(context.Background(), form.MustNew(s), nil)
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if !strings.Contains(string(out), "doc=scan.pdf (application/pdf") {
		t.Fatalf("unexpected output %q", out)
	}
	if len(driver.infos) == 0 || !strings.Contains(driver.infos[0], "notes.txt is not an accepted file type") {
		t.Fatalf("expected rejection message, got %v", driver.infos)
	}
}

func TestRender_Formats(t *testing.T) {
	view := render.View{Values: map[string]any{"b": "x y", "a": 1.5, "tags": []string{"go", "zig"}}}

	r, _ := New(WithPromptDriver(&scriptDriver{}), WithOutputFormat(OutputFormatPrettyText))
	out, err := r.Render(context.Background(), view, render.RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if diff := cmp.Diff("a=1.5\nb=x y\ntags=go, zig\n", string(out)); diff != "" {
		t.Fatalf("pretty mismatch (-want +got):\n%s", diff)
	}

	r, _ = New(WithPromptDriver(&scriptDriver{}), WithOutputFormat(OutputFormatFormURLEncoded))
	out, _ = r.Render(context.Background(), view, render.RenderOptions{})
	if diff := cmp.Diff("a=1.5&b=x+y&tags%5B%5D=go&tags%5B%5D=zig", string(out)); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
	if r.ContentType() != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %s", r.ContentType())
	}
}
