package html

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-formkit/pkg/form"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/widgets"
)

func sectionedSession(t *testing.T, opts ...form.Option) *form.Session {
	t.Helper()
	s, err := schema.Sectioned(
		schema.Section{Name: "Guest Details", Fields: []schema.FieldConfig{
			{Name: "name", Type: schema.FieldTypeText, Label: "Full name", Required: true,
				Description: `As on your <b>passport</b><script>alert(1)</script>`},
			{Name: "plan", Type: schema.FieldTypeRadio, Label: "Plan", Options: []schema.Option{
				{Value: "basic", Label: "Basic"}, {Value: "pro", Label: "Pro"},
			}},
		}},
		schema.Section{Name: "Extras", Fields: []schema.FieldConfig{
			{Name: "newsletter", Type: schema.FieldTypeCheckbox, Label: "Subscribe"},
			{Name: "passport", Type: schema.FieldTypeFile, Accept: "image/*,.pdf"},
		}},
	)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	sess, err := form.New(s, append([]form.Option{form.WithID("s1"), form.WithTitle("Booking")}, opts...)...)
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	return sess
}

func mustRender(t *testing.T, r *Renderer, view render.View, opts render.RenderOptions) string {
	t.Helper()
	out, err := r.Render(context.Background(), view, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, html)
		}
	}
}

func assertNotContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(html, fragment) {
			t.Fatalf("expected output not to contain %q\n%s", fragment, html)
		}
	}
}

func TestRenderer_Sections(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sess := sectionedSession(t)
	if _, err := sess.Sections().Toggle("Extras"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	out := mustRender(t, r, sess.View(), render.RenderOptions{Action: "/book"})
	assertContains(t, out,
		`<h2>Booking</h2>`,
		`action="/book"`,
		`enctype="multipart/form-data"`,
		`data-section="guest-details">`,
		`data-section="extras" open>`,
		`<summary>Guest Details</summary>`,
		`<legend id="fk-plan-label">Plan</legend>`,
		`<label class="fk-label" id="fk-name-label" for="fk-name">Full name<span class="fk-required" aria-hidden="true">*</span></label>`,
		`accept="image/*,.pdf"`,
		`>Submit</button>`,
	)
	if strings.Index(out, "Guest Details") > strings.Index(out, "Extras") {
		t.Fatalf("sections out of order")
	}
}

func TestRenderer_SanitizesDescription(t *testing.T) {
	r, _ := New()
	out := mustRender(t, r, sectionedSession(t).View(), render.RenderOptions{})
	assertContains(t, out, `As on your <b>passport</b>`)
	assertNotContains(t, out, `<script>`)
}

func TestRenderer_InlineErrors(t *testing.T) {
	r, _ := New()
	sess := sectionedSession(t)
	_ = sess.Validate()

	out := mustRender(t, r, sess.View(), render.RenderOptions{})
	assertContains(t, out,
		`<p class="fk-error" id="fk-name-error" role="alert">Full name is required</p>`,
		`aria-invalid="true"`,
		`aria-describedby="fk-name-error"`,
		`fk-field fk-invalid`,
	)
}

func TestRenderer_ServerErrorsAndHidden(t *testing.T) {
	r, _ := New()
	out := mustRender(t, r, sectionedSession(t).View(), render.RenderOptions{
		Method: "put",
		Errors: map[string][]string{
			"/body/plan": {"Plan is sold out"},
			"booking":    {"Booking window closed"},
		},
		Hidden: render.MergeHiddenFields(nil, render.CSRFToken("_csrf", "tok<en>")),
	})
	assertContains(t, out,
		`method="post"`,
		`<input type="hidden" name="_csrf" value="tok&lt;en&gt;">`,
		`<input type="hidden" name="_method" value="PUT">`,
		`Plan is sold out`,
		`<li>Booking window closed</li>`,
	)
}

func TestRenderer_SubmittingState(t *testing.T) {
	r, _ := New()
	view := sectionedSession(t, form.WithSubmittingLabel("Booking...")).View()
	view.Submitting = true

	out := mustRender(t, r, view, render.RenderOptions{})
	assertContains(t, out,
		`<button type="submit" class="fk-submit" disabled aria-disabled="true">Booking...</button>`,
		`aria-busy="true"`,
	)
}

func TestRenderer_FlatSchema(t *testing.T) {
	s, _ := schema.Flat(schema.FieldConfig{Name: "q", Type: schema.FieldTypeText, Placeholder: "Search"})
	sess := form.MustNew(s, form.WithDefaultValues(map[string]any{"q": `"quoted"`}))
	r, _ := New()

	out := mustRender(t, r, sess.View(), render.RenderOptions{})
	assertNotContains(t, out, `<details`, `enctype=`)
	assertContains(t, out, `placeholder="Search"`, `value="&#34;quoted&#34;"`)
}

func TestRenderer_UnsupportedType(t *testing.T) {
	s, _ := schema.Flat(schema.FieldConfig{Name: "loc", Type: "geo"})
	r, _ := New()
	out := mustRender(t, r, form.MustNew(s).View(), render.RenderOptions{})
	assertContains(t, out, `Unsupported field type &#34;geo&#34;`)
}

func TestRenderer_CustomWidget(t *testing.T) {
	reg := widgets.NewRegistry()
	reg.MustRegister("rating", widgets.Descriptor{
		Render: func(buf *bytes.Buffer, field schema.FieldConfig, data widgets.ControlData) error {
			buf.WriteString(`<x-rating id="` + data.ID + `"></x-rating>`)
			return nil
		},
	})
	s, _ := schema.Flat(schema.FieldConfig{Name: "stars", Type: "rating"})
	r, _ := New(WithRegistry(reg))
	out := mustRender(t, r, form.MustNew(s, form.WithRegistry(reg)).View(), render.RenderOptions{})
	assertContains(t, out, `<x-rating id="fk-stars"></x-rating>`)
}

func TestRenderer_UsesSessionRegistry(t *testing.T) {
	reg := widgets.NewRegistry()
	reg.MustRegister("rating", widgets.Descriptor{
		Render: func(buf *bytes.Buffer, _ schema.FieldConfig, data widgets.ControlData) error {
			buf.WriteString(`<x-rating id="` + data.ID + `"></x-rating>`)
			return nil
		},
	})
	s, _ := schema.Flat(schema.FieldConfig{Name: "stars", Type: "rating"})
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out := mustRender(t, r, form.MustNew(s, form.WithRegistry(reg)).View(), render.RenderOptions{})
	assertContains(t, out, `<x-rating id="fk-stars"></x-rating>`)
	if strings.Contains(out, "fk-unsupported") {
		t.Fatalf("custom type drawn as unsupported:\n%s", out)
	}
}

func TestRenderer_FailingWidgetIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	reg := widgets.NewRegistry()
	reg.MustRegister("broken", widgets.Descriptor{
		Render: func(*bytes.Buffer, schema.FieldConfig, widgets.ControlData) error {
			return errors.New("nope")
		},
	})
	s, _ := schema.Flat(
		schema.FieldConfig{Name: "b", Type: "broken"},
		schema.FieldConfig{Name: "ok", Type: schema.FieldTypeText},
	)
	r, _ := New(WithRegistry(reg), WithLogger(zap.New(core)))
	out := mustRender(t, r, form.MustNew(s, form.WithRegistry(reg)).View(), render.RenderOptions{})
	assertContains(t, out, `id="fk-ok"`, `fk-unsupported`)
	if logs.FilterField(zap.String("field", "b")).Len() != 1 {
		t.Fatalf("expected a warning for the failing field")
	}
}

func TestRenderer_Subset(t *testing.T) {
	r, _ := New()
	out := mustRender(t, r, sectionedSession(t).View(), render.RenderOptions{
		Subset: render.FieldSubset{Sections: []string{"extras"}},
	})
	assertContains(t, out, `data-field="newsletter"`)
	assertNotContains(t, out, `data-field="name"`, `Guest Details`)
}

func TestRenderer_Localizes(t *testing.T) {
	r, _ := New()
	translator := translatorFunc(func(_ string, key string, _ ...any) (string, error) {
		switch key {
		case render.KeyFormSubmit:
			return "Reservar", nil
		case render.FieldKey("name", "label"):
			return "Nombre", nil
		}
		return "", errors.New("missing")
	})
	out := mustRender(t, r, sectionedSession(t).View(), render.RenderOptions{Locale: "es", Translator: translator})
	assertContains(t, out, `>Reservar</button>`, `>Nombre<span`)
}

func TestRenderer_ThemePartialsAndVars(t *testing.T) {
	layout, err := fs.ReadFile(TemplatesFS(), formTemplate)
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	files := fstest.MapFS{
		formTemplate:             {Data: layout},
		"themes/acme/input.tmpl": {Data: []byte(`<input class="acme" id="{{ id }}" name="{{ field.name }}" value="{{ value }}">`)},
	}
	r, err := New(WithTemplatesFS(files))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	selector := &stubSelector{selection: &theme.Selection{
		Theme:   "acme",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name:    "acme",
			Version: "1.0.0",
			Tokens:  map[string]string{"brand": "#123456"},
			Assets: theme.Assets{
				Prefix: "/assets/acme",
				Files:  map[string]string{"formkit.stylesheet": "theme.css"},
			},
			Variants: map[string]theme.Variant{
				"dark": {
					Tokens:    map[string]string{"brand": "#000000"},
					Templates: map[string]string{"forms.text": "themes/acme/input.tmpl"},
				},
			},
		},
	}}
	cfg, err := ThemeConfig(selector, "acme", "dark", nil)
	if err != nil {
		t.Fatalf("ThemeConfig: %v", err)
	}

	view := sectionedSession(t, form.WithDefaultValues(map[string]any{"name": "Ana"})).View()
	out := mustRender(t, r, view, render.RenderOptions{Theme: cfg})
	assertContains(t, out,
		`<input class="acme" id="fk-name" name="name" value="Ana">`,
		`--brand: #000000;`,
		`<link rel="stylesheet" href="/assets/acme/theme.css">`,
	)
}

func TestStylesheet(t *testing.T) {
	if !strings.Contains(Stylesheet(), ".fk-form") {
		t.Fatalf("expected embedded stylesheet")
	}
	r, _ := New(WithInlineStylesheet(true))
	out := mustRender(t, r, sectionedSession(t).View(), render.RenderOptions{})
	assertContains(t, out, `.fk-form {`)
}

type translatorFunc func(locale, key string, args ...any) (string, error)

func (fn translatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

type stubSelector struct {
	selection *theme.Selection
}

func (s *stubSelector) Select(string, string, ...theme.QueryOption) (*theme.Selection, error) {
	return s.selection, nil
}

func TestRenderer_TemplateTranslator(t *testing.T) {
	files := fstest.MapFS{
		formTemplate: {Data: []byte(`<p>{{ translate(locale, "form.intro") }}|{{ translate(locale, "form.outro") }}|{{ current_locale(locale) }}</p>`)},
	}
	translator := translatorFunc(func(locale string, key string, _ ...any) (string, error) {
		if locale == "es" && key == "form.intro" {
			return "Bienvenido", nil
		}
		return "", errors.New("missing")
	})
	r, err := New(WithTemplatesFS(files), WithTranslator(translator, render.TemplateI18nConfig{}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out := mustRender(t, r, sectionedSession(t).View(), render.RenderOptions{Locale: "es"})
	assertContains(t, out, "<p>Bienvenido|form.outro|es</p>")
}
