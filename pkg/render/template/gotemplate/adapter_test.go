package gotemplate_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-formkit/pkg/render/template/gotemplate"
)

func newEngine(t *testing.T, opts ...gotemplate.Option) *gotemplate.Engine {
	t.Helper()
	files := fstest.MapFS{
		"greet.tmpl": {Data: []byte(`Hello {{ name }} ({{ field.name }})`)},
	}
	engine, err := gotemplate.New(append([]gotemplate.Option{gotemplate.WithFS(files)}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)
	data := map[string]any{
		"name": "Ada",
		"field": struct {
			Name string `json:"name"`
		}{Name: "email"},
	}

	var copied strings.Builder
	out, err := engine.RenderTemplate("greet", data, &copied)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Hello Ada (email)" {
		t.Fatalf("out = %q", out)
	}
	if copied.String() != out {
		t.Fatalf("writer got %q", copied.String())
	}

	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatal("expected error for missing template")
	}
}

func TestEngine_GlobalsAndFuncs(t *testing.T) {
	engine := newEngine(t,
		gotemplate.WithGlobalData(map[string]any{"brand": "formkit"}),
		gotemplate.WithTemplateFunc(map[string]any{"upper": strings.ToUpper}),
	)
	out, err := engine.RenderString(`{{ upper(brand) }}`, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "FORMKIT" {
		t.Fatalf("out = %q", out)
	}
}

func TestEngine_BuiltinFilters(t *testing.T) {
	engine := newEngine(t)
	out, err := engine.RenderString(
		`{{ "Guest Details"|slugify }}{% if picked|contains:"b" %} b{% endif %}{% if picked|contains:"z" %} z{% endif %}`,
		map[string]any{"picked": []string{"a", "b"}},
	)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "guest-details b" {
		t.Fatalf("out = %q", out)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	shout := func(in any, _ any) (any, error) {
		return strings.ToUpper(fmt.Sprint(in)) + "!", nil
	}
	if err := engine.RegisterFilter("adapter_test_shout", shout); err != nil {
		t.Fatalf("register: %v", err)
	}
	out, err := engine.RenderString(`{{ "hi"|adapter_test_shout }}`, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "HI!" {
		t.Fatalf("out = %q", out)
	}
	if err := engine.RegisterFilter("adapter_test_shout", shout); err == nil {
		t.Fatal("expected duplicate filter error")
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := gotemplate.New(); !errors.Is(err, gotemplate.ErrNoSource) {
		t.Fatalf("err = %v, want ErrNoSource", err)
	}
	_, err := gotemplate.New(
		gotemplate.WithFS(fstest.MapFS{}),
		gotemplate.WithTemplateFunc(map[string]any{"answer": 42}),
	)
	if err == nil {
		t.Fatal("expected error for non-func template func")
	}
}

func TestEngine_KeepsGoTemplateOptions(t *testing.T) {
	var shared gotemplatepkg.Option
	engine := newEngine(t, gotemplate.WithGoTemplateOptions(shared, shared))
	opts := engine.EngineOptions()
	if len(opts) != 2 {
		t.Fatalf("EngineOptions len = %d, want 2", len(opts))
	}
	opts[0] = nil
	if len(engine.EngineOptions()) != 2 {
		t.Fatal("EngineOptions must return a copy")
	}
}
