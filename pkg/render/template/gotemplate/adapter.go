package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"
	"github.com/gosimple/slug"

	"github.com/goliatone/go-formkit/pkg/render/template"
)

// ErrNoSource is returned by New when neither WithFS nor WithBaseDir is set.
var ErrNoSource = errors.New("gotemplate: no template source configured")

// Option configures an Engine.
type Option func(*config)

type config struct {
	dir        string
	fsys       fs.FS
	ext        string
	set        string
	funcs      map[string]any
	globals    map[string]any
	engineOpts []gotemplatepkg.Option
}

// WithBaseDir loads templates from dir on disk. It is searched before any
// fs.FS given with WithFS.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.dir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from fsys.
func WithFS(fsys fs.FS) Option {
	return func(cfg *config) {
		cfg.fsys = fsys
	}
}

// WithExtension sets the suffix appended to template names that lack it.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		cfg.ext = "." + strings.TrimPrefix(ext, ".")
	}
}

// WithSetName names the pongo2 template set; pongo2 includes it in errors.
func WithSetName(name string) Option {
	return func(cfg *config) {
		if name = strings.TrimSpace(name); name != "" {
			cfg.set = name
		}
	}
}

// WithTemplateFunc exposes funcs to every template. Values of type
// pongo2.FilterFunction become filters, other funcs become globals callable
// as `{{ name(args) }}`. Nil entries and blank names are ignored.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		for name, fn := range funcs {
			name = strings.TrimSpace(name)
			if name == "" || fn == nil {
				continue
			}
			if cfg.funcs == nil {
				cfg.funcs = make(map[string]any, len(funcs))
			}
			cfg.funcs[name] = fn
		}
	}
}

// WithGlobalData seeds values visible to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		for key, value := range data {
			if key = strings.TrimSpace(key); key == "" {
				continue
			}
			if cfg.globals == nil {
				cfg.globals = make(map[string]any, len(data))
			}
			cfg.globals[key] = value
		}
	}
}

// WithGoTemplateOptions records go-template engine options so a caller that
// builds both engines can keep one option list. EngineOptions returns them.
func WithGoTemplateOptions(opts ...gotemplatepkg.Option) Option {
	return func(cfg *config) {
		cfg.engineOpts = append(cfg.engineOpts, opts...)
	}
}

// Engine renders pongo2 templates. Parsed files are cached by path and the
// engine is safe for concurrent use.
type Engine struct {
	set        *pongo2.TemplateSet
	ext        string
	engineOpts []gotemplatepkg.Option

	mu    sync.RWMutex
	cache map[string]*pongo2.Template
}

var (
	_ template.TemplateRenderer = (*Engine)(nil)
	_ template.FilterRegistrar  = (*Engine)(nil)
)

// New builds an Engine. At least one of WithFS or WithBaseDir is required.
func New(options ...Option) (*Engine, error) {
	cfg := config{ext: ".tmpl", set: "formkit"}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	var loaders []pongo2.TemplateLoader
	if cfg.dir != "" {
		local, err := pongo2.NewLocalFileSystemLoader(cfg.dir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: base dir %q: %w", cfg.dir, err)
		}
		loaders = append(loaders, local)
	}
	if cfg.fsys != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.fsys))
	}
	if len(loaders) == 0 {
		return nil, ErrNoSource
	}

	registerBuiltinFilters()

	e := &Engine{
		set:        pongo2.NewSet(cfg.set, loaders...),
		ext:        cfg.ext,
		engineOpts: cfg.engineOpts,
		cache:      make(map[string]*pongo2.Template),
	}
	globals := make(pongo2.Context, len(cfg.globals)+len(cfg.funcs))
	for key, value := range cfg.globals {
		v, err := contextValue(value)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: global %q: %w", key, err)
		}
		globals[key] = v
	}
	for name, fn := range cfg.funcs {
		if filter, ok := fn.(pongo2.FilterFunction); ok {
			if !pongo2.FilterExists(name) {
				if err := pongo2.RegisterFilter(name, filter); err != nil {
					return nil, fmt.Errorf("gotemplate: filter %q: %w", name, err)
				}
			}
			continue
		}
		if reflect.ValueOf(fn).Kind() != reflect.Func {
			return nil, fmt.Errorf("gotemplate: template func %q is %T, not a func", name, fn)
		}
		globals[name] = fn
	}
	e.set.Globals.Update(globals)
	return e, nil
}

// RenderTemplate executes the named template, appending the configured
// extension when name lacks it. The output is also copied to every writer
// in out.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if !strings.HasSuffix(name, e.ext) {
		name += e.ext
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	rendered, err := execute(tmpl, data, out)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %q: %w", name, err)
	}
	return rendered, nil
}

// RenderString parses and executes source without caching it.
func (e *Engine) RenderString(source string, data any, out ...io.Writer) (string, error) {
	tmpl, err := e.set.FromString(source)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse inline template: %w", err)
	}
	rendered, err := execute(tmpl, data, out)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute inline template: %w", err)
	}
	return rendered, nil
}

// RegisterFilter adds a filter. pongo2 filters are process-wide, so a name
// that is already taken is an error.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already registered", name)
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var p any
		if param != nil {
			p = param.Interface()
		}
		result, err := fn(in.Interface(), p)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// EngineOptions returns the options collected by WithGoTemplateOptions.
func (e *Engine) EngineOptions() []gotemplatepkg.Option {
	return append([]gotemplatepkg.Option(nil), e.engineOpts...)
}

func (e *Engine) lookup(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %q: %w", path, err)
	}
	e.cache[path] = tmpl
	return tmpl, nil
}

func execute(tmpl *pongo2.Template, data any, out []io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", err
	}
	for _, w := range out {
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// toContext turns template data into a pongo2 context. Maps are walked so
// nested structs are exposed by their JSON names, matching how documents
// spell field attributes.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	v, err := contextValue(data)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: template data: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("gotemplate: template data must be an object, got %T", data)
	}
	return pongo2.Context(m), nil
}

func contextValue(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int, int64, float64, []string:
		return v, nil
	case pongo2.Context:
		return contextValue(map[string]any(v))
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			converted, err := contextValue(item)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			converted, err := contextValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	}
	if reflect.ValueOf(value).Kind() == reflect.Func {
		return value, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

var builtinFilters sync.Once

func registerBuiltinFilters() {
	builtinFilters.Do(func() {
		filters := map[string]pongo2.FilterFunction{
			"slugify":  filterSlugify,
			"contains": filterContains,
		}
		for name, fn := range filters {
			if !pongo2.FilterExists(name) {
				_ = pongo2.RegisterFilter(name, fn)
			}
		}
	})
}

func filterSlugify(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(slug.Make(in.String())), nil
}

// filterContains reports whether a list holds param, comparing as strings.
// Partials use it to mark the selected options of multi-valued controls.
func filterContains(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	want := param.String()
	if in.IsString() || !in.CanSlice() {
		return pongo2.AsValue(in.String() == want), nil
	}
	found := false
	in.Iterate(func(_, _ int, item, _ *pongo2.Value) bool {
		found = item.String() == want
		return !found
	}, func() {})
	return pongo2.AsValue(found), nil
}
