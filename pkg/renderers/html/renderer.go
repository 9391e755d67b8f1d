package html

import (
	"bytes"
	"context"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/render"
	rendertemplate "github.com/goliatone/go-formkit/pkg/render/template"
	gotemplate "github.com/goliatone/go-formkit/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/sections"
	"github.com/goliatone/go-formkit/pkg/widgets"
)

// Renderer draws a render.View as an HTML form.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	registry     *widgets.Registry
	builtin      *widgets.Registry
	classes      map[string]string
	inlineStyles bool
	logger       *zap.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithTemplateFunc(cfg.templateFuncs),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:    renderer,
		registry:     cfg.registry,
		builtin:      widgets.NewRegistry(),
		classes:      cfg.classes.resolve(),
		inlineStyles: cfg.inlineStyles,
		logger:       cfg.logger,
	}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws view. Server errors in opts are merged over the view's own
// errors, captions are localised and the subset applied before layout.
func (r *Renderer) Render(_ context.Context, view render.View, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	view = view.Clone()
	mergeServerErrors(&view, opts.Errors)
	render.LocalizeView(&view, opts)
	render.ApplySubset(&view, opts.Subset)

	data := r.templateData(view, opts)
	result, err := r.templates.RenderTemplate(formTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func mergeServerErrors(view *render.View, payload map[string][]string) {
	if len(payload) == 0 {
		return
	}
	mapping := render.MapErrorPayload(view.Schema, payload)
	if view.Errors == nil {
		view.Errors = make(map[string]string)
	}
	maps.Copy(view.Errors, mapping.FirstErrors())
	view.FormErrors = render.MergeFormErrors(view.FormErrors, mapping.Form...)
}

func (r *Renderer) templateData(view render.View, opts render.RenderOptions) map[string]any {
	themeCtx := buildThemeContext(opts.Theme)
	method, override := render.ResolveMethod(opts.Method)
	hidden := opts.Hidden
	if override != "" {
		hidden = render.MergeHiddenFields(hidden, render.Hidden(render.MethodOverrideField, override))
	}

	hiddenList := make([]map[string]any, 0, len(hidden))
	for _, h := range render.SortedHiddenFields(hidden) {
		hiddenList = append(hiddenList, map[string]any{"name": h.Name, "value": h.Value})
	}

	multipart := false
	for _, field := range view.Schema.AllFields() {
		if field.Type == schema.FieldTypeFile {
			multipart = true
			break
		}
	}

	data := map[string]any{
		"form": map[string]any{
			"id":           controlID("form-" + view.ID),
			"session":      view.ID,
			"title":        view.Title,
			"action":       opts.Action,
			"method":       method,
			"multipart":    multipart,
			"submitting":   view.Submitting,
			"submitted":    view.Submitted,
			"button_label": view.ButtonLabel(),
		},
		"classes":     r.classes,
		"hidden":      hiddenList,
		"form_errors": view.FormErrors,
		"theme":       themeCtx.data(),
		"locale":      opts.Locale,
	}
	if r.inlineStyles {
		data["stylesheet"] = Stylesheet()
	}

	if view.Schema.IsSectioned() {
		list := make([]map[string]any, 0, len(view.Schema.Sections))
		for _, section := range view.Schema.Sections {
			slugged := sections.Slug(section.Name)
			list = append(list, map[string]any{
				"name":   section.Name,
				"slug":   slugged,
				"id":     "fk-section-" + slugged,
				"title":  section.DisplayTitle(),
				"open":   view.IsExpanded(section.Name),
				"fields": r.fieldsData(view, section.Fields, themeCtx),
			})
		}
		data["sections"] = list
	} else {
		data["fields"] = r.fieldsData(view, view.Schema.Fields, themeCtx)
	}
	return data
}

func (r *Renderer) fieldsData(view render.View, fields []schema.FieldConfig, themeCtx themeContext) []map[string]any {
	out := make([]map[string]any, 0, len(fields))
	for _, field := range fields {
		out = append(out, r.fieldData(view, field, themeCtx))
	}
	return out
}

func (r *Renderer) fieldData(view render.View, field schema.FieldConfig, themeCtx themeContext) map[string]any {
	id := controlID(field.Name)
	errText := view.Error(field.Name)
	control := widgets.ControlData{
		ID:       id,
		Value:    view.Value(field.Name),
		Error:    errText,
		Template: r.templates,
		Partials: themeCtx.Partials,
	}

	reg := r.controls(view)
	var buf bytes.Buffer
	if err := reg.Render(&buf, field, control); err != nil {
		// A broken control never takes down the whole form.
		r.logger.Warn("field render failed", zap.String("field", field.Name), zap.Error(err))
		buf.Reset()
		widgets.Unsupported(&buf, field)
	}

	_, known := reg.Lookup(field.Type)
	return map[string]any{
		"name":        field.Name,
		"type":        string(field.Type),
		"id":          id,
		"error_id":    control.ErrorID(),
		"label":       field.DisplayLabel(),
		"required":    field.Required,
		"disabled":    field.Disabled,
		"group":       known && isGroup(field),
		"inline":      known && field.Type == schema.FieldTypeCheckbox && !field.MultiValued(),
		"description": sanitizeDescription(field.Description),
		"error":       errText,
		"touched":     view.Touched[field.Name],
		"control":     buf.String(),
	}
}

// isGroup reports whether the control is a set of inputs that needs a
// fieldset/legend instead of a <label for>.
func isGroup(field schema.FieldConfig) bool {
	switch field.Type {
	case schema.FieldTypeRadio:
		return true
	case schema.FieldTypeCheckbox:
		return field.MultiValued()
	default:
		return false
	}
}

// controls picks the registry for view: the one given with WithRegistry,
// else the session's, else the built-ins.
func (r *Renderer) controls(view render.View) *widgets.Registry {
	switch {
	case r.registry != nil:
		return r.registry
	case view.Registry != nil:
		return view.Registry
	default:
		return r.builtin
	}
}
