package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/form"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/widgets"
)

// Renderer fills form sessions from a terminal. Render serializes a view's
// values without prompting; Fill runs the interactive loop.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	maxAttempts  int
	readFile     FileReader
	logger       *zap.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := defaultRenderer()
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render and Fill.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render serializes the view's values in the configured output format.
func (r *Renderer) Render(ctx context.Context, view render.View, _ render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.serialize(view.Values)
}

// Fill prompts every enabled field in schema order, feeding each answer
// through OnChange and OnBlur, then submits. When the submit fails validation
// only the failing fields are prompted again. handler may be nil, in which
// case the values are just collected.
func (r *Renderer) Fill(ctx context.Context, sess *form.Session, handler form.SubmitFunc) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if sess == nil {
		return nil, errors.New("tui: session is nil")
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	if handler == nil {
		handler = func(context.Context, map[string]any) error { return nil }
	}

	sch := sess.Schema()
	pending := sess.Fields()
	for round := 1; ; round++ {
		if r.maxAttempts > 0 && round > r.maxAttempts {
			return nil, fmt.Errorf("%w: submit", ErrTooManyAttempts)
		}
		if err := r.promptAll(ctx, sess, sch, pending); err != nil {
			return nil, err
		}

		err := sess.Submit(ctx, handler)
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			r.logger.Debug("tui submit blocked", zap.Strings("fields", verr.Names()), zap.Int("round", round))
			r.info(ctx, r.theme.ErrorPrefix+"Please fix the highlighted fields")
			pending = pending[:0]
			for _, name := range verr.Names() {
				if b, err := sess.Field(name); err == nil {
					pending = append(pending, b)
				}
			}
			pending = inSchemaOrder(sch, pending)
			continue
		}
		if err != nil {
			return nil, err
		}
		return r.serialize(sess.Values())
	}
}

func (r *Renderer) promptAll(ctx context.Context, sess *form.Session, sch schema.Schema, bindings []*form.Binding) error {
	current := ""
	for _, b := range bindings {
		if b.Config().Disabled {
			continue
		}
		if section := sch.SectionOf(b.Name()); section != "" && section != current {
			current = section
			_ = sess.Sections().SetExpanded(section, true)
			title := section
			for _, s := range sch.Sections {
				if s.Name == section {
					title = s.DisplayTitle()
				}
			}
			r.info(ctx, r.theme.SectionPrefix+title)
		}
		if err := r.promptField(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, b *form.Binding) error {
	for attempt := 1; ; attempt++ {
		if r.maxAttempts > 0 && attempt > r.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, b.Name())
		}
		if msg := b.Error(); msg != "" {
			r.info(ctx, r.theme.ErrorPrefix+msg)
		}

		answer, err := r.ask(ctx, b)
		if err != nil {
			var rejected *rejectedAnswer
			if errors.As(err, &rejected) {
				r.info(ctx, r.theme.ErrorPrefix+rejected.message)
				continue
			}
			return err
		}
		if err := b.OnChange(answer); err != nil {
			if errors.Is(err, form.ErrFieldDisabled) {
				return nil
			}
			r.logger.Debug("tui answer rejected", zap.String("field", b.Name()), zap.Error(err))
			continue
		}
		b.OnBlur()
		if b.Error() != "" {
			continue
		}
		return nil
	}
}

// rejectedAnswer is an answer refused before it reaches the session.
type rejectedAnswer struct {
	message string
}

func (e *rejectedAnswer) Error() string { return e.message }

func (r *Renderer) ask(ctx context.Context, b *form.Binding) (any, error) {
	field := b.Config()
	label := field.DisplayLabel()
	if field.Required {
		label += " *"
	}
	help := field.Description
	current := b.Value()

	switch field.Type {
	case schema.FieldTypePassword:
		return r.driver.Password(ctx, InputConfig{Message: label, Help: help})
	case schema.FieldTypeTextarea:
		return r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: textValue(current), Help: help})
	case schema.FieldTypeDate:
		if help == "" {
			help = "Format: " + widgets.DateLayout
		}
		return r.driver.Input(ctx, InputConfig{Message: label, Default: textValue(current), Help: help, Placeholder: field.Placeholder})
	case schema.FieldTypeCheckbox:
		if !field.MultiValued() {
			checked, _ := current.(bool)
			return r.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: checked, Help: help})
		}
		return r.askMany(ctx, field, label, help, current)
	case schema.FieldTypeSelect:
		if field.Multiple {
			return r.askMany(ctx, field, label, help, current)
		}
		return r.askOne(ctx, field, label, help, current)
	case schema.FieldTypeRadio:
		return r.askOne(ctx, field, label, help, current)
	case schema.FieldTypeFile:
		return r.askFiles(ctx, field, label, help)
	default:
		return r.driver.Input(ctx, InputConfig{Message: label, Default: textValue(current), Help: help, Placeholder: field.Placeholder})
	}
}

func (r *Renderer) askOne(ctx context.Context, field schema.FieldConfig, label, help string, current any) (any, error) {
	labels, values := optionLists(field)
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      label,
		Options:      labels,
		DefaultIndex: slices.Index(values, textValue(current)),
		Help:         help,
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(values) {
		return nil, &rejectedAnswer{message: fmt.Sprintf("Invalid %s selection", field.DisplayLabel())}
	}
	return values[idx], nil
}

func (r *Renderer) askMany(ctx context.Context, field schema.FieldConfig, label, help string, current any) (any, error) {
	labels, values := optionLists(field)
	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  label,
		Options:  labels,
		Defaults: indicesOf(values, widgets.SelectedValues(field, current)),
		Help:     help,
	})
	if err != nil {
		return nil, err
	}
	picked := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(values) {
			picked = append(picked, values[idx])
		}
	}
	return picked, nil
}

func (r *Renderer) askFiles(ctx context.Context, field schema.FieldConfig, label, help string) (any, error) {
	if help == "" && field.Accept != "" {
		help = "Accepts " + field.Accept
	}
	raw, err := r.driver.Input(ctx, InputConfig{Message: label, Help: help, Placeholder: "path[, path...]"})
	if err != nil {
		return nil, err
	}
	var files []widgets.File
	for _, path := range strings.Split(raw, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		content, err := r.readFile(path)
		if err != nil {
			return nil, &rejectedAnswer{message: fmt.Sprintf("Cannot read %s: %v", path, err)}
		}
		file := widgets.SniffFile(filepath.Base(path), content, "")
		if !widgets.Accepts(field, file) {
			return nil, &rejectedAnswer{message: fmt.Sprintf("%s is not an accepted file type (%s)", file.Name, field.Accept)}
		}
		files = append(files, file)
		if !field.Multiple {
			break
		}
	}
	if files == nil {
		files = []widgets.File{}
	}
	return files, nil
}

func (r *Renderer) info(ctx context.Context, msg string) {
	if err := r.driver.Info(ctx, r.theme.InfoPrefix+msg); err != nil {
		r.logger.Debug("tui info failed", zap.Error(err))
	}
}

func optionLists(field schema.FieldConfig) (labels, values []string) {
	for _, opt := range field.Options {
		labels = append(labels, opt.DisplayLabel())
		values = append(values, opt.Value)
	}
	return labels, values
}

func inSchemaOrder(sch schema.Schema, bindings []*form.Binding) []*form.Binding {
	byName := make(map[string]*form.Binding, len(bindings))
	for _, b := range bindings {
		byName[b.Name()] = b
	}
	out := make([]*form.Binding, 0, len(bindings))
	for _, field := range sch.AllFields() {
		if b, ok := byName[field.Name]; ok {
			out = append(out, b)
		}
	}
	return out
}

func textValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return formatNumber(v)
	default:
		return fmt.Sprint(v)
	}
}

func indicesOf(options, picked []string) []int {
	var out []int
	for i, option := range options {
		if slices.Contains(picked, option) {
			out = append(out, i)
		}
	}
	return out
}
