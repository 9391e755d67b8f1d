package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-formkit/pkg/schema"
)

// Translator resolves a key for a locale. It matches go-i18n style helpers
// and the validation message translator.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler produces the string shown when a key has no
// translation. args carries a {"default": fallback} map as its first entry.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// ErrMissingTranslator is reported to OnMissing when no Translator is set.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translation keys. Field and section keys embed the field name or section
// name, e.g. "formkit.fields.email.label".
const (
	KeyFormTitle      = "formkit.form.title"
	KeyFormSubmit     = "formkit.form.submit"
	KeyFormSubmitting = "formkit.form.submitting"
	keyFieldPrefix    = "formkit.fields."
	keySectionPrefix  = "formkit.sections."
)

// FieldKey builds the translation key for one attribute of a field.
func FieldKey(name, attr string) string {
	return keyFieldPrefix + name + "." + attr
}

// SectionKey builds the translation key of a section title.
func SectionKey(name string) string {
	return keySectionPrefix + name + ".title"
}

// LocalizeView translates the captions of view in place. It is a no-op
// without a Translator; missing keys keep their original text unless
// opts.OnMissing says otherwise.
func LocalizeView(view *View, opts RenderOptions) {
	if view == nil || opts.Translator == nil {
		return
	}
	t, locale, onMissing := opts.Translator, opts.Locale, opts.OnMissing

	view.Title = translate(locale, KeyFormTitle, view.Title, t, onMissing)
	view.SubmitLabel = translate(locale, KeyFormSubmit, view.SubmitLabel, t, onMissing)
	view.SubmittingLabel = translate(locale, KeyFormSubmitting, view.SubmittingLabel, t, onMissing)

	view.Schema = view.Schema.Clone()
	for i := range view.Schema.Fields {
		localizeField(&view.Schema.Fields[i], locale, t, onMissing)
	}
	for i := range view.Schema.Sections {
		section := &view.Schema.Sections[i]
		section.Title = translate(locale, SectionKey(section.Name), section.DisplayTitle(), t, onMissing)
		for j := range section.Fields {
			localizeField(&section.Fields[j], locale, t, onMissing)
		}
	}
}

func localizeField(field *schema.FieldConfig, locale string, t Translator, onMissing MissingTranslationHandler) {
	field.Label = translate(locale, FieldKey(field.Name, "label"), field.DisplayLabel(), t, onMissing)
	if field.Placeholder != "" {
		field.Placeholder = translate(locale, FieldKey(field.Name, "placeholder"), field.Placeholder, t, onMissing)
	}
	if field.Description != "" {
		field.Description = translate(locale, FieldKey(field.Name, "description"), field.Description, t, onMissing)
	}
	for k := range field.Options {
		opt := &field.Options[k]
		opt.Label = translate(locale, FieldKey(field.Name, "options."+opt.Value), opt.DisplayLabel(), t, onMissing)
	}
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
		}
		return fallback
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	if onMissing != nil {
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
	}
	return fallback
}

// missingTranslationDefault returns the fallback carried in args, or the
// key itself.
func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	for _, arg := range args {
		if m, ok := arg.(map[string]any); ok {
			if def, ok := m["default"].(string); ok && strings.TrimSpace(def) != "" {
				return def
			}
		}
	}
	return key
}
