package render

import (
	"fmt"
	"strings"
)

// TemplateI18nConfig tunes the helpers returned by TemplateI18nFuncs.
type TemplateI18nConfig struct {
	// LocaleKey is read when a helper receives a map instead of a locale
	// string. Defaults to "locale", the key the HTML renderer sets.
	LocaleKey string
	// FuncName renames the translate helper.
	FuncName string
	// OnMissing formats keys the translator cannot resolve. The default
	// prints the key.
	OnMissing MissingTranslationHandler
}

// TemplateI18nFuncs returns template helpers for custom form templates:
//
//	{{ translate(locale, "formkit.form.title") }}
//	{{ current_locale(locale) }}
//
// The first argument is a locale string or a map holding one under
// cfg.LocaleKey.
func TemplateI18nFuncs(t Translator, cfg TemplateI18nConfig) map[string]any {
	key := strings.TrimSpace(cfg.LocaleKey)
	if key == "" {
		key = "locale"
	}
	name := strings.TrimSpace(cfg.FuncName)
	if name == "" {
		name = "translate"
	}
	onMissing := cfg.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	translateFn := func(src any, msgKey string, args ...any) string {
		msgKey = strings.TrimSpace(msgKey)
		if msgKey == "" {
			return ""
		}
		locale := localeOf(src, key)
		if t == nil {
			return onMissing(locale, msgKey, args, ErrMissingTranslator)
		}
		msg, err := t.Translate(locale, msgKey, args...)
		if err != nil || strings.TrimSpace(msg) == "" {
			return onMissing(locale, msgKey, args, err)
		}
		return msg
	}
	return map[string]any{
		name: translateFn,
		"current_locale": func(src any) string {
			return localeOf(src, key)
		},
	}
}

func localeOf(src any, key string) string {
	switch v := src.(type) {
	case string:
		return v
	case map[string]string:
		return v[key]
	case map[string]any:
		switch locale := v[key].(type) {
		case nil:
			return ""
		case string:
			return locale
		default:
			return fmt.Sprint(locale)
		}
	}
	return ""
}
