package rules

import (
	"strconv"
	"strings"
)

// Kind names a rule family. It doubles as the message catalogue key.
type Kind string

const (
	KindRequired  Kind = "required"
	KindMinLength Kind = "minLength"
	KindMaxLength Kind = "maxLength"
	KindMin       Kind = "min"
	KindMax       Kind = "max"
	KindPattern   Kind = "pattern"
	KindEmail     Kind = "email"
	KindCustom    Kind = "custom"
	KindType      Kind = "type"
)

// Catalogue keys that refine a Kind.
const (
	keyMinItems = "minItems"
	keyMaxItems = "maxItems"
	keyNumber   = "number"
)

// Messages maps catalogue keys to templates. `{label}` expands to the field's
// display label and `{n}` to the rule parameter.
type Messages map[string]string

// DefaultMessages returns a fresh copy of the built-in English catalogue.
func DefaultMessages() Messages {
	return Messages{
		string(KindRequired):  "{label} is required",
		string(KindMinLength): "{label} must be at least {n} characters",
		string(KindMaxLength): "{label} must be at most {n} characters",
		keyMinItems:           "{label} needs at least {n} selections",
		keyMaxItems:           "{label} allows at most {n} selections",
		string(KindMin):       "{label} must be at least {n}",
		string(KindMax):       "{label} must be at most {n}",
		string(KindPattern):   "{label} is invalid",
		string(KindEmail):     "Enter a valid email address",
		string(KindCustom):    "{label} is invalid",
		string(KindType):      "{label} has an invalid value",
		keyNumber:             "{label} must be a number",
	}
}

// Merge returns a copy of m with overrides applied. Blank overrides are
// ignored.
func (m Messages) Merge(overrides Messages) Messages {
	out := make(Messages, len(m)+len(overrides))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range overrides {
		if strings.TrimSpace(v) != "" {
			out[k] = v
		}
	}
	return out
}

// Translator resolves catalogue keys for a locale. Keys are passed as
// "formkit.validation.<key>".
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate delegates to fn.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// TranslationKeyPrefix prefixes catalogue keys handed to a Translator.
const TranslationKeyPrefix = "formkit.validation."

type formatter struct {
	messages   Messages
	translator Translator
	locale     string
}

func (f formatter) format(key, label, n string) string {
	tmpl := f.messages[key]
	if f.translator != nil {
		if translated, err := f.translator.Translate(f.locale, TranslationKeyPrefix+key, map[string]any{"label": label, "n": n}); err == nil && strings.TrimSpace(translated) != "" {
			tmpl = translated
		}
	}
	if tmpl == "" {
		tmpl = "{label} is invalid"
	}
	return strings.NewReplacer("{label}", label, "{n}", n).Replace(tmpl)
}

func formatInt(n int) string { return strconv.Itoa(n) }

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
