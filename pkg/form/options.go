package form

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/rules"
	"github.com/goliatone/go-formkit/pkg/widgets"
)

// ValidationMode selects when a field is validated before the first submit.
type ValidationMode int

const (
	// OnBlur validates a field when it loses focus.
	OnBlur ValidationMode = iota
	// OnChange validates on every change.
	OnChange
	// OnSubmit defers validation to Submit.
	OnSubmit
	// All validates on both change and blur.
	All
)

func (m ValidationMode) String() string {
	switch m {
	case OnBlur:
		return "onBlur"
	case OnChange:
		return "onChange"
	case OnSubmit:
		return "onSubmit"
	case All:
		return "all"
	default:
		return "unknown"
	}
}

// ParseValidationMode accepts the String() forms, case-insensitively.
func ParseValidationMode(raw string) (ValidationMode, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "onblur", "blur":
		return OnBlur, true
	case "onchange", "change":
		return OnChange, true
	case "onsubmit", "submit":
		return OnSubmit, true
	case "all":
		return All, true
	default:
		return OnBlur, false
	}
}

// BlurFunc is invoked after a field's blur handling with its name and value.
type BlurFunc func(name string, value any)

// Option configures a Session.
type Option func(*config)

type config struct {
	id              string
	title           string
	defaults        map[string]any
	onBlur          BlurFunc
	submitLabel     string
	submittingLabel string
	expandAll       bool
	mode            ValidationMode
	registry        *widgets.Registry
	submitTimeout   time.Duration
	logger          *zap.Logger
	messages        rules.Messages
	translator      rules.Translator
	locale          string
	now             func() time.Time
}

func defaultConfig() config {
	return config{
		submitLabel:     "Submit",
		submittingLabel: "Submitting...",
		mode:            OnBlur,
		logger:          zap.NewNop(),
		now:             time.Now,
	}
}

// WithDefaultValues seeds field values. They win over FieldConfig.DefaultValue.
func WithDefaultValues(values map[string]any) Option {
	return func(c *config) {
		if len(values) == 0 {
			return
		}
		if c.defaults == nil {
			c.defaults = make(map[string]any, len(values))
		}
		for k, v := range values {
			c.defaults[k] = v
		}
	}
}

// WithBlurFunc registers the form-level blur callback.
func WithBlurFunc(fn BlurFunc) Option {
	return func(c *config) {
		c.onBlur = fn
	}
}

// WithSubmitLabel sets the idle submit caption.
func WithSubmitLabel(label string) Option {
	return func(c *config) {
		if strings.TrimSpace(label) != "" {
			c.submitLabel = label
		}
	}
}

// WithSubmittingLabel sets the caption shown while a submit is pending.
func WithSubmittingLabel(label string) Option {
	return func(c *config) {
		if strings.TrimSpace(label) != "" {
			c.submittingLabel = label
		}
	}
}

// WithTitle sets the form heading.
func WithTitle(title string) Option {
	return func(c *config) {
		c.title = title
	}
}

// WithExpandAll opens every section initially.
func WithExpandAll(expand bool) Option {
	return func(c *config) {
		c.expandAll = expand
	}
}

// WithValidationMode selects when fields validate before the first submit.
func WithValidationMode(mode ValidationMode) Option {
	return func(c *config) {
		c.mode = mode
	}
}

// WithRegistry replaces the field type registry.
func WithRegistry(reg *widgets.Registry) Option {
	return func(c *config) {
		if reg != nil {
			c.registry = reg
		}
	}
}

// WithSubmitTimeout bounds how long Submit waits for the handler.
func WithSubmitTimeout(d time.Duration) Option {
	return func(c *config) {
		c.submitTimeout = d
	}
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMessages overrides validation message templates.
func WithMessages(messages rules.Messages) Option {
	return func(c *config) {
		c.messages = c.messages.Merge(messages)
	}
}

// WithTranslator localises validation messages.
func WithTranslator(t rules.Translator) Option {
	return func(c *config) {
		c.translator = t
	}
}

// WithLocale selects the locale handed to the translator.
func WithLocale(locale string) Option {
	return func(c *config) {
		c.locale = strings.TrimSpace(locale)
	}
}

// WithID fixes the session id instead of generating one.
func WithID(id string) Option {
	return func(c *config) {
		if strings.TrimSpace(id) != "" {
			c.id = strings.TrimSpace(id)
		}
	}
}
