package html

import (
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/render"
	rendertemplate "github.com/goliatone/go-formkit/pkg/render/template"
	"github.com/goliatone/go-formkit/pkg/widgets"
)

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *widgets.Registry
	classes          ChromeClasses
	inlineStyles     bool
	templateFuncs    map[string]any
	logger           *zap.Logger
}

// WithTemplatesFS supplies an alternate template bundle. It must contain
// templates/form.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithRegistry selects the field type registry used to draw controls. Without
// it the renderer uses the registry of the session being drawn.
func WithRegistry(reg *widgets.Registry) Option {
	return func(cfg *config) {
		if reg != nil {
			cfg.registry = reg
		}
	}
}

// WithChromeClasses adds classes to the form chrome.
func WithChromeClasses(classes ChromeClasses) Option {
	return func(cfg *config) {
		cfg.classes = classes
	}
}

// WithInlineStylesheet embeds the default stylesheet in a <style> block.
func WithInlineStylesheet(enabled bool) Option {
	return func(cfg *config) {
		cfg.inlineStyles = enabled
	}
}

// WithLogger sets the logger used for per-field render failures.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithTemplateFuncs exposes extra functions to the form templates. Ignored
// when WithTemplateRenderer supplies the engine.
func WithTemplateFuncs(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.templateFuncs == nil {
			cfg.templateFuncs = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.templateFuncs[name] = fn
		}
	}
}

// WithTranslator makes `translate(locale, key, ...)` and
// `current_locale(locale)` available to templates. The render locale is
// exposed as `locale`.
func WithTranslator(t render.Translator, i18n render.TemplateI18nConfig) Option {
	return WithTemplateFuncs(render.TemplateI18nFuncs(t, i18n))
}
