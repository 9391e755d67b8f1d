package render

import (
	theme "github.com/goliatone/go-theme"
)

// RenderOptions describe per-request data that renderers can use to
// customise their output without mutating the session.
type RenderOptions struct {
	// Action is the form's submit URL. Empty posts back to the current page.
	Action string
	// Method overrides the submit method. Renderers translate verbs other
	// than GET/POST into a POST plus a hidden _method input.
	Method string
	// Errors merges server-side feedback (go-errors style paths allowed) into
	// the view before rendering.
	Errors map[string][]string
	// Hidden emits additional hidden inputs such as CSRF tokens.
	Hidden map[string]string
	// Subset restricts rendering to the named sections or fields.
	Subset FieldSubset
	// Locale and Translator localise labels and captions.
	Locale     string
	Translator Translator
	// OnMissing decides what to show when a translation is missing.
	OnMissing MissingTranslationHandler
	// Theme carries resolved partial overrides, tokens and CSS variables.
	Theme *theme.RendererConfig
}
