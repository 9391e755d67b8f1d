package html

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// themeContext is the theme data handed to the layout template.
type themeContext struct {
	Name         string
	Variant      string
	Partials     map[string]string
	Tokens       map[string]string
	CSSVars      map[string]string
	CSSVarsStyle string
	Stylesheet   string
}

func buildThemeContext(cfg *theme.RendererConfig) themeContext {
	if cfg == nil {
		return themeContext{}
	}
	ctx := themeContext{
		Name:     cfg.Theme,
		Variant:  cfg.Variant,
		Partials: maps.Clone(cfg.Partials),
		Tokens:   maps.Clone(cfg.Tokens),
		CSSVars:  maps.Clone(cfg.CSSVars),
	}
	ctx.CSSVarsStyle = cssVarsStyle(ctx.CSSVars)
	if cfg.AssetURL != nil {
		ctx.Stylesheet = cfg.AssetURL("formkit.stylesheet")
	}
	return ctx
}

func (t themeContext) data() map[string]any {
	return map[string]any{
		"name":           t.Name,
		"variant":        t.Variant,
		"css_vars_style": t.CSSVarsStyle,
		"stylesheet":     t.Stylesheet,
	}
}

// cssVarsStyle renders vars as a :root block with stable key order.
func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

// ThemeConfig resolves name/variant through selector and flattens the
// selection into a renderer config. Variant tokens and templates override the
// manifest's; fallbacks fill partial keys neither defines. Tokens are
// exposed as CSS variables prefixed with "--".
func ThemeConfig(selector theme.ThemeSelector, name, variant string, fallbacks map[string]string) (*theme.RendererConfig, error) {
	if selector == nil {
		return nil, fmt.Errorf("html renderer: theme selector is nil")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("html renderer: select theme %q: %w", name, err)
	}
	if selection == nil || selection.Manifest == nil {
		return nil, fmt.Errorf("html renderer: theme %q has no manifest", name)
	}
	manifest := selection.Manifest

	partials := maps.Clone(fallbacks)
	if partials == nil {
		partials = make(map[string]string)
	}
	maps.Copy(partials, manifest.Templates)
	tokens := maps.Clone(manifest.Tokens)
	if tokens == nil {
		tokens = make(map[string]string)
	}
	assets := maps.Clone(manifest.Assets.Files)
	if assets == nil {
		assets = make(map[string]string)
	}
	prefix := manifest.Assets.Prefix
	if v, ok := manifest.Variants[selection.Variant]; ok {
		maps.Copy(partials, v.Templates)
		maps.Copy(tokens, v.Tokens)
		maps.Copy(assets, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := assets[key]
			if !ok || file == "" {
				return ""
			}
			if prefix == "" || strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
				return file
			}
			return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
		},
	}, nil
}
