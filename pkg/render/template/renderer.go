package template

import "io"

// TemplateRenderer draws named templates or inline template sources. The
// HTML renderer and widget partial overrides depend only on this, so a
// go-template engine or a test double can stand in for the pongo2 adapter.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(source string, data any, out ...io.Writer) (string, error)
}

// FilterRegistrar is implemented by engines that accept custom filters.
type FilterRegistrar interface {
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
}
