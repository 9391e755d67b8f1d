// Package html renders form views as server-side HTML.
//
// Layout (form chrome, sections, labels, help text, inline errors and the
// submit button) lives in pongo2 templates embedded under templates/.
// Controls come from the widgets registry, so a custom field type renders as
// soon as it is registered. Themes can replace a control by mapping its
// partial key (for example "forms.text") to a template.
package html
