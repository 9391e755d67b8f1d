package widgets

import (
	"bytes"
	"fmt"
	"html"
	"slices"
	"strconv"
	"strings"

	rendertemplate "github.com/goliatone/go-formkit/pkg/render/template"
	"github.com/goliatone/go-formkit/pkg/schema"
)

// Renderer writes the HTML control for a field into buf. Labels, help text
// and inline errors are drawn by the surrounding layout.
type Renderer func(buf *bytes.Buffer, field schema.FieldConfig, data ControlData) error

// ControlData is the per-render state a control needs.
type ControlData struct {
	ID       string
	Value    any
	Error    string
	Template rendertemplate.TemplateRenderer
	// Partials maps descriptor partial keys to theme template names.
	Partials map[string]string
}

// ErrorID is the id of the element carrying a control's inline error.
func (d ControlData) ErrorID() string {
	return d.ID + "-error"
}

// Render draws field using the registry. Unknown types render the
// Unsupported placeholder; a theme partial registered for the descriptor's
// key takes precedence over the built-in control.
func (r *Registry) Render(buf *bytes.Buffer, field schema.FieldConfig, data ControlData) error {
	d, ok := r.Lookup(field.Type)
	if !ok {
		Unsupported(buf, field)
		return nil
	}
	if data.Template != nil && data.Partials != nil {
		if name := strings.TrimSpace(data.Partials[d.Partial]); name != "" {
			return renderPartial(buf, name, field, data)
		}
	}
	return d.Render(buf, field, data)
}

// Unsupported writes the visible placeholder used for unknown types.
func Unsupported(buf *bytes.Buffer, field schema.FieldConfig) {
	buf.WriteString(`<div class="fk-unsupported" role="note" data-field="`)
	buf.WriteString(html.EscapeString(field.Name))
	buf.WriteString(`">Unsupported field type "`)
	buf.WriteString(html.EscapeString(string(field.Type)))
	buf.WriteString(`"</div>`)
}

func renderPartial(buf *bytes.Buffer, name string, field schema.FieldConfig, data ControlData) error {
	payload := map[string]any{
		"id":       data.ID,
		"error_id": data.ErrorID(),
		"field":    field,
		"value":    data.Value,
		"error":    data.Error,
		"selected": selectedSet(data.Value),
	}
	rendered, err := data.Template.RenderTemplate(name, payload)
	if err != nil {
		return fmt.Errorf("widgets: render partial %q: %w", name, err)
	}
	buf.WriteString(rendered)
	return nil
}

type attrs struct {
	b *strings.Builder
}

func (a attrs) set(name, value string) {
	a.b.WriteByte(' ')
	a.b.WriteString(name)
	a.b.WriteString(`="`)
	a.b.WriteString(html.EscapeString(value))
	a.b.WriteByte('"')
}

func (a attrs) flag(name string, on bool) {
	if on {
		a.b.WriteByte(' ')
		a.b.WriteString(name)
	}
}

func (a attrs) common(field schema.FieldConfig, data ControlData) {
	a.set("id", data.ID)
	a.set("name", field.Name)
	a.flag("required", field.Required)
	a.flag("disabled", field.Disabled)
	if data.Error != "" {
		a.set("aria-invalid", "true")
		a.set("aria-describedby", data.ErrorID())
	}
}

func (a attrs) constraints(field schema.FieldConfig) {
	v := field.Validation
	if v == nil {
		return
	}
	if v.MinLength != nil {
		a.set("minlength", strconv.Itoa(*v.MinLength))
	}
	if v.MaxLength != nil {
		a.set("maxlength", strconv.Itoa(*v.MaxLength))
	}
	if v.Min != nil {
		a.set("min", strconv.FormatFloat(*v.Min, 'f', -1, 64))
	}
	if v.Max != nil {
		a.set("max", strconv.FormatFloat(*v.Max, 'f', -1, 64))
	}
	if v.Pattern != "" {
		a.set("pattern", v.Pattern)
	}
}

func inputRenderer(inputType string) Renderer {
	return func(buf *bytes.Buffer, field schema.FieldConfig, data ControlData) error {
		var b strings.Builder
		a := attrs{&b}
		b.WriteString(`<input class="fk-input"`)
		a.set("type", inputType)
		a.common(field, data)
		a.constraints(field)
		if field.Placeholder != "" {
			a.set("placeholder", field.Placeholder)
		}
		a.set("value", valueText(data.Value))
		b.WriteString(`>`)
		buf.WriteString(b.String())
		return nil
	}
}

func passwordRenderer(buf *bytes.Buffer, field schema.FieldConfig, data ControlData) error {
	buf.WriteString(`<div class="fk-password">`)
	if err := inputRenderer("password")(buf, field, data); err != nil {
		return err
	}
	var b strings.Builder
	a := attrs{&b}
	b.WriteString(`<button type="button" class="fk-password-toggle"`)
	a.set("aria-controls", data.ID)
	a.set("aria-pressed", "false")
	a.set("data-fk-toggle", data.ID)
	a.flag("disabled", field.Disabled)
	b.WriteString(`>Show</button></div>`)
	buf.WriteString(b.String())
	return nil
}

func textareaRenderer(buf *bytes.Buffer, field schema.FieldConfig, data ControlData) error {
	var b strings.Builder
	a := attrs{&b}
	b.WriteString(`<textarea class="fk-textarea"`)
	a.common(field, data)
	a.constraints(field)
	if field.Placeholder != "" {
		a.set("placeholder", field.Placeholder)
	}
	b.WriteString(`>`)
	b.WriteString(html.EscapeString(valueText(data.Value)))
	b.WriteString(`</textarea>`)
	buf.WriteString(b.String())
	return nil
}

func selectRenderer(buf *bytes.Buffer, field schema.FieldConfig, data ControlData) error {
	selected := selectedSet(data.Value)
	var b strings.Builder
	a := attrs{&b}
	b.WriteString(`<select class="fk-select"`)
	a.common(field, data)
	a.flag("multiple", field.Multiple)
	b.WriteString(`>`)
	if !field.Multiple {
		b.WriteString(`<option value="">`)
		b.WriteString(html.EscapeString(placeholderOr(field.Placeholder, "Select...")))
		b.WriteString(`</option>`)
	}
	for _, opt := range field.Options {
		b.WriteString(`<option`)
		a.set("value", opt.Value)
		_, on := selected[opt.Value]
		a.flag("selected", on)
		b.WriteString(`>`)
		b.WriteString(html.EscapeString(opt.DisplayLabel()))
		b.WriteString(`</option>`)
	}
	b.WriteString(`</select>`)
	buf.WriteString(b.String())
	return nil
}

func radioRenderer(buf *bytes.Buffer, field schema.FieldConfig, data ControlData) error {
	return choiceGroup(buf, field, data, "radio")
}

func checkboxRenderer(buf *bytes.Buffer, field schema.FieldConfig, data ControlData) error {
	if field.MultiValued() {
		return choiceGroup(buf, field, data, "checkbox")
	}
	var b strings.Builder
	a := attrs{&b}
	b.WriteString(`<input class="fk-checkbox" type="checkbox"`)
	a.common(field, data)
	a.set("value", "on")
	checked, _ := data.Value.(bool)
	a.flag("checked", checked)
	b.WriteString(`>`)
	buf.WriteString(b.String())
	return nil
}

func choiceGroup(buf *bytes.Buffer, field schema.FieldConfig, data ControlData, inputType string) error {
	selected := selectedSet(data.Value)
	var b strings.Builder
	a := attrs{&b}
	b.WriteString(`<div class="fk-choices" role="`)
	if inputType == "radio" {
		b.WriteString(`radiogroup"`)
	} else {
		b.WriteString(`group"`)
	}
	a.set("id", data.ID)
	if data.Error != "" {
		a.set("aria-describedby", data.ErrorID())
	}
	b.WriteString(`>`)
	for idx, opt := range field.Options {
		optionID := data.ID + "-" + strconv.Itoa(idx)
		b.WriteString(`<label class="fk-choice"><input`)
		a.set("type", inputType)
		a.set("id", optionID)
		a.set("name", field.Name)
		a.set("value", opt.Value)
		_, on := selected[opt.Value]
		a.flag("checked", on)
		a.flag("disabled", field.Disabled)
		a.flag("required", field.Required && inputType == "radio")
		b.WriteString(`> `)
		b.WriteString(html.EscapeString(opt.DisplayLabel()))
		b.WriteString(`</label>`)
	}
	b.WriteString(`</div>`)
	buf.WriteString(b.String())
	return nil
}

func fileRenderer(buf *bytes.Buffer, field schema.FieldConfig, data ControlData) error {
	var b strings.Builder
	a := attrs{&b}
	b.WriteString(`<input class="fk-file" type="file"`)
	a.common(field, data)
	if field.Accept != "" {
		a.set("accept", field.Accept)
	}
	a.flag("multiple", field.Multiple)
	b.WriteString(`>`)
	if files, ok := data.Value.([]File); ok && len(files) > 0 {
		b.WriteString(`<ul class="fk-file-list">`)
		for _, f := range files {
			b.WriteString(`<li>`)
			b.WriteString(html.EscapeString(f.Name))
			b.WriteString(`</li>`)
		}
		b.WriteString(`</ul>`)
	}
	buf.WriteString(b.String())
	return nil
}

func placeholderOr(placeholder, fallback string) string {
	if strings.TrimSpace(placeholder) != "" {
		return placeholder
	}
	return fallback
}

func valueText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}

func selectedSet(value any) map[string]struct{} {
	out := make(map[string]struct{})
	switch v := value.(type) {
	case string:
		if v != "" {
			out[v] = struct{}{}
		}
	case []string:
		for _, item := range v {
			out[item] = struct{}{}
		}
	case []any:
		for _, item := range v {
			out[fmt.Sprint(item)] = struct{}{}
		}
	}
	return out
}

// SelectedValues returns the values of a choice field in option order.
func SelectedValues(field schema.FieldConfig, value any) []string {
	set := selectedSet(value)
	var out []string
	for _, opt := range field.Options {
		if _, ok := set[opt.Value]; ok {
			out = append(out, opt.Value)
		}
	}
	if len(out) == 0 && len(set) > 0 {
		for v := range set {
			out = append(out, v)
		}
		slices.Sort(out)
	}
	return out
}
