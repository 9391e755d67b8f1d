package openapi

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formkit/internal/openapi/parser"
	"github.com/goliatone/go-formkit/pkg/schema"
)

const (
	extensionNamespace = "x-formkit"
	extWidget          = extensionNamespace + "-widget"
	extSection         = extensionNamespace + "-section"
	extOrder           = extensionNamespace + "-order"
	extPlaceholder     = extensionNamespace + "-placeholder"
	extAccept          = extensionNamespace + "-accept"
)

type importedField struct {
	config   schema.FieldConfig
	section  string
	order    float64
	hasOrder bool
}

func buildFields(body *openapi3.Schema) ([]importedField, error) {
	props, required := parser.Flatten(body)
	if len(props) == 0 {
		return nil, fmt.Errorf("request body has no properties")
	}
	requiredSet := make(map[string]bool, len(required))
	for _, name := range required {
		requiredSet[name] = true
	}

	var out []importedField
	for name, ref := range props {
		if ref == nil || ref.Value == nil {
			continue
		}
		field, ok := convertProperty(name, ref.Value, requiredSet[name])
		if !ok {
			continue
		}
		out = append(out, field)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.hasOrder != b.hasOrder {
			return a.hasOrder
		}
		if a.hasOrder && a.order != b.order {
			return a.order < b.order
		}
		return a.config.Name < b.config.Name
	})
	return out, nil
}

// convertProperty maps one property. Nested objects have no flat field
// representation and are skipped.
func convertProperty(name string, src *openapi3.Schema, required bool) (importedField, bool) {
	field := schema.FieldConfig{
		Name:         name,
		Label:        strings.TrimSpace(src.Title),
		Description:  strings.TrimSpace(src.Description),
		Required:     required,
		Disabled:     src.ReadOnly,
		DefaultValue: src.Default,
	}

	typ := parser.FirstType(src.Type)
	switch {
	case len(src.Enum) > 0:
		field.Type = schema.FieldTypeSelect
		field.Options = enumOptions(src.Enum)
	case typ == openapi3.TypeBoolean:
		field.Type = schema.FieldTypeCheckbox
	case typ == openapi3.TypeInteger || typ == openapi3.TypeNumber:
		field.Type = schema.FieldTypeNumber
	case typ == openapi3.TypeArray:
		items := itemsSchema(src)
		switch {
		case items != nil && len(items.Enum) > 0:
			field.Type = schema.FieldTypeCheckbox
			field.Options = enumOptions(items.Enum)
			field.Multiple = true
		case items != nil && items.Format == "binary":
			field.Type = schema.FieldTypeFile
			field.Multiple = true
		default:
			return importedField{}, false
		}
	case typ == openapi3.TypeObject:
		return importedField{}, false
	default:
		field.Type = stringType(src.Format)
	}

	if widget := extString(src.Extensions, extWidget); widget != "" {
		override := schema.FieldType(strings.ToLower(widget))
		if override.Known() && (!override.NeedsOptions() || len(field.Options) > 0) {
			field.Type = override
		}
	}
	field.Placeholder = extString(src.Extensions, extPlaceholder)
	if field.Type == schema.FieldTypeFile {
		field.Accept = extString(src.Extensions, extAccept)
	}
	field.Validation = validation(src, field.Type)

	imported := importedField{config: field, section: extString(src.Extensions, extSection)}
	imported.order, imported.hasOrder = extNumber(src.Extensions, extOrder)
	return imported, true
}

func stringType(format string) schema.FieldType {
	switch strings.ToLower(format) {
	case "email":
		return schema.FieldTypeEmail
	case "password":
		return schema.FieldTypePassword
	case "date", "date-time":
		return schema.FieldTypeDate
	case "binary":
		return schema.FieldTypeFile
	default:
		return schema.FieldTypeText
	}
}

func itemsSchema(src *openapi3.Schema) *openapi3.Schema {
	if src.Items == nil {
		return nil
	}
	return src.Items.Value
}

func validation(src *openapi3.Schema, t schema.FieldType) *schema.Validation {
	v := &schema.Validation{}
	switch t {
	case schema.FieldTypeNumber:
		if src.Min != nil {
			v.Min = schema.Float(*src.Min)
		}
		if src.Max != nil {
			v.Max = schema.Float(*src.Max)
		}
	case schema.FieldTypeCheckbox, schema.FieldTypeFile:
		if src.MinItems > 0 {
			v.MinLength = schema.Int(clampInt(src.MinItems))
		}
		if src.MaxItems != nil {
			v.MaxLength = schema.Int(clampInt(*src.MaxItems))
		}
	case schema.FieldTypeSelect, schema.FieldTypeRadio, schema.FieldTypeDate:
	default:
		if src.MinLength > 0 {
			v.MinLength = schema.Int(clampInt(src.MinLength))
		}
		if src.MaxLength != nil {
			v.MaxLength = schema.Int(clampInt(*src.MaxLength))
		}
		v.Pattern = strings.TrimSpace(src.Pattern)
	}
	if v.IsZero() {
		return nil
	}
	return v
}

func clampInt(n uint64) int {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

func enumOptions(values []any) []schema.Option {
	out := make([]schema.Option, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		if value == nil {
			continue
		}
		s := fmt.Sprint(value)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, schema.Option{Value: s})
	}
	return out
}

func extString(ext map[string]any, key string) string {
	raw, ok := ext[key]
	if !ok {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.RawMessage:
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func extNumber(ext map[string]any, key string) (float64, bool) {
	raw, ok := ext[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case json.RawMessage:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// assemble builds a flat schema when no field names a section, and a
// sectioned one otherwise. Sections appear in the order their first field
// does.
func assemble(fields []importedField, defaultSection string) (schema.Schema, error) {
	sectioned := false
	for _, f := range fields {
		if f.section != "" {
			sectioned = true
			break
		}
	}
	if !sectioned {
		configs := make([]schema.FieldConfig, 0, len(fields))
		for _, f := range fields {
			configs = append(configs, f.config)
		}
		return schema.Flat(configs...)
	}

	var order []string
	grouped := make(map[string][]schema.FieldConfig)
	for _, f := range fields {
		name := f.section
		if name == "" {
			name = defaultSection
		}
		if _, ok := grouped[name]; !ok {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], f.config)
	}
	sections := make([]schema.Section, 0, len(order))
	for _, name := range order {
		sections = append(sections, schema.Section{Name: name, Fields: grouped[name]})
	}
	return schema.Sectioned(sections...)
}
