package widgets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formkit/pkg/schema"
)

// DateLayout is the wire format of date values.
const DateLayout = "2006-01-02"

// File describes one uploaded file. Content is kept out of JSON payloads.
type File struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
	Content     []byte `json:"-"`
}

func zeroString(schema.FieldConfig) any { return "" }

func zeroNil(schema.FieldConfig) any { return nil }

func zeroFiles(schema.FieldConfig) any { return []File{} }

func zeroChoice(field schema.FieldConfig) any {
	if field.MultiValued() {
		return []string{}
	}
	if field.Type == schema.FieldTypeCheckbox {
		return false
	}
	return ""
}

func coerceString(_ schema.FieldConfig, raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []string:
		if len(v) == 0 {
			return "", nil
		}
		return v[0], nil
	case []byte:
		return string(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case fmt.Stringer:
		return v.String(), nil
	case bool, int, int64, int32, float32, uint, uint64:
		return fmt.Sprint(v), nil
	default:
		return nil, fmt.Errorf("%w: %T is not text", ErrCoerce, raw)
	}
}

// coerceNumber normalises raw to a finite float64 or nil. NaN and the
// infinities parse without error but compare false against every bound,
// so they are rejected here.
func coerceNumber(_ schema.FieldConfig, raw any) (any, error) {
	v, err := parseNumber(raw)
	if err != nil {
		return nil, err
	}
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil, fmt.Errorf("%w: %v is not a finite number", ErrCoerce, raw)
	}
	return v, nil
}

func parseNumber(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case []string:
		if len(v) == 0 {
			return nil, nil
		}
		return parseNumber(v[0])
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrCoerce, v)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: %T is not a number", ErrCoerce, raw)
	}
}

func coerceDate(field schema.FieldConfig, raw any) (any, error) {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return "", nil
		}
		return v.Format(DateLayout), nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return "", nil
		}
		return v.Format(DateLayout), nil
	}
	s, err := coerceString(field, raw)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(s.(string))
	if trimmed == "" {
		return "", nil
	}
	if _, err := time.Parse(DateLayout, trimmed); err != nil {
		return nil, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrCoerce, trimmed)
	}
	return trimmed, nil
}

func coerceChoice(field schema.FieldConfig, raw any) (any, error) {
	if !field.MultiValued() {
		return coerceString(field, raw)
	}
	return coerceList(raw)
}

func coerceCheckbox(field schema.FieldConfig, raw any) (any, error) {
	if field.MultiValued() {
		return coerceList(raw)
	}
	switch v := raw.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		checked, err := truthyInput(v)
		if err != nil {
			return nil, err
		}
		return checked, nil
	case []string:
		for _, item := range v {
			if ok, _ := truthyInput(item); ok {
				return true, nil
			}
		}
		return false, nil
	case []any:
		for _, item := range v {
			if checked, _ := coerceCheckbox(field, item); checked == true {
				return true, nil
			}
		}
		return false, nil
	default:
		return nil, fmt.Errorf("%w: %T is not a checkbox state", ErrCoerce, raw)
	}
}

func truthyInput(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes", "checked":
		return true, nil
	case "", "off", "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q is not a checkbox state", ErrCoerce, s)
	}
}

func coerceList(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return compact(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{}, nil
		}
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, err := coerceString(schema.FieldConfig{}, item)
			if err != nil {
				return nil, err
			}
			out = append(out, s.(string))
		}
		return compact(out), nil
	default:
		return nil, fmt.Errorf("%w: %T is not a list", ErrCoerce, raw)
	}
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}

func coerceFiles(_ schema.FieldConfig, raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return []File{}, nil
	case []File:
		return append([]File{}, v...), nil
	case File:
		return []File{v}, nil
	case *File:
		if v == nil {
			return []File{}, nil
		}
		return []File{*v}, nil
	default:
		return nil, fmt.Errorf("%w: %T is not a file list", ErrCoerce, raw)
	}
}
