// Package rules compiles a field's declarative constraints into an ordered
// rule list and reports the first failure.
package rules

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-formkit/pkg/rules/expr"
	"github.com/goliatone/go-formkit/pkg/schema"
)

// EmailPattern is enforced on every email field in addition to any pattern
// the field declares.
const EmailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`

var emailRe = regexp.MustCompile(EmailPattern)

// Violation describes a single failed rule.
type Violation struct {
	Field   string
	Kind    Kind
	Message string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("rules: %s: %s", v.Field, v.Message)
}

// EmptyFunc decides whether a value counts as absent.
type EmptyFunc func(value any) bool

// Option customises Compile.
type Option func(*config)

type config struct {
	messages   Messages
	translator Translator
	locale     string
	empty      EmptyFunc
}

// WithMessages overrides catalogue entries.
func WithMessages(m Messages) Option {
	return func(c *config) {
		c.messages = c.messages.Merge(m)
	}
}

// WithTranslator localises catalogue entries.
func WithTranslator(t Translator, locale string) Option {
	return func(c *config) {
		c.translator = t
		c.locale = locale
	}
}

// WithEmptyFunc replaces the presence check used by required and by the
// skip-when-empty logic.
func WithEmptyFunc(fn EmptyFunc) Option {
	return func(c *config) {
		if fn != nil {
			c.empty = fn
		}
	}
}

type checkFunc func(value any, values map[string]any) *Violation

type rule struct {
	kind Kind
	// skipEmpty rules only run against present values.
	skipEmpty bool
	check     checkFunc
}

// RuleSet is the compiled, ordered rule list for one field. It is immutable
// and safe for concurrent use.
type RuleSet struct {
	field schema.FieldConfig
	rules []rule
	empty EmptyFunc
	fmtr  formatter
}

// Compile builds the rule list for field in this order: required, minLength,
// maxLength, min, max, pattern, email, custom, expression.
func Compile(field schema.FieldConfig, opts ...Option) (RuleSet, error) {
	cfg := config{messages: DefaultMessages(), empty: IsEmpty}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	fmtr := formatter{messages: cfg.messages, translator: cfg.translator, locale: cfg.locale}
	label := field.DisplayLabel()
	name := field.Name

	fail := func(kind Kind, msg string) *Violation {
		return &Violation{Field: name, Kind: kind, Message: msg}
	}

	rs := RuleSet{field: field, empty: cfg.empty, fmtr: fmtr}

	if field.Required {
		empty := cfg.empty
		rs.rules = append(rs.rules, rule{kind: KindRequired, check: func(value any, _ map[string]any) *Violation {
			if empty(value) {
				return fail(KindRequired, fmtr.format(string(KindRequired), label, ""))
			}
			return nil
		}})
	}

	v := field.Validation
	if v == nil {
		v = &schema.Validation{}
	}

	if v.MinLength != nil {
		bound := *v.MinLength
		rs.rules = append(rs.rules, rule{kind: KindMinLength, skipEmpty: true, check: func(value any, _ map[string]any) *Violation {
			n, isList := length(value)
			if n >= bound {
				return nil
			}
			key := string(KindMinLength)
			if isList {
				key = keyMinItems
			}
			return fail(KindMinLength, fmtr.format(key, label, formatInt(bound)))
		}})
	}
	if v.MaxLength != nil {
		bound := *v.MaxLength
		rs.rules = append(rs.rules, rule{kind: KindMaxLength, skipEmpty: true, check: func(value any, _ map[string]any) *Violation {
			n, isList := length(value)
			if n <= bound {
				return nil
			}
			key := string(KindMaxLength)
			if isList {
				key = keyMaxItems
			}
			return fail(KindMaxLength, fmtr.format(key, label, formatInt(bound)))
		}})
	}
	if v.Min != nil {
		bound := *v.Min
		rs.rules = append(rs.rules, rule{kind: KindMin, skipEmpty: true, check: func(value any, _ map[string]any) *Violation {
			num, ok := number(value)
			if !ok {
				return fail(KindType, fmtr.format(keyNumber, label, ""))
			}
			if num < bound {
				return fail(KindMin, fmtr.format(string(KindMin), label, formatFloat(bound)))
			}
			return nil
		}})
	}
	if v.Max != nil {
		bound := *v.Max
		rs.rules = append(rs.rules, rule{kind: KindMax, skipEmpty: true, check: func(value any, _ map[string]any) *Violation {
			num, ok := number(value)
			if !ok {
				return fail(KindType, fmtr.format(keyNumber, label, ""))
			}
			if num > bound {
				return fail(KindMax, fmtr.format(string(KindMax), label, formatFloat(bound)))
			}
			return nil
		}})
	}
	if v.Pattern != "" {
		re, err := compilePattern(v.Pattern)
		if err != nil {
			return RuleSet{}, fmt.Errorf("rules: field %q: %w: %v", name, schema.ErrInvalidPattern, err)
		}
		msg := v.Message
		rs.rules = append(rs.rules, rule{kind: KindPattern, skipEmpty: true, check: func(value any, _ map[string]any) *Violation {
			for _, s := range texts(value) {
				if !re.MatchString(s) {
					if strings.TrimSpace(msg) != "" {
						return fail(KindPattern, msg)
					}
					return fail(KindPattern, fmtr.format(string(KindPattern), label, ""))
				}
			}
			return nil
		}})
	}
	if field.Type == schema.FieldTypeEmail {
		rs.rules = append(rs.rules, rule{kind: KindEmail, skipEmpty: true, check: func(value any, _ map[string]any) *Violation {
			for _, s := range texts(value) {
				if !emailRe.MatchString(s) {
					return fail(KindEmail, fmtr.format(string(KindEmail), label, ""))
				}
			}
			return nil
		}})
	}
	if v.Custom != nil {
		custom := v.Custom
		rs.rules = append(rs.rules, rule{kind: KindCustom, check: func(value any, _ map[string]any) (violation *Violation) {
			defer func() {
				if r := recover(); r != nil {
					violation = fail(KindCustom, fmtr.format(string(KindCustom), label, ""))
				}
			}()
			err := custom(value)
			switch {
			case err == nil:
				return nil
			case errors.Is(err, schema.ErrInvalid):
				return fail(KindCustom, fmtr.format(string(KindCustom), label, ""))
			default:
				return fail(KindCustom, err.Error())
			}
		}})
	}
	if v.Rule != nil && strings.TrimSpace(v.Rule.Expr) != "" {
		prog, err := expr.Compile(v.Rule.Expr)
		if err != nil {
			return RuleSet{}, fmt.Errorf("rules: field %q: %w", name, err)
		}
		msg := v.Rule.Message
		rs.rules = append(rs.rules, rule{kind: KindCustom, check: func(value any, values map[string]any) *Violation {
			ok, err := prog.Eval(expr.Env{Value: value, Values: values})
			if err == nil && ok {
				return nil
			}
			if strings.TrimSpace(msg) != "" {
				return fail(KindCustom, msg)
			}
			return fail(KindCustom, fmtr.format(string(KindCustom), label, ""))
		}})
	}

	return rs, nil
}

// MustCompile panics when field carries an invalid pattern or expression.
func MustCompile(field schema.FieldConfig, opts ...Option) RuleSet {
	rs, err := Compile(field, opts...)
	if err != nil {
		panic(err)
	}
	return rs
}

// Field returns the configuration the set was compiled from.
func (rs RuleSet) Field() schema.FieldConfig {
	return rs.field
}

// Message formats the catalogue entry for kind using this field's label.
func (rs RuleSet) Message(kind Kind) string {
	return rs.fmtr.format(string(kind), rs.field.DisplayLabel(), "")
}

// Kinds lists the compiled rules in evaluation order.
func (rs RuleSet) Kinds() []Kind {
	out := make([]Kind, 0, len(rs.rules))
	for _, r := range rs.rules {
		out = append(out, r.kind)
	}
	return out
}

// Check returns the first failing rule, or nil. values carries the sibling
// field values for expression rules and may be nil.
func (rs RuleSet) Check(value any, values map[string]any) *Violation {
	empty := rs.isEmpty(value)
	for _, r := range rs.rules {
		if r.skipEmpty && empty {
			continue
		}
		if violation := r.check(value, values); violation != nil {
			return violation
		}
	}
	return nil
}

// CheckAll evaluates every rule and returns all failures.
func (rs RuleSet) CheckAll(value any, values map[string]any) []Violation {
	empty := rs.isEmpty(value)
	var out []Violation
	for _, r := range rs.rules {
		if r.skipEmpty && empty {
			continue
		}
		if violation := r.check(value, values); violation != nil {
			out = append(out, *violation)
		}
	}
	return out
}

func (rs RuleSet) isEmpty(value any) bool {
	if rs.empty == nil {
		return IsEmpty(value)
	}
	return rs.empty(value)
}

// IsEmpty is the default presence check: nil, whitespace-only strings, empty
// slices and maps, and false are absent. Zero numbers are present.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case *float64:
		return v == nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + pattern + `)$`)
}

// length counts runes for scalars and items for lists.
func length(value any) (int, bool) {
	switch v := value.(type) {
	case string:
		return utf8.RuneCountInString(v), false
	case []string:
		return len(v), true
	case []any:
		return len(v), true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len(), true
	}
	return utf8.RuneCountInString(text(value)), false
}

// number reads value as a finite float64. NaN and the infinities report
// false so range rules fail them as type errors.
func number(value any) (float64, bool) {
	f, ok := rawNumber(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func rawNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case *float64:
		if v == nil {
			return 0, false
		}
		return *v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func texts(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, text(item))
		}
		return out
	default:
		return []string{text(value)}
	}
}

func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return formatFloat(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(value)
	}
}
