package expr

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type node interface {
	eval(env Env) (bool, error)
	walk(fn func(ident string))
}

type orNode struct{ left, right node }

func (n orNode) eval(env Env) (bool, error) {
	ok, err := n.left.eval(env)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(env)
}

func (n orNode) walk(fn func(string)) { n.left.walk(fn); n.right.walk(fn) }

type andNode struct{ left, right node }

func (n andNode) eval(env Env) (bool, error) {
	ok, err := n.left.eval(env)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(env)
}

func (n andNode) walk(fn func(string)) { n.left.walk(fn); n.right.walk(fn) }

type notNode struct{ inner node }

func (n notNode) eval(env Env) (bool, error) {
	ok, err := n.inner.eval(env)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (n notNode) walk(fn func(string)) { n.inner.walk(fn) }

type operandKind int

const (
	operandRef operandKind = iota
	operandString
	operandNumber
	operandBool
	operandNull
)

type operand struct {
	kind operandKind
	raw  string
}

func (o operand) resolve(env Env) any {
	switch o.kind {
	case operandRef:
		v, _ := lookup(env, o.raw)
		return v
	case operandString:
		return o.raw
	case operandNumber:
		f, _ := strconv.ParseFloat(o.raw, 64)
		return f
	case operandBool:
		return o.raw == "true"
	default:
		return nil
	}
}

type truthyNode struct{ operand operand }

func (n truthyNode) eval(env Env) (bool, error) {
	return truthy(n.operand.resolve(env)), nil
}

func (n truthyNode) walk(fn func(string)) {
	if n.operand.kind == operandRef {
		fn(n.operand.raw)
	}
}

type compareNode struct {
	left  operand
	op    tokenKind
	right operand
}

func (n compareNode) walk(fn func(string)) {
	if n.left.kind == operandRef {
		fn(n.left.raw)
	}
	if n.right.kind == operandRef {
		fn(n.right.raw)
	}
}

func (n compareNode) eval(env Env) (bool, error) {
	left := n.left.resolve(env)
	right := n.right.resolve(env)

	switch n.op {
	case tokenEq:
		return n.equal(left, right), nil
	case tokenNeq:
		return !n.equal(left, right), nil
	}

	l, lok := coerceNumber(left)
	r, rok := coerceNumber(right)
	if !lok || !rok {
		// Ordering against a missing or non-numeric value never holds.
		return false, nil
	}
	switch n.op {
	case tokenLt:
		return l < r, nil
	case tokenLte:
		return l <= r, nil
	case tokenGt:
		return l > r, nil
	case tokenGte:
		return l >= r, nil
	default:
		return false, fmt.Errorf("expr: unsupported operator")
	}
}

// equal coerces toward the literal side when one is present, mirroring how
// form values arrive as strings.
func (n compareNode) equal(left, right any) bool {
	kind := n.right.kind
	if kind == operandRef {
		kind = n.left.kind
	}
	switch kind {
	case operandNull:
		return isNull(left) == isNull(right)
	case operandBool:
		l, _ := coerceBool(left)
		r, _ := coerceBool(right)
		return l == r
	case operandNumber:
		l, lok := coerceNumber(left)
		r, rok := coerceNumber(right)
		return lok && rok && l == r
	case operandString:
		return coerceString(left) == coerceString(right)
	default:
		if isNull(left) || isNull(right) {
			return isNull(left) && isNull(right)
		}
		if ls, ok := left.(string); ok {
			return ls == coerceString(right)
		}
		if rs, ok := right.(string); ok {
			return rs == coerceString(left)
		}
		return reflect.DeepEqual(left, right)
	}
}

func lookup(env Env, key string) (any, bool) {
	key = strings.TrimSpace(key)
	if key == SelfIdent {
		return env.Value, true
	}
	return lookupMap(env.Values, key)
}

func lookupMap(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || path == "" {
		return nil, false
	}
	if v, ok := values[path]; ok {
		return v, true
	}

	var current any = values
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := m[part]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func isNull(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	return false
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case []string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Slice {
			return rv.Len() > 0
		}
		return true
	}
}

func coerceBool(value any) (bool, bool) {
	switch v := value.(type) {
	case nil:
		return false, false
	case bool:
		return v, true
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed, true
		}
		return strings.TrimSpace(v) != "", true
	default:
		return truthy(value), true
	}
}

func coerceNumber(value any) (float64, bool) {
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
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}
