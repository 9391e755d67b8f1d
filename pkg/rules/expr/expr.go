// Package expr compiles the small boolean language used by declarative
// validation rules.
//
// Supported forms:
//   - truthiness: `value`, `!newsletter`
//   - comparisons: `value == "yes"`, `value != password`, `value >= guests`
//   - composition: `a && b`, `a || b`, parentheses
//
// The identifier `value` is the field under validation; every other
// identifier reads a sibling field from Env.Values, with dot-path traversal
// into nested maps. Strings must be quoted; a bare identifier on either side
// of an operator is always a field reference.
package expr

import (
	"errors"
	"fmt"
	"strings"
)

// SelfIdent names the field being validated inside an expression.
const SelfIdent = "value"

// ErrSyntax wraps every compile failure.
var ErrSyntax = errors.New("expr: syntax error")

// Env is the evaluation input.
type Env struct {
	Value  any
	Values map[string]any
}

// Program is a compiled expression. It is immutable and safe for concurrent
// use.
type Program struct {
	source string
	root   node
}

// Compile parses src. An empty source compiles to a program that always
// passes.
func Compile(src string) (*Program, error) {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return &Program{}, nil
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	root, err := parse(tokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return &Program{source: trimmed, root: root}, nil
}

// MustCompile panics on syntax errors.
func MustCompile(src string) *Program {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the trimmed source.
func (p *Program) String() string {
	if p == nil {
		return ""
	}
	return p.source
}

// Eval runs the program against env.
func (p *Program) Eval(env Env) (bool, error) {
	if p == nil || p.root == nil {
		return true, nil
	}
	return p.root.eval(env)
}

// Idents lists the sibling field names the program reads, excluding `value`.
func (p *Program) Idents() []string {
	if p == nil || p.root == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	p.root.walk(func(ident string) {
		if ident == SelfIdent {
			return
		}
		if _, ok := seen[ident]; ok {
			return
		}
		seen[ident] = struct{}{}
		out = append(out, ident)
	})
	return out
}
