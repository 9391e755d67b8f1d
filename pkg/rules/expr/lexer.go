package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenLt
	tokenLte
	tokenGt
	tokenGte
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isBreak(c byte) bool {
	return isSpace(c) || strings.IndexByte("()!=&|<>\"'", c) >= 0
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	peek := func(offset int) byte {
		if i+offset >= len(input) {
			return 0
		}
		return input[i+offset]
	}
	emit := func(kind tokenKind, raw string, width int) {
		tokens = append(tokens, token{kind: kind, raw: raw})
		i += width
	}

	for i < len(input) {
		ch := input[i]
		if isSpace(ch) {
			i++
			continue
		}

		switch ch {
		case '(':
			emit(tokenLParen, "(", 1)
		case ')':
			emit(tokenRParen, ")", 1)
		case '!':
			if peek(1) == '=' {
				emit(tokenNeq, "!=", 2)
			} else {
				emit(tokenNot, "!", 1)
			}
		case '=':
			if peek(1) != '=' {
				return nil, errors.New("unexpected '='; use '=='")
			}
			emit(tokenEq, "==", 2)
		case '<':
			if peek(1) == '=' {
				emit(tokenLte, "<=", 2)
			} else {
				emit(tokenLt, "<", 1)
			}
		case '>':
			if peek(1) == '=' {
				emit(tokenGte, ">=", 2)
			} else {
				emit(tokenGt, ">", 1)
			}
		case '&':
			if peek(1) != '&' {
				return nil, errors.New("unexpected '&'; use '&&'")
			}
			emit(tokenAnd, "&&", 2)
		case '|':
			if peek(1) != '|' {
				return nil, errors.New("unexpected '|'; use '||'")
			}
			emit(tokenOr, "||", 2)
		case '"', '\'':
			value, width, err := scanString(input[i:])
			if err != nil {
				return nil, err
			}
			emit(tokenString, value, width)
		default:
			start := i
			for i < len(input) && !isBreak(input[i]) {
				i++
			}
			raw := input[start:i]
			switch strings.ToLower(raw) {
			case "true", "false":
				tokens = append(tokens, token{kind: tokenBool, raw: strings.ToLower(raw)})
			case "null", "nil":
				tokens = append(tokens, token{kind: tokenNull, raw: "null"})
			default:
				if looksLikeNumber(raw) {
					if _, err := strconv.ParseFloat(raw, 64); err != nil {
						return nil, fmt.Errorf("invalid number %q", raw)
					}
					tokens = append(tokens, token{kind: tokenNumber, raw: raw})
				} else {
					tokens = append(tokens, token{kind: tokenIdentifier, raw: raw})
				}
			}
		}
	}
	return tokens, nil
}

// scanString reads a quoted literal at the start of s and returns the
// unquoted value and the number of bytes consumed.
func scanString(s string) (string, int, error) {
	quote := s[0]
	escaped := false
	for j := 1; j < len(s); j++ {
		c := s[j]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c != quote {
			continue
		}
		body := s[1:j]
		if quote == '\'' {
			body = strings.ReplaceAll(body, `\'`, `'`)
			body = strings.ReplaceAll(body, `"`, `\"`)
		}
		value, err := strconv.Unquote(`"` + body + `"`)
		if err != nil {
			return "", 0, fmt.Errorf("invalid string literal: %w", err)
		}
		return value, j + 1, nil
	}
	return "", 0, errors.New("unterminated string literal")
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	ch := raw[0]
	if ch >= '0' && ch <= '9' {
		return true
	}
	return (ch == '-' || ch == '+' || ch == '.') && len(raw) > 1
}
