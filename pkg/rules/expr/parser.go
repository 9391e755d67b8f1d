package expr

import (
	"errors"
	"fmt"
)

type tokenStream struct {
	tokens []token
	pos    int
}

func parse(tokens []token) (node, error) {
	stream := &tokenStream{tokens: tokens}
	root, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return root, nil
}

func parseOr(stream *tokenStream) (node, error) {
	left, err := parseAnd(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenOr) {
		right, err := parseAnd(stream)
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func parseAnd(stream *tokenStream) (node, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenAnd) {
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func parseUnary(stream *tokenStream) (node, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (node, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, errors.New("missing closing ')'")
		}
		return inner, nil
	}

	left, err := stream.operand()
	if err != nil {
		return nil, err
	}

	if op, ok := stream.comparison(); ok {
		right, err := stream.operand()
		if err != nil {
			return nil, err
		}
		return compareNode{left: left, op: op, right: right}, nil
	}
	return truthyNode{operand: left}, nil
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) comparison() (tokenKind, bool) {
	if s.pos >= len(s.tokens) {
		return 0, false
	}
	switch kind := s.tokens[s.pos].kind; kind {
	case tokenEq, tokenNeq, tokenLt, tokenLte, tokenGt, tokenGte:
		s.pos++
		return kind, true
	default:
		return 0, false
	}
}

func (s *tokenStream) operand() (operand, error) {
	if s.pos >= len(s.tokens) {
		return operand{}, errors.New("unexpected end of expression")
	}
	tok := s.tokens[s.pos]
	s.pos++
	switch tok.kind {
	case tokenIdentifier:
		return operand{kind: operandRef, raw: tok.raw}, nil
	case tokenString:
		return operand{kind: operandString, raw: tok.raw}, nil
	case tokenNumber:
		return operand{kind: operandNumber, raw: tok.raw}, nil
	case tokenBool:
		return operand{kind: operandBool, raw: tok.raw}, nil
	case tokenNull:
		return operand{kind: operandNull}, nil
	default:
		return operand{}, fmt.Errorf("expected identifier or literal, got %q", tok.raw)
	}
}
