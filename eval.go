package calc

import (
	"errors"
	"io"
	"math"
)

// maxDepth bounds the recursion of the expression grammar so that a
// pathological input reports a SyntaxError instead of exhausting the
// stack.
const maxDepth = 500

// expression := term (('+' | '-') term)*
//
// Left-associative, evaluated left to right. Evaluation is eager: the
// result of each production is a float64, never a retained tree.
func (s *Session) expression() (float64, error) {
	left, err := s.term()
	if err != nil {
		return 0, err
	}
	for {
		t, err := s.ts.get()
		if err != nil {
			return 0, err
		}
		switch {
		case t.isSymbol('+'):
			r, err := s.term()
			if err != nil {
				return 0, err
			}
			left += r
		case t.isSymbol('-'):
			r, err := s.term()
			if err != nil {
				return 0, err
			}
			left -= r
		default:
			s.ts.unget(t)
			return left, nil
		}
	}
}

// term := primary (('*' | '/' | '%') primary)*
func (s *Session) term() (float64, error) {
	left, err := s.primary()
	if err != nil {
		return 0, err
	}
	for {
		t, err := s.ts.get()
		if err != nil {
			return 0, err
		}
		switch {
		case t.isSymbol('*'):
			r, err := s.primary()
			if err != nil {
				return 0, err
			}
			left *= r
		case t.isSymbol('/'):
			r, err := s.primary()
			if err != nil {
				return 0, err
			}
			if r == 0 {
				return 0, &DivideByZeroError{Op: '/'}
			}
			left /= r
		case t.isSymbol('%'):
			r, err := s.primary()
			if err != nil {
				return 0, err
			}
			if r == 0 {
				return 0, &DivideByZeroError{Op: '%'}
			}
			left = math.Mod(left, r)
		default:
			s.ts.unget(t)
			return left, nil
		}
	}
}

// primary := number | name | function-call | '(' expression ')'
//          | '-' primary | '+' primary
//
// Unary operators bind tighter than any binary operator and recurse,
// so "- - 3" is 3.
func (s *Session) primary() (float64, error) {
	if s.depth >= maxDepth {
		return 0, &SyntaxError{Col: s.ts.rune, Msg: "expression nested too deeply"}
	}
	s.depth++
	defer func() { s.depth-- }()
	t, err := s.ts.get()
	if err != nil {
		return 0, s.endedEarly(err)
	}
	switch {
	case t.kind == tokenFunc:
		return s.functionCall(t)
	case t.isSymbol('('):
		v, err := s.expression()
		if err != nil {
			return 0, err
		}
		c, err := s.ts.get()
		if err != nil {
			return 0, s.endedEarly(err)
		}
		if !c.isSymbol(')') {
			return 0, &SyntaxError{Col: c.pos, Msg: "')' expected"}
		}
		return v, nil
	case t.isSymbol('-'):
		v, err := s.primary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	case t.isSymbol('+'):
		return s.primary()
	case t.kind == tokenNumber:
		return t.val, nil
	case t.kind == tokenName:
		return s.env.Lookup(t.name)
	}
	return 0, &SyntaxError{Col: t.pos, Msg: "primary expected"}
}

// functionCall parses and applies a built-in function call given its
// already-scanned function token.
//
// A one-argument call of pow and a two-argument call of any other
// function are arity errors. In the two-argument case, both arguments
// and the closing parenthesis are consumed before the call is
// rejected.
func (s *Session) functionCall(ft token) (float64, error) {
	t, err := s.ts.get()
	if err != nil {
		return 0, s.endedEarly(err)
	}
	if !t.isSymbol('(') {
		return 0, &SyntaxError{Col: t.pos, Msg: "'(' expected after " + ft.name}
	}
	x, err := s.expression()
	if err != nil {
		return 0, err
	}
	t, err = s.ts.get()
	if err != nil {
		return 0, s.endedEarly(err)
	}
	if t.isSymbol(')') {
		if f, ok := ft.fn.unary(); ok {
			return f(x), nil
		}
		return 0, &ArityError{Func: ft.name, Need: 2}
	}
	if !t.isSymbol(',') {
		return 0, &SyntaxError{Col: t.pos, Msg: "')' expected"}
	}
	y, err := s.expression()
	if err != nil {
		return 0, err
	}
	t, err = s.ts.get()
	if err != nil {
		return 0, s.endedEarly(err)
	}
	if !t.isSymbol(')') {
		return 0, &SyntaxError{Col: t.pos, Msg: "')' expected"}
	}
	if ft.fn == fnPow {
		return math.Pow(x, y), nil
	}
	return 0, &ArityError{Func: ft.name, Need: 1}
}

// endedEarly converts end-of-input into a syntax error, since a
// statement cannot end in the middle of an expression.
func (s *Session) endedEarly(err error) error {
	if errors.Is(err, io.EOF) {
		return &SyntaxError{Col: s.ts.rune, Msg: "unexpected end of input"}
	}
	return err
}
