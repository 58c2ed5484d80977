package calc

import (
	"errors"
	"io"
	"strings"
)

const (
	// DefaultPrecision is the display precision of a new session.
	DefaultPrecision = 6
	// MinPrecision and MaxPrecision bound the display precision.
	MinPrecision = 0
	MaxPrecision = 20
)

// StepKind classifies the outcome of one call to Session.Next.
type StepKind int

const (
	// StepValue is an evaluated constant declaration, assignment, or
	// bare expression; the Step carries its value.
	StepValue StepKind = iota
	// StepQuit is a request to end the session.
	StepQuit
	// StepEOF indicates the input is exhausted.
	StepEOF
	// StepHelp is a request for the help text.
	StepHelp
	// StepShowPrecision and StepSetPrecision report and change the
	// display precision; the Step carries the (new) setting.
	StepShowPrecision
	StepSetPrecision
	// StepShowEnv is a request to display the environment.
	StepShowEnv
	// StepSaveEnv and StepLoadEnv are requests to persist or restore
	// the environment; the Step carries the filename. The session
	// performs no file I/O itself.
	StepSaveEnv
	StepLoadEnv
)

// Step is the outcome of one statement or command.
type Step struct {
	Kind StepKind
	// Value is the result of a StepValue statement.
	Value float64
	// Precision accompanies StepShowPrecision and StepSetPrecision.
	Precision int
	// File is the filename of a StepSaveEnv or StepLoadEnv command.
	File string
}

// Session is one interactive calculator run: a token stream, the
// environment of named values, and the display precision. It is not
// safe to use a Session concurrently.
type Session struct {
	ts    *tokenStream
	env   *Env
	prec  int
	depth int
}

// NewSession creates a session reading statements from src.
func NewSession(src io.RuneScanner) *Session {
	return &Session{
		ts:   newTokenStream(src),
		env:  NewEnv(),
		prec: DefaultPrecision,
	}
}

// Env returns the session's environment.
func (s *Session) Env() *Env {
	return s.env
}

// Precision returns the display precision. The session itself always
// computes full-precision values; the setting only drives formatting.
func (s *Session) Precision() int {
	return s.prec
}

// SetPrecision sets the display precision. Returns a PrecisionError if
// digits is outside [MinPrecision, MaxPrecision].
func (s *Session) SetPrecision(digits int) error {
	if digits < MinPrecision || digits > MaxPrecision {
		return &PrecisionError{Digits: digits}
	}
	s.prec = digits
	return nil
}

// Next reads and executes one statement or command, skipping leading
// statement terminators. On error the statement has been abandoned and
// the stream resynchronized at the next statement boundary; the
// session remains usable and the environment holds at most the writes
// of completed statements.
func (s *Session) Next() (Step, error) {
	t, err := s.ts.get()
	for err == nil && t.kind == tokenPrint {
		t, err = s.ts.get()
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Step{Kind: StepEOF}, nil
		}
		s.ts.ignore()
		return Step{}, err
	}
	switch t.kind {
	case tokenEOF:
		return Step{Kind: StepEOF}, nil
	case tokenQuit:
		return Step{Kind: StepQuit}, nil
	case tokenHelp:
		return Step{Kind: StepHelp}, nil
	case tokenPrecision:
		return Step{Kind: StepShowPrecision, Precision: s.prec}, nil
	case tokenSetPrecision:
		digits, err := s.setPrecision()
		if err != nil {
			s.ts.ignore()
			return Step{}, err
		}
		return Step{Kind: StepSetPrecision, Precision: digits}, nil
	case tokenShowEnv:
		return Step{Kind: StepShowEnv}, nil
	case tokenSaveEnv:
		return Step{Kind: StepSaveEnv, File: s.ts.takeFilename()}, nil
	case tokenLoadEnv:
		return Step{Kind: StepLoadEnv, File: s.ts.takeFilename()}, nil
	}
	s.ts.unget(t)
	v, err := s.statement()
	if err != nil {
		s.ts.ignore()
		return Step{}, err
	}
	return Step{Kind: StepValue, Value: v}, nil
}

// statement classifies one statement with at most two tokens of
// lookahead, pushes the tokens back, and routes to the matching
// production. A leading name is an assignment exactly when the one
// token after it is '='.
func (s *Session) statement() (float64, error) {
	t, err := s.ts.get()
	if err != nil {
		return 0, err
	}
	switch t.kind {
	case tokenConst:
		return s.constDecl()
	case tokenName:
		tt, err := s.ts.get()
		if err != nil {
			return 0, err
		}
		s.ts.unget(t)
		s.ts.unget(tt)
		if tt.isSymbol('=') {
			return s.assignment()
		}
		return s.expression()
	default:
		s.ts.unget(t)
		return s.expression()
	}
}

// assignment parses "name = expression". The name must not be a
// constant; the check precedes the right-hand side so that a rejected
// assignment evaluates nothing. An undeclared name is declared
// non-const by its first assignment.
func (s *Session) assignment() (float64, error) {
	t, err := s.ts.get()
	if err != nil {
		return 0, err
	}
	if t.kind != tokenName {
		return 0, &SyntaxError{Col: t.pos, Msg: "name expected in assignment"}
	}
	name := t.name
	if s.env.IsConst(name) {
		return 0, &ConstAssignError{Name: name}
	}
	t, err = s.ts.get()
	if err != nil {
		return 0, s.endedEarly(err)
	}
	if !t.isSymbol('=') {
		return 0, &SyntaxError{Col: t.pos, Msg: "'=' missing in assignment of " + name}
	}
	v, err := s.expression()
	if err != nil {
		return 0, err
	}
	if s.env.IsDeclared(name) {
		if err := s.env.Assign(name, v); err != nil {
			return 0, err
		}
	} else {
		s.env.Define(name, v, false)
	}
	return v, nil
}

// constDecl parses "const name = expression". Redeclaring any existing
// name, constant or not, is an error.
func (s *Session) constDecl() (float64, error) {
	t, err := s.ts.get()
	if err != nil {
		return 0, s.endedEarly(err)
	}
	if t.kind != tokenName {
		return 0, &SyntaxError{Col: t.pos, Msg: "name expected in constant declaration"}
	}
	name := t.name
	if s.env.IsDeclared(name) {
		return 0, &RedeclaredError{Name: name}
	}
	t, err = s.ts.get()
	if err != nil {
		return 0, s.endedEarly(err)
	}
	if !t.isSymbol('=') {
		return 0, &SyntaxError{Col: t.pos, Msg: "'=' missing in declaration of " + name}
	}
	v, err := s.expression()
	if err != nil {
		return 0, err
	}
	s.env.Define(name, v, true)
	return v, nil
}

// setPrecision parses the digits operand of "set precision".
func (s *Session) setPrecision() (int, error) {
	t, err := s.ts.get()
	if err != nil {
		return 0, s.endedEarly(err)
	}
	if t.kind != tokenNumber {
		return 0, &SyntaxError{Col: t.pos, Msg: "number expected after 'set precision'"}
	}
	digits := int(t.val)
	if err := s.SetPrecision(digits); err != nil {
		return 0, err
	}
	return digits, nil
}

// EvalString is a shortcut to evaluate a single statement in a fresh
// session and return its value.
func EvalString(src string) (float64, error) {
	s := NewSession(strings.NewReader(src))
	step, err := s.Next()
	if err != nil {
		return 0, err
	}
	if step.Kind != StepValue {
		return 0, &SyntaxError{Col: 1, Msg: "expression expected"}
	}
	return step.Value, nil
}
