package calc

import "strconv"

// LexError indicates invalid input at the character level: a bad
// character, a malformed number, a malformed keyword phrase, or a
// missing filename. It implements InputError.
type LexError struct {
	// Col is the 1-based rune column where the bad input starts.
	Col int
	// Msg describes the problem.
	Msg string
}

func (err *LexError) Error() string {
	return errpos(err.Col, err.Msg)
}

func (err *LexError) Pos() int {
	return err.Col
}

// SyntaxError indicates that the parser required a token class that
// the input did not provide. It implements InputError.
type SyntaxError struct {
	// Col is the 1-based rune column of the offending token.
	Col int
	// Msg describes what was expected.
	Msg string
}

func (err *SyntaxError) Error() string {
	return errpos(err.Col, err.Msg)
}

func (err *SyntaxError) Pos() int {
	return err.Col
}

// UndefinedNameError is a lookup or assignment of a name that has
// never been declared.
type UndefinedNameError struct {
	// Name is the undeclared name.
	Name string
}

func (err *UndefinedNameError) Error() string {
	return "undefined name " + strconv.Quote(err.Name)
}

// ConstAssignError is an assignment to a declared constant.
type ConstAssignError struct {
	// Name is the constant's name.
	Name string
}

func (err *ConstAssignError) Error() string {
	return err.Name + ": constant cannot be modified"
}

// RedeclaredError is a constant declaration of a name that is already
// declared, whether as a variable or as a constant.
type RedeclaredError struct {
	// Name is the already-declared name.
	Name string
}

func (err *RedeclaredError) Error() string {
	return err.Name + " has already been defined"
}

// DivideByZeroError is a division or remainder with a zero right
// operand.
type DivideByZeroError struct {
	// Op is the operator, '/' or '%'.
	Op rune
}

func (err *DivideByZeroError) Error() string {
	return "divide by zero"
}

// ArityError is a call of a built-in function with the wrong number of
// arguments.
type ArityError struct {
	// Func is the function name.
	Func string
	// Need is the number of arguments the function requires.
	Need int
}

func (err *ArityError) Error() string {
	if err.Need == 2 {
		return err.Func + " needs two arguments"
	}
	return err.Func + " needs only one argument"
}

// PrecisionError is a display precision setting outside the supported
// range.
type PrecisionError struct {
	// Digits is the rejected setting.
	Digits int
}

func (err *PrecisionError) Error() string {
	return "precision must be between " + strconv.Itoa(MinPrecision) + " and " + strconv.Itoa(MaxPrecision) + ", not " + strconv.Itoa(err.Digits)
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Errors found while
// scanning or parsing a statement implement InputError; errors found
// while evaluating it do not.
type InputError interface {
	error
	// Pos returns the 1-based rune column of the input that caused
	// the error.
	Pos() int
}

var (
	_ InputError = (*LexError)(nil)
	_ InputError = (*SyntaxError)(nil)
)
