package calc

import (
	"math"
	"strconv"
)

// token is one classified lexical unit. A token is immutable once
// produced by the stream; exactly one of val, sym, name, and fn is
// meaningful depending on kind.
type token struct {
	kind tokenKind
	sym  rune    // tokenSymbol
	val  float64 // tokenNumber
	name string  // tokenName, tokenFunc
	fn   mathFunc
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokenNumber:
		return t.kind.String() + ":" + strconv.FormatFloat(t.val, 'g', -1, 64) + "@" + strconv.Itoa(t.pos)
	case tokenSymbol:
		return t.kind.String() + ":" + string(t.sym) + "@" + strconv.Itoa(t.pos)
	case tokenName, tokenFunc:
		return t.kind.String() + ":" + t.name + "@" + strconv.Itoa(t.pos)
	default:
		return t.kind.String() + "@" + strconv.Itoa(t.pos)
	}
}

// isSymbol reports whether t is the operator symbol r.
func (t token) isSymbol(r rune) bool {
	return t.kind == tokenSymbol && t.sym == r
}

type tokenKind int8

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenPrint is the statement terminator ';'.
	tokenPrint
	// tokenNumber is a floating-point literal.
	tokenNumber
	// tokenName is a variable or constant name.
	tokenName
	// tokenSymbol is a single-character operator: ( ) + - * / % = ,
	tokenSymbol
	// tokenFunc is a reference to a built-in function.
	tokenFunc
	// tokenQuit ends the session.
	tokenQuit
	// tokenConst begins a constant declaration.
	tokenConst
	// tokenHelp requests the help text.
	tokenHelp
	// tokenPrecision requests the current display precision.
	tokenPrecision
	// tokenSetPrecision is the "set precision" phrase.
	tokenSetPrecision
	// tokenShowEnv is the "show env" phrase.
	tokenShowEnv
	// tokenSaveEnv and tokenLoadEnv are the "save env" and "load env"
	// phrases. The stream records the filename that follows them.
	tokenSaveEnv
	tokenLoadEnv
)

func (k tokenKind) String() string {
	switch k {
	case tokenNone:
		return "None"
	case tokenEOF:
		return "EOF"
	case tokenPrint:
		return "Print"
	case tokenNumber:
		return "Number"
	case tokenName:
		return "Name"
	case tokenSymbol:
		return "Symbol"
	case tokenFunc:
		return "Func"
	case tokenQuit:
		return "Quit"
	case tokenConst:
		return "Const"
	case tokenHelp:
		return "Help"
	case tokenPrecision:
		return "Precision"
	case tokenSetPrecision:
		return "SetPrecision"
	case tokenShowEnv:
		return "ShowEnv"
	case tokenSaveEnv:
		return "SaveEnv"
	case tokenLoadEnv:
		return "LoadEnv"
	default:
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// mathFunc identifies a built-in function. Every function except pow
// takes exactly one argument; pow takes exactly two.
type mathFunc int8

const (
	fnNone mathFunc = iota
	fnSin
	fnCos
	fnTan
	fnAsin
	fnAcos
	fnAtan
	fnExp
	fnLn
	fnLog10
	fnLog2
	fnPow
)

// funcNames maps a scanned identifier to its function.
var funcNames = map[string]mathFunc{
	"sin":   fnSin,
	"cos":   fnCos,
	"tan":   fnTan,
	"asin":  fnAsin,
	"acos":  fnAcos,
	"atan":  fnAtan,
	"exp":   fnExp,
	"ln":    fnLn,
	"log10": fnLog10,
	"log2":  fnLog2,
	"pow":   fnPow,
}

// unary returns the implementation of a one-argument function, or
// false for pow, which is the single two-argument function.
func (f mathFunc) unary() (func(float64) float64, bool) {
	switch f {
	case fnSin:
		return math.Sin, true
	case fnCos:
		return math.Cos, true
	case fnTan:
		return math.Tan, true
	case fnAsin:
		return math.Asin, true
	case fnAcos:
		return math.Acos, true
	case fnAtan:
		return math.Atan, true
	case fnExp:
		return math.Exp, true
	case fnLn:
		return math.Log, true
	case fnLog10:
		return math.Log10, true
	case fnLog2:
		return math.Log2, true
	default:
		return nil, false
	}
}
