package calc

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/edwingeng/deque"
)

// tokenStream scans tokens from a character source. Tokens pushed back
// with unget are replayed in the order they were pushed, before any
// new input is scanned, so multiple pushbacks behave as a queue.
type tokenStream struct {
	src  io.RuneScanner
	buf  strings.Builder
	back deque.Deque
	rune int
	eof  bool
	// filename is set as a side effect of scanning a "save env" or
	// "load env" phrase.
	filename string
}

func newTokenStream(src io.RuneScanner) *tokenStream {
	return &tokenStream{
		src:  src,
		back: deque.NewDeque(),
		rune: 1,
	}
}

// unget pushes a token back onto the stream.
func (ts *tokenStream) unget(tok token) {
	ts.back.PushBack(tok)
}

// takeFilename returns the filename recorded by the most recent save
// or load phrase and clears it.
func (ts *tokenStream) takeFilename() string {
	name := ts.filename
	ts.filename = ""
	return name
}

// readRune reads a rune from the source and updates the stream's
// position info.
func (ts *tokenStream) readRune() (rune, error) {
	r, sz, err := ts.src.ReadRune()
	if sz > 0 {
		ts.rune++
	}
	return r, err
}

// unreadRune unreads a rune from the source and updates the stream's
// position info. Panics if unreading returns an error.
func (ts *tokenStream) unreadRune() {
	if err := ts.src.UnreadRune(); err != nil {
		panic(err)
	}
	ts.rune--
}

// get scans the next token, replaying pushed-back tokens first. The
// first time the end of the input is reached, the result is an EOF
// token with a nil error; subsequent calls return io.EOF.
func (ts *tokenStream) get() (token, error) {
	if !ts.back.Empty() {
		tok := ts.back.Front().(token)
		ts.back.PopFront()
		return tok, nil
	}
	if ts.eof {
		return token{}, io.EOF
	}
	defer ts.buf.Reset()
	tok := token{pos: ts.rune}
	for {
		r, err := ts.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				tok.kind = tokenEOF
				ts.eof = true
				return tok, nil
			}
			return tok, err
		}
		switch {
		case unicode.IsSpace(r):
			tok.pos++
			continue
		case r == ';':
			tok.kind = tokenPrint
			return tok, nil
		case strings.ContainsRune("()+-*/%=,", r):
			tok.kind = tokenSymbol
			tok.sym = r
			return tok, nil
		case '0' <= r && r <= '9', r == '.':
			ts.unreadRune()
			if err := ts.scanNumber(); err != nil {
				return tok, err
			}
			v, err := strconv.ParseFloat(ts.buf.String(), 64)
			if err != nil {
				return tok, &LexError{Col: tok.pos, Msg: "bad number " + strconv.Quote(ts.buf.String())}
			}
			tok.kind = tokenNumber
			tok.val = v
			return tok, nil
		case unicode.IsLetter(r):
			ts.unreadRune()
			if err := ts.scanName(); err != nil {
				return tok, err
			}
			return ts.classify(tok)
		default:
			return tok, &LexError{Col: tok.pos, Msg: "bad token " + strconv.Quote(string(r))}
		}
	}
}

// scanNumber scans a floating-point literal into the buffer.
func (ts *tokenStream) scanNumber() error {
	// dig and ed track digits before and after the exponent marker;
	// le is true exactly where an exponent sign is allowed.
	var dig, dot, e, le, ed bool
scan:
	for {
		r, err := ts.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		switch {
		case '0' <= r && r <= '9':
			ts.buf.WriteRune(r)
			if e {
				ed = true
			} else {
				dig = true
			}
			le = false
		case r == '.':
			ts.buf.WriteRune(r)
			if dot || e {
				return ts.numberError()
			}
			dot = true
		case r == 'e', r == 'E':
			ts.buf.WriteRune(r)
			if !dig || e {
				return ts.numberError()
			}
			e, le = true, true
		case (r == '+' || r == '-') && le:
			ts.buf.WriteRune(r)
			le = false
		default:
			ts.unreadRune()
			break scan
		}
	}
	if (!dig && !ed) || (e && !ed) {
		return ts.numberError()
	}
	return nil
}

func (ts *tokenStream) numberError() error {
	return &LexError{Col: ts.rune, Msg: "bad number " + strconv.Quote(ts.buf.String())}
}

// scanName scans an identifier into the buffer: a letter followed by
// letters and digits, greedily.
func (ts *tokenStream) scanName() error {
	for {
		r, err := ts.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// get unreads the rune that decides name scanning, so
				// at least one rune has been scanned.
				return nil
			}
			return err
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			ts.buf.WriteRune(r)
			continue
		}
		ts.unreadRune()
		return nil
	}
}

// classify turns the identifier in the buffer into a keyword, keyword
// phrase, function reference, or plain name token.
func (ts *tokenStream) classify(tok token) (token, error) {
	word := ts.buf.String()
	switch word {
	case "quit":
		tok.kind = tokenQuit
		return tok, nil
	case "const":
		tok.kind = tokenConst
		return tok, nil
	case "help":
		tok.kind = tokenHelp
		return tok, nil
	case "precision":
		tok.kind = tokenPrecision
		return tok, nil
	case "set":
		if err := ts.expectWord("precision", "set"); err != nil {
			return tok, err
		}
		tok.kind = tokenSetPrecision
		return tok, nil
	case "show":
		if err := ts.expectWord("env", "show"); err != nil {
			return tok, err
		}
		tok.kind = tokenShowEnv
		return tok, nil
	case "save", "load":
		if err := ts.expectWord("env", word); err != nil {
			return tok, err
		}
		name, err := ts.scanFilename(word)
		if err != nil {
			return tok, err
		}
		ts.filename = name
		if word == "save" {
			tok.kind = tokenSaveEnv
		} else {
			tok.kind = tokenLoadEnv
		}
		return tok, nil
	}
	if fn, ok := funcNames[word]; ok {
		tok.kind = tokenFunc
		tok.name = word
		tok.fn = fn
		return tok, nil
	}
	tok.kind = tokenName
	tok.name = word
	return tok, nil
}

// expectWord scans the next whitespace-separated word of letters and
// requires it to be want.
func (ts *tokenStream) expectWord(want, after string) error {
	col := ts.rune
	var b strings.Builder
	for {
		r, err := ts.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if unicode.IsSpace(r) {
			if b.Len() == 0 {
				col++
				continue
			}
			ts.unreadRune()
			break
		}
		if unicode.IsLetter(r) {
			b.WriteRune(r)
			continue
		}
		ts.unreadRune()
		break
	}
	if b.String() != want {
		return &LexError{Col: col, Msg: "expected '" + want + "' after '" + after + "'"}
	}
	return nil
}

// scanFilename scans the filename operand of a save or load phrase: a
// letter followed by letters, digits, '_', '.', and '-'.
func (ts *tokenStream) scanFilename(cmd string) (string, error) {
	col := ts.rune
	var b strings.Builder
	for {
		r, err := ts.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", &LexError{Col: col, Msg: "expected filename after '" + cmd + "'"}
			}
			return "", err
		}
		if unicode.IsSpace(r) {
			col++
			continue
		}
		if !unicode.IsLetter(r) {
			ts.unreadRune()
			return "", &LexError{Col: col, Msg: "expected filename after '" + cmd + "'"}
		}
		b.WriteRune(r)
		break
	}
	for {
		r, err := ts.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-' {
			b.WriteRune(r)
			continue
		}
		ts.unreadRune()
		break
	}
	return b.String(), nil
}

// ignore discards tokens, pushed back and freshly scanned, up to and
// including the next statement terminator. A quit token stops the
// discard early and is left on the stream for the driver to act on.
func (ts *tokenStream) ignore() {
	for !ts.back.Empty() {
		tok := ts.back.Front().(token)
		ts.back.PopFront()
		switch tok.kind {
		case tokenQuit:
			ts.back.PushFront(tok)
			return
		case tokenPrint:
			return
		}
	}
	for {
		tok, err := ts.get()
		if err != nil {
			var lerr *LexError
			if errors.As(err, &lerr) {
				// Still resynchronizing; skip the bad input.
				continue
			}
			return
		}
		switch tok.kind {
		case tokenPrint, tokenEOF:
			return
		case tokenQuit:
			ts.unget(tok)
			return
		}
	}
}
