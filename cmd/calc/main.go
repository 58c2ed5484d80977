// Command calc is an interactive calculator for arithmetic expressions
// with variables, constants, and mathematical functions.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/arviat/calc"
)

const historyFile = ".calc_history"

const banner = `calc: an expression calculator. End statements with ';'. Type 'help;' for help, 'quit' to exit.`

const helpText = `
 ==============================================================
  This is a simple calculator for arithmetic expressions
  supporting variables, constants, and mathematical functions.
 ==============================================================

 - Basic Usage:
   - Use ';' to end each statement
   - Type 'quit' to exit the program
   - Example: a = 5 + 3;

 - Mathematical Functions Supported:
   - Trigonometric: sin(x), cos(x), tan(x)
   - Inverse trig:  asin(x), acos(x), atan(x)
   - Exponential :  exp(x), pow(x, y)
   - Logarithmic :  ln(x), log10(x), log2(x)

 - Variables and Constants:
   - Assign a variable:     x = 42;
   - Define a constant:     const pi = 3.1416;

 - Environment Commands:
   - show env;              --> display current variables/constants
   - save env filename;     --> save environment to file
   - load env filename;     --> load environment from file

 - Precision Settings:
   - precision;             --> show current display precision
   - set precision N;       --> set output precision (0-20 digits)

 Type 'help;' at any time to show this message again.

`

var (
	errColor    = color.New(color.FgRed)
	statusColor = color.New(color.FgGreen)
	valueColor  = color.New(color.FgHiBlue)
)

func main() {
	var (
		inname string
		stmts  string
		prec   int
	)
	flag.StringVar(&inname, "in", "", "read statements from file instead of stdin")
	flag.StringVar(&stmts, "e", "", "evaluate statements and exit")
	flag.IntVar(&prec, "p", calc.DefaultPrecision, "initial display precision in digits")
	flag.Parse()
	os.Exit(run(inname, stmts, prec))
}

func run(inname, stmts string, prec int) int {
	var (
		src io.RuneScanner
		u   ui
	)
	switch {
	case stmts != "":
		src = strings.NewReader(stmts)
	case inname != "":
		f, err := os.Open(inname)
		if err != nil {
			errColor.Fprintln(os.Stderr, err)
			return 1
		}
		defer f.Close()
		src = bufio.NewReader(f)
	case liner.TerminalSupported():
		ln := liner.NewLiner()
		defer ln.Close()
		ln.SetCtrlCAborts(true)

		home, _ := os.UserHomeDir()
		histPath := filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()

		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sigc)
		go func() {
			<-sigc
			ln.Close()
			os.Exit(130)
		}()

		fmt.Println(banner)
		u.ln = ln
		src = &promptSource{ln: ln, prompt: "> "}
	default:
		src = bufio.NewReader(os.Stdin)
	}

	sess := calc.NewSession(src)
	if err := sess.SetPrecision(prec); err != nil {
		errColor.Fprintln(os.Stderr, err)
		return 1
	}
	return repl(sess, &u)
}

func repl(sess *calc.Session, u *ui) int {
	for {
		step, err := sess.Next()
		if err != nil {
			errColor.Fprintln(os.Stderr, err)
			continue
		}
		switch step.Kind {
		case calc.StepEOF, calc.StepQuit:
			return 0
		case calc.StepValue:
			valueColor.Printf("= %.*f\n", sess.Precision(), step.Value)
		case calc.StepHelp:
			fmt.Print(helpText)
		case calc.StepShowPrecision:
			fmt.Printf("Current precision: %d digits.\n", step.Precision)
		case calc.StepSetPrecision:
			statusColor.Printf("Precision set to %d digits.\n", step.Precision)
		case calc.StepShowEnv:
			showEnv(sess.Env(), sess.Precision())
		case calc.StepSaveEnv:
			if err := saveEnv(sess.Env(), step.File, u); err != nil {
				errColor.Fprintln(os.Stderr, err)
			}
		case calc.StepLoadEnv:
			if err := loadEnv(sess, step.File, u); err != nil {
				errColor.Fprintln(os.Stderr, err)
			}
		}
	}
}

func showEnv(env *calc.Env, prec int) {
	entries := env.Entries()
	if len(entries) == 0 {
		fmt.Println("show env: (none)")
		return
	}
	fmt.Println("Current environment:")
	for _, e := range entries {
		if e.IsConst {
			fmt.Printf("  %s = %.*f (const)\n", e.Name, prec, e.Value)
		} else {
			fmt.Printf("  %s = %.*f\n", e.Name, prec, e.Value)
		}
	}
}

func saveEnv(env *calc.Env, name string, u *ui) error {
	if env.Len() == 0 {
		return errors.New("save env: no variables or constants to save")
	}
	prec := askSavePrecision(u)
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("save env: %w", err)
	}
	snap := calc.Snapshot{Precision: prec, Entries: env.Entries()}
	if err := calc.WriteSnapshot(f, snap); err != nil {
		f.Close()
		return fmt.Errorf("save env: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save env: %w", err)
	}
	statusColor.Printf("Environment saved to %s with precision of %d digits.\n", name, prec)
	return nil
}

// askSavePrecision runs the save-time precision menu. Non-interactive
// sessions take the default.
func askSavePrecision(u *ui) int {
	if u.ln == nil {
		return calc.DefaultPrecision
	}
	fmt.Print("Enter precision for saving:\n\n1. Default (6 digits)\n2. Medium (12 digits)\n3. High (19 digits)\n\n")
	for {
		answer, err := u.ask("Select option (1-3): ")
		if err != nil {
			return calc.DefaultPrecision
		}
		switch strings.TrimSpace(answer) {
		case "1":
			return 6
		case "2":
			return 12
		case "3":
			return 19
		}
		fmt.Println("Invalid option. Please select 1, 2, or 3.")
	}
}

func loadEnv(sess *calc.Session, name string, u *ui) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	snap, err := calc.ReadSnapshot(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	if askApplyPrecision(u, snap.Precision) {
		if err := sess.SetPrecision(snap.Precision); err != nil {
			return err
		}
		statusColor.Printf("Precision set to %d digits.\n", snap.Precision)
	} else {
		fmt.Printf("Keeping current precision of %d digits.\n", sess.Precision())
	}
	results := calc.MergeSnapshot(sess.Env(), snap, func(existing, incoming calc.Entry) calc.Resolution {
		return askResolution(u, existing, incoming)
	})
	for _, r := range results {
		switch r.Action {
		case calc.MergeDefined:
			if r.Entry.IsConst {
				fmt.Printf("Loaded: %s = %g (const)\n", r.Entry.Name, r.Entry.Value)
			} else {
				fmt.Printf("Loaded: %s = %g\n", r.Entry.Name, r.Entry.Value)
			}
		case calc.MergeKept:
			fmt.Printf("Kept existing value for '%s'.\n", r.Entry.Name)
		case calc.MergeOverwrote:
			fmt.Printf("Overwrote '%s' with value from file.\n", r.Entry.Name)
		case calc.MergeRenamed:
			fmt.Printf("Renamed file variable to '%s'.\n", r.RenamedTo)
		}
	}
	statusColor.Printf("Environment loaded from %s.\n", name)
	return nil
}

// askApplyPrecision asks whether to adopt the precision recorded in a
// loaded snapshot. Non-interactive sessions keep the current setting.
func askApplyPrecision(u *ui, prec int) bool {
	if u.ln == nil {
		return false
	}
	fmt.Printf("The file specifies a precision of %d digits.\nDo you want to apply this precision to future outputs?\n\n 1. Yes\n 2. No\n\n", prec)
	for {
		answer, err := u.ask("Select option (1-2): ")
		if err != nil {
			return false
		}
		switch strings.TrimSpace(answer) {
		case "1":
			return true
		case "2":
			return false
		}
		fmt.Println("Invalid option. Please select 1 or 2.")
	}
}

// askResolution runs the conflict menu for one colliding name.
// Non-interactive sessions keep the existing entry.
func askResolution(u *ui, existing, incoming calc.Entry) calc.Resolution {
	if u.ln == nil {
		return calc.KeepExisting
	}
	fmt.Printf("Conflict detected for variable: %s.\n", existing.Name)
	fmt.Printf("Existing value: %g (const: %s)\n", existing.Value, yesno(existing.IsConst))
	fmt.Printf("File value: %g (const: %s)\n", incoming.Value, yesno(incoming.IsConst))
	fmt.Print("Choose an action:\n  1. Keep existing value\n  2. Overwrite with file value\n  3. Keep both (rename file value)\n\n")
	for {
		answer, err := u.ask("Select option (1-3): ")
		if err != nil {
			return calc.KeepExisting
		}
		switch strings.TrimSpace(answer) {
		case "1":
			return calc.KeepExisting
		case "2":
			return calc.Overwrite
		case "3":
			return calc.Rename
		}
		fmt.Println("Invalid option. Please select 1, 2 or 3.")
	}
}

func yesno(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// ui carries the line editor when the session is interactive; ln is
// nil for files, pipes, and -e arguments.
type ui struct {
	ln *liner.State
}

func (u *ui) ask(prompt string) (string, error) {
	if u.ln == nil {
		return "", errors.New("not interactive")
	}
	return u.ln.Prompt(prompt)
}

// promptSource adapts the line editor to the io.RuneScanner the
// session reads from, prompting for a new line whenever the current
// one is exhausted. Each line is terminated with '\n' so statements
// may span lines.
type promptSource struct {
	ln     *liner.State
	prompt string
	line   []rune
	i      int
	eof    bool
}

func (p *promptSource) ReadRune() (rune, int, error) {
	if p.eof {
		return 0, 0, io.EOF
	}
	for p.i >= len(p.line) {
		text, err := p.ln.Prompt(p.prompt)
		if err != nil {
			p.eof = true
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println()
				return 0, 0, io.EOF
			}
			return 0, 0, err
		}
		if strings.TrimSpace(text) != "" {
			p.ln.AppendHistory(text)
		}
		p.line = []rune(text + "\n")
		p.i = 0
	}
	r := p.line[p.i]
	p.i++
	return r, utf8.RuneLen(r), nil
}

func (p *promptSource) UnreadRune() error {
	if p.i == 0 {
		return errors.New("calc: no rune to unread")
	}
	p.i--
	return nil
}
