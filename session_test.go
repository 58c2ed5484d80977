package calc_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/arviat/calc"
)

// drive runs every statement in src and returns the steps and errors
// in order.
func drive(t *testing.T, src string) (*calc.Session, []calc.Step, []error) {
	t.Helper()
	s := calc.NewSession(strings.NewReader(src))
	var steps []calc.Step
	var errs []error
	for {
		step, err := s.Next()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if step.Kind == calc.StepEOF {
			return s, steps, errs
		}
		steps = append(steps, step)
		if step.Kind == calc.StepQuit {
			return s, steps, errs
		}
	}
}

func TestEvalString(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want float64
	}{
		{"num", "1;", 1},
		{"precedence", "2 + 3 * 4;", 14},
		{"parens", "(2 + 3) * 4;", 20},
		{"unary", "-2 - -3;", 1},
		{"unary-plus", "+5;", 5},
		{"unary-nested", "- - 3;", 3},
		{"mod", "10 % 3;", 1},
		{"div", "7 / 2;", 3.5},
		{"left-assoc-sub", "10 - 4 - 3;", 3},
		{"left-assoc-div", "24 / 4 / 2;", 3},
		{"pow", "pow(2, 10);", 1024},
		{"pow-expr", "pow(2, 1 + 2);", 8},
		{"sin", "sin(0);", 0},
		{"cos", "cos(0);", 1},
		{"atan", "atan(0);", 0},
		{"exp", "exp(0);", 1},
		{"ln", "ln(1);", 0},
		{"log10", "log10(100);", 2},
		{"log2", "log2(8);", 3},
		{"fn-in-expr", "2 * cos(0) + 3;", 5},
		{"no-terminator", "2 + 2", 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := calc.EvalString(c.src)
			if err != nil {
				t.Fatalf("%q: unexpected error %v", c.src, err)
			}
			if got != c.want {
				t.Errorf("%q: want %g, got %g", c.src, c.want, got)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want error
	}{
		{"div-zero", "5 / 0;", &calc.DivideByZeroError{}},
		{"mod-zero", "5 % 0;", &calc.DivideByZeroError{}},
		{"undefined", "y + 1;", &calc.UndefinedNameError{}},
		{"sin-two-args", "sin(1, 2);", &calc.ArityError{}},
		{"pow-one-arg", "pow(2);", &calc.ArityError{}},
		{"missing-close", "(1 + 2;", &calc.SyntaxError{}},
		{"missing-primary", "2 + ;", &calc.SyntaxError{}},
		{"missing-open", "sin 1;", &calc.SyntaxError{}},
		{"bare-operator", "* 3;", &calc.SyntaxError{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := calc.EvalString(c.src)
			if err == nil {
				t.Fatalf("%q: want error, got none", c.src)
			}
			switch c.want.(type) {
			case *calc.DivideByZeroError:
				var e *calc.DivideByZeroError
				if !errors.As(err, &e) {
					t.Errorf("%q: want DivideByZeroError, got %T: %v", c.src, err, err)
				}
			case *calc.UndefinedNameError:
				var e *calc.UndefinedNameError
				if !errors.As(err, &e) {
					t.Errorf("%q: want UndefinedNameError, got %T: %v", c.src, err, err)
				}
			case *calc.ArityError:
				var e *calc.ArityError
				if !errors.As(err, &e) {
					t.Errorf("%q: want ArityError, got %T: %v", c.src, err, err)
				}
			case *calc.SyntaxError:
				var e *calc.SyntaxError
				if !errors.As(err, &e) {
					t.Errorf("%q: want SyntaxError, got %T: %v", c.src, err, err)
				}
			}
		})
	}
}

func TestArityMessages(t *testing.T) {
	_, err := calc.EvalString("sin(1, 2);")
	if err == nil || err.Error() != "sin needs only one argument" {
		t.Errorf("sin(1, 2): want arity message, got %v", err)
	}
	_, err = calc.EvalString("pow(2);")
	if err == nil || err.Error() != "pow needs two arguments" {
		t.Errorf("pow(2): want arity message, got %v", err)
	}
}

func TestConstRules(t *testing.T) {
	t.Run("const cannot be reassigned", func(t *testing.T) {
		s, steps, errs := drive(t, "const pi = 3.14; pi = 1;")
		if len(steps) != 1 || steps[0].Value != 3.14 {
			t.Fatalf("want one value step 3.14, got %v", steps)
		}
		if len(errs) != 1 {
			t.Fatalf("want one error, got %v", errs)
		}
		var e *calc.ConstAssignError
		if !errors.As(errs[0], &e) || e.Name != "pi" {
			t.Errorf("want ConstAssignError for pi, got %v", errs[0])
		}
		if v, err := s.Env().Lookup("pi"); err != nil || v != 3.14 {
			t.Errorf("pi after failed assignment: want 3.14, got %g (err %v)", v, err)
		}
	})
	t.Run("const cannot be redeclared", func(t *testing.T) {
		s, _, errs := drive(t, "const pi = 3.14; const pi = 2;")
		if len(errs) != 1 {
			t.Fatalf("want one error, got %v", errs)
		}
		var e *calc.RedeclaredError
		if !errors.As(errs[0], &e) || e.Name != "pi" {
			t.Errorf("want RedeclaredError for pi, got %v", errs[0])
		}
		if v, _ := s.Env().Lookup("pi"); v != 3.14 {
			t.Errorf("pi after failed redeclaration: want 3.14, got %g", v)
		}
	})
	t.Run("variable cannot be const-redeclared", func(t *testing.T) {
		_, _, errs := drive(t, "x = 1; const x = 2;")
		if len(errs) != 1 {
			t.Fatalf("want one error, got %v", errs)
		}
		var e *calc.RedeclaredError
		if !errors.As(errs[0], &e) {
			t.Errorf("want RedeclaredError, got %v", errs[0])
		}
	})
	t.Run("first assignment declares", func(t *testing.T) {
		s, steps, errs := drive(t, "x = 5; x = 6;")
		if len(errs) != 0 {
			t.Fatalf("unexpected errors: %v", errs)
		}
		if len(steps) != 2 || steps[0].Value != 5 || steps[1].Value != 6 {
			t.Fatalf("want value steps 5, 6, got %v", steps)
		}
		if v, _ := s.Env().Lookup("x"); v != 6 {
			t.Errorf("x: want 6, got %g", v)
		}
		if s.Env().IsConst("x") {
			t.Error("x must not be const")
		}
	})
	t.Run("reassignment is idempotent", func(t *testing.T) {
		once, _, _ := drive(t, "x = 5;")
		twice, _, _ := drive(t, "x = 5; x = 5;")
		if got, want := twice.Env().Len(), once.Env().Len(); got != want {
			t.Errorf("environment size: want %d, got %d", want, got)
		}
		v1, _ := once.Env().Lookup("x")
		v2, _ := twice.Env().Lookup("x")
		if v1 != v2 {
			t.Errorf("x differs: %g vs %g", v1, v2)
		}
	})
	t.Run("const usable in expressions", func(t *testing.T) {
		_, steps, errs := drive(t, "const tau = 6.0; tau / 2;")
		if len(errs) != 0 {
			t.Fatalf("unexpected errors: %v", errs)
		}
		if len(steps) != 2 || steps[1].Value != 3 {
			t.Fatalf("want tau/2 = 3, got %v", steps)
		}
	})
}

func TestDispatchLookahead(t *testing.T) {
	// With a declared, "a = 5" must dispatch to assignment and "a + 5"
	// to expression evaluation: one token of lookahead past the name.
	s, steps, errs := drive(t, "a = 5; a + 5;")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(steps) != 2 {
		t.Fatalf("want 2 steps, got %d", len(steps))
	}
	if steps[0].Value != 5 {
		t.Errorf("assignment value: want 5, got %g", steps[0].Value)
	}
	if steps[1].Value != 10 {
		t.Errorf("expression value: want 10, got %g", steps[1].Value)
	}
	if v, _ := s.Env().Lookup("a"); v != 5 {
		t.Errorf("a after expression statement: want 5, got %g", v)
	}
}

func TestErrorLeavesEnvUnchanged(t *testing.T) {
	cases := []string{
		"x + 5 / 0;",
		"x + nosuch;",
		"x = 5 / 0;",
		"const y = nosuch + 1;",
	}
	for _, src := range cases {
		t.Run(src, func(t *testing.T) {
			s, _, errs := drive(t, "x = 1; "+src)
			if len(errs) != 1 {
				t.Fatalf("want one error, got %v", errs)
			}
			if s.Env().Len() != 1 {
				t.Errorf("environment grew: %v", s.Env().Entries())
			}
			if v, _ := s.Env().Lookup("x"); v != 1 {
				t.Errorf("x: want 1, got %g", v)
			}
		})
	}
}

func TestResynchronization(t *testing.T) {
	t.Run("session continues after error", func(t *testing.T) {
		_, steps, errs := drive(t, "5 / 0; 8;")
		if len(errs) != 1 {
			t.Fatalf("want one error, got %v", errs)
		}
		if len(steps) != 1 || steps[0].Value != 8 {
			t.Fatalf("want value step 8 after error, got %v", steps)
		}
	})
	t.Run("junk after error is discarded", func(t *testing.T) {
		_, steps, errs := drive(t, "2 + ; more junk here ; 7;")
		if len(errs) == 0 {
			t.Fatal("want an error")
		}
		if len(steps) == 0 || steps[len(steps)-1].Value != 7 {
			t.Fatalf("want final value step 7, got %v", steps)
		}
	})
	t.Run("quit survives resynchronization", func(t *testing.T) {
		_, steps, errs := drive(t, "5 / 0 quit")
		if len(errs) != 1 {
			t.Fatalf("want one error, got %v", errs)
		}
		if len(steps) != 1 || steps[0].Kind != calc.StepQuit {
			t.Fatalf("want quit step, got %v", steps)
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("precision", func(t *testing.T) {
		s, steps, errs := drive(t, "precision; set precision 12; precision;")
		if len(errs) != 0 {
			t.Fatalf("unexpected errors: %v", errs)
		}
		want := []calc.Step{
			{Kind: calc.StepShowPrecision, Precision: calc.DefaultPrecision},
			{Kind: calc.StepSetPrecision, Precision: 12},
			{Kind: calc.StepShowPrecision, Precision: 12},
		}
		if len(steps) != len(want) {
			t.Fatalf("want %d steps, got %v", len(want), steps)
		}
		for i, w := range want {
			if steps[i] != w {
				t.Errorf("step %d: want %v, got %v", i, w, steps[i])
			}
		}
		if s.Precision() != 12 {
			t.Errorf("session precision: want 12, got %d", s.Precision())
		}
	})
	t.Run("precision out of range", func(t *testing.T) {
		s, _, errs := drive(t, "set precision 40;")
		if len(errs) != 1 {
			t.Fatalf("want one error, got %v", errs)
		}
		var e *calc.PrecisionError
		if !errors.As(errs[0], &e) || e.Digits != 40 {
			t.Errorf("want PrecisionError for 40, got %v", errs[0])
		}
		if s.Precision() != calc.DefaultPrecision {
			t.Errorf("precision changed to %d after rejected setting", s.Precision())
		}
	})
	t.Run("env commands carry the filename", func(t *testing.T) {
		_, steps, errs := drive(t, "show env; save env out.txt; load env in.dat;")
		if len(errs) != 0 {
			t.Fatalf("unexpected errors: %v", errs)
		}
		want := []calc.Step{
			{Kind: calc.StepShowEnv},
			{Kind: calc.StepSaveEnv, File: "out.txt"},
			{Kind: calc.StepLoadEnv, File: "in.dat"},
		}
		if len(steps) != len(want) {
			t.Fatalf("want %d steps, got %v", len(want), steps)
		}
		for i, w := range want {
			if steps[i] != w {
				t.Errorf("step %d: want %v, got %v", i, w, steps[i])
			}
		}
	})
	t.Run("help and quit", func(t *testing.T) {
		_, steps, errs := drive(t, "help; quit")
		if len(errs) != 0 {
			t.Fatalf("unexpected errors: %v", errs)
		}
		if len(steps) != 2 || steps[0].Kind != calc.StepHelp || steps[1].Kind != calc.StepQuit {
			t.Fatalf("want help then quit, got %v", steps)
		}
	})
}

func TestDeepNesting(t *testing.T) {
	src := strings.Repeat("(", 600) + "1" + strings.Repeat(")", 600) + ";"
	_, err := calc.EvalString(src)
	var e *calc.SyntaxError
	if !errors.As(err, &e) {
		t.Fatalf("want SyntaxError for deep nesting, got %v", err)
	}
}
