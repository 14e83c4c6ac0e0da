package simkernel

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func newTestREPL(verbose bool) (*REPL, *bytes.Buffer) {
	var out bytes.Buffer
	config := DefaultConfig()
	config.Output = &out
	sk := New(config)
	sk.Logger().SetOutput(io.Discard, io.Discard)
	r := NewREPL(sk, REPLConfig{Verbose: verbose, Output: &out})
	r.SetTerminalWidth(80)
	return r, &out
}

func TestREPLEval(t *testing.T) {
	r, out := newTestREPL(false)
	inputs := []string{"x = 2", "x^3", `Print["hi"]`}
	for _, in := range inputs {
		more, err := r.Eval(in)
		if err != nil || !more {
			t.Fatalf("Eval(%q): more=%v err=%v", in, more, err)
		}
	}
	want := "Out[1]: Null\nOut[2]: 8\nhi\nOut[3]: Null\n"
	if out.String() != want {
		t.Errorf("Expected %q, got %q", want, out.String())
	}
	if r.Prompt() != "In[4]: " {
		t.Errorf("Expected the prompt to advance, got %q", r.Prompt())
	}
}

func TestREPLErrorsKeepGoing(t *testing.T) {
	r, out := newTestREPL(false)
	more, err := r.Eval("1 / 0")
	if !more || !IsEvalError(err, DivisionByZero) {
		t.Errorf("Expected DivisionByZero and to continue, got more=%v err=%v", more, err)
	}
	more, err = r.Eval("{1,")
	if !more || err == nil {
		t.Errorf("Expected a syntax error and to continue, got more=%v err=%v", more, err)
	}
	if _, err := r.Eval("1 + 1"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(out.String(), "Out[3]: 2\n") {
		t.Errorf("Expected numbering to count failed inputs, got %q", out.String())
	}
}

func TestREPLVerbose(t *testing.T) {
	r, out := newTestREPL(true)
	if _, err := r.Eval("1 + 2"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "Parse[1]: ") || !strings.Contains(out.String(), "Out[1]: 3\n") {
		t.Errorf("Unexpected verbose output %q", out.String())
	}
}

func TestREPLQuit(t *testing.T) {
	r, out := newTestREPL(false)
	for _, in := range []string{"q", " Quit[]; ", "q;"} {
		if more, err := r.Eval(in); more || err != nil {
			t.Errorf("Eval(%q): expected to quit, got more=%v err=%v", in, more, err)
		}
	}
	if more, _ := r.Eval("   "); !more {
		t.Error("Expected blank input to be ignored")
	}
	if out.Len() != 0 {
		t.Errorf("Expected no output, got %q", out.String())
	}
}

func TestREPLElide(t *testing.T) {
	r, _ := newTestREPL(false)
	r.SetTerminalWidth(2)
	long := strings.Repeat("a", 100)
	got := r.elide(long)
	if len(got) != 40+len(" ... ") || !strings.Contains(got, " ... ") {
		t.Errorf("Expected an elided result, got %q", got)
	}
	if r.elide("short") != "short" {
		t.Error("Expected short results to stay whole")
	}
}
