package simkernel

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newTestKernel creates a quiet engine whose Print output goes to the
// returned buffer
func newTestKernel(t *testing.T) (*SimKernel, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	config := DefaultConfig()
	config.Output = &out
	config.Seed = 1
	sk := New(config)
	sk.Logger().SetOutput(io.Discard, io.Discard)
	return sk, &out
}

func evalString(t *testing.T, src string) string {
	t.Helper()
	sk, _ := newTestKernel(t)
	v, err := sk.Execute(src)
	if err != nil {
		t.Fatalf("Execute(%q) failed: %v", src, err)
	}
	return v.String()
}

func evalError(t *testing.T, src string) error {
	t.Helper()
	sk, _ := newTestKernel(t)
	_, err := sk.Execute(src)
	if err == nil {
		t.Fatalf("Execute(%q): expected an error", src)
	}
	return err
}

func runEvalTests(t *testing.T, tests []struct{ src, want string }) {
	t.Helper()
	for _, tt := range tests {
		if got := evalString(t, tt.src); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.src, tt.want, got)
		}
	}
}

func TestArithmetic(t *testing.T) {
	runEvalTests(t, []struct{ src, want string }{
		{"1 + 2 * 3", "7"},
		{"7 / 2", "3.5"},
		{"6 / 3", "2."},
		{"7 % 3", "1"},
		{"2^10", "1024"},
		{"2^(-2)", "0.25"},
		{"3^0", "1"},
		{"1 + 0.5", "1.5"},
		{"-(2 + 3)", "-5"},
		{`"ab" + "cd"`, `"abcd"`},
		{"Sin[0]", "0."},
		{"Exp[0]", "1."},
		{"x + 1", "(x+1)"},
		{"HammingDistance[5, 3]", "2"},
	})
}

func TestBroadcasting(t *testing.T) {
	runEvalTests(t, []struct{ src, want string }{
		{"Plus[{1, 2, 3}, 10]", "{11,12,13}"},
		{"Plus[{1, 2}, {3, 4}]", "{4,6}"},
		{"10 - {1, 2}", "{9,8}"},
		{"{1, 2} + {1, 2, 3}", "({1,2}+{1,2,3})"},
		{"-{1, 2.5}", "{-1,-2.5}"},
		{"{1, 5} > 2", "{False,True}"},
		{"Cos[{0, 0}]", "{1.,1.}"},
	})
}

func TestLogicAndComparison(t *testing.T) {
	runEvalTests(t, []struct{ src, want string }{
		{"!True", "False"},
		{"1 < 2 && 2 < 1", "False"},
		{"1 < 2 || x", "(True||x)"},
		{`"a" < "b"`, "True"},
		{"True == False", "False"},
		{"3 >= 3", "True"},
		{"1 != 1.5", "True"},
	})
}

func TestDivisionByZero(t *testing.T) {
	for _, src := range []string{"1 / 0", "5 % 0", "{1, 2} / 0"} {
		if err := evalError(t, src); !IsEvalError(err, DivisionByZero) {
			t.Errorf("%s: expected DivisionByZero, got %v", src, err)
		}
	}
}

func TestListOperations(t *testing.T) {
	runEvalTests(t, []struct{ src, want string }{
		{"Length[{1, 2, 3}]", "3"},
		{"Append[{1, 2}, 3]", "{1,2,3}"},
		{"Prepend[{1, 2}, 0]", "{0,1,2}"},
		{"Join[{1}, {2, 3}]", "{1,2,3}"},
		{"Replace[{1, 2, 3}, 1, 9]", "{1,9,3}"},
		{"Insert[{1, 2}, 2, 3]", "{1,2,3}"},
		{"Insert[{1, 2}, 0, 0]", "{0,1,2}"},
		{"Append[x, 1]", "Append[x,1]"},
		{"Length[x]", "Length[x]"},
		{"Range[3]", "{1,2,3}"},
		{"Range[2, 6, 2]", "{2,4,6}"},
		{"Table[i^2, {i, 1, 4}]", "{1,4,9,16}"},
		{"Table[i, {i, 3, 1}]", "{}"},
	})
}

func TestListOperationsDoNotMutate(t *testing.T) {
	sk, _ := newTestKernel(t)
	if _, err := sk.Execute("l = {1, 2}; m = Append[l, 3]; n = Replace[l, 0, 9]"); err != nil {
		t.Fatal(err)
	}
	v, _ := sk.Execute("l")
	if v.String() != "{1,2}" {
		t.Errorf("Expected l to stay {1,2}, got %s", v)
	}
}

func TestExtract(t *testing.T) {
	runEvalTests(t, []struct{ src, want string }{
		{"{1, 2, 3}[[0]]", "1"},
		{"{{1, 2}, {3, 4}}[[1, 0]]", "3"},
		{"{{1, 2}, {3, 4}}[[All, 1]]", "{2,4}"},
		{"{1, 2, 3}[[{0, 2}]]", "{1,3}"},
		{"Extract[{1, 2, 3}, All]", "{1,2,3}"},
		{"x[[0]]", "x[[0]]"},
	})
}

func TestOutOfRange(t *testing.T) {
	tests := []struct {
		src  string
		code EvalCode
	}{
		{"Extract[{1, 2, 3}, 5]", ExtractOutOfRange},
		{"{1, 2}[[-1]]", ExtractOutOfRange},
		{"Replace[{1}, 3, 0]", ReplaceOutOfRange},
		{"Insert[{1}, 5, 0]", InsertOutOfRange},
		{"Range[1, 5, 0]", IllegalStep},
		{"Table[i, {i, 1, 5, -1}]", IllegalStep},
	}
	for _, tt := range tests {
		if err := evalError(t, tt.src); !IsEvalError(err, tt.code) {
			t.Errorf("%s: expected %s, got %v", tt.src, tt.code, err)
		}
	}
}

func TestSetAndDefine(t *testing.T) {
	runEvalTests(t, []struct{ src, want string }{
		{"x = 1; y = x + 1; x = 5; y", "2"},
		{"x = 1; z := x + 1; x = 5; z", "6"},
		{"x = 1", "Null"},
	})
}

func TestPatternDefinitions(t *testing.T) {
	runEvalTests(t, []struct{ src, want string }{
		{`f[2] := "two"; f[x_] := "any"; {f[2], f[3]}`, `{"two","any"}`},
		{`f[x_] := "any"; f[2] := "two"; {f[2], f[3]}`, `{"two","any"}`},
		{"fact[0] := 1; fact[n_] := n * fact[n - 1]; fact[10]", "3628800"},
		{"sq[x_] := x^2; sq[{1, 2, 3}]", "{1,4,9}"},
		{"g[{a_, b_}] := a - b; g[{5, 2}]", "3"},
		{"h[1] := 1; h[2]", "EvaluateAt[h,{2}]"},
	})
}

func TestFunction(t *testing.T) {
	runEvalTests(t, []struct{ src, want string }{
		{"f = Function[{x, y}, x * y]; f[3, 4]", "12"},
		{"Function[{x}, x + 1] @ 2", "3"},
	})
	if err := evalError(t, "Function[{x}, x][1, 2]"); !IsEvalError(err, EvaluateAtIllegalArgs) {
		t.Errorf("Expected EvaluateAtIllegalArgs, got %v", err)
	}
	if err := evalError(t, "1[2]"); !IsEvalError(err, EvaluateAtOnAtom) {
		t.Errorf("Expected EvaluateAtOnAtom, got %v", err)
	}
}

func TestControlFlow(t *testing.T) {
	runEvalTests(t, []struct{ src, want string }{
		{`If[1 > 0, "yes", "no"]`, `"yes"`},
		{"If[x, 1, 2]", "If[x,1,2]"},
		{"If[False, 1]", "Null"},
		{"Module[{s}, s = 0; For[i = 1, i <= 4, i = i + 1, s = s + i]; Return[s]]", "10"},
		{"For[i = 0, True, i = i + 1, If[i == 3, Break[]]]; i", "3"},
		{"For[i = 0, i < 10, i = i + 1, If[i == 2, Return[i * 10]]]", "20"},
		{"Module[{t}, Return[t];]", "t"},
		{"Module[{t}, t = 1;]; t", "t"},
	})
}

func TestEscapingSignals(t *testing.T) {
	if err := evalError(t, "Return[1]"); !IsEvalError(err, ReturnToGlobal) {
		t.Errorf("Expected ReturnToGlobal, got %v", err)
	}
	if err := evalError(t, "If[True, Break[]]"); !IsEvalError(err, BreakToGlobal) {
		t.Errorf("Expected BreakToGlobal, got %v", err)
	}

	// a whole program reports the escape as well
	sk, _ := newTestKernel(t)
	root, err := Parse("a = 1; Return[a]", "test")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := root.Evaluate(sk.Scope()); !IsEvalError(err, ReturnToGlobal) {
		t.Errorf("Expected ReturnToGlobal from Global, got %v", err)
	}
}

func TestRecursionLimit(t *testing.T) {
	err := evalError(t, "a := a + 1; a")
	if !IsEvalError(err, MaxRecursion) {
		t.Errorf("Expected MaxRecursion, got %v", err)
	}
}

func TestRecursionLimitUnwinds(t *testing.T) {
	sk, _ := newTestKernel(t)
	v, err := sk.Execute("f[x_] := If[x > 250, x, f[x + 1]]; f[1]")
	if err != nil || v.String() != "251" {
		t.Fatalf("Expected 251, got %v (%v)", v, err)
	}
	if _, err := sk.Execute("f[-100]"); !IsEvalError(err, MaxRecursion) {
		t.Fatalf("Expected MaxRecursion, got %v", err)
	}
	v, err = sk.Execute("f[1]")
	if err != nil || v.String() != "251" {
		t.Errorf("Expected the depth counter to recover after MaxRecursion, got %v (%v)", v, err)
	}
}

func TestScopeLimit(t *testing.T) {
	config := DefaultConfig()
	config.MaxScopeLevel = 3
	sk := New(config)
	sk.Logger().SetOutput(io.Discard, io.Discard)
	_, err := sk.Execute("Module[{a}, Module[{b}, Module[{c}, Module[{d}, 1;];];];]")
	if !IsEvalError(err, MaxScope) {
		t.Errorf("Expected MaxScope, got %v", err)
	}
	if sk.Scope().Level() != 0 {
		t.Errorf("Expected frames to unwind to the global frame, got level %d", sk.Scope().Level())
	}
}

func TestIdempotence(t *testing.T) {
	sk, _ := newTestKernel(t)
	for _, src := range []string{`{1, x + 1, "s"}`, "Plus[{1, 2}, 3]", "f[y]", "Pi"} {
		v, err := sk.Execute(src)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		again, err := v.Evaluate(sk.Scope())
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		if again != v {
			t.Errorf("%s: expected evaluating %s again to return it unchanged, got %s", src, v, again)
		}
	}
}

func TestPrint(t *testing.T) {
	sk, out := newTestKernel(t)
	v, err := sk.Execute(`Print["x = ", 1 + 1, " ", {1, "a"}]`)
	if err != nil {
		t.Fatal(err)
	}
	if !v.NullQ() {
		t.Errorf("Expected Print to return Null, got %s", v)
	}
	if got := out.String(); got != "x = 2 {1,\"a\"}\n" {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestToString(t *testing.T) {
	runEvalTests(t, []struct{ src, want string }{
		{"ToString[12]", `"12"`},
		{"ToString[1.5]", `"1.5"`},
		{`ToString["s"]`, `"s"`},
		{"ToString[{1}]", "ToString[{1}]"},
	})
}

func TestRandom(t *testing.T) {
	first := evalString(t, "Seed[7]; {Random[], RandomInteger[]}")
	second := evalString(t, "Seed[7]; {Random[], RandomInteger[]}")
	if first != second {
		t.Errorf("Expected equal draws after equal seeds, got %s and %s", first, second)
	}

	sk, _ := newTestKernel(t)
	for i := 0; i < 50; i++ {
		v, err := sk.Execute("RandomInteger[1, 6]")
		if err != nil {
			t.Fatal(err)
		}
		if n, _ := v.ToInt(); !v.IntegerQ() || n < 1 || n > 6 {
			t.Fatalf("Expected a die roll, got %s", v)
		}
		v, err = sk.Execute("Random[2, 3]")
		if err != nil {
			t.Fatal(err)
		}
		if r, _ := v.ToReal(); r < 2 || r > 3 {
			t.Fatalf("Expected a draw in [2, 3], got %s", v)
		}
	}

	if err := evalError(t, "Seed[1.5]"); !IsEvalError(err, RandomSeedNotInteger) {
		t.Errorf("Expected RandomSeedNotInteger, got %v", err)
	}
	if err := evalError(t, `Random["a", 1]`); !IsEvalError(err, RandomToNumber) {
		t.Errorf("Expected RandomToNumber, got %v", err)
	}
}

func TestImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte("1 2.5 abc\n\n3 4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got := evalString(t, fmt.Sprintf("Import[%q]", path))
	if want := `{{1,2.5,"abc"},{3,4}}`; got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}

	err := evalError(t, fmt.Sprintf("Import[%q]", filepath.Join(t.TempDir(), "missing")))
	if !IsEvalError(err, ImportFailed) {
		t.Errorf("Expected ImportFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("Expected the error to name the file, got %v", err)
	}
}
