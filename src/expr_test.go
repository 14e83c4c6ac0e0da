package simkernel

import (
	"math"
	"testing"
)

func TestExprPrinting(t *testing.T) {
	tests := []struct {
		expr *Expr
		want string
	}{
		{NewInteger(42), "42"},
		{NewReal(2), "2."},
		{NewReal(0.25), "0.25"},
		{NewString("a\"b"), `"a\"b"`},
		{NewBool(true), "True"},
		{NewSymbol("x"), "x"},
		{NewPattern("x"), "x_"},
		{NewList(NewInteger(1), NewInteger(2)), "{1,2}"},
		{NewExpr(KindPlus, NewSymbol("a"), NewInteger(1)), "(a+1)"},
		{NewExpr(KindMinus, NewSymbol("a")), "-a"},
		{NewExpr(KindNot, NewSymbol("a")), "!a"},
		{NewExpr(KindLessEqual, NewSymbol("a"), NewSymbol("b")), "(a<=b)"},
		{NewExpr(KindExtract, NewSymbol("l"), NewInteger(0)), "l[[0]]"},
		{NewExpr(KindSin, NewSymbol("x")), "Sin[x]"},
		{NewExpr(KindPi), "Pi"},
		{Null(), "Null"},
	}
	for _, tt := range tests {
		if got := tt.expr.String(); got != tt.want {
			t.Errorf("Expected %s, got %s", tt.want, got)
		}
	}
}

func TestSentinelsAreShared(t *testing.T) {
	if NewExpr(KindNull) != Null() {
		t.Error("Expected NewExpr(KindNull) to return the Null sentinel")
	}
	if NewExpr(KindNoMatch) != NoMatch() || NewExpr(KindNoPattern) != NoPattern() {
		t.Error("Expected sentinels to be singletons")
	}
}

func TestNewCopiesArguments(t *testing.T) {
	args := []*Expr{NewInteger(1), NewInteger(2)}
	l := NewExpr(KindList, args...)
	args[0] = NewInteger(9)
	if l.String() != "{1,2}" {
		t.Errorf("Expected list to be unaffected by caller slice, got %s", l)
	}
}

func TestEqualQ(t *testing.T) {
	a := NewList(NewInteger(1), NewString("x"))
	b := NewList(NewInteger(1), NewString("x"))
	c := NewList(NewInteger(1), NewString("y"))
	if !a.EqualQ(b) {
		t.Error("Expected structurally equal lists to be EqualQ")
	}
	if a.EqualQ(c) {
		t.Error("Expected lists with different payloads to differ")
	}
	if NewInteger(1).EqualQ(NewReal(1)) {
		t.Error("Expected Integer 1 and Real 1. to differ in kind")
	}
}

func TestMatchQ(t *testing.T) {
	x := NewPattern("x")
	if !x.MatchQ(NewInteger(3)) || !x.MatchQ(NewList()) {
		t.Error("Expected a wildcard to match anything")
	}
	if !NoPattern().MatchQ(NoPattern()) {
		t.Error("Expected NoPattern to match itself")
	}
	if NoPattern().MatchQ(NewInteger(1)) {
		t.Error("Expected NoPattern to match only itself")
	}
	pair := NewList(x, NewInteger(2))
	if !pair.MatchQ(NewList(NewString("a"), NewInteger(2))) {
		t.Error("Expected {x_, 2} to match {\"a\", 2}")
	}
	if pair.MatchQ(NewList(NewString("a"), NewInteger(3))) {
		t.Error("Expected {x_, 2} not to match {\"a\", 3}")
	}
	if pair.MatchQ(NewList(NewInteger(2))) {
		t.Error("Expected arity mismatch not to match")
	}
}

func TestLessPatternQ(t *testing.T) {
	two, three := NewInteger(2), NewInteger(3)
	x := NewPattern("x")
	if !NoPattern().LessPatternQ(two) {
		t.Error("Expected NoPattern before every value")
	}
	if !two.LessPatternQ(three) {
		t.Error("Expected 2 before 3")
	}
	if !three.LessPatternQ(x) || x.LessPatternQ(three) {
		t.Error("Expected wildcards after exact values")
	}
	if x.LessPatternQ(NewPattern("y")) || NewPattern("y").LessPatternQ(x) {
		t.Error("Expected two wildcards to be equivalent")
	}
	if !NewInteger(5).LessPatternQ(NewString("a")) {
		t.Error("Expected Integer before String by kind name")
	}
}

func TestConversions(t *testing.T) {
	if v, err := NewInteger(3).ToReal(); err != nil || v != 3 {
		t.Errorf("Expected 3, got %v (%v)", v, err)
	}
	if v, err := NewReal(2.9).ToInt(); err != nil || v != 2 {
		t.Errorf("Expected truncation to 2, got %v (%v)", v, err)
	}
	if v, err := NewExpr(KindPi).ToReal(); err != nil || v != math.Pi {
		t.Errorf("Expected Pi, got %v (%v)", v, err)
	}
	if v, err := NewString("").ToBool(); err != nil || v {
		t.Errorf("Expected empty string to be false, got %v (%v)", v, err)
	}

	_, errReal := NewString("a").ToReal()
	_, errInt := NewString("a").ToInt()
	_, errStr := NewInteger(1).ToStr()
	_, errBool := NewList().ToBool()
	checks := []struct {
		err  error
		code EvalCode
	}{
		{errReal, NonNumberToReal},
		{errInt, NonNumberToIntg},
		{errStr, NonStrgToStrg},
		{errBool, NonBoolToBool},
	}
	for _, c := range checks {
		if !IsEvalError(c.err, c.code) {
			t.Errorf("Expected %s, got %v", c.code, c.err)
		}
	}
}

func TestToTypeQ(t *testing.T) {
	if !NewInteger(1).ToTypeQ(TypeBool) || NewInteger(1).ToTypeQ(TypeString) {
		t.Error("Expected numbers to convert to bool but not string")
	}
	if !NewString("s").ToTypeQ(TypeString) || NewString("s").ToTypeQ(TypeReal) {
		t.Error("Expected strings to convert to string only")
	}
	if NewSymbol("x").ToTypeQ(TypeBool) {
		t.Error("Expected symbols not to convert")
	}
}

func TestRebuildKeepsIdentity(t *testing.T) {
	n := NewExpr(KindAppend, NewSymbol("l"), NewInteger(1))
	if n.rebuild(n.args) != n {
		t.Error("Expected rebuild with the same children to return the node")
	}
	if n.rebuild([]*Expr{NewSymbol("m"), NewInteger(1)}) == n {
		t.Error("Expected rebuild with new children to build a new node")
	}
}

func TestEveryKindHasADispatchEntry(t *testing.T) {
	for k := Kind(0); k < kindCount; k++ {
		if kindTable[k].name == "" || kindTable[k].eval == nil {
			t.Errorf("Kind %d has no dispatch entry", k)
		}
	}
	if k, ok := LookupBuiltin("Plus"); !ok || k != KindPlus {
		t.Error("Expected Plus to be a builtin")
	}
	if _, ok := LookupBuiltin("Global"); ok {
		t.Error("Expected Global not to be callable")
	}
	if k, ok := LookupConstant("GoldenRatio"); !ok || k != KindGoldenRatio {
		t.Error("Expected GoldenRatio to be a constant")
	}
}
