package simkernel

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerRouting(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLogger(false)
	l.SetOutput(&out, &errOut)

	l.DebugCat(CatSweep, "hidden")
	l.WarnCat(CatConversion, "careful %d", 1)
	l.ErrorCat(CatEval, "broken")
	if out.Len() != 0 {
		t.Errorf("Expected debug output to be off, got %q", out.String())
	}
	if got := errOut.String(); got != "[SimKernel:conversion WARN] careful 1\n[SimKernel:eval ERROR] broken\n" {
		t.Errorf("Unexpected diagnostics %q", got)
	}
	if l.Summary() != "1 error(s), 1 warning(s)" {
		t.Errorf("Unexpected summary %q", l.Summary())
	}
}

func TestLoggerCategories(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(true)
	l.SetOutput(&out, &out)
	l.EnableCategory(CatSweep)

	l.DebugCat(CatSweep, "step")
	l.DebugCat(CatScope, "define")
	l.Debug("plain")
	if got := out.String(); got != "[DEBUG:sweep] step\n[DEBUG] plain\n" {
		t.Errorf("Unexpected debug output %q", got)
	}

	l.DisableCategory(CatSweep)
	if l.IsCategoryEnabled(CatSweep) {
		t.Error("Expected sweep to be disabled")
	}
	l.EnableAllCategories()
	for _, cat := range AllCategories {
		if !l.IsCategoryEnabled(cat) {
			t.Errorf("Expected %s to be enabled", cat)
		}
	}
}

func TestLoggerFromConfig(t *testing.T) {
	l := NewLoggerFromConfig(&Config{Debug: true, LogCategories: []LogCategory{CatIO}})
	if !l.Enabled() || !l.IsCategoryEnabled(CatIO) || l.IsCategoryEnabled(CatSim) {
		t.Error("Expected only the io category")
	}
	if cat, ok := ParseCategory("sweep"); !ok || cat != CatSweep {
		t.Error("Expected sweep to parse")
	}
	if _, ok := ParseCategory("nope"); ok {
		t.Error("Expected an unknown category to fail")
	}
}

func TestLoggerSourceContext(t *testing.T) {
	var errOut bytes.Buffer
	l := NewLogger(false)
	l.SetOutput(&errOut, &errOut)
	l.SetContextLines(1)
	pos := &SourcePosition{Line: 2, Column: 5, Length: 3, Filename: "p.sim"}
	l.ParseError("bad token", pos, []string{"a = 1;", "b = ???;", "c = 3;", "d = 4;"})

	got := errOut.String()
	for _, want := range []string{
		"[SimKernel:parse ERROR] Parse error: bad token",
		"at line 2, column 5 in p.sim",
		"    1 | a = 1;",
		">   2 | b = ???;",
		"      |     ^^^",
		"    3 | c = 3;",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "d = 4;") {
		t.Errorf("Expected only one line of context, got:\n%s", got)
	}
}
