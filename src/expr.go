package simkernel

import (
	"math"
	"strconv"
	"strings"
)

// Expr is a node of an expression tree.
//
// Nodes are built children first and are never modified afterwards, so a
// tree cannot reference itself and may be shared freely between definition
// tables and evaluation frames. The only mutable field is the evaluation
// depth counter used by the recursion guard.
type Expr struct {
	kind  Kind
	args  []*Expr
	i     int
	r     float64
	s     string // string payload or symbol name
	b     bool
	depth int
}

var (
	nullExpr      = &Expr{kind: KindNull}
	noPatternExpr = &Expr{kind: KindNoPattern}
	noMatchExpr   = &Expr{kind: KindNoMatch}
)

// Null returns the shared Null sentinel
func Null() *Expr { return nullExpr }

// NoPattern returns the shared sentinel used as the pattern of plain definitions
func NoPattern() *Expr { return noPatternExpr }

// NoMatch returns the shared sentinel returned by failed lookups
func NoMatch() *Expr { return noMatchExpr }

func NewInteger(v int) *Expr       { return &Expr{kind: KindInteger, i: v} }
func NewReal(v float64) *Expr      { return &Expr{kind: KindReal, r: v} }
func NewString(v string) *Expr     { return &Expr{kind: KindString, s: v} }
func NewBool(v bool) *Expr         { return &Expr{kind: KindBool, b: v} }
func NewSymbol(name string) *Expr  { return &Expr{kind: KindSymbol, s: name} }
func NewList(items ...*Expr) *Expr { return NewExpr(KindList, items...) }

// NewPattern builds the wildcard x_
func NewPattern(name string) *Expr {
	return NewExpr(KindPattern, NewSymbol(name))
}

// NewExpr builds a compound node of the given kind. The argument slice is copied.
func NewExpr(kind Kind, args ...*Expr) *Expr {
	switch kind {
	case KindNull:
		return nullExpr
	case KindNoPattern:
		return noPatternExpr
	case KindNoMatch:
		return noMatchExpr
	}
	e := &Expr{kind: kind}
	if len(args) > 0 {
		e.args = make([]*Expr, len(args))
		copy(e.args, args)
	}
	return e
}

// NewNumber builds an Integer when intQ is set, a Real otherwise
func NewNumber(v float64, intQ bool) *Expr {
	if intQ {
		return NewInteger(int(v))
	}
	return NewReal(v)
}

// rebuild returns n itself when args are identical to its children,
// otherwise a new node of the same kind with the given children
func (n *Expr) rebuild(args []*Expr) *Expr {
	if sameArgs(n.args, args) {
		return n
	}
	return NewExpr(n.kind, args...)
}

func sameArgs(a, b []*Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Kind returns the node type
func (n *Expr) Kind() Kind { return n.kind }

// Name returns the kind name, e.g. "Plus"
func (n *Expr) Name() string { return n.kind.String() }

// Args returns the children. The slice must not be modified.
func (n *Expr) Args() []*Expr { return n.args }

// NArgs returns the number of children
func (n *Expr) NArgs() int { return len(n.args) }

// Arg returns child i
func (n *Expr) Arg(i int) (*Expr, error) {
	if i < 0 || i >= len(n.args) {
		return nil, newEvalError(OutOfArgRange, n)
	}
	return n.args[i], nil
}

// SymbolName returns the name of a Symbol or Pattern
func (n *Expr) SymbolName() (string, error) {
	switch n.kind {
	case KindSymbol:
		return n.s, nil
	case KindPattern:
		return n.args[0].s, nil
	}
	return "", newEvalError(SymbolNameOnNonSymbol, n)
}

// Capability queries

func (n *Expr) NullQ() bool     { return n.kind == KindNull }
func (n *Expr) IntegerQ() bool  { return n.kind == KindInteger }
func (n *Expr) StringQ() bool   { return n.kind == KindString }
func (n *Expr) BoolQ() bool     { return n.kind == KindBool }
func (n *Expr) SymbolQ() bool   { return n.kind == KindSymbol }
func (n *Expr) PatternQ() bool  { return n.kind == KindPattern }
func (n *Expr) ListQ() bool     { return n.kind == KindList }
func (n *Expr) FunctionQ() bool { return n.kind == KindFunction }

// RealQ is true for Real and the numeric constants
func (n *Expr) RealQ() bool {
	switch n.kind {
	case KindReal, KindPi, KindE, KindGoldenRatio:
		return true
	}
	return false
}

func (n *Expr) NumberQ() bool { return n.IntegerQ() || n.RealQ() }

// AtomQ is true for leaves: values, symbols, constants and sentinels
func (n *Expr) AtomQ() bool { return n.kind <= KindNone }

// ValueType names a native type an expression may convert to
type ValueType int

const (
	TypeInt ValueType = iota
	TypeReal
	TypeString
	TypeBool
)

// ToTypeQ reports whether n converts to t
func (n *Expr) ToTypeQ(t ValueType) bool {
	switch {
	case n.NumberQ():
		return t != TypeString
	case n.kind == KindString:
		return t == TypeString || t == TypeBool
	case n.kind == KindBool:
		return t == TypeBool
	}
	return false
}

func (n *Expr) float() float64 {
	switch n.kind {
	case KindInteger:
		return float64(n.i)
	case KindPi:
		return math.Pi
	case KindE:
		return math.E
	case KindGoldenRatio:
		return math.Phi
	}
	return n.r
}

// ToReal converts a number to float64
func (n *Expr) ToReal() (float64, error) {
	if !n.NumberQ() {
		return 0, newEvalError(NonNumberToReal, n)
	}
	return n.float(), nil
}

// ToInt converts a number to int, truncating reals
func (n *Expr) ToInt() (int, error) {
	if n.kind == KindInteger {
		return n.i, nil
	}
	if !n.NumberQ() {
		return 0, newEvalError(NonNumberToIntg, n)
	}
	return int(n.float()), nil
}

// ToStr returns the payload of a String
func (n *Expr) ToStr() (string, error) {
	if n.kind != KindString {
		return "", newEvalError(NonStrgToStrg, n)
	}
	return n.s, nil
}

// ToBool converts numbers (non-zero), strings (non-empty) and bools
func (n *Expr) ToBool() (bool, error) {
	switch {
	case n.kind == KindBool:
		return n.b, nil
	case n.kind == KindString:
		return n.s != "", nil
	case n.NumberQ():
		return n.float() != 0, nil
	}
	return false, newEvalError(NonBoolToBool, n)
}

func (n *Expr) samePayload(o *Expr) bool {
	switch n.kind {
	case KindInteger:
		return n.i == o.i
	case KindReal:
		return n.r == o.r
	case KindString, KindSymbol:
		return n.s == o.s
	case KindBool:
		return n.b == o.b
	}
	return true
}

// EqualQ is structural value equality
func (n *Expr) EqualQ(o *Expr) bool {
	if n == o {
		return true
	}
	if n.kind != o.kind || len(n.args) != len(o.args) || !n.samePayload(o) {
		return false
	}
	for i := range n.args {
		if !n.args[i].EqualQ(o.args[i]) {
			return false
		}
	}
	return true
}

// MatchQ reports whether n, used as a pattern, accepts e
func (n *Expr) MatchQ(e *Expr) bool {
	switch n.kind {
	case KindPattern:
		return true
	case KindNoPattern:
		return e.kind == KindNoPattern
	}
	if n == e {
		return true
	}
	if n.kind != e.kind || len(n.args) != len(e.args) || !n.samePayload(e) {
		return false
	}
	for i := range n.args {
		if !n.args[i].MatchQ(e.args[i]) {
			return false
		}
	}
	return true
}

// LessPatternQ orders patterns by specificity: NoPattern first, wildcards
// last, everything else by kind name, then value, then children
func (n *Expr) LessPatternQ(o *Expr) bool {
	return comparePattern(n, o) < 0
}

func comparePattern(a, b *Expr) int {
	if a == b {
		return 0
	}
	switch {
	case a.kind == KindNoPattern && b.kind == KindNoPattern:
		return 0
	case a.kind == KindNoPattern:
		return -1
	case b.kind == KindNoPattern:
		return 1
	case a.kind == KindPattern && b.kind == KindPattern:
		return 0
	case a.kind == KindPattern:
		return 1
	case b.kind == KindPattern:
		return -1
	}
	if a.kind != b.kind {
		return strings.Compare(a.Name(), b.Name())
	}
	if c := comparePayload(a, b); c != 0 {
		return c
	}
	if len(a.args) != len(b.args) {
		if len(a.args) < len(b.args) {
			return -1
		}
		return 1
	}
	for i := range a.args {
		if c := comparePattern(a.args[i], b.args[i]); c != 0 {
			return c
		}
	}
	return 0
}

func comparePayload(a, b *Expr) int {
	switch a.kind {
	case KindInteger:
		return cmpOrdered(a.i, b.i)
	case KindReal:
		return cmpOrdered(a.r, b.r)
	case KindString, KindSymbol:
		return strings.Compare(a.s, b.s)
	case KindBool:
		if a.b == b.b {
			return 0
		}
		if !a.b {
			return -1
		}
		return 1
	}
	return 0
}

func cmpOrdered[T int | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String prints the expression in input syntax
func (n *Expr) String() string {
	var sb strings.Builder
	n.print(&sb)
	return sb.String()
}

func formatReal(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eIN") {
		s += "."
	}
	return s
}

func (n *Expr) printArgs(sb *strings.Builder, args []*Expr) {
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		a.print(sb)
	}
}

func (n *Expr) print(sb *strings.Builder) {
	info := &kindTable[n.kind]
	switch n.kind {
	case KindInteger:
		sb.WriteString(strconv.Itoa(n.i))
		return
	case KindReal:
		sb.WriteString(formatReal(n.r))
		return
	case KindString:
		sb.WriteString(strconv.Quote(n.s))
		return
	case KindBool:
		if n.b {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
		return
	case KindSymbol:
		sb.WriteString(n.s)
		return
	case KindPattern:
		n.args[0].print(sb)
		sb.WriteByte('_')
		return
	case KindList:
		sb.WriteByte('{')
		n.printArgs(sb, n.args)
		sb.WriteByte('}')
		return
	case KindSequence:
		n.printArgs(sb, n.args)
		return
	case KindExtract:
		n.args[0].print(sb)
		sb.WriteString("[[")
		n.args[1].print(sb)
		sb.WriteString("]]")
		return
	}
	if info.op != "" && len(n.args) == 2 {
		sb.WriteByte('(')
		n.args[0].print(sb)
		sb.WriteString(info.op)
		n.args[1].print(sb)
		sb.WriteByte(')')
		return
	}
	if info.op != "" && len(n.args) == 1 {
		sb.WriteString(info.op)
		n.args[0].print(sb)
		return
	}
	sb.WriteString(info.name)
	if n.kind <= KindNone {
		return
	}
	sb.WriteByte('[')
	n.printArgs(sb, n.args)
	sb.WriteByte(']')
}

// Text renders a value for output: strings without quotes, everything
// else in input syntax
func (n *Expr) Text() string {
	if n.kind == KindString {
		return n.s
	}
	return n.String()
}
