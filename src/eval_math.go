package simkernel

import (
	"math"
	"math/bits"
	"strings"
)

var unaryMath = map[Kind]func(float64) float64{
	KindSin:  math.Sin,
	KindCos:  math.Cos,
	KindTan:  math.Tan,
	KindSinh: math.Sinh,
	KindCosh: math.Cosh,
	KindExp:  math.Exp,
	KindLog:  math.Log,
}

// mapUnary evaluates the single argument and applies f, mapping over lists
func mapUnary(n *Expr, s *Scope, f func(x *Expr) (*Expr, bool)) (Result, error) {
	x, r, err := s.evalValue(n.args[0])
	if x == nil {
		return r, err
	}
	return value(applyUnary(n, x, f)), nil
}

func applyUnary(n, x *Expr, f func(x *Expr) (*Expr, bool)) *Expr {
	if x.ListQ() {
		out := make([]*Expr, len(x.args))
		for i, a := range x.args {
			out[i] = applyUnary(n, a, f)
		}
		return NewList(out...)
	}
	if v, ok := f(x); ok {
		return v
	}
	return n.rebuild([]*Expr{x})
}

func evalUnaryMath(n *Expr, s *Scope) (Result, error) {
	fn := unaryMath[n.kind]
	return mapUnary(n, s, func(x *Expr) (*Expr, bool) {
		if !x.NumberQ() {
			return nil, false
		}
		return NewReal(fn(x.float())), true
	})
}

func evalMinus(n *Expr, s *Scope) (Result, error) {
	return mapUnary(n, s, func(x *Expr) (*Expr, bool) {
		switch {
		case x.IntegerQ():
			return NewInteger(-x.i), true
		case x.NumberQ():
			return NewReal(-x.float()), true
		}
		return nil, false
	})
}

func evalNot(n *Expr, s *Scope) (Result, error) {
	return mapUnary(n, s, func(x *Expr) (*Expr, bool) {
		if !x.ToTypeQ(TypeBool) {
			return nil, false
		}
		b, _ := x.ToBool()
		return NewBool(!b), true
	})
}

func evalBinary(n *Expr, s *Scope) (Result, error) {
	vals, r, err := s.evalAll(n.args)
	if vals == nil {
		return r, err
	}
	v, err := applyBinary(n, vals[0], vals[1])
	if err != nil {
		return Result{}, err
	}
	return value(v), nil
}

// applyBinary broadcasts the operator of n over lists: list with atom maps
// element-wise, equal-length lists zip
func applyBinary(n, x, y *Expr) (*Expr, error) {
	switch {
	case x.ListQ() && y.ListQ():
		if len(x.args) != len(y.args) {
			return n.rebuild([]*Expr{x, y}), nil
		}
		out := make([]*Expr, len(x.args))
		for i := range x.args {
			v, err := applyBinary(n, x.args[i], y.args[i])
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return NewList(out...), nil
	case x.ListQ() && y.AtomQ():
		return mapBinary(x.args, func(a *Expr) (*Expr, error) { return applyBinary(n, a, y) })
	case x.AtomQ() && y.ListQ():
		return mapBinary(y.args, func(b *Expr) (*Expr, error) { return applyBinary(n, x, b) })
	}
	v, ok, err := scalarBinary(n, x, y)
	if err != nil {
		return nil, err
	}
	if !ok {
		return n.rebuild([]*Expr{x, y}), nil
	}
	return v, nil
}

func mapBinary(items []*Expr, f func(*Expr) (*Expr, error)) (*Expr, error) {
	out := make([]*Expr, len(items))
	for i, a := range items {
		v, err := f(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return NewList(out...), nil
}

// scalarBinary applies the operator of n to two atoms. ok is false when the
// operand kinds do not fit the operator.
func scalarBinary(n, x, y *Expr) (v *Expr, ok bool, err error) {
	ints := x.IntegerQ() && y.IntegerQ()
	nums := x.NumberQ() && y.NumberQ()
	strs := x.StringQ() && y.StringQ()

	switch n.kind {
	case KindPlus:
		switch {
		case ints:
			return NewInteger(x.i + y.i), true, nil
		case nums:
			return NewReal(x.float() + y.float()), true, nil
		case strs:
			return NewString(x.s + y.s), true, nil
		}
	case KindSubtract:
		switch {
		case ints:
			return NewInteger(x.i - y.i), true, nil
		case nums:
			return NewReal(x.float() - y.float()), true, nil
		}
	case KindMultiply:
		switch {
		case ints:
			return NewInteger(x.i * y.i), true, nil
		case nums:
			return NewReal(x.float() * y.float()), true, nil
		}
	case KindDivide:
		if nums {
			if y.float() == 0 {
				return nil, false, newEvalError(DivisionByZero, n)
			}
			return NewReal(x.float() / y.float()), true, nil
		}
	case KindMod:
		switch {
		case ints:
			if y.i == 0 {
				return nil, false, newEvalError(DivisionByZero, n)
			}
			return NewInteger(x.i % y.i), true, nil
		case nums:
			if y.float() == 0 {
				return nil, false, newEvalError(DivisionByZero, n)
			}
			return NewReal(math.Mod(x.float(), y.float())), true, nil
		}
	case KindPower:
		switch {
		case ints && y.i >= 0:
			return NewInteger(ipow(x.i, y.i)), true, nil
		case nums:
			return NewReal(math.Pow(x.float(), y.float())), true, nil
		}
	case KindAnd, KindOr:
		if x.ToTypeQ(TypeBool) && y.ToTypeQ(TypeBool) {
			a, _ := x.ToBool()
			b, _ := y.ToBool()
			if n.kind == KindAnd {
				return NewBool(a && b), true, nil
			}
			return NewBool(a || b), true, nil
		}
	default:
		var c int
		switch {
		case ints:
			c = cmpOrdered(x.i, y.i)
		case nums:
			c = cmpOrdered(x.float(), y.float())
		case strs:
			c = strings.Compare(x.s, y.s)
		case x.BoolQ() && y.BoolQ() && (n.kind == KindEqual || n.kind == KindNotEqual):
			c = comparePayload(x, y)
		default:
			return nil, false, nil
		}
		return NewBool(compareHolds(n.kind, c)), true, nil
	}
	return nil, false, nil
}

func compareHolds(kind Kind, c int) bool {
	switch kind {
	case KindGreater:
		return c > 0
	case KindLess:
		return c < 0
	case KindEqual:
		return c == 0
	case KindNotEqual:
		return c != 0
	case KindGreaterEqual:
		return c >= 0
	case KindLessEqual:
		return c <= 0
	}
	return false
}

func evalHammingDistance(n *Expr, s *Scope) (Result, error) {
	vals, r, err := s.evalAll(n.args)
	if vals == nil {
		return r, err
	}
	x, y := vals[0], vals[1]
	if !x.IntegerQ() || !y.IntegerQ() {
		return value(n.rebuild(vals)), nil
	}
	return value(NewInteger(bits.OnesCount(uint(x.i ^ y.i)))), nil
}

// ipow raises base to a non-negative exponent by squaring. Overflow wraps.
func ipow(base, exp int) int {
	r := 1
	for exp > 0 {
		if exp&1 == 1 {
			r *= base
		}
		base *= base
		exp >>= 1
	}
	return r
}
