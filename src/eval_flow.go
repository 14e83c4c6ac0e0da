package simkernel

import (
	"fmt"
	"strings"
)

func evalBlock(n *Expr, s *Scope) (Result, error) {
	for _, stmt := range n.args {
		r, err := stmt.Eval(s)
		if err != nil || r.Escaped() {
			return r, err
		}
	}
	return value(nullExpr), nil
}

// evalGlobal runs a program. Iterators and Creators of the program are
// registered with the scope's session before the first statement runs.
func evalGlobal(n *Expr, s *Scope) (Result, error) {
	if s.session != nil {
		s.session.Discover(n)
	}
	for _, stmt := range n.args {
		r, err := stmt.Eval(s)
		if err != nil {
			return r, err
		}
		switch r.Signal {
		case SignalReturn:
			return Result{}, newEvalError(ReturnToGlobal, stmt)
		case SignalBreak:
			return Result{}, newEvalError(BreakToGlobal, stmt)
		}
	}
	return value(nullExpr), nil
}

func evalReturn(n *Expr, s *Scope) (Result, error) {
	if len(n.args) == 0 {
		return Result{Value: nullExpr, Signal: SignalReturn}, nil
	}
	v, r, err := s.evalValue(n.args[0])
	if v == nil {
		return r, err
	}
	return Result{Value: v, Signal: SignalReturn}, nil
}

func evalBreak(_ *Expr, _ *Scope) (Result, error) {
	return Result{Value: nullExpr, Signal: SignalBreak}, nil
}

// evalModule runs its block in a fresh frame in which every local symbol
// is bound to itself. Return ends the block with its value.
func evalModule(n *Expr, s *Scope) (Result, error) {
	if err := s.Push(); err != nil {
		return Result{}, err
	}
	defer s.popFrame()
	for _, sym := range n.args[0].args {
		s.DefineLocal(sym.s, sym)
	}
	r, err := n.args[1].Eval(s)
	if err != nil {
		return r, err
	}
	switch r.Signal {
	case SignalReturn:
		return value(r.Value), nil
	case SignalBreak:
		return r, nil
	}
	return value(nullExpr), nil
}

func evalIf(n *Expr, s *Scope) (Result, error) {
	c, r, err := s.evalValue(n.args[0])
	if c == nil {
		return r, err
	}
	if !c.ToTypeQ(TypeBool) {
		args := append([]*Expr{c}, n.args[1:]...)
		return value(n.rebuild(args)), nil
	}
	b, _ := c.ToBool()
	switch {
	case b:
		return n.args[1].Eval(s)
	case len(n.args) == 3:
		return n.args[2].Eval(s)
	}
	return value(nullExpr), nil
}

// evalFor runs For[init, cond, inc, body]. The loop stops when cond is
// false or not a truth value. Break yields Null, Return yields its value.
func evalFor(n *Expr, s *Scope) (Result, error) {
	start, cond, inc, body := n.args[0], n.args[1], n.args[2], n.args[3]

	// run evaluates e and reports whether the loop has to stop
	run := func(e *Expr) (Result, bool, error) {
		r, err := e.Eval(s)
		switch {
		case err != nil:
			return Result{}, true, err
		case r.Signal == SignalReturn:
			return value(r.Value), true, nil
		case r.Signal == SignalBreak:
			return value(nullExpr), true, nil
		}
		return r, false, nil
	}

	if r, stop, err := run(start); stop {
		return r, err
	}
	for {
		r, stop, err := run(cond)
		if stop {
			return r, err
		}
		if !r.Value.ToTypeQ(TypeBool) {
			break
		}
		if b, _ := r.Value.ToBool(); !b {
			break
		}
		if r, stop, err := run(body); stop {
			return r, err
		}
		if r, stop, err := run(inc); stop {
			return r, err
		}
	}
	return value(nullExpr), nil
}

func evalPrint(n *Expr, s *Scope) (Result, error) {
	vals, r, err := s.evalAll(n.args)
	if vals == nil {
		return r, err
	}
	var sb strings.Builder
	for _, v := range vals {
		sb.WriteString(v.Text())
	}
	sb.WriteByte('\n')
	if _, err := fmt.Fprint(s.out, sb.String()); err != nil {
		s.logger.WarnCat(CatIO, "Print failed: %v", err)
	}
	return value(nullExpr), nil
}
