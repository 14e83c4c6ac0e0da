package simkernel

// Eval evaluates n. A node already in normal form returns itself; Return and
// Break travel in Result.Signal rather than as errors.
func (n *Expr) Eval(s *Scope) (Result, error) {
	return kindTable[n.kind].eval(n, s)
}

// Evaluate evaluates n as a top-level expression. A Return or Break that
// escapes n is reported as ReturnToGlobal or BreakToGlobal.
func (n *Expr) Evaluate(s *Scope) (*Expr, error) {
	r, err := n.Eval(s)
	if err != nil {
		return nil, err
	}
	switch r.Signal {
	case SignalReturn:
		return nil, newEvalError(ReturnToGlobal, n)
	case SignalBreak:
		return nil, newEvalError(BreakToGlobal, n)
	}
	return r.Value, nil
}

// evalValue evaluates e; the returned value is nil when evaluation failed or
// a control signal escaped, in which case the caller hands back r and err
func (s *Scope) evalValue(e *Expr) (*Expr, Result, error) {
	r, err := e.Eval(s)
	if err != nil || r.Escaped() {
		return nil, r, err
	}
	return r.Value, r, nil
}

// evalAll evaluates exprs in order with the conventions of evalValue
func (s *Scope) evalAll(exprs []*Expr) ([]*Expr, Result, error) {
	out := make([]*Expr, len(exprs))
	for i, e := range exprs {
		v, r, err := s.evalValue(e)
		if v == nil {
			return nil, r, err
		}
		out[i] = v
	}
	return out, Result{}, nil
}

// evalGuarded evaluates a bound definition under the recursion guard
func (s *Scope) evalGuarded(body *Expr) (Result, error) {
	if body.AtomQ() && body.kind != KindSymbol {
		return body.Eval(s)
	}
	body.depth++
	defer func() { body.depth-- }()
	if body.depth > s.maxRecursion {
		return Result{}, newEvalError(MaxRecursion, body)
	}
	return body.Eval(s)
}

func evalSelf(n *Expr, _ *Scope) (Result, error) {
	return value(n), nil
}

func evalNoMatch(n *Expr, _ *Scope) (Result, error) {
	return Result{}, newEvalError(EvaluationOnNoMatch, n)
}

func evalSymbol(n *Expr, s *Scope) (Result, error) {
	body := s.Match(n.s)
	if body == noMatchExpr {
		return value(n), nil
	}
	// a symbol bound to itself, as Module locals are, is in normal form
	if body.kind == KindSymbol && body.s == n.s {
		return value(body), nil
	}
	return s.evalGuarded(body)
}

func evalEvaluateAt(n *Expr, s *Scope) (Result, error) {
	f, r, err := s.evalValue(n.args[0])
	if f == nil {
		return r, err
	}
	a, r, err := s.evalValue(n.args[1])
	if a == nil {
		return r, err
	}

	switch {
	case f.kind == KindSymbol:
		pattern, body := s.MatchPattern(f.s, a)
		if body == noMatchExpr {
			return value(n.rebuild([]*Expr{f, a})), nil
		}
		if err := s.Push(); err != nil {
			return Result{}, err
		}
		defer s.popFrame()
		s.bindPattern(pattern, a)
		return s.evalGuarded(body)

	case f.kind == KindFunction:
		params := f.args[0].args
		if !a.ListQ() || len(a.args) != len(params) {
			return Result{}, newEvalError(EvaluateAtIllegalArgs, n)
		}
		if err := s.Push(); err != nil {
			return Result{}, err
		}
		defer s.popFrame()
		for i, p := range params {
			s.DefineLocal(p.s, a.args[i])
		}
		return s.evalGuarded(f.args[1])

	case f.AtomQ():
		return Result{}, newEvalError(EvaluateAtOnAtom, n)
	}
	return value(n.rebuild([]*Expr{f, a})), nil
}

// assign implements Set (evaluated body) and Define (body kept as written)
func assign(n *Expr, s *Scope, evaluateBody bool) (Result, error) {
	lhs, body := n.args[0], n.args[1]
	if evaluateBody {
		v, r, err := s.evalValue(body)
		if v == nil {
			return r, err
		}
		body = v
	}
	if lhs.kind == KindEvaluateAt {
		pattern, r, err := s.evalValue(lhs.args[1])
		if pattern == nil {
			return r, err
		}
		s.DefinePattern(lhs.args[0].s, pattern, body)
	} else {
		s.Define(lhs.s, body)
	}
	if s.logger.IsCategoryEnabled(CatScope) {
		s.logger.DebugCat(CatScope, "%s", n)
	}
	return value(nullExpr), nil
}

func evalSet(n *Expr, s *Scope) (Result, error) {
	return assign(n, s, true)
}

func evalDefine(n *Expr, s *Scope) (Result, error) {
	return assign(n, s, false)
}
