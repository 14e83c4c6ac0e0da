package simkernel

// span is an arithmetic range start, start+delta, ... up to end. It stays
// in integers while start and delta are integers.
type span struct {
	start, end, delta *Expr
	intQ              bool
}

// makeSpan checks the evaluated bounds. ok is false when one of them is not
// a number; delta must be positive.
func makeSpan(start, end, delta *Expr) (sp span, ok bool, err error) {
	if !start.NumberQ() || !end.NumberQ() || !delta.NumberQ() {
		return span{}, false, nil
	}
	if delta.float() <= 0 {
		return span{}, true, newEvalError(IllegalStep, delta)
	}
	return span{start: start, end: end, delta: delta, intQ: start.IntegerQ() && delta.IntegerQ()}, true, nil
}

// at returns the k-th value of the range
func (sp span) at(k int) *Expr {
	if k == 0 {
		return sp.start
	}
	if sp.intQ {
		return NewInteger(sp.start.i + k*sp.delta.i)
	}
	return NewReal(sp.start.float() + float64(k)*sp.delta.float())
}

// contains reports whether the k-th value does not pass end
func (sp span) contains(k int) bool {
	if sp.intQ && sp.end.IntegerQ() {
		return sp.start.i+k*sp.delta.i <= sp.end.i
	}
	return sp.at(k).float() <= sp.end.float()
}

// evalBounds evaluates {var, start, end, delta?} with delta defaulting to 1
func (s *Scope) evalBounds(it *Expr) (start, end, delta *Expr, r Result, err error) {
	if start, r, err = s.evalValue(it.args[1]); start == nil {
		return
	}
	if end, r, err = s.evalValue(it.args[2]); end == nil {
		return nil, nil, nil, r, err
	}
	delta = NewInteger(1)
	if len(it.args) > 3 {
		if delta, r, err = s.evalValue(it.args[3]); delta == nil {
			return nil, nil, nil, r, err
		}
	}
	return start, end, delta, r, nil
}

func evalSequence(n *Expr, s *Scope) (Result, error) {
	vals, r, err := s.evalAll(n.args)
	if vals == nil {
		return r, err
	}
	return value(n.rebuild(vals)), nil
}

// evalTable evaluates body once for every value of the iteration range
func evalTable(n *Expr, s *Scope) (Result, error) {
	body, it := n.args[0], n.args[1]
	start, end, delta, r, err := s.evalBounds(it)
	if start == nil {
		return r, err
	}
	sp, ok, err := makeSpan(start, end, delta)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return value(n), nil
	}

	if err := s.Push(); err != nil {
		return Result{}, err
	}
	defer s.popFrame()
	var items []*Expr
	for k := 0; sp.contains(k); k++ {
		s.DefineLocal(it.args[0].s, sp.at(k))
		v, r, err := s.evalValue(body)
		if v == nil {
			return r, err
		}
		items = append(items, v)
	}
	return value(NewList(items...)), nil
}

// evalRange implements Range[n], Range[s, e] and Range[s, e, d]
func evalRange(n *Expr, s *Scope) (Result, error) {
	vals, r, err := s.evalAll(n.args)
	if vals == nil {
		return r, err
	}
	start, end, delta := NewInteger(1), vals[0], NewInteger(1)
	if len(vals) > 1 {
		start, end = vals[0], vals[1]
	}
	if len(vals) > 2 {
		delta = vals[2]
	}
	sp, ok, err := makeSpan(start, end, delta)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return value(n.rebuild(vals)), nil
	}
	var items []*Expr
	for k := 0; sp.contains(k); k++ {
		items = append(items, sp.at(k))
	}
	return value(NewList(items...)), nil
}

// evalExtract implements l[[p]] with zero-based positions. A position is an
// integer, All, or a list of integers; a Sequence descends one level per
// element, so m[[All, 1]] is the first column of a matrix.
func evalExtract(n *Expr, s *Scope) (Result, error) {
	vals, r, err := s.evalAll(n.args)
	if vals == nil {
		return r, err
	}
	l, p := vals[0], vals[1]
	if !l.ListQ() {
		return value(n.rebuild(vals)), nil
	}
	path := []*Expr{p}
	if p.kind == KindSequence {
		path = p.args
	}
	if !positionPathQ(path) {
		return value(n.rebuild(vals)), nil
	}
	v, err := extractPath(n, l, path)
	if err != nil {
		return Result{}, err
	}
	return value(v), nil
}

func positionPathQ(path []*Expr) bool {
	for _, p := range path {
		switch {
		case p.IntegerQ(), p.kind == KindAll:
		case p.ListQ():
			for _, i := range p.args {
				if !i.IntegerQ() {
					return false
				}
			}
		default:
			return false
		}
	}
	return true
}

func extractPath(n, l *Expr, path []*Expr) (*Expr, error) {
	if len(path) == 0 {
		return l, nil
	}
	if !l.ListQ() {
		return nil, newEvalError(ExtractOutOfRange, n)
	}
	p, rest := path[0], path[1:]
	switch {
	case p.IntegerQ():
		if p.i < 0 || p.i >= len(l.args) {
			return nil, newEvalError(ExtractOutOfRange, n)
		}
		return extractPath(n, l.args[p.i], rest)
	case p.kind == KindAll:
		if len(rest) == 0 {
			return l, nil
		}
		return extractEach(n, l.args, rest)
	}
	picked := make([]*Expr, len(p.args))
	for j, i := range p.args {
		if i.i < 0 || i.i >= len(l.args) {
			return nil, newEvalError(ExtractOutOfRange, n)
		}
		picked[j] = l.args[i.i]
	}
	return extractEach(n, picked, rest)
}

func extractEach(n *Expr, items []*Expr, rest []*Expr) (*Expr, error) {
	out := make([]*Expr, len(items))
	for j, item := range items {
		v, err := extractPath(n, item, rest)
		if err != nil {
			return nil, err
		}
		out[j] = v
	}
	return NewList(out...), nil
}

func withItems(items ...[]*Expr) []*Expr {
	var out []*Expr
	for _, part := range items {
		out = append(out, part...)
	}
	return out
}

func evalAppend(n *Expr, s *Scope) (Result, error) {
	vals, r, err := s.evalAll(n.args)
	if vals == nil {
		return r, err
	}
	if !vals[0].ListQ() {
		return value(n.rebuild(vals)), nil
	}
	return value(NewList(withItems(vals[0].args, vals[1:2])...)), nil
}

func evalPrepend(n *Expr, s *Scope) (Result, error) {
	vals, r, err := s.evalAll(n.args)
	if vals == nil {
		return r, err
	}
	if !vals[0].ListQ() {
		return value(n.rebuild(vals)), nil
	}
	return value(NewList(withItems(vals[1:2], vals[0].args)...)), nil
}

func evalJoin(n *Expr, s *Scope) (Result, error) {
	vals, r, err := s.evalAll(n.args)
	if vals == nil {
		return r, err
	}
	if !vals[0].ListQ() || !vals[1].ListQ() {
		return value(n.rebuild(vals)), nil
	}
	return value(NewList(withItems(vals[0].args, vals[1].args)...)), nil
}

func evalLength(n *Expr, s *Scope) (Result, error) {
	vals, r, err := s.evalAll(n.args)
	if vals == nil {
		return r, err
	}
	if !vals[0].ListQ() {
		return value(n.rebuild(vals)), nil
	}
	return value(NewInteger(len(vals[0].args))), nil
}

// evalReplace sets the element at a zero-based index
func evalReplace(n *Expr, s *Scope) (Result, error) {
	vals, r, err := s.evalAll(n.args)
	if vals == nil {
		return r, err
	}
	l, i, a := vals[0], vals[1], vals[2]
	if !l.ListQ() || !i.IntegerQ() {
		return value(n.rebuild(vals)), nil
	}
	if i.i < 0 || i.i >= len(l.args) {
		return Result{}, newEvalError(ReplaceOutOfRange, n)
	}
	items := withItems(l.args)
	items[i.i] = a
	return value(NewList(items...)), nil
}

// evalInsert inserts before a zero-based index; the length itself appends
func evalInsert(n *Expr, s *Scope) (Result, error) {
	vals, r, err := s.evalAll(n.args)
	if vals == nil {
		return r, err
	}
	l, i, a := vals[0], vals[1], vals[2]
	if !l.ListQ() || !i.IntegerQ() {
		return value(n.rebuild(vals)), nil
	}
	if i.i < 0 || i.i > len(l.args) {
		return Result{}, newEvalError(InsertOutOfRange, n)
	}
	return value(NewList(withItems(l.args[:i.i], []*Expr{a}, l.args[i.i:])...)), nil
}
