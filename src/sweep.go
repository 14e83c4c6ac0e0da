package simkernel

import (
	"fmt"
	"strings"
)

// sweepStatus is the life cycle of an Iterator or Creator within a session
type sweepStatus int

const (
	statusNdef sweepStatus = iota // registered, evaluates to the node itself
	statusInit                    // armed, bounds not evaluated yet
	statusEval                    // bounds or value under evaluation
	statusDefd                    // bound during the current init pass
	statusDone                    // evaluates to its current value
)

func (st sweepStatus) String() string {
	return [...]string{"Ndef", "Init", "Eval", "Defd", "Done"}[st]
}

// iteratorState is the session-side state of one Iterator node.
// Iterator[list] walks the elements of list; Iterator[expr, {var, start,
// end, delta}] walks expr with var bound to each value of the range.
type iteratorState struct {
	node   *Expr
	id     int
	status sweepStatus
	deps   []*iteratorState // Iterators read while this one initialized

	list     *Expr
	listStep int

	sp span
	k  int

	value *Expr
}

func (it *iteratorState) listForm() bool { return len(it.node.args) == 1 }

// creatorState is the session-side state of one Creator node
type creatorState struct {
	node   *Expr
	id     int
	status sweepStatus

	list   *Expr
	cursor int

	sp     span
	k      int
	primed bool
}

func (c *creatorState) listForm() bool { return len(c.node.args) == 1 }

// Session enumerates the sweep points of one program. It owns the Iterator
// and Creator registries, the dependency ordering and the odometer counter.
// Independent sessions share no state.
//
// Ordering rule: ordering runs from the fastest to the slowest varying
// Iterator. While an Iterator initializes, every other Iterator whose value
// it reads is recorded as a dependency. Once initialized it is inserted
// immediately before the front-most of its dependencies, or at the front
// when it has none. Every Iterator therefore varies faster than each
// Iterator its bounds read, and of two independent Iterators the one
// registered later varies faster.
type Session struct {
	iterators []*iteratorState
	creators  []*creatorState
	iterIndex map[*Expr]*iteratorState
	credIndex map[*Expr]*creatorState

	ordering  []*iteratorState
	initStack []*iteratorState

	count        int
	exhausted    bool
	creatorReset bool
}

// NewSession creates an empty session
func NewSession() *Session {
	ss := &Session{}
	ss.Clear()
	return ss
}

// Clear drops every registration
func (ss *Session) Clear() {
	ss.iterators = nil
	ss.creators = nil
	ss.iterIndex = make(map[*Expr]*iteratorState)
	ss.credIndex = make(map[*Expr]*creatorState)
	ss.ordering = nil
	ss.initStack = nil
	ss.count = -1
	ss.exhausted = false
}

// Reset returns every registered node to its pre-sweep state
func (ss *Session) Reset() {
	for _, it := range ss.iterators {
		it.status = statusNdef
	}
	for _, c := range ss.creators {
		c.status = statusNdef
	}
	ss.ordering = nil
	ss.initStack = nil
	ss.count = -1
	ss.exhausted = false
}

// Discover registers every Iterator and Creator of the tree in
// construction order (children before parents, left to right)
func (ss *Session) Discover(root *Expr) {
	for _, a := range root.args {
		ss.Discover(a)
	}
	ss.Register(root)
}

// Register adds an Iterator or Creator node; it reports whether the node was
// new to the session
func (ss *Session) Register(n *Expr) bool {
	switch n.kind {
	case KindIterator:
		if _, ok := ss.iterIndex[n]; ok {
			return false
		}
		it := &iteratorState{node: n, id: len(ss.iterators)}
		ss.iterators = append(ss.iterators, it)
		ss.iterIndex[n] = it
		return true
	case KindCreator:
		if _, ok := ss.credIndex[n]; ok {
			return false
		}
		c := &creatorState{node: n, id: len(ss.creators)}
		ss.creators = append(ss.creators, c)
		ss.credIndex[n] = c
		return true
	}
	return false
}

// Iterators returns the number of registered Iterators
func (ss *Session) Iterators() int { return len(ss.iterators) }

// Creators returns the number of registered Creators
func (ss *Session) Creators() int { return len(ss.creators) }

// Iteration returns the index of the current sweep point, -1 before the first
func (ss *Session) Iteration() int { return ss.count }

// Ordering returns the Iterator nodes from the fastest to the slowest varying
func (ss *Session) Ordering() []*Expr {
	out := make([]*Expr, len(ss.ordering))
	for i, it := range ss.ordering {
		out[i] = it.node
	}
	return out
}

// Next advances to the next sweep point. The first call initializes every
// Iterator and Creator; later calls step the odometer and re-arm the
// Creators. It returns false once the sweep is exhausted. Without Iterators
// there is exactly one sweep point.
func (ss *Session) Next(s *Scope) (bool, error) {
	if ss.exhausted {
		return false, nil
	}
	ss.count++
	if ss.count == 0 {
		if err := ss.initIterators(s); err != nil {
			return false, err
		}
		if err := ss.armCreators(s, true); err != nil {
			return false, err
		}
		s.logger.DebugCat(CatSweep, "sweep point 0: %s", ss.describe())
		return true, nil
	}
	if len(ss.ordering) == 0 {
		ss.exhausted = true
		return false, nil
	}
	ok, err := ss.increment(s, 0)
	if err != nil {
		return false, err
	}
	if !ok {
		ss.exhausted = true
		return false, nil
	}
	if err := ss.armCreators(s, false); err != nil {
		return false, err
	}
	s.logger.TraceCat(CatSweep, "sweep point %d: %s", ss.count, ss.describe())
	return true, nil
}

// Count walks the whole sweep and returns its number of points. The next
// call to Next starts the sweep over.
func (ss *Session) Count(s *Scope) (int, error) {
	ss.count = -1
	ss.exhausted = false
	n := 0
	for {
		ok, err := ss.Next(s)
		if err != nil {
			ss.count = -1
			ss.exhausted = false
			return 0, err
		}
		if !ok {
			break
		}
		n++
	}
	ss.count = -1
	ss.exhausted = false
	return n, nil
}

func (ss *Session) describe() string {
	parts := make([]string, len(ss.ordering))
	for i, it := range ss.ordering {
		parts[i] = fmt.Sprintf("#%d=%s", it.id, it.value)
	}
	return strings.Join(parts, " ")
}

// initIterators is the full init pass: every Iterator is armed and then
// evaluated in registry order. An Iterator read by another one's bounds is
// initialized on demand, before its reader.
func (ss *Session) initIterators(s *Scope) error {
	ss.ordering = ss.ordering[:0]
	ss.initStack = ss.initStack[:0]
	for _, it := range ss.iterators {
		it.status = statusInit
	}
	for _, it := range ss.iterators {
		if it.status == statusInit {
			if err := ss.initIterator(s, it); err != nil {
				return err
			}
		}
	}
	for _, it := range ss.iterators {
		if it.status != statusDefd {
			return newEvalError(IteratorInternalError, it.node)
		}
		it.status = statusDone
	}
	return nil
}

func (ss *Session) initIterator(s *Scope, it *iteratorState) error {
	it.status = statusEval
	it.deps = it.deps[:0]
	ss.initStack = append(ss.initStack, it)
	defer func() { ss.initStack = ss.initStack[:len(ss.initStack)-1] }()

	if it.listForm() {
		if err := it.loadList(s); err != nil {
			return err
		}
		v, err := it.list.args[0].Evaluate(s)
		if err != nil {
			return err
		}
		it.value = v
	} else {
		if err := it.loadSpan(s); err != nil {
			return err
		}
		if err := it.bind(s); err != nil {
			return err
		}
	}
	it.status = statusDefd
	ss.place(it)
	s.logger.DebugCat(CatSweep, "iterator #%d %s initialized to %s", it.id, it.node, it.value)
	return nil
}

// place inserts it into the ordering according to the ordering rule
func (ss *Session) place(it *iteratorState) {
	pos := 0
	if len(it.deps) > 0 {
		pos = len(ss.ordering)
		for i, o := range ss.ordering {
			if containsIterator(it.deps, o) {
				pos = i
				break
			}
		}
	}
	ss.ordering = append(ss.ordering, nil)
	copy(ss.ordering[pos+1:], ss.ordering[pos:])
	ss.ordering[pos] = it
}

func containsIterator(list []*iteratorState, it *iteratorState) bool {
	for _, o := range list {
		if o == it {
			return true
		}
	}
	return false
}

// noteRead records that the Iterator on top of the init stack reads it
func (ss *Session) noteRead(it *iteratorState) {
	if len(ss.initStack) == 0 {
		return
	}
	top := ss.initStack[len(ss.initStack)-1]
	if top != it && !containsIterator(top.deps, it) {
		top.deps = append(top.deps, it)
	}
}

func (it *iteratorState) loadList(s *Scope) error {
	list, err := it.node.args[0].Evaluate(s)
	if err != nil {
		return err
	}
	if !list.ListQ() || len(list.args) == 0 {
		return newEvalError(IteratorExpectList, it.node)
	}
	it.list = list
	it.listStep = 0
	return nil
}

func (it *iteratorState) loadSpan(s *Scope) error {
	start, end, delta, err := evalBoundsTop(s, it.node.args[1])
	if err != nil {
		return err
	}
	sp, ok, err := makeSpan(start, end, delta)
	if err != nil {
		return err
	}
	if !ok {
		return newEvalError(IteratorExpectNumber, it.node)
	}
	it.sp = sp
	it.k = 0
	return nil
}

// bind evaluates the Iterator expression with its variable at the current step
func (it *iteratorState) bind(s *Scope) error {
	if err := s.Push(); err != nil {
		return err
	}
	defer s.popFrame()
	s.DefineLocal(it.node.args[1].args[0].s, it.sp.at(it.k))
	v, err := it.node.args[0].Evaluate(s)
	if err != nil {
		return err
	}
	it.value = v
	return nil
}

// evalBoundsTop evaluates iteration bounds outside any Module or For, so an
// escaping Return or Break is an error
func evalBoundsTop(s *Scope, itList *Expr) (start, end, delta *Expr, err error) {
	start, end, delta, r, err := s.evalBounds(itList)
	if err != nil {
		return nil, nil, nil, err
	}
	if start == nil {
		if r.Signal == SignalBreak {
			return nil, nil, nil, newEvalError(BreakToGlobal, itList)
		}
		return nil, nil, nil, newEvalError(ReturnToGlobal, itList)
	}
	return start, end, delta, nil
}

// increment steps the Iterator at ordering position pos, carrying into the
// next slower one when it wraps. It returns false when the slowest Iterator
// is exhausted.
func (ss *Session) increment(s *Scope, pos int) (bool, error) {
	it := ss.ordering[pos]

	if it.listForm() {
		it.listStep++
		if it.listStep == len(it.list.args) {
			if ok, err := ss.carry(s, pos); !ok || err != nil {
				return ok, err
			}
			it.status = statusEval
			err := it.loadList(s)
			it.status = statusDone
			if err != nil {
				return false, err
			}
		}
		it.status = statusEval
		v, err := it.list.args[it.listStep].Evaluate(s)
		it.status = statusDone
		if err != nil {
			return false, err
		}
		it.value = v
		return true, nil
	}

	it.k++
	if !it.sp.contains(it.k) {
		if ok, err := ss.carry(s, pos); !ok || err != nil {
			return ok, err
		}
		it.status = statusEval
		err := it.loadSpan(s)
		it.status = statusDone
		if err != nil {
			return false, err
		}
	}
	it.status = statusEval
	err := it.bind(s)
	it.status = statusDone
	if err != nil {
		return false, err
	}
	return true, nil
}

func (ss *Session) carry(s *Scope, pos int) (bool, error) {
	if pos+1 == len(ss.ordering) {
		return false, nil
	}
	return ss.increment(s, pos+1)
}

// evalIterator is the evaluation rule of Iterator nodes
func evalIterator(n *Expr, s *Scope) (Result, error) {
	ss := s.session
	if ss == nil {
		return value(n), nil
	}
	it := ss.iterIndex[n]
	if it == nil {
		return value(n), nil
	}
	switch it.status {
	case statusNdef:
		return value(n), nil
	case statusEval:
		return Result{}, newEvalError(IteratorLoop, n)
	case statusInit:
		if err := ss.initIterator(s, it); err != nil {
			return Result{}, err
		}
	}
	ss.noteRead(it)
	return value(it.value), nil
}

// armCreators puts every Creator into Init, evaluates its list or bounds and
// marks it Done. With reset the cursors restart, otherwise they carry on
// from the previous sweep point.
func (ss *Session) armCreators(s *Scope, reset bool) error {
	ss.creatorReset = reset
	for _, c := range ss.creators {
		c.status = statusInit
	}
	for _, c := range ss.creators {
		if c.status == statusInit {
			if err := ss.armCreator(s, c); err != nil {
				return err
			}
		}
	}
	for _, c := range ss.creators {
		c.status = statusDone
	}
	return nil
}

func (ss *Session) armCreator(s *Scope, c *creatorState) error {
	c.status = statusEval
	if c.listForm() {
		list, err := c.node.args[0].Evaluate(s)
		if err != nil {
			return err
		}
		if !list.ListQ() || len(list.args) == 0 {
			return newEvalError(CreatorExpectList, c.node)
		}
		c.list = list
		if ss.creatorReset || !c.primed {
			c.cursor = 0
		}
		c.cursor %= len(list.args)
	} else {
		start, end, delta, err := evalBoundsTop(s, c.node.args[1])
		if err != nil {
			return err
		}
		sp, ok, err := makeSpan(start, end, delta)
		if err != nil {
			return err
		}
		if !ok {
			return newEvalError(CreatorExpectNumber, c.node)
		}
		c.sp = sp
		if ss.creatorReset || !c.primed || !sp.contains(c.k) {
			c.k = 0
		}
	}
	c.primed = true
	c.status = statusDefd
	return nil
}

// next produces the current Creator value and advances its cursor
func (c *creatorState) next(s *Scope) (*Expr, error) {
	if c.listForm() {
		v, err := c.list.args[c.cursor].Evaluate(s)
		c.cursor = (c.cursor + 1) % len(c.list.args)
		return v, err
	}
	if err := s.Push(); err != nil {
		return nil, err
	}
	s.DefineLocal(c.node.args[1].args[0].s, c.sp.at(c.k))
	v, err := c.node.args[0].Evaluate(s)
	s.popFrame()
	c.k++
	if !c.sp.contains(c.k) {
		c.k = 0
	}
	return v, err
}

// evalCreator is the evaluation rule of Creator nodes
func evalCreator(n *Expr, s *Scope) (Result, error) {
	ss := s.session
	if ss == nil {
		return value(n), nil
	}
	c := ss.credIndex[n]
	if c == nil {
		return value(n), nil
	}
	switch c.status {
	case statusNdef:
		return value(n), nil
	case statusEval:
		return Result{}, newEvalError(CreatorLoop, n)
	case statusInit:
		if err := ss.armCreator(s, c); err != nil {
			return Result{}, err
		}
	}
	c.status = statusEval
	v, err := c.next(s)
	c.status = statusDone
	if err != nil {
		return Result{}, err
	}
	return value(v), nil
}
