package simkernel

import (
	"bufio"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// evalImport reads a whitespace separated data file into a list of rows
func evalImport(n *Expr, s *Scope) (Result, error) {
	f, r, err := s.evalValue(n.args[0])
	if f == nil {
		return r, err
	}
	if !f.StringQ() {
		return value(n.rebuild([]*Expr{f})), nil
	}
	rows, err := importTable(f.s)
	if err != nil {
		return Result{}, &EvalError{Code: ImportFailed, Expr: n.String(), Err: err}
	}
	s.logger.DebugCat(CatIO, "imported %d rows from %s", len(rows), f.s)
	return value(NewList(rows...)), nil
}

func importTable(path string) ([]*Expr, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []*Expr
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		row := make([]*Expr, len(fields))
		for i, tok := range fields {
			row[i] = parseDatum(tok)
		}
		rows = append(rows, NewList(row...))
	}
	return rows, scanner.Err()
}

func parseDatum(tok string) *Expr {
	if v, err := strconv.Atoi(tok); err == nil {
		return NewInteger(v)
	}
	if v, err := strconv.ParseFloat(tok, 64); err == nil {
		return NewReal(v)
	}
	return NewString(tok)
}

// randomBounds evaluates the optional {start, end} arguments of Random and
// RandomInteger
func randomBounds(n *Expr, s *Scope) (lo, hi *Expr, r Result, err error) {
	if len(n.args) == 0 {
		return nil, nil, Result{}, nil
	}
	if len(n.args) != 2 {
		return nil, nil, Result{}, newEvalError(RandomToNumber, n)
	}
	vals, r, err := s.evalAll(n.args)
	if vals == nil {
		return nil, nil, r, err
	}
	if !vals[0].NumberQ() || !vals[1].NumberQ() {
		return nil, nil, Result{}, newEvalError(RandomToNumber, n)
	}
	return vals[0], vals[1], Result{}, nil
}

func evalRandom(n *Expr, s *Scope) (Result, error) {
	lo, hi, r, err := randomBounds(n, s)
	if err != nil || r.Escaped() {
		return r, err
	}
	u := s.rng.Float64()
	if lo == nil {
		return value(NewReal(u)), nil
	}
	return value(NewReal(lo.float() + (hi.float()-lo.float())*u)), nil
}

// evalRandomInteger draws from [start, end], or from [0, 2^31) without bounds
func evalRandomInteger(n *Expr, s *Scope) (Result, error) {
	lo, hi, r, err := randomBounds(n, s)
	if err != nil || r.Escaped() {
		return r, err
	}
	if lo == nil {
		return value(NewInteger(s.rng.IntN(math.MaxInt32))), nil
	}
	a, b := int(math.Ceil(lo.float())), int(math.Floor(hi.float()))
	if b < a {
		return Result{}, newEvalError(RandomToNumber, n)
	}
	return value(NewInteger(a + s.rng.IntN(b-a+1))), nil
}

func evalSeed(n *Expr, s *Scope) (Result, error) {
	if len(n.args) == 0 {
		s.Seed(time.Now().UnixNano())
		return value(nullExpr), nil
	}
	v, r, err := s.evalValue(n.args[0])
	if v == nil {
		return r, err
	}
	if !v.IntegerQ() {
		return Result{}, newEvalError(RandomSeedNotInteger, n)
	}
	s.Seed(int64(v.i))
	return value(nullExpr), nil
}

func evalToString(n *Expr, s *Scope) (Result, error) {
	x, r, err := s.evalValue(n.args[0])
	if x == nil {
		return r, err
	}
	switch {
	case x.StringQ():
		return value(x), nil
	case x.AtomQ():
		return value(NewString(x.String())), nil
	}
	return value(n.rebuild([]*Expr{x})), nil
}
