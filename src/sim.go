package simkernel

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotDefined is returned by Sim.Get for names without a plain definition
var ErrNotDefined = errors.New("parameter not defined")

// Sim is the interface between a parameter program and a simulation kernel.
// It loads the program, walks its sweep points and hands out parameter
// values for the current point.
type Sim struct {
	engine     *SimKernel
	program    *Expr
	filename   string
	iterations int
	worker     int
}

// NewSim creates a driver with its own engine
func NewSim(config *Config) *Sim {
	return &Sim{engine: New(config)}
}

// Engine returns the underlying expression engine
func (sim *Sim) Engine() *SimKernel { return sim.engine }

// Logger returns the driver logger
func (sim *Sim) Logger() *Logger { return sim.engine.logger }

// Worker returns the index of the worker running this driver, 0 when serial
func (sim *Sim) Worker() int { return sim.worker }

// Out returns the writer kernels should print to for the current point
func (sim *Sim) Out() io.Writer { return sim.engine.scope.out }

// Load parses and runs a parameter program, then counts its sweep points
func (sim *Sim) Load(src, filename string) error {
	root, err := sim.engine.Parse(src, filename)
	if err != nil {
		return err
	}
	return sim.Init(root, filename)
}

// Init runs an already parsed program and counts its sweep points
func (sim *Sim) Init(program *Expr, filename string) error {
	sim.engine.session.Clear()
	sim.program = program
	sim.filename = filename
	if err := sim.engine.Run(program); err != nil {
		return fmt.Errorf("parameters could not be initialized: %w", err)
	}
	n, err := sim.engine.session.Count(sim.engine.scope)
	if err != nil {
		sim.engine.ReportError(err, nil)
		return fmt.Errorf("sweep could not be enumerated: %w", err)
	}
	sim.iterations = n
	sim.Logger().DebugCat(CatSim, "%s: %d iterators, %d creators, %d sweep points",
		filename, sim.engine.session.Iterators(), sim.engine.session.Creators(), n)
	return nil
}

// Iterations returns the number of sweep points
func (sim *Sim) Iterations() int { return sim.iterations }

// Iteration returns the index of the current sweep point, -1 before the first
func (sim *Sim) Iteration() int { return sim.engine.session.Iteration() }

// Next advances to the next sweep point and reports whether there is one
func (sim *Sim) Next() (bool, error) {
	ok, err := sim.engine.session.Next(sim.engine.scope)
	if err != nil {
		sim.engine.ReportError(err, nil)
		return false, fmt.Errorf("sweep point %d: %w", sim.Iteration(), err)
	}
	return ok, nil
}

// Defined reports whether name has a definition
func (sim *Sim) Defined(name string) bool {
	return sim.engine.scope.Defined(name)
}

// DefinedAs reports whether name is bound to a node of the given kind, such
// as a Creator
func (sim *Sim) DefinedAs(name string, kind Kind) bool {
	body := sim.engine.scope.Match(name)
	return body != noMatchExpr && body.kind == kind
}

// Definition returns the unevaluated definition of name
func (sim *Sim) Definition(name string) (*Expr, error) {
	body := sim.engine.scope.Match(name)
	if body == noMatchExpr {
		return nil, fmt.Errorf("%s: %w", name, ErrNotDefined)
	}
	return body, nil
}

// Get evaluates the definition of name at the current sweep point.
// Reading a Creator advances it.
func (sim *Sim) Get(name string) (*Expr, error) {
	body, err := sim.Definition(name)
	if err != nil {
		return nil, err
	}
	v, err := body.Evaluate(sim.engine.scope)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// Get converts parameter name to T. On failure it logs a warning and
// returns def with ok false.
func Get[T Value](sim *Sim, name string, def T) (T, bool) {
	e, err := sim.Get(name)
	if err == nil {
		var v T
		if v, err = ToValue[T](e); err == nil {
			return v, true
		}
	}
	sim.Logger().WarnCat(CatConversion, "%v. Using %v instead!", err, def)
	return def, false
}

// GetList converts parameter name to a slice. A single value becomes a
// one element slice; elements that do not convert are replaced by def.
func GetList[T Value](sim *Sim, name string, def T) ([]T, bool) {
	e, err := sim.Get(name)
	if err != nil {
		sim.Logger().WarnCat(CatConversion, "%v. Using {%v} instead!", err, def)
		return []T{def}, false
	}
	return toListDefault(sim, name, e, def)
}

// GetMatrix converts parameter name to a slice of rows
func GetMatrix[T Value](sim *Sim, name string, def T) ([][]T, bool) {
	e, err := sim.Get(name)
	if err != nil {
		sim.Logger().WarnCat(CatConversion, "%v. Using {{%v}} instead!", err, def)
		return [][]T{{def}}, false
	}
	if !e.ListQ() {
		row, ok := toListDefault(sim, name, e, def)
		return [][]T{row}, ok
	}
	out := make([][]T, len(e.args))
	ok := true
	for i, row := range e.args {
		var rowOK bool
		if out[i], rowOK = toListDefault(sim, name, row, def); !rowOK {
			ok = false
		}
	}
	return out, ok
}

func toListDefault[T Value](sim *Sim, name string, e *Expr, def T) ([]T, bool) {
	items := []*Expr{e}
	if e.ListQ() {
		items = e.args
	}
	out := make([]T, len(items))
	ok := true
	for i, item := range items {
		v, err := ToValue[T](item)
		if err != nil {
			sim.Logger().WarnCat(CatConversion, "%s[[%d]]: %v. Using %v instead!", name, i, err, def)
			v, ok = def, false
		}
		out[i] = v
	}
	return out, ok
}

// Define binds name to a native value or an expression in the global scope
func (sim *Sim) Define(name string, value any) error {
	e, err := FromValue(value)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	sim.engine.scope.Define(name, e)
	return nil
}

// Info describes the driver state and every definition
func (sim *Sim) Info() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Sim: worker = %d iteration = %d iterations = %d\n", sim.worker, sim.Iteration(), sim.iterations)
	if sim.program != nil {
		fmt.Fprintf(&sb, "global = %s\n", sim.program)
	}
	sb.WriteString("scope:\n")
	sb.WriteString(sim.engine.scope.Info())
	return sb.String()
}

// FileExtension returns the per point file suffix, ".0007" for point 7
func (sim *Sim) FileExtension() string {
	return fmt.Sprintf(".%04d", sim.Iteration())
}
