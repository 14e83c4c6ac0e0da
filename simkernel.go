// Package simkernel provides a symbolic expression engine for simulation
// parameter sweeps. A parameter program binds names to values, Iterators
// and Creators; the engine enumerates every combination of Iterator values
// and hands the bound parameters to a simulation kernel once per point.
//
// This package re-exports the public API from the implementation in src/.
// For full documentation, see the implementation package.
//
// Basic usage:
//
//	sim := simkernel.NewSim(simkernel.DefaultConfig())
//	if err := sim.Load(`a = Iterator[i, {i, 1, 3}]; b = 2*a`, "params.sim"); err != nil {
//		return err
//	}
//	for {
//		ok, err := sim.Next()
//		if err != nil || !ok {
//			break
//		}
//		b, _ := simkernel.Get(sim, "b", 0)
//		fmt.Println(sim.Iteration(), b)
//	}
package simkernel

import (
	impl "github.com/phroun/simkernel/src"
)

// =============================================================================
// ENGINE
// =============================================================================

// SimKernel is the expression engine: a global scope, its sweep session and a logger.
type SimKernel = impl.SimKernel

// Config holds configuration options for the engine.
type Config = impl.Config

// Logger writes categorized diagnostics.
type Logger = impl.Logger

// LogLevel is the severity of a log message.
type LogLevel = impl.LogLevel

// LogCategory is the subsystem a log message comes from.
type LogCategory = impl.LogCategory

// Log categories.
const (
	CatNone       = impl.CatNone
	CatParse      = impl.CatParse
	CatEval       = impl.CatEval
	CatScope      = impl.CatScope
	CatSweep      = impl.CatSweep
	CatConversion = impl.CatConversion
	CatIO         = impl.CatIO
	CatConfig     = impl.CatConfig
	CatSim        = impl.CatSim
	CatUser       = impl.CatUser
)

// Evaluator limits.
const (
	DefaultMaxRecursion  = impl.DefaultMaxRecursion
	DefaultMaxScopeLevel = impl.DefaultMaxScopeLevel
)

// AllCategories lists every named log category.
var AllCategories = impl.AllCategories

// =============================================================================
// EXPRESSIONS
// =============================================================================

// Expr is an immutable expression node.
type Expr = impl.Expr

// Kind selects the node type of an Expr.
type Kind = impl.Kind

// ValueType names a native type an expression may convert to.
type ValueType = impl.ValueType

// Scope is the stack of definition frames an expression is evaluated in.
type Scope = impl.Scope

// Session holds the Iterators and Creators of one sweep.
type Session = impl.Session

// Result is an evaluated value with its control signal.
type Result = impl.Result

// Signal tags a Result that escapes its block.
type Signal = impl.Signal

// Control signals.
const (
	SignalNone   = impl.SignalNone
	SignalReturn = impl.SignalReturn
	SignalBreak  = impl.SignalBreak
)

// Parser reads program text into expressions.
type Parser = impl.Parser

// SourcePosition tracks location in source code for error reporting.
type SourcePosition = impl.SourcePosition

// Value lists the native types parameters convert to.
type Value = impl.Value

// =============================================================================
// ERRORS
// =============================================================================

// EvalError is a failed evaluation.
type EvalError = impl.EvalError

// EvalCode identifies an evaluation failure.
type EvalCode = impl.EvalCode

// SyntaxError is a malformed program or node.
type SyntaxError = impl.SyntaxError

// SyntaxCode identifies a syntax failure.
type SyntaxCode = impl.SyntaxCode

// Driver errors.
var (
	ErrAbort      = impl.ErrAbort
	ErrExit       = impl.ErrExit
	ErrNotDefined = impl.ErrNotDefined
)

// =============================================================================
// SIMULATION DRIVER
// =============================================================================

// Sim walks the sweep points of a parameter program.
type Sim = impl.Sim

// Kernel is one simulation run.
type Kernel = impl.Kernel

// KernelFactory creates the Kernel for one sweep point.
type KernelFactory = impl.KernelFactory

// Control runs a Kernel once per sweep point.
type Control = impl.Control

// Window selects the sweep points to run.
type Window = impl.Window

// Summary reports the outcome of a run.
type Summary = impl.Summary

// ParamKernel prints the parameters of each point.
type ParamKernel = impl.ParamKernel

// ParamFormat selects the ParamKernel output format.
type ParamFormat = impl.ParamFormat

// Output formats.
const (
	FormatText = impl.FormatText
	FormatYAML = impl.FormatYAML
)

// FullWindow covers every sweep point.
var FullWindow = impl.FullWindow

// REPL is the online interpreter.
type REPL = impl.REPL

// REPLConfig configures the REPL.
type REPLConfig = impl.REPLConfig

// =============================================================================
// CONSTRUCTORS AND HELPERS
// =============================================================================

var (
	// New creates a new engine.
	New = impl.New
	// DefaultConfig returns the default configuration.
	DefaultConfig = impl.DefaultConfig
	// NewLogger creates a logger.
	NewLogger = impl.NewLogger
	// NewLoggerFromConfig creates a logger honoring Debug and LogCategories.
	NewLoggerFromConfig = impl.NewLoggerFromConfig
	// ParseCategory maps a category name to its LogCategory.
	ParseCategory = impl.ParseCategory
	// NewScope creates a scope with only the global frame.
	NewScope = impl.NewScope
	// NewSession creates an empty sweep session.
	NewSession = impl.NewSession
	// Parse parses a program into a Global node.
	Parse = impl.Parse
	// NewParser creates a parser over source text.
	NewParser = impl.NewParser
	// Incomplete reports whether input needs more lines.
	Incomplete = impl.Incomplete
	// FromValue builds an expression from a native value.
	FromValue = impl.FromValue
	// IsEvalError reports whether err carries an evaluation code.
	IsEvalError = impl.IsEvalError
	// IsSyntaxError reports whether err carries a syntax code.
	IsSyntaxError = impl.IsSyntaxError

	// NewSim creates a sweep driver.
	NewSim = impl.NewSim
	// NewControl creates a serial controller over the full sweep.
	NewControl = impl.NewControl
	// Single selects one sweep point.
	Single = impl.Single
	// ParseParamFormat maps a format name to a ParamFormat.
	ParseParamFormat = impl.ParseParamFormat
	// NewParamKernelFactory creates ParamKernels.
	NewParamKernelFactory = impl.NewParamKernelFactory
	// NewREPL creates a REPL over an engine.
	NewREPL = impl.NewREPL

	// Null returns the Null node.
	Null = impl.Null
	// NewInteger creates an Integer node.
	NewInteger = impl.NewInteger
	// NewReal creates a Real node.
	NewReal = impl.NewReal
	// NewString creates a String node.
	NewString = impl.NewString
	// NewBool creates a Bool node.
	NewBool = impl.NewBool
	// NewSymbol creates a Symbol node.
	NewSymbol = impl.NewSymbol
	// NewList creates a List node.
	NewList = impl.NewList
)

// ToValue converts an evaluated expression to a native value.
func ToValue[T Value](e *Expr) (T, error) { return impl.ToValue[T](e) }

// ToSlice converts a list to a slice.
func ToSlice[T Value](e *Expr) ([]T, error) { return impl.ToSlice[T](e) }

// ToMatrix converts a list of lists to a slice of rows.
func ToMatrix[T Value](e *Expr) ([][]T, error) { return impl.ToMatrix[T](e) }

// Get converts parameter name to T, logging a warning and returning def on failure.
func Get[T Value](sim *Sim, name string, def T) (T, bool) { return impl.Get(sim, name, def) }

// GetList converts parameter name to a slice.
func GetList[T Value](sim *Sim, name string, def T) ([]T, bool) {
	return impl.GetList(sim, name, def)
}

// GetMatrix converts parameter name to a slice of rows.
func GetMatrix[T Value](sim *Sim, name string, def T) ([][]T, bool) {
	return impl.GetMatrix(sim, name, def)
}
