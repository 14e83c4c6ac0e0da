package simkernel

import (
	"fmt"
	"io"
)

// SourcePosition tracks the position of code in source files
type SourcePosition struct {
	Line         int
	Column       int
	Length       int
	OriginalText string
	Filename     string
}

func (p *SourcePosition) String() string {
	if p == nil {
		return "<unknown>"
	}
	filename := p.Filename
	if filename == "" {
		filename = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", filename, p.Line, p.Column)
}

// Signal tags a control transfer travelling up the evaluator
type Signal int

const (
	SignalNone   Signal = iota // ordinary value
	SignalReturn               // Return[value] escaping to the enclosing Module or For
	SignalBreak                // Break[] escaping to the enclosing For
)

func (s Signal) String() string {
	switch s {
	case SignalReturn:
		return "Return"
	case SignalBreak:
		return "Break"
	}
	return "None"
}

// Result is the outcome of evaluating one node
type Result struct {
	Value  *Expr
	Signal Signal
}

// Escaped reports whether a Return or Break is in flight
func (r Result) Escaped() bool {
	return r.Signal != SignalNone
}

func value(e *Expr) Result {
	return Result{Value: e}
}

// Limits of the evaluator
const (
	DefaultMaxRecursion  = 256
	DefaultMaxScopeLevel = 512
)

// Config holds engine configuration
type Config struct {
	Debug            bool
	LogCategories    []LogCategory // categories enabled when Debug is set; empty means all
	MaxRecursion     int
	MaxScopeLevel    int
	ShowErrorContext bool
	ContextLines     int
	Output           io.Writer // target of Print[], defaults to stdout
	Seed             int64     // random seed, 0 seeds from the clock
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Debug:            false,
		MaxRecursion:     DefaultMaxRecursion,
		MaxScopeLevel:    DefaultMaxScopeLevel,
		ShowErrorContext: true,
		ContextLines:     2,
	}
}

func (c *Config) normalize() *Config {
	if c == nil {
		return DefaultConfig()
	}
	cp := *c
	if cp.MaxRecursion <= 0 {
		cp.MaxRecursion = DefaultMaxRecursion
	}
	if cp.MaxScopeLevel <= 0 {
		cp.MaxScopeLevel = DefaultMaxScopeLevel
	}
	return &cp
}
