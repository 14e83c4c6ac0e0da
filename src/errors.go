package simkernel

import (
	"errors"
	"fmt"
)

// EvalCode identifies an evaluation error
type EvalCode int

const (
	NoEvalError EvalCode = iota

	// conversions
	NonNumberToReal
	NonNumberToIntg
	NonStrgToStrg
	NonBoolToBool

	// limits
	MaxRecursion
	MaxScope

	// function application
	EvaluateAtOnAtom
	EvaluateAtIllegalArgs

	// lists
	ExtractOutOfRange
	InsertOutOfRange
	ReplaceOutOfRange

	// control flow
	ReturnToGlobal
	BreakToGlobal

	// arithmetic
	DivisionByZero
	IllegalStep

	// sweeps
	IteratorExpectList
	IteratorExpectNumber
	IteratorLoop
	CreatorExpectList
	CreatorExpectNumber
	CreatorLoop

	// extras
	RandomToNumber
	RandomSeedNotInteger
	TypeMismatch
	ImportFailed

	// internal invariants, never expected in a correct program
	EvaluateBase
	RecursionUnderflow
	ScopeUnderflow
	OutOfArgRange
	SymbolNameOnNonSymbol
	EvaluationOnNoMatch
	IteratorInternalError
)

var evalCodeNames = map[EvalCode]string{
	NoEvalError:           "NoEvalError",
	NonNumberToReal:       "NonNumberToReal",
	NonNumberToIntg:       "NonNumberToIntg",
	NonStrgToStrg:         "NonStrgToStrg",
	NonBoolToBool:         "NonBoolToBool",
	MaxRecursion:          "MaxRecursion",
	MaxScope:              "MaxScope",
	EvaluateAtOnAtom:      "EvaluateAtOnAtom",
	EvaluateAtIllegalArgs: "EvaluateAtIllegalArgs",
	ExtractOutOfRange:     "ExtractOutOfRange",
	InsertOutOfRange:      "InsertOutOfRange",
	ReplaceOutOfRange:     "ReplaceOutOfRange",
	ReturnToGlobal:        "ReturnToGlobal",
	BreakToGlobal:         "BreakToGlobal",
	DivisionByZero:        "DivisionByZero",
	IllegalStep:           "IllegalStep",
	IteratorExpectList:    "IteratorExpectList",
	IteratorExpectNumber:  "IteratorExpectNumber",
	IteratorLoop:          "IteratorLoop",
	CreatorExpectList:     "CreatorExpectList",
	CreatorExpectNumber:   "CreatorExpectNumber",
	CreatorLoop:           "CreatorLoop",
	RandomToNumber:        "RandomToNumber",
	RandomSeedNotInteger:  "RandomSeedNotInteger",
	TypeMismatch:          "TypeMismatch",
	ImportFailed:          "ImportFailed",
	EvaluateBase:          "EvaluateBase",
	RecursionUnderflow:    "RecursionUnderflow",
	ScopeUnderflow:        "ScopeUnderflow",
	OutOfArgRange:         "OutOfArgRange",
	SymbolNameOnNonSymbol: "SymbolNameOnNonSymbol",
	EvaluationOnNoMatch:   "EvaluationOnNoMatch",
	IteratorInternalError: "IteratorInternalError",
}

var evalCodeDescriptions = map[EvalCode]string{
	NoEvalError:           "no error",
	NonNumberToReal:       "cannot convert expression to Real",
	NonNumberToIntg:       "cannot convert expression to Integer",
	NonStrgToStrg:         "cannot convert expression to String",
	NonBoolToBool:         "cannot convert expression to Bool",
	MaxRecursion:          "recursion limit reached",
	MaxScope:              "scope depth limit reached",
	EvaluateAtOnAtom:      "[] applied to an atom",
	EvaluateAtIllegalArgs: "argument count does not match the function definition",
	ExtractOutOfRange:     "Extract index out of list range",
	InsertOutOfRange:      "Insert index out of list range",
	ReplaceOutOfRange:     "Replace index out of list range",
	ReturnToGlobal:        "Return reached the global scope",
	BreakToGlobal:         "Break reached the global scope",
	DivisionByZero:        "division by zero",
	IllegalStep:           "iteration step must be a positive number",
	IteratorExpectList:    "Iterator argument must evaluate to a non-empty list",
	IteratorExpectNumber:  "Iterator bounds must evaluate to numbers",
	IteratorLoop:          "Iterator depends on its own value",
	CreatorExpectList:     "Creator argument must evaluate to a non-empty list",
	CreatorExpectNumber:   "Creator bounds must evaluate to numbers",
	CreatorLoop:           "Creator depends on its own value",
	RandomToNumber:        "random bounds are not numbers",
	RandomSeedNotInteger:  "Seed expects an integer",
	TypeMismatch:          "data types do not match",
	ImportFailed:          "cannot read import file",
	EvaluateBase:          "internal error: evaluation of a base expression",
	RecursionUnderflow:    "internal error: recursion counter underflow",
	ScopeUnderflow:        "internal error: pop of the global scope",
	OutOfArgRange:         "internal error: argument index out of range",
	SymbolNameOnNonSymbol: "internal error: symbol name of a non-symbol",
	EvaluationOnNoMatch:   "internal error: evaluation of NoMatch",
	IteratorInternalError: "internal error: iterator state",
}

func (c EvalCode) String() string {
	if name, ok := evalCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("EvalCode(%d)", int(c))
}

// Description returns the human readable text for the code
func (c EvalCode) Description() string {
	return evalCodeDescriptions[c]
}

// Fatal reports whether the code marks a broken engine invariant
func (c EvalCode) Fatal() bool {
	return c >= EvaluateBase
}

// EvalError is returned when evaluation fails
type EvalError struct {
	Code EvalCode
	Expr string // printed form of the offending node
	Err  error  // optional underlying cause
}

func newEvalError(code EvalCode, e *Expr) *EvalError {
	err := &EvalError{Code: code}
	if e != nil {
		err.Expr = e.String()
	}
	return err
}

func (e *EvalError) Error() string {
	msg := fmt.Sprintf("evaluation error %s: %s", e.Code, e.Code.Description())
	if e.Expr != "" {
		msg += " in " + e.Expr
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EvalError) Unwrap() error { return e.Err }

// Is matches another *EvalError with the same code
func (e *EvalError) Is(target error) bool {
	t, ok := target.(*EvalError)
	return ok && t.Code == e.Code
}

// Fatal reports whether the error is an internal invariant violation
func (e *EvalError) Fatal() bool { return e.Code.Fatal() }

// SyntaxCode identifies a syntax error
type SyntaxCode int

const (
	NoSyntaxError SyntaxCode = iota
	GeneralSyntaxError
	IllegalArgumentNumber
	PatternExpectSymbol
	SetExpectSymbol
	SetExpectFunctionOrSymbol
	DefineExpectSymbol
	DefineExpectFunctionOrSymbol
	TableExpectList
	TableExpectSymbol
	FunctionExpectSymbolList
	ModuleExpectSymbolList
	ModuleExpectBlock
	IteratorExpectSymbol
	IteratorExpectIterationList
	IteratorSyntaxError
	CreatorExpectIterationList
	CreatorExpectSymbol
	CreatorSyntaxError

	// raised by the parser
	ExpectExpression
	ExpectRightBracket
	ExpectRightBrace
	ExpectRightParen
	ExpectSemicolon
	UnterminatedString
	UnterminatedComment
	UnexpectedCharacter
)

var syntaxCodeDescriptions = map[SyntaxCode]string{
	NoSyntaxError:                "no syntax error",
	GeneralSyntaxError:           "syntax error",
	IllegalArgumentNumber:        "illegal number of arguments",
	PatternExpectSymbol:          "Pattern expects a symbol",
	SetExpectSymbol:              "Set (=) expects a symbol before [] on the left side",
	SetExpectFunctionOrSymbol:    "Set (=) expects a symbol or f[...] on the left side",
	DefineExpectSymbol:           "Define (:=) expects a symbol before [] on the left side",
	DefineExpectFunctionOrSymbol: "Define (:=) expects a symbol or f[...] on the left side",
	TableExpectList:              "Table expects {i, start, end (,delta)} as second argument",
	TableExpectSymbol:            "Table expects a symbol first in the iteration list",
	FunctionExpectSymbolList:     "Function expects a list of symbols as first argument",
	ModuleExpectSymbolList:       "Module expects a list of symbols as first argument",
	ModuleExpectBlock:            "Module expects a block as second argument",
	IteratorExpectSymbol:         "Iterator expects a symbol first in the iteration list",
	IteratorExpectIterationList:  "Iterator expects {i, start, end (,delta)} as second argument",
	IteratorSyntaxError:          "expected Iterator[expr, {i, start, end (,delta)}] or Iterator[list]",
	CreatorExpectIterationList:   "Creator expects {i, start, end (,delta)} as second argument",
	CreatorExpectSymbol:          "Creator expects a symbol first in the iteration list",
	CreatorSyntaxError:           "expected Creator[expr, {i, start, end (,delta)}] or Creator[list]",
	ExpectExpression:             "expected expression",
	ExpectRightBracket:           "expected ]",
	ExpectRightBrace:             "expected }",
	ExpectRightParen:             "expected )",
	ExpectSemicolon:              "expected ;",
	UnterminatedString:           "unterminated string",
	UnterminatedComment:          "unterminated comment",
	UnexpectedCharacter:          "unexpected character",
}

// Description returns the human readable text for the code
func (c SyntaxCode) Description() string {
	if d, ok := syntaxCodeDescriptions[c]; ok {
		return d
	}
	return fmt.Sprintf("syntax error %d", int(c))
}

// SyntaxError reports a malformed program or node
type SyntaxError struct {
	Code     SyntaxCode
	Position *SourcePosition
	Expr     string
	Near     string // token text where the parser stopped
}

func (e *SyntaxError) Error() string {
	msg := "syntax error: " + e.Code.Description()
	if e.Expr != "" {
		msg += " in " + e.Expr
	} else if e.Near != "" {
		msg += fmt.Sprintf(" near %q", e.Near)
	}
	if e.Position != nil {
		msg += fmt.Sprintf(" (line %d, column %d)", e.Position.Line, e.Position.Column)
	}
	return msg
}

// Is matches another *SyntaxError with the same code
func (e *SyntaxError) Is(target error) bool {
	t, ok := target.(*SyntaxError)
	return ok && t.Code == e.Code
}

// Incomplete reports whether more input could complete the program
func (e *SyntaxError) Incomplete() bool {
	switch e.Code {
	case UnterminatedString, UnterminatedComment:
		return true
	case ExpectRightBracket, ExpectRightBrace, ExpectRightParen, ExpectExpression:
		return e.Near == ""
	}
	return false
}

// IsEvalError reports whether err carries the given evaluation code
func IsEvalError(err error, code EvalCode) bool {
	var ee *EvalError
	return errors.As(err, &ee) && ee.Code == code
}

// IsSyntaxError reports whether err carries the given syntax code
func IsSyntaxError(err error, code SyntaxCode) bool {
	var se *SyntaxError
	return errors.As(err, &se) && se.Code == code
}

// Driver signals a kernel can wrap into its errors
var (
	ErrAbort = errors.New("sweep point aborted")
	ErrExit  = errors.New("simulation exit requested")
)
