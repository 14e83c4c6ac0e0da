package simkernel

import (
	"errors"
	"fmt"
	"io"
)

// SimKernel is the expression engine: a global scope, the sweep session its
// Iterators and Creators report to, and a logger
type SimKernel struct {
	config  *Config
	logger  *Logger
	scope   *Scope
	session *Session
}

// New creates a new engine
func New(config *Config) *SimKernel {
	config = config.normalize()
	scope := NewScope(config)
	session := NewSession()
	scope.SetSession(session)
	return &SimKernel{
		config:  config,
		logger:  scope.Logger(),
		scope:   scope,
		session: session,
	}
}

// NewLoggerFromConfig creates a logger honoring Debug and LogCategories
func NewLoggerFromConfig(config *Config) *Logger {
	logger := NewLogger(config.Debug)
	logger.SetContextLines(config.ContextLines)
	if len(config.LogCategories) == 0 {
		logger.EnableAllCategories()
	}
	for _, cat := range config.LogCategories {
		logger.EnableCategory(cat)
	}
	return logger
}

// Configure replaces the configuration. Limits take effect for new scopes.
func (sk *SimKernel) Configure(config *Config) {
	sk.config = config.normalize()
	sk.logger.SetEnabled(sk.config.Debug)
	if sk.config.Output != nil {
		sk.scope.SetOutput(sk.config.Output)
	}
}

// GetConfig returns the current configuration
func (sk *SimKernel) GetConfig() *Config { return sk.config }

// Logger returns the engine logger
func (sk *SimKernel) Logger() *Logger { return sk.logger }

// Scope returns the global scope
func (sk *SimKernel) Scope() *Scope { return sk.scope }

// Session returns the sweep session
func (sk *SimKernel) Session() *Session { return sk.session }

// SetOutput redirects Print[]
func (sk *SimKernel) SetOutput(w io.Writer) { sk.scope.SetOutput(w) }

// SetErrorContextEnabled toggles source excerpts in error reports
func (sk *SimKernel) SetErrorContextEnabled(enabled bool) {
	sk.config.ShowErrorContext = enabled
}

// SetContextLines sets the number of source lines shown around an error
func (sk *SimKernel) SetContextLines(lines int) {
	if lines >= 0 {
		sk.config.ContextLines = lines
		sk.logger.SetContextLines(lines)
	}
}

// Parse parses a program, reporting syntax errors through the logger
func (sk *SimKernel) Parse(text, filename string) (*Expr, error) {
	p := NewParser(text, filename)
	p.SetLogger(sk.logger)
	root, err := p.Parse()
	if err != nil {
		sk.ReportError(err, p.Lines())
		return nil, err
	}
	return root, nil
}

// Run evaluates a parsed program in the global scope
func (sk *SimKernel) Run(program *Expr) error {
	if _, err := program.Evaluate(sk.scope); err != nil {
		sk.ReportError(err, nil)
		return err
	}
	return nil
}

// ExecuteFile parses and runs a program
func (sk *SimKernel) ExecuteFile(text, filename string) error {
	root, err := sk.Parse(text, filename)
	if err != nil {
		return err
	}
	return sk.Run(root)
}

// Execute runs the statements of text one at a time and returns the value
// of the last one. Iterators and Creators of text join the session.
func (sk *SimKernel) Execute(text string) (*Expr, error) {
	root, err := sk.Parse(text, "<input>")
	if err != nil {
		return nil, err
	}
	return sk.Evaluate(root)
}

// Evaluate runs the statements of a parsed program without resetting the
// session, so definitions and sweep state persist between calls
func (sk *SimKernel) Evaluate(root *Expr) (*Expr, error) {
	sk.session.Discover(root)
	result := nullExpr
	for _, stmt := range root.args {
		var err error
		if result, err = stmt.Evaluate(sk.scope); err != nil {
			sk.ReportError(err, nil)
			return nil, err
		}
	}
	return result, nil
}

// ReportError logs err; syntax errors carry their position and, when
// enabled, the surrounding source lines
func (sk *SimKernel) ReportError(err error, lines []string) {
	var se *SyntaxError
	if errors.As(err, &se) && se.Position != nil {
		if !sk.config.ShowErrorContext {
			lines = nil
		}
		msg := se.Code.Description()
		if se.Expr != "" {
			msg += " in " + se.Expr
		} else if se.Near != "" {
			msg += fmt.Sprintf(" near %q", se.Near)
		}
		sk.logger.ParseError(msg, se.Position, lines)
		return
	}
	var ee *EvalError
	if errors.As(err, &ee) && ee.Fatal() {
		sk.logger.Fatal("%v", err)
		return
	}
	sk.logger.ErrorCat(CatEval, "%v", err)
}
