package simkernel

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sort"
	"strings"
	"time"
)

// definition is one (pattern, body) entry of a symbol
type definition struct {
	pattern *Expr
	body    *Expr
}

// definitions keeps the entries of one symbol sorted by LessPatternQ
type definitions struct {
	entries []definition
}

func (d *definitions) set(pattern, body *Expr) {
	if pattern.kind == KindNoPattern {
		// rebinding a plain symbol drops its function overloads
		d.entries = append(d.entries[:0], definition{pattern, body})
		return
	}
	i := sort.Search(len(d.entries), func(i int) bool {
		return comparePattern(d.entries[i].pattern, pattern) >= 0
	})
	if i < len(d.entries) && comparePattern(d.entries[i].pattern, pattern) == 0 {
		d.entries[i].body = body
		return
	}
	d.entries = append(d.entries, definition{})
	copy(d.entries[i+1:], d.entries[i:])
	d.entries[i] = definition{pattern, body}
}

func (d *definitions) match(e *Expr) (definition, bool) {
	for _, def := range d.entries {
		if def.pattern.MatchQ(e) {
			return def, true
		}
	}
	return definition{}, false
}

type frame map[string]*definitions

// Scope is the lexical environment: a stack of frames with the global frame
// at the bottom. It also carries the per-evaluation environment: the sweep
// session, the Print output, the random generator and the logger.
type Scope struct {
	frames       []frame
	maxLevel     int
	maxRecursion int

	session *Session
	out     io.Writer
	rng     *rand.Rand
	logger  *Logger
}

// NewScope creates a scope holding only the global frame
func NewScope(config *Config) *Scope {
	config = config.normalize()
	s := &Scope{
		frames:       []frame{make(frame)},
		maxLevel:     config.MaxScopeLevel,
		maxRecursion: config.MaxRecursion,
		out:          config.Output,
		logger:       NewLoggerFromConfig(config),
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.Seed(seed)
	return s
}

// SetSession attaches the sweep session Iterators and Creators report to
func (s *Scope) SetSession(session *Session) { s.session = session }

// Session returns the attached sweep session, or nil
func (s *Scope) Session() *Session { return s.session }

// SetOutput redirects Print[]
func (s *Scope) SetOutput(w io.Writer) { s.out = w }

// SetLogger replaces the logger
func (s *Scope) SetLogger(l *Logger) {
	if l != nil {
		s.logger = l
	}
}

// Logger returns the scope's logger
func (s *Scope) Logger() *Logger { return s.logger }

// Seed reseeds the random generator
func (s *Scope) Seed(seed int64) {
	s.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>32|0x9e3779b97f4a7c15))
}

// Level is the number of frames above the global frame
func (s *Scope) Level() int { return len(s.frames) - 1 }

// Push opens a new innermost frame
func (s *Scope) Push() error {
	if s.Level() >= s.maxLevel {
		return newEvalError(MaxScope, nil)
	}
	s.frames = append(s.frames, make(frame))
	return nil
}

// Pop removes the innermost frame
func (s *Scope) Pop() error {
	if s.Level() == 0 {
		return newEvalError(ScopeUnderflow, nil)
	}
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}

// popFrame is Pop for callers that pushed successfully
func (s *Scope) popFrame() {
	_ = s.Pop()
}

// Clear unwinds to the global frame and empties it
func (s *Scope) Clear() {
	s.frames = []frame{make(frame)}
}

func (s *Scope) install(f frame, name string, pattern, body *Expr) {
	defs := f[name]
	if defs == nil {
		defs = &definitions{}
		f[name] = defs
	}
	defs.set(pattern, body)
}

// Define binds name to body in the innermost frame already holding name,
// or in the global frame
func (s *Scope) Define(name string, body *Expr) {
	s.DefinePattern(name, noPatternExpr, body)
}

// DefinePattern adds the overload name[pattern] := body
func (s *Scope) DefinePattern(name string, pattern, body *Expr) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if _, ok := s.frames[i][name]; ok {
			s.install(s.frames[i], name, pattern, body)
			return
		}
	}
	s.install(s.frames[0], name, pattern, body)
}

// DefineLocal binds name in the innermost frame only
func (s *Scope) DefineLocal(name string, body *Expr) {
	s.DefineLocalPattern(name, noPatternExpr, body)
}

// DefineLocalPattern adds an overload in the innermost frame only
func (s *Scope) DefineLocalPattern(name string, pattern, body *Expr) {
	s.install(s.frames[len(s.frames)-1], name, pattern, body)
}

func (s *Scope) lookup(name string) *definitions {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if defs, ok := s.frames[i][name]; ok {
			return defs
		}
	}
	return nil
}

// Defined reports whether name has an entry in any frame
func (s *Scope) Defined(name string) bool {
	return s.lookup(name) != nil
}

// Match returns the plain definition of name, or NoMatch
func (s *Scope) Match(name string) *Expr {
	_, body := s.MatchPattern(name, noPatternExpr)
	return body
}

// MatchPattern returns the most specific (pattern, body) of name accepting e.
// Only the innermost frame holding name is searched. On failure it returns
// (NoPattern, NoMatch).
func (s *Scope) MatchPattern(name string, e *Expr) (*Expr, *Expr) {
	defs := s.lookup(name)
	if defs == nil {
		return noPatternExpr, noMatchExpr
	}
	if def, ok := defs.match(e); ok {
		return def.pattern, def.body
	}
	return noPatternExpr, noMatchExpr
}

// bindPattern defines every wildcard of pattern to the matching part of e
// in the innermost frame
func (s *Scope) bindPattern(pattern, e *Expr) {
	if pattern.kind == KindPattern {
		s.DefineLocal(pattern.args[0].s, e)
		return
	}
	if len(pattern.args) != len(e.args) {
		return
	}
	for i := range pattern.args {
		s.bindPattern(pattern.args[i], e.args[i])
	}
}

// Names returns the names defined in the global frame, sorted
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.frames[0]))
	for name := range s.frames[0] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Info lists all definitions, innermost frame first
func (s *Scope) Info() string {
	var sb strings.Builder
	for level := len(s.frames) - 1; level >= 0; level-- {
		if level == 0 {
			sb.WriteString("Global definitions:\n")
		} else {
			fmt.Fprintf(&sb, "Definitions on scope level %d:\n", level)
		}
		f := s.frames[level]
		names := make([]string, 0, len(f))
		for name := range f {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			for _, def := range f[name].entries {
				sb.WriteString("  ")
				sb.WriteString(name)
				if def.pattern.kind != KindNoPattern {
					sb.WriteByte('[')
					if def.pattern.ListQ() {
						def.pattern.printArgs(&sb, def.pattern.args)
					} else {
						def.pattern.print(&sb)
					}
					sb.WriteByte(']')
				}
				sb.WriteString(" = ")
				sb.WriteString(def.body.String())
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}
