package simkernel

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// REPL color codes
const (
	replColorPrompt = "\x1b[36m"
	replColorResult = "\x1b[92m"
	replColorReset  = "\x1b[0m"
)

// REPLConfig configures the online REPL
type REPLConfig struct {
	Verbose     bool      // echo the parsed form as Parse[n]
	ShowBanner  bool      // print a banner on start
	HistoryPath string    // empty disables history
	Output      io.Writer // stdout when nil
	Color       bool
}

// REPL reads programs line by line, evaluates them in one persistent engine
// and prints the result of each input
type REPL struct {
	sk     *SimKernel
	config REPLConfig
	out    io.Writer
	n      int
	width  int
}

// NewREPL creates a REPL over an engine
func NewREPL(sk *SimKernel, config REPLConfig) *REPL {
	out := config.Output
	if out == nil {
		out = os.Stdout
	}
	return &REPL{sk: sk, config: config, out: out, n: 1}
}

// SetTerminalWidth overrides the detected width used to elide long results
func (r *REPL) SetTerminalWidth(width int) { r.width = width }

// terminalWidth returns the configured width, then the terminal's, then 80
func (r *REPL) terminalWidth() int {
	if r.width > 0 {
		return r.width
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

func (r *REPL) color(code, s string) string {
	if !r.config.Color {
		return s
	}
	return code + s + replColorReset
}

// Prompt returns the input prompt for the current line number
func (r *REPL) Prompt() string { return fmt.Sprintf("In[%d]: ", r.n) }

func (r *REPL) continuation() string {
	return strings.Repeat(" ", len(r.Prompt())-2) + "> "
}

// quitQ reports whether input asks to leave
func quitQ(input string) bool {
	input = strings.TrimSuffix(strings.TrimSpace(input), ";")
	return input == "q" || input == "Quit[]"
}

// Incomplete reports whether input is a prefix of a longer program, such as
// an open bracket or an unterminated string
func Incomplete(input string) bool {
	_, err := Parse(input, "<input>")
	var se *SyntaxError
	return errors.As(err, &se) && se.Incomplete()
}

// Eval runs one complete input and prints its result. It returns false when
// the input asked to quit. Errors have already been reported through the
// engine logger when they are returned.
func (r *REPL) Eval(input string) (bool, error) {
	if quitQ(input) {
		return false, nil
	}
	if strings.TrimSpace(input) == "" {
		return true, nil
	}
	n := r.n
	r.n++

	root, err := r.sk.Parse(input, fmt.Sprintf("In[%d]", n))
	if err != nil {
		return true, err
	}
	if r.config.Verbose {
		fmt.Fprintf(r.out, "Parse[%d]: %s\n", n, r.elide(root.Text()))
	}
	result, err := r.sk.Evaluate(root)
	if err != nil {
		return true, err
	}
	fmt.Fprintf(r.out, "%s %s\n", r.color(replColorResult, fmt.Sprintf("Out[%d]:", n)), r.elide(result.String()))
	return true, nil
}

// elide shortens results that would fill more than a screen
func (r *REPL) elide(s string) string {
	limit := r.terminalWidth() * 20
	if len(s) <= limit {
		return s
	}
	half := limit / 2
	return s[:half] + " ... " + s[len(s)-half:]
}

// Run reads from the terminal until EOF or a quit command
func (r *REPL) Run() error {
	if r.config.ShowBanner {
		fmt.Fprintln(r.out, "SimKernel online. Enter expressions; q or Quit[] leaves.")
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetMultiLineMode(true)

	r.loadHistory(ln)
	defer r.saveHistory(ln)

	for {
		input, ok, err := r.read(ln)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(r.out)
			return nil
		}
		if strings.TrimSpace(input) != "" {
			ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
		}
		more, _ := r.Eval(input)
		if !more {
			return nil
		}
	}
}

// read collects lines until they form a complete program. It returns false
// at end of input.
func (r *REPL) read(ln *liner.State) (string, bool, error) {
	var b strings.Builder
	prompt := r.color(replColorPrompt, r.Prompt())
	for {
		if b.Len() > 0 {
			prompt = r.continuation()
		}
		line, err := ln.Prompt(prompt)
		switch {
		case errors.Is(err, io.EOF):
			if b.Len() > 0 {
				return b.String(), true, nil
			}
			return "", false, nil
		case errors.Is(err, liner.ErrPromptAborted):
			// Ctrl-C drops the pending input
			b.Reset()
			prompt = r.color(replColorPrompt, r.Prompt())
			continue
		case err != nil:
			return "", false, err
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if src := b.String(); quitQ(src) || !Incomplete(src) {
			return src, true, nil
		}
	}
}

func (r *REPL) loadHistory(ln *liner.State) {
	if r.config.HistoryPath == "" {
		return
	}
	f, err := os.Open(r.config.HistoryPath)
	if err != nil {
		return // no history yet
	}
	defer f.Close()
	_, _ = ln.ReadHistory(f)
}

func (r *REPL) saveHistory(ln *liner.State) {
	if r.config.HistoryPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(r.config.HistoryPath), 0755); err != nil {
		return
	}
	f, err := os.Create(r.config.HistoryPath)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := ln.WriteHistory(f); err != nil {
		r.sk.logger.WarnCat(CatIO, "could not save history: %v", err)
	}
}
