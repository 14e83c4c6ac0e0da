package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/phroun/simkernel"
)

var version = "dev" // set via -ldflags at build time

// ANSI color codes for terminal output
const (
	colorYellow = "\x1b[93m" // Bright yellow foreground
	colorReset  = "\x1b[0m"  // Reset to default
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// stderrSupportsColor checks if stderr is a terminal that supports color output
func stderrSupportsColor() bool {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return false
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// errorPrintf prints an error message to stderr, using color if supported
func errorPrintf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	if stderrSupportsColor() {
		fmt.Fprintf(os.Stderr, "%s%s%s", colorYellow, message, colorReset)
	} else {
		fmt.Fprint(os.Stderr, message)
	}
}

// options are the command line settings layered over the config file
type options struct {
	cfg     CLIConfig
	verbose bool
	watch   bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fset := flag.NewFlagSet("simk", flag.ContinueOnError)
	fset.Usage = func() { showUsage(fset.Output()) }

	debugFlag := fset.Bool("debug", false, "Enable debug output")
	verboseFlag := fset.Bool("verbose", false, "Enable verbose output (debug plus parsed input)")
	fset.BoolVar(debugFlag, "d", false, "Enable debug output (short)")
	fset.BoolVar(verboseFlag, "v", false, "Enable verbose output (short)")
	configFlag := fset.String("config", "", "Configuration file (.yaml or .toml)")
	formatFlag := fset.String("format", "", "Per point output: text or yaml")
	paramsFlag := fset.String("params", "", "Comma separated parameters to print")
	workersFlag := fset.Int("workers", 0, "Parallel engines")
	watchFlag := fset.Bool("watch", false, "Re-run the file when it changes")
	versionFlag := fset.Bool("version", false, "Show version and exit")

	if err := fset.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *versionFlag {
		fmt.Printf("simk version %s\n", version)
		return exitOK
	}

	cfg, err := loadCLIConfig(*configFlag)
	if err != nil {
		errorPrintf("Error: %v\n", err)
		return exitError
	}
	opts := options{cfg: cfg, verbose: *verboseFlag, watch: *watchFlag}
	if *debugFlag || *verboseFlag {
		opts.cfg.Debug = true
	}
	if *formatFlag != "" {
		opts.cfg.Format = *formatFlag
	}
	if *paramsFlag != "" {
		opts.cfg.Params = splitList(*paramsFlag)
	}
	if *workersFlag > 0 {
		opts.cfg.Workers = *workersFlag
	}
	if err := opts.cfg.validate(); err != nil {
		errorPrintf("Error: %v\n", err)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := fset.Args()
	if len(args) == 0 {
		stdinInfo, _ := os.Stdin.Stat()
		if stdinInfo != nil && stdinInfo.Mode()&os.ModeCharDevice == 0 {
			content, err := io.ReadAll(os.Stdin)
			if err != nil {
				errorPrintf("Error reading from stdin: %v\n", err)
				return exitError
			}
			return opts.sweep(ctx, string(content), "<stdin>", simkernel.FullWindow, os.Stdout)
		}
		return opts.repl()
	}

	file := findProgramFile(args[0])
	if file == "" {
		errorPrintf("Error: Parameter file not found: %s\n", args[0])
		return exitError
	}
	if len(args) == 2 && args[1] == "iterations" {
		content, err := os.ReadFile(file)
		if err != nil {
			errorPrintf("Error reading parameter file: %v\n", err)
			return exitError
		}
		return opts.iterations(string(content), file, os.Stdout)
	}
	window, err := parseWindow(args[1:])
	if err != nil {
		errorPrintf("Error: %v\n", err)
		showUsage(os.Stderr)
		return exitUsage
	}
	if opts.watch {
		return opts.watchFile(ctx, file, window)
	}
	content, err := os.ReadFile(file)
	if err != nil {
		errorPrintf("Error reading parameter file: %v\n", err)
		return exitError
	}
	return opts.sweep(ctx, string(content), file, window, os.Stdout)
}

// parseWindow reads the optional [start [end]] arguments. A single index
// runs just that point.
func parseWindow(args []string) (simkernel.Window, error) {
	if len(args) > 2 {
		return simkernel.Window{}, fmt.Errorf("too many arguments")
	}
	var idx []int
	for _, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return simkernel.Window{}, fmt.Errorf("iteration index %q is not an integer", a)
		}
		idx = append(idx, v)
	}
	switch len(idx) {
	case 0:
		return simkernel.FullWindow, nil
	case 1:
		if idx[0] < 0 {
			return simkernel.Window{}, fmt.Errorf("iteration index must not be negative")
		}
		return simkernel.Single(idx[0]), nil
	default:
		if idx[0] < 0 {
			return simkernel.Window{}, fmt.Errorf("start index must not be negative")
		}
		return simkernel.Window{Start: idx[0], End: idx[1]}, nil
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (o options) control(out io.Writer) *simkernel.Control {
	c := simkernel.NewControl(o.cfg.engineConfig())
	c.Workers = max(1, o.cfg.Workers)
	c.Output = out
	return c
}

// sweep runs the parameter kernel over the window and returns an exit code
func (o options) sweep(ctx context.Context, src, filename string, window simkernel.Window, out io.Writer) int {
	format, _ := simkernel.ParseParamFormat(o.cfg.Format)
	c := o.control(out)
	c.Window = window
	_, err := c.Run(ctx, src, filename, simkernel.NewParamKernelFactory(o.cfg.Params, format))
	if summary := c.Logger.Summary(); summary != "" && o.cfg.Debug {
		errorPrintf("%s\n", summary)
	}
	if err != nil {
		return exitError
	}
	return exitOK
}

func (o options) iterations(src, filename string, out io.Writer) int {
	n, err := o.control(out).Iterations(src, filename)
	if err != nil {
		return exitError
	}
	fmt.Fprintln(out, n)
	return exitOK
}

func (o options) repl() int {
	config := o.cfg.engineConfig()
	sk := simkernel.New(config)
	color := o.cfg.Color == "always" || (o.cfg.Color != "never" && term.IsTerminal(int(os.Stdout.Fd())))
	history := ""
	if dir := getConfigDir(); dir != "" && o.cfg.History {
		history = filepath.Join(dir, "repl-history")
	}
	r := simkernel.NewREPL(sk, simkernel.REPLConfig{
		Verbose:     o.verbose,
		ShowBanner:  true,
		HistoryPath: history,
		Color:       color,
	})
	if err := r.Run(); err != nil {
		errorPrintf("Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// findProgramFile tries the name as given, then with the .sim extension
func findProgramFile(filename string) string {
	if _, err := os.Stat(filename); err == nil {
		return filename
	}
	if filepath.Ext(filename) == "" {
		simFile := filename + ".sim"
		if _, err := os.Stat(simFile); err == nil {
			return simFile
		}
	}
	return ""
}

func showUsage(w io.Writer) {
	usage := `Usage: simk [options] file [start [end]]
       simk [options] file iterations
       simk [options] < params.sim
       simk [options]

Enumerate the parameter sweep of a SimKernel program and print the
parameters bound at every point. Without a file, piped stdin is read as
the program; a terminal starts the interactive session.

Options:
  -d, -debug          Enable debug output
  -v, -verbose        Debug output plus the parsed form of REPL input
  -config FILE        Configuration file (.yaml or .toml, default ~/.simk/config.yaml)
  -format FORMAT      Per point output: text (default) or yaml
  -params A,B         Parameters to print (default: every plain definition)
  -workers N          Run points on N parallel engines
  -watch              Re-run the file whenever it changes
  -version            Show version and exit

Arguments:
  file                Parameter program (adds .sim extension if needed)
  start [end]         Run only point start, or points start..end;
                      a negative end counts from the last point (-1)
  iterations          Print the number of sweep points

Examples:
  simk params.sim                  # every point
  simk params.sim 3                # point 3 only
  simk params.sim 10 -1            # from point 10 to the end
  simk -format yaml params.sim     # YAML sequence of points
`
	fmt.Fprint(w, usage)
}
