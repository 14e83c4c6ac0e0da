package simkernel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Kernel is one simulation run. A fresh Kernel is created for every sweep
// point. Returning an error wrapping ErrAbort skips the point; ErrExit or
// any other error ends the whole run.
type Kernel interface {
	Initialize(ctx context.Context, sim *Sim) error
	Execute(ctx context.Context, sim *Sim) error
	Finalize(ctx context.Context, sim *Sim) error
}

// KernelFactory creates the Kernel for one sweep point
type KernelFactory func() Kernel

// Window selects the sweep points to run. End is inclusive; a negative End
// counts from the back, so -1 is the last point.
type Window struct {
	Start int
	End   int
}

// FullWindow covers every sweep point
var FullWindow = Window{Start: 0, End: -1}

// Single selects the one point i
func Single(i int) Window { return Window{Start: i, End: i} }

func (w Window) resolve(n int) (start, end int) {
	start, end = w.Start, w.End
	if end < 0 {
		end = n + end
	}
	return start, end
}

// Summary reports the outcome of a run
type Summary struct {
	Iterations int // sweep points of the program
	Run        int // points whose kernel completed
	Aborted    int // points skipped with ErrAbort
}

// Control runs a Kernel once per sweep point of a parameter program
type Control struct {
	Config  *Config
	Window  Window
	Workers int       // parallel engines, 1 when zero
	Output  io.Writer // receives kernel and Print output in iteration order
	Logger  *Logger
}

// NewControl creates a serial controller over the full sweep
func NewControl(config *Config) *Control {
	config = config.normalize()
	return &Control{
		Config:  config,
		Window:  FullWindow,
		Workers: 1,
		Output:  os.Stdout,
		Logger:  NewLoggerFromConfig(config),
	}
}

// pointResult carries the buffered output of one sweep point to the collector
type pointResult struct {
	iteration int
	output    []byte
}

// Iterations loads the program and returns its number of sweep points
func (c *Control) Iterations(src, filename string) (int, error) {
	sim := c.newSim(0, c.Output)
	if err := sim.Load(src, filename); err != nil {
		return 0, err
	}
	return sim.Iterations(), nil
}

func (c *Control) newSim(worker int, out io.Writer) *Sim {
	config := *c.Config
	config.Output = out
	sim := NewSim(&config)
	sim.worker = worker
	sim.engine.logger = c.Logger
	sim.engine.scope.SetLogger(c.Logger)
	return sim
}

// Run loads the program and runs a kernel from factory for every sweep point
// inside the window. Points are distributed round robin over the workers;
// every worker owns an independent engine, so the program is evaluated once
// per worker.
func (c *Control) Run(ctx context.Context, src, filename string, factory KernelFactory) (Summary, error) {
	workers := max(1, c.Workers)
	out := c.Output
	if out == nil {
		out = os.Stdout
	}

	// only the first engine lets the program's own Print through
	first := c.newSim(0, out)
	if err := first.Load(src, filename); err != nil {
		return Summary{}, err
	}
	summary := Summary{Iterations: first.Iterations()}
	start, _ := c.Window.resolve(summary.Iterations)

	results := make(chan pointResult, workers)
	g, gctx := errgroup.WithContext(ctx)
	counts := make([]Summary, workers)
	for w := range workers {
		g.Go(func() error {
			sim := first
			if w > 0 {
				sim = c.newSim(w, io.Discard)
				if err := sim.Load(src, filename); err != nil {
					return err
				}
			}
			return c.runWorker(gctx, sim, w, workers, factory, results, &counts[w])
		})
	}

	collected := make(chan error, 1)
	go func() {
		collected <- collect(results, out, max(0, start))
	}()

	err := g.Wait()
	close(results)
	if cerr := <-collected; err == nil {
		err = cerr
	}
	for _, n := range counts {
		summary.Run += n.Run
		summary.Aborted += n.Aborted
	}
	if err != nil {
		c.Logger.ErrorCat(CatSim, "Simulation aborted due to fatal error: %v", err)
		return summary, err
	}
	c.Logger.InfoCat(CatSim, "Simulation done! %d of %d points run, %d aborted", summary.Run, summary.Iterations, summary.Aborted)
	return summary, nil
}

func (c *Control) runWorker(ctx context.Context, sim *Sim, w, workers int, factory KernelFactory, results chan<- pointResult, counts *Summary) error {
	n := sim.Iterations()
	start, end := c.Window.resolve(n)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		// output of stepping the odometer belongs to the point it reaches
		var buf bytes.Buffer
		sim.engine.SetOutput(&buf)
		ok, err := sim.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		i := sim.Iteration()
		if i > end {
			return nil
		}
		if i < start || i%workers != w {
			continue
		}

		err = c.runPoint(ctx, sim, n, factory)
		switch {
		case err == nil:
			counts.Run++
		case errors.Is(err, ErrAbort):
			counts.Aborted++
			c.Logger.WarnCat(CatSim, "Simulation run %d aborted due to error: %v", i, err)
		default:
			return fmt.Errorf("sweep point %d: %w", i, err)
		}
		select {
		case results <- pointResult{iteration: i, output: buf.Bytes()}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Control) runPoint(ctx context.Context, sim *Sim, n int, factory KernelFactory) error {
	c.Logger.InfoCat(CatSim, "Starting simulation iteration: %d/%d", sim.Iteration(), n)
	kernel := factory()
	if err := kernel.Initialize(ctx, sim); err != nil {
		return err
	}
	if err := kernel.Execute(ctx, sim); err != nil {
		return err
	}
	if err := kernel.Finalize(ctx, sim); err != nil {
		return err
	}
	c.Logger.InfoCat(CatSim, "Simulation iteration: %d/%d done!", sim.Iteration(), n)
	return nil
}

// collect writes point outputs in iteration order starting at point next.
// Points arrive out of order from several workers and are held until their
// predecessors arrive.
func collect(results <-chan pointResult, out io.Writer, next int) error {
	pending := make(map[int][]byte)
	var writeErr error
	write := func(buf []byte) {
		if _, err := out.Write(buf); err != nil && writeErr == nil {
			writeErr = err
		}
	}
	for r := range results {
		pending[r.iteration] = r.output
		for {
			buf, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			write(buf)
			next++
		}
	}
	// a failed run leaves gaps; flush what arrived
	for _, k := range slices.Sorted(maps.Keys(pending)) {
		write(pending[k])
	}
	return writeErr
}
