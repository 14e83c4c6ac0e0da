package simkernel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// funcKernel runs exec as its Execute step
type funcKernel struct {
	exec func(sim *Sim) error
}

func (k funcKernel) Initialize(context.Context, *Sim) error { return nil }
func (k funcKernel) Execute(_ context.Context, sim *Sim) error {
	return k.exec(sim)
}
func (k funcKernel) Finalize(context.Context, *Sim) error { return nil }

func kernelOf(exec func(sim *Sim) error) KernelFactory {
	return func() Kernel { return funcKernel{exec: exec} }
}

// printPoint writes the iteration and the value of a
func printPoint(sim *Sim) error {
	a, _ := Get(sim, "a", -1)
	_, err := fmt.Fprintf(sim.Out(), "%d:%d\n", sim.Iteration(), a)
	return err
}

func newTestControl(out io.Writer) *Control {
	c := NewControl(DefaultConfig())
	c.Output = out
	c.Logger.SetOutput(io.Discard, io.Discard)
	return c
}

const fourPoints = "a = Iterator[{10, 20, 30, 40}];"

func TestControlRunsEveryPoint(t *testing.T) {
	var out bytes.Buffer
	c := newTestControl(&out)
	summary, err := c.Run(context.Background(), fourPoints, "test.sim", kernelOf(printPoint))
	require.NoError(t, err)
	assert.Equal(t, Summary{Iterations: 4, Run: 4}, summary)
	assert.Equal(t, "0:10\n1:20\n2:30\n3:40\n", out.String())
}

func TestControlWindow(t *testing.T) {
	tests := []struct {
		window Window
		want   string
		run    int
	}{
		{Window{Start: 1, End: 2}, "1:20\n2:30\n", 2},
		{Window{Start: 2, End: -1}, "2:30\n3:40\n", 2},
		{Window{Start: 0, End: -2}, "0:10\n1:20\n2:30\n", 3},
		{Single(3), "3:40\n", 1},
		{Single(9), "", 0},
		{Window{Start: 3, End: 1}, "", 0},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		c := newTestControl(&out)
		c.Window = tt.window
		summary, err := c.Run(context.Background(), fourPoints, "test.sim", kernelOf(printPoint))
		require.NoError(t, err)
		assert.Equal(t, tt.want, out.String(), "window %+v", tt.window)
		assert.Equal(t, tt.run, summary.Run, "window %+v", tt.window)
	}
}

func TestControlAbortSkipsPoint(t *testing.T) {
	var out bytes.Buffer
	c := newTestControl(&out)
	summary, err := c.Run(context.Background(), fourPoints, "test.sim", kernelOf(func(sim *Sim) error {
		if sim.Iteration() == 1 {
			return fmt.Errorf("%w: bad point", ErrAbort)
		}
		return printPoint(sim)
	}))
	require.NoError(t, err)
	assert.Equal(t, Summary{Iterations: 4, Run: 3, Aborted: 1}, summary)
	assert.Equal(t, "0:10\n2:30\n3:40\n", out.String())
}

func TestControlExitStopsRun(t *testing.T) {
	var out bytes.Buffer
	c := newTestControl(&out)
	summary, err := c.Run(context.Background(), fourPoints, "test.sim", kernelOf(func(sim *Sim) error {
		if sim.Iteration() == 2 {
			return ErrExit
		}
		return printPoint(sim)
	}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExit))
	assert.Equal(t, 2, summary.Run)
	assert.Equal(t, "0:10\n1:20\n", out.String())
}

func TestControlParallelKeepsOrder(t *testing.T) {
	var out bytes.Buffer
	c := newTestControl(&out)
	c.Workers = 3
	var workers [3]atomic.Int32
	summary, err := c.Run(context.Background(), "a = Iterator[Range[10]];", "test.sim", kernelOf(func(sim *Sim) error {
		workers[sim.Worker()].Add(1)
		return printPoint(sim)
	}))
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Run)

	var want strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&want, "%d:%d\n", i, i+1)
	}
	assert.Equal(t, want.String(), out.String())
	assert.Equal(t, int32(4), workers[0].Load())
	assert.Equal(t, int32(3), workers[1].Load())
	assert.Equal(t, int32(3), workers[2].Load())
}

func TestControlProgramOutputOnce(t *testing.T) {
	var out bytes.Buffer
	c := newTestControl(&out)
	c.Workers = 2
	_, err := c.Run(context.Background(), `Print["loaded"]; `+fourPoints, "test.sim", kernelOf(printPoint))
	require.NoError(t, err)
	assert.Equal(t, "loaded\n0:10\n1:20\n2:30\n3:40\n", out.String())
}

func TestControlCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newTestControl(io.Discard)
	_, err := c.Run(ctx, fourPoints, "test.sim", kernelOf(printPoint))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestControlLoadError(t *testing.T) {
	c := newTestControl(io.Discard)
	_, err := c.Run(context.Background(), "a = Iterator[{}];", "test.sim", kernelOf(printPoint))
	assert.True(t, IsEvalError(err, IteratorExpectList))

	n, err := c.Iterations(fourPoints, "test.sim")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestCollectOrdersResults(t *testing.T) {
	results := make(chan pointResult, 4)
	results <- pointResult{iteration: 3, output: []byte("c")}
	results <- pointResult{iteration: 2, output: []byte("b")}
	results <- pointResult{iteration: 5, output: []byte("e")}
	results <- pointResult{iteration: 7, output: []byte("g")}
	close(results)

	var out bytes.Buffer
	require.NoError(t, collect(results, &out, 2))
	assert.Equal(t, "bceg", out.String(), "gaps are flushed in order at the end")
}
