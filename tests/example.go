package main

// This is an example of using SimKernel as a library in a Go application

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/phroun/simkernel"
)

// params sweeps launch angle and speed; drag is drawn from a cycle of
// values, one per run
const params = `
angle = Iterator[{15, 30, 45, 60}];
speed = Iterator[v, {v, 10, 30, 10}];
drag  = Creator[{0.0, 0.1}];
g     = 9.81;
label := "angle " + ToString[angle];
`

// trajectory is a toy simulation kernel
type trajectory struct {
	angle, speed, drag, g float64
}

func (t *trajectory) Initialize(_ context.Context, sim *simkernel.Sim) error {
	var ok bool
	if t.angle, ok = simkernel.Get(sim, "angle", 45.0); !ok {
		return fmt.Errorf("%w: no angle", simkernel.ErrAbort)
	}
	t.speed, _ = simkernel.Get(sim, "speed", 10.0)
	t.drag, _ = simkernel.Get(sim, "drag", 0.0)
	t.g, _ = simkernel.Get(sim, "g", 9.81)
	return nil
}

func (t *trajectory) Execute(_ context.Context, sim *simkernel.Sim) error {
	rad := t.angle * math.Pi / 180
	reach := t.speed * t.speed * math.Sin(2*rad) / t.g * (1 - t.drag)
	fmt.Fprintf(sim.Out(), "run%s angle=%v speed=%v drag=%v range=%.2f\n",
		sim.FileExtension(), t.angle, t.speed, t.drag, reach)
	return nil
}

func (t *trajectory) Finalize(context.Context, *simkernel.Sim) error { return nil }

func main() {
	fmt.Println("=== SimKernel Example ===")
	fmt.Println()

	// Example 1: Walk the sweep by hand
	fmt.Println("Example 1: Walking the sweep")
	sim := simkernel.NewSim(simkernel.DefaultConfig())
	if err := sim.Load(params, "example.sim"); err != nil {
		os.Exit(1)
	}
	fmt.Printf("%d sweep points\n", sim.Iterations())
	for i := 0; i < 3; i++ {
		if ok, err := sim.Next(); err != nil || !ok {
			break
		}
		angle, _ := simkernel.Get(sim, "angle", 0)
		speed, _ := simkernel.Get(sim, "speed", 0)
		fmt.Printf("point %d: angle=%d speed=%d\n", sim.Iteration(), angle, speed)
	}
	fmt.Println()

	// Example 2: Run a kernel over every point on two workers
	fmt.Println("Example 2: Kernel over the full sweep")
	control := simkernel.NewControl(simkernel.DefaultConfig())
	control.Workers = 2
	summary, err := control.Run(context.Background(), params, "example.sim",
		func() simkernel.Kernel { return &trajectory{} })
	if err != nil {
		fmt.Printf("run failed: %v\n", err)
	}
	fmt.Printf("%d of %d points run\n", summary.Run, summary.Iterations)
	fmt.Println()

	// Example 3: Evaluate expressions directly
	fmt.Println("Example 3: Expressions")
	sk := simkernel.New(simkernel.DefaultConfig())
	for _, src := range []string{
		`f[x_] := x^2; f[{1, 2, 3}]`,
		`Table[i*i, {i, 1, 4}]`,
		`Plus[{1, 2}, {3, 4}]`,
	} {
		v, err := sk.Execute(src)
		if err != nil {
			continue
		}
		fmt.Printf("%s => %s\n", src, v)
	}
	fmt.Println()

	fmt.Println("=== Examples Complete ===")
}
