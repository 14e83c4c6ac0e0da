package simkernel

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simParams = `
n     = 4;
dt    = 0.25;
name  = "run";
flags = {True, False};
grid  = {{1, 2}, {3, 4, 5}};
mixed = {1, "x", 3};
speed = Iterator[{10, 20}];
seed  = Creator[{7, 8}];
`

func TestSimGet(t *testing.T) {
	sim := loadSim(t, simParams)
	ok, err := sim.Next()
	require.NoError(t, err)
	require.True(t, ok)

	n, ok := Get(sim, "n", 0)
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	dt, ok := Get(sim, "dt", 1.0)
	assert.True(t, ok)
	assert.Equal(t, 0.25, dt)

	// integers widen, reals truncate
	nf, _ := Get(sim, "n", 0.0)
	assert.Equal(t, 4.0, nf)
	di, _ := Get(sim, "dt", 9)
	assert.Equal(t, 0, di)

	name, ok := Get(sim, "name", "")
	assert.True(t, ok)
	assert.Equal(t, "run", name)

	speed, ok := Get(sim, "speed", 0)
	assert.True(t, ok)
	assert.Equal(t, 10, speed)

	seed, _ := Get[int64](sim, "seed", 0)
	assert.Equal(t, int64(7), seed)
}

func TestSimGetDefaults(t *testing.T) {
	sim := loadSim(t, simParams)
	_, err := sim.Next()
	require.NoError(t, err)
	warnings := sim.Logger().Warnings()

	v, ok := Get(sim, "missing", 3)
	assert.False(t, ok)
	assert.Equal(t, 3, v)

	s, ok := Get(sim, "n", "fallback")
	assert.False(t, ok, "an Integer is not a String")
	assert.Equal(t, "fallback", s)

	assert.Equal(t, warnings+2, sim.Logger().Warnings())

	_, err = sim.Get("missing")
	assert.True(t, errors.Is(err, ErrNotDefined))
}

func TestSimGetList(t *testing.T) {
	sim := loadSim(t, simParams)
	_, err := sim.Next()
	require.NoError(t, err)

	flags, ok := GetList(sim, "flags", false)
	assert.True(t, ok)
	assert.Equal(t, []bool{true, false}, flags)

	single, ok := GetList(sim, "n", 0)
	assert.True(t, ok)
	assert.Equal(t, []int{4}, single)

	mixed, ok := GetList(sim, "mixed", -1)
	assert.False(t, ok)
	assert.Equal(t, []int{1, -1, 3}, mixed)

	missing, ok := GetList(sim, "missing", 0.5)
	assert.False(t, ok)
	assert.Equal(t, []float64{0.5}, missing)
}

func TestSimGetMatrix(t *testing.T) {
	sim := loadSim(t, simParams)
	_, err := sim.Next()
	require.NoError(t, err)

	grid, ok := GetMatrix(sim, "grid", 0)
	assert.True(t, ok)
	assert.Equal(t, [][]int{{1, 2}, {3, 4, 5}}, grid)

	row, ok := GetMatrix(sim, "n", 0)
	assert.True(t, ok)
	assert.Equal(t, [][]int{{4}}, row)

	missing, ok := GetMatrix(sim, "missing", "")
	assert.False(t, ok)
	assert.Equal(t, [][]string{{""}}, missing)
}

func TestSimDefine(t *testing.T) {
	sim := loadSim(t, "double := 2 * base;")
	require.NoError(t, sim.Define("base", 21))
	_, err := sim.Next()
	require.NoError(t, err)
	v, ok := Get(sim, "double", 0)
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	require.NoError(t, sim.Define("xs", []float64{1.5, 2}))
	xs, err := sim.Get("xs")
	require.NoError(t, err)
	assert.Equal(t, "{1.5,2.}", xs.String())

	assert.Error(t, sim.Define("bad", map[string]int{}))
}

func TestSimDefinitions(t *testing.T) {
	sim := loadSim(t, simParams)
	assert.True(t, sim.Defined("dt"))
	assert.False(t, sim.Defined("missing"))
	assert.True(t, sim.DefinedAs("seed", KindCreator))
	assert.False(t, sim.DefinedAs("dt", KindCreator))

	def, err := sim.Definition("speed")
	require.NoError(t, err)
	assert.Equal(t, "Iterator[{10,20}]", def.String())
}

func TestSimFileExtension(t *testing.T) {
	sim := loadSim(t, "a = Iterator[Range[10]];")
	assert.Equal(t, -1, sim.Iteration())
	for i := 0; i < 8; i++ {
		_, err := sim.Next()
		require.NoError(t, err)
	}
	assert.Equal(t, 7, sim.Iteration())
	assert.Equal(t, ".0007", sim.FileExtension())
}

func TestSimInfo(t *testing.T) {
	sim := loadSim(t, "a = 1;")
	info := sim.Info()
	assert.Contains(t, info, "iterations = 1")
	assert.Contains(t, info, "Global definitions:")
}

func TestSimLoadErrors(t *testing.T) {
	var diag bytes.Buffer
	sim := NewSim(DefaultConfig())
	sim.Logger().SetOutput(io.Discard, &diag)

	err := sim.Load("a = {1, 2", "broken.sim")
	assert.True(t, IsSyntaxError(err, ExpectRightBrace))
	assert.Contains(t, diag.String(), "broken.sim")

	err = sim.Load("Return[1];", "escape.sim")
	assert.True(t, IsEvalError(err, ReturnToGlobal))
}
