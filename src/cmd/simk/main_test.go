package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phroun/simkernel"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		args []string
		want simkernel.Window
	}{
		{nil, simkernel.FullWindow},
		{[]string{"3"}, simkernel.Window{Start: 3, End: 3}},
		{[]string{"2", "5"}, simkernel.Window{Start: 2, End: 5}},
		{[]string{"10", "-1"}, simkernel.Window{Start: 10, End: -1}},
	}
	for _, tt := range tests {
		got, err := parseWindow(tt.args)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%v", tt.args)
	}

	for _, args := range [][]string{{"x"}, {"-1"}, {"-2", "4"}, {"1", "2", "3"}} {
		_, err := parseWindow(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b,"))
	assert.Nil(t, splitList(""))
}

func TestFindProgramFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.sim")
	require.NoError(t, os.WriteFile(path, []byte("a = 1;"), 0644))

	assert.Equal(t, path, findProgramFile(path))
	assert.Equal(t, path, findProgramFile(filepath.Join(dir, "params")))
	assert.Equal(t, "", findProgramFile(filepath.Join(dir, "other")))
}

func testOptions() options {
	cfg := defaultCLIConfig()
	cfg.Seed = 1
	return options{cfg: cfg}
}

func TestSweepCommand(t *testing.T) {
	const src = "a = Iterator[{1, 2, 3}]; b := 2 * a;"
	var out bytes.Buffer
	o := testOptions()
	code := o.sweep(context.Background(), src, "test.sim", simkernel.Window{Start: 1, End: -1}, &out)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "iteration 1: a = 2, b = 4\niteration 2: a = 3, b = 6\n", out.String())

	out.Reset()
	o.cfg.Params = []string{"b"}
	o.cfg.Workers = 2
	code = o.sweep(context.Background(), src, "test.sim", simkernel.FullWindow, &out)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "iteration 0: b = 2\niteration 1: b = 4\niteration 2: b = 6\n", out.String())
}

func TestSweepCommandYAML(t *testing.T) {
	var out bytes.Buffer
	o := testOptions()
	o.cfg.Format = "yaml"
	code := o.sweep(context.Background(), "a = Iterator[{1, 2}];", "test.sim", simkernel.FullWindow, &out)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out.String(), "- iteration: 0\n")
	assert.Contains(t, out.String(), "- iteration: 1\n")
}

func TestIterationsCommand(t *testing.T) {
	var out bytes.Buffer
	o := testOptions()
	assert.Equal(t, exitOK, o.iterations("a = Iterator[{1, 2}]; b = Iterator[Range[3]];", "test.sim", &out))
	assert.Equal(t, "6\n", out.String())

	assert.Equal(t, exitError, o.iterations("a = Iterator[{}];", "test.sim", &out))
}

func TestRunUsageErrors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	assert.Equal(t, exitUsage, run([]string{"-nosuchflag"}))
	assert.Equal(t, exitUsage, run([]string{"-format", "json", "x.sim"}))
	assert.Equal(t, exitError, run([]string{filepath.Join(t.TempDir(), "missing.sim")}))
}
