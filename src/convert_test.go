package simkernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToValue(t *testing.T) {
	i, err := ToValue[int](NewReal(3.7))
	require.NoError(t, err)
	assert.Equal(t, 3, i)

	f, err := ToValue[float32](NewInteger(2))
	require.NoError(t, err)
	assert.Equal(t, float32(2), f)

	b, err := ToValue[bool](NewInteger(0))
	require.NoError(t, err)
	assert.False(t, b)

	_, err = ToValue[string](NewInteger(1))
	assert.True(t, IsEvalError(err, NonStrgToStrg))
}

func TestToSliceAndMatrix(t *testing.T) {
	xs, err := ToSlice[float64](NewList(NewInteger(1), NewReal(0.5)))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0.5}, xs)

	_, err = ToSlice[int](NewInteger(1))
	assert.True(t, IsEvalError(err, TypeMismatch))

	_, err = ToSlice[int](NewList(NewString("a")))
	assert.True(t, IsEvalError(err, NonNumberToIntg))
	assert.Contains(t, err.Error(), "element 0")

	m, err := ToMatrix[int](NewList(NewList(NewInteger(1)), NewList(NewInteger(2), NewInteger(3))))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1}, {2, 3}}, m)

	_, err = ToMatrix[int](NewList(NewInteger(1)))
	assert.True(t, IsEvalError(err, TypeMismatch))
}

func TestFromValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "Null"},
		{7, "7"},
		{int64(8), "8"},
		{2.5, "2.5"},
		{"s", `"s"`},
		{true, "True"},
		{[]int{1, 2}, "{1,2}"},
		{[2][]string{{"a"}, {}}, `{{"a"},{}}`},
		{[]any{1, "b", []bool{false}}, `{1,"b",{False}}`},
		{NewSymbol("x"), "x"},
	}
	for _, tt := range tests {
		e, err := FromValue(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, e.String())
	}

	_, err := FromValue(struct{}{})
	assert.True(t, IsEvalError(err, TypeMismatch))
}
