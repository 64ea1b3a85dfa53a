package builtins

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/jseval/runtime"
)

func TestMathFunctions(t *testing.T) {
	f := setup(t)
	cases := []struct {
		fn   string
		args []*runtime.Value
		want float64
	}{
		{"abs", nums(-3), 3},
		{"floor", nums(1.7), 1},
		{"ceil", nums(1.2), 2},
		{"round", nums(2.5), 3},
		{"round", nums(-2.5), -2},
		{"round", nums(-2.6), -3},
		{"trunc", nums(-1.9), -1},
		{"sign", nums(-8), -1},
		{"sqrt", nums(16), 4},
		{"pow", nums(2, 10), 1024},
		{"max", nums(1, 5, 3), 5},
		{"min", nums(4, 2, 8), 2},
		{"max", nil, math.Inf(-1)},
		{"min", nil, math.Inf(1)},
	}
	for _, c := range cases {
		got := f.mustInvoke(t, runtime.Undefined, c.args, "Math", c.fn)
		assert.Equal(t, c.want, got.Number, "Math.%s(%v)", c.fn, c.args)
	}
}

func TestMathNaNPropagates(t *testing.T) {
	f := setup(t)
	assert.True(t, math.IsNaN(f.mustInvoke(t, runtime.Undefined, argv(num(1), str("x")), "Math", "max").Number))
	assert.True(t, math.IsNaN(f.mustInvoke(t, runtime.Undefined, argv(str("x")), "Math", "abs").Number))
}

func TestMathConstantsAndRandom(t *testing.T) {
	f := setup(t)
	assert.Equal(t, math.Pi, f.member(t, "Math", "PI").Number)
	for i := 0; i < 10; i++ {
		r := f.mustInvoke(t, runtime.Undefined, nil, "Math", "random").Number
		assert.True(t, r >= 0 && r < 1)
	}
	_, ok := f.global(t, "Math").Object.GetOwnProperty("PI")
	assert.True(t, ok)
	assert.NoError(t, f.global(t, "Math").Object.Set("PI", num(3)))
	assert.Equal(t, math.Pi, f.member(t, "Math", "PI").Number)
}
