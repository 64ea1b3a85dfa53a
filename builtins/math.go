package builtins

import (
	"math"
	"math/rand"

	"github.com/example/jseval/runtime"
)

func (b *installer) installMath() {
	m := b.realm.NewObject()

	constant(m, "PI", runtime.NewNumber(math.Pi))
	constant(m, "E", runtime.NewNumber(math.E))
	constant(m, "LN2", runtime.NewNumber(math.Ln2))
	constant(m, "LN10", runtime.NewNumber(math.Ln10))
	constant(m, "LOG2E", runtime.NewNumber(math.Log2E))
	constant(m, "LOG10E", runtime.NewNumber(math.Log10E))
	constant(m, "SQRT2", runtime.NewNumber(math.Sqrt2))
	constant(m, "SQRT1_2", runtime.NewNumber(1/math.Sqrt2))

	unary := map[string]func(float64) float64{
		"abs":   math.Abs,
		"ceil":  math.Ceil,
		"floor": math.Floor,
		"round": mathRound,
		"trunc": math.Trunc,
		"sign":  mathSign,
		"sqrt":  math.Sqrt,
		"cbrt":  math.Cbrt,
		"log":   math.Log,
		"log2":  math.Log2,
		"log10": math.Log10,
		"exp":   math.Exp,
		"sin":   math.Sin,
		"cos":   math.Cos,
		"tan":   math.Tan,
		"atan":  math.Atan,
	}
	for name, fn := range unary {
		b.method(m, name, 1, mathUnary(fn))
	}
	b.method(m, "pow", 2, mathBinary(math.Pow))
	b.method(m, "atan2", 2, mathBinary(math.Atan2))
	b.method(m, "max", 2, mathExtremum(math.Inf(-1), func(a, b float64) bool { return a > b }))
	b.method(m, "min", 2, mathExtremum(math.Inf(1), func(a, b float64) bool { return a < b }))
	b.method(m, "random", 0, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return runtime.NewNumber(rand.Float64()), nil
	})

	b.global("Math", runtime.NewObject(m))
}

// mathRound rounds half up, so Math.round(-2.5) is -2.
func mathRound(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) || n == math.Trunc(n) {
		return n
	}
	return math.Floor(n + 0.5)
}

func mathSign(n float64) float64 {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return n
}

func mathUnary(fn func(float64) float64) runtime.CallableFunc {
	return func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		n, err := runtime.ToNumber(arg(args, 0))
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(fn(n)), nil
	}
}

func mathBinary(fn func(a, b float64) float64) runtime.CallableFunc {
	return func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		a, err := runtime.ToNumber(arg(args, 0))
		if err != nil {
			return nil, err
		}
		b, err := runtime.ToNumber(arg(args, 1))
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(fn(a, b)), nil
	}
}

// mathExtremum implements max and min. Every argument is converted even after a NaN
// has decided the result.
func mathExtremum(start float64, better func(a, b float64) bool) runtime.CallableFunc {
	return func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		result := start
		for _, a := range args {
			n, err := runtime.ToNumber(a)
			if err != nil {
				return nil, err
			}
			if math.IsNaN(n) || math.IsNaN(result) {
				result = math.NaN()
				continue
			}
			if better(n, result) {
				result = n
			}
		}
		return runtime.NewNumber(result), nil
	}
}
