package builtins

import (
	"math"

	"github.com/example/jseval/runtime"
	"github.com/example/jseval/util/contract"
)

func (b *installer) installGlobals() {
	for name, v := range map[string]*runtime.Value{
		"undefined": runtime.Undefined,
		"NaN":       runtime.NaN,
		"Infinity":  runtime.NewNumber(math.Inf(1)),
	} {
		contract.Assertf(b.env.Declare(name, runtime.ConstBinding, v) == nil, "global %s declared twice", name)
	}

	b.global("parseInt", runtime.NewObject(b.fn("parseInt", 2, parseInt)))
	b.global("parseFloat", runtime.NewObject(b.fn("parseFloat", 1, parseFloat)))
	b.global("isNaN", runtime.NewObject(b.fn("isNaN", 1, globalNumberTest(math.IsNaN))))
	b.global("isFinite", runtime.NewObject(b.fn("isFinite", 1, globalNumberTest(isFinite))))
}

// globalNumberTest converts its argument to a number first, unlike the Number.isNaN
// family.
func globalNumberTest(fn func(float64) bool) runtime.CallableFunc {
	return func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		n, err := runtime.ToNumber(arg(args, 0))
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(fn(n)), nil
	}
}
