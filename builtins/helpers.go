package builtins

import (
	"math"

	"github.com/example/jseval/runtime"
	"github.com/example/jseval/util/contract"
)

// installer carries the realm and global frame while the builtins are created.
type installer struct {
	realm *runtime.Realm
	env   *runtime.Environment
	opts  Options
}

func (b *installer) fn(name string, length int, fn runtime.CallableFunc) *runtime.Object {
	return b.realm.NewFunction(name, length, fn)
}

func (b *installer) method(obj *runtime.Object, name string, length int, fn runtime.CallableFunc) {
	obj.SetHidden(name, runtime.NewObject(b.fn(name, length, fn)))
}

func (b *installer) global(name string, v *runtime.Value) {
	contract.Assertf(b.env.Declare(name, runtime.VarBinding, v) == nil, "global %s declared twice", name)
}

func constant(obj *runtime.Object, name string, v *runtime.Value) {
	obj.DefineOwnProperty(name, &runtime.Property{Value: v})
}

func arg(args []*runtime.Value, i int) *runtime.Value {
	if i < len(args) {
		return args[i]
	}
	return runtime.Undefined
}

func thisObject(this *runtime.Value, method string) (*runtime.Object, error) {
	if !this.IsObject() {
		return nil, runtime.Errorf(runtime.TypeError, "%s called on non-object", method)
	}
	return this.Object, nil
}

// thisArray accepts arrays and arguments objects, the array-likes whose elements live
// in ArrayData.
func thisArray(this *runtime.Value, method string) (*runtime.Object, error) {
	if this.IsObject() && (this.Object.Class == runtime.ClassArray || this.Object.Class == runtime.ClassArguments) {
		return this.Object, nil
	}
	return nil, runtime.Errorf(runtime.TypeError, "Array.prototype.%s called on non-array", method)
}

func callback(v *runtime.Value) (*runtime.Object, error) {
	if !v.IsCallable() {
		return nil, runtime.Errorf(runtime.TypeError, "%s is not a function", v)
	}
	return v.Object, nil
}

func element(data []*runtime.Value, i int) *runtime.Value {
	if i < len(data) && data[i] != nil {
		return data[i]
	}
	return runtime.Undefined
}

// relativeIndex resolves a start or end argument against length: negative values
// count from the end, and the result is clamped to [0, length].
func relativeIndex(v *runtime.Value, length, def int) (int, error) {
	if v.IsUndefined() {
		return def, nil
	}
	n, err := runtime.ToNumber(v)
	if err != nil {
		return 0, err
	}
	n = runtime.ToInteger(n)
	if n < 0 {
		n = math.Max(0, float64(length)+n)
	}
	return int(math.Min(n, float64(length))), nil
}

// listFromArrayLike reads the elements apply and Function.prototype.call style APIs
// accept as an argument list.
func listFromArrayLike(v *runtime.Value) ([]*runtime.Value, error) {
	if v.IsNullish() {
		return nil, nil
	}
	if !v.IsObject() {
		return nil, runtime.Errorf(runtime.TypeError, "CreateListFromArrayLike called on non-object")
	}
	obj := v.Object
	if obj.Class == runtime.ClassArray || obj.Class == runtime.ClassArguments {
		out := make([]*runtime.Value, len(obj.ArrayData))
		for i := range obj.ArrayData {
			out[i] = element(obj.ArrayData, i)
		}
		return out, nil
	}
	lv, err := obj.Get("length")
	if err != nil {
		return nil, err
	}
	n, err := runtime.ToNumber(lv)
	if err != nil {
		return nil, err
	}
	length := runtime.ToInteger(n)
	if length < 0 {
		length = 0
	}
	if err := runtime.CheckArrayLength(length); err != nil {
		return nil, err
	}
	out := make([]*runtime.Value, 0, int(length))
	for i := 0; i < int(length); i++ {
		el, err := obj.Get(runtime.NumberToString(float64(i)))
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}
