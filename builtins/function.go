package builtins

import (
	"github.com/example/jseval/runtime"
)

// installFunction adds call, apply and bind. Each passes the receiver explicitly to the
// single invocation it performs; bind stores it on the bound function instead.
func (b *installer) installFunction() {
	proto := b.realm.FunctionPrototype
	ctor := b.realm.NewConstructor("Function", 1, functionUnsupported, func(args []*runtime.Value, _ *runtime.Object) (*runtime.Value, error) {
		return functionUnsupported(runtime.Undefined, args)
	}, proto)

	b.method(proto, "call", 1, functionCall)
	b.method(proto, "apply", 2, functionApply)
	b.method(proto, "bind", 1, b.functionBind)
	b.method(proto, "toString", 0, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		fn, err := thisFunction(this, "toString")
		if err != nil {
			return nil, err
		}
		return runtime.NewString(fn.String()), nil
	})

	b.global("Function", runtime.NewObject(ctor))
}

func functionUnsupported(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return nil, runtime.Errorf(runtime.TypeError, "Function constructor is not supported")
}

func thisFunction(this *runtime.Value, method string) (*runtime.Object, error) {
	if !this.IsCallable() {
		return nil, runtime.Errorf(runtime.TypeError, "Function.prototype.%s called on non-function", method)
	}
	return this.Object, nil
}

func functionCall(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	fn, err := thisFunction(this, "call")
	if err != nil {
		return nil, err
	}
	var rest []*runtime.Value
	if len(args) > 1 {
		rest = args[1:]
	}
	return fn.Call(arg(args, 0), rest)
}

func functionApply(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	fn, err := thisFunction(this, "apply")
	if err != nil {
		return nil, err
	}
	list, err := listFromArrayLike(arg(args, 1))
	if err != nil {
		return nil, err
	}
	return fn.Call(arg(args, 0), list)
}

func (b *installer) functionBind(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	fn, err := thisFunction(this, "bind")
	if err != nil {
		return nil, err
	}
	var rest []*runtime.Value
	if len(args) > 1 {
		rest = args[1:]
	}
	return runtime.NewObject(b.realm.NewBoundFunction(fn, arg(args, 0), rest)), nil
}
