package builtins

import (
	"github.com/example/jseval/runtime"
)

func (b *installer) installBoolean() {
	proto := b.realm.BooleanPrototype
	ctor := b.fn("Boolean", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return runtime.NewBool(arg(args, 0).ToBoolean()), nil
	})
	ctor.SetHidden("prototype", runtime.NewObject(proto))
	proto.SetHidden("constructor", runtime.NewObject(ctor))

	thisBool := func(this *runtime.Value, method string) (*runtime.Value, error) {
		if this.Type != runtime.TypeBoolean {
			return nil, runtime.Errorf(runtime.TypeError, "Boolean.prototype.%s requires that 'this' be a Boolean", method)
		}
		return this, nil
	}
	b.method(proto, "toString", 0, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		v, err := thisBool(this, "toString")
		if err != nil {
			return nil, err
		}
		return runtime.NewString(v.String()), nil
	})
	b.method(proto, "valueOf", 0, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return thisBool(this, "valueOf")
	})

	b.global("Boolean", runtime.NewObject(ctor))
}
