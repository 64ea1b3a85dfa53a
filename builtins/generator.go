package builtins

import (
	"github.com/example/jseval/runtime"
)

// installGenerators adds next and return to the generator prototypes. Async generators
// answer with promises settled from the same buffered state.
func (b *installer) installGenerators() {
	sync := b.realm.GeneratorPrototype
	b.method(sync, "next", 1, b.generatorNext)
	b.method(sync, "return", 1, b.generatorReturn)
	b.method(sync, "toString", 0, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return runtime.NewString("[object Generator]"), nil
	})

	async := b.realm.AsyncGeneratorPrototype
	b.method(async, "next", 1, b.asyncStep(b.generatorNext))
	b.method(async, "return", 1, b.asyncStep(b.generatorReturn))
	b.method(async, "toString", 0, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return runtime.NewString("[object AsyncGenerator]"), nil
	})
}

func thisGenerator(this *runtime.Value, method string) (*runtime.Generator, error) {
	if this.IsObject() {
		if g, ok := this.Object.Internal.(*runtime.Generator); ok {
			return g, nil
		}
	}
	return nil, runtime.Errorf(runtime.TypeError, "%s method called on incompatible receiver %s", method, this)
}

func (b *installer) generatorNext(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	g, err := thisGenerator(this, "next")
	if err != nil {
		return nil, err
	}
	v, done, err := g.Next()
	if err != nil {
		return nil, err
	}
	return b.realm.NewIterResult(v, done), nil
}

func (b *installer) generatorReturn(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	g, err := thisGenerator(this, "return")
	if err != nil {
		return nil, err
	}
	return b.realm.NewIterResult(g.Return(arg(args, 0)), true), nil
}

// asyncStep wraps a synchronous step so that its result, or the error it throws,
// arrives as a promise.
func (b *installer) asyncStep(step runtime.CallableFunc) runtime.CallableFunc {
	return func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		res, err := step(this, args)
		if err != nil {
			reason, ok := b.realm.ErrorValue(err)
			if !ok {
				return nil, err
			}
			return b.realm.PromiseReject(reason), nil
		}
		return b.realm.PromiseResolve(res), nil
	}
}
