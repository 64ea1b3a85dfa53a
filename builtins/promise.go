package builtins

import (
	"github.com/example/jseval/runtime"
)

// installPromise adds Promise. Settlement is synchronous, so then callbacks run as soon
// as the promise they observe settles.
func (b *installer) installPromise() {
	proto := b.realm.PromisePrototype
	ctor := b.realm.NewConstructor("Promise", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return nil, runtime.Errorf(runtime.TypeError, "Promise constructor cannot be invoked without 'new'")
	}, b.promiseConstruct, proto)

	b.method(ctor, "resolve", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return b.realm.PromiseResolve(arg(args, 0)), nil
	})
	b.method(ctor, "reject", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return b.realm.PromiseReject(arg(args, 0)), nil
	})
	b.method(ctor, "all", 1, b.promiseAll)
	b.method(ctor, "race", 1, b.promiseRace)

	b.method(proto, "then", 2, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return b.promiseThen(this, arg(args, 0), arg(args, 1))
	})
	b.method(proto, "catch", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return b.promiseThen(this, runtime.Undefined, arg(args, 0))
	})
	b.method(proto, "finally", 1, b.promiseFinally)

	b.global("Promise", runtime.NewObject(ctor))
}

// resolvingFunctions creates the resolve and reject functions handed to an executor.
func (b *installer) resolvingFunctions(p *runtime.Promise) (resolve, reject *runtime.Object) {
	resolve = b.fn("", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return runtime.Undefined, p.Resolve(arg(args, 0))
	})
	reject = b.fn("", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return runtime.Undefined, p.Reject(arg(args, 0))
	})
	return resolve, reject
}

func (b *installer) promiseConstruct(args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
	executor, err := callback(arg(args, 0))
	if err != nil {
		return nil, runtime.Errorf(runtime.TypeError, "Promise resolver %s is not a function", arg(args, 0))
	}
	obj, p := b.realm.NewPromise()
	if newTarget != nil {
		if proto := newTarget.Value("prototype"); proto.IsObject() {
			obj.Prototype = proto.Object
		}
	}
	resolve, reject := b.resolvingFunctions(p)
	if _, err := executor.Call(runtime.Undefined, []*runtime.Value{runtime.NewObject(resolve), runtime.NewObject(reject)}); err != nil {
		reason, ok := b.realm.ErrorValue(err)
		if !ok {
			return nil, err
		}
		if err := p.Reject(reason); err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(obj), nil
}

func thisPromise(this *runtime.Value, method string) (*runtime.Promise, error) {
	if p := runtime.PromiseOf(this); p != nil {
		return p, nil
	}
	return nil, runtime.Errorf(runtime.TypeError, "Method Promise.prototype.%s called on incompatible receiver %s", method, this)
}

// settleWith runs handler on the outcome of a settled promise and settles target with
// its result. A missing handler passes the outcome through unchanged.
func (b *installer) settleWith(target *runtime.Promise, handler, value *runtime.Value, fulfilled bool) error {
	if !handler.IsCallable() {
		if fulfilled {
			return target.Resolve(value)
		}
		return target.Reject(value)
	}
	res, err := handler.Object.Call(runtime.Undefined, []*runtime.Value{value})
	if err != nil {
		reason, ok := b.realm.ErrorValue(err)
		if !ok {
			return err
		}
		return target.Reject(reason)
	}
	return target.Resolve(res)
}

func (b *installer) promiseThen(this, onFulfilled, onRejected *runtime.Value) (*runtime.Value, error) {
	p, err := thisPromise(this, "then")
	if err != nil {
		return nil, err
	}
	obj, next := b.realm.NewPromise()
	err = p.OnSettled(func() error {
		if p.State == runtime.Fulfilled {
			return b.settleWith(next, onFulfilled, p.Result, true)
		}
		return b.settleWith(next, onRejected, p.Result, false)
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(obj), nil
}

// promiseFinally runs its callback on either outcome and passes the original outcome
// on, unless the callback throws.
func (b *installer) promiseFinally(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	p, err := thisPromise(this, "finally")
	if err != nil {
		return nil, err
	}
	onFinally := arg(args, 0)
	obj, next := b.realm.NewPromise()
	err = p.OnSettled(func() error {
		if onFinally.IsCallable() {
			if _, err := onFinally.Object.Call(runtime.Undefined, nil); err != nil {
				reason, ok := b.realm.ErrorValue(err)
				if !ok {
					return err
				}
				return next.Reject(reason)
			}
		}
		if p.State == runtime.Fulfilled {
			return next.Resolve(p.Result)
		}
		return next.Reject(p.Result)
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(obj), nil
}

func (b *installer) promiseAll(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	items, err := runtime.Collect(arg(args, 0))
	if err != nil {
		return nil, err
	}
	obj, all := b.realm.NewPromise()
	results := make([]*runtime.Value, len(items))
	remaining := len(items)
	if remaining == 0 {
		if err := all.Resolve(b.realm.NewArrayValue(results)); err != nil {
			return nil, err
		}
	}
	for i, item := range items {
		p := runtime.PromiseOf(b.realm.PromiseResolve(item))
		err := p.OnSettled(func() error {
			if p.State == runtime.Rejected {
				return all.Reject(p.Result)
			}
			results[i] = p.Result
			if remaining--; remaining == 0 {
				return all.Resolve(b.realm.NewArrayValue(results))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(obj), nil
}

func (b *installer) promiseRace(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	items, err := runtime.Collect(arg(args, 0))
	if err != nil {
		return nil, err
	}
	obj, race := b.realm.NewPromise()
	for _, item := range items {
		p := runtime.PromiseOf(b.realm.PromiseResolve(item))
		err := p.OnSettled(func() error {
			if p.State == runtime.Fulfilled {
				return race.Resolve(p.Result)
			}
			return race.Reject(p.Result)
		})
		if err != nil {
			return nil, err
		}
	}
	return runtime.NewObject(obj), nil
}
