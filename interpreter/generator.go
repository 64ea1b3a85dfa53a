package interpreter

import (
	"github.com/golang/glog"

	"github.com/example/jseval/ast"
	"github.com/example/jseval/runtime"
)

func (interp *Interpreter) current() *callContext {
	if len(interp.calls) == 0 {
		return nil
	}
	return interp.calls[len(interp.calls)-1]
}

// runGenerator runs a generator body to completion and returns a generator object
// replaying what it yielded. A throw from the body is delivered after the buffered
// values; faults are not deferred.
func (interp *Interpreter) runGenerator(ctx *callContext, frame *runtime.Environment, args []*runtime.Value) (*runtime.Value, error) {
	v, sig := interp.runBody(ctx.closure, frame, args)
	var deferred error
	switch sig.kind {
	case sigFault:
		return nil, sig.err
	case sigThrow:
		deferred = &runtime.Thrown{Value: sig.value, Span: sig.span}
	}
	glog.V(7).Infof("Generator %q buffered %d values", ctx.closure.Name, len(ctx.yields))

	g := runtime.NewGenerator(ctx.yields, v, deferred)
	g.Async = ctx.closure.Func.Async
	return runtime.NewObject(interp.realm.NewGeneratorObject(g)), nil
}

// runAsync runs an async body and returns a promise already settled with its outcome.
func (interp *Interpreter) runAsync(ctx *callContext, frame *runtime.Environment, args []*runtime.Value) (*runtime.Value, error) {
	v, sig := interp.runBody(ctx.closure, frame, args)
	obj, p := interp.realm.NewPromise()
	var err error
	switch sig.kind {
	case sigNone:
		err = p.Resolve(v)
	case sigThrow:
		err = p.Reject(sig.value)
	default:
		return interp.unwind(v, sig)
	}
	if err != nil {
		return nil, err
	}
	return runtime.NewObject(obj), nil
}

func (interp *Interpreter) evalYield(e *ast.YieldExpression, env *runtime.Environment) (*runtime.Value, signal) {
	ctx := interp.current()
	if ctx == nil || !ctx.generator() {
		return nil, interp.throwf(e.Loc, runtime.SyntaxError, "yield is only valid in generator functions")
	}
	v := runtime.Undefined
	if e.Argument != nil {
		var sig signal
		if v, sig = interp.evaluate(e.Argument, env); sig.abrupt() {
			return nil, sig
		}
	}
	if !e.Delegate {
		ctx.yields = append(ctx.yields, v)
		return runtime.Undefined, normal
	}
	items, err := runtime.Collect(v)
	if err != nil {
		return nil, interp.raise(err, e.Loc)
	}
	ctx.yields = append(ctx.yields, items...)
	return runtime.Undefined, normal
}

// evalAwait unwraps its operand on the spot: a fulfilled promise gives its value and a
// rejected one throws its reason. Promises are settled synchronously, so a pending one
// can never settle while we wait.
func (interp *Interpreter) evalAwait(e *ast.AwaitExpression, env *runtime.Environment) (*runtime.Value, signal) {
	v, sig := interp.evaluate(e.Argument, env)
	if sig.abrupt() {
		return nil, sig
	}
	p := runtime.PromiseOf(v)
	if p == nil {
		return v, normal
	}
	switch p.State {
	case runtime.Fulfilled:
		return p.Result, normal
	case runtime.Rejected:
		return nil, throwSignal(p.Result, e.Loc)
	}
	glog.Warningf("await on a pending promise at %v", e.Loc)
	return nil, interp.throwf(e.Loc, runtime.TypeError, "await on a promise that never settles")
}
