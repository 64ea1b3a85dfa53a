package interpreter

import (
	"github.com/golang/glog"

	"github.com/example/jseval/ast"
	"github.com/example/jseval/runtime"
	"github.com/example/jseval/util/contract"
)

// Closure is a function defined by the program together with the frame it was
// defined in. The frame is shared, not copied: later changes to captured bindings are
// visible through the closure.
type Closure struct {
	Name  string
	Func  *ast.Function
	Env   *runtime.Environment
	Arrow bool
}

// callContext is the per-invocation execution state of a closure. Yields of a
// generator body accumulate here rather than on the syntax tree.
type callContext struct {
	closure *Closure
	yields  []*runtime.Value
}

func (c *callContext) generator() bool {
	return c.closure.Func.Generator
}

// makeFunction wraps fn in a function object closing over env. Ordinary functions are
// constructors with a fresh prototype object; arrows, generators and async functions
// are not.
func (interp *Interpreter) makeFunction(fn *ast.Function, name string, env *runtime.Environment, arrow bool) *runtime.Object {
	c := &Closure{Name: name, Func: fn, Env: env, Arrow: arrow}
	obj := interp.realm.NewFunction(name, paramCount(fn.Params), nil)
	obj.Internal = c
	obj.Call = func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return interp.callClosure(c, this, args, runtime.Undefined)
	}
	if arrow || fn.Generator || fn.Async {
		return obj
	}

	proto := interp.realm.NewObject()
	proto.SetHidden("constructor", runtime.NewObject(obj))
	obj.DefineOwnProperty("prototype", &runtime.Property{Value: runtime.NewObject(proto), Writable: true})
	obj.Construct = func(args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
		return interp.construct(c, args, newTarget)
	}
	return obj
}

// paramCount is the length property of a function: the parameters before the first
// default or rest parameter.
func paramCount(params []ast.Node) int {
	for i, p := range params {
		if _, ok := p.(*ast.Identifier); !ok {
			return i
		}
	}
	return len(params)
}

// callClosure invokes c with an explicit receiver. Arrows ignore the receiver and see
// the one of their defining frame.
func (interp *Interpreter) callClosure(c *Closure, this *runtime.Value, args []*runtime.Value, newTarget *runtime.Value) (*runtime.Value, error) {
	if len(interp.calls) >= interp.opts.MaxCallDepth {
		return nil, runtime.Errorf(runtime.RangeError, "Maximum call stack size exceeded")
	}
	ctx := &callContext{closure: c}
	interp.calls = append(interp.calls, ctx)
	defer func() { interp.calls = interp.calls[:len(interp.calls)-1] }()

	if glog.V(7) {
		glog.Infof("Calling %q: args=%d depth=%d", c.Name, len(args), len(interp.calls))
	}

	frame := c.Env.NewChild(runtime.FunctionFrame)
	if !c.Arrow {
		frame.BindReceiver(this, newTarget)
		contract.Assert(frame.Declare("arguments", runtime.VarBinding, runtime.NewObject(interp.realm.NewArguments(args))) == nil)
	}

	switch {
	case c.Func.Generator:
		return interp.runGenerator(ctx, frame, args)
	case c.Func.Async:
		return interp.runAsync(ctx, frame, args)
	}
	return interp.unwind(interp.runBody(c, frame, args))
}

// runBody binds the parameters and runs the body, turning a return into a normal
// completion carrying the returned value.
func (interp *Interpreter) runBody(c *Closure, frame *runtime.Environment, args []*runtime.Value) (*runtime.Value, signal) {
	if sig := interp.bindParams(c.Func.Params, args, frame); sig.abrupt() {
		return nil, sig
	}

	body, ok := c.Func.Body.(*ast.BlockStatement)
	if !ok {
		expr, ok := c.Func.Body.(ast.Expression)
		if !ok {
			return nil, unsupported(c.Func.Body)
		}
		return interp.evaluate(expr, frame)
	}

	interp.hoistDeclarations(body.Body, frame)
	if sig := interp.declareBlock(body.Body, frame); sig.abrupt() {
		return nil, sig
	}
	_, sig := interp.execStatements(body.Body, frame)
	switch sig.kind {
	case sigNone:
		return runtime.Undefined, normal
	case sigReturn:
		return sig.value, normal
	case sigBreak, sigContinue:
		contract.Failf("%v signal escaped the body of %q at %v", sig.kind, c.Name, sig.span)
	}
	return nil, sig
}

func (interp *Interpreter) bindParams(params []ast.Node, args []*runtime.Value, frame *runtime.Environment) signal {
	arg := func(i int) *runtime.Value {
		if i < len(args) {
			return args[i]
		}
		return runtime.Undefined
	}
	for i, p := range params {
		var id *ast.Identifier
		v := arg(i)
		switch p := p.(type) {
		case *ast.Identifier:
			id = p
		case *ast.AssignmentPattern:
			left, ok := p.Left.(*ast.Identifier)
			if !ok {
				return unsupported(p.Left)
			}
			id = left
			if v.IsUndefined() {
				var sig signal
				if v, sig = interp.evaluateNamed(p.Right, id.Name, frame); sig.abrupt() {
					return sig
				}
			}
		case *ast.RestElement:
			rest, ok := p.Argument.(*ast.Identifier)
			if !ok {
				return unsupported(p.Argument)
			}
			id = rest
			var tail []*runtime.Value
			if i < len(args) {
				tail = append(tail, args[i:]...)
			}
			v = interp.realm.NewArrayValue(tail)
		default:
			return unsupported(p)
		}
		if err := frame.Declare(id.Name, runtime.VarBinding, v); err != nil {
			return interp.raise(err, p.Span())
		}
	}
	return normal
}

// unwind converts the completion of a function body into the Go result of a call.
// Thrown values keep the location they were thrown from.
func (interp *Interpreter) unwind(v *runtime.Value, sig signal) (*runtime.Value, error) {
	switch sig.kind {
	case sigNone:
		if v == nil {
			v = runtime.Undefined
		}
		return v, nil
	case sigThrow:
		return nil, &runtime.Thrown{Value: sig.value, Span: sig.span}
	case sigFault:
		return nil, sig.err
	}
	contract.Failf("%v signal escaped a function body at %v", sig.kind, sig.span)
	return nil, nil
}

// construct implements new for closures: the instance inherits from the prototype
// property of newTarget, and only an object returned by the body replaces it.
func (interp *Interpreter) construct(c *Closure, args []*runtime.Value, newTarget *runtime.Object) (*runtime.Value, error) {
	protoVal, err := newTarget.Get("prototype")
	if err != nil {
		return nil, err
	}
	proto := interp.realm.ObjectPrototype
	if protoVal.IsObject() {
		proto = protoVal.Object
	}
	this := runtime.NewObject(runtime.NewPlainObject(proto))
	res, err := interp.callClosure(c, this, args, runtime.NewObject(newTarget))
	if err != nil {
		return nil, err
	}
	if res.IsObject() {
		return res, nil
	}
	return this, nil
}
