package interpreter

import (
	"github.com/example/jseval/ast"
	"github.com/example/jseval/runtime"
)

func (interp *Interpreter) evalArguments(exprs []ast.Expression, env *runtime.Environment) ([]*runtime.Value, signal) {
	args := make([]*runtime.Value, 0, len(exprs))
	for _, e := range exprs {
		if spread, ok := e.(*ast.SpreadElement); ok {
			items, sig := interp.evalSpread(spread, env)
			if sig.abrupt() {
				return nil, sig
			}
			args = append(args, items...)
			continue
		}
		v, sig := interp.evaluate(e, env)
		if sig.abrupt() {
			return nil, sig
		}
		args = append(args, v)
	}
	return args, normal
}

// evalCall evaluates the callee, then the arguments, and invokes the callee. The
// receiver is the base of a member callee and undefined otherwise; it travels with
// this one invocation only.
func (interp *Interpreter) evalCall(e *ast.CallExpression, env *runtime.Environment) (*runtime.Value, signal) {
	this := runtime.Undefined
	var callee *runtime.Value
	if m, ok := e.Callee.(*ast.MemberExpression); ok {
		base, sig := interp.evaluate(m.Object, env)
		if sig.abrupt() {
			return nil, sig
		}
		key, sig := interp.memberKey(m, env)
		if sig.abrupt() {
			return nil, sig
		}
		v, err := interp.realm.GetMember(base, key)
		if err != nil {
			return nil, interp.raise(err, m.Loc)
		}
		this, callee = base, v
	} else {
		var sig signal
		if callee, sig = interp.evaluate(e.Callee, env); sig.abrupt() {
			return nil, sig
		}
	}

	args, sig := interp.evalArguments(e.Arguments, env)
	if sig.abrupt() {
		return nil, sig
	}
	if !callee.IsCallable() {
		return nil, interp.throwf(e.Loc, runtime.TypeError, "%s is not a function", calleeName(e.Callee))
	}
	v, err := callee.Object.Call(this, args)
	if err != nil {
		return nil, interp.raise(err, e.Loc)
	}
	return v, normal
}

func (interp *Interpreter) evalNew(e *ast.NewExpression, env *runtime.Environment) (*runtime.Value, signal) {
	callee, sig := interp.evaluate(e.Callee, env)
	if sig.abrupt() {
		return nil, sig
	}
	args, sig := interp.evalArguments(e.Arguments, env)
	if sig.abrupt() {
		return nil, sig
	}
	if !callee.IsObject() || !callee.Object.Constructor() {
		return nil, interp.throwf(e.Loc, runtime.TypeError, "%s is not a constructor", calleeName(e.Callee))
	}
	v, err := callee.Object.Construct(args, callee.Object)
	if err != nil {
		return nil, interp.raise(err, e.Loc)
	}
	return v, normal
}

// calleeName renders a callee for error messages.
func calleeName(e ast.Expression) string {
	switch c := e.(type) {
	case *ast.Identifier:
		return c.Name
	case *ast.ThisExpression:
		return "this"
	case *ast.MemberExpression:
		obj := calleeName(c.Object)
		if id, ok := c.Property.(*ast.Identifier); ok && !c.Computed {
			return obj + "." + id.Name
		}
		if lit, ok := c.Property.(*ast.Literal); ok {
			return obj + "[" + lit.Raw + "]"
		}
		return obj + "[...]"
	case *ast.CallExpression:
		return calleeName(c.Callee) + "(...)"
	}
	return "expression"
}
