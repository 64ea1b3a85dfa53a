package interpreter

import (
	"strings"

	"github.com/example/jseval/ast"
	"github.com/example/jseval/runtime"
)

// reference is an assignable location: a binding when base is nil, otherwise the
// property key of base.
type reference struct {
	name string
	base *runtime.Value
	key  string
}

// reference resolves an assignment or update target. op only shapes the error message
// for invalid targets.
func (interp *Interpreter) reference(target ast.Expression, env *runtime.Environment, op string) (reference, signal) {
	switch t := target.(type) {
	case *ast.Identifier:
		return reference{name: t.Name}, normal
	case *ast.MemberExpression:
		base, sig := interp.evaluate(t.Object, env)
		if sig.abrupt() {
			return reference{}, sig
		}
		key, sig := interp.memberKey(t, env)
		if sig.abrupt() {
			return reference{}, sig
		}
		return reference{base: base, key: key}, normal
	}
	switch op {
	case "++", "--":
		return reference{}, interp.throwf(target.Span(), runtime.SyntaxError, "Invalid left-hand side expression in postfix operation")
	}
	return reference{}, interp.throwf(target.Span(), runtime.SyntaxError, "Invalid left-hand side in assignment")
}

func (interp *Interpreter) getValue(ref reference, env *runtime.Environment, span ast.Span) (*runtime.Value, signal) {
	if ref.base == nil {
		v, err := env.Lookup(ref.name)
		if err != nil {
			return nil, interp.raise(err, span)
		}
		return v, normal
	}
	v, err := interp.realm.GetMember(ref.base, ref.key)
	if err != nil {
		return nil, interp.raise(err, span)
	}
	return v, normal
}

func (interp *Interpreter) putValue(ref reference, v *runtime.Value, env *runtime.Environment, span ast.Span) signal {
	var err error
	if ref.base == nil {
		err = env.Assign(ref.name, v)
	} else {
		err = interp.realm.SetMember(ref.base, ref.key, v)
	}
	if err != nil {
		return interp.raise(err, span)
	}
	return normal
}

// memberKey computes the property name of a member expression.
func (interp *Interpreter) memberKey(m *ast.MemberExpression, env *runtime.Environment) (string, signal) {
	if !m.Computed {
		id, ok := m.Property.(*ast.Identifier)
		if !ok {
			return "", unsupported(m.Property)
		}
		return id.Name, normal
	}
	k, sig := interp.evaluate(m.Property, env)
	if sig.abrupt() {
		return "", sig
	}
	key, err := runtime.ToPropertyKey(k)
	if err != nil {
		return "", interp.raise(err, m.Property.Span())
	}
	return key, normal
}

func (interp *Interpreter) evalMember(m *ast.MemberExpression, env *runtime.Environment) (*runtime.Value, signal) {
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
	return v, normal
}

// evaluateNamed evaluates expr, naming it after the binding or property it is assigned
// to when it is an anonymous function.
func (interp *Interpreter) evaluateNamed(expr ast.Expression, name string, env *runtime.Environment) (*runtime.Value, signal) {
	switch e := expr.(type) {
	case *ast.FunctionExpression:
		if e.Function.ID == nil {
			return interp.evalFunctionExpression(e, name, env), normal
		}
	case *ast.ArrowFunctionExpression:
		return runtime.NewObject(interp.makeFunction(e.Function, name, env, true)), normal
	}
	return interp.evaluate(expr, env)
}

// evalFunctionExpression creates a function value. A named function expression sees
// its own name in a frame between the function and its surroundings.
func (interp *Interpreter) evalFunctionExpression(e *ast.FunctionExpression, name string, env *runtime.Environment) *runtime.Value {
	if e.Function.ID == nil {
		return runtime.NewObject(interp.makeFunction(e.Function, name, env, false))
	}
	scope := env.NewChild(runtime.BlockFrame)
	fn := runtime.NewObject(interp.makeFunction(e.Function, e.Function.ID.Name, scope, false))
	scope.Initialize(e.Function.ID.Name, fn)
	return fn
}

func (interp *Interpreter) evalArray(e *ast.ArrayExpression, env *runtime.Environment) (*runtime.Value, signal) {
	values := make([]*runtime.Value, 0, len(e.Elements))
	for _, el := range e.Elements {
		if el == nil {
			values = append(values, nil)
			continue
		}
		if spread, ok := el.(*ast.SpreadElement); ok {
			items, sig := interp.evalSpread(spread, env)
			if sig.abrupt() {
				return nil, sig
			}
			values = append(values, items...)
			continue
		}
		v, sig := interp.evaluate(el, env)
		if sig.abrupt() {
			return nil, sig
		}
		values = append(values, v)
	}
	return interp.realm.NewArrayValue(values), normal
}

func (interp *Interpreter) evalSpread(s *ast.SpreadElement, env *runtime.Environment) ([]*runtime.Value, signal) {
	v, sig := interp.evaluate(s.Argument, env)
	if sig.abrupt() {
		return nil, sig
	}
	items, err := runtime.Collect(v)
	if err != nil {
		return nil, interp.raise(err, s.Loc)
	}
	return items, normal
}

func (interp *Interpreter) propertyKey(p *ast.Property, env *runtime.Environment) (string, signal) {
	if p.Computed {
		k, sig := interp.evaluate(p.Key, env)
		if sig.abrupt() {
			return "", sig
		}
		key, err := runtime.ToPropertyKey(k)
		if err != nil {
			return "", interp.raise(err, p.Key.Span())
		}
		return key, normal
	}
	switch k := p.Key.(type) {
	case *ast.Identifier:
		return k.Name, normal
	case *ast.Literal:
		key, err := runtime.ToPropertyKey(literalValue(k))
		if err != nil {
			return "", interp.raise(err, k.Loc)
		}
		return key, normal
	}
	return "", unsupported(p.Key)
}

func (interp *Interpreter) evalObject(e *ast.ObjectExpression, env *runtime.Environment) (*runtime.Value, signal) {
	obj := interp.realm.NewObject()
	for _, p := range e.Properties {
		key, sig := interp.propertyKey(p, env)
		if sig.abrupt() {
			return nil, sig
		}
		switch p.Kind {
		case "get", "set":
			fe, ok := p.Value.(*ast.FunctionExpression)
			if !ok {
				return nil, unsupported(p.Value)
			}
			fn := interp.makeFunction(fe.Function, p.Kind+" "+key, env, false)
			acc := &runtime.Property{IsAccessor: true, Enumerable: true, Configurable: true}
			if prev, ok := obj.GetOwnProperty(key); ok && prev.IsAccessor {
				acc.Getter, acc.Setter = prev.Getter, prev.Setter
			}
			if p.Kind == "get" {
				acc.Getter = fn
			} else {
				acc.Setter = fn
			}
			obj.DefineOwnProperty(key, acc)
		default:
			v, sig := interp.evaluateNamed(p.Value, key, env)
			if sig.abrupt() {
				return nil, sig
			}
			obj.DefineOwnProperty(key, &runtime.Property{Value: v, Writable: true, Enumerable: true, Configurable: true})
		}
	}
	return runtime.NewObject(obj), normal
}

func (interp *Interpreter) evalUnary(e *ast.UnaryExpression, env *runtime.Environment) (*runtime.Value, signal) {
	switch e.Operator {
	case "delete":
		return interp.evalDelete(e, env)
	case "typeof":
		if id, ok := e.Argument.(*ast.Identifier); ok && !env.Has(id.Name) {
			return runtime.NewString("undefined"), normal
		}
	}
	v, sig := interp.evaluate(e.Argument, env)
	if sig.abrupt() {
		return nil, sig
	}
	res, err := runtime.UnaryOp(e.Operator, v)
	if err != nil {
		return nil, interp.raise(err, e.Loc)
	}
	return res, normal
}

// evalDelete removes the final property of a member path. Deleting a plain name does
// nothing and reports false.
func (interp *Interpreter) evalDelete(e *ast.UnaryExpression, env *runtime.Environment) (*runtime.Value, signal) {
	switch arg := e.Argument.(type) {
	case *ast.Identifier:
		return runtime.False, normal
	case *ast.MemberExpression:
		base, sig := interp.evaluate(arg.Object, env)
		if sig.abrupt() {
			return nil, sig
		}
		key, sig := interp.memberKey(arg, env)
		if sig.abrupt() {
			return nil, sig
		}
		switch {
		case base.IsObject():
			return runtime.NewBool(base.Object.Delete(key)), normal
		case base.IsNullish():
			return nil, interp.throwf(arg.Loc, runtime.TypeError, "Cannot convert undefined or null to object")
		}
		return runtime.True, normal
	}
	if _, sig := interp.evaluate(e.Argument, env); sig.abrupt() {
		return nil, sig
	}
	return runtime.True, normal
}

func (interp *Interpreter) evalUpdate(e *ast.UpdateExpression, env *runtime.Environment) (*runtime.Value, signal) {
	ref, sig := interp.reference(e.Argument, env, e.Operator)
	if sig.abrupt() {
		return nil, sig
	}
	old, sig := interp.getValue(ref, env, e.Loc)
	if sig.abrupt() {
		return nil, sig
	}
	n, err := runtime.ToNumber(old)
	if err != nil {
		return nil, interp.raise(err, e.Loc)
	}
	updated := n + 1
	if e.Operator == "--" {
		updated = n - 1
	}
	if sig := interp.putValue(ref, runtime.NewNumber(updated), env, e.Loc); sig.abrupt() {
		return nil, sig
	}
	if e.Prefix {
		return runtime.NewNumber(updated), normal
	}
	return runtime.NewNumber(n), normal
}

func (interp *Interpreter) evalBinary(e *ast.BinaryExpression, env *runtime.Environment) (*runtime.Value, signal) {
	l, sig := interp.evaluate(e.Left, env)
	if sig.abrupt() {
		return nil, sig
	}
	r, sig := interp.evaluate(e.Right, env)
	if sig.abrupt() {
		return nil, sig
	}
	v, err := runtime.BinaryOp(e.Operator, l, r)
	if err != nil {
		return nil, interp.raise(err, e.Loc)
	}
	return v, normal
}

// shortCircuits reports whether a logical operator is decided by its left operand.
func shortCircuits(op string, left *runtime.Value) bool {
	switch op {
	case "&&":
		return !left.ToBoolean()
	case "||":
		return left.ToBoolean()
	case "??":
		return !left.IsNullish()
	}
	return false
}

func (interp *Interpreter) evalLogical(e *ast.LogicalExpression, env *runtime.Environment) (*runtime.Value, signal) {
	l, sig := interp.evaluate(e.Left, env)
	if sig.abrupt() {
		return nil, sig
	}
	if shortCircuits(e.Operator, l) {
		return l, normal
	}
	return interp.evaluate(e.Right, env)
}

func (interp *Interpreter) evalAssignment(e *ast.AssignmentExpression, env *runtime.Environment) (*runtime.Value, signal) {
	ref, sig := interp.reference(e.Left, env, e.Operator)
	if sig.abrupt() {
		return nil, sig
	}

	var v *runtime.Value
	switch op := strings.TrimSuffix(e.Operator, "="); op {
	case "":
		if v, sig = interp.evaluateNamed(e.Right, ref.name, env); sig.abrupt() {
			return nil, sig
		}
	case "&&", "||", "??":
		cur, sig := interp.getValue(ref, env, e.Left.Span())
		if sig.abrupt() {
			return nil, sig
		}
		if shortCircuits(op, cur) {
			return cur, normal
		}
		if v, sig = interp.evaluateNamed(e.Right, ref.name, env); sig.abrupt() {
			return nil, sig
		}
	default:
		cur, sig := interp.getValue(ref, env, e.Left.Span())
		if sig.abrupt() {
			return nil, sig
		}
		r, sig := interp.evaluate(e.Right, env)
		if sig.abrupt() {
			return nil, sig
		}
		var err error
		if v, err = runtime.BinaryOp(op, cur, r); err != nil {
			return nil, interp.raise(err, e.Loc)
		}
	}
	if sig := interp.putValue(ref, v, env, e.Loc); sig.abrupt() {
		return nil, sig
	}
	return v, normal
}
