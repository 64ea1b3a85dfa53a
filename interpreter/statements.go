package interpreter

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/example/jseval/ast"
	"github.com/example/jseval/runtime"
)

// errLoopExit stops runtime.Iterate when a for-of body completes abruptly.
var errLoopExit = errors.New("loop exit")

func (interp *Interpreter) execStatements(body []ast.Statement, env *runtime.Environment) (*runtime.Value, signal) {
	var completion *runtime.Value
	for _, stmt := range body {
		v, sig := interp.evaluate(stmt, env)
		if v != nil {
			completion = v
		}
		if sig.abrupt() {
			return completion, sig
		}
	}
	return completion, normal
}

func (interp *Interpreter) execBlock(b *ast.BlockStatement, env *runtime.Environment) (*runtime.Value, signal) {
	scope := env.NewChild(runtime.BlockFrame)
	if sig := interp.declareBlock(b.Body, scope); sig.abrupt() {
		return nil, sig
	}
	return interp.execStatements(b.Body, scope)
}

func (interp *Interpreter) execVariableDeclaration(decl *ast.VariableDeclaration, env *runtime.Environment) signal {
	for _, d := range decl.Declarations {
		id, ok := d.ID.(*ast.Identifier)
		if !ok {
			return unsupported(d.ID)
		}
		if decl.Kind == "var" {
			if d.Init == nil {
				env.Hoist(id.Name)
				continue
			}
			v, sig := interp.evaluateNamed(d.Init, id.Name, env)
			if sig.abrupt() {
				return sig
			}
			if err := env.FunctionScope().Declare(id.Name, runtime.VarBinding, v); err != nil {
				return interp.raise(err, d.Loc)
			}
			continue
		}

		v := runtime.Undefined
		if d.Init != nil {
			var sig signal
			if v, sig = interp.evaluateNamed(d.Init, id.Name, env); sig.abrupt() {
				return sig
			}
		} else if decl.Kind == "const" {
			return interp.throwf(d.Loc, runtime.SyntaxError, "Missing initializer in const declaration")
		}
		if !env.HasOwn(id.Name) {
			if err := env.DeclareLexical(id.Name, runtime.BindingKind(decl.Kind)); err != nil {
				return interp.raise(err, d.Loc)
			}
		}
		env.Initialize(id.Name, v)
	}
	return normal
}

func (interp *Interpreter) execReturn(s *ast.ReturnStatement, env *runtime.Environment) (*runtime.Value, signal) {
	if s.Argument == nil {
		return nil, returnSignal(runtime.Undefined, s.Loc)
	}
	v, sig := interp.evaluate(s.Argument, env)
	if sig.abrupt() {
		return nil, sig
	}
	return nil, returnSignal(v, s.Loc)
}

func (interp *Interpreter) execIf(s *ast.IfStatement, env *runtime.Environment) (*runtime.Value, signal) {
	test, sig := interp.evaluate(s.Test, env)
	if sig.abrupt() {
		return nil, sig
	}
	if test.ToBoolean() {
		return interp.evaluate(s.Consequent, env)
	}
	if s.Alternate != nil {
		return interp.evaluate(s.Alternate, env)
	}
	return nil, normal
}

func (interp *Interpreter) execThrow(s *ast.ThrowStatement, env *runtime.Environment) (*runtime.Value, signal) {
	v, sig := interp.evaluate(s.Argument, env)
	if sig.abrupt() {
		return nil, sig
	}
	return nil, throwSignal(v, s.Loc)
}

// execLabeled collects the labels of nested labeled statements so the loop or switch
// they label can recognize jumps aimed at it.
func (interp *Interpreter) execLabeled(s *ast.LabeledStatement, env *runtime.Environment, labels []string) (*runtime.Value, signal) {
	name := s.Label.Name
	labels = append(labels[:len(labels):len(labels)], name)

	var v *runtime.Value
	var sig signal
	switch body := s.Body.(type) {
	case *ast.ForStatement:
		v, sig = interp.execFor(body, env, labels)
	case *ast.ForInStatement:
		v, sig = interp.execForIn(body, env, labels)
	case *ast.ForOfStatement:
		v, sig = interp.execForOf(body, env, labels)
	case *ast.WhileStatement:
		v, sig = interp.execWhile(body, env, labels)
	case *ast.DoWhileStatement:
		v, sig = interp.execDoWhile(body, env, labels)
	case *ast.SwitchStatement:
		v, sig = interp.execSwitch(body, env, labels)
	case *ast.LabeledStatement:
		v, sig = interp.execLabeled(body, env, labels)
	default:
		v, sig = interp.evaluate(body, env)
	}
	if sig.kind == sigBreak && sig.label == name {
		return v, normal
	}
	return v, sig
}

func (interp *Interpreter) execWhile(s *ast.WhileStatement, env *runtime.Environment, labels []string) (*runtime.Value, signal) {
	var completion *runtime.Value
	for {
		test, sig := interp.evaluate(s.Test, env)
		if sig.abrupt() {
			return nil, sig
		}
		if !test.ToBoolean() {
			return completion, normal
		}
		v, sig := interp.evaluate(s.Body, env)
		if v != nil {
			completion = v
		}
		if exit, out := loopSignal(sig, labels); exit {
			return completion, out
		}
	}
}

func (interp *Interpreter) execDoWhile(s *ast.DoWhileStatement, env *runtime.Environment, labels []string) (*runtime.Value, signal) {
	var completion *runtime.Value
	for {
		v, sig := interp.evaluate(s.Body, env)
		if v != nil {
			completion = v
		}
		if exit, out := loopSignal(sig, labels); exit {
			return completion, out
		}
		test, sig := interp.evaluate(s.Test, env)
		if sig.abrupt() {
			return nil, sig
		}
		if !test.ToBoolean() {
			return completion, normal
		}
	}
}

// execFor runs a for loop. A let or const head gets its own frame, and each iteration
// runs in a fresh copy of it so closures capture that iteration's bindings.
func (interp *Interpreter) execFor(s *ast.ForStatement, env *runtime.Environment, labels []string) (*runtime.Value, signal) {
	loopEnv := env
	perIteration := false
	if decl, ok := s.Init.(*ast.VariableDeclaration); ok && decl.Kind != "var" {
		loopEnv = env.NewChild(runtime.BlockFrame)
		perIteration = true
	}
	if s.Init != nil {
		if _, sig := interp.evaluate(s.Init, loopEnv); sig.abrupt() {
			return nil, sig
		}
	}

	var completion *runtime.Value
	iterEnv := loopEnv
	if perIteration {
		iterEnv = loopEnv.Fork()
	}
	for {
		if s.Test != nil {
			test, sig := interp.evaluate(s.Test, iterEnv)
			if sig.abrupt() {
				return nil, sig
			}
			if !test.ToBoolean() {
				return completion, normal
			}
		}
		v, sig := interp.evaluate(s.Body, iterEnv)
		if v != nil {
			completion = v
		}
		if exit, out := loopSignal(sig, labels); exit {
			return completion, out
		}
		if perIteration {
			iterEnv = iterEnv.Fork()
		}
		if s.Update != nil {
			if _, sig := interp.evaluate(s.Update, iterEnv); sig.abrupt() {
				return nil, sig
			}
		}
	}
}

// bindLoopHead assigns one iteration value to the head of a for-in or for-of loop and
// returns the frame the body runs in.
func (interp *Interpreter) bindLoopHead(left ast.Node, v *runtime.Value, env *runtime.Environment) (*runtime.Environment, signal) {
	decl, ok := left.(*ast.VariableDeclaration)
	if !ok {
		target, ok := left.(ast.Expression)
		if !ok {
			return nil, unsupported(left)
		}
		ref, sig := interp.reference(target, env, "=")
		if sig.abrupt() {
			return nil, sig
		}
		return env, interp.putValue(ref, v, env, target.Span())
	}
	if len(decl.Declarations) != 1 {
		return nil, unsupported(decl)
	}
	id, ok := decl.Declarations[0].ID.(*ast.Identifier)
	if !ok {
		return nil, unsupported(decl.Declarations[0].ID)
	}
	if decl.Kind == "var" {
		if err := env.FunctionScope().Declare(id.Name, runtime.VarBinding, v); err != nil {
			return nil, interp.raise(err, decl.Loc)
		}
		return env, normal
	}
	iterEnv := env.NewChild(runtime.BlockFrame)
	if err := iterEnv.DeclareLexical(id.Name, runtime.BindingKind(decl.Kind)); err != nil {
		return nil, interp.raise(err, decl.Loc)
	}
	iterEnv.Initialize(id.Name, v)
	return iterEnv, normal
}

func (interp *Interpreter) execForIn(s *ast.ForInStatement, env *runtime.Environment, labels []string) (*runtime.Value, signal) {
	right, sig := interp.evaluate(s.Right, env)
	if sig.abrupt() {
		return nil, sig
	}
	var keys []string
	switch right.Type {
	case runtime.TypeObject:
		keys = right.Object.EnumerableKeys()
	case runtime.TypeString:
		for i := range runtime.StringUnits(right.Str) {
			keys = append(keys, strconv.Itoa(i))
		}
	}

	var completion *runtime.Value
	for _, key := range keys {
		if right.IsObject() && !right.Object.HasProperty(key) {
			continue // deleted by an earlier iteration
		}
		iterEnv, sig := interp.bindLoopHead(s.Left, runtime.NewString(key), env)
		if sig.abrupt() {
			return nil, sig
		}
		v, sig := interp.evaluate(s.Body, iterEnv)
		if v != nil {
			completion = v
		}
		if exit, out := loopSignal(sig, labels); exit {
			return completion, out
		}
	}
	return completion, normal
}

func (interp *Interpreter) execForOf(s *ast.ForOfStatement, env *runtime.Environment, labels []string) (*runtime.Value, signal) {
	right, sig := interp.evaluate(s.Right, env)
	if sig.abrupt() {
		return nil, sig
	}
	var completion *runtime.Value
	var result signal
	err := runtime.Iterate(right, func(item *runtime.Value) error {
		iterEnv, sig := interp.bindLoopHead(s.Left, item, env)
		if sig.abrupt() {
			result = sig
			return errLoopExit
		}
		v, sig := interp.evaluate(s.Body, iterEnv)
		if v != nil {
			completion = v
		}
		if exit, out := loopSignal(sig, labels); exit {
			result = out
			return errLoopExit
		}
		return nil
	})
	if err != nil && err != errLoopExit {
		return nil, interp.raise(err, s.Right.Span())
	}
	return completion, result
}

// execSwitch compares cases with strict equality and falls through until a break.
func (interp *Interpreter) execSwitch(s *ast.SwitchStatement, env *runtime.Environment, labels []string) (*runtime.Value, signal) {
	disc, sig := interp.evaluate(s.Discriminant, env)
	if sig.abrupt() {
		return nil, sig
	}
	scope := env.NewChild(runtime.BlockFrame)
	for _, c := range s.Cases {
		if sig := interp.declareBlock(c.Consequent, scope); sig.abrupt() {
			return nil, sig
		}
	}

	start := -1
	for i, c := range s.Cases {
		if c.Test == nil {
			continue
		}
		v, sig := interp.evaluate(c.Test, scope)
		if sig.abrupt() {
			return nil, sig
		}
		if runtime.StrictEquals(disc, v) {
			start = i
			break
		}
	}
	if start < 0 {
		for i, c := range s.Cases {
			if c.Test == nil {
				start = i
				break
			}
		}
	}
	if start < 0 {
		return nil, normal
	}

	var completion *runtime.Value
	for _, c := range s.Cases[start:] {
		v, sig := interp.execStatements(c.Consequent, scope)
		if v != nil {
			completion = v
		}
		if sig.kind == sigBreak && sig.targets(labels) {
			return completion, normal
		}
		if sig.abrupt() {
			return completion, sig
		}
	}
	return completion, normal
}

// execTry runs finally on every completion of the try and catch blocks, and lets an
// abrupt finally replace that completion. Faults skip both catch and finally.
func (interp *Interpreter) execTry(s *ast.TryStatement, env *runtime.Environment) (*runtime.Value, signal) {
	v, sig := interp.execBlock(s.Block, env)
	if sig.kind == sigThrow && s.Handler != nil {
		v, sig = interp.execCatch(s.Handler, sig.value, env)
	}
	if sig.kind == sigFault {
		return nil, sig
	}
	if s.Finalizer != nil {
		if _, fin := interp.execBlock(s.Finalizer, env); fin.abrupt() {
			return nil, fin
		}
	}
	return v, sig
}

func (interp *Interpreter) execCatch(c *ast.CatchClause, thrown *runtime.Value, env *runtime.Environment) (*runtime.Value, signal) {
	scope := env.NewChild(runtime.BlockFrame)
	if c.Param != nil {
		id, ok := c.Param.(*ast.Identifier)
		if !ok {
			return nil, unsupported(c.Param)
		}
		if err := scope.Declare(id.Name, runtime.LetBinding, thrown); err != nil {
			return nil, interp.raise(err, c.Loc)
		}
	}
	if sig := interp.declareBlock(c.Body.Body, scope); sig.abrupt() {
		return nil, sig
	}
	return interp.execStatements(c.Body.Body, scope)
}
