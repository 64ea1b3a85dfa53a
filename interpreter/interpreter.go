package interpreter

import (
	"io"
	"os"
	"sort"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/example/jseval/ast"
	"github.com/example/jseval/builtins"
	"github.com/example/jseval/parser"
	"github.com/example/jseval/runtime"
	"github.com/example/jseval/util/contract"
)

// DefaultMaxCallDepth bounds nested calls when Options leaves MaxCallDepth at zero.
const DefaultMaxCallDepth = 4000

type Options struct {
	TDZ          runtime.TDZMode
	MaxCallDepth int
	Stdout       io.Writer
	Stderr       io.Writer
}

// Interpreter evaluates syntax trees by walking them. Each interpreter owns its realm
// and global frame; it is not safe for concurrent use, but separate interpreters may
// run on separate goroutines.
type Interpreter struct {
	opts    Options
	realm   *runtime.Realm
	global  *runtime.Environment
	session *runtime.Environment
	calls   []*callContext
}

func New(opts Options) *Interpreter {
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	realm := runtime.NewRealm()
	global := runtime.NewGlobalEnvironment(opts.TDZ)
	global.BindReceiver(runtime.Undefined, runtime.Undefined)
	builtins.Install(realm, global, builtins.Options{Stdout: opts.Stdout, Stderr: opts.Stderr})
	return &Interpreter{opts: opts, realm: realm, global: global}
}

func (interp *Interpreter) Realm() *runtime.Realm { return interp.realm }

// Global returns the frame holding the built-in bindings. Programs run in child frames
// of it.
func (interp *Interpreter) Global() *runtime.Environment { return interp.global }

// Evaluate runs node in env and returns its value. A nil env means a fresh program
// frame. Uncaught throws come back as *Exception, unsupported nodes as
// *UnsupportedNodeError.
func (interp *Interpreter) Evaluate(node ast.Node, env *runtime.Environment) (*runtime.Value, error) {
	if env == nil {
		env = interp.global.NewChild(runtime.ProgramFrame)
	}
	v, sig := interp.evaluate(node, env)
	return interp.complete(v, sig)
}

// complete converts the final completion of a top-level evaluation. Jumps that nothing
// consumed mean the evaluator itself is broken.
func (interp *Interpreter) complete(v *runtime.Value, sig signal) (*runtime.Value, error) {
	switch sig.kind {
	case sigNone:
		if v == nil {
			v = runtime.Undefined
		}
		return v, nil
	case sigThrow:
		return nil, interp.exception(sig)
	case sigFault:
		return nil, sig.err
	}
	contract.Failf("%v signal escaped to the top level at %v", sig.kind, sig.span)
	return nil, nil
}

// Run executes program as a module: module and exports are seeded next to the initial
// bindings, this is module.exports, and the final module.exports is returned.
func (interp *Interpreter) Run(program *ast.Program, initial map[string]*runtime.Value) (*runtime.Value, error) {
	contract.Require(program != nil, "program")

	env := interp.global.NewChild(runtime.ProgramFrame)
	exports := runtime.NewObject(interp.realm.NewObject())
	module := interp.realm.NewObject()
	module.SetHidden("exports", exports)
	contract.Assert(env.Declare("module", runtime.VarBinding, runtime.NewObject(module)) == nil)
	contract.Assert(env.Declare("exports", runtime.VarBinding, exports) == nil)

	names := make([]string, 0, len(initial))
	for name := range initial {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := env.Declare(name, runtime.VarBinding, initial[name]); err != nil {
			return nil, err
		}
	}
	env.BindReceiver(exports, runtime.Undefined)

	glog.V(5).Infof("Running program: %d statements, %d initial bindings", len(program.Body), len(initial))
	if _, err := interp.complete(interp.execProgram(program, env)); err != nil {
		glog.V(5).Infof("Program failed: %v", err)
		return nil, err
	}
	return module.Get("exports")
}

// RunSource parses source and runs it as a module.
func (interp *Interpreter) RunSource(source string, initial map[string]*runtime.Value) (*runtime.Value, error) {
	program, err := parser.ParseProgram(source)
	if err != nil {
		return nil, err
	}
	return interp.Run(program, initial)
}

// RunFile reads, parses and runs the script at path as a module.
func (interp *Interpreter) RunFile(path string, initial map[string]*runtime.Value) (*runtime.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	program, err := parser.ParseProgram(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return interp.Run(program, initial)
}

// Eval runs source in a frame that persists across calls, as a REPL needs, and returns
// the value of the last statement that produced one.
func (interp *Interpreter) Eval(source string) (*runtime.Value, error) {
	program, err := parser.ParseProgram(source)
	if err != nil {
		return nil, err
	}
	if interp.session == nil {
		interp.session = interp.global.NewChild(runtime.ProgramFrame)
	}
	return interp.complete(interp.execProgram(program, interp.session))
}

func (interp *Interpreter) execProgram(program *ast.Program, env *runtime.Environment) (*runtime.Value, signal) {
	interp.hoistDeclarations(program.Body, env)
	if sig := interp.declareBlock(program.Body, env); sig.abrupt() {
		return nil, sig
	}
	return interp.execStatements(program.Body, env)
}

// evaluate is the dispatcher: one case per node type. Statements return a nil value
// when they produce no completion value.
func (interp *Interpreter) evaluate(node ast.Node, env *runtime.Environment) (*runtime.Value, signal) {
	if glog.V(9) {
		glog.Infof("eval %s at %v", node.Type(), node.Span())
	}

	switch n := node.(type) {
	// Statements
	case *ast.Program:
		return interp.execProgram(n, env)
	case *ast.ExpressionStatement:
		return interp.evaluate(n.Expression, env)
	case *ast.BlockStatement:
		return interp.execBlock(n, env)
	case *ast.EmptyStatement:
		return nil, normal
	case *ast.VariableDeclaration:
		return nil, interp.execVariableDeclaration(n, env)
	case *ast.FunctionDeclaration:
		return nil, interp.execFunctionDeclaration(n, env)
	case *ast.ReturnStatement:
		return interp.execReturn(n, env)
	case *ast.IfStatement:
		return interp.execIf(n, env)
	case *ast.ForStatement:
		return interp.execFor(n, env, nil)
	case *ast.ForInStatement:
		return interp.execForIn(n, env, nil)
	case *ast.ForOfStatement:
		return interp.execForOf(n, env, nil)
	case *ast.WhileStatement:
		return interp.execWhile(n, env, nil)
	case *ast.DoWhileStatement:
		return interp.execDoWhile(n, env, nil)
	case *ast.BreakStatement:
		return nil, signal{kind: sigBreak, label: labelName(n.Label), span: n.Loc}
	case *ast.ContinueStatement:
		return nil, signal{kind: sigContinue, label: labelName(n.Label), span: n.Loc}
	case *ast.LabeledStatement:
		return interp.execLabeled(n, env, nil)
	case *ast.SwitchStatement:
		return interp.execSwitch(n, env, nil)
	case *ast.ThrowStatement:
		return interp.execThrow(n, env)
	case *ast.TryStatement:
		return interp.execTry(n, env)

	// Expressions
	case *ast.Identifier:
		v, err := env.Lookup(n.Name)
		if err != nil {
			return nil, interp.raise(err, n.Loc)
		}
		return v, normal
	case *ast.Literal:
		return literalValue(n), normal
	case *ast.ThisExpression:
		return env.Receiver().This, normal
	case *ast.MetaProperty:
		return env.Receiver().NewTarget, normal
	case *ast.ArrayExpression:
		return interp.evalArray(n, env)
	case *ast.ObjectExpression:
		return interp.evalObject(n, env)
	case *ast.FunctionExpression:
		return interp.evalFunctionExpression(n, "", env), normal
	case *ast.ArrowFunctionExpression:
		return runtime.NewObject(interp.makeFunction(n.Function, "", env, true)), normal
	case *ast.UnaryExpression:
		return interp.evalUnary(n, env)
	case *ast.UpdateExpression:
		return interp.evalUpdate(n, env)
	case *ast.BinaryExpression:
		return interp.evalBinary(n, env)
	case *ast.LogicalExpression:
		return interp.evalLogical(n, env)
	case *ast.AssignmentExpression:
		return interp.evalAssignment(n, env)
	case *ast.ConditionalExpression:
		test, sig := interp.evaluate(n.Test, env)
		if sig.abrupt() {
			return nil, sig
		}
		if test.ToBoolean() {
			return interp.evaluate(n.Consequent, env)
		}
		return interp.evaluate(n.Alternate, env)
	case *ast.CallExpression:
		return interp.evalCall(n, env)
	case *ast.NewExpression:
		return interp.evalNew(n, env)
	case *ast.MemberExpression:
		return interp.evalMember(n, env)
	case *ast.SequenceExpression:
		var v *runtime.Value
		for _, e := range n.Expressions {
			var sig signal
			if v, sig = interp.evaluate(e, env); sig.abrupt() {
				return nil, sig
			}
		}
		return v, normal
	case *ast.YieldExpression:
		return interp.evalYield(n, env)
	case *ast.AwaitExpression:
		return interp.evalAwait(n, env)

	// Nodes that only appear inside a parent which handles them, and node types the
	// evaluator does not implement.
	case *ast.VariableDeclarator, *ast.SwitchCase, *ast.CatchClause, *ast.Property,
		*ast.SpreadElement, *ast.AssignmentPattern, *ast.RestElement, *ast.Unsupported:
		return nil, unsupported(node)
	}
	return nil, unsupported(node)
}

func literalValue(l *ast.Literal) *runtime.Value {
	switch l.Kind {
	case ast.BooleanLiteral:
		return runtime.NewBool(l.Bool)
	case ast.NumberLiteral:
		return runtime.NewNumber(l.Number)
	case ast.StringLiteral:
		return runtime.NewString(l.String)
	}
	return runtime.Null
}

func labelName(id *ast.Identifier) string {
	if id == nil {
		return ""
	}
	return id.Name
}
