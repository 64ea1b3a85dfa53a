package interpreter

import (
	"github.com/golang/glog"

	"github.com/example/jseval/ast"
	"github.com/example/jseval/runtime"
)

// hoistDeclarations declares every var in body as undefined in the nearest function or
// program frame before the body runs. Function declarations inside nested blocks are
// hoisted the same way unless body declares the name with let or const. Nested
// functions are not searched.
func (interp *Interpreter) hoistDeclarations(body []ast.Statement, env *runtime.Environment) {
	var d declared
	for _, stmt := range body {
		d.collect(stmt, false)
	}
	lexical := lexicalNames(body)
	names := d.vars
	for _, name := range d.funcs {
		if !lexical[name] {
			names = append(names, name)
		}
	}
	for _, name := range names {
		env.Hoist(name)
	}
	if len(names) > 0 {
		glog.V(7).Infof("Hoisted %d names into %v frame", len(names), env.FunctionScope().Kind())
	}
}

// declared collects the names a statement declares in its function frame.
type declared struct {
	vars []string
	// funcs holds function declarations found inside nested blocks.
	funcs []string
}

func (d *declared) collect(stmt ast.Statement, nested bool) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		if s.Kind == "var" {
			d.vars = appendDeclared(s, d.vars)
		}
	case *ast.FunctionDeclaration:
		if nested && s.Function.ID != nil {
			d.funcs = append(d.funcs, s.Function.ID.Name)
		}
	case *ast.BlockStatement:
		for _, inner := range s.Body {
			d.collect(inner, true)
		}
	case *ast.IfStatement:
		d.collect(s.Consequent, true)
		if s.Alternate != nil {
			d.collect(s.Alternate, true)
		}
	case *ast.ForStatement:
		if decl, ok := s.Init.(*ast.VariableDeclaration); ok {
			d.collect(decl, true)
		}
		d.collect(s.Body, true)
	case *ast.ForInStatement:
		if decl, ok := s.Left.(*ast.VariableDeclaration); ok {
			d.collect(decl, true)
		}
		d.collect(s.Body, true)
	case *ast.ForOfStatement:
		if decl, ok := s.Left.(*ast.VariableDeclaration); ok {
			d.collect(decl, true)
		}
		d.collect(s.Body, true)
	case *ast.WhileStatement:
		d.collect(s.Body, true)
	case *ast.DoWhileStatement:
		d.collect(s.Body, true)
	case *ast.LabeledStatement:
		d.collect(s.Body, nested)
	case *ast.SwitchStatement:
		for _, c := range s.Cases {
			for _, inner := range c.Consequent {
				d.collect(inner, true)
			}
		}
	case *ast.TryStatement:
		d.collect(s.Block, true)
		if s.Handler != nil {
			d.collect(s.Handler.Body, true)
		}
		if s.Finalizer != nil {
			d.collect(s.Finalizer, true)
		}
	}
}

// lexicalNames returns the let and const names declared directly in body.
func lexicalNames(body []ast.Statement) map[string]bool {
	names := map[string]bool{}
	for _, stmt := range body {
		if decl, ok := stmt.(*ast.VariableDeclaration); ok && decl.Kind != "var" {
			for _, name := range appendDeclared(decl, nil) {
				names[name] = true
			}
		}
	}
	return names
}

func appendDeclared(decl *ast.VariableDeclaration, names []string) []string {
	for _, d := range decl.Declarations {
		if id, ok := d.ID.(*ast.Identifier); ok {
			names = append(names, id.Name)
		}
	}
	return names
}

// declareBlock prepares the frame of one statement list: let and const names enter
// their dead zone, and function declarations are instantiated so they can be called
// before the statement that declares them.
func (interp *Interpreter) declareBlock(body []ast.Statement, env *runtime.Environment) signal {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.VariableDeclaration:
			if s.Kind == "var" {
				continue
			}
			for _, d := range s.Declarations {
				id, ok := d.ID.(*ast.Identifier)
				if !ok {
					return unsupported(d.ID)
				}
				if err := env.DeclareLexical(id.Name, runtime.BindingKind(s.Kind)); err != nil {
					return interp.raise(err, d.Loc)
				}
			}
		case *ast.FunctionDeclaration:
			if sig := interp.instantiateFunction(s, env); sig.abrupt() {
				return sig
			}
		}
	}
	if env.Kind() == runtime.BlockFrame {
		return interp.checkVarConflicts(body)
	}
	return normal
}

// checkVarConflicts rejects a var anywhere inside a block that reuses a let or const
// name of that block. The var itself lives in the function frame, so Declare cannot
// see the clash.
func (interp *Interpreter) checkVarConflicts(body []ast.Statement) signal {
	lexical := lexicalNames(body)
	if len(lexical) == 0 {
		return normal
	}
	for _, stmt := range body {
		var d declared
		d.collect(stmt, false)
		for _, name := range d.vars {
			if lexical[name] {
				return interp.throwf(stmt.Span(), runtime.SyntaxError, "Identifier '%s' has already been declared", name)
			}
		}
	}
	return normal
}

func (interp *Interpreter) instantiateFunction(s *ast.FunctionDeclaration, env *runtime.Environment) signal {
	if s.Function.ID == nil {
		return unsupported(s)
	}
	name := s.Function.ID.Name
	fn := runtime.NewObject(interp.makeFunction(s.Function, name, env, false))
	if err := env.Declare(name, runtime.VarBinding, fn); err != nil {
		return interp.raise(err, s.Loc)
	}
	// A function declared in a block is also visible in the enclosing function once
	// the block is entered.
	if env.Kind() == runtime.BlockFrame {
		env.FunctionScope().SetVar(name, fn)
	}
	return normal
}

// execFunctionDeclaration is reached after declareBlock already bound the function, so
// it only declares functions evaluated outside a statement list.
func (interp *Interpreter) execFunctionDeclaration(s *ast.FunctionDeclaration, env *runtime.Environment) signal {
	if s.Function.ID != nil && env.HasOwn(s.Function.ID.Name) {
		return normal
	}
	return interp.instantiateFunction(s, env)
}
