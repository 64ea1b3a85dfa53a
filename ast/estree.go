package ast

import (
	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
)

// DecodeESTree builds a Program from ESTree JSON, the format emitted by acorn, espree and
// most other JavaScript parsers. Node types this package does not model are kept as
// *Unsupported so that evaluation, not decoding, decides whether they matter.
func DecodeESTree(data []byte) (*Program, error) {
	var d decoder
	n, err := d.node(data)
	if err != nil {
		return nil, err
	}
	prog, ok := n.(*Program)
	if !ok {
		return nil, errors.Errorf("estree: top-level node is %s, not Program", n.Type())
	}
	return prog, nil
}

type decoder struct{}

func (d *decoder) node(data []byte) (Node, error) {
	typ, err := jsonparser.GetString(data, "type")
	if err != nil {
		return nil, errors.Wrap(err, "estree: node has no type")
	}
	loc := d.span(data)

	switch typ {
	case "Program":
		body, err := d.statements(data, "body")
		if err != nil {
			return nil, err
		}
		return &Program{Loc: loc, Body: body}, nil
	case "ExpressionStatement":
		e, err := d.expr(data, "expression")
		if err != nil {
			return nil, err
		}
		return &ExpressionStatement{Loc: loc, Expression: e}, nil
	case "BlockStatement":
		return d.block(data)
	case "EmptyStatement":
		return &EmptyStatement{Loc: loc}, nil
	case "VariableDeclaration":
		return d.varDecl(data)
	case "FunctionDeclaration":
		fn, err := d.function(data)
		if err != nil {
			return nil, err
		}
		return &FunctionDeclaration{Loc: loc, Function: fn}, nil
	case "ReturnStatement":
		arg, err := d.expr(data, "argument")
		if err != nil {
			return nil, err
		}
		return &ReturnStatement{Loc: loc, Argument: arg}, nil
	case "IfStatement":
		s := &IfStatement{Loc: loc}
		if s.Test, err = d.expr(data, "test"); err != nil {
			return nil, err
		}
		if s.Consequent, err = d.stmt(data, "consequent"); err != nil {
			return nil, err
		}
		if s.Alternate, err = d.stmt(data, "alternate"); err != nil {
			return nil, err
		}
		return s, nil
	case "ForStatement":
		s := &ForStatement{Loc: loc}
		if s.Init, err = d.child(data, "init"); err != nil {
			return nil, err
		}
		if s.Test, err = d.expr(data, "test"); err != nil {
			return nil, err
		}
		if s.Update, err = d.expr(data, "update"); err != nil {
			return nil, err
		}
		if s.Body, err = d.stmt(data, "body"); err != nil {
			return nil, err
		}
		return s, nil
	case "ForInStatement", "ForOfStatement":
		left, err := d.child(data, "left")
		if err != nil {
			return nil, err
		}
		right, err := d.expr(data, "right")
		if err != nil {
			return nil, err
		}
		body, err := d.stmt(data, "body")
		if err != nil {
			return nil, err
		}
		if typ == "ForInStatement" {
			return &ForInStatement{Loc: loc, Left: left, Right: right, Body: body}, nil
		}
		return &ForOfStatement{Loc: loc, Left: left, Right: right, Body: body}, nil
	case "WhileStatement", "DoWhileStatement":
		test, err := d.expr(data, "test")
		if err != nil {
			return nil, err
		}
		body, err := d.stmt(data, "body")
		if err != nil {
			return nil, err
		}
		if typ == "WhileStatement" {
			return &WhileStatement{Loc: loc, Test: test, Body: body}, nil
		}
		return &DoWhileStatement{Loc: loc, Test: test, Body: body}, nil
	case "BreakStatement":
		label, err := d.ident(data, "label")
		if err != nil {
			return nil, err
		}
		return &BreakStatement{Loc: loc, Label: label}, nil
	case "ContinueStatement":
		label, err := d.ident(data, "label")
		if err != nil {
			return nil, err
		}
		return &ContinueStatement{Loc: loc, Label: label}, nil
	case "LabeledStatement":
		label, err := d.ident(data, "label")
		if err != nil {
			return nil, err
		}
		body, err := d.stmt(data, "body")
		if err != nil {
			return nil, err
		}
		return &LabeledStatement{Loc: loc, Label: label, Body: body}, nil
	case "SwitchStatement":
		return d.switchStmt(data)
	case "ThrowStatement":
		arg, err := d.expr(data, "argument")
		if err != nil {
			return nil, err
		}
		return &ThrowStatement{Loc: loc, Argument: arg}, nil
	case "TryStatement":
		return d.tryStmt(data)

	case "Identifier":
		name, _ := jsonparser.GetString(data, "name")
		return &Identifier{Loc: loc, Name: name}, nil
	case "Literal":
		return d.literal(data)
	case "ThisExpression":
		return &ThisExpression{Loc: loc}, nil
	case "ArrayExpression":
		elems, err := d.expressions(data, "elements")
		if err != nil {
			return nil, err
		}
		return &ArrayExpression{Loc: loc, Elements: elems}, nil
	case "ObjectExpression":
		return d.object(data)
	case "FunctionExpression":
		fn, err := d.function(data)
		if err != nil {
			return nil, err
		}
		return &FunctionExpression{Loc: loc, Function: fn}, nil
	case "ArrowFunctionExpression":
		fn, err := d.function(data)
		if err != nil {
			return nil, err
		}
		return &ArrowFunctionExpression{Loc: loc, Function: fn}, nil
	case "UnaryExpression":
		arg, err := d.expr(data, "argument")
		if err != nil {
			return nil, err
		}
		return &UnaryExpression{Loc: loc, Operator: d.str(data, "operator"), Argument: arg}, nil
	case "UpdateExpression":
		arg, err := d.expr(data, "argument")
		if err != nil {
			return nil, err
		}
		return &UpdateExpression{
			Loc: loc, Operator: d.str(data, "operator"), Prefix: d.boolean(data, "prefix"), Argument: arg,
		}, nil
	case "BinaryExpression", "LogicalExpression", "AssignmentExpression":
		left, err := d.expr(data, "left")
		if err != nil {
			return nil, err
		}
		right, err := d.expr(data, "right")
		if err != nil {
			return nil, err
		}
		op := d.str(data, "operator")
		switch typ {
		case "BinaryExpression":
			return &BinaryExpression{Loc: loc, Operator: op, Left: left, Right: right}, nil
		case "LogicalExpression":
			return &LogicalExpression{Loc: loc, Operator: op, Left: left, Right: right}, nil
		}
		return &AssignmentExpression{Loc: loc, Operator: op, Left: left, Right: right}, nil
	case "ConditionalExpression":
		e := &ConditionalExpression{Loc: loc}
		if e.Test, err = d.expr(data, "test"); err != nil {
			return nil, err
		}
		if e.Consequent, err = d.expr(data, "consequent"); err != nil {
			return nil, err
		}
		if e.Alternate, err = d.expr(data, "alternate"); err != nil {
			return nil, err
		}
		return e, nil
	case "CallExpression", "NewExpression":
		callee, err := d.expr(data, "callee")
		if err != nil {
			return nil, err
		}
		args, err := d.expressions(data, "arguments")
		if err != nil {
			return nil, err
		}
		if typ == "CallExpression" {
			return &CallExpression{Loc: loc, Callee: callee, Arguments: args}, nil
		}
		return &NewExpression{Loc: loc, Callee: callee, Arguments: args}, nil
	case "MemberExpression":
		obj, err := d.expr(data, "object")
		if err != nil {
			return nil, err
		}
		prop, err := d.expr(data, "property")
		if err != nil {
			return nil, err
		}
		return &MemberExpression{Loc: loc, Object: obj, Property: prop, Computed: d.boolean(data, "computed")}, nil
	case "SequenceExpression":
		exprs, err := d.expressions(data, "expressions")
		if err != nil {
			return nil, err
		}
		return &SequenceExpression{Loc: loc, Expressions: exprs}, nil
	case "MetaProperty":
		meta, err := d.ident(data, "meta")
		if err != nil {
			return nil, err
		}
		prop, err := d.ident(data, "property")
		if err != nil {
			return nil, err
		}
		return &MetaProperty{Loc: loc, Meta: meta, Property: prop}, nil
	case "YieldExpression":
		arg, err := d.expr(data, "argument")
		if err != nil {
			return nil, err
		}
		return &YieldExpression{Loc: loc, Argument: arg, Delegate: d.boolean(data, "delegate")}, nil
	case "AwaitExpression":
		arg, err := d.expr(data, "argument")
		if err != nil {
			return nil, err
		}
		return &AwaitExpression{Loc: loc, Argument: arg}, nil
	case "SpreadElement":
		arg, err := d.expr(data, "argument")
		if err != nil {
			return nil, err
		}
		return &SpreadElement{Loc: loc, Argument: arg}, nil
	case "AssignmentPattern":
		left, err := d.child(data, "left")
		if err != nil {
			return nil, err
		}
		right, err := d.expr(data, "right")
		if err != nil {
			return nil, err
		}
		return &AssignmentPattern{Loc: loc, Left: left, Right: right}, nil
	case "RestElement":
		arg, err := d.child(data, "argument")
		if err != nil {
			return nil, err
		}
		return &RestElement{Loc: loc, Argument: arg}, nil
	default:
		return &Unsupported{Loc: loc, TypeName: typ}, nil
	}
}

func (d *decoder) block(data []byte) (*BlockStatement, error) {
	body, err := d.statements(data, "body")
	if err != nil {
		return nil, err
	}
	return &BlockStatement{Loc: d.span(data), Body: body}, nil
}

func (d *decoder) varDecl(data []byte) (*VariableDeclaration, error) {
	decl := &VariableDeclaration{Loc: d.span(data), Kind: d.str(data, "kind")}
	err := d.each(data, "declarations", func(item []byte) error {
		id, err := d.child(item, "id")
		if err != nil {
			return err
		}
		init, err := d.expr(item, "init")
		if err != nil {
			return err
		}
		decl.Declarations = append(decl.Declarations, &VariableDeclarator{Loc: d.span(item), ID: id, Init: init})
		return nil
	})
	return decl, err
}

func (d *decoder) function(data []byte) (*Function, error) {
	fn := &Function{
		Generator:  d.boolean(data, "generator"),
		Async:      d.boolean(data, "async"),
		Expression: d.boolean(data, "expression"),
	}
	var err error
	if fn.ID, err = d.ident(data, "id"); err != nil {
		return nil, err
	}
	if fn.Params, err = d.list(data, "params"); err != nil {
		return nil, err
	}
	if fn.Body, err = d.child(data, "body"); err != nil {
		return nil, err
	}
	if fn.Body == nil {
		return nil, errors.Errorf("estree: function at %s has no body", d.span(data))
	}
	return fn, nil
}

func (d *decoder) object(data []byte) (*ObjectExpression, error) {
	obj := &ObjectExpression{Loc: d.span(data)}
	err := d.each(data, "properties", func(item []byte) error {
		if typ, _ := jsonparser.GetString(item, "type"); typ != "Property" {
			return errors.Errorf("estree: %s inside object literal is not supported", typ)
		}
		key, err := d.expr(item, "key")
		if err != nil {
			return err
		}
		value, err := d.expr(item, "value")
		if err != nil {
			return err
		}
		kind := d.str(item, "kind")
		if kind == "" {
			kind = "init"
		}
		obj.Properties = append(obj.Properties, &Property{
			Loc:       d.span(item),
			Key:       key,
			Value:     value,
			Kind:      kind,
			Computed:  d.boolean(item, "computed"),
			Shorthand: d.boolean(item, "shorthand"),
			Method:    d.boolean(item, "method"),
		})
		return nil
	})
	return obj, err
}

func (d *decoder) switchStmt(data []byte) (*SwitchStatement, error) {
	disc, err := d.expr(data, "discriminant")
	if err != nil {
		return nil, err
	}
	s := &SwitchStatement{Loc: d.span(data), Discriminant: disc}
	err = d.each(data, "cases", func(item []byte) error {
		test, err := d.expr(item, "test")
		if err != nil {
			return err
		}
		body, err := d.statements(item, "consequent")
		if err != nil {
			return err
		}
		s.Cases = append(s.Cases, &SwitchCase{Loc: d.span(item), Test: test, Consequent: body})
		return nil
	})
	return s, err
}

func (d *decoder) tryStmt(data []byte) (*TryStatement, error) {
	s := &TryStatement{Loc: d.span(data)}
	raw, typ, _, _ := jsonparser.Get(data, "block")
	if typ != jsonparser.Object {
		return nil, errors.Errorf("estree: try statement at %s has no block", s.Loc)
	}
	var err error
	if s.Block, err = d.block(raw); err != nil {
		return nil, err
	}
	if raw, typ, _, _ = jsonparser.Get(data, "handler"); typ == jsonparser.Object {
		param, err := d.child(raw, "param")
		if err != nil {
			return nil, err
		}
		bodyRaw, _, _, err := jsonparser.Get(raw, "body")
		if err != nil {
			return nil, errors.Wrap(err, "estree: catch clause has no body")
		}
		body, err := d.block(bodyRaw)
		if err != nil {
			return nil, err
		}
		s.Handler = &CatchClause{Loc: d.span(raw), Param: param, Body: body}
	}
	if raw, typ, _, _ = jsonparser.Get(data, "finalizer"); typ == jsonparser.Object {
		if s.Finalizer, err = d.block(raw); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (d *decoder) literal(data []byte) (Node, error) {
	lit := &Literal{Loc: d.span(data), Raw: d.str(data, "raw")}
	if _, typ, _, _ := jsonparser.Get(data, "regex"); typ == jsonparser.Object {
		return &Unsupported{Loc: lit.Loc, TypeName: "RegExpLiteral"}, nil
	}
	if _, typ, _, _ := jsonparser.Get(data, "bigint"); typ == jsonparser.String {
		return &Unsupported{Loc: lit.Loc, TypeName: "BigIntLiteral"}, nil
	}
	raw, typ, _, err := jsonparser.Get(data, "value")
	if err != nil && typ != jsonparser.NotExist {
		return nil, errors.Wrap(err, "estree: bad literal value")
	}
	switch typ {
	case jsonparser.String:
		lit.Kind = StringLiteral
		if lit.String, err = jsonparser.ParseString(raw); err != nil {
			return nil, errors.Wrap(err, "estree: bad string literal")
		}
	case jsonparser.Number:
		lit.Kind = NumberLiteral
		if lit.Number, err = jsonparser.ParseFloat(raw); err != nil {
			return nil, errors.Wrap(err, "estree: bad number literal")
		}
	case jsonparser.Boolean:
		lit.Kind = BooleanLiteral
		if lit.Bool, err = jsonparser.ParseBoolean(raw); err != nil {
			return nil, errors.Wrap(err, "estree: bad boolean literal")
		}
	default:
		lit.Kind = NullLiteral
	}
	return lit, nil
}

// child decodes the object under key, returning nil when it is absent or null.
func (d *decoder) child(data []byte, key string) (Node, error) {
	raw, typ, _, err := jsonparser.Get(data, key)
	if typ == jsonparser.NotExist || typ == jsonparser.Null {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "estree: reading %q", key)
	}
	if typ != jsonparser.Object {
		return nil, errors.Errorf("estree: %q is not a node", key)
	}
	return d.node(raw)
}

func (d *decoder) expr(data []byte, key string) (Expression, error) {
	n, err := d.child(data, key)
	if err != nil || n == nil {
		return nil, err
	}
	e, ok := n.(Expression)
	if !ok {
		return nil, errors.Errorf("estree: %s at %s is not an expression", n.Type(), n.Span())
	}
	return e, nil
}

func (d *decoder) stmt(data []byte, key string) (Statement, error) {
	n, err := d.child(data, key)
	if err != nil || n == nil {
		return nil, err
	}
	s, ok := n.(Statement)
	if !ok {
		return nil, errors.Errorf("estree: %s at %s is not a statement", n.Type(), n.Span())
	}
	return s, nil
}

func (d *decoder) ident(data []byte, key string) (*Identifier, error) {
	n, err := d.child(data, key)
	if err != nil || n == nil {
		return nil, err
	}
	id, ok := n.(*Identifier)
	if !ok {
		return nil, errors.Errorf("estree: %s at %s is not an identifier", n.Type(), n.Span())
	}
	return id, nil
}

// list decodes an array of nodes; null entries (array holes) stay nil.
func (d *decoder) list(data []byte, key string) ([]Node, error) {
	var out []Node
	var firstErr error
	_, typ, _, _ := jsonparser.Get(data, key)
	if typ != jsonparser.Array {
		return nil, nil
	}
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = err
			return
		}
		if dataType == jsonparser.Null {
			out = append(out, nil)
			return
		}
		n, err := d.node(value)
		if err != nil {
			firstErr = err
			return
		}
		out = append(out, n)
	}, key)
	if firstErr != nil {
		return nil, firstErr
	}
	return out, errors.Wrapf(err, "estree: reading %q", key)
}

func (d *decoder) each(data []byte, key string, fn func(item []byte) error) error {
	var firstErr error
	_, typ, _, _ := jsonparser.Get(data, key)
	if typ != jsonparser.Array {
		return nil
	}
	_, err := jsonparser.ArrayEach(data, func(value []byte, _ jsonparser.ValueType, _ int, err error) {
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = err
			return
		}
		firstErr = fn(value)
	}, key)
	if firstErr != nil {
		return firstErr
	}
	return errors.Wrapf(err, "estree: reading %q", key)
}

func (d *decoder) statements(data []byte, key string) ([]Statement, error) {
	nodes, err := d.list(data, key)
	if err != nil {
		return nil, err
	}
	out := make([]Statement, 0, len(nodes))
	for _, n := range nodes {
		s, ok := n.(Statement)
		if !ok {
			return nil, errors.Errorf("estree: %q holds a non-statement", key)
		}
		out = append(out, s)
	}
	return out, nil
}

func (d *decoder) expressions(data []byte, key string) ([]Expression, error) {
	nodes, err := d.list(data, key)
	if err != nil {
		return nil, err
	}
	out := make([]Expression, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			out = append(out, nil)
			continue
		}
		e, ok := n.(Expression)
		if !ok {
			return nil, errors.Errorf("estree: %s at %s is not an expression", n.Type(), n.Span())
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *decoder) str(data []byte, key string) string {
	s, _ := jsonparser.GetString(data, key)
	return s
}

func (d *decoder) boolean(data []byte, key string) bool {
	b, _ := jsonparser.GetBoolean(data, key)
	return b
}

// span reads acorn's "loc" (0-based columns) when present and the "start"/"end" offsets.
func (d *decoder) span(data []byte) Span {
	var s Span
	if v, err := jsonparser.GetInt(data, "start"); err == nil {
		s.Start.Offset = int(v)
	}
	if v, err := jsonparser.GetInt(data, "end"); err == nil {
		s.End.Offset = int(v)
	}
	if v, err := jsonparser.GetInt(data, "loc", "start", "line"); err == nil {
		s.Start.Line = int(v)
	}
	if v, err := jsonparser.GetInt(data, "loc", "start", "column"); err == nil {
		s.Start.Column = int(v) + 1
	}
	if v, err := jsonparser.GetInt(data, "loc", "end", "line"); err == nil {
		s.End.Line = int(v)
	}
	if v, err := jsonparser.GetInt(data, "loc", "end", "column"); err == nil {
		s.End.Column = int(v) + 1
	}
	return s
}
