package parser

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/example/jseval/ast"
	"github.com/example/jseval/lexer"
	"github.com/example/jseval/token"
)

// maxErrors bounds how many syntax errors are collected before parsing gives up.
const maxErrors = 10

// Binary operator precedence; higher binds tighter. Zero means "not a binary operator".
var binaryPrecedence = map[string]int{
	"??":         1,
	"||":         2,
	"&&":         3,
	"|":          4,
	"^":          5,
	"&":          6,
	"==":         7,
	"!=":         7,
	"===":        7,
	"!==":        7,
	"<":          8,
	">":          8,
	"<=":         8,
	">=":         8,
	"instanceof": 8,
	"in":         8,
	"<<":         9,
	">>":         9,
	">>>":        9,
	"+":          10,
	"-":          10,
	"*":          11,
	"/":          11,
	"%":          11,
	"**":         12,
}

var assignmentOperators = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true, "**=": true,
	"<<=": true, ">>=": true, ">>>=": true, "&=": true, "|=": true, "^=": true,
	"&&=": true, "||=": true, "??=": true,
}

// Error is a single syntax error.
type Error struct {
	Pos ast.Pos
	Msg string
	// AtEOF is set when the error was caused by running out of input.
	AtEOF bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// IsIncomplete reports whether err only says that the input ended too early, which is
// how a REPL decides to keep reading lines.
func IsIncomplete(err error) bool {
	merr, ok := err.(*multierror.Error)
	if !ok || len(merr.Errors) == 0 {
		return false
	}
	for _, e := range merr.Errors {
		if pe, ok := e.(*Error); !ok || !pe.AtEOF {
			return false
		}
	}
	return true
}

// bailout aborts parsing once it can no longer make sense of the input.
type bailout struct{}

// funcContext is the state that resets at every function boundary.
type funcContext struct {
	inFunction bool
	generator  bool
	async      bool
	loopDepth  int
	breakable  int // loops plus switches
	labels     []string
}

type Parser struct {
	l       *lexer.Lexer
	cur     token.Token
	peek    token.Token
	prevEnd token.Pos
	errors  *multierror.Error
	nerrors int
	noIn    bool // suppress 'in' as binary operator (for-in disambiguation)
	fn      funcContext
}

func New(source string) *Parser {
	p := &Parser{l: lexer.New(source)}
	p.cur = p.l.NextToken()
	p.peek = p.l.NextToken()
	return p
}

// ParseProgram parses source as a script. All syntax errors are returned together in
// a *multierror.Error whose entries are *Error.
func ParseProgram(source string) (*ast.Program, error) {
	return New(source).ParseProgram()
}

func (p *Parser) ParseProgram() (prog *ast.Program, err error) {
	prog = &ast.Program{}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
		}
		prog.Loc = ast.Span{Start: ast.Pos{Offset: 0, Line: 1, Column: 1}, End: ast.Pos(p.cur.End)}
		err = p.errors.ErrorOrNil()
	}()
	p.checkIllegal()
	prog.Body = p.parseStatementList(false)
	return prog, nil
}

// ---------- token plumbing ----------

func (p *Parser) next() {
	p.prevEnd = p.cur.End
	p.cur = p.peek
	p.peek = p.l.NextToken()
	p.checkIllegal()
}

func (p *Parser) checkIllegal() {
	if p.cur.Type == token.Illegal {
		p.errorAt(p.cur.Pos, "%s", p.cur.Literal)
		panic(bailout{})
	}
}

func (p *Parser) is(lit string) bool {
	return p.cur.Is(lit)
}

func (p *Parser) isWord(word string) bool {
	return p.cur.Type == token.Identifier && p.cur.Literal == word
}

func (p *Parser) atEOF() bool {
	return p.cur.Type == token.EOF
}

func (p *Parser) eat(lit string) bool {
	if p.is(lit) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(lit string) {
	if !p.eat(lit) {
		p.unexpected(fmt.Sprintf("expected %q", lit))
	}
}

func (p *Parser) unexpected(context string) {
	if p.atEOF() {
		p.addError(&Error{Pos: ast.Pos(p.cur.Pos), Msg: "unexpected end of input, " + context, AtEOF: true})
		return
	}
	p.errorAt(p.cur.Pos, "unexpected %s, %s", p.cur, context)
}

func (p *Parser) errorAt(pos token.Pos, format string, args ...interface{}) {
	p.addError(&Error{Pos: ast.Pos(pos), Msg: fmt.Sprintf(format, args...)})
}

func (p *Parser) addError(err *Error) {
	p.errors = multierror.Append(p.errors, err)
	p.nerrors++
	if p.nerrors >= maxErrors || err.AtEOF {
		panic(bailout{})
	}
}

// consumeSemicolon implements automatic semicolon insertion.
func (p *Parser) consumeSemicolon() {
	if p.eat(";") {
		return
	}
	if p.is("}") || p.atEOF() || p.cur.NewlineBefore {
		return
	}
	p.unexpected(`expected ";"`)
}

func (p *Parser) spanFrom(start token.Pos) ast.Span {
	return ast.Span{Start: ast.Pos(start), End: ast.Pos(p.prevEnd)}
}

func (p *Parser) spanFromNode(n ast.Node) ast.Span {
	return ast.Span{Start: n.Span().Start, End: ast.Pos(p.prevEnd)}
}

// synchronize skips to a plausible statement boundary after an error.
func (p *Parser) synchronize(start int) {
	if p.cur.Pos.Offset == start && !p.atEOF() {
		p.next()
	}
	for !p.atEOF() && !p.is("}") && !p.cur.NewlineBefore {
		if p.eat(";") {
			return
		}
		p.next()
	}
}

// ---------- Statements ----------

func (p *Parser) parseStatementList(inBlock bool) []ast.Statement {
	var body []ast.Statement
	for !p.atEOF() && !(inBlock && p.is("}")) {
		before, start := p.nerrors, p.cur.Pos.Offset
		stmt := p.parseStatement()
		if p.nerrors > before {
			p.synchronize(start)
			continue
		}
		body = append(body, stmt)
	}
	return body
}

// parseStatement dispatches to the appropriate statement parser.
func (p *Parser) parseStatement() ast.Statement {
	switch {
	case p.is("{"):
		return p.parseBlockStatement()
	case p.is("var"), p.is("let"), p.is("const"):
		start := p.cur.Pos
		decl := p.parseVariableDeclaration(false)
		p.consumeSemicolon()
		decl.Loc = p.spanFrom(start)
		return decl
	case p.is("function"):
		return p.parseFunctionDeclaration(p.cur.Pos, false)
	case p.isWord("async") && p.peek.Is("function") && !p.peek.NewlineBefore:
		start := p.cur.Pos
		p.next()
		return p.parseFunctionDeclaration(start, true)
	case p.is("if"):
		return p.parseIfStatement()
	case p.is("for"):
		return p.parseForStatement()
	case p.is("while"):
		return p.parseWhileStatement()
	case p.is("do"):
		return p.parseDoWhileStatement()
	case p.is("return"):
		return p.parseReturnStatement()
	case p.is("break"), p.is("continue"):
		return p.parseBreakOrContinue()
	case p.is("throw"):
		return p.parseThrowStatement()
	case p.is("try"):
		return p.parseTryStatement()
	case p.is("switch"):
		return p.parseSwitchStatement()
	case p.is(";"):
		start := p.cur.Pos
		p.next()
		return &ast.EmptyStatement{Loc: p.spanFrom(start)}
	case p.is("debugger"):
		start := p.cur.Pos
		p.next()
		p.consumeSemicolon()
		return &ast.Unsupported{Loc: p.spanFrom(start), TypeName: "DebuggerStatement"}
	case p.is("class"), p.is("import"), p.is("export"), p.is("with"):
		p.errorAt(p.cur.Pos, "%q statements are not supported", p.cur.Literal)
		return &ast.EmptyStatement{}
	case p.cur.Type == token.Identifier && p.peek.Is(":"):
		return p.parseLabeledStatement()
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	start := p.cur.Pos
	p.expect("{")
	body := p.parseStatementList(true)
	p.expect("}")
	return &ast.BlockStatement{Loc: p.spanFrom(start), Body: body}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	start := p.cur.Pos
	expr := p.parseExpression()
	p.consumeSemicolon()
	return &ast.ExpressionStatement{Loc: p.spanFrom(start), Expression: expr}
}

// parseVariableDeclaration parses "var|let|const a = 1, b". In a for-loop head the
// missing-initializer check is left to the caller, since for-in/of heads have none.
func (p *Parser) parseVariableDeclaration(forHead bool) *ast.VariableDeclaration {
	start := p.cur.Pos
	decl := &ast.VariableDeclaration{Kind: p.cur.Literal}
	p.next()
	for {
		decl.Declarations = append(decl.Declarations, p.parseVariableDeclarator(decl.Kind, forHead))
		if !p.eat(",") {
			break
		}
	}
	decl.Loc = p.spanFrom(start)
	return decl
}

func (p *Parser) parseVariableDeclarator(kind string, forHead bool) *ast.VariableDeclarator {
	start := p.cur.Pos
	id := p.parseBindingIdentifier()
	d := &ast.VariableDeclarator{ID: id}
	if p.eat("=") {
		d.Init = p.parseAssignment()
	} else if kind == "const" && !forHead {
		p.errorAt(start, "missing initializer in const declaration")
	}
	d.Loc = p.spanFrom(start)
	return d
}

func (p *Parser) parseBindingIdentifier() *ast.Identifier {
	if p.is("{") || p.is("[") {
		p.errorAt(p.cur.Pos, "destructuring patterns are not supported")
		return &ast.Identifier{}
	}
	if p.cur.Type != token.Identifier {
		p.unexpected("expected an identifier")
		return &ast.Identifier{}
	}
	return p.parseIdentifier()
}

func (p *Parser) parseIdentifier() *ast.Identifier {
	start := p.cur.Pos
	name := p.cur.Literal
	p.next()
	return &ast.Identifier{Loc: p.spanFrom(start), Name: name}
}

func (p *Parser) parseFunctionDeclaration(start token.Pos, async bool) ast.Statement {
	fn := p.parseFunction(async, true)
	return &ast.FunctionDeclaration{Loc: p.spanFrom(start), Function: fn}
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	start := p.cur.Pos
	p.next()
	p.expect("(")
	test := p.parseExpression()
	p.expect(")")
	stmt := &ast.IfStatement{Test: test, Consequent: p.parseStatement()}
	if p.eat("else") {
		stmt.Alternate = p.parseStatement()
	}
	stmt.Loc = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseLoopBody() ast.Statement {
	p.fn.loopDepth++
	p.fn.breakable++
	body := p.parseStatement()
	p.fn.loopDepth--
	p.fn.breakable--
	return body
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	start := p.cur.Pos
	p.next()
	p.expect("(")
	test := p.parseExpression()
	p.expect(")")
	body := p.parseLoopBody()
	return &ast.WhileStatement{Loc: p.spanFrom(start), Test: test, Body: body}
}

func (p *Parser) parseDoWhileStatement() *ast.DoWhileStatement {
	start := p.cur.Pos
	p.next()
	body := p.parseLoopBody()
	p.expect("while")
	p.expect("(")
	test := p.parseExpression()
	p.expect(")")
	p.eat(";")
	return &ast.DoWhileStatement{Loc: p.spanFrom(start), Body: body, Test: test}
}

func (p *Parser) parseForStatement() ast.Statement {
	start := p.cur.Pos
	p.next()
	p.expect("(")

	var init ast.Node
	switch {
	case p.is(";"):
	case p.is("var"), p.is("let"), p.is("const"):
		p.noIn = true
		decl := p.parseVariableDeclaration(true)
		p.noIn = false
		if (p.is("in") || p.isWord("of")) && len(decl.Declarations) == 1 {
			if decl.Declarations[0].Init != nil {
				p.errorAt(start, "for-%s loop variable declaration may not have an initializer", p.cur.Literal)
			}
			return p.parseForInOf(start, decl)
		}
		if decl.Kind == "const" {
			for _, d := range decl.Declarations {
				if d.Init == nil {
					p.errorAt(token.Pos(d.Loc.Start), "missing initializer in const declaration")
				}
			}
		}
		init = decl
	default:
		p.noIn = true
		expr := p.parseExpression()
		p.noIn = false
		if p.is("in") || p.isWord("of") {
			if !isAssignable(expr) {
				p.errorAt(start, "invalid left-hand side in for-%s loop", p.cur.Literal)
			}
			return p.parseForInOf(start, expr)
		}
		init = expr
	}

	stmt := &ast.ForStatement{Init: init}
	p.expect(";")
	if !p.is(";") {
		stmt.Test = p.parseExpression()
	}
	p.expect(";")
	if !p.is(")") {
		stmt.Update = p.parseExpression()
	}
	p.expect(")")
	stmt.Body = p.parseLoopBody()
	stmt.Loc = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseForInOf(start token.Pos, left ast.Node) ast.Statement {
	if p.eat("in") {
		right := p.parseExpression()
		p.expect(")")
		body := p.parseLoopBody()
		return &ast.ForInStatement{Loc: p.spanFrom(start), Left: left, Right: right, Body: body}
	}
	p.next() // of
	right := p.parseAssignment()
	p.expect(")")
	body := p.parseLoopBody()
	return &ast.ForOfStatement{Loc: p.spanFrom(start), Left: left, Right: right, Body: body}
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	start := p.cur.Pos
	if !p.fn.inFunction {
		p.errorAt(start, "illegal return statement")
	}
	p.next()
	stmt := &ast.ReturnStatement{}
	if !p.is(";") && !p.is("}") && !p.atEOF() && !p.cur.NewlineBefore {
		stmt.Argument = p.parseExpression()
	}
	p.consumeSemicolon()
	stmt.Loc = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseBreakOrContinue() ast.Statement {
	start := p.cur.Pos
	keyword := p.cur.Literal
	p.next()

	var label *ast.Identifier
	if p.cur.Type == token.Identifier && !p.cur.NewlineBefore {
		label = p.parseIdentifier()
		if !p.hasLabel(label.Name) {
			p.errorAt(token.Pos(label.Loc.Start), "undefined label %q", label.Name)
		}
	} else if keyword == "break" && p.fn.breakable == 0 {
		p.errorAt(start, "illegal break statement")
	}
	if keyword == "continue" && p.fn.loopDepth == 0 {
		p.errorAt(start, "illegal continue statement: no surrounding iteration statement")
	}
	p.consumeSemicolon()

	if keyword == "break" {
		return &ast.BreakStatement{Loc: p.spanFrom(start), Label: label}
	}
	return &ast.ContinueStatement{Loc: p.spanFrom(start), Label: label}
}

func (p *Parser) hasLabel(name string) bool {
	for _, l := range p.fn.labels {
		if l == name {
			return true
		}
	}
	return false
}

func (p *Parser) parseLabeledStatement() *ast.LabeledStatement {
	start := p.cur.Pos
	label := p.parseIdentifier()
	p.expect(":")
	if p.hasLabel(label.Name) {
		p.errorAt(start, "label %q has already been declared", label.Name)
	}
	p.fn.labels = append(p.fn.labels, label.Name)
	body := p.parseStatement()
	p.fn.labels = p.fn.labels[:len(p.fn.labels)-1]
	return &ast.LabeledStatement{Loc: p.spanFrom(start), Label: label, Body: body}
}

func (p *Parser) parseThrowStatement() *ast.ThrowStatement {
	start := p.cur.Pos
	p.next()
	if p.cur.NewlineBefore {
		p.errorAt(start, "illegal newline after throw")
	}
	arg := p.parseExpression()
	p.consumeSemicolon()
	return &ast.ThrowStatement{Loc: p.spanFrom(start), Argument: arg}
}

func (p *Parser) parseTryStatement() *ast.TryStatement {
	start := p.cur.Pos
	p.next()
	stmt := &ast.TryStatement{Block: p.parseBlockStatement()}
	if p.is("catch") {
		cstart := p.cur.Pos
		p.next()
		clause := &ast.CatchClause{}
		if p.eat("(") {
			clause.Param = p.parseBindingIdentifier()
			p.expect(")")
		}
		clause.Body = p.parseBlockStatement()
		clause.Loc = p.spanFrom(cstart)
		stmt.Handler = clause
	}
	if p.eat("finally") {
		stmt.Finalizer = p.parseBlockStatement()
	}
	if stmt.Handler == nil && stmt.Finalizer == nil {
		p.unexpected(`expected "catch" or "finally"`)
	}
	stmt.Loc = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseSwitchStatement() *ast.SwitchStatement {
	start := p.cur.Pos
	p.next()
	p.expect("(")
	stmt := &ast.SwitchStatement{Discriminant: p.parseExpression()}
	p.expect(")")
	p.expect("{")
	p.fn.breakable++
	sawDefault := false
	for !p.is("}") && !p.atEOF() {
		cstart := p.cur.Pos
		c := &ast.SwitchCase{}
		switch {
		case p.eat("case"):
			c.Test = p.parseExpression()
		case p.eat("default"):
			if sawDefault {
				p.errorAt(cstart, "more than one default clause in switch statement")
			}
			sawDefault = true
		default:
			p.unexpected(`expected "case" or "default"`)
			p.fn.breakable--
			return stmt
		}
		p.expect(":")
		for !p.is("case") && !p.is("default") && !p.is("}") && !p.atEOF() {
			before, off := p.nerrors, p.cur.Pos.Offset
			s := p.parseStatement()
			if p.nerrors > before {
				p.synchronize(off)
				continue
			}
			c.Consequent = append(c.Consequent, s)
		}
		c.Loc = p.spanFrom(cstart)
		stmt.Cases = append(stmt.Cases, c)
	}
	p.fn.breakable--
	p.expect("}")
	stmt.Loc = p.spanFrom(start)
	return stmt
}

// ---------- Functions ----------

// parseFunction parses the rest of a function after an optional "async": the
// "function" keyword, an optional "*", the name and the parameters and body.
func (p *Parser) parseFunction(async, declaration bool) *ast.Function {
	p.expect("function")
	fn := &ast.Function{Async: async, Generator: p.eat("*")}
	if p.cur.Type == token.Identifier {
		fn.ID = p.parseIdentifier()
	} else if declaration {
		p.unexpected("expected a function name")
	}
	p.parseFunctionRest(fn)
	return fn
}

// parseFunctionRest parses "(params) { body }" in a fresh function context.
func (p *Parser) parseFunctionRest(fn *ast.Function) {
	saved, savedNoIn := p.fn, p.noIn
	p.fn = funcContext{inFunction: true, generator: fn.Generator, async: fn.Async}
	p.noIn = false
	fn.Params = p.parseParams()
	fn.Body = p.parseBlockStatement()
	p.fn, p.noIn = saved, savedNoIn
}

func (p *Parser) parseParams() []ast.Node {
	p.expect("(")
	var params []ast.Node
	for !p.is(")") && !p.atEOF() {
		start := p.cur.Pos
		if p.eat("...") {
			arg := p.parseBindingIdentifier()
			params = append(params, &ast.RestElement{Loc: p.spanFrom(start), Argument: arg})
			if !p.is(")") {
				p.errorAt(start, "rest parameter must be last formal parameter")
			}
			break
		}
		id := p.parseBindingIdentifier()
		if p.eat("=") {
			params = append(params, &ast.AssignmentPattern{Loc: p.spanFrom(start), Left: id, Right: p.parseAssignment()})
		} else {
			params = append(params, id)
		}
		if !p.eat(",") {
			break
		}
	}
	p.expect(")")
	return params
}

// parseArrowBody parses what follows "=>" for an arrow whose parameters are already known.
func (p *Parser) parseArrowBody(start token.Pos, params []ast.Node, async bool) ast.Expression {
	p.expect("=>")
	fn := &ast.Function{Params: params, Async: async}
	saved := p.fn
	p.fn = funcContext{inFunction: true, async: async}
	if p.is("{") {
		savedNoIn := p.noIn
		p.noIn = false
		fn.Body = p.parseBlockStatement()
		p.noIn = savedNoIn
	} else {
		fn.Expression = true
		fn.Body = p.parseAssignment()
	}
	p.fn = saved
	return &ast.ArrowFunctionExpression{Loc: p.spanFrom(start), Function: fn}
}

// arrowAhead reports whether the bracketed group opened by tok is followed by "=>".
// It scans a copy of the lexer so the parser's own position does not move.
func arrowAhead(tok, next token.Token, lx lexer.Lexer) bool {
	depth := 0
	for {
		switch {
		case tok.Type == token.EOF || tok.Type == token.Illegal:
			return false
		case tok.Is("(") || tok.Is("[") || tok.Is("{"):
			depth++
		case tok.Is(")") || tok.Is("]") || tok.Is("}"):
			depth--
			if depth == 0 {
				return next.Is("=>") && !next.NewlineBefore
			}
		}
		tok, next = next, lx.NextToken()
	}
}

// ---------- Expressions ----------

func (p *Parser) parseExpression() ast.Expression {
	start := p.cur.Pos
	expr := p.parseAssignment()
	if !p.is(",") {
		return expr
	}
	seq := &ast.SequenceExpression{Expressions: []ast.Expression{expr}}
	for p.eat(",") {
		seq.Expressions = append(seq.Expressions, p.parseAssignment())
	}
	seq.Loc = p.spanFrom(start)
	return seq
}

func (p *Parser) parseAssignment() ast.Expression {
	start := p.cur.Pos

	switch {
	case p.is("yield") && p.fn.generator:
		return p.parseYield()
	case p.cur.Type == token.Identifier && p.peek.Is("=>") && !p.peek.NewlineBefore:
		param := p.parseIdentifier()
		return p.parseArrowBody(start, []ast.Node{param}, false)
	case p.is("(") && arrowAhead(p.cur, p.peek, *p.l):
		return p.parseArrowBody(start, p.parseParams(), false)
	case p.isWord("async") && !p.peek.NewlineBefore:
		if arrow := p.tryAsyncArrow(start); arrow != nil {
			return arrow
		}
	}

	left := p.parseConditional()
	if p.cur.Type != token.Punctuator || !assignmentOperators[p.cur.Literal] {
		return left
	}
	op := p.cur.Literal
	if !isAssignable(left) {
		p.errorAt(start, "invalid left-hand side in assignment")
	}
	p.next()
	right := p.parseAssignment()
	return &ast.AssignmentExpression{Loc: p.spanFrom(start), Operator: op, Left: left, Right: right}
}

// tryAsyncArrow parses "async x => ..." and "async (...) => ..." and returns nil when
// the "async" identifier starts something else.
func (p *Parser) tryAsyncArrow(start token.Pos) ast.Expression {
	lx := *p.l
	third := lx.NextToken()
	switch {
	case p.peek.Type == token.Identifier && third.Is("=>") && !third.NewlineBefore:
		p.next() // async
		param := p.parseIdentifier()
		return p.parseArrowBody(start, []ast.Node{param}, true)
	case p.peek.Is("(") && arrowAhead(p.peek, third, lx):
		p.next() // async
		saved := p.fn.async
		p.fn.async = true
		params := p.parseParams()
		p.fn.async = saved
		return p.parseArrowBody(start, params, true)
	}
	return nil
}

func (p *Parser) parseYield() ast.Expression {
	start := p.cur.Pos
	p.next()
	y := &ast.YieldExpression{}
	if p.cur.NewlineBefore {
		y.Loc = p.spanFrom(start)
		return y
	}
	if p.eat("*") {
		y.Delegate = true
		y.Argument = p.parseAssignment()
	} else if !p.endsYield() {
		y.Argument = p.parseAssignment()
	}
	y.Loc = p.spanFrom(start)
	return y
}

func (p *Parser) endsYield() bool {
	for _, lit := range []string{")", "]", "}", ",", ";", ":"} {
		if p.is(lit) {
			return true
		}
	}
	return p.atEOF() || (p.is("in") && p.noIn)
}

func (p *Parser) parseConditional() ast.Expression {
	start := p.cur.Pos
	test := p.parseBinary(0)
	if !p.eat("?") {
		return test
	}
	savedNoIn := p.noIn
	p.noIn = false
	consequent := p.parseAssignment()
	p.noIn = savedNoIn
	p.expect(":")
	alternate := p.parseAssignment()
	return &ast.ConditionalExpression{Loc: p.spanFrom(start), Test: test, Consequent: consequent, Alternate: alternate}
}

func (p *Parser) binaryOperator() (string, int) {
	if p.cur.Type != token.Punctuator && p.cur.Type != token.Keyword {
		return "", 0
	}
	op := p.cur.Literal
	if op == "in" && p.noIn {
		return "", 0
	}
	return op, binaryPrecedence[op]
}

func (p *Parser) parseBinary(minPrec int) ast.Expression {
	left := p.parseUnary()
	for {
		op, prec := p.binaryOperator()
		if prec == 0 || prec <= minPrec {
			return left
		}
		p.next()
		var right ast.Expression
		if op == "**" {
			right = p.parseBinary(prec - 1)
		} else {
			right = p.parseBinary(prec)
		}
		if op == "&&" || op == "||" || op == "??" {
			left = &ast.LogicalExpression{Loc: p.spanFromNode(left), Operator: op, Left: left, Right: right}
		} else {
			left = &ast.BinaryExpression{Loc: p.spanFromNode(left), Operator: op, Left: left, Right: right}
		}
	}
}

func (p *Parser) parseUnary() ast.Expression {
	start := p.cur.Pos
	switch {
	case p.is("!"), p.is("~"), p.is("+"), p.is("-"), p.is("typeof"), p.is("void"), p.is("delete"):
		op := p.cur.Literal
		p.next()
		arg := p.parseUnary()
		if p.is("**") {
			p.errorAt(p.cur.Pos, "unary operator used immediately before exponentiation expression")
		}
		return &ast.UnaryExpression{Loc: p.spanFrom(start), Operator: op, Argument: arg}
	case p.is("++"), p.is("--"):
		op := p.cur.Literal
		p.next()
		arg := p.parseUnary()
		if !isAssignable(arg) {
			p.errorAt(start, "invalid left-hand side expression in prefix operation")
		}
		return &ast.UpdateExpression{Loc: p.spanFrom(start), Operator: op, Prefix: true, Argument: arg}
	case p.is("await"):
		if !p.fn.async {
			p.errorAt(start, "await is only valid in async functions")
		}
		p.next()
		arg := p.parseUnary()
		return &ast.AwaitExpression{Loc: p.spanFrom(start), Argument: arg}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parseCallOrMember()
	if (p.is("++") || p.is("--")) && !p.cur.NewlineBefore {
		op := p.cur.Literal
		if !isAssignable(expr) {
			p.errorAt(p.cur.Pos, "invalid left-hand side expression in postfix operation")
		}
		p.next()
		return &ast.UpdateExpression{Loc: p.spanFromNode(expr), Operator: op, Argument: expr}
	}
	return expr
}

func (p *Parser) parseCallOrMember() ast.Expression {
	var expr ast.Expression
	if p.is("new") {
		expr = p.parseNew()
	} else {
		expr = p.parsePrimary()
	}
	for {
		switch {
		case p.is("."), p.is("["):
			expr = p.parseMember(expr)
		case p.is("("):
			args := p.parseArguments()
			expr = &ast.CallExpression{Loc: p.spanFromNode(expr), Callee: expr, Arguments: args}
		default:
			return expr
		}
	}
}

func (p *Parser) parseMember(object ast.Expression) ast.Expression {
	if p.eat("[") {
		savedNoIn := p.noIn
		p.noIn = false
		prop := p.parseExpression()
		p.noIn = savedNoIn
		p.expect("]")
		return &ast.MemberExpression{Loc: p.spanFromNode(object), Object: object, Property: prop, Computed: true}
	}
	p.expect(".")
	if p.cur.Type != token.Identifier && p.cur.Type != token.Keyword {
		p.unexpected("expected a property name")
		return object
	}
	prop := p.parseIdentifier()
	return &ast.MemberExpression{Loc: p.spanFromNode(object), Object: object, Property: prop}
}

func (p *Parser) parseNew() ast.Expression {
	start := p.cur.Pos
	p.next() // new
	if p.eat(".") {
		if !p.isWord("target") {
			p.unexpected(`expected "target" after "new."`)
			return &ast.Identifier{}
		}
		meta := &ast.Identifier{Loc: p.spanFrom(start), Name: "new"}
		prop := p.parseIdentifier()
		return &ast.MetaProperty{Loc: p.spanFrom(start), Meta: meta, Property: prop}
	}

	var callee ast.Expression
	if p.is("new") {
		callee = p.parseNew()
	} else {
		callee = p.parsePrimary()
	}
	for p.is(".") || p.is("[") {
		callee = p.parseMember(callee)
	}
	var args []ast.Expression
	if p.is("(") {
		args = p.parseArguments()
	}
	return &ast.NewExpression{Loc: p.spanFrom(start), Callee: callee, Arguments: args}
}

func (p *Parser) parseArguments() []ast.Expression {
	p.expect("(")
	savedNoIn := p.noIn
	p.noIn = false
	var args []ast.Expression
	for !p.is(")") && !p.atEOF() {
		args = append(args, p.parseSpreadOrAssignment())
		if !p.eat(",") {
			break
		}
	}
	p.noIn = savedNoIn
	p.expect(")")
	return args
}

func (p *Parser) parseSpreadOrAssignment() ast.Expression {
	start := p.cur.Pos
	if p.eat("...") {
		arg := p.parseAssignment()
		return &ast.SpreadElement{Loc: p.spanFrom(start), Argument: arg}
	}
	return p.parseAssignment()
}

func (p *Parser) parsePrimary() ast.Expression {
	start := p.cur.Pos
	tok := p.cur
	switch tok.Type {
	case token.Identifier:
		if tok.Literal == "async" && p.peek.Is("function") && !p.peek.NewlineBefore {
			p.next()
			fn := p.parseFunction(true, false)
			return &ast.FunctionExpression{Loc: p.spanFrom(start), Function: fn}
		}
		return p.parseIdentifier()
	case token.Number:
		p.next()
		n, err := parseNumber(tok.Literal)
		if err != nil {
			p.errorAt(start, "invalid number literal %s", tok.Raw)
		}
		return &ast.Literal{Loc: p.spanFrom(start), Kind: ast.NumberLiteral, Number: n, Raw: tok.Raw}
	case token.String:
		p.next()
		return &ast.Literal{Loc: p.spanFrom(start), Kind: ast.StringLiteral, String: tok.Literal, Raw: tok.Raw}
	}

	switch {
	case p.is("true"), p.is("false"):
		p.next()
		return &ast.Literal{Loc: p.spanFrom(start), Kind: ast.BooleanLiteral, Bool: tok.Literal == "true", Raw: tok.Raw}
	case p.is("null"):
		p.next()
		return &ast.Literal{Loc: p.spanFrom(start), Kind: ast.NullLiteral, Raw: tok.Raw}
	case p.is("this"):
		p.next()
		return &ast.ThisExpression{Loc: p.spanFrom(start)}
	case p.is("function"):
		fn := p.parseFunction(false, false)
		return &ast.FunctionExpression{Loc: p.spanFrom(start), Function: fn}
	case p.is("("):
		p.next()
		savedNoIn := p.noIn
		p.noIn = false
		expr := p.parseExpression()
		p.noIn = savedNoIn
		p.expect(")")
		return expr
	case p.is("["):
		return p.parseArrayLiteral()
	case p.is("{"):
		return p.parseObjectLiteral()
	case p.is("/"), p.is("/="):
		p.errorAt(start, "regular expression literals are not supported")
		return &ast.Identifier{}
	case p.is("class"), p.is("super"), p.is("import"):
		p.errorAt(start, "%q is not supported", tok.Literal)
		return &ast.Identifier{}
	case p.is("yield"):
		p.errorAt(start, "yield is only valid in generator functions")
		return &ast.Identifier{}
	}
	p.unexpected("expected an expression")
	return &ast.Identifier{Loc: p.spanFrom(start)}
}

func (p *Parser) parseArrayLiteral() *ast.ArrayExpression {
	start := p.cur.Pos
	p.expect("[")
	savedNoIn := p.noIn
	p.noIn = false
	arr := &ast.ArrayExpression{}
	for !p.is("]") && !p.atEOF() {
		if p.eat(",") {
			arr.Elements = append(arr.Elements, nil)
			continue
		}
		arr.Elements = append(arr.Elements, p.parseSpreadOrAssignment())
		if !p.eat(",") {
			break
		}
	}
	p.noIn = savedNoIn
	p.expect("]")
	arr.Loc = p.spanFrom(start)
	return arr
}

func (p *Parser) parseObjectLiteral() *ast.ObjectExpression {
	start := p.cur.Pos
	p.expect("{")
	savedNoIn := p.noIn
	p.noIn = false
	obj := &ast.ObjectExpression{}
	for !p.is("}") && !p.atEOF() {
		prop := p.parseProperty()
		if prop == nil {
			break
		}
		obj.Properties = append(obj.Properties, prop)
		if !p.eat(",") {
			break
		}
	}
	p.noIn = savedNoIn
	p.expect("}")
	obj.Loc = p.spanFrom(start)
	return obj
}

// startsPropertyKey reports whether tok can begin a property name.
func startsPropertyKey(tok token.Token) bool {
	switch tok.Type {
	case token.Identifier, token.Keyword, token.String, token.Number:
		return true
	}
	return tok.Is("[")
}

func (p *Parser) parseProperty() *ast.Property {
	start := p.cur.Pos
	if p.is("...") {
		p.errorAt(start, "object spread is not supported")
		return nil
	}

	prop := &ast.Property{Kind: "init"}
	async, generator := false, false
	switch {
	case (p.isWord("get") || p.isWord("set")) && startsPropertyKey(p.peek):
		prop.Kind = p.cur.Literal
		p.next()
	case p.isWord("async") && !p.peek.NewlineBefore && (startsPropertyKey(p.peek) || p.peek.Is("*")):
		async = true
		p.next()
	}
	if p.eat("*") {
		generator = true
	}

	keyTok := p.cur
	prop.Key, prop.Computed = p.parsePropertyKey()
	if prop.Key == nil {
		return nil
	}

	switch {
	case prop.Kind != "init" || async || generator || p.is("("):
		fstart := p.cur.Pos
		fn := &ast.Function{Async: async, Generator: generator}
		p.parseFunctionRest(fn)
		prop.Value = &ast.FunctionExpression{Loc: p.spanFrom(fstart), Function: fn}
		prop.Method = prop.Kind == "init"
	case p.eat(":"):
		prop.Value = p.parseAssignment()
	case keyTok.Type == token.Identifier && (p.is(",") || p.is("}")):
		prop.Shorthand = true
		prop.Value = &ast.Identifier{Loc: prop.Key.Span(), Name: keyTok.Literal}
	default:
		p.unexpected(`expected ":" after property name`)
		return nil
	}
	prop.Loc = p.spanFrom(start)
	return prop
}

func (p *Parser) parsePropertyKey() (ast.Expression, bool) {
	start := p.cur.Pos
	tok := p.cur
	switch {
	case tok.Is("["):
		p.next()
		key := p.parseAssignment()
		p.expect("]")
		return key, true
	case tok.Type == token.Identifier || tok.Type == token.Keyword:
		p.next()
		return &ast.Identifier{Loc: p.spanFrom(start), Name: tok.Literal}, false
	case tok.Type == token.String:
		p.next()
		return &ast.Literal{Loc: p.spanFrom(start), Kind: ast.StringLiteral, String: tok.Literal, Raw: tok.Raw}, false
	case tok.Type == token.Number:
		p.next()
		n, _ := parseNumber(tok.Literal)
		return &ast.Literal{Loc: p.spanFrom(start), Kind: ast.NumberLiteral, Number: n, Raw: tok.Raw}, false
	}
	p.unexpected("expected a property name")
	return nil, false
}

// ---------- Helpers ----------

func isAssignable(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.Identifier, *ast.MemberExpression:
		return true
	}
	return false
}

// parseNumber converts the source text of a numeric literal to its value.
func parseNumber(lit string) (float64, error) {
	s := strings.ReplaceAll(lit, "_", "")
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, ok := new(big.Int).SetString(s[2:], base)
			if !ok {
				return 0, fmt.Errorf("invalid number %q", lit)
			}
			f, _ := new(big.Float).SetInt(n).Float64()
			return f, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, nil
		}
		return math.NaN(), err
	}
	return f, nil
}
