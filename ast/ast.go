package ast

import "fmt"

// Pos is a location in source text. Line and Column are 1-based; Offset is a byte offset.
type Pos struct {
	Offset int
	Line   int
	Column int
}

// Span covers the source text a node was parsed from.
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string {
	if s.Start.Line == 0 {
		return "?"
	}
	return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
}

// Node is implemented by every syntax tree node. The set of nodes is closed: only
// types in this package satisfy it.
type Node interface {
	Type() string
	Span() Span
	astNode()
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of every tree.
type Program struct {
	Loc  Span
	Body []Statement
}

// ---------- Statements ----------

type ExpressionStatement struct {
	Loc        Span
	Expression Expression
}

type BlockStatement struct {
	Loc  Span
	Body []Statement
}

type EmptyStatement struct {
	Loc Span
}

type VariableDeclaration struct {
	Loc          Span
	Kind         string // "var", "let" or "const"
	Declarations []*VariableDeclarator
}

type VariableDeclarator struct {
	Loc  Span
	ID   Node       // *Identifier unless the tree came from elsewhere
	Init Expression // may be nil
}

type FunctionDeclaration struct {
	Loc      Span
	Function *Function
}

type ReturnStatement struct {
	Loc      Span
	Argument Expression // may be nil
}

type IfStatement struct {
	Loc        Span
	Test       Expression
	Consequent Statement
	Alternate  Statement // may be nil
}

type ForStatement struct {
	Loc    Span
	Init   Node // *VariableDeclaration, Expression, or nil
	Test   Expression
	Update Expression
	Body   Statement
}

type ForInStatement struct {
	Loc   Span
	Left  Node // *VariableDeclaration or Expression
	Right Expression
	Body  Statement
}

type ForOfStatement struct {
	Loc   Span
	Left  Node
	Right Expression
	Body  Statement
}

type WhileStatement struct {
	Loc  Span
	Test Expression
	Body Statement
}

type DoWhileStatement struct {
	Loc  Span
	Body Statement
	Test Expression
}

type BreakStatement struct {
	Loc   Span
	Label *Identifier // may be nil
}

type ContinueStatement struct {
	Loc   Span
	Label *Identifier // may be nil
}

type LabeledStatement struct {
	Loc   Span
	Label *Identifier
	Body  Statement
}

type SwitchStatement struct {
	Loc          Span
	Discriminant Expression
	Cases        []*SwitchCase
}

type SwitchCase struct {
	Loc        Span
	Test       Expression // nil for default
	Consequent []Statement
}

type ThrowStatement struct {
	Loc      Span
	Argument Expression
}

type TryStatement struct {
	Loc       Span
	Block     *BlockStatement
	Handler   *CatchClause    // may be nil
	Finalizer *BlockStatement // may be nil
}

type CatchClause struct {
	Loc   Span
	Param Node // may be nil (optional catch binding)
	Body  *BlockStatement
}

// ---------- Expressions ----------

type Identifier struct {
	Loc  Span
	Name string
}

type LiteralKind int

const (
	NullLiteral LiteralKind = iota
	BooleanLiteral
	NumberLiteral
	StringLiteral
)

type Literal struct {
	Loc    Span
	Kind   LiteralKind
	Bool   bool
	Number float64
	String string
	Raw    string
}

type ThisExpression struct {
	Loc Span
}

type ArrayExpression struct {
	Loc      Span
	Elements []Expression // nil entries are holes
}

type ObjectExpression struct {
	Loc        Span
	Properties []*Property
}

type Property struct {
	Loc       Span
	Key       Expression // *Identifier or *Literal unless Computed
	Value     Expression
	Kind      string // "init", "get" or "set"
	Computed  bool
	Shorthand bool
	Method    bool
}

// Function holds the parts shared by declarations, expressions and arrows.
type Function struct {
	ID         *Identifier // may be nil
	Params     []Node      // *Identifier, *AssignmentPattern or *RestElement
	Body       Node        // *BlockStatement, or an Expression for concise arrows
	Generator  bool
	Async      bool
	Expression bool // concise arrow body
}

type FunctionExpression struct {
	Loc      Span
	Function *Function
}

type ArrowFunctionExpression struct {
	Loc      Span
	Function *Function
}

type UnaryExpression struct {
	Loc      Span
	Operator string
	Argument Expression
}

type UpdateExpression struct {
	Loc      Span
	Operator string // "++" or "--"
	Prefix   bool
	Argument Expression
}

type BinaryExpression struct {
	Loc      Span
	Operator string
	Left     Expression
	Right    Expression
}

type LogicalExpression struct {
	Loc      Span
	Operator string // "&&", "||" or "??"
	Left     Expression
	Right    Expression
}

type AssignmentExpression struct {
	Loc      Span
	Operator string
	Left     Expression
	Right    Expression
}

type ConditionalExpression struct {
	Loc        Span
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

type CallExpression struct {
	Loc       Span
	Callee    Expression
	Arguments []Expression
}

type NewExpression struct {
	Loc       Span
	Callee    Expression
	Arguments []Expression
}

type MemberExpression struct {
	Loc      Span
	Object   Expression
	Property Expression
	Computed bool
}

type SequenceExpression struct {
	Loc         Span
	Expressions []Expression
}

// MetaProperty is new.target.
type MetaProperty struct {
	Loc      Span
	Meta     *Identifier
	Property *Identifier
}

type YieldExpression struct {
	Loc      Span
	Argument Expression // may be nil
	Delegate bool
}

type AwaitExpression struct {
	Loc      Span
	Argument Expression
}

type SpreadElement struct {
	Loc      Span
	Argument Expression
}

// ---------- Patterns ----------

type AssignmentPattern struct {
	Loc   Span
	Left  Node
	Right Expression
}

type RestElement struct {
	Loc      Span
	Argument Node
}

// Unsupported stands in for a node type the evaluator does not implement. It keeps
// the original type name for diagnostics.
type Unsupported struct {
	Loc      Span
	TypeName string
}

// --- Node interface implementations ---

func (*Program) astNode()                 {}
func (*ExpressionStatement) astNode()     {}
func (*BlockStatement) astNode()          {}
func (*EmptyStatement) astNode()          {}
func (*VariableDeclaration) astNode()     {}
func (*VariableDeclarator) astNode()      {}
func (*FunctionDeclaration) astNode()     {}
func (*ReturnStatement) astNode()         {}
func (*IfStatement) astNode()             {}
func (*ForStatement) astNode()            {}
func (*ForInStatement) astNode()          {}
func (*ForOfStatement) astNode()          {}
func (*WhileStatement) astNode()          {}
func (*DoWhileStatement) astNode()        {}
func (*BreakStatement) astNode()          {}
func (*ContinueStatement) astNode()       {}
func (*LabeledStatement) astNode()        {}
func (*SwitchStatement) astNode()         {}
func (*SwitchCase) astNode()              {}
func (*ThrowStatement) astNode()          {}
func (*TryStatement) astNode()            {}
func (*CatchClause) astNode()             {}
func (*Identifier) astNode()              {}
func (*Literal) astNode()                 {}
func (*ThisExpression) astNode()          {}
func (*ArrayExpression) astNode()         {}
func (*ObjectExpression) astNode()        {}
func (*Property) astNode()                {}
func (*FunctionExpression) astNode()      {}
func (*ArrowFunctionExpression) astNode() {}
func (*UnaryExpression) astNode()         {}
func (*UpdateExpression) astNode()        {}
func (*BinaryExpression) astNode()        {}
func (*LogicalExpression) astNode()       {}
func (*AssignmentExpression) astNode()    {}
func (*ConditionalExpression) astNode()   {}
func (*CallExpression) astNode()          {}
func (*NewExpression) astNode()           {}
func (*MemberExpression) astNode()        {}
func (*SequenceExpression) astNode()      {}
func (*MetaProperty) astNode()            {}
func (*YieldExpression) astNode()         {}
func (*AwaitExpression) astNode()         {}
func (*SpreadElement) astNode()           {}
func (*AssignmentPattern) astNode()       {}
func (*RestElement) astNode()             {}
func (*Unsupported) astNode()             {}

// Statement markers
func (*ExpressionStatement) statementNode() {}
func (*BlockStatement) statementNode()      {}
func (*EmptyStatement) statementNode()      {}
func (*VariableDeclaration) statementNode() {}
func (*FunctionDeclaration) statementNode() {}
func (*ReturnStatement) statementNode()     {}
func (*IfStatement) statementNode()         {}
func (*ForStatement) statementNode()        {}
func (*ForInStatement) statementNode()      {}
func (*ForOfStatement) statementNode()      {}
func (*WhileStatement) statementNode()      {}
func (*DoWhileStatement) statementNode()    {}
func (*BreakStatement) statementNode()      {}
func (*ContinueStatement) statementNode()   {}
func (*LabeledStatement) statementNode()    {}
func (*SwitchStatement) statementNode()     {}
func (*ThrowStatement) statementNode()      {}
func (*TryStatement) statementNode()        {}
func (*Unsupported) statementNode()         {}

// Expression markers
func (*Identifier) expressionNode()              {}
func (*Literal) expressionNode()                 {}
func (*ThisExpression) expressionNode()          {}
func (*ArrayExpression) expressionNode()         {}
func (*ObjectExpression) expressionNode()        {}
func (*FunctionExpression) expressionNode()      {}
func (*ArrowFunctionExpression) expressionNode() {}
func (*UnaryExpression) expressionNode()         {}
func (*UpdateExpression) expressionNode()        {}
func (*BinaryExpression) expressionNode()        {}
func (*LogicalExpression) expressionNode()       {}
func (*AssignmentExpression) expressionNode()    {}
func (*ConditionalExpression) expressionNode()   {}
func (*CallExpression) expressionNode()          {}
func (*NewExpression) expressionNode()           {}
func (*MemberExpression) expressionNode()        {}
func (*SequenceExpression) expressionNode()      {}
func (*MetaProperty) expressionNode()            {}
func (*YieldExpression) expressionNode()         {}
func (*AwaitExpression) expressionNode()         {}
func (*SpreadElement) expressionNode()           {}
func (*Unsupported) expressionNode()             {}

// Span implementations
func (n *Program) Span() Span                 { return n.Loc }
func (n *ExpressionStatement) Span() Span     { return n.Loc }
func (n *BlockStatement) Span() Span          { return n.Loc }
func (n *EmptyStatement) Span() Span          { return n.Loc }
func (n *VariableDeclaration) Span() Span     { return n.Loc }
func (n *VariableDeclarator) Span() Span      { return n.Loc }
func (n *FunctionDeclaration) Span() Span     { return n.Loc }
func (n *ReturnStatement) Span() Span         { return n.Loc }
func (n *IfStatement) Span() Span             { return n.Loc }
func (n *ForStatement) Span() Span            { return n.Loc }
func (n *ForInStatement) Span() Span          { return n.Loc }
func (n *ForOfStatement) Span() Span          { return n.Loc }
func (n *WhileStatement) Span() Span          { return n.Loc }
func (n *DoWhileStatement) Span() Span        { return n.Loc }
func (n *BreakStatement) Span() Span          { return n.Loc }
func (n *ContinueStatement) Span() Span       { return n.Loc }
func (n *LabeledStatement) Span() Span        { return n.Loc }
func (n *SwitchStatement) Span() Span         { return n.Loc }
func (n *SwitchCase) Span() Span              { return n.Loc }
func (n *ThrowStatement) Span() Span          { return n.Loc }
func (n *TryStatement) Span() Span            { return n.Loc }
func (n *CatchClause) Span() Span             { return n.Loc }
func (n *Identifier) Span() Span              { return n.Loc }
func (n *Literal) Span() Span                 { return n.Loc }
func (n *ThisExpression) Span() Span          { return n.Loc }
func (n *ArrayExpression) Span() Span         { return n.Loc }
func (n *ObjectExpression) Span() Span        { return n.Loc }
func (n *Property) Span() Span                { return n.Loc }
func (n *FunctionExpression) Span() Span      { return n.Loc }
func (n *ArrowFunctionExpression) Span() Span { return n.Loc }
func (n *UnaryExpression) Span() Span         { return n.Loc }
func (n *UpdateExpression) Span() Span        { return n.Loc }
func (n *BinaryExpression) Span() Span        { return n.Loc }
func (n *LogicalExpression) Span() Span       { return n.Loc }
func (n *AssignmentExpression) Span() Span    { return n.Loc }
func (n *ConditionalExpression) Span() Span   { return n.Loc }
func (n *CallExpression) Span() Span          { return n.Loc }
func (n *NewExpression) Span() Span           { return n.Loc }
func (n *MemberExpression) Span() Span        { return n.Loc }
func (n *SequenceExpression) Span() Span      { return n.Loc }
func (n *MetaProperty) Span() Span            { return n.Loc }
func (n *YieldExpression) Span() Span         { return n.Loc }
func (n *AwaitExpression) Span() Span         { return n.Loc }
func (n *SpreadElement) Span() Span           { return n.Loc }
func (n *AssignmentPattern) Span() Span       { return n.Loc }
func (n *RestElement) Span() Span             { return n.Loc }
func (n *Unsupported) Span() Span             { return n.Loc }

// Type implementations (ESTree type names)
func (*Program) Type() string                 { return "Program" }
func (*ExpressionStatement) Type() string     { return "ExpressionStatement" }
func (*BlockStatement) Type() string          { return "BlockStatement" }
func (*EmptyStatement) Type() string          { return "EmptyStatement" }
func (*VariableDeclaration) Type() string     { return "VariableDeclaration" }
func (*VariableDeclarator) Type() string      { return "VariableDeclarator" }
func (*FunctionDeclaration) Type() string     { return "FunctionDeclaration" }
func (*ReturnStatement) Type() string         { return "ReturnStatement" }
func (*IfStatement) Type() string             { return "IfStatement" }
func (*ForStatement) Type() string            { return "ForStatement" }
func (*ForInStatement) Type() string          { return "ForInStatement" }
func (*ForOfStatement) Type() string          { return "ForOfStatement" }
func (*WhileStatement) Type() string          { return "WhileStatement" }
func (*DoWhileStatement) Type() string        { return "DoWhileStatement" }
func (*BreakStatement) Type() string          { return "BreakStatement" }
func (*ContinueStatement) Type() string       { return "ContinueStatement" }
func (*LabeledStatement) Type() string        { return "LabeledStatement" }
func (*SwitchStatement) Type() string         { return "SwitchStatement" }
func (*SwitchCase) Type() string              { return "SwitchCase" }
func (*ThrowStatement) Type() string          { return "ThrowStatement" }
func (*TryStatement) Type() string            { return "TryStatement" }
func (*CatchClause) Type() string             { return "CatchClause" }
func (*Identifier) Type() string              { return "Identifier" }
func (*Literal) Type() string                 { return "Literal" }
func (*ThisExpression) Type() string          { return "ThisExpression" }
func (*ArrayExpression) Type() string         { return "ArrayExpression" }
func (*ObjectExpression) Type() string        { return "ObjectExpression" }
func (*Property) Type() string                { return "Property" }
func (*FunctionExpression) Type() string      { return "FunctionExpression" }
func (*ArrowFunctionExpression) Type() string { return "ArrowFunctionExpression" }
func (*UnaryExpression) Type() string         { return "UnaryExpression" }
func (*UpdateExpression) Type() string        { return "UpdateExpression" }
func (*BinaryExpression) Type() string        { return "BinaryExpression" }
func (*LogicalExpression) Type() string       { return "LogicalExpression" }
func (*AssignmentExpression) Type() string    { return "AssignmentExpression" }
func (*ConditionalExpression) Type() string   { return "ConditionalExpression" }
func (*CallExpression) Type() string          { return "CallExpression" }
func (*NewExpression) Type() string           { return "NewExpression" }
func (*MemberExpression) Type() string        { return "MemberExpression" }
func (*SequenceExpression) Type() string      { return "SequenceExpression" }
func (*MetaProperty) Type() string            { return "MetaProperty" }
func (*YieldExpression) Type() string         { return "YieldExpression" }
func (*AwaitExpression) Type() string         { return "AwaitExpression" }
func (*SpreadElement) Type() string           { return "SpreadElement" }
func (*AssignmentPattern) Type() string       { return "AssignmentPattern" }
func (*RestElement) Type() string             { return "RestElement" }
func (n *Unsupported) Type() string           { return n.TypeName }
