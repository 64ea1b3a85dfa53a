package token

import "fmt"

type TokenType int

const (
	Illegal TokenType = iota
	EOF
	Identifier
	Keyword
	Number
	String
	Punctuator
)

var typeNames = [...]string{
	Illegal:    "illegal token",
	EOF:        "end of input",
	Identifier: "identifier",
	Keyword:    "keyword",
	Number:     "number",
	String:     "string",
	Punctuator: "punctuator",
}

func (t TokenType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Pos is a position in the source; Line and Column are 1-based.
type Pos struct {
	Offset int
	Line   int
	Column int
}

type Token struct {
	Type    TokenType
	Literal string // decoded value for strings, source text otherwise
	Raw     string // exact source text
	Pos     Pos
	End     Pos

	// NewlineBefore records a line terminator between this token and the previous one,
	// which drives automatic semicolon insertion.
	NewlineBefore bool
}

func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case String:
		return fmt.Sprintf("string %q", t.Literal)
	case Illegal:
		return t.Literal
	}
	return fmt.Sprintf("%q", t.Raw)
}

// Is reports whether the token is the punctuator or keyword lit.
func (t Token) Is(lit string) bool {
	return (t.Type == Punctuator || t.Type == Keyword) && t.Literal == lit
}

// Keywords are the reserved words of the accepted language. Contextual words such as
// "of", "async", "get" and "set" scan as identifiers.
var Keywords = map[string]bool{
	"var":        true,
	"let":        true,
	"const":      true,
	"function":   true,
	"return":     true,
	"if":         true,
	"else":       true,
	"while":      true,
	"for":        true,
	"do":         true,
	"break":      true,
	"continue":   true,
	"switch":     true,
	"case":       true,
	"default":    true,
	"throw":      true,
	"try":        true,
	"catch":      true,
	"finally":    true,
	"new":        true,
	"delete":     true,
	"typeof":     true,
	"void":       true,
	"in":         true,
	"instanceof": true,
	"this":       true,
	"yield":      true,
	"await":      true,
	"true":       true,
	"false":      true,
	"null":       true,
	"class":      true,
	"super":      true,
	"import":     true,
	"export":     true,
	"with":       true,
	"debugger":   true,
}

func LookupIdentifier(ident string) TokenType {
	if Keywords[ident] {
		return Keyword
	}
	return Identifier
}

// Punctuators lists every operator and delimiter, longest first so that a scanner can
// take the first prefix match.
var Punctuators = []string{
	">>>=",
	"...", "===", "!==", "**=", "<<=", ">>=", ">>>", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "++", "--", "+=", "-=", "*=", "/=",
	"%=", "&=", "|=", "^=", "<<", ">>", "**",
	"{", "}", "(", ")", "[", "]", ";", ",", "<", ">", "+", "-", "*", "/", "%", "&", "|",
	"^", "!", "~", "?", ":", "=", ".",
}
