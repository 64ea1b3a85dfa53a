package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/example/jseval/token"
)

type Lexer struct {
	input   string
	pos     int // current position in input (points to current char)
	readPos int // current reading position (after current char)
	ch      rune
	line    int
	col     int
}

func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = len(l.input)
		l.readPos = len(l.input) + 1
		l.col++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// newline is called once the lexer has stepped past a line terminator onto the first
// character of the next line.
func (l *Lexer) newline() {
	l.line++
	l.col = 1
}

func (l *Lexer) here() token.Pos {
	return token.Pos{Offset: l.pos, Line: l.line, Column: l.col}
}

// skipTrivia skips whitespace and comments, reporting whether a line terminator was seen.
func (l *Lexer) skipTrivia() (sawNewline bool) {
	for {
		switch {
		case l.ch == '\n':
			sawNewline = true
			l.readChar()
			l.newline()
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\f' || l.ch == '\v' ||
			l.ch == '\u00a0' || l.ch == '\ufeff':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for l.ch != 0 && !(l.ch == '*' && l.peekChar() == '/') {
				if l.ch == '\n' {
					sawNewline = true
					l.readChar()
					l.newline()
					continue
				}
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar()
				l.readChar()
			}
		default:
			return sawNewline
		}
	}
}

func (l *Lexer) NextToken() token.Token {
	nl := l.skipTrivia()
	start := l.here()

	var tok token.Token
	switch {
	case l.ch == 0:
		tok = token.Token{Type: token.EOF}
	case l.ch == '"' || l.ch == '\'':
		tok = l.readString()
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		tok = l.readNumber()
	case isIdentStart(l.ch):
		tok = l.readIdentifier()
	default:
		tok = l.readPunctuator()
	}

	tok.Pos = start
	tok.End = l.here()
	tok.NewlineBefore = nl
	if tok.Raw == "" && tok.Type != token.EOF {
		tok.Raw = l.input[start.Offset:l.pos]
	}
	return tok
}

func (l *Lexer) readPunctuator() token.Token {
	rest := l.input[l.pos:]
	for _, p := range token.Punctuators {
		if strings.HasPrefix(rest, p) {
			for range p {
				l.readChar()
			}
			return token.Token{Type: token.Punctuator, Literal: p}
		}
	}
	ch := l.ch
	l.readChar()
	switch ch {
	case '`':
		return token.Token{Type: token.Illegal, Literal: "template literals are not supported"}
	case '#':
		return token.Token{Type: token.Illegal, Literal: "private names are not supported"}
	}
	return token.Token{Type: token.Illegal, Literal: "unexpected character " + string(ch)}
}

func (l *Lexer) readIdentifier() token.Token {
	start := l.pos
	for isIdentPart(l.ch) {
		l.readChar()
	}
	word := l.input[start:l.pos]
	return token.Token{Type: token.LookupIdentifier(word), Literal: word}
}

func (l *Lexer) readString() token.Token {
	quote := l.ch
	l.readChar() // skip opening quote
	var buf strings.Builder

	for l.ch != quote {
		switch l.ch {
		case 0, '\n':
			return token.Token{Type: token.Illegal, Literal: "unterminated string"}
		case '\\':
			l.readChar()
			if !l.readEscape(&buf) {
				return token.Token{Type: token.Illegal, Literal: "invalid escape sequence"}
			}
			continue
		}
		buf.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // skip closing quote
	return token.Token{Type: token.String, Literal: buf.String()}
}

// readEscape decodes the escape whose first character is l.ch and leaves the lexer on
// the character after it.
func (l *Lexer) readEscape(buf *strings.Builder) bool {
	switch l.ch {
	case 'n':
		buf.WriteByte('\n')
	case 'r':
		buf.WriteByte('\r')
	case 't':
		buf.WriteByte('\t')
	case 'b':
		buf.WriteByte('\b')
	case 'f':
		buf.WriteByte('\f')
	case 'v':
		buf.WriteByte('\v')
	case '0':
		if isDigit(l.peekChar()) {
			return false
		}
		buf.WriteByte(0)
	case 'x':
		l.readChar()
		hi := hexVal(l.ch)
		l.readChar()
		lo := hexVal(l.ch)
		if hi < 0 || lo < 0 {
			return false
		}
		buf.WriteRune(rune(hi*16 + lo))
	case 'u':
		l.readChar()
		r, ok := l.readUnicodeEscape()
		if !ok {
			return false
		}
		buf.WriteRune(r)
		return true
	case '\r':
		if l.peekChar() == '\n' {
			l.readChar()
		}
		l.readChar()
		l.newline()
		return true
	case '\n':
		// line continuation
		l.readChar()
		l.newline()
		return true
	case 0:
		return false
	default:
		buf.WriteRune(l.ch)
	}
	l.readChar()
	return true
}

// readUnicodeEscape reads XXXX or {X...} after "\u".
func (l *Lexer) readUnicodeEscape() (rune, bool) {
	val := 0
	if l.ch == '{' {
		l.readChar()
		digits := 0
		for l.ch != '}' {
			h := hexVal(l.ch)
			if h < 0 {
				return 0, false
			}
			val = val*16 + h
			digits++
			l.readChar()
		}
		l.readChar()
		if digits == 0 || val > unicode.MaxRune {
			return 0, false
		}
		return rune(val), true
	}
	for i := 0; i < 4; i++ {
		h := hexVal(l.ch)
		if h < 0 {
			return 0, false
		}
		val = val*16 + h
		l.readChar()
	}
	return rune(val), true
}

func (l *Lexer) readNumber() token.Token {
	start := l.pos

	if l.ch == '0' {
		var valid func(rune) bool
		switch l.peekChar() {
		case 'x', 'X':
			valid = isHexDigit
		case 'o', 'O':
			valid = isOctalDigit
		case 'b', 'B':
			valid = func(ch rune) bool { return ch == '0' || ch == '1' }
		}
		if valid != nil {
			l.readChar() // 0
			l.readChar() // radix letter
			if !valid(l.ch) {
				return token.Token{Type: token.Illegal, Literal: "invalid number literal"}
			}
			for valid(l.ch) || l.ch == '_' {
				l.readChar()
			}
			return l.finishNumber(start)
		}
	}

	l.readDecimalDigits()
	if l.ch == '.' {
		l.readChar()
		l.readDecimalDigits()
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			return token.Token{Type: token.Illegal, Literal: "invalid number literal"}
		}
		l.readDecimalDigits()
	}
	return l.finishNumber(start)
}

func (l *Lexer) finishNumber(start int) token.Token {
	if l.ch == 'n' {
		l.readChar()
		return token.Token{Type: token.Illegal, Literal: "bigint literals are not supported"}
	}
	if isIdentStart(l.ch) {
		return token.Token{Type: token.Illegal, Literal: "identifier starts immediately after number"}
	}
	return token.Token{Type: token.Number, Literal: l.input[start:l.pos]}
}

func (l *Lexer) readDecimalDigits() {
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
}

// Tokenize returns all tokens from the input, ending with EOF or the first Illegal token.
func Tokenize(input string) []token.Token {
	l := New(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF || tok.Type == token.Illegal {
			break
		}
	}
	return tokens
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return hexVal(ch) >= 0
}

func isOctalDigit(ch rune) bool {
	return ch >= '0' && ch <= '7'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch > 127 && unicode.IsLetter(ch))
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '\u200c' || ch == '\u200d'
}

func hexVal(ch rune) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10
	default:
		return -1
	}
}
