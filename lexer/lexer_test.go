package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/jseval/token"
)

type tok struct {
	typ token.TokenType
	lit string
}

func scan(input string) []tok {
	var out []tok
	for _, t := range Tokenize(input) {
		out = append(out, tok{t.Type, t.Literal})
	}
	return out
}

func TestPunctuators(t *testing.T) {
	assert.Equal(t, []tok{
		{token.Punctuator, "("},
		{token.Punctuator, ")"},
		{token.Punctuator, "{"},
		{token.Punctuator, "}"},
		{token.Punctuator, "..."},
		{token.Punctuator, ">>>="},
		{token.Punctuator, "==="},
		{token.Punctuator, "**"},
		{token.Punctuator, "=>"},
		{token.Punctuator, "??="},
		{token.Punctuator, "."},
		{token.EOF, ""},
	}, scan(`( ) { } ... >>>= === ** => ??= .`))
}

func TestLongestMatch(t *testing.T) {
	assert.Equal(t, []tok{
		{token.Identifier, "a"},
		{token.Punctuator, "++"},
		{token.Punctuator, "+"},
		{token.Identifier, "b"},
		{token.EOF, ""},
	}, scan(`a+++b`))
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	assert.Equal(t, []tok{
		{token.Keyword, "let"},
		{token.Identifier, "of"},
		{token.Identifier, "async"},
		{token.Keyword, "function"},
		{token.Identifier, "$x_1"},
		{token.Identifier, "café"},
		{token.EOF, ""},
	}, scan(`let of async function $x_1 café`))
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		lit   string
	}{
		{"42", "42"},
		{"3.14", "3.14"},
		{".5", ".5"},
		{"1e10", "1e10"},
		{"2.5E-3", "2.5E-3"},
		{"0xFF", "0xFF"},
		{"0o17", "0o17"},
		{"0b101", "0b101"},
		{"1_000", "1_000"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := Tokenize(tt.input)
			require.Len(t, toks, 2)
			assert.Equal(t, token.Number, toks[0].Type)
			assert.Equal(t, tt.lit, toks[0].Literal)
		})
	}
}

func TestInvalidNumbers(t *testing.T) {
	for _, input := range []string{"0x", "1e", "10n", "3in"} {
		toks := Tokenize(input)
		last := toks[len(toks)-1]
		assert.Equal(t, token.Illegal, last.Type, input)
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"hello"`, "hello"},
		{`'single'`, "single"},
		{`"a\nb\tc"`, "a\nb\tc"},
		{`"quote \" inside"`, `quote " inside`},
		{`"\x41B\u{43}"`, "ABC"},
		{`"é"`, "é"},
		{"\"line\\\ncontinued\"", "linecontinued"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := Tokenize(tt.input)
			require.Len(t, toks, 2)
			assert.Equal(t, token.String, toks[0].Type)
			assert.Equal(t, tt.want, toks[0].Literal)
			assert.Equal(t, tt.input, toks[0].Raw)
		})
	}
}

func TestUnterminatedString(t *testing.T) {
	toks := Tokenize(`"abc`)
	assert.Equal(t, token.Illegal, toks[len(toks)-1].Type)
	assert.Equal(t, "unterminated string", toks[len(toks)-1].Literal)
}

func TestComments(t *testing.T) {
	assert.Equal(t, []tok{
		{token.Identifier, "a"},
		{token.Identifier, "b"},
		{token.Identifier, "c"},
		{token.EOF, ""},
	}, scan("a // line comment\nb /* block\ncomment */ c"))
}

func TestNewlineBefore(t *testing.T) {
	toks := Tokenize("a\nb /* x\n */ c d")
	require.Len(t, toks, 5)
	assert.False(t, toks[0].NewlineBefore)
	assert.True(t, toks[1].NewlineBefore)
	assert.True(t, toks[2].NewlineBefore)
	assert.False(t, toks[3].NewlineBefore)
}

func TestPositions(t *testing.T) {
	toks := Tokenize("let x\n  = 10")
	require.Len(t, toks, 5)
	assert.Equal(t, token.Pos{Offset: 0, Line: 1, Column: 1}, toks[0].Pos)
	assert.Equal(t, token.Pos{Offset: 4, Line: 1, Column: 5}, toks[1].Pos)
	assert.Equal(t, token.Pos{Offset: 8, Line: 2, Column: 3}, toks[2].Pos)
	assert.Equal(t, token.Pos{Offset: 10, Line: 2, Column: 5}, toks[3].Pos)
	assert.Equal(t, 12, toks[3].End.Offset)
}

func TestUnsupportedCharacters(t *testing.T) {
	toks := Tokenize("`tpl`")
	require.Len(t, toks, 1)
	assert.Equal(t, token.Illegal, toks[0].Type)
	assert.Contains(t, toks[0].Literal, "template")
}
