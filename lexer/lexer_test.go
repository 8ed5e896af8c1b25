package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lina/token"
)

func tokenTypes(tokens []token.Token) []token.TokenType {
	types := make([]token.TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.TokenType
	}
	return types
}

func TestScanKeywordsAndIdentifier(t *testing.T) {
	tokens, err := New("programa ola\n    seja x := 1\nfim").Scan()
	assert.NoError(t, err)
	assert.Equal(t, []token.TokenType{
		token.PROGRAMA, token.IDENTIFIER,
		token.SEJA, token.IDENTIFIER, token.ASSIGN, token.INTEGER,
		token.FIM, token.EOF,
	}, tokenTypes(tokens))
}

func TestScanOperators(t *testing.T) {
	tokens, err := New(":= + - * / % ^ += -= *= /= %= ^= = <> < <= > >=").Scan()
	assert.NoError(t, err)
	want := []token.TokenType{
		token.ASSIGN, token.ADD, token.SUB, token.MUL, token.DIV, token.MOD, token.EXP,
		token.ADD_ASSIGN, token.SUB_ASSIGN, token.MUL_ASSIGN, token.DIV_ASSIGN, token.MOD_ASSIGN, token.EXP_ASSIGN,
		token.EQUAL, token.NOT_EQUAL, token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL,
		token.EOF,
	}
	assert.Equal(t, want, tokenTypes(tokens))
}

func TestScanIntegerLiteral(t *testing.T) {
	tokens, err := New("2147483647").Scan()
	assert.NoError(t, err)
	assert.Equal(t, int32(2147483647), tokens[0].Literal)
}

func TestScanIntegerOverflow(t *testing.T) {
	_, err := New("2147483648").Scan()
	assert.Error(t, err)
}

func TestScanDecimalLiteral(t *testing.T) {
	tokens, err := New("5.0").Scan()
	assert.NoError(t, err)
	assert.Equal(t, token.DECIMAL, tokens[0].TokenType)
	assert.Equal(t, float32(5.0), tokens[0].Literal)
}

func TestScanTrailingDotIsError(t *testing.T) {
	_, err := New("5.").Scan()
	assert.Error(t, err)
}

func TestScanLeadingDotIsOperatorError(t *testing.T) {
	_, err := New(".5").Scan()
	assert.Error(t, err)
}

func TestScanStringLiteral(t *testing.T) {
	tokens, err := New(`"ola, mundo!"`).Scan()
	assert.NoError(t, err)
	assert.Equal(t, token.TEXT, tokens[0].TokenType)
	assert.Equal(t, "ola, mundo!", tokens[0].Literal)
}

func TestScanUnterminatedString(t *testing.T) {
	_, err := New(`"ola`).Scan()
	assert.Error(t, err)
	var lexErr LexicalError
	assert.ErrorAs(t, err, &lexErr)
}

func TestScanBooleanLiterals(t *testing.T) {
	tokens, err := New("verdadeiro falso").Scan()
	assert.NoError(t, err)
	assert.Equal(t, true, tokens[0].Literal)
	assert.Equal(t, false, tokens[1].Literal)
}

func TestScanComment(t *testing.T) {
	tokens, err := New("seja x := 1 # isto é um comentário\nfim").Scan()
	assert.NoError(t, err)
	assert.Equal(t, []token.TokenType{
		token.SEJA, token.IDENTIFIER, token.ASSIGN, token.INTEGER, token.FIM, token.EOF,
	}, tokenTypes(tokens))
}

func TestScanEmptyBlockAfterEntao(t *testing.T) {
	tokens, err := New("se verdadeiro entao\nfim").Scan()
	assert.NoError(t, err)
	assert.Equal(t, []token.TokenType{
		token.SE, token.VERDADEIRO, token.ENTAO, token.FIM, token.EOF,
	}, tokenTypes(tokens))
}

func TestScanPositions(t *testing.T) {
	tokens, err := New("seja\nx").Scan()
	assert.NoError(t, err)
	assert.Equal(t, 1, tokens[0].Pos.Row)
	assert.Equal(t, 2, tokens[1].Pos.Row)
}
