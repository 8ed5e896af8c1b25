package lexer

import (
	"fmt"

	"lina/token"
)

// LexicalError is the single error kind the lexer can raise. The lexer
// stops at the first offending byte and returns exactly one LexicalError;
// it never attempts to resynchronize.
type LexicalError struct {
	Pos token.Pos
	Msg string
}

func (e LexicalError) Error() string {
	return fmt.Sprintf("Erro Léxico: %s\n%d:%d", e.Msg, e.Pos.Row, e.Pos.Col)
}
