package parser

import (
	"fmt"

	"lina/token"
)

// SyntaxError is the single error kind the parser raises, whether for a
// grammar violation or a type error — the parser is the only place type
// errors are reported.
type SyntaxError struct {
	Pos token.Pos
	Msg string
}

func NewSyntaxError(pos token.Pos, msg string) SyntaxError {
	return SyntaxError{Pos: pos, Msg: msg}
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("Erro Sintático: %s\n%d:%d", e.Msg, e.Pos.Row, e.Pos.Col)
}
