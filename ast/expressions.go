// expressions.go contains all the expression AST nodes. Every expression
// node carries its own inferred Type, per the invariant that a node's
// stored type equals the type its evaluation pushes on the VM's operand
// stack.

package ast

import (
	"lina/token"
)

// Literal represents a literal value in the source code (integer, real,
// text, or boolean).
type Literal struct {
	Value any
	Typ   Type
	Pos   token.Pos
}

func (l Literal) Accept(v ExpressionVisitor) any { return v.VisitLiteral(l) }
func (l Literal) GetType() Type                  { return l.Typ }

// Identifier represents a reference to a previously declared binding.
type Identifier struct {
	Name token.Token
	Typ  Type
}

func (i Identifier) Accept(v ExpressionVisitor) any { return v.VisitIdentifier(i) }
func (i Identifier) GetType() Type                  { return i.Typ }

// BinOp represents a binary operation expression (e.g. "a + b"). Children
// are exclusively owned; Typ is the result type after the implicit-cast
// rules in the type checker have been applied.
type BinOp struct {
	Operator token.Token
	Lhs      Expression
	Rhs      Expression
	Typ      Type
}

func (b BinOp) Accept(v ExpressionVisitor) any { return v.VisitBinOp(b) }
func (b BinOp) GetType() Type                  { return b.Typ }

// Cast is inserted by the parser to widen or stringify an operand under
// the implicit-coercion rules; it is never written by the user.
type Cast struct {
	Inner  Expression
	Target Type
}

func (c Cast) Accept(v ExpressionVisitor) any { return v.VisitCast(c) }
func (c Cast) GetType() Type                  { return c.Target }

// Call represents an invocation of one of the predefined built-ins
// (saida, entrada); Lina has no user-defined functions.
type Call struct {
	Name   token.Token
	Args   []Expression
	RetTyp Type
}

func (c Call) Accept(v ExpressionVisitor) any { return v.VisitCall(c) }
func (c Call) GetType() Type                  { return c.RetTyp }
