// statements.go contains all the statement AST nodes. A statement node
// does not itself produce a stack value (ExprStmt discards its
// expression's result unless that expression is Void).

package ast

import "lina/token"

// Assign is a declaration statement (seja/inteiro/real/texto/booleano)
// that introduces a new binding into the current scope.
type Assign struct {
	Pos         token.Pos
	DeclaredTyp Type
	Name        token.Token
	Expr        Expression // nil when no initializer was given
}

func (a Assign) Accept(v StmtVisitor) any { return v.VisitAssign(a) }

// If is `se cond entao block fim`.
type If struct {
	Cond  Expression
	Block Block
}

func (i If) Accept(v StmtVisitor) any { return v.VisitIf(i) }

// While is `enquanto cond repetir block fim`.
type While struct {
	Cond  Expression
	Block Block
}

func (w While) Accept(v StmtVisitor) any { return v.VisitWhile(w) }

// For is `para name [:= start] ate limit [incremento step] repetir block fim`.
// Start and Step default to integer 0 and 1 respectively when nil.
type For struct {
	Name  token.Token
	Start *Literal
	Limit Expression
	Step  *Literal
	Block Block
}

func (f For) Accept(v StmtVisitor) any { return v.VisitFor(f) }

// ExprStmt is a bare expression used as a statement (e.g. a call to
// saida/entrada, or a standalone assignment expression).
type ExprStmt struct {
	Expr Expression
}

func (e ExprStmt) Accept(v StmtVisitor) any { return v.VisitExprStmt(e) }

// Block is an ordered sequence of statements. A block opens a fresh scope
// when compiled; bindings introduced inside it are visible only until the
// block closes.
type Block struct {
	Statements []Stmt
}

// Program is the top-level `programa <name> ... fim` unit.
type Program struct {
	Name  string
	Block Block
}
