package compiler

// This file implements the Compiler, which compiles a typed AST directly to
// bytecode in a single pass: no intermediate representation, no optimizer.

import (
	"fmt"

	"lina/ast"
	"lina/token"
)

// Compiler is a visitor that lowers a typed ast.Program to Bytecode. It
// implements both ast.ExpressionVisitor and ast.StmtVisitor.
type Compiler struct {
	bytecode Bytecode
	scopes   []map[string]int
	nextSlot int
}

// New creates a Compiler ready to compile a single Program.
func New() *Compiler {
	return &Compiler{}
}

// Compile lowers prog to a complete Bytecode artifact terminated by HALT.
// The compiler never fails on well-typed input; a CodeError panic raised by
// one of its invariant checks indicates a type-checker bug, not a user
// error, and is returned as the error. Any other panic propagates.
func Compile(prog ast.Program) (b Bytecode, err error) {
	c := New()
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(CodeError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()

	c.compileBlock(prog.Block)
	c.emit(HALT)
	return c.bytecode, nil
}

func (c *Compiler) pushScope() { c.scopes = append(c.scopes, map[string]int{}) }

func (c *Compiler) popScope() {
	top := c.scopes[len(c.scopes)-1]
	c.nextSlot -= len(top)
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// declare allocates the next slot for name in the current scope.
func (c *Compiler) declare(name string) int {
	slot := c.nextSlot
	c.nextSlot++
	c.scopes[len(c.scopes)-1][name] = slot
	return slot
}

func (c *Compiler) resolve(name string) (int, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if slot, ok := c.scopes[i][name]; ok {
			return slot, true
		}
	}
	return 0, false
}

func (c *Compiler) slotOf(name string) int64 {
	slot, ok := c.resolve(name)
	if !ok {
		panic(CodeError{Msg: fmt.Sprintf("variável não resolvida: %s", name)})
	}
	return int64(slot)
}

// compileBlock pushes a fresh scope, compiles each statement in order, then
// pops the scope and recycles the slots it allocated.
func (c *Compiler) compileBlock(blk ast.Block) {
	c.pushScope()
	for _, stmt := range blk.Statements {
		stmt.Accept(c)
	}
	c.popScope()
}

func (c *Compiler) emit(op Opcode, operand ...int64) {
	var o int64
	if len(operand) > 0 {
		o = operand[0]
	}
	c.bytecode.Instructions = append(c.bytecode.Instructions, MakeInstruction(op, o)...)
}

// addConstant appends value to the pool, deduplicating by structural
// equality, and emits CONST with the resulting index.
func (c *Compiler) addConstant(value any) {
	for i, existing := range c.bytecode.Constants {
		if existing == value {
			c.emit(CONST, int64(i))
			return
		}
	}
	c.bytecode.Constants = append(c.bytecode.Constants, value)
	c.emit(CONST, int64(len(c.bytecode.Constants)-1))
}

// emitPlaceholderJump emits a jump with a zero placeholder operand and
// returns the byte position of the instruction, to be passed to patchJump.
func (c *Compiler) emitPlaceholderJump(op Opcode) int {
	pos := len(c.bytecode.Instructions)
	c.emit(op, 0)
	return pos
}

// patchJump overwrites the placeholder at pos with the PC-relative distance
// from just past the operand to the current (forward) position.
func (c *Compiler) patchJump(pos int) {
	target := len(c.bytecode.Instructions)
	afterOperand := pos + InstructionWidth(Opcode(c.bytecode.Instructions[pos]))
	PatchOperand(c.bytecode.Instructions, pos, int64(target-afterOperand))
}

// emitJumpBack emits a jump whose PC-relative offset targets an
// already-known, earlier position (a loop's condition re-check).
func (c *Compiler) emitJumpBack(op Opcode, targetPos int) {
	pos := len(c.bytecode.Instructions)
	afterOperand := pos + InstructionWidth(op)
	c.bytecode.Instructions = append(c.bytecode.Instructions, MakeInstruction(op, int64(targetPos-afterOperand))...)
}

// --- statements --------------------------------------------------------

func (c *Compiler) VisitAssign(a ast.Assign) any {
	a.Expr.Accept(c)
	slot := c.declare(a.Name.Lexeme)
	c.emit(STORE, int64(slot))
	return nil
}

func (c *Compiler) VisitIf(i ast.If) any {
	i.Cond.Accept(c)
	jmpFalse := c.emitPlaceholderJump(JMPF)
	c.compileBlock(i.Block)
	c.patchJump(jmpFalse)
	return nil
}

func (c *Compiler) VisitWhile(w ast.While) any {
	loopStart := len(c.bytecode.Instructions)
	w.Cond.Accept(c)
	jmpFalse := c.emitPlaceholderJump(JMPF)
	c.compileBlock(w.Block)
	c.emitJumpBack(JMP, loopStart)
	c.patchJump(jmpFalse)
	return nil
}

// VisitFor lowers 'para' to a counted loop: init, bounds check, body,
// increment, jump back. When the limit expression is Boolean-typed, the LE
// bounds check is skipped and the loop runs 'while limit' instead, letting
// 'para' double as a conditional loop.
func (c *Compiler) VisitFor(f ast.For) any {
	slot, exists := c.resolve(f.Name.Lexeme)
	if !exists {
		slot = c.declare(f.Name.Lexeme)
	}

	start := int32(0)
	if f.Start != nil {
		start = f.Start.Value.(int32)
	}
	c.addConstant(start)
	c.emit(STORE, int64(slot))

	loopStart := len(c.bytecode.Instructions)

	if f.Limit.GetType() == ast.Boolean {
		f.Limit.Accept(c)
	} else {
		c.emit(LOAD, int64(slot))
		f.Limit.Accept(c)
		c.emit(LE)
	}
	jmpFalse := c.emitPlaceholderJump(JMPF)

	c.compileBlock(f.Block)

	step := int32(1)
	if f.Step != nil {
		step = f.Step.Value.(int32)
	}
	c.emit(LOAD, int64(slot))
	c.addConstant(step)
	c.emit(ADD)
	c.emit(STORE, int64(slot))

	c.emitJumpBack(JMP, loopStart)
	c.patchJump(jmpFalse)
	return nil
}

func (c *Compiler) VisitExprStmt(e ast.ExprStmt) any {
	e.Expr.Accept(c)
	if e.Expr.GetType() != ast.Void {
		c.emit(POP)
	}
	return nil
}

// --- expressions ---------------------------------------------------------

func (c *Compiler) VisitLiteral(l ast.Literal) any {
	c.addConstant(l.Value)
	return nil
}

func (c *Compiler) VisitIdentifier(i ast.Identifier) any {
	c.emit(LOAD, c.slotOf(i.Name.Lexeme))
	return nil
}

// VisitBinOp compiles both ordinary binary operators and assignment
// expressions: token.IsAssignOp distinguishes the two. An assignment's Rhs
// already embeds the full "lhs op rhs" computation for compound operators
// (the parser desugars it that way), so compiling Rhs alone and DUP/STORE-ing
// the result handles := and += alike without special-casing the two here.
func (c *Compiler) VisitBinOp(b ast.BinOp) any {
	if token.IsAssignOp(b.Operator.TokenType) {
		b.Rhs.Accept(c)
		c.emit(DUP)
		ident := b.Lhs.(ast.Identifier)
		c.emit(STORE, c.slotOf(ident.Name.Lexeme))
		return nil
	}

	b.Lhs.Accept(c)
	b.Rhs.Accept(c)

	switch b.Operator.TokenType {
	case token.ADD:
		c.emit(ADD)
	case token.SUB:
		c.emit(SUB)
	case token.MUL:
		c.emit(MUL)
	case token.DIV:
		c.emit(DIV)
	case token.MOD:
		c.emit(REM)
	case token.EXP:
		c.emit(EXP)
	case token.E:
		c.emit(AND)
	case token.OU:
		c.emit(OR)
	case token.EQUAL:
		c.emit(EQ)
	case token.NOT_EQUAL:
		c.emit(NE)
	case token.LESS:
		c.emit(LT)
	case token.GREATER:
		c.emit(GT)
	case token.LESS_EQUAL:
		c.emit(LE)
	case token.GREATER_EQUAL:
		c.emit(GE)
	default:
		panic(CodeError{Msg: fmt.Sprintf("operador desconhecido: %s", b.Operator.Lexeme)})
	}
	return nil
}

func (c *Compiler) VisitCast(cast ast.Cast) any {
	cast.Inner.Accept(c)
	switch cast.Target {
	case ast.Integer:
		c.emit(CASTI)
	case ast.Real:
		c.emit(CASTF)
	case ast.Text:
		c.emit(CASTS)
	default:
		panic(CodeError{Msg: "alvo de cast inválido"})
	}
	return nil
}

// VisitCall lowers the two predefined built-ins. saida writes each argument
// followed by a trailing newline; entrada reads into each argument (which
// the parser has already guaranteed is an Identifier) using the opcode that
// matches its declared type.
func (c *Compiler) VisitCall(call ast.Call) any {
	switch call.Name.Lexeme {
	case "saida":
		for _, arg := range call.Args {
			arg.Accept(c)
			c.emit(WRITE)
		}
		c.addConstant("\n")
		c.emit(WRITE)
	case "entrada":
		for _, arg := range call.Args {
			ident := arg.(ast.Identifier)
			switch ident.Typ {
			case ast.Integer:
				c.emit(READI)
			case ast.Real:
				c.emit(READF)
			default:
				c.emit(READL)
			}
			c.emit(STORE, c.slotOf(ident.Name.Lexeme))
		}
	default:
		panic(CodeError{Msg: fmt.Sprintf("chamada desconhecida: %s", call.Name.Lexeme)})
	}
	return nil
}
