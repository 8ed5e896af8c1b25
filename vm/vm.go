// Package vm executes compiler.Bytecode against an operand stack and a
// slot-indexed local store, in both run-to-halt and cooperative-step
// modes.
package vm

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode/utf8"

	"lina/compiler"
)

// VmState is the inspection result RunSingle returns: what the VM is
// about to do if stepped again.
type VmState int

const (
	Idle VmState = iota
	Executing
	WillRead
	WillWrite
)

func (s VmState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Executing:
		return "executing"
	case WillRead:
		return "will-read"
	case WillWrite:
		return "will-write"
	default:
		return fmt.Sprintf("VmState(%d)", int(s))
	}
}

// VM is a stack-based interpreter for compiler.Bytecode. The operand
// stack holds intermediate expression results; the local store is a
// separate, independently sized slice addressed by LOAD/STORE slot
// indices. This split (rather than the single shared array the Rust
// original uses) follows from the two stores having different
// lifecycles: the operand stack empties between statements, the local
// store persists for the program's whole run.
type VM struct {
	instructions compiler.Instructions
	constants    []any
	pc           int
	stack        Stack
	locals       []any

	in  io.Reader
	out io.Writer
}

// New creates a VM bound to the given input source and output sink; call
// Start to load a program before running it.
func New(in io.Reader, out io.Writer) *VM {
	return &VM{in: in, out: out}
}

// Start loads bc for execution, resetting the program counter, operand
// stack, and local store.
func (vm *VM) Start(bc compiler.Bytecode) {
	vm.instructions = bc.Instructions
	vm.constants = bc.Constants
	vm.pc = 0
	vm.stack = nil
	vm.locals = nil
}

// Reset clears the program counter and operand stack but preserves the
// local store: the host may call this after a RuntimeError and resume
// with the same bindings still in place.
func (vm *VM) Reset() {
	vm.pc = 0
	vm.stack = nil
}

func (vm *VM) push(v any) { vm.stack.Push(v) }

func (vm *VM) pop() any {
	v, ok := vm.stack.Pop()
	if !ok {
		panic("pilha de operandos vazia")
	}
	return v
}

func (vm *VM) load(slot int) any {
	if slot >= len(vm.locals) {
		return nil
	}
	return vm.locals[slot]
}

func (vm *VM) store(slot int, v any) {
	if slot >= len(vm.locals) {
		grown := make([]any, slot+1)
		copy(grown, vm.locals)
		vm.locals = grown
	}
	vm.locals[slot] = v
}

// RunToHalt drives RunSingle until the VM reports Idle, i.e. the
// instruction it is about to process is HALT.
func (vm *VM) RunToHalt() error {
	for {
		state, err := vm.RunSingle()
		if err != nil {
			return err
		}
		if state == Idle {
			return nil
		}
	}
}

// RunSingle executes exactly one instruction and reports what running
// again would do next, by inspecting the instruction now under the
// program counter: WillWrite/WillRead if it is WRITE/READ*, Executing
// otherwise. When the current instruction is itself HALT, nothing is
// executed and Idle is reported directly instead — repeated calls after
// halting are idempotent.
func (vm *VM) RunSingle() (VmState, error) {
	op := compiler.Opcode(vm.instructions[vm.pc])
	if op == compiler.HALT {
		return Idle, nil
	}

	def, err := compiler.Get(op)
	if err != nil {
		return Executing, CodeError{Msg: err.Error()}
	}

	width := compiler.InstructionWidth(op)
	var operand int64
	if def.HasOperand {
		operand = compiler.ReadOperand(vm.instructions[vm.pc:])
	}
	nextPC := vm.pc + width

	switch op {
	case compiler.CONST:
		vm.push(vm.constants[operand])
	case compiler.DUP:
		top := vm.pop()
		vm.push(top)
		vm.push(top)
	case compiler.POP:
		vm.pop()
	case compiler.CASTI:
		iv, err := toInt32(vm.pop())
		if err != nil {
			return Executing, err
		}
		vm.push(iv)
	case compiler.CASTF:
		fv, err := toFloat32(vm.pop())
		if err != nil {
			return Executing, err
		}
		vm.push(fv)
	case compiler.CASTS:
		vm.push(stringOf(vm.pop()))
	case compiler.ADD, compiler.SUB, compiler.MUL, compiler.DIV, compiler.REM, compiler.EXP,
		compiler.OR, compiler.AND, compiler.EQ, compiler.NE, compiler.LT, compiler.GT, compiler.LE, compiler.GE:
		if err := vm.binop(op); err != nil {
			return Executing, err
		}
	case compiler.JMP:
		nextPC = vm.pc + width + int(operand)
	case compiler.JMPT:
		cond, err := toBool(vm.pop())
		if err != nil {
			return Executing, err
		}
		if cond {
			nextPC = vm.pc + width + int(operand)
		}
	case compiler.JMPF:
		cond, err := toBool(vm.pop())
		if err != nil {
			return Executing, err
		}
		if !cond {
			nextPC = vm.pc + width + int(operand)
		}
	case compiler.LOAD:
		vm.push(vm.load(int(operand)))
	case compiler.STORE:
		vm.store(int(operand), vm.pop())
	case compiler.WRITE:
		if _, err := io.WriteString(vm.out, stringOf(vm.pop())); err != nil {
			return Executing, newIoError(err)
		}
	case compiler.READL:
		s, err := vm.read([]byte{'\n'})
		if err != nil {
			return Executing, err
		}
		vm.push(s)
	case compiler.READI:
		s, err := vm.read([]byte{'\n', '\t', ' '})
		if err != nil {
			return Executing, err
		}
		n, perr := strconv.ParseInt(s, 10, 32)
		if perr != nil {
			return Executing, newParseError(perr)
		}
		vm.push(int32(n))
	case compiler.READF:
		s, err := vm.read([]byte{'\n', '\t', ' '})
		if err != nil {
			return Executing, err
		}
		f, perr := strconv.ParseFloat(s, 32)
		if perr != nil {
			return Executing, newParseError(perr)
		}
		vm.push(float32(f))
	default:
		return Executing, CodeError{Msg: fmt.Sprintf("opcode não executável: %s", def.Name)}
	}

	vm.pc = nextPC

	next := compiler.Opcode(vm.instructions[vm.pc])
	switch next {
	case compiler.WRITE:
		return WillWrite, nil
	case compiler.READL, compiler.READI, compiler.READF:
		return WillRead, nil
	default:
		return Executing, nil
	}
}

// read consumes bytes from the input source until one of stop is seen or
// EOF is reached; the stop byte itself is discarded, not returned.
func (vm *VM) read(stop []byte) (string, error) {
	var buf []byte
	one := make([]byte, 1)
	for {
		n, err := vm.in.Read(one)
		if n > 0 {
			b := one[0]
			if bytes.IndexByte(stop, b) >= 0 {
				break
			}
			buf = append(buf, b)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", newIoError(err)
		}
	}
	if !utf8.Valid(buf) {
		return "", newFromUtf8Error("entrada não é utf-8 válida")
	}
	return string(buf), nil
}

// binop pops rhs then lhs and pushes the result of applying op, dispatch
// on lhs's runtime tag; rhs coerces to match it. Comparisons and
// equality are the exception: EQ/NE compare any two tags (cross-tag
// comparisons are simply unequal), while ordered comparisons and
// arithmetic require rhs to coerce to lhs's tag or raise a TypeError.
func (vm *VM) binop(op compiler.Opcode) error {
	rhs := vm.pop()
	lhs := vm.pop()

	switch op {
	case compiler.ADD:
		switch l := lhs.(type) {
		case int32:
			r, err := toInt32(rhs)
			if err != nil {
				return err
			}
			vm.push(l + r)
		case float32:
			r, err := toFloat32(rhs)
			if err != nil {
				return err
			}
			vm.push(l + r)
		case string:
			vm.push(l + stringOf(rhs))
		default:
			return newTypeError(fmt.Sprintf("operação + não implementada para %s", typeName(lhs)))
		}

	case compiler.SUB:
		switch l := lhs.(type) {
		case int32:
			r, err := toInt32(rhs)
			if err != nil {
				return err
			}
			vm.push(l - r)
		case float32:
			r, err := toFloat32(rhs)
			if err != nil {
				return err
			}
			vm.push(l - r)
		default:
			return newTypeError(fmt.Sprintf("operação - não implementada para %s", typeName(lhs)))
		}

	case compiler.MUL:
		switch l := lhs.(type) {
		case int32:
			r, err := toInt32(rhs)
			if err != nil {
				return err
			}
			vm.push(l * r)
		case float32:
			r, err := toFloat32(rhs)
			if err != nil {
				return err
			}
			vm.push(l * r)
		default:
			return newTypeError(fmt.Sprintf("operação * não implementada para %s", typeName(lhs)))
		}

	case compiler.DIV:
		switch l := lhs.(type) {
		case int32:
			r, err := toInt32(rhs)
			if err != nil {
				return err
			}
			vm.push(l / r)
		case float32:
			r, err := toFloat32(rhs)
			if err != nil {
				return err
			}
			vm.push(l / r)
		default:
			return newTypeError(fmt.Sprintf("operação / não implementada para %s", typeName(lhs)))
		}

	case compiler.REM:
		l, ok := lhs.(int32)
		if !ok {
			return newTypeError(fmt.Sprintf("operação %% não implementada para %s", typeName(lhs)))
		}
		r, err := toInt32(rhs)
		if err != nil {
			return err
		}
		vm.push(l % r)

	case compiler.EXP:
		switch l := lhs.(type) {
		case int32:
			switch r := rhs.(type) {
			case int32:
				if r >= 0 {
					vm.push(intPow(l, r))
				} else {
					vm.push(float32(math.Pow(float64(l), float64(r))))
				}
			case float32:
				vm.push(float32(math.Pow(float64(l), float64(r))))
			default:
				return newTypeError(fmt.Sprintf("operação ^ não implementada para %s", typeName(rhs)))
			}
		case float32:
			r, err := toFloat32(rhs)
			if err != nil {
				return err
			}
			vm.push(float32(math.Pow(float64(l), float64(r))))
		default:
			return newTypeError(fmt.Sprintf("operação ^ não implementada para %s", typeName(lhs)))
		}

	case compiler.OR:
		switch l := lhs.(type) {
		case int32:
			r, err := toInt32(rhs)
			if err != nil {
				return err
			}
			vm.push(l | r)
		case bool:
			r, err := toBool(rhs)
			if err != nil {
				return err
			}
			vm.push(l || r)
		default:
			return newTypeError(fmt.Sprintf("operação ou não implementada para %s", typeName(lhs)))
		}

	case compiler.AND:
		switch l := lhs.(type) {
		case int32:
			r, err := toInt32(rhs)
			if err != nil {
				return err
			}
			vm.push(l & r)
		case bool:
			r, err := toBool(rhs)
			if err != nil {
				return err
			}
			vm.push(l && r)
		default:
			return newTypeError(fmt.Sprintf("operação e não implementada para %s", typeName(lhs)))
		}

	case compiler.EQ:
		vm.push(lhs == rhs)
	case compiler.NE:
		vm.push(lhs != rhs)

	case compiler.LT, compiler.GT, compiler.LE, compiler.GE:
		result, err := vm.compare(op, lhs, rhs)
		if err != nil {
			return err
		}
		vm.push(result)

	default:
		return CodeError{Msg: fmt.Sprintf("%d não é um operador binário", op)}
	}

	return nil
}

func (vm *VM) compare(op compiler.Opcode, lhs, rhs any) (bool, error) {
	switch l := lhs.(type) {
	case int32:
		r, err := toInt32(rhs)
		if err != nil {
			return false, err
		}
		return compareOrdered(op, float64(l), float64(r)), nil
	case float32:
		r, err := toFloat32(rhs)
		if err != nil {
			return false, err
		}
		return compareOrdered(op, float64(l), float64(r)), nil
	default:
		return false, newTypeError(fmt.Sprintf("comparação ordenada não implementada para %s", typeName(lhs)))
	}
}

func compareOrdered(op compiler.Opcode, l, r float64) bool {
	switch op {
	case compiler.LT:
		return l < r
	case compiler.GT:
		return l > r
	case compiler.LE:
		return l <= r
	case compiler.GE:
		return l >= r
	default:
		return false
	}
}

// intPow computes base^exp for a non-negative exponent by squaring.
func intPow(base, exp int32) int32 {
	result := int32(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func toInt32(v any) (int32, error) {
	switch x := v.(type) {
	case int32:
		return x, nil
	case float32:
		return int32(x), nil
	default:
		return 0, newTypeError(fmt.Sprintf("%s não pode ser convertido em i32", stringOf(v)))
	}
}

func toFloat32(v any) (float32, error) {
	switch x := v.(type) {
	case float32:
		return x, nil
	case int32:
		return float32(x), nil
	default:
		return 0, newTypeError(fmt.Sprintf("%s não pode ser convertido em f32", stringOf(v)))
	}
}

func toBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, newTypeError(fmt.Sprintf("%s não pode ser convertido em bool", stringOf(v)))
	}
	return b, nil
}

// stringOf stringifies a runtime value the way CASTS/WRITE do. Booleans
// render as Go's native true/false — value stringification at runtime,
// a distinct concern from the ast package's source pretty-printer, which
// spells them verdadeiro/falso.
func stringOf(v any) string {
	switch x := v.(type) {
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func typeName(v any) string {
	switch v.(type) {
	case int32:
		return "inteiro"
	case float32:
		return "real"
	case string:
		return "texto"
	case bool:
		return "booleano"
	default:
		return fmt.Sprintf("%T", v)
	}
}
