package compiler

import (
	"encoding/binary"
	"fmt"
)

// Bytecode is the artifact the compiler produces and the VM executes: a flat
// byte-addressed instruction stream plus a deduplicated constant pool.
type Bytecode struct {
	Instructions Instructions
	Constants    []any
}

type Opcode byte

type Instructions []byte

// Opcodes. HALT = 0 by convention, since a zero-valued instruction stream
// should always halt. EXP is inserted directly after REM to keep the
// numeric-binop family contiguous; no other opcode value is load-bearing.
const (
	HALT Opcode = iota
	CONST
	DUP
	POP
	CASTI
	CASTF
	CASTS
	ADD
	SUB
	MUL
	DIV
	REM
	EXP
	OR
	AND
	EQ
	NE
	LT
	GT
	LE
	GE
	JMP
	JMPT
	JMPF
	LOAD
	STORE
	WRITE
	READL
	READI
	READF
)

// OperandWidth is the fixed width, in bytes, of every opcode operand: a
// little-endian machine word wide enough for slot counts and jump offsets
// that are not bounded the way a 16-bit constant-pool index would be.
const OperandWidth = 8

// OpCodeDefinition names an opcode and says whether it carries an operand.
type OpCodeDefinition struct {
	Name       string
	HasOperand bool
}

var definitions = map[Opcode]OpCodeDefinition{
	HALT:  {"HALT", false},
	CONST: {"CONST", true},
	DUP:   {"DUP", false},
	POP:   {"POP", false},
	CASTI: {"CASTI", false},
	CASTF: {"CASTF", false},
	CASTS: {"CASTS", false},
	ADD:   {"ADD", false},
	SUB:   {"SUB", false},
	MUL:   {"MUL", false},
	DIV:   {"DIV", false},
	REM:   {"REM", false},
	EXP:   {"EXP", false},
	OR:    {"OR", false},
	AND:   {"AND", false},
	EQ:    {"EQ", false},
	NE:    {"NE", false},
	LT:    {"LT", false},
	GT:    {"GT", false},
	LE:    {"LE", false},
	GE:    {"GE", false},
	JMP:   {"JMP", true},
	JMPT:  {"JMPT", true},
	JMPF:  {"JMPF", true},
	LOAD:  {"LOAD", true},
	STORE: {"STORE", true},
	WRITE: {"WRITE", false},
	READL: {"READL", false},
	READI: {"READI", false},
	READF: {"READF", false},
}

// Get looks up an opcode's definition.
func Get(op Opcode) (OpCodeDefinition, error) {
	def, ok := definitions[op]
	if !ok {
		return OpCodeDefinition{}, fmt.Errorf("opcode desconhecido: %d", op)
	}
	return def, nil
}

// InstructionWidth returns the total byte length of an instruction for the
// given opcode, including its operand if it has one.
func InstructionWidth(op Opcode) int {
	def, ok := definitions[op]
	if !ok {
		return 1
	}
	if def.HasOperand {
		return 1 + OperandWidth
	}
	return 1
}

// MakeInstruction assembles a single instruction: one opcode byte followed,
// for opcodes with an operand, by OperandWidth little-endian bytes. Jump
// offsets are signed and passed through the same uint64 reinterpretation
// cast LOAD/STORE/CONST indices use.
func MakeInstruction(op Opcode, operand int64) []byte {
	def, ok := definitions[op]
	if !ok {
		return nil
	}
	if !def.HasOperand {
		return []byte{byte(op)}
	}
	instr := make([]byte, 1+OperandWidth)
	instr[0] = byte(op)
	binary.LittleEndian.PutUint64(instr[1:], uint64(operand))
	return instr
}

// ReadOperand decodes the operand of an instruction slice starting at its
// opcode byte. The caller must already know the opcode carries an operand.
func ReadOperand(instr []byte) int64 {
	return int64(binary.LittleEndian.Uint64(instr[1 : 1+OperandWidth]))
}

// PatchOperand overwrites the operand bytes of the instruction at pos with a
// new value, used by jump backpatching once the target address is known.
func PatchOperand(instrs Instructions, pos int, operand int64) {
	binary.LittleEndian.PutUint64(instrs[pos+1:pos+1+OperandWidth], uint64(operand))
}

// DisassembleInstruction renders a single instruction (starting at ip in
// instrs) as human-readable text, returning the text and the instruction's
// byte width so the caller can advance past it.
func DisassembleInstruction(instrs Instructions, ip int) (string, int, error) {
	op := Opcode(instrs[ip])
	def, err := Get(op)
	if err != nil {
		return "", 0, err
	}
	if !def.HasOperand {
		return def.Name, 1, nil
	}
	operand := ReadOperand(instrs[ip:])
	return fmt.Sprintf("%s %d", def.Name, operand), 1 + OperandWidth, nil
}

// Disassemble renders an entire bytecode artifact's instruction stream, one
// instruction per line, each line prefixed with its byte offset.
func Disassemble(b Bytecode) (string, error) {
	var out []byte
	ip := 0
	for ip < len(b.Instructions) {
		text, width, err := DisassembleInstruction(b.Instructions, ip)
		if err != nil {
			return "", err
		}
		out = append(out, []byte(fmt.Sprintf("%04d %s\n", ip, text))...)
		ip += width
	}
	return string(out), nil
}
