package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeInstructionNoOperand(t *testing.T) {
	instr := MakeInstruction(HALT, 0)
	assert.Equal(t, []byte{byte(HALT)}, instr)
}

func TestMakeInstructionWithOperandRoundTrips(t *testing.T) {
	instr := MakeInstruction(CONST, 513)
	require.Len(t, instr, 1+OperandWidth)
	assert.Equal(t, byte(CONST), instr[0])
	assert.Equal(t, int64(513), ReadOperand(instr))
}

func TestMakeInstructionNegativeOperand(t *testing.T) {
	instr := MakeInstruction(JMP, -12)
	assert.Equal(t, int64(-12), ReadOperand(instr))
}

func TestPatchOperandOverwritesInPlace(t *testing.T) {
	instrs := Instructions(MakeInstruction(JMPF, 0))
	PatchOperand(instrs, 0, 42)
	assert.Equal(t, int64(42), ReadOperand(instrs))
}

func TestInstructionWidth(t *testing.T) {
	assert.Equal(t, 1, InstructionWidth(HALT))
	assert.Equal(t, 1+OperandWidth, InstructionWidth(LOAD))
}

func TestGetUnknownOpcode(t *testing.T) {
	_, err := Get(Opcode(255))
	require.Error(t, err)
}

func TestDisassembleInstruction(t *testing.T) {
	instrs := Instructions(MakeInstruction(CONST, 2))
	text, width, err := DisassembleInstruction(instrs, 0)
	require.NoError(t, err)
	assert.Equal(t, "CONST 2", text)
	assert.Equal(t, 1+OperandWidth, width)
}

func TestDisassembleWholeProgram(t *testing.T) {
	b := Bytecode{
		Instructions: append(MakeInstruction(CONST, 0), MakeInstruction(HALT, 0)...),
		Constants:    []any{int32(1)},
	}
	out, err := Disassemble(b)
	require.NoError(t, err)
	assert.Contains(t, out, "0000 CONST 0")
	assert.Contains(t, out, "HALT")
}
