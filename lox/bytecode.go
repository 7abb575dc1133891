package lox

import (
	"fmt"
	"strings"
)

// OpCode represents a bytecode operation. The numeric values are the bytes
// stored in a chunk's code.
type OpCode byte

const (
	OpConstant OpCode = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNegate
	OpReturn
	OpConstantLong
)

var opNames = map[OpCode]string{
	OpConstant:     "OP_CONSTANT",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNegate:       "OP_NEGATE",
	OpReturn:       "OP_RETURN",
	OpConstantLong: "OP_CONSTANT_LONG",
}

// DecodeOpCode converts a raw code byte into an OpCode, reporting false for
// bytes that name no instruction.
func DecodeOpCode(b byte) (OpCode, bool) {
	op := OpCode(b)
	if _, ok := opNames[op]; !ok {
		return 0, false
	}
	return op, true
}

func (o OpCode) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("OP_UNKNOWN_%d", byte(o))
}

// Size returns the encoded length of the instruction, opcode byte included.
func (o OpCode) Size() int {
	switch o {
	case OpConstant:
		return 2
	case OpConstantLong:
		return 4
	default:
		return 1
	}
}

// LookupOpCode resolves a mnemonic such as "OP_ADD" or "add".
func LookupOpCode(name string) (OpCode, bool) {
	name = strings.ToUpper(name)
	if !strings.HasPrefix(name, "OP_") {
		name = "OP_" + name
	}
	for op, n := range opNames {
		if n == name {
			return op, true
		}
	}
	return 0, false
}
