package lox

import (
	"fmt"
	"io"
	"strings"
)

// Disassemble returns the listing produced by DisassembleChunk.
func Disassemble(c *Chunk, name string) string {
	var b strings.Builder
	DisassembleChunk(&b, c, name)
	return b.String()
}

func DisassembleChunk(w io.Writer, c *Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < c.Len(); {
		offset = DisassembleInstruction(w, c, offset)
	}
}

// DisassembleInstruction renders the instruction at offset and returns the
// offset of the next one. It never reads past the end of the code: unknown
// opcodes advance by a single byte and truncated operands end the listing.
func DisassembleInstruction(w io.Writer, c *Chunk, offset int) int {
	code := c.Code()
	fmt.Fprintf(w, "%04d ", offset)

	line, _ := c.FindLine(offset)
	prev, hasPrev := c.FindLine(offset - 1)
	if offset > 0 && hasPrev && prev == line {
		io.WriteString(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", line)
	}

	op, ok := DecodeOpCode(code[offset])
	if !ok {
		fmt.Fprintf(w, "Unknown opcode %d\n", code[offset])
		return offset + 1
	}

	next := offset + op.Size()
	if next > len(code) {
		fmt.Fprintf(w, "%-16s <truncated>\n", op)
		return len(code)
	}

	switch op {
	case OpConstant, OpConstantLong:
		return constantInstruction(w, c, op, offset)
	default:
		return simpleInstruction(w, op, offset)
	}
}

func simpleInstruction(w io.Writer, op OpCode, offset int) int {
	fmt.Fprintf(w, "%s\n", op)
	return offset + 1
}

func constantInstruction(w io.Writer, c *Chunk, op OpCode, offset int) int {
	idx := c.constantIndex(op, offset)
	if idx >= c.ConstantCount() {
		fmt.Fprintf(w, "%-16s %4d <invalid constant>\n", op, idx)
	} else {
		fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, c.Constant(idx))
	}
	return offset + op.Size()
}

// formatStack renders the value stack the way execution traces show it.
func formatStack(stack []Value) string {
	var b strings.Builder
	b.WriteString("          ")
	for _, v := range stack {
		fmt.Fprintf(&b, "[ %s ]", v)
	}
	return b.String()
}
