package lox

// MaxConstants is the largest constant pool a chunk can address: the long
// constant form carries a 24-bit index.
const MaxConstants = 1 << 24

// Chunk is a compiled unit: instruction bytes, a run-length encoded line
// table with one entry per code byte, and a constant pool.
type Chunk struct {
	code      []byte
	lines     *RunLengthEncoder[int]
	constants []Value
}

func NewChunk() *Chunk {
	return &Chunk{
		code:      make([]byte, 0, 8),
		lines:     NewRunLengthEncoder[int](),
		constants: make([]Value, 0, 8),
	}
}

// Write appends one raw byte produced by source line line.
func (c *Chunk) Write(b byte, line int) {
	c.code = append(c.code, b)
	c.lines.Add(line)
}

func (c *Chunk) WriteOp(op OpCode, line int) {
	c.Write(byte(op), line)
}

// WriteConstant adds value to the pool and emits the instruction loading it.
// Indices below 256 use OP_CONSTANT with a one byte operand, larger ones
// OP_CONSTANT_LONG with a three byte big-endian operand.
func (c *Chunk) WriteConstant(value Value, line int) int {
	return c.writeConstant(value, line, len(c.constants) >= 256)
}

func (c *Chunk) writeConstant(value Value, line int, long bool) int {
	if len(c.constants) >= MaxConstants {
		fatalf(FatalConstantPoolOverflow, "chunk already holds %d constants", len(c.constants))
	}
	c.constants = append(c.constants, value)
	idx := len(c.constants) - 1

	if !long {
		c.WriteOp(OpConstant, line)
		c.Write(byte(idx), line)
		return idx
	}
	c.WriteOp(OpConstantLong, line)
	c.Write(byte(idx>>16), line)
	c.Write(byte(idx>>8), line)
	c.Write(byte(idx), line)
	return idx
}

// Constant returns the pool entry id. An out of range id means the chunk is
// malformed and aborts execution.
func (c *Chunk) Constant(id int) Value {
	if id < 0 || id >= len(c.constants) {
		fatalf(FatalConstantOutOfRange, "constant %d requested from a pool of %d", id, len(c.constants))
	}
	return c.constants[id]
}

func (c *Chunk) FindLine(offset int) (int, bool) {
	return c.lines.Find(offset)
}

// Code exposes the instruction bytes. The slice aliases the chunk and must
// not be modified.
func (c *Chunk) Code() []byte {
	return c.code
}

func (c *Chunk) Len() int {
	return len(c.code)
}

func (c *Chunk) ConstantCount() int {
	return len(c.constants)
}

func (c *Chunk) Constants() []Value {
	out := make([]Value, len(c.constants))
	copy(out, c.constants)
	return out
}

// LineRuns returns the compressed line table.
func (c *Chunk) LineRuns() []Run[int] {
	return c.lines.Runs()
}

// constantIndex decodes the pool index of the constant load starting at
// offset. The caller has already checked that the operand bytes exist.
func (c *Chunk) constantIndex(op OpCode, offset int) int {
	if op == OpConstantLong {
		return int(c.code[offset+1])<<16 | int(c.code[offset+2])<<8 | int(c.code[offset+3])
	}
	return int(c.code[offset+1])
}
