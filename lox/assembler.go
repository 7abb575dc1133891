package lox

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
)

var asmLog = commonlog.GetLogger("lox.asm")

// Assemble builds a chunk from its textual form. Each non-blank line holds
// one instruction or directive; ';' starts a comment.
//
//	CONSTANT 1.5      ; short or long form, chosen by pool index
//	CONSTANT_LONG 2   ; always the four byte form
//	ADD               ; SUBTRACT, MULTIPLY, DIVIDE, NEGATE, RETURN
//	.line 42          ; attribute following bytes to source line 42
//	.byte 255         ; emit one raw byte
//
// Bytes are attributed to the text line they appear on until a .line
// directive takes over.
func Assemble(name, text string) (*Chunk, error) {
	a := &assembler{name: name, chunk: NewChunk()}
	for i, raw := range strings.Split(text, "\n") {
		if err := a.assembleLine(i+1, raw); err != nil {
			return nil, err
		}
	}
	asmLog.Debugf("assembled %s: %d bytes, %d constants", name, a.chunk.Len(), a.chunk.ConstantCount())
	return a.chunk, nil
}

type assembler struct {
	name       string
	chunk      *Chunk
	sourceLine int
	overridden bool
}

type asmField struct {
	text string
	col  int
}

func splitFields(line string) []asmField {
	var fields []asmField
	start := -1
	for i := 0; i <= len(line); i++ {
		blank := i == len(line) || line[i] == ' ' || line[i] == '\t' || line[i] == '\r'
		if blank && start >= 0 {
			fields = append(fields, asmField{text: line[start:i], col: start + 1})
			start = -1
		} else if !blank && start < 0 {
			start = i
		}
	}
	return fields
}

func (a *assembler) loc(textLine int, f asmField) Loc {
	loc := Loc{FileName: a.name, Line: textLine, ColStart: f.col}
	if len(f.text) > 1 {
		loc.ColEnd = f.col + len(f.text) - 1
	}
	return loc
}

func (a *assembler) errorf(textLine int, f asmField, format string, args ...any) error {
	return NewAssemblerError(fmt.Sprintf(format, args...), a.loc(textLine, f))
}

func (a *assembler) assembleLine(textLine int, raw string) error {
	if i := strings.IndexByte(raw, ';'); i >= 0 {
		raw = raw[:i]
	}
	fields := splitFields(raw)
	if len(fields) == 0 {
		return nil
	}
	if !a.overridden {
		a.sourceLine = textLine
	}

	head := fields[0]
	args := fields[1:]

	switch strings.ToLower(head.text) {
	case ".line":
		n, err := a.intArg(textLine, head, args, 1, 1<<31-1)
		if err != nil {
			return err
		}
		a.sourceLine = n
		a.overridden = true
		return nil
	case ".byte":
		n, err := a.intArg(textLine, head, args, 0, 255)
		if err != nil {
			return err
		}
		a.chunk.Write(byte(n), a.sourceLine)
		return nil
	}

	op, ok := LookupOpCode(head.text)
	if !ok {
		return a.errorf(textLine, head, "unknown instruction %q", head.text)
	}

	switch op {
	case OpConstant, OpConstantLong:
		if len(args) != 1 {
			return a.errorf(textLine, head, "%s takes exactly one number", op)
		}
		v, err := strconv.ParseFloat(args[0].text, 64)
		if err != nil {
			return a.errorf(textLine, args[0], "invalid number %q", args[0].text)
		}
		if op == OpConstantLong {
			a.chunk.writeConstant(Value(v), a.sourceLine, true)
		} else {
			a.chunk.WriteConstant(Value(v), a.sourceLine)
		}
	default:
		if len(args) != 0 {
			return a.errorf(textLine, args[0], "%s takes no operand", op)
		}
		a.chunk.WriteOp(op, a.sourceLine)
	}
	return nil
}

func (a *assembler) intArg(textLine int, head asmField, args []asmField, lo, hi int64) (int, error) {
	if len(args) != 1 {
		return 0, a.errorf(textLine, head, "%s takes exactly one integer", head.text)
	}
	n, err := strconv.ParseInt(args[0].text, 0, 64)
	if err != nil || n < lo || n > hi {
		return 0, a.errorf(textLine, args[0], "%s operand must be an integer in [%d, %d]", head.text, lo, hi)
	}
	return int(n), nil
}
