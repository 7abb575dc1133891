package lox

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
)

func newTestVM(opts ...Option) *VM {
	return NewVM(append([]Option{WithStdout(io.Discard)}, opts...)...)
}

func mustInterpret(t *testing.T, vm *VM, c *Chunk) Value {
	t.Helper()
	res := vm.Interpret(c)
	if res.IsErr() {
		t.Fatalf("Interpret: %v", res.Err)
	}
	return res.Value
}

func TestInterpretNegate(t *testing.T) {
	c := NewChunk()
	c.WriteConstant(3.1415, 123)
	c.WriteOp(OpNegate, 123)
	c.WriteOp(OpReturn, 123)

	var out bytes.Buffer
	vm := NewVM(WithStdout(&out))
	if got := mustInterpret(t, vm, c); got != -3.1415 {
		t.Errorf("result = %v, want -3.1415", got)
	}
	if out.String() != "-3.1415\n" {
		t.Errorf("stdout = %q, want %q", out.String(), "-3.1415\n")
	}
}

func TestInterpretArithmetic(t *testing.T) {
	c := NewChunk()
	c.WriteConstant(1.0, 1)
	c.WriteConstant(1.0, 1)
	c.WriteOp(OpAdd, 1)
	c.WriteConstant(1.0, 1)
	c.WriteOp(OpSubtract, 1)
	c.WriteConstant(2.0, 1)
	c.WriteOp(OpMultiply, 1)
	c.WriteConstant(4.0, 1)
	c.WriteOp(OpDivide, 1)
	c.WriteOp(OpNegate, 1)
	c.WriteOp(OpReturn, 1)

	vm := newTestVM()
	if got := mustInterpret(t, vm, c); got != -0.5 {
		t.Errorf("result = %v, want -0.5", got)
	}
	if len(vm.Stack()) != 0 {
		t.Errorf("stack after return = %v, want empty", vm.Stack())
	}
}

func TestInterpretBinaryOperandOrder(t *testing.T) {
	tests := []struct {
		op   OpCode
		want Value
	}{
		{OpAdd, 13},
		{OpSubtract, 7},
		{OpMultiply, 30},
		{OpDivide, 10.0 / 3.0},
	}
	for _, tt := range tests {
		c := NewChunk()
		c.WriteConstant(10, 1)
		c.WriteConstant(3, 1)
		c.WriteOp(tt.op, 1)
		c.WriteOp(OpReturn, 1)
		if got := mustInterpret(t, newTestVM(), c); got != tt.want {
			t.Errorf("10 %s 3 = %v, want %v", tt.op, got, tt.want)
		}
	}
}

func TestInterpretDivideByZero(t *testing.T) {
	c := NewChunk()
	c.WriteConstant(1, 1)
	c.WriteConstant(0, 1)
	c.WriteOp(OpDivide, 1)
	c.WriteOp(OpReturn, 1)
	if got := mustInterpret(t, newTestVM(), c); !math.IsInf(float64(got), 1) {
		t.Errorf("1/0 = %v, want +Inf", got)
	}
}

func TestInterpretEmptyChunk(t *testing.T) {
	var out bytes.Buffer
	vm := NewVM(WithStdout(&out))
	res := vm.Interpret(NewChunk())
	if res.IsErr() {
		t.Fatalf("Interpret: %v", res.Err)
	}
	if res.Value != 0 || out.Len() != 0 || len(vm.Stack()) != 0 {
		t.Errorf("empty chunk had side effects: value=%v stdout=%q stack=%v", res.Value, out.String(), vm.Stack())
	}
}

func TestInterpretWithoutReturn(t *testing.T) {
	c := NewChunk()
	c.WriteConstant(7, 1)

	vm := newTestVM()
	if got := mustInterpret(t, vm, c); got != 0 {
		t.Errorf("result = %v, want zero value", got)
	}
	if s := vm.Stack(); len(s) != 1 || s[0] != 7 {
		t.Errorf("stack = %v, want [7]", s)
	}
}

func TestInterpretLongConstant(t *testing.T) {
	c := NewChunk()
	for i := 0; i < 300; i++ {
		c.WriteConstant(Value(i), 1)
	}
	c.WriteOp(OpReturn, 2)

	vm := newTestVM(WithStackCapacity(300))
	if got := mustInterpret(t, vm, c); got != 299 {
		t.Errorf("result = %v, want 299", got)
	}
	if n := len(vm.Stack()); n != 299 {
		t.Errorf("stack depth = %d, want 299", n)
	}
}

func TestInterpretTruncatedOperand(t *testing.T) {
	tests := []struct {
		name string
		code []byte
	}{
		{"constant without index", []byte{byte(OpConstant)}},
		{"long constant with two index bytes", []byte{byte(OpConstantLong), 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChunk()
			c.WriteConstant(1, 1)
			for _, b := range tt.code {
				c.Write(b, 9)
			}

			res := newTestVM().Interpret(c)
			if !res.IsErr() {
				t.Fatal("truncated chunk interpreted without error")
			}
			if !errors.Is(res.Err, ErrTruncatedInstruction) {
				t.Errorf("error = %v, want ErrTruncatedInstruction", res.Err)
			}
			var lerr *LoxError
			if !errors.As(res.Err, &lerr) {
				t.Fatalf("error type = %T, want *LoxError", res.Err)
			}
			if lerr.Type != ErrorBadChunk || lerr.Offset != 2 || lerr.Loc.Line != 9 {
				t.Errorf("error = %+v, want BadChunk at offset 2 line 9", lerr)
			}
		})
	}
}

func TestInterpretOnlyTruncatedConstant(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpConstant, 1)
	res := newTestVM().Interpret(c)
	if !errors.Is(res.Err, ErrTruncatedInstruction) {
		t.Errorf("error = %v, want ErrTruncatedInstruction", res.Err)
	}
}

func TestInterpretUnknownOpcode(t *testing.T) {
	c := NewChunk()
	c.WriteConstant(1, 1)
	c.Write(0xee, 2)
	c.WriteOp(OpReturn, 2)

	res := newTestVM().Interpret(c)
	if !errors.Is(res.Err, ErrUnknownOpcode) {
		t.Fatalf("error = %v, want ErrUnknownOpcode", res.Err)
	}
	if !strings.Contains(res.Err.Error(), "offset 2") {
		t.Errorf("error %q does not name the offset", res.Err.Error())
	}
}

func TestInterpretStackUnderflowIsFatal(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpAdd, 1)
	expectFatal(t, FatalStackUnderflow, func() { newTestVM().Interpret(c) })

	c = NewChunk()
	c.WriteOp(OpNegate, 1)
	expectFatal(t, FatalStackUnderflow, func() { newTestVM().Interpret(c) })

	c = NewChunk()
	c.WriteOp(OpReturn, 1)
	expectFatal(t, FatalStackUnderflow, func() { newTestVM().Interpret(c) })
}

func TestInterpretStackOverflowIsFatal(t *testing.T) {
	c := NewChunk()
	for i := 0; i < 3; i++ {
		c.WriteConstant(Value(i), 1)
	}
	vm := newTestVM(WithStackCapacity(2))
	if vm.StackCapacity() != 2 {
		t.Fatalf("StackCapacity() = %d, want 2", vm.StackCapacity())
	}
	expectFatal(t, FatalStackOverflow, func() { vm.Interpret(c) })
}

func TestInterpretInvalidConstantIndexIsFatal(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpConstant, 1)
	c.Write(3, 1)
	expectFatal(t, FatalConstantOutOfRange, func() { newTestVM().Interpret(c) })
}

func TestInterpretResetsStackByDefault(t *testing.T) {
	c := NewChunk()
	c.WriteConstant(1, 1)

	vm := newTestVM()
	mustInterpret(t, vm, c)
	mustInterpret(t, vm, c)
	if n := len(vm.Stack()); n != 1 {
		t.Errorf("stack depth after two runs = %d, want 1", n)
	}
}

func TestInterpretPersistentStack(t *testing.T) {
	push := NewChunk()
	push.WriteConstant(2, 1)

	vm := newTestVM(WithPersistentStack(true))
	mustInterpret(t, vm, push)
	mustInterpret(t, vm, push)
	if n := len(vm.Stack()); n != 2 {
		t.Fatalf("stack depth after two runs = %d, want 2", n)
	}

	add := NewChunk()
	add.WriteOp(OpAdd, 1)
	add.WriteOp(OpReturn, 1)
	if got := mustInterpret(t, vm, add); got != 4 {
		t.Errorf("result = %v, want 4", got)
	}
}

func TestInterpretTrace(t *testing.T) {
	c := NewChunk()
	c.WriteConstant(1, 1)
	c.WriteOp(OpNegate, 1)
	c.WriteOp(OpReturn, 2)

	var trace bytes.Buffer
	vm := newTestVM(WithTrace(&trace))
	mustInterpret(t, vm, c)

	want := "          \n" +
		"0000    1 OP_CONSTANT         0 '1'\n" +
		"          [ 1 ]\n" +
		"0002    | OP_NEGATE\n" +
		"          [ -1 ]\n" +
		"0003    2 OP_RETURN\n"
	if trace.String() != want {
		t.Errorf("trace =\n%s\nwant\n%s", trace.String(), want)
	}
}

func TestInterpretTraceShowsBadInstruction(t *testing.T) {
	c := NewChunk()
	c.Write(0xee, 1)

	var trace bytes.Buffer
	res := newTestVM(WithTrace(&trace)).Interpret(c)
	if !res.IsErr() {
		t.Fatal("unknown opcode accepted")
	}
	if !strings.Contains(trace.String(), "Unknown opcode 238") {
		t.Errorf("trace = %q, want the unknown opcode listed", trace.String())
	}
}

func TestNewVMFromConfig(t *testing.T) {
	vm := NewVMFromConfig(VMConfig{StackCapacity: 8, PersistStack: true}, WithStdout(io.Discard))
	if vm.StackCapacity() != 8 {
		t.Errorf("StackCapacity() = %d, want 8", vm.StackCapacity())
	}
	if !vm.persist {
		t.Error("persist-stack not applied")
	}
	if vm.trace != nil {
		t.Error("trace enabled without being configured")
	}

	if vm := NewVM(WithStackCapacity(0)); vm.StackCapacity() != DefaultStackCapacity {
		t.Errorf("zero capacity gave %d, want default %d", vm.StackCapacity(), DefaultStackCapacity)
	}
}
