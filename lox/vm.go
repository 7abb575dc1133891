package lox

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"
)

const DefaultStackCapacity = 256

var vmLog = commonlog.GetLogger("lox.vm")

// VM executes chunks on a fixed-capacity value stack. A VM may run many
// chunks in sequence but is not safe for concurrent use.
type VM struct {
	chunk   *Chunk
	ip      int
	stack   []Value
	sp      int // Stack pointer
	started bool
	persist bool
	trace   io.Writer
	log     commonlog.Logger

	// Stdout receives the value reported by OP_RETURN.
	Stdout io.Writer
}

type Option func(*VM)

// WithStackCapacity fixes the number of values the stack can hold.
// Non-positive capacities are ignored.
func WithStackCapacity(n int) Option {
	return func(vm *VM) {
		if n > 0 {
			vm.stack = make([]Value, n)
		}
	}
}

// WithTrace writes the stack and the disassembled instruction to w before
// every instruction executes. A nil writer disables tracing.
func WithTrace(w io.Writer) Option {
	return func(vm *VM) {
		vm.trace = w
	}
}

// WithPersistentStack keeps stack contents across Interpret calls instead of
// resetting the stack at the start of each call.
func WithPersistentStack(persist bool) Option {
	return func(vm *VM) {
		vm.persist = persist
	}
}

func WithStdout(w io.Writer) Option {
	return func(vm *VM) {
		vm.Stdout = w
	}
}

func WithLogger(log commonlog.Logger) Option {
	return func(vm *VM) {
		vm.log = log
	}
}

func NewVM(opts ...Option) *VM {
	vm := &VM{
		stack:  make([]Value, DefaultStackCapacity),
		Stdout: os.Stdout,
		log:    vmLog,
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// NewVMFromConfig builds a VM from the [vm] section of a config file. When
// tracing is enabled the trace goes to stderr.
func NewVMFromConfig(cfg VMConfig, opts ...Option) *VM {
	base := []Option{
		WithStackCapacity(cfg.StackCapacity),
		WithPersistentStack(cfg.PersistStack),
	}
	if cfg.Trace {
		base = append(base, WithTrace(os.Stderr))
	}
	return NewVM(append(base, opts...)...)
}

// Interpret runs chunk until OP_RETURN or the end of its code. The value
// reported by OP_RETURN is the result; a chunk that ends without returning
// yields the zero Value. Malformed chunks produce an ErrorBadChunk error.
// Stack overflow, stack underflow and invalid constant indices panic with a
// *FatalError.
func (vm *VM) Interpret(chunk *Chunk) Result[Value] {
	if chunk.Len() == 0 {
		return ResOk(Value(0))
	}

	if !vm.started || !vm.persist {
		vm.sp = 0
		vm.started = true
	}
	vm.chunk = chunk
	vm.ip = 0
	defer func() { vm.chunk = nil }()

	vm.log.Debugf("interpreting chunk: %d bytes, %d constants", chunk.Len(), chunk.ConstantCount())
	return vm.run()
}

func (vm *VM) run() Result[Value] {
	code := vm.chunk.Code()
	for vm.ip < len(code) {
		offset := vm.ip
		if vm.trace != nil {
			fmt.Fprintln(vm.trace, formatStack(vm.stack[:vm.sp]))
			DisassembleInstruction(vm.trace, vm.chunk, offset)
		}

		op, ok := DecodeOpCode(code[offset])
		if !ok {
			return vm.badChunk(offset, ErrUnknownOpcode, "unknown opcode %d", code[offset])
		}

		// Operand bytes are only touched once the whole instruction is known
		// to fit inside the code.
		vm.ip += op.Size()
		if vm.ip > len(code) {
			return vm.badChunk(offset, ErrTruncatedInstruction, "%s needs %d bytes, %d left", op, op.Size(), len(code)-offset)
		}

		switch op {
		case OpConstant, OpConstantLong:
			vm.push(vm.chunk.Constant(vm.chunk.constantIndex(op, offset)))
		case OpAdd, OpSubtract, OpMultiply, OpDivide:
			vm.binaryOp(op)
		case OpNegate:
			vm.stack[vm.top()] = vm.stack[vm.top()].Negate()
		case OpReturn:
			result := vm.pop()
			fmt.Fprintln(vm.Stdout, result)
			vm.log.Debugf("chunk returned %s", result)
			return ResOk(result)
		}
	}
	vm.log.Debug("chunk ended without OP_RETURN")
	return ResOk(Value(0))
}

// binaryOp replaces the two topmost values with left <op> right, where right
// is the topmost one.
func (vm *VM) binaryOp(op OpCode) {
	right := vm.pop()
	i := vm.top()
	left := vm.stack[i]
	switch op {
	case OpAdd:
		vm.stack[i] = left.Add(right)
	case OpSubtract:
		vm.stack[i] = left.Sub(right)
	case OpMultiply:
		vm.stack[i] = left.Mul(right)
	case OpDivide:
		vm.stack[i] = left.Div(right)
	}
}

func (vm *VM) badChunk(offset int, err error, format string, args ...any) Result[Value] {
	line, _ := vm.chunk.FindLine(offset)
	lerr := NewBadChunkError(offset, line, err, format, args...)
	vm.log.Errorf("rejecting chunk: %s", lerr)
	return ResErr[Value](lerr)
}

func (vm *VM) push(value Value) {
	if vm.sp >= len(vm.stack) {
		fatalf(FatalStackOverflow, "cannot push onto a full stack of %d values", len(vm.stack))
	}
	vm.stack[vm.sp] = value
	vm.sp++
}

func (vm *VM) pop() Value {
	if vm.sp == 0 {
		fatalf(FatalStackUnderflow, "cannot pop from an empty stack")
	}
	vm.sp--
	return vm.stack[vm.sp]
}

// top returns the index of the topmost value.
func (vm *VM) top() int {
	if vm.sp == 0 {
		fatalf(FatalStackUnderflow, "no value on the stack")
	}
	return vm.sp - 1
}

// Stack returns a copy of the live stack contents, bottom first.
func (vm *VM) Stack() []Value {
	out := make([]Value, vm.sp)
	copy(out, vm.stack[:vm.sp])
	return out
}

func (vm *VM) StackCapacity() int {
	return len(vm.stack)
}
