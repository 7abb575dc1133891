package lox

import (
	"errors"
	"fmt"
	"strings"
)

type Error interface {
	error
	GetLocation() Loc
}

type ErrorType int

const (
	ErrorBadChunk ErrorType = iota
	ErrorLexer
	ErrorAssembler
	ErrorImage
)

func (t ErrorType) String() string {
	return []string{
		"BadChunkError",
		"LexerError",
		"AssemblerError",
		"ImageError",
	}[t]
}

var (
	ErrTruncatedInstruction = errors.New("instruction operand runs past end of code")
	ErrUnknownOpcode        = errors.New("unknown opcode")
)

// LoxError is the recoverable error type of the package. Offset is the code
// offset the error refers to, or -1 when there is none.
type LoxError struct {
	Type   ErrorType
	Msg    string
	Loc    Loc
	Offset int
	Err    error
}

func (e *LoxError) Error() string {
	var b strings.Builder
	b.WriteString(e.Type.String())
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	if e.Loc.Line > 0 {
		if e.Loc.FileName != "" {
			fmt.Fprintf(&b, " (%s:%s)", e.Loc.FileName, e.Loc.String())
		} else {
			fmt.Fprintf(&b, " (line %d)", e.Loc.Line)
		}
	}
	return b.String()
}

func (e *LoxError) Unwrap() error {
	return e.Err
}

func (e *LoxError) GetLocation() Loc {
	return e.Loc
}

// ShowSource renders the error followed by the offending source line and a
// caret underline.
func (e *LoxError) ShowSource(source string) string {
	lines := strings.Split(source, "\n")
	if e.Loc.Line <= 0 || e.Loc.Line > len(lines) {
		return e.Error()
	}
	line := lines[e.Loc.Line-1]
	start := e.Loc.ColStart
	if start < 1 {
		start = 1
	}
	width := 1
	if e.Loc.ColEnd >= start {
		width = e.Loc.ColEnd - start + 1
	}
	underline := strings.Repeat(" ", start-1) + strings.Repeat("^", width)
	return fmt.Sprintf("%s\n%s\n%s", e.Error(), line, underline)
}

func NewBadChunkError(offset int, line int, err error, format string, args ...any) *LoxError {
	return &LoxError{
		Type:   ErrorBadChunk,
		Msg:    fmt.Sprintf(format, args...),
		Loc:    Loc{Line: line},
		Offset: offset,
		Err:    err,
	}
}

func NewLexerError(msg string, loc Loc) *LoxError {
	return &LoxError{Type: ErrorLexer, Msg: msg, Loc: loc, Offset: -1}
}

func NewAssemblerError(msg string, loc Loc) *LoxError {
	return &LoxError{Type: ErrorAssembler, Msg: msg, Loc: loc, Offset: -1}
}

func NewImageError(err error, format string, args ...any) *LoxError {
	return &LoxError{Type: ErrorImage, Msg: fmt.Sprintf(format, args...), Offset: -1, Err: err}
}

type Result[T any] struct {
	Value T
	Err   Error
}

func ResOk[T any](value T) Result[T] {
	return Result[T]{Value: value, Err: nil}
}

func ResErr[T any](err Error) Result[T] {
	return Result[T]{Err: err}
}

func (r Result[T]) IsOk() bool {
	return r.Err == nil
}

func (r Result[T]) IsErr() bool {
	return r.Err != nil
}

// FatalKind classifies invariant violations that abort execution.
type FatalKind int

const (
	FatalStackOverflow FatalKind = iota
	FatalStackUnderflow
	FatalConstantOutOfRange
	FatalConstantPoolOverflow
)

func (k FatalKind) String() string {
	return []string{
		"stack overflow",
		"stack underflow",
		"constant index out of range",
		"constant pool overflow",
	}[k]
}

// FatalError is the panic value raised for broken chunk invariants. These
// are never returned as errors: a correct producer of chunks cannot trigger
// them.
type FatalError struct {
	Kind FatalKind
	Msg  string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %s: %s", e.Kind, e.Msg)
}

func fatalf(kind FatalKind, format string, args ...any) {
	panic(&FatalError{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}
