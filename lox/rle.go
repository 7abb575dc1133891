package lox

import "fmt"

// Run is one (value, length) pair of a RunLengthEncoder.
type Run[T comparable] struct {
	Value T
	Count uint32
}

// RunLengthEncoder maps a dense sequence of positions onto sparse runs of
// equal values. Adjacent runs never hold equal values.
type RunLengthEncoder[T comparable] struct {
	values []Run[T]
	total  int
}

func NewRunLengthEncoder[T comparable]() *RunLengthEncoder[T] {
	return &RunLengthEncoder[T]{values: make([]Run[T], 0, 8)}
}

// RunLengthEncoderFromRuns rebuilds an encoder from previously exported runs.
// Adjacent equal runs are merged again; empty runs are rejected.
func RunLengthEncoderFromRuns[T comparable](runs []Run[T]) (*RunLengthEncoder[T], error) {
	e := NewRunLengthEncoder[T]()
	for i, r := range runs {
		if r.Count == 0 {
			return nil, fmt.Errorf("run %d has zero length", i)
		}
		if n := len(e.values); n > 0 && e.values[n-1].Value == r.Value {
			e.values[n-1].Count += r.Count
		} else {
			e.values = append(e.values, r)
		}
		e.total += int(r.Count)
	}
	return e, nil
}

// Add records value for the next position.
func (e *RunLengthEncoder[T]) Add(value T) {
	e.total++
	if n := len(e.values); n > 0 && e.values[n-1].Value == value {
		e.values[n-1].Count++
		return
	}
	e.values = append(e.values, Run[T]{Value: value, Count: 1})
}

// Find returns the value recorded for position. The lookup is a linear scan
// over the runs.
func (e *RunLengthEncoder[T]) Find(position int) (T, bool) {
	var zero T
	if position < 0 {
		return zero, false
	}
	lower := 0
	for _, r := range e.values {
		upper := lower + int(r.Count)
		if position < upper {
			return r.Value, true
		}
		lower = upper
	}
	return zero, false
}

// Len is the number of positions recorded so far.
func (e *RunLengthEncoder[T]) Len() int {
	return e.total
}

// Runs returns a copy of the encoded runs.
func (e *RunLengthEncoder[T]) Runs() []Run[T] {
	out := make([]Run[T], len(e.values))
	copy(out, e.values)
	return out
}
