package lox

import "strconv"

// Value is the single runtime value type: a double precision number.
type Value float64

func (v Value) Add(other Value) Value { return v + other }

func (v Value) Sub(other Value) Value { return v - other }

func (v Value) Mul(other Value) Value { return v * other }

// Div follows IEEE-754, so dividing by zero yields an infinity or NaN.
func (v Value) Div(other Value) Value { return v / other }

func (v Value) Negate() Value { return -v }

func (v Value) String() string {
	return strconv.FormatFloat(float64(v), 'g', -1, 64)
}
