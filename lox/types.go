package lox

import (
	"fmt"
	"slices"
)

type TokenType int

const (
	// single character tokens
	TokenLParen TokenType = iota
	TokenRParen
	TokenLCurlyBrace
	TokenRCurlyBrace
	TokenComma
	TokenDot
	TokenMinus
	TokenPlus
	TokenSemiColon
	TokenSlash
	TokenStar

	// one or two character tokens
	TokenBang
	TokenBangEqual
	TokenEqual
	TokenEqualEqual
	TokenGreater
	TokenGreaterEqual
	TokenLess
	TokenLessEqual

	// literals
	TokenIdent
	TokenString
	TokenNumber

	// keywords
	TokenAnd
	TokenClass
	TokenElse
	TokenFalse
	TokenFor
	TokenFun
	TokenIf
	TokenNil
	TokenOr
	TokenPrint
	TokenReturn
	TokenSuper
	TokenThis
	TokenTrue
	TokenVar
	TokenWhile

	TokenError
	TokenEOF
)

var tokenNames = []string{
	"TokenLParen",
	"TokenRParen",
	"TokenLCurlyBrace",
	"TokenRCurlyBrace",
	"TokenComma",
	"TokenDot",
	"TokenMinus",
	"TokenPlus",
	"TokenSemiColon",
	"TokenSlash",
	"TokenStar",
	"TokenBang",
	"TokenBangEqual",
	"TokenEqual",
	"TokenEqualEqual",
	"TokenGreater",
	"TokenGreaterEqual",
	"TokenLess",
	"TokenLessEqual",
	"TokenIdent",
	"TokenString",
	"TokenNumber",
	"TokenAnd",
	"TokenClass",
	"TokenElse",
	"TokenFalse",
	"TokenFor",
	"TokenFun",
	"TokenIf",
	"TokenNil",
	"TokenOr",
	"TokenPrint",
	"TokenReturn",
	"TokenSuper",
	"TokenThis",
	"TokenTrue",
	"TokenVar",
	"TokenWhile",
	"TokenError",
	"TokenEOF",
}

func (t TokenType) String() string {
	if int(t) < 0 || int(t) >= len(tokenNames) {
		return fmt.Sprintf("Token(%d)", int(t))
	}
	return tokenNames[t]
}

var keywords = map[string]TokenType{
	"and":    TokenAnd,
	"class":  TokenClass,
	"else":   TokenElse,
	"false":  TokenFalse,
	"for":    TokenFor,
	"fun":    TokenFun,
	"if":     TokenIf,
	"nil":    TokenNil,
	"or":     TokenOr,
	"print":  TokenPrint,
	"return": TokenReturn,
	"super":  TokenSuper,
	"this":   TokenThis,
	"true":   TokenTrue,
	"var":    TokenVar,
	"while":  TokenWhile,
}

func IsKeyword(s string) bool {
	_, ok := keywords[s]
	return ok
}

// GetAllKeywords returns the reserved words in sorted order.
func GetAllKeywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Loc is a 1-based source position. ColEnd is inclusive; zero means the
// location covers a single column.
type Loc struct {
	FileName string `json:"fileName"`
	Line     int    `json:"line"`
	ColStart int    `json:"colStart"`
	ColEnd   int    `json:"colEnd,omitempty"`
}

func (l Loc) String() string {
	if l.ColEnd > l.ColStart {
		return fmt.Sprintf("%d:%d-%d", l.Line, l.ColStart, l.ColEnd)
	}
	return fmt.Sprintf("%d:%d", l.Line, l.ColStart)
}

// Token is one lexeme of Lox source. For TokenError the Lexeme holds the
// error message instead of source text.
type Token struct {
	Kind   TokenType `json:"kind"`
	Lexeme string    `json:"lexeme"`
	Loc    Loc       `json:"loc"`
}

func (t Token) Line() int {
	return t.Loc.Line
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s", t.Kind, t.Lexeme)
}
