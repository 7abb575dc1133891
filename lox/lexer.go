package lox

import "iter"

// Scanner lazily splits Lox source into tokens. It cannot be rewound; scan
// the source again with a new Scanner instead.
type Scanner struct {
	source    string
	fileName  string
	start     int
	current   int
	line      int
	col       int
	startLine int
	startCol  int
}

func NewScanner(source string) *Scanner {
	return &Scanner{source: source, line: 1, col: 1}
}

// NewFileScanner is NewScanner with a file name attached to every location.
func NewFileScanner(fileName, source string) *Scanner {
	s := NewScanner(source)
	s.fileName = fileName
	return s
}

var singleSymbols = map[byte]TokenType{
	'(': TokenLParen,
	')': TokenRParen,
	'{': TokenLCurlyBrace,
	'}': TokenRCurlyBrace,
	';': TokenSemiColon,
	',': TokenComma,
	'.': TokenDot,
	'-': TokenMinus,
	'+': TokenPlus,
	'/': TokenSlash,
	'*': TokenStar,
}

// Next returns the next token. Once the source is exhausted every call
// returns a TokenEOF token.
func (s *Scanner) Next() Token {
	s.skipWhitespace()
	s.start = s.current
	s.startLine = s.line
	s.startCol = s.col
	if s.isAtEnd() {
		return s.makeToken(TokenEOF)
	}

	c := s.advance()
	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}
	if kind, ok := singleSymbols[c]; ok {
		return s.makeToken(kind)
	}

	switch c {
	case '!':
		return s.makeToken(s.pick('=', TokenBangEqual, TokenBang))
	case '=':
		return s.makeToken(s.pick('=', TokenEqualEqual, TokenEqual))
	case '<':
		return s.makeToken(s.pick('=', TokenLessEqual, TokenLess))
	case '>':
		return s.makeToken(s.pick('=', TokenGreaterEqual, TokenGreater))
	case '"':
		return s.stringLiteral()
	}
	return s.errorToken("Unexpected character.")
}

// All yields tokens up to and including the first TokenEOF.
func (s *Scanner) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			tok := s.Next()
			if !yield(tok) || tok.Kind == TokenEOF {
				return
			}
		}
	}
}

// Tokenize scans the remaining source, EOF token included.
func (s *Scanner) Tokenize() []Token {
	var tokens []Token
	for tok := range s.All() {
		tokens = append(tokens, tok)
	}
	return tokens
}

func (s *Scanner) loc() Loc {
	loc := Loc{FileName: s.fileName, Line: s.startLine, ColStart: s.startCol}
	if s.line == s.startLine && s.col-1 > s.startCol {
		loc.ColEnd = s.col - 1
	}
	return loc
}

func (s *Scanner) makeToken(kind TokenType) Token {
	return Token{Kind: kind, Lexeme: s.source[s.start:s.current], Loc: s.loc()}
}

func (s *Scanner) errorToken(msg string) Token {
	return Token{Kind: TokenError, Lexeme: msg, Loc: s.loc()}
}

func (s *Scanner) identifier() Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	if kind, ok := keywords[s.source[s.start:s.current]]; ok {
		return s.makeToken(kind)
	}
	return s.makeToken(TokenIdent)
}

func (s *Scanner) number() Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.makeToken(TokenNumber)
}

func (s *Scanner) stringLiteral() Token {
	for !s.isAtEnd() && s.peek() != '"' {
		s.advance()
	}
	if s.isAtEnd() {
		return s.errorToken("Unterminated string.")
	}
	s.advance() // closing quote
	return s.makeToken(TokenString)
}

func (s *Scanner) skipWhitespace() {
	for !s.isAtEnd() {
		switch s.peek() {
		case ' ', '\r', '\t', '\n':
			s.advance()
		case '/':
			if s.peekNext() != '/' {
				return
			}
			for !s.isAtEnd() && s.peek() != '\n' {
				s.advance()
			}
		default:
			return
		}
	}
}

func (s *Scanner) pick(next byte, matched, single TokenType) TokenType {
	if s.isAtEnd() || s.source[s.current] != next {
		return single
	}
	s.advance()
	return matched
}

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
