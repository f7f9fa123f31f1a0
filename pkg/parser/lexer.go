package parser

import (
	"iter"

	"github.com/leapstack-labs/sqlstyle/pkg/token"
)

// Lexer tokenizes SQL input. Every byte of the input ends up in exactly one
// token, whitespace and comments included.
type Lexer struct {
	input     string
	pos       int // offset of the next unread byte
	line      int // current line number (1-based)
	lineStart int // offset of the first byte of the current line
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1}
}

// Tokens returns a lazy sequence over the tokens of input, ending with EOF.
// Iteration stops at the first lexical error, which is yielded with a zero
// token. Each call starts a fresh lexer, so the sequence is restartable.
func Tokens(input string) iter.Seq2[token.Token, error] {
	return func(yield func(token.Token, error) bool) {
		l := NewLexer(input)
		for {
			tok, err := l.NextToken()
			if err != nil {
				yield(token.Token{}, err)
				return
			}
			if !yield(tok, nil) || tok.Type == token.EOF {
				return
			}
		}
	}
}

// Tokenize lexes the whole input.
func Tokenize(input string) ([]token.Token, error) {
	var out []token.Token
	for tok, err := range Tokens(input) {
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
	return out, nil
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.pos - l.lineStart + 1,
		Offset: l.pos,
	}
}

func (l *Lexer) peek(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

// advance consumes n bytes, tracking line starts.
func (l *Lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.input); i++ {
		if l.input[l.pos] == '\n' {
			l.line++
			l.lineStart = l.pos + 1
		}
		l.pos++
	}
}

// NextToken returns the next token. After EOF it keeps returning EOF.
func (l *Lexer) NextToken() (token.Token, error) {
	start := l.currentPos()
	if l.pos >= len(l.input) {
		return token.Token{Type: token.EOF, Pos: start, End: start}, nil
	}

	typ, err := l.scan(start)
	if err != nil {
		return token.Token{}, err
	}
	return token.Token{
		Type:    typ,
		Literal: l.input[start.Offset:l.pos],
		Pos:     start,
		End:     l.currentPos(),
	}, nil
}

func (l *Lexer) scan(start token.Position) (token.TokenType, error) {
	ch := l.peek(0)
	switch {
	case isSpace(ch):
		for l.pos < len(l.input) && isSpace(l.peek(0)) {
			l.advance(1)
		}
		return token.WHITESPACE, nil
	case ch == '-' && l.peek(1) == '-':
		for l.pos < len(l.input) && l.peek(0) != '\n' && l.peek(0) != '\r' {
			l.advance(1)
		}
		return token.COMMENT, nil
	case ch == '/' && l.peek(1) == '*':
		l.advance(2)
		for l.pos < len(l.input) {
			if l.peek(0) == '*' && l.peek(1) == '/' {
				l.advance(2)
				return token.COMMENT, nil
			}
			l.advance(1)
		}
		return 0, &LexError{Kind: UnterminatedComment, Pos: start}
	case ch == '\'':
		if !l.readQuoted('\'') {
			return 0, &LexError{Kind: UnterminatedString, Pos: start}
		}
		return token.STRING, nil
	case ch == '"' || ch == '`':
		if !l.readQuoted(ch) {
			return 0, &LexError{Kind: UnterminatedIdentifier, Pos: start}
		}
		return token.QIDENT, nil
	case ch == '{' && (l.peek(1) == '{' || l.peek(1) == '%' || l.peek(1) == '#'):
		if !l.readTemplate() {
			return 0, &LexError{Kind: UnterminatedTemplate, Pos: start}
		}
		return token.TEMPLATE, nil
	case isLetter(ch):
		for l.pos < len(l.input) && (isLetter(l.peek(0)) || isDigit(l.peek(0)) || l.peek(0) == '$') {
			l.advance(1)
		}
		return token.LookupIdent(l.input[start.Offset:l.pos]), nil
	case isDigit(ch) || (ch == '.' && isDigit(l.peek(1))):
		l.readNumber()
		return token.NUMBER, nil
	}
	return l.scanOperator(ch), nil
}

func (l *Lexer) scanOperator(ch byte) token.TokenType {
	two := func(typ token.TokenType) token.TokenType {
		l.advance(2)
		return typ
	}
	one := func(typ token.TokenType) token.TokenType {
		l.advance(1)
		return typ
	}

	next := l.peek(1)
	switch ch {
	case '+':
		return one(token.PLUS)
	case '-':
		if next == '>' {
			if l.peek(2) == '>' {
				l.advance(3)
				return token.ILLEGAL
			}
			return two(token.ILLEGAL)
		}
		return one(token.MINUS)
	case '*':
		return one(token.STAR)
	case '/':
		return one(token.SLASH)
	case '%':
		return one(token.PERCENT)
	case '=':
		return one(token.EQ)
	case '<':
		switch next {
		case '=':
			return two(token.LE)
		case '>':
			return two(token.NE)
		case '@':
			return two(token.ILLEGAL)
		}
		return one(token.LT)
	case '>':
		if next == '=' {
			return two(token.GE)
		}
		return one(token.GT)
	case '!':
		if next == '=' {
			return two(token.NE)
		}
	case '#', '@':
		if next == '>' {
			if l.peek(2) == '>' {
				l.advance(3)
				return token.ILLEGAL
			}
			return two(token.ILLEGAL)
		}
	case '|':
		if next == '|' {
			return two(token.DPIPE)
		}
	case ':':
		if next == ':' {
			return two(token.DCOLON)
		}
	case '.':
		return one(token.DOT)
	case ',':
		return one(token.COMMA)
	case ';':
		return one(token.SEMICOLON)
	case '(':
		return one(token.LPAREN)
	case ')':
		return one(token.RPAREN)
	}
	return one(token.ILLEGAL)
}

// readQuoted consumes a quoted run where a doubled quote is an escape.
// It reports false if the closing quote is missing.
func (l *Lexer) readQuoted(quote byte) bool {
	l.advance(1) // opening quote
	for l.pos < len(l.input) {
		if l.peek(0) == quote {
			if l.peek(1) == quote {
				l.advance(2)
				continue
			}
			l.advance(1)
			return true
		}
		l.advance(1)
	}
	return false
}

// readTemplate consumes {{ ... }}, {% ... %} or {# ... #}.
func (l *Lexer) readTemplate() bool {
	closer := l.peek(1)
	if closer == '{' {
		closer = '}'
	}
	l.advance(2)
	for l.pos < len(l.input) {
		if l.peek(0) == closer && l.peek(1) == '}' {
			l.advance(2)
			return true
		}
		l.advance(1)
	}
	return false
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() {
	for isDigit(l.peek(0)) {
		l.advance(1)
	}
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		l.advance(1)
		for isDigit(l.peek(0)) {
			l.advance(1)
		}
	}
	if e := l.peek(0); e == 'e' || e == 'E' {
		n := 1
		if s := l.peek(1); s == '+' || s == '-' {
			n = 2
		}
		if isDigit(l.peek(n)) {
			l.advance(n)
			for isDigit(l.peek(0)) {
				l.advance(1)
			}
		}
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch >= 0x80
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
