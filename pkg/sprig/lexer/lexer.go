package lexer

import (
	"fmt"
	"sort"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Identifiers and literals
	IDENT  // add, foobar, x, y, ...
	INT    // 1343456
	STRING // "foobar"

	// Operators
	ASSIGN   // =
	PLUS     // +
	MINUS    // -
	BANG     // !
	ASTERISK // *
	SLASH    // /
	LT       // <
	GT       // >
	EQ       // ==
	NOT_EQ   // !=

	// Delimiters
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]

	// Keywords
	FUNCTION // "fn"
	LET      // "let"
	TRUE     // "true"
	FALSE    // "false"
	IF       // "if"
	ELSE     // "else"
	RETURN   // "return"
)

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

var tokenNames = map[TokenType]string{
	ILLEGAL:   "ILLEGAL",
	EOF:       "EOF",
	IDENT:     "IDENT",
	INT:       "INT",
	STRING:    "STRING",
	ASSIGN:    "=",
	PLUS:      "+",
	MINUS:     "-",
	BANG:      "!",
	ASTERISK:  "*",
	SLASH:     "/",
	LT:        "<",
	GT:        ">",
	EQ:        "==",
	NOT_EQ:    "!=",
	COMMA:     ",",
	SEMICOLON: ";",
	COLON:     ":",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	LBRACKET:  "[",
	RBRACKET:  "]",
	FUNCTION:  "FUNCTION",
	LET:       "LET",
	TRUE:      "TRUE",
	FALSE:     "FALSE",
	IF:        "IF",
	ELSE:      "ELSE",
	RETURN:    "RETURN",
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

var keywords = map[string]TokenType{
	"fn":     FUNCTION,
	"let":    LET,
	"true":   TRUE,
	"false":  FALSE,
	"if":     IF,
	"else":   ELSE,
	"return": RETURN,
}

// Keywords returns the reserved words of the language, sorted.
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for k := range keywords {
		words = append(words, k)
	}
	sort.Strings(words)
	return words
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// TokenSource yields tokens one at a time. After the end of input it keeps
// returning EOF.
type TokenSource interface {
	NextToken() Token
}

// Lexer represents the lexical analyzer
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current character, 0 at end of input
	line         int
	column       int
}

// New creates a new lexer instance. The input is normalised to NFC so that
// identifiers and strings compare by character rather than by encoding.
func New(input string) *Lexer {
	l := &Lexer{
		input:  norm.NFC.String(input),
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// Tokenize scans the whole input and returns every token including the
// trailing EOF.
func Tokenize(input string) []Token {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

// readChar reads the next character and advances position.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
	l.column++
}

// atEOF reports whether the whole input has been consumed. A NUL byte
// inside the input is not the end.
func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// NextToken scans the input and returns the next token
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespaceAndComments()

	line, column := l.line, l.column

	if l.atEOF() {
		return Token{Type: EOF, Literal: "", Line: line, Column: column}
	}

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: EQ, Literal: "==", Line: line, Column: column}
		} else {
			tok = newToken(ASSIGN, l.ch, line, column)
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: NOT_EQ, Literal: "!=", Line: line, Column: column}
		} else {
			tok = newToken(BANG, l.ch, line, column)
		}
	case '+':
		tok = newToken(PLUS, l.ch, line, column)
	case '-':
		tok = newToken(MINUS, l.ch, line, column)
	case '*':
		tok = newToken(ASTERISK, l.ch, line, column)
	case '/':
		tok = newToken(SLASH, l.ch, line, column)
	case '<':
		tok = newToken(LT, l.ch, line, column)
	case '>':
		tok = newToken(GT, l.ch, line, column)
	case ',':
		tok = newToken(COMMA, l.ch, line, column)
	case ';':
		tok = newToken(SEMICOLON, l.ch, line, column)
	case ':':
		tok = newToken(COLON, l.ch, line, column)
	case '(':
		tok = newToken(LPAREN, l.ch, line, column)
	case ')':
		tok = newToken(RPAREN, l.ch, line, column)
	case '{':
		tok = newToken(LBRACE, l.ch, line, column)
	case '}':
		tok = newToken(RBRACE, l.ch, line, column)
	case '[':
		tok = newToken(LBRACKET, l.ch, line, column)
	case ']':
		tok = newToken(RBRACKET, l.ch, line, column)
	case '"':
		str, terminated := l.readString()
		if !terminated {
			return Token{Type: ILLEGAL, Literal: "unterminated string", Line: line, Column: column}
		}
		tok = Token{Type: STRING, Literal: str, Line: line, Column: column}
	default:
		if isLetter(l.ch) {
			literal := l.readIdentifier()
			return Token{Type: LookupIdent(literal), Literal: literal, Line: line, Column: column}
		}
		if isDigit(l.ch) {
			return Token{Type: INT, Literal: l.readNumber(), Line: line, Column: column}
		}
		tok = newToken(ILLEGAL, l.ch, line, column)
	}

	l.readChar()
	return tok
}

// newToken creates a new token with the given parameters
func newToken(tokenType TokenType, ch rune, line, column int) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: line, Column: column}
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readString reads a string literal with escape sequence support.
// Returns the string content and whether it was terminated properly.
// Strings cannot span multiple lines.
func (l *Lexer) readString() (string, bool) {
	var result []rune
	l.readChar() // skip opening quote

	for l.ch != '"' && l.ch != '\n' && !l.atEOF() {
		if l.ch == '\\' {
			l.readChar()
			if l.atEOF() {
				return string(result), false
			}
			switch l.ch {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			case '\\':
				result = append(result, '\\')
			case '"':
				result = append(result, '"')
			default:
				// Unknown escape, keep as-is
				result = append(result, '\\', l.ch)
			}
		} else {
			result = append(result, l.ch)
		}
		l.readChar()
	}

	return string(result), l.ch == '"' && !l.atEOF()
}

// skipWhitespaceAndComments skips blanks and // line comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
		default:
			return
		}
	}
}

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// SliceSource replays a fixed token slice.
type SliceSource struct {
	tokens []Token
	pos    int
}

// NewSliceSource returns a TokenSource over tokens. A missing trailing EOF is
// synthesised.
func NewSliceSource(tokens []Token) *SliceSource {
	return &SliceSource{tokens: tokens}
}

// NextToken returns the next token in the slice, then EOF forever.
func (s *SliceSource) NextToken() Token {
	if s.pos >= len(s.tokens) {
		var line, col int
		if n := len(s.tokens); n > 0 {
			line, col = s.tokens[n-1].Line, s.tokens[n-1].Column
		}
		return Token{Type: EOF, Line: line, Column: col}
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok
}
