package sql

import (
	"fmt"
	"unicode/utf8"
)

// createTableLiteral must match byte for byte, including the trailing space.
const createTableLiteral = "CREATE TABLE "

type Token struct {
	Type     TokenType
	Value    string
	Position int
}

type TokenType int

const (
	CreateTable TokenType = iota
	QuotedIdentifier
	Keyword
	Comma
	ParenOpen
	ParenClose
	EOF
	Unterminated
	Unknown
)

func (tokenType TokenType) String() string {
	switch tokenType {
	case CreateTable:
		return "CreateTable"
	case QuotedIdentifier:
		return "QuotedIdentifier"
	case Keyword:
		return "Keyword"
	case Comma:
		return "Comma"
	case ParenOpen:
		return "ParenOpen"
	case ParenClose:
		return "ParenClose"
	case EOF:
		return "EOF"
	case Unterminated:
		return "Unterminated"
	default:
		return "Unknown"
	}
}

func (token Token) String() string {
	switch token.Type {
	case QuotedIdentifier:
		return "QuotedIdentifier(" + token.Value + ")"
	case Keyword:
		return "Keyword(" + token.Value + ")"
	case Unterminated:
		return "Unterminated(" + token.Value + ")"
	case Unknown:
		return "Unknown(" + token.Value + ")"
	default:
		return token.Type.String()
	}
}

// Lexer splits schema text into tokens. Whitespace between tokens is skipped;
// whitespace inside a quoted identifier is kept.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
}

func NewLexer(input string) *Lexer {
	lexer := &Lexer{input: input}
	lexer.readChar()
	return lexer
}

func (lexer *Lexer) readChar() {
	if lexer.readPosition >= len(lexer.input) {
		lexer.ch = 0
	} else {
		lexer.ch = lexer.input[lexer.readPosition]
	}
	lexer.position = lexer.readPosition
	lexer.readPosition++
}

// seek moves the lexer so that the next character read is input[position].
func (lexer *Lexer) seek(position int) {
	lexer.readPosition = position
	lexer.readChar()
}

func (lexer *Lexer) atEnd() bool {
	return lexer.position >= len(lexer.input)
}

func (lexer *Lexer) NextToken() Token {
	lexer.skipWhitespace()

	start := lexer.position
	if lexer.atEnd() {
		return Token{Type: EOF, Position: start}
	}

	switch lexer.ch {
	case ',':
		lexer.readChar()
		return Token{Type: Comma, Value: ",", Position: start}
	case '(':
		lexer.readChar()
		return Token{Type: ParenOpen, Value: "(", Position: start}
	case ')':
		lexer.readChar()
		return Token{Type: ParenClose, Value: ")", Position: start}
	case '"':
		value, closed := lexer.readQuoted()
		if !closed {
			return Token{Type: Unterminated, Value: value, Position: start}
		}
		return Token{Type: QuotedIdentifier, Value: value, Position: start}
	}

	if lexer.hasPrefix(createTableLiteral) {
		lexer.seek(start + len(createTableLiteral))
		return Token{Type: CreateTable, Value: createTableLiteral, Position: start}
	}

	if isWordChar(lexer.ch) {
		return Token{Type: Keyword, Value: lexer.readWord(), Position: start}
	}

	_, size := utf8.DecodeRuneInString(lexer.input[start:])
	lexer.seek(start + size)
	return Token{Type: Unknown, Value: lexer.input[start : start+size], Position: start}
}

func (lexer *Lexer) PeekToken() Token {
	savedPosition := lexer.position
	savedReadPosition := lexer.readPosition
	savedCh := lexer.ch

	token := lexer.NextToken()

	lexer.position = savedPosition
	lexer.readPosition = savedReadPosition
	lexer.ch = savedCh

	return token
}

// Remainder skips whitespace and returns whatever input is left together with
// its offset. An empty remainder means the input was fully consumed.
func (lexer *Lexer) Remainder() (string, int) {
	lexer.skipWhitespace()
	if lexer.atEnd() {
		return "", len(lexer.input)
	}
	return lexer.input[lexer.position:], lexer.position
}

func (lexer *Lexer) hasPrefix(prefix string) bool {
	return len(lexer.input)-lexer.position >= len(prefix) &&
		lexer.input[lexer.position:lexer.position+len(prefix)] == prefix
}

func (lexer *Lexer) skipWhitespace() {
	for !lexer.atEnd() && isWhitespace(lexer.ch) {
		lexer.readChar()
	}
}

func (lexer *Lexer) readWord() string {
	position := lexer.position
	for !lexer.atEnd() && isWordChar(lexer.ch) {
		lexer.readChar()
	}
	return lexer.input[position:lexer.position]
}

// readQuoted consumes a double-quoted identifier. There is no escape
// sequence: the first '"' after the opening one closes it.
func (lexer *Lexer) readQuoted() (string, bool) {
	lexer.readChar() // skip opening quote
	position := lexer.position
	for !lexer.atEnd() && lexer.ch != '"' {
		lexer.readChar()
	}
	value := lexer.input[position:lexer.position]
	if lexer.atEnd() {
		return value, false
	}
	lexer.readChar() // skip closing quote
	return value, true
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\v' || ch == '\f' || ch == '\r'
}

func isWordChar(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ('0' <= ch && ch <= '9') || ch == '_'
}

func tokenize(input string) []Token {
	lexer := NewLexer(input)

	var tokens []Token

	for {
		token := lexer.NextToken()
		tokens = append(tokens, token)
		if token.Type == EOF || token.Type == Unterminated {
			return tokens
		}
	}
}

func (token Token) describe() string {
	switch token.Type {
	case EOF:
		return "end of input"
	case QuotedIdentifier:
		return fmt.Sprintf("identifier %q", token.Value)
	default:
		return fmt.Sprintf("%q", token.Value)
	}
}
