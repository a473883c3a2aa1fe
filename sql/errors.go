package sql

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	ErrUnterminatedIdentifier = errors.New("unterminated identifier")
	ErrUnknownTypeKeyword     = errors.New("unknown type keyword")
	ErrMalformedStatement     = errors.New("malformed statement")
	ErrTrailingInput          = errors.New("trailing input")
)

// ErrorKind classifies why a parse failed.
type ErrorKind int

const (
	UnterminatedIdentifier ErrorKind = iota + 1
	UnknownTypeKeyword
	MalformedStatement
	TrailingInput
)

func (kind ErrorKind) sentinel() error {
	switch kind {
	case UnterminatedIdentifier:
		return ErrUnterminatedIdentifier
	case UnknownTypeKeyword:
		return ErrUnknownTypeKeyword
	case TrailingInput:
		return ErrTrailingInput
	default:
		return ErrMalformedStatement
	}
}

func (kind ErrorKind) String() string {
	switch kind {
	case UnterminatedIdentifier:
		return "UnterminatedIdentifier"
	case UnknownTypeKeyword:
		return "UnknownTypeKeyword"
	case MalformedStatement:
		return "MalformedStatement"
	case TrailingInput:
		return "TrailingInput"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(kind))
	}
}

// ParseError reports the first grammar mismatch. Position is a byte offset
// into Input.
type ParseError struct {
	Kind     ErrorKind
	Position int
	Fragment string
	Message  string
	Input    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at position %d: %s", e.Kind.sentinel(), e.Position, e.Message)
}

// Unwrap lets errors.Is match the kind sentinels, e.g. ErrTrailingInput.
func (e *ParseError) Unwrap() error {
	return e.Kind.sentinel()
}

// LineColumn converts Position into a 1-based line and column (in runes).
func (e *ParseError) LineColumn() (line, column int) {
	position := min(max(e.Position, 0), len(e.Input))
	prefix := e.Input[:position]
	line = strings.Count(prefix, "\n") + 1
	lineStart := strings.LastIndexByte(prefix, '\n') + 1
	column = utf8.RuneCountInString(prefix[lineStart:]) + 1
	return line, column
}

// Snippet renders the offending line with a caret under Position.
func (e *ParseError) Snippet() string {
	position := min(max(e.Position, 0), len(e.Input))
	lineStart := strings.LastIndexByte(e.Input[:position], '\n') + 1
	lineEnd := strings.IndexByte(e.Input[position:], '\n')
	if lineEnd < 0 {
		lineEnd = len(e.Input)
	} else {
		lineEnd += position
	}

	var pad strings.Builder
	for _, r := range e.Input[lineStart:position] {
		if r == '\t' {
			pad.WriteRune('\t')
		} else {
			pad.WriteByte(' ')
		}
	}

	line, column := e.LineColumn()
	return fmt.Sprintf("line %d, column %d:\n  %s\n  %s^", line, column, e.Input[lineStart:lineEnd], pad.String())
}

func newParseError(kind ErrorKind, input string, position int, fragment string, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:     kind,
		Position: position,
		Fragment: fragment,
		Message:  fmt.Sprintf(format, args...),
		Input:    input,
	}
}
