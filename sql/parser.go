package sql

import (
	"strings"

	"github.com/nickyhof/RecordGen/core"
)

type Parser struct {
	input    string
	lexer    *Lexer
	registry *core.TypeRegistry
}

// NewParser prepares a parser for a single CREATE TABLE statement. Type
// keywords are resolved through registry; a nil registry gets the default
// integer/string set.
func NewParser(input string, registry *core.TypeRegistry) *Parser {
	if registry == nil {
		registry = core.NewTypeRegistry()
	}
	return &Parser{
		input:    input,
		lexer:    NewLexer(input),
		registry: registry,
	}
}

// Parse parses input with a freshly built default registry.
func Parse(input string) (core.Statement, error) {
	return NewParser(input, core.NewTypeRegistry()).Parse()
}

// Parse consumes the whole input. It either returns a complete statement or
// a *ParseError; there is no partial result.
func (parser *Parser) Parse() (core.Statement, error) {
	// A missing literal is malformed even when what follows is an open quote.
	token := parser.lexer.NextToken()
	if token.Type != CreateTable {
		return core.Statement{}, parser.malformed(token, "expected %q, found %s", createTableLiteral, token.describe())
	}

	table, err := parser.parseIdentifier("table name")
	if err != nil {
		return core.Statement{}, err
	}

	token = parser.lexer.NextToken()
	if token.Type == Unterminated {
		return core.Statement{}, parser.unterminated(token)
	}
	if token.Type != ParenOpen {
		return core.Statement{}, parser.malformed(token, "expected '(' after table name, found %s", token.describe())
	}

	if next := parser.lexer.PeekToken(); next.Type == ParenClose {
		return core.Statement{}, parser.malformed(next, "field list must not be empty")
	}

	fields, err := parser.parseFields()
	if err != nil {
		return core.Statement{}, err
	}

	if rest, position := parser.lexer.Remainder(); rest != "" {
		fragment := rest
		if i := strings.IndexAny(fragment, " \t\n\v\f\r"); i > 0 {
			fragment = fragment[:i]
		}
		return core.Statement{}, newParseError(TrailingInput, parser.input, position, rest,
			"unexpected %q after end of statement", fragment)
	}

	statement, err := core.NewStatement(table, fields)
	if err != nil {
		return core.Statement{}, newParseError(MalformedStatement, parser.input, 0, "", "%v", err)
	}
	return statement, nil
}

// parseFields reads `field (',' field)* ')'`.
func (parser *Parser) parseFields() ([]core.Field, error) {
	var fields []core.Field

	for {
		field, err := parser.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)

		token := parser.lexer.NextToken()
		switch token.Type {
		case Comma:
			continue
		case ParenClose:
			return fields, nil
		case Unterminated:
			return nil, parser.unterminated(token)
		default:
			return nil, parser.malformed(token, "expected ',' or ')' after field %q, found %s", field.Name(), token.describe())
		}
	}
}

func (parser *Parser) parseField() (core.Field, error) {
	name, err := parser.parseIdentifier("column name")
	if err != nil {
		return core.Field{}, err
	}

	token := parser.lexer.NextToken()
	switch token.Type {
	case Keyword:
	case Unterminated:
		return core.Field{}, parser.unterminated(token)
	default:
		return core.Field{}, parser.malformed(token, "expected type keyword for column %q, found %s", name, token.describe())
	}

	tag, ok := parser.registry.Lookup(token.Value)
	if !ok {
		return core.Field{}, newParseError(UnknownTypeKeyword, parser.input, token.Position, token.Value,
			"unknown type %q for column %q (expected one of %s)", token.Value, name, strings.Join(parser.registry.Keywords(), ", "))
	}

	field, err := core.NewField(name, tag)
	if err != nil {
		return core.Field{}, newParseError(MalformedStatement, parser.input, token.Position, name, "%v", err)
	}
	return field, nil
}

func (parser *Parser) parseIdentifier(what string) (string, error) {
	token := parser.lexer.NextToken()
	switch token.Type {
	case QuotedIdentifier:
		if token.Value == "" {
			return "", parser.malformed(token, "%s must not be empty", what)
		}
		return token.Value, nil
	case Unterminated:
		return "", parser.unterminated(token)
	default:
		return "", parser.malformed(token, "expected quoted %s, found %s", what, token.describe())
	}
}

func (parser *Parser) malformed(token Token, format string, args ...any) *ParseError {
	return newParseError(MalformedStatement, parser.input, token.Position, token.Value, format, args...)
}

func (parser *Parser) unterminated(token Token) *ParseError {
	return newParseError(UnterminatedIdentifier, parser.input, token.Position, `"`+token.Value,
		"identifier opened here is never closed")
}
