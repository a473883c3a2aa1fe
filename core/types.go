package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyName   = errors.New("name must not be empty")
	ErrQuotedName  = errors.New("name must not contain a double quote")
	ErrInvalidType = errors.New("invalid type tag")
	ErrNoFields    = errors.New("statement must declare at least one field")
)

// TypeTag identifies the declared type of a column.
type TypeTag uint8

const (
	Integer TypeTag = iota
	String

	numTypeTags
)

// TypeTagCount is the number of declared tags. Tables keyed by TypeTag in
// other packages pin their length to it.
const TypeTagCount = int(numTypeTags)

// Every table indexed by TypeTag is declared with [...] and pinned to
// numTypeTags below, so a new tag does not build until each table covers it.
var (
	typeKeywords = [...]string{
		Integer: "integer",
		String:  "string",
	}
	typeNames = [...]string{
		Integer: "Integer",
		String:  "String",
	}
)

var (
	_ [numTypeTags]string = typeKeywords
	_ [numTypeTags]string = typeNames
)

// TypeTags returns every declared tag in declaration order.
func TypeTags() []TypeTag {
	tags := make([]TypeTag, 0, numTypeTags)
	for tag := TypeTag(0); tag < numTypeTags; tag++ {
		tags = append(tags, tag)
	}
	return tags
}

func (tag TypeTag) Valid() bool {
	return tag < numTypeTags
}

// Keyword returns the schema keyword that declares this tag.
func (tag TypeTag) Keyword() string {
	if !tag.Valid() {
		return ""
	}
	return typeKeywords[tag]
}

func (tag TypeTag) String() string {
	if !tag.Valid() {
		return fmt.Sprintf("TypeTag(%d)", uint8(tag))
	}
	return typeNames[tag]
}

// Field is a single column declaration. The zero value is not a usable field;
// build fields with NewField.
type Field struct {
	name string
	tag  TypeTag
}

// NewField validates name and tag and returns the field.
func NewField(name string, tag TypeTag) (Field, error) {
	if err := validateName(name); err != nil {
		return Field{}, fmt.Errorf("field: %w", err)
	}
	if !tag.Valid() {
		return Field{}, fmt.Errorf("field %q: %w: %d", name, ErrInvalidType, uint8(tag))
	}
	return Field{name: name, tag: tag}, nil
}

// MustField is like NewField but panics on error. It is meant for static
// definitions and tests.
func MustField(name string, tag TypeTag) Field {
	field, err := NewField(name, tag)
	if err != nil {
		panic(err)
	}
	return field
}

func (field Field) Name() string {
	return field.name
}

func (field Field) Type() TypeTag {
	return field.tag
}

func (field Field) String() string {
	return fmt.Sprintf("%s:%s", field.name, field.tag)
}

// Statement is a parsed CREATE TABLE statement. Fields keep declaration order.
type Statement struct {
	table  string
	fields []Field
}

// NewStatement returns a statement over at least one field.
func NewStatement(table string, fields []Field) (Statement, error) {
	if err := validateName(table); err != nil {
		return Statement{}, fmt.Errorf("table: %w", err)
	}
	if len(fields) == 0 {
		return Statement{}, fmt.Errorf("table %q: %w", table, ErrNoFields)
	}
	for i, field := range fields {
		if field.name == "" {
			return Statement{}, fmt.Errorf("table %q field %d: %w", table, i, ErrEmptyName)
		}
	}

	owned := make([]Field, len(fields))
	copy(owned, fields)

	return Statement{
		table:  table,
		fields: owned,
	}, nil
}

// MustStatement is like NewStatement but panics on error.
func MustStatement(table string, fields ...Field) Statement {
	statement, err := NewStatement(table, fields)
	if err != nil {
		panic(err)
	}
	return statement
}

func (statement Statement) Table() string {
	return statement.table
}

// Fields returns a copy of the field list in declaration order.
func (statement Statement) Fields() []Field {
	fields := make([]Field, len(statement.fields))
	copy(fields, statement.fields)
	return fields
}

func (statement Statement) Len() int {
	return len(statement.fields)
}

// Field returns the i-th declared field.
func (statement Statement) Field(i int) Field {
	return statement.fields[i]
}

// DuplicateFieldNames reports names declared more than once, in order of
// first appearance. Duplicates are legal; this is for diagnostics only.
func (statement Statement) DuplicateFieldNames() []string {
	seen := make(map[string]int, len(statement.fields))
	var duplicates []string
	for _, field := range statement.fields {
		seen[field.name]++
		if seen[field.name] == 2 {
			duplicates = append(duplicates, field.name)
		}
	}
	return duplicates
}

func (statement Statement) Equal(other Statement) bool {
	if statement.table != other.table || len(statement.fields) != len(other.fields) {
		return false
	}
	for i := range statement.fields {
		if statement.fields[i] != other.fields[i] {
			return false
		}
	}
	return true
}

func (statement Statement) String() string {
	parts := make([]string, len(statement.fields))
	for i, field := range statement.fields {
		parts[i] = field.String()
	}
	return fmt.Sprintf("Statement{Table: %s, Fields: [%s]}", statement.table, strings.Join(parts, ", "))
}

func validateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if strings.ContainsRune(name, '"') {
		return ErrQuotedName
	}
	return nil
}
