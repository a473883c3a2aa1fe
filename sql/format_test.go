package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickyhof/RecordGen/core"
)

func TestFormat(t *testing.T) {
	statement := core.MustStatement("asdf",
		core.MustField("id", core.Integer),
		core.MustField("field1", core.String),
	)
	assert.Equal(t, `CREATE TABLE "asdf" ("id" integer, "field1" string)`, Format(statement))
}

func TestFormatRoundTrip(t *testing.T) {
	inputs := []string{
		`CREATE TABLE "asdf" ("id" integer)`,
		"CREATE TABLE  \" spaced name \" (\n\"a b\" string ,\"c\"integer)",
		`CREATE TABLE "t" ("a" integer, "a" integer, "b" string)`,
	}

	for _, input := range inputs {
		statement, err := Parse(input)
		require.NoError(t, err, input)

		reparsed, err := Parse(Format(statement))
		require.NoError(t, err, Format(statement))
		assert.True(t, statement.Equal(reparsed), "round trip changed %v into %v", statement, reparsed)
	}
}
