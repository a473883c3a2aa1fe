//go:build comparative

package RecordGen

import (
	stdsql "database/sql"
	"strings"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickyhof/RecordGen/core"
	"github.com/nickyhof/RecordGen/sql"
)

// duckTypes is the DuckDB column type each declared keyword resolves to.
var duckTypes = map[core.TypeTag]string{
	core.Integer: "INTEGER",
	core.String:  "VARCHAR",
}

func setupDuckDB(t testing.TB) *stdsql.DB {
	t.Helper()
	conn, err := stdsql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

type duckColumn struct {
	Name string
	Type string
}

func duckColumns(t *testing.T, conn *stdsql.DB, table string) []duckColumn {
	t.Helper()
	rows, err := conn.Query(
		"SELECT column_name, data_type FROM information_schema.columns WHERE table_name = ? ORDER BY ordinal_position",
		table)
	require.NoError(t, err)
	defer rows.Close()

	var columns []duckColumn
	for rows.Next() {
		var column duckColumn
		require.NoError(t, rows.Scan(&column.Name, &column.Type))
		columns = append(columns, column)
	}
	require.NoError(t, rows.Err())
	return columns
}

// Every statement the parser accepts is valid DuckDB DDL describing the same
// columns in the same order.
func TestComparativeAcceptedStatements(t *testing.T) {
	conn := setupDuckDB(t)

	inputs := []string{
		`CREATE TABLE "asdf" ("id" integer)`,
		`CREATE TABLE "asdf2" ("id" integer, "field1" string)`,
		"CREATE TABLE \"spaced table\" (\n\t\"first name\" string,\n\t\"age\" integer\n)",
		`CREATE TABLE "wide" ("a" integer, "b" string, "c" integer, "d" string, "e" integer)`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			statement, err := sql.Parse(input)
			require.NoError(t, err)

			_, err = conn.Exec(input)
			require.NoError(t, err)

			columns := duckColumns(t, conn, statement.Table())
			require.Len(t, columns, statement.Len())
			for i, field := range statement.Fields() {
				assert.Equal(t, field.Name(), columns[i].Name)
				assert.Equal(t, duckTypes[field.Type()], columns[i].Type)
			}
		})
	}
}

// Statements rejected for an unknown type keyword are types DuckDB knows but
// the record generator does not; rejection happens before any DDL runs.
func TestComparativeRejectedTypes(t *testing.T) {
	conn := setupDuckDB(t)

	for _, keyword := range []string{"float", "double", "boolean", "date"} {
		input := `CREATE TABLE "t_` + keyword + `" ("x" ` + keyword + `)`

		_, err := sql.Parse(input)
		assert.ErrorIs(t, err, sql.ErrUnknownTypeKeyword, input)

		_, err = conn.Exec(input)
		assert.NoError(t, err, "DuckDB accepts %s", strings.ToUpper(keyword))
	}
}

func BenchmarkComparativeRecordGenTranslate(b *testing.B) {
	input := `CREATE TABLE "bench" ("id" integer, "name" string, "age" integer, "city" string)`
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := Translate(input); err != nil {
			b.Fatalf("Translate error: %v", err)
		}
	}
}

func BenchmarkComparativeDuckDBPrepare(b *testing.B) {
	conn := setupDuckDB(b)
	input := `CREATE TABLE "bench" ("id" integer, "name" string, "age" integer, "city" string)`
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		stmt, err := conn.Prepare(input)
		if err != nil {
			b.Fatalf("Prepare error: %v", err)
		}
		stmt.Close()
	}
}
