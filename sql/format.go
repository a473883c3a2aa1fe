package sql

import (
	"strings"

	"github.com/nickyhof/RecordGen/core"
)

// Format renders a statement as canonical schema text that Parse accepts:
//
//	CREATE TABLE "t" ("a" integer, "b" string)
func Format(statement core.Statement) string {
	var builder strings.Builder

	builder.WriteString(createTableLiteral)
	builder.WriteString(`"` + statement.Table() + `" (`)
	for i, field := range statement.Fields() {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(`"` + field.Name() + `" ` + field.Type().Keyword())
	}
	builder.WriteString(")")

	return builder.String()
}
