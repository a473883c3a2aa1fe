// Package core provides core types used throughout RecordGen.
//
// The package defines the schema AST (Statement, Field), the closed TypeTag
// enumeration, the TypeRegistry that maps type keywords to tags, and the
// Identity used as the author of persisted artifacts.
//
// # Type Tags
//
// Supported column types:
//   - Integer: keyword "integer"
//   - String: keyword "string"
//
// # Statements
//
// Statements and fields are immutable once built. Use the constructors so
// the naming invariants are checked:
//
//	id, _ := core.NewField("id", core.Integer)
//	name, _ := core.NewField("name", core.String)
//	stmt, err := core.NewStatement("users", []core.Field{id, name})
//
// # Identity
//
// Identity identifies the author of generated artifacts (Git commit author):
//
//	identity := core.Identity{
//	    Name:  "John Doe",
//	    Email: "john@example.com",
//	}
package core
