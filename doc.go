// Package RecordGen turns CREATE TABLE statements into record declarations
// and keeps every generated record in a Git repository.
//
// # Quick Start
//
// Translate a statement without storing anything:
//
//	out, err := RecordGen.Translate(`CREATE TABLE "asdf" ("id" integer, "field1" string)`)
//	fmt.Print(out)
//
// prints
//
//	struct asdf_record
//	{
//		// definition of "asdf" record.
//		int id;
//		std::string field1;
//	};
//
// Generate and commit records through an engine:
//
//	persistence, _ := ps.NewMemoryPersistence()
//	instance := RecordGen.Open(persistence)
//	engine := instance.Engine(core.Identity{Name: "App", Email: "app@example.com"})
//
//	result, _ := engine.Execute(`CREATE TABLE "users" ("id" integer, "name" string)`)
//	result.Display()
//
// # Grammar
//
// A statement is the literal "CREATE TABLE " followed by a double-quoted table
// name and a parenthesized, comma-separated list of fields. Each field is a
// double-quoted name and one of the type keywords integer or string.
// Whitespace is allowed between tokens; quoted names are taken verbatim.
package RecordGen
