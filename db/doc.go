// Package db provides the record generation engine.
//
// The Engine type is the main entry point. It parses a CREATE TABLE
// statement, generates the record declaration and commits it to the
// record repository.
//
// # Engine Usage
//
//	engine := db.NewEngine(persistence, identity).WithDialect(codegen.CPP)
//	result, err := engine.Execute(`CREATE TABLE "users" ("id" integer, "name" string)`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result.Display()
//
// # Result Types
//
//   - GenerateResult: returned by Execute
//   - CheckResult: returned by Check, parse only
//   - RecordsResult and HistoryResult: repository listings
package db
