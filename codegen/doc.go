// Package codegen generates host-language record declarations from parsed
// schema statements.
//
// The default dialect is C++:
//
//	stmt, _ := sql.Parse(`CREATE TABLE "asdf" ("id" integer, "field1" string)`)
//	fmt.Print(codegen.Generate(stmt))
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
// A Go struct is available through codegen.New(codegen.Go). Generation never
// fails: every core.TypeTag has a host type in every dialect, which is
// checked when the package is compiled.
package codegen
