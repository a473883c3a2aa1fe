// Package sql provides lexing and parsing of RecordGen schema statements.
//
// The accepted language is a single CREATE TABLE statement with quoted
// identifiers and the type keywords known to a core.TypeRegistry:
//
//	CREATE TABLE "<table>" ( "<column>" <type> [, "<column>" <type>]* )
//
// The literal "CREATE TABLE " is case-sensitive and includes its trailing
// space. Whitespace between tokens is ignored; whitespace inside quotes is
// part of the identifier.
//
// # Lexer Usage
//
//	lexer := sql.NewLexer(`CREATE TABLE "users" ("id" integer)`)
//	for {
//	    token := lexer.NextToken()
//	    if token.Type == sql.EOF {
//	        break
//	    }
//	    fmt.Printf("Token: %s\n", token)
//	}
//
// # Parser Usage
//
//	parser := sql.NewParser(`CREATE TABLE "users" ("id" integer)`, core.NewTypeRegistry())
//	statement, err := parser.Parse()
//	if err != nil {
//	    var parseErr *sql.ParseError
//	    if errors.As(err, &parseErr) {
//	        fmt.Println(parseErr.Snippet())
//	    }
//	    log.Fatal(err)
//	}
//
// # Errors
//
// Every failure is a *ParseError whose Kind is one of:
//   - UnterminatedIdentifier
//   - UnknownTypeKeyword
//   - MalformedStatement
//   - TrailingInput
//
// The matching sentinels (ErrUnterminatedIdentifier and so on) work with
// errors.Is.
package sql
