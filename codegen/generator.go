package codegen

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nickyhof/RecordGen/core"
)

var ErrUnknownDialect = errors.New("unknown dialect")

// Dialect selects the host language of the generated record.
type Dialect int

const (
	CPP Dialect = iota
	Go
)

// Host type tables, one per dialect. The blank assignments pin each table to
// core.TypeTagCount so a missing tag is a build error, not a runtime case.
var (
	cppTypes = [...]string{
		core.Integer: "int",
		core.String:  "std::string",
	}
	goTypes = [...]string{
		core.Integer: "int",
		core.String:  "string",
	}
)

var (
	_ [core.TypeTagCount]string = cppTypes
	_ [core.TypeTagCount]string = goTypes
)

// ParseDialect accepts "cpp", "c++", "cxx", "go" and "golang", ignoring case.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cpp", "c++", "cxx":
		return CPP, nil
	case "go", "golang":
		return Go, nil
	default:
		return CPP, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

func (dialect Dialect) String() string {
	switch dialect {
	case Go:
		return "go"
	default:
		return "cpp"
	}
}

// Extension is the file extension used for stored artifacts.
func (dialect Dialect) Extension() string {
	switch dialect {
	case Go:
		return ".go"
	default:
		return ".h"
	}
}

// Generator turns a statement into a record declaration. It holds no state
// besides its dialect and is safe for concurrent use.
type Generator struct {
	dialect Dialect
}

func New(dialect Dialect) *Generator {
	return &Generator{dialect: dialect}
}

// Generate emits the C++ record for statement.
func Generate(statement core.Statement) string {
	return New(CPP).Generate(statement)
}

func (generator *Generator) Dialect() Dialect {
	return generator.dialect
}

func (generator *Generator) Generate(statement core.Statement) string {
	var out strings.Builder
	switch generator.dialect {
	case Go:
		writeGo(&out, statement)
	default:
		writeCPP(&out, statement)
	}
	return out.String()
}

func (generator *Generator) GenerateTo(w io.Writer, statement core.Statement) error {
	_, err := io.WriteString(w, generator.Generate(statement))
	return err
}

// RecordName is the name of the generated type, e.g. "users_record".
func RecordName(statement core.Statement) string {
	return statement.Table() + "_record"
}

// FileName returns a path-safe artifact name for the statement's record.
func (generator *Generator) FileName(statement core.Statement) string {
	return generator.TableFileName(statement.Table())
}

// TableFileName is FileName for a bare table name. Characters that are
// unsafe in a path, and '%' itself, are escaped as %XX per UTF-8 byte, so
// distinct tables never share a file.
func (generator *Generator) TableFileName(table string) string {
	var name strings.Builder
	for i := 0; i < len(table); {
		r, size := utf8.DecodeRuneInString(table[i:])
		if r == utf8.RuneError || unsafeInPath(r) {
			for _, b := range []byte(table[i : i+size]) {
				fmt.Fprintf(&name, "%%%02X", b)
			}
		} else {
			name.WriteString(table[i : i+size])
		}
		i += size
	}
	return name.String() + "_record" + generator.dialect.Extension()
}

func unsafeInPath(r rune) bool {
	switch r {
	case '%', '/', '\\', ':', '*', '?', '<', '>', '|':
		return true
	}
	return unicode.IsSpace(r) || unicode.IsControl(r)
}

func writeCPP(out *strings.Builder, statement core.Statement) {
	line(out, "struct %s", RecordName(statement))
	line(out, "{")
	line(out, "\t// definition of \"%s\" record.", statement.Table())
	for _, field := range statement.Fields() {
		line(out, "\t%s %s;", cppTypes[field.Type()], field.Name())
	}
	line(out, "};")
}

func writeGo(out *strings.Builder, statement core.Statement) {
	line(out, "type %s struct {", RecordName(statement))
	line(out, "\t// definition of \"%s\" record.", statement.Table())
	for _, field := range statement.Fields() {
		line(out, "\t%s %s", field.Name(), goTypes[field.Type()])
	}
	line(out, "}")
}

func line(out *strings.Builder, format string, args ...any) {
	fmt.Fprintf(out, format, args...)
	out.WriteByte('\n')
}
