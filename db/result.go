package db

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nickyhof/RecordGen/codegen"
	"github.com/nickyhof/RecordGen/core"
	"github.com/nickyhof/RecordGen/ps"
	"github.com/nickyhof/RecordGen/sql"
)

type ResultType int

const (
	GenerateResultType ResultType = iota
	CheckResultType
	RecordsResultType
	HistoryResultType
)

func (resultType ResultType) String() string {
	switch resultType {
	case GenerateResultType:
		return "generate"
	case CheckResultType:
		return "check"
	case RecordsResultType:
		return "records"
	case HistoryResultType:
		return "history"
	default:
		return fmt.Sprintf("ResultType(%d)", int(resultType))
	}
}

type Result interface {
	Type() ResultType
	Display()
	Fprint(w io.Writer)
}

// GenerateResult is the outcome of generating one record. Transaction is
// zero when the engine has no initialized persistence.
type GenerateResult struct {
	Table            string
	Fields           []core.Field
	Dialect          codegen.Dialect
	Path             string
	Output           string
	Transaction      ps.Transaction
	ExecutionTimeSec float64
}

type CheckResult struct {
	Statement        core.Statement
	Canonical        string
	Duplicates       []string
	ExecutionTimeSec float64
}

type RecordsResult struct {
	Paths []string
}

type HistoryResult struct {
	Transactions []ps.Transaction
}

func (result GenerateResult) Type() ResultType { return GenerateResultType }
func (result CheckResult) Type() ResultType    { return CheckResultType }
func (result RecordsResult) Type() ResultType  { return RecordsResultType }
func (result HistoryResult) Type() ResultType  { return HistoryResultType }

func formatDuration(secs float64) string {
	switch {
	case secs < 0.001:
		return "<1ms"
	case secs < 1:
		return fmt.Sprintf("%dms", int(secs*1000))
	case secs < 60:
		if secs < 10 {
			return fmt.Sprintf("%.1fs", secs)
		}
		return fmt.Sprintf("%ds", int(secs))
	default:
		mins := int(secs / 60)
		if rest := int(secs) % 60; rest != 0 {
			return fmt.Sprintf("%dm%ds", mins, rest)
		}
		return fmt.Sprintf("%dm", mins)
	}
}

func (result GenerateResult) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result CheckResult) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result GenerateResult) Display() { result.Fprint(os.Stdout) }
func (result CheckResult) Display()    { result.Fprint(os.Stdout) }
func (result RecordsResult) Display()  { result.Fprint(os.Stdout) }
func (result HistoryResult) Display()  { result.Fprint(os.Stdout) }

// Fprint writes the generated record followed by a status line.
func (result GenerateResult) Fprint(w io.Writer) {
	fmt.Fprint(w, result.Output)
	if result.Transaction.Id == "" {
		fmt.Fprintf(w, "%s record %q generated (%s)\n", result.Dialect, result.Table, result.ExecutionTime())
		return
	}
	fmt.Fprintf(w, "%s record %q written to %s, commit %s (%s)\n",
		result.Dialect, result.Table, result.Path, result.Transaction.Short(), result.ExecutionTime())
}

func (result CheckResult) Fprint(w io.Writer) {
	fmt.Fprintln(w, result.Canonical)

	table := newTextTable("#", "Field", "Type")
	for i, field := range result.Statement.Fields() {
		table.Row(fmt.Sprint(i+1), field.Name(), field.Type().Keyword())
	}
	table.Render(w)

	if len(result.Duplicates) > 0 {
		fmt.Fprintf(w, "warning: duplicate field names: %s\n", strings.Join(result.Duplicates, ", "))
	}
	fmt.Fprintf(w, "OK, %d field(s) (%s)\n", result.Statement.Len(), result.ExecutionTime())
}

func (result RecordsResult) Fprint(w io.Writer) {
	table := newTextTable("Record")
	for _, path := range result.Paths {
		table.Row(path)
	}
	if len(result.Paths) > 0 {
		table.Render(w)
	}
	fmt.Fprintf(w, "%d record(s)\n", len(result.Paths))
}

func (result HistoryResult) Fprint(w io.Writer) {
	table := newTextTable("Commit", "When", "Author", "Message")
	for _, txn := range result.Transactions {
		table.Row(txn.Short(), txn.When.Format("2006-01-02 15:04:05"), txn.Author, txn.Message)
	}
	if len(result.Transactions) > 0 {
		table.Render(w)
	}
	fmt.Fprintf(w, "%d commit(s)\n", len(result.Transactions))
}

// FprintError reports err, with a caret snippet for parse errors.
func FprintError(w io.Writer, err error) {
	var parseErr *sql.ParseError
	if errors.As(err, &parseErr) {
		fmt.Fprintf(w, "Error: %s (%s)\n%s\n", parseErr.Message, parseErr.Kind, parseErr.Snippet())
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
