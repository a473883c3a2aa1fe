package db

import (
	"encoding/json"
	"errors"

	"github.com/nickyhof/RecordGen/sql"
)

// Response is the JSON envelope shared by the TCP server and the C bindings.
// Position is set only for parse errors, since offset 0 is meaningful.
type Response struct {
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitempty"`
	ErrorKind string          `json:"error_kind,omitempty"`
	Position  *int            `json:"position,omitempty"`
	Type      string          `json:"type,omitempty"` // "record", "check", "records", "history" or "auth"
	Result    json.RawMessage `json:"result,omitempty"`
}

// RecordResponse describes one generated record.
type RecordResponse struct {
	Table   string  `json:"table"`
	Dialect string  `json:"dialect"`
	Path    string  `json:"path"`
	Record  string  `json:"record"`
	Commit  string  `json:"commit,omitempty"`
	TimeMs  float64 `json:"time_ms"`
}

type FieldResponse struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CheckResponse describes a parsed statement.
type CheckResponse struct {
	Table      string          `json:"table"`
	Fields     []FieldResponse `json:"fields"`
	Canonical  string          `json:"canonical"`
	Duplicates []string        `json:"duplicates,omitempty"`
	TimeMs     float64         `json:"time_ms"`
}

type RecordsResponse struct {
	Paths []string `json:"paths"`
}

type TransactionResponse struct {
	Id      string `json:"id"`
	When    string `json:"when"`
	Author  string `json:"author"`
	Message string `json:"message"`
}

type HistoryResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// NewResponse wraps an engine outcome. A non-nil err always produces a
// failed response.
func NewResponse(result Result, err error) Response {
	if err != nil {
		return ErrorResponse(err)
	}

	var payload any
	var kind string

	switch r := result.(type) {
	case GenerateResult:
		kind = "record"
		payload = RecordResponse{
			Table:   r.Table,
			Dialect: r.Dialect.String(),
			Path:    r.Path,
			Record:  r.Output,
			Commit:  r.Transaction.Id,
			TimeMs:  r.ExecutionTimeSec * 1000,
		}
	case CheckResult:
		fields := make([]FieldResponse, 0, r.Statement.Len())
		for _, field := range r.Statement.Fields() {
			fields = append(fields, FieldResponse{Name: field.Name(), Type: field.Type().Keyword()})
		}
		kind = "check"
		payload = CheckResponse{
			Table:      r.Statement.Table(),
			Fields:     fields,
			Canonical:  r.Canonical,
			Duplicates: r.Duplicates,
			TimeMs:     r.ExecutionTimeSec * 1000,
		}
	case RecordsResult:
		kind = "records"
		payload = RecordsResponse{Paths: append([]string{}, r.Paths...)}
	case HistoryResult:
		transactions := make([]TransactionResponse, 0, len(r.Transactions))
		for _, txn := range r.Transactions {
			transactions = append(transactions, TransactionResponse{
				Id:      txn.Id,
				When:    txn.When.UTC().Format("2006-01-02T15:04:05Z"),
				Author:  txn.Author,
				Message: txn.Message,
			})
		}
		kind = "history"
		payload = HistoryResponse{Transactions: transactions}
	default:
		return Response{Success: true, Type: "unknown"}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return ErrorResponse(err)
	}
	return Response{Success: true, Type: kind, Result: data}
}

// ErrorResponse reports err, with kind and position for parse errors.
func ErrorResponse(err error) Response {
	response := Response{Error: err.Error()}

	var parseErr *sql.ParseError
	if errors.As(err, &parseErr) {
		position := parseErr.Position
		response.Error = parseErr.Message
		response.ErrorKind = parseErr.Kind.String()
		response.Position = &position
	}
	return response
}
