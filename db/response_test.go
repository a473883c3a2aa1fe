package db

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickyhof/RecordGen/codegen"
	"github.com/nickyhof/RecordGen/core"
	"github.com/nickyhof/RecordGen/ps"
	"github.com/nickyhof/RecordGen/sql"
)

func TestNewResponseGenerate(t *testing.T) {
	resp := NewResponse(GenerateResult{
		Table:            "t",
		Dialect:          codegen.Go,
		Path:             "t_record.go",
		Output:           "type t_record struct {\n}\n",
		Transaction:      ps.Transaction{Id: "abc1234def"},
		ExecutionTimeSec: 0.5,
	}, nil)

	require.True(t, resp.Success)
	assert.Equal(t, "record", resp.Type)
	assert.Nil(t, resp.Position)

	var record RecordResponse
	require.NoError(t, json.Unmarshal(resp.Result, &record))
	assert.Equal(t, RecordResponse{
		Table:   "t",
		Dialect: "go",
		Path:    "t_record.go",
		Record:  "type t_record struct {\n}\n",
		Commit:  "abc1234def",
		TimeMs:  500,
	}, record)
}

func TestNewResponseCheck(t *testing.T) {
	statement := core.MustStatement("t", core.MustField("a", core.Integer), core.MustField("b", core.String))
	resp := NewResponse(CheckResult{Statement: statement, Canonical: sql.Format(statement)}, nil)

	require.True(t, resp.Success)
	assert.Equal(t, "check", resp.Type)

	var check CheckResponse
	require.NoError(t, json.Unmarshal(resp.Result, &check))
	assert.Equal(t, "t", check.Table)
	assert.Equal(t, []FieldResponse{{"a", "integer"}, {"b", "string"}}, check.Fields)
	assert.Equal(t, `CREATE TABLE "t" ("a" integer, "b" string)`, check.Canonical)
	assert.Empty(t, check.Duplicates)
}

func TestNewResponseEmptyRecords(t *testing.T) {
	resp := NewResponse(RecordsResult{}, nil)
	require.True(t, resp.Success)
	assert.JSONEq(t, `{"paths": []}`, string(resp.Result))
}

func TestErrorResponse(t *testing.T) {
	_, err := sql.Parse(`CREATE TABLE "t" ("a" int)`)
	require.Error(t, err)

	resp := NewResponse(CheckResult{}, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "UnknownTypeKeyword", resp.ErrorKind)
	require.NotNil(t, resp.Position)
	assert.Equal(t, 22, *resp.Position)

	resp = ErrorResponse(errors.New("boom"))
	assert.Equal(t, "boom", resp.Error)
	assert.Empty(t, resp.ErrorKind)
	assert.Nil(t, resp.Position)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": false, "error": "boom"}`, string(data))
}

func TestErrorResponsePositionZeroIsEncoded(t *testing.T) {
	_, err := sql.Parse(``)
	data, marshalErr := json.Marshal(ErrorResponse(err))
	require.NoError(t, marshalErr)
	assert.Contains(t, string(data), `"position":0`)
}
