package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nickyhof/RecordGen/codegen"
	"github.com/nickyhof/RecordGen/core"
	"github.com/nickyhof/RecordGen/ps"
	"github.com/nickyhof/RecordGen/sql"
)

// Engine parses statements, generates records and, when persistence is
// available, commits each record to the repository. An Engine is cheap; the
// With* methods return modified copies that share the persistence.
type Engine struct {
	persistence *ps.Persistence
	identity    core.Identity
	registry    *core.TypeRegistry
	generator   *codegen.Generator
}

// NewEngine returns a C++ engine. A nil persistence generates without storing.
func NewEngine(persistence *ps.Persistence, identity core.Identity) *Engine {
	return &Engine{
		persistence: persistence,
		identity:    identity,
		registry:    core.NewTypeRegistry(),
		generator:   codegen.New(codegen.CPP),
	}
}

func (engine *Engine) WithDialect(dialect codegen.Dialect) *Engine {
	clone := *engine
	clone.generator = codegen.New(dialect)
	return &clone
}

func (engine *Engine) WithIdentity(identity core.Identity) *Engine {
	clone := *engine
	clone.identity = identity
	return &clone
}

func (engine *Engine) Dialect() codegen.Dialect {
	return engine.generator.Dialect()
}

func (engine *Engine) Identity() core.Identity {
	return engine.identity
}

func (engine *Engine) Persistence() *ps.Persistence {
	return engine.persistence
}

// Execute parses input, generates the record and stores it under the
// record's file name. Parse failures are returned as *sql.ParseError.
func (engine *Engine) Execute(input string) (Result, error) {
	start := time.Now()

	statement, err := sql.NewParser(input, engine.registry).Parse()
	if err != nil {
		log.Debug().Err(err).Msg("statement rejected")
		return nil, err
	}

	result := GenerateResult{
		Table:   statement.Table(),
		Fields:  statement.Fields(),
		Dialect: engine.generator.Dialect(),
		Path:    engine.generator.FileName(statement),
		Output:  engine.generator.Generate(statement),
	}

	if engine.persistence.IsInitialized() {
		message := fmt.Sprintf("Generate record for %q", statement.Table())
		txn, err := engine.persistence.WriteRecord(result.Path, []byte(result.Output), engine.identity, message)
		if err != nil {
			return nil, fmt.Errorf("failed to store record %s: %w", result.Path, err)
		}
		result.Transaction = txn
	}

	result.ExecutionTimeSec = time.Since(start).Seconds()
	log.Info().
		Str("table", result.Table).
		Str("dialect", result.Dialect.String()).
		Str("path", result.Path).
		Str("commit", result.Transaction.Short()).
		Msg("record generated")
	return result, nil
}

// Check parses input without generating or storing anything.
func (engine *Engine) Check(input string) (CheckResult, error) {
	start := time.Now()

	statement, err := sql.NewParser(input, engine.registry).Parse()
	if err != nil {
		return CheckResult{}, err
	}

	result := CheckResult{
		Statement:        statement,
		Canonical:        sql.Format(statement),
		Duplicates:       statement.DuplicateFieldNames(),
		ExecutionTimeSec: time.Since(start).Seconds(),
	}
	if len(result.Duplicates) > 0 {
		log.Warn().Str("table", statement.Table()).Strs("fields", result.Duplicates).Msg("duplicate field names")
	}
	return result, nil
}

func (engine *Engine) Records() (RecordsResult, error) {
	paths, err := engine.persistence.ListRecords()
	if err != nil {
		return RecordsResult{}, err
	}
	return RecordsResult{Paths: paths}, nil
}

// Record returns the stored record of table in the engine's dialect.
func (engine *Engine) Record(table string) ([]byte, error) {
	return engine.persistence.ReadRecord(engine.generator.TableFileName(table))
}

func (engine *Engine) History(limit int) (HistoryResult, error) {
	transactions, err := engine.persistence.History(limit)
	if err != nil {
		return HistoryResult{}, err
	}
	return HistoryResult{Transactions: transactions}, nil
}
