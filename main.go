package RecordGen

import (
	"github.com/nickyhof/RecordGen/codegen"
	"github.com/nickyhof/RecordGen/core"
	"github.com/nickyhof/RecordGen/db"
	"github.com/nickyhof/RecordGen/ps"
	"github.com/nickyhof/RecordGen/sql"
)

type Instance struct {
	Persistence *ps.Persistence
}

func Open(persistence *ps.Persistence) *Instance {
	return &Instance{
		Persistence: persistence,
	}
}

func (instance *Instance) Engine(identity core.Identity) *db.Engine {
	return db.NewEngine(instance.Persistence, identity)
}

// Translate parses a single CREATE TABLE statement and returns its C++
// record. Nothing is stored.
func Translate(input string) (string, error) {
	statement, err := sql.Parse(input)
	if err != nil {
		return "", err
	}
	return codegen.Generate(statement), nil
}
