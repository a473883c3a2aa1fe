package main

/*
#include <stdlib.h>
*/
import "C"
import (
	"encoding/json"
	"errors"
	"sync"
	"unsafe"

	"github.com/nickyhof/RecordGen"
	"github.com/nickyhof/RecordGen/codegen"
	"github.com/nickyhof/RecordGen/core"
	"github.com/nickyhof/RecordGen/db"
	"github.com/nickyhof/RecordGen/ps"
	"github.com/nickyhof/RecordGen/sql"
)

var bindingIdentity = core.Identity{
	Name:  "RecordGen Bindings",
	Email: "bindings@recordgen.local",
}

var errInvalidHandle = errors.New("invalid handle")

// Handle is an open record repository.
type Handle struct {
	instance *RecordGen.Instance
	engine   *db.Engine
}

var (
	handlesMu  sync.Mutex
	handles    = make(map[int]*Handle)
	nextHandle = 1
)

func register(persistence *ps.Persistence) C.int {
	instance := RecordGen.Open(persistence)

	handlesMu.Lock()
	defer handlesMu.Unlock()
	handle := nextHandle
	nextHandle++
	handles[handle] = &Handle{
		instance: instance,
		engine:   instance.Engine(bindingIdentity),
	}
	return C.int(handle)
}

func lookup(handle C.int) (*Handle, bool) {
	handlesMu.Lock()
	defer handlesMu.Unlock()
	h, ok := handles[int(handle)]
	return h, ok
}

// recordgen_translate parses one statement and returns its C++ record as a
// JSON Response. Nothing is stored. The caller frees the result with
// recordgen_free.
//
//export recordgen_translate
func recordgen_translate(input *C.char) *C.char {
	statement, err := sql.Parse(C.GoString(input))
	if err != nil {
		return encode(db.ErrorResponse(err))
	}

	generator := codegen.New(codegen.CPP)
	data, _ := json.Marshal(db.RecordResponse{
		Table:   statement.Table(),
		Dialect: generator.Dialect().String(),
		Path:    generator.FileName(statement),
		Record:  generator.Generate(statement),
	})
	return encode(db.Response{Success: true, Type: "record", Result: data})
}

//export recordgen_open_memory
func recordgen_open_memory() C.int {
	persistence, err := ps.NewMemoryPersistence()
	if err != nil {
		return -1
	}
	return register(persistence)
}

//export recordgen_open_file
func recordgen_open_file(path *C.char) C.int {
	persistence, err := ps.NewFilePersistence(C.GoString(path), nil)
	if err != nil {
		return -1
	}
	return register(persistence)
}

//export recordgen_close
func recordgen_close(handle C.int) {
	handlesMu.Lock()
	delete(handles, int(handle))
	handlesMu.Unlock()
}

// recordgen_generate generates and stores the record of one statement in the
// given dialect ("cpp" when empty).
//
//export recordgen_generate
func recordgen_generate(handle C.int, input *C.char, dialect *C.char) *C.char {
	h, ok := lookup(handle)
	if !ok {
		return encode(db.ErrorResponse(errInvalidHandle))
	}

	engine := h.engine
	if name := C.GoString(dialect); name != "" {
		parsed, err := codegen.ParseDialect(name)
		if err != nil {
			return encode(db.ErrorResponse(err))
		}
		engine = engine.WithDialect(parsed)
	}
	return encode(db.NewResponse(engine.Execute(C.GoString(input))))
}

//export recordgen_free
func recordgen_free(ptr *C.char) {
	C.free(unsafe.Pointer(ptr))
}

func encode(resp db.Response) *C.char {
	data, err := json.Marshal(resp)
	if err != nil {
		data = []byte(`{"success":false,"error":"failed to encode response"}`)
	}
	return C.CString(string(data))
}

func main() {}
