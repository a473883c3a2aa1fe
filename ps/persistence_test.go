package ps

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-billy/v6/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickyhof/RecordGen/core"
)

var testIdentity = core.Identity{Name: "test", Email: "test@test.com"}

func runWithBothPersistence(t *testing.T, fn func(t *testing.T, p *Persistence)) {
	t.Run("memory", func(t *testing.T) {
		p, err := NewMemoryPersistence()
		require.NoError(t, err)
		fn(t, p)
	})
	t.Run("file", func(t *testing.T) {
		p, err := NewFilePersistence(t.TempDir(), nil)
		require.NoError(t, err)
		fn(t, p)
	})
}

func TestPersistenceNotInitialized(t *testing.T) {
	var p *Persistence
	assert.False(t, p.IsInitialized())

	_, err := p.WriteRecord("a.h", nil, testIdentity, "msg")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = p.ReadRecord("a.h")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = p.History(0)
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.Equal(t, Transaction{}, p.LatestTransaction())
}

func TestEmptyRepository(t *testing.T) {
	runWithBothPersistence(t, func(t *testing.T, p *Persistence) {
		assert.True(t, p.IsInitialized())
		assert.Equal(t, Transaction{}, p.LatestTransaction())

		records, err := p.ListRecords()
		require.NoError(t, err)
		assert.Empty(t, records)

		history, err := p.History(10)
		require.NoError(t, err)
		assert.Empty(t, history)

		_, err = p.ReadRecord("missing.h")
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestWriteAndReadRecord(t *testing.T) {
	runWithBothPersistence(t, func(t *testing.T, p *Persistence) {
		txn, err := p.WriteRecord("asdf_record.h", []byte("struct asdf_record\n{\n};\n"), testIdentity, `Generate record for "asdf"`)
		require.NoError(t, err)
		assert.Len(t, txn.Id, 40)
		assert.Equal(t, "test <test@test.com>", txn.Author)

		data, err := p.ReadRecord("asdf_record.h")
		require.NoError(t, err)
		assert.Equal(t, "struct asdf_record\n{\n};\n", string(data))

		latest := p.LatestTransaction()
		assert.Equal(t, txn.Id, latest.Id)
		assert.Equal(t, `Generate record for "asdf"`, latest.Message)
		assert.Equal(t, txn.Id[:7], latest.Short())

		_, err = p.ReadRecord("other.h")
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestOverwriteKeepsHistory(t *testing.T) {
	runWithBothPersistence(t, func(t *testing.T, p *Persistence) {
		first, err := p.WriteRecord("t_record.h", []byte("v1"), testIdentity, "first")
		require.NoError(t, err)
		second, err := p.WriteRecord("t_record.h", []byte("v2"), testIdentity, "second")
		require.NoError(t, err)

		data, err := p.ReadRecord("t_record.h")
		require.NoError(t, err)
		assert.Equal(t, "v2", string(data))

		history, err := p.History(0)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, second.Id, history[0].Id)
		assert.Equal(t, first.Id, history[1].Id)
		assert.Equal(t, "first", history[1].Message)

		limited, err := p.History(1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})
}

func TestNestedPathsAndListing(t *testing.T) {
	runWithBothPersistence(t, func(t *testing.T, p *Persistence) {
		for _, path := range []string{"b_record.h", "go/a_record.go", "a_record.h", "go/nested/c_record.go"} {
			_, err := p.WriteRecord(path, []byte(path), testIdentity, "write "+path)
			require.NoError(t, err)
		}

		records, err := p.ListRecords()
		require.NoError(t, err)
		assert.Equal(t, []string{"a_record.h", "b_record.h", "go/a_record.go", "go/nested/c_record.go"}, records)

		data, err := p.ReadRecord("go/nested/c_record.go")
		require.NoError(t, err)
		assert.Equal(t, "go/nested/c_record.go", string(data))
	})
}

func TestInvalidRecordPath(t *testing.T) {
	p, err := NewMemoryPersistence()
	require.NoError(t, err)

	for _, path := range []string{"", "/", "a//b", "../x", ".git/config", "a/./b"} {
		_, err := p.WriteRecord(path, []byte("x"), testIdentity, "bad")
		assert.Error(t, err, path)
	}
}

func TestFilePersistenceWritesWorktree(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFilePersistence(dir, nil)
	require.NoError(t, err)

	_, err = p.WriteRecord("asdf_record.h", []byte("content"), testIdentity, "write")
	require.NoError(t, err)

	data, err := util.ReadFile(osfs.New(dir), "asdf_record.h")
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestFilePersistenceReopen(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFilePersistence(dir, nil)
	require.NoError(t, err)
	txn, err := p.WriteRecord("t_record.h", []byte("kept"), testIdentity, "write")
	require.NoError(t, err)

	reopened, err := NewFilePersistence(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, txn.Id, reopened.LatestTransaction().Id)

	data, err := reopened.ReadRecord("t_record.h")
	require.NoError(t, err)
	assert.Equal(t, "kept", string(data))
}

func TestConcurrentWrites(t *testing.T) {
	p, err := NewMemoryPersistence()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := p.WriteRecord(fmt.Sprintf("t%d_record.h", i), []byte("x"), testIdentity, "write")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	records, err := p.ListRecords()
	require.NoError(t, err)
	assert.Len(t, records, 8)

	history, err := p.History(0)
	require.NoError(t, err)
	assert.Len(t, history, 8)
}

func TestExport(t *testing.T) {
	runWithBothPersistence(t, func(t *testing.T, p *Persistence) {
		_, err := p.WriteRecord("a_record.h", []byte("a"), testIdentity, "a")
		require.NoError(t, err)
		_, err = p.WriteRecord("go/b_record.go", []byte("b"), testIdentity, "b")
		require.NoError(t, err)

		fs := memfs.New()
		count, err := p.Export(fs)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		data, err := util.ReadFile(fs, "go/b_record.go")
		require.NoError(t, err)
		assert.Equal(t, "b", string(data))
	})
}

func TestExportToDirectory(t *testing.T) {
	p, err := NewMemoryPersistence()
	require.NoError(t, err)
	_, err = p.WriteRecord("a_record.h", []byte("a"), testIdentity, "a")
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	count, err := p.Export(osfs.New(dir))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.FileExists(t, filepath.Join(dir, "a_record.h"))
}

func TestExportEmptyRepository(t *testing.T) {
	p, err := NewMemoryPersistence()
	require.NoError(t, err)

	count, err := p.Export(memfs.New())
	require.NoError(t, err)
	assert.Zero(t, count)
}
