package ps

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectScheme(t *testing.T) {
	tests := []struct {
		location string
		expected scheme
	}{
		{"-", schemeStdio},
		{"s3://bucket/key.sql", schemeS3},
		{"S3://bucket/key.sql", schemeS3},
		{"https://example.com/a.sql", schemeHTTPS},
		{"http://example.com/a.sql", schemeHTTP},
		{"file:///tmp/a.sql", schemeFile},
		{"/tmp/a.sql", schemeLocal},
		{"a.sql", schemeLocal},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.expected, detectScheme(tt.location))
		})
	}
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://records/schemas/users.sql")
	require.NoError(t, err)
	assert.Equal(t, "records", bucket)
	assert.Equal(t, "schemas/users.sql", key)

	for _, bad := range []string{"s3://bucket", "s3://bucket/", "s3:///key"} {
		_, _, err := parseS3URL(bad)
		assert.Error(t, err, bad)
	}
}

func TestLocalReadWrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.h")

	w, err := OpenWriter(ctx, path, nil)
	require.NoError(t, err)
	_, err = io.WriteString(w, "struct t_record\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := ReadAll(ctx, path, nil)
	require.NoError(t, err)
	assert.Equal(t, "struct t_record\n", string(data))

	data, err = ReadAll(ctx, "file://"+path, nil)
	require.NoError(t, err)
	assert.Equal(t, "struct t_record\n", string(data))
}

func TestReadMissingFile(t *testing.T) {
	_, err := ReadAll(context.Background(), filepath.Join(t.TempDir(), "missing.sql"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHTTPReader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schema.sql" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `CREATE TABLE "t" ("a" integer)`)
	}))
	defer server.Close()

	ctx := context.Background()
	data, err := ReadAll(ctx, server.URL+"/schema.sql", nil)
	require.NoError(t, err)
	assert.Equal(t, `CREATE TABLE "t" ("a" integer)`, string(data))

	_, err = ReadAll(ctx, server.URL+"/missing.sql", nil)
	assert.ErrorContains(t, err, "status 404")

	_, err = OpenWriter(ctx, server.URL+"/out.h", nil)
	assert.ErrorContains(t, err, "does not support writing")
}

func TestStdioLocations(t *testing.T) {
	r, err := OpenReader(context.Background(), "-", nil)
	require.NoError(t, err)
	assert.NoError(t, r.Close())

	w, err := OpenWriter(context.Background(), "-", nil)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
}
