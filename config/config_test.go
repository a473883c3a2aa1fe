package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickyhof/RecordGen/codegen"
	"github.com/nickyhof/RecordGen/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recordgen.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	config := Default()
	assert.Equal(t, "INFO", config.LogLevel)
	assert.Equal(t, "cpp", config.Dialect)
	assert.Equal(t, codegen.CPP, config.ParsedDialect())
	assert.Equal(t, 3307, config.Server.Port)
	assert.Equal(t, core.Identity{Name: "RecordGen", Email: "recordgen@localhost"}, config.Identity)
	assert.Equal(t, "name", config.Server.Auth.NameClaim)
	assert.NoError(t, config.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"log_level": "debug",
		"dialect": "go",
		"identity": {"name": "Alice", "email": "alice@example.com"},
		"storage": {"base_dir": "/var/lib/recordgen"},
		"s3": {"region": "eu-west-1", "endpoint": "http://localhost:9000"},
		"server": {"port": 4000, "auth": {"enabled": true, "jwt_secret": "s3cret", "issuer": "acme"}}
	}`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, codegen.Go, config.ParsedDialect())
	assert.Equal(t, "Alice", config.Identity.Name)
	assert.Equal(t, "/var/lib/recordgen", config.Storage.BaseDir)
	assert.Equal(t, "eu-west-1", config.S3.Region)
	assert.Equal(t, 4000, config.Server.Port)
	assert.True(t, config.Server.Auth.Enabled)
	assert.Equal(t, "acme", config.Server.Auth.Issuer)
	assert.Equal(t, "email", config.Server.Auth.EmailClaim)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("RECORDGEN_LOG_LEVEL", "ERROR")
	t.Setenv("RECORDGEN_DIALECT", "golang")
	t.Setenv("RECORDGEN_BASE_DIR", "/tmp/records")
	t.Setenv("RECORDGEN_JWT_SECRET", "from-env")

	config, err := LoadConfig(writeConfig(t, `{"dialect": "cpp", "server": {"auth": {"enabled": true}}}`))
	require.NoError(t, err)
	assert.Equal(t, "ERROR", config.LogLevel)
	assert.Equal(t, codegen.Go, config.ParsedDialect())
	assert.Equal(t, "/tmp/records", config.Storage.BaseDir)
	assert.Equal(t, "from-env", config.Server.Auth.JWTSecret)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{"bad json", `{"dialect": `, "failed to parse config file"},
		{"bad dialect", `{"dialect": "rust"}`, "invalid dialect"},
		{"bad level", `{"log_level": "verbose"}`, "invalid log_level"},
		{"bad port", `{"server": {"port": 70000}}`, "out of range"},
		{"auth without secret", `{"server": {"auth": {"enabled": true}}}`, "jwt_secret is required"},
		{"half tls", `{"server": {"tls_cert": "cert.pem"}}`, "must be set together"},
		{"git url without dir", `{"storage": {"git_url": "https://example.com/r.git"}}`, "requires storage.base_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.ErrorContains(t, err, tt.errText)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenPersistence(t *testing.T) {
	config := Default()
	config.Storage.BaseDir = ""
	memory, err := config.OpenPersistence()
	require.NoError(t, err)
	assert.True(t, memory.IsInitialized())

	config.Storage.BaseDir = t.TempDir()
	file, err := config.OpenPersistence()
	require.NoError(t, err)
	assert.True(t, file.IsInitialized())
	assert.DirExists(t, filepath.Join(config.Storage.BaseDir, ".git"))
}
