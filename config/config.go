// Package config loads the JSON configuration shared by the recordgen
// binaries.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nickyhof/RecordGen/codegen"
	"github.com/nickyhof/RecordGen/core"
	"github.com/nickyhof/RecordGen/logger"
	"github.com/nickyhof/RecordGen/ps"
)

const (
	DefaultLogLevel = "INFO"
	DefaultDialect  = "cpp"
	DefaultPort     = 3307
)

// StorageConfig selects the record repository. An empty BaseDir means an
// in-memory repository.
type StorageConfig struct {
	BaseDir string `json:"base_dir"`
	GitURL  string `json:"git_url"`
}

type AuthConfig struct {
	Enabled    bool   `json:"enabled"`
	JWTSecret  string `json:"jwt_secret"`
	Issuer     string `json:"issuer"`
	Audience   string `json:"audience"`
	NameClaim  string `json:"name_claim"`
	EmailClaim string `json:"email_claim"`
}

type ServerConfig struct {
	Port    int        `json:"port"`
	TLSCert string     `json:"tls_cert"`
	TLSKey  string     `json:"tls_key"`
	Auth    AuthConfig `json:"auth"`
}

type Config struct {
	LogLevel string        `json:"log_level"`
	LogFile  string        `json:"log_file"`
	Dialect  string        `json:"dialect"`
	Identity core.Identity `json:"identity"`
	Storage  StorageConfig `json:"storage"`
	S3       ps.S3Config   `json:"s3"`
	Server   ServerConfig  `json:"server"`
}

// Default returns the configuration used when no file is given. Environment
// overrides are applied.
func Default() *Config {
	config := &Config{}
	config.applyDefaults()
	config.applyEnv()
	return config
}

// LoadConfig reads the JSON file at path, fills defaults, applies
// RECORDGEN_* environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	config.applyDefaults()
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Dialect == "" {
		c.Dialect = DefaultDialect
	}
	if c.Identity.Name == "" {
		c.Identity.Name = "RecordGen"
	}
	if c.Identity.Email == "" {
		c.Identity.Email = "recordgen@localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Auth.NameClaim == "" {
		c.Server.Auth.NameClaim = "name"
	}
	if c.Server.Auth.EmailClaim == "" {
		c.Server.Auth.EmailClaim = "email"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("RECORDGEN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("RECORDGEN_DIALECT"); v != "" {
		c.Dialect = v
	}
	if v := os.Getenv("RECORDGEN_BASE_DIR"); v != "" {
		c.Storage.BaseDir = v
	}
	if v := os.Getenv("RECORDGEN_JWT_SECRET"); v != "" {
		c.Server.Auth.JWTSecret = v
	}
}

func (c *Config) Validate() error {
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if _, err := codegen.ParseDialect(c.Dialect); err != nil {
		return fmt.Errorf("invalid dialect: %w", err)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return fmt.Errorf("server.tls_cert and server.tls_key must be set together")
	}
	if c.Server.Auth.Enabled && c.Server.Auth.JWTSecret == "" {
		return fmt.Errorf("server.auth.jwt_secret is required when auth is enabled")
	}
	if c.Storage.GitURL != "" && c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.git_url requires storage.base_dir")
	}
	if strings.ContainsRune(c.Identity.Email, ' ') {
		return fmt.Errorf("invalid identity email %q", c.Identity.Email)
	}
	return nil
}

// ParsedDialect returns the configured dialect. Validate has already
// rejected unknown names.
func (c *Config) ParsedDialect() codegen.Dialect {
	dialect, _ := codegen.ParseDialect(c.Dialect)
	return dialect
}

// OpenPersistence opens the configured record repository.
func (c *Config) OpenPersistence() (*ps.Persistence, error) {
	if c.Storage.BaseDir == "" {
		return ps.NewMemoryPersistence()
	}
	var gitURL *string
	if c.Storage.GitURL != "" {
		gitURL = &c.Storage.GitURL
	}
	return ps.NewFilePersistence(c.Storage.BaseDir, gitURL)
}
