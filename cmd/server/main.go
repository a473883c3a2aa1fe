package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nickyhof/RecordGen"
	"github.com/nickyhof/RecordGen/config"
	"github.com/nickyhof/RecordGen/logger"
)

// Version is set at build time via -ldflags
var Version = "dev"

type options struct {
	configPath string
	logLevel   string
	port       int
	dialect    string
	baseDir    string
	gitURL     string
	tlsCert    string
	tlsKey     string
	jwtSecret  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "recordgen-server",
		Short:         "Serve record generation over TCP",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to a JSON config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: SILENT, ERROR, WARN, INFO, DEBUG")
	flags.IntVar(&opts.port, "port", config.DefaultPort, "TCP port to listen on")
	flags.StringVar(&opts.dialect, "dialect", "", "default output dialect: cpp or go")
	flags.StringVar(&opts.baseDir, "baseDir", "", "record repository directory (memory when empty)")
	flags.StringVar(&opts.gitURL, "gitUrl", "", "clone the record repository from this Git URL")
	flags.StringVar(&opts.tlsCert, "tls-cert", "", "TLS certificate file")
	flags.StringVar(&opts.tlsKey, "tls-key", "", "TLS private key file")
	flags.StringVar(&opts.jwtSecret, "jwt-secret", "", "require AUTH JWT tokens signed with this secret")

	return cmd
}

// load builds the effective config: file, then environment, then flags.
func (opts *options) load(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(opts.configPath); err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	changed := cmd.Flags().Changed
	if changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if changed("port") {
		cfg.Server.Port = opts.port
	}
	if changed("dialect") {
		cfg.Dialect = opts.dialect
	}
	if changed("baseDir") {
		cfg.Storage.BaseDir = opts.baseDir
	}
	if changed("gitUrl") {
		cfg.Storage.GitURL = opts.gitURL
	}
	if changed("tls-cert") {
		cfg.Server.TLSCert = opts.tlsCert
	}
	if changed("tls-key") {
		cfg.Server.TLSKey = opts.tlsKey
	}
	if changed("jwt-secret") {
		cfg.Server.Auth.Enabled = true
		cfg.Server.Auth.JWTSecret = opts.jwtSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(cfg *config.Config) error {
	if cfg.LogFile != "" {
		file, err := logger.OpenFile(cfg.LogFile)
		if err != nil {
			return err
		}
		defer file.Close()
		logger.Init(logger.ParseLevel(cfg.LogLevel), file, false)
	} else {
		logger.Init(logger.ParseLevel(cfg.LogLevel), os.Stderr, true)
	}

	persistence, err := cfg.OpenPersistence()
	if err != nil {
		return err
	}
	instance := RecordGen.Open(persistence)

	var server *Server
	if cfg.Server.Auth.Enabled {
		server = NewServerWithAuth(instance, cfg.Identity, cfg.ParsedDialect(), &cfg.Server.Auth)
	} else {
		server = NewServer(instance, cfg.Identity, cfg.ParsedDialect())
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	if cfg.Server.TLSCert != "" {
		err = server.StartTLS(addr, cfg.Server.TLSCert, cfg.Server.TLSKey)
	} else {
		err = server.Start(addr)
	}
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Printf("║   RecordGen Server v%-17s ║\n", Version)
	fmt.Println("║   CREATE TABLE to record generator    ║")
	fmt.Println("╚═══════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Listening on port %d\n", cfg.Server.Port)
	fmt.Println("Send statements or JSON requests (one per line), 'quit' to disconnect")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down")
	server.Stop()
	log.Info().Msg("server stopped")
	return nil
}
