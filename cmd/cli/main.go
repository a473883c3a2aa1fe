package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nickyhof/RecordGen"
	"github.com/nickyhof/RecordGen/config"
	"github.com/nickyhof/RecordGen/db"
	"github.com/nickyhof/RecordGen/logger"
	"github.com/nickyhof/RecordGen/ps"
)

const (
	PromptColor  = "\033[36m" // Cyan
	ErrorColor   = "\033[31m" // Red
	SuccessColor = "\033[32m" // Green
	ResetColor   = "\033[0m"
	BoldColor    = "\033[1m"
)

// Version is set at build time via -ldflags
var Version = "dev"

// app carries flag values and everything opened from them.
type app struct {
	configPath string
	logLevel   string
	dialect    string
	baseDir    string
	gitURL     string
	name       string
	email      string

	config      *config.Config
	persistence *ps.Persistence
	engine      *db.Engine
	logFile     *os.File
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "recordgen",
		Short:         "Generate record declarations from CREATE TABLE statements",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a JSON config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: SILENT, ERROR, WARN, INFO, DEBUG")
	flags.StringVar(&a.dialect, "dialect", "", "output dialect: cpp or go")
	flags.StringVar(&a.baseDir, "baseDir", "", "record repository directory (memory when empty)")
	flags.StringVar(&a.gitURL, "gitUrl", "", "clone the record repository from this Git URL")
	flags.StringVar(&a.name, "name", "", "author name for record commits")
	flags.StringVar(&a.email, "email", "", "author email for record commits")

	root.AddCommand(
		newGenerateCmd(a),
		newCheckCmd(a),
		newDemoCmd(a),
		newReplCmd(a),
		newHistoryCmd(a),
		newExportCmd(a),
		newPushCmd(a),
		newPullCmd(a),
		newRemotesCmd(a),
	)

	return root
}

// setup loads the config, applies flag overrides and opens the engine.
func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.configPath != "" {
		a.config, err = config.LoadConfig(a.configPath)
		if err != nil {
			return a.fail(cmd, err)
		}
	} else {
		a.config = config.Default()
	}

	changed := cmd.Flags().Changed
	if changed("log-level") {
		a.config.LogLevel = a.logLevel
	}
	if changed("dialect") {
		a.config.Dialect = a.dialect
	}
	if changed("baseDir") {
		a.config.Storage.BaseDir = a.baseDir
	}
	if changed("gitUrl") {
		a.config.Storage.GitURL = a.gitURL
	}
	if changed("name") {
		a.config.Identity.Name = a.name
	}
	if changed("email") {
		a.config.Identity.Email = a.email
	}
	if err := a.config.Validate(); err != nil {
		return a.fail(cmd, err)
	}

	if err := a.initLogging(cmd.ErrOrStderr()); err != nil {
		return a.fail(cmd, err)
	}

	a.persistence, err = a.config.OpenPersistence()
	if err != nil {
		return a.fail(cmd, err)
	}

	a.engine = RecordGen.Open(a.persistence).
		Engine(a.config.Identity).
		WithDialect(a.config.ParsedDialect())

	log.Debug().
		Str("dialect", a.engine.Dialect().String()).
		Str("baseDir", a.config.Storage.BaseDir).
		Str("identity", a.config.Identity.String()).
		Msg("engine ready")
	return nil
}

func (a *app) initLogging(stderr io.Writer) error {
	level := logger.ParseLevel(a.config.LogLevel)
	if a.config.LogFile == "" {
		logger.Init(level, stderr, true)
		return nil
	}

	file, err := logger.OpenFile(a.config.LogFile)
	if err != nil {
		return err
	}
	a.logFile = file
	logger.Init(level, file, false)
	return nil
}

func (a *app) close() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

func (a *app) fail(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
	return err
}
