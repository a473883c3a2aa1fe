package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-billy/v6/osfs"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nickyhof/RecordGen/db"
	"github.com/nickyhof/RecordGen/ps"
)

// demoStatements are the two statements of the classic asdf example.
var demoStatements = []string{
	`CREATE TABLE "asdf" ("id" integer)`,
	`CREATE TABLE "asdf" ("id" integer, "field1" string)`,
}

func newGenerateCmd(a *app) *cobra.Command {
	var files []string
	var output string

	cmd := &cobra.Command{
		Use:   "generate [STATEMENT...]",
		Short: "Generate records and commit them to the record repository",
		Long: `Generate a record declaration for each CREATE TABLE statement.

Statements come from the arguments and from every --file location (local
path, file://, http(s):// or s3://; "-" is standard input). A location may
hold several statements separated by ';'. Without arguments or files,
statements are read from standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			statements, err := collectStatements(ctx, a, args, files, cmd.InOrStdin())
			if err != nil {
				return a.fail(cmd, err)
			}

			out := cmd.OutOrStdout()
			var w io.WriteCloser
			if output != "" {
				if w, err = ps.OpenWriter(ctx, output, &a.config.S3); err != nil {
					return a.fail(cmd, err)
				}
				defer func() {
					if w != nil {
						w.Close()
					}
				}()
				out = w
			}

			failed := 0
			for _, statement := range statements {
				result, err := a.engine.Execute(statement)
				if err != nil {
					db.FprintError(cmd.ErrOrStderr(), err)
					failed++
					continue
				}
				if _, err := fmt.Fprint(out, result.(db.GenerateResult).Output); err != nil {
					return a.fail(cmd, fmt.Errorf("failed to write record: %w", err))
				}
			}

			// S3 uploads happen on Close.
			if w != nil {
				err, w = w.Close(), nil
				if err != nil {
					return a.fail(cmd, err)
				}
			}
			return summarize(len(statements), failed)
		},
	}

	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "read statements from a location (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write records to a location instead of stdout")
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	var files []string

	cmd := &cobra.Command{
		Use:   "check [STATEMENT...]",
		Short: "Parse statements without generating anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			statements, err := collectStatements(cmd.Context(), a, args, files, cmd.InOrStdin())
			if err != nil {
				return a.fail(cmd, err)
			}

			failed := 0
			for _, statement := range statements {
				result, err := a.engine.Check(statement)
				if err != nil {
					db.FprintError(cmd.ErrOrStderr(), err)
					failed++
					continue
				}
				result.Fprint(cmd.OutOrStdout())
			}
			return summarize(len(statements), failed)
		},
	}

	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "read statements from a location (repeatable)")
	return cmd
}

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Generate the records of the built-in asdf example",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, statement := range demoStatements {
				result, err := a.engine.Execute(statement)
				if err != nil {
					return a.fail(cmd, err)
				}
				fmt.Fprint(cmd.OutOrStdout(), result.(db.GenerateResult).Output)
			}
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List record commits, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.engine.History(limit)
			if err != nil {
				return a.fail(cmd, err)
			}
			result.Fprint(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of commits (0 for all)")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy every stored record into a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := a.persistence.Export(osfs.New(dir))
			if err != nil {
				return a.fail(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s✓ %d record(s) exported to %s%s\n", SuccessColor, count, dir, ResetColor)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "target directory")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

// remoteFlags are shared by push and pull.
type remoteFlags struct {
	remote string
	url    string
	token  string
}

func (flags *remoteFlags) register(cmd *cobra.Command, verb string) {
	cmd.Flags().StringVar(&flags.remote, "remote", ps.DefaultRemote, "remote name")
	cmd.Flags().StringVar(&flags.url, "url", "", "add the remote with this URL before "+verb)
	cmd.Flags().StringVar(&flags.token, "token", "", "access token for HTTPS remotes")
}

// prepare adds the remote when --url is given and returns the auth to use.
func (flags *remoteFlags) prepare(persistence *ps.Persistence) (*ps.RemoteAuth, error) {
	if flags.url != "" {
		if err := persistence.AddRemote(flags.remote, flags.url); err != nil {
			return nil, err
		}
	}
	if flags.token == "" {
		return nil, nil
	}
	return &ps.RemoteAuth{Type: ps.AuthTypeToken, Token: flags.token}, nil
}

func newPushCmd(a *app) *cobra.Command {
	var flags remoteFlags

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push the record repository to a Git remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := flags.prepare(a.persistence)
			if err != nil {
				return a.fail(cmd, err)
			}
			result, err := a.persistence.Push(flags.remote, auth)
			if err != nil {
				return a.fail(cmd, err)
			}
			if result.UpToDate {
				fmt.Fprintf(cmd.OutOrStdout(), "%s✓ %s already up to date%s\n", SuccessColor, result.Remote, ResetColor)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s✓ pushed %s to %s%s\n", SuccessColor, result.Head.Short(), result.Remote, ResetColor)
			return nil
		},
	}

	flags.register(cmd, "pushing")
	return cmd
}

func newPullCmd(a *app) *cobra.Command {
	var flags remoteFlags

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Fast-forward the record repository from a Git remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := flags.prepare(a.persistence)
			if err != nil {
				return a.fail(cmd, err)
			}
			result, err := a.persistence.Pull(flags.remote, auth)
			if err != nil {
				return a.fail(cmd, err)
			}
			out := cmd.OutOrStdout()
			if result.UpToDate {
				fmt.Fprintf(out, "%s✓ already up to date with %s%s\n", SuccessColor, result.Remote, ResetColor)
				return nil
			}
			for _, path := range result.Changed {
				fmt.Fprintf(out, "  %s\n", path)
			}
			fmt.Fprintf(out, "%s✓ pulled %s from %s, %d record(s) changed%s\n",
				SuccessColor, result.Head.Short(), result.Remote, len(result.Changed), ResetColor)
			return nil
		},
	}

	flags.register(cmd, "pulling")
	return cmd
}

func newRemotesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remotes",
		Short: "List the Git remotes of the record repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			remotes, err := a.persistence.Remotes()
			if err != nil {
				return a.fail(cmd, err)
			}
			if len(remotes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No remotes")
				return nil
			}
			for _, remote := range remotes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", remote.Name, strings.Join(remote.URLs, ", "))
			}
			return nil
		},
	}
}

// collectStatements gathers statements from args, then from each location.
// With neither, stdin is read.
func collectStatements(ctx context.Context, a *app, args, locations []string, stdin io.Reader) ([]string, error) {
	statements := append([]string(nil), args...)

	if len(args) == 0 && len(locations) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return splitStatements(string(data)), nil
	}

	for _, location := range locations {
		data, err := ps.ReadAll(ctx, location, &a.config.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", location, err)
		}
		found := splitStatements(string(data))
		log.Debug().Str("location", location).Int("statements", len(found)).Msg("statements loaded")
		statements = append(statements, found...)
	}
	return statements, nil
}

func summarize(total, failed int) error {
	if failed > 0 {
		return fmt.Errorf("%d of %d statement(s) failed", failed, total)
	}
	return nil
}
