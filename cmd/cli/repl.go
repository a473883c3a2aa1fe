package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nickyhof/RecordGen/codegen"
	"github.com/nickyhof/RecordGen/db"
)

const maxHistory = 1000

// CLI is the interactive shell state.
type CLI struct {
	engine      *db.Engine
	in          io.Reader
	out         io.Writer
	history     []string
	historyFile string
}

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := &CLI{
				engine:      a.engine,
				in:          cmd.InOrStdin(),
				out:         cmd.OutOrStdout(),
				historyFile: getHistoryPath(),
			}
			cli.loadHistory()
			cli.printBanner()
			cli.run()
			cli.saveHistory()
			return nil
		},
	}
}

func (cli *CLI) printBanner() {
	versionLine := fmt.Sprintf("RecordGen v%s", Version)
	padding := max(39-len(versionLine)-2, 0)
	left := padding / 2

	fmt.Fprintln(cli.out)
	fmt.Fprintf(cli.out, "%s%s╔═══════════════════════════════════════╗%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintf(cli.out, "%s%s║ %*s%s%*s ║%s\n", BoldColor, PromptColor, left, "", versionLine, padding-left, "", ResetColor)
	fmt.Fprintf(cli.out, "%s%s║   CREATE TABLE to record generator    ║%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintf(cli.out, "%s%s╚═══════════════════════════════════════╝%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintln(cli.out)
	fmt.Fprintln(cli.out, "Type .help for commands, .quit to exit")
	fmt.Fprintln(cli.out)
}

// run reads statements terminated by ';', possibly over several lines, until
// EOF or .quit.
func (cli *CLI) run() {
	reader := bufio.NewReader(cli.in)
	var pending strings.Builder

	for {
		fmt.Fprint(cli.out, cli.prompt(pending.Len() > 0))

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintf(cli.out, "\n%sGoodbye!%s\n", SuccessColor, ResetColor)
			return
		}
		line = strings.TrimRight(line, "\r\n")

		if strings.TrimSpace(line) == "" {
			continue
		}

		if pending.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ".") {
			if !cli.handleCommand(strings.TrimSpace(line)) {
				return
			}
			continue
		}

		pending.WriteString(line)
		trimmed := strings.TrimSpace(pending.String())
		if !strings.HasSuffix(trimmed, ";") {
			pending.WriteString("\n")
			continue
		}
		pending.Reset()

		for _, statement := range splitStatements(trimmed) {
			cli.addToHistory(statement + ";")
			cli.execute(statement)
		}
	}
}

func (cli *CLI) execute(statement string) {
	result, err := cli.engine.Execute(statement)
	if err != nil {
		fmt.Fprint(cli.out, ErrorColor)
		db.FprintError(cli.out, err)
		fmt.Fprint(cli.out, ResetColor)
		return
	}
	result.Fprint(cli.out)
}

func (cli *CLI) prompt(continuation bool) string {
	if continuation {
		return fmt.Sprintf("%s   ...>%s ", PromptColor, ResetColor)
	}
	return fmt.Sprintf("%srecordgen (%s)>%s ", PromptColor, cli.engine.Dialect(), ResetColor)
}

// handleCommand runs a dot command. It returns false when the shell should
// exit.
func (cli *CLI) handleCommand(input string) bool {
	parts := strings.Fields(input)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit", ".q":
		fmt.Fprintf(cli.out, "%sGoodbye!%s\n", SuccessColor, ResetColor)
		return false

	case ".help", ".h", ".?":
		cli.printHelp()

	case ".dialect":
		if len(parts) < 2 {
			fmt.Fprintf(cli.out, "Current dialect: %s\n", cli.engine.Dialect())
			break
		}
		dialect, err := codegen.ParseDialect(parts[1])
		if err != nil {
			fmt.Fprintf(cli.out, "%s✗ %v%s\n", ErrorColor, err, ResetColor)
			break
		}
		cli.engine = cli.engine.WithDialect(dialect)
		fmt.Fprintf(cli.out, "%s✓ Dialect: %s%s\n", SuccessColor, dialect, ResetColor)

	case ".check":
		statement := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(input, parts[0])), ";")
		result, err := cli.engine.Check(statement)
		if err != nil {
			db.FprintError(cli.out, err)
			break
		}
		result.Fprint(cli.out)

	case ".records":
		result, err := cli.engine.Records()
		if err != nil {
			db.FprintError(cli.out, err)
			break
		}
		result.Fprint(cli.out)

	case ".log":
		limit := 20
		if len(parts) > 1 {
			if n, err := strconv.Atoi(parts[1]); err == nil {
				limit = n
			}
		}
		result, err := cli.engine.History(limit)
		if err != nil {
			db.FprintError(cli.out, err)
			break
		}
		result.Fprint(cli.out)

	case ".history":
		cli.printHistory()

	case ".clear", ".cls":
		fmt.Fprint(cli.out, "\033[H\033[2J")

	case ".version":
		fmt.Fprintf(cli.out, "RecordGen version %s\n", Version)

	default:
		fmt.Fprintf(cli.out, "%s✗ Unknown command: %s (type .help for commands)%s\n", ErrorColor, parts[0], ResetColor)
	}

	return true
}

func (cli *CLI) printHelp() {
	fmt.Fprintln(cli.out)
	fmt.Fprintf(cli.out, "%s%sSpecial Commands:%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintln(cli.out, "  .help, .h          Show this help message")
	fmt.Fprintln(cli.out, "  .quit, .exit       Exit the shell")
	fmt.Fprintln(cli.out, "  .dialect [cpp|go]  Show or switch the output dialect")
	fmt.Fprintln(cli.out, "  .check <stmt>      Parse a statement without generating")
	fmt.Fprintln(cli.out, "  .records           List stored records")
	fmt.Fprintln(cli.out, "  .log [n]           Show the last n record commits")
	fmt.Fprintln(cli.out, "  .history           Show command history")
	fmt.Fprintln(cli.out, "  .clear             Clear the screen")
	fmt.Fprintln(cli.out, "  .version           Show version info")
	fmt.Fprintln(cli.out)
	fmt.Fprintf(cli.out, "%s%sStatements:%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintln(cli.out, `  CREATE TABLE "<table>" ("<field>" integer|string, ...);`)
	fmt.Fprintln(cli.out)
}

func (cli *CLI) addToHistory(command string) {
	if len(cli.history) > 0 && cli.history[len(cli.history)-1] == command {
		return
	}
	cli.history = append(cli.history, command)
	if len(cli.history) > maxHistory {
		cli.history = cli.history[len(cli.history)-maxHistory:]
	}
}

func (cli *CLI) printHistory() {
	if len(cli.history) == 0 {
		fmt.Fprintln(cli.out, "No command history")
		return
	}
	start := max(len(cli.history)-20, 0)
	for i := start; i < len(cli.history); i++ {
		fmt.Fprintf(cli.out, "  %3d  %s\n", i+1, truncate(cli.history[i], 70))
	}
}

func getHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".recordgen_history")
}

// History entries are stored one per line with newlines escaped, since
// statements may span lines.
func (cli *CLI) loadHistory() {
	if cli.historyFile == "" {
		return
	}
	file, err := os.Open(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		cli.history = append(cli.history, strings.ReplaceAll(scanner.Text(), `\n`, "\n"))
	}
}

func (cli *CLI) saveHistory() {
	if cli.historyFile == "" {
		return
	}
	file, err := os.Create(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	for _, entry := range cli.history[max(len(cli.history)-maxHistory, 0):] {
		_, _ = file.WriteString(strings.ReplaceAll(entry, "\n", `\n`) + "\n")
	}
}
