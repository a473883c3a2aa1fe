package main

import "strings"

// splitStatements splits input on ';' outside double-quoted identifiers and
// drops "--" comment lines and empty statements.
func splitStatements(content string) []string {
	var statements []string
	var current strings.Builder
	inQuotes := false

	flush := func() {
		if statement := strings.TrimSpace(current.String()); statement != "" {
			statements = append(statements, statement)
		}
		current.Reset()
	}

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if ch == '"' {
			inQuotes = !inQuotes
		}

		if !inQuotes && ch == '-' && i+1 < len(content) && content[i+1] == '-' {
			for i < len(content) && content[i] != '\n' {
				i++
			}
			if i < len(content) {
				current.WriteByte('\n')
			}
			continue
		}

		if !inQuotes && ch == ';' {
			flush()
			continue
		}

		current.WriteByte(ch)
	}

	flush()
	return statements
}

// truncate shortens s to max bytes with an ellipsis, on one line.
func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
