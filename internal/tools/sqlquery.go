// Package tools provides the built-in data-analysis tool catalog:
// SQL querying and visualization generation.
package tools

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kestrelhq/kestrel/internal/logging"
)

// maxQueryRows caps the rows rendered into a result table so a broad
// query cannot flood the model's context.
const maxQueryRows = 200

// SQLQueryTool executes read-only SQL against the analysis database and
// renders the result as a markdown table.
type SQLQueryTool struct {
	db  *sql.DB
	log *logging.Logger
}

// NewSQLQueryTool creates the query_database tool over the given database.
func NewSQLQueryTool(db *sql.DB, log *logging.Logger) *SQLQueryTool {
	return &SQLQueryTool{db: db, log: log.Sub("tools.sql")}
}

func (t *SQLQueryTool) Name() string { return "query_database" }

func (t *SQLQueryTool) Description() string {
	return "Execute a read-only SQL query against the analysis database. " +
		"Returns the result as a markdown table."
}

func (t *SQLQueryTool) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "The SQL query to execute. SELECT statements only."
			}
		},
		"required": ["query"]
	}`
}

// Execute runs the query and renders the rows. Errors come back as
// values so the dispatch boundary can report them to the model.
func (t *SQLQueryTool) Execute(ctx context.Context, args string) (string, error) {
	var in struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(in.Query) == "" {
		return "", fmt.Errorf("query is required")
	}
	if !isReadOnlyQuery(in.Query) {
		return "", fmt.Errorf("only SELECT queries are allowed")
	}

	t.log.Debug().Str("query", in.Query).Msg("executing query")

	rows, err := t.db.QueryContext(ctx, in.Query)
	if err != nil {
		return "", fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	table, err := renderMarkdownTable(rows)
	if err != nil {
		return "", err
	}
	return table, nil
}

// isReadOnlyQuery accepts SELECT statements, including CTE form.
func isReadOnlyQuery(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	return strings.HasPrefix(q, "SELECT") || strings.HasPrefix(q, "WITH")
}

// renderMarkdownTable renders a result set as a markdown table, capped
// at maxQueryRows with a truncation note.
func renderMarkdownTable(rows *sql.Rows) (string, error) {
	cols, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("reading columns: %w", err)
	}

	var b strings.Builder
	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(cols)) + "\n")

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	count := 0
	truncated := false
	for rows.Next() {
		if count >= maxQueryRows {
			truncated = true
			break
		}
		if err := rows.Scan(ptrs...); err != nil {
			return "", fmt.Errorf("scanning row: %w", err)
		}
		cells := make([]string, len(cols))
		for i, v := range values {
			cells[i] = formatCell(v)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		count++
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterating rows: %w", err)
	}

	if count == 0 {
		b.WriteString("\n(no rows)\n")
	}
	if truncated {
		fmt.Fprintf(&b, "\n(truncated to first %d rows)\n", maxQueryRows)
	}
	return b.String(), nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return sanitizeCell(string(x))
	case string:
		return sanitizeCell(x)
	default:
		return sanitizeCell(fmt.Sprintf("%v", x))
	}
}

// sanitizeCell keeps cell content from breaking table structure.
func sanitizeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
