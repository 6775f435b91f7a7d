package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/lineagemap/internal/cli/config"
	"github.com/leapstack-labs/lineagemap/pkg/lineage"
	"github.com/spf13/cobra"
)

// TraceOptions holds options for the trace command.
type TraceOptions struct {
	SQL string
}

// NewTraceCommand creates the trace command.
func NewTraceCommand() *cobra.Command {
	opts := &TraceOptions{}

	cmd := &cobra.Command{
		Use:   "trace [file]",
		Short: "Resolve table-level lineage for a SQL statement",
		Long: `Parse one SQL statement and print its lineage graph: raw source tables,
CTEs, the write target, and the directed edges connecting them.

The statement is read from the given file, from --sql, or from stdin.`,
		Example: `  # Trace a statement from a file
  lineagemap trace query.sql

  # Trace an inline statement
  lineagemap trace --sql "INSERT INTO report SELECT * FROM raw_sales"

  # Trace from stdin, emit JSON
  cat query.sql | lineagemap trace --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.SQL, "sql", "", "SQL statement to trace (instead of a file)")

	return cmd
}

func runTrace(cmd *cobra.Command, args []string, opts *TraceOptions) error {
	cfg := config.FromContext(cmd.Context())

	sqlText, err := readStatement(cmd, args, opts)
	if err != nil {
		return err
	}
	if strings.TrimSpace(sqlText) == "" {
		return fmt.Errorf("no SQL statement provided")
	}

	result, err := lineage.Extract(sqlText)
	if err != nil {
		return err
	}

	if cfg.OutputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return renderText(cmd.OutOrStdout(), result)
}

// readStatement reads the SQL text from --sql, the file argument, or stdin.
func readStatement(cmd *cobra.Command, args []string, opts *TraceOptions) (string, error) {
	if opts.SQL != "" {
		return opts.SQL, nil
	}
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// renderText prints the node table and edge list.
func renderText(w io.Writer, result lineage.Result) error {
	if len(result.Nodes) == 0 {
		_, _ = fmt.Fprintln(w, "(no tables referenced)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"NODE", "CATEGORY", "LABEL"})
	for _, node := range result.Nodes {
		t.AppendRow(table.Row{node.ID, string(node.Category), node.Label})
	}
	t.Render()

	_, _ = fmt.Fprintf(w, "\nEdges (%d):\n", len(result.Edges))
	for _, edge := range result.Edges {
		_, _ = fmt.Fprintf(w, "  %s -> %s\n", edge.From, edge.To)
	}
	return nil
}
