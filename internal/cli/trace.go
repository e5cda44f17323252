package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Robertorosmaninho/mlir/internal/engine"
	"github.com/Robertorosmaninho/mlir/internal/journal"
)

// TraceResult is the trace command's output payload.
type TraceResult struct {
	Journal      string               `json:"journal"`
	Count        int                  `json:"count"`
	Applications []engine.Application `json:"applications"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	var ruleID string

	cmd := &cobra.Command{
		Use:   "trace <journal.db>",
		Short: "Dump an applied-rewrite journal",
		Long: `Read a rewrite journal written by 'drr apply --journal' and print
its applications in logical order (seq, then id).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(rootOpts, cmd, args[0], ruleID)
		},
	}

	cmd.Flags().StringVar(&ruleID, "rule", "", "only show applications of this rule")

	return cmd
}

func runTrace(opts *RootOptions, cmd *cobra.Command, journalPath, ruleID string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(journalPath); os.IsNotExist(err) {
		msg := fmt.Sprintf("journal not found: %s", journalPath)
		formatter.Error("E_JOURNAL", msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	j, err := journal.Open(journalPath)
	if err != nil {
		formatter.Error("E_JOURNAL", err.Error(), nil)
		return WrapExitError(ExitCommandError, "open journal", err)
	}
	defer j.Close()

	var apps []engine.Application
	if ruleID != "" {
		apps, err = j.ListByRule(cmd.Context(), ruleID)
	} else {
		apps, err = j.List(cmd.Context())
	}
	if err != nil {
		formatter.Error("E_JOURNAL", err.Error(), nil)
		return WrapExitError(ExitCommandError, "read journal", err)
	}

	result := &TraceResult{
		Journal:      journalPath,
		Count:        len(apps),
		Applications: apps,
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(renderTrace(result))
}

// renderTrace formats a trace result for text output.
func renderTrace(r *TraceResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "journal: %s (%d applications)\n", r.Journal, r.Count)
	for _, app := range r.Applications {
		fmt.Fprintf(&b, "[%d] rule=%s root=%s id=%s binding=%s\n", app.Seq, app.RuleID, app.RootOp, app.ID, app.BindingHash)
	}
	return strings.TrimRight(b.String(), "\n")
}
