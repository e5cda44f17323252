package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Robertorosmaninho/mlir/internal/engine"
	"github.com/Robertorosmaninho/mlir/internal/journal"
	"github.com/Robertorosmaninho/mlir/internal/pattern"
)

// ApplyResult is the apply command's output payload.
type ApplyResult struct {
	RuleSet      string               `json:"rule_set"`
	Applied      int                  `json:"applied"`
	Graph        string               `json:"graph"`
	Applications []engine.Application `json:"applications,omitempty"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		ruleSetName string
		journalPath string
		maxApps     int
	)

	cmd := &cobra.Command{
		Use:   "apply <graph.yaml>",
		Short: "Run a rule set over a graph fixture",
		Long: `Load a YAML graph fixture, run a built-in rule set over it to a
fixed point, and print the rewritten graph.

With --journal, applied rewrites are also recorded to a SQLite journal
for later inspection via 'drr trace'.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(rootOpts, cmd, args[0], ruleSetName, journalPath, maxApps)
		},
	}

	cmd.Flags().StringVar(&ruleSetName, "rules", "fuse", "built-in rule set to apply")
	cmd.Flags().StringVar(&journalPath, "journal", "", "SQLite journal path (omit to disable journaling)")
	cmd.Flags().IntVar(&maxApps, "max-applications", engine.DefaultMaxApplications, "rewrite application cap for the pass")

	return cmd
}

func runApply(opts *RootOptions, cmd *cobra.Command, graphPath, ruleSetName, journalPath string, maxApps int) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	rs, err := LookupRuleSet(ruleSetName)
	if err != nil {
		formatter.Error("E_RULESET", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	fixture, err := LoadGraphFixture(graphPath)
	if err != nil {
		formatter.Error("E_FIXTURE", err.Error(), nil)
		return WrapExitError(ExitCommandError, "load graph fixture", err)
	}
	g, err := fixture.BuildGraph(rs.Registry)
	if err != nil {
		formatter.Error("E_FIXTURE", err.Error(), nil)
		return WrapExitError(ExitCommandError, "build graph fixture", err)
	}
	formatter.VerboseLog("loaded %s: %d inputs, %d operations", graphPath, len(fixture.Inputs), len(fixture.Operations))

	transforms := rs.Transforms
	if transforms == nil {
		transforms = engine.NewTransforms()
	}
	compiled, rejected := pattern.CompileAll(rs.Rules, rs.Registry, transforms)
	if len(rejected) > 0 {
		details := validationDetails(rejected)
		formatter.Error("E_VALIDATE", fmt.Sprintf("%d rule(s) failed validation", len(rejected)), details)
		return NewExitError(ExitFailure, "rule set failed validation")
	}

	captured := &captureRecorder{}
	if journalPath != "" {
		rec, err := journal.Open(journalPath)
		if err != nil {
			formatter.Error("E_JOURNAL", err.Error(), nil)
			return WrapExitError(ExitCommandError, "open journal", err)
		}
		defer rec.Close()
		captured.next = rec
	}

	driverOpts := []engine.Option{
		engine.WithMaxApplications(maxApps),
		engine.WithRecorder(captured),
	}

	d := engine.NewDriver(g, compiled, transforms, driverOpts...)
	if err := d.Run(cmd.Context(), nil); err != nil {
		formatter.Error("E_APPLY", err.Error(), nil)
		return WrapExitError(ExitFailure, "rewrite pass", err)
	}

	result := &ApplyResult{
		RuleSet:      rs.Name,
		Applied:      d.Applied(),
		Graph:        g.String(),
		Applications: captured.apps,
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(renderApply(result))
}

// renderApply formats an apply result for text output.
func renderApply(r *ApplyResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "rule set: %s\n", r.RuleSet)
	fmt.Fprintf(&b, "applied: %d\n\n", r.Applied)
	b.WriteString(r.Graph)
	for _, app := range r.Applications {
		fmt.Fprintf(&b, "\n[%d] rule=%s root=%s id=%s", app.Seq, app.RuleID, app.RootOp, app.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}
