package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Robertorosmaninho/mlir/internal/engine"
	"github.com/Robertorosmaninho/mlir/internal/pattern"
)

// ValidationResult holds validation results for one rule set.
type ValidationResult struct {
	RuleSet string                               `json:"rule_set"`
	Valid   bool                                 `json:"valid"`
	Rules   int                                  `json:"rules"`
	Errors  map[string][]pattern.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var ruleSetName string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a rule set without running it",
		Long: `Compile a built-in rule set against its operator registry and report
every rule-authoring error found. All errors are collected, not just
the first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, ruleSetName)
		},
	}

	cmd.Flags().StringVar(&ruleSetName, "rules", "fuse", "built-in rule set to validate")

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command, ruleSetName string) error {
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

	transforms := rs.Transforms
	if transforms == nil {
		transforms = engine.NewTransforms()
	}
	accepted, rejected := pattern.CompileAll(rs.Rules, rs.Registry, transforms)
	formatter.VerboseLog("rule set %s: %d accepted, %d rejected", rs.Name, len(accepted), len(rejected))

	result := &ValidationResult{
		RuleSet: rs.Name,
		Valid:   len(rejected) == 0,
		Rules:   len(rs.Rules),
	}
	if len(rejected) > 0 {
		result.Errors = rejected
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		if err := formatter.Success(renderValidation(result)); err != nil {
			return err
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "rule set failed validation")
	}
	return nil
}

// renderValidation formats a validation result for text output.
func renderValidation(r *ValidationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "rule set: %s (%d rules)\n", r.RuleSet, r.Rules)
	if r.Valid {
		b.WriteString("valid")
		return b.String()
	}
	fmt.Fprintf(&b, "%d rule(s) rejected:\n", len(r.Errors))
	ids := make([]string, 0, len(r.Errors))
	for id := range r.Errors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		for _, verr := range r.Errors[id] {
			fmt.Fprintf(&b, "  %s\n", verr.Error())
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// validationDetails flattens rejected-rule errors for JSON error
// payloads.
func validationDetails(rejected map[string][]pattern.ValidationError) []string {
	ids := make([]string, 0, len(rejected))
	for id := range rejected {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []string
	for _, id := range ids {
		for _, verr := range rejected[id] {
			out = append(out, verr.Error())
		}
	}
	return out
}
