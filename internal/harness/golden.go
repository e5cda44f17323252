package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a scenario result in the stable textual form golden
// files hold: the scenario header, compile-rejected rules (if any),
// the final graph, and the applied-rewrite log. Binding hashes are
// deliberately omitted; they are covered by their own determinism
// tests and would make goldens churn on any canonicalization change.
func Snapshot(name string, result *Result) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "scenario: %s\n", name)
	fmt.Fprintf(&b, "applied: %d\n", result.Applied)

	if len(result.Rejected) > 0 {
		b.WriteString("\nrejected rules:\n")
		for _, id := range sortedRejectedIDs(result.Rejected) {
			for _, verr := range result.Rejected[id] {
				fmt.Fprintf(&b, "  %s\n", verr.Error())
			}
		}
	}

	b.WriteString("\ngraph:\n")
	b.WriteString(result.Graph)

	if len(result.Applications) > 0 {
		b.WriteString("\napplications:\n")
		for _, app := range result.Applications {
			fmt.Fprintf(&b, "  [%d] id=%s rule=%s root=%s\n", app.Seq, app.ID, app.RuleID, app.RootOp)
		}
	}

	return []byte(b.String())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("scenario %s failed: %v", scenario.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, Snapshot(scenario.Name, result))

	return result
}
