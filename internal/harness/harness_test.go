package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Robertorosmaninho/mlir/internal/pattern"
)

func TestScenario_FuseChain(t *testing.T) {
	result := RunWithGolden(t, FuseChainScenario())
	assert.Equal(t, 1, result.Applied)
	assert.Empty(t, result.Rejected)
}

func TestScenario_Cascade(t *testing.T) {
	result := RunWithGolden(t, CascadeScenario())
	assert.Equal(t, 2, result.Applied)

	require.Len(t, result.Applications, 2)
	assert.Equal(t, "double-negation", result.Applications[0].RuleID)
	assert.Equal(t, "sink-positive", result.Applications[1].RuleID)
}

func TestScenario_NoMatch(t *testing.T) {
	result := RunWithGolden(t, NoMatchScenario())
	assert.Equal(t, 0, result.Applied)
	assert.Empty(t, result.Applications)
}

func TestScenario_MultiResult(t *testing.T) {
	result := RunWithGolden(t, MultiResultScenario())
	assert.Equal(t, 1, result.Applied)
}

func TestScenario_RejectedRule(t *testing.T) {
	result := RunWithGolden(t, RejectedRuleScenario())
	assert.Equal(t, 1, result.Applied, "the good rule still applies")

	errs, ok := result.Rejected["bad-unknown-op"]
	require.True(t, ok)
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	assert.Contains(t, codes, pattern.ErrUnknownOperator)
}

func TestRun_NoRegistry(t *testing.T) {
	_, err := Run(&Scenario{Name: "broken"})
	require.Error(t, err)
}

func TestScenario_RepeatedRunsAreIdentical(t *testing.T) {
	first, err := Run(CascadeScenario())
	require.NoError(t, err)
	second, err := Run(CascadeScenario())
	require.NoError(t, err)

	assert.Equal(t, Snapshot("cascade", first), Snapshot("cascade", second))
}
