package engine

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Robertorosmaninho/mlir/internal/pattern"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.matchAttempt("r")
		m.matchSuccess("r")
		m.rewriteApplied("r")
		m.ruleRejected("r")
		m.setWorklistDepth(3)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_DriverPassCounts(t *testing.T) {
	g, _, _ := aopGraph(t)

	m := NewMetrics()
	c := mustCompile(t, fuseRule(), g.Registry(), nil)
	d := NewDriver(g, []*pattern.Compiled{c}, NewTransforms(), WithMetrics(m))

	require.NoError(t, d.Run(context.Background(), nil))

	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.matchSuccesses.WithLabelValues("fuse-aop")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.rewritesTotal.WithLabelValues("fuse-aop")))
	// The BOp pop has no rule bucket; only the AOp pop attempts the
	// rule.
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.matchAttempts.WithLabelValues("fuse-aop")))
	assert.Equal(t, float64(0),
		testutil.ToFloat64(m.rulesRejected.WithLabelValues("fuse-aop")))
}
