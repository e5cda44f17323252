package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"pgregory.net/rapid"

	"github.com/Robertorosmaninho/mlir/internal/ir"
	"github.com/Robertorosmaninho/mlir/internal/pattern"
)

func TestEnv_GroupAndAttrViews(t *testing.T) {
	g := ir.NewGraph(newTestRegistry())
	in := g.AddInput(cty.Number)

	env := NewEnv()
	env.bind("vals", GroupBinding{Group: ir.ValueGroup{in}})
	env.bind("mode", AttrBinding{Value: cty.StringVal("fast")})

	group, ok := env.Group("vals")
	require.True(t, ok)
	assert.Same(t, in, group[0])
	_, ok = env.Group("mode")
	assert.False(t, ok, "attribute bindings are not value groups")

	attr, ok := env.Attr("mode")
	require.True(t, ok)
	assert.True(t, attr.RawEquals(cty.StringVal("fast")))
	_, ok = env.Attr("vals")
	assert.False(t, ok, "group bindings are not attributes")

	_, ok = env.Lookup("missing")
	assert.False(t, ok)
}

func TestEnv_BindDuplicatePanics(t *testing.T) {
	env := NewEnv()
	env.bind("x", AttrBinding{Value: cty.True})
	assert.Panics(t, func() {
		env.bind("x", AttrBinding{Value: cty.False})
	})
}

func TestEnv_ResolveGroupIndexing(t *testing.T) {
	g := ir.NewGraph(newTestRegistry())
	three := mustCreate(t, g, "ThreeResultOp", []ir.ValueGroup{nil}, nil,
		[][]cty.Type{num(), num(), num()})

	slots := []ir.ValueGroup{three.ResultGroup(0), three.ResultGroup(1), three.ResultGroup(2)}
	env := NewEnv()
	env.bind("cap", GroupBinding{Group: three.Results(), Slots: slots})
	env.bind("plain", GroupBinding{Group: three.ResultGroup(0)})

	whole, err := env.resolveGroup("cap", pattern.WholeGroup)
	require.NoError(t, err)
	assert.Len(t, whole, 3)

	mid, err := env.resolveGroup("cap", 1)
	require.NoError(t, err)
	assert.Same(t, three.ResultGroup(1)[0], mid[0])

	_, err = env.resolveGroup("cap", 3)
	assert.Error(t, err, "index past the last group")

	_, err = env.resolveGroup("plain", 0)
	assert.Error(t, err, "plain binds are not indexable")

	_, err = env.resolveGroup("ghost", pattern.WholeGroup)
	assert.Error(t, err)
}

func TestEnv_HashOrderIndependent(t *testing.T) {
	g := ir.NewGraph(newTestRegistry())
	in := g.AddInput(cty.Number)

	forward := NewEnv()
	forward.bind("a", GroupBinding{Group: ir.ValueGroup{in}})
	forward.bind("b", AttrBinding{Value: cty.NumberIntVal(9)})

	backward := NewEnv()
	backward.bind("b", AttrBinding{Value: cty.NumberIntVal(9)})
	backward.bind("a", GroupBinding{Group: ir.ValueGroup{in}})

	h1, err := forward.Hash()
	require.NoError(t, err)
	h2, err := backward.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "hashing canonicalizes over sorted symbols")
}

func TestEnv_HashDistinguishesBindings(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Int64().Draw(t, "x")
		y := rapid.Int64().Draw(t, "y")

		envX := NewEnv()
		envX.bind("attr", AttrBinding{Value: cty.NumberIntVal(x)})
		envY := NewEnv()
		envY.bind("attr", AttrBinding{Value: cty.NumberIntVal(y)})

		hx, err := envX.Hash()
		require.NoError(t, err)
		hy, err := envY.Hash()
		require.NoError(t, err)

		if x == y {
			assert.Equal(t, hx, hy)
		} else {
			assert.NotEqual(t, hx, hy)
		}
	})
}

func TestMatch_HashStableAcrossRepeatedMatches(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		attr := rapid.Int64().Draw(t, "attr")

		g := ir.NewGraph(newTestRegistry())
		b, err := g.CreateOperation("BOp", nil, nil, [][]cty.Type{num()})
		require.NoError(t, err)
		a, err := g.CreateOperation("AOp",
			[]ir.ValueGroup{{b.ResultGroup(0)[0]}},
			map[string]cty.Value{"attr": cty.NumberIntVal(attr)},
			[][]cty.Type{num()},
		)
		require.NoError(t, err)

		compiled, errs := pattern.Compile(fuseRule(), g.Registry(), nil)
		require.Empty(t, errs)

		var last string
		for i := 0; i < 3; i++ {
			env, ok := match(compiled, a)
			require.True(t, ok)
			h, err := env.Hash()
			require.NoError(t, err)
			if i > 0 {
				require.Equal(t, last, h)
			}
			last = h
		}
	})
}
