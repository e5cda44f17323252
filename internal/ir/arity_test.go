package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCounts_ScalarOnly(t *testing.T) {
	counts, err := SplitCounts([]SlotArity{SlotScalar, SlotScalar}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, counts)
}

func TestSplitCounts_VariadicAbsorbsRemainder(t *testing.T) {
	testCases := []struct {
		name   string
		slots  []SlotArity
		actual int
		want   []int
	}{
		{"empty variadic", []SlotArity{SlotScalar, SlotVariadic}, 1, []int{1, 0}},
		{"variadic takes three", []SlotArity{SlotScalar, SlotVariadic}, 4, []int{1, 3}},
		{"variadic in the middle", []SlotArity{SlotScalar, SlotVariadic, SlotScalar}, 5, []int{1, 3, 1}},
		{"only variadic", []SlotArity{SlotVariadic}, 2, []int{2}},
		{"no slots no values", nil, 0, []int{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			counts, err := SplitCounts(tc.slots, tc.actual)
			require.NoError(t, err)
			assert.Equal(t, tc.want, counts)
		})
	}
}

func TestSplitCounts_Mismatch(t *testing.T) {
	testCases := []struct {
		name   string
		slots  []SlotArity
		actual int
	}{
		{"below mandatory scalars", []SlotArity{SlotScalar, SlotScalar, SlotVariadic}, 1},
		{"excess without variadic", []SlotArity{SlotScalar}, 2},
		{"values for no slots", nil, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SplitCounts(tc.slots, tc.actual)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrArityMismatch)
		})
	}
}

func TestRegistry_RejectsDuplicateOperator(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Signature{Name: "AOp"}))

	err := reg.Register(Signature{Name: "AOp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_RejectsTwoVariadicSlotsPerSide(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(Signature{
		Name:     "ConcatOp",
		Operands: []SlotArity{SlotVariadic, SlotVariadic},
		Results:  []SlotArity{SlotScalar},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variadic")
}

func TestRegistry_RejectsDuplicateAttribute(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(Signature{Name: "AOp", Attributes: []string{"k", "k"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate attribute")
}

func TestRegistry_Lookup(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(Signature{Name: "AOp", Operands: []SlotArity{SlotScalar}, Results: []SlotArity{SlotScalar}})

	sig, ok := reg.Lookup("AOp")
	require.True(t, ok)
	assert.Equal(t, "AOp", sig.Name)

	_, ok = reg.Lookup("missing")
	assert.False(t, ok)
}
