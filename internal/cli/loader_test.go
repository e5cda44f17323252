package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Robertorosmaninho/mlir/internal/harness"
)

// writeFixture writes a YAML fixture to a temp file.
func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGraphFixture_Testdata(t *testing.T) {
	fixture, err := LoadGraphFixture(filepath.Join("testdata", "graphs", "fuse.yaml"))
	require.NoError(t, err)
	require.Len(t, fixture.Operations, 3)

	g, err := fixture.BuildGraph(harness.FixtureRegistry())
	require.NoError(t, err)

	want := "%0 = BOp() : (number)\n" +
		"%1 = AOp(%0) {attr = 5} : (number)\n" +
		"%2 = SinkOp(%1) : (number)\n"
	assert.Equal(t, want, g.String())
}

func TestLoadGraphFixture_MissingFile(t *testing.T) {
	_, err := LoadGraphFixture(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadGraphFixture_Empty(t *testing.T) {
	path := writeFixture(t, "")
	_, err := LoadGraphFixture(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no inputs and no operations")
}

func TestBuildGraph_InputsAndTypes(t *testing.T) {
	path := writeFixture(t, `
inputs:
  - name: x
    type: number
operations:
  - name: n
    op: NegOp
    operands: [[x]]
    result_types: [[number]]
`)
	fixture, err := LoadGraphFixture(path)
	require.NoError(t, err)

	g, err := fixture.BuildGraph(harness.FixtureRegistry())
	require.NoError(t, err)
	assert.Equal(t, "%0 = input : number\n%1 = NegOp(%0) : (number)\n", g.String())
}

func TestBuildGraph_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "unknown operator",
			yaml: `
operations:
  - name: m
    op: MysteryOp
    result_types: [[number]]
`,
			wantErr: "unknown operator",
		},
		{
			name: "undeclared reference",
			yaml: `
operations:
  - name: n
    op: NegOp
    operands: [[ghost.0]]
    result_types: [[number]]
`,
			wantErr: "undeclared operation",
		},
		{
			name: "result index out of range",
			yaml: `
operations:
  - name: b
    op: BOp
    result_types: [[number]]
  - name: n
    op: NegOp
    operands: [[b.7]]
    result_types: [[number]]
`,
			wantErr: "out of range",
		},
		{
			name: "unknown type",
			yaml: `
inputs:
  - name: x
    type: quaternion
`,
			wantErr: "unknown type",
		},
		{
			name: "duplicate operation name",
			yaml: `
operations:
  - name: b
    op: BOp
    result_types: [[number]]
  - name: b
    op: BOp
    result_types: [[number]]
`,
			wantErr: "duplicate operation name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture, err := LoadGraphFixture(writeFixture(t, tt.yaml))
			require.NoError(t, err)
			_, err = fixture.BuildGraph(harness.FixtureRegistry())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
