package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_TextOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewApplyCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("testdata", "graphs", "fuse.yaml"), "--rules", "fuse"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "applied: 1")
	assert.Contains(t, output, "FusedOp")
	assert.NotContains(t, output, "AOp(", "the fused root is gone")
}

func TestApply_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewApplyCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("testdata", "graphs", "fuse.yaml"), "--rules", "fuse"})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), data["applied"])
	assert.Contains(t, data["graph"], "FusedOp")
}

func TestApply_WithJournal(t *testing.T) {
	journalPath := filepath.Join(t.TempDir(), "trace.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewApplyCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{
		filepath.Join("testdata", "graphs", "fuse.yaml"),
		"--rules", "fuse",
		"--journal", journalPath,
	})
	require.NoError(t, cmd.Execute())

	// The journal the pass wrote is readable by trace.
	traceBuf := &bytes.Buffer{}
	traceCmd := NewTraceCommand(&RootOptions{Format: "text"})
	traceCmd.SetOut(traceBuf)
	traceCmd.SetArgs([]string{journalPath})
	require.NoError(t, traceCmd.Execute())

	output := traceBuf.String()
	assert.Contains(t, output, "1 applications")
	assert.Contains(t, output, "rule=fuse-aop")
}

func TestApply_UnknownRuleSet(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewApplyCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("testdata", "graphs", "fuse.yaml"), "--rules", "nope"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "unknown rule set")
}

func TestApply_MissingFixture(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewApplyCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "nope.yaml")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
