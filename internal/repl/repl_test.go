package repl

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCmdEffectReportsBuiltin(t *testing.T) {
	r := New()
	var buf bytes.Buffer
	r.cmdEffect("Kernel.+/2", &buf)
	assert.Contains(t, buf.String(), "pure")
}

func TestCmdEffectReportsMissAsUnknown(t *testing.T) {
	r := New()
	var buf bytes.Buffer
	r.cmdEffect("Nowhere.ghost/3", &buf)
	assert.Contains(t, buf.String(), "registry_miss")
	assert.Contains(t, buf.String(), "unknown")
}

func TestCmdEffectRejectsMalformedKey(t *testing.T) {
	r := New()
	var buf bytes.Buffer
	r.cmdEffect("not-an-mfa", &buf)
	assert.Contains(t, buf.String(), "Error")
}

func TestCmdResolveWithoutChainReportsSelf(t *testing.T) {
	r := New()
	var buf bytes.Buffer
	r.cmdResolve("IO.puts/1", &buf)
	assert.Contains(t, buf.String(), "IO.puts/1")
}

func TestCmdLoadMergesJSONOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"My.custom/1": "p"}`), 0o644))

	r := New()
	var buf bytes.Buffer
	r.cmdLoad(path, &buf)
	assert.Contains(t, buf.String(), "loaded 1 override")

	buf.Reset()
	r.cmdEffect("My.custom/1", &buf)
	assert.Contains(t, buf.String(), "pure")
}

func TestCmdLoadReportsMissingFile(t *testing.T) {
	r := New()
	var buf bytes.Buffer
	r.cmdLoad("/nonexistent/overrides.json", &buf)
	assert.Contains(t, buf.String(), "Error")
}

func TestHandleCommandQuitStopsLoop(t *testing.T) {
	r := New()
	var buf bytes.Buffer
	stop := r.handleCommand(":quit", &buf)
	assert.True(t, stop)
	assert.Contains(t, buf.String(), "Goodbye")
}

func TestHandleCommandUnknownReportsError(t *testing.T) {
	r := New()
	var buf bytes.Buffer
	stop := r.handleCommand(":bogus", &buf)
	assert.False(t, stop)
	assert.Contains(t, buf.String(), "unknown command")
}

func TestHandleCommandHistoryTracksPriorInput(t *testing.T) {
	r := New()
	r.history = []string{":effect Kernel.+/2"}
	var buf bytes.Buffer
	r.handleCommand(":history", &buf)
	assert.Contains(t, buf.String(), "Kernel.+/2")
}
