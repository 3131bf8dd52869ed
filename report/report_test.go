package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pipeyard/pipeyard/executor"
	"github.com/pipeyard/pipeyard/plan"
	"github.com/pipeyard/pipeyard/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stagedPipeline(t *testing.T, name, body string, output plan.StreamSpec) *plan.Pipeline {
	t.Helper()
	path := filepath.Join(t.TempDir(), name+".out")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return &plan.Pipeline{Name: name, Output: output, Staging: path}
}

func TestEmitSuccessToStdout(t *testing.T) {
	p := stagedPipeline(t, "P1", "hello\n", plan.StdStream())

	var buf bytes.Buffer
	require.NoError(t, report.Emit(&buf, p, executor.Status{Success: true}))

	assert.Equal(t, "## Output P1 ##\nhello\n## P1 finished successfully ##\n", buf.String())
}

func TestEmitFailureReportsCode(t *testing.T) {
	p := stagedPipeline(t, "P", "", plan.StdStream())

	var buf bytes.Buffer
	require.NoError(t, report.Emit(&buf, p, executor.Status{Code: 1}))

	assert.Equal(t, "## Output P ##\n## P finished unsuccessfully (Err: 1) ##\n", buf.String())
}

func TestEmitWritesToConfiguredOutputFile(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(outPath, []byte("stale"), 0o644))

	p := stagedPipeline(t, "P", "x\n", plan.FileStream(outPath))

	var buf bytes.Buffer
	require.NoError(t, report.Emit(&buf, p, executor.Status{Success: true}))

	assert.Equal(t, "## Output P ##\n## P finished successfully ##\n", buf.String())

	contents, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(contents))
}

func TestEmitSignaledFooterUsesSignalNumber(t *testing.T) {
	p := stagedPipeline(t, "P", "", plan.StdStream())

	var buf bytes.Buffer
	require.NoError(t, report.Emit(&buf, p, executor.Status{Code: 13, Signaled: true}))

	assert.Equal(t, "## Output P ##\n## P finished unsuccessfully (Err: 13) ##\n", buf.String())
}
