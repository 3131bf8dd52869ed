package supervisor_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pipeyard/pipeyard/config"
	"github.com/pipeyard/pipeyard/plan"
	"github.com/pipeyard/pipeyard/supervisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSinglePipelineEchoesAndCleansUp(t *testing.T) {
	doc := &config.Document{
		Jobs: []plan.Job{{Name: "e", Exec: "echo", Args: []string{"-n", "hello"}}},
		Pipelines: []*plan.Pipeline{
			{Name: "P1", Input: plan.StdStream(), Output: plan.StdStream(), Members: []plan.JobIndex{0}},
		},
		Assigned: map[plan.JobIndex]bool{0: true},
	}

	dir := filepath.Join(t.TempDir(), "staging")
	var out bytes.Buffer
	require.NoError(t, supervisor.Run(context.Background(), &out, doc, dir))

	assert.Equal(t, "## Output P1 ##\nhello\n## P1 finished successfully ##\n", out.String())

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestRunSpawnsDefaultPipelineForUnreferencedJobs(t *testing.T) {
	doc := &config.Document{
		Jobs: []plan.Job{
			{Name: "a", Exec: "echo", Args: []string{"-n", "one"}},
			{Name: "b", Exec: "echo", Args: []string{"-n", "two"}},
		},
		Pipelines: []*plan.Pipeline{
			{Name: "P", Input: plan.StdStream(), Output: plan.StdStream(), Members: []plan.JobIndex{0}},
		},
		Assigned: map[plan.JobIndex]bool{0: true},
	}

	dir := filepath.Join(t.TempDir(), "staging")
	var out bytes.Buffer
	require.NoError(t, supervisor.Run(context.Background(), &out, doc, dir))

	report := out.String()
	assert.Contains(t, report, "## Output P ##\none\n## P finished successfully ##")
	assert.Contains(t, report, "## Output default-pipe ##\ntwo\n## default-pipe finished successfully ##")
	assert.Equal(t, 2, strings.Count(report, "## Output"))
}

func TestRunReportsNonZeroExit(t *testing.T) {
	doc := &config.Document{
		Jobs: []plan.Job{{Name: "f", Exec: "false"}},
		Pipelines: []*plan.Pipeline{
			{Name: "P", Input: plan.StdStream(), Output: plan.StdStream(), Members: []plan.JobIndex{0}},
		},
		Assigned: map[plan.JobIndex]bool{0: true},
	}

	dir := filepath.Join(t.TempDir(), "staging")
	var out bytes.Buffer
	require.NoError(t, supervisor.Run(context.Background(), &out, doc, dir))

	assert.Equal(t, "## Output P ##\n## P finished unsuccessfully (Err: 1) ##\n", out.String())
}

func TestRunFailsWhenStagingDirAlreadyExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging")
	require.NoError(t, os.Mkdir(dir, 0o755))

	doc := &config.Document{}
	var out bytes.Buffer
	err := supervisor.Run(context.Background(), &out, doc, dir)
	require.Error(t, err)
}
