package staging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pipeyard/pipeyard/plan"
	"github.com/pipeyard/pipeyard/staging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareCreatesDirAndFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging")
	m := staging.New(dir, ".out")

	pipelines := []*plan.Pipeline{{Name: "P1"}, {Name: "P2"}}
	require.NoError(t, m.Prepare(pipelines))

	assert.Equal(t, filepath.Join(dir, "P1.out"), pipelines[0].Staging)
	assert.Equal(t, filepath.Join(dir, "P2.out"), pipelines[1].Staging)

	for _, p := range pipelines {
		info, err := os.Stat(p.Staging)
		require.NoError(t, err)
		assert.Zero(t, info.Size())
	}
}

func TestPrepareFailsIfDirAlreadyExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging")
	require.NoError(t, os.Mkdir(dir, 0o755))

	m := staging.New(dir, ".out")
	err := m.Prepare(nil)
	require.ErrorIs(t, err, staging.ErrStagingUnavailable)
}

func TestCleanupRemovesFilesAndDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging")
	m := staging.New(dir, ".out")

	pipelines := []*plan.Pipeline{{Name: "P1"}}
	require.NoError(t, m.Prepare(pipelines))
	require.NoError(t, m.Cleanup())

	_, err := os.Stat(pipelines[0].Staging)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
