package plan_test

import (
	"testing"

	"github.com/pipeyard/pipeyard/plan"
	"github.com/stretchr/testify/assert"
)

func TestBuildDefaultPipelineCollectsUnreferencedJobsInOrder(t *testing.T) {
	assigned := map[plan.JobIndex]bool{1: true}

	dp := plan.BuildDefaultPipeline(3, assigned)

	require := assert.New(t)
	require.NotNil(dp)
	require.Equal(plan.DefaultPipelineName, dp.Name)
	require.Equal(plan.StdStream(), dp.Input)
	require.Equal(plan.StdStream(), dp.Output)
	require.Equal([]plan.JobIndex{0, 2}, dp.Members)
}

func TestBuildDefaultPipelineReturnsNilWhenEveryJobIsAssigned(t *testing.T) {
	assigned := map[plan.JobIndex]bool{0: true, 1: true}

	dp := plan.BuildDefaultPipeline(2, assigned)

	assert.Nil(t, dp)
}

func TestBuildDefaultPipelineHandlesNoJobsAtAll(t *testing.T) {
	dp := plan.BuildDefaultPipeline(0, nil)

	assert.Nil(t, dp)
}
