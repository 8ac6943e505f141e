package workflows

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
)

type fakeMaps struct {
	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeMaps) Build(ctx context.Context, address string) (*domain.MapDocument, error) {
	f.mu.Lock()
	f.calls[address]++
	f.mu.Unlock()

	switch address {
	case "zzz123notarealplace":
		return nil, domain.ErrAddressNotFound
	case "boom":
		return nil, errors.New("boom")
	}
	return &domain.MapDocument{Address: address, Stats: domain.MapStats{Nodes: 42}}, nil
}

func TestPrefetchWorkflow(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	maps := &fakeMaps{calls: map[string]int{}}
	env.RegisterWorkflow(PrefetchWorkflow)
	env.RegisterActivity(&PrefetchActivities{Maps: maps})

	env.ExecuteWorkflow(PrefetchWorkflow, PrefetchInput{
		Addresses: []string{"Plaza Moyua, Bilbao", "zzz123notarealplace", "Gran Vía, Madrid"},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result PrefetchResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.Equal(t, []string{"Plaza Moyua, Bilbao", "Gran Vía, Madrid"}, result.Succeeded)
	assert.Equal(t, []string{"zzz123notarealplace"}, result.Failed)
	assert.Equal(t, 1, maps.calls["zzz123notarealplace"], "resolution failures must not be retried")
}

func TestPrefetchWorkflow_UnexpectedFailureRetried(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	maps := &fakeMaps{calls: map[string]int{}}
	env.RegisterActivity(&PrefetchActivities{Maps: maps})

	env.ExecuteWorkflow(PrefetchWorkflow, PrefetchInput{Addresses: []string{"boom"}})

	require.True(t, env.IsWorkflowCompleted())
	var result PrefetchResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.Equal(t, []string{"boom"}, result.Failed)
	assert.Greater(t, maps.calls["boom"], 1)
}

func TestBuildMapActivity(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestActivityEnvironment()
	env.RegisterActivity(&PrefetchActivities{Maps: &fakeMaps{calls: map[string]int{}}})

	val, err := env.ExecuteActivity(ActivityBuildMap, "Bilbao")
	require.NoError(t, err)

	var stats domain.MapStats
	require.NoError(t, val.Get(&stats))
	assert.Equal(t, 42, stats.Nodes)

	_, err = env.ExecuteActivity(ActivityBuildMap, "zzz123notarealplace")
	require.Error(t, err)
}
