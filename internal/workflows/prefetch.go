package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
)

// PrefetchWorkflowName is the registered workflow type.
const PrefetchWorkflowName = "PrefetchWorkflow"

// PrefetchInput is the input for the prefetch workflow.
type PrefetchInput struct {
	Addresses []string
}

// PrefetchResult lists which addresses were warmed into the cache.
type PrefetchResult struct {
	Succeeded []string
	Failed    []string
}

// PrefetchWorkflow computes the map of every address, one at a time, so that
// later interactive requests are served from cache. A failing address is
// recorded and the workflow moves on.
func PrefetchWorkflow(ctx workflow.Context, input PrefetchInput) (PrefetchResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting prefetch workflow", "addresses", len(input.Addresses))

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 3 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        5 * time.Second,
			BackoffCoefficient:     2,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{string(domain.ErrorKindResolution)},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var result PrefetchResult
	for _, address := range input.Addresses {
		var stats domain.MapStats
		err := workflow.ExecuteActivity(ctx, ActivityBuildMap, address).Get(ctx, &stats)
		if err != nil {
			logger.Warn("prefetch failed", "address", address, "error", err)
			result.Failed = append(result.Failed, address)
			continue
		}
		result.Succeeded = append(result.Succeeded, address)
	}

	logger.Info("Prefetch finished", "succeeded", len(result.Succeeded), "failed", len(result.Failed))
	return result, nil
}
