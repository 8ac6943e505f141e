package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
	"github.com/samirrijal/fifteenmap/internal/core/ports"
	"github.com/samirrijal/fifteenmap/internal/pkg/metrics"
	"github.com/samirrijal/fifteenmap/internal/pkg/telemetry"
)

// ActivityBuildMap is the registered name of PrefetchActivities.BuildMap.
const ActivityBuildMap = "BuildMap"

// PrefetchActivities holds the activity implementations for the prefetch workflow.
type PrefetchActivities struct {
	Maps ports.MapBuilder
}

// BuildMap computes (and thereby caches and publishes) the map for address.
// Addresses that cannot be resolved fail without retry.
func (a *PrefetchActivities) BuildMap(ctx context.Context, address string) (domain.MapStats, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanPrefetchAddress, attribute.String("address", address))
	defer span.End()

	doc, err := a.Maps.Build(ctx, address)
	if err != nil {
		span.RecordError(err)
		kind := domain.Classify(err)
		if kind == domain.ErrorKindResolution || errors.Is(err, domain.ErrEmptyAddress) {
			metrics.PrefetchResults.WithLabelValues("unresolved").Inc()
			return domain.MapStats{}, temporal.NewNonRetryableApplicationError(
				fmt.Sprintf("address %q not recognized", address), string(domain.ErrorKindResolution), err)
		}
		metrics.PrefetchResults.WithLabelValues("failed").Inc()
		return domain.MapStats{}, temporal.NewApplicationError(err.Error(), string(kind))
	}
	metrics.PrefetchResults.WithLabelValues("ok").Inc()
	activity.GetLogger(ctx).Info("map prefetched", "address", address, "nodes", doc.Stats.Nodes)
	return doc.Stats, nil
}
