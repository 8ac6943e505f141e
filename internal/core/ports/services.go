package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
)

// Geocoder resolves a free-text address to a point.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*domain.Place, error)
}

// NetworkFetcher downloads a routable street graph around a point.
type NetworkFetcher interface {
	FetchNetwork(ctx context.Context, center domain.GeoPoint, radiusMeters float64, networkType string) (*domain.StreetGraph, error)
}

// AmenityFetcher downloads features carrying tag within radiusMeters of a point.
type AmenityFetcher interface {
	FetchAmenities(ctx context.Context, center domain.GeoPoint, radiusMeters float64, tag string) ([]domain.Amenity, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishMapComputed(ctx context.Context, ev *domain.MapComputed) error
	PublishSessionEvent(ctx context.Context, ev *domain.SessionEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeMapComputed(ctx context.Context, handler func(ctx context.Context, ev *domain.MapComputed) error) error
}

// UpstreamChecker pings the external services the pipeline depends on.
// The result maps a service name to its error, nil when it answered.
type UpstreamChecker interface {
	CheckUpstreams(ctx context.Context) map[string]error
}

// MapBuilder computes the map for an address. Implemented by usecases.MapService.
type MapBuilder interface {
	Build(ctx context.Context, address string) (*domain.MapDocument, error)
}

// ErrCacheMiss is returned by CacheService.Get for an absent key.
var ErrCacheMiss = errors.New("cache miss")

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
