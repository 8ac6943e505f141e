package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
	"github.com/samirrijal/fifteenmap/internal/core/isochrone"
	"github.com/samirrijal/fifteenmap/internal/core/mapcompose"
	"github.com/samirrijal/fifteenmap/internal/core/ports"
	"github.com/samirrijal/fifteenmap/internal/pkg/metrics"
	"github.com/samirrijal/fifteenmap/internal/pkg/telemetry"
)

// MapServiceConfig wires the optional collaborators of a MapService.
type MapServiceConfig struct {
	LocalCache      ports.CacheService // in-process tier, no expiry
	SharedCache     ports.CacheService // cross-process tier
	CacheTTLSeconds int                // TTL for SharedCache
	Publisher       ports.EventPublisher
	IncludeEdges    bool
}

// MapService runs the 15-minute map pipeline for one address.
type MapService struct {
	geocoder  ports.Geocoder
	network   ports.NetworkFetcher
	amenities ports.AmenityFetcher
	cfg       MapServiceConfig
	now       func() time.Time
}

// NewMapService creates a new MapService.
func NewMapService(
	geocoder ports.Geocoder,
	network ports.NetworkFetcher,
	amenities ports.AmenityFetcher,
	cfg MapServiceConfig,
) *MapService {
	return &MapService{
		geocoder:  geocoder,
		network:   network,
		amenities: amenities,
		cfg:       cfg,
		now:       time.Now,
	}
}

func mapCacheKey(address string) string {
	return "map:" + address
}

// Build returns the composed map for address. Results are cached by the
// trimmed address; only fresh computations are published.
func (s *MapService) Build(ctx context.Context, address string) (*domain.MapDocument, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, domain.ErrEmptyAddress
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanBuildMap, attribute.String("address", address))
	defer span.End()

	if doc := s.cached(ctx, address); doc != nil {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return doc, nil
	}

	start := time.Now()
	doc, err := s.compute(ctx, address)
	if err != nil {
		kind := domain.Classify(err)
		metrics.PipelineFailures.WithLabelValues(string(kind)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		return nil, err
	}
	metrics.ObserveStep("total", start)
	metrics.MapsComputed.Inc()

	s.store(ctx, address, doc)

	if s.cfg.Publisher != nil {
		ev, err := mapComputedEvent(doc)
		if err == nil {
			err = s.cfg.Publisher.PublishMapComputed(ctx, ev)
		}
		if err != nil {
			slog.WarnContext(ctx, "publish map computed failed", "address", address, "error", err)
		}
	}

	return doc, nil
}

func (s *MapService) compute(ctx context.Context, address string) (*domain.MapDocument, error) {
	var place *domain.Place
	err := s.step(ctx, telemetry.SpanGeocode, "geocode", func(ctx context.Context) (err error) {
		place, err = s.geocoder.Geocode(ctx, address)
		return err
	})
	if err != nil {
		return nil, err
	}

	var g *domain.StreetGraph
	err = s.step(ctx, telemetry.SpanFetchNetwork, "fetch_network", func(ctx context.Context) (err error) {
		g, err = s.network.FetchNetwork(ctx, place.Location, isochrone.NetworkRadiusMeters, isochrone.NetworkType)
		return err
	})
	if err != nil {
		return nil, err
	}

	_ = s.step(ctx, telemetry.SpanAnnotate, "annotate", func(context.Context) error {
		isochrone.AnnotateTimes(g, isochrone.TravelSpeedKmh)
		return nil
	})

	var isos []domain.Isochrone
	err = s.step(ctx, telemetry.SpanIsochrones, "isochrones", func(context.Context) error {
		center, err := isochrone.CenterNode(g)
		if err != nil {
			return err
		}
		isos = isochrone.Build(g, center, isochrone.TripTimes, isochrone.AutumnColors(len(isochrone.TripTimes)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	var amenities []domain.Amenity
	err = s.step(ctx, telemetry.SpanFetchAmenities, "fetch_amenities", func(ctx context.Context) (err error) {
		amenities, err = s.amenities.FetchAmenities(ctx, place.Location, isochrone.AmenityRadiusMeters, isochrone.AmenityTag)
		return err
	})
	if err != nil {
		return nil, err
	}

	var doc *domain.MapDocument
	_ = s.step(ctx, telemetry.SpanCompose, "compose", func(context.Context) error {
		doc = mapcompose.Compose(mapcompose.Input{
			Address:      address,
			Place:        *place,
			Graph:        g,
			Isochrones:   isos,
			Amenities:    amenities,
			IncludeEdges: s.cfg.IncludeEdges,
			Now:          s.now(),
		})
		return nil
	})

	slog.InfoContext(ctx, "map computed",
		"address", address,
		"nodes", doc.Stats.Nodes,
		"edges", doc.Stats.Edges,
		"amenities", doc.Stats.Amenities,
	)
	return doc, nil
}

// step runs fn inside a span and records its duration.
func (s *MapService) step(ctx context.Context, span, label string, fn func(context.Context) error) error {
	ctx, sp := telemetry.StartSpan(ctx, span)
	defer sp.End()
	defer metrics.ObserveStep(label, time.Now())

	if err := fn(ctx); err != nil {
		sp.RecordError(err)
		sp.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%s: %w", label, err)
	}
	return nil
}

func (s *MapService) cached(ctx context.Context, address string) *domain.MapDocument {
	key := mapCacheKey(address)
	for _, tier := range []struct {
		name  string
		cache ports.CacheService
	}{{"map_local", s.cfg.LocalCache}, {"map_shared", s.cfg.SharedCache}} {
		if tier.cache == nil {
			continue
		}
		data, err := tier.cache.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, ports.ErrCacheMiss) {
				slog.WarnContext(ctx, "cache read failed", "tier", tier.name, "error", err)
			}
			metrics.CacheMisses.WithLabelValues(tier.name).Inc()
			continue
		}
		var doc domain.MapDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			metrics.CacheMisses.WithLabelValues(tier.name).Inc()
			continue
		}
		metrics.CacheHits.WithLabelValues(tier.name).Inc()
		if tier.name == "map_shared" && s.cfg.LocalCache != nil {
			_ = s.cfg.LocalCache.Set(ctx, key, data, 0)
		}
		return &doc
	}
	return nil
}

func (s *MapService) store(ctx context.Context, address string, doc *domain.MapDocument) {
	data, err := json.Marshal(doc)
	if err != nil {
		slog.WarnContext(ctx, "encode map for cache failed", "error", err)
		return
	}
	key := mapCacheKey(address)
	if s.cfg.LocalCache != nil {
		_ = s.cfg.LocalCache.Set(ctx, key, data, 0)
	}
	if s.cfg.SharedCache != nil {
		if err := s.cfg.SharedCache.Set(ctx, key, data, s.cfg.CacheTTLSeconds); err != nil {
			slog.WarnContext(ctx, "cache write failed", "tier", "map_shared", "error", err)
		}
	}
}

// mapComputedEvent summarises doc for subscribers.
func mapComputedEvent(doc *domain.MapDocument) (*domain.MapComputed, error) {
	ev := &domain.MapComputed{
		Address:     doc.Address,
		DisplayName: doc.Place.DisplayName,
		Location:    doc.Place.Location,
		Stats:       doc.Stats,
		ComputedAt:  doc.ComputedAt,
	}
	layer := doc.Layer(mapcompose.LayerIsochrones)
	if layer == nil {
		return ev, nil
	}
	for _, f := range layer.Features.Features {
		geom, err := geojson.NewGeometry(f.Geometry).MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encode isochrone: %w", err)
		}
		tripTime, _ := f.Properties["trip_time"].(int)
		color, _ := f.Properties["color"].(string)
		ev.Isochrones = append(ev.Isochrones, domain.IsochroneRecord{
			TripTime: tripTime,
			Color:    color,
			Geometry: geom,
		})
	}
	return ev, nil
}
