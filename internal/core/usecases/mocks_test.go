package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
	"github.com/samirrijal/fifteenmap/internal/core/ports"
)

// --- Mock Geocoder ---

type mockGeocoder struct {
	geocodeFn func(ctx context.Context, address string) (*domain.Place, error)
	calls     int
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (*domain.Place, error) {
	m.calls++
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, address)
	}
	return &domain.Place{Query: address, Location: domain.GeoPoint{Lat: 43.263, Lon: -2.935}}, nil
}

// --- Mock NetworkFetcher ---

type mockNetwork struct {
	fetchFn func(ctx context.Context, center domain.GeoPoint, radius float64, networkType string) (*domain.StreetGraph, error)
}

func (m *mockNetwork) FetchNetwork(ctx context.Context, center domain.GeoPoint, radius float64, networkType string) (*domain.StreetGraph, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, center, radius, networkType)
	}
	return sampleGraph(), nil
}

// --- Mock AmenityFetcher ---

type mockAmenities struct {
	fetchFn func(ctx context.Context, center domain.GeoPoint, radius float64, tag string) ([]domain.Amenity, error)
}

func (m *mockAmenities) FetchAmenities(ctx context.Context, center domain.GeoPoint, radius float64, tag string) ([]domain.Amenity, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, center, radius, tag)
	}
	return []domain.Amenity{
		{ID: "node/1", Category: "cafe", Location: domain.GeoPoint{Lat: 43.2631, Lon: -2.9351}},
		{ID: "node/2", Category: "pharmacy", Location: domain.GeoPoint{Lat: 43.2620, Lon: -2.9330}},
	}, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu       sync.Mutex
	maps     []*domain.MapComputed
	sessions []*domain.SessionEvent
}

func (m *mockPublisher) PublishMapComputed(ctx context.Context, ev *domain.MapComputed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maps = append(m.maps, ev)
	return nil
}

func (m *mockPublisher) PublishSessionEvent(ctx context.Context, ev *domain.SessionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, ev)
	return nil
}

func (m *mockPublisher) states() []domain.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SessionState, len(m.sessions))
	for i, ev := range m.sessions {
		out[i] = ev.State
	}
	return out
}

// --- Mock MapBuilder ---

type mockMapBuilder struct {
	buildFn func(ctx context.Context, address string) (*domain.MapDocument, error)
}

func (m *mockMapBuilder) Build(ctx context.Context, address string) (*domain.MapDocument, error) {
	if m.buildFn != nil {
		return m.buildFn(ctx, address)
	}
	return &domain.MapDocument{Address: address}, nil
}

// --- Mock PlaceRepository ---

type mockPlaceRepo struct {
	saveFn   func(ctx context.Context, ev *domain.MapComputed) error
	recentFn func(ctx context.Context, limit int) ([]domain.PlaceRecord, error)
	getFn    func(ctx context.Context, address string) (*domain.PlaceRecord, error)
}

func (m *mockPlaceRepo) Save(ctx context.Context, ev *domain.MapComputed) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, ev)
	}
	return nil
}

func (m *mockPlaceRepo) GetByAddress(ctx context.Context, address string) (*domain.PlaceRecord, error) {
	if m.getFn != nil {
		return m.getFn(ctx, address)
	}
	return nil, nil
}

func (m *mockPlaceRepo) Recent(ctx context.Context, limit int) ([]domain.PlaceRecord, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, limit)
	}
	return nil, nil
}

// sampleGraph is a small walkable grid around Plaza Moyua.
func sampleGraph() *domain.StreetGraph {
	g := domain.NewStreetGraph()
	coords := map[int64][2]float64{
		1: {-2.9350, 43.2630},
		2: {-2.9300, 43.2630},
		3: {-2.9250, 43.2630},
		4: {-2.9350, 43.2670},
		5: {-2.9300, 43.2670},
	}
	for id, c := range coords {
		g.AddNode(&domain.Node{ID: id, Lon: c[0], Lat: c[1]})
	}
	link := func(a, b int64, length float64) {
		g.AddEdge(a, b, length)
		g.AddEdge(b, a, length)
	}
	link(1, 2, 400)
	link(2, 3, 400)
	link(1, 4, 450)
	link(4, 5, 400)
	link(2, 5, 450)
	return g
}
