package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	handler "github.com/samirrijal/fifteenmap/internal/adapters/http"
	"github.com/samirrijal/fifteenmap/internal/core/domain"
	"github.com/samirrijal/fifteenmap/internal/core/mapcompose"
	"github.com/samirrijal/fifteenmap/internal/core/ports"
	"github.com/samirrijal/fifteenmap/internal/core/usecases"
)

// ---- Mocks ----

type mockMapBuilder struct {
	buildFn func(ctx context.Context, address string) (*domain.MapDocument, error)
}

func (m *mockMapBuilder) Build(ctx context.Context, address string) (*domain.MapDocument, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, domain.ErrEmptyAddress
	}
	if m.buildFn != nil {
		return m.buildFn(ctx, address)
	}
	return sampleDoc(address), nil
}

type mockPlaceRepo struct {
	recentFn       func(ctx context.Context, limit int) ([]domain.PlaceRecord, error)
	getByAddressFn func(ctx context.Context, address string) (*domain.PlaceRecord, error)
}

func (m *mockPlaceRepo) Save(ctx context.Context, ev *domain.MapComputed) error { return nil }
func (m *mockPlaceRepo) GetByAddress(ctx context.Context, address string) (*domain.PlaceRecord, error) {
	if m.getByAddressFn != nil {
		return m.getByAddressFn(ctx, address)
	}
	return nil, ports.ErrPlaceNotFound
}
func (m *mockPlaceRepo) Recent(ctx context.Context, limit int) ([]domain.PlaceRecord, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, limit)
	}
	return nil, nil
}

// sampleDoc composes a small map around Bilbao's Plaza Moyúa.
func sampleDoc(address string) *domain.MapDocument {
	center := domain.GeoPoint{Lat: 43.2630, Lon: -2.9350}
	return mapcompose.Compose(mapcompose.Input{
		Address: address,
		Place:   domain.Place{Query: address, DisplayName: "Plaza Moyúa, Bilbao", Location: center},
		Isochrones: []domain.Isochrone{
			{TripTime: 15, Color: "#ffff00", NodeCount: 4, Geometry: orb.Polygon{{
				{-2.94, 43.26}, {-2.93, 43.26}, {-2.93, 43.27}, {-2.94, 43.27}, {-2.94, 43.26},
			}}},
		},
		Amenities: []domain.Amenity{
			{ID: "node/1", Category: "cafe", Name: "Café Iruña", Location: domain.GeoPoint{Lat: 43.2635, Lon: -2.9345}},
			{ID: "node/2", Category: "pharmacy", Location: domain.GeoPoint{Lat: 43.2640, Lon: -2.9340}},
		},
		Now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	})
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	maps := &mockMapBuilder{}
	d := &handler.Dependencies{
		Maps:     maps,
		Sessions: usecases.NewSessionService(maps, nil, time.Minute),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// withBuilder swaps the pipeline for both the stateless and session routes.
func withBuilder(fn func(ctx context.Context, address string) (*domain.MapDocument, error)) func(*handler.Dependencies) {
	return func(d *handler.Dependencies) {
		maps := &mockMapBuilder{buildFn: fn}
		d.Maps = maps
		d.Sessions = usecases.NewSessionService(maps, nil, time.Minute)
	}
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func createSession(t *testing.T, app *fiber.App) domain.Session {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("POST", "/v1/sessions", nil), -1)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var s domain.Session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return s
}

func submit(t *testing.T, app *fiber.App, id, body string) *httptestResponse {
	t.Helper()
	req := httptest.NewRequest("POST", "/v1/sessions/"+id+"/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return &httptestResponse{Status: resp.StatusCode, Body: readBody(t, resp.Body)}
}

type httptestResponse struct {
	Status int
	Body   []byte
}

// ---- Shell ----

func TestShell_Renders(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected text/html, got %q", ct)
	}

	body := string(readBody(t, resp.Body))
	for _, want := range []string{
		"The 15-Minute-Map",
		"Enter street address",
		"712 Red Bark Lane, Henderson, NV 89011, USA",
		"Getting there at 4.8 km/h...",
		"width: 1000px",
		"leaflet",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("shell missing %q", want)
		}
	}
}

// ---- Sessions ----

func TestCreateSession(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("POST", "/v1/sessions", nil), -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var s domain.Session
	json.NewDecoder(resp.Body).Decode(&s)
	if s.ID == "" || s.State != domain.StateIdle {
		t.Errorf("unexpected session %+v", s)
	}
	if loc := resp.Header.Get("Location"); loc != "/v1/sessions/"+s.ID {
		t.Errorf("unexpected Location %q", loc)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/sessions/nope", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected no-store, got %q", cc)
	}
	var apiErr handler.APIError
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "not_found" {
		t.Errorf("expected not_found, got %q", apiErr.Code)
	}
	if apiErr.RequestID == "" {
		t.Error("expected request_id in error body")
	}
}

func TestSubmitSession_Success(t *testing.T) {
	app := setupApp(makeDeps())
	s := createSession(t, app)

	r := submit(t, app, s.ID, `{"address":"  Plaza Moyúa, Bilbao  "}`)
	if r.Status != 200 {
		t.Fatalf("expected 200, got %d: %s", r.Status, r.Body)
	}
	var got domain.Session
	if err := json.Unmarshal(r.Body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.State != domain.StateSuccess {
		t.Fatalf("expected success, got %s", got.State)
	}
	if got.Map == nil || got.Map.Address != "Plaza Moyúa, Bilbao" {
		t.Fatalf("expected map for trimmed address, got %+v", got.Map)
	}
	if got.Generation != 1 {
		t.Errorf("expected generation 1, got %d", got.Generation)
	}

	// GET reflects the finished run
	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/sessions/"+s.ID, nil), -1)
	var again domain.Session
	json.NewDecoder(resp.Body).Decode(&again)
	if again.State != domain.StateSuccess {
		t.Errorf("expected success on GET, got %s", again.State)
	}
}

func TestSubmitSession_ErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		kind    domain.ErrorKind
		message string
	}{
		{
			name:    "unknown address",
			err:     fmt.Errorf("geocode: %w", domain.ErrAddressNotFound),
			status:  422,
			kind:    domain.ErrorKindResolution,
			message: "Please try another address.",
		},
		{
			name:    "no street network",
			err:     fmt.Errorf("fetch network: %w", domain.ErrNoNetwork),
			status:  422,
			kind:    domain.ErrorKindResolution,
			message: "Please try another address.",
		},
		{
			name:    "overpass down",
			err:     domain.NewRetrievalError("overpass", errors.New("429 Too Many Requests")),
			status:  502,
			kind:    domain.ErrorKindRetrieval,
			message: "Please try another address.",
		},
		{
			name:    "bug",
			err:     errors.New("index out of range"),
			status:  500,
			kind:    domain.ErrorKindUnexpected,
			message: "Something went wrong. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupApp(makeDeps(withBuilder(func(ctx context.Context, address string) (*domain.MapDocument, error) {
				return nil, tt.err
			})))
			s := createSession(t, app)

			r := submit(t, app, s.ID, `{"address":"zzz123notarealplace"}`)
			if r.Status != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, r.Status)
			}
			var got domain.Session
			json.Unmarshal(r.Body, &got)
			if got.State != domain.StateError || got.Error == nil {
				t.Fatalf("expected error state, got %+v", got)
			}
			if got.Error.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, got.Error.Kind)
			}
			if got.Error.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, got.Error.Message)
			}
		})
	}
}

func TestSubmitSession_EmptyAddressKeepsState(t *testing.T) {
	app := setupApp(makeDeps())
	s := createSession(t, app)

	r := submit(t, app, s.ID, `{"address":"   "}`)
	if r.Status != 400 {
		t.Fatalf("expected 400, got %d", r.Status)
	}

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/sessions/"+s.ID, nil), -1)
	var got domain.Session
	json.NewDecoder(resp.Body).Decode(&got)
	if got.State != domain.StateIdle || got.Generation != 0 {
		t.Errorf("expected untouched idle session, got %+v", got)
	}
}

func TestSubmitSession_BadBody(t *testing.T) {
	app := setupApp(makeDeps())
	s := createSession(t, app)

	r := submit(t, app, s.ID, `{"address":`)
	if r.Status != 400 {
		t.Fatalf("expected 400, got %d", r.Status)
	}
}

func TestSubmitSession_UnknownSession(t *testing.T) {
	app := setupApp(makeDeps())

	r := submit(t, app, "missing", `{"address":"Bilbao"}`)
	if r.Status != 404 {
		t.Fatalf("expected 404, got %d", r.Status)
	}
}

// ---- Stateless map endpoints ----

func TestMap_Success(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/map?address=Plaza+Moy%C3%BAa", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var doc domain.MapDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Address != "Plaza Moyúa" {
		t.Errorf("expected address, got %q", doc.Address)
	}
	if doc.LayerControl.Position != "topleft" || doc.LayerControl.Collapsed {
		t.Errorf("unexpected layer control %+v", doc.LayerControl)
	}
	if l := doc.Layer(mapcompose.LayerIsochrones); l == nil || len(l.Features.Features) != 1 {
		t.Errorf("expected one isochrone feature")
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=3600" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}
}

func TestMap_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		err    error
		status int
		code   string
	}{
		{"empty address", "", nil, 400, "bad_request"},
		{"not recognized", "zzz123notarealplace", domain.ErrAddressNotFound, 422, "address_not_recognized"},
		{"upstream", "Bilbao", domain.NewRetrievalError("nominatim", errors.New("503")), 502, "upstream_unavailable"},
		{"unexpected", "Bilbao", errors.New("boom"), 500, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupApp(makeDeps(withBuilder(func(ctx context.Context, address string) (*domain.MapDocument, error) {
				return nil, tt.err
			})))

			resp, _ := app.Test(httptest.NewRequest("GET", "/v1/map?address="+tt.query, nil), -1)
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
			var apiErr handler.APIError
			json.NewDecoder(resp.Body).Decode(&apiErr)
			if apiErr.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, apiErr.Code)
			}
			if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
				t.Errorf("failed responses must not be cached, got %q", cc)
			}
		})
	}
}

func TestMapHTML(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/map.html?address=Bilbao", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected text/html, got %q", ct)
	}
	body := string(readBody(t, resp.Body))
	for _, want := range []string{"<title>Bilbao</title>", "renderMap(\"map\"", "light_all", "topleft"} {
		if !strings.Contains(body, want) {
			t.Errorf("map page missing %q", want)
		}
	}
}

func TestIsochronesAndAmenities(t *testing.T) {
	app := setupApp(makeDeps())

	tests := []struct {
		path     string
		features int
	}{
		{"/v1/isochrones?address=Bilbao", 1},
		{"/v1/amenities?address=Bilbao", 2},
	}
	for _, tt := range tests {
		resp, _ := app.Test(httptest.NewRequest("GET", tt.path, nil), -1)
		if resp.StatusCode != 200 {
			t.Fatalf("%s: expected 200, got %d", tt.path, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "application/geo+json" {
			t.Errorf("%s: expected geo+json, got %q", tt.path, ct)
		}
		fc, err := geojson.UnmarshalFeatureCollection(readBody(t, resp.Body))
		if err != nil {
			t.Fatalf("%s: decode: %v", tt.path, err)
		}
		if len(fc.Features) != tt.features {
			t.Errorf("%s: expected %d features, got %d", tt.path, tt.features, len(fc.Features))
		}
	}
}

// ---- Place history ----

func TestRecentPlaces_NoDatabase(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/places/recent", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := strings.TrimSpace(string(readBody(t, resp.Body))); body != "[]" {
		t.Errorf("expected empty list, got %s", body)
	}
}

func TestRecentPlaces_ClampsLimit(t *testing.T) {
	var gotLimit int
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Places = usecases.NewPlaceService(&mockPlaceRepo{
			recentFn: func(ctx context.Context, limit int) ([]domain.PlaceRecord, error) {
				gotLimit = limit
				return []domain.PlaceRecord{{ID: "p1", Address: "Bilbao"}}, nil
			},
		})
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/places/recent?limit=500", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gotLimit != 50 {
		t.Errorf("expected limit clamped to 50, got %d", gotLimit)
	}
	var places []domain.PlaceRecord
	json.NewDecoder(resp.Body).Decode(&places)
	if len(places) != 1 || places[0].Address != "Bilbao" {
		t.Errorf("unexpected places %+v", places)
	}
}

func TestPlace_NotFound(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Places = usecases.NewPlaceService(&mockPlaceRepo{})
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/places?address=Bilbao", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

// ---- GraphQL ----

func graphqlQuery(t *testing.T, app *fiber.App, query string) map[string]any {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"query": query})
	req := httptest.NewRequest("POST", "/graphql", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("graphql: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestGraphQL_Map(t *testing.T) {
	app := setupApp(makeDeps())

	out := graphqlQuery(t, app, `{ map(address: "Bilbao") { address stats { amenities } isochrones { trip_time color geometry } amenities { id amenity color } } }`)
	if errs, ok := out["errors"]; ok {
		t.Fatalf("unexpected errors: %v", errs)
	}
	m := out["data"].(map[string]any)["map"].(map[string]any)
	if m["address"] != "Bilbao" {
		t.Errorf("unexpected address %v", m["address"])
	}
	isos := m["isochrones"].([]any)
	if len(isos) != 1 {
		t.Fatalf("expected 1 isochrone, got %d", len(isos))
	}
	iso := isos[0].(map[string]any)
	if iso["trip_time"].(float64) != 15 || iso["color"] != "#ffff00" {
		t.Errorf("unexpected isochrone %v", iso)
	}
	if !strings.Contains(iso["geometry"].(string), `"Polygon"`) {
		t.Errorf("expected polygon geometry, got %v", iso["geometry"])
	}
	if ams := m["amenities"].([]any); len(ams) != 2 {
		t.Errorf("expected 2 amenities, got %d", len(ams))
	}
}

func TestGraphQL_MapNotRecognized(t *testing.T) {
	app := setupApp(makeDeps(withBuilder(func(ctx context.Context, address string) (*domain.MapDocument, error) {
		return nil, domain.ErrAddressNotFound
	})))

	out := graphqlQuery(t, app, `{ map(address: "zzz123notarealplace") { address } }`)
	errs, ok := out["errors"].([]any)
	if !ok || len(errs) == 0 {
		t.Fatal("expected a GraphQL error")
	}
	if msg := errs[0].(map[string]any)["message"]; msg != "Please try another address." {
		t.Errorf("unexpected message %v", msg)
	}
}

func TestGraphQL_RecentPlaces(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Places = usecases.NewPlaceService(&mockPlaceRepo{
			recentFn: func(ctx context.Context, limit int) ([]domain.PlaceRecord, error) {
				return []domain.PlaceRecord{
					{ID: "p1", Address: "Bilbao", Stats: domain.MapStats{Nodes: 12}},
					{ID: "p2", Address: "Getxo"},
				}[:limit], nil
			},
		})
	})
	app := setupApp(deps)

	out := graphqlQuery(t, app, `{ recentPlaces(limit: 1) { id address stats { nodes } } }`)
	places := out["data"].(map[string]any)["recentPlaces"].([]any)
	if len(places) != 1 {
		t.Fatalf("expected 1 place, got %d", len(places))
	}
	p := places[0].(map[string]any)
	if p["address"] != "Bilbao" || p["stats"].(map[string]any)["nodes"].(float64) != 12 {
		t.Errorf("unexpected place %v", p)
	}
}

// ---- Middleware ----

func TestETag_NotModified(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/map?address=Bilbao", nil), -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest("GET", "/v1/map?address=Bilbao", nil)
	req.Header.Set("If-None-Match", `W/"deadbeef", `+etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Fatalf("expected 304, got %d", resp.StatusCode)
	}
}

func TestAPIVersionHeader(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if v := resp.Header.Get("X-API-Version"); v != "1.0.0" {
		t.Errorf("expected X-API-Version 1.0.0, got %q", v)
	}
}

func TestReady_OptionalBackends(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Checks["database"] != "not configured" || body.Checks["cache"] != "not configured" {
		t.Errorf("unexpected checks %v", body.Checks)
	}
}

type mockUpstreams struct {
	results map[string]error
}

func (m *mockUpstreams) CheckUpstreams(ctx context.Context) map[string]error {
	return m.results
}

func TestReady_UpstreamFailureIsDegraded(t *testing.T) {
	app := setupApp(makeDeps(func(d *handler.Dependencies) {
		d.Upstreams = &mockUpstreams{results: map[string]error{
			"nominatim": nil,
			"overpass":  errors.New("status 504"),
		}}
	}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "degraded" {
		t.Errorf("expected degraded, got %s", body.Status)
	}
	if body.Checks["nominatim"] != "ok" || body.Checks["overpass"] != "error: status 504" {
		t.Errorf("unexpected checks %v", body.Checks)
	}
}

func TestWebSocket_RequiresUpgrade(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/ws", nil), -1)
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Fatalf("expected 426, got %d", resp.StatusCode)
	}
}

// TestAccessLogMiddleware verifies structured access logging is emitted.
func TestAccessLogMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(handler.AccessLogMiddleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "test-req-123")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp.Body); !strings.Contains(string(body), "ok") {
		t.Errorf("expected response body to contain 'ok', got %s", body)
	}
}
