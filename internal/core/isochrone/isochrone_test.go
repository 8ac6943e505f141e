package isochrone_test

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
	"github.com/samirrijal/fifteenmap/internal/core/isochrone"
)

// testGraph builds a small bidirectional network. At 4.8 km/h (80 m/min):
//
//	1 --400m-- 2 --400m-- 3 --400m-- 4
//	|
//	800m
//	|
//	5 --1200m-- 6
func testGraph() *domain.StreetGraph {
	g := domain.NewStreetGraph()
	coords := map[int64][2]float64{
		1: {-2.9350, 43.2630},
		2: {-2.9300, 43.2630},
		3: {-2.9250, 43.2630},
		4: {-2.9200, 43.2630},
		5: {-2.9350, 43.2560},
		6: {-2.9200, 43.2560},
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
	link(3, 4, 400)
	link(1, 5, 800)
	link(5, 6, 1200)
	return g
}

func TestAnnotateTimes(t *testing.T) {
	g := testGraph()
	isochrone.AnnotateTimes(g, isochrone.TravelSpeedKmh)

	want := map[float64]float64{400: 5, 800: 10, 1200: 15}
	for _, e := range g.Edges {
		if e.Time != want[e.Length] {
			t.Errorf("edge %d->%d: expected time %v, got %v", e.From, e.To, want[e.Length], e.Time)
		}
		if e.Time <= 0 {
			t.Errorf("edge %d->%d: time must be positive", e.From, e.To)
		}
	}
}

func TestMetersPerMinute(t *testing.T) {
	if got := isochrone.MetersPerMinute(4.8); got != 80 {
		t.Errorf("expected 80 m/min, got %v", got)
	}
}

func TestReachable_HandComputed(t *testing.T) {
	g := testGraph()
	isochrone.AnnotateTimes(g, isochrone.TravelSpeedKmh)

	dist := isochrone.Reachable(g, 1, 15)
	want := map[int64]float64{1: 0, 2: 5, 3: 10, 4: 15, 5: 10}
	if !reflect.DeepEqual(dist, want) {
		t.Fatalf("expected %v, got %v", want, dist)
	}

	cases := map[int][]int64{
		5:  {1, 2},
		10: {1, 2, 3, 5},
		15: {1, 2, 3, 4, 5},
	}
	for tt, ids := range cases {
		if got := isochrone.Within(dist, float64(tt)); !reflect.DeepEqual(got, ids) {
			t.Errorf("trip %d: expected %v, got %v", tt, ids, got)
		}
	}
}

func TestReachable_Monotone(t *testing.T) {
	g := testGraph()
	isochrone.AnnotateTimes(g, isochrone.TravelSpeedKmh)

	prev := map[int64]float64{}
	for _, tt := range []float64{0, 5, 10, 15, 20, 25, 30} {
		curr := isochrone.Reachable(g, 1, tt)
		for id := range prev {
			if _, ok := curr[id]; !ok {
				t.Errorf("node %d reachable within smaller budget but not within %v", id, tt)
			}
		}
		prev = curr
	}
}

func TestReachable_ParallelEdgesUseFastest(t *testing.T) {
	g := testGraph()
	g.AddEdge(1, 2, 2000)
	g.AddEdge(2, 2, 100)
	isochrone.AnnotateTimes(g, isochrone.TravelSpeedKmh)

	dist := isochrone.Reachable(g, 1, 15)
	if dist[2] != 5 {
		t.Errorf("expected node 2 at 5 min over the shorter edge, got %v", dist[2])
	}
	if len(dist) != 5 {
		t.Errorf("expected 5 reachable nodes, got %v", dist)
	}
}

func TestReachable_UnknownSource(t *testing.T) {
	g := testGraph()
	if got := isochrone.Reachable(g, 99, 15); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestCenterNode(t *testing.T) {
	g := domain.NewStreetGraph()
	g.AddNode(&domain.Node{ID: 10, Lon: 0, Lat: 0})
	g.AddNode(&domain.Node{ID: 11, Lon: 0.02, Lat: 0})
	g.AddNode(&domain.Node{ID: 12, Lon: 0, Lat: 0.02})
	g.AddNode(&domain.Node{ID: 13, Lon: 0.02, Lat: 0.02})
	g.AddNode(&domain.Node{ID: 14, Lon: 0.011, Lat: 0.011})

	id, err := isochrone.CenterNode(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 14 {
		t.Errorf("expected center node 14, got %d", id)
	}
}

func TestCenterNode_EmptyGraph(t *testing.T) {
	_, err := isochrone.CenterNode(domain.NewStreetGraph())
	if domain.Classify(err) != domain.ErrorKindResolution {
		t.Errorf("expected resolution error, got %v", err)
	}
}

func TestConvexHull_ContainsAllPoints(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		pts := make([]orb.Point, 50)
		for i := range pts {
			pts[i] = orb.Point{-2.94 + 0.02*rng.Float64(), 43.25 + 0.02*rng.Float64()}
		}
		poly, ok := isochrone.ConvexHull(pts).(orb.Polygon)
		if !ok {
			t.Fatalf("round %d: expected polygon", round)
		}
		if poly[0].Orientation() != orb.CCW {
			t.Errorf("round %d: expected counter-clockwise ring", round)
		}
		for _, p := range pts {
			// hull edges are geodesics, so allow for their bow against the lon/lat chord
			if !planar.PolygonContains(poly, p) && planar.DistanceFrom(orb.LineString(poly[0]), p) > 1e-7 {
				t.Errorf("round %d: hull does not contain %v", round, p)
			}
		}
	}
}

func TestConvexHull_Square(t *testing.T) {
	pts := []orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0.5, 0.5}, {0.25, 0.75}}
	poly, ok := isochrone.ConvexHull(pts).(orb.Polygon)
	if !ok {
		t.Fatal("expected polygon")
	}
	if n := len(poly[0]); n != 5 {
		t.Errorf("expected 4 corners plus closing point, got %d points", n)
	}
	if a := planar.Area(poly); math.Abs(a-1) > 1e-9 {
		t.Errorf("expected area 1, got %v", a)
	}
}

func TestConvexHull_Degenerate(t *testing.T) {
	if g := isochrone.ConvexHull(nil); g != nil {
		t.Errorf("expected nil for empty input, got %v", g)
	}
	if _, ok := isochrone.ConvexHull([]orb.Point{{1, 1}, {1, 1}}).(orb.Point); !ok {
		t.Error("expected point for a single distinct point")
	}
	if ls, ok := isochrone.ConvexHull([]orb.Point{{3, 1}, {2, 2}}).(orb.LineString); !ok || len(ls) != 2 {
		t.Errorf("expected line string for two points, got %v", ls)
	}
	// points on one meridian
	ls, ok := isochrone.ConvexHull([]orb.Point{{0, 0}, {0, 2}, {0, 1}}).(orb.LineString)
	if !ok {
		t.Fatal("expected line string for collinear points")
	}
	if !ls[0].Equal(orb.Point{0, 0}) || !ls[1].Equal(orb.Point{0, 2}) {
		t.Errorf("expected extremes, got %v", ls)
	}
}

func TestAutumnColors(t *testing.T) {
	got := isochrone.AutumnColors(3)
	want := []string{"#ff0000", "#ff8000", "#ffff00"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if c := isochrone.AutumnColors(1); c[0] != "#ff0000" {
		t.Errorf("expected red for a single stop, got %s", c[0])
	}
}

func TestCategoryColors(t *testing.T) {
	colors := isochrone.CategoryColors([]string{"school", "cafe", "school", "bank"})
	if len(colors) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(colors))
	}
	if colors["bank"] != "#1f77b4" || colors["cafe"] != "#ff7f0e" || colors["school"] != "#2ca02c" {
		t.Errorf("unexpected assignment: %v", colors)
	}

	many := make([]string, 12)
	for i := range many {
		many[i] = string(rune('a' + i))
	}
	colors = isochrone.CategoryColors(many)
	if colors["b"] != "#aec7e8" {
		t.Errorf("expected tab20 beyond ten categories, got %s", colors["b"])
	}
}

func TestBuild(t *testing.T) {
	g := testGraph()
	isochrone.AnnotateTimes(g, isochrone.TravelSpeedKmh)
	colors := isochrone.AutumnColors(len(isochrone.TripTimes))

	isos := isochrone.Build(g, 1, []int{5, 15, 10}, colors)
	if len(isos) != 3 {
		t.Fatalf("expected 3 isochrones, got %d", len(isos))
	}

	wantTimes := []int{15, 10, 5}
	wantNodes := []int{5, 4, 2}
	seen := map[string]bool{}
	for i, iso := range isos {
		if iso.TripTime != wantTimes[i] {
			t.Errorf("isochrone %d: expected trip time %d, got %d", i, wantTimes[i], iso.TripTime)
		}
		if iso.NodeCount != wantNodes[i] {
			t.Errorf("isochrone %d: expected %d nodes, got %d", i, wantNodes[i], iso.NodeCount)
		}
		if seen[iso.Color] {
			t.Errorf("color %s assigned twice", iso.Color)
		}
		seen[iso.Color] = true
	}

	if _, ok := isos[0].Geometry.(orb.Polygon); !ok {
		t.Errorf("15 min: expected polygon, got %T", isos[0].Geometry)
	}
	// nodes 1 and 2 only: the hull degenerates to a line
	if _, ok := isos[2].Geometry.(orb.LineString); !ok {
		t.Errorf("5 min: expected line string, got %T", isos[2].Geometry)
	}

	poly := isos[0].Geometry.(orb.Polygon)
	center := orb.Point{-2.9300, 43.2600}
	if !planar.PolygonContains(poly, center) {
		t.Errorf("expected 15 min polygon to contain interior point %v", center)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	g := testGraph()
	isochrone.AnnotateTimes(g, isochrone.TravelSpeedKmh)
	colors := isochrone.AutumnColors(3)

	a := isochrone.Build(g, 1, isochrone.TripTimes, colors)
	b := isochrone.Build(g, 1, isochrone.TripTimes, colors)
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical isochrones for identical input")
	}
}
