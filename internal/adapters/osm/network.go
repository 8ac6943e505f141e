package osm

import (
	"context"
	"encoding/xml"
	"fmt"
	"slices"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
	"github.com/samirrijal/fifteenmap/internal/pkg/geospatial"
)

// highway values a pedestrian cannot use.
var excludedHighwayList = []string{
	"abandoned", "bus_guideway", "construction", "cycleway", "motor", "planned",
	"platform", "proposed", "raceway", "motorway", "motorway_link",
}

var excludedHighways = func() map[string]bool {
	m := make(map[string]bool, len(excludedHighwayList))
	for _, v := range excludedHighwayList {
		m[v] = true
	}
	return m
}()

// walkFilter is the Overpass QL tag filter for walkable ways.
func walkFilter() string {
	return `["highway"]["area"!~"yes"]["highway"!~"` + strings.Join(excludedHighwayList, "|") +
		`"]["foot"!~"no"]["service"!~"private"]["access"!~"private"]`
}

// isWalkable applies walkFilter to decoded tags.
func isWalkable(tags map[string]string) bool {
	hw, ok := tags["highway"]
	if !ok || excludedHighways[hw] {
		return false
	}
	return tags["area"] != "yes" && tags["foot"] != "no" &&
		tags["service"] != "private" && tags["access"] != "private"
}

// NetworkQuery builds the Overpass query for the walkable ways in bbox.
func NetworkQuery(bbox orb.Bound) string {
	return fmt.Sprintf("[out:xml][timeout:180];(way%s%s;);(._;>;);out;",
		walkFilter(), geospatial.OverpassBBox(bbox))
}

// FetchNetwork downloads the walkable street network within radiusMeters of
// center (as a bounding box). Every way segment becomes an edge in both
// directions. Nodes outside the box are dropped and only the largest
// connected component is kept. An empty result is domain.ErrNoNetwork.
func (c *Client) FetchNetwork(ctx context.Context, center domain.GeoPoint, radiusMeters float64, networkType string) (*domain.StreetGraph, error) {
	if networkType != "walk" {
		return nil, fmt.Errorf("unsupported network type %q", networkType)
	}
	bbox := geospatial.BoundingBox(center.Point(), radiusMeters)

	body, err := c.postOverpass(ctx, NetworkQuery(bbox))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var data osm.OSM
	if err := xml.NewDecoder(body).Decode(&data); err != nil {
		return nil, domain.NewRetrievalError("overpass", fmt.Errorf("decode network: %w", err))
	}

	g := BuildGraph(&data, bbox)
	if g.Len() == 0 {
		return nil, fmt.Errorf("network around %.5f,%.5f: %w", center.Lat, center.Lon, domain.ErrNoNetwork)
	}
	return g, nil
}

// BuildGraph turns decoded OSM data into a street graph truncated to bbox.
func BuildGraph(data *osm.OSM, bbox orb.Bound) *domain.StreetGraph {
	coords := make(map[int64]orb.Point, len(data.Nodes))
	for _, n := range data.Nodes {
		p := orb.Point{n.Lon, n.Lat}
		if bbox.Contains(p) {
			coords[int64(n.ID)] = p
		}
	}

	var segments []segment
	for _, w := range data.Ways {
		if !isWalkable(w.TagMap()) {
			continue
		}
		ids := w.Nodes.NodeIDs()
		for i := 1; i < len(ids); i++ {
			a, b := int64(ids[i-1]), int64(ids[i])
			if a == b {
				continue
			}
			if _, ok := coords[a]; !ok {
				continue
			}
			if _, ok := coords[b]; !ok {
				continue
			}
			segments = append(segments, segment{a, b})
		}
	}

	keep := largestComponent(segments)

	g := domain.NewStreetGraph()
	for id := range keep {
		p := coords[id]
		g.AddNode(&domain.Node{ID: id, Lat: p.Lat(), Lon: p.Lon()})
	}
	for _, s := range segments {
		if !keep[s.a] {
			continue
		}
		length := geo.DistanceHaversine(coords[s.a], coords[s.b])
		g.AddEdge(s.a, s.b, length)
		g.AddEdge(s.b, s.a, length)
	}
	return g
}

type segment struct{ a, b int64 }

// largestComponent returns the node set of the biggest connected component.
// Ties go to the component containing the smallest node ID.
func largestComponent(segments []segment) map[int64]bool {
	ug := simple.NewUndirectedGraph()
	for _, s := range segments {
		ug.SetEdge(ug.NewEdge(simple.Node(s.a), simple.Node(s.b)))
	}

	var best []int64
	for _, comp := range topo.ConnectedComponents(ug) {
		ids := make([]int64, len(comp))
		for i, n := range comp {
			ids[i] = n.ID()
		}
		if len(ids) > len(best) || (len(ids) == len(best) && slices.Min(ids) < slices.Min(best)) {
			best = ids
		}
	}

	keep := make(map[int64]bool, len(best))
	for _, id := range best {
		keep[id] = true
	}
	return keep
}
