package osm

import (
	"context"
	"fmt"
	"slices"
	"sort"

	overpass "github.com/MeKo-Christian/go-overpass"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
	"github.com/samirrijal/fifteenmap/internal/pkg/geospatial"
)

// AmenityQuery builds the Overpass query for nodes, ways and relations
// carrying tag within radiusMeters of center. Way and relation geometry comes
// from the recursed members.
func AmenityQuery(center orb.Point, radiusMeters float64, tag string) string {
	around := geospatial.OverpassAround(center, radiusMeters)
	return fmt.Sprintf(`[out:json][timeout:180];(node["%[1]s"]%[2]s;way["%[1]s"]%[2]s;relation["%[1]s"]%[2]s;);out body;>;out skel qt;`,
		tag, around)
}

// FetchAmenities downloads amenities around center. Closed ways become
// polygons, open ways lines and multipolygon relations multipolygons.
// Results are ordered nodes first, then ways, then relations, by ID.
func (c *Client) FetchAmenities(ctx context.Context, center domain.GeoPoint, radiusMeters float64, tag string) ([]domain.Amenity, error) {
	res, err := c.op.QueryContext(ctx, AmenityQuery(center.Point(), radiusMeters, tag))
	if err != nil {
		return nil, domain.NewRetrievalError("overpass", err)
	}
	return amenitiesFromResult(&res, tag), nil
}

type refAmenity struct {
	ref int64
	domain.Amenity
}

func amenitiesFromResult(res *overpass.Result, tag string) []domain.Amenity {
	var nodes, ways, relations []refAmenity

	for _, n := range res.Nodes {
		category := n.Tags[tag]
		if category == "" {
			continue // helper node of a way
		}
		loc := domain.GeoPoint{Lat: n.Lat, Lon: n.Lon}
		nodes = append(nodes, refAmenity{n.ID, domain.Amenity{
			ID:       fmt.Sprintf("node/%d", n.ID),
			Category: category,
			Name:     n.Tags["name"],
			Geometry: loc.Point(),
			Location: loc,
		}})
	}

	for _, w := range res.Ways {
		category := w.Tags[tag]
		if category == "" || len(w.Nodes) == 0 {
			continue
		}
		line, ok := wayLine(w)
		if !ok {
			continue
		}

		a := domain.Amenity{
			ID:       fmt.Sprintf("way/%d", w.ID),
			Category: category,
			Name:     w.Tags["name"],
			Geometry: line,
			Location: domain.GeoPointFrom(line[0]),
		}
		if len(line) >= 4 && line[0].Equal(line[len(line)-1]) {
			poly := orb.Polygon{orb.Ring(line)}
			centroid, _ := planar.CentroidArea(poly)
			a.Geometry = poly
			a.Location = domain.GeoPointFrom(centroid)
		}
		ways = append(ways, refAmenity{w.ID, a})
	}

	for _, r := range res.Relations {
		category := r.Tags[tag]
		if category == "" || r.Tags["type"] != "multipolygon" {
			continue
		}
		mp, ok := relationPolygons(r)
		if !ok {
			continue
		}
		centroid, _ := planar.CentroidArea(mp)
		relations = append(relations, refAmenity{r.ID, domain.Amenity{
			ID:       fmt.Sprintf("relation/%d", r.ID),
			Category: category,
			Name:     r.Tags["name"],
			Geometry: mp,
			Location: domain.GeoPointFrom(centroid),
		}})
	}

	byRef := func(items []refAmenity) {
		sort.Slice(items, func(i, j int) bool { return items[i].ref < items[j].ref })
	}
	byRef(nodes)
	byRef(ways)
	byRef(relations)

	out := make([]domain.Amenity, 0, len(nodes)+len(ways)+len(relations))
	for _, group := range [][]refAmenity{nodes, ways, relations} {
		for _, a := range group {
			out = append(out, a.Amenity)
		}
	}
	return out
}

// wayLine returns the way's node coordinates, or false when a node is missing.
func wayLine(w *overpass.Way) (orb.LineString, bool) {
	line := make(orb.LineString, 0, len(w.Nodes))
	for _, n := range w.Nodes {
		if n == nil {
			return nil, false
		}
		line = append(line, orb.Point{n.Lon, n.Lat})
	}
	return line, true
}

// relationPolygons assembles the outer member ways of a multipolygon relation
// into polygons and attaches each inner ring to the polygon containing it.
func relationPolygons(r *overpass.Relation) (orb.MultiPolygon, bool) {
	var outer, inner []orb.LineString
	for _, m := range r.Members {
		if m.Type != overpass.ElementTypeWay || m.Way == nil {
			continue
		}
		line, ok := wayLine(m.Way)
		if !ok || len(line) < 2 {
			continue
		}
		if m.Role == "inner" {
			inner = append(inner, line)
		} else {
			outer = append(outer, line)
		}
	}

	var mp orb.MultiPolygon
	for _, ring := range joinRings(outer) {
		mp = append(mp, orb.Polygon{ring})
	}
	if len(mp) == 0 {
		return nil, false
	}
	for _, ring := range joinRings(inner) {
		for i := range mp {
			if planar.RingContains(mp[i][0], ring[0]) {
				mp[i] = append(mp[i], ring)
				break
			}
		}
	}
	return mp, true
}

// joinRings chains lines sharing end points into closed rings. Chains that
// never close are dropped.
func joinRings(lines []orb.LineString) []orb.Ring {
	pending := slices.Clone(lines)
	var rings []orb.Ring
	for len(pending) > 0 {
		cur := slices.Clone(pending[0])
		pending = pending[1:]

		for !cur[0].Equal(cur[len(cur)-1]) {
			end := cur[len(cur)-1]
			joined := false
			for i, l := range pending {
				switch {
				case l[0].Equal(end):
					cur = append(cur, l[1:]...)
				case l[len(l)-1].Equal(end):
					rev := slices.Clone(l)
					slices.Reverse(rev)
					cur = append(cur, rev[1:]...)
				default:
					continue
				}
				pending = slices.Delete(pending, i, i+1)
				joined = true
				break
			}
			if !joined {
				break
			}
		}

		if len(cur) >= 4 && cur[0].Equal(cur[len(cur)-1]) {
			rings = append(rings, orb.Ring(cur))
		}
	}
	return rings
}
