package isochrone

import (
	"math"
	"sort"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ConvexHull returns the convex hull of lon/lat points as a counter-clockwise
// Polygon. One distinct point yields a Point and collinear points yield a
// LineString between the two extremes. An empty input yields nil.
func ConvexHull(points []orb.Point) orb.Geometry {
	pts := make([]orb.Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] == pts[j][0] {
			return pts[i][1] < pts[j][1]
		}
		return pts[i][0] < pts[j][0]
	})

	uniq := pts[:0]
	for i, p := range pts {
		if i == 0 || !p.Equal(uniq[len(uniq)-1]) {
			uniq = append(uniq, p)
		}
	}
	pts = uniq

	switch len(pts) {
	case 0:
		return nil
	case 1:
		return pts[0]
	case 2:
		return orb.LineString{pts[0], pts[1]}
	}

	q := s2.NewConvexHullQuery()
	for _, p := range pts {
		q.AddPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat(), p.Lon())))
	}
	loop := q.ConvexHull()

	ring := make(orb.Ring, 0, loop.NumVertices()+1)
	for _, v := range loop.Vertices() {
		ll := s2.LatLngFromPoint(v)
		ring = append(ring, orb.Point{ll.Lng.Degrees(), ll.Lat.Degrees()})
	}
	if len(ring) < 3 {
		return orb.LineString{pts[0], pts[len(pts)-1]}
	}
	ring = append(ring, ring[0])

	// all input points on one line
	if math.Abs(planar.Area(orb.Polygon{ring})) < 1e-18 {
		return orb.LineString{pts[0], pts[len(pts)-1]}
	}
	if ring.Orientation() != orb.CCW {
		ring.Reverse()
	}
	return orb.Polygon{ring}
}
