package isochrone

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
)

// Centroid returns the mean coordinate of all graph nodes.
func Centroid(g *domain.StreetGraph) (orb.Point, bool) {
	if g.Len() == 0 {
		return orb.Point{}, false
	}
	var sumLon, sumLat float64
	for _, n := range g.Nodes {
		sumLon += n.Lon
		sumLat += n.Lat
	}
	k := float64(g.Len())
	return orb.Point{sumLon / k, sumLat / k}, true
}

// NearestNode returns the node closest to p by great-circle distance.
// Ties resolve to the smallest node ID.
func NearestNode(g *domain.StreetGraph, p orb.Point) (int64, bool) {
	best := int64(0)
	bestDist := -1.0
	for _, id := range g.NodeIDs() {
		n := g.Nodes[id]
		d := geo.Distance(p, orb.Point{n.Lon, n.Lat})
		if bestDist < 0 || d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, bestDist >= 0
}

// CenterNode picks the node nearest to the centroid of the network.
func CenterNode(g *domain.StreetGraph) (int64, error) {
	c, ok := Centroid(g)
	if !ok {
		return 0, domain.ErrNoNetwork
	}
	id, _ := NearestNode(g, c)
	return id, nil
}
