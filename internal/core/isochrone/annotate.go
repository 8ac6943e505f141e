package isochrone

import "github.com/samirrijal/fifteenmap/internal/core/domain"

// MetersPerMinute converts km/h to m/min.
func MetersPerMinute(speedKmh float64) float64 {
	return speedKmh * 1000 / 60
}

// AnnotateTimes sets Edge.Time (minutes) from Edge.Length (meters) for every edge.
func AnnotateTimes(g *domain.StreetGraph, speedKmh float64) {
	mpm := MetersPerMinute(speedKmh)
	for _, e := range g.Edges {
		e.Time = e.Length / mpm
	}
}
