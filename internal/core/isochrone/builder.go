package isochrone

import (
	"sort"

	"github.com/paulmach/orb"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
)

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// Build computes one isochrone per trip time, largest first. colors[i] is
// assigned to the i-th largest trip time. A single shortest-path search with
// the largest budget serves all trip times.
func Build(g *domain.StreetGraph, center int64, tripTimes []int, colors []string) []domain.Isochrone {
	times := make([]int, len(tripTimes))
	copy(times, tripTimes)
	sort.Sort(sort.Reverse(sort.IntSlice(times)))
	if len(times) == 0 {
		return nil
	}

	dist := Reachable(g, center, float64(times[0]))

	isos := make([]domain.Isochrone, 0, len(times))
	for i, t := range times {
		ids := Within(dist, float64(t))
		pts := make([]orb.Point, 0, len(ids))
		for _, id := range ids {
			n := g.Nodes[id]
			pts = append(pts, orb.Point{n.Lon, n.Lat})
		}
		geom := ConvexHull(pts)

		color := ""
		if i < len(colors) {
			color = colors[i]
		}
		isos = append(isos, domain.Isochrone{
			TripTime:  t,
			Color:     color,
			Geometry:  geom,
			NodeCount: len(ids),
		})
	}
	return isos
}
