package isochrone

import (
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
)

// weightedGraph builds the search view of g weighted by Edge.Time. Parallel
// edges collapse to the fastest one and self loops are dropped.
func weightedGraph(g *domain.StreetGraph) *simple.WeightedDirectedGraph {
	wg := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	for _, id := range g.NodeIDs() {
		wg.AddNode(simple.Node(id))
	}
	for _, e := range g.Edges {
		if e.From == e.To {
			continue
		}
		if w, ok := wg.Weight(e.From, e.To); ok && w <= e.Time {
			continue
		}
		wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(e.From), simple.Node(e.To), e.Time))
	}
	return wg
}

// Reachable returns every node whose shortest travel time from source is
// <= radius, with that time.
func Reachable(g *domain.StreetGraph, source int64, radius float64) map[int64]float64 {
	dist := make(map[int64]float64)
	if _, ok := g.Nodes[source]; !ok || radius < 0 {
		return dist
	}

	shortest := path.DijkstraFrom(simple.Node(source), weightedGraph(g))
	for id := range g.Nodes {
		if d := shortest.WeightTo(id); d <= radius {
			dist[id] = d
		}
	}
	return dist
}

// Within filters a distance map down to nodes reachable inside radius.
func Within(dist map[int64]float64, radius float64) []int64 {
	ids := make([]int64, 0, len(dist))
	for id, d := range dist {
		if d <= radius {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	return ids
}
