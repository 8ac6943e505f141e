package domain

import "sort"

// Node is a street intersection or way vertex.
type Node struct {
	ID  int64   `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location returns the node coordinate.
func (n *Node) Location() GeoPoint {
	return GeoPoint{Lat: n.Lat, Lon: n.Lon}
}

// Edge is a directed street segment. Length is in meters, Time in minutes.
type Edge struct {
	From   int64   `json:"from"`
	To     int64   `json:"to"`
	Key    int     `json:"key"`
	Length float64 `json:"length"`
	Time   float64 `json:"time"`
}

// StreetGraph is a directed multigraph of a walkable street network.
// It must not be modified after edge times have been annotated.
type StreetGraph struct {
	Nodes map[int64]*Node
	Edges []*Edge
	CRS   string

	out map[int64][]*Edge
}

// NewStreetGraph creates an empty graph in WGS 84.
func NewStreetGraph() *StreetGraph {
	return &StreetGraph{
		Nodes: make(map[int64]*Node),
		CRS:   "EPSG:4326",
	}
}

// AddNode inserts or replaces a node.
func (g *StreetGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
}

// AddEdge appends a directed edge. Parallel edges get increasing keys.
func (g *StreetGraph) AddEdge(from, to int64, length float64) *Edge {
	key := 0
	for _, e := range g.Out(from) {
		if e.To == to {
			key++
		}
	}
	e := &Edge{From: from, To: to, Key: key, Length: length}
	g.Edges = append(g.Edges, e)
	if g.out == nil {
		g.out = make(map[int64][]*Edge)
	}
	g.out[from] = append(g.out[from], e)
	return e
}

// Out returns the outgoing edges of a node.
func (g *StreetGraph) Out(id int64) []*Edge {
	if g.out == nil && len(g.Edges) > 0 {
		g.reindex()
	}
	return g.out[id]
}

func (g *StreetGraph) reindex() {
	g.out = make(map[int64][]*Edge, len(g.Nodes))
	for _, e := range g.Edges {
		g.out[e.From] = append(g.out[e.From], e)
	}
}

// NodeIDs returns all node IDs in ascending order.
func (g *StreetGraph) NodeIDs() []int64 {
	ids := make([]int64, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of nodes.
func (g *StreetGraph) Len() int {
	return len(g.Nodes)
}
