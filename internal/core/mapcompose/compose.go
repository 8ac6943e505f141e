// Package mapcompose assembles isochrones and amenities into a layered map document.
package mapcompose

import (
	"fmt"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
	"github.com/samirrijal/fifteenmap/internal/core/isochrone"
)

// Layer names, in drawing order above the base tiles.
const (
	LayerEdges      = "street edges"
	LayerIsochrones = "isochrones"
	LayerAmenities  = "amenities"
)

// DefaultTiles is the light CartoDB Positron basemap.
var DefaultTiles = domain.TileLayer{
	Name:        "CartoDB positron",
	URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
	Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
	MaxZoom:     20,
}

// Input collects everything a map is composed from.
type Input struct {
	Address      string
	Place        domain.Place
	Graph        *domain.StreetGraph
	Isochrones   []domain.Isochrone
	Amenities    []domain.Amenity
	IncludeEdges bool
	Now          time.Time
}

// Compose builds the map document. Layers are, bottom to top: optional street
// edges (hidden), isochrones (largest trip time first), amenities. The bounds
// cover every rendered geometry.
func Compose(in Input) *domain.MapDocument {
	doc := &domain.MapDocument{
		Address:      in.Address,
		Place:        in.Place,
		Center:       in.Place.Location,
		Tiles:        DefaultTiles,
		Padding:      [2]int{30, 30},
		LayerControl: domain.LayerControl{Position: "topleft", Collapsed: false},
		ComputedAt:   in.Now,
	}
	if in.Graph != nil {
		doc.Stats.Nodes = in.Graph.Len()
		doc.Stats.Edges = len(in.Graph.Edges)
	}
	doc.Stats.Amenities = len(in.Amenities)

	if in.IncludeEdges && in.Graph != nil {
		doc.Layers = append(doc.Layers, domain.MapLayer{
			Name:     LayerEdges,
			Visible:  false,
			Features: edgeFeatures(in.Graph),
		})
	}

	isoFC := geojson.NewFeatureCollection()
	for _, iso := range in.Isochrones {
		if iso.Geometry == nil {
			continue
		}
		f := geojson.NewFeature(iso.Geometry)
		f.Properties["trip_time"] = iso.TripTime
		f.Properties["color"] = iso.Color
		f.Properties["fillColor"] = iso.Color
		f.Properties["fillOpacity"] = 0.5
		f.Properties["node_count"] = iso.NodeCount
		isoFC.Append(f)
		doc.Legend = append(doc.Legend, domain.LegendEntry{
			Layer: LayerIsochrones,
			Label: fmt.Sprintf("%d min", iso.TripTime),
			Color: iso.Color,
		})
	}
	doc.Layers = append(doc.Layers, domain.MapLayer{Name: LayerIsochrones, Visible: true, Features: isoFC})

	categories := make([]string, 0, len(in.Amenities))
	for _, a := range in.Amenities {
		categories = append(categories, a.Category)
	}
	palette := isochrone.CategoryColors(categories)

	amFC := geojson.NewFeatureCollection()
	for _, a := range in.Amenities {
		geom := a.Geometry
		if geom == nil {
			geom = a.Location.Point()
		}
		f := geojson.NewFeature(geom)
		f.ID = a.ID
		f.Properties["amenity"] = a.Category
		f.Properties["name"] = a.Name
		f.Properties["color"] = palette[a.Category]
		amFC.Append(f)
	}
	for _, c := range sortedKeys(palette) {
		doc.Legend = append(doc.Legend, domain.LegendEntry{Layer: LayerAmenities, Label: c, Color: palette[c]})
	}
	doc.Layers = append(doc.Layers, domain.MapLayer{Name: LayerAmenities, Visible: true, Features: amFC})

	doc.Bounds = domain.BoundsFrom(bounds(doc.Layers, in.Place.Location.Point()))
	return doc
}

func edgeFeatures(g *domain.StreetGraph) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, e := range g.Edges {
		// one feature per undirected segment
		if e.From > e.To || e.Key != 0 {
			continue
		}
		a, b := g.Nodes[e.From], g.Nodes[e.To]
		if a == nil || b == nil {
			continue
		}
		f := geojson.NewFeature(orb.LineString{{a.Lon, a.Lat}, {b.Lon, b.Lat}})
		f.Properties["length"] = e.Length
		f.Properties["time"] = e.Time
		f.Properties["color"] = "#555555"
		fc.Append(f)
	}
	return fc
}

// bounds unions the bounds of every feature in a visible layer; fallback is
// used when nothing is drawn.
func bounds(layers []domain.MapLayer, fallback orb.Point) orb.Bound {
	var b orb.Bound
	found := false
	for _, l := range layers {
		if !l.Visible {
			continue
		}
		for _, f := range l.Features.Features {
			fb := f.Geometry.Bound()
			if !found {
				b, found = fb, true
				continue
			}
			b = b.Union(fb)
		}
	}
	if !found {
		return fallback.Bound()
	}
	return b
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
