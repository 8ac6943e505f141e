package domain

import (
	"encoding/json"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Place is a free-text address resolved to a geographic point.
type Place struct {
	Query       string   `json:"query"`
	DisplayName string   `json:"display_name"`
	Location    GeoPoint `json:"location"`
}

// Isochrone is the area reachable within TripTime minutes. Geometry is a
// Polygon, or a Point/LineString when fewer than three distinct nodes are reachable.
type Isochrone struct {
	TripTime  int          `json:"trip_time"`
	Color     string       `json:"color"`
	Geometry  orb.Geometry `json:"-"`
	NodeCount int          `json:"node_count"`
}

// Amenity is a point of interest tagged amenity=* in OpenStreetMap.
type Amenity struct {
	ID       string       `json:"id"` // e.g. "node/123", "way/456"
	Category string       `json:"amenity"`
	Name     string       `json:"name,omitempty"`
	Geometry orb.Geometry `json:"-"`
	Location GeoPoint     `json:"location"`
}

// TileLayer describes the base map tiles.
type TileLayer struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"max_zoom"`
}

// MapLayer is one toggleable overlay of the composed map.
type MapLayer struct {
	Name     string                     `json:"name"`
	Visible  bool                       `json:"visible"`
	Features *geojson.FeatureCollection `json:"features"`
}

// LegendEntry maps a label to its display color.
type LegendEntry struct {
	Layer string `json:"layer"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// LayerControl places the layer toggle widget.
type LayerControl struct {
	Position  string `json:"position"`
	Collapsed bool   `json:"collapsed"`
}

// MapDocument is the composed, interactive map for one address.
type MapDocument struct {
	Address      string        `json:"address"`
	Place        Place         `json:"place"`
	Center       GeoPoint      `json:"center"`
	Tiles        TileLayer     `json:"tiles"`
	Layers       []MapLayer    `json:"layers"`
	Legend       []LegendEntry `json:"legend"`
	Bounds       Bounds        `json:"bounds"`
	Padding      [2]int        `json:"padding"`
	LayerControl LayerControl  `json:"layer_control"`
	Stats        MapStats      `json:"stats"`
	ComputedAt   time.Time     `json:"computed_at"`
}

// Layer returns the named layer, or nil.
func (m *MapDocument) Layer(name string) *MapLayer {
	for i := range m.Layers {
		if m.Layers[i].Name == name {
			return &m.Layers[i]
		}
	}
	return nil
}

// MapStats summarises the inputs a map was computed from.
type MapStats struct {
	Nodes     int `json:"nodes"`
	Edges     int `json:"edges"`
	Amenities int `json:"amenities"`
}

// IsochroneRecord is a persisted isochrone polygon.
type IsochroneRecord struct {
	TripTime int             `json:"trip_time"`
	Color    string          `json:"color"`
	Geometry json.RawMessage `json:"geometry"` // GeoJSON geometry
}

// MapComputed is published after a map was computed from fresh data.
type MapComputed struct {
	Address     string            `json:"address"`
	DisplayName string            `json:"display_name"`
	Location    GeoPoint          `json:"location"`
	Stats       MapStats          `json:"stats"`
	Isochrones  []IsochroneRecord `json:"isochrones"`
	ComputedAt  time.Time         `json:"computed_at"`
}

// PlaceRecord is a previously computed place as stored in the history.
type PlaceRecord struct {
	ID          string            `json:"id"`
	Address     string            `json:"address"`
	DisplayName string            `json:"display_name"`
	Location    GeoPoint          `json:"location"`
	Stats       MapStats          `json:"stats"`
	Isochrones  []IsochroneRecord `json:"isochrones,omitempty"`
	ComputedAt  time.Time         `json:"computed_at"`
}
