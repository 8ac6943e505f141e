// Package geospatial holds small geographic helpers shared by the OSM adapters.
package geospatial

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// BoundingBox returns the box extending radiusMeters north, south, east and
// west of center.
func BoundingBox(center orb.Point, radiusMeters float64) orb.Bound {
	return geo.NewBoundAroundPoint(center, radiusMeters)
}

// OverpassBBox formats b as an Overpass QL bounding box filter "(s,w,n,e)".
func OverpassBBox(b orb.Bound) string {
	return fmt.Sprintf("(%.7f,%.7f,%.7f,%.7f)", b.Min.Lat(), b.Min.Lon(), b.Max.Lat(), b.Max.Lon())
}

// OverpassAround formats an Overpass QL "around" filter.
func OverpassAround(center orb.Point, radiusMeters float64) string {
	return fmt.Sprintf("(around:%.0f,%.7f,%.7f)", radiusMeters, center.Lat(), center.Lon())
}
