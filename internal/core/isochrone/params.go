// Package isochrone turns an annotated walking graph into reachability polygons.
package isochrone

const (
	// NetworkType selects pedestrian-traversable ways.
	NetworkType = "walk"
	// TravelSpeedKmh is the average walking speed.
	TravelSpeedKmh = 4.8
	// NetworkRadiusMeters bounds the street network download around the address.
	NetworkRadiusMeters = 1000.0
	// AmenityRadiusMeters bounds the amenity lookup around the address.
	AmenityRadiusMeters = 1000.0
	// AmenityTag is the OSM key that marks a local service.
	AmenityTag = "amenity"
)

// TripTimes are the isochrone budgets in minutes, largest first.
var TripTimes = []int{15, 10, 5}
