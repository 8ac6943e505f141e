package telemetry

// Span names, one per pipeline step.
const (
	SpanBuildMap        = "map.build"
	SpanGeocode         = "pipeline.geocode"
	SpanFetchNetwork    = "pipeline.fetch_network"
	SpanAnnotate        = "pipeline.annotate_times"
	SpanIsochrones      = "pipeline.isochrones"
	SpanFetchAmenities  = "pipeline.fetch_amenities"
	SpanCompose         = "pipeline.compose"
	SpanSessionSubmit   = "session.submit"
	SpanPrefetchAddress = "prefetch.address"
)
