// internal/model/core/base.go
package core

// Coordinate is a WGS84 latitude/longitude pair. The bridge performs no
// range validation; out-of-range values are passed through to the map SDK.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point is a position in screen coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair in screen points.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RegionSpan is the visible extent of a map region in degrees.
type RegionSpan struct {
	LatitudeDelta  float64 `json:"latitudeDelta"`
	LongitudeDelta float64 `json:"longitudeDelta"`
}

// Region is a center coordinate plus a span.
type Region struct {
	Center Coordinate `json:"center"`
	Span   RegionSpan `json:"span"`
}

// MapType selects the base map rendering style (0..5: standard, satellite,
// night, navigation, bus, navigation-night).
type MapType int

// UserTrackingMode selects how the map follows the user location
// (0: none, 1: follow, 2: follow with heading).
type UserTrackingMode int
