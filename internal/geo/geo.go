package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shanshu/mapbridge/internal/model/core"
	"github.com/wroge/wgs84"
)

// The vendor SDK exchanges coordinates as "lon,lat" strings and paths as
// ";"-joined lists of them. Internally the map surface works in Web Mercator
// (EPSG:3857), so screen projection converts from WGS84 (EPSG:4326) first.

// ErrInvalidCoordinates is returned when a coordinate string cannot be parsed.
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// ParseCoordinate parses a "lon,lat" string into a core.Coordinate.
func ParseCoordinate(s string) (core.Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) < 2 {
		return core.Coordinate{}, ErrInvalidCoordinates
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return core.Coordinate{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return core.Coordinate{}, ErrInvalidCoordinates
	}
	return core.Coordinate{Latitude: lat, Longitude: lon}, nil
}

// FormatCoordinate renders a coordinate in the vendor's "lon,lat" order with
// six decimal places, the precision the vendor uses on the wire.
func FormatCoordinate(c core.Coordinate) string {
	return fmt.Sprintf("%.6f,%.6f", c.Longitude, c.Latitude)
}

// Mercator converts a WGS84 coordinate to Web Mercator easting/northing in
// meters.
func Mercator(c core.Coordinate) (x, y float64) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(c.Longitude, c.Latitude, 0)
	return x, y
}
