package geo

import (
	"fmt"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/shanshu/mapbridge/internal/model/core"
)

// ParsePolylineString parses the vendor wire format "lon,lat;lon,lat;..."
// into a coordinate slice.
func ParsePolylineString(s string) ([]core.Coordinate, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	segments := strings.Split(s, ";")
	coords := make([]core.Coordinate, 0, len(segments))
	for i, seg := range segments {
		c, err := ParseCoordinate(seg)
		if err != nil {
			return nil, fmt.Errorf("polyline point %d: %w", i, err)
		}
		coords = append(coords, c)
	}
	return coords, nil
}

// EncodePolylineString renders a coordinate slice in the vendor wire format.
func EncodePolylineString(coords []core.Coordinate) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = FormatCoordinate(c)
	}
	return strings.Join(parts, ";")
}

// LineString builds a simplefeatures LineString from a coordinate sequence.
// A visible line needs at least 2 points.
func LineString(coords []core.Coordinate) (geom.LineString, error) {
	if len(coords) < 2 {
		return geom.LineString{}, fmt.Errorf("polyline must have at least 2 points, got %d", len(coords))
	}
	flat := make([]float64, 0, len(coords)*2)
	for _, c := range coords {
		flat = append(flat, c.Longitude, c.Latitude)
	}
	seq := geom.NewSequence(flat, geom.DimXY)
	return geom.NewLineString(seq), nil
}
