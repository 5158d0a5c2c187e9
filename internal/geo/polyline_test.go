package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanshu/mapbridge/internal/model/core"
)

func TestParsePolylineString(t *testing.T) {
	coords, err := ParsePolylineString("121.47,31.23;116.40,39.90")
	require.NoError(t, err)
	require.Len(t, coords, 2)
	assert.Equal(t, core.Coordinate{Latitude: 31.23, Longitude: 121.47}, coords[0])
	assert.Equal(t, core.Coordinate{Latitude: 39.90, Longitude: 116.40}, coords[1])
}

func TestParsePolylineString_Empty(t *testing.T) {
	coords, err := ParsePolylineString("")
	require.NoError(t, err)
	assert.Nil(t, coords)
}

func TestParsePolylineString_BadPoint(t *testing.T) {
	_, err := ParsePolylineString("121.47,31.23;nope")
	assert.Error(t, err)
}

func TestEncodePolylineString_RoundTrip(t *testing.T) {
	in := []core.Coordinate{
		{Latitude: 31.230545, Longitude: 121.473724},
		{Latitude: 39.900896, Longitude: 116.401049},
	}

	out, err := ParsePolylineString(EncodePolylineString(in))
	require.NoError(t, err)
	require.Len(t, out, 2)
	for i := range in {
		assert.InDelta(t, in[i].Latitude, out[i].Latitude, 1e-6)
		assert.InDelta(t, in[i].Longitude, out[i].Longitude, 1e-6)
	}
}

func TestLineString(t *testing.T) {
	ls, err := LineString([]core.Coordinate{
		{Latitude: 31.23, Longitude: 121.47},
		{Latitude: 39.90, Longitude: 116.40},
	})
	require.NoError(t, err)
	seq := ls.Coordinates()
	assert.Equal(t, 2, seq.Length())
	assert.Equal(t, 121.47, seq.GetXY(0).X)
	assert.Equal(t, 31.23, seq.GetXY(0).Y)
}

func TestLineString_TooShort(t *testing.T) {
	_, err := LineString([]core.Coordinate{{Latitude: 1, Longitude: 2}})
	assert.Error(t, err)
}
