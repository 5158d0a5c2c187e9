package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanshu/mapbridge/internal/model/core"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    core.Coordinate
		wantErr bool
	}{
		{
			name:  "lon lat",
			input: "121.473724,31.230545",
			want:  core.Coordinate{Latitude: 31.230545, Longitude: 121.473724},
		},
		{
			name:  "with spaces",
			input: " 116.401049 , 39.900896 ",
			want:  core.Coordinate{Latitude: 39.900896, Longitude: 116.401049},
		},
		{
			name:    "missing component",
			input:   "121.473724",
			wantErr: true,
		},
		{
			name:    "not a number",
			input:   "abc,31.2",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCoordinate(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoordinates)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCoordinate_RoundTrip(t *testing.T) {
	c := core.Coordinate{Latitude: 31.230545, Longitude: 121.473724}

	s := FormatCoordinate(c)
	assert.Equal(t, "121.473724,31.230545", s)

	back, err := ParseCoordinate(s)
	require.NoError(t, err)
	assert.InDelta(t, c.Latitude, back.Latitude, 1e-6)
	assert.InDelta(t, c.Longitude, back.Longitude, 1e-6)
}

func TestMercator(t *testing.T) {
	// Null island maps to the mercator origin.
	x, y := Mercator(core.Coordinate{})
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)

	// Positive lon/lat land in the upper-right quadrant.
	x, y = Mercator(core.Coordinate{Latitude: 31.230545, Longitude: 121.473724})
	assert.Greater(t, x, 0.0)
	assert.Greater(t, y, 0.0)
}
