package crs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProjection(t *testing.T) {
	tests := []struct {
		name    string
		epsg    int
		wantErr bool
	}{
		{"wgs84", 4326, false},
		{"web mercator", 3857, false},
		{"etrs89 utm32", 25832, false},
		{"wgs84 utm32 north", 32632, false},
		{"wgs84 utm23 south", 32723, false},
		{"gauss krueger unsupported", 31467, true},
		{"zero", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProjection(tt.epsg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.epsg, p.EPSG())
		})
	}
}

func TestProjection_ToPlanar(t *testing.T) {
	p, err := NewProjection(25832)
	require.NoError(t, err)

	// Karlsruhe city center. Reference values from the standard
	// transverse Mercator series on GRS80.
	x, y := p.ToPlanar(8.4037, 49.0069)
	assert.InDelta(t, 456391.25, x, 0.5)
	assert.InDelta(t, 5428394.11, y, 0.5)
}

func TestProjection_ToPlanar_Identity(t *testing.T) {
	p, err := NewProjection(4326)
	require.NoError(t, err)

	x, y := p.ToPlanar(8.4, 49.0)
	assert.InDelta(t, 8.4, x, 1e-9)
	assert.InDelta(t, 49.0, y, 1e-9)
}

func TestProjection_DistancesPreserved(t *testing.T) {
	p, err := NewProjection(25832)
	require.NoError(t, err)

	// Two points ~100m apart east-west at this latitude. UTM distortion
	// at ~2.3° from the central meridian stays well under 1%.
	x1, y1 := p.ToPlanar(8.4037, 49.0069)
	x2, y2 := p.ToPlanar(8.4051, 49.0069)
	dx, dy := x2-x1, y2-y1
	dist := dx*dx + dy*dy
	assert.InDelta(t, 102.3*102.3, dist, 500)
}
