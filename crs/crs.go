// Package crs aligns the two source coordinate reference systems: OSM
// objects arrive as geographic WGS84 lon/lat, CityJSON solids in a projected
// system declared by their metadata. The supported projections cover the
// systems cadastral LOD2 exports actually use (ETRS89/UTM and WGS84/UTM).
package crs

import (
	"fmt"

	"github.com/wroge/wgs84"
)

// Projection converts geographic WGS84 coordinates into one projected
// target system. Immutable and safe for concurrent use.
type Projection struct {
	epsg    int
	forward wgs84.Func
}

// NewProjection builds the WGS84 → EPSG transform for the given code.
// Returns an error for codes outside the supported projected systems; the
// caller maps that to its own mismatch taxonomy.
func NewProjection(epsg int) (*Projection, error) {
	to, ok := crsFor(epsg)
	if !ok {
		return nil, fmt.Errorf("crs: unsupported EPSG code %d", epsg)
	}
	return &Projection{
		epsg:    epsg,
		forward: wgs84.LonLat().To(to),
	}, nil
}

func crsFor(code int) (wgs84.CoordinateReferenceSystem, bool) {
	switch {
	case code == 4326:
		return wgs84.LonLat(), true
	case code == 3857:
		return wgs84.WebMercator(), true
	case code >= 25828 && code <= 25838: // ETRS89 / UTM zones 28N-38N
		return wgs84.ETRS89UTM(float64(code - 25800)), true
	case code >= 32601 && code <= 32660: // WGS84 / UTM north
		return wgs84.UTM(float64(code-32600), true), true
	case code >= 32701 && code <= 32760: // WGS84 / UTM south
		return wgs84.UTM(float64(code-32700), false), true
	}
	return nil, false
}

// EPSG returns the target system's EPSG code.
func (p *Projection) EPSG() int { return p.epsg }

// ToPlanar converts a WGS84 lon/lat coordinate to the target system.
func (p *Projection) ToPlanar(lon, lat float64) (x, y float64) {
	x, y, _ = p.forward(lon, lat, 0)
	return x, y
}
