// Package osm models the point-of-interest objects consumed by the merge
// pipeline: an identifier, a WGS84 coordinate, a free-form tag mapping and an
// optional polygon footprint. Objects are immutable once decoded.
package osm

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ElementType is the OSM element kind an object was derived from.
type ElementType string

// OSM element kinds.
const (
	TypeNode     ElementType = "node"
	TypeWay      ElementType = "way"
	TypeRelation ElementType = "relation"
)

// Object is one OSM point-of-interest feature.
//
// Lon/Lat are geographic WGS84 coordinates: for nodes the node position, for
// ways and relations the centroid reported by the extractor. Footprint, when
// present, is the object's own outline in the same coordinates.
type Object struct {
	ID            int64       `json:"osm_id"`
	Type          ElementType `json:"osm_type"`
	Lat           float64     `json:"lat"`
	Lon           float64     `json:"lon"`
	Tags          Tags        `json:"tags"`
	Accessibility Tags        `json:"accessibility,omitempty"`
	Footprint     orb.Ring    `json:"footprint,omitempty"`
}

// Key returns the identifier used to derive output filenames. It is unique
// across element types (node/way/relation IDs overlap numerically).
func (o *Object) Key() string {
	if o.Type == "" || o.Type == TypeNode {
		return fmt.Sprintf("%d", o.ID)
	}
	return fmt.Sprintf("%s_%d", o.Type, o.ID)
}

// Point returns the object's geographic coordinate as lon/lat.
func (o *Object) Point() orb.Point {
	return orb.Point{o.Lon, o.Lat}
}

// RepresentativePoint returns the point used for spatial matching: the
// footprint centroid when a footprint is present, the object's own
// coordinate otherwise.
func (o *Object) RepresentativePoint() orb.Point {
	if len(o.Footprint) >= 3 {
		c, _ := planar.CentroidArea(o.Footprint)
		return c
	}
	return o.Point()
}

// Name returns the object's name tag, or an empty string.
func (o *Object) Name() string {
	return o.Tags["name"]
}

// Decode reads a JSON array of fetched objects, the on-disk format produced
// by the fetch step. Objects without a usable coordinate are dropped; the
// number dropped is returned alongside the kept objects.
func Decode(r io.Reader) ([]Object, int, error) {
	var raw []struct {
		ID   int64             `json:"osm_id"`
		Type ElementType       `json:"osm_type"`
		Lat  *float64          `json:"lat"`
		Lon  *float64          `json:"lon"`
		Tags map[string]string `json:"tags"`
		Acc  map[string]string `json:"accessibility"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("decode osm objects: %w", err)
	}

	objs := make([]Object, 0, len(raw))
	dropped := 0
	for _, e := range raw {
		if e.Lat == nil || e.Lon == nil {
			dropped++
			continue
		}
		tags := Tags(e.Tags)
		acc := Tags(e.Acc)
		if len(acc) == 0 {
			acc = ExtractAccessibility(tags)
		}
		objs = append(objs, Object{
			ID:            e.ID,
			Type:          e.Type,
			Lat:           *e.Lat,
			Lon:           *e.Lon,
			Tags:          tags,
			Accessibility: acc,
		})
	}
	return objs, dropped, nil
}
