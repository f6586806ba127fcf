// Package merger fuses one OSM object with its matched CityJSON building(s)
// into a single record: unified attributes with per-field provenance, owned
// solid geometry, and validation flags for geometry that violates the
// closed-ring/planarity/watertightness invariants. Violations are flagged,
// never silently dropped.
package merger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lumogis/citymesh/cityjson"
	"github.com/lumogis/citymesh/crs"
	"github.com/lumogis/citymesh/geoindex"
	"github.com/lumogis/citymesh/internal/geom"
	"github.com/lumogis/citymesh/matcher"
	"github.com/lumogis/citymesh/osm"
)

// ErrNoMatch signals that the match result carried zero candidates. It is a
// reportable empty case at the batch level, not a failure of the merger.
var ErrNoMatch = errors.New("merger: no matching building")

// GeometryMismatchError means coordinate alignment between the two sources
// could not be established for one object. Fatal for that object only.
type GeometryMismatchError struct {
	Key    string
	Reason string
	cause  error
}

func (e *GeometryMismatchError) Error() string {
	return fmt.Sprintf("geometry mismatch for %s: %s", e.Key, e.Reason)
}

func (e *GeometryMismatchError) Unwrap() error { return e.cause }

// Provenance names the source of a merged field.
type Provenance string

// Field origins.
const (
	FromOSM      Provenance = "osm"
	FromCityJSON Provenance = "cityjson"
	Derived      Provenance = "derived"
)

// CollisionPrefix marks CityJSON values displaced by an OSM tag of the same
// name. The CityJSON value is retained under the prefixed key.
const CollisionPrefix = "cityjson:"

// Config tunes merge behavior.
type Config struct {
	// MergeAllContaining merges every candidate that contains the OSM
	// point (adjacent and split buildings), instead of only the top-ranked
	// one. Non-containing matches always merge the single nearest.
	MergeAllContaining bool

	// PlanarityTolerance is the maximum deviation (meters) of a surface
	// ring from its best-fit plane before the surface is flagged.
	PlanarityTolerance float64
}

// DefaultConfig returns the default merge policy.
func DefaultConfig() Config {
	return Config{
		MergeAllContaining: true,
		PlanarityTolerance: 0.01,
	}
}

// Record is the fused result for one OSM object. It exclusively owns its
// geometry: the buildings are deep copies, independent of the index.
type Record struct {
	Key        string                `json:"osm_id"`
	EPSG       int                   `json:"epsg"`
	Point      [2]float64            `json:"-"` // projected representative point
	Properties map[string]any        `json:"properties"`
	Provenance map[string]Provenance `json:"provenance"`

	Tile        string   `json:"cityjson_tile,omitempty"`
	BuildingIDs []string `json:"cityjson_building_ids"`
	Distance    float64  `json:"distance_to_building_m"`

	// Flags lists geometry invariant violations detected during the merge
	// (degenerate rings, non-planar surfaces, open solids).
	Flags []string `json:"geometry_flags,omitempty"`

	Buildings []cityjson.Building `json:"-"`
}

// Merge fuses obj with the buildings selected by res. Returns ErrNoMatch
// for an empty result and GeometryMismatchError when the sources cannot be
// aligned in one coordinate reference system.
func Merge(obj *osm.Object, res matcher.Result, ix *geoindex.Index, proj *crs.Projection, cfg Config) (*Record, error) {
	if !res.Matched() {
		return nil, ErrNoMatch
	}
	if proj == nil || ix.EPSG() == 0 {
		return nil, &GeometryMismatchError{Key: obj.Key(), Reason: "source tiles declare no usable reference system"}
	}
	if proj.EPSG() != ix.EPSG() {
		return nil, &GeometryMismatchError{
			Key:    obj.Key(),
			Reason: fmt.Sprintf("projection EPSG:%d does not match index EPSG:%d", proj.EPSG(), ix.EPSG()),
		}
	}

	selected := selectCandidates(res, cfg)

	rec := &Record{
		Key:        obj.Key(),
		EPSG:       proj.EPSG(),
		Point:      [2]float64{res.Point[0], res.Point[1]},
		Properties: map[string]any{},
		Provenance: map[string]Provenance{},
		Distance:   selected[0].Distance,
	}

	// OSM side: tags win every collision.
	for k, v := range obj.Tags {
		rec.Properties[k] = v
		rec.Provenance[k] = FromOSM
	}
	put := func(k string, v any, p Provenance) {
		rec.Properties[k] = v
		rec.Provenance[k] = p
	}
	put("osm_id", obj.ID, FromOSM)
	put("osm_type", string(obj.Type), FromOSM)
	put("lat", obj.Lat, FromOSM)
	put("lon", obj.Lon, FromOSM)
	if len(obj.Accessibility) > 0 {
		put("accessibility", obj.Accessibility, FromOSM)
	}

	for _, cand := range selected {
		entry, ok := ix.Get(cand.ID)
		if !ok {
			return nil, &GeometryMismatchError{
				Key:    obj.Key(),
				Reason: fmt.Sprintf("candidate building %s not present in index", cand.ID),
			}
		}
		rec.BuildingIDs = append(rec.BuildingIDs, cand.ID)
		if rec.Tile == "" {
			rec.Tile = entry.Tile
		}
		mergeAttributes(rec, obj.Tags, entry.Building.Attributes)
		rec.Buildings = append(rec.Buildings, copyBuilding(entry.Building))
	}

	put("distance_to_building_m", rec.Distance, Derived)
	put("matched_buildings", len(rec.BuildingIDs), Derived)

	rec.Flags = validate(rec.Buildings, cfg.PlanarityTolerance)
	return rec, nil
}

// selectCandidates applies the merge policy to the ranked candidates:
// every containing candidate (when enabled), otherwise the top-ranked one.
func selectCandidates(res matcher.Result, cfg Config) []matcher.Candidate {
	if cfg.MergeAllContaining && res.Candidates[0].Contains {
		var out []matcher.Candidate
		for _, c := range res.Candidates {
			if c.Contains {
				out = append(out, c)
			}
		}
		return out
	}
	return res.Candidates[:1]
}

// mergeAttributes folds CityJSON building attributes into the record.
// First-seen building wins among multiple candidates; an OSM tag of the same
// name displaces the value to a provenance-prefixed key.
func mergeAttributes(rec *Record, tags osm.Tags, attrs map[string]any) {
	for k, v := range attrs {
		key := k
		if tags.Has(k) {
			key = CollisionPrefix + k
		}
		if _, exists := rec.Properties[key]; exists {
			continue
		}
		rec.Properties[key] = v
		rec.Provenance[key] = FromCityJSON
	}
}

func copyBuilding(b cityjson.Building) cityjson.Building {
	out := cityjson.Building{ID: b.ID}
	if b.Attributes != nil {
		out.Attributes = make(map[string]any, len(b.Attributes))
		for k, v := range b.Attributes {
			out.Attributes[k] = v
		}
	}
	out.Solids = make([]cityjson.Solid, len(b.Solids))
	for i, s := range b.Solids {
		out.Solids[i].Surfaces = make([]cityjson.Surface, len(s.Surfaces))
		for j, surf := range s.Surfaces {
			ring := make([]geom.Vec3, len(surf.Ring))
			copy(ring, surf.Ring)
			out.Solids[i].Surfaces[j] = cityjson.Surface{Type: surf.Type, Ring: ring}
		}
	}
	return out
}

// Encode serializes the record to its on-disk JSON form, embedding a
// self-contained CityJSON document with a compact vertex pool. Encoding the
// same record twice yields byte-identical output; there is deliberately no
// timestamp field.
func (r *Record) Encode() ([]byte, error) {
	cj, err := cityjson.EncodeDocument(cityjson.Metadata{
		ReferenceSystem: fmt.Sprintf("urn:ogc:def:crs:EPSG::%d", r.EPSG),
	}, r.Buildings)
	if err != nil {
		return nil, fmt.Errorf("encode cityjson block: %w", err)
	}

	type onDisk struct {
		Key         string                `json:"osm_id"`
		EPSG        int                   `json:"epsg"`
		Geometry    pointGeometry         `json:"geometry"`
		Properties  map[string]any        `json:"properties"`
		Provenance  map[string]Provenance `json:"provenance"`
		Tile        string                `json:"cityjson_tile,omitempty"`
		BuildingIDs []string              `json:"cityjson_building_ids"`
		Distance    float64               `json:"distance_to_building_m"`
		Flags       []string              `json:"geometry_flags,omitempty"`
		CityJSON    json.RawMessage       `json:"cityjson"`
	}
	return json.Marshal(onDisk{
		Key:         r.Key,
		EPSG:        r.EPSG,
		Geometry:    pointGeometry{Type: "Point", Coordinates: r.Point},
		Properties:  r.Properties,
		Provenance:  r.Provenance,
		Tile:        r.Tile,
		BuildingIDs: r.BuildingIDs,
		Distance:    r.Distance,
		Flags:       r.Flags,
		CityJSON:    cj,
	})
}

type pointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Decode reads a record back from its on-disk form, including the embedded
// building geometry. The counterpart to Encode.
func Decode(data []byte) (*Record, error) {
	var raw struct {
		Key         string                `json:"osm_id"`
		EPSG        int                   `json:"epsg"`
		Geometry    pointGeometry         `json:"geometry"`
		Properties  map[string]any        `json:"properties"`
		Provenance  map[string]Provenance `json:"provenance"`
		Tile        string                `json:"cityjson_tile"`
		BuildingIDs []string              `json:"cityjson_building_ids"`
		Distance    float64               `json:"distance_to_building_m"`
		Flags       []string              `json:"geometry_flags"`
		CityJSON    json.RawMessage       `json:"cityjson"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	rec := &Record{
		Key:         raw.Key,
		EPSG:        raw.EPSG,
		Point:       raw.Geometry.Coordinates,
		Properties:  raw.Properties,
		Provenance:  raw.Provenance,
		Tile:        raw.Tile,
		BuildingIDs: raw.BuildingIDs,
		Distance:    raw.Distance,
		Flags:       raw.Flags,
	}
	if len(raw.CityJSON) > 0 && string(raw.CityJSON) != "null" {
		doc, err := cityjson.Decode(bytes.NewReader(raw.CityJSON))
		if err != nil {
			return nil, fmt.Errorf("decode embedded cityjson: %w", err)
		}
		rec.Buildings = doc.Buildings
	}
	return rec, nil
}
