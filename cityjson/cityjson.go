// Package cityjson reads tiled CityJSON exports and turns Building city
// objects with LOD2 multi-surface geometry into an owned, index-free model:
// every surface carries its real projected coordinates instead of references
// into the document vertex pool.
//
// Only the subset of CityJSON needed by the merge pipeline is modeled:
// Building objects, MultiSurface/CompositeSurface and Solid/MultiSolid
// geometry, surface semantics and the optional quantization transform.
package cityjson

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Document is a parsed CityJSON file with its vertex pool resolved.
type Document struct {
	Type      string
	Version   string
	Metadata  Metadata
	Vertices  [][3]float64 // real coordinates, transform already applied
	Buildings []Building
}

// Metadata is the subset of CityJSON metadata the pipeline consumes.
type Metadata struct {
	GeographicalExtent []float64 `json:"geographicalExtent,omitempty"`
	ReferenceSystem    string    `json:"referenceSystem,omitempty"`
}

// Transform is the CityJSON integer-vertex quantization.
type Transform struct {
	Scale     [3]float64 `json:"scale"`
	Translate [3]float64 `json:"translate"`
}

// rawDocument mirrors the on-disk structure before vertex resolution.
type rawDocument struct {
	Type        string               `json:"type"`
	Version     string               `json:"version"`
	Metadata    Metadata             `json:"metadata"`
	Transform   *Transform           `json:"transform"`
	Vertices    [][3]float64         `json:"vertices"`
	CityObjects map[string]rawObject `json:"CityObjects"`
}

type rawObject struct {
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes"`
	Geometry   []rawGeometry  `json:"geometry"`
}

type rawGeometry struct {
	Type       string          `json:"type"`
	Lod        json.RawMessage `json:"lod"`
	Boundaries json.RawMessage `json:"boundaries"`
	Semantics  *rawSemantics   `json:"semantics"`
}

type rawSemantics struct {
	Surfaces []struct {
		Type string `json:"type"`
	} `json:"surfaces"`
	Values json.RawMessage `json:"values"`
}

// Decode parses a CityJSON document, applies the quantization transform if
// present, and extracts all Building objects.
func Decode(r io.Reader) (*Document, error) {
	var raw rawDocument
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode cityjson: %w", err)
	}
	if raw.Type != "CityJSON" {
		return nil, fmt.Errorf("not a CityJSON document: type %q", raw.Type)
	}

	verts := raw.Vertices
	if t := raw.Transform; t != nil {
		verts = make([][3]float64, len(raw.Vertices))
		for i, v := range raw.Vertices {
			for a := 0; a < 3; a++ {
				verts[i][a] = v[a]*t.Scale[a] + t.Translate[a]
			}
		}
	}

	doc := &Document{
		Type:     raw.Type,
		Version:  raw.Version,
		Metadata: raw.Metadata,
		Vertices: verts,
	}
	for id, obj := range raw.CityObjects {
		if obj.Type != "Building" {
			continue
		}
		b, err := buildBuilding(id, obj, verts)
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", id, err)
		}
		doc.Buildings = append(doc.Buildings, b)
	}
	sortBuildings(doc.Buildings)
	return doc, nil
}

// EPSG extracts the numeric EPSG code from the document's reference system
// metadata. Both URN ("urn:ogc:def:crs:EPSG::25832") and OGC URL forms are
// accepted. Returns 0 when absent or unparsable.
func (d *Document) EPSG() int {
	return ParseEPSG(d.Metadata.ReferenceSystem)
}

var epsgRe = regexp.MustCompile(`(?i)EPSG[:/]+(?:0/)?:?(\d+)$`)

// ParseEPSG extracts an EPSG code from a CRS identifier string.
func ParseEPSG(ref string) int {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0
	}
	m := epsgRe.FindStringSubmatch(ref)
	if m == nil {
		return 0
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return code
}

// lodMajor parses the major level out of a CityJSON lod value, which may be
// a number (2, 2.2) or a string ("2.2"). Returns -1 when absent.
func lodMajor(raw json.RawMessage) int {
	if len(raw) == 0 {
		return -1
	}
	s := strings.Trim(string(raw), `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return -1
	}
	return int(f)
}
