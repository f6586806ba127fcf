package cityjson

import (
	"encoding/json"
)

// outgoing document structure; field order fixes the on-disk layout.
type outDocument struct {
	Type        string               `json:"type"`
	Version     string               `json:"version"`
	Metadata    Metadata             `json:"metadata"`
	Vertices    [][3]float64         `json:"vertices"`
	CityObjects map[string]outObject `json:"CityObjects"`
}

type outObject struct {
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Geometry   []outGeometry  `json:"geometry"`
}

type outGeometry struct {
	Type       string        `json:"type"`
	Lod        int           `json:"lod"`
	Boundaries [][][][]int   `json:"boundaries"` // shell -> surface -> ring -> index
	Semantics  *outSemantics `json:"semantics,omitempty"`
}

type outSemantics struct {
	Surfaces []outSurfaceDef `json:"surfaces"`
	Values   [][]int         `json:"values"`
}

type outSurfaceDef struct {
	Type string `json:"type"`
}

// EncodeDocument serializes buildings as a self-contained CityJSON document
// with a compact vertex pool: only vertices referenced by the given
// buildings, remapped to dense indices. Output is deterministic for the same
// input, so the merged-record invariant of byte-identical re-encoding holds.
func EncodeDocument(meta Metadata, buildings []Building) ([]byte, error) {
	doc := outDocument{
		Type:        "CityJSON",
		Version:     "1.0",
		Metadata:    meta,
		Vertices:    [][3]float64{},
		CityObjects: make(map[string]outObject, len(buildings)),
	}

	vertIndex := make(map[[3]float64]int)
	indexOf := func(p [3]float64) int {
		if i, ok := vertIndex[p]; ok {
			return i
		}
		i := len(doc.Vertices)
		vertIndex[p] = i
		doc.Vertices = append(doc.Vertices, p)
		return i
	}

	for _, b := range buildings {
		obj := outObject{Type: "Building", Attributes: b.Attributes}
		for _, solid := range b.Solids {
			g := outGeometry{
				Type:       "Solid",
				Lod:        2,
				Boundaries: [][][][]int{{}},
				Semantics:  &outSemantics{Values: [][]int{{}}},
			}
			semIndex := make(map[SurfaceType]int)
			for _, surf := range solid.Surfaces {
				ring := make([]int, 0, len(surf.Ring))
				for _, p := range surf.Ring {
					ring = append(ring, indexOf([3]float64(p)))
				}
				g.Boundaries[0] = append(g.Boundaries[0], [][]int{ring})

				si, ok := semIndex[surf.Type]
				if !ok {
					si = len(g.Semantics.Surfaces)
					semIndex[surf.Type] = si
					g.Semantics.Surfaces = append(g.Semantics.Surfaces, outSurfaceDef{Type: surf.Type.String()})
				}
				g.Semantics.Values[0] = append(g.Semantics.Values[0], si)
			}
			obj.Geometry = append(obj.Geometry, g)
		}
		doc.CityObjects[b.ID] = obj
	}

	return json.Marshal(doc)
}
