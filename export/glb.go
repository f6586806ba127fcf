package export

import (
	"bytes"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/lumogis/citymesh/meshkit"
)

// EncodeGLB serializes a mesh as a binary glTF scene. Each material group
// becomes its own node so viewers can toggle roof, wall and ground
// surfaces independently. Positions are float32; the local-origin rebase
// in meshkit keeps the precision loss below a millimeter.
func EncodeGLB(m *meshkit.Mesh) ([]byte, error) {
	if m == nil || len(m.Faces) == 0 {
		return nil, fmt.Errorf("encode glb: empty mesh")
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "citymesh"

	positions := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
	}
	posAccessor := modeler.WritePosition(doc, positions)

	for _, g := range m.Groups {
		if g.Count == 0 {
			continue
		}

		indices := make([]uint32, 0, g.Count*3)
		for _, f := range m.Faces[g.Start : g.Start+g.Count] {
			indices = append(indices, f[0], f[1], f[2])
		}
		idxAccessor := modeler.WriteIndices(doc, indices)

		color := g.Material.Color()
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name: g.Material.String(),
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float32{color[0], color[1], color[2], color[3]},
				MetallicFactor:  gltf.Float(0),
				RoughnessFactor: gltf.Float(0.9),
			},
			DoubleSided: true,
		})
		matIndex := uint32(len(doc.Materials) - 1)

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: m.Key + "/" + g.Material.String(),
			Primitives: []*gltf.Primitive{{
				Indices: gltf.Index(idxAccessor),
				Attributes: map[string]uint32{
					gltf.POSITION: posAccessor,
				},
				Material: gltf.Index(matIndex),
			}},
		})
		meshIndex := uint32(len(doc.Meshes) - 1)

		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: g.Material.String(),
			Mesh: gltf.Index(meshIndex),
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}

	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("encode glb: mesh %s has no non-empty groups", m.Key)
	}

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode glb: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeGLB parses a binary glTF scene. Used by tests and the inspect
// command; the pipeline itself only writes.
func DecodeGLB(data []byte) (*gltf.Document, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode glb: %w", err)
	}
	return doc, nil
}
