package cityjson

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/paulmach/orb"
)

// TileInfo describes one tile of a tiled CityJSON export: its file and the
// geographical extent advertised in its metadata.
type TileInfo struct {
	Name   string
	Path   string
	Extent [6]float64 // minX, minY, minZ, maxX, maxY, maxZ
}

// Contains reports whether the 2D point lies inside the tile's extent.
func (t TileInfo) Contains(p orb.Point) bool {
	return p[0] >= t.Extent[0] && p[0] <= t.Extent[3] &&
		p[1] >= t.Extent[1] && p[1] <= t.Extent[4]
}

// TileSet is the loader collaborator over a directory of CityJSON tiles.
// Opening a tile set only reads tile metadata; full tiles are decoded
// lazily and cached. Safe for concurrent use after Open.
type TileSet struct {
	tiles []TileInfo

	mu    sync.Mutex
	cache map[string]*Document
}

// OpenTileSet scans dir for CityJSON files matching pattern (e.g.
// "gebaeude_lod2_*.json") and indexes them by their metadata extent. Files
// without a geographical extent are skipped.
func OpenTileSet(dir, pattern string) (*TileSet, error) {
	if pattern == "" {
		pattern = "*.json"
	}
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("scan tiles: %w", err)
	}
	sort.Strings(paths)

	ts := &TileSet{cache: make(map[string]*Document)}
	for _, path := range paths {
		info, err := readTileInfo(path)
		if err != nil {
			return nil, err
		}
		if info == nil {
			continue
		}
		ts.tiles = append(ts.tiles, *info)
	}
	if len(ts.tiles) == 0 {
		return nil, fmt.Errorf("no CityJSON tiles found in %s", dir)
	}
	return ts, nil
}

// readTileInfo decodes only the metadata section of a tile file.
func readTileInfo(path string) (*TileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tile %s: %w", path, err)
	}
	defer f.Close()

	var head struct {
		Metadata Metadata `json:"metadata"`
	}
	if err := json.NewDecoder(f).Decode(&head); err != nil {
		return nil, fmt.Errorf("read tile metadata %s: %w", path, err)
	}
	ext := head.Metadata.GeographicalExtent
	if len(ext) != 6 {
		return nil, nil
	}
	info := &TileInfo{Name: filepath.Base(path), Path: path}
	copy(info.Extent[:], ext)
	return info, nil
}

// Tiles returns the indexed tiles in deterministic (path) order.
func (ts *TileSet) Tiles() []TileInfo {
	return ts.tiles
}

// TilesCovering returns the tiles whose extent contains the given projected
// point. Buildings near tile borders may appear in more than one tile; the
// geometry index dedupes them by identifier.
func (ts *TileSet) TilesCovering(p orb.Point) []TileInfo {
	var out []TileInfo
	for _, t := range ts.tiles {
		if t.Contains(p) {
			out = append(out, t)
		}
	}
	return out
}

// Load decodes the named tile, caching the result for the lifetime of the
// tile set.
func (ts *TileSet) Load(name string) (*Document, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if doc, ok := ts.cache[name]; ok {
		return doc, nil
	}
	var path string
	for _, t := range ts.tiles {
		if t.Name == name {
			path = t.Path
			break
		}
	}
	if path == "" {
		return nil, fmt.Errorf("unknown tile %q", name)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tile %s: %w", path, err)
	}
	defer f.Close()
	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("tile %s: %w", name, err)
	}
	ts.cache[name] = doc
	return doc, nil
}

// Buildings loads every tile and returns all buildings with their source
// tile name. The same building ID can occur multiple times when it spans
// tiles.
func (ts *TileSet) Buildings() ([]SourcedBuilding, error) {
	var out []SourcedBuilding
	for _, t := range ts.tiles {
		doc, err := ts.Load(t.Name)
		if err != nil {
			return nil, err
		}
		for i := range doc.Buildings {
			out = append(out, SourcedBuilding{
				Building: doc.Buildings[i],
				Tile:     t.Name,
				EPSG:     doc.EPSG(),
			})
		}
	}
	return out, nil
}

// SourcedBuilding is a building together with its provenance within the
// tiled export.
type SourcedBuilding struct {
	Building Building
	Tile     string
	EPSG     int
}
