// Package tagindex provides an inverted index over OSM tags for batch
// selection: which objects carry a tag key, which carry a specific
// key=value pair. Backed by roaring bitmaps so intersections over large
// fetches stay cheap.
package tagindex

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/lumogis/citymesh/osm"
)

// Index is an immutable inverted index over a fixed object slice.
// Positions in the slice are the bitmap document IDs.
type Index struct {
	objects []osm.Object
	keys    map[string]*roaring.Bitmap
	pairs   map[string]*roaring.Bitmap
}

// Build indexes the objects' tags and accessibility tags.
func Build(objects []osm.Object) *Index {
	ix := &Index{
		objects: objects,
		keys:    make(map[string]*roaring.Bitmap),
		pairs:   make(map[string]*roaring.Bitmap),
	}
	for i, obj := range objects {
		ix.addTags(uint32(i), obj.Tags)
		ix.addTags(uint32(i), obj.Accessibility)
	}
	return ix
}

func (ix *Index) addTags(pos uint32, tags osm.Tags) {
	for k, v := range tags {
		bm, ok := ix.keys[k]
		if !ok {
			bm = roaring.New()
			ix.keys[k] = bm
		}
		bm.Add(pos)

		pair := k + "=" + v
		bm, ok = ix.pairs[pair]
		if !ok {
			bm = roaring.New()
			ix.pairs[pair] = bm
		}
		bm.Add(pos)
	}
}

// Len returns the number of indexed objects.
func (ix *Index) Len() int { return len(ix.objects) }

// All selects every indexed object.
func (ix *Index) All() Selection {
	bm := roaring.New()
	bm.AddRange(0, uint64(len(ix.objects)))
	return Selection{ix: ix, bm: bm}
}

// WithKey selects objects carrying the tag key, regardless of value.
func (ix *Index) WithKey(key string) Selection {
	return ix.selection(ix.keys[key])
}

// WithValue selects objects carrying the exact key=value pair.
func (ix *Index) WithValue(key, value string) Selection {
	return ix.selection(ix.pairs[key+"="+value])
}

// WheelchairAccessible selects objects whose wheelchair tagging counts as
// accessible (yes, designated, limited and boolean spellings).
func (ix *Index) WheelchairAccessible() Selection {
	sel := Selection{ix: ix, bm: roaring.New()}
	for _, v := range []string{"yes", "true", "1", "designated", "limited"} {
		sel = sel.Or(ix.WithValue("wheelchair", v))
	}
	return sel
}

func (ix *Index) selection(bm *roaring.Bitmap) Selection {
	if bm == nil {
		return Selection{ix: ix, bm: roaring.New()}
	}
	return Selection{ix: ix, bm: bm.Clone()}
}

// Selection is a set of indexed objects. Operations return new selections;
// the index itself is never mutated.
type Selection struct {
	ix *Index
	bm *roaring.Bitmap
}

// Len returns the number of selected objects.
func (s Selection) Len() int { return int(s.bm.GetCardinality()) }

// And intersects two selections.
func (s Selection) And(other Selection) Selection {
	bm := s.bm.Clone()
	bm.And(other.bm)
	return Selection{ix: s.ix, bm: bm}
}

// Or unions two selections.
func (s Selection) Or(other Selection) Selection {
	bm := s.bm.Clone()
	bm.Or(other.bm)
	return Selection{ix: s.ix, bm: bm}
}

// Not inverts the selection against the full object set.
func (s Selection) Not() Selection {
	bm := roaring.Flip(s.bm, 0, uint64(len(s.ix.objects)))
	return Selection{ix: s.ix, bm: bm}
}

// Objects materializes the selected objects in index order.
func (s Selection) Objects() []osm.Object {
	out := make([]osm.Object, 0, s.bm.GetCardinality())
	it := s.bm.Iterator()
	for it.HasNext() {
		out = append(out, s.ix.objects[it.Next()])
	}
	return out
}

// Iterator yields the selected objects in index order.
func (s Selection) Iterator() iter.Seq[*osm.Object] {
	return func(yield func(*osm.Object) bool) {
		it := s.bm.Iterator()
		for it.HasNext() {
			if !yield(&s.ix.objects[it.Next()]) {
				return
			}
		}
	}
}
