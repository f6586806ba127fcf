package osm

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_Key(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
		want string
	}{
		{"node", Object{ID: 1001, Type: TypeNode}, "1001"},
		{"untyped defaults to node", Object{ID: 1001}, "1001"},
		{"way", Object{ID: 1001, Type: TypeWay}, "way_1001"},
		{"relation", Object{ID: 42, Type: TypeRelation}, "relation_42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.obj.Key())
		})
	}
}

func TestObject_RepresentativePoint(t *testing.T) {
	obj := Object{Lon: 8.4, Lat: 49.0}
	assert.Equal(t, orb.Point{8.4, 49.0}, obj.RepresentativePoint())

	// With a footprint the centroid wins over the stored coordinate.
	obj.Footprint = orb.Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}
	pt := obj.RepresentativePoint()
	assert.InDelta(t, 1, pt[0], 1e-9)
	assert.InDelta(t, 1, pt[1], 1e-9)
}

func TestDecode(t *testing.T) {
	data := `[
		{"osm_id": 1, "osm_type": "node", "lat": 49.0, "lon": 8.4,
		 "tags": {"amenity": "pharmacy", "wheelchair": "yes"}},
		{"osm_id": 2, "osm_type": "way", "lat": 49.1, "lon": 8.5,
		 "tags": {"amenity": "doctors"},
		 "accessibility": {"wheelchair": "limited"}},
		{"osm_id": 3, "osm_type": "node", "tags": {"amenity": "fuel"}}
	]`

	objs, dropped, err := Decode(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, dropped, "coordinate-less object must be dropped")
	require.Len(t, objs, 2)

	// Accessibility is extracted from tags when the field is absent.
	assert.Equal(t, "yes", objs[0].Accessibility["wheelchair"])
	// An explicit accessibility field is kept as-is.
	assert.Equal(t, "limited", objs[1].Accessibility["wheelchair"])
	assert.Equal(t, "way_2", objs[1].Key())
}

func TestDecode_Invalid(t *testing.T) {
	_, _, err := Decode(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestExtractAccessibility(t *testing.T) {
	tags := Tags{
		"amenity":            "pharmacy",
		"wheelchair":         "yes",
		"toilets:wheelchair": "no",
		"ramp":               "yes",
		"name":               "Apotheke",
	}
	acc := ExtractAccessibility(tags)
	assert.Equal(t, Tags{"wheelchair": "yes", "toilets:wheelchair": "no", "ramp": "yes"}, acc)

	assert.NotNil(t, ExtractAccessibility(Tags{"amenity": "cafe"}))
	assert.Empty(t, ExtractAccessibility(Tags{"amenity": "cafe"}))
}

func TestTags_WheelchairAccessible(t *testing.T) {
	for _, v := range []string{"yes", "true", "1", "designated", "limited"} {
		assert.True(t, Tags{"wheelchair": v}.WheelchairAccessible(), v)
	}
	for _, v := range []string{"no", "false", "0", "unknown", ""} {
		assert.False(t, Tags{"wheelchair": v}.WheelchairAccessible(), v)
	}
	assert.False(t, Tags{}.WheelchairAccessible())
}

func TestTags_Clone(t *testing.T) {
	orig := Tags{"a": "1"}
	cp := orig.Clone()
	cp["a"] = "2"
	assert.Equal(t, "1", orig["a"])

	assert.Nil(t, Tags(nil).Clone())
}

func TestTags_SortedKeys(t *testing.T) {
	tags := Tags{"c": "", "a": "", "b": ""}
	assert.Equal(t, []string{"a", "b", "c"}, tags.SortedKeys())
}
