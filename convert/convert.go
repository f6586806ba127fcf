// Package convert turns fetched objects into compact GeoJSON for
// inspection in a GIS viewer, plus wheelchair yes/no subsets.
package convert

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/lumogis/citymesh/osm"
	"github.com/lumogis/citymesh/tagindex"
)

// typeTagKeys are the descriptive tags kept on inspection features.
var typeTagKeys = []string{
	"amenity",
	"public_transport",
	"highway",
	"railway",
	"name",
}

// accessTagKeys are the accessibility tags kept, prefixed with "acc_".
var accessTagKeys = []string{
	"wheelchair",
	"toilets:wheelchair",
	"wheelchair:description",
	"wheelchair_toilet",
	"step_free",
	"ramp",
	"ramp:wheelchair",
	"accessibility",
}

// ToGeoJSON converts objects to a WGS84 point FeatureCollection. Properties
// are reduced to identifiers, type/name tags and "acc_"-prefixed
// accessibility tags; everything else is dropped for viewer friendliness.
func ToGeoJSON(objs []osm.Object) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range objs {
		fc.Append(toFeature(&objs[i]))
	}
	return fc
}

func toFeature(o *osm.Object) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{o.Lon, o.Lat})
	f.Properties["osm_id"] = o.ID
	f.Properties["osm_type"] = string(o.Type)
	f.Properties["lat"] = o.Lat
	f.Properties["lon"] = o.Lon

	for _, k := range typeTagKeys {
		if v, ok := o.Tags[k]; ok {
			f.Properties[k] = v
		}
	}

	// Accessibility values win over plain tags for the same key.
	for _, k := range accessTagKeys {
		if v, ok := o.Accessibility[k]; ok {
			f.Properties["acc_"+k] = v
		} else if v, ok := o.Tags[k]; ok {
			f.Properties["acc_"+k] = v
		}
	}
	return f
}

// Subsets is the wheelchair partition of a fetch result. Objects without
// any wheelchair tagging appear in neither subset.
type Subsets struct {
	Accessible    []osm.Object
	NotAccessible []osm.Object
}

// wheelchairNo are the spellings treated as explicitly not accessible.
var wheelchairNo = map[string]bool{
	"no": true, "false": true, "0": true,
	"null": true, "none": true, "nan": true, "unknown": true, "": true,
}

// WheelchairSubsets splits objects by their wheelchair tagging using the
// tag index, mirroring the yes/no inspection exports.
func WheelchairSubsets(objs []osm.Object) Subsets {
	ix := tagindex.Build(objs)

	var sub Subsets
	sub.Accessible = ix.WheelchairAccessible().Objects()
	for o := range ix.WithKey("wheelchair").Iterator() {
		v := strings.ToLower(wheelchairValue(o))
		if wheelchairNo[v] {
			sub.NotAccessible = append(sub.NotAccessible, *o)
		}
	}
	return sub
}

func wheelchairValue(o *osm.Object) string {
	if v, ok := o.Accessibility["wheelchair"]; ok {
		return v
	}
	return o.Tags["wheelchair"]
}

// Marshal serializes a FeatureCollection with stable key order.
func Marshal(fc *geojson.FeatureCollection) ([]byte, error) {
	data, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	return data, nil
}

// SubsetName derives the subset filename from the base GeoJSON name,
// e.g. "pois.geojson" -> "pois_acc_yes.geojson".
func SubsetName(base, suffix string) string {
	ext := ".geojson"
	stem := strings.TrimSuffix(base, ext)
	if stem == base {
		ext = ""
	}
	return stem + "_" + suffix + ext
}
