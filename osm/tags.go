package osm

import "sort"

// Tags is an OSM key/value mapping. Insertion order is irrelevant; all
// iteration that reaches an output file goes through SortedKeys so encoded
// results are deterministic.
type Tags map[string]string

// Has reports whether the key is present.
func (t Tags) Has(key string) bool {
	_, ok := t[key]
	return ok
}

// SortedKeys returns the tag keys in lexicographic order.
func (t Tags) SortedKeys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy of the mapping.
func (t Tags) Clone() Tags {
	if t == nil {
		return nil
	}
	out := make(Tags, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// accessibilityKeys are the tag keys surfaced into the dedicated
// accessibility field so consumers don't have to inspect raw tags.
var accessibilityKeys = []string{
	"wheelchair",
	"accessibility",
	"elevator",
	"toilets:wheelchair",
	"wheelchair_toilet",
	"wheelchair:description",
	"step_free",
	"ramp",
	"ramp:wheelchair",
}

// ExtractAccessibility pulls the known accessibility flags out of a tag set.
// The returned mapping is empty (never nil) when none are present.
func ExtractAccessibility(tags Tags) Tags {
	acc := Tags{}
	for _, k := range accessibilityKeys {
		if v, ok := tags[k]; ok {
			acc[k] = v
		}
	}
	return acc
}

// wheelchairYes are wheelchair tag values treated as accessible. "limited"
// counts: partially accessible entrances are still usable destinations.
var wheelchairYes = map[string]bool{
	"yes": true, "true": true, "1": true, "designated": true, "limited": true,
}

// WheelchairAccessible reports whether the tags mark the object as
// wheelchair accessible.
func (t Tags) WheelchairAccessible() bool {
	return wheelchairYes[t["wheelchair"]]
}
