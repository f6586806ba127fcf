// Package overpass fetches point-of-interest objects from an Overpass API
// endpoint: a QL query builder over the pipeline's amenity, healthcare and
// public-transport selectors, and a rate-limited HTTP client. Transient
// failures surface as errors; retry policy belongs to the caller.
package overpass

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// Default selector sets. The lists lean toward accessibility-relevant
// destinations: food/civic amenities, medical practices and aids, care
// facilities, and public transport stops.
var (
	DefaultAmenities = []string{
		"restaurant", "cafe", "fast_food", "bar",
		"government", "townhall", "courthouse", "office", "library",
		"school", "university", "kindergarten", "childcare", "preschool",
		"bank", "atm", "post_office", "fuel", "parking", "taxi",
		"clinic", "hospital", "pharmacy",
		"doctors", "dentist", "physiotherapist",
		"nursing_home", "social_facility", "retirement_home",
		"assisted_living", "group_home",
	}

	DefaultHealthcare = []string{
		"doctor", "dentist", "physiotherapist", "physiotherapy",
		"rehabilitation", "psychotherapist", "psychology",
		"speech_therapist", "occupational_therapy", "hearing_aids",
		"optometrist", "orthoptist", "podiatrist", "counselling",
		"sample_collection",
	}

	DefaultMedicalShops = []string{
		"medical_supply", "mobility_scooter", "orthopaedics",
	}

	DefaultSocialFor = []string{
		"senior", "elderly", "retirement", "assisted_living",
		"disabled", "handicapped", "mental_health",
	}

	DefaultTransport = map[string][]string{
		"public_transport": {"stop_position", "platform", "station", "stop_area", "stop_area_group", "stop"},
		"highway":          {"bus_stop", "bus_station"},
		"amenity":          {"bus_station", "ferry_terminal"},
		"railway":          {"station", "halt", "stop", "tram_stop", "subway_entrance", "platform"},
	}
)

// Query assembles an Overpass QL query. The zero value is not usable; start
// from NewQuery and set exactly one search area (Overpass area ID or
// bounding box).
type Query struct {
	timeout      time.Duration
	areaID       int64
	bbox         *orb.Bound
	amenities    []string
	healthcare   []string
	medicalShops []string
	socialFor    []string
	transport    map[string][]string
}

// NewQuery returns a query with the default selector sets and a 180 s
// server-side timeout.
func NewQuery() *Query {
	return &Query{
		timeout:      180 * time.Second,
		amenities:    DefaultAmenities,
		healthcare:   DefaultHealthcare,
		medicalShops: DefaultMedicalShops,
		socialFor:    DefaultSocialFor,
		transport:    DefaultTransport,
	}
}

// InArea restricts the query to an Overpass area ID.
func (q *Query) InArea(areaID int64) *Query {
	q.areaID = areaID
	q.bbox = nil
	return q
}

// InBBox restricts the query to a WGS84 bounding box.
func (q *Query) InBBox(b orb.Bound) *Query {
	q.bbox = &b
	q.areaID = 0
	return q
}

// Amenities replaces the amenity value list.
func (q *Query) Amenities(values ...string) *Query {
	q.amenities = values
	return q
}

// Healthcare replaces the healthcare value list.
func (q *Query) Healthcare(values ...string) *Query {
	q.healthcare = values
	return q
}

// Timeout sets the server-side query timeout.
func (q *Query) Timeout(d time.Duration) *Query {
	q.timeout = d
	return q
}

// Build renders the query as Overpass QL. The output is deterministic for a
// given configuration.
func (q *Query) Build() (string, error) {
	area, err := q.areaClause()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n", int(q.timeout.Seconds()))
	b.WriteString(area)
	b.WriteString("\n(\n")

	q.tripleClause(&b, `"amenity"~%q`, valueRegex(q.amenities))
	q.tripleClause(&b, `"healthcare"~%q`, valueRegex(q.healthcare))
	q.tripleClause(&b, `"shop"~%q`, valueRegex(q.medicalShops))
	q.tripleClause(&b, `"amenity"="social_facility"]["social_facility:for"~%q`, valueRegex(q.socialFor))

	keys := make([]string, 0, len(q.transport))
	for k := range q.transport {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.tripleClause(&b, `%q~%q`, k, valueRegex(q.transport[k]))
	}

	b.WriteString(");\nout center meta;\n")
	return b.String(), nil
}

func (q *Query) areaClause() (string, error) {
	switch {
	case q.areaID != 0:
		return fmt.Sprintf("area(%d)->.searchArea;", q.areaID), nil
	case q.bbox != nil:
		// Overpass bbox order is south,west,north,east.
		return fmt.Sprintf("(%g,%g,%g,%g)->.searchArea;",
			q.bbox.Min[1], q.bbox.Min[0], q.bbox.Max[1], q.bbox.Max[0]), nil
	default:
		return "", fmt.Errorf("overpass query: no search area set")
	}
}

func (q *Query) tripleClause(b *strings.Builder, format string, args ...any) {
	selector := fmt.Sprintf(format, args...)
	for _, el := range []string{"node", "way", "relation"} {
		fmt.Fprintf(b, "  %s[%s](area.searchArea);\n", el, selector)
	}
}

// valueRegex builds the anchored alternation regex Overpass expects for a
// value list, e.g. ^(cafe|bar)$.
func valueRegex(values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		v = strings.ReplaceAll(v, `\`, `\\`)
		v = strings.ReplaceAll(v, `"`, `\"`)
		escaped[i] = v
	}
	if len(escaped) == 1 {
		return "^" + escaped[0] + "$"
	}
	return "^(" + strings.Join(escaped, "|") + ")$"
}
