// Package matcher applies the building selection policy: given an OSM
// object's representative point, rank the nearby CityJSON buildings so that
// containment beats proximity and more specific (smaller) footprints beat
// larger ones.
package matcher

import (
	"sort"

	"github.com/paulmach/orb"

	"github.com/lumogis/citymesh/crs"
	"github.com/lumogis/citymesh/geoindex"
	"github.com/lumogis/citymesh/osm"
)

// Config bounds the candidate search.
type Config struct {
	// Radius is the search radius in meters around the representative
	// point. Candidates farther from every footprint edge are excluded even
	// when nothing contains the point; an unmatched result is valid output.
	Radius float64

	// MaxCandidates caps the ranked candidate list. Zero keeps all
	// candidates within the radius.
	MaxCandidates int
}

// DefaultConfig returns the default selection policy: 25 m radius (tuned
// for dense European blocks - generous enough for entrance nodes mapped on
// the sidewalk, tight enough to avoid the building across the street).
func DefaultConfig() Config {
	return Config{Radius: 25}
}

// Candidate is one ranked building candidate.
type Candidate struct {
	ID       string  `json:"building_id"`
	Score    float64 `json:"score"`
	Distance float64 `json:"distance_m"`
	Contains bool    `json:"contains"`
	Area     float64 `json:"area_m2"`
}

// Result is the match outcome for one OSM object. Zero candidates is a
// valid, reportable outcome, not an error.
type Result struct {
	Key        string      `json:"osm_key"`
	Point      orb.Point   `json:"point"` // representative point, projected
	Candidates []Candidate `json:"candidates,omitempty"`
}

// Matched reports whether at least one candidate was found.
func (r Result) Matched() bool { return len(r.Candidates) > 0 }

// IDs returns the candidate building identifiers in rank order.
func (r Result) IDs() []string {
	ids := make([]string, len(r.Candidates))
	for i, c := range r.Candidates {
		ids[i] = c.ID
	}
	return ids
}

// Match ranks the buildings around obj. The object's representative point
// (footprint centroid when present, own coordinate otherwise) is projected
// into the index CRS and queried within cfg.Radius.
//
// Ranking: any containing building above any non-containing one; containing
// buildings among themselves by ascending footprint area (the more specific
// match wins); non-containing ones by ascending edge distance, ties by
// area. Several OSM objects may legitimately match the same building.
func Match(obj *osm.Object, proj *crs.Projection, ix *geoindex.Index, cfg Config) (Result, error) {
	rep := obj.RepresentativePoint()
	x, y := proj.ToPlanar(rep[0], rep[1])
	pt := orb.Point{x, y}

	found, err := ix.Query(pt, cfg.Radius)
	if err != nil {
		return Result{}, err
	}

	cands := make([]Candidate, 0, len(found))
	for _, f := range found {
		cands = append(cands, Candidate{
			ID:       f.ID,
			Score:    score(f, cfg.Radius),
			Distance: f.Distance,
			Contains: f.Contains,
			Area:     f.Area,
		})
	}
	sort.SliceStable(cands, func(i, j int) bool { return rankLess(cands[i], cands[j]) })

	if cfg.MaxCandidates > 0 && len(cands) > cfg.MaxCandidates {
		cands = cands[:cfg.MaxCandidates]
	}
	return Result{Key: obj.Key(), Point: pt, Candidates: cands}, nil
}

func rankLess(a, b Candidate) bool {
	if a.Contains != b.Contains {
		return a.Contains
	}
	if a.Contains {
		if a.Area != b.Area {
			return a.Area < b.Area
		}
		return a.ID < b.ID
	}
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	if a.Area != b.Area {
		return a.Area < b.Area
	}
	return a.ID < b.ID
}

// score folds containment and distance into one confidence value in (0, 1]:
// 1.0 for containment, decaying linearly to 0 at the search radius
// otherwise. Kept alongside the raw distance so downstream consumers can
// re-rank with their own policy.
func score(c geoindex.Candidate, radius float64) float64 {
	if c.Contains {
		return 1
	}
	if radius <= 0 {
		return 0
	}
	s := 1 - c.Distance/radius
	if s < 0 {
		s = 0
	}
	return s
}
