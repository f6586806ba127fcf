package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/paulmach/orb"
)

// DefaultNominatimEndpoint is the public Nominatim search API.
const DefaultNominatimEndpoint = "https://nominatim.openstreetmap.org/search"

// Area is a resolved search area: the Overpass area ID derived from the
// place's OSM object, plus its bounding box for outlier filtering. ID is
// zero when the place resolved to a node; use the bounding box then.
type Area struct {
	ID   int64
	BBox orb.Bound
}

// ResolveArea resolves a place string ("Karlsruhe,Germany") to a search
// area via Nominatim. The full string including the country is passed
// through so namesake places elsewhere are ranked out.
func (c *Client) ResolveArea(ctx context.Context, place string) (Area, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Area{}, err
	}

	q := url.Values{
		"q":      {place},
		"format": {"json"},
		"limit":  {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.nominatim+"?"+q.Encode(), nil)
	if err != nil {
		return Area{}, fmt.Errorf("nominatim request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Area{}, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Area{}, &StatusError{Code: resp.StatusCode, Body: "nominatim"}
	}

	var results []struct {
		OSMType string    `json:"osm_type"`
		OSMID   int64     `json:"osm_id"`
		BBox    [4]string `json:"boundingbox"` // south, north, west, east
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Area{}, fmt.Errorf("decode nominatim response: %w", err)
	}
	if len(results) == 0 {
		return Area{}, fmt.Errorf("nominatim: no result for %q", place)
	}
	res := results[0]

	var bbox [4]float64
	for i, s := range res.BBox {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Area{}, fmt.Errorf("nominatim: bad bounding box value %q", s)
		}
		bbox[i] = v
	}
	area := Area{
		BBox: orb.Bound{
			Min: orb.Point{bbox[2], bbox[0]},
			Max: orb.Point{bbox[3], bbox[1]},
		},
	}

	switch res.OSMType {
	case "relation":
		area.ID = 3600000000 + res.OSMID
	case "way":
		area.ID = 2400000000 + res.OSMID
	case "node":
		// Place nodes have no enclosing area; callers fall back to the bbox.
	default:
		return Area{}, fmt.Errorf("nominatim: unsupported osm_type %q", res.OSMType)
	}
	return area, nil
}
