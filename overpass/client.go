package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"golang.org/x/time/rate"

	"github.com/lumogis/citymesh/osm"
)

// DefaultEndpoint is the public Overpass API interpreter.
const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

// StatusError is a non-200 response from the Overpass endpoint. The caller
// decides whether to retry; the client never does.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("overpass returned status %d: %s", e.Code, e.Body)
}

// Options configure a Client.
type Options struct {
	// Endpoint is the interpreter URL. Default: DefaultEndpoint.
	Endpoint string

	// NominatimEndpoint is the search API used by ResolveArea.
	NominatimEndpoint string

	// UserAgent identifies the pipeline to the public endpoint.
	UserAgent string

	// Interval is the minimum spacing between requests. The public
	// endpoint asks for polite pacing; default 2 s.
	Interval time.Duration

	// HTTPClient overrides the transport, e.g. for tests.
	HTTPClient *http.Client
}

// Client sends Overpass queries with polite request pacing.
type Client struct {
	endpoint   string
	nominatim  string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an Overpass client.
func NewClient(optFns ...func(*Options)) *Client {
	opts := Options{
		Endpoint:          DefaultEndpoint,
		NominatimEndpoint: DefaultNominatimEndpoint,
		UserAgent:         "citymesh/1.0 (+https://github.com/lumogis/citymesh)",
		Interval:          2 * time.Second,
		HTTPClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Client{
		endpoint:   opts.Endpoint,
		nominatim:  opts.NominatimEndpoint,
		userAgent:  opts.UserAgent,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Every(opts.Interval), 1),
	}
}

// Fetch runs a query and returns the simplified objects. Ways and relations
// use their reported center coordinate; elements without one are dropped.
func (c *Client) Fetch(ctx context.Context, query string) ([]osm.Object, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var raw struct {
		Elements []struct {
			Type   string   `json:"type"`
			ID     int64    `json:"id"`
			Lat    *float64 `json:"lat"`
			Lon    *float64 `json:"lon"`
			Center *struct {
				Lat float64 `json:"lat"`
				Lon float64 `json:"lon"`
			} `json:"center"`
			Tags map[string]string `json:"tags"`
		} `json:"elements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}

	objs := make([]osm.Object, 0, len(raw.Elements))
	for _, el := range raw.Elements {
		lat, lon := el.Lat, el.Lon
		if (lat == nil || lon == nil) && el.Center != nil {
			lat, lon = &el.Center.Lat, &el.Center.Lon
		}
		if lat == nil || lon == nil {
			continue
		}
		tags := osm.Tags(el.Tags)
		objs = append(objs, osm.Object{
			ID:            el.ID,
			Type:          osm.ElementType(el.Type),
			Lat:           *lat,
			Lon:           *lon,
			Tags:          tags,
			Accessibility: osm.ExtractAccessibility(tags),
		})
	}
	return objs, nil
}

// FilterBBox drops objects outside the bound. The public endpoint's area
// selector occasionally matches namesake places far away; the city bounding
// box removes them. Returns the kept objects and the outlier count.
func FilterBBox(objs []osm.Object, b orb.Bound) ([]osm.Object, int) {
	kept := make([]osm.Object, 0, len(objs))
	outliers := 0
	for _, o := range objs {
		if b.Contains(o.Point()) {
			kept = append(kept, o)
		} else {
			outliers++
		}
	}
	return kept, outliers
}
