package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/lumogis/citymesh/osm"
	"github.com/lumogis/citymesh/overpass"
)

func newFetchCmd() *cobra.Command {
	var (
		place     string
		bbox      string
		out       string
		amenities []string
		clip      bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch points of interest from the Overpass API",
		Long: `Fetches amenity, healthcare and public transport objects for a named
place (resolved via Nominatim) or an explicit bounding box, and writes them
as a JSON array consumable by the convert and merge commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			objs, err := fetchObjects(cmd, place, bbox, amenities, clip)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(objs, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %d objects to %s\n", len(objs), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&place, "place", "", "place name to resolve via Nominatim (e.g. \"Karlsruhe\")")
	cmd.Flags().StringVar(&bbox, "bbox", "", "bounding box as south,west,north,east")
	cmd.Flags().StringVarP(&out, "out", "o", "pois.json", "output file")
	cmd.Flags().StringSliceVar(&amenities, "amenities", nil, "amenity values to fetch (default: built-in list)")
	cmd.Flags().BoolVar(&clip, "clip", true, "drop objects outside the requested area")
	return cmd
}

// fetchObjects resolves the requested area, runs the Overpass query and
// optionally clips the result to the area's bounding box.
func fetchObjects(cmd *cobra.Command, place, bbox string, amenities []string, clip bool) ([]osm.Object, error) {
	if (place == "") == (bbox == "") {
		return nil, fmt.Errorf("exactly one of --place or --bbox is required")
	}

	client := overpass.NewClient()
	query := overpass.NewQuery()
	if len(amenities) > 0 {
		query = query.Amenities(amenities...)
	}

	var bound orb.Bound
	ctx := cmd.Context()

	if place != "" {
		area, err := client.ResolveArea(ctx, place)
		if err != nil {
			return nil, err
		}
		if area.ID != 0 {
			query = query.InArea(area.ID)
		} else {
			query = query.InBBox(area.BBox)
		}
		bound = area.BBox
	} else {
		b, err := parseBBox(bbox)
		if err != nil {
			return nil, err
		}
		query = query.InBBox(b)
		bound = b
	}

	ql, err := query.Build()
	if err != nil {
		return nil, err
	}
	objs, err := client.Fetch(ctx, ql)
	if err != nil {
		return nil, err
	}

	if clip {
		kept, outliers := overpass.FilterBBox(objs, bound)
		if outliers > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "dropped %d objects outside the requested area\n", outliers)
		}
		objs = kept
	}
	return objs, nil
}

// parseBBox parses "south,west,north,east" into an orb bound.
func parseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("bbox must be south,west,north,east, got %q", s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bbox component %q: %w", p, err)
		}
		vals[i] = v
	}
	south, west, north, east := vals[0], vals[1], vals[2], vals[3]
	if south >= north || west >= east {
		return orb.Bound{}, fmt.Errorf("bbox %q is empty", s)
	}
	return orb.Bound{Min: orb.Point{west, south}, Max: orb.Point{east, north}}, nil
}
