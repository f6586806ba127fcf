package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumogis/citymesh/convert"
	"github.com/lumogis/citymesh/osm"
)

func newConvertCmd() *cobra.Command {
	var (
		out     string
		subsets bool
	)

	cmd := &cobra.Command{
		Use:   "convert <pois.json>",
		Short: "Convert fetched objects to GeoJSON for inspection",
		Long: `Converts a fetched object file into a GeoJSON FeatureCollection for QGIS
or web map inspection. With --subsets, additionally writes the wheelchair
accessible / not accessible partitions next to the main file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			objs, dropped, err := osm.Decode(f)
			if err != nil {
				return err
			}
			if dropped > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d objects without coordinates\n", dropped)
			}

			write := func(name string, objs []osm.Object) error {
				data, err := convert.Marshal(convert.ToGeoJSON(objs))
				if err != nil {
					return err
				}
				if err := os.WriteFile(name, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d features to %s\n", len(objs), name)
				return nil
			}

			if err := write(out, objs); err != nil {
				return err
			}
			if subsets {
				parts := convert.WheelchairSubsets(objs)
				if err := write(convert.SubsetName(out, "acc_yes"), parts.Accessible); err != nil {
					return err
				}
				if err := write(convert.SubsetName(out, "acc_no"), parts.NotAccessible); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "pois.geojson", "output GeoJSON file")
	cmd.Flags().BoolVar(&subsets, "subsets", false, "also write wheelchair accessibility subsets")
	return cmd
}
