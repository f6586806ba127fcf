// Command citymesh runs the OSM/CityJSON merge pipeline from the shell:
// fetching point-of-interest objects, converting them for inspection,
// merging them with LOD2 building tiles and meshing single records.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	citymesh "github.com/lumogis/citymesh"
)

var (
	flagVerbose bool
	flagJSONLog bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "citymesh",
		Short:         "Merge OSM points of interest with CityJSON LOD2 buildings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSONLog, "json-log", false, "log as JSON instead of text")

	rootCmd.AddCommand(
		newFetchCmd(),
		newConvertCmd(),
		newMergeCmd(),
		newMeshCmd(),
		newRunCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("citymesh failed", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the pipeline logger from the global flags.
func newLogger() *citymesh.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	if flagJSONLog {
		return citymesh.NewJSONLogger(level)
	}
	return citymesh.NewTextLogger(level)
}
