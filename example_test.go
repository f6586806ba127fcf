package citymesh_test

import (
	"context"
	"fmt"
	"log"

	citymesh "github.com/lumogis/citymesh"
	"github.com/lumogis/citymesh/blobstore"
	"github.com/lumogis/citymesh/cityjson"
	"github.com/lumogis/citymesh/codec"
	"github.com/lumogis/citymesh/crs"
	"github.com/lumogis/citymesh/osm"
	"github.com/lumogis/citymesh/testutil"
)

// scenario returns one pharmacy in Karlsruhe and the gable-roof building it
// sits in, in EPSG:25832 tile coordinates.
func scenario() ([]osm.Object, []cityjson.SourcedBuilding) {
	obj := testutil.PharmacyNode(1001, 8.404, 49.014)

	proj, err := crs.NewProjection(25832)
	if err != nil {
		log.Fatal(err)
	}
	x, y := proj.ToPlanar(obj.Lon, obj.Lat)
	building := testutil.GableRoofBuildingSized("DEBW_0001", x-5, y-4, 10, 8, 6, 9)

	return []osm.Object{obj},
		testutil.SourcedAll([]cityjson.Building{building}, "gebaeude_lod2_456_5429.json", 25832)
}

func ExampleNew() {
	objects, buildings := scenario()

	store := blobstore.NewMemoryStore()
	pipeline, err := citymesh.New(
		citymesh.WithRadius(25),
		citymesh.WithWorkers(2),
		citymesh.WithOutput(store),
	)
	if err != nil {
		log.Fatal(err)
	}

	summary, err := pipeline.Run(context.Background(), objects, buildings)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("matched=%d merged=%d meshed=%d exported=%d\n",
		summary.Matched, summary.Merged, summary.Meshed, summary.Exported)
	for _, name := range store.Names() {
		fmt.Println(name)
	}
	// Output:
	// matched=1 merged=1 meshed=1 exported=1
	// 1001.glb
	// 1001.json
	// 1001_bld.json
}

func ExampleNewBuilder() {
	objects, buildings := scenario()

	store := blobstore.NewMemoryStore()
	pipeline, err := citymesh.NewBuilder().
		Radius(50).
		Compression(codec.Zstd{}).
		SkipPointFiles().
		Output(store).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	if _, err := pipeline.Run(context.Background(), objects, buildings); err != nil {
		log.Fatal(err)
	}

	for _, name := range store.Names() {
		fmt.Println(name)
	}
	// Output:
	// 1001.glb
	// 1001_bld.json.zst
}
