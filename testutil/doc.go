// Package testutil provides testing utilities for citymesh.
//
// This package is intended for use in tests and benchmarks only.
// It provides synthetic LOD2 building solids with correct surface
// semantics and outward winding, OSM point-of-interest fixtures with
// realistic tag sets, and a seeded RNG for reproducible scattered scenes.
//
// # Building Fixtures
//
//	b := testutil.GableRoofBuilding("DEBW_0001", 457000, 5429000)
//	sb := testutil.Sourced(b, "tile_457_5429", 25832)
//
// # OSM Fixtures
//
//	obj := testutil.PharmacyNode(1001, 8.4037, 49.0069)
//
// # Scattered Scenes
//
//	rng := testutil.NewRNG(42)
//	bs := rng.ScatterBuildings(100, 457000, 5429000, 500)
package testutil
