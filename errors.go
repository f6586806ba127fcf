package citymesh

import (
	"errors"
	"fmt"

	"github.com/lumogis/citymesh/export"
	"github.com/lumogis/citymesh/geoindex"
	"github.com/lumogis/citymesh/merger"
	"github.com/lumogis/citymesh/meshkit"
)

var (
	// ErrNoBuildings is returned when the tile set yields zero buildings;
	// the run cannot start.
	ErrNoBuildings = errors.New("no buildings to index")

	// ErrNoMatch marks an object with no building inside the match
	// radius. Recorded per object; never aborts a run.
	ErrNoMatch = errors.New("no matching building")
)

// GeometryError indicates an object whose geometry could not be processed:
// CRS mismatches during merge or a fully degenerate solid during meshing.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type GeometryError struct {
	Key    string
	Reason string
	cause  error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry error for %s: %s", e.Key, e.Reason)
}

func (e *GeometryError) Unwrap() error { return e.cause }

// ExportError indicates a failed artifact write.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ExportError struct {
	Name  string
	cause error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export failed for %s", e.Name)
}

func (e *ExportError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, geoindex.ErrIndexEmpty) {
		return fmt.Errorf("%w: %w", ErrNoBuildings, err)
	}
	if errors.Is(err, merger.ErrNoMatch) {
		return fmt.Errorf("%w: %w", ErrNoMatch, err)
	}

	var gm *merger.GeometryMismatchError
	if errors.As(err, &gm) {
		return &GeometryError{Key: gm.Key, Reason: gm.Reason, cause: err}
	}
	var ds *meshkit.DegenerateSolidError
	if errors.As(err, &ds) {
		return &GeometryError{Key: ds.Key, Reason: "degenerate solid", cause: err}
	}
	var we *export.WriteError
	if errors.As(err, &we) {
		return &ExportError{Name: we.Name, cause: err}
	}

	return err
}
