// Package pkg provides the core libraries for parcel development feasibility.
//
// # Overview
//
// Parcelfit answers one question about a land parcel: how much of it can
// legally be built on, and where. The pkg directory is organized into
// three main areas:
//
//  1. Engines - the planar-geometry analyses (setback, obstacle, yard,
//     placement, zoning, rules)
//  2. Kernel - shared geometry math and ingestion ([geom], [geom/adapt])
//  3. Infrastructure - caching, errors, observability, orchestration,
//     rendering
//
// # Architecture
//
// The typical data flow through an analysis:
//
//	Raw parcel geometry (GeoJSON / ArcGIS rings / bare rings)
//	         ↓
//	    [geom/adapt] package (normalize, repair, project to local feet)
//	         ↓
//	    [setback] package (erode by setbacks, subtract structures)
//	         ↓
//	    [obstacle] package (buffer constraints, carve the developable area)
//	         ↓
//	    [placement] / [yard] packages (fit buildings, grade open space)
//	         ↓
//	    [zoning] package (review the proposal against district rules)
//	         ↓
//	    Feasibility report (JSON / SVG site plan)
//
// The [rules] package feeds the flow from the side: it extracts
// structured zoning parameters from ordinance prose, which stand in for
// district rules wherever none are configured.
//
// # Quick Start
//
// Compute a buildable area and test-fit a building:
//
//	import (
//	    "context"
//	    "github.com/landsight/parcelfit/pkg/geom"
//	    "github.com/landsight/parcelfit/pkg/placement"
//	    "github.com/landsight/parcelfit/pkg/setback"
//	)
//
//	// 1. An 80x100 ft parcel with a uniform 20 ft setback
//	parcel := geom.Rect(0, 0, 80, 100)
//	d := 20.0
//	sb := setback.SetbackSet{Front: &d, Rear: &d, Side: &d}
//
//	// 2. Erode the parcel
//	res, _ := setback.BuildableArea(parcel, sb, nil)
//	fmt.Println(res.Area) // 2400
//
//	// 3. Search placements for a 30x20 ft building
//	fit, _ := placement.TestFit(context.Background(), parcel,
//	    placement.Spec{Width: 30, Depth: 20}, sb, nil, placement.Options{})
//	fmt.Println(fit.Fits, fit.Recommended.Position)
//
// Hosts that want caching and the full report go through
// [feasibility.Runner] instead of calling the engines directly.
//
// # Main Packages
//
// ## Geometry Kernel
//
// [geom] - Planar polygon math in local feet: boolean set operations,
// inward/outward buffering, area and distance measures, and the
// WGS84-to-local projection every engine shares.
//
// [geom/adapt] - The ingestion boundary. Detects and decodes GeoJSON,
// ArcGIS rings, and bare coordinate arrays, repairs invalid polygons,
// and converts geographic coordinates to the internal frame.
//
// ## Engines
//
// [rules] - Pattern extraction of zoning parameters (setbacks, height,
// coverage, FAR, density, parking, use lists) from ordinance text, with
// cross-field consistency validation.
//
// [setback] - The legally buildable sub-polygon of a parcel: setback
// erosion, existing-structure subtraction, and per-direction
// containment compliance.
//
// [obstacle] - Constraint zones: obstacles buffered by category,
// unioned by severity, subtracted from the parcel, scored for
// feasibility and fragmentation.
//
// [yard] - Outdoor-space analysis: backyard classification, usable
// space and accessibility, privacy grading, and landscaping options.
//
// [placement] - The grid-search placement optimizer: single buildings,
// two-building layouts, and building-size optimization under a
// multi-objective score.
//
// [zoning] - The pure compliance evaluator: eight fixed checks against
// a district rule set with a per-check verdict and an aggregate score.
//
// ## Infrastructure
//
// [feasibility] - Orchestration of the complete analysis with caching,
// used by the CLI and any API host. Produces the sectioned report.
//
// [cache] - Cache interface with file, Redis, and null backends, plus
// per-stage key derivation. Engines never cache; only the boundary does.
//
// [render/siteplan] - SVG and JSON site-plan sinks over a report.
//
// [errors] - The module-wide error taxonomy and input validation.
//
// [observability] - Optional analysis/cache/search hooks for metrics.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/placement/...    # Specific package
//	go test -run Example           # Examples only
//
// [geom]: https://pkg.go.dev/github.com/landsight/parcelfit/pkg/geom
// [geom/adapt]: https://pkg.go.dev/github.com/landsight/parcelfit/pkg/geom/adapt
// [rules]: https://pkg.go.dev/github.com/landsight/parcelfit/pkg/rules
// [setback]: https://pkg.go.dev/github.com/landsight/parcelfit/pkg/setback
// [obstacle]: https://pkg.go.dev/github.com/landsight/parcelfit/pkg/obstacle
// [yard]: https://pkg.go.dev/github.com/landsight/parcelfit/pkg/yard
// [placement]: https://pkg.go.dev/github.com/landsight/parcelfit/pkg/placement
// [zoning]: https://pkg.go.dev/github.com/landsight/parcelfit/pkg/zoning
// [feasibility]: https://pkg.go.dev/github.com/landsight/parcelfit/pkg/feasibility
// [feasibility.Runner]: https://pkg.go.dev/github.com/landsight/parcelfit/pkg/feasibility#Runner
// [cache]: https://pkg.go.dev/github.com/landsight/parcelfit/pkg/cache
// [render/siteplan]: https://pkg.go.dev/github.com/landsight/parcelfit/pkg/render/siteplan
// [errors]: https://pkg.go.dev/github.com/landsight/parcelfit/pkg/errors
// [observability]: https://pkg.go.dev/github.com/landsight/parcelfit/pkg/observability
package pkg
