// Package geom provides the planar geometry foundation for parcel analysis.
//
// All computation happens in a local planar coordinate system measured in
// feet. Geographic input (WGS84 longitude/latitude) is converted through a
// [Projection] anchored near the parcel, so areas and distances are true to
// within survey tolerance at parcel scale. Geometry values are the concrete
// types from github.com/paulmach/orb ([orb.Polygon], [orb.MultiPolygon]);
// boolean set operations are backed by the Martinez clipping implementation
// in github.com/engelsjk/polygol.
//
// # Determinism
//
// Every operation in this package is a pure function: inputs are never
// mutated, results are freshly allocated, and repeated calls with identical
// inputs produce bit-identical outputs. This property is load-bearing for
// the analysis pipeline, which caches results by input hash.
//
// # Basic usage
//
//	parcel := geom.Rect(0, 0, 80, 100)
//	inner, err := geom.Erode(orb.MultiPolygon{parcel}, 20)
//	if err != nil {
//		// parcel boundary could not be offset
//	}
//	fmt.Println(geom.Area(inner)) // 2400
package geom
