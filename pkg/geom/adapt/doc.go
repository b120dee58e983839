// Package adapt converts heterogeneous raw geometry encodings into the
// engine's internal polygon representation.
//
// Three encodings are recognized:
//
//   - GeoJSON: Polygon, MultiPolygon, Feature, or FeatureCollection
//     documents (RFC 7946), decoded via orb/geojson. Coordinates are
//     longitude/latitude degrees per RFC 7946.
//   - ArcGIS: {"rings": [...]} documents with an optional spatialReference.
//   - Rings: bare coordinate arrays, either a single ring or a ring list
//     where the first ring is the shell and the rest are holes.
//
// [Detect] sniffs the encoding; [ToPolygon] decodes, projects geographic
// coordinates into the local planar frame (feet), and repairs invalid rings
// with the zero-distance buffer trick. Inputs that cannot be repaired fail
// with [geom.ErrInvalidGeometry]. [ToGeoJSON] is the outward direction:
// every geometry handed back to a caller crosses through it so external
// consumers always see WGS84.
package adapt
