package geom

import (
	"fmt"
	"math"

	"github.com/engelsjk/polygol"
	"github.com/paulmach/orb"
)

// discSegments is the number of sides used to approximate the round join at
// each boundary vertex during buffering.
const discSegments = 16

// discScale circumscribes the vertex disc about the true radius so buffered
// zones never undershoot the requested distance.
var discScale = 1 / math.Cos(math.Pi/discSegments)

// Dilate expands every polygon in m outward by distance d.
//
// # Algorithm
//
// The expansion is a Minkowski-style collar: the input is unioned with one
// rectangle per boundary edge (extending d on both sides of the edge) and
// one disc per boundary vertex. Straight edges are offset exactly; vertex
// joins use a [discSegments]-sided disc circumscribing the true radius, so
// the result contains every point within d of the input.
//
// # Determinism
//
// Collar pieces are generated in ring order, so identical inputs produce
// identical outputs.
//
// Non-positive d returns a repaired copy of the input.
func Dilate(m orb.MultiPolygon, d float64) (orb.MultiPolygon, error) {
	if d <= 0 {
		return RepairMulti(m)
	}
	pieces := collarPieces(m, d)
	g, err := polygol.Union(toGeom(m), pieces...)
	if err != nil {
		return nil, fmt.Errorf("dilate: %w", err)
	}
	return fromGeom(g), nil
}

// Erode shrinks every polygon in m inward by distance d, removing all points
// within d of the boundary. Setback computation depends on two properties of
// this operation:
//
//   - a w×h rectangle erodes to exactly (w−2d)×(h−2d), so area arithmetic on
//     rectangular parcels is exact;
//   - Area(Erode(m, d2)) ≤ Area(Erode(m, d1)) whenever d2 ≥ d1.
//
// Parts that shrink to nothing disappear; a fully consumed input returns an
// empty (non-nil) multipolygon rather than an error, because a zero-area
// buildable region is a legitimate outcome callers must distinguish from
// failure. Non-positive d returns a repaired copy of the input.
func Erode(m orb.MultiPolygon, d float64) (orb.MultiPolygon, error) {
	if d <= 0 {
		return RepairMulti(m)
	}
	pieces := collarPieces(m, d)
	g, err := polygol.Difference(toGeom(m), pieces...)
	if err != nil {
		return nil, fmt.Errorf("erode: %w", err)
	}
	return fromGeom(g), nil
}

// collarPieces returns one geometry per boundary edge and vertex of m, each
// covering all points within d of that feature. The union of the pieces
// covers the full boundary collar.
func collarPieces(m orb.MultiPolygon, d float64) []polygol.Geom {
	var pieces []polygol.Geom
	for _, poly := range m {
		for _, ring := range poly {
			closed := closeRing(ring)
			if closed == nil {
				continue
			}
			for i := 0; i < len(closed)-1; i++ {
				a, b := closed[i], closed[i+1]
				if q := edgeQuad(a, b, d); q != nil {
					pieces = append(pieces, toGeom(orb.MultiPolygon{q}))
				}
				disc := RegularPolygon(a, d*discScale, discSegments)
				pieces = append(pieces, toGeom(orb.MultiPolygon{disc}))
			}
		}
	}
	return pieces
}

// edgeQuad returns a rectangle covering all points within d of segment ab,
// measured perpendicular to the segment. Returns nil for zero-length edges.
func edgeQuad(a, b orb.Point, d float64) orb.Polygon {
	dx, dy := b[0]-a[0], b[1]-a[1]
	length := math.Hypot(dx, dy)
	if length == 0 {
		return nil
	}
	// Unit normal, scaled to the offset distance.
	nx, ny := -dy/length*d, dx/length*d
	return orb.Polygon{orb.Ring{
		{a[0] + nx, a[1] + ny},
		{b[0] + nx, b[1] + ny},
		{b[0] - nx, b[1] - ny},
		{a[0] - nx, a[1] - ny},
		{a[0] + nx, a[1] + ny},
	}}
}

// DilatePolygon is [Dilate] for a single polygon.
func DilatePolygon(p orb.Polygon, d float64) (orb.MultiPolygon, error) {
	return Dilate(orb.MultiPolygon{p}, d)
}

// ErodePolygon is [Erode] for a single polygon.
func ErodePolygon(p orb.Polygon, d float64) (orb.MultiPolygon, error) {
	return Erode(orb.MultiPolygon{p}, d)
}
