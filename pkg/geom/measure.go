package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// containsAreaTol is the residual area (in square feet) below which a
// clipping difference is treated as empty. Containment checks are
// boundary-inclusive: a footprint coinciding exactly with its container
// leaves at most this much floating-point residue.
const containsAreaTol = 1e-6

// boundTol absorbs floating-point noise in bounding-box comparisons.
const boundTol = 1e-9

// Area returns the absolute planar area of g in square feet.
func Area(g orb.Geometry) float64 {
	if g == nil {
		return 0
	}
	return math.Abs(planar.Area(g))
}

// Perimeter returns the total boundary length of p, including hole rings.
func Perimeter(p orb.Polygon) float64 {
	var total float64
	for _, ring := range p {
		closed := closeRing(ring)
		if closed == nil {
			continue
		}
		for i := 0; i < len(closed)-1; i++ {
			total += planar.Distance(closed[i], closed[i+1])
		}
	}
	return total
}

// Centroid returns the area-weighted centroid of g.
func Centroid(g orb.Geometry) orb.Point {
	c, _ := planar.CentroidArea(g)
	return c
}

// Dims returns the width and height of a bounding box.
func Dims(b orb.Bound) (width, height float64) {
	return b.Max[0] - b.Min[0], b.Max[1] - b.Min[1]
}

// MinDimension returns the smaller bounding-box dimension of p. Usable-space
// classification uses this as the narrow-axis measure of an outdoor area.
func MinDimension(p orb.Polygon) float64 {
	w, h := Dims(p.Bound())
	return math.Min(w, h)
}

// Compactness returns the isoperimetric ratio 4πA/P² of p, clamped to
// [0, 1]. A disc scores 1; long slivers approach 0.
func Compactness(p orb.Polygon) float64 {
	perim := Perimeter(p)
	if perim == 0 {
		return 0
	}
	c := 4 * math.Pi * Area(p) / (perim * perim)
	return math.Min(1, math.Max(0, c))
}

// LargestPart returns the largest polygon in m by area along with that area.
// Ties resolve to the earliest part so repeated calls agree. An empty input
// returns a nil polygon and zero area.
func LargestPart(m orb.MultiPolygon) (orb.Polygon, float64) {
	var best orb.Polygon
	bestArea := 0.0
	for _, p := range m {
		if a := Area(p); a > bestArea {
			best, bestArea = p, a
		}
	}
	return best, bestArea
}

// ContainsPoint reports whether pt lies inside (or on the boundary of) m.
func ContainsPoint(m orb.MultiPolygon, pt orb.Point) bool {
	return planar.MultiPolygonContains(m, pt)
}

// ContainsPolygon reports whether p lies entirely inside container. The check
// is boundary-inclusive: a footprint that exactly coincides with the
// container counts as contained.
//
// # Algorithm
//
// A bounding-box comparison rejects candidates that extend past the
// container. Survivors are verified exactly by clipping: p is contained if
// and only if p − container has no residual area.
func ContainsPolygon(container orb.MultiPolygon, p orb.Polygon) bool {
	if len(container) == 0 || len(p) == 0 {
		return false
	}
	cb, pb := container.Bound(), p.Bound()
	if pb.Min[0] < cb.Min[0]-boundTol || pb.Min[1] < cb.Min[1]-boundTol ||
		pb.Max[0] > cb.Max[0]+boundTol || pb.Max[1] > cb.Max[1]+boundTol {
		return false
	}
	outside, err := Difference(orb.MultiPolygon{p}, container)
	if err != nil {
		return false
	}
	return Area(outside) <= containsAreaTol
}

// MinDistance returns the minimum distance between the boundaries of a and
// b, or 0 when they overlap. Placement search uses this for clearance to
// existing structures.
func MinDistance(a, b orb.Polygon) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}
	ab, bb := a.Bound(), b.Bound()
	if boundsOverlap(ab, bb) {
		inter, err := Intersection(orb.MultiPolygon{a}, orb.MultiPolygon{b})
		if err == nil && Area(inter) > containsAreaTol {
			return 0
		}
	}
	d := ringSetDistance(a, b)
	if d2 := ringSetDistance(b, a); d2 < d {
		d = d2
	}
	return d
}

// DistanceToBoundary returns the distance from pt to the nearest boundary
// segment of p, regardless of whether pt is inside.
func DistanceToBoundary(pt orb.Point, p orb.Polygon) float64 {
	best := math.Inf(1)
	for _, ring := range p {
		closed := closeRing(ring)
		if closed == nil {
			continue
		}
		for i := 0; i < len(closed)-1; i++ {
			if d := pointSegmentDistance(pt, closed[i], closed[i+1]); d < best {
				best = d
			}
		}
	}
	return best
}

func boundsOverlap(a, b orb.Bound) bool {
	return a.Min[0] <= b.Max[0]+boundTol && b.Min[0] <= a.Max[0]+boundTol &&
		a.Min[1] <= b.Max[1]+boundTol && b.Min[1] <= a.Max[1]+boundTol
}

// ringSetDistance returns the minimum distance from any vertex of a to any
// boundary segment of b.
func ringSetDistance(a, b orb.Polygon) float64 {
	best := math.Inf(1)
	for _, ring := range a {
		for _, pt := range ring {
			if d := DistanceToBoundary(pt, b); d < best {
				best = d
			}
		}
	}
	return best
}

// pointSegmentDistance returns the distance from p to segment ab.
func pointSegmentDistance(p, a, b orb.Point) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return planar.Distance(p, a)
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return planar.Distance(p, orb.Point{a[0] + t*dx, a[1] + t*dy})
}
