package geom

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
)

var (
	// ErrInvalidGeometry is returned when a polygon cannot be interpreted or
	// repaired into a valid simple polygon. Callers should treat the input as
	// unusable and surface the failure rather than continue with partial
	// geometry.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrEmptyGeometry is returned by constructors that require at least one
	// non-degenerate ring.
	ErrEmptyGeometry = errors.New("empty geometry")
)

// Unit conversion constants. The engine computes in feet; geographic inputs
// are converted on ingestion by [Projection].
const (
	// FeetPerMeter converts projected meters to feet.
	FeetPerMeter = 3.280839895013123

	// SquareFeetPerAcre converts parcel areas to acres for density checks.
	SquareFeetPerAcre = 43560.0
)

// Rect returns a closed rectangular polygon with its lower-left corner at
// (x, y) and the given width and height. Vertices wind counterclockwise.
func Rect(x, y, width, height float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{x, y},
		{x + width, y},
		{x + width, y + height},
		{x, y + height},
		{x, y},
	}}
}

// RectCentered returns a rectangle of the given dimensions centered on c.
func RectCentered(c orb.Point, width, height float64) orb.Polygon {
	return Rect(c[0]-width/2, c[1]-height/2, width, height)
}

// RegularPolygon returns a closed n-sided polygon approximating a circle of
// the given radius around center. The first vertex lies on the positive x
// axis; vertices wind counterclockwise. n values below 3 are raised to 3.
func RegularPolygon(center orb.Point, radius float64, n int) orb.Polygon {
	if n < 3 {
		n = 3
	}
	ring := make(orb.Ring, 0, n+1)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		ring = append(ring, orb.Point{
			center[0] + radius*math.Cos(a),
			center[1] + radius*math.Sin(a),
		})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// Translate returns a copy of p shifted by (dx, dy). The input polygon is
// never modified; every call allocates a fresh ring set so candidate
// placements can be kept without aliasing.
func Translate(p orb.Polygon, dx, dy float64) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, ring := range p {
		r := make(orb.Ring, len(ring))
		for j, pt := range ring {
			r[j] = orb.Point{pt[0] + dx, pt[1] + dy}
		}
		out[i] = r
	}
	return out
}

// ClonePolygon returns a deep copy of p.
func ClonePolygon(p orb.Polygon) orb.Polygon {
	return Translate(p, 0, 0)
}

// CloneMulti returns a deep copy of m.
func CloneMulti(m orb.MultiPolygon) orb.MultiPolygon {
	out := make(orb.MultiPolygon, len(m))
	for i, p := range m {
		out[i] = ClonePolygon(p)
	}
	return out
}

// Parts splits a multipolygon into its component polygons. The returned
// slice shares no storage with m.
func Parts(m orb.MultiPolygon) []orb.Polygon {
	out := make([]orb.Polygon, len(m))
	for i, p := range m {
		out[i] = ClonePolygon(p)
	}
	return out
}

// closeRing ensures the ring's last vertex equals its first. Returns nil for
// rings with fewer than three distinct vertices.
func closeRing(r orb.Ring) orb.Ring {
	if len(r) < 3 {
		return nil
	}
	out := make(orb.Ring, len(r), len(r)+1)
	copy(out, r)
	if out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	if len(out) < 4 {
		return nil
	}
	return out
}
