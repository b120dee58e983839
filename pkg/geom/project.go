package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Projection converts between WGS84 geographic coordinates (longitude,
// latitude in degrees) and the engine's local planar system (feet, origin at
// the anchor point).
//
// The forward direction projects through Web Mercator and rescales by the
// cosine of the anchor latitude, which corrects Mercator's latitude
// distortion at parcel scale. The inverse applies the exact reverse, so a
// round trip reproduces input coordinates to well within 1e-6 degrees.
type Projection struct {
	origin orb.Point // anchor in Mercator coordinates
	scale  float64   // Mercator units to feet at the anchor latitude
}

// NewProjection returns a projection anchored at the given WGS84 point.
// Parcel, obstacle, and building geometry for one analysis should all share
// one projection so their relative positions are preserved.
func NewProjection(anchor orb.Point) *Projection {
	lat := anchor[1] * math.Pi / 180
	return &Projection{
		origin: project.WGS84.ToMercator(anchor),
		scale:  math.Cos(lat) * FeetPerMeter,
	}
}

// Forward converts a WGS84 point to local feet.
func (pj *Projection) Forward(p orb.Point) orb.Point {
	m := project.WGS84.ToMercator(p)
	return orb.Point{
		(m[0] - pj.origin[0]) * pj.scale,
		(m[1] - pj.origin[1]) * pj.scale,
	}
}

// Inverse converts a local-feet point back to WGS84.
func (pj *Projection) Inverse(p orb.Point) orb.Point {
	m := orb.Point{
		p[0]/pj.scale + pj.origin[0],
		p[1]/pj.scale + pj.origin[1],
	}
	return project.Mercator.ToWGS84(m)
}

// ForwardPolygon converts every vertex of p; the input is not modified.
func (pj *Projection) ForwardPolygon(p orb.Polygon) orb.Polygon {
	return mapPolygon(p, pj.Forward)
}

// InversePolygon converts every vertex of p back to WGS84; the input is not
// modified.
func (pj *Projection) InversePolygon(p orb.Polygon) orb.Polygon {
	return mapPolygon(p, pj.Inverse)
}

// ForwardMulti converts every vertex of m; the input is not modified.
func (pj *Projection) ForwardMulti(m orb.MultiPolygon) orb.MultiPolygon {
	out := make(orb.MultiPolygon, len(m))
	for i, p := range m {
		out[i] = pj.ForwardPolygon(p)
	}
	return out
}

// InverseMulti converts every vertex of m back to WGS84; the input is not
// modified.
func (pj *Projection) InverseMulti(m orb.MultiPolygon) orb.MultiPolygon {
	out := make(orb.MultiPolygon, len(m))
	for i, p := range m {
		out[i] = pj.InversePolygon(p)
	}
	return out
}

func mapPolygon(p orb.Polygon, f func(orb.Point) orb.Point) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, ring := range p {
		r := make(orb.Ring, len(ring))
		for j, pt := range ring {
			r[j] = f(pt)
		}
		out[i] = r
	}
	return out
}

// LooksGeographic reports whether every vertex of p plausibly encodes
// longitude/latitude degrees rather than planar feet. Format detection uses
// this to decide whether projection is needed: real parcels measured in feet
// have coordinates far outside the ±180/±90 window.
func LooksGeographic(p orb.Polygon) bool {
	seen := false
	for _, ring := range p {
		for _, pt := range ring {
			seen = true
			if math.Abs(pt[0]) > 180 || math.Abs(pt[1]) > 90 {
				return false
			}
		}
	}
	return seen
}
