package geom

import (
	"fmt"

	"github.com/engelsjk/polygol"
	"github.com/paulmach/orb"
)

// toGeom converts a multipolygon into polygol's nested-slice representation.
// Degenerate rings (fewer than three distinct vertices) are dropped; rings
// are closed if the input left them open.
func toGeom(m orb.MultiPolygon) polygol.Geom {
	g := make(polygol.Geom, 0, len(m))
	for _, poly := range m {
		rings := make([][][]float64, 0, len(poly))
		for _, ring := range poly {
			closed := closeRing(ring)
			if closed == nil {
				continue
			}
			pts := make([][]float64, len(closed))
			for i, pt := range closed {
				pts[i] = []float64{pt[0], pt[1]}
			}
			rings = append(rings, pts)
		}
		if len(rings) > 0 {
			g = append(g, rings)
		}
	}
	return g
}

// fromGeom converts a polygol result back into a multipolygon. Empty and nil
// results become an empty multipolygon, never nil.
func fromGeom(g polygol.Geom) orb.MultiPolygon {
	out := make(orb.MultiPolygon, 0, len(g))
	for _, rings := range g {
		poly := make(orb.Polygon, 0, len(rings))
		for _, pts := range rings {
			ring := make(orb.Ring, len(pts))
			for i, pt := range pts {
				ring[i] = orb.Point{pt[0], pt[1]}
			}
			poly = append(poly, ring)
		}
		if len(poly) > 0 {
			out = append(out, poly)
		}
	}
	return out
}

// Union returns the set union of a and b.
func Union(a, b orb.MultiPolygon) (orb.MultiPolygon, error) {
	g, err := polygol.Union(toGeom(a), toGeom(b))
	if err != nil {
		return nil, fmt.Errorf("union: %w", err)
	}
	return fromGeom(g), nil
}

// UnionAll returns the set union of every polygon in ps. An empty input
// yields an empty multipolygon.
func UnionAll(ps []orb.Polygon) (orb.MultiPolygon, error) {
	if len(ps) == 0 {
		return orb.MultiPolygon{}, nil
	}
	subject := toGeom(orb.MultiPolygon{ps[0]})
	rest := make([]polygol.Geom, 0, len(ps)-1)
	for _, p := range ps[1:] {
		rest = append(rest, toGeom(orb.MultiPolygon{p}))
	}
	g, err := polygol.Union(subject, rest...)
	if err != nil {
		return nil, fmt.Errorf("union: %w", err)
	}
	return fromGeom(g), nil
}

// Intersection returns the set intersection of a and b.
func Intersection(a, b orb.MultiPolygon) (orb.MultiPolygon, error) {
	g, err := polygol.Intersection(toGeom(a), toGeom(b))
	if err != nil {
		return nil, fmt.Errorf("intersection: %w", err)
	}
	return fromGeom(g), nil
}

// Difference returns a minus b.
func Difference(a, b orb.MultiPolygon) (orb.MultiPolygon, error) {
	g, err := polygol.Difference(toGeom(a), toGeom(b))
	if err != nil {
		return nil, fmt.Errorf("difference: %w", err)
	}
	return fromGeom(g), nil
}

// Repair normalizes a possibly self-intersecting polygon into a valid
// multipolygon using the zero-distance buffer trick: a set union of the
// polygon with itself resolves crossings into explicit parts. It returns
// [ErrInvalidGeometry] when no valid ring remains.
//
// Repairing an already valid polygon returns an equivalent multipolygon, so
// Repair is safe to apply unconditionally at ingestion boundaries.
func Repair(p orb.Polygon) (orb.MultiPolygon, error) {
	return RepairMulti(orb.MultiPolygon{p})
}

// RepairMulti is [Repair] for multipolygon input.
func RepairMulti(m orb.MultiPolygon) (orb.MultiPolygon, error) {
	g := toGeom(m)
	if len(g) == 0 {
		return nil, fmt.Errorf("%w: no usable ring", ErrInvalidGeometry)
	}
	out, err := polygol.Union(g)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	repaired := fromGeom(out)
	if len(repaired) == 0 || Area(repaired) <= 0 {
		return nil, fmt.Errorf("%w: repair produced no area", ErrInvalidGeometry)
	}
	return repaired, nil
}
