package setback

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/geom"
	"github.com/landsight/parcelfit/pkg/rules"
)

// SetbackSet holds the required yard depths in feet. A nil direction is
// unconstrained.
type SetbackSet struct {
	Front      *float64
	Rear       *float64
	Side       *float64
	CornerSide *float64
}

// Max returns the largest required depth, or 0 when no direction is
// constrained.
func (s SetbackSet) Max() float64 {
	var d float64
	for _, v := range []*float64{s.Front, s.Rear, s.Side, s.CornerSide} {
		if v != nil && *v > d {
			d = *v
		}
	}
	return d
}

// Any reports whether at least one direction is constrained.
func (s SetbackSet) Any() bool {
	return s.Front != nil || s.Rear != nil || s.Side != nil || s.CornerSide != nil
}

// FromRules converts parsed ordinance setbacks into a SetbackSet. Directions
// the ordinance does not name inherit the general distance when one exists.
func FromRules(r rules.SetbackRules) SetbackSet {
	pick := func(v *float64) *float64 {
		if v != nil {
			return v
		}
		return r.General
	}
	return SetbackSet{
		Front:      pick(r.Front),
		Rear:       pick(r.Rear),
		Side:       pick(r.Side),
		CornerSide: r.CornerSide,
	}
}

// Result is the buildable-area outcome. Emptiness is a state, not an error:
// check [Result.Empty] before treating the region as usable.
type Result struct {
	// Buildable is the remaining region, possibly several disjoint parts.
	Buildable orb.MultiPolygon

	// Area is the total area in square feet.
	Area float64

	// PartAreas holds the area of each part of Buildable, same order.
	PartAreas []float64

	// LargestPart is the biggest contiguous part, the zero polygon when
	// nothing remains.
	LargestPart orb.Polygon

	// Setback is the uniform inward distance that was applied, in feet.
	Setback float64
}

// Empty reports whether no buildable area remains.
func (r Result) Empty() bool { return len(r.Buildable) == 0 || r.Area <= 0 }

// BuildableArea erodes the parcel by the largest setback in s and subtracts
// the union of existing building footprints.
//
// The parcel is repaired first, so self-intersecting survey rings are
// accepted. An unbuildable parcel yields an empty Result and a nil error;
// only invalid input geometry is an error.
func BuildableArea(parcel orb.Polygon, s SetbackSet, existing []orb.Polygon) (Result, error) {
	core, err := geom.Repair(parcel)
	if err != nil {
		return Result{}, fmt.Errorf("buildable area: %w", err)
	}

	d := s.Max()
	if d > 0 {
		core, err = geom.Erode(core, d)
		if err != nil {
			return Result{}, fmt.Errorf("buildable area: erode by %g ft: %w", d, err)
		}
	}

	if len(core) > 0 && len(existing) > 0 {
		footprints, err := geom.UnionAll(existing)
		if err != nil {
			return Result{}, fmt.Errorf("buildable area: union existing footprints: %w", err)
		}
		core, err = geom.Difference(core, footprints)
		if err != nil {
			return Result{}, fmt.Errorf("buildable area: subtract footprints: %w", err)
		}
	}

	return newResult(core, d), nil
}

func newResult(m orb.MultiPolygon, setback float64) Result {
	res := Result{Buildable: m, Setback: setback}
	if len(m) == 0 {
		return res
	}
	res.PartAreas = make([]float64, len(m))
	for i, p := range m {
		a := geom.Area(p)
		res.PartAreas[i] = a
		res.Area += a
	}
	res.LargestPart, _ = geom.LargestPart(m)
	return res
}
