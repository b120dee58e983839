package setback

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/geom"
)

// Direction names the parcel edge a setback protects. The frame convention
// is frontage along the minimum-y edge: front is south, rear is north, and
// both east and west yards report as side.
type Direction string

const (
	DirectionFront Direction = "front"
	DirectionRear  Direction = "rear"
	DirectionSide  Direction = "side"
)

// Violation is footprint area that escaped the buildable region, attributed
// to the direction of its escape.
type Violation struct {
	Direction Direction
	Area      float64
}

// ComplianceResult reports whether a footprint stays inside the buildable
// region.
type ComplianceResult struct {
	Compliant     bool
	ViolationArea float64

	// Violations lists per-direction overflow in fixed front, rear, side
	// order, omitting directions with no overflow.
	Violations []Violation
}

// Compliance checks that building is fully contained in buildable.
// Containment is boundary inclusive: a footprint that exactly fills the
// buildable region complies.
//
// When the footprint overflows, each escaped part is attributed to the
// parcel edge it is displaced toward, measured from the parcel's bounding
// box center. A part pushed mostly north reports rear, mostly south front,
// and otherwise side.
func Compliance(building orb.Polygon, buildable orb.MultiPolygon, parcel orb.Polygon) (ComplianceResult, error) {
	if geom.ContainsPolygon(buildable, building) {
		return ComplianceResult{Compliant: true}, nil
	}

	violation := orb.MultiPolygon{building}
	if len(buildable) > 0 {
		var err error
		violation, err = geom.Difference(violation, buildable)
		if err != nil {
			return ComplianceResult{}, fmt.Errorf("compliance: %w", err)
		}
	}

	frame := parcel.Bound()
	perDirection := make(map[Direction]float64, 3)
	var total float64
	for _, part := range violation {
		a := geom.Area(part)
		if a <= 0 {
			continue
		}
		perDirection[classify(part, frame)] += a
		total += a
	}

	res := ComplianceResult{Compliant: total == 0, ViolationArea: total}
	for _, d := range []Direction{DirectionFront, DirectionRear, DirectionSide} {
		if a := perDirection[d]; a > 0 {
			res.Violations = append(res.Violations, Violation{Direction: d, Area: a})
		}
	}
	return res, nil
}

// classify picks the dominant displacement axis of a violation part within
// the parcel frame. Ties go to the front/rear axis.
func classify(part orb.Polygon, frame orb.Bound) Direction {
	c := geom.Centroid(part)
	w, h := geom.Dims(frame)

	var nx, ny float64
	if w > 0 {
		nx = (c[0] - (frame.Min[0]+frame.Max[0])/2) / (w / 2)
	}
	if h > 0 {
		ny = (c[1] - (frame.Min[1]+frame.Max[1])/2) / (h / 2)
	}

	if math.Abs(nx) > math.Abs(ny) {
		return DirectionSide
	}
	if ny < 0 {
		return DirectionFront
	}
	return DirectionRear
}
