package yard

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/geom"
)

// usableSpace tags the uses a part admits and scores how it connects to
// the rest of the parcel.
func usableSpace(oa OutdoorArea, frame orb.Bound, center orb.Point, cfg Config) UsableSpace {
	w, d := geom.Dims(oa.Bounds)
	minDim := math.Min(w, d)
	us := UsableSpace{Width: w, Depth: d}
	for _, rule := range cfg.Uses {
		if oa.Area >= rule.MinArea && minDim >= rule.MinDim {
			us.Uses = append(us.Uses, rule.Use)
		}
	}
	us.Accessibility = accessibility(oa, frame, center, cfg)
	return us
}

// accessibility blends two 0-10 signals: how close the part sits to the
// parcel center, and how compact its shape is. A sliver at the far
// corner of the lot scores near zero on both.
func accessibility(oa OutdoorArea, frame orb.Bound, center orb.Point, cfg Config) float64 {
	fw, fh := geom.Dims(frame)
	reach := math.Hypot(fw, fh) / 2
	distScore := 0.0
	if reach > 0 {
		dist := math.Hypot(oa.Centroid[0]-center[0], oa.Centroid[1]-center[1])
		distScore = 10 * (1 - math.Min(1, dist/reach))
	}
	shapeScore := 10 * geom.Compactness(oa.Geometry)
	w := cfg.AccessibilityDistanceWeight
	return w*distScore + (1-w)*shapeScore
}

// plantings lists the landscaping treatments a part can carry, priced
// across its full area from the per-square-foot table.
func plantings(oa OutdoorArea, cfg Config) []PlantingOption {
	minDim := geom.MinDimension(oa.Geometry)
	var out []PlantingOption
	for _, rule := range cfg.Landscaping {
		if oa.Area < rule.MinArea || minDim < rule.MinDim {
			continue
		}
		out = append(out, PlantingOption{
			Type:     rule.Type,
			CostLow:  oa.Area * rule.CostLow,
			CostHigh: oa.Area * rule.CostHigh,
		})
	}
	return out
}
