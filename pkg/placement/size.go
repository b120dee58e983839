package placement

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/geom"
	"github.com/landsight/parcelfit/pkg/setback"
)

// SizeRatios are the aspect ratios OptimizeSize tries, width over depth.
var SizeRatios = [5]float64{1.0, 1.25, 1.5, 1.75, 2.0}

const (
	// sizeTolerance ends the setback search when the core area is within
	// 1% of the target, and the scale search at the matching precision.
	sizeTolerance = 0.01

	// sizeIterations bounds each binary search.
	sizeIterations = 40
)

// SizeResult reports the footprint OptimizeSize settled on.
type SizeResult struct {
	Fits bool

	// Setback is the uniform erosion distance whose core area best
	// matches the target; it never drops below the legal setbacks.
	Setback  float64
	Core     orb.MultiPolygon
	CoreArea float64

	Width     float64 // feet
	Depth     float64 // feet
	Area      float64 // square feet
	Ratio     float64 // width over depth
	Footprint orb.Polygon

	// Score is efficiency (area over target) times shape (depth over
	// width), so a full-size square wins whenever it fits.
	Score  float64
	Advice []string
}

// OptimizeSize finds building dimensions for a target footprint area.
// It binary-searches a uniform setback distance, never below the legal
// setbacks, until the eroded core area matches the target, then tries
// five aspect ratios centered on the core and keeps the best contained
// rectangle.
func OptimizeSize(parcel orb.Polygon, targetArea float64, setbacks setback.SetbackSet) (SizeResult, error) {
	if targetArea <= 0 {
		return SizeResult{}, fmt.Errorf("placement: target area must be positive, got %g", targetArea)
	}
	region, err := geom.Repair(parcel)
	if err != nil {
		return SizeResult{}, fmt.Errorf("placement: %w", err)
	}

	coreAt := func(dist float64) (orb.MultiPolygon, float64, error) {
		if dist <= 0 {
			return region, geom.Area(region), nil
		}
		core, err := geom.Erode(region, dist)
		if err != nil {
			return nil, 0, fmt.Errorf("placement: erode: %w", err)
		}
		return core, geom.Area(core), nil
	}

	lo := setbacks.Max()
	w, h := geom.Dims(region.Bound())
	hi := math.Min(w, h) / 2

	core, area, err := coreAt(lo)
	if err != nil {
		return SizeResult{}, err
	}
	res := SizeResult{Setback: lo, Core: core, CoreArea: area}

	// Push the setback out until the core shrinks to the target. When
	// the legal floor already leaves less than the target, the floor
	// core is the best achievable.
	if area > targetArea*(1+sizeTolerance) && hi > lo {
		for i := 0; i < sizeIterations; i++ {
			mid := (lo + hi) / 2
			core, area, err = coreAt(mid)
			if err != nil {
				return SizeResult{}, err
			}
			if math.Abs(area-targetArea) <= targetArea*sizeTolerance {
				res.Setback, res.Core, res.CoreArea = mid, core, area
				break
			}
			if area > targetArea {
				lo = mid
				res.Setback, res.Core, res.CoreArea = mid, core, area
			} else {
				hi = mid
			}
		}
	}

	if res.CoreArea <= 0 {
		res.Advice = []string{"setbacks leave no room for any footprint; request a variance"}
		return res, nil
	}

	center := geom.Centroid(res.Core)
	for _, ratio := range SizeRatios {
		fullW := math.Sqrt(targetArea * ratio)
		fullD := math.Sqrt(targetArea / ratio)
		scale := largestScale(res.Core, center, fullW, fullD)
		if scale <= 0 {
			continue
		}
		rw, rd := fullW*scale, fullD*scale
		score := (rw * rd / targetArea) * (rd / rw)
		if score > res.Score {
			res.Fits = true
			res.Width, res.Depth = rw, rd
			res.Area = rw * rd
			res.Ratio = ratio
			res.Footprint = geom.RectCentered(center, rw, rd)
			res.Score = score
		}
	}

	if !res.Fits {
		res.Advice = []string{"no rectangle near the target area fits the core; lower the target or request a variance"}
	} else if res.Area < targetArea*(1-sizeTolerance) {
		res.Advice = []string{fmt.Sprintf("only %.0f of the targeted %.0f sq ft fits within setbacks", res.Area, targetArea)}
	}
	return res, nil
}

// largestScale binary-searches the biggest centered copy of a full-size
// rectangle that stays inside the core, as a fraction of full size.
func largestScale(core orb.MultiPolygon, center orb.Point, w, d float64) float64 {
	if geom.ContainsPolygon(core, geom.RectCentered(center, w, d)) {
		return 1
	}
	lo, hi := 0.0, 1.0
	for i := 0; i < sizeIterations && hi-lo > sizeTolerance/2; i++ {
		mid := (lo + hi) / 2
		if geom.ContainsPolygon(core, geom.RectCentered(center, mid*w, mid*d)) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}
