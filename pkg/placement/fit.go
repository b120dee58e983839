package placement

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/geom"
	"github.com/landsight/parcelfit/pkg/observability"
	"github.com/landsight/parcelfit/pkg/setback"
)

const gridTol = 1e-9

// TestFit reports whether the building described by spec fits the
// parcel's developable area, and every grid translation where it does.
func TestFit(ctx context.Context, parcel orb.Polygon, spec Spec, setbacks setback.SetbackSet, existing []orb.Polygon, opts Options) (FitResult, error) {
	opts = opts.WithDefaults()

	w, d, err := spec.Footprint()
	if err != nil {
		return FitResult{}, fmt.Errorf("placement: %w", err)
	}

	dev, err := searchRegion(parcel, setbacks, existing, opts)
	if err != nil {
		return FitResult{}, err
	}

	res := FitResult{
		Width:           w,
		Depth:           d,
		Developable:     dev,
		DevelopableArea: geom.Area(dev),
	}
	if res.DevelopableArea <= 0 {
		res.Advice = []string{
			"no developable area remains after setbacks and existing buildings",
			"request a setback variance to open up room",
			"consider attaching to or replacing an existing structure",
		}
		return res, nil
	}
	if w*d > res.DevelopableArea {
		res.Advice = []string{
			fmt.Sprintf("reduce the footprint to at most %.0f sq ft", res.DevelopableArea),
			"consider a multi-story design to keep floor area while shrinking the footprint",
			"request a setback variance to widen the developable area",
		}
		return res, nil
	}

	frame := scoreFrame{
		dev:     dev.Bound(),
		parcel:  parcel.Bound(),
		devArea: res.DevelopableArea,
		w:       w,
		d:       d,
		privacy: opts.PrivacyDepthFt,
	}
	clear := newClearIndex(existing)

	observability.Search().OnSearchStart(ctx, w, d)
	searchStart := time.Now()
	candidates, scanned, truncated, err := gridSearch(ctx, dev, frame, clear, opts)
	if err != nil {
		return FitResult{}, err
	}
	if len(candidates) == 0 {
		// The grid can step over a tight diagonal pocket; probe the
		// centroid before declaring a miss.
		probe := geom.RectCentered(geom.Centroid(dev), w, d)
		scanned++
		if geom.ContainsPolygon(dev, probe) {
			c, err := newCandidate(probe, frame, clear, opts)
			if err != nil {
				return FitResult{}, err
			}
			candidates = append(candidates, c)
		}
	}
	observability.Search().OnSearchComplete(ctx, scanned, len(candidates), time.Since(searchStart))
	res.Candidates = candidates
	res.Truncated = truncated

	if len(candidates) == 0 {
		res.Advice = []string{
			fmt.Sprintf("the developable area is large enough but no %g x %g ft placement fits", w, d),
			"try a narrower footprint or swap width and depth",
		}
		return res, nil
	}

	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Score > candidates[best].Score {
			best = i
		}
	}
	rec := candidates[best]
	res.Fits = true
	res.Recommended = &rec
	return res, nil
}

// searchRegion computes the area a footprint may occupy: the
// setback-eroded parcel minus existing buildings, or the caller's
// pre-clipped region minus existing buildings.
func searchRegion(parcel orb.Polygon, setbacks setback.SetbackSet, existing []orb.Polygon, opts Options) (orb.MultiPolygon, error) {
	if opts.Developable != nil {
		dev := opts.Developable
		if len(existing) > 0 {
			covered, err := geom.UnionAll(existing)
			if err != nil {
				return nil, fmt.Errorf("placement: existing buildings: %w", err)
			}
			dev, err = geom.Difference(dev, covered)
			if err != nil {
				return nil, fmt.Errorf("placement: search region: %w", err)
			}
		}
		return dev, nil
	}
	r, err := setback.BuildableArea(parcel, setbacks, existing)
	if err != nil {
		return nil, fmt.Errorf("placement: %w", err)
	}
	return r.Buildable, nil
}

// gridSearch walks the developable bounding box at the configured step,
// keeping every fully contained footprint translation. The scan runs
// front to back, left to right; the candidate buffer is allocated up
// front and capped at Options.MaxCandidates. The second return counts
// grid positions scanned.
func gridSearch(ctx context.Context, dev orb.MultiPolygon, frame scoreFrame, clear *clearIndex, opts Options) ([]Candidate, int, bool, error) {
	b := dev.Bound()
	bw, bh := geom.Dims(b)
	if bw < frame.w-gridTol || bh < frame.d-gridTol {
		return nil, 0, false, nil
	}
	cols := int(math.Floor((bw-frame.w)/opts.StepFt+gridTol)) + 1
	rows := int(math.Floor((bh-frame.d)/opts.StepFt+gridTol)) + 1

	capacity := rows * cols
	if capacity > opts.MaxCandidates {
		capacity = opts.MaxCandidates
	}
	candidates := make([]Candidate, 0, capacity)

	scanned := 0
	for iy := 0; iy < rows; iy++ {
		if err := ctx.Err(); err != nil {
			return nil, scanned, false, fmt.Errorf("placement: search canceled: %w", err)
		}
		y := b.Min[1] + float64(iy)*opts.StepFt
		for ix := 0; ix < cols; ix++ {
			x := b.Min[0] + float64(ix)*opts.StepFt
			scanned++
			fp := geom.Rect(x, y, frame.w, frame.d)
			if !geom.ContainsPolygon(dev, fp) {
				continue
			}
			c, err := newCandidate(fp, frame, clear, opts)
			if err != nil {
				return nil, scanned, false, err
			}
			candidates = append(candidates, c)
			if len(candidates) == opts.MaxCandidates {
				return candidates, scanned, iy < rows-1 || ix < cols-1, nil
			}
		}
	}
	return candidates, scanned, false, nil
}

func newCandidate(fp orb.Polygon, frame scoreFrame, clear *clearIndex, opts Options) (Candidate, error) {
	scores, mean, err := scoreCandidate(fp, frame, opts.Goals)
	if err != nil {
		return Candidate{}, err
	}
	return Candidate{
		Position:  geom.Centroid(fp),
		Footprint: fp,
		Clearance: clear.clearance(fp, opts.ClearanceScanFt),
		Scores:    scores,
		Score:     mean,
	}, nil
}

// scoreFrame carries the fixed quantities candidate scoring needs.
type scoreFrame struct {
	dev     orb.Bound
	parcel  orb.Bound
	devArea float64
	w, d    float64
	privacy float64
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// scoreCandidate evaluates fp against the requested goals. Scores come
// back in request order; the aggregate is their mean.
func scoreCandidate(fp orb.Polygon, frame scoreFrame, goals []Goal) ([]GoalScore, float64, error) {
	fb := fp.Bound()
	scores := make([]GoalScore, 0, len(goals))
	total := 0.0
	for _, g := range goals {
		var s float64
		switch g {
		case GoalMaximizeYard:
			// Deep rear yard: reward pushing the footprint to the front.
			_, devH := geom.Dims(frame.dev)
			if maxGap := devH - frame.d; maxGap > 0 {
				s = clamp01((frame.dev.Max[1] - fb.Max[1]) / maxGap)
			}
		case GoalMinimizeSetbackVariance:
			m := [4]float64{
				fb.Min[0] - frame.dev.Min[0],
				frame.dev.Max[0] - fb.Max[0],
				fb.Min[1] - frame.dev.Min[1],
				frame.dev.Max[1] - fb.Max[1],
			}
			mean := (m[0] + m[1] + m[2] + m[3]) / 4
			if mean <= 0 {
				s = 1
			} else {
				var sq float64
				for _, v := range m {
					sq += (v - mean) * (v - mean)
				}
				s = clamp01(1 - math.Sqrt(sq/4)/mean)
			}
		case GoalMaximizePrivacy:
			gap := math.Min(
				math.Min(fb.Min[0]-frame.parcel.Min[0], frame.parcel.Max[0]-fb.Max[0]),
				math.Min(fb.Min[1]-frame.parcel.Min[1], frame.parcel.Max[1]-fb.Max[1]),
			)
			s = clamp01(gap / frame.privacy)
		case GoalCenterPlacement:
			devW, devH := geom.Dims(frame.dev)
			if half := math.Hypot(devW, devH) / 2; half > 0 {
				cx := (frame.dev.Min[0] + frame.dev.Max[0]) / 2
				cy := (frame.dev.Min[1] + frame.dev.Max[1]) / 2
				fcx := (fb.Min[0] + fb.Max[0]) / 2
				fcy := (fb.Min[1] + fb.Max[1]) / 2
				s = 1 - math.Min(1, math.Hypot(fcx-cx, fcy-cy)/half)
			}
		case GoalMaximizeArea:
			if frame.devArea > 0 {
				s = clamp01(frame.w * frame.d / frame.devArea)
			}
		default:
			return nil, 0, fmt.Errorf("placement: %w: %q", ErrUnknownGoal, g)
		}
		scores = append(scores, GoalScore{Goal: g, Score: s})
		total += s
	}
	return scores, total / float64(len(goals)), nil
}

// clearIndex finds existing buildings near a candidate footprint.
type clearIndex struct {
	tree      *rtreego.Rtree
	buildings []orb.Polygon
}

// footSpatial adapts one footprint to the rtreego.Spatial interface.
type footSpatial struct {
	index int
	rect  rtreego.Rect
}

func (f *footSpatial) Bounds() rtreego.Rect { return f.rect }

func newClearIndex(buildings []orb.Polygon) *clearIndex {
	c := &clearIndex{tree: rtreego.NewTree(2, 25, 50), buildings: buildings}
	for i, b := range buildings {
		if len(b) == 0 {
			continue
		}
		c.tree.Insert(&footSpatial{index: i, rect: scanRect(b.Bound(), 0)})
	}
	return c
}

// clearance returns the distance in feet to the nearest building within
// scan feet of fp, or -1 when none is that close.
func (c *clearIndex) clearance(fp orb.Polygon, scan float64) float64 {
	if len(c.buildings) == 0 {
		return -1
	}
	best := -1.0
	for _, hit := range c.tree.SearchIntersect(scanRect(fp.Bound(), scan)) {
		b := c.buildings[hit.(*footSpatial).index]
		if d := geom.MinDistance(fp, b); d <= scan && (best < 0 || d < best) {
			best = d
		}
	}
	return best
}

// scanRect converts a bounding box grown by pad on every side into an
// rtreego rectangle, padding degenerate extents so the conversion cannot
// fail.
func scanRect(b orb.Bound, pad float64) rtreego.Rect {
	w := b.Max[0] - b.Min[0] + 2*pad
	h := b.Max[1] - b.Min[1] + 2*pad
	const eps = 1e-9
	if w <= 0 {
		w = eps
	}
	if h <= 0 {
		h = eps
	}
	rect, _ := rtreego.NewRect(rtreego.Point{b.Min[0] - pad, b.Min[1] - pad}, []float64{w, h})
	return rect
}
