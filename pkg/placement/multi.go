package placement

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/geom"
	"github.com/landsight/parcelfit/pkg/setback"
)

// ErrTooManyBuildings is returned when TestMultiple gets more than two
// specs. Pairwise search does not generalize to packing.
var ErrTooManyBuildings = errors.New("pairwise search handles at most two buildings")

// MultiResult reports a multi-building layout search.
type MultiResult struct {
	Fits       bool
	Placements []Candidate // one per spec, in spec order

	// Spacing is the distance between the two footprints, -1 for a
	// single building.
	Spacing float64

	Score  float64 // mean of the placement scores
	Advice []string
}

// TestMultiple places up to two buildings in the same developable area,
// keeping at least Options.MinSpacingFt between them. Anchor placements
// for the first building are tried best-first; the second building
// searches whatever remains after the anchor and its spacing collar are
// carved out.
func TestMultiple(ctx context.Context, parcel orb.Polygon, specs []Spec, setbacks setback.SetbackSet, opts Options) (MultiResult, error) {
	opts = opts.WithDefaults()
	switch {
	case len(specs) == 0:
		return MultiResult{}, fmt.Errorf("placement: no building specs given")
	case len(specs) > 2:
		return MultiResult{}, fmt.Errorf("placement: %w, got %d", ErrTooManyBuildings, len(specs))
	}

	first, err := TestFit(ctx, parcel, specs[0], setbacks, nil, opts)
	if err != nil {
		return MultiResult{}, err
	}
	if len(specs) == 1 {
		res := MultiResult{Fits: first.Fits, Spacing: -1, Advice: first.Advice}
		if first.Fits {
			res.Placements = []Candidate{*first.Recommended}
			res.Score = first.Recommended.Score
		}
		return res, nil
	}
	if !first.Fits {
		advice := append([]string{"the first building does not fit on its own"}, first.Advice...)
		return MultiResult{Advice: advice}, nil
	}

	anchors := make([]Candidate, len(first.Candidates))
	copy(anchors, first.Candidates)
	sort.SliceStable(anchors, func(i, j int) bool { return anchors[i].Score > anchors[j].Score })
	attempts := opts.PairAttempts
	if attempts > len(anchors) {
		attempts = len(anchors)
	}

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return MultiResult{}, fmt.Errorf("placement: search canceled: %w", err)
		}
		anchor := anchors[i]
		keepOut, err := geom.DilatePolygon(anchor.Footprint, opts.MinSpacingFt)
		if err != nil {
			return MultiResult{}, fmt.Errorf("placement: spacing collar: %w", err)
		}
		remaining, err := geom.Difference(first.Developable, keepOut)
		if err != nil {
			return MultiResult{}, fmt.Errorf("placement: remaining region: %w", err)
		}
		if geom.Area(remaining) <= 0 {
			continue
		}

		secondOpts := opts
		secondOpts.Developable = remaining
		second, err := TestFit(ctx, parcel, specs[1], setbacks, nil, secondOpts)
		if err != nil {
			return MultiResult{}, err
		}
		if !second.Fits {
			continue
		}

		pair := []Candidate{anchor, *second.Recommended}
		return MultiResult{
			Fits:       true,
			Placements: pair,
			Spacing:    geom.MinDistance(anchor.Footprint, pair[1].Footprint),
			Score:      (anchor.Score + pair[1].Score) / 2,
		}, nil
	}

	return MultiResult{Advice: []string{
		fmt.Sprintf("no side-by-side layout keeps %g ft between the two buildings", opts.MinSpacingFt),
		"shrink one footprint or lower the spacing requirement",
	}}, nil
}
