package yard

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/geom"
)

// OutdoorArea is one connected piece of the parcel left open after the
// buildings take their footprints.
type OutdoorArea struct {
	Geometry orb.Polygon
	Area     float64 // square feet
	Bounds   orb.Bound
	Centroid orb.Point

	// BackyardScore totals the rear-half, size, and rear-contact points.
	BackyardScore int
	Backyard      bool
}

// Level grades a 0-10 score into three bands.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// UsableSpace describes what a backyard can host and how well it
// connects to the rest of the parcel.
type UsableSpace struct {
	Width float64 // feet, bounding box
	Depth float64 // feet, bounding box
	Uses  []Use   // admitted uses in rule order

	// Accessibility is 0-10: closeness of the part to the parcel center
	// blended with the part's compactness.
	Accessibility float64
}

// Privacy grades how shielded a backyard is from neighboring lots.
type Privacy struct {
	Score            float64 // 0-10
	Level            Level
	BoundaryDistance float64 // feet from the part centroid to the parcel boundary
	Screening        int     // buildings within Config.ScreeningRadius of the part
}

// PlantingOption is a feasible landscaping treatment priced for the
// whole part.
type PlantingOption struct {
	Type     PlantingType
	CostLow  float64 // dollars
	CostHigh float64 // dollars
}

// Backyard carries the full evaluation of one qualifying outdoor part.
type Backyard struct {
	Index       int // position in Analysis.Outdoor
	Space       UsableSpace
	Privacy     Privacy
	Landscaping []PlantingOption
}

// OpenSpace reports the parcel's outdoor share against a zoning minimum.
type OpenSpace struct {
	RequiredPercent float64
	ActualPercent   float64
	Compliant       bool
	Note            string
}

// Analysis is the result of Analyze.
type Analysis struct {
	ParcelArea   float64
	OutdoorArea  float64 // total across parts, square feet
	OutdoorShare float64 // percent of the parcel left open

	Outdoor   []OutdoorArea
	Backyards []Backyard

	// OpenSpace is set when Options.MinOpenSpacePercent is positive.
	OpenSpace *OpenSpace
}

// Analyze subtracts the building footprints from the parcel and
// evaluates every outdoor part that remains. Options.Proposed, when set,
// is treated as one more building.
func Analyze(parcel orb.Polygon, buildings []orb.Polygon, opts Options) (Analysis, error) {
	opts = opts.WithDefaults()
	cfg := opts.Config

	region, err := geom.Repair(parcel)
	if err != nil {
		return Analysis{}, fmt.Errorf("yard: parcel: %w", err)
	}
	parcelArea := geom.Area(region)

	footprints := make([]orb.Polygon, 0, len(buildings)+1)
	footprints = append(footprints, buildings...)
	if len(opts.Proposed) > 0 {
		footprints = append(footprints, opts.Proposed)
	}

	outdoor := region
	if len(footprints) > 0 {
		covered, err := geom.UnionAll(footprints)
		if err != nil {
			return Analysis{}, fmt.Errorf("yard: buildings: %w", err)
		}
		outdoor, err = geom.Difference(region, covered)
		if err != nil {
			return Analysis{}, fmt.Errorf("yard: outdoor region: %w", err)
		}
	}

	a := Analysis{ParcelArea: parcelArea}
	frame := region.Bound()
	center := geom.Centroid(region)
	for _, part := range geom.Parts(outdoor) {
		area := geom.Area(part)
		if area <= 0 {
			continue
		}
		oa := OutdoorArea{
			Geometry: part,
			Area:     area,
			Bounds:   part.Bound(),
			Centroid: geom.Centroid(part),
		}
		oa.BackyardScore, err = backyardScore(oa, frame, center, cfg)
		if err != nil {
			return Analysis{}, fmt.Errorf("yard: scoring: %w", err)
		}
		oa.Backyard = oa.BackyardScore >= cfg.BackyardMinScore
		a.OutdoorArea += area
		a.Outdoor = append(a.Outdoor, oa)
	}
	if parcelArea > 0 {
		a.OutdoorShare = 100 * a.OutdoorArea / parcelArea
	}

	screen := newScreenIndex(footprints)
	for i, oa := range a.Outdoor {
		if !oa.Backyard {
			continue
		}
		a.Backyards = append(a.Backyards, Backyard{
			Index:       i,
			Space:       usableSpace(oa, frame, center, cfg),
			Privacy:     privacy(oa, parcel, screen, cfg),
			Landscaping: plantings(oa, cfg),
		})
	}

	if opts.MinOpenSpacePercent > 0 {
		a.OpenSpace = openSpace(a.OutdoorShare, opts.MinOpenSpacePercent)
	}
	return a, nil
}

// backyardScore awards points for sitting behind the parcel midpoint,
// for size, and for reaching the rear boundary band.
func backyardScore(oa OutdoorArea, frame orb.Bound, center orb.Point, cfg Config) (int, error) {
	score := 0
	if oa.Centroid[1] > center[1] {
		score += pointsRearHalf
	}
	if oa.Area >= cfg.BackyardMinArea {
		score += pointsMinArea
	}
	touches, err := touchesRearBand(oa.Geometry, frame, cfg.RearBandDepth)
	if err != nil {
		return 0, err
	}
	if touches {
		score += pointsRearTouch
	}
	return score, nil
}

// touchesRearBand reports whether p overlaps the strip of the parcel
// within depth feet of the rear (maximum-y) boundary.
func touchesRearBand(p orb.Polygon, frame orb.Bound, depth float64) (bool, error) {
	width, _ := geom.Dims(frame)
	band := geom.Rect(frame.Min[0], frame.Max[1]-depth, width, depth)
	overlap, err := geom.Intersection(orb.MultiPolygon{p}, orb.MultiPolygon{band})
	if err != nil {
		return false, err
	}
	return geom.Area(overlap) > 0, nil
}

// openSpace compares the outdoor share against the zoning minimum.
func openSpace(actual, required float64) *OpenSpace {
	os := &OpenSpace{
		RequiredPercent: required,
		ActualPercent:   actual,
		Compliant:       actual >= required,
	}
	if os.Compliant {
		os.Note = fmt.Sprintf("open space %.1f%% meets the %.1f%% minimum", actual, required)
	} else {
		os.Note = fmt.Sprintf("open space %.1f%% falls short of the %.1f%% minimum", actual, required)
	}
	return os
}
