package obstacle

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/geom"
)

// Inventory summarizes the obstacle list without geometry work.
type Inventory struct {
	Total      int
	ByCategory CategoryCounts
	BySeverity SeverityCounts

	// Removable counts obstacles that can be cleared; MitigationCost sums
	// their known clearing costs.
	Removable      int
	MitigationCost float64
}

// CategoryCounts breaks the inventory down by obstacle category.
type CategoryCounts struct {
	Natural        int
	Infrastructure int
	Regulatory     int
	Structures     int
	Other          int
}

// SeverityCounts breaks the inventory down by effective severity.
type SeverityCounts struct {
	High   int
	Medium int
	Low    int
}

// Zones holds the buffered constraint regions unioned per severity tier and
// in aggregate.
type Zones struct {
	High      orb.MultiPolygon
	Medium    orb.MultiPolygon
	Low       orb.MultiPolygon
	Aggregate orb.MultiPolygon
}

// Developable is the parcel area left after all constraint zones are
// removed.
type Developable struct {
	Region      orb.MultiPolygon
	Area        float64
	PartAreas   []float64
	LargestPart orb.Polygon
	LargestArea float64

	// Fragmentation is parts per 1,000 sq ft of remaining area. Higher
	// means the constraints chopped the parcel into less usable pieces.
	Fragmentation float64
}

// Empty reports whether no developable area remains.
func (d Developable) Empty() bool { return len(d.Region) == 0 || d.Area <= 0 }

// Analysis is the full obstacle-engine output.
type Analysis struct {
	ParcelArea  float64
	Inventory   Inventory
	Zones       Zones
	Developable Developable

	// Conflicts is non-nil only when Options.Proposal was given and the
	// proposal overlaps at least one constraint zone.
	Conflicts []Conflict

	Feasibility Feasibility
}

// Analyze buffers each obstacle, unions the resulting constraint zones, and
// derives the developable region and feasibility score for the parcel.
//
// With zero obstacles the developable region is the repaired parcel itself;
// no clipping runs, so the output geometry is identical to what the caller
// gets from repairing the parcel alone.
func Analyze(parcel orb.Polygon, obstacles []Obstacle, opts Options) (Analysis, error) {
	opts = opts.WithDefaults()

	region, err := geom.Repair(parcel)
	if err != nil {
		return Analysis{}, fmt.Errorf("obstacle analysis: %w", err)
	}

	a := Analysis{
		ParcelArea: geom.Area(region),
		Inventory:  inventory(obstacles),
	}

	if len(obstacles) == 0 {
		a.Developable = newDevelopable(region)
		a.Feasibility = FeasibilityScore(a.Developable, a.Inventory, a.ParcelArea, opts.Score)
		return a, nil
	}

	zones, err := bufferAll(obstacles, opts.Buffers)
	if err != nil {
		return Analysis{}, err
	}
	a.Zones, err = combine(obstacles, zones)
	if err != nil {
		return Analysis{}, err
	}

	developable := region
	if len(a.Zones.Aggregate) > 0 {
		developable, err = geom.Difference(region, a.Zones.Aggregate)
		if err != nil {
			return Analysis{}, fmt.Errorf("obstacle analysis: subtract zones: %w", err)
		}
	}
	a.Developable = newDevelopable(developable)

	if len(opts.Proposal) > 0 {
		a.Conflicts, err = conflicts(opts.Proposal, obstacles, zones)
		if err != nil {
			return Analysis{}, err
		}
	}

	a.Feasibility = FeasibilityScore(a.Developable, a.Inventory, a.ParcelArea, opts.Score)
	return a, nil
}

func inventory(obstacles []Obstacle) Inventory {
	inv := Inventory{Total: len(obstacles)}
	for _, o := range obstacles {
		switch o.Type.Category() {
		case CategoryNatural:
			inv.ByCategory.Natural++
		case CategoryInfrastructure:
			inv.ByCategory.Infrastructure++
		case CategoryRegulatory:
			inv.ByCategory.Regulatory++
		case CategoryStructure:
			inv.ByCategory.Structures++
		default:
			inv.ByCategory.Other++
		}
		switch o.severity() {
		case SeverityHigh:
			inv.BySeverity.High++
		case SeverityLow:
			inv.BySeverity.Low++
		default:
			inv.BySeverity.Medium++
		}
		if o.Removable {
			inv.Removable++
			inv.MitigationCost += o.MitigationCost
		}
	}
	return inv
}

// bufferAll dilates every obstacle by its clearance, preserving input order.
func bufferAll(obstacles []Obstacle, table BufferTable) ([]orb.MultiPolygon, error) {
	zones := make([]orb.MultiPolygon, len(obstacles))
	for i, o := range obstacles {
		repaired, err := geom.Repair(o.Geometry)
		if err != nil {
			return nil, fmt.Errorf("obstacle %q: %w", o.ID, err)
		}
		zone, err := geom.Dilate(repaired, bufferFor(o, table))
		if err != nil {
			return nil, fmt.Errorf("obstacle %q: buffer: %w", o.ID, err)
		}
		zones[i] = zone
	}
	return zones, nil
}

// combine unions the per-obstacle zones into severity tiers and the
// aggregate, in input order.
func combine(obstacles []Obstacle, zones []orb.MultiPolygon) (Zones, error) {
	var high, medium, low, all []orb.Polygon
	for i, o := range obstacles {
		parts := geom.Parts(zones[i])
		all = append(all, parts...)
		switch o.severity() {
		case SeverityHigh:
			high = append(high, parts...)
		case SeverityLow:
			low = append(low, parts...)
		default:
			medium = append(medium, parts...)
		}
	}

	var z Zones
	var err error
	if z.High, err = geom.UnionAll(high); err != nil {
		return Zones{}, fmt.Errorf("union high tier: %w", err)
	}
	if z.Medium, err = geom.UnionAll(medium); err != nil {
		return Zones{}, fmt.Errorf("union medium tier: %w", err)
	}
	if z.Low, err = geom.UnionAll(low); err != nil {
		return Zones{}, fmt.Errorf("union low tier: %w", err)
	}
	if z.Aggregate, err = geom.UnionAll(all); err != nil {
		return Zones{}, fmt.Errorf("union aggregate: %w", err)
	}
	return z, nil
}

func newDevelopable(m orb.MultiPolygon) Developable {
	d := Developable{Region: m}
	if len(m) == 0 {
		return d
	}
	d.PartAreas = make([]float64, len(m))
	for i, p := range m {
		a := geom.Area(p)
		d.PartAreas[i] = a
		d.Area += a
	}
	d.LargestPart, d.LargestArea = geom.LargestPart(m)
	if d.Area > 0 {
		d.Fragmentation = float64(len(m)) / (d.Area / 1000)
	}
	return d
}
