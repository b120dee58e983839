package rules

// RuleSet is the structured form of a district's zoning parameters. Every
// field is optional: nil pointers and empty lists mean the source text never
// mentioned that category. Compliance evaluation must check presence before
// comparing.
type RuleSet struct {
	Setbacks SetbackRules
	Height   HeightRules
	Coverage CoverageRules
	Density  DensityRules
	Parking  ParkingRules
	Uses     UseRules
}

// SetbackRules holds per-direction minimum setbacks in feet. General is the
// catch-all used by ordinances that state a single uniform setback.
type SetbackRules struct {
	Front      *float64
	Rear       *float64
	Side       *float64
	CornerSide *float64
	General    *float64
}

// Any reports whether at least one setback direction was found.
func (s SetbackRules) Any() bool {
	return s.Front != nil || s.Rear != nil || s.Side != nil ||
		s.CornerSide != nil || s.General != nil
}

// HeightRules holds the height envelope.
type HeightRules struct {
	MaxFeet    *float64
	MaxStories *int
}

// Any reports whether a height limit was found.
func (h HeightRules) Any() bool { return h.MaxFeet != nil || h.MaxStories != nil }

// CoverageRules holds bulk limits relative to parcel area.
type CoverageRules struct {
	// MaxCoveragePercent is the footprint limit as a percentage (0-100).
	MaxCoveragePercent *float64

	// MaxFAR is the floor-area-ratio limit.
	MaxFAR *float64
}

// DensityRules holds unit-count limits.
type DensityRules struct {
	MaxUnitsPerAcre *float64
	MinLotSqFt      *float64
}

// ParkingRules holds off-street parking requirements.
type ParkingRules struct {
	SpacesPerUnit *float64
}

// UseRules holds the three use lists extracted from the ordinance.
type UseRules struct {
	Permitted   []string
	Conditional []string
	Prohibited  []string
}

// Any reports whether at least one use list was found.
func (u UseRules) Any() bool {
	return len(u.Permitted) > 0 || len(u.Conditional) > 0 || len(u.Prohibited) > 0
}

// ParseResult bundles the extracted rules with extraction quality signals.
type ParseResult struct {
	Rules RuleSet

	// Confidence is 0-1: 0.2 per rule category found up to 0.8, plus 0.2
	// when all three common categories (setbacks, height, uses) appear.
	Confidence float64

	// Warnings lists extraction anomalies. Low confidence is a warning,
	// never an error: partial rule sets are still useful to callers.
	Warnings []string
}

func ptr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
