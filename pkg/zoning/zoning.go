package zoning

import (
	"errors"

	"github.com/landsight/parcelfit/pkg/rules"
	"github.com/landsight/parcelfit/pkg/setback"
)

// ErrNoParcelArea reports a parcel without a positive area; every
// area-relative check would be meaningless.
var ErrNoParcelArea = errors.New("zoning: parcel area must be positive")

const sqFtPerAcre = 43560.0

// DefaultLandscapePercent is the landscaped-share minimum applied when a
// district declares a landscaping requirement without a number.
const DefaultLandscapePercent = 20.0

// Status classifies the outcome of a single check.
type Status string

const (
	// StatusCompliant means the proposal satisfies the rule.
	StatusCompliant Status = "compliant"

	// StatusNonCompliant means the proposal violates the rule.
	StatusNonCompliant Status = "non_compliant"

	// StatusNotListed means no verdict could be reached: the proposed
	// use matches no district list, or a declared rule has no stated
	// proposal value to compare. Flagged for manual review and excluded
	// from the score denominator.
	StatusNotListed Status = "not_listed"

	// StatusNotApplicable means the district never regulates this
	// category.
	StatusNotApplicable Status = "not_applicable"
)

// Check names in result order.
const (
	CheckUse         = "use"
	CheckDensity     = "density"
	CheckHeight      = "height"
	CheckSetbacks    = "setbacks"
	CheckCoverage    = "lot_coverage"
	CheckFAR         = "floor_area_ratio"
	CheckParking     = "parking"
	CheckLandscaping = "landscaping"
)

// CheckResult is the outcome of one compliance check. Required and
// Proposed carry the compared quantities in the check's natural unit
// (feet, units, spaces, percent). Variance is the margin by which the
// proposal clears the requirement: positive values are slack, negative
// values are the shortfall. All three are zero when the check reached
// no numeric comparison.
type CheckResult struct {
	Name     string
	Status   Status
	Required float64
	Proposed float64
	Variance float64
	Message  string
}

// ParcelData is the parcel context for area-relative checks.
type ParcelData struct {
	// AreaSqFt is the parcel area in square feet.
	AreaSqFt float64
}

// Acres converts the parcel area to acres.
func (p ParcelData) Acres() float64 { return p.AreaSqFt / sqFtPerAcre }

// SpecialRequirements are district overlays and conditions that demand
// attention without bearing on compliance.
type SpecialRequirements struct {
	HistoricDistrict     bool
	FloodOverlay         bool
	EnvironmentalOverlay bool

	// Other holds free-form requirements appended to the notes verbatim.
	Other []string
}

func (s SpecialRequirements) notes() []string {
	var out []string
	if s.HistoricDistrict {
		out = append(out, "historic district: exterior work may need design review")
	}
	if s.FloodOverlay {
		out = append(out, "flood overlay: flood-resistant construction standards may apply")
	}
	if s.EnvironmentalOverlay {
		out = append(out, "environmental overlay: additional environmental review may apply")
	}
	return append(out, s.Other...)
}

// DistrictRules bundles a district's structured rules with the record
// fields the ordinance parser does not extract.
type DistrictRules struct {
	// District is the display name, for example "R-1".
	District string

	// Rules holds the structured zoning parameters.
	Rules rules.RuleSet

	// LandscapingPercent declares a landscaped-share minimum. Nil means
	// the district has none; a value of zero or less falls back to
	// DefaultLandscapePercent.
	LandscapingPercent *float64

	// Special lists advisory overlay requirements.
	Special SpecialRequirements
}

// Proposal describes the development under evaluation. Zero values for
// physical quantities (height, stories, footprint, floor area) mean the
// proposal does not state them; zero counts (units, parking spaces,
// landscaped area) are real zeros.
type Proposal struct {
	// Use is the proposed land use, matched against district use lists.
	Use string

	// Units is the dwelling unit count. Values below one are treated as
	// a single unit.
	Units int

	HeightFt float64
	Stories  int

	// FootprintSqFt is the ground-floor building footprint.
	FootprintSqFt float64

	// FloorAreaSqFt is the total floor area across stories, for FAR.
	FloorAreaSqFt float64

	// Setbacks are the structure-to-boundary distances the proposal
	// states. Directions left nil are not verified.
	Setbacks setback.SetbackSet

	ParkingSpaces  int
	LandscapedSqFt float64
}

func (p Proposal) unitCount() int {
	if p.Units < 1 {
		return 1
	}
	return p.Units
}

// ComplianceResult is the full evaluation: all eight checks in fixed
// order plus the aggregate verdict.
type ComplianceResult struct {
	District string

	// Checks always holds the eight checks in declaration order.
	Checks []CheckResult

	// Score is compliant checks over applicable checks, 0 to 1.
	Score float64

	// OverallCompliant holds only when Score is exactly 1.
	OverallCompliant bool

	// Violations lists the messages of non-compliant checks.
	Violations []string

	// Warnings lists checks needing manual review and evaluation
	// caveats.
	Warnings []string

	// Notes are advisory items: conditional-use permits and special
	// district requirements.
	Notes []string
}

// Evaluate runs all eight compliance checks for the proposal and
// aggregates the verdict.
func Evaluate(parcel ParcelData, district DistrictRules, proposal Proposal) (ComplianceResult, error) {
	if parcel.AreaSqFt <= 0 {
		return ComplianceResult{}, ErrNoParcelArea
	}

	res := ComplianceResult{District: district.District}

	use, notes := checkUse(district.Rules.Uses, proposal.Use)
	res.Checks = []CheckResult{
		use,
		checkDensity(parcel, district.Rules.Density, proposal),
		checkHeight(district.Rules.Height, proposal),
		checkSetbacks(district.Rules.Setbacks, proposal.Setbacks),
		checkCoverage(parcel, district.Rules.Coverage, proposal),
		checkFAR(parcel, district.Rules.Coverage, proposal),
		checkParking(district.Rules.Parking, proposal),
		checkLandscaping(parcel, district.LandscapingPercent, proposal),
	}

	applicable, compliant := 0, 0
	for _, c := range res.Checks {
		switch c.Status {
		case StatusCompliant:
			applicable++
			compliant++
		case StatusNonCompliant:
			applicable++
			res.Violations = append(res.Violations, c.Name+": "+c.Message)
		case StatusNotListed:
			res.Warnings = append(res.Warnings, c.Name+": "+c.Message)
		}
	}
	if applicable == 0 {
		res.Score = 1
		res.Warnings = append(res.Warnings, "no applicable district rules to evaluate")
	} else {
		res.Score = float64(compliant) / float64(applicable)
	}
	res.OverallCompliant = res.Score == 1

	res.Notes = append(notes, district.Special.notes()...)
	return res, nil
}
