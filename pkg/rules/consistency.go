package rules

import "fmt"

// Cross-check thresholds. These mirror how reviewers sanity-check an
// ordinance by hand: story heights outside 8-20 feet are implausible, and a
// floor-area ratio that cannot fit under the height envelope means two
// clauses contradict each other.
const (
	minFeetPerStory = 8.0
	maxFeetPerStory = 20.0

	// Density above this with coverage below lowCoveragePercent is flagged
	// as a warning: buildable but likely a drafting mistake.
	highDensityUnitsPerAcre = 20.0
	lowCoveragePercent      = 30.0
)

// ConsistencyResult reports contradictions within one rule set.
// Inconsistencies are hard contradictions; Warnings are combinations that
// are legal but suspicious.
type ConsistencyResult struct {
	Consistent      bool
	Inconsistencies []string
	Warnings        []string
}

// ValidateConsistency cross-checks the numeric rules in r.
//
// Three relationships are checked:
//
//   - height vs stories: the implied per-story height must fall in 8-20 ft;
//   - coverage vs FAR: the story count needed to realize the FAR under the
//     coverage cap must not exceed what the height envelope allows;
//   - density vs coverage: high density with low coverage is flagged as a
//     warning only, since tall slender buildings can satisfy both.
//
// Checks only run when both sides of a relationship are present; a sparse
// rule set is vacuously consistent.
func ValidateConsistency(r RuleSet) ConsistencyResult {
	res := ConsistencyResult{Consistent: true}

	if r.Height.MaxFeet != nil && r.Height.MaxStories != nil && *r.Height.MaxStories > 0 {
		perStory := *r.Height.MaxFeet / float64(*r.Height.MaxStories)
		if perStory < minFeetPerStory || perStory > maxFeetPerStory {
			res.Inconsistencies = append(res.Inconsistencies, fmt.Sprintf(
				"height limit of %.0f feet across %d stories implies %.1f feet per story, outside the plausible 8-20 ft range",
				*r.Height.MaxFeet, *r.Height.MaxStories, perStory))
		}
	}

	if r.Coverage.MaxFAR != nil && r.Coverage.MaxCoveragePercent != nil && *r.Coverage.MaxCoveragePercent > 0 {
		impliedStories := *r.Coverage.MaxFAR / (*r.Coverage.MaxCoveragePercent / 100)
		allowedStories, limited := storiesAllowed(r.Height)
		if limited && impliedStories > allowedStories+1e-9 {
			res.Inconsistencies = append(res.Inconsistencies, fmt.Sprintf(
				"FAR %.2f at %.0f%% coverage requires %.1f stories but the height limit allows at most %.1f",
				*r.Coverage.MaxFAR, *r.Coverage.MaxCoveragePercent, impliedStories, allowedStories))
		}
	}

	if r.Density.MaxUnitsPerAcre != nil && r.Coverage.MaxCoveragePercent != nil &&
		*r.Density.MaxUnitsPerAcre > highDensityUnitsPerAcre &&
		*r.Coverage.MaxCoveragePercent < lowCoveragePercent {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"density of %.0f units/acre with only %.0f%% coverage will force tall or very small units",
			*r.Density.MaxUnitsPerAcre, *r.Coverage.MaxCoveragePercent))
	}

	res.Consistent = len(res.Inconsistencies) == 0
	return res
}

// storiesAllowed derives the story budget from the height rules: an explicit
// story cap wins; otherwise the height limit divided by the minimum
// plausible story height is the most stories that could legally exist.
func storiesAllowed(h HeightRules) (float64, bool) {
	if h.MaxStories != nil {
		return float64(*h.MaxStories), true
	}
	if h.MaxFeet != nil {
		return *h.MaxFeet / minFeetPerStory, true
	}
	return 0, false
}
