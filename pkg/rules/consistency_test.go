package rules

import (
	"strings"
	"testing"
)

func TestValidateConsistencyHeightStories(t *testing.T) {
	tests := []struct {
		name       string
		feet       float64
		stories    int
		consistent bool
	}{
		{"plausible", 35, 3, true},
		{"single story skyscraper", 35, 1, false},
		{"crammed stories", 40, 6, false},
		{"eight feet exactly", 24, 3, true},
		{"twenty feet exactly", 40, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RuleSet{Height: HeightRules{
				MaxFeet:    ptr(tt.feet),
				MaxStories: intPtr(tt.stories),
			}}
			res := ValidateConsistency(r)
			if res.Consistent != tt.consistent {
				t.Errorf("Consistent = %v, want %v (inconsistencies: %v)",
					res.Consistent, tt.consistent, res.Inconsistencies)
			}
		})
	}
}

func TestValidateConsistencyFARCoverage(t *testing.T) {
	tests := []struct {
		name       string
		rules      RuleSet
		consistent bool
	}{
		{
			// FAR 2.0 at 40% coverage needs 5 stories; 35 ft allows at
			// most 4.4 even at the minimum story height.
			name: "far exceeds height envelope",
			rules: RuleSet{
				Height:   HeightRules{MaxFeet: ptr(35)},
				Coverage: CoverageRules{MaxFAR: ptr(2.0), MaxCoveragePercent: ptr(40)},
			},
			consistent: false,
		},
		{
			name: "far fits under height",
			rules: RuleSet{
				Height:   HeightRules{MaxFeet: ptr(35)},
				Coverage: CoverageRules{MaxFAR: ptr(0.5), MaxCoveragePercent: ptr(40)},
			},
			consistent: true,
		},
		{
			// An explicit story cap is the binding limit.
			name: "far exceeds story cap",
			rules: RuleSet{
				Height:   HeightRules{MaxStories: intPtr(3)},
				Coverage: CoverageRules{MaxFAR: ptr(2.0), MaxCoveragePercent: ptr(50)},
			},
			consistent: false,
		},
		{
			name: "no height limit to contradict",
			rules: RuleSet{
				Coverage: CoverageRules{MaxFAR: ptr(5.0), MaxCoveragePercent: ptr(50)},
			},
			consistent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateConsistency(tt.rules)
			if res.Consistent != tt.consistent {
				t.Errorf("Consistent = %v, want %v (inconsistencies: %v)",
					res.Consistent, tt.consistent, res.Inconsistencies)
			}
		})
	}
}

func TestValidateConsistencyDensityCoverage(t *testing.T) {
	r := RuleSet{
		Density:  DensityRules{MaxUnitsPerAcre: ptr(24)},
		Coverage: CoverageRules{MaxCoveragePercent: ptr(25)},
	}
	res := ValidateConsistency(r)

	// Suspicious but not contradictory: a warning, and still consistent.
	if !res.Consistent {
		t.Errorf("Consistent = false, want true")
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want exactly one", res.Warnings)
	}
	if !strings.Contains(res.Warnings[0], "units/acre") {
		t.Errorf("warning %q does not mention density", res.Warnings[0])
	}

	// Generous coverage clears the warning.
	r.Coverage.MaxCoveragePercent = ptr(40)
	if res := ValidateConsistency(r); len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none at 40%% coverage", res.Warnings)
	}
}

func TestValidateConsistencySparse(t *testing.T) {
	res := ValidateConsistency(RuleSet{})
	if !res.Consistent {
		t.Error("empty rule set should be vacuously consistent")
	}
	if len(res.Inconsistencies) != 0 || len(res.Warnings) != 0 {
		t.Errorf("unexpected findings: %v %v", res.Inconsistencies, res.Warnings)
	}

	// One-sided relationships are not checked.
	res = ValidateConsistency(RuleSet{Height: HeightRules{MaxFeet: ptr(35)}})
	if !res.Consistent || len(res.Inconsistencies) != 0 {
		t.Errorf("height alone flagged: %v", res.Inconsistencies)
	}
}
