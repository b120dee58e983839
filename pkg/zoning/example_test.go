package zoning_test

import (
	"fmt"

	"github.com/landsight/parcelfit/pkg/rules"
	"github.com/landsight/parcelfit/pkg/zoning"
)

func ExampleEvaluate() {
	maxCoverage := 40.0
	district := zoning.DistrictRules{
		District: "R-1",
		Rules: rules.RuleSet{
			Coverage: rules.CoverageRules{MaxCoveragePercent: &maxCoverage},
			Uses:     rules.UseRules{Permitted: []string{"single-family dwelling"}},
		},
	}
	proposal := zoning.Proposal{Use: "single-family dwelling", FootprintSqFt: 1200}

	res, err := zoning.Evaluate(zoning.ParcelData{AreaSqFt: 8000}, district, proposal)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, c := range res.Checks {
		if c.Status == zoning.StatusNotApplicable {
			continue
		}
		fmt.Printf("%s: %s\n", c.Name, c.Status)
	}
	fmt.Printf("score: %.2f\n", res.Score)
	// Output:
	// use: compliant
	// lot_coverage: compliant
	// score: 1.00
}

func ExampleEvaluate_violation() {
	maxHeight := 35.0
	district := zoning.DistrictRules{
		District: "R-1",
		Rules:    rules.RuleSet{Height: rules.HeightRules{MaxFeet: &maxHeight}},
	}

	res, err := zoning.Evaluate(zoning.ParcelData{AreaSqFt: 8000}, district, zoning.Proposal{HeightFt: 40})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(res.OverallCompliant)
	fmt.Println(res.Violations[0])
	// Output:
	// false
	// height: height 40 ft exceeds the 35 ft limit
}
