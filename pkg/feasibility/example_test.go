package feasibility_test

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/feasibility"
	"github.com/landsight/parcelfit/pkg/placement"
	"github.com/landsight/parcelfit/pkg/setback"
)

func ExampleRunner_AnalyzeSite() {
	d := 20.0
	site := &feasibility.Site{
		Name:     "12 Alder Lane",
		Rings:    [][]orb.Point{{{0, 0}, {80, 0}, {80, 100}, {0, 100}, {0, 0}}},
		Setbacks: setback.SetbackSet{Front: &d, Rear: &d, Side: &d},
		Building: &placement.Spec{Type: "house"},
	}

	runner := feasibility.NewRunner(nil, nil, log.New(io.Discard))
	rep, err := runner.AnalyzeSite(context.Background(), site, feasibility.AnalyzeOptions{})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("parcel: %.0f sq ft\n", rep.Summary.ParcelSqFt)
	fmt.Printf("buildable: %.0f sq ft (%.0f%%)\n", rep.Summary.BuildableSqFt, rep.Summary.BuildablePct)
	fmt.Println("house fits:", *rep.Summary.Fits)
	// Output:
	// parcel: 8000 sq ft
	// buildable: 2400 sq ft (30%)
	// house fits: true
}

func ExampleRunner_ParseRules() {
	runner := feasibility.NewRunner(nil, nil, log.New(io.Discard))
	text := "Front setback: 25 feet. Maximum height: 30 feet. " +
		"Permitted uses: single family dwellings."

	res, err := runner.ParseRules(context.Background(), text)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("confidence: %.1f\n", res.Confidence)
	fmt.Printf("front setback: %.0f ft\n", *res.Rules.Setbacks.Front)
	fmt.Printf("max height: %.0f ft\n", *res.Rules.Height.MaxFeet)
	// Output:
	// confidence: 0.8
	// front setback: 25 ft
	// max height: 30 ft
}
