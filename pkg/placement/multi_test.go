package placement

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/landsight/parcelfit/pkg/geom"
	"github.com/landsight/parcelfit/pkg/setback"
)

func TestMultipleTwoSheds(t *testing.T) {
	d := 10.0
	s := setback.SetbackSet{Front: &d, Rear: &d, Side: &d}
	parcel := geom.Rect(0, 0, 80, 100)
	specs := []Spec{{Type: "shed"}, {Type: "shed"}}

	res, err := TestMultiple(context.Background(), parcel, specs, s, Options{})
	if err != nil {
		t.Fatalf("TestMultiple() error: %v", err)
	}
	if !res.Fits || len(res.Placements) != 2 {
		t.Fatalf("Fits = %v with %d placements, want a pair", res.Fits, len(res.Placements))
	}
	if res.Spacing < 9.99 {
		t.Errorf("Spacing = %v, want at least the 10 ft minimum", res.Spacing)
	}
	if want := (res.Placements[0].Score + res.Placements[1].Score) / 2; res.Score != want {
		t.Errorf("Score = %v, want the mean %v", res.Score, want)
	}

	buildable, err := setback.BuildableArea(parcel, s, nil)
	if err != nil {
		t.Fatalf("BuildableArea() error: %v", err)
	}
	for i, p := range res.Placements {
		if !geom.ContainsPolygon(buildable.Buildable, p.Footprint) {
			t.Errorf("placement %d escapes the buildable area", i)
		}
	}
}

func TestMultipleSingleSpec(t *testing.T) {
	d := 20.0
	s := setback.SetbackSet{Front: &d, Rear: &d, Side: &d}
	res, err := TestMultiple(context.Background(), geom.Rect(0, 0, 80, 100), []Spec{{Type: "house"}}, s, Options{})
	if err != nil {
		t.Fatalf("TestMultiple() error: %v", err)
	}
	if !res.Fits || len(res.Placements) != 1 {
		t.Fatalf("single spec should delegate to the plain fit")
	}
	if res.Spacing != -1 {
		t.Errorf("Spacing = %v, want -1 for one building", res.Spacing)
	}
	if res.Score != res.Placements[0].Score {
		t.Errorf("Score = %v, want the single placement's %v", res.Score, res.Placements[0].Score)
	}
}

func TestMultipleNoRoomForSecond(t *testing.T) {
	// One barn fills the 40x60 core exactly; the spacing collar leaves
	// nothing for the second.
	d := 20.0
	s := setback.SetbackSet{Front: &d, Rear: &d, Side: &d}
	specs := []Spec{{Type: "barn"}, {Type: "shed"}}

	res, err := TestMultiple(context.Background(), geom.Rect(0, 0, 80, 100), specs, s, Options{})
	if err != nil {
		t.Fatalf("TestMultiple() error: %v", err)
	}
	if res.Fits {
		t.Fatalf("no room for a second building, got %v", res.Placements)
	}
	if len(res.Advice) == 0 || !strings.Contains(res.Advice[0], "10 ft") {
		t.Errorf("advice = %v, want the spacing explanation", res.Advice)
	}
}

func TestMultipleSpecLimits(t *testing.T) {
	s := setback.SetbackSet{}
	parcel := geom.Rect(0, 0, 80, 100)

	_, err := TestMultiple(context.Background(), parcel, []Spec{{Type: "shed"}, {Type: "shed"}, {Type: "shed"}}, s, Options{})
	if !errors.Is(err, ErrTooManyBuildings) {
		t.Fatalf("expected ErrTooManyBuildings, got %v", err)
	}

	_, err = TestMultiple(context.Background(), parcel, nil, s, Options{})
	if err == nil {
		t.Fatalf("expected an error for an empty spec list")
	}
}

func TestMultipleDeterministic(t *testing.T) {
	d := 10.0
	s := setback.SetbackSet{Front: &d, Rear: &d, Side: &d}
	specs := []Spec{{Type: "shed"}, {Type: "garage"}}

	first, err := TestMultiple(context.Background(), geom.Rect(0, 0, 100, 120), specs, s, Options{})
	if err != nil {
		t.Fatalf("TestMultiple() error: %v", err)
	}
	second, err := TestMultiple(context.Background(), geom.Rect(0, 0, 100, 120), specs, s, Options{})
	if err != nil {
		t.Fatalf("TestMultiple() repeat error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated layout search disagrees")
	}
}
