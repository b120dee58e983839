package geom

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestErodeRectangleExact(t *testing.T) {
	// The canonical setback scenario: an 80×100 ft parcel eroded by a
	// uniform 20 ft leaves a 40×60 ft interior, 2,400 sq ft.
	parcel := orb.MultiPolygon{Rect(0, 0, 80, 100)}

	inner, err := Erode(parcel, 20)
	if err != nil {
		t.Fatalf("Erode: %v", err)
	}
	if len(inner) != 1 {
		t.Fatalf("expected a single part, got %d", len(inner))
	}
	if got := Area(inner); !almostEqual(got, 2400, 1e-6) {
		t.Errorf("Area = %v, want 2400", got)
	}

	b := inner.Bound()
	w, h := Dims(b)
	if !almostEqual(w, 40, 1e-6) || !almostEqual(h, 60, 1e-6) {
		t.Errorf("dims = %v×%v, want 40×60", w, h)
	}
	if !almostEqual(b.Min[0], 20, 1e-6) || !almostEqual(b.Min[1], 20, 1e-6) {
		t.Errorf("origin = %v, want (20, 20)", b.Min)
	}
}

func TestErodeMonotonic(t *testing.T) {
	parcel := orb.MultiPolygon{orb.Polygon{orb.Ring{
		{0, 0}, {120, 0}, {120, 80}, {60, 80}, {60, 120}, {0, 120}, {0, 0},
	}}}

	prev := Area(parcel)
	for _, d := range []float64{5, 10, 15, 20, 30, 45} {
		inner, err := Erode(parcel, d)
		if err != nil {
			t.Fatalf("Erode(%v): %v", d, err)
		}
		got := Area(inner)
		if got > prev+1e-9 {
			t.Errorf("Erode(%v) area %v exceeds previous %v", d, got, prev)
		}
		prev = got
	}
}

func TestErodeToEmpty(t *testing.T) {
	parcel := orb.MultiPolygon{Rect(0, 0, 30, 30)}

	inner, err := Erode(parcel, 20)
	if err != nil {
		t.Fatalf("Erode: %v", err)
	}
	if inner == nil {
		t.Fatal("expected non-nil empty result")
	}
	if got := Area(inner); got != 0 {
		t.Errorf("Area = %v, want 0", got)
	}
}

func TestErodeZeroDistance(t *testing.T) {
	parcel := orb.MultiPolygon{Rect(0, 0, 50, 50)}
	out, err := Erode(parcel, 0)
	if err != nil {
		t.Fatalf("Erode: %v", err)
	}
	if got := Area(out); !almostEqual(got, 2500, 1e-9) {
		t.Errorf("Area = %v, want 2500", got)
	}
}

func TestErodeReflexCorner(t *testing.T) {
	// An L-shaped parcel: erosion must clear the collar on both sides of
	// the reflex corner, so the result is strictly smaller than naive edge
	// offsetting of each arm.
	l := orb.MultiPolygon{orb.Polygon{orb.Ring{
		{0, 0}, {100, 0}, {100, 40}, {40, 40}, {40, 100}, {0, 100}, {0, 0},
	}}}
	area := Area(l)

	inner, err := Erode(l, 10)
	if err != nil {
		t.Fatalf("Erode: %v", err)
	}
	got := Area(inner)
	if got <= 0 || got >= area {
		t.Fatalf("Area = %v, want within (0, %v)", got, area)
	}
	// Each point of the eroded region must be at least 10 ft from the
	// boundary; (35, 35) sits 7.07 ft from the reflex corner at (40, 40)
	// and farther than 10 ft from every edge, so only the corner disc can
	// remove it.
	if ContainsPoint(inner, orb.Point{35, 35}) {
		t.Error("point within 10 ft of reflex corner survived erosion")
	}
	if !ContainsPoint(inner, orb.Point{20, 20}) {
		t.Error("deep interior point was eroded")
	}
}

func TestDilateGrows(t *testing.T) {
	square := orb.MultiPolygon{Rect(0, 0, 20, 20)}

	out, err := Dilate(square, 10)
	if err != nil {
		t.Fatalf("Dilate: %v", err)
	}
	// Lower bound: original + four edge bands. Corner fans add more.
	if got := Area(out); got < 400+4*200 {
		t.Errorf("Area = %v, want at least 1200", got)
	}
	for _, pt := range []orb.Point{{-9, 10}, {29, 10}, {10, -9}, {10, 29}} {
		if !ContainsPoint(out, pt) {
			t.Errorf("point %v within buffer distance not covered", pt)
		}
	}
	if ContainsPoint(out, orb.Point{-11, 10}) {
		t.Error("point beyond buffer distance covered")
	}
}

func TestDilateErodeIdempotent(t *testing.T) {
	parcel := orb.MultiPolygon{Rect(0, 0, 80, 100)}

	first, err := Erode(parcel, 15)
	if err != nil {
		t.Fatalf("Erode: %v", err)
	}
	second, err := Erode(parcel, 15)
	if err != nil {
		t.Fatalf("Erode: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("part counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if len(first[i]) != len(second[i]) {
			t.Fatalf("ring counts differ in part %d", i)
		}
		for j := range first[i] {
			for k := range first[i][j] {
				if first[i][j][k] != second[i][j][k] {
					t.Fatalf("vertex %d/%d/%d differs: %v vs %v",
						i, j, k, first[i][j][k], second[i][j][k])
				}
			}
		}
	}
}
