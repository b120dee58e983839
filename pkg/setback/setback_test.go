package setback

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/geom"
	"github.com/landsight/parcelfit/pkg/rules"
)

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func ptr(v float64) *float64 { return &v }

// shoelace recomputes ring area without going through the geom package, so
// engine results can be cross-checked independently.
func shoelace(r orb.Ring) float64 {
	var s float64
	for i := range r {
		j := (i + 1) % len(r)
		s += r[i][0]*r[j][1] - r[j][0]*r[i][1]
	}
	return math.Abs(s / 2)
}

func TestBuildableAreaUniformSetback(t *testing.T) {
	parcel := geom.Rect(0, 0, 80, 100)
	s := SetbackSet{Front: ptr(20), Rear: ptr(20), Side: ptr(20)}

	res, err := BuildableArea(parcel, s, nil)
	if err != nil {
		t.Fatalf("BuildableArea: %v", err)
	}
	if res.Empty() {
		t.Fatal("result unexpectedly empty")
	}
	if !almostEqual(res.Area, 2400, 1e-6) {
		t.Errorf("Area = %v, want 2400", res.Area)
	}
	if res.Setback != 20 {
		t.Errorf("Setback = %v, want 20", res.Setback)
	}
	if len(res.Buildable) != 1 || len(res.PartAreas) != 1 {
		t.Fatalf("expected one part, got %d", len(res.Buildable))
	}

	w, h := geom.Dims(res.LargestPart.Bound())
	if !almostEqual(w, 40, 1e-6) || !almostEqual(h, 60, 1e-6) {
		t.Errorf("dims = %v×%v, want 40×60", w, h)
	}

	// Independent recomputation of the reported area.
	if got := shoelace(res.LargestPart[0]); !almostEqual(got, res.Area, 1e-6) {
		t.Errorf("shoelace area %v disagrees with reported %v", got, res.Area)
	}
}

func TestBuildableAreaMaxDistanceWins(t *testing.T) {
	parcel := geom.Rect(0, 0, 80, 100)
	s := SetbackSet{Front: ptr(10), Rear: ptr(25), Side: ptr(5)}

	res, err := BuildableArea(parcel, s, nil)
	if err != nil {
		t.Fatalf("BuildableArea: %v", err)
	}
	// Uniform erosion by the largest distance: (80-50) × (100-50).
	if !almostEqual(res.Area, 1500, 1e-6) {
		t.Errorf("Area = %v, want 1500", res.Area)
	}
	if res.Setback != 25 {
		t.Errorf("Setback = %v, want 25", res.Setback)
	}
}

func TestBuildableAreaSubtractsExisting(t *testing.T) {
	parcel := geom.Rect(0, 0, 80, 100)
	s := SetbackSet{Front: ptr(10), Rear: ptr(10), Side: ptr(10)}

	// A full-height strip through the middle splits the core in two.
	strip := geom.Rect(35, 0, 10, 100)

	res, err := BuildableArea(parcel, s, []orb.Polygon{strip})
	if err != nil {
		t.Fatalf("BuildableArea: %v", err)
	}
	if len(res.Buildable) != 2 {
		t.Fatalf("parts = %d, want 2", len(res.Buildable))
	}
	if !almostEqual(res.Area, 4000, 1e-6) {
		t.Errorf("Area = %v, want 4000", res.Area)
	}
	for i, a := range res.PartAreas {
		if !almostEqual(a, 2000, 1e-6) {
			t.Errorf("PartAreas[%d] = %v, want 2000", i, a)
		}
	}
	if got := geom.Area(res.LargestPart); !almostEqual(got, 2000, 1e-6) {
		t.Errorf("largest part area = %v, want 2000", got)
	}
}

func TestBuildableAreaEmpty(t *testing.T) {
	parcel := geom.Rect(0, 0, 50, 50)
	s := SetbackSet{Front: ptr(25), Rear: ptr(25), Side: ptr(25)}

	res, err := BuildableArea(parcel, s, nil)
	if err != nil {
		t.Fatalf("BuildableArea returned error for unbuildable parcel: %v", err)
	}
	if !res.Empty() {
		t.Errorf("Empty() = false, Area = %v, want empty result", res.Area)
	}
}

func TestBuildableAreaNoConstraints(t *testing.T) {
	parcel := geom.Rect(0, 0, 50, 100)

	res, err := BuildableArea(parcel, SetbackSet{}, nil)
	if err != nil {
		t.Fatalf("BuildableArea: %v", err)
	}
	if !almostEqual(res.Area, 5000, 1e-6) {
		t.Errorf("Area = %v, want full parcel area 5000", res.Area)
	}
	if res.Setback != 0 {
		t.Errorf("Setback = %v, want 0", res.Setback)
	}
}

func TestBuildableAreaMonotonic(t *testing.T) {
	parcel := geom.Rect(0, 0, 80, 100)

	prev := math.Inf(1)
	for _, d := range []float64{5, 10, 15, 20, 30, 39} {
		res, err := BuildableArea(parcel, SetbackSet{Front: ptr(d), Rear: ptr(d), Side: ptr(d)}, nil)
		if err != nil {
			t.Fatalf("BuildableArea(%v): %v", d, err)
		}
		if res.Area > prev+1e-9 {
			t.Errorf("setback %v grew buildable area: %v > %v", d, res.Area, prev)
		}
		prev = res.Area
	}
}

func TestBuildableAreaDeterministic(t *testing.T) {
	parcel := orb.Polygon{orb.Ring{
		{0, 0}, {90, 5}, {110, 70}, {40, 95}, {-5, 60}, {0, 0},
	}}
	s := SetbackSet{Front: ptr(12), Side: ptr(8)}
	existing := []orb.Polygon{geom.Rect(30, 30, 20, 15)}

	a, err := BuildableArea(parcel, s, existing)
	if err != nil {
		t.Fatalf("BuildableArea: %v", err)
	}
	b, err := BuildableArea(parcel, s, existing)
	if err != nil {
		t.Fatalf("BuildableArea: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical input produced different results")
	}
}

func TestBuildableAreaInvalidParcel(t *testing.T) {
	degenerate := orb.Polygon{orb.Ring{{0, 0}, {10, 0}, {0, 0}}}

	_, err := BuildableArea(degenerate, SetbackSet{Front: ptr(10)}, nil)
	if !errors.Is(err, geom.ErrInvalidGeometry) {
		t.Errorf("err = %v, want ErrInvalidGeometry", err)
	}
}

func TestFromRules(t *testing.T) {
	tests := []struct {
		name string
		in   rules.SetbackRules
		want SetbackSet
	}{
		{
			name: "general fills unnamed directions",
			in:   rules.SetbackRules{General: ptr(25)},
			want: SetbackSet{Front: ptr(25), Rear: ptr(25), Side: ptr(25)},
		},
		{
			name: "explicit direction wins over general",
			in:   rules.SetbackRules{Front: ptr(30), General: ptr(25)},
			want: SetbackSet{Front: ptr(30), Rear: ptr(25), Side: ptr(25)},
		},
		{
			name: "corner side never inherits general",
			in:   rules.SetbackRules{General: ptr(25), CornerSide: ptr(15)},
			want: SetbackSet{Front: ptr(25), Rear: ptr(25), Side: ptr(25), CornerSide: ptr(15)},
		},
		{
			name: "empty",
			in:   rules.SetbackRules{},
			want: SetbackSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromRules(tt.in)
			if !reflect.DeepEqual(deref(got), deref(tt.want)) {
				t.Errorf("FromRules() = %+v, want %+v", deref(got), deref(tt.want))
			}
		})
	}
}

// deref flattens a SetbackSet into comparable values, negative infinity
// standing in for unconstrained directions.
func deref(s SetbackSet) [4]float64 {
	var out [4]float64
	for i, v := range []*float64{s.Front, s.Rear, s.Side, s.CornerSide} {
		if v == nil {
			out[i] = math.Inf(-1)
		} else {
			out[i] = *v
		}
	}
	return out
}

func TestSetbackSetMax(t *testing.T) {
	tests := []struct {
		name string
		s    SetbackSet
		want float64
	}{
		{"empty", SetbackSet{}, 0},
		{"single", SetbackSet{Front: ptr(20)}, 20},
		{"largest of several", SetbackSet{Front: ptr(10), Rear: ptr(25), Side: ptr(5)}, 25},
		{"corner side counts", SetbackSet{Side: ptr(8), CornerSide: ptr(15)}, 15},
		{"negative ignored", SetbackSet{Front: ptr(-5)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Max(); got != tt.want {
				t.Errorf("Max() = %v, want %v", got, tt.want)
			}
		})
	}
}
