package obstacle

import (
	"testing"

	"github.com/landsight/parcelfit/pkg/geom"
)

func TestConflictFullOverlap(t *testing.T) {
	parcel := geom.Rect(0, 0, 100, 100)
	obstacles := []Obstacle{{
		ID:       "septic-1",
		Type:     TypeSeptic,
		Geometry: geom.Rect(10, 10, 10, 10),
	}}

	// Every point of this footprint is within the 50 ft septic clearance.
	proposal := geom.Rect(25, 25, 20, 20)

	a, err := Analyze(parcel, obstacles, Options{Proposal: proposal})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(a.Conflicts) != 1 {
		t.Fatalf("Conflicts = %+v, want exactly one", a.Conflicts)
	}

	c := a.Conflicts[0]
	if c.ObstacleID != "septic-1" || c.Type != TypeSeptic {
		t.Errorf("conflict identifies %q/%q, want septic-1", c.ObstacleID, c.Type)
	}
	if c.Severity != SeverityHigh {
		t.Errorf("Severity = %v, want high", c.Severity)
	}
	if !almostEqual(c.Area, 400, 1e-6) {
		t.Errorf("Area = %v, want the full 400 sq ft footprint", c.Area)
	}
	if !almostEqual(c.Percent, 100, 1e-6) {
		t.Errorf("Percent = %v, want 100", c.Percent)
	}
}

func TestConflictNone(t *testing.T) {
	parcel := geom.Rect(0, 0, 400, 400)
	obstacles := []Obstacle{{
		ID:       "tree-1",
		Type:     TypeTree,
		Geometry: geom.Rect(10, 10, 5, 5),
	}}

	// Far corner, hundreds of feet from the 15 ft tree clearance.
	proposal := geom.Rect(300, 300, 40, 30)

	a, err := Analyze(parcel, obstacles, Options{Proposal: proposal})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(a.Conflicts) != 0 {
		t.Errorf("Conflicts = %+v, want none", a.Conflicts)
	}
}

func TestConflictCarriesMitigation(t *testing.T) {
	parcel := geom.Rect(0, 0, 200, 200)
	obstacles := []Obstacle{{
		ID:             "shed-1",
		Type:           TypeExistingStructure,
		Geometry:       geom.Rect(50, 50, 12, 10),
		Removable:      true,
		MitigationCost: 3500,
	}}

	a, err := Analyze(parcel, obstacles, Options{Proposal: geom.Rect(55, 45, 20, 20)})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(a.Conflicts) != 1 {
		t.Fatalf("Conflicts = %+v, want one", a.Conflicts)
	}
	c := a.Conflicts[0]
	if !c.Removable || c.MitigationCost != 3500 {
		t.Errorf("conflict = %+v, want removable with cost 3500", c)
	}
	if c.Percent <= 0 || c.Percent >= 100 {
		t.Errorf("Percent = %v, want a partial overlap", c.Percent)
	}
}

func TestConflictInputOrder(t *testing.T) {
	parcel := geom.Rect(0, 0, 200, 200)

	// Both clearances overlap the footprint; report order must follow the
	// obstacle list, not tree traversal.
	obstacles := []Obstacle{
		{ID: "first", Type: TypeUtilityLine, Geometry: geom.Rect(95, -10, 4, 220)},
		{ID: "second", Type: TypeSeptic, Geometry: geom.Rect(120, 90, 10, 10)},
	}

	a, err := Analyze(parcel, obstacles, Options{Proposal: geom.Rect(90, 90, 30, 20)})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(a.Conflicts) != 2 {
		t.Fatalf("Conflicts = %+v, want two", a.Conflicts)
	}
	if a.Conflicts[0].ObstacleID != "first" || a.Conflicts[1].ObstacleID != "second" {
		t.Errorf("order = %q, %q, want first, second",
			a.Conflicts[0].ObstacleID, a.Conflicts[1].ObstacleID)
	}
}
