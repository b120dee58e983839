package obstacle

import (
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/geom"
)

// Conflict records a proposed footprint overlapping one constraint zone.
type Conflict struct {
	ObstacleID string
	Type       Type
	Severity   Severity

	// Overlap is the intersection geometry; Area its size in square feet;
	// Percent the share of the proposal footprint it covers (0-100).
	Overlap orb.MultiPolygon
	Area    float64
	Percent float64

	Removable      bool
	MitigationCost float64
}

// zoneSpatial adapts one buffered zone to the rtreego.Spatial interface.
type zoneSpatial struct {
	index int
	rect  rtreego.Rect
}

func (z *zoneSpatial) Bounds() rtreego.Rect { return z.rect }

// conflicts intersects the proposal with every zone whose bounding box it
// touches. The R-tree only prunes; results follow obstacle input order.
func conflicts(proposal orb.Polygon, obstacles []Obstacle, zones []orb.MultiPolygon) ([]Conflict, error) {
	prop := orb.MultiPolygon{proposal}
	propArea := geom.Area(proposal)
	if propArea <= 0 {
		return nil, fmt.Errorf("conflict check: proposal has no area: %w", geom.ErrInvalidGeometry)
	}

	tree := rtreego.NewTree(2, 25, 50)
	for i, z := range zones {
		if len(z) == 0 {
			continue
		}
		tree.Insert(&zoneSpatial{index: i, rect: boundRect(z.Bound())})
	}

	hits := tree.SearchIntersect(boundRect(proposal.Bound()))
	candidates := make([]int, 0, len(hits))
	for _, h := range hits {
		candidates = append(candidates, h.(*zoneSpatial).index)
	}
	sort.Ints(candidates)

	var out []Conflict
	for _, i := range candidates {
		overlap, err := geom.Intersection(prop, zones[i])
		if err != nil {
			return nil, fmt.Errorf("conflict check: obstacle %q: %w", obstacles[i].ID, err)
		}
		area := geom.Area(overlap)
		if area <= 0 {
			continue
		}
		o := obstacles[i]
		out = append(out, Conflict{
			ObstacleID:     o.ID,
			Type:           o.Type,
			Severity:       o.severity(),
			Overlap:        overlap,
			Area:           area,
			Percent:        100 * area / propArea,
			Removable:      o.Removable,
			MitigationCost: o.MitigationCost,
		})
	}
	return out, nil
}

// boundRect converts an orb bounding box into an rtreego rectangle,
// padding degenerate extents so the conversion cannot fail.
func boundRect(b orb.Bound) rtreego.Rect {
	w := b.Max[0] - b.Min[0]
	h := b.Max[1] - b.Min[1]
	const pad = 1e-9
	if w <= 0 {
		w = pad
	}
	if h <= 0 {
		h = pad
	}
	rect, _ := rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{w, h})
	return rect
}
