package yard

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/geom"
)

// Privacy score shape. Distance from the lot line earns up to 10 points
// on its own; each screening building adds a fixed boost before the
// distance share is applied.
const (
	privacyDistanceDivisor = 3.0 // feet of boundary distance per point
	privacyDistanceWeight  = 0.7
	privacyScreeningPoints = 1.5 // per screening building
)

// screenIndex answers which buildings sit near an outdoor part without
// scanning every footprint.
type screenIndex struct {
	tree      *rtreego.Rtree
	buildings []orb.Polygon
}

// buildingSpatial adapts one footprint to the rtreego.Spatial interface.
type buildingSpatial struct {
	index int
	rect  rtreego.Rect
}

func (b *buildingSpatial) Bounds() rtreego.Rect { return b.rect }

// newScreenIndex builds a spatial index over the building footprints.
func newScreenIndex(buildings []orb.Polygon) *screenIndex {
	s := &screenIndex{tree: rtreego.NewTree(2, 25, 50), buildings: buildings}
	for i, b := range buildings {
		if len(b) == 0 {
			continue
		}
		s.tree.Insert(&buildingSpatial{index: i, rect: footprintRect(b.Bound(), 0)})
	}
	return s
}

// near counts buildings within radius feet of p. The index prunes; the
// exact ring distance decides.
func (s *screenIndex) near(p orb.Polygon, radius float64) int {
	if len(s.buildings) == 0 || len(p) == 0 {
		return 0
	}
	count := 0
	for _, hit := range s.tree.SearchIntersect(footprintRect(p.Bound(), radius)) {
		b := s.buildings[hit.(*buildingSpatial).index]
		if geom.MinDistance(p, b) <= radius {
			count++
		}
	}
	return count
}

// privacy grades one backyard part from its distance to the lot line and
// the buildings that screen it.
func privacy(oa OutdoorArea, parcel orb.Polygon, screen *screenIndex, cfg Config) Privacy {
	p := Privacy{
		BoundaryDistance: geom.DistanceToBoundary(oa.Centroid, parcel),
		Screening:        screen.near(oa.Geometry, cfg.ScreeningRadius),
	}
	distScore := math.Min(10, p.BoundaryDistance/privacyDistanceDivisor)
	p.Score = math.Min(10, privacyDistanceWeight*distScore+privacyScreeningPoints*float64(p.Screening))
	switch {
	case p.Score < cfg.PrivacyMediumMin:
		p.Level = LevelLow
	case p.Score < cfg.PrivacyHighMin:
		p.Level = LevelMedium
	default:
		p.Level = LevelHigh
	}
	return p
}

// footprintRect converts an orb bounding box into an rtreego rectangle
// grown by pad on every side, padding degenerate extents so the
// conversion cannot fail.
func footprintRect(b orb.Bound, pad float64) rtreego.Rect {
	w := b.Max[0] - b.Min[0] + 2*pad
	h := b.Max[1] - b.Min[1] + 2*pad
	const eps = 1e-9
	if w <= 0 {
		w = eps
	}
	if h <= 0 {
		h = eps
	}
	rect, _ := rtreego.NewRect(rtreego.Point{b.Min[0] - pad, b.Min[1] - pad}, []float64{w, h})
	return rect
}
