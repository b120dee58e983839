package adapt

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/landsight/parcelfit/pkg/geom"
)

// spatialRef carries the ArcGIS well-known CRS identifier when present.
type spatialRef struct {
	WKID int `json:"wkid"`
}

// Geographic well-known IDs: WGS84 and NAD83. Anything else is treated as a
// local planar frame already measured in feet.
func (s *spatialRef) known() bool { return s != nil && s.WKID != 0 }

func (s *spatialRef) geographic() bool {
	return s != nil && (s.WKID == 4326 || s.WKID == 4269)
}

// arcGISGeometry mirrors the esriGeometryPolygon JSON shape.
type arcGISGeometry struct {
	Rings            [][][]float64 `json:"rings"`
	SpatialReference *spatialRef   `json:"spatialReference"`
}

func matchesArcGIS(raw []byte) bool {
	var g struct {
		Rings json.RawMessage `json:"rings"`
	}
	if err := json.Unmarshal(raw, &g); err != nil {
		return false
	}
	return len(g.Rings) > 0
}

// decodeArcGIS reads an ArcGIS polygon. Esri winds exterior rings clockwise
// and holes counterclockwise, so rings are partitioned by signed area and
// holes attached to the shell containing them. Ring sets with no clockwise
// ring (reversed exports exist in the wild) fall back to treating every ring
// as a shell.
func decodeArcGIS(raw []byte) (orb.MultiPolygon, *spatialRef, error) {
	var g arcGISGeometry
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, nil, err
	}
	if len(g.Rings) == 0 {
		return nil, nil, fmt.Errorf("%w: no rings", geom.ErrInvalidGeometry)
	}

	rings := make([]orb.Ring, 0, len(g.Rings))
	for _, r := range g.Rings {
		if !validRing(r) {
			return nil, nil, fmt.Errorf("%w: ring with fewer than 3 coordinate pairs", geom.ErrInvalidGeometry)
		}
		rings = append(rings, toRing(r))
	}
	return assembleEsri(rings), g.SpatialReference, nil
}

func assembleEsri(rings []orb.Ring) orb.MultiPolygon {
	var shells orb.MultiPolygon
	var holes []orb.Ring
	for _, r := range rings {
		if signedArea(r) < 0 {
			shells = append(shells, orb.Polygon{r})
		} else {
			holes = append(holes, r)
		}
	}
	if len(shells) == 0 {
		shells = make(orb.MultiPolygon, 0, len(holes))
		for _, r := range holes {
			shells = append(shells, orb.Polygon{r})
		}
		return shells
	}
	for _, h := range holes {
		if len(h) == 0 {
			continue
		}
		for i := range shells {
			if planar.PolygonContains(orb.Polygon{shells[i][0]}, h[0]) {
				shells[i] = append(shells[i], h)
				break
			}
		}
	}
	return shells
}

// signedArea is the shoelace sum: positive for counterclockwise rings.
func signedArea(r orb.Ring) float64 {
	if len(r) < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < len(r); i++ {
		j := (i + 1) % len(r)
		sum += r[i][0]*r[j][1] - r[j][0]*r[i][1]
	}
	return sum / 2
}
