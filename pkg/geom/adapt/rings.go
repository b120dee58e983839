package adapt

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/geom"
)

func matchesRings(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// decodeRings accepts bare coordinate arrays: either one ring
// ([[x,y], ...]) or a list of rings where the first is the shell and the
// rest are holes.
func decodeRings(raw []byte) (orb.MultiPolygon, *spatialRef, error) {
	var single [][]float64
	if err := json.Unmarshal(raw, &single); err == nil && validRing(single) {
		return orb.MultiPolygon{orb.Polygon{toRing(single)}}, nil, nil
	}

	var multi [][][]float64
	if err := json.Unmarshal(raw, &multi); err == nil {
		poly := make(orb.Polygon, 0, len(multi))
		for _, r := range multi {
			if !validRing(r) {
				return nil, nil, fmt.Errorf("%w: ring with fewer than 3 coordinate pairs", geom.ErrInvalidGeometry)
			}
			poly = append(poly, toRing(r))
		}
		if len(poly) > 0 {
			return orb.MultiPolygon{poly}, nil, nil
		}
	}

	return nil, nil, fmt.Errorf("%w: not a coordinate array", geom.ErrInvalidGeometry)
}

func validRing(r [][]float64) bool {
	if len(r) < 3 {
		return false
	}
	for _, pt := range r {
		if len(pt) < 2 {
			return false
		}
	}
	return true
}

func toRing(r [][]float64) orb.Ring {
	ring := make(orb.Ring, len(r))
	for i, pt := range r {
		ring[i] = orb.Point{pt[0], pt[1]}
	}
	return ring
}
