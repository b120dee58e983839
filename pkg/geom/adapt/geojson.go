package adapt

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/landsight/parcelfit/pkg/geom"
)

// geoJSONTypes are the document types this adapter extracts polygons from.
var geoJSONTypes = map[string]bool{
	"Polygon":           true,
	"MultiPolygon":      true,
	"Feature":           true,
	"FeatureCollection": true,
}

func matchesGeoJSON(raw []byte) bool {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return false
	}
	return geoJSONTypes[head.Type]
}

func decodeGeoJSON(raw []byte) (orb.MultiPolygon, *spatialRef, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, nil, err
	}

	var geoms []orb.Geometry
	switch head.Type {
	case "Feature":
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			return nil, nil, err
		}
		geoms = append(geoms, f.Geometry)
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(raw)
		if err != nil {
			return nil, nil, err
		}
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	default:
		g, err := geojson.UnmarshalGeometry(raw)
		if err != nil {
			return nil, nil, err
		}
		geoms = append(geoms, g.Geometry())
	}

	var mp orb.MultiPolygon
	for _, g := range geoms {
		switch v := g.(type) {
		case orb.Polygon:
			mp = append(mp, v)
		case orb.MultiPolygon:
			mp = append(mp, v...)
		default:
			// Points/lines in a collection are ignored; only area features
			// participate in parcel analysis.
		}
	}
	if len(mp) == 0 {
		return nil, nil, fmt.Errorf("%w: document contains no polygon features", geom.ErrInvalidGeometry)
	}
	return mp, nil, nil
}

