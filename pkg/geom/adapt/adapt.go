package adapt

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/landsight/parcelfit/pkg/geom"
)

// ErrUnknownFormat is returned when raw bytes match none of the recognized
// geometry encodings.
var ErrUnknownFormat = errors.New("unrecognized geometry format")

// Format identifies a raw geometry encoding.
type Format string

const (
	FormatGeoJSON Format = "geojson"
	FormatArcGIS  Format = "arcgis"
	FormatRings   Format = "rings"
)

// CRS declares how input coordinates should be interpreted.
type CRS int

const (
	// CRSAuto picks per the format's convention: GeoJSON is always
	// geographic, ArcGIS follows its spatialReference, bare rings are
	// sniffed by coordinate magnitude.
	CRSAuto CRS = iota

	// CRSGeographic forces WGS84 longitude/latitude interpretation.
	CRSGeographic

	// CRSPlanar forces local planar feet; no projection is applied.
	CRSPlanar
)

// Options configures decoding.
type Options struct {
	// CRS overrides coordinate interpretation. Zero value is [CRSAuto].
	CRS CRS

	// Projection, when non-nil, is reused for geographic input instead of
	// anchoring a fresh one at the geometry's first vertex. Pass the parcel's
	// projection when decoding obstacles and buildings so all geometry for
	// one analysis shares a frame.
	Projection *geom.Projection
}

// Result is a decoded, repaired, locally projected geometry.
type Result struct {
	// Polygon holds the repaired geometry in local planar feet. Repair can
	// split a self-intersecting input into several parts.
	Polygon orb.MultiPolygon

	// Format records which encoding was detected.
	Format Format

	// Geographic reports whether the input was WGS84 degrees.
	Geographic bool

	// Projection is the frame used for geographic input, nil for planar
	// input. Outward-facing results must be inverse-projected through it.
	Projection *geom.Projection
}

// Primary returns the largest part of the decoded geometry. Single-part
// inputs round-trip unchanged; repaired multi-part inputs yield the dominant
// lobe, which is what parcel-level analysis wants.
func (r *Result) Primary() orb.Polygon {
	p, _ := geom.LargestPart(r.Polygon)
	return p
}

// decoder is one recognized encoding. Decoders are tried in order, the way
// manifest formats are sniffed: cheap structural checks first, then a full
// decode.
type decoder struct {
	format  Format
	matches func(raw []byte) bool
	decode  func(raw []byte) (orb.MultiPolygon, *spatialRef, error)
}

var decoders = []decoder{
	{FormatGeoJSON, matchesGeoJSON, decodeGeoJSON},
	{FormatArcGIS, matchesArcGIS, decodeArcGIS},
	{FormatRings, matchesRings, decodeRings},
}

// Detect identifies the encoding of raw without fully decoding it.
func Detect(raw []byte) (Format, error) {
	for _, d := range decoders {
		if d.matches(raw) {
			return d.format, nil
		}
	}
	return "", fmt.Errorf("%w: expected geojson, arcgis rings, or a coordinate array", ErrUnknownFormat)
}

// ToPolygon decodes raw geometry into the local planar frame.
//
// The pipeline is detect → decode → project (if geographic) → repair. Any
// unrepairable input returns an error wrapping [geom.ErrInvalidGeometry];
// unrecognized bytes return [ErrUnknownFormat].
func ToPolygon(raw []byte, opts Options) (*Result, error) {
	for _, d := range decoders {
		if !d.matches(raw) {
			continue
		}
		mp, ref, err := d.decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", d.format, err)
		}
		return finish(mp, d.format, ref, opts)
	}
	return nil, fmt.Errorf("%w: expected geojson, arcgis rings, or a coordinate array", ErrUnknownFormat)
}

// FromRings builds a Result from in-memory rings, applying the same
// projection and repair rules as [ToPolygon]. The first ring is the shell,
// the rest are holes.
func FromRings(rings [][]orb.Point, opts Options) (*Result, error) {
	poly := make(orb.Polygon, 0, len(rings))
	for _, r := range rings {
		poly = append(poly, orb.Ring(r))
	}
	return finish(orb.MultiPolygon{poly}, FormatRings, nil, opts)
}

// finish applies coordinate interpretation, projection, and repair.
func finish(mp orb.MultiPolygon, format Format, ref *spatialRef, opts Options) (*Result, error) {
	if len(mp) == 0 {
		return nil, fmt.Errorf("%w: no rings", geom.ErrInvalidGeometry)
	}

	geographic := false
	switch opts.CRS {
	case CRSGeographic:
		geographic = true
	case CRSPlanar:
		geographic = false
	default:
		switch {
		case format == FormatGeoJSON:
			geographic = true
		case ref != nil && ref.known():
			geographic = ref.geographic()
		default:
			geographic = geom.LooksGeographic(firstPolygon(mp))
		}
	}

	res := &Result{Format: format, Geographic: geographic, Projection: opts.Projection}
	if geographic {
		if res.Projection == nil {
			anchor, ok := firstVertex(mp)
			if !ok {
				return nil, fmt.Errorf("%w: no vertices", geom.ErrInvalidGeometry)
			}
			res.Projection = geom.NewProjection(anchor)
		}
		mp = res.Projection.ForwardMulti(mp)
	} else {
		res.Projection = nil
	}

	repaired, err := geom.RepairMulti(mp)
	if err != nil {
		return nil, err
	}
	res.Polygon = repaired
	return res, nil
}

// ToGeoJSON serializes local-frame geometry for external consumers. When pj
// is non-nil the geometry is inverse-projected to WGS84 first; planar
// geometry is emitted as-is.
func ToGeoJSON(m orb.MultiPolygon, pj *geom.Projection) ([]byte, error) {
	out := m
	if pj != nil {
		out = pj.InverseMulti(m)
	}
	g := geojson.NewGeometry(orb.MultiPolygon(out))
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	return data, nil
}

func firstPolygon(mp orb.MultiPolygon) orb.Polygon {
	if len(mp) == 0 {
		return nil
	}
	return mp[0]
}

func firstVertex(mp orb.MultiPolygon) (orb.Point, bool) {
	for _, p := range mp {
		for _, r := range p {
			if len(r) > 0 {
				return r[0], true
			}
		}
	}
	return orb.Point{}, false
}
