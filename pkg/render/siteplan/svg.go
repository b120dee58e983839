package siteplan

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/feasibility"
	"github.com/landsight/parcelfit/pkg/geom"
	"github.com/landsight/parcelfit/pkg/placement"
)

const (
	defaultScale = 4.0  // pixels per foot
	framePad     = 24.0 // margin around the drawing, pixels
	titleBand    = 32.0 // extra headroom when a title is set, pixels
)

// layerStyle is the paint for one scene layer.
type layerStyle struct {
	fill        string
	fillOpacity float64 // 0 means opaque
	stroke      string
	strokeWidth float64
	dash        string
}

// Severity fills follow the report's high/medium/low split; everything
// else stays muted so the zones read first.
var (
	parcelStyle     = layerStyle{fill: "#f7fafc"}
	lotLineStyle    = layerStyle{fill: "none", stroke: "#2d3748", strokeWidth: 2}
	buildableStyle  = layerStyle{fill: "#48bb78", fillOpacity: 0.3, stroke: "#2f855a", strokeWidth: 1.5, dash: "6 4"}
	yardStyle       = layerStyle{fill: "#9ae6b4", fillOpacity: 0.35}
	zoneLowStyle    = layerStyle{fill: "#ecc94b", fillOpacity: 0.4, stroke: "#ecc94b"}
	zoneMediumStyle = layerStyle{fill: "#ed8936", fillOpacity: 0.4, stroke: "#ed8936"}
	zoneHighStyle   = layerStyle{fill: "#e53e3e", fillOpacity: 0.4, stroke: "#e53e3e"}
	footprintStyle  = layerStyle{fill: "#4a5568", fillOpacity: 0.85, stroke: "#1a202c", strokeWidth: 1.5}
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	sceneOpts
	scale float64
	title string
}

// WithPlacements draws the recommended building footprint from the
// report's placement section.
func WithPlacements() SVGOption { return func(r *svgRenderer) { r.placements = true } }

// WithZones draws the buffered constraint zones colored by severity,
// high on top.
func WithZones() SVGOption { return func(r *svgRenderer) { r.zones = true } }

// WithYards shades the outdoor space parts.
func WithYards() SVGOption { return func(r *svgRenderer) { r.yards = true } }

// WithCandidates draws the given candidates instead of the report's
// recommended footprint, for sketching a whole search result. Implies
// [WithPlacements].
func WithCandidates(cands []placement.Candidate) SVGOption {
	return func(r *svgRenderer) { r.placements = true; r.candidates = cands }
}

// WithScale sets the drawing scale in pixels per foot. The default is 4.
func WithScale(pxPerFt float64) SVGOption { return func(r *svgRenderer) { r.scale = pxPerFt } }

// WithTitle writes a caption above the drawing.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// RenderSVG sketches a feasibility report as an SVG site plan with
// north up. The base drawing is the parcel and its buildable region;
// [WithZones], [WithYards], and [WithPlacements] stack further layers,
// and the lot line is redrawn on top so the boundary stays crisp. A nil
// report renders an empty frame.
func RenderSVG(rep *feasibility.Report, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	sc := buildScene(rep, r.sceneOpts)

	w, h := frameSize(sc.bound, r.scale, r.title != "")
	pl := newPlane(sc.bound, r.scale, r.title != "")

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, `  <rect width="%.1f" height="%.1f" fill="#ffffff"/>`+"\n", w, h)
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-family="ui-monospace, Menlo, monospace" font-size="15" fill="#1a202c">%s</text>`+"\n",
			framePad, framePad+12, escapeXML(r.title))
	}

	renderLayer(&buf, pl, "parcel", parcelStyle, sc.parcel)
	renderLayer(&buf, pl, "yard", yardStyle, sc.yards...)
	renderLayer(&buf, pl, "buildable", buildableStyle, sc.buildable...)
	renderLayer(&buf, pl, "zone zone-low", zoneLowStyle, sc.zoneLow...)
	renderLayer(&buf, pl, "zone zone-medium", zoneMediumStyle, sc.zoneMedium...)
	renderLayer(&buf, pl, "zone zone-high", zoneHighStyle, sc.zoneHigh...)
	renderLayer(&buf, pl, "footprint", footprintStyle, sc.footprints...)
	renderLayer(&buf, pl, "lot-line", lotLineStyle, sc.parcel)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{scale: defaultScale}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		r.scale = defaultScale
	}
	return r
}

// sceneOpts selects which report layers enter the scene.
type sceneOpts struct {
	zones      bool
	yards      bool
	placements bool
	candidates []placement.Candidate
}

// scene is the drawable extract of a report: geometry layers plus the
// bound framing them all.
type scene struct {
	bound orb.Bound

	parcel     orb.Polygon
	buildable  orb.MultiPolygon
	zoneHigh   orb.MultiPolygon
	zoneMedium orb.MultiPolygon
	zoneLow    orb.MultiPolygon
	yards      []orb.Polygon
	footprints []orb.Polygon
}

func buildScene(rep *feasibility.Report, o sceneOpts) scene {
	var sc scene
	if rep == nil {
		return sc
	}
	sc.parcel = rep.Parcel.Outline
	sc.buildable = rep.Buildable.Region
	if o.zones {
		sc.zoneHigh = rep.Obstacles.ZoneHigh
		sc.zoneMedium = rep.Obstacles.ZoneMedium
		sc.zoneLow = rep.Obstacles.ZoneLow
	}
	if o.yards {
		sc.yards = rep.Yard.Parts
	}
	if o.placements {
		switch {
		case len(o.candidates) > 0:
			for _, c := range o.candidates {
				sc.footprints = append(sc.footprints, c.Footprint)
			}
		case rep.Placement != nil && rep.Placement.Recommended != nil:
			sc.footprints = append(sc.footprints, rep.Placement.Recommended.Footprint)
		}
	}
	sc.frame()
	return sc
}

// frame computes the bound covering every layer. Constraint zones can
// spill past the lot line, so the frame follows the drawn geometry
// rather than the parcel alone.
func (s *scene) frame() {
	first := true
	grow := func(b orb.Bound) {
		if b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] {
			return
		}
		if first {
			s.bound, first = b, false
			return
		}
		s.bound = s.bound.Extend(b.Min)
		s.bound = s.bound.Extend(b.Max)
	}

	grow(s.parcel.Bound())
	grow(s.buildable.Bound())
	grow(s.zoneHigh.Bound())
	grow(s.zoneMedium.Bound())
	grow(s.zoneLow.Bound())
	for _, p := range s.yards {
		grow(p.Bound())
	}
	for _, p := range s.footprints {
		grow(p.Bound())
	}
}

func frameSize(b orb.Bound, scale float64, titled bool) (w, h float64) {
	fw, fh := geom.Dims(b)
	w = fw*scale + 2*framePad
	h = fh*scale + 2*framePad
	if titled {
		h += titleBand
	}
	return w, h
}

// plane maps site feet onto the pixel grid. Site y grows north and SVG
// y grows down, so y flips around the scene top.
type plane struct {
	scale      float64
	minX, maxY float64
	padX, padY float64
}

func newPlane(b orb.Bound, scale float64, titled bool) plane {
	padY := framePad
	if titled {
		padY += titleBand
	}
	return plane{scale: scale, minX: b.Min[0], maxY: b.Max[1], padX: framePad, padY: padY}
}

func (p plane) x(ft float64) float64 { return p.padX + (ft-p.minX)*p.scale }
func (p plane) y(ft float64) float64 { return p.padY + (p.maxY-ft)*p.scale }

func renderLayer(buf *bytes.Buffer, pl plane, class string, st layerStyle, polys ...orb.Polygon) {
	for _, p := range polys {
		if len(p) == 0 {
			continue
		}
		fmt.Fprintf(buf, `  <path class="%s" d="%s" fill-rule="evenodd" fill="%s"`, class, pathData(p, pl), st.fill)
		if st.fillOpacity > 0 && st.fillOpacity < 1 {
			fmt.Fprintf(buf, ` fill-opacity="%.2f"`, st.fillOpacity)
		}
		if st.stroke != "" {
			fmt.Fprintf(buf, ` stroke="%s"`, st.stroke)
			if st.strokeWidth > 0 {
				fmt.Fprintf(buf, ` stroke-width="%.1f"`, st.strokeWidth)
			}
			if st.dash != "" {
				fmt.Fprintf(buf, ` stroke-dasharray="%s"`, st.dash)
			}
		}
		buf.WriteString("/>\n")
	}
}

// pathData writes p as one subpath per ring so holes render through
// fill-rule="evenodd". A ring's closing vertex is dropped in favor of
// the Z command.
func pathData(p orb.Polygon, pl plane) string {
	var d strings.Builder
	for _, ring := range p {
		pts := ring
		if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
			pts = pts[:len(pts)-1]
		}
		for i, pt := range pts {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&d, "%s%.1f %.1f ", cmd, pl.x(pt[0]), pl.y(pt[1]))
		}
		if len(pts) > 0 {
			d.WriteString("Z ")
		}
	}
	return strings.TrimSpace(d.String())
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
