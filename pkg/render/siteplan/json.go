package siteplan

import (
	"encoding/json"

	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/feasibility"
	"github.com/landsight/parcelfit/pkg/geom"
	"github.com/landsight/parcelfit/pkg/placement"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	sceneOpts
	title string
}

// WithJSONPlacements includes the recommended building footprint.
func WithJSONPlacements() JSONOption { return func(r *jsonRenderer) { r.placements = true } }

// WithJSONZones includes the buffered constraint zones grouped by
// severity.
func WithJSONZones() JSONOption { return func(r *jsonRenderer) { r.zones = true } }

// WithJSONYards includes the outdoor space parts.
func WithJSONYards() JSONOption { return func(r *jsonRenderer) { r.yards = true } }

// WithJSONCandidates includes the given candidates instead of the
// report's recommended footprint. Implies [WithJSONPlacements].
func WithJSONCandidates(cands []placement.Candidate) JSONOption {
	return func(r *jsonRenderer) { r.placements = true; r.candidates = cands }
}

// WithJSONTitle records a caption in the output.
func WithJSONTitle(t string) JSONOption { return func(r *jsonRenderer) { r.title = t } }

type jsonOutput struct {
	Site    string  `json:"site,omitempty"`
	Title   string  `json:"title,omitempty"`
	WidthFt float64 `json:"width_ft"`
	DepthFt float64 `json:"depth_ft"`

	Parcel     orb.Polygon      `json:"parcel"`
	Buildable  orb.MultiPolygon `json:"buildable"`
	Zones      *jsonZones       `json:"zones,omitempty"`
	Yards      []orb.Polygon    `json:"yards,omitempty"`
	Footprints []orb.Polygon    `json:"footprints,omitempty"`
}

type jsonZones struct {
	High   orb.MultiPolygon `json:"high,omitempty"`
	Medium orb.MultiPolygon `json:"medium,omitempty"`
	Low    orb.MultiPolygon `json:"low,omitempty"`
}

// RenderJSON exports the same scene [RenderSVG] draws as a
// pretty-printed JSON document for external visualization tools.
// Geometry stays in site feet with north as positive y; width and
// depth describe the frame covering every included layer. It returns
// an error only if marshaling fails.
func RenderJSON(rep *feasibility.Report, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	sc := buildScene(rep, r.sceneOpts)
	w, d := geom.Dims(sc.bound)

	out := jsonOutput{
		Title:      r.title,
		WidthFt:    w,
		DepthFt:    d,
		Parcel:     sc.parcel,
		Buildable:  sc.buildable,
		Yards:      sc.yards,
		Footprints: sc.footprints,
	}
	if rep != nil {
		out.Site = rep.Site
	}
	if len(sc.zoneHigh)+len(sc.zoneMedium)+len(sc.zoneLow) > 0 {
		out.Zones = &jsonZones{High: sc.zoneHigh, Medium: sc.zoneMedium, Low: sc.zoneLow}
	}
	return json.MarshalIndent(out, "", "  ")
}
