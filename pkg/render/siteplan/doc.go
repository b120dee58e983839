// Package siteplan renders feasibility analysis results as site plan
// sketches.
//
// # Overview
//
// A feasibility report carries the geometry it was computed from: the
// parcel outline, the setback-eroded buildable region, buffered
// constraint zones, outdoor space parts, and the recommended building
// footprint. This package draws those layers without recomputing
// anything; the sinks show exactly what the report holds.
//
// # SVG Output
//
// [RenderSVG] produces a plotted sketch: north up, one foot mapped to a
// fixed number of pixels, layers stacked parcel first and lot line
// last. The base drawing shows the parcel and its buildable region;
// options add the rest:
//
//	svg := siteplan.RenderSVG(rep,
//	    siteplan.WithZones(),
//	    siteplan.WithYards(),
//	    siteplan.WithPlacements(),
//	    siteplan.WithTitle(rep.Site),
//	)
//
// Constraint zones paint in severity order with high on top, so the
// most restrictive constraint is always visible. Zones may spill past
// the lot line; the frame grows to keep every drawn layer in view.
//
// # JSON Output
//
// [RenderJSON] exports the same scene as a structured JSON document for
// external visualization tools. Geometry stays in site feet with north
// as positive y, and the layer options mirror the SVG ones
// ([WithJSONZones], [WithJSONYards], [WithJSONPlacements]).
package siteplan
