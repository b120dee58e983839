// Package render provides output sinks for feasibility reports.
//
// # Overview
//
// This package groups the renderers that turn an analysis report into
// something a person can look at:
//
//   - Site plans (in [siteplan] subpackage): SVG sketches and a matching
//     structured JSON document
//
// # Site Plans
//
// The [siteplan] subpackage draws a north-up plan of the analyzed
// parcel: the lot line, the setback-eroded buildable region, constraint
// zones colored by severity, yard parts, and building footprints.
//
//	svg := siteplan.RenderSVG(report,
//	    siteplan.WithZones(),
//	    siteplan.WithPlacements(),
//	    siteplan.WithTitle(report.Site))
//
// The JSON sink exports the identical scene for hosts that render their
// own maps:
//
//	doc, err := siteplan.RenderJSON(report)
//
// [siteplan]: https://pkg.go.dev/github.com/landsight/parcelfit/pkg/render/siteplan
package render
