// Package obstacle maps site constraints into no-build zones and scores
// what is left.
//
// Every obstacle is dilated by a clearance distance looked up from a
// [BufferTable] (a wetland keeps construction 100 ft away, a utility line
// 10 ft, and so on). The buffered zones are unioned per severity tier and
// in aggregate, and the developable region is the parcel minus the
// aggregate union. [Analyze] also inventories the obstacles, measures how
// badly the zones fragment the remaining land, checks an optional proposed
// footprint for conflicts, and condenses everything into a 0-10
// [Feasibility] score.
//
// # Determinism
//
// Zones are unioned in input order and conflicts are reported in input
// order, so identical inputs produce identical output, part order
// included. The spatial index is only a prefilter and never affects
// results, only how much exact clipping runs.
package obstacle
