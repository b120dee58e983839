// Package placement answers whether a building of given dimensions can
// land on a parcel, and where it should go.
//
// # Algorithm
//
// TestFit resolves the building spec to a rectangle, computes the
// developable area through the setback engine (or takes a pre-clipped
// region from the caller), and rejects footprints whose area alone
// exceeds the developable area. The search walks the developable
// bounding box at a fixed step, keeping every translation whose
// footprint is fully contained; a probe placement at the developable
// centroid backstops the grid when the step pattern misses an off-grid
// fit. Each candidate records its clearance to existing buildings and a
// 0-1 score per requested objective; the aggregate is the mean, and the
// recommendation is the best-scoring candidate.
//
// TestMultiple places up to two buildings side by side with a minimum
// spacing carved between them. It is not a packing solver. OptimizeSize
// works backwards: shrink the parcel until the core matches a target
// footprint area, then pick the best rectangle over five aspect ratios.
//
// # Determinism
//
// The grid scans front to back, left to right, and ties on score keep
// the first candidate found, so identical inputs return identical
// results. The candidate buffer is allocated up front from the bounding
// box and step, capped at Options.MaxCandidates; the context is checked
// once per scan row so a caller-side timeout can stop a pathological
// search.
package placement
