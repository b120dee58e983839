// Package setback computes the buildable core of a parcel after required
// yard setbacks and existing structures are carved away.
//
// The engine applies the largest required distance as a uniform inward
// buffer, so the result never extends into any required yard even when the
// per-direction distances differ. Existing building footprints are
// subtracted afterwards. An empty outcome is a legitimate result
// ([Result.Empty]), not an error: a small or oddly shaped parcel can
// legally have no room left.
//
// [Compliance] answers the inverse question: whether a proposed footprint
// stays inside an already computed buildable region and, if not, which
// parcel edges the overflow crossed.
//
// # Determinism
//
// Both operations are pure functions of their inputs. Repeat calls with
// identical geometry return bit-identical polygons and areas.
package setback
