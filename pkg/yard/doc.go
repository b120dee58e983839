// Package yard analyzes the outdoor space a parcel keeps after buildings
// claim their footprints.
//
// The parcel minus the union of buildings yields one or more outdoor
// parts. Each part is scored for backyard character (position behind the
// parcel midpoint, size, contact with the rear boundary band), and parts
// that qualify get the full treatment: usable-space tags (entertaining,
// garden, play, pool, storage), an accessibility score, a privacy score
// fed by nearby screening buildings, and landscaping options with cost
// ranges from a per-square-foot table.
//
// The frame convention matches the setback engine: the parcel fronts its
// minimum-y edge, so "behind the house" means larger y.
//
// Every threshold, radius, and cost lives in [Config]; [DefaultConfig]
// carries the standard values.
package yard
