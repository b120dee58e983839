package obstacle

import (
	"github.com/paulmach/orb"
)

// Type identifies what kind of site constraint an obstacle is. Types are
// open-ended strings; unknown types still work, they just fall back to the
// default buffer, medium severity, and the other category.
type Type string

const (
	TypeWetland           Type = "wetland"
	TypeStream            Type = "stream"
	TypeSteepSlope        Type = "steep_slope"
	TypeTree              Type = "tree"
	TypeUtilityLine       Type = "utility_line"
	TypeSeptic            Type = "septic"
	TypeWell              Type = "well"
	TypeEasement          Type = "easement"
	TypeExistingStructure Type = "existing_structure"
)

// Category groups obstacle types for inventory reporting.
type Category string

const (
	CategoryNatural        Category = "natural"
	CategoryInfrastructure Category = "infrastructure"
	CategoryRegulatory     Category = "regulatory"
	CategoryStructure      Category = "existing_structure"
	CategoryOther          Category = "other"
)

// Category returns the inventory group for the type.
func (t Type) Category() Category {
	switch t {
	case TypeWetland, TypeStream, TypeSteepSlope, TypeTree:
		return CategoryNatural
	case TypeUtilityLine, TypeSeptic, TypeWell:
		return CategoryInfrastructure
	case TypeEasement:
		return CategoryRegulatory
	case TypeExistingStructure:
		return CategoryStructure
	default:
		return CategoryOther
	}
}

// Severity ranks how hard an obstacle blocks development.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// DefaultSeverity returns the severity assumed when an obstacle does not
// declare one. Health and regulatory hazards rank high, movable features
// low.
func (t Type) DefaultSeverity() Severity {
	switch t {
	case TypeWetland, TypeStream, TypeSeptic, TypeWell:
		return SeverityHigh
	case TypeTree:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// Obstacle is one constraint on the parcel, in the same local-feet plane as
// the parcel geometry.
type Obstacle struct {
	ID       string
	Type     Type
	Geometry orb.Polygon

	// Severity overrides the type default when non-empty.
	Severity Severity

	// BufferDistance overrides the table clearance in feet when positive.
	BufferDistance float64

	// Removable marks obstacles that could be cleared, with the estimated
	// cost in dollars when known (0 = unknown).
	Removable      bool
	MitigationCost float64
}

// severity resolves the effective severity.
func (o Obstacle) severity() Severity {
	if o.Severity != "" {
		return o.Severity
	}
	return o.Type.DefaultSeverity()
}

// DefaultBuffer is the clearance in feet for types missing from the table.
const DefaultBuffer = 10.0

// BufferTable maps obstacle types to clearance distances in feet.
type BufferTable map[Type]float64

// DefaultBuffers returns the standard clearance table.
func DefaultBuffers() BufferTable {
	return BufferTable{
		TypeUtilityLine:       10,
		TypeSeptic:            50,
		TypeWetland:           100,
		TypeEasement:          5,
		TypeWell:              100,
		TypeStream:            50,
		TypeSteepSlope:        25,
		TypeTree:              15,
		TypeExistingStructure: 10,
	}
}

// For returns the clearance for t, falling back to [DefaultBuffer] when the
// table has no positive entry.
func (b BufferTable) For(t Type) float64 {
	if d, ok := b[t]; ok && d > 0 {
		return d
	}
	return DefaultBuffer
}

// Options configures [Analyze].
type Options struct {
	Buffers  BufferTable // clearance table (default: DefaultBuffers)
	Proposal orb.Polygon // proposed footprint to conflict-check (optional)
	Score    ScoreConfig // feasibility weights (default: DefaultScoreConfig)
}

// WithDefaults returns a copy of Options with zero values replaced by
// defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Buffers == nil {
		opts.Buffers = DefaultBuffers()
	}
	if opts.Score == (ScoreConfig{}) {
		opts.Score = DefaultScoreConfig()
	}
	return opts
}

// bufferFor resolves the effective clearance for one obstacle.
func bufferFor(o Obstacle, table BufferTable) float64 {
	if o.BufferDistance > 0 {
		return o.BufferDistance
	}
	return table.For(o.Type)
}
