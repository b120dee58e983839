package placement

import (
	"errors"

	"github.com/paulmach/orb"
)

// Goal names one placement objective.
type Goal string

const (
	// GoalMaximizeYard rewards placements that keep the rear yard deep.
	GoalMaximizeYard Goal = "maximize_yard"
	// GoalMinimizeSetbackVariance rewards even margins on all four sides.
	GoalMinimizeSetbackVariance Goal = "minimize_setback_variance"
	// GoalMaximizePrivacy rewards distance from the parcel boundary.
	GoalMaximizePrivacy Goal = "maximize_privacy"
	// GoalCenterPlacement rewards closeness to the developable center.
	GoalCenterPlacement Goal = "center_placement"
	// GoalMaximizeArea rewards using more of the developable area.
	GoalMaximizeArea Goal = "maximize_area"
)

// ErrUnknownGoal is returned when Options.Goals names an objective the
// scorer does not know.
var ErrUnknownGoal = errors.New("unknown placement goal")

// DefaultGoals returns every objective in scoring order.
func DefaultGoals() []Goal {
	return []Goal{
		GoalMaximizeYard,
		GoalMinimizeSetbackVariance,
		GoalMaximizePrivacy,
		GoalCenterPlacement,
		GoalMaximizeArea,
	}
}

// Search defaults. All are overridable through Options.
const (
	// DefaultStepFt is the grid step of the translation search.
	DefaultStepFt = 10.0

	// DefaultMaxCandidates caps how many valid placements one search
	// will keep.
	DefaultMaxCandidates = 10000

	// DefaultMinSpacingFt separates buildings in multi-building layouts.
	DefaultMinSpacingFt = 10.0

	// DefaultPrivacyDepthFt is the boundary distance that earns a full
	// privacy score.
	DefaultPrivacyDepthFt = 30.0

	// DefaultClearanceScanFt bounds the neighbor search when recording a
	// candidate's clearance to existing buildings.
	DefaultClearanceScanFt = 100.0

	// DefaultPairAttempts bounds how many anchor placements a
	// two-building search will try before giving up.
	DefaultPairAttempts = 25
)

// Options tunes the placement search.
type Options struct {
	StepFt          float64 // grid step in feet (default: 10)
	MaxCandidates   int     // valid-placement cap (default: 10000)
	MinSpacingFt    float64 // building separation in feet (default: 10)
	PrivacyDepthFt  float64 // boundary distance for full privacy (default: 30)
	ClearanceScanFt float64 // neighbor scan radius in feet (default: 100)
	PairAttempts    int     // anchor retries in TestMultiple (default: 25)

	// Goals selects the scored objectives in order (default: DefaultGoals).
	Goals []Goal

	// Developable overrides the setback-derived search region, so a
	// caller can pass in an obstacle-clipped area. Existing building
	// footprints are still carved out of it. Nil leaves the override
	// off; a non-nil empty region means nothing is developable.
	Developable orb.MultiPolygon
}

// WithDefaults returns a copy of o with zero values replaced by the
// package defaults.
func (o Options) WithDefaults() Options {
	if o.StepFt <= 0 {
		o.StepFt = DefaultStepFt
	}
	if o.MaxCandidates <= 0 {
		o.MaxCandidates = DefaultMaxCandidates
	}
	if o.MinSpacingFt <= 0 {
		o.MinSpacingFt = DefaultMinSpacingFt
	}
	if o.PrivacyDepthFt <= 0 {
		o.PrivacyDepthFt = DefaultPrivacyDepthFt
	}
	if o.ClearanceScanFt <= 0 {
		o.ClearanceScanFt = DefaultClearanceScanFt
	}
	if o.PairAttempts <= 0 {
		o.PairAttempts = DefaultPairAttempts
	}
	if len(o.Goals) == 0 {
		o.Goals = DefaultGoals()
	}
	return o
}

// GoalScore is one objective's 0-1 score for a candidate.
type GoalScore struct {
	Goal  Goal
	Score float64
}

// Candidate is one valid translation of the footprint.
type Candidate struct {
	Position  orb.Point   // footprint center
	Footprint orb.Polygon

	// Clearance is the distance in feet to the nearest existing building
	// within Options.ClearanceScanFt, or -1 when none is that close.
	Clearance float64

	Scores []GoalScore // requested goals in request order
	Score  float64     // mean of Scores
}

// FitResult reports a single-building placement search.
type FitResult struct {
	Fits  bool
	Width float64 // resolved footprint width, feet
	Depth float64 // resolved footprint depth, feet

	Developable     orb.MultiPolygon
	DevelopableArea float64

	// Candidates holds every valid placement in scan order (front to
	// back, left to right). Truncated is set when the search stopped at
	// Options.MaxCandidates.
	Candidates []Candidate
	Truncated  bool

	// Recommended is the best-scoring candidate, nil when Fits is false.
	Recommended *Candidate

	// Advice explains a failed fit and suggests what to change.
	Advice []string
}
