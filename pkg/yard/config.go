package yard

import "github.com/paulmach/orb"

// Default scoring constants. All are overridable through Config.
const (
	// DefaultBackyardMinScore is the combined score at or above which an
	// outdoor part counts as a backyard.
	DefaultBackyardMinScore = 4

	// DefaultBackyardMinArea is the area in square feet worth the size
	// points in the backyard score.
	DefaultBackyardMinArea = 400.0

	// DefaultRearBandDepth is how far the rear boundary reaches into the
	// parcel, in feet, when testing rear contact.
	DefaultRearBandDepth = 10.0

	// DefaultScreeningRadius is the distance in feet within which a
	// building counts as visual screening for a yard.
	DefaultScreeningRadius = 30.0

	// DefaultPrivacyMediumMin and DefaultPrivacyHighMin split the 0-10
	// privacy score into low, medium, and high.
	DefaultPrivacyMediumMin = 4.0
	DefaultPrivacyHighMin   = 7.0

	// DefaultAccessibilityDistanceWeight is the share of the
	// accessibility score driven by closeness to the parcel centroid;
	// the rest comes from shape compactness.
	DefaultAccessibilityDistanceWeight = 0.5
)

// Backyard score points per criterion.
const (
	pointsRearHalf  = 3 // part centroid behind the parcel midpoint
	pointsMinArea   = 2 // part at least Config.BackyardMinArea
	pointsRearTouch = 2 // part reaches the rear boundary band
)

// Use tags an outdoor part can support.
type Use string

const (
	UseEntertaining Use = "entertaining"
	UseGarden       Use = "garden"
	UsePlay         Use = "play"
	UsePool         Use = "pool"
	UseStorage      Use = "storage"
)

// UseRule admits a use when a part meets its area and dimension floors.
type UseRule struct {
	Use     Use
	MinArea float64 // square feet
	MinDim  float64 // feet, shorter side of the part's bounding box
}

// DefaultUses returns the standard use rules in evaluation order.
func DefaultUses() []UseRule {
	return []UseRule{
		{Use: UseEntertaining, MinArea: 300, MinDim: 15},
		{Use: UseGarden, MinArea: 100},
		{Use: UsePlay, MinArea: 400, MinDim: 20},
		{Use: UsePool, MinArea: 800, MinDim: 25},
		{Use: UseStorage, MinArea: 50},
	}
}

// PlantingType is a landscaping category.
type PlantingType string

const (
	PlantingLawn        PlantingType = "lawn"
	PlantingGardenBed   PlantingType = "garden_bed"
	PlantingTrees       PlantingType = "trees"
	PlantingShrubs      PlantingType = "shrubs"
	PlantingGroundCover PlantingType = "ground_cover"
)

// LandscapingRule admits a planting type by size and prices it per
// square foot.
type LandscapingRule struct {
	Type     PlantingType
	MinArea  float64 // square feet
	MinDim   float64 // feet
	CostLow  float64 // dollars per square foot, budget install
	CostHigh float64 // dollars per square foot, premium install
}

// DefaultLandscaping returns the standard planting rules in evaluation
// order.
func DefaultLandscaping() []LandscapingRule {
	return []LandscapingRule{
		{Type: PlantingLawn, MinArea: 200, MinDim: 10, CostLow: 0.5, CostHigh: 1.5},
		{Type: PlantingGardenBed, MinArea: 50, CostLow: 3, CostHigh: 8},
		{Type: PlantingTrees, MinArea: 150, MinDim: 12, CostLow: 2, CostHigh: 6},
		{Type: PlantingShrubs, MinArea: 30, CostLow: 2, CostHigh: 5},
		{Type: PlantingGroundCover, MinArea: 20, CostLow: 1, CostHigh: 3},
	}
}

// Config holds the tunable constants of the analyzer.
type Config struct {
	BackyardMinScore int     // classification threshold (default: 4)
	BackyardMinArea  float64 // square feet worth the size points (default: 400)
	RearBandDepth    float64 // rear band depth in feet (default: 10)

	ScreeningRadius  float64 // privacy screening radius in feet (default: 30)
	PrivacyMediumMin float64 // privacy score for medium (default: 4)
	PrivacyHighMin   float64 // privacy score for high (default: 7)

	// AccessibilityDistanceWeight blends centroid closeness against
	// compactness (default: 0.5).
	AccessibilityDistanceWeight float64

	Uses        []UseRule         // use rules (default: DefaultUses)
	Landscaping []LandscapingRule // planting rules (default: DefaultLandscaping)
}

// DefaultConfig returns the standard analyzer constants.
func DefaultConfig() Config {
	return Config{
		BackyardMinScore:            DefaultBackyardMinScore,
		BackyardMinArea:             DefaultBackyardMinArea,
		RearBandDepth:               DefaultRearBandDepth,
		ScreeningRadius:             DefaultScreeningRadius,
		PrivacyMediumMin:            DefaultPrivacyMediumMin,
		PrivacyHighMin:              DefaultPrivacyHighMin,
		AccessibilityDistanceWeight: DefaultAccessibilityDistanceWeight,
		Uses:                        DefaultUses(),
		Landscaping:                 DefaultLandscaping(),
	}
}

// Options configures a single Analyze call.
type Options struct {
	// Proposed is an additional building footprint evaluated alongside
	// the existing ones. Nil means none.
	Proposed orb.Polygon

	// MinOpenSpacePercent is the zoning minimum share of the parcel that
	// must stay outdoors, 0-100. Zero disables the check.
	MinOpenSpacePercent float64

	// Config supplies the analyzer constants. Zero-value fields fall
	// back to DefaultConfig.
	Config Config
}

// WithDefaults returns a copy of o with zero-value Config fields filled
// from the defaults.
func (o Options) WithDefaults() Options {
	c := &o.Config
	if c.BackyardMinScore <= 0 {
		c.BackyardMinScore = DefaultBackyardMinScore
	}
	if c.BackyardMinArea <= 0 {
		c.BackyardMinArea = DefaultBackyardMinArea
	}
	if c.RearBandDepth <= 0 {
		c.RearBandDepth = DefaultRearBandDepth
	}
	if c.ScreeningRadius <= 0 {
		c.ScreeningRadius = DefaultScreeningRadius
	}
	if c.PrivacyMediumMin <= 0 {
		c.PrivacyMediumMin = DefaultPrivacyMediumMin
	}
	if c.PrivacyHighMin <= 0 {
		c.PrivacyHighMin = DefaultPrivacyHighMin
	}
	if c.AccessibilityDistanceWeight <= 0 || c.AccessibilityDistanceWeight > 1 {
		c.AccessibilityDistanceWeight = DefaultAccessibilityDistanceWeight
	}
	if c.Uses == nil {
		c.Uses = DefaultUses()
	}
	if c.Landscaping == nil {
		c.Landscaping = DefaultLandscaping()
	}
	return o
}
