package obstacle

// Label buckets a feasibility score for reporting.
type Label string

const (
	LabelHigh   Label = "high"
	LabelMedium Label = "medium"
	LabelLow    Label = "low"
)

// ScoreConfig holds the feasibility weighting. All four component scores
// run 0-10; the final score is their weighted average.
type ScoreConfig struct {
	DevelopableWeight   float64 // weight of developable share (default: 0.4)
	LargestPartWeight   float64 // weight of largest-part share (default: 0.3)
	ObstacleWeight      float64 // weight of obstacle-count score (default: 0.15)
	FragmentationWeight float64 // weight of fragmentation score (default: 0.15)

	ObstaclePenalty      float64 // points per obstacle (default: 1)
	FragmentationPenalty float64 // points per fragmentation unit (default: 2)

	HighThreshold   float64 // score >= this labels high (default: 7)
	MediumThreshold float64 // score >= this labels medium (default: 4)
}

// DefaultScoreConfig returns the standard weighting.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		DevelopableWeight:    0.4,
		LargestPartWeight:    0.3,
		ObstacleWeight:       0.15,
		FragmentationWeight:  0.15,
		ObstaclePenalty:      1,
		FragmentationPenalty: 2,
		HighThreshold:        7,
		MediumThreshold:      4,
	}
}

// Feasibility is the condensed development outlook.
type Feasibility struct {
	// Score is 0-10; Label buckets it at the configured thresholds.
	Score float64
	Label Label

	// Component scores, each 0-10.
	DevelopableScore   float64
	LargestPartScore   float64
	ObstacleScore      float64
	FragmentationScore float64
}

// FeasibilityScore blends the developable share, largest contiguous share,
// obstacle count, and fragmentation into one 0-10 score. A parcel with no
// developable area scores 0 outright.
func FeasibilityScore(d Developable, inv Inventory, parcelArea float64, cfg ScoreConfig) Feasibility {
	if parcelArea <= 0 || d.Empty() {
		return Feasibility{Label: LabelLow}
	}

	f := Feasibility{
		DevelopableScore:   clamp10(10 * d.Area / parcelArea),
		LargestPartScore:   clamp10(10 * d.LargestArea / parcelArea),
		ObstacleScore:      clamp10(10 - cfg.ObstaclePenalty*float64(inv.Total)),
		FragmentationScore: clamp10(10 - cfg.FragmentationPenalty*d.Fragmentation),
	}

	total := cfg.DevelopableWeight + cfg.LargestPartWeight +
		cfg.ObstacleWeight + cfg.FragmentationWeight
	if total <= 0 {
		return Feasibility{Label: LabelLow}
	}

	f.Score = (cfg.DevelopableWeight*f.DevelopableScore +
		cfg.LargestPartWeight*f.LargestPartScore +
		cfg.ObstacleWeight*f.ObstacleScore +
		cfg.FragmentationWeight*f.FragmentationScore) / total

	switch {
	case f.Score >= cfg.HighThreshold:
		f.Label = LabelHigh
	case f.Score >= cfg.MediumThreshold:
		f.Label = LabelMedium
	default:
		f.Label = LabelLow
	}
	return f
}

func clamp10(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
