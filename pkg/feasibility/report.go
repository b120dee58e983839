package feasibility

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/geom"
	"github.com/landsight/parcelfit/pkg/geom/adapt"
	"github.com/landsight/parcelfit/pkg/obstacle"
	"github.com/landsight/parcelfit/pkg/placement"
	"github.com/landsight/parcelfit/pkg/rules"
	"github.com/landsight/parcelfit/pkg/setback"
	"github.com/landsight/parcelfit/pkg/yard"
	"github.com/landsight/parcelfit/pkg/zoning"
)

// Report is the complete feasibility picture for one site. Sections for
// skipped stages are nil; sections that failed on their own terms carry
// the failure in their Error field so the rest of the report still
// renders.
type Report struct {
	ID          uuid.UUID `json:"id"`
	Site        string    `json:"site,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Parcel    ParcelSection     `json:"parcel"`
	Rules     *RulesSection     `json:"rules,omitempty"`
	Buildable BuildableSection  `json:"buildable"`
	Obstacles ObstacleSection   `json:"obstacles"`
	Yard      YardSection       `json:"yard"`
	Placement *PlacementSection `json:"placement,omitempty"`
	Zoning    *ZoningSection    `json:"zoning,omitempty"`

	Summary   Summary   `json:"summary"`
	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache_info"`
}

// ParcelSection describes the parcel after adaptation into local feet.
type ParcelSection struct {
	Format     adapt.Format `json:"format"`
	Geographic bool         `json:"geographic"`
	AreaSqFt   float64      `json:"area_sqft"`
	WidthFt    float64      `json:"width_ft"`
	DepthFt    float64      `json:"depth_ft"`
	Outline    orb.Polygon  `json:"outline"`
}

func newParcelSection(prep *sitePrep) ParcelSection {
	w, d := geom.Dims(prep.parcel.Bound())
	return ParcelSection{
		Format:     prep.result.Format,
		Geographic: prep.result.Geographic,
		AreaSqFt:   prep.area,
		WidthFt:    w,
		DepthFt:    d,
		Outline:    prep.parcel,
	}
}

// RulesSection carries the extracted ordinance rules with their quality
// signals and cross-check results.
type RulesSection struct {
	Confidence          float64       `json:"confidence"`
	Warnings            []string      `json:"warnings,omitempty"`
	Rules               rules.RuleSet `json:"rules"`
	Consistent          bool          `json:"consistent"`
	Inconsistencies     []string      `json:"inconsistencies,omitempty"`
	ConsistencyWarnings []string      `json:"consistency_warnings,omitempty"`
}

func newRulesSection(pr rules.ParseResult) *RulesSection {
	cc := rules.ValidateConsistency(pr.Rules)
	return &RulesSection{
		Confidence:          pr.Confidence,
		Warnings:            pr.Warnings,
		Rules:               pr.Rules,
		Consistent:          cc.Consistent,
		Inconsistencies:     cc.Inconsistencies,
		ConsistencyWarnings: cc.Warnings,
	}
}

// BuildableSection is the setback-eroded remainder of the parcel.
type BuildableSection struct {
	Region      orb.MultiPolygon `json:"region"`
	AreaSqFt    float64          `json:"area_sqft"`
	ParcelPct   float64          `json:"parcel_pct"`
	SetbackFt   float64          `json:"setback_ft"`
	Parts       int              `json:"parts"`
	LargestSqFt float64          `json:"largest_sqft"`
	Empty       bool             `json:"empty"`
}

func newBuildableSection(res setback.Result, parcelArea float64) BuildableSection {
	s := BuildableSection{
		Region:      res.Buildable,
		AreaSqFt:    res.Area,
		SetbackFt:   res.Setback,
		Parts:       len(res.Buildable),
		LargestSqFt: geom.Area(res.LargestPart),
		Empty:       res.Empty(),
	}
	if parcelArea > 0 {
		s.ParcelPct = 100 * res.Area / parcelArea
	}
	return s
}

// ObstacleSection summarizes the constraint inventory, the buffered
// zones by severity, and the feasibility score they imply.
type ObstacleSection struct {
	Total          int     `json:"total"`
	High           int     `json:"high"`
	Medium         int     `json:"medium"`
	Low            int     `json:"low"`
	Removable      int     `json:"removable"`
	MitigationCost float64 `json:"mitigation_cost"`

	ZoneHigh   orb.MultiPolygon `json:"zone_high,omitempty"`
	ZoneMedium orb.MultiPolygon `json:"zone_medium,omitempty"`
	ZoneLow    orb.MultiPolygon `json:"zone_low,omitempty"`

	DevelopableSqFt float64 `json:"developable_sqft"`
	DevelopablePct  float64 `json:"developable_pct"`
	Fragmentation   float64 `json:"fragmentation"`

	Score float64        `json:"score"`
	Label obstacle.Label `json:"label"`
}

func newObstacleSection(a obstacle.Analysis) ObstacleSection {
	s := ObstacleSection{
		Total:          a.Inventory.Total,
		High:           a.Inventory.BySeverity.High,
		Medium:         a.Inventory.BySeverity.Medium,
		Low:            a.Inventory.BySeverity.Low,
		Removable:      a.Inventory.Removable,
		MitigationCost: a.Inventory.MitigationCost,

		ZoneHigh:   a.Zones.High,
		ZoneMedium: a.Zones.Medium,
		ZoneLow:    a.Zones.Low,

		DevelopableSqFt: a.Developable.Area,
		Fragmentation:   a.Developable.Fragmentation,

		Score: a.Feasibility.Score,
		Label: a.Feasibility.Label,
	}
	if a.ParcelArea > 0 {
		s.DevelopablePct = 100 * a.Developable.Area / a.ParcelArea
	}
	return s
}

// YardSection reports the outdoor space left around the buildings.
type YardSection struct {
	OutdoorSqFt float64           `json:"outdoor_sqft"`
	OutdoorPct  float64           `json:"outdoor_pct"`
	Parts       []orb.Polygon     `json:"parts,omitempty"`
	Backyards   []BackyardSummary `json:"backyards,omitempty"`
	OpenSpace   *yard.OpenSpace   `json:"open_space,omitempty"`
}

// BackyardSummary condenses one qualifying backyard.
type BackyardSummary struct {
	AreaSqFt      float64     `json:"area_sqft"`
	WidthFt       float64     `json:"width_ft"`
	DepthFt       float64     `json:"depth_ft"`
	Uses          []yard.Use  `json:"uses,omitempty"`
	PrivacyScore  float64     `json:"privacy_score"`
	PrivacyLevel  yard.Level  `json:"privacy_level"`
	Accessibility float64     `json:"accessibility"`

	Plantings []yard.PlantingOption `json:"plantings,omitempty"`
	Geometry  orb.Polygon           `json:"geometry"`
}

func newYardSection(a yard.Analysis) YardSection {
	s := YardSection{
		OutdoorSqFt: a.OutdoorArea,
		OutdoorPct:  a.OutdoorShare,
		OpenSpace:   a.OpenSpace,
	}
	for _, oa := range a.Outdoor {
		s.Parts = append(s.Parts, oa.Geometry)
	}
	for _, b := range a.Backyards {
		oa := a.Outdoor[b.Index]
		s.Backyards = append(s.Backyards, BackyardSummary{
			AreaSqFt:      oa.Area,
			WidthFt:       b.Space.Width,
			DepthFt:       b.Space.Depth,
			Uses:          b.Space.Uses,
			PrivacyScore:  b.Privacy.Score,
			PrivacyLevel:  b.Privacy.Level,
			Accessibility: b.Space.Accessibility,
			Plantings:     b.Landscaping,
			Geometry:      oa.Geometry,
		})
	}
	return s
}

// PlacementSection reports the building test-fit. Error is set when the
// search could not run at all, for example for an unknown building
// type.
type PlacementSection struct {
	Fits            bool                 `json:"fits"`
	WidthFt         float64              `json:"width_ft"`
	DepthFt         float64              `json:"depth_ft"`
	DevelopableSqFt float64              `json:"developable_sqft"`
	Candidates      int                  `json:"candidates"`
	Truncated       bool                 `json:"truncated,omitempty"`
	Recommended     *placement.Candidate `json:"recommended,omitempty"`
	Advice          []string             `json:"advice,omitempty"`
	Error           string               `json:"error,omitempty"`
}

func newPlacementSection(res placement.FitResult) *PlacementSection {
	return &PlacementSection{
		Fits:            res.Fits,
		WidthFt:         res.Width,
		DepthFt:         res.Depth,
		DevelopableSqFt: res.DevelopableArea,
		Candidates:      len(res.Candidates),
		Truncated:       res.Truncated,
		Recommended:     res.Recommended,
		Advice:          res.Advice,
	}
}

// ZoningSection reports the district compliance review. Error is set
// when the evaluation could not run.
type ZoningSection struct {
	District   string               `json:"district,omitempty"`
	Checks     []zoning.CheckResult `json:"checks,omitempty"`
	Score      float64              `json:"score"`
	Compliant  bool                 `json:"compliant"`
	Violations []string             `json:"violations,omitempty"`
	Warnings   []string             `json:"warnings,omitempty"`
	Notes      []string             `json:"notes,omitempty"`
	Error      string               `json:"error,omitempty"`
}

func newZoningSection(res zoning.ComplianceResult) *ZoningSection {
	return &ZoningSection{
		District:   res.District,
		Checks:     res.Checks,
		Score:      res.Score,
		Compliant:  res.OverallCompliant,
		Violations: res.Violations,
		Warnings:   res.Warnings,
		Notes:      res.Notes,
	}
}

// Summary is the top of the report: the headline numbers plus plain
// sentences a reader scans first. Fits and Compliant are nil when the
// placement or zoning stage did not produce a verdict.
type Summary struct {
	ParcelSqFt       float64        `json:"parcel_sqft"`
	BuildableSqFt    float64        `json:"buildable_sqft"`
	BuildablePct     float64        `json:"buildable_pct"`
	DevelopableSqFt  float64        `json:"developable_sqft"`
	FeasibilityScore float64        `json:"feasibility_score"`
	FeasibilityLabel obstacle.Label `json:"feasibility_label"`
	Fits             *bool          `json:"fits,omitempty"`
	Compliant        *bool          `json:"compliant,omitempty"`
	Highlights       []string       `json:"highlights,omitempty"`
}

func newSummary(rep *Report, developableSqFt float64) Summary {
	s := Summary{
		ParcelSqFt:       rep.Parcel.AreaSqFt,
		BuildableSqFt:    rep.Buildable.AreaSqFt,
		BuildablePct:     rep.Buildable.ParcelPct,
		DevelopableSqFt:  developableSqFt,
		FeasibilityScore: rep.Obstacles.Score,
		FeasibilityLabel: rep.Obstacles.Label,
	}

	if rep.Buildable.Empty {
		s.Highlights = append(s.Highlights, "setbacks leave no buildable area")
	} else {
		s.Highlights = append(s.Highlights, fmt.Sprintf(
			"%.0f of %.0f sq ft (%.0f%%) remains buildable after the %.0f ft setback",
			rep.Buildable.AreaSqFt, rep.Parcel.AreaSqFt, rep.Buildable.ParcelPct, rep.Buildable.SetbackFt))
	}

	if rep.Obstacles.Total > 0 {
		s.Highlights = append(s.Highlights, fmt.Sprintf(
			"%.0f sq ft stays developable past %s (feasibility %.1f/10, %s)",
			developableSqFt, pluralize(rep.Obstacles.Total, "obstacle"),
			rep.Obstacles.Score, rep.Obstacles.Label))
	}

	if p := rep.Placement; p != nil && p.Error == "" {
		fits := p.Fits
		s.Fits = &fits
		if fits {
			s.Highlights = append(s.Highlights, fmt.Sprintf(
				"a %.0fx%.0f ft building fits (%s)",
				p.WidthFt, p.DepthFt, pluralize(p.Candidates, "valid position")))
		} else {
			s.Highlights = append(s.Highlights, fmt.Sprintf(
				"a %.0fx%.0f ft building does not fit", p.WidthFt, p.DepthFt))
		}
	}

	if z := rep.Zoning; z != nil && z.Error == "" {
		compliant := z.Compliant
		s.Compliant = &compliant
		if compliant {
			s.Highlights = append(s.Highlights, "the proposal passes zoning review")
		} else {
			s.Highlights = append(s.Highlights, fmt.Sprintf(
				"zoning review flags %s", pluralize(len(z.Violations), "violation")))
		}
	}

	if os := rep.Yard.OpenSpace; os != nil && !os.Compliant {
		s.Highlights = append(s.Highlights, os.Note)
	}

	return s
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
