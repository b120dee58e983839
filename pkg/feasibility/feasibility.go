// Package feasibility orchestrates the full parcel analysis.
//
// This package ties the geometry, rules, setback, obstacle, yard,
// placement, and zoning packages into one cached pipeline that CLI and
// API hosts share. The core packages stay cache-free and idempotent;
// everything cache-aware lives here.
//
// # Architecture
//
// An analysis runs up to seven stages:
//
//  1. Adapt: decode parcel and obstacle geometry into one planar frame
//  2. Rules: extract structured rules from ordinance text
//  3. Setback: erode the parcel into its buildable area
//  4. Obstacle: buffer constraints and derive the developable region
//  5. Yard: evaluate outdoor space and backyards
//  6. Placement: test-fit a requested building
//  7. Zoning: check a proposal against district rules
//
// Stages without input are skipped: a site with no ordinance text skips
// rule extraction, one without a building skips placement. Stages that
// fail on their own terms report the failure inside their section of
// the report; only invalid input and broken geometry abort the run.
//
// # Usage
//
// Create a Runner and analyze a site:
//
//	runner := feasibility.NewRunner(cache, nil, logger)
//	report, err := runner.AnalyzeSite(ctx, &feasibility.Site{
//	    Name:      "corner-lot",
//	    Geometry:  raw,
//	    RulesText: ordinance,
//	    Building:  &placement.Spec{Type: "house"},
//	}, feasibility.AnalyzeOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, h := range report.Summary.Highlights {
//	    fmt.Println(h)
//	}
//
// Run individual stages:
//
//	// Rule extraction only
//	parsed, err := runner.ParseRules(ctx, ordinance)
//
//	// Buildable area only
//	res, err := runner.Buildable(ctx, site)
package feasibility

import (
	"encoding/json"
	"time"

	"github.com/landsight/parcelfit/pkg/cache"
	"github.com/landsight/parcelfit/pkg/placement"
)

// AnalyzeOptions configures one AnalyzeSite run.
// This struct supports JSON serialization for API requests.
type AnalyzeOptions struct {
	// Refresh bypasses cache reads and recomputes every stage. Results
	// are still written back to the cache.
	Refresh bool `json:"refresh,omitempty"`

	// Placement tunes the building search. The Developable field is
	// rebuilt by the runner from the setback and obstacle stages, so
	// callers never set it here.
	Placement placement.Options `json:"placement"`
}

// hash keys the options for the report cache. Refresh changes how the
// run executes, not what it computes, and the developable override is
// always rebuilt by the runner, so neither belongs in the key.
func (o AnalyzeOptions) hash() string {
	o.Refresh = false
	o.Placement.Developable = nil
	data, _ := json.Marshal(o)
	return cache.Hash(data)
}

// Stats contains per-stage timings for one analysis.
type Stats struct {
	AdaptTime     time.Duration `json:"adapt_time"`
	RulesTime     time.Duration `json:"rules_time"`
	SetbackTime   time.Duration `json:"setback_time"`
	ObstacleTime  time.Duration `json:"obstacle_time"`
	YardTime      time.Duration `json:"yard_time"`
	PlacementTime time.Duration `json:"placement_time"`
	ZoningTime    time.Duration `json:"zoning_time"`
	TotalTime     time.Duration `json:"total_time"`
}

// CacheInfo tracks which results came from cache.
type CacheInfo struct {
	RulesHit  bool `json:"rules_hit"`  // parsed rule set came from cache
	SiteHit   bool `json:"site_hit"`   // buildable area came from cache
	ReportHit bool `json:"report_hit"` // whole report came from cache
}
