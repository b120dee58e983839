package feasibility

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/cache"
	"github.com/landsight/parcelfit/pkg/errors"
	"github.com/landsight/parcelfit/pkg/geom"
	"github.com/landsight/parcelfit/pkg/geom/adapt"
	"github.com/landsight/parcelfit/pkg/observability"
	"github.com/landsight/parcelfit/pkg/obstacle"
	"github.com/landsight/parcelfit/pkg/placement"
	"github.com/landsight/parcelfit/pkg/rules"
	"github.com/landsight/parcelfit/pkg/setback"
	"github.com/landsight/parcelfit/pkg/yard"
	"github.com/landsight/parcelfit/pkg/zoning"
)

// Runner encapsulates feasibility analysis with caching.
// Both CLI and API hosts can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// AnalyzeSite runs the complete analysis for one site with caching.
// Whole reports are cached by the site content hash and the analysis
// options, so repeating an identical request returns the stored report
// with CacheInfo.ReportHit set.
func (r *Runner) AnalyzeSite(ctx context.Context, site *Site, opts AnalyzeOptions) (*Report, error) {
	if site == nil {
		return nil, errors.New(errors.ErrCodeInvalidSite, "site is nil")
	}
	if err := site.Validate(); err != nil {
		return nil, err
	}

	siteHash, err := site.Hash()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash site")
	}
	reportKey := r.Keyer.ReportKey(siteHash, opts.hash())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, reportKey); err == nil && hit {
			var cached Report
			if json.Unmarshal(data, &cached) == nil {
				observability.Cache().OnCacheHit(ctx, "report")
				cached.CacheInfo.ReportHit = true
				return &cached, nil // Cache hit
			}
		}
	}
	observability.Cache().OnCacheMiss(ctx, "report")

	hooks := observability.Analysis()
	start := time.Now()
	hooks.OnAnalysisStart(ctx, site.Name)
	report, err := r.analyze(ctx, site, opts)
	hooks.OnAnalysisComplete(ctx, site.Name, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	report.Stats.TotalTime = time.Since(start)

	// Cache the result
	if data, err := json.Marshal(report); err == nil {
		_ = r.Cache.Set(ctx, reportKey, data, cache.TTLReport)
		observability.Cache().OnCacheSet(ctx, "report", len(data))
	}

	return report, nil
}

// analyze runs the stages in order and assembles the report.
func (r *Runner) analyze(ctx context.Context, site *Site, opts AnalyzeOptions) (*Report, error) {
	hooks := observability.Analysis()
	report := &Report{ID: uuid.New(), Site: site.Name, GeneratedAt: time.Now().UTC()}

	// Stage 1: Adapt geometry into one local planar frame.
	adaptStart := time.Now()
	hooks.OnStageStart(ctx, "adapt")
	prep, err := adaptSite(site)
	report.Stats.AdaptTime = time.Since(adaptStart)
	hooks.OnStageComplete(ctx, "adapt", report.Stats.AdaptTime, err)
	if err != nil {
		return nil, err
	}
	report.Parcel = newParcelSection(prep)

	r.Logger.Info("adapted parcel",
		"format", report.Parcel.Format,
		"area", report.Parcel.AreaSqFt,
		"duration", report.Stats.AdaptTime)

	// Stage 2: Extract rules when the site carries ordinance text.
	var parsed *rules.ParseResult
	if site.RulesText != "" {
		rulesStart := time.Now()
		hooks.OnStageStart(ctx, "rules")
		pr, rulesHit, err := r.parseRules(ctx, site.RulesText, opts.Refresh)
		report.Stats.RulesTime = time.Since(rulesStart)
		hooks.OnStageComplete(ctx, "rules", report.Stats.RulesTime, err)
		if err != nil {
			return nil, err
		}
		parsed = &pr
		report.Rules = newRulesSection(pr)
		report.CacheInfo.RulesHit = rulesHit

		r.Logger.Info("extracted rules",
			"confidence", pr.Confidence,
			"warnings", len(pr.Warnings),
			"duration", report.Stats.RulesTime)
	}

	// Stage 3: Buildable area after setbacks.
	sb := resolveSetbacks(site, parsed)
	setbackStart := time.Now()
	hooks.OnStageStart(ctx, "setback")
	sres, siteHit, err := r.buildable(ctx, site, prep, sb, opts.Refresh)
	report.Stats.SetbackTime = time.Since(setbackStart)
	hooks.OnStageComplete(ctx, "setback", report.Stats.SetbackTime, err)
	if err != nil {
		return nil, err
	}
	report.Buildable = newBuildableSection(sres, prep.area)
	report.CacheInfo.SiteHit = siteHit

	r.Logger.Info("computed buildable area",
		"setback", sres.Setback,
		"parts", len(sres.Buildable),
		"area", sres.Area,
		"duration", report.Stats.SetbackTime)

	// Stage 4: Obstacle constraint zones.
	obstacleStart := time.Now()
	hooks.OnStageStart(ctx, "obstacle")
	ores, err := obstacle.Analyze(prep.parcel, prep.obstacles, obstacle.Options{})
	report.Stats.ObstacleTime = time.Since(obstacleStart)
	hooks.OnStageComplete(ctx, "obstacle", report.Stats.ObstacleTime, err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "obstacle stage")
	}
	report.Obstacles = newObstacleSection(ores)

	r.Logger.Info("analyzed obstacles",
		"count", ores.Inventory.Total,
		"score", ores.Feasibility.Score,
		"duration", report.Stats.ObstacleTime)

	// Developable region: buildable clipped by the constraint zones.
	// With no obstacles the buildable region passes through untouched.
	developable := sres.Buildable
	if len(prep.obstacles) > 0 && len(sres.Buildable) > 0 {
		developable, err = geom.Intersection(sres.Buildable, ores.Developable.Region)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "developable region")
		}
	}

	// Stage 5: Yard and open space.
	yardStart := time.Now()
	hooks.OnStageStart(ctx, "yard")
	yres, err := yard.Analyze(prep.parcel, prep.structures, yard.Options{
		MinOpenSpacePercent: site.MinOpenSpacePercent,
	})
	report.Stats.YardTime = time.Since(yardStart)
	hooks.OnStageComplete(ctx, "yard", report.Stats.YardTime, err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "yard stage")
	}
	report.Yard = newYardSection(yres)

	r.Logger.Info("evaluated yards",
		"outdoor_share", yres.OutdoorShare,
		"backyards", len(yres.Backyards),
		"duration", report.Stats.YardTime)

	// Stage 6: Building placement, when a building is requested.
	if site.Building != nil {
		placementStart := time.Now()
		hooks.OnStageStart(ctx, "placement")
		po := opts.Placement
		po.Developable = developable
		if po.Developable == nil {
			po.Developable = orb.MultiPolygon{}
		}
		fres, perr := placement.TestFit(ctx, prep.parcel, *site.Building, sb, prep.structures, po)
		report.Stats.PlacementTime = time.Since(placementStart)
		hooks.OnStageComplete(ctx, "placement", report.Stats.PlacementTime, perr)
		if perr != nil {
			if ctx.Err() != nil {
				return nil, perr
			}
			report.Placement = &PlacementSection{Error: perr.Error()}
			r.Logger.Warn("placement failed", "error", perr)
		} else {
			report.Placement = newPlacementSection(fres)
			r.Logger.Info("searched placements",
				"fits", fres.Fits,
				"candidates", len(fres.Candidates),
				"duration", report.Stats.PlacementTime)
		}
	}

	// Stage 7: Zoning compliance, when a proposal is under review.
	if site.Proposal != nil {
		zoningStart := time.Now()
		hooks.OnStageStart(ctx, "zoning")
		var district zoning.DistrictRules
		switch {
		case site.District != nil:
			district = *site.District
		case parsed != nil:
			district.Rules = parsed.Rules
		}
		zres, zerr := zoning.Evaluate(zoning.ParcelData{AreaSqFt: prep.area}, district, *site.Proposal)
		report.Stats.ZoningTime = time.Since(zoningStart)
		hooks.OnStageComplete(ctx, "zoning", report.Stats.ZoningTime, zerr)
		if zerr != nil {
			report.Zoning = &ZoningSection{District: district.District, Error: zerr.Error()}
			r.Logger.Warn("zoning evaluation failed", "error", zerr)
		} else {
			report.Zoning = newZoningSection(zres)
			r.Logger.Info("evaluated zoning",
				"district", zres.District,
				"score", zres.Score,
				"compliant", zres.OverallCompliant,
				"duration", report.Stats.ZoningTime)
		}
	}

	report.Summary = newSummary(report, geom.Area(developable))
	return report, nil
}

// parseRules extracts structured rules from ordinance text with caching.
func (r *Runner) parseRules(ctx context.Context, text string, refresh bool) (rules.ParseResult, bool, error) {
	if err := errors.ValidateRulesText(text); err != nil {
		return rules.ParseResult{}, false, err
	}

	key := r.Keyer.RulesKey(text)

	// Try cache first (unless refresh requested)
	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached rules.ParseResult
			if json.Unmarshal(data, &cached) == nil {
				observability.Cache().OnCacheHit(ctx, "rules")
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
	}
	observability.Cache().OnCacheMiss(ctx, "rules")

	res := rules.Parse(text)

	// Cache the result
	if data, err := json.Marshal(res); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLRules)
		observability.Cache().OnCacheSet(ctx, "rules", len(data))
	}

	return res, false, nil // Cache miss
}

// ParseRulesWithCacheInfo extracts structured rules from ordinance text
// with caching and reports whether the result came from cache.
func (r *Runner) ParseRulesWithCacheInfo(ctx context.Context, text string) (rules.ParseResult, bool, error) {
	return r.parseRules(ctx, text, false)
}

// ParseRules is a convenience wrapper that calls ParseRulesWithCacheInfo
// and discards the cache hit info.
func (r *Runner) ParseRules(ctx context.Context, text string) (rules.ParseResult, error) {
	res, _, err := r.parseRules(ctx, text, false)
	return res, err
}

// buildable computes the setback-eroded buildable area with caching.
// The key covers the parcel geometry, the effective setbacks, and the
// obstacle list, so a site edit anywhere else still hits.
func (r *Runner) buildable(ctx context.Context, site *Site, prep *sitePrep, sb setback.SetbackSet, refresh bool) (setback.Result, bool, error) {
	hash, err := buildableHash(site, sb)
	if err != nil {
		return setback.Result{}, false, errors.Wrap(errors.ErrCodeInternal, err, "hash site geometry")
	}
	key := r.Keyer.SiteKey(hash)

	// Try cache first (unless refresh requested)
	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached setback.Result
			if json.Unmarshal(data, &cached) == nil {
				observability.Cache().OnCacheHit(ctx, "site")
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
	}
	observability.Cache().OnCacheMiss(ctx, "site")

	res, err := setback.BuildableArea(prep.parcel, sb, prep.structures)
	if err != nil {
		return setback.Result{}, false, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "setback stage")
	}

	// Cache the result
	if data, err := json.Marshal(res); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLSite)
		observability.Cache().OnCacheSet(ctx, "site", len(data))
	}

	return res, false, nil // Cache miss
}

// buildableHash keys the buildable-area computation by everything it
// depends on.
func buildableHash(site *Site, sb setback.SetbackSet) (string, error) {
	data, err := json.Marshal(struct {
		Geometry  []byte
		Rings     [][]orb.Point
		CRS       adapt.CRS
		Setbacks  setback.SetbackSet
		Obstacles []SiteObstacle
	}{site.Geometry, site.Rings, site.CRS, sb, site.Obstacles})
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// BuildableWithCacheInfo computes the buildable area for a site with
// caching and reports whether the result came from cache. Setbacks are
// resolved the same way AnalyzeSite resolves them: explicit site values
// first, values extracted from RulesText otherwise.
func (r *Runner) BuildableWithCacheInfo(ctx context.Context, site *Site) (setback.Result, bool, error) {
	if site == nil {
		return setback.Result{}, false, errors.New(errors.ErrCodeInvalidSite, "site is nil")
	}
	prep, err := adaptSite(site)
	if err != nil {
		return setback.Result{}, false, err
	}

	sb, err := r.searchSetbacks(ctx, site)
	if err != nil {
		return setback.Result{}, false, err
	}

	return r.buildable(ctx, site, prep, sb, false)
}

// Buildable is a convenience wrapper that calls BuildableWithCacheInfo
// and discards the cache hit info.
func (r *Runner) Buildable(ctx context.Context, site *Site) (setback.Result, error) {
	res, _, err := r.BuildableWithCacheInfo(ctx, site)
	return res, err
}

// TestFit runs the placement search for one building on a site and
// returns the complete fit result, every candidate included. Reports
// from AnalyzeSite keep only the recommendation and a count; hosts
// that present or rank all viable positions go through here instead.
//
// Setbacks and the developable region are resolved exactly the way
// AnalyzeSite resolves them, and the rules and buildable stages share
// its caches. The spec argument wins over site.Building.
func (r *Runner) TestFit(ctx context.Context, site *Site, spec placement.Spec, opts placement.Options) (placement.FitResult, error) {
	prep, sb, developable, err := r.resolveSearchSite(ctx, site)
	if err != nil {
		return placement.FitResult{}, err
	}

	opts.Developable = developable
	return placement.TestFit(ctx, prep.parcel, spec, sb, prep.structures, opts)
}

// TestPair runs the pairwise layout search for up to two buildings on a
// site, keeping Options.MinSpacingFt between them. Site resolution
// matches [Runner.TestFit]; existing structures are carved out of the
// search region before the pair search sees it.
func (r *Runner) TestPair(ctx context.Context, site *Site, specs []placement.Spec, opts placement.Options) (placement.MultiResult, error) {
	prep, sb, developable, err := r.resolveSearchSite(ctx, site)
	if err != nil {
		return placement.MultiResult{}, err
	}

	if len(prep.structures) > 0 && len(developable) > 0 {
		footprints, err := geom.UnionAll(prep.structures)
		if err != nil {
			return placement.MultiResult{}, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "existing structures")
		}
		developable, err = geom.Difference(developable, footprints)
		if err != nil {
			return placement.MultiResult{}, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "developable region")
		}
	}

	opts.Developable = developable
	return placement.TestMultiple(ctx, prep.parcel, specs, sb, opts)
}

// OptimizeSize finds building dimensions for a target footprint area on
// a site, resolving setbacks the way [Runner.TestFit] does.
func (r *Runner) OptimizeSize(ctx context.Context, site *Site, targetArea float64) (placement.SizeResult, error) {
	if site == nil {
		return placement.SizeResult{}, errors.New(errors.ErrCodeInvalidSite, "site is nil")
	}
	prep, err := adaptSite(site)
	if err != nil {
		return placement.SizeResult{}, err
	}
	sb, err := r.searchSetbacks(ctx, site)
	if err != nil {
		return placement.SizeResult{}, err
	}
	return placement.OptimizeSize(prep.parcel, targetArea, sb)
}

// resolveSearchSite adapts the site and produces the effective setbacks
// and the obstacle-clipped developable region a placement search runs
// against. The rules and buildable stages go through the runner caches.
func (r *Runner) resolveSearchSite(ctx context.Context, site *Site) (*sitePrep, setback.SetbackSet, orb.MultiPolygon, error) {
	if site == nil {
		return nil, setback.SetbackSet{}, nil, errors.New(errors.ErrCodeInvalidSite, "site is nil")
	}
	prep, err := adaptSite(site)
	if err != nil {
		return nil, setback.SetbackSet{}, nil, err
	}

	sb, err := r.searchSetbacks(ctx, site)
	if err != nil {
		return nil, setback.SetbackSet{}, nil, err
	}

	sres, _, err := r.buildable(ctx, site, prep, sb, false)
	if err != nil {
		return nil, setback.SetbackSet{}, nil, err
	}

	developable := sres.Buildable
	if len(prep.obstacles) > 0 && len(sres.Buildable) > 0 {
		ores, err := obstacle.Analyze(prep.parcel, prep.obstacles, obstacle.Options{})
		if err != nil {
			return nil, setback.SetbackSet{}, nil, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "obstacle stage")
		}
		developable, err = geom.Intersection(sres.Buildable, ores.Developable.Region)
		if err != nil {
			return nil, setback.SetbackSet{}, nil, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "developable region")
		}
	}
	if developable == nil {
		developable = orb.MultiPolygon{}
	}
	return prep, sb, developable, nil
}

// searchSetbacks resolves effective setbacks for a search entry point,
// extracting them from RulesText when the site sets none explicitly.
func (r *Runner) searchSetbacks(ctx context.Context, site *Site) (setback.SetbackSet, error) {
	var parsed *rules.ParseResult
	if !site.Setbacks.Any() && site.RulesText != "" {
		pr, _, err := r.parseRules(ctx, site.RulesText, false)
		if err != nil {
			return setback.SetbackSet{}, err
		}
		parsed = &pr
	}
	return resolveSetbacks(site, parsed), nil
}

// resolveSetbacks picks the effective setbacks: explicit site values
// win, extracted ordinance values fill in otherwise.
func resolveSetbacks(site *Site, parsed *rules.ParseResult) setback.SetbackSet {
	if site.Setbacks.Any() || parsed == nil {
		return site.Setbacks
	}
	return setback.FromRules(parsed.Rules.Setbacks)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
