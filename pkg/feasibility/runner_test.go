package feasibility

import (
	"context"
	stderrors "errors"
	"io"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/cache"
	"github.com/landsight/parcelfit/pkg/errors"
	"github.com/landsight/parcelfit/pkg/observability"
	"github.com/landsight/parcelfit/pkg/obstacle"
	"github.com/landsight/parcelfit/pkg/placement"
	"github.com/landsight/parcelfit/pkg/rules"
	"github.com/landsight/parcelfit/pkg/setback"
	"github.com/landsight/parcelfit/pkg/zoning"
)

func fp(v float64) *float64 { return &v }

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func testRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(io.Discard))
}

func uniformSetbacks(d float64) setback.SetbackSet {
	return setback.SetbackSet{Front: &d, Rear: &d, Side: &d}
}

// classicSite returns the 80x100 parcel with a uniform 20 ft setback
// whose 40x60 core fits a 40x30 house in exactly four grid positions.
func classicSite() *Site {
	return &Site{
		Name:     "classic",
		Rings:    [][]orb.Point{{{0, 0}, {80, 0}, {80, 100}, {0, 100}, {0, 0}}},
		Setbacks: uniformSetbacks(20),
		Building: &placement.Spec{Type: "house"},
	}
}

const alderOrdinance = "Front setback: 25 feet. Rear setback: 25 feet. " +
	"Side setback: 25 feet. Maximum height: 30 feet. " +
	"Permitted uses: single family dwellings."

// rulesSite carries ordinance text and no explicit setbacks, so the
// buildable stage has to work from the extracted rules.
func rulesSite(name string) *Site {
	return &Site{
		Name:      name,
		Rings:     [][]orb.Point{{{0, 0}, {80, 0}, {80, 100}, {0, 100}, {0, 0}}},
		RulesText: alderOrdinance,
	}
}

func analyze(t *testing.T, r *Runner, site *Site, opts AnalyzeOptions) *Report {
	t.Helper()
	rep, err := r.AnalyzeSite(context.Background(), site, opts)
	if err != nil {
		t.Fatalf("AnalyzeSite() error: %v", err)
	}
	return rep
}

func TestAnalyzeSiteClassicLot(t *testing.T) {
	rep := analyze(t, testRunner(nil), classicSite(), AnalyzeOptions{})

	p := rep.Parcel
	if p.Format != "rings" || p.Geographic {
		t.Errorf("parcel adapted as %s geographic=%v, want planar rings", p.Format, p.Geographic)
	}
	if !almostEqual(p.AreaSqFt, 8000) || !almostEqual(p.WidthFt, 80) || !almostEqual(p.DepthFt, 100) {
		t.Errorf("parcel = %v sq ft %vx%v, want 8000 sq ft 80x100", p.AreaSqFt, p.WidthFt, p.DepthFt)
	}

	if rep.Rules != nil {
		t.Error("rules section present without ordinance text")
	}

	b := rep.Buildable
	if b.Empty || len(b.Region) != 1 || b.Parts != 1 {
		t.Fatalf("buildable region = %d parts, empty=%v", b.Parts, b.Empty)
	}
	if !almostEqual(b.AreaSqFt, 2400) || !almostEqual(b.ParcelPct, 30) || !almostEqual(b.SetbackFt, 20) {
		t.Errorf("buildable = %v sq ft (%v%%) at %v ft, want 2400 (30%%) at 20", b.AreaSqFt, b.ParcelPct, b.SetbackFt)
	}
	if !almostEqual(b.LargestSqFt, 2400) {
		t.Errorf("largest part = %v, want 2400", b.LargestSqFt)
	}

	o := rep.Obstacles
	if o.Total != 0 || !almostEqual(o.DevelopableSqFt, 8000) || !almostEqual(o.DevelopablePct, 100) {
		t.Errorf("obstacle section = %+v, want an unconstrained parcel", o)
	}
	if o.Label != obstacle.LabelHigh || !almostEqual(o.Score, 10) {
		t.Errorf("feasibility = %v (%s), want 10 (high)", o.Score, o.Label)
	}

	// With no obstacles the developable region is the buildable region,
	// bit for bit.
	if rep.Summary.DevelopableSqFt != b.AreaSqFt {
		t.Errorf("developable = %v, want exactly the buildable %v", rep.Summary.DevelopableSqFt, b.AreaSqFt)
	}

	y := rep.Yard
	if !almostEqual(y.OutdoorSqFt, 8000) || !almostEqual(y.OutdoorPct, 100) || len(y.Parts) != 1 {
		t.Errorf("yard = %v sq ft (%v%%) in %d parts, want the whole parcel", y.OutdoorSqFt, y.OutdoorPct, len(y.Parts))
	}
	if y.OpenSpace != nil {
		t.Error("open space check ran without a minimum")
	}

	pl := rep.Placement
	if pl == nil || pl.Error != "" {
		t.Fatalf("placement section = %+v", pl)
	}
	if !pl.Fits || pl.Candidates != 4 || !almostEqual(pl.WidthFt, 40) || !almostEqual(pl.DepthFt, 30) {
		t.Errorf("placement = fits=%v %d candidates %vx%v, want 4 placements of a 40x30 house", pl.Fits, pl.Candidates, pl.WidthFt, pl.DepthFt)
	}
	if !almostEqual(pl.DevelopableSqFt, 2400) {
		t.Errorf("placement searched %v sq ft, want 2400", pl.DevelopableSqFt)
	}
	if pl.Recommended == nil || !almostEqual(pl.Recommended.Position[0], 40) || !almostEqual(pl.Recommended.Position[1], 35) {
		t.Errorf("recommended = %+v, want the front row center (40, 35)", pl.Recommended)
	}

	if rep.Zoning != nil {
		t.Error("zoning section present without a proposal")
	}

	s := rep.Summary
	if !almostEqual(s.ParcelSqFt, 8000) || !almostEqual(s.BuildableSqFt, 2400) || !almostEqual(s.BuildablePct, 30) {
		t.Errorf("summary numbers = %+v", s)
	}
	if s.Fits == nil || !*s.Fits {
		t.Error("summary should report the house fits")
	}
	if s.Compliant != nil {
		t.Error("summary has a zoning verdict without a proposal")
	}
	if len(s.Highlights) != 2 {
		t.Fatalf("highlights = %v, want buildable and placement lines", s.Highlights)
	}
	want := "2400 of 8000 sq ft (30%) remains buildable after the 20 ft setback"
	if s.Highlights[0] != want {
		t.Errorf("highlight = %q, want %q", s.Highlights[0], want)
	}
	if s.Highlights[1] != "a 40x30 ft building fits (4 valid positions)" {
		t.Errorf("highlight = %q", s.Highlights[1])
	}

	if rep.CacheInfo != (CacheInfo{}) {
		t.Errorf("cache info = %+v, want all misses without a cache", rep.CacheInfo)
	}
	if rep.Stats.TotalTime <= 0 {
		t.Errorf("total time = %v", rep.Stats.TotalTime)
	}
}

func TestAnalyzeSiteObstacles(t *testing.T) {
	site := classicSite()
	site.Name = "constrained"
	site.Building = &placement.Spec{Type: "shed"}
	site.MinOpenSpacePercent = 85
	site.Obstacles = []SiteObstacle{
		{
			ID:             "old-house",
			Type:           obstacle.TypeExistingStructure,
			Rings:          [][]orb.Point{{{0, 0}, {40, 0}, {40, 40}, {0, 40}, {0, 0}}},
			Removable:      true,
			MitigationCost: 25000,
		},
		{
			ID:       "creek",
			Type:     obstacle.TypeStream,
			BufferFt: 10,
			Rings:    [][]orb.Point{{{-20, 95}, {100, 95}, {100, 100}, {-20, 100}, {-20, 95}}},
		},
	}

	rep := analyze(t, testRunner(nil), site, AnalyzeOptions{})

	// The eroded core loses the corner the existing structure overlaps.
	b := rep.Buildable
	if !almostEqual(b.AreaSqFt, 2000) || !almostEqual(b.ParcelPct, 25) || b.Parts != 1 {
		t.Errorf("buildable = %v sq ft (%v%%) in %d parts, want 2000 (25%%) in one", b.AreaSqFt, b.ParcelPct, b.Parts)
	}

	o := rep.Obstacles
	if o.Total != 2 || o.High != 1 || o.Medium != 1 || o.Low != 0 {
		t.Errorf("inventory = %+v, want one high and one medium obstacle", o)
	}
	if o.Removable != 1 || !almostEqual(o.MitigationCost, 25000) {
		t.Errorf("removable = %d at $%v, want the old house at $25000", o.Removable, o.MitigationCost)
	}
	if len(o.ZoneHigh) == 0 || len(o.ZoneMedium) == 0 || len(o.ZoneLow) != 0 {
		t.Errorf("zones = %d/%d/%d parts", len(o.ZoneHigh), len(o.ZoneMedium), len(o.ZoneLow))
	}
	if o.DevelopableSqFt <= 0 || o.DevelopableSqFt >= 8000 {
		t.Errorf("developable = %v, want a real constraint", o.DevelopableSqFt)
	}
	if !almostEqual(o.DevelopablePct, 100*o.DevelopableSqFt/8000) {
		t.Errorf("developable pct = %v for %v sq ft", o.DevelopablePct, o.DevelopableSqFt)
	}
	if o.Label != obstacle.LabelMedium {
		t.Errorf("feasibility = %v (%s), want medium", o.Score, o.Label)
	}

	// The buffered structure zone reaches into the core, so the combined
	// developable area is strictly inside the buildable area.
	dev := rep.Summary.DevelopableSqFt
	if dev <= 0 || dev >= b.AreaSqFt {
		t.Errorf("combined developable = %v, want between 0 and %v", dev, b.AreaSqFt)
	}

	y := rep.Yard
	if !almostEqual(y.OutdoorSqFt, 6400) || !almostEqual(y.OutdoorPct, 80) || len(y.Parts) != 1 {
		t.Errorf("yard = %v sq ft (%v%%) in %d parts, want 6400 (80%%) in one", y.OutdoorSqFt, y.OutdoorPct, len(y.Parts))
	}
	if len(y.Backyards) != 1 {
		t.Fatalf("backyards = %d, want the rear L-shape", len(y.Backyards))
	}
	by := y.Backyards[0]
	if !almostEqual(by.AreaSqFt, 6400) || !almostEqual(by.WidthFt, 80) || !almostEqual(by.DepthFt, 100) {
		t.Errorf("backyard = %v sq ft %vx%v", by.AreaSqFt, by.WidthFt, by.DepthFt)
	}
	if len(by.Uses) != 5 {
		t.Errorf("backyard uses = %v, want all five", by.Uses)
	}
	os := y.OpenSpace
	if os == nil || os.Compliant || !almostEqual(os.ActualPercent, 80) {
		t.Fatalf("open space = %+v, want a failed 85%% check", os)
	}

	if rep.Placement == nil || rep.Placement.Error != "" || !rep.Placement.Fits {
		t.Errorf("placement = %+v, want the shed to fit", rep.Placement)
	}

	h := rep.Summary.Highlights
	if len(h) != 4 {
		t.Fatalf("highlights = %v", h)
	}
	if h[0] != "2000 of 8000 sq ft (25%) remains buildable after the 20 ft setback" {
		t.Errorf("highlight = %q", h[0])
	}
	if !strings.Contains(h[1], "2 obstacles") {
		t.Errorf("highlight = %q, want the obstacle count", h[1])
	}
	if !strings.HasPrefix(h[2], "a 12x10 ft building fits") {
		t.Errorf("highlight = %q", h[2])
	}
	if h[3] != "open space 80.0% falls short of the 85.0% minimum" {
		t.Errorf("highlight = %q", h[3])
	}
}

func TestAnalyzeSiteRulesText(t *testing.T) {
	site := rulesSite("alder")
	site.Proposal = &zoning.Proposal{
		Use:      "single family dwellings",
		HeightFt: 28,
		Setbacks: uniformSetbacks(25),
	}

	rep := analyze(t, testRunner(nil), site, AnalyzeOptions{})

	r := rep.Rules
	if r == nil {
		t.Fatal("no rules section")
	}
	if !almostEqual(r.Confidence, 0.8) {
		t.Errorf("confidence = %v, want 0.8", r.Confidence)
	}
	if len(r.Warnings) != 0 || !r.Consistent || len(r.Inconsistencies) != 0 {
		t.Errorf("extraction flags = %+v", r)
	}
	sb := r.Rules.Setbacks
	if sb.Front == nil || *sb.Front != 25 || sb.Rear == nil || *sb.Rear != 25 || sb.Side == nil || *sb.Side != 25 {
		t.Errorf("extracted setbacks = %+v, want 25 ft on all sides", sb)
	}
	if r.Rules.Height.MaxFeet == nil || *r.Rules.Height.MaxFeet != 30 {
		t.Errorf("extracted height = %+v, want 30 ft", r.Rules.Height)
	}

	// The extracted 25 ft setback drives the erosion: 30x50 core.
	b := rep.Buildable
	if !almostEqual(b.SetbackFt, 25) || !almostEqual(b.AreaSqFt, 1500) {
		t.Errorf("buildable = %v sq ft at %v ft, want 1500 at 25", b.AreaSqFt, b.SetbackFt)
	}
	if rep.Summary.DevelopableSqFt != b.AreaSqFt {
		t.Errorf("developable = %v, want the buildable area", rep.Summary.DevelopableSqFt)
	}

	// Without structured district rules the zoning stage runs against
	// the extracted rule set.
	z := rep.Zoning
	if z == nil || z.Error != "" {
		t.Fatalf("zoning section = %+v", z)
	}
	if z.District != "" {
		t.Errorf("district = %q, want unnamed extracted rules", z.District)
	}
	if !z.Compliant || len(z.Violations) != 0 {
		t.Errorf("zoning = compliant=%v violations=%v", z.Compliant, z.Violations)
	}
	if rep.Summary.Compliant == nil || !*rep.Summary.Compliant {
		t.Error("summary should report compliance")
	}
}

func TestAnalyzeSiteZoning(t *testing.T) {
	district := &zoning.DistrictRules{
		District: "R-1",
		Rules: rules.RuleSet{
			Setbacks: rules.SetbackRules{General: fp(20)},
			Height:   rules.HeightRules{MaxFeet: fp(35)},
			Coverage: rules.CoverageRules{MaxCoveragePercent: fp(40)},
			Uses:     rules.UseRules{Permitted: []string{"single family dwelling"}},
		},
	}
	site := classicSite()
	site.Building = nil
	site.District = district
	site.Proposal = &zoning.Proposal{
		Use:           "single family dwelling",
		HeightFt:      28,
		FootprintSqFt: 1200,
		Setbacks:      uniformSetbacks(25),
	}

	rep := analyze(t, testRunner(nil), site, AnalyzeOptions{})

	z := rep.Zoning
	if z == nil || z.Error != "" {
		t.Fatalf("zoning section = %+v", z)
	}
	if z.District != "R-1" || len(z.Checks) != 8 {
		t.Errorf("district = %q with %d checks, want R-1 with 8", z.District, len(z.Checks))
	}
	if !z.Compliant || !almostEqual(z.Score, 1) {
		t.Errorf("zoning = compliant=%v score=%v", z.Compliant, z.Score)
	}
	h := rep.Summary.Highlights
	if len(h) != 2 || h[1] != "the proposal passes zoning review" {
		t.Errorf("highlights = %v", h)
	}

	// Push the height over the limit and the verdict flips.
	site.Proposal.HeightFt = 40
	rep = analyze(t, testRunner(nil), site, AnalyzeOptions{})
	z = rep.Zoning
	if z.Compliant || !almostEqual(z.Score, 0.75) {
		t.Errorf("zoning = compliant=%v score=%v, want a 3/4 score", z.Compliant, z.Score)
	}
	if len(z.Violations) != 1 || !strings.Contains(z.Violations[0], "height") {
		t.Errorf("violations = %v", z.Violations)
	}
	if rep.Summary.Compliant == nil || *rep.Summary.Compliant {
		t.Error("summary should report the violation")
	}
	h = rep.Summary.Highlights
	if len(h) != 2 || h[1] != "zoning review flags 1 violation" {
		t.Errorf("highlights = %v", h)
	}
}

func TestAnalyzeSitePlacementError(t *testing.T) {
	site := classicSite()
	site.Building = &placement.Spec{Type: "castle"}

	rep := analyze(t, testRunner(nil), site, AnalyzeOptions{})

	if rep.Placement == nil || rep.Placement.Error == "" {
		t.Fatalf("placement section = %+v, want an embedded error", rep.Placement)
	}
	if !strings.Contains(rep.Placement.Error, "castle") {
		t.Errorf("placement error = %q", rep.Placement.Error)
	}
	if rep.Summary.Fits != nil {
		t.Error("summary has a fit verdict for a failed search")
	}
	// The rest of the report still stands.
	if !almostEqual(rep.Buildable.AreaSqFt, 2400) {
		t.Errorf("buildable = %v, want 2400", rep.Buildable.AreaSqFt)
	}
}

func TestAnalyzeSitePlacementGoals(t *testing.T) {
	opts := AnalyzeOptions{Placement: placement.Options{
		Goals: []placement.Goal{placement.GoalCenterPlacement},
	}}
	rep := analyze(t, testRunner(nil), classicSite(), opts)

	rec := rep.Placement.Recommended
	if rec == nil {
		t.Fatal("no recommendation")
	}
	// Scoring by centrality alone moves the pick off the front row.
	if !almostEqual(rec.Position[0], 40) || !almostEqual(rec.Position[1], 45) {
		t.Errorf("recommended center = %v, want (40, 45)", rec.Position)
	}
}

func TestAnalyzeSiteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := testRunner(nil).AnalyzeSite(ctx, classicSite(), AnalyzeOptions{})
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if rep != nil {
		t.Error("got a report from a canceled run")
	}
}

func TestAnalyzeSiteValidation(t *testing.T) {
	r := testRunner(nil)
	ctx := context.Background()

	if _, err := r.AnalyzeSite(ctx, nil, AnalyzeOptions{}); !errors.Is(err, errors.ErrCodeInvalidSite) {
		t.Errorf("nil site error = %v", err)
	}
	if _, err := r.AnalyzeSite(ctx, &Site{}, AnalyzeOptions{}); !errors.Is(err, errors.ErrCodeInvalidSite) {
		t.Errorf("empty site error = %v", err)
	}

	site := classicSite()
	site.Obstacles = []SiteObstacle{{ID: "ghost", Type: obstacle.TypeWetland}}
	if _, err := r.AnalyzeSite(ctx, site, AnalyzeOptions{}); !errors.Is(err, errors.ErrCodeInvalidSite) {
		t.Errorf("geometryless obstacle error = %v", err)
	}

	bad := &Site{Geometry: []byte("not a geometry")}
	if _, err := r.AnalyzeSite(ctx, bad, AnalyzeOptions{}); !errors.Is(err, errors.ErrCodeInvalidGeometry) {
		t.Errorf("undecodable geometry error = %v", err)
	}
}

func TestAnalyzeSiteReportCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	r := testRunner(fc)
	defer r.Close()

	site := classicSite()
	rep1 := analyze(t, r, site, AnalyzeOptions{})
	if rep1.CacheInfo.ReportHit {
		t.Fatal("first run hit the report cache")
	}

	rep2 := analyze(t, r, site, AnalyzeOptions{})
	if !rep2.CacheInfo.ReportHit {
		t.Fatal("second run missed the report cache")
	}
	if rep2.ID != rep1.ID {
		t.Errorf("cached report ID = %v, want %v", rep2.ID, rep1.ID)
	}
	if !reflect.DeepEqual(rep2.Buildable, rep1.Buildable) {
		t.Error("cached buildable section differs from the computed one")
	}
	if !reflect.DeepEqual(rep2.Summary, rep1.Summary) {
		t.Error("cached summary differs from the computed one")
	}

	// Refresh recomputes and writes the new report back.
	rep3 := analyze(t, r, site, AnalyzeOptions{Refresh: true})
	if rep3.CacheInfo.ReportHit {
		t.Fatal("refresh run returned a cached report")
	}
	if rep3.ID == rep1.ID {
		t.Error("refresh run reused the old report")
	}
	if !reflect.DeepEqual(rep3.Summary, rep1.Summary) {
		t.Error("recomputed summary differs between runs")
	}

	rep4 := analyze(t, r, site, AnalyzeOptions{})
	if !rep4.CacheInfo.ReportHit || rep4.ID != rep3.ID {
		t.Errorf("run after refresh got %v (hit=%v), want the refreshed report %v", rep4.ID, rep4.CacheInfo.ReportHit, rep3.ID)
	}
}

func TestAnalyzeSiteStageCaches(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	r := testRunner(fc)
	defer r.Close()

	rep1 := analyze(t, r, rulesSite("alder"), AnalyzeOptions{})
	if rep1.CacheInfo != (CacheInfo{}) {
		t.Fatalf("first run cache info = %+v", rep1.CacheInfo)
	}

	// A renamed site misses the report cache but shares the rules text
	// and geometry, so both stage caches hit.
	rep2 := analyze(t, r, rulesSite("birch"), AnalyzeOptions{})
	if rep2.CacheInfo.ReportHit {
		t.Error("renamed site hit the report cache")
	}
	if !rep2.CacheInfo.RulesHit {
		t.Error("renamed site missed the rules cache")
	}
	if !rep2.CacheInfo.SiteHit {
		t.Error("renamed site missed the buildable cache")
	}
	if !reflect.DeepEqual(rep2.Buildable, rep1.Buildable) {
		t.Error("cached buildable section differs between sites")
	}
}

type recordAnalysisHooks struct {
	observability.NoopAnalysisHooks
	names  []string
	stages []string
}

func (r *recordAnalysisHooks) OnAnalysisStart(_ context.Context, site string) {
	r.names = append(r.names, site)
}

func (r *recordAnalysisHooks) OnStageStart(_ context.Context, stage string) {
	r.stages = append(r.stages, stage)
}

func TestAnalyzeSiteStageOrder(t *testing.T) {
	rec := &recordAnalysisHooks{}
	observability.SetAnalysisHooks(rec)
	defer observability.Reset()

	site := classicSite()
	site.RulesText = alderOrdinance
	site.Proposal = &zoning.Proposal{Use: "single family dwellings"}
	analyze(t, testRunner(nil), site, AnalyzeOptions{})

	want := []string{"adapt", "rules", "setback", "obstacle", "yard", "placement", "zoning"}
	if !reflect.DeepEqual(rec.stages, want) {
		t.Errorf("stage order = %v, want %v", rec.stages, want)
	}
	if !reflect.DeepEqual(rec.names, []string{"classic"}) {
		t.Errorf("analysis starts = %v", rec.names)
	}
}

func TestBuildable(t *testing.T) {
	r := testRunner(nil)
	ctx := context.Background()

	res, err := r.Buildable(ctx, classicSite())
	if err != nil {
		t.Fatalf("Buildable() error: %v", err)
	}
	if !almostEqual(res.Area, 2400) || !almostEqual(res.Setback, 20) {
		t.Errorf("buildable = %v sq ft at %v ft, want 2400 at 20", res.Area, res.Setback)
	}

	// Without explicit setbacks the ordinance text supplies them.
	res, err = r.Buildable(ctx, rulesSite("alder"))
	if err != nil {
		t.Fatalf("Buildable() error: %v", err)
	}
	if !almostEqual(res.Area, 1500) || !almostEqual(res.Setback, 25) {
		t.Errorf("buildable = %v sq ft at %v ft, want 1500 at 25", res.Area, res.Setback)
	}

	if _, err := r.Buildable(ctx, nil); !errors.Is(err, errors.ErrCodeInvalidSite) {
		t.Errorf("nil site error = %v", err)
	}
}

func TestBuildableCacheInfo(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	r := testRunner(fc)
	defer r.Close()

	site := classicSite()
	if _, hit, err := r.BuildableWithCacheInfo(context.Background(), site); err != nil || hit {
		t.Fatalf("first call = hit=%v err=%v", hit, err)
	}
	res, hit, err := r.BuildableWithCacheInfo(context.Background(), site)
	if err != nil || !hit {
		t.Fatalf("second call = hit=%v err=%v", hit, err)
	}
	if !almostEqual(res.Area, 2400) {
		t.Errorf("cached area = %v, want 2400", res.Area)
	}
}

func TestRunnerTestFit(t *testing.T) {
	// The spec argument drives the search even when the site requests a
	// different building.
	res, err := testRunner(nil).TestFit(context.Background(), classicSite(), placement.Spec{Type: "garage"}, placement.Options{})
	if err != nil {
		t.Fatalf("TestFit() error: %v", err)
	}
	if !res.Fits || !almostEqual(res.Width, 24) || !almostEqual(res.Depth, 24) {
		t.Fatalf("fit = fits=%v %vx%v, want a 24x24 garage", res.Fits, res.Width, res.Depth)
	}
	if !almostEqual(res.DevelopableArea, 2400) {
		t.Errorf("developable = %v, want 2400", res.DevelopableArea)
	}

	// Unlike the report, the result carries the full candidate list: a
	// 24x24 footprint slides to 2x4 grid positions in the 40x60 core.
	if len(res.Candidates) != 8 || res.Truncated {
		t.Fatalf("candidates = %d truncated=%v, want all 8", len(res.Candidates), res.Truncated)
	}
	for i, c := range res.Candidates {
		if len(c.Footprint) == 0 || len(c.Scores) == 0 {
			t.Errorf("candidate %d has no footprint or scores", i)
		}
		if c.Clearance != -1 {
			t.Errorf("candidate %d clearance = %v on an empty lot", i, c.Clearance)
		}
	}
	if res.Recommended == nil {
		t.Fatal("no recommendation")
	}
}

func TestRunnerTestFitGoals(t *testing.T) {
	opts := placement.Options{Goals: []placement.Goal{placement.GoalCenterPlacement}}
	res, err := testRunner(nil).TestFit(context.Background(), classicSite(), placement.Spec{Type: "house"}, opts)
	if err != nil {
		t.Fatalf("TestFit() error: %v", err)
	}
	if res.Recommended == nil || !almostEqual(res.Recommended.Position[0], 40) || !almostEqual(res.Recommended.Position[1], 45) {
		t.Errorf("recommended = %+v, want the centered (40, 45)", res.Recommended)
	}
}

func TestRunnerTestFitRulesSetbacks(t *testing.T) {
	// The ordinance's 25 ft setbacks leave a 30x50 core, too narrow for
	// a 40 ft wide house.
	res, err := testRunner(nil).TestFit(context.Background(), rulesSite("alder"), placement.Spec{Type: "house"}, placement.Options{})
	if err != nil {
		t.Fatalf("TestFit() error: %v", err)
	}
	if res.Fits || len(res.Candidates) != 0 {
		t.Fatalf("fit = fits=%v with %d candidates, want none in a 30 ft core", res.Fits, len(res.Candidates))
	}
	if !almostEqual(res.DevelopableArea, 1500) {
		t.Errorf("developable = %v, want 1500", res.DevelopableArea)
	}
	if len(res.Advice) == 0 || !strings.Contains(strings.Join(res.Advice, " "), "swap width and depth") {
		t.Errorf("advice = %v, want the orientation hint", res.Advice)
	}
}

func TestRunnerTestFitObstacles(t *testing.T) {
	site := classicSite()
	site.Obstacles = []SiteObstacle{{
		ID:    "old-house",
		Type:  obstacle.TypeExistingStructure,
		Rings: [][]orb.Point{{{0, 0}, {40, 0}, {40, 40}, {0, 40}, {0, 0}}},
	}}

	res, err := testRunner(nil).TestFit(context.Background(), site, placement.Spec{Type: "shed"}, placement.Options{})
	if err != nil {
		t.Fatalf("TestFit() error: %v", err)
	}
	if !res.Fits {
		t.Fatal("a 12x10 shed should still fit beside the old house")
	}
	// The structure and its buffer carve the search region below the
	// 2000 sq ft eroded core.
	if res.DevelopableArea <= 0 || res.DevelopableArea >= 2000 {
		t.Errorf("developable = %v, want a constrained region under 2000", res.DevelopableArea)
	}
	if res.Recommended.Clearance < 0 {
		t.Errorf("clearance = %v, want a measured distance to the old house", res.Recommended.Clearance)
	}
}

func TestRunnerTestFitSharesStageCaches(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	r := testRunner(fc)
	defer r.Close()
	ctx := context.Background()

	if _, err := r.TestFit(ctx, rulesSite("alder"), placement.Spec{Type: "shed"}, placement.Options{}); err != nil {
		t.Fatalf("TestFit() error: %v", err)
	}

	// The fit run populated the rules and buildable stage caches.
	if _, hit, err := r.ParseRulesWithCacheInfo(ctx, alderOrdinance); err != nil || !hit {
		t.Errorf("rules after fit = hit=%v err=%v", hit, err)
	}
	if _, hit, err := r.BuildableWithCacheInfo(ctx, rulesSite("alder")); err != nil || !hit {
		t.Errorf("buildable after fit = hit=%v err=%v", hit, err)
	}
}

func TestRunnerTestFitValidation(t *testing.T) {
	r := testRunner(nil)
	ctx := context.Background()

	if _, err := r.TestFit(ctx, nil, placement.Spec{Type: "shed"}, placement.Options{}); !errors.Is(err, errors.ErrCodeInvalidSite) {
		t.Errorf("nil site error = %v", err)
	}
	if _, err := r.TestFit(ctx, &Site{}, placement.Spec{Type: "shed"}, placement.Options{}); !errors.Is(err, errors.ErrCodeInvalidSite) {
		t.Errorf("empty site error = %v", err)
	}
	if _, err := r.TestFit(ctx, classicSite(), placement.Spec{Type: "castle"}, placement.Options{}); !stderrors.Is(err, placement.ErrUnknownBuildingType) {
		t.Errorf("unknown type error = %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := r.TestFit(canceled, classicSite(), placement.Spec{Type: "house"}, placement.Options{}); !stderrors.Is(err, context.Canceled) {
		t.Errorf("canceled error = %v", err)
	}
}

func TestRunnerTestPair(t *testing.T) {
	specs := []placement.Spec{{Type: "shed"}, {Type: "shed"}}
	res, err := testRunner(nil).TestPair(context.Background(), classicSite(), specs, placement.Options{})
	if err != nil {
		t.Fatalf("TestPair() error: %v", err)
	}
	if !res.Fits || len(res.Placements) != 2 {
		t.Fatalf("pair = fits=%v with %d placements, want two sheds", res.Fits, len(res.Placements))
	}
	if res.Spacing < placement.DefaultMinSpacingFt {
		t.Errorf("spacing = %v, want at least %v", res.Spacing, placement.DefaultMinSpacingFt)
	}
	if res.Score <= 0 {
		t.Errorf("score = %v, want positive", res.Score)
	}
}

func TestRunnerTestPairValidation(t *testing.T) {
	r := testRunner(nil)
	ctx := context.Background()

	if _, err := r.TestPair(ctx, nil, []placement.Spec{{Type: "shed"}}, placement.Options{}); !errors.Is(err, errors.ErrCodeInvalidSite) {
		t.Errorf("nil site error = %v", err)
	}
	three := []placement.Spec{{Type: "shed"}, {Type: "shed"}, {Type: "shed"}}
	if _, err := r.TestPair(ctx, classicSite(), three, placement.Options{}); !stderrors.Is(err, placement.ErrTooManyBuildings) {
		t.Errorf("three specs error = %v", err)
	}
}

func TestRunnerOptimizeSize(t *testing.T) {
	// The legal 20 ft setbacks leave a 2400 sq ft core, so the search
	// should settle right at the floor.
	res, err := testRunner(nil).OptimizeSize(context.Background(), classicSite(), 2400)
	if err != nil {
		t.Fatalf("OptimizeSize() error: %v", err)
	}
	if !res.Fits {
		t.Fatalf("result = %+v, want a fit", res)
	}
	if !almostEqual(res.Setback, 20) {
		t.Errorf("setback = %v, want the 20 ft legal floor", res.Setback)
	}
	if res.Area <= 0 || res.Area > res.CoreArea {
		t.Errorf("area = %v with core %v, want a footprint inside the core", res.Area, res.CoreArea)
	}
	if res.Ratio < 1 || res.Ratio > 2 {
		t.Errorf("ratio = %v, want within the searched 1.0-2.0 range", res.Ratio)
	}
}

func TestRunnerOptimizeSizeValidation(t *testing.T) {
	if _, err := testRunner(nil).OptimizeSize(context.Background(), nil, 1200); !errors.Is(err, errors.ErrCodeInvalidSite) {
		t.Errorf("nil site error = %v", err)
	}
}

func TestResolveSetbacks(t *testing.T) {
	parsed := &rules.ParseResult{Rules: rules.RuleSet{
		Setbacks: rules.SetbackRules{General: fp(25)},
	}}

	// Explicit site setbacks win over extracted ones.
	got := resolveSetbacks(&Site{Setbacks: uniformSetbacks(20)}, parsed)
	if got.Front == nil || *got.Front != 20 {
		t.Errorf("resolved = %+v, want the explicit 20 ft", got)
	}

	// Extracted rules fill in when the site states none.
	got = resolveSetbacks(&Site{}, parsed)
	if got.Front == nil || *got.Front != 25 || got.Rear == nil || *got.Rear != 25 {
		t.Errorf("resolved = %+v, want the general 25 ft everywhere", got)
	}

	if got = resolveSetbacks(&Site{}, nil); got.Any() {
		t.Errorf("resolved = %+v, want no constraints", got)
	}
}

func TestAnalyzeOptionsHash(t *testing.T) {
	base := AnalyzeOptions{}

	// Refresh changes how a run executes, not what it computes.
	if base.hash() != (AnalyzeOptions{Refresh: true}).hash() {
		t.Error("refresh changed the report key")
	}

	// The developable override is rebuilt per run and never keyed.
	override := AnalyzeOptions{Placement: placement.Options{Developable: orb.MultiPolygon{}}}
	if base.hash() != override.hash() {
		t.Error("developable override changed the report key")
	}

	tuned := AnalyzeOptions{Placement: placement.Options{StepFt: 5}}
	if base.hash() == tuned.hash() {
		t.Error("search tuning did not change the report key")
	}
}
