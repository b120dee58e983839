package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/errors"
	"github.com/landsight/parcelfit/pkg/feasibility"
	"github.com/landsight/parcelfit/pkg/geom/adapt"
	"github.com/landsight/parcelfit/pkg/obstacle"
	"github.com/landsight/parcelfit/pkg/placement"
	"github.com/landsight/parcelfit/pkg/rules"
	"github.com/landsight/parcelfit/pkg/setback"
	"github.com/landsight/parcelfit/pkg/zoning"
)

// =============================================================================
// Site File Schema
// =============================================================================

// siteFile is the TOML document describing one site. Every block other
// than [parcel] is optional; file paths are relative to the site file.
type siteFile struct {
	Name                string         `toml:"name"`
	Parcel              parcelFile     `toml:"parcel"`
	Setbacks            setbacksFile   `toml:"setbacks"`
	Rules               rulesTextFile  `toml:"rules"`
	District            *districtFile  `toml:"district"`
	Obstacles           []obstacleFile `toml:"obstacles"`
	Building            *buildingFile  `toml:"building"`
	Proposal            *proposalFile  `toml:"proposal"`
	MinOpenSpacePercent float64        `toml:"min_open_space_percent"`
}

type parcelFile struct {
	Rings   [][][]float64 `toml:"rings"`
	GeoJSON string        `toml:"geojson"`
	CRS     string        `toml:"crs"`
}

type setbacksFile struct {
	Front      *float64 `toml:"front"`
	Rear       *float64 `toml:"rear"`
	Side       *float64 `toml:"side"`
	CornerSide *float64 `toml:"corner_side"`
}

type rulesTextFile struct {
	Text string `toml:"text"`
	File string `toml:"file"`
}

type districtFile struct {
	Name                 string      `toml:"name"`
	Rules                ruleSetFile `toml:"rules"`
	LandscapingPercent   *float64    `toml:"landscaping_percent"`
	HistoricDistrict     bool        `toml:"historic_district"`
	FloodOverlay         bool        `toml:"flood_overlay"`
	EnvironmentalOverlay bool        `toml:"environmental_overlay"`
	Special              []string    `toml:"special"`
}

type ruleSetFile struct {
	Setbacks ruleSetbacksFile `toml:"setbacks"`
	Height   ruleHeightFile   `toml:"height"`
	Coverage ruleCoverageFile `toml:"coverage"`
	Density  ruleDensityFile  `toml:"density"`
	Parking  ruleParkingFile  `toml:"parking"`
	Uses     ruleUsesFile     `toml:"uses"`
}

type ruleSetbacksFile struct {
	Front      *float64 `toml:"front"`
	Rear       *float64 `toml:"rear"`
	Side       *float64 `toml:"side"`
	CornerSide *float64 `toml:"corner_side"`
	General    *float64 `toml:"general"`
}

type ruleHeightFile struct {
	MaxFeet    *float64 `toml:"max_feet"`
	MaxStories *int     `toml:"max_stories"`
}

type ruleCoverageFile struct {
	MaxCoveragePercent *float64 `toml:"max_coverage_percent"`
	MaxFAR             *float64 `toml:"max_far"`
}

type ruleDensityFile struct {
	MaxUnitsPerAcre *float64 `toml:"max_units_per_acre"`
	MinLotSqFt      *float64 `toml:"min_lot_sqft"`
}

type ruleParkingFile struct {
	SpacesPerUnit *float64 `toml:"spaces_per_unit"`
}

type ruleUsesFile struct {
	Permitted   []string `toml:"permitted"`
	Conditional []string `toml:"conditional"`
	Prohibited  []string `toml:"prohibited"`
}

type obstacleFile struct {
	ID             string        `toml:"id"`
	Type           string        `toml:"type"`
	Rings          [][][]float64 `toml:"rings"`
	GeoJSON        string        `toml:"geojson"`
	Severity       string        `toml:"severity"`
	BufferFt       float64       `toml:"buffer_ft"`
	Removable      bool          `toml:"removable"`
	MitigationCost float64       `toml:"mitigation_cost"`
}

type buildingFile struct {
	Type  string  `toml:"type"`
	Width float64 `toml:"width"`
	Depth float64 `toml:"depth"`
	Area  float64 `toml:"area"`
}

type proposalFile struct {
	Use            string       `toml:"use"`
	Units          int          `toml:"units"`
	HeightFt       float64      `toml:"height_ft"`
	Stories        int          `toml:"stories"`
	FootprintSqFt  float64      `toml:"footprint_sqft"`
	FloorAreaSqFt  float64      `toml:"floor_area_sqft"`
	ParkingSpaces  int          `toml:"parking_spaces"`
	LandscapedSqFt float64      `toml:"landscaped_sqft"`
	Setbacks       setbacksFile `toml:"setbacks"`
}

// =============================================================================
// Loading
// =============================================================================

// loadSite reads a site definition from path. TOML files get the full
// schema; bare .geojson/.json files are treated as parcel geometry
// alone, named after the file.
func loadSite(path string) (*feasibility.Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read site file")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var f siteFile
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSite, err, "parse %s", path)
		}
		return f.toSite(filepath.Dir(path), siteNameFromPath(path))
	case ".geojson", ".json":
		return &feasibility.Site{Name: siteNameFromPath(path), Geometry: data}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidSite, "unsupported site file %q (want .toml, .geojson, or .json)", filepath.Base(path))
	}
}

// siteNameFromPath derives a display name from the file name.
func siteNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// toSite converts the decoded file into an analysis site. dir anchors
// relative file references; fallbackName stands in when the file names
// no site.
func (f siteFile) toSite(dir, fallbackName string) (*feasibility.Site, error) {
	site := &feasibility.Site{
		Name:                f.Name,
		Setbacks:            f.Setbacks.toSet(),
		MinOpenSpacePercent: f.MinOpenSpacePercent,
	}
	if site.Name == "" {
		site.Name = fallbackName
	}

	if len(f.Parcel.Rings) > 0 && f.Parcel.GeoJSON != "" {
		return nil, errors.New(errors.ErrCodeInvalidSite, "parcel: rings and geojson are mutually exclusive")
	}
	if len(f.Parcel.Rings) > 0 {
		rings, err := toRings(f.Parcel.Rings, "parcel")
		if err != nil {
			return nil, err
		}
		site.Rings = rings
	} else if f.Parcel.GeoJSON != "" {
		geometry, err := readRelative(dir, f.Parcel.GeoJSON)
		if err != nil {
			return nil, err
		}
		site.Geometry = geometry
	}

	crs, err := parseCRS(f.Parcel.CRS)
	if err != nil {
		return nil, err
	}
	site.CRS = crs

	if f.Rules.Text != "" && f.Rules.File != "" {
		return nil, errors.New(errors.ErrCodeInvalidSite, "rules: text and file are mutually exclusive")
	}
	site.RulesText = f.Rules.Text
	if f.Rules.File != "" {
		text, err := readRelative(dir, f.Rules.File)
		if err != nil {
			return nil, err
		}
		site.RulesText = string(text)
	}

	if f.District != nil {
		site.District = f.District.toDistrict()
	}

	for i, o := range f.Obstacles {
		so, err := o.toSiteObstacle(dir, i)
		if err != nil {
			return nil, err
		}
		site.Obstacles = append(site.Obstacles, so)
	}

	if f.Building != nil {
		site.Building = &placement.Spec{
			Type:       f.Building.Type,
			Width:      f.Building.Width,
			Depth:      f.Building.Depth,
			TargetArea: f.Building.Area,
		}
	}

	if f.Proposal != nil {
		site.Proposal = &zoning.Proposal{
			Use:            f.Proposal.Use,
			Units:          f.Proposal.Units,
			HeightFt:       f.Proposal.HeightFt,
			Stories:        f.Proposal.Stories,
			FootprintSqFt:  f.Proposal.FootprintSqFt,
			FloorAreaSqFt:  f.Proposal.FloorAreaSqFt,
			ParkingSpaces:  f.Proposal.ParkingSpaces,
			LandscapedSqFt: f.Proposal.LandscapedSqFt,
			Setbacks:       f.Proposal.Setbacks.toSet(),
		}
	}

	if err := site.Validate(); err != nil {
		return nil, err
	}
	return site, nil
}

func (s setbacksFile) toSet() setback.SetbackSet {
	return setback.SetbackSet{
		Front:      s.Front,
		Rear:       s.Rear,
		Side:       s.Side,
		CornerSide: s.CornerSide,
	}
}

func (d districtFile) toDistrict() *zoning.DistrictRules {
	return &zoning.DistrictRules{
		District:           d.Name,
		Rules:              d.Rules.toRuleSet(),
		LandscapingPercent: d.LandscapingPercent,
		Special: zoning.SpecialRequirements{
			HistoricDistrict:     d.HistoricDistrict,
			FloodOverlay:         d.FloodOverlay,
			EnvironmentalOverlay: d.EnvironmentalOverlay,
			Other:                d.Special,
		},
	}
}

func (r ruleSetFile) toRuleSet() rules.RuleSet {
	return rules.RuleSet{
		Setbacks: rules.SetbackRules{
			Front:      r.Setbacks.Front,
			Rear:       r.Setbacks.Rear,
			Side:       r.Setbacks.Side,
			CornerSide: r.Setbacks.CornerSide,
			General:    r.Setbacks.General,
		},
		Height: rules.HeightRules{
			MaxFeet:    r.Height.MaxFeet,
			MaxStories: r.Height.MaxStories,
		},
		Coverage: rules.CoverageRules{
			MaxCoveragePercent: r.Coverage.MaxCoveragePercent,
			MaxFAR:             r.Coverage.MaxFAR,
		},
		Density: rules.DensityRules{
			MaxUnitsPerAcre: r.Density.MaxUnitsPerAcre,
			MinLotSqFt:      r.Density.MinLotSqFt,
		},
		Parking: rules.ParkingRules{
			SpacesPerUnit: r.Parking.SpacesPerUnit,
		},
		Uses: rules.UseRules{
			Permitted:   r.Uses.Permitted,
			Conditional: r.Uses.Conditional,
			Prohibited:  r.Uses.Prohibited,
		},
	}
}

func (o obstacleFile) toSiteObstacle(dir string, index int) (feasibility.SiteObstacle, error) {
	so := feasibility.SiteObstacle{
		ID:             o.ID,
		Type:           obstacle.Type(o.Type),
		Severity:       obstacle.Severity(o.Severity),
		BufferFt:       o.BufferFt,
		Removable:      o.Removable,
		MitigationCost: o.MitigationCost,
	}
	if so.ID == "" {
		so.ID = labelObstacle(index, o.Type)
	}

	switch s := o.Severity; s {
	case "", string(obstacle.SeverityHigh), string(obstacle.SeverityMedium), string(obstacle.SeverityLow):
	default:
		return feasibility.SiteObstacle{}, errors.New(errors.ErrCodeInvalidSite,
			"obstacle %q: unknown severity %q (want high, medium, or low)", so.ID, s)
	}

	if len(o.Rings) > 0 && o.GeoJSON != "" {
		return feasibility.SiteObstacle{}, errors.New(errors.ErrCodeInvalidSite,
			"obstacle %q: rings and geojson are mutually exclusive", so.ID)
	}
	if len(o.Rings) > 0 {
		rings, err := toRings(o.Rings, "obstacle "+so.ID)
		if err != nil {
			return feasibility.SiteObstacle{}, err
		}
		so.Rings = rings
	} else if o.GeoJSON != "" {
		geometry, err := readRelative(dir, o.GeoJSON)
		if err != nil {
			return feasibility.SiteObstacle{}, err
		}
		so.Geometry = geometry
	}
	return so, nil
}

// labelObstacle names an obstacle missing an id, as "stream-3".
func labelObstacle(index int, typ string) string {
	if typ == "" {
		typ = "obstacle"
	}
	return typ + "-" + strconv.Itoa(index+1)
}

// toRings converts TOML coordinate triples into orb rings, checking
// every vertex is an [x, y] pair.
func toRings(raw [][][]float64, what string) ([][]orb.Point, error) {
	rings := make([][]orb.Point, 0, len(raw))
	for ri, ring := range raw {
		pts := make([]orb.Point, 0, len(ring))
		for vi, v := range ring {
			if len(v) != 2 {
				return nil, errors.New(errors.ErrCodeInvalidGeometry,
					"%s: ring %d vertex %d has %d coordinates, want [x, y]", what, ri, vi, len(v))
			}
			if err := errors.ValidateCoordinate(v[0]); err != nil {
				return nil, err
			}
			if err := errors.ValidateCoordinate(v[1]); err != nil {
				return nil, err
			}
			pts = append(pts, orb.Point{v[0], v[1]})
		}
		rings = append(rings, pts)
	}
	return rings, nil
}

// parseCRS maps the crs key to a coordinate interpretation.
func parseCRS(s string) (adapt.CRS, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return adapt.CRSAuto, nil
	case "geographic", "wgs84":
		return adapt.CRSGeographic, nil
	case "planar", "local":
		return adapt.CRSPlanar, nil
	default:
		return adapt.CRSAuto, errors.New(errors.ErrCodeInvalidSite, "unknown crs %q (want auto, geographic, or planar)", s)
	}
}

// readRelative reads a file referenced from a site definition. The
// reference must stay relative so a shared site file cannot reach
// outside its directory.
func readRelative(dir, rel string) ([]byte, error) {
	if err := errors.ValidatePath(rel); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, rel))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", rel)
	}
	return data, nil
}
