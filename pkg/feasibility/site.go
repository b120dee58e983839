package feasibility

import (
	"encoding/json"

	"github.com/paulmach/orb"

	"github.com/landsight/parcelfit/pkg/cache"
	"github.com/landsight/parcelfit/pkg/errors"
	"github.com/landsight/parcelfit/pkg/geom"
	"github.com/landsight/parcelfit/pkg/geom/adapt"
	"github.com/landsight/parcelfit/pkg/obstacle"
	"github.com/landsight/parcelfit/pkg/placement"
	"github.com/landsight/parcelfit/pkg/setback"
	"github.com/landsight/parcelfit/pkg/zoning"
)

// Site is one parcel and everything the analysis should consider on it.
// Optional fields switch their stages off: no RulesText skips rule
// extraction, no Building skips placement, no Proposal skips zoning.
type Site struct {
	// Name identifies the site in logs and reports.
	Name string `json:"name,omitempty"`

	// Geometry is the raw parcel encoding: GeoJSON, ArcGIS rings, or a
	// bare coordinate array. Rings is the in-memory alternative;
	// Geometry wins when both are set.
	Geometry []byte        `json:"geometry,omitempty"`
	Rings    [][]orb.Point `json:"rings,omitempty"`

	// CRS overrides coordinate interpretation for the parcel and every
	// obstacle.
	CRS adapt.CRS `json:"crs,omitempty"`

	// Setbacks are explicit yard requirements. When none is set and
	// RulesText is present, setbacks are extracted from the text.
	Setbacks setback.SetbackSet `json:"setbacks"`

	// RulesText is raw ordinance prose to run rule extraction on.
	RulesText string `json:"rules_text,omitempty"`

	// District carries structured district rules for zoning review.
	// When nil, rules extracted from RulesText stand in.
	District *zoning.DistrictRules `json:"district,omitempty"`

	// Obstacles are the site constraints, encoded like the parcel.
	Obstacles []SiteObstacle `json:"obstacles,omitempty"`

	// Building, when set, is test-fit against the developable area.
	Building *placement.Spec `json:"building,omitempty"`

	// Proposal, when set, is run through zoning compliance.
	Proposal *zoning.Proposal `json:"proposal,omitempty"`

	// MinOpenSpacePercent is the required outdoor share of the parcel,
	// 0-100. Zero disables the open-space check.
	MinOpenSpacePercent float64 `json:"min_open_space_percent,omitempty"`
}

// SiteObstacle is one constraint feature in its raw encoded form.
type SiteObstacle struct {
	ID   string        `json:"id,omitempty"`
	Type obstacle.Type `json:"type"`

	// Geometry and Rings mirror the parcel encoding options.
	Geometry []byte        `json:"geometry,omitempty"`
	Rings    [][]orb.Point `json:"rings,omitempty"`

	// Severity overrides the type default when non-empty.
	Severity obstacle.Severity `json:"severity,omitempty"`

	// BufferFt overrides the standard clearance when positive.
	BufferFt float64 `json:"buffer_ft,omitempty"`

	Removable      bool    `json:"removable,omitempty"`
	MitigationCost float64 `json:"mitigation_cost,omitempty"`
}

// Validate checks the site definition before analysis.
func (s *Site) Validate() error {
	if len(s.Geometry) == 0 && len(s.Rings) == 0 {
		return errors.New(errors.ErrCodeInvalidSite, "site has no parcel geometry")
	}
	if s.RulesText != "" {
		if err := errors.ValidateRulesText(s.RulesText); err != nil {
			return err
		}
	}
	if s.District != nil && s.District.District != "" {
		if err := errors.ValidateDistrictName(s.District.District); err != nil {
			return err
		}
	}
	if s.Proposal != nil && s.Proposal.Use != "" {
		if err := errors.ValidateUse(s.Proposal.Use); err != nil {
			return err
		}
	}
	for _, o := range s.Obstacles {
		if len(o.Geometry) == 0 && len(o.Rings) == 0 {
			return errors.New(errors.ErrCodeInvalidSite, "obstacle %q has no geometry", o.ID)
		}
	}
	return nil
}

// Hash returns the canonical content hash of the site definition.
func (s *Site) Hash() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// toObstacle adapts the obstacle geometry into the parcel's frame: the
// parcel's projection when it was geographic, the local plane as-is
// otherwise. Obstacles never sniff their own frame; a site is one
// frame.
func (o SiteObstacle) toObstacle(pj *geom.Projection) (obstacle.Obstacle, error) {
	opts := adapt.Options{CRS: adapt.CRSPlanar}
	if pj != nil {
		opts = adapt.Options{CRS: adapt.CRSGeographic, Projection: pj}
	}

	var (
		res *adapt.Result
		err error
	)
	if len(o.Geometry) > 0 {
		res, err = adapt.ToPolygon(o.Geometry, opts)
	} else {
		res, err = adapt.FromRings(o.Rings, opts)
	}
	if err != nil {
		return obstacle.Obstacle{}, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "obstacle %q geometry", o.ID)
	}

	return obstacle.Obstacle{
		ID:             o.ID,
		Type:           o.Type,
		Geometry:       res.Primary(),
		Severity:       o.Severity,
		BufferDistance: o.BufferFt,
		Removable:      o.Removable,
		MitigationCost: o.MitigationCost,
	}, nil
}

// sitePrep is the adapted, locally projected working set for one
// analysis.
type sitePrep struct {
	result     *adapt.Result
	parcel     orb.Polygon
	area       float64
	obstacles  []obstacle.Obstacle
	structures []orb.Polygon
}

// adaptSite decodes the parcel and every obstacle into one shared
// planar frame. Obstacles of type existing_structure double as building
// footprints for the setback and yard stages.
func adaptSite(site *Site) (*sitePrep, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}

	var (
		res *adapt.Result
		err error
	)
	if len(site.Geometry) > 0 {
		res, err = adapt.ToPolygon(site.Geometry, adapt.Options{CRS: site.CRS})
	} else {
		res, err = adapt.FromRings(site.Rings, adapt.Options{CRS: site.CRS})
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "parcel geometry")
	}

	prep := &sitePrep{result: res, parcel: res.Primary()}
	prep.area = geom.Area(prep.parcel)

	for _, o := range site.Obstacles {
		ob, err := o.toObstacle(res.Projection)
		if err != nil {
			return nil, err
		}
		prep.obstacles = append(prep.obstacles, ob)
		if ob.Type == obstacle.TypeExistingStructure {
			prep.structures = append(prep.structures, ob.Geometry)
		}
	}
	return prep, nil
}
