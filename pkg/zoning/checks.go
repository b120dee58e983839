package zoning

import (
	"fmt"
	"math"
	"strings"

	"github.com/landsight/parcelfit/pkg/rules"
	"github.com/landsight/parcelfit/pkg/setback"
)

// comparison is one numeric rule-to-proposal comparison inside a check.
type comparison struct {
	pass               bool
	req, got, variance float64
	text               string
}

// fill derives the check verdict from its comparisons: non-compliant
// when any fails, numbers taken from the first failing comparison or
// else the first one, message parts joined in order.
func (c *CheckResult) fill(cmps []comparison) {
	c.Status = StatusCompliant
	pick := 0
	for i, m := range cmps {
		if !m.pass {
			c.Status = StatusNonCompliant
			pick = i
			break
		}
	}
	m := cmps[pick]
	c.Required, c.Proposed, c.Variance = m.req, m.got, m.variance

	parts := make([]string, len(cmps))
	for i, m := range cmps {
		parts[i] = m.text
	}
	c.Message = strings.Join(parts, "; ")
}

func checkUse(u rules.UseRules, use string) (CheckResult, []string) {
	c := CheckResult{Name: CheckUse}
	if !u.Any() {
		c.Status = StatusNotApplicable
		c.Message = "the district rules list no uses"
		return c, nil
	}
	if strings.TrimSpace(use) == "" {
		c.Status = StatusNotListed
		c.Message = "no use stated in the proposal"
		return c, nil
	}
	// Prohibited entries are usually the most specific, so they win
	// when a use matches more than one list.
	switch {
	case matchesUse(u.Prohibited, use):
		c.Status = StatusNonCompliant
		c.Message = fmt.Sprintf("use %q is prohibited in this district", use)
	case matchesUse(u.Permitted, use):
		c.Status = StatusCompliant
		c.Message = fmt.Sprintf("use %q is permitted", use)
	case matchesUse(u.Conditional, use):
		c.Status = StatusCompliant
		c.Message = fmt.Sprintf("use %q is allowed with a conditional use permit", use)
		return c, []string{fmt.Sprintf("conditional use permit required for %q", use)}
	default:
		c.Status = StatusNotListed
		c.Message = fmt.Sprintf("use %q is not listed in the district rules; manual review recommended", use)
	}
	return c, nil
}

// matchesUse reports whether the use matches any list entry, comparing
// case-insensitively and accepting a substring hit in either direction.
func matchesUse(list []string, use string) bool {
	u := strings.ToLower(strings.TrimSpace(use))
	for _, entry := range list {
		e := strings.ToLower(strings.TrimSpace(entry))
		if e == "" {
			continue
		}
		if strings.Contains(e, u) || strings.Contains(u, e) {
			return true
		}
	}
	return false
}

func checkDensity(parcel ParcelData, d rules.DensityRules, p Proposal) CheckResult {
	c := CheckResult{Name: CheckDensity}
	if d.MaxUnitsPerAcre == nil && d.MinLotSqFt == nil {
		c.Status = StatusNotApplicable
		c.Message = "the district rules set no density limits"
		return c
	}
	units := p.unitCount()
	var cmps []comparison
	if d.MaxUnitsPerAcre != nil {
		allowed := *d.MaxUnitsPerAcre * parcel.AreaSqFt / sqFtPerAcre
		pass := float64(units) <= allowed
		verb := "is within"
		if !pass {
			verb = "exceeds"
		}
		cmps = append(cmps, comparison{pass, allowed, float64(units), allowed - float64(units),
			fmt.Sprintf("%d units %s the %.1f unit capacity of %.2f acres", units, verb, allowed, parcel.Acres())})
	}
	if d.MinLotSqFt != nil {
		need := *d.MinLotSqFt * float64(units)
		pass := parcel.AreaSqFt >= need
		verb := "covers"
		if !pass {
			verb = "falls short of"
		}
		cmps = append(cmps, comparison{pass, need, parcel.AreaSqFt, parcel.AreaSqFt - need,
			fmt.Sprintf("parcel area %.0f sq ft %s the %.0f sq ft required for %d units", parcel.AreaSqFt, verb, need, units)})
	}
	c.fill(cmps)
	return c
}

func checkHeight(h rules.HeightRules, p Proposal) CheckResult {
	c := CheckResult{Name: CheckHeight}
	if !h.Any() {
		c.Status = StatusNotApplicable
		c.Message = "the district rules set no height limit"
		return c
	}
	var cmps []comparison
	if h.MaxFeet != nil && p.HeightFt > 0 {
		pass := p.HeightFt <= *h.MaxFeet
		verb := "is within"
		if !pass {
			verb = "exceeds"
		}
		cmps = append(cmps, comparison{pass, *h.MaxFeet, p.HeightFt, *h.MaxFeet - p.HeightFt,
			fmt.Sprintf("height %g ft %s the %g ft limit", p.HeightFt, verb, *h.MaxFeet)})
	}
	if h.MaxStories != nil && p.Stories > 0 {
		pass := p.Stories <= *h.MaxStories
		verb := "is within"
		if !pass {
			verb = "exceeds"
		}
		cmps = append(cmps, comparison{pass, float64(*h.MaxStories), float64(p.Stories), float64(*h.MaxStories - p.Stories),
			fmt.Sprintf("%d stories %s the %d story limit", p.Stories, verb, *h.MaxStories)})
	}
	if len(cmps) == 0 {
		c.Status = StatusNotListed
		c.Message = "no height stated in the proposal; the district limit needs manual review"
		return c
	}
	c.fill(cmps)
	return c
}

func checkSetbacks(r rules.SetbackRules, got setback.SetbackSet) CheckResult {
	c := CheckResult{Name: CheckSetbacks}
	if !r.Any() {
		c.Status = StatusNotApplicable
		c.Message = "the district rules set no setback minimums"
		return c
	}
	req := setback.FromRules(r)
	dirs := []struct {
		name     string
		req, got *float64
	}{
		{"front", req.Front, got.Front},
		{"rear", req.Rear, got.Rear},
		{"side", req.Side, got.Side},
		{"corner side", req.CornerSide, got.CornerSide},
	}
	var cmps []comparison
	for _, d := range dirs {
		if d.req == nil || d.got == nil {
			continue
		}
		if *d.got >= *d.req {
			cmps = append(cmps, comparison{true, *d.req, *d.got, *d.got - *d.req,
				fmt.Sprintf("%s %g ft meets the %g ft minimum", d.name, *d.got, *d.req)})
		} else {
			cmps = append(cmps, comparison{false, *d.req, *d.got, *d.got - *d.req,
				fmt.Sprintf("%s %g ft is %g ft short of the %g ft minimum", d.name, *d.got, *d.req-*d.got, *d.req)})
		}
	}
	if len(cmps) == 0 {
		c.Status = StatusNotListed
		c.Message = "no setbacks stated in the proposal; district minimums need manual review"
		return c
	}
	c.fill(cmps)
	return c
}

func checkCoverage(parcel ParcelData, cov rules.CoverageRules, p Proposal) CheckResult {
	c := CheckResult{Name: CheckCoverage}
	if cov.MaxCoveragePercent == nil {
		c.Status = StatusNotApplicable
		c.Message = "the district rules set no coverage limit"
		return c
	}
	if p.FootprintSqFt <= 0 {
		c.Status = StatusNotListed
		c.Message = "no footprint stated in the proposal; the coverage limit needs manual review"
		return c
	}
	limit := *cov.MaxCoveragePercent
	pct := p.FootprintSqFt / parcel.AreaSqFt * 100
	pass := p.FootprintSqFt <= parcel.AreaSqFt*limit/100
	verb := "within"
	if !pass {
		verb = "over"
	}
	c.fill([]comparison{{pass, limit, pct, limit - pct,
		fmt.Sprintf("footprint covers %.1f%% of the parcel, %s the %.1f%% limit", pct, verb, limit)}})
	return c
}

func checkFAR(parcel ParcelData, cov rules.CoverageRules, p Proposal) CheckResult {
	c := CheckResult{Name: CheckFAR}
	if cov.MaxFAR == nil {
		c.Status = StatusNotApplicable
		c.Message = "the district rules set no floor area ratio limit"
		return c
	}
	if p.FloorAreaSqFt <= 0 {
		c.Status = StatusNotListed
		c.Message = "no floor area stated in the proposal; the floor area ratio needs manual review"
		return c
	}
	far := p.FloorAreaSqFt / parcel.AreaSqFt
	pass := p.FloorAreaSqFt <= parcel.AreaSqFt*(*cov.MaxFAR)
	verb := "is within"
	if !pass {
		verb = "exceeds"
	}
	c.fill([]comparison{{pass, *cov.MaxFAR, far, *cov.MaxFAR - far,
		fmt.Sprintf("floor area ratio %.2f %s the %.2f maximum", far, verb, *cov.MaxFAR)}})
	return c
}

func checkParking(pk rules.ParkingRules, p Proposal) CheckResult {
	c := CheckResult{Name: CheckParking}
	if pk.SpacesPerUnit == nil {
		c.Status = StatusNotApplicable
		c.Message = "the district rules set no parking requirement"
		return c
	}
	need := int(math.Ceil(*pk.SpacesPerUnit * float64(p.unitCount())))
	pass := p.ParkingSpaces >= need
	verb := "meets"
	if !pass {
		verb = "falls short of"
	}
	c.fill([]comparison{{pass, float64(need), float64(p.ParkingSpaces), float64(p.ParkingSpaces - need),
		fmt.Sprintf("%d spaces %s the %d space requirement", p.ParkingSpaces, verb, need)}})
	return c
}

func checkLandscaping(parcel ParcelData, declared *float64, p Proposal) CheckResult {
	c := CheckResult{Name: CheckLandscaping}
	if declared == nil {
		c.Status = StatusNotApplicable
		c.Message = "the district rules set no landscaping requirement"
		return c
	}
	req := *declared
	if req <= 0 {
		req = DefaultLandscapePercent
	}
	pct := p.LandscapedSqFt / parcel.AreaSqFt * 100
	pass := p.LandscapedSqFt >= parcel.AreaSqFt*req/100
	verb := "meeting"
	if !pass {
		verb = "under"
	}
	c.fill([]comparison{{pass, req, pct, pct - req,
		fmt.Sprintf("landscaping covers %.1f%% of the parcel, %s the %.1f%% minimum", pct, verb, req)}})
	return c
}
