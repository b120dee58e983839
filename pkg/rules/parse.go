package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// num matches an ordinance number: optional thousands separators, optional
// decimals.
const num = `(\d+(?:,\d{3})*(?:\.\d+)?)`

// Extraction patterns run over normalized text (lowercase, abbreviations
// expanded, single-spaced), so they can use literal single spaces.
var (
	frontSetbackRE  = regexp.MustCompile(`front (?:yard )?setbacks?(?: shall be| is| of|:)? (?:a minimum of |at least |minimum )?` + num + ` ?(?:feet|foot|ft)\b`)
	rearSetbackRE   = regexp.MustCompile(`rear (?:yard )?setbacks?(?: shall be| is| of|:)? (?:a minimum of |at least |minimum )?` + num + ` ?(?:feet|foot|ft)\b`)
	sideSetbackRE   = regexp.MustCompile(`(?:interior )?side (?:yard )?setbacks?(?: shall be| is| of|:)? (?:a minimum of |at least |minimum )?` + num + ` ?(?:feet|foot|ft)\b`)
	cornerSetbackRE = regexp.MustCompile(`(?:corner|street) side (?:yard )?setbacks?(?: shall be| is| of|:)? (?:a minimum of |at least |minimum )?` + num + ` ?(?:feet|foot|ft)\b`)

	// generalSetbackRE needs a prefix check at each match site because RE2
	// has no lookbehind: "front yard setback" must not double as a general
	// setback.
	generalSetbackRE  = regexp.MustCompile(`(?:minimum |required )?setbacks?(?: shall be| is| of|:)? (?:at least )?` + num + ` ?(?:feet|foot|ft)\b`)
	directionPrefixRE = regexp.MustCompile(`(?:front|rear|side|corner|street) (?:yard )?$`)

	heightFeetRE   = regexp.MustCompile(`(?:maximum |max )?(?:building |structure )?height(?: limit)?(?: shall be| is| of|:)?(?: not to exceed)? ?` + num + ` ?(?:feet|foot|ft)\b`)
	heightExceedRE = regexp.MustCompile(`no (?:building|structure) shall exceed ` + num + ` ?(?:feet|foot|ft)\b`)
	storiesMaxRE   = regexp.MustCompile(`(?:maximum |max )(?:of )?` + num + ` stor(?:ies|y)`)
	storiesTailRE  = regexp.MustCompile(num + ` stor(?:ies|y)(?: maximum| max)?`)

	coverageRE       = regexp.MustCompile(`(?:maximum |max )?(?:lot|building|impervious) coverage(?: shall be| is| of|:)? ?` + num + ` ?(?:%|percent)`)
	coverageExceedRE = regexp.MustCompile(`coverage (?:shall|may|must) not exceed ` + num + ` ?(?:%|percent)`)

	farWordRE   = regexp.MustCompile(`floor[- ]area[- ]ratio(?: shall be| is| of|:)?(?: shall not exceed)? ?` + num)
	farAbbrevRE = regexp.MustCompile(`\bfar(?: shall be| is| of|:| shall not exceed) ?` + num)

	densityRE = regexp.MustCompile(num + ` (?:dwelling )?units? per (?:gross |net )?acre`)
	minLotRE  = regexp.MustCompile(`minimum lot (?:size|area)(?: shall be| is| of|:)? ?` + num + ` ?(?:square feet)?`)

	parkingRE = regexp.MustCompile(num + ` (?:parking |off-street )?spaces? (?:per|for each) (?:dwelling )?unit`)

	permittedUsesRE   = regexp.MustCompile(`permitted uses?(?: include| are|:)? ([^.;]+)`)
	conditionalUsesRE = regexp.MustCompile(`conditional(?:ly permitted)? uses?(?: include| are|:)? ([^.;]+)`)
	prohibitedUsesRE  = regexp.MustCompile(`prohibited uses?(?: include| are|:)? ([^.;]+)`)

	cornerPrefixRE      = regexp.MustCompile(`(?:corner|street) $`)
	conditionalPrefixRE = regexp.MustCompile(`conditionally $`)
)

// Parse extracts zoning rules from ordinance text.
//
// Extraction never fails: text with no recognizable rules produces an empty
// [RuleSet] with zero confidence and a warning. Callers decide how much
// confidence they require.
func Parse(text string) ParseResult {
	var res ParseResult
	t := normalize(text)
	if t == "" {
		res.Warnings = append(res.Warnings, "empty ordinance text")
		return res
	}

	res.Rules.Setbacks = parseSetbacks(t)
	res.Rules.Height = parseHeight(t)
	res.Rules.Coverage = parseCoverage(t)
	res.Rules.Density = parseDensity(t)
	res.Rules.Parking = parseParking(t)
	res.Rules.Uses = parseUses(t)

	categories := 0
	if res.Rules.Setbacks.Any() {
		categories++
	}
	if res.Rules.Height.Any() {
		categories++
	}
	if res.Rules.Coverage.MaxCoveragePercent != nil {
		categories++
	}
	if res.Rules.Coverage.MaxFAR != nil {
		categories++
	}
	if res.Rules.Density.MaxUnitsPerAcre != nil || res.Rules.Density.MinLotSqFt != nil {
		categories++
	}
	if res.Rules.Parking.SpacesPerUnit != nil {
		categories++
	}
	if res.Rules.Uses.Any() {
		categories++
	}

	res.Confidence = confidence(categories, res.Rules)

	common := 0
	if res.Rules.Setbacks.Any() {
		common++
	}
	if res.Rules.Height.Any() {
		common++
	}
	if res.Rules.Uses.Any() {
		common++
	}
	if common == 0 {
		res.Warnings = append(res.Warnings,
			"low confidence: none of the common rule categories (setbacks, height, uses) were found")
	}
	return res
}

// confidence scores 0.2 per category capped at 0.8, with a 0.2 bonus when
// all three common categories are present.
func confidence(categories int, r RuleSet) float64 {
	c := 0.2 * float64(categories)
	if c > 0.8 {
		c = 0.8
	}
	if r.Setbacks.Any() && r.Height.Any() && r.Uses.Any() {
		c += 0.2
	}
	if c > 1 {
		c = 1
	}
	return c
}

func parseSetbacks(t string) SetbackRules {
	var s SetbackRules
	s.Front = firstNumber(frontSetbackRE, t)
	s.Rear = firstNumber(rearSetbackRE, t)
	s.CornerSide = firstNumber(cornerSetbackRE, t)

	// "corner side setback" also matches the plain side pattern; only accept
	// side matches that are not corner/street matches.
	s.Side = firstNumberExcluding(sideSetbackRE, t, cornerPrefixRE)
	s.General = firstNumberExcluding(generalSetbackRE, t, directionPrefixRE)
	return s
}

func parseHeight(t string) HeightRules {
	var h HeightRules
	h.MaxFeet = firstNumber(heightFeetRE, t)
	if h.MaxFeet == nil {
		h.MaxFeet = firstNumber(heightExceedRE, t)
	}

	if v := firstNumber(storiesMaxRE, t); v != nil {
		h.MaxStories = intPtr(int(*v))
	} else if m := storiesTailRE.FindStringSubmatch(t); m != nil {
		if v, err := parseNumber(m[1]); err == nil {
			h.MaxStories = intPtr(int(v))
		}
	}
	return h
}

func parseCoverage(t string) CoverageRules {
	var c CoverageRules
	c.MaxCoveragePercent = firstNumber(coverageRE, t)
	if c.MaxCoveragePercent == nil {
		c.MaxCoveragePercent = firstNumber(coverageExceedRE, t)
	}
	c.MaxFAR = firstNumber(farWordRE, t)
	if c.MaxFAR == nil {
		c.MaxFAR = firstNumber(farAbbrevRE, t)
	}
	return c
}

func parseDensity(t string) DensityRules {
	return DensityRules{
		MaxUnitsPerAcre: firstNumber(densityRE, t),
		MinLotSqFt:      firstNumber(minLotRE, t),
	}
}

func parseParking(t string) ParkingRules {
	return ParkingRules{SpacesPerUnit: firstNumber(parkingRE, t)}
}

func parseUses(t string) UseRules {
	return UseRules{
		Permitted:   splitUseList(firstCaptureExcluding(permittedUsesRE, t, conditionalPrefixRE)),
		Conditional: splitUseList(firstCapture(conditionalUsesRE, t)),
		Prohibited:  splitUseList(firstCapture(prohibitedUsesRE, t)),
	}
}

// splitUseList breaks a captured clause into individual uses on the
// delimiters ordinances actually use: commas, semicolons, and "and".
func splitUseList(clause string) []string {
	if clause == "" {
		return nil
	}
	clause = strings.ReplaceAll(clause, ";", ",")
	clause = strings.ReplaceAll(clause, " and ", ",")
	parts := strings.Split(clause, ",")

	var uses []string
	for _, p := range parts {
		u := strings.TrimSpace(p)
		u = strings.TrimPrefix(u, "and ")
		u = strings.TrimSuffix(u, ".")
		u = strings.TrimSpace(u)
		if u == "" || u == "the following" {
			continue
		}
		uses = append(uses, u)
	}
	return uses
}

func firstNumber(re *regexp.Regexp, t string) *float64 {
	m := re.FindStringSubmatch(t)
	if m == nil {
		return nil
	}
	v, err := parseNumber(m[1])
	if err != nil {
		return nil
	}
	return ptr(v)
}

// firstNumberExcluding returns the first match whose preceding text does not
// end with the excluded pattern. This stands in for lookbehind, which RE2
// does not support.
func firstNumberExcluding(re *regexp.Regexp, t string, exclude *regexp.Regexp) *float64 {
	for _, idx := range re.FindAllStringSubmatchIndex(t, -1) {
		if exclude.MatchString(t[:idx[0]]) {
			continue
		}
		v, err := parseNumber(t[idx[2]:idx[3]])
		if err != nil {
			continue
		}
		return ptr(v)
	}
	return nil
}

func firstCapture(re *regexp.Regexp, t string) string {
	m := re.FindStringSubmatch(t)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func firstCaptureExcluding(re *regexp.Regexp, t string, exclude *regexp.Regexp) string {
	for _, idx := range re.FindAllStringSubmatchIndex(t, -1) {
		if exclude.MatchString(t[:idx[0]]) {
			continue
		}
		return strings.TrimSpace(t[idx[2]:idx[3]])
	}
	return ""
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", s, err)
	}
	return v, nil
}
