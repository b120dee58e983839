package rules

import "strings"

// abbreviations expands the shorthand that zoning ordinances habitually use.
// Order matters: longer forms are replaced before their prefixes.
var abbreviations = strings.NewReplacer(
	"sq. ft.", "square feet",
	"sq.ft.", "square feet",
	"sq ft", "square feet",
	"sqft", "square feet",
	"ft.", "feet",
	"max.", "maximum",
	"min.", "minimum",
	"d.u.", "dwelling unit",
	"bldg.", "building",
)

// normalize lowercases the text, expands abbreviations, and collapses runs
// of whitespace so the extraction patterns can assume single spaces.
func normalize(text string) string {
	t := strings.ToLower(text)
	t = abbreviations.Replace(t)
	return strings.Join(strings.Fields(t), " ")
}
