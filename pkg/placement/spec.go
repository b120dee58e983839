package placement

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrUnknownBuildingType is returned when a Spec names a building type
// with no default dimensions.
var ErrUnknownBuildingType = errors.New("unknown building type")

// Spec describes the building to place. Explicit dimensions win over
// TargetArea, which wins over the Type default.
type Spec struct {
	Width      float64 // feet
	Depth      float64 // feet
	TargetArea float64 // square feet, rendered as a square
	Type       string  // named default, such as "house" or "garage"
}

// Default footprint dimensions by building type, in feet.
var typeDims = map[string]struct{ width, depth float64 }{
	"house":    {40, 30},
	"garage":   {24, 24},
	"adu":      {30, 20},
	"shed":     {12, 10},
	"barn":     {40, 60},
	"workshop": {30, 24},
}

// Footprint resolves the spec to rectangle dimensions in feet.
func (s Spec) Footprint() (width, depth float64, err error) {
	switch {
	case s.Width > 0 && s.Depth > 0:
		return s.Width, s.Depth, nil
	case s.TargetArea > 0:
		side := math.Sqrt(s.TargetArea)
		return side, side, nil
	}
	d, ok := typeDims[s.Type]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownBuildingType, s.Type)
	}
	return d.width, d.depth, nil
}

// Types lists the building types with default dimensions, sorted.
func Types() []string {
	names := make([]string, 0, len(typeDims))
	for name := range typeDims {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
