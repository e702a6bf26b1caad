// Package body holds the celestial body records the viewer draws and frames.
package body

import (
	"fmt"
	"strings"

	"github.com/echoflaresat/spaceview/colors"
	"github.com/echoflaresat/spaceview/vectors"
)

// Body is a snapshot of one celestial body.
type Body struct {
	Name  string
	Index int // NAIF id used by the ephemeris provider

	Position vectors.Vec3 // km
	Radius   float64      // km
	Color    colors.Color4

	// DataDate is the date the position was fetched for.
	DataDate string
}

// Spec describes a body before any ephemeris data is known.
type Spec struct {
	Name   string
	Index  int
	Color  colors.Color4
	Radius float64 // used when the provider reports none
}

// DefaultCatalog lists the bodies the viewer shows out of the box.
func DefaultCatalog() []Spec {
	return []Spec{
		{Name: "Sun", Index: 10, Color: colors.RGB(1, 0.80, 0.20), Radius: 695700},
		{Name: "Mercury", Index: 1, Color: colors.RGB(0.894, 0.788, 0.6), Radius: 2439.4},
		{Name: "Venus", Index: 2, Color: colors.RGB(0.773, 0.447, 0.133), Radius: 6051.8},
		{Name: "Earth", Index: 399, Color: colors.RGB(0.204, 0.365, 0.545), Radius: 6371.0},
		{Name: "Moon", Index: 301, Color: colors.RGB(1, 0.961, 0.925), Radius: 1737.4},
		{Name: "Mars", Index: 499, Color: colors.RGB(0.91, 0.396, 0.227), Radius: 3389.5},
		{Name: "Jupiter", Index: 599, Color: colors.RGB(0.824, 0.71, 0.518), Radius: 69911},
		{Name: "Saturn", Index: 699, Color: colors.RGB(0.816, 0.702, 0.467), Radius: 58232},
		{Name: "Uranus", Index: 799, Color: colors.RGB(0.031, 0.459, 0.588), Radius: 25362},
		{Name: "Neptune", Index: 899, Color: colors.RGB(0.424, 0.561, 0.89), Radius: 24622},
		{Name: "JWST", Index: -170, Color: colors.White(), Radius: 0.02},
	}
}

// WithColors returns a copy of catalog with colors replaced from a
// name -> hex map. Unknown names are an error.
func WithColors(catalog []Spec, hex map[string]string) ([]Spec, error) {
	out := append([]Spec(nil), catalog...)
	idx := make(map[string]int, len(out))
	for i, s := range out {
		idx[strings.ToLower(s.Name)] = i
	}
	for name, h := range hex {
		i, ok := idx[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("color override: %w: %q", ErrBodyNotFound, name)
		}
		c, err := colors.FromHex(h)
		if err != nil {
			return nil, fmt.Errorf("color override for %s: %w", name, err)
		}
		out[i].Color = c
	}
	return out, nil
}
