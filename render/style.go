/*
Copyright © 2023 the ERA5 tool authors.
This file is part of the ERA5 tool.

The ERA5 tool is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

The ERA5 tool is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with the ERA5 tool.  If not, see <http://www.gnu.org/licenses/>.
*/

package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// colormapRules maps variable-name keywords to colormap names, checked
// in order. The first rule whose keyword occurs in the variable name
// wins.
var colormapRules = []struct {
	keywords []string
	name     string
}{
	{[]string{"temperature"}, "bluered"},
	{[]string{"geopotential"}, "terrain"},
	{[]string{"pressure"}, "rainbow"},
	{[]string{"precipitation", "rain", "snow"}, "blues"},
	{[]string{"wind", "u_component", "v_component"}, "bluered"},
}

const defaultColormap = "kindlmann"

// Style customizes plot appearance. The zero value uses the built-in
// colormap rules.
type Style struct {
	// Colormaps maps a variable name or rule keyword to a colormap
	// name, overriding the built-in rules. The key "default" replaces
	// the fallback colormap.
	Colormaps map[string]string `toml:"colormaps"`
}

// LoadStyle reads a style definition from a TOML file.
func LoadStyle(path string) (*Style, error) {
	s := new(Style)
	if _, err := toml.DecodeFile(path, s); err != nil {
		return nil, fmt.Errorf("render: loading style %s: %v", path, err)
	}
	for k, name := range s.Colormaps {
		if _, err := ColorMapByName(name); err != nil {
			return nil, fmt.Errorf("render: style %s: key %s: %v", path, k, err)
		}
	}
	return s, nil
}

// ColorMap returns the colormap for a variable name. A nil style uses
// the built-in rules.
func (s *Style) ColorMap(varName string) palette.ColorMap {
	lookup := func(key, fallback string) string {
		if s != nil {
			if name, ok := s.Colormaps[key]; ok {
				return name
			}
		}
		return fallback
	}
	if s != nil {
		if name, ok := s.Colormaps[varName]; ok {
			cm, _ := ColorMapByName(name)
			return cm
		}
	}
	for _, rule := range colormapRules {
		for _, kw := range rule.keywords {
			if strings.Contains(varName, kw) {
				cm, _ := ColorMapByName(lookup(kw, rule.name))
				return cm
			}
		}
	}
	cm, _ := ColorMapByName(lookup("default", defaultColormap))
	return cm
}

// ColorMapByName returns a named colormap. The names cover the moreland
// maps plus ramps for rainbow, blues and terrain.
func ColorMapByName(name string) (palette.ColorMap, error) {
	switch name {
	case "bluered":
		return moreland.SmoothBlueRed(), nil
	case "bluetan":
		return moreland.SmoothBlueTan(), nil
	case "greenpurple":
		return moreland.SmoothGreenPurple(), nil
	case "kindlmann":
		return moreland.Kindlmann(), nil
	case "extendedkindlmann":
		return moreland.ExtendedKindlmann(), nil
	case "blackbody":
		return moreland.BlackBody(), nil
	case "terrain":
		cm, err := moreland.NewLuminance([]color.Color{
			color.NRGBA{R: 0, G: 97, B: 0, A: 255},
			color.NRGBA{R: 189, G: 183, B: 107, A: 255},
			color.NRGBA{R: 245, G: 245, B: 220, A: 255},
			color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		})
		if err != nil {
			return nil, err
		}
		return cm, nil
	case "blues":
		return newRamp(
			color.NRGBA{R: 247, G: 251, B: 255, A: 255},
			color.NRGBA{R: 107, G: 174, B: 214, A: 255},
			color.NRGBA{R: 8, G: 48, B: 107, A: 255}), nil
	case "rainbow":
		return newRamp(palette.Rainbow(64, palette.Blue, palette.Red, 1, 1, 1).Colors()...), nil
	}
	return nil, fmt.Errorf("unknown colormap %q", name)
}

// ramp maps values to colors by linear interpolation between control
// points, for colormaps the moreland package cannot express (rainbows
// and ramps with decreasing luminance).
type ramp struct {
	colors   []color.Color
	min, max float64
	alpha    float64
}

func newRamp(colors ...color.Color) *ramp {
	return &ramp{colors: colors, alpha: 1}
}

func (r *ramp) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < r.min:
		return nil, palette.ErrUnderflow
	case v > r.max:
		return nil, palette.ErrOverflow
	case r.min == r.max:
		return r.colors[0], nil
	}
	pos := (v - r.min) / (r.max - r.min) * float64(len(r.colors)-1)
	i := int(pos)
	if i >= len(r.colors)-1 {
		return r.colors[len(r.colors)-1], nil
	}
	return lerp(r.colors[i], r.colors[i+1], pos-float64(i)), nil
}

func (r *ramp) Min() float64     { return r.min }
func (r *ramp) SetMin(v float64) { r.min = v }
func (r *ramp) Max() float64     { return r.max }
func (r *ramp) SetMax(v float64) { r.max = v }
func (r *ramp) Alpha() float64   { return r.alpha }
func (r *ramp) SetAlpha(v float64) {
	if v < 0 || v > 1 {
		panic("render: alpha out of range")
	}
	r.alpha = v
}

func (r *ramp) Palette(n int) palette.Palette {
	cm := *r
	cm.min, cm.max = 0, 1
	colors := make([]color.Color, n)
	for i := range colors {
		c, err := cm.At(float64(i) / float64(n-1))
		if err != nil {
			panic(err)
		}
		colors[i] = c
	}
	return rampPalette(colors)
}

type rampPalette []color.Color

func (p rampPalette) Colors() []color.Color { return p }

// lerp interpolates between two colors in RGBA space.
func lerp(a, b color.Color, t float64) color.Color {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	mix := func(x, y uint32) uint16 {
		return uint16(float64(x)*(1-t) + float64(y)*t)
	}
	return color.RGBA64{
		R: mix(ar, br), G: mix(ag, bg), B: mix(ab, bb), A: mix(aa, ba),
	}
}
