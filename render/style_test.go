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
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestColorMapRules(t *testing.T) {
	// Variables that should get a diverging or ramp colormap rather
	// than the default.
	for _, name := range []string{
		"temperature", "2m_temperature", "geopotential", "surface_pressure",
		"total_precipitation", "snowfall", "u_component_of_wind",
	} {
		cm := (*Style)(nil).ColorMap(name)
		if cm == nil {
			t.Errorf("ColorMap(%q) = nil", name)
		}
	}
	def := (*Style)(nil).ColorMap("specific_humidity")
	if def == nil {
		t.Error("default colormap is nil")
	}
	// Pressure maps to the rainbow ramp.
	if _, ok := (*Style)(nil).ColorMap("surface_pressure").(*ramp); !ok {
		t.Error("pressure colormap is not a ramp")
	}
}

func TestColorMapByName(t *testing.T) {
	for _, name := range []string{
		"bluered", "bluetan", "greenpurple", "kindlmann",
		"extendedkindlmann", "blackbody", "terrain", "blues", "rainbow",
	} {
		cm, err := ColorMapByName(name)
		if err != nil {
			t.Errorf("ColorMapByName(%q): %v", name, err)
			continue
		}
		cm.SetMin(0)
		cm.SetMax(1)
		if _, err := cm.At(0.5); err != nil {
			t.Errorf("%s.At(0.5): %v", name, err)
		}
	}
	if _, err := ColorMapByName("plasma"); err == nil {
		t.Error("expected error for unknown colormap name")
	}
}

func TestRamp(t *testing.T) {
	r := newRamp(color.NRGBA{A: 255}, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	r.SetMin(0)
	r.SetMax(10)
	if _, err := r.At(-1); err == nil {
		t.Error("expected underflow error")
	}
	if _, err := r.At(11); err == nil {
		t.Error("expected overflow error")
	}
	lo, err := r.At(0)
	if err != nil {
		t.Fatal(err)
	}
	hi, err := r.At(10)
	if err != nil {
		t.Fatal(err)
	}
	lr, _, _, _ := lo.RGBA()
	hr, _, _, _ := hi.RGBA()
	if lr >= hr {
		t.Errorf("ramp endpoints not increasing: %d >= %d", lr, hr)
	}
	if n := len(r.Palette(255).Colors()); n != 255 {
		t.Errorf("palette has %d colors, want 255", n)
	}
}

func TestLoadStyle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "style.toml")
	if err := os.WriteFile(path, []byte("[colormaps]\ntemperature = \"blackbody\"\ndefault = \"blues\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadStyle(path)
	if err != nil {
		t.Fatal(err)
	}
	if cm := s.ColorMap("temperature"); cm == nil {
		t.Error("override colormap is nil")
	}
	if _, ok := s.ColorMap("specific_humidity").(*ramp); !ok {
		t.Error("default override did not take effect")
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[colormaps]\ntemperature = \"plasma\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadStyle(bad); err == nil {
		t.Error("expected error for style naming an unknown colormap")
	}
}
