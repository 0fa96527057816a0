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
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	seriesWidth  = 14 * vg.Inch
	seriesHeight = 6 * vg.Inch
)

// SpatialMean averages the field over latitude and longitude, yielding
// one value per timestep.
func (f *Field) SpatialMean() []float64 {
	nt := f.Data.Shape[0]
	cells := f.Data.Shape[1] * f.Data.Shape[2]
	out := make([]float64, nt)
	for t := 0; t < nt; t++ {
		out[t] = floats.Sum(f.Data.Elements[t*cells:(t+1)*cells]) / float64(cells)
	}
	return out
}

// TimeSeriesPlot draws the spatial mean of the field over time and
// writes it as a 300-DPI PNG named {var}_time_series.png in outDir.
// It returns the output file path.
func TimeSeriesPlot(f *Field, meta FileMeta, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("render: creating plot directory: %v", err)
	}

	mean := f.SpatialMean()
	pts := make(plotter.XYs, len(mean))
	for i, m := range mean {
		pts[i].X = float64(f.Times[i].Unix())
		pts[i].Y = m
	}

	p, err := plot.New()
	if err != nil {
		return "", err
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return "", err
	}
	l.LineStyle.Width = vg.Points(2)
	l.LineStyle.Color = color.NRGBA{B: 255, A: 255}
	p.Add(plotter.NewGrid(), l)
	p.Title.Text = fmt.Sprintf("Time Series of %s at %s (Spatial Mean)",
		DisplayName(f.Name), meta.Level)
	p.X.Label.Text = "Time"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02 15:04"}
	p.Y.Label.Text = fmt.Sprintf("%s (%s)", DisplayName(f.Name), f.Units)

	c := vgimg.NewWith(vgimg.UseWH(seriesWidth, seriesHeight), vgimg.UseDPI(plotDPI))
	p.Draw(draw.New(c))

	path := filepath.Join(outDir, f.Name+"_time_series.png")
	w, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("render: creating %s: %v", path, err)
	}
	defer w.Close()
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return "", fmt.Errorf("render: writing %s: %v", path, err)
	}
	return path, nil
}
