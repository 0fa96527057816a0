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
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	mapWidth  = 12 * vg.Inch
	mapHeight = 8 * vg.Inch
	legendH   = 0.8 * vg.Inch
	plotDPI   = 300
)

// fieldGrid presents one timestep of a field as a heat-map grid with
// ascending coordinates, whatever order the file stores latitude in.
type fieldGrid struct {
	f    *Field
	t    int
	rows []int // grid row -> latitude index, south to north
}

func newFieldGrid(f *Field, t int) fieldGrid {
	rows := make([]int, len(f.Lats))
	for i := range rows {
		rows[i] = i
	}
	if len(f.Lats) > 1 && f.Lats[0] > f.Lats[1] {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	return fieldGrid{f: f, t: t, rows: rows}
}

func (g fieldGrid) Dims() (c, r int)   { return len(g.f.Lons), len(g.rows) }
func (g fieldGrid) X(c int) float64    { return g.f.Lons[c] }
func (g fieldGrid) Y(r int) float64    { return g.f.Lats[g.rows[r]] }
func (g fieldGrid) Z(c, r int) float64 { return g.f.Data.Get(g.t, g.rows[r], c) }

// MapPlot draws the first timestep of the field as a heat map with a
// color bar and writes it as a 300-DPI PNG named {stem}.png in outDir.
// It returns the output file path.
func MapPlot(f *Field, meta FileMeta, style *Style, outDir, stem string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("render: creating plot directory: %v", err)
	}

	sum := f.Stats()
	cm := style.ColorMap(f.Name)
	cm.SetMin(sum.Min)
	cm.SetMax(sum.Max)

	p, err := plot.New()
	if err != nil {
		return "", err
	}
	hm := plotter.NewHeatMap(newFieldGrid(f, 0), cm.Palette(255))
	hm.Min, hm.Max = sum.Min, sum.Max
	p.Add(hm)
	p.Title.Text = mapTitle(f, meta)
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	bar, err := plot.New()
	if err != nil {
		return "", err
	}
	bar.Add(&plotter.ColorBar{ColorMap: cm})
	bar.HideY()
	bar.X.Padding = 0
	bar.X.Label.Text = f.Units

	c := vgimg.NewWith(vgimg.UseWH(mapWidth, mapHeight), vgimg.UseDPI(plotDPI))
	dc := draw.New(c)
	p.Draw(draw.Crop(dc, 0, 0, legendH, 0))
	bar.Draw(draw.Crop(dc, vg.Inch, -vg.Inch, 0, legendH-mapHeight))

	path := filepath.Join(outDir, stem+".png")
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

func mapTitle(f *Field, meta FileMeta) string {
	name := f.Name
	if meta.Variable != "" {
		name = meta.Variable
	}
	title := fmt.Sprintf("%s at %s", DisplayName(name), meta.Level)
	if meta.Date != "" {
		title += " - " + meta.Date
	}
	if len(f.Times) > 1 {
		title += " " + f.Times[0].UTC().Format("2006-01-02 15:04")
	}
	return title
}
