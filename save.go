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

package era5

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ctessum/cdf"
)

// stampFormat is the generation timestamp embedded in output filenames
// to keep repeated fetches from overwriting each other. 14 digits.
const stampFormat = "20060102150405"

// epoch1900 is the reference time of the output time coordinate.
var epoch1900 = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// Writer writes per-variable, per-level NetCDF files into a directory.
// All files written by one Writer share a generation timestamp.
type Writer struct {
	// Dir is the output directory; it is created on first use.
	Dir string
	// Stamp is the shared generation timestamp.
	Stamp string
}

// NewWriter creates a Writer for dir with the current time as the
// generation timestamp.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir, Stamp: time.Now().UTC().Format(stampFormat)}
}

// FileName returns the output filename for a pressure-level variable:
// {var}_{level}_{YYYYMMDD}_{timestamp}.nc
func FileName(varName string, level int, date time.Time, stamp string) string {
	return fmt.Sprintf("%s_%d_%s_%s.nc", varName, level, date.Format("20060102"), stamp)
}

// SurfaceFileName returns the output filename for a single-level
// variable: {var}_sfc_{YYYYMMDD}_{timestamp}.nc
func SurfaceFileName(varName string, date time.Time, stamp string) string {
	return fmt.Sprintf("%s_sfc_%s_%s.nc", varName, date.Format("20060102"), stamp)
}

// WriteFile reads one (variable, level) window from the view and writes
// it as a NetCDF file, returning the file path and its size in bytes.
// For variables without a level dimension, pass level < 0.
func (w *Writer) WriteFile(ctx context.Context, v *View, varName string, level int) (string, int64, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", 0, fmt.Errorf("era5: creating output directory: %v", err)
	}
	var name string
	if level < 0 {
		name = SurfaceFileName(varName, v.Date, w.Stamp)
	} else {
		name = FileName(varName, level, v.Date, w.Stamp)
	}
	path := filepath.Join(w.Dir, name)

	data, err := v.Read(ctx, varName, level)
	if err != nil {
		return "", 0, err
	}
	times := v.Times()
	lats := v.Lats()
	lons := v.Lons()

	h := cdf.NewHeader(
		[]string{TimeDim, LatitudeDim, LongitudeDim},
		[]int{len(times), len(lats), len(lons)})
	h.AddAttribute("", "source", "ARCO ERA5 reanalysis")
	h.AddAttribute("", "date", v.Date.Format("2006-01-02"))
	h.AddAttribute("", "history", "written by era5-tool v"+Version)

	h.AddVariable(TimeDim, []string{TimeDim}, []int32{0})
	h.AddAttribute(TimeDim, "units", "hours since 1900-01-01")
	h.AddAttribute(TimeDim, "calendar", "proleptic_gregorian")
	h.AddVariable(LatitudeDim, []string{LatitudeDim}, []float64{0})
	h.AddAttribute(LatitudeDim, "units", "degrees_north")
	h.AddVariable(LongitudeDim, []string{LongitudeDim}, []float64{0})
	h.AddAttribute(LongitudeDim, "units", "degrees_east")

	h.AddVariable(varName, []string{TimeDim, LatitudeDim, LongitudeDim}, []float32{0})
	if a, err := v.ds.Variable(varName); err == nil {
		for _, attr := range []string{"units", "long_name", "short_name", "standard_name"} {
			if val := a.Attrs.GetString(attr); val != "" {
				h.AddAttribute(varName, attr, val)
			}
		}
	}
	if level >= 0 {
		h.AddAttribute(varName, "level", []int32{int32(level)})
	}
	h.Define()

	ff, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("era5: creating %s: %v", name, err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		return "", 0, fmt.Errorf("era5: writing header of %s: %v", name, err)
	}

	hours := make([]int32, len(times))
	for i, t := range times {
		hours[i] = int32(t.Sub(epoch1900) / time.Hour)
	}
	if err := writeVar(f, TimeDim, hours); err != nil {
		return "", 0, fmt.Errorf("era5: writing %s: %v", name, err)
	}
	if err := writeVar(f, LatitudeDim, lats); err != nil {
		return "", 0, fmt.Errorf("era5: writing %s: %v", name, err)
	}
	if err := writeVar(f, LongitudeDim, lons); err != nil {
		return "", 0, fmt.Errorf("era5: writing %s: %v", name, err)
	}
	vals := make([]float32, len(data.Elements))
	for i, e := range data.Elements {
		vals[i] = float32(e)
	}
	if err := writeVar(f, varName, vals); err != nil {
		return "", 0, fmt.Errorf("era5: writing %s: %v", name, err)
	}
	if err := cdf.UpdateNumRecs(ff); err != nil {
		return "", 0, fmt.Errorf("era5: finalizing %s: %v", name, err)
	}

	info, err := ff.Stat()
	if err != nil {
		return "", 0, fmt.Errorf("era5: sizing %s: %v", name, err)
	}
	return path, info.Size(), nil
}

// writeVar writes the full extent of one variable.
func writeVar(f *cdf.File, name string, values interface{}) error {
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	_, err := f.Writer(name, start, end).Write(values)
	return err
}
