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

// Package render plots ERA5 subset files as maps and time series.
package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"

	"github.com/Amanpatni211/era5-tool"
)

// Field is one data variable loaded from a NetCDF file, together with
// its coordinates. Data always has shape (time, latitude, longitude);
// files without a time dimension get a single time step.
type Field struct {
	// Name is the variable name as stored in the file.
	Name string
	// Units is the variable's units attribute, or a guess from the
	// variable name when the file carries none.
	Units string
	// Times, Lats and Lons are the coordinate values, in file order.
	Times []time.Time
	Lats  []float64
	Lons  []float64
	// Data holds the values in (time, latitude, longitude) order.
	Data *sparse.DenseArray
}

// coordinate variable names that are never the plotted variable.
var coordNames = map[string]bool{
	era5.TimeDim:      true,
	era5.LevelDim:     true,
	era5.LatitudeDim:  true,
	era5.LongitudeDim: true,
	"expver":          true,
}

// Load reads the first non-coordinate variable of a NetCDF file.
// Both the classic format and NetCDF-4 files are understood.
func Load(path string) (*Field, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("render: opening %s: %v", path, err)
	}
	defer nc.Close()

	names := append([]string{}, nc.ListVariables()...)
	sort.Strings(names)
	var varName string
	for _, name := range names {
		if !coordNames[name] {
			varName = name
			break
		}
	}
	if varName == "" {
		return nil, fmt.Errorf("render: %s contains no data variables", path)
	}

	v, err := nc.GetVariable(varName)
	if err != nil {
		return nil, fmt.Errorf("render: reading %s from %s: %v", varName, path, err)
	}
	f := &Field{Name: varName, Units: attrString(v.Attributes, "units")}
	if f.Units == "" {
		f.Units = guessUnits(varName)
	}

	if f.Lats, err = coordValues(nc, era5.LatitudeDim); err != nil {
		return nil, err
	}
	if f.Lons, err = coordValues(nc, era5.LongitudeDim); err != nil {
		return nil, err
	}
	if f.Times, err = timeValues(nc); err != nil {
		return nil, err
	}

	if f.Data, err = decodeValues(v, len(f.Times), len(f.Lats), len(f.Lons)); err != nil {
		return nil, fmt.Errorf("render: %s: %v", varName, err)
	}
	return f, nil
}

// attrString returns a string attribute, tolerating files that store
// single-element string slices.
func attrString(attrs api.AttributeMap, name string) string {
	if attrs == nil {
		return ""
	}
	v, ok := attrs.Get(name)
	if !ok {
		return ""
	}
	switch a := v.(type) {
	case string:
		return a
	case []string:
		if len(a) > 0 {
			return a[0]
		}
	}
	return ""
}

// attrFloat returns a numeric attribute as a float64.
func attrFloat(attrs api.AttributeMap, name string) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	v, ok := attrs.Get(name)
	if !ok {
		return 0, false
	}
	switch a := v.(type) {
	case float64:
		return a, true
	case float32:
		return float64(a), true
	case []float64:
		if len(a) > 0 {
			return a[0], true
		}
	case []float32:
		if len(a) > 0 {
			return float64(a[0]), true
		}
	}
	return 0, false
}

// coordValues reads a one-dimensional coordinate variable as float64.
func coordValues(nc api.Group, name string) ([]float64, error) {
	v, err := nc.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("render: reading coordinate %s: %v", name, err)
	}
	switch vals := v.Values.(type) {
	case []float64:
		return vals, nil
	case []float32:
		out := make([]float64, len(vals))
		for i, x := range vals {
			out[i] = float64(x)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(vals))
		for i, x := range vals {
			out[i] = float64(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("render: coordinate %s has unsupported type %T", name, vals)
	}
}

// timeValues reads and decodes the time coordinate. Files without one
// get a single zero time.
func timeValues(nc api.Group) ([]time.Time, error) {
	v, err := nc.GetVariable(era5.TimeDim)
	if err != nil {
		return []time.Time{{}}, nil
	}
	epoch, step, err := era5.ParseTimeUnits(attrString(v.Attributes, "units"))
	if err != nil {
		return nil, fmt.Errorf("render: %v", err)
	}
	raw, err := coordValues(nc, era5.TimeDim)
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, len(raw))
	for i, x := range raw {
		times[i] = epoch.Add(time.Duration(x) * step)
	}
	return times, nil
}

// decodeValues converts a variable's values to a dense
// (time, latitude, longitude) array. Two-dimensional variables are
// treated as a single time step, and int16 data packed with
// scale_factor/add_offset attributes is unpacked.
func decodeValues(v *api.Variable, nt, nlat, nlon int) (*sparse.DenseArray, error) {
	if nt == 0 {
		nt = 1
	}
	out := sparse.ZerosDense(nt, nlat, nlon)
	scale, hasScale := attrFloat(v.Attributes, "scale_factor")
	offset, _ := attrFloat(v.Attributes, "add_offset")
	if !hasScale {
		scale = 1
	}
	i := 0
	put := func(x float64) error {
		if i >= len(out.Elements) {
			return fmt.Errorf("more than %d values", len(out.Elements))
		}
		out.Elements[i] = x*scale + offset
		i++
		return nil
	}
	if err := walkValues(v.Values, put); err != nil {
		return nil, err
	}
	if i != len(out.Elements) {
		return nil, fmt.Errorf("read %d values, want %d", i, len(out.Elements))
	}
	return out, nil
}

// walkValues visits every scalar in a possibly nested slice in
// row-major order.
func walkValues(v interface{}, put func(float64) error) error {
	switch vals := v.(type) {
	case []float32:
		for _, x := range vals {
			if err := put(float64(x)); err != nil {
				return err
			}
		}
	case []float64:
		for _, x := range vals {
			if err := put(x); err != nil {
				return err
			}
		}
	case []int16:
		for _, x := range vals {
			if err := put(float64(x)); err != nil {
				return err
			}
		}
	case []int32:
		for _, x := range vals {
			if err := put(float64(x)); err != nil {
				return err
			}
		}
	case [][]float32:
		for _, row := range vals {
			if err := walkValues(row, put); err != nil {
				return err
			}
		}
	case [][]float64:
		for _, row := range vals {
			if err := walkValues(row, put); err != nil {
				return err
			}
		}
	case [][]int16:
		for _, row := range vals {
			if err := walkValues(row, put); err != nil {
				return err
			}
		}
	case [][][]float32:
		for _, plane := range vals {
			if err := walkValues(plane, put); err != nil {
				return err
			}
		}
	case [][][]float64:
		for _, plane := range vals {
			if err := walkValues(plane, put); err != nil {
				return err
			}
		}
	case [][][]int16:
		for _, plane := range vals {
			if err := walkValues(plane, put); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported value type %T", vals)
	}
	return nil
}

// guessUnits returns conventional units for common ERA5 variables when
// the file itself carries no units attribute.
func guessUnits(varName string) string {
	switch {
	case strings.Contains(varName, "temperature"):
		return "K"
	case strings.Contains(varName, "geopotential"):
		return "m²/s²"
	case strings.Contains(varName, "pressure"):
		return "Pa"
	}
	return ""
}

// Summary holds the statistics printed after plotting.
type Summary struct {
	Min, Max, Mean float64
	N              int
}

// Stats computes summary statistics over all values of the field.
func (f *Field) Stats() Summary {
	var d stats.Stats
	for _, x := range f.Data.Elements {
		d.Update(x)
	}
	return Summary{Min: d.Min(), Max: d.Max(), Mean: d.Mean(), N: d.Count()}
}

// TimeRange returns the first and last time coordinates.
func (f *Field) TimeRange() (time.Time, time.Time) {
	return f.Times[0], f.Times[len(f.Times)-1]
}

// LatRange returns the southernmost and northernmost latitudes.
func (f *Field) LatRange() (float64, float64) {
	return minMaxOf(f.Lats)
}

// LonRange returns the westernmost and easternmost longitudes.
func (f *Field) LonRange() (float64, float64) {
	return minMaxOf(f.Lons)
}

func minMaxOf(x []float64) (float64, float64) {
	return floats.Min(x), floats.Max(x)
}
