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
	"math"
	"time"

	"github.com/ctessum/sparse"
)

// defaultVariableCount is the number of variables selected when a
// request names none, or when none of the requested names exist.
const defaultVariableCount = 3

// Range is a coordinate interval. Bounds may be given in either order;
// selection normalizes them.
type Range struct {
	Min, Max float64
}

// normalized returns the range with Min <= Max.
func (r Range) normalized() Range {
	if r.Min > r.Max {
		return Range{Min: r.Max, Max: r.Min}
	}
	return r
}

// Selection describes one fetch request: a UTC day plus optional
// variable, level and spatial filters.
type Selection struct {
	Year, Month, Day int

	// Variables lists requested variable names; nil selects a small
	// default set.
	Variables []string
	// Levels lists requested pressure levels in hPa; nil selects a
	// small default set.
	Levels []int
	// LatBounds and LonBounds, when non-nil, restrict the spatial
	// extent. Bounds are resolved to the nearest available coordinate.
	LatBounds, LonBounds *Range
}

// Date returns the requested day as a UTC time.
func (s *Selection) Date() time.Time {
	return time.Date(s.Year, time.Month(s.Month), s.Day, 0, 0, 0, 0, time.UTC)
}

// View is a reduced window onto a Dataset. Every filter mutates the view
// in place; data is only read when Read is called.
type View struct {
	ds   *Dataset
	Date time.Time

	// Vars is the selected variable set.
	Vars []string
	// Time window [TimeStart, TimeEnd) into ds.Times.
	TimeStart, TimeEnd int
	// LevelIdx holds selected indices into ds.Levels, in dataset order.
	// Nil means all levels.
	LevelIdx []int
	// Latitude window [LatStart, LatEnd) into ds.Lats (descending) and
	// longitude window [LonStart, LonEnd) into ds.Lons (ascending).
	LatStart, LatEnd int
	LonStart, LonEnd int
}

// SelectDate returns a view of all data falling on the given UTC day.
func (ds *Dataset) SelectDate(year, month, day int) (*View, error) {
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	next := date.AddDate(0, 0, 1)
	start, end := -1, -1
	for i, t := range ds.Times {
		if !t.Before(date) && t.Before(next) {
			if start < 0 {
				start = i
			}
			end = i + 1
		}
	}
	if start < 0 {
		first, last := ds.TimeRange()
		return nil, fmt.Errorf("era5: no data for %s (archive covers %s to %s)",
			date.Format("2006-01-02"), first.Format("2006-01-02"), last.Format("2006-01-02"))
	}
	return &View{
		ds:        ds,
		Date:      date,
		Vars:      append([]string{}, ds.varNames...),
		TimeStart: start,
		TimeEnd:   end,
		LatEnd:    len(ds.Lats),
		LonEnd:    len(ds.Lons),
	}, nil
}

// FilterVariables reduces the view to the requested variable names.
// Requested names absent from the dataset are dropped; if none remain
// (or none were requested) the first defaultVariableCount available
// variables are used instead and fellBack is true.
func (v *View) FilterVariables(requested []string) (used []string, fellBack bool) {
	available := make(map[string]bool, len(v.ds.varNames))
	for _, name := range v.ds.varNames {
		available[name] = true
	}
	for _, name := range requested {
		if available[name] {
			used = append(used, name)
		}
	}
	if len(used) == 0 {
		n := defaultVariableCount
		if n > len(v.ds.varNames) {
			n = len(v.ds.varNames)
		}
		used = append([]string{}, v.ds.varNames[:n]...)
		fellBack = true
	}
	v.Vars = used
	return used, fellBack
}

// defaultLevels is the level set used when a request names none:
// 500 and 850 hPa when available, otherwise the first two levels.
func (v *View) defaultLevels() []int {
	has := make(map[int]bool, len(v.ds.Levels))
	for _, l := range v.ds.Levels {
		has[l] = true
	}
	if has[500] && has[850] {
		return []int{500, 850}
	}
	n := 2
	if n > len(v.ds.Levels) {
		n = len(v.ds.Levels)
	}
	return append([]int{}, v.ds.Levels[:n]...)
}

// FilterLevels reduces the view to the requested pressure levels.
// Levels absent from the dataset are dropped; if none remain the level
// set is left unfiltered and fellBack is true. When the dataset has no
// level dimension the call is a no-op and hasLevels is false.
func (v *View) FilterLevels(requested []int) (used []int, fellBack, hasLevels bool) {
	if len(v.ds.Levels) == 0 {
		return nil, false, false
	}
	if requested == nil {
		requested = v.defaultLevels()
	}
	want := make(map[int]bool, len(requested))
	for _, l := range requested {
		want[l] = true
	}
	var idx []int
	for i, l := range v.ds.Levels {
		if want[l] {
			idx = append(idx, i)
			used = append(used, l)
		}
	}
	if len(idx) == 0 {
		return v.Levels(), true, true
	}
	v.LevelIdx = idx
	return used, false, true
}

// Levels returns the pressure levels currently selected by the view, in
// dataset order.
func (v *View) Levels() []int {
	if v.LevelIdx == nil {
		return append([]int{}, v.ds.Levels...)
	}
	levels := make([]int, len(v.LevelIdx))
	for i, li := range v.LevelIdx {
		levels[i] = v.ds.Levels[li]
	}
	return levels
}

// Times returns the time coordinates currently selected by the view.
func (v *View) Times() []time.Time {
	return append([]time.Time{}, v.ds.Times[v.TimeStart:v.TimeEnd]...)
}

// Lats returns the latitude coordinates currently selected by the view,
// descending.
func (v *View) Lats() []float64 {
	return append([]float64{}, v.ds.Lats[v.LatStart:v.LatEnd]...)
}

// Lons returns the longitude coordinates currently selected by the view,
// ascending.
func (v *View) Lons() []float64 {
	return append([]float64{}, v.ds.Lons[v.LonStart:v.LonEnd]...)
}

// SubsetLatitude restricts the view to the nearest available latitudes
// covering r. Bounds outside the grid clamp to the boundary coordinate.
// The returned range holds the coordinates actually used. Latitudes are
// stored north to south, so the slice runs from the nearest maximum down
// to the nearest minimum.
func (v *View) SubsetLatitude(r Range) (Range, error) {
	r = r.normalized()
	lats := v.ds.Lats[v.LatStart:v.LatEnd]
	if len(lats) == 0 {
		return Range{}, fmt.Errorf("era5: latitude subset of empty view")
	}
	iNorth := nearestIndex(lats, r.Max)
	iSouth := nearestIndex(lats, r.Min)
	if iNorth > iSouth {
		iNorth, iSouth = iSouth, iNorth
	}
	actual := Range{Min: lats[iSouth], Max: lats[iNorth]}
	v.LatEnd = v.LatStart + iSouth + 1
	v.LatStart = v.LatStart + iNorth
	return actual, nil
}

// SubsetLongitude restricts the view to the nearest available longitudes
// covering r. Longitudes are stored ascending (0° to 359.75°).
func (v *View) SubsetLongitude(r Range) (Range, error) {
	r = r.normalized()
	lons := v.ds.Lons[v.LonStart:v.LonEnd]
	if len(lons) == 0 {
		return Range{}, fmt.Errorf("era5: longitude subset of empty view")
	}
	iMin := nearestIndex(lons, r.Min)
	iMax := nearestIndex(lons, r.Max)
	if iMin > iMax {
		iMin, iMax = iMax, iMin
	}
	actual := Range{Min: lons[iMin], Max: lons[iMax]}
	v.LonEnd = v.LonStart + iMax + 1
	v.LonStart = v.LonStart + iMin
	return actual, nil
}

// nearestIndex returns the index of the coordinate value closest to x.
// Works for both ascending and descending coordinates.
func nearestIndex(coords []float64, x float64) int {
	best := 0
	bestDist := math.Abs(coords[0] - x)
	for i, c := range coords[1:] {
		if d := math.Abs(c - x); d < bestDist {
			bestDist = d
			best = i + 1
		}
	}
	return best
}

// Read reads the view's window of one variable at one pressure level as
// a dense array with shape (time, latitude, longitude). For variables
// without a level dimension, level is ignored.
func (v *View) Read(ctx context.Context, varName string, level int) (*sparse.DenseArray, error) {
	a, err := v.ds.Variable(varName)
	if err != nil {
		return nil, err
	}
	dims := a.Dimensions()
	if dims == nil {
		return nil, fmt.Errorf("era5: variable %s has no dimension metadata", varName)
	}
	start := make([]int, len(dims))
	stop := make([]int, len(dims))
	for d, name := range dims {
		switch name {
		case TimeDim:
			start[d], stop[d] = v.TimeStart, v.TimeEnd
		case LevelDim:
			li := -1
			for i, l := range v.ds.Levels {
				if l == level {
					li = i
					break
				}
			}
			if li < 0 {
				return nil, fmt.Errorf("era5: variable %s has no %d hPa level", varName, level)
			}
			start[d], stop[d] = li, li+1
		case LatitudeDim:
			start[d], stop[d] = v.LatStart, v.LatEnd
		case LongitudeDim:
			start[d], stop[d] = v.LonStart, v.LonEnd
		default:
			return nil, fmt.Errorf("era5: variable %s has unknown dimension %s", varName, name)
		}
	}
	data, err := a.Slice(ctx, start, stop)
	if err != nil {
		return nil, err
	}
	// Drop the singleton level axis so the result is always
	// (time, latitude, longitude).
	nt := v.TimeEnd - v.TimeStart
	nlat := v.LatEnd - v.LatStart
	nlon := v.LonEnd - v.LonStart
	if len(data.Elements) != nt*nlat*nlon {
		return nil, fmt.Errorf("era5: variable %s: read %d elements, want %d", varName, len(data.Elements), nt*nlat*nlon)
	}
	out := sparse.ZerosDense(nt, nlat, nlon)
	copy(out.Elements, data.Elements)
	return out, nil
}
