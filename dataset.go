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
	"sort"
	"strings"
	"time"

	"github.com/Amanpatni211/era5-tool/internal/zarr"
)

// Dataset is a handle to an opened reanalysis hierarchy. The coordinate
// arrays are read eagerly because they are small; variable data stays
// remote until a View reads it.
type Dataset struct {
	group *zarr.Group

	// Times holds the decoded time coordinate in UTC.
	Times []time.Time
	// Levels holds the pressure-level coordinate in hPa, or nil when
	// the hierarchy has no level dimension.
	Levels []int
	// Lats is the latitude coordinate, descending (north to south).
	Lats []float64
	// Lons is the longitude coordinate, ascending.
	Lons []float64

	varNames []string
}

// Open opens the hierarchy in store and reads its coordinates.
func Open(ctx context.Context, store zarr.Store) (*Dataset, error) {
	g, err := zarr.OpenGroup(ctx, store)
	if err != nil {
		return nil, err
	}
	ds := &Dataset{group: g}

	if ds.Times, err = readTimeCoord(ctx, g); err != nil {
		return nil, err
	}
	if ds.Lats, err = readCoord(ctx, g, LatitudeDim); err != nil {
		return nil, err
	}
	if ds.Lons, err = readCoord(ctx, g, LongitudeDim); err != nil {
		return nil, err
	}
	if g.Has(LevelDim) {
		levels, err := readCoord(ctx, g, LevelDim)
		if err != nil {
			return nil, err
		}
		ds.Levels = make([]int, len(levels))
		for i, l := range levels {
			ds.Levels[i] = int(l)
		}
	}

	coords := map[string]bool{
		TimeDim: true, LevelDim: true, LatitudeDim: true, LongitudeDim: true,
	}
	for _, name := range g.ArrayNames() {
		if !coords[name] {
			ds.varNames = append(ds.varNames, name)
		}
	}
	sort.Strings(ds.varNames)
	return ds, nil
}

// Variables returns the names of the data variables in the hierarchy,
// sorted, excluding coordinates.
func (ds *Dataset) Variables() []string {
	return append([]string{}, ds.varNames...)
}

// Variable returns the underlying array for a data variable.
func (ds *Dataset) Variable(name string) (*zarr.Array, error) {
	return ds.group.Array(name)
}

// HasLevels reports whether the named variable carries the pressure-level
// dimension.
func (ds *Dataset) HasLevels(name string) bool {
	a, err := ds.group.Array(name)
	if err != nil {
		return false
	}
	for _, d := range a.Dimensions() {
		if d == LevelDim {
			return true
		}
	}
	return false
}

// TimeRange returns the first and last time coordinates.
func (ds *Dataset) TimeRange() (time.Time, time.Time) {
	if len(ds.Times) == 0 {
		return time.Time{}, time.Time{}
	}
	return ds.Times[0], ds.Times[len(ds.Times)-1]
}

func readCoord(ctx context.Context, g *zarr.Group, name string) ([]float64, error) {
	a, err := g.Array(name)
	if err != nil {
		return nil, fmt.Errorf("era5: coordinate %s: %v", name, err)
	}
	vals, err := a.Values(ctx)
	if err != nil {
		return nil, fmt.Errorf("era5: reading coordinate %s: %v", name, err)
	}
	return vals, nil
}

func readTimeCoord(ctx context.Context, g *zarr.Group) ([]time.Time, error) {
	a, err := g.Array(TimeDim)
	if err != nil {
		return nil, fmt.Errorf("era5: coordinate time: %v", err)
	}
	epoch, step, err := ParseTimeUnits(a.Attrs.GetString("units"))
	if err != nil {
		return nil, err
	}
	vals, err := a.Values(ctx)
	if err != nil {
		return nil, fmt.Errorf("era5: reading coordinate time: %v", err)
	}
	times := make([]time.Time, len(vals))
	for i, v := range vals {
		times[i] = epoch.Add(time.Duration(v) * step)
	}
	return times, nil
}

// ParseTimeUnits decodes a CF-style time unit string such as
// "hours since 1900-01-01" or "seconds since 1970-01-01 00:00:00".
func ParseTimeUnits(units string) (time.Time, time.Duration, error) {
	fields := strings.Fields(units)
	if len(fields) < 3 || fields[1] != "since" {
		return time.Time{}, 0, fmt.Errorf("era5: cannot parse time units %q", units)
	}
	var step time.Duration
	switch fields[0] {
	case "days":
		step = 24 * time.Hour
	case "hours":
		step = time.Hour
	case "minutes":
		step = time.Minute
	case "seconds":
		step = time.Second
	default:
		return time.Time{}, 0, fmt.Errorf("era5: unsupported time unit %q", fields[0])
	}
	stamp := strings.Join(fields[2:], " ")
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"} {
		if epoch, err := time.ParseInLocation(layout, stamp, time.UTC); err == nil {
			return epoch, step, nil
		}
	}
	return time.Time{}, 0, fmt.Errorf("era5: cannot parse time epoch %q", stamp)
}
