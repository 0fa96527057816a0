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
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"testing"
	"time"

	"github.com/Amanpatni211/era5-tool/internal/zarr"
)

// testHours is the number of hourly steps in the test hierarchy:
// two full days starting 2023-01-01T00Z.
const testHours = 48

var (
	testStart  = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	testLats   = []float64{2, 1, 0, -1}
	testLons   = []float64{10, 11, 12}
	testLevels = []int{500, 850, 1000}
)

// tempValue is the deterministic content of the "temperature" test
// variable at (time, level, lat, lon) indices.
func tempValue(t, l, i, j int) float64 {
	return float64(t*1000 + l*100 + i*10 + j)
}

// sfcValue is the deterministic content of the "2m_temperature" test
// variable at (time, lat, lon) indices.
func sfcValue(t, i, j int) float64 {
	return 200 + float64(t) + float64(i)*0.5 + float64(j)*0.25
}

func rawChunk(t *testing.T, vals interface{}) []byte {
	t.Helper()
	var b bytes.Buffer
	if err := binary.Write(&b, binary.LittleEndian, vals); err != nil {
		t.Fatal(err)
	}
	return b.Bytes()
}

func arrayMeta(shape, chunks []int, dtype string) map[string]interface{} {
	return map[string]interface{}{
		"zarr_format": 2,
		"shape":       shape,
		"chunks":      chunks,
		"dtype":       dtype,
		"compressor":  nil,
		"fill_value":  "NaN",
		"order":       "C",
	}
}

func arrayAttrs(dims []string, extra map[string]interface{}) map[string]interface{} {
	a := map[string]interface{}{"_ARRAY_DIMENSIONS": dims}
	for k, v := range extra {
		a[k] = v
	}
	return a
}

// testStore builds an in-memory hierarchy shaped like the ARCO archive:
// coordinates time/level/latitude/longitude, one pressure-level variable
// ("temperature") and one surface variable ("2m_temperature").
func testStore(t *testing.T) zarr.MemStore {
	t.Helper()
	nt, nlev := testHours, len(testLevels)
	nlat, nlon := len(testLats), len(testLons)

	meta := map[string]interface{}{
		".zattrs":            map[string]interface{}{"title": "test reanalysis"},
		"time/.zarray":       arrayMeta([]int{nt}, []int{nt}, "<i4"),
		"time/.zattrs":       arrayAttrs([]string{"time"}, map[string]interface{}{"units": "hours since 1900-01-01", "calendar": "proleptic_gregorian"}),
		"level/.zarray":      arrayMeta([]int{nlev}, []int{nlev}, "<i8"),
		"level/.zattrs":      arrayAttrs([]string{"level"}, map[string]interface{}{"units": "hPa"}),
		"latitude/.zarray":   arrayMeta([]int{nlat}, []int{nlat}, "<f8"),
		"latitude/.zattrs":   arrayAttrs([]string{"latitude"}, map[string]interface{}{"units": "degrees_north"}),
		"longitude/.zarray":  arrayMeta([]int{nlon}, []int{nlon}, "<f8"),
		"longitude/.zattrs":  arrayAttrs([]string{"longitude"}, map[string]interface{}{"units": "degrees_east"}),
		"temperature/.zarray": arrayMeta(
			[]int{nt, nlev, nlat, nlon}, []int{nt / 2, nlev, nlat, nlon}, "<f4"),
		"temperature/.zattrs": arrayAttrs(
			[]string{"time", "level", "latitude", "longitude"},
			map[string]interface{}{"units": "K", "long_name": "Temperature"}),
		"2m_temperature/.zarray": arrayMeta(
			[]int{nt, nlat, nlon}, []int{nt, nlat, nlon}, "<f4"),
		"2m_temperature/.zattrs": arrayAttrs(
			[]string{"time", "latitude", "longitude"},
			map[string]interface{}{"units": "K", "long_name": "2 metre temperature"}),
	}
	doc, err := json.Marshal(map[string]interface{}{
		"zarr_consolidated_format": 1,
		"metadata":                 meta,
	})
	if err != nil {
		t.Fatal(err)
	}

	s := zarr.MemStore{".zmetadata": doc}
	for key, val := range meta {
		if b, err := json.Marshal(val); err != nil {
			t.Fatal(err)
		} else {
			s[key] = b
		}
	}

	hours := make([]int32, nt)
	for i := range hours {
		hours[i] = int32(testStart.Add(time.Duration(i)*time.Hour).Sub(epoch1900) / time.Hour)
	}
	s["time/0"] = rawChunk(t, hours)
	levels := make([]int64, nlev)
	for i, l := range testLevels {
		levels[i] = int64(l)
	}
	s["level/0"] = rawChunk(t, levels)
	s["latitude/0"] = rawChunk(t, testLats)
	s["longitude/0"] = rawChunk(t, testLons)

	for c := 0; c < 2; c++ {
		vals := make([]float32, 0, nt/2*nlev*nlat*nlon)
		for ti := c * nt / 2; ti < (c+1)*nt/2; ti++ {
			for l := 0; l < nlev; l++ {
				for i := 0; i < nlat; i++ {
					for j := 0; j < nlon; j++ {
						vals = append(vals, float32(tempValue(ti, l, i, j)))
					}
				}
			}
		}
		key := "temperature/" + map[int]string{0: "0.0.0.0", 1: "1.0.0.0"}[c]
		s[key] = rawChunk(t, vals)
	}

	sfc := make([]float32, 0, nt*nlat*nlon)
	for ti := 0; ti < nt; ti++ {
		for i := 0; i < nlat; i++ {
			for j := 0; j < nlon; j++ {
				sfc = append(sfc, float32(sfcValue(ti, i, j)))
			}
		}
	}
	s["2m_temperature/0.0.0"] = rawChunk(t, sfc)
	return s
}

func openTestDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := Open(context.Background(), testStore(t))
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestOpen(t *testing.T) {
	ds := openTestDataset(t)
	if got, want := len(ds.Times), testHours; got != want {
		t.Errorf("len(Times) = %d, want %d", got, want)
	}
	if ds.Times[0] != testStart {
		t.Errorf("Times[0] = %v, want %v", ds.Times[0], testStart)
	}
	if got, want := len(ds.Levels), len(testLevels); got != want {
		t.Errorf("len(Levels) = %d, want %d", got, want)
	}
	wantVars := []string{"2m_temperature", "temperature"}
	gotVars := ds.Variables()
	if len(gotVars) != len(wantVars) || gotVars[0] != wantVars[0] || gotVars[1] != wantVars[1] {
		t.Errorf("Variables() = %v, want %v", gotVars, wantVars)
	}
	if !ds.HasLevels("temperature") {
		t.Error("temperature should have levels")
	}
	if ds.HasLevels("2m_temperature") {
		t.Error("2m_temperature should not have levels")
	}
}

func TestParseTimeUnits(t *testing.T) {
	tests := []struct {
		units string
		epoch time.Time
		step  time.Duration
		ok    bool
	}{
		{"hours since 1900-01-01", epoch1900, time.Hour, true},
		{"seconds since 1970-01-01 00:00:00", time.Unix(0, 0).UTC(), time.Second, true},
		{"days since 2000-01-01", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 24 * time.Hour, true},
		{"fortnights since 1900-01-01", time.Time{}, 0, false},
		{"hours 1900-01-01", time.Time{}, 0, false},
	}
	for _, test := range tests {
		epoch, step, err := ParseTimeUnits(test.units)
		if test.ok != (err == nil) {
			t.Errorf("%q: err = %v", test.units, err)
			continue
		}
		if !test.ok {
			continue
		}
		if !epoch.Equal(test.epoch) || step != test.step {
			t.Errorf("%q: got (%v, %v), want (%v, %v)", test.units, epoch, step, test.epoch, test.step)
		}
	}
}
