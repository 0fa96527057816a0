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
	"reflect"
	"testing"
)

func TestSelectDate(t *testing.T) {
	ds := openTestDataset(t)
	t.Run("secondDay", func(t *testing.T) {
		v, err := ds.SelectDate(2023, 1, 2)
		if err != nil {
			t.Fatal(err)
		}
		if v.TimeStart != 24 || v.TimeEnd != 48 {
			t.Errorf("time window = [%d,%d), want [24,48)", v.TimeStart, v.TimeEnd)
		}
		if got := v.Times(); len(got) != 24 || got[0].Day() != 2 {
			t.Errorf("Times() starts %v, len %d", got[0], len(got))
		}
	})
	t.Run("outsideArchive", func(t *testing.T) {
		if _, err := ds.SelectDate(1999, 1, 1); err == nil {
			t.Fatal("expected error for date outside the archive")
		}
	})
}

func TestFilterVariables(t *testing.T) {
	ds := openTestDataset(t)
	t.Run("match", func(t *testing.T) {
		v, _ := ds.SelectDate(2023, 1, 1)
		used, fellBack := v.FilterVariables([]string{"temperature", "no_such_variable"})
		if fellBack {
			t.Error("unexpected fallback")
		}
		if !reflect.DeepEqual(used, []string{"temperature"}) {
			t.Errorf("used = %v", used)
		}
	})
	t.Run("noneMatch", func(t *testing.T) {
		v, _ := ds.SelectDate(2023, 1, 1)
		used, fellBack := v.FilterVariables([]string{"no_such_variable"})
		if !fellBack {
			t.Error("expected fallback")
		}
		// The test hierarchy has only two variables, so the fallback
		// set is both of them.
		if !reflect.DeepEqual(used, []string{"2m_temperature", "temperature"}) {
			t.Errorf("used = %v", used)
		}
	})
	t.Run("nilRequest", func(t *testing.T) {
		v, _ := ds.SelectDate(2023, 1, 1)
		used, fellBack := v.FilterVariables(nil)
		if !fellBack {
			t.Error("expected fallback for nil request")
		}
		if len(used) != 2 {
			t.Errorf("used = %v", used)
		}
	})
}

func TestFilterLevels(t *testing.T) {
	ds := openTestDataset(t)
	t.Run("match", func(t *testing.T) {
		v, _ := ds.SelectDate(2023, 1, 1)
		used, fellBack, hasLevels := v.FilterLevels([]int{850, 7})
		if !hasLevels || fellBack {
			t.Errorf("fellBack=%v hasLevels=%v", fellBack, hasLevels)
		}
		if !reflect.DeepEqual(used, []int{850}) {
			t.Errorf("used = %v", used)
		}
		if !reflect.DeepEqual(v.Levels(), []int{850}) {
			t.Errorf("Levels() = %v", v.Levels())
		}
	})
	t.Run("noneMatch", func(t *testing.T) {
		v, _ := ds.SelectDate(2023, 1, 1)
		used, fellBack, _ := v.FilterLevels([]int{7, 13})
		if !fellBack {
			t.Error("expected fallback")
		}
		if !reflect.DeepEqual(used, []int{500, 850, 1000}) {
			t.Errorf("used = %v, want unfiltered set", used)
		}
	})
	t.Run("nilRequest", func(t *testing.T) {
		v, _ := ds.SelectDate(2023, 1, 1)
		used, fellBack, _ := v.FilterLevels(nil)
		if fellBack {
			t.Error("unexpected fallback")
		}
		if !reflect.DeepEqual(used, []int{500, 850}) {
			t.Errorf("used = %v, want default 500/850", used)
		}
	})
}

func TestSubsetLatitude(t *testing.T) {
	ds := openTestDataset(t) // latitudes 2, 1, 0, -1 (descending)
	t.Run("interior", func(t *testing.T) {
		v, _ := ds.SelectDate(2023, 1, 1)
		actual, err := v.SubsetLatitude(Range{Min: -0.2, Max: 1.2})
		if err != nil {
			t.Fatal(err)
		}
		if actual != (Range{Min: 0, Max: 1}) {
			t.Errorf("actual = %+v", actual)
		}
		if !reflect.DeepEqual(v.Lats(), []float64{1, 0}) {
			t.Errorf("Lats() = %v, want descending [1 0]", v.Lats())
		}
	})
	t.Run("swappedBoundsEquivalent", func(t *testing.T) {
		a, _ := ds.SelectDate(2023, 1, 1)
		b, _ := ds.SelectDate(2023, 1, 1)
		ra, err := a.SubsetLatitude(Range{Min: 1.2, Max: -0.2})
		if err != nil {
			t.Fatal(err)
		}
		rb, err := b.SubsetLatitude(Range{Min: -0.2, Max: 1.2})
		if err != nil {
			t.Fatal(err)
		}
		if ra != rb || !reflect.DeepEqual(a.Lats(), b.Lats()) {
			t.Errorf("swapped bounds gave %+v/%v, want %+v/%v", ra, a.Lats(), rb, b.Lats())
		}
	})
	t.Run("outOfBoundsClamps", func(t *testing.T) {
		v, _ := ds.SelectDate(2023, 1, 1)
		actual, err := v.SubsetLatitude(Range{Min: -60, Max: 75})
		if err != nil {
			t.Fatal(err)
		}
		if actual != (Range{Min: -1, Max: 2}) {
			t.Errorf("actual = %+v, want the grid edges", actual)
		}
		if len(v.Lats()) != 4 {
			t.Errorf("Lats() = %v", v.Lats())
		}
	})
}

func TestSubsetLongitude(t *testing.T) {
	ds := openTestDataset(t) // longitudes 10, 11, 12 (ascending)
	t.Run("interior", func(t *testing.T) {
		v, _ := ds.SelectDate(2023, 1, 1)
		actual, err := v.SubsetLongitude(Range{Min: 10.6, Max: 12.4})
		if err != nil {
			t.Fatal(err)
		}
		if actual != (Range{Min: 11, Max: 12}) {
			t.Errorf("actual = %+v", actual)
		}
		if !reflect.DeepEqual(v.Lons(), []float64{11, 12}) {
			t.Errorf("Lons() = %v", v.Lons())
		}
	})
	t.Run("swappedBoundsEquivalent", func(t *testing.T) {
		a, _ := ds.SelectDate(2023, 1, 1)
		b, _ := ds.SelectDate(2023, 1, 1)
		ra, _ := a.SubsetLongitude(Range{Min: 12.4, Max: 10.6})
		rb, _ := b.SubsetLongitude(Range{Min: 10.6, Max: 12.4})
		if ra != rb || !reflect.DeepEqual(a.Lons(), b.Lons()) {
			t.Errorf("swapped bounds gave %+v/%v, want %+v/%v", ra, a.Lons(), rb, b.Lons())
		}
	})
}

func TestViewRead(t *testing.T) {
	ds := openTestDataset(t)
	ctx := context.Background()
	t.Run("leveled", func(t *testing.T) {
		v, _ := ds.SelectDate(2023, 1, 2)
		if _, err := v.SubsetLatitude(Range{Min: 0, Max: 1}); err != nil {
			t.Fatal(err)
		}
		d, err := v.Read(ctx, "temperature", 850)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(d.Shape, []int{24, 2, 3}) {
			t.Fatalf("shape = %v", d.Shape)
		}
		// Time index 24 of the archive, level index 1 (850 hPa),
		// latitude index 1 (lat=1), longitude index 0.
		if got, want := d.Get(0, 0, 0), tempValue(24, 1, 1, 0); got != want {
			t.Errorf("element (0,0,0) = %v, want %v", got, want)
		}
	})
	t.Run("surface", func(t *testing.T) {
		v, _ := ds.SelectDate(2023, 1, 1)
		d, err := v.Read(ctx, "2m_temperature", -1)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(d.Shape, []int{24, 4, 3}) {
			t.Fatalf("shape = %v", d.Shape)
		}
		if got, want := d.Get(3, 2, 1), sfcValue(3, 2, 1); got != want {
			t.Errorf("element (3,2,1) = %v, want %v", got, want)
		}
	})
	t.Run("badLevel", func(t *testing.T) {
		v, _ := ds.SelectDate(2023, 1, 1)
		if _, err := v.Read(ctx, "temperature", 123); err == nil {
			t.Error("expected error for level not in the dataset")
		}
	})
}
