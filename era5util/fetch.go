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

package era5util

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Amanpatni211/era5-tool"
)

// FetchConfig configures one fetch run.
type FetchConfig struct {
	// Store is the blob path of the Zarr hierarchy to read.
	Store string
	// Selection chooses the data to fetch.
	Selection era5.Selection
	// OutputDir receives the output NetCDF files.
	OutputDir string
	// Log receives progress information. The standard logger is used
	// when nil.
	Log logrus.FieldLogger
}

// Fetch downloads the selected subset of the archive and writes one
// NetCDF file per (variable, level) pair, returning the paths of the
// files written. Selection steps that fail are logged and skipped so
// a partial failure still produces output; only an unreachable store
// or an unavailable date abort the run.
func Fetch(ctx context.Context, c *FetchConfig) ([]string, error) {
	log := c.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	sel := &c.Selection
	log.Infof("Fetching ERA5 data for %s", sel.Date().Format("2006-01-02"))

	start := time.Now()
	store, err := OpenStore(ctx, c.Store)
	if err != nil {
		return nil, err
	}
	ds, err := era5.Open(ctx, store)
	if err != nil {
		return nil, err
	}
	first, last := ds.TimeRange()
	log.WithFields(logrus.Fields{
		"variables": len(ds.Variables()),
		"from":      first.Format("2006-01-02"),
		"to":        last.Format("2006-01-02"),
		"elapsed":   time.Since(start).Round(time.Millisecond),
	}).Info("Opened ARCO ERA5 dataset")

	v, err := ds.SelectDate(sel.Year, sel.Month, sel.Day)
	if err != nil {
		return nil, err
	}

	vars, fellBack := v.FilterVariables(sel.Variables)
	if fellBack && len(sel.Variables) > 0 {
		log.WithField("using", vars).Warn("None of the requested variables found in dataset")
	} else {
		log.WithField("variables", vars).Info("Selected variables")
	}

	levels, fellBack, hasLevels := v.FilterLevels(sel.Levels)
	switch {
	case !hasLevels:
		log.Info("No pressure level dimension found in dataset")
	case fellBack:
		log.WithField("available", levels).Warn("None of the requested pressure levels found")
	default:
		log.WithField("levels", levels).Info("Selected pressure levels")
	}

	if sel.LatBounds != nil {
		if actual, err := v.SubsetLatitude(*sel.LatBounds); err != nil {
			log.WithError(err).Warn("Latitude subsetting failed; continuing with previous extent")
		} else {
			log.WithFields(logrus.Fields{
				"requested": fmt.Sprintf("%g to %g", sel.LatBounds.Min, sel.LatBounds.Max),
				"used":      fmt.Sprintf("%g to %g", actual.Min, actual.Max),
			}).Info("Applied latitude subsetting")
		}
	}
	if sel.LonBounds != nil {
		if actual, err := v.SubsetLongitude(*sel.LonBounds); err != nil {
			log.WithError(err).Warn("Longitude subsetting failed; continuing with previous extent")
		} else {
			log.WithFields(logrus.Fields{
				"requested": fmt.Sprintf("%g to %g", sel.LonBounds.Min, sel.LonBounds.Max),
				"used":      fmt.Sprintf("%g to %g", actual.Min, actual.Max),
			}).Info("Applied longitude subsetting")
		}
	}

	w := era5.NewWriter(c.OutputDir)
	var saved []string
	var totalBytes int64
	write := func(varName string, level int) {
		path, size, err := w.WriteFile(ctx, v, varName, level)
		if err != nil {
			log.WithError(err).Errorf("Error saving %s", varName)
			return
		}
		saved = append(saved, path)
		totalBytes += size
		log.Infof("Saved %s: %.2f MB", path, float64(size)/(1<<20))
	}
	for _, varName := range vars {
		if ds.HasLevels(varName) {
			for _, level := range v.Levels() {
				write(varName, level)
			}
		} else {
			write(varName, -1)
		}
	}

	log.Infof("Summary: Saved %d files (%.2f MB) to %s",
		len(saved), float64(totalBytes)/(1<<20), c.OutputDir)
	return saved, nil
}
