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
	"bufio"
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Amanpatni211/era5-tool/render"
)

// PlotConfig configures one plot run.
type PlotConfig struct {
	// File is the NetCDF file to plot. Blob paths (gs://, s3://,
	// file://) and HTTP URLs are downloaded first.
	File string
	// OutputDir receives the PNG files.
	OutputDir string
	// StyleFile optionally points to a TOML file customizing the
	// colormaps.
	StyleFile string
	// Prompt is read for the y/n answer to the time series question.
	// The question is skipped when nil.
	Prompt io.Reader
	// Log receives progress information and statistics. The standard
	// logger is used when nil.
	Log logrus.FieldLogger
}

// Plot renders a saved ERA5 file as a map PNG, logs summary statistics
// and, when the file holds more than one timestep and the user
// confirms, a spatial-mean time series PNG.
func Plot(ctx context.Context, c *PlotConfig) error {
	log := c.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	local := maybeDownload(ctx, c.File, func(msg string) { log.Warn(msg) })
	log.Infof("Loading %s", local)
	f, err := render.Load(local)
	if err != nil {
		return err
	}

	var style *render.Style
	if c.StyleFile != "" {
		if style, err = render.LoadStyle(c.StyleFile); err != nil {
			return err
		}
	}

	meta := render.ParseFileMeta(local)
	stem := strings.TrimSuffix(filepath.Base(local), ".nc")
	if len(f.Times) > 1 {
		log.Infof("Multiple timesteps found (%d), plotting the first one", len(f.Times))
	}
	png, err := render.MapPlot(f, meta, style, c.OutputDir, stem)
	if err != nil {
		return err
	}
	log.Infof("Plot saved to %s", png)

	sum := f.Stats()
	first, last := f.TimeRange()
	latMin, latMax := f.LatRange()
	lonMin, lonMax := f.LonRange()
	log.WithFields(logrus.Fields{
		"shape":  f.Data.Shape,
		"min":    sum.Min,
		"max":    sum.Max,
		"mean":   sum.Mean,
		"time":   first.Format("2006-01-02 15:04:05") + " to " + last.Format("2006-01-02 15:04:05"),
		"latMin": latMin,
		"latMax": latMax,
		"lonMin": lonMin,
		"lonMax": lonMax,
	}).Infof("Statistics for %s", f.Name)

	if len(f.Times) > 1 && c.Prompt != nil && confirm(c.Prompt, log) {
		ts, err := render.TimeSeriesPlot(f, meta, c.OutputDir)
		if err != nil {
			return err
		}
		log.Infof("Time series plot saved to %s", ts)
	}
	return nil
}

// confirm asks the time series question and reads a y/n answer.
func confirm(in io.Reader, log logrus.FieldLogger) bool {
	log.Info("Would you like to see a time series plot? (y/n)")
	s := bufio.NewScanner(in)
	if !s.Scan() {
		return false
	}
	return strings.TrimSpace(strings.ToLower(s.Text())) == "y"
}
