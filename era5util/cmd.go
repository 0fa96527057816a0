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

// Package era5util wires the fetch and plot pipelines to their
// command-line interfaces.
package era5util

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Amanpatni211/era5-tool"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// unsetBound marks a latitude or longitude bound flag the user did not
// supply.
var unsetBound = math.NaN()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{FetchRoot.PersistentFlags(), PlotRoot.PersistentFlags()},
		},
		{
			name: "store",
			usage: `
              store specifies the blob path of the Zarr hierarchy to
              read. The default is the public ARCO ERA5 archive.`,
			defaultVal: era5.DefaultStorePath,
			flagsets:   []*pflag.FlagSet{FetchRoot.Flags()},
		},
		{
			name: "year",
			usage: `
              year specifies the year of the data (e.g., 2023).`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{FetchRoot.Flags()},
		},
		{
			name: "month",
			usage: `
              month specifies the month of the data (1-12).`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{FetchRoot.Flags()},
		},
		{
			name: "day",
			usage: `
              day specifies the day of the data (1-31).`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{FetchRoot.Flags()},
		},
		{
			name: "variables",
			usage: `
              variables specifies the variables to fetch. When none of
              the requested variables exist in the archive, the first
              three available variables are fetched instead.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{FetchRoot.Flags()},
		},
		{
			name: "levels",
			usage: `
              levels specifies the pressure levels to fetch, in hPa.
              500 and 850 hPa are used when unset.`,
			defaultVal: []int{},
			flagsets:   []*pflag.FlagSet{FetchRoot.Flags()},
		},
		{
			name: "lat_min",
			usage: `
              lat_min specifies the southern edge of the area of
              interest, in degrees north. Requested bounds resolve to
              the nearest grid coordinate.`,
			defaultVal: unsetBound,
			flagsets:   []*pflag.FlagSet{FetchRoot.Flags()},
		},
		{
			name: "lat_max",
			usage: `
              lat_max specifies the northern edge of the area of
              interest, in degrees north.`,
			defaultVal: unsetBound,
			flagsets:   []*pflag.FlagSet{FetchRoot.Flags()},
		},
		{
			name: "lon_min",
			usage: `
              lon_min specifies the western edge of the area of
              interest, in degrees east (0-360).`,
			defaultVal: unsetBound,
			flagsets:   []*pflag.FlagSet{FetchRoot.Flags()},
		},
		{
			name: "lon_max",
			usage: `
              lon_max specifies the eastern edge of the area of
              interest, in degrees east (0-360).`,
			defaultVal: unsetBound,
			flagsets:   []*pflag.FlagSet{FetchRoot.Flags()},
		},
		{
			name: "output_dir",
			usage: `
              output_dir specifies the directory to save the fetched
              data in.`,
			shorthand:  "o",
			defaultVal: "./data",
			flagsets:   []*pflag.FlagSet{FetchRoot.Flags()},
		},
		{
			name: "style",
			usage: `
              style specifies a TOML file customizing the plot
              colormaps.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{PlotRoot.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("ERA5")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
			case int:
				set.Int(option.name, option.defaultVal.(int), option.usage)
			case []int:
				set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
			case float64:
				set.Float64(option.name, option.defaultVal.(float64), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	FetchRoot.AddCommand(versionCmd("era5fetch"))
	PlotRoot.AddCommand(versionCmd("era5plot"))
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("era5util: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// FetchRoot is the main command of the fetcher.
var FetchRoot = &cobra.Command{
	Use:   "era5fetch",
	Short: "Fetch a daily subset of the ARCO ERA5 archive.",
	Long: `era5fetch reads a public cloud copy of the ERA5 reanalysis and writes
one local NetCDF file per variable and pressure level for one day.

Configuration can be changed with command-line arguments, with a
configuration file (--config), or with environment variables in the
format 'ERA5_var' where 'var' is the name of the option to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selection(Cfg)
		if err != nil {
			return err
		}
		// Selection and save failures are soft: they are logged and
		// the run continues with what it has, finishing with exit
		// status 0.
		if _, err := Fetch(context.Background(), &FetchConfig{
			Store:     Cfg.GetString("store"),
			Selection: *sel,
			OutputDir: Cfg.GetString("output_dir"),
		}); err != nil {
			logrus.WithError(err).Error("Fetch failed")
		}
		return nil
	},
}

// PlotRoot is the main command of the renderer.
var PlotRoot = &cobra.Command{
	Use:   "era5plot <file> [output_dir]",
	Short: "Plot a fetched ERA5 file.",
	Long: `era5plot renders a NetCDF file written by era5fetch as a map PNG,
prints summary statistics and optionally plots a spatial-mean time
series. The file may be local or a gs://, s3://, file:// or HTTP path.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
	SilenceUsage:      true,
	Args:              cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir := "./plots"
		if len(args) > 1 {
			outDir = args[1]
		}
		if err := Plot(context.Background(), &PlotConfig{
			File:      args[0],
			OutputDir: outDir,
			StyleFile: Cfg.GetString("style"),
			Prompt:    os.Stdin,
		}); err != nil {
			logrus.WithError(err).Errorf("Error plotting %s", args[0])
		}
		return nil
	},
}

func versionCmd(use string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  fmt.Sprintf("version prints the version number of this version of %s.", use),
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("%s v%s\n", use, era5.Version)
		},
		DisableAutoGenTag: true,
	}
}

// selection builds the data selection from configuration values.
func selection(cfg *viper.Viper) (*era5.Selection, error) {
	year, month, day := cfg.GetInt("year"), cfg.GetInt("month"), cfg.GetInt("day")
	if year == 0 || month < 1 || month > 12 || day < 1 || day > 31 {
		return nil, fmt.Errorf("era5util: a valid --year, --month and --day are required")
	}
	levels, err := toIntSliceE(cfg.Get("levels"))
	if err != nil {
		return nil, fmt.Errorf("era5util: parsing levels: %v", err)
	}
	sel := &era5.Selection{
		Year:      year,
		Month:     month,
		Day:       day,
		Variables: cfg.GetStringSlice("variables"),
		Levels:    levels,
	}
	if len(sel.Variables) == 0 {
		sel.Variables = nil
	}
	if len(sel.Levels) == 0 {
		sel.Levels = nil
	}
	sel.LatBounds = bounds(cfg.GetFloat64("lat_min"), cfg.GetFloat64("lat_max"))
	sel.LonBounds = bounds(cfg.GetFloat64("lon_min"), cfg.GetFloat64("lon_max"))
	return sel, nil
}

// toIntSliceE converts a configuration value to a slice of integers.
// Values bound to a pflag come back as the flag's bracketed string
// form (e.g. "[500,850]"), which parses as a JSON array.
func toIntSliceE(s interface{}) ([]int, error) {
	switch v := s.(type) {
	case []int:
		return v, nil
	case []interface{}:
		o := make([]int, len(v))
		for i, val := range v {
			o[i] = cast.ToInt(val)
		}
		return o, nil
	}
	var o []int
	str, ok := s.(string)
	if !ok {
		return nil, fmt.Errorf("unable to convert %#v to []int", s)
	}
	if err := json.Unmarshal([]byte(str), &o); err != nil {
		return nil, err
	}
	return o, nil
}

// bounds turns a pair of bound options into a range, or nil when
// either is unset. Reversed bounds are accepted and swapped later.
func bounds(min, max float64) *era5.Range {
	if math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	return &era5.Range{Min: min, Max: max}
}
