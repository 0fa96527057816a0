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

// Package era5 selects daily subsets of the ARCO ERA5 reanalysis archive
// and writes them to local NetCDF files. The archive is an analysis-ready,
// cloud-optimized Zarr hierarchy published in a public Google Cloud
// Storage bucket; this package borrows a handle to it for the duration of
// a run and owns no remote state.
package era5

// Version gives the current version of the ERA5 tool.
const Version = "0.2.1"

// DefaultStorePath is the blob location of the ARCO ERA5 analysis-ready
// hierarchy: hourly data on a 0.25° grid with 37 pressure levels.
const DefaultStorePath = "gs://gcp-public-data-arco-era5/ar/full_37-1h-0p25deg-chunk-1.zarr-v3"

// Dimension names used throughout the archive.
const (
	TimeDim      = "time"
	LevelDim     = "level"
	LatitudeDim  = "latitude"
	LongitudeDim = "longitude"
)

// PressureLevelVariables lists the ERA5 variables defined on the 37
// pressure levels.
var PressureLevelVariables = []string{
	"geopotential", "specific_humidity", "temperature", "u_component_of_wind",
	"v_component_of_wind", "fraction_of_cloud_cover", "ozone_mass_mixing_ratio",
	"specific_cloud_ice_water_content", "specific_cloud_liquid_water_content",
	"potential_vorticity", "vertical_velocity",
}

// SurfaceVariables lists the single-level ERA5 variables.
var SurfaceVariables = []string{
	"2m_temperature", "2m_dewpoint_temperature", "10m_u_component_of_wind",
	"10m_v_component_of_wind", "mean_sea_level_pressure", "surface_pressure",
	"total_precipitation", "total_cloud_cover", "sea_surface_temperature",
}

// PressureLevels lists the 37 ERA5 pressure levels in hPa.
var PressureLevels = []int{
	1, 2, 3, 5, 7, 10, 20, 30, 50, 70, 100, 125, 150, 175, 200, 225,
	250, 300, 350, 400, 450, 500, 550, 600, 650, 700, 750, 775, 800,
	825, 850, 875, 900, 925, 950, 975, 1000,
}
