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

package render

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// fileNameRE matches the fetcher's output naming pattern:
// {var}_{level|sfc}_{YYYYMMDD}_{timestamp}.nc
var fileNameRE = regexp.MustCompile(`^(.+)_(\d+|sfc)_(\d{8})_\d{14}\.nc$`)

// FileMeta is display metadata recovered from an output filename.
// Fields are empty when the filename does not follow the fetcher's
// naming pattern.
type FileMeta struct {
	// Variable is the variable name embedded in the filename.
	Variable string
	// Level is "NNN hPa" for pressure-level files and "surface" for
	// single-level files.
	Level string
	// Date is the data date formatted YYYY-MM-DD.
	Date string
}

// ParseFileMeta recovers display metadata from an output file path.
// Files named outside the fetcher's pattern yield a surface-level meta
// with no date.
func ParseFileMeta(path string) FileMeta {
	name := filepath.Base(path)
	m := fileNameRE.FindStringSubmatch(name)
	if m == nil {
		return FileMeta{Level: "surface"}
	}
	meta := FileMeta{Variable: m[1], Level: "surface"}
	if m[2] != "sfc" {
		meta.Level = m[2] + " hPa"
	}
	d := m[3]
	meta.Date = fmt.Sprintf("%s-%s-%s", d[:4], d[4:6], d[6:8])
	return meta
}

// DisplayName converts a variable name to a plot title form,
// "u_component_of_wind" to "U Component Of Wind".
func DisplayName(varName string) string {
	return strings.Title(strings.ReplaceAll(varName, "_", " "))
}
