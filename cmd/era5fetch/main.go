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

// Command era5fetch fetches daily subsets of the ARCO ERA5 reanalysis
// archive and saves them as local NetCDF files.
package main

import (
	"fmt"
	"os"

	"github.com/Amanpatni211/era5-tool/era5util"
)

func main() {
	if err := era5util.FetchRoot.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
