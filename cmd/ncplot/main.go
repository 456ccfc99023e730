/*
Copyright © 2016 the ncplot authors.
This file is part of ncplot.

ncplot is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ncplot is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ncplot.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command ncplot plots snapshots of the variables in a netCDF file,
// caching colormap settings across runs for consistent color scales.
package main

import (
	"fmt"
	"os"

	"github.com/darothen/plot-all-in-ncfile/ncplotutil"
)

func main() {
	if err := ncplotutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
