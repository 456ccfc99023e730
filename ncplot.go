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

// Package ncplot renders geographic snapshot plots of the variables in a
// netCDF file. To help produce consistent plot formats across runs, the
// colormap settings chosen for each variable are cached in a "colorfile"
// that is saved next to the dataset being plotted and consulted again the
// next time the same dataset is plotted.
package ncplot

import "fmt"

// Version gives the version number of this version of ncplot.
const Version = "1.2.0"

// Extend specifies how values outside a ColorScheme's level range are
// rendered: clipped to the outermost color bands, or painted with the
// colormap's out-of-range limit colors.
type Extend int

const (
	// ExtendNeither clips out-of-range values to the outermost level bands.
	ExtendNeither Extend = 0
	// ExtendMin paints values below the lowest level with the low limit color.
	ExtendMin Extend = 1
	// ExtendMax paints values above the highest level with the high limit color.
	ExtendMax Extend = 2
	// ExtendBoth paints out-of-range values on both ends with limit colors.
	ExtendBoth Extend = 3
)

// Min reports whether values below the lowest level get the limit color.
func (e Extend) Min() bool { return e&ExtendMin != 0 }

// Max reports whether values above the highest level get the limit color.
func (e Extend) Max() bool { return e&ExtendMax != 0 }

func (e Extend) String() string {
	switch e {
	case ExtendNeither:
		return "neither"
	case ExtendMin:
		return "min"
	case ExtendMax:
		return "max"
	case ExtendBoth:
		return "both"
	}
	return fmt.Sprintf("Extend(%d)", int(e))
}

// ColorScheme holds the colormap settings used to render one variable.
// It is a plain serializable record; the renderer reconstructs the
// colormap and normalization objects it parameterizes at render time.
type ColorScheme struct {
	// Cmap names the colormap; it must be a key of Colorlists.
	Cmap string

	// Levels are the boundaries used for discrete color banding.
	// They must be strictly increasing and lie within [Vmin, Vmax].
	Levels []float64

	// Vmin and Vmax are the minimum and maximum display values.
	Vmin, Vmax float64

	// Extend specifies how out-of-range values are rendered.
	Extend Extend
}

// Check returns an error if the scheme's invariants do not hold.
func (cs *ColorScheme) Check() error {
	if _, ok := Colorlists[cs.Cmap]; !ok {
		return fmt.Errorf("ncplot: unknown colormap %q", cs.Cmap)
	}
	if len(cs.Levels) == 0 {
		return fmt.Errorf("ncplot: color scheme has no levels")
	}
	if cs.Vmin > cs.Vmax {
		return fmt.Errorf("ncplot: vmin %g > vmax %g", cs.Vmin, cs.Vmax)
	}
	for i, l := range cs.Levels {
		if i > 0 && l <= cs.Levels[i-1] {
			return fmt.Errorf("ncplot: levels are not strictly increasing at index %d", i)
		}
		if l < cs.Vmin || l > cs.Vmax {
			return fmt.Errorf("ncplot: level %g is outside [%g, %g]", l, cs.Vmin, cs.Vmax)
		}
	}
	return nil
}
