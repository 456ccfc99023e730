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

package ncplot

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Dataset provides read-only access to the plottable variables in a
// netCDF (classic format) file. A variable is plottable if it is
// dimensioned (time, lat, lon) or (lat, lon) and is not itself a
// coordinate variable. The dimension names "latitude" and "longitude"
// are accepted as aliases for "lat" and "lon".
type Dataset struct {
	f  *os.File
	cf *cdf.File

	latDim, lonDim, timeDim string

	lat, lon []float64
	cyclic   bool // a wraparound longitude column is added to each slice

	// flipLat and flipLon mark coordinates stored in descending order
	// (e.g. north-to-south latitudes); slices are reversed on read so
	// the rest of the program only sees ascending coordinates.
	flipLat, flipLon bool

	times []time.Time // nil if the file has no decodable time axis
	nt    int
}

// OpenDataset opens the netCDF file at path.
func OpenDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ncplot: opening dataset: %v", err)
	}
	cf, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ncplot: opening dataset %s: %v", path, err)
	}
	d := &Dataset{f: f, cf: cf, nt: 1}

	dims := cf.Header.Dimensions("")
	lengths := cf.Header.Lengths("")
	dimLen := make(map[string]int, len(dims))
	for i, dim := range dims {
		dimLen[dim] = lengths[i]
	}
	// Coerce ['longitude'] -> 'lon', ['latitude'] -> 'lat'.
	for _, dim := range dims {
		switch dim {
		case "lat", "latitude":
			d.latDim = dim
		case "lon", "longitude":
			d.lonDim = dim
		case "time":
			d.timeDim = dim
		}
	}
	if d.latDim == "" || d.lonDim == "" {
		f.Close()
		return nil, fmt.Errorf("ncplot: dataset %s has no lat and lon dimensions", path)
	}

	if d.lat, err = d.coordinate(d.latDim, dimLen[d.latDim]); err != nil {
		f.Close()
		return nil, err
	}
	if d.lon, err = d.coordinate(d.lonDim, dimLen[d.lonDim]); err != nil {
		f.Close()
		return nil, err
	}
	if descending(d.lat) {
		d.flipLat = true
		reverse(d.lat)
	}
	if descending(d.lon) {
		d.flipLon = true
		reverse(d.lon)
	}
	d.cyclic = needsCyclic(d.lon)
	if d.cyclic {
		d.lon = append(d.lon, d.lon[0]+360)
	}

	if d.timeDim != "" {
		d.nt = dimLen[d.timeDim]
		d.times = d.readTimes()
	}
	return d, nil
}

// Close closes the underlying file.
func (d *Dataset) Close() error { return d.f.Close() }

// Vars returns the names of the plottable variables in file order.
func (d *Dataset) Vars() []string {
	var vars []string
	for _, v := range d.cf.Header.Variables() {
		if d.plottable(v) {
			vars = append(vars, v)
		}
	}
	return vars
}

func (d *Dataset) plottable(v string) bool {
	switch v {
	case d.latDim, d.lonDim, d.timeDim:
		return false
	}
	dims := d.cf.Header.Dimensions(v)
	switch len(dims) {
	case 2:
		return dims[0] == d.latDim && dims[1] == d.lonDim
	case 3:
		return dims[0] == d.timeDim && dims[1] == d.latDim && dims[2] == d.lonDim
	}
	return false
}

// NumSteps returns the number of time steps available for variable v:
// the length of the time dimension, or 1 for time-invariant variables.
func (d *Dataset) NumSteps(v string) int {
	dims := d.cf.Header.Dimensions(v)
	if len(dims) == 3 {
		return d.nt
	}
	return 1
}

// Lat and Lon return the coordinate values (Lon including any added
// wraparound point).
func (d *Dataset) Lat() []float64 { return d.lat }
func (d *Dataset) Lon() []float64 { return d.lon }

// LatEdges and LonEdges return the cell edge coordinates bounding each
// grid cell, for rendering.
func (d *Dataset) LatEdges() []float64 {
	e := edges(d.lat)
	for i, v := range e { // latitudes cannot pass the poles
		e[i] = math.Max(-90, math.Min(90, v))
	}
	return e
}

func (d *Dataset) LonEdges() []float64 { return edges(d.lon) }

// Time returns the timestamp for step i and whether the file has a
// decodable time axis.
func (d *Dataset) Time(i int) (time.Time, bool) {
	if d.times == nil || i >= len(d.times) {
		return time.Time{}, false
	}
	return d.times[i], true
}

// Attr returns the named attribute of variable v as a string, or ""
// if it is absent or not text.
func (d *Dataset) Attr(v, name string) string {
	if s, ok := d.cf.Header.GetAttribute(v, name).(string); ok {
		return s
	}
	return ""
}

// GlobalAttrs returns the names of the file's global attributes.
func (d *Dataset) GlobalAttrs() []string { return d.cf.Header.Attributes("") }

// Label builds a colorbar label for variable v from the best metadata
// available: long_name or the variable name, plus level and units.
func (d *Dataset) Label(v string) string {
	label := d.Attr(v, "long_name")
	if label == "" {
		label = v
	}
	if lev := d.Attr(v, "level"); lev != "" {
		label += fmt.Sprintf(" (%s)", lev)
	}
	if units := d.Attr(v, "units"); units != "" {
		label += fmt.Sprintf(" [%s]", units)
	}
	return label
}

// ReadSlice reads one time step of variable v as a (lat, lon) array.
// Fill values become NaN, CF scale_factor/add_offset packing is undone,
// and a wraparound longitude column is appended for global grids.
func (d *Dataset) ReadSlice(v string, step int) (*sparse.DenseArray, error) {
	dims := d.cf.Header.Dimensions(v)
	lengths := d.cf.Header.Lengths(v)
	if len(dims) == 0 {
		return nil, fmt.Errorf("ncplot: variable %v not in file", v)
	}
	var vals []float64
	var err error
	if len(dims) == 3 {
		if step < 0 || step >= d.nt {
			return nil, fmt.Errorf("ncplot: variable %s has no time step %d", v, step)
		}
		nread := lengths[1] * lengths[2]
		start, end := make([]int, 3), make([]int, 3)
		start[0], end[0] = step, step+1
		vals, err = d.read(v, start, end, nread)
	} else {
		vals, err = d.read(v, nil, nil, lengths[0]*lengths[1])
	}
	if err != nil {
		return nil, err
	}

	ny := len(d.lat)
	nx := len(d.lon)
	out := sparse.ZerosDense(ny, nx)
	nxIn := nx
	if d.cyclic {
		nxIn--
	}
	for j := 0; j < ny; j++ {
		jj := j
		if d.flipLat {
			jj = ny - 1 - j
		}
		for i := 0; i < nxIn; i++ {
			ii := i
			if d.flipLon {
				ii = nxIn - 1 - i
			}
			out.Elements[j*nx+i] = vals[jj*nxIn+ii]
		}
		if d.cyclic {
			out.Elements[j*nx+nxIn] = out.Elements[j*nx]
		}
	}
	return out, nil
}

// ReadVar reads every time step of variable v into one flat slice, for
// computing distribution statistics. Fill values become NaN.
func (d *Dataset) ReadVar(v string) ([]float64, error) {
	lengths := d.cf.Header.Lengths(v)
	if len(lengths) == 0 {
		return nil, fmt.Errorf("ncplot: variable %v not in file", v)
	}
	n := 1
	for _, l := range lengths {
		n *= l
	}
	return d.read(v, nil, nil, n)
}

// read reads a range of variable v, converting to float64 and applying
// the CF fill-value and packing conventions.
func (d *Dataset) read(v string, start, end []int, n int) ([]float64, error) {
	r := d.cf.Reader(v, start, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("ncplot: reading variable %s: %v", v, err)
	}
	vals, err := toFloat64(buf)
	if err != nil {
		return nil, fmt.Errorf("ncplot: reading variable %s: %v", v, err)
	}

	fill, hasFill := d.attrNumber(v, "_FillValue")
	missing, hasMissing := d.attrNumber(v, "missing_value")
	scale, hasScale := d.attrNumber(v, "scale_factor")
	offset, hasOffset := d.attrNumber(v, "add_offset")
	if !hasScale {
		scale = 1
	}
	if !hasOffset {
		offset = 0
	}
	for i, val := range vals {
		if hasFill && val == fill || hasMissing && val == missing {
			vals[i] = math.NaN()
			continue
		}
		if hasScale || hasOffset {
			vals[i] = val*scale + offset
		}
	}
	return vals, nil
}

// coordinate reads the coordinate variable for dim, falling back to
// indices if the file doesn't include one.
func (d *Dataset) coordinate(dim string, n int) ([]float64, error) {
	for _, v := range d.cf.Header.Variables() {
		if v != dim {
			continue
		}
		vals, err := d.read(v, nil, nil, n)
		if err != nil {
			return nil, err
		}
		return vals, nil
	}
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = float64(i)
	}
	return vals, nil
}

// readTimes decodes the time coordinate using its CF units attribute
// ("<unit> since <reference>"). It returns nil if the axis cannot be
// decoded; callers then fall back to step indices.
func (d *Dataset) readTimes() []time.Time {
	vals, err := d.coordinate(d.timeDim, d.nt)
	if err != nil {
		return nil
	}
	ref, unit, err := parseTimeUnits(d.Attr(d.timeDim, "units"))
	if err != nil {
		return nil
	}
	times := make([]time.Time, len(vals))
	for i, v := range vals {
		times[i] = ref.Add(time.Duration(v * float64(unit)))
	}
	return times
}

// parseTimeUnits parses a CF-convention time units string such as
// "hours since 2016-11-28 00:00:00".
func parseTimeUnits(units string) (ref time.Time, unit time.Duration, err error) {
	fields := strings.SplitN(units, " since ", 2)
	if len(fields) != 2 {
		return time.Time{}, 0, fmt.Errorf("ncplot: cannot parse time units %q", units)
	}
	switch strings.TrimSpace(fields[0]) {
	case "seconds", "second", "s":
		unit = time.Second
	case "minutes", "minute", "min":
		unit = time.Minute
	case "hours", "hour", "h":
		unit = time.Hour
	case "days", "day", "d":
		unit = 24 * time.Hour
	default:
		return time.Time{}, 0, fmt.Errorf("ncplot: unsupported time unit %q", fields[0])
	}
	refStr := strings.TrimSpace(fields[1])
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		time.RFC3339,
	} {
		if ref, err = time.Parse(layout, refStr); err == nil {
			return ref.UTC(), unit, nil
		}
	}
	return time.Time{}, 0, fmt.Errorf("ncplot: cannot parse time reference %q", refStr)
}

// attrNumber returns the named attribute of v as a float64.
func (d *Dataset) attrNumber(v, name string) (float64, bool) {
	switch a := d.cf.Header.GetAttribute(v, name).(type) {
	case []float64:
		if len(a) > 0 {
			return a[0], true
		}
	case []float32:
		if len(a) > 0 {
			return float64(a[0]), true
		}
	case []int32:
		if len(a) > 0 {
			return float64(a[0]), true
		}
	case []int16:
		if len(a) > 0 {
			return float64(a[0]), true
		}
	case []uint8:
		if len(a) > 0 {
			return float64(a[0]), true
		}
	}
	return 0, false
}

func toFloat64(buf interface{}) ([]float64, error) {
	switch b := buf.(type) {
	case []float64:
		return b, nil
	case []float32:
		vals := make([]float64, len(b))
		for i, v := range b {
			vals[i] = float64(v)
		}
		return vals, nil
	case []int32:
		vals := make([]float64, len(b))
		for i, v := range b {
			vals[i] = float64(v)
		}
		return vals, nil
	case []int16:
		vals := make([]float64, len(b))
		for i, v := range b {
			vals[i] = float64(v)
		}
		return vals, nil
	case []uint8:
		vals := make([]float64, len(b))
		for i, v := range b {
			vals[i] = float64(v)
		}
		return vals, nil
	}
	return nil, fmt.Errorf("unsupported data type %T", buf)
}

// descending reports whether vals run from high to low, as in files
// that store latitudes north-to-south.
func descending(vals []float64) bool {
	return len(vals) >= 2 && vals[len(vals)-1] < vals[0]
}

func reverse(vals []float64) {
	for i, j := 0, len(vals)-1; i < j; i, j = i+1, j-1 {
		vals[i], vals[j] = vals[j], vals[i]
	}
}

// needsCyclic reports whether lon covers the globe but does not include
// a wraparound point, so that plots need the first column repeated at
// lon+360 to avoid a seam.
func needsCyclic(lon []float64) bool {
	n := len(lon)
	if n < 3 {
		return false
	}
	dlon := lon[1] - lon[0]
	if dlon <= 0 {
		return false
	}
	span := lon[n-1] - lon[0]
	return span < 360 && span+dlon >= 360-1e-6
}

// edges converts cell-center coordinates to the n+1 cell edges
// bounding them.
func edges(centers []float64) []float64 {
	n := len(centers)
	e := make([]float64, n+1)
	if n == 1 {
		e[0], e[1] = centers[0]-0.5, centers[0]+0.5
		return e
	}
	for i := 1; i < n; i++ {
		e[i] = (centers[i-1] + centers[i]) / 2
	}
	e[0] = centers[0] - (centers[1]-centers[0])/2
	e[n] = centers[n-1] + (centers[n-1]-centers[n-2])/2
	return e
}
