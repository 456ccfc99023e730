package ncplot

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// A Resolver chooses the ColorScheme used to render a variable. The
// resolver consults the store first, so that a variable keeps the color
// scale it was given on a previous run even if its data have changed.
type Resolver interface {
	// Resolve returns the scheme cached for name in store if there is one;
	// otherwise it infers a scheme from data, caches it, and returns it.
	// Missing values in data must be represented as NaN.
	Resolve(data []float64, name string, store *Store) ColorScheme
}

// CmapResolver infers colormap settings from the distribution of a
// variable's data: round-number level boundaries spanning the data range,
// a diverging colormap when the range straddles zero, and an extend
// policy covering whatever the levels leave out.
type CmapResolver struct {
	// NumLevels is the target number of level boundaries. The actual
	// count depends on where round-number steps fall within the data
	// range.
	NumLevels int

	// Robust, if true, bases the display range on the 2nd and 98th
	// percentiles of the data rather than the extremes, so a handful of
	// outliers cannot wash out the color scale.
	Robust bool

	// Diverging and Sequential name the colormaps used for data that do
	// and do not straddle zero.
	Diverging, Sequential string
}

// NewCmapResolver returns a resolver with the default settings.
func NewCmapResolver() *CmapResolver {
	return &CmapResolver{
		NumLevels:  21,
		Robust:     false,
		Diverging:  DefaultDiverging,
		Sequential: DefaultSequential,
	}
}

// Resolve implements the Resolver interface.
func (r *CmapResolver) Resolve(data []float64, name string, store *Store) ColorScheme {
	if cs, ok := store.Get(name); ok {
		return cs
	}
	cs := r.infer(data)
	store.Put(name, cs)
	return cs
}

func (r *CmapResolver) infer(data []float64) ColorScheme {
	dataMin, dataMax, ok := minMax(data)
	if !ok { // all values missing
		return ColorScheme{Cmap: r.Sequential, Levels: []float64{0}}
	}

	vmin, vmax := dataMin, dataMax
	if r.Robust {
		vmin, vmax = percentileBounds(data)
	}
	if vmin == vmax { // constant-valued data
		return ColorScheme{
			Cmap:   r.Sequential,
			Levels: []float64{vmin},
			Vmin:   vmin,
			Vmax:   vmax,
		}
	}

	cs := ColorScheme{Cmap: r.Sequential, Vmin: vmin, Vmax: vmax}
	if vmin < 0 && vmax > 0 {
		// Diverging data get levels symmetric about zero so that the
		// colormap's neutral point lands on zero.
		vlim := math.Max(-vmin, vmax)
		cs.Cmap = r.Diverging
		cs.Vmin, cs.Vmax = -vlim, vlim
	}
	cs.Levels = levelSequence(cs.Vmin, cs.Vmax, r.NumLevels)

	if dataMin < cs.Levels[0] {
		cs.Extend |= ExtendMin
	}
	if dataMax > cs.Levels[len(cs.Levels)-1] {
		cs.Extend |= ExtendMax
	}
	return cs
}

// levelSequence returns strictly increasing round-number level boundaries
// within [vmin, vmax], targeting n boundaries.
func levelSequence(vmin, vmax float64, n int) []float64 {
	if n < 2 {
		n = 2
	}
	step := niceStep((vmax - vmin) / float64(n-1))
	const eps = 1e-10
	k0 := int(math.Ceil(vmin/step - eps))
	k1 := int(math.Floor(vmax/step + eps))
	if k1 < k0 { // range too narrow for a round step; use the exact bounds
		return []float64{vmin, vmax}
	}
	levels := make([]float64, 0, k1-k0+1)
	for k := k0; k <= k1; k++ {
		levels = append(levels, float64(k)*step)
	}
	if len(levels) < 2 {
		return []float64{vmin, vmax}
	}
	return levels
}

// niceStep rounds raw up to the nearest "nice" step size
// (1, 2, 2.5, or 5 times a power of ten).
func niceStep(raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 1
	}
	pow := math.Pow(10, math.Floor(math.Log10(raw)))
	switch f := raw / pow; {
	case f <= 1:
		return pow
	case f <= 2:
		return 2 * pow
	case f <= 2.5:
		return 2.5 * pow
	case f <= 5:
		return 5 * pow
	}
	return 10 * pow
}

// minMax returns the smallest and largest non-NaN values in data.
// ok is false if there are none.
func minMax(data []float64) (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		ok = true
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if !ok {
		return 0, 0, false
	}
	return min, max, true
}

// percentileBounds returns the 2nd and 98th percentiles of the non-NaN
// values in data.
func percentileBounds(data []float64) (lo, hi float64) {
	vals := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	sort.Float64s(vals)
	lo = stat.Quantile(0.02, stat.Empirical, vals, nil)
	hi = stat.Quantile(0.98, stat.Empirical, vals, nil)
	return lo, hi
}
