package ncplot

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/ctessum/geom/carto"
)

// Colorlists maps the colormap identifiers that may appear in a
// ColorScheme to the color schemes they are reconstructed from.
var Colorlists = map[string]carto.Colorlist{
	"optimized":      carto.Optimized,
	"optimized-grey": carto.OptimizedGrey,
	"jet":            carto.Jet,
	"jet-pos":        carto.JetPosOnly,
}

// Default colormap identifiers for inferred schemes.
const (
	DefaultDiverging  = "optimized"
	DefaultSequential = "jet-pos"
)

// BandedColors is the renderer-side reconstruction of a ColorScheme: one
// color per level band, plus limit colors for values the extend policy
// places outside the bands.
type BandedColors struct {
	levels    []float64
	colors    []color.NRGBA
	low, high color.NRGBA
	extend    Extend
}

// NewBandedColors reconstructs the discrete band colors described by cs.
func NewBandedColors(cs ColorScheme) (*BandedColors, error) {
	cl, ok := Colorlists[cs.Cmap]
	if !ok {
		return nil, fmt.Errorf("ncplot: unknown colormap %q", cs.Cmap)
	}
	if len(cs.Levels) == 0 {
		return nil, fmt.Errorf("ncplot: color scheme has no levels")
	}

	// Normalize level midpoints onto the colorlist domain the same way
	// carto normalizes values before interpolating: dividing by the
	// largest absolute display value maps a diverging range onto [-1, 1]
	// with zero at the neutral color.
	linabsmax := math.Max(math.Abs(cs.Vmin), math.Abs(cs.Vmax))
	if linabsmax == 0 {
		linabsmax = 1
	}

	b := &BandedColors{
		levels: cs.Levels,
		low:    cl.LowLimit,
		high:   cl.HighLimit,
		extend: cs.Extend,
	}
	if len(cs.Levels) == 1 {
		b.colors = []color.NRGBA{sampleColorlist(cl, cs.Levels[0]/linabsmax)}
		return b, nil
	}
	b.colors = make([]color.NRGBA, len(cs.Levels)-1)
	for i := range b.colors {
		mid := (cs.Levels[i] + cs.Levels[i+1]) / 2
		b.colors[i] = sampleColorlist(cl, mid/linabsmax)
	}
	return b, nil
}

// NumBands returns the number of discrete color bands.
func (b *BandedColors) NumBands() int { return len(b.colors) }

// Band returns the color for band i.
func (b *BandedColors) Band(i int) color.NRGBA { return b.colors[i] }

// Limits returns the out-of-range limit colors.
func (b *BandedColors) Limits() (low, high color.NRGBA) { return b.low, b.high }

// At returns the color for value v. ok is false for NaN values, which
// are not painted.
func (b *BandedColors) At(v float64) (c color.NRGBA, ok bool) {
	if math.IsNaN(v) {
		return color.NRGBA{}, false
	}
	n := len(b.levels)
	switch {
	case v < b.levels[0]:
		if b.extend.Min() {
			return b.low, true
		}
		return b.colors[0], true
	case v > b.levels[n-1]:
		if b.extend.Max() {
			return b.high, true
		}
		return b.colors[len(b.colors)-1], true
	}
	if len(b.colors) == 1 {
		return b.colors[0], true
	}
	// levels[i-1] <= v < levels[i]
	i := sort.SearchFloat64s(b.levels, v)
	if i < len(b.levels) && b.levels[i] == v {
		i++
	}
	if i < 1 {
		i = 1
	}
	if i > len(b.colors) {
		i = len(b.colors)
	}
	return b.colors[i-1], true
}

// sampleColorlist linearly interpolates cl at position x, clamping x to
// the colorlist's domain.
func sampleColorlist(cl carto.Colorlist, x float64) color.NRGBA {
	n := len(cl.Val)
	if x <= cl.Val[0] {
		return color.NRGBA{roundColor(cl.R[0]), roundColor(cl.G[0]), roundColor(cl.B[0]), 255}
	}
	if x >= cl.Val[n-1] {
		return color.NRGBA{roundColor(cl.R[n-1]), roundColor(cl.G[n-1]), roundColor(cl.B[n-1]), 255}
	}
	i := sort.SearchFloat64s(cl.Val, x)
	f := (x - cl.Val[i-1]) / (cl.Val[i] - cl.Val[i-1])
	return color.NRGBA{
		R: roundColor(cl.R[i-1] + (cl.R[i]-cl.R[i-1])*f),
		G: roundColor(cl.G[i-1] + (cl.G[i]-cl.G[i-1])*f),
		B: roundColor(cl.B[i-1] + (cl.B[i]-cl.B[i-1])*f),
		A: 255,
	}
}

func roundColor(x float64) uint8 {
	return uint8(x + 0.5)
}
