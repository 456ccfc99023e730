package ncplot

import (
	"math"
	"testing"
)

func TestBandedColorsBands(t *testing.T) {
	cs := ColorScheme{
		Cmap:   "jet-pos",
		Levels: []float64{0, 10, 20, 30},
		Vmin:   0,
		Vmax:   30,
	}
	b, err := NewBandedColors(cs)
	if err != nil {
		t.Fatal(err)
	}
	if b.NumBands() != 3 {
		t.Errorf("got %d bands, want 3", b.NumBands())
	}
	// Band colors should differ from one another across the colormap.
	if b.Band(0) == b.Band(2) {
		t.Error("first and last band have the same color")
	}
}

func TestBandedColorsAt(t *testing.T) {
	cs := ColorScheme{
		Cmap:   "jet-pos",
		Levels: []float64{0, 10, 20, 30},
		Vmin:   0,
		Vmax:   30,
		Extend: ExtendMax,
	}
	b, err := NewBandedColors(cs)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := b.At(math.NaN()); ok {
		t.Error("NaN should not be painted")
	}

	// Interior values map to half-open bands [l[i], l[i+1]).
	if c, _ := b.At(5); c != b.Band(0) {
		t.Errorf("At(5) = %v, want band 0 color %v", c, b.Band(0))
	}
	if c, _ := b.At(10); c != b.Band(1) {
		t.Errorf("At(10) = %v, want band 1 color %v", c, b.Band(1))
	}
	if c, _ := b.At(30); c != b.Band(2) {
		t.Errorf("At(30) = %v, want band 2 color %v", c, b.Band(2))
	}

	// Below range without ExtendMin: clip to the first band.
	if c, _ := b.At(-5); c != b.Band(0) {
		t.Errorf("At(-5) = %v, want band 0 color %v", c, b.Band(0))
	}
	// Above range with ExtendMax: the high limit color.
	_, high := b.Limits()
	if c, _ := b.At(35); c != high {
		t.Errorf("At(35) = %v, want high limit color %v", c, high)
	}
}

func TestBandedColorsExtendBoth(t *testing.T) {
	cs := ColorScheme{
		Cmap:   "optimized",
		Levels: []float64{-10, 0, 10},
		Vmin:   -10,
		Vmax:   10,
		Extend: ExtendBoth,
	}
	b, err := NewBandedColors(cs)
	if err != nil {
		t.Fatal(err)
	}
	low, high := b.Limits()
	if c, _ := b.At(-20); c != low {
		t.Errorf("At(-20) = %v, want low limit color %v", c, low)
	}
	if c, _ := b.At(20); c != high {
		t.Errorf("At(20) = %v, want high limit color %v", c, high)
	}
}

func TestBandedColorsSingleLevel(t *testing.T) {
	cs := ColorScheme{Cmap: "jet", Levels: []float64{4.2}, Vmin: 4.2, Vmax: 4.2}
	b, err := NewBandedColors(cs)
	if err != nil {
		t.Fatal(err)
	}
	if b.NumBands() != 1 {
		t.Fatalf("got %d bands, want 1", b.NumBands())
	}
	if c, ok := b.At(4.2); !ok || c != b.Band(0) {
		t.Errorf("At(4.2) = %v, %v; want the single band color", c, ok)
	}
}

func TestBandedColorsUnknownCmap(t *testing.T) {
	cs := ColorScheme{Cmap: "viridis", Levels: []float64{0, 1}}
	if _, err := NewBandedColors(cs); err == nil {
		t.Error("expected an error for an unknown colormap")
	}
}
