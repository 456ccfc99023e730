package ncplot

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/ctessum/sparse"
)

func testSlice() (*sparse.DenseArray, []float64, []float64) {
	latEdges := []float64{-45, -15, 15, 45}
	lonEdges := []float64{0, 30, 60, 90, 120}
	data := sparse.ZerosDense(3, 4)
	for j := 0; j < 3; j++ {
		for i := 0; i < 4; i++ {
			data.Set(float64(10*j+i), j, i)
		}
	}
	data.Set(math.NaN(), 1, 2)
	return data, latEdges, lonEdges
}

func TestRenderPNG(t *testing.T) {
	data, latEdges, lonEdges := testSlice()
	cs := ColorScheme{
		Cmap:   "jet-pos",
		Levels: []float64{0, 10, 20, 30},
		Vmin:   0,
		Vmax:   33,
		Extend: ExtendMax,
	}
	p := NewMapPlot()

	var buf bytes.Buffer
	err := p.Render(&buf, data, latEdges, lonEdges, cs,
		"total precipitation at 11-28-2016 06:00Z", "total precipitation [mm]")
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a decodable PNG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		t.Errorf("empty image bounds %v", b)
	}
	// Width is 8 inches at 150 DPI.
	if b.Dx() != 1200 {
		t.Errorf("image width = %d px, want 1200", b.Dx())
	}
}

func TestRenderPDF(t *testing.T) {
	data, latEdges, lonEdges := testSlice()
	cs := ColorScheme{
		Cmap:   "optimized",
		Levels: []float64{-20, 0, 20},
		Vmin:   -32,
		Vmax:   32,
		Extend: ExtendBoth,
	}
	p := NewMapPlot()
	p.Format = "pdf"

	var buf bytes.Buffer
	if err := p.Render(&buf, data, latEdges, lonEdges, cs, "anomaly", "anomaly [K]"); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
}

func TestRenderBadFormat(t *testing.T) {
	data, latEdges, lonEdges := testSlice()
	p := NewMapPlot()
	p.Format = "svg"
	err := p.Render(&bytes.Buffer{}, data, latEdges, lonEdges,
		ColorScheme{Cmap: "jet", Levels: []float64{0, 1}, Vmax: 1}, "", "")
	if err == nil {
		t.Error("expected an error for an unsupported format")
	}
}

func TestRenderShapeMismatch(t *testing.T) {
	data, latEdges, _ := testSlice()
	p := NewMapPlot()
	err := p.Render(&bytes.Buffer{}, data, latEdges, []float64{0, 30},
		ColorScheme{Cmap: "jet", Levels: []float64{0, 1}, Vmax: 1}, "", "")
	if err == nil {
		t.Error("expected an error for mismatched grid edges")
	}
}

func TestRenderDescendingEdges(t *testing.T) {
	data, _, lonEdges := testSlice()
	cs := ColorScheme{Cmap: "jet", Levels: []float64{0, 10, 20}, Vmax: 20}
	p := NewMapPlot()

	err := p.Render(&bytes.Buffer{}, data, []float64{45, 15, -15, -45}, lonEdges, cs, "", "")
	if err == nil {
		t.Error("expected an error for descending latitude edges")
	}
	_, latEdges, _ := testSlice()
	err = p.Render(&bytes.Buffer{}, data, latEdges, []float64{120, 90, 60, 30, 0}, cs, "", "")
	if err == nil {
		t.Error("expected an error for descending longitude edges")
	}
}

func TestFormatLevel(t *testing.T) {
	tests := []struct {
		val, scale float64
		want       string
	}{
		{0, 30, "0"},
		{1e-15, 30, "0"},
		{10, 30, "10"},
		{2.5, 30, "2.5"},
		{-7.5, 30, "-7.5"},
		{31.5, 31.5, "32"},
		{200000, 1e6, "2e5"},
		{-0.00012, 0.001, "-0.00012"},
	}
	for _, test := range tests {
		if got := formatLevel(test.val, test.scale); got != test.want {
			t.Errorf("formatLevel(%g, %g) = %q, want %q", test.val, test.scale, got, test.want)
		}
	}
}
