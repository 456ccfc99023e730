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
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/carto"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
)

// MapPlot renders lat-lon gridded data as an equirectangular map with a
// horizontal colorbar underneath. The data and any border overlay are
// drawn in plain longitude-latitude coordinates.
type MapPlot struct {
	// Width is the figure width.
	Width vg.Length

	// DPI is the image resolution for raster output.
	DPI int

	// Format is the output format, "png" or "pdf".
	Format string

	// Borders is optional overlay linework (e.g. coastlines or state
	// boundaries) in longitude-latitude coordinates.
	Borders []geom.Polygon

	// FontSize is the size of legend and title text.
	FontSize vg.Length

	// Font is the name of the font to use.
	Font string
}

// NewMapPlot returns a MapPlot with default settings.
func NewMapPlot() *MapPlot {
	return &MapPlot{
		Width:    8 * vg.Inch,
		DPI:      150,
		Format:   "png",
		FontSize: 7,
		Font:     "Helvetica",
	}
}

const (
	legendHeight = 0.55 * vg.Inch
	titleHeight  = 0.22 * vg.Inch
)

// Render draws one (lat, lon) data slice using the given color scheme
// and writes the finished figure to w. latEdges and lonEdges bound the
// grid cells in data; title and label annotate the figure and colorbar.
func (p *MapPlot) Render(w io.Writer, data *sparse.DenseArray, latEdges, lonEdges []float64, cs ColorScheme, title, label string) error {
	bands, err := NewBandedColors(cs)
	if err != nil {
		return err
	}
	if len(data.Shape) != 2 || data.Shape[0] != len(latEdges)-1 || data.Shape[1] != len(lonEdges)-1 {
		return fmt.Errorf("ncplot: data shape %v does not match %d x %d grid edges",
			data.Shape, len(latEdges)-1, len(lonEdges)-1)
	}
	if !ascending(latEdges) || !ascending(lonEdges) {
		return fmt.Errorf("ncplot: grid edges must be in increasing order")
	}

	N, S := latEdges[len(latEdges)-1], latEdges[0]
	W, E := lonEdges[0], lonEdges[len(lonEdges)-1]
	mapHeight := p.Width * vg.Length((N-S)/(E-W))
	figHeight := mapHeight + legendHeight + titleHeight

	var dc draw.Canvas
	var img *vgimg.Canvas
	var pdf *vgpdf.Canvas
	switch p.Format {
	case "png":
		img = vgimg.NewWith(vgimg.UseWH(p.Width, figHeight), vgimg.UseDPI(p.DPI))
		dc = draw.New(img)
	case "pdf":
		pdf = vgpdf.New(p.Width, figHeight)
		dc = draw.New(pdf)
	default:
		return fmt.Errorf("ncplot: unknown plot format %q", p.Format)
	}

	font, err := vg.MakeFont(p.Font, p.FontSize)
	if err != nil {
		return fmt.Errorf("ncplot: loading font: %v", err)
	}

	mapCanvas := draw.Crop(dc, 0, 0, legendHeight, -titleHeight)
	m := carto.NewCanvas(N, S, E, W, mapCanvas)

	ny, nx := data.Shape[0], data.Shape[1]
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			fill, ok := bands.At(data.Get(j, i))
			if !ok { // missing cells stay unpainted
				continue
			}
			cell := geom.Polygon{{
				{X: lonEdges[i], Y: latEdges[j]},
				{X: lonEdges[i+1], Y: latEdges[j]},
				{X: lonEdges[i+1], Y: latEdges[j+1]},
				{X: lonEdges[i], Y: latEdges[j+1]},
				{X: lonEdges[i], Y: latEdges[j]},
			}}
			ls := draw.LineStyle{Width: 0.1 * vg.Millimeter, Color: fill}
			if err := m.DrawVector(cell, fill, ls, draw.GlyphStyle{}); err != nil {
				return fmt.Errorf("ncplot: drawing grid cell: %v", err)
			}
		}
	}

	borderStyle := draw.LineStyle{Width: 0.25 * vg.Millimeter, Color: color.Black}
	clear := color.NRGBA{0, 0, 0, 0}
	for _, g := range p.Borders {
		if err := m.DrawVector(g, clear, borderStyle, draw.GlyphStyle{}); err != nil {
			return fmt.Errorf("ncplot: drawing borders: %v", err)
		}
	}

	// Frame around the map.
	frameStyle := draw.LineStyle{Width: 0.5, Color: color.Black}
	mapCanvas.StrokeLines(frameStyle, []vg.Point{
		{X: mapCanvas.Min.X, Y: mapCanvas.Min.Y},
		{X: mapCanvas.Max.X, Y: mapCanvas.Min.Y},
		{X: mapCanvas.Max.X, Y: mapCanvas.Max.Y},
		{X: mapCanvas.Min.X, Y: mapCanvas.Max.Y},
		{X: mapCanvas.Min.X, Y: mapCanvas.Min.Y},
	})

	if title != "" {
		sty := draw.TextStyle{Color: color.Black, Font: font,
			XAlign: draw.XLeft, YAlign: draw.YTop}
		titleCanvas := draw.Crop(dc, 0, 0, figHeight-titleHeight, 0)
		titleCanvas.FillText(sty, vg.Point{X: titleCanvas.Min.X + 2,
			Y: titleCanvas.Max.Y - 2}, title)
	}

	legendCanvas := draw.Crop(dc, 0, 0, 0, -(figHeight - legendHeight))
	p.legend(&legendCanvas, bands, cs, font, label)

	switch p.Format {
	case "png":
		if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
			return fmt.Errorf("ncplot: writing plot: %v", err)
		}
	case "pdf":
		if _, err := pdf.WriteTo(w); err != nil {
			return fmt.Errorf("ncplot: writing plot: %v", err)
		}
	}
	return nil
}

// legend draws a discrete horizontal colorbar with one segment per level
// band, triangular end caps for the extend policy, boundary tick labels,
// and a centered label.
func (p *MapPlot) legend(c *draw.Canvas, bands *BandedColors, cs ColorScheme, font vg.Font, label string) {
	const (
		wPad       = vg.Length(12)
		tickLength = vg.Length(3)
		tickPad    = vg.Length(1)
		labelPad   = vg.Length(2)
	)
	textStyle := draw.TextStyle{Color: color.Black, Font: font}
	arrowWidth := vg.Length(8)

	barLeft := c.Min.X + wPad + arrowWidth
	barRight := c.Max.X - wPad - arrowWidth
	barTop := c.Max.Y - labelPad - textStyle.Height(label) - labelPad
	barBottom := c.Min.Y + tickPad + textStyle.Height("2.0e2") + tickPad + tickLength

	n := bands.NumBands()
	bandWidth := (barRight - barLeft) / vg.Length(n)
	for i := 0; i < n; i++ {
		x0 := barLeft + vg.Length(i)*bandWidth
		x1 := x0 + bandWidth
		c.FillPolygon(bands.Band(i), []vg.Point{
			{X: x0, Y: barBottom}, {X: x1, Y: barBottom},
			{X: x1, Y: barTop}, {X: x0, Y: barTop}, {X: x0, Y: barBottom},
		})
	}

	low, high := bands.Limits()
	barMid := (barBottom + barTop) / 2
	if cs.Extend.Min() {
		c.FillPolygon(low, []vg.Point{
			{X: barLeft, Y: barBottom}, {X: barLeft, Y: barTop},
			{X: barLeft - arrowWidth, Y: barMid}, {X: barLeft, Y: barBottom},
		})
	}
	if cs.Extend.Max() {
		c.FillPolygon(high, []vg.Point{
			{X: barRight, Y: barBottom}, {X: barRight, Y: barTop},
			{X: barRight + arrowWidth, Y: barMid}, {X: barRight, Y: barBottom},
		})
	}

	edgeStyle := draw.LineStyle{Width: 0.5, Color: color.Black}
	c.StrokeLines(edgeStyle, []vg.Point{
		{X: barLeft, Y: barBottom}, {X: barRight, Y: barBottom},
		{X: barRight, Y: barTop}, {X: barLeft, Y: barTop},
		{X: barLeft, Y: barBottom},
	})

	// Tick marks at the level boundaries; labels thinned so they can't
	// collide.
	skip := 1
	for (len(cs.Levels)+skip-1)/skip > 9 {
		skip++
	}
	for i, level := range cs.Levels {
		x := barLeft + vg.Length(i)*bandWidth
		c.StrokeLine2(edgeStyle, x, barBottom, x, barBottom-tickLength)
		if i%skip != 0 {
			continue
		}
		sty := textStyle
		sty.XAlign = draw.XCenter
		sty.YAlign = draw.YTop
		c.FillText(sty, vg.Point{X: x, Y: barBottom - tickLength - tickPad}, formatLevel(level, cs.Vmax))
	}

	sty := textStyle
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YTop
	c.FillText(sty, vg.Point{X: (barLeft + barRight) / 2, Y: c.Max.Y - labelPad}, label)
}

func ascending(e []float64) bool {
	for i := 1; i < len(e); i++ {
		if e[i] <= e[i-1] {
			return false
		}
	}
	return true
}

// formatLevel formats a level boundary for the colorbar.
func formatLevel(val, scale float64) string {
	if scale != 0 && math.Abs(val) < math.Abs(scale)*1e-10 {
		return "0"
	}
	s := fmt.Sprintf("%3.2g", val)
	s = strings.Replace(s, "e+0", "e", -1)
	s = strings.Replace(s, "e-0", "e-", -1)
	return strings.TrimSpace(s)
}

// LoadBorders reads overlay polygons (e.g. coastlines or administrative
// boundaries) from a shapefile and reprojects them to longitude-latitude
// coordinates.
func LoadBorders(filename string) ([]geom.Polygon, error) {
	d, err := shp.NewDecoder(filename)
	if err != nil {
		return nil, fmt.Errorf("ncplot: opening borders shapefile: %v", err)
	}
	defer d.Close()

	src, err := d.SR()
	if err != nil {
		return nil, fmt.Errorf("ncplot: reading borders projection: %v", err)
	}
	dst, err := proj.Parse("+proj=longlat +datum=WGS84 +no_defs")
	if err != nil {
		return nil, fmt.Errorf("ncplot: parsing lon-lat projection: %v", err)
	}
	ct, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("ncplot: creating borders transform: %v", err)
	}

	var borders []geom.Polygon
	for {
		var row struct{ geom.Geom }
		if !d.DecodeRow(&row) {
			break
		}
		g, err := row.Geom.Transform(ct)
		if err != nil {
			return nil, fmt.Errorf("ncplot: reprojecting borders: %v", err)
		}
		if poly, ok := g.(geom.Polygon); ok {
			borders = append(borders, poly)
		}
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("ncplot: reading borders shapefile: %v", err)
	}
	return borders, nil
}
