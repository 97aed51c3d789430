package render

import (
	"image"
	"image/color"
	"math"
	"strconv"
)

// Scale bar geometry.
const (
	ScaleBarHeight   = 15
	ScaleBarOffset   = 10
	ScaleBarFontSize = 12
	scaleLabelGap    = 2
)

// ScaleBarOptions configures the scale bar drawn on every page.
type ScaleBarOptions struct {
	Target    float64 // length represented, in Unit
	PxPerUnit float64 // pixels per Unit at scale 1
	Scale     float64 // final image scale factor
	Unit      string
	FontSize  float64
}

// Segment is one alternating block of the bar.
type Segment struct {
	Rect image.Rectangle
	Fill color.Color
}

// ScaleBarSpec is the resolved scale bar. Raster and vector output are both
// drawn from it.
type ScaleBarSpec struct {
	Origin     image.Point // top-left of the bar
	Length     int
	BarHeight  int
	Segments   []Segment
	LabelStart string
	LabelEnd   string
	LabelTop   int // top of the label row
	FontSize   float64
}

// Length returns the bar length in pixels for the options.
func (o ScaleBarOptions) Length() int {
	return int(math.Round(o.Target * o.PxPerUnit * o.Scale))
}

// NewScaleBarSpec lays out a scale bar anchored bottom-right inside the
// margin. labelH is the height of the label row.
func NewScaleBarSpec(o ScaleBarOptions, pageW, pageH, margin, labelH int) ScaleBarSpec {
	length := max(1, o.Length())
	size := o.FontSize
	if size <= 0 {
		size = ScaleBarFontSize
	}

	blockH := ScaleBarHeight + scaleLabelGap + labelH
	origin := image.Pt(pageW-margin-ScaleBarOffset-length, pageH-margin-ScaleBarOffset-blockH)

	n := max(1, int(o.Target))
	segW := float64(length) / float64(n)
	segs := make([]Segment, n)
	for i := range segs {
		x0 := origin.X + int(math.Round(float64(i)*segW))
		x1 := origin.X + int(math.Round(float64(i+1)*segW))
		fill := color.Color(color.Black)
		if i%2 == 1 {
			fill = color.White
		}
		segs[i] = Segment{Rect: image.Rect(x0, origin.Y, x1, origin.Y+ScaleBarHeight), Fill: fill}
	}

	return ScaleBarSpec{
		Origin:     origin,
		Length:     length,
		BarHeight:  ScaleBarHeight,
		Segments:   segs,
		LabelStart: "0",
		LabelEnd:   strconv.FormatFloat(o.Target, 'f', -1, 64) + " " + o.Unit,
		LabelTop:   origin.Y + ScaleBarHeight + scaleLabelGap,
		FontSize:   size,
	}
}
