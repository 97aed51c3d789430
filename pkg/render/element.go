package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"math"
	"strconv"

	"github.com/matzehuels/tavola/pkg/fonts"
)

// Layer is an SVG group elements are written into. Layers keep images,
// caption text and annotations separately selectable in vector editors.
type Layer int

const (
	LayerImages Layer = iota
	LayerCaptions
	LayerAnnotations
)

var layerNames = [...]string{"images", "captions", "annotations"}

func (l Layer) String() string {
	if int(l) < len(layerNames) {
		return layerNames[l]
	}
	return "layer" + strconv.Itoa(int(l))
}

// Element is one vector primitive on a page. The set of element kinds is
// closed: ImageElement, TextElement, RectElement and LineElement.
type Element interface {
	Layer() Layer
	Bounds() image.Rectangle
	writeSVG(buf *bytes.Buffer, id int)
}

// Asset is an image file referenced by an ImageElement. Key is the relative
// path written to the href and to the export archive.
type Asset struct {
	Key   string
	Image image.Image
}

// ImageElement references an external image file.
type ImageElement struct {
	Rect image.Rectangle
	Href string
	Name string // source filename, kept as data-name for editors
}

func (e ImageElement) Layer() Layer            { return LayerImages }
func (e ImageElement) Bounds() image.Rectangle { return e.Rect }

func (e ImageElement) writeSVG(buf *bytes.Buffer, id int) {
	href := escapeXML(e.Href)
	fmt.Fprintf(buf, `    <image id="image-%d" data-name="%s" x="%d" y="%d" width="%d" height="%d" href="%s" xlink:href="%s" preserveAspectRatio="none"/>`+"\n",
		id, escapeXML(e.Name), e.Rect.Min.X, e.Rect.Min.Y, e.Rect.Dx(), e.Rect.Dy(), href, href)
}

// Align is the horizontal alignment of a text block.
type Align int

const (
	AlignMiddle Align = iota
	AlignStart
	AlignEnd
)

func (a Align) anchor() string {
	switch a {
	case AlignStart:
		return "start"
	case AlignEnd:
		return "end"
	}
	return "middle"
}

// TextElement is a block of lines. Box is the measured block; lines are
// aligned within it and the first baseline sits Ascent below Box.Min.Y.
type TextElement struct {
	Box        image.Rectangle
	Lines      []string
	FontSize   float64
	LineStep   float64
	Ascent     float64
	Align      Align
	BoldFirst  bool
	Bold       bool
	Annotation bool // annotations layer instead of captions
}

func (e TextElement) Layer() Layer {
	if e.Annotation {
		return LayerAnnotations
	}
	return LayerCaptions
}

func (e TextElement) Bounds() image.Rectangle { return e.Box }

// Baseline returns the baseline y of line i.
func (e TextElement) Baseline(i int) float64 {
	return float64(e.Box.Min.Y) + e.Ascent + float64(i)*e.LineStep
}

func (e TextElement) anchorX() float64 {
	switch e.Align {
	case AlignStart:
		return float64(e.Box.Min.X)
	case AlignEnd:
		return float64(e.Box.Max.X)
	}
	return float64(e.Box.Min.X+e.Box.Max.X) / 2
}

func (e TextElement) writeSVG(buf *bytes.Buffer, id int) {
	x := e.anchorX()
	weight := "normal"
	if e.Bold {
		weight = "bold"
	}
	fmt.Fprintf(buf, `    <text id="text-%d" x="%s" y="%s" font-family="%s" font-size="%s" font-weight="%s" text-anchor="%s" fill="#000000" xml:space="preserve">`,
		id, num(x), num(e.Baseline(0)), fonts.FontFamily, num(e.FontSize), weight, e.Align.anchor())
	for i, line := range e.Lines {
		lw := ""
		if i == 0 && e.BoldFirst && !e.Bold {
			lw = ` font-weight="bold"`
		}
		fmt.Fprintf(buf, `<tspan x="%s" y="%s"%s>%s</tspan>`, num(x), num(e.Baseline(i)), lw, escapeXML(line))
	}
	buf.WriteString("</text>\n")
}

// RectElement is a filled or stroked rectangle on the annotations layer.
type RectElement struct {
	Rect        image.Rectangle
	Fill        string // "none" when empty
	Stroke      string
	StrokeWidth float64
}

func (e RectElement) Layer() Layer            { return LayerAnnotations }
func (e RectElement) Bounds() image.Rectangle { return e.Rect }

func (e RectElement) writeSVG(buf *bytes.Buffer, id int) {
	fill := e.Fill
	if fill == "" {
		fill = "none"
	}
	stroke := e.Stroke
	if stroke == "" {
		stroke = "none"
	}
	fmt.Fprintf(buf, `    <rect id="rect-%d" x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
		id, e.Rect.Min.X, e.Rect.Min.Y, e.Rect.Dx(), e.Rect.Dy(), fill, stroke, num(e.StrokeWidth))
}

// LineElement is a straight stroke on the annotations layer.
type LineElement struct {
	From, To image.Point
	Stroke   string
	Width    float64
}

func (e LineElement) Layer() Layer { return LayerAnnotations }

func (e LineElement) Bounds() image.Rectangle {
	return image.Rectangle{Min: e.From, Max: e.To}.Canon()
}

func (e LineElement) writeSVG(buf *bytes.Buffer, id int) {
	fmt.Fprintf(buf, `    <line id="line-%d" x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="%s"/>`+"\n",
		id, e.From.X, e.From.Y, e.To.X, e.To.Y, e.Stroke, num(e.Width))
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}
