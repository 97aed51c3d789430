package render

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/font"

	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/fonts"
)

// Position is where the table number sits on the page.
type Position string

const (
	TopLeft      Position = "top_left"
	TopCenter    Position = "top_center"
	TopRight     Position = "top_right"
	BottomLeft   Position = "bottom_left"
	BottomCenter Position = "bottom_center"
	BottomRight  Position = "bottom_right"
)

// Positions lists the valid table number positions.
var Positions = []Position{TopLeft, TopCenter, TopRight, BottomLeft, BottomCenter, BottomRight}

// ParsePosition resolves a position name. Unknown names return BottomCenter
// together with an error the caller may log.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Positions {
		if v == p {
			return p, nil
		}
	}
	return BottomCenter, errors.New(errors.ErrCodeInvalidPosition, "unknown table number position %q, using %s", s, BottomCenter)
}

const tableNumberOffset = 5

// TableNumberOptions configures the per-page table number label.
type TableNumberOptions struct {
	Prefix   string
	Start    int
	Position Position
	FontSize float64
}

// Label returns the label for a zero-based page index.
func (o TableNumberOptions) Label(pageIndex int) string {
	n := strconv.Itoa(o.Start + pageIndex)
	if o.Prefix == "" {
		return n
	}
	return o.Prefix + " " + n
}

// Overlay adds page annotations after all items have been placed.
type Overlay struct {
	Fonts        fonts.Resolver
	Margin       int
	ScaleBar     *ScaleBarOptions
	TableNumber  *TableNumberOptions
	MarginBorder bool
}

// Apply draws the configured annotations on both renderings of p.
func (o *Overlay) Apply(p *Page) error {
	if o.MarginBorder && o.Margin > 0 {
		o.border(p)
	}
	if o.ScaleBar != nil && o.ScaleBar.Target > 0 {
		if err := o.scaleBar(p); err != nil {
			return err
		}
	}
	if o.TableNumber != nil {
		if err := o.tableNumber(p); err != nil {
			return err
		}
	}
	return nil
}

func (o *Overlay) border(p *Page) {
	outer := image.Rect(0, 0, p.Width, p.Height)
	inner := image.Rect(o.Margin, o.Margin, p.Width-o.Margin, p.Height-o.Margin)

	strokeRect(p, outer, color.RGBA{R: 211, G: 211, B: 211, A: 255}, 1)
	strokeRect(p, inner, color.RGBA{R: 128, G: 128, B: 128, A: 255}, 2)

	p.Add(
		RectElement{Rect: outer, Stroke: "#d3d3d3", StrokeWidth: 1},
		RectElement{Rect: inner, Stroke: "#808080", StrokeWidth: 2},
	)
}

func (o *Overlay) scaleBar(p *Page) error {
	size := o.ScaleBar.FontSize
	if size <= 0 {
		size = ScaleBarFontSize
	}
	face, err := o.Fonts.Resolve(size)
	if err != nil {
		return err
	}
	ascent, descent := faceExtent(face)
	spec := NewScaleBarSpec(*o.ScaleBar, p.Width, p.Height, o.Margin, ascent+descent)

	dc := p.Raster
	for _, s := range spec.Segments {
		r := s.Rect
		dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
		dc.SetColor(s.Fill)
		dc.FillPreserve()
		dc.SetRGB(0, 0, 0)
		dc.SetLineWidth(1)
		dc.Stroke()

		fill := "#000000"
		if s.Fill == color.White {
			fill = "#ffffff"
		}
		p.Add(RectElement{Rect: r, Fill: fill, Stroke: "#000000", StrokeWidth: 1})
	}

	dc.SetFontFace(face)
	dc.SetRGB(0, 0, 0)
	baseline := float64(spec.LabelTop + ascent)
	startW, _ := dc.MeasureString(spec.LabelStart)
	endW, _ := dc.MeasureString(spec.LabelEnd)
	x0 := float64(spec.Origin.X)
	x1 := float64(spec.Origin.X + spec.Length)
	dc.DrawStringAnchored(spec.LabelStart, x0, baseline, 0, 0)
	dc.DrawStringAnchored(spec.LabelEnd, x1, baseline, 1, 0)

	lh := ascent + descent
	p.Add(
		TextElement{
			Box:        image.Rect(spec.Origin.X, spec.LabelTop, spec.Origin.X+int(math.Ceil(startW)), spec.LabelTop+lh),
			Lines:      []string{spec.LabelStart},
			FontSize:   size,
			LineStep:   float64(lh),
			Ascent:     float64(ascent),
			Align:      AlignStart,
			Annotation: true,
		},
		TextElement{
			Box:        image.Rect(int(x1)-int(math.Ceil(endW)), spec.LabelTop, int(x1), spec.LabelTop+lh),
			Lines:      []string{spec.LabelEnd},
			FontSize:   size,
			LineStep:   float64(lh),
			Ascent:     float64(ascent),
			Align:      AlignEnd,
			Annotation: true,
		},
	)
	return nil
}

func (o *Overlay) tableNumber(p *Page) error {
	t := o.TableNumber
	face, err := o.Fonts.Resolve(t.FontSize)
	if err != nil {
		return err
	}
	label := t.Label(p.Index)

	dc := p.Raster
	dc.SetFontFace(face)
	w, _ := dc.MeasureString(label)
	tw := int(math.Ceil(w))
	ascent, descent := faceExtent(face)
	th := ascent + descent

	r := tableNumberRect(t.Position, p.Width, p.Height, o.Margin, tw, th)
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(label, float64(r.Min.X), float64(r.Min.Y+ascent), 0, 0)

	p.Add(TextElement{
		Box:        r,
		Lines:      []string{label},
		FontSize:   t.FontSize,
		LineStep:   float64(th),
		Ascent:     float64(ascent),
		Align:      AlignStart,
		Bold:       true,
		Annotation: true,
	})
	return nil
}

// tableNumberRect returns the label box for a position. Unknown positions
// fall back to bottom center.
func tableNumberRect(pos Position, pageW, pageH, margin, tw, th int) image.Rectangle {
	off := tableNumberOffset
	left := margin + off
	center := (pageW - tw) / 2
	right := pageW - margin - tw - off
	top := margin + off
	bottom := pageH - margin - th - off

	var x, y int
	switch pos {
	case TopLeft:
		x, y = left, top
	case TopCenter:
		x, y = center, top
	case TopRight:
		x, y = right, top
	case BottomLeft:
		x, y = left, bottom
	case BottomRight:
		x, y = right, bottom
	default:
		x, y = center, bottom
	}
	return image.Rect(x, y, x+tw, y+th)
}

func strokeRect(p *Page, r image.Rectangle, c color.Color, width float64) {
	dc := p.Raster
	inset := width / 2
	dc.DrawRectangle(float64(r.Min.X)+inset, float64(r.Min.Y)+inset, float64(r.Dx())-width, float64(r.Dy())-width)
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.Stroke()
}

func faceExtent(face font.Face) (ascent, descent int) {
	m := face.Metrics()
	return m.Ascent.Ceil(), m.Descent.Ceil()
}
