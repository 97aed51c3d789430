package render

import (
	"fmt"
	"image"
	"math"

	"github.com/matzehuels/tavola/pkg/catalog"
	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/fonts"
)

// Placement is an item positioned on a page. Rect is authoritative for both
// renderings.
type Placement struct {
	Item catalog.Item
	Page int
	Rect image.Rectangle
}

// DividerSpec describes a horizontal group divider. The line is centered on
// Y; Label, when set, is drawn above it.
type DividerSpec struct {
	Y         int
	X0, X1    int
	Thickness int
	Label     string
	FontSize  float64
}

// DefaultDividerFontSize is used for group headers when DividerSpec leaves
// FontSize unset.
const DefaultDividerFontSize = 14

// Book collects the pages of one run and is the only place placements turn
// into pixels and vector elements. Every stamp writes the raster and the
// vector side from the same rectangle, so the two renderings cannot drift.
type Book struct {
	Size   Size
	Margin int
	Fonts  fonts.Resolver
	Pages  []*Page

	assets int
}

// NewBook creates an empty book of pages sized s.
func NewBook(s Size, margin int, fr fonts.Resolver) *Book {
	return &Book{Size: s, Margin: margin, Fonts: fr}
}

// NewPage appends a blank page and returns its index.
func (b *Book) NewPage() int {
	idx := len(b.Pages)
	b.Pages = append(b.Pages, NewPage(idx, b.Size.Width, b.Size.Height, b.Margin))
	return idx
}

// Stamp renders one placement. An item whose size differs from Rect is
// resized first so raster pixels and vector geometry agree.
func (b *Book) Stamp(p Placement) error {
	page, err := b.page(p.Page)
	if err != nil {
		return err
	}
	if p.Rect.Empty() {
		return errors.New(errors.ErrCodeInternal, "empty placement rectangle for %s", p.Item.Name)
	}

	it := p.Item
	if it.Size() != p.Rect.Size() {
		it = it.Resized(p.Rect.Dx(), p.Rect.Dy())
	}

	page.Raster.DrawImage(it.Image, p.Rect.Min.X, p.Rect.Min.Y)

	if c := it.Caption; c != nil {
		imgRect := image.Rectangle{Min: p.Rect.Min.Add(c.ImageOffset), Max: p.Rect.Min.Add(c.ImageOffset).Add(c.Clean.Bounds().Size())}
		page.Add(b.imageElement(page, it.Name, c.Clean, imgRect))
		anchor := p.Rect.Min.Add(c.TextAnchor)
		page.Add(TextElement{
			Box:       image.Rectangle{Min: anchor, Max: anchor.Add(c.TextSize)},
			Lines:     c.Lines,
			FontSize:  c.FontSize,
			LineStep:  c.LineStep,
			Ascent:    c.Ascent,
			Align:     AlignMiddle,
			BoldFirst: true,
		})
		return nil
	}

	page.Add(b.imageElement(page, it.Name, it.Image, p.Rect))
	return nil
}

// Divider draws a group divider and its optional header label.
func (b *Book) Divider(pageIdx int, d DividerSpec) error {
	page, err := b.page(pageIdx)
	if err != nil {
		return err
	}
	th := max(1, d.Thickness)

	dc := page.Raster
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(float64(th))
	dc.DrawLine(float64(d.X0), float64(d.Y), float64(d.X1), float64(d.Y))
	dc.Stroke()
	page.Add(LineElement{From: image.Pt(d.X0, d.Y), To: image.Pt(d.X1, d.Y), Stroke: "#000000", Width: float64(th)})

	if d.Label == "" {
		return nil
	}
	size := d.FontSize
	if size <= 0 {
		size = DefaultDividerFontSize
	}
	face, err := b.Fonts.Resolve(size)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	w, _ := dc.MeasureString(d.Label)
	ascent := float64(face.Metrics().Ascent.Ceil())
	descent := float64(face.Metrics().Descent.Ceil())
	baseline := float64(d.Y) - float64(th)/2 - descent - 2
	cx := float64(d.X0+d.X1) / 2
	dc.DrawStringAnchored(d.Label, cx, baseline, 0.5, 0)

	top := int(math.Round(baseline - ascent))
	left := int(math.Round(cx - w/2))
	page.Add(TextElement{
		Box:        image.Rect(left, top, left+int(math.Ceil(w)), top+int(ascent+descent)),
		Lines:      []string{d.Label},
		FontSize:   size,
		LineStep:   ascent + descent,
		Ascent:     ascent,
		Align:      AlignMiddle,
		Bold:       true,
		Annotation: true,
	})
	return nil
}

// Assets returns every asset across pages, in page order.
func (b *Book) Assets() []Asset {
	var out []Asset
	for _, p := range b.Pages {
		out = append(out, p.Assets...)
	}
	return out
}

func (b *Book) page(i int) (*Page, error) {
	if i < 0 || i >= len(b.Pages) {
		return nil, errors.New(errors.ErrCodeInternal, "page %d does not exist (have %d)", i, len(b.Pages))
	}
	return b.Pages[i], nil
}

func (b *Book) imageElement(page *Page, name string, img image.Image, r image.Rectangle) ImageElement {
	b.assets++
	key := fmt.Sprintf("images/img_%03d_%s.png", b.assets, SafeName(name))
	page.Assets = append(page.Assets, Asset{Key: key, Image: img})
	return ImageElement{Rect: r, Href: key, Name: name}
}
