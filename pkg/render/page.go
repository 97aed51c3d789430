package render

import (
	"image"

	"github.com/fogleman/gg"
)

// Page is one output page held in both renderings. Raster is the flattened
// composite; Elements and Assets form the vector document. Coordinates are
// pixels with the origin top-left and y growing down, shared by both.
type Page struct {
	Index  int
	Width  int
	Height int
	Margin int

	Raster   *gg.Context
	Elements []Element
	Assets   []Asset
}

// NewPage allocates a white page.
func NewPage(index, width, height, margin int) *Page {
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	return &Page{
		Index:  index,
		Width:  width,
		Height: height,
		Margin: margin,
		Raster: dc,
	}
}

// Add appends a vector element.
func (p *Page) Add(els ...Element) {
	p.Elements = append(p.Elements, els...)
}

// Image returns the raster composite.
func (p *Page) Image() image.Image {
	return p.Raster.Image()
}

// Content returns the content rectangle inside the margin, or the empty
// rectangle when the margin leaves no room.
func (p *Page) Content() image.Rectangle {
	if 2*p.Margin >= p.Width || 2*p.Margin >= p.Height {
		return image.Rectangle{}
	}
	return image.Rect(p.Margin, p.Margin, p.Width-p.Margin, p.Height-p.Margin)
}

// Layer returns the elements on layer l in insertion order.
func (p *Page) Layer(l Layer) []Element {
	var out []Element
	for _, el := range p.Elements {
		if el.Layer() == l {
			out = append(out, el)
		}
	}
	return out
}

// Images returns the image elements in insertion order.
func (p *Page) Images() []ImageElement {
	var out []ImageElement
	for _, el := range p.Elements {
		if img, ok := el.(ImageElement); ok {
			out = append(out, img)
		}
	}
	return out
}
