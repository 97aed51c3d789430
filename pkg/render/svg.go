package render

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/tavola/pkg/errors"
)

// SVGOption configures SVG serialization.
type SVGOption func(*svgWriter)

type svgWriter struct {
	guides int
	title  string
}

// WithMarginGuides draws a dashed margin rectangle with corner markers on a
// guides layer. Guides are an editing aid and never appear in the raster.
func WithMarginGuides(margin int) SVGOption {
	return func(w *svgWriter) { w.guides = margin }
}

// WithTitle sets the document title.
func WithTitle(title string) SVGOption {
	return func(w *svgWriter) { w.title = title }
}

// SVG serializes the vector side of the page. It fails when an element
// references an asset path that is unsafe to write next to the document.
func (p *Page) SVG(opts ...SVGOption) ([]byte, error) {
	w := svgWriter{title: fmt.Sprintf("Page %d", p.Index+1)}
	for _, opt := range opts {
		opt(&w)
	}

	for _, el := range p.Elements {
		if img, ok := el.(ImageElement); ok {
			if err := errors.ValidateAssetPath(img.Href); err != nil {
				return nil, errors.Wrap(errors.ErrCodeExport, err, "page %d: image %s", p.Index+1, img.Name)
			}
		}
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		p.Width, p.Height, p.Width, p.Height)
	fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(w.title))
	fmt.Fprintf(&buf, `  <g id="background"><rect x="0" y="0" width="%d" height="%d" fill="#ffffff"/></g>`+"\n", p.Width, p.Height)

	if w.guides > 0 {
		writeGuides(&buf, p.Width, p.Height, w.guides)
	}

	id := 0
	for _, l := range []Layer{LayerImages, LayerCaptions, LayerAnnotations} {
		fmt.Fprintf(&buf, "  <g id=%q>\n", l.String())
		for _, el := range p.Elements {
			if el.Layer() != l {
				continue
			}
			id++
			el.writeSVG(&buf, id)
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func writeGuides(buf *bytes.Buffer, width, height, m int) {
	buf.WriteString(`  <g id="guides" opacity="0.5">` + "\n")
	fmt.Fprintf(buf, `    <rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="#ff0000" stroke-width="2" stroke-dasharray="10,5"/>`+"\n",
		m, m, width-2*m, height-2*m)
	for _, c := range [][2]int{{m, m}, {width - m, m}, {m, height - m}, {width - m, height - m}} {
		fmt.Fprintf(buf, `    <circle cx="%d" cy="%d" r="5" fill="#ff0000"/>`+"\n", c[0], c[1])
	}
	buf.WriteString("  </g>\n")
}
