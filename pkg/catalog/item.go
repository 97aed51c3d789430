package catalog

import (
	"image"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// Item is one catalogue photograph flowing through the pipeline.
//
// Items are values. Every stage that changes pixels or attaches data returns
// a new Item through one of the With* methods, so the clean image captured
// for vector output can never alias the baked raster.
type Item struct {
	Name    string
	Image   image.Image // baked pixels used for raster output
	Meta    Metadata
	Group   string   // primary sort-key value, empty when grouping is off
	Caption *Caption // set once a caption has been composed

	Source  string    // path the image was read from, empty for in-memory items
	ModTime time.Time // modification time of Source
}

// New creates an item from a decoded image.
func New(name string, img image.Image) Item {
	return Item{Name: name, Image: img}
}

// Width returns the width of the baked pixels.
func (it Item) Width() int { return it.Image.Bounds().Dx() }

// Height returns the height of the baked pixels.
func (it Item) Height() int { return it.Image.Bounds().Dy() }

// Size returns the baked pixel dimensions as a point.
func (it Item) Size() image.Point { return it.Image.Bounds().Size() }

// Stem returns the name without its extension.
func (it Item) Stem() string {
	return strings.TrimSuffix(it.Name, filepath.Ext(it.Name))
}

// Clean returns the image the vector renderer should reference: the
// untouched photograph when a caption was baked on, the pixels otherwise.
func (it Item) Clean() image.Image {
	if it.Caption != nil {
		return it.Caption.Clean
	}
	return it.Image
}

// WithImage returns a copy with new pixels. Any caption is dropped because
// its offsets describe the previous pixels.
func (it Item) WithImage(img image.Image) Item {
	it.Image = img
	it.Caption = nil
	return it
}

// WithCaption returns a copy carrying the baked composite and its record.
func (it Item) WithCaption(baked image.Image, c Caption) Item {
	it.Image = baked
	it.Caption = &c
	return it
}

// WithGroup returns a copy assigned to a primary group.
func (it Item) WithGroup(group string) Item {
	it.Group = group
	return it
}

// WithMeta returns a copy with the given metadata row.
func (it Item) WithMeta(m Metadata) Item {
	it.Meta = m
	return it
}

// Resized returns a copy scaled to exactly w x h using Lanczos resampling.
// A caption record is scaled by the same ratios so offsets keep pointing at
// the same features of the composite.
func (it Item) Resized(w, h int) Item {
	w, h = max(1, w), max(1, h)
	if it.Width() == w && it.Height() == h {
		return it
	}
	sx := float64(w) / float64(it.Width())
	sy := float64(h) / float64(it.Height())

	out := it
	out.Image = imaging.Resize(it.Image, w, h, imaging.Lanczos)
	if it.Caption != nil {
		c := it.Caption.scaled(sx, sy)
		out.Caption = &c
	}
	return out
}

// Caption is the decomposed form of a captioned item: the clean photograph
// and the text block, each positioned relative to the composite's top-left
// corner.
type Caption struct {
	Clean       image.Image
	Lines       []string
	FontSize    float64
	LineStep    float64 // baseline-to-baseline distance
	Ascent      float64 // first baseline below TextAnchor.Y
	TextSize    image.Point
	ImageOffset image.Point
	TextAnchor  image.Point
}

// Text returns the caption lines joined by newlines.
func (c Caption) Text() string {
	return strings.Join(c.Lines, "\n")
}

func (c Caption) scaled(sx, sy float64) Caption {
	cb := c.Clean.Bounds()
	cw := max(1, int(math.Round(float64(cb.Dx())*sx)))
	ch := max(1, int(math.Round(float64(cb.Dy())*sy)))

	out := c
	out.Lines = append([]string(nil), c.Lines...)
	out.Clean = imaging.Resize(c.Clean, cw, ch, imaging.Lanczos)
	out.FontSize = c.FontSize * sy
	out.LineStep = c.LineStep * sy
	out.Ascent = c.Ascent * sy
	out.TextSize = scalePoint(c.TextSize, sx, sy)
	out.ImageOffset = scalePoint(c.ImageOffset, sx, sy)
	out.TextAnchor = scalePoint(c.TextAnchor, sx, sy)
	return out
}

func scalePoint(p image.Point, sx, sy float64) image.Point {
	return image.Pt(int(math.Round(float64(p.X)*sx)), int(math.Round(float64(p.Y)*sy)))
}
