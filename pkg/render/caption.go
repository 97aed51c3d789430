package render

import (
	"context"
	"image"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/tavola/pkg/catalog"
	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/fonts"
)

const ellipsis = "..."

// Composer bakes caption blocks beneath item images and records the
// decomposition needed to re-emit image and text separately in SVG.
type Composer struct {
	Fonts          fonts.Resolver
	FontSize       float64
	Padding        int
	Fields         []string // selected metadata columns; empty selects Columns
	Columns        []string // table column order
	HideFieldNames bool
	StripExtension bool
}

// Lines returns the caption lines for an item: its name, then one line per
// selected field with a value.
func (c *Composer) Lines(it catalog.Item) []string {
	name := it.Name
	if c.StripExtension {
		name = it.Stem()
	}
	lines := []string{name}

	fields := c.Fields
	if len(fields) == 0 {
		fields = c.Columns
	}
	for _, f := range fields {
		v, ok := it.Meta.Value(f)
		if !ok {
			continue
		}
		if c.HideFieldNames {
			lines = append(lines, v)
		} else {
			lines = append(lines, f+": "+v)
		}
	}
	return lines
}

// Compose returns the item with its caption baked below the image. The box
// grows to fit the widest line.
func (c *Composer) Compose(it catalog.Item) (catalog.Item, error) {
	return c.compose(it, 0)
}

// ComposeFixedWidth composes a caption into a box exactly width pixels wide.
// Lines that do not fit are truncated with an ellipsis; the font size is
// never reduced.
func (c *Composer) ComposeFixedWidth(it catalog.Item, width int) (catalog.Item, error) {
	if width <= 0 {
		return it, errors.New(errors.ErrCodeInvalidInput, "caption width must be positive, got %d", width)
	}
	return c.compose(it, width)
}

// ComposeAll captions every item in order. Faces are shared, so this runs
// sequentially.
func (c *Composer) ComposeAll(ctx context.Context, items []catalog.Item) ([]catalog.Item, error) {
	out := make([]catalog.Item, len(items))
	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		composed, err := c.Compose(it)
		if err != nil {
			return nil, err
		}
		out[i] = composed
	}
	return out, nil
}

// Height returns the pixel height a caption for it adds below the image.
func (c *Composer) Height(it catalog.Item) (int, error) {
	face, err := c.face()
	if err != nil {
		return 0, err
	}
	return len(c.Lines(it))*lineStep(face) + 2*c.Padding, nil
}

func (c *Composer) face() (font.Face, error) {
	if c.Fonts == nil {
		return nil, errors.New(errors.ErrCodeFont, "no font resolver configured")
	}
	return c.Fonts.Resolve(c.FontSize)
}

func (c *Composer) compose(it catalog.Item, fixed int) (catalog.Item, error) {
	face, err := c.face()
	if err != nil {
		return it, err
	}

	clean := it.Clean()
	imgW, imgH := clean.Bounds().Dx(), clean.Bounds().Dy()
	pad := c.Padding

	measure := gg.NewContext(1, 1)
	measure.SetFontFace(face)

	lines := c.Lines(it)
	if fixed > 0 {
		for i, l := range lines {
			lines[i] = truncate(measure, l, float64(fixed-2*pad))
		}
	}

	textW := 0
	for _, l := range lines {
		w, _ := measure.MeasureString(l)
		textW = max(textW, int(math.Ceil(w)))
	}
	step := lineStep(face)
	textH := len(lines) * step

	boxW := max(imgW, textW+2*pad)
	if fixed > 0 {
		boxW = fixed
	}
	boxH := imgH + textH + 2*pad

	rec := catalog.Caption{
		Clean:       clean,
		Lines:       lines,
		FontSize:    c.FontSize,
		LineStep:    float64(step),
		Ascent:      float64(face.Metrics().Ascent.Ceil()),
		TextSize:    image.Pt(textW, textH),
		ImageOffset: image.Pt((boxW-imgW)/2, 0),
		TextAnchor:  image.Pt((boxW-textW)/2, imgH+pad),
	}

	dc := gg.NewContext(boxW, boxH)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.DrawImage(clean, rec.ImageOffset.X, rec.ImageOffset.Y)
	dc.SetFontFace(face)
	dc.SetRGB(0, 0, 0)
	cx := float64(rec.TextAnchor.X) + float64(textW)/2
	for i, l := range lines {
		y := float64(rec.TextAnchor.Y) + rec.Ascent + float64(i)*rec.LineStep
		dc.DrawStringAnchored(l, cx, y, 0.5, 0)
	}

	return it.WithCaption(dc.Image(), rec), nil
}

func lineStep(face font.Face) int {
	h := float64(face.Metrics().Height) / 64
	return int(math.Round(h)) + 2
}

func truncate(dc *gg.Context, s string, avail float64) string {
	if w, _ := dc.MeasureString(s); w <= avail {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		cand := strings.TrimRight(string(r), " ") + ellipsis
		if w, _ := dc.MeasureString(cand); w <= avail {
			return cand
		}
	}
	return ellipsis
}
