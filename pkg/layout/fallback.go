package layout

import (
	"image"
	"math"

	"github.com/matzehuels/tavola/pkg/catalog"
)

// fits reports whether it can be placed on an ordinary page. Width is
// checked against the whole page, not the content area: an item wider than
// the content but not the page sits alone in its row, centered and reaching
// into the margin, at its own size.
func fits(it catalog.Item, cfg PageConfig) bool {
	return it.Height() <= cfg.Content().Dy() && it.Width() <= cfg.Size.Width
}

// placeFallback puts it alone on a new page, downscaled to the content area
// when needed and centered. The surface resizes the item to the rectangle.
func placeFallback(s Surface, cfg PageConfig, it catalog.Item, stats *Stats) error {
	content := cfg.Content()
	f := math.Min(1, math.Min(
		float64(content.Dx())/float64(it.Width()),
		float64(content.Dy())/float64(it.Height()),
	))
	w := max(1, int(math.Floor(float64(it.Width())*f)))
	h := max(1, int(math.Floor(float64(it.Height())*f)))

	x := content.Min.X + (content.Dx()-w)/2
	y := content.Min.Y + (content.Dy()-h)/2

	cfg.logger().Warn("image does not fit the page, placing it on its own page",
		"name", it.Name, "size", it.Size(), "scale", math.Round(f*1000)/1000)

	page := s.NewPage()
	if err := s.Stamp(Placement{Item: it, Page: page, Rect: image.Rect(x, y, x+w, y+h)}); err != nil {
		return err
	}
	stats.Pages++
	stats.Placed++
	stats.Fallbacks = append(stats.Fallbacks, it.Name)
	return nil
}
