package layout

import (
	"context"
	"image"
	"math"

	"github.com/matzehuels/tavola/pkg/catalog"
	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/render"
)

// Masonry fits every item to a fixed column width and drops it into the
// shortest column.
//
// With ReservedCaptions the caption is composed after the item has been fitted to
// the column, at the composer's font size regardless of the scale factor.
// Grid and puzzle captions instead scale with the image.
type Masonry struct {
	Columns          int
	ReservedCaptions *render.Composer
}

func (m *Masonry) Mode() Mode { return ModeMasonry }

// ColumnWidth returns the column width for cfg.
func (m *Masonry) ColumnWidth(cfg PageConfig) int {
	cols := max(1, m.Columns)
	return (cfg.Content().Dx() - (cols-1)*cfg.Spacing) / cols
}

// Prepare fits items to the column width and composes reserved captions.
// Items that are already prepared are returned unchanged, so Prepare may run
// ahead of Place.
func (m *Masonry) Prepare(ctx context.Context, items []catalog.Item, cfg PageConfig) ([]catalog.Item, error) {
	colW := m.ColumnWidth(cfg)
	if m.Columns <= 0 || colW <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "masonry with %d columns leaves no column width", m.Columns)
	}
	out := make([]catalog.Item, len(items))
	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if it.Width() == colW && (m.ReservedCaptions == nil || it.Caption != nil) {
			out[i] = it
			continue
		}
		h := max(1, int(math.Round(float64(it.Height())*float64(colW)/float64(it.Width()))))
		it = it.Resized(colW, h)
		if m.ReservedCaptions != nil {
			var err error
			if it, err = m.ReservedCaptions.ComposeFixedWidth(it, colW); err != nil {
				return nil, err
			}
		}
		out[i] = it
	}
	return out, nil
}

// Place implements Strategy.
func (m *Masonry) Place(ctx context.Context, items []catalog.Item, cfg PageConfig, s Surface) (Stats, error) {
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}
	items, err := m.Prepare(ctx, items, cfg)
	if err != nil {
		return Stats{}, err
	}

	colW := m.ColumnWidth(cfg)
	cols := m.Columns
	content := cfg.Content()
	bottom := cfg.Size.Height - cfg.Margin

	var (
		stats   Stats
		pending []Placement
		cursors = make([]int, cols)
	)
	reset := func() {
		for c := range cursors {
			cursors[c] = content.Min.Y
		}
	}
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		page := s.NewPage()
		stats.Pages++
		for _, p := range pending {
			p.Page = page
			if err := s.Stamp(p); err != nil {
				return err
			}
			stats.Placed++
		}
		cfg.logger().Info("placed page", "page", page+1, "items", len(pending))
		pending = nil
		reset()
		return nil
	}
	reset()

	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		h := it.Height()
		if h > content.Dy() {
			if err := flush(); err != nil {
				return stats, err
			}
			if err := placeFallback(s, cfg, it, &stats); err != nil {
				return stats, err
			}
			continue
		}
		if cfg.ImagesPerPage > 0 && len(pending) >= cfg.ImagesPerPage {
			if err := flush(); err != nil {
				return stats, err
			}
		}

		col := shortest(cursors)
		if cursors[col]+h > bottom {
			// The shortest column overflows, so every column does.
			if err := flush(); err != nil {
				return stats, err
			}
			col = 0
		}
		x := content.Min.X + col*(colW+cfg.Spacing)
		y := cursors[col]
		pending = append(pending, Placement{Item: it, Rect: image.Rect(x, y, x+it.Width(), y+h)})
		cursors[col] += h + cfg.Spacing
	}
	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}

func shortest(cursors []int) int {
	best := 0
	for i, c := range cursors {
		if c < cursors[best] {
			best = i
		}
	}
	return best
}
