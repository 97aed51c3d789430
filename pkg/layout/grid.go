package layout

import (
	"context"
	"image"
	"slices"

	"github.com/matzehuels/tavola/pkg/catalog"
	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/render"
)

// Grid fills pages row by row. A row takes items while they fit the content
// width, up to Cols; a page takes rows while they fit the content height, up
// to Rows.
type Grid struct {
	Rows int
	Cols int
}

func (g *Grid) Mode() Mode { return ModeGrid }

type gridRow struct {
	items  []catalog.Item
	width  int
	height int
	group  string
}

// gridUnit is either a row or an item that needs its own page.
type gridUnit struct {
	row      *gridRow
	fallback *catalog.Item
}

type pageRow struct {
	row     *gridRow
	divider bool
}

// Place implements Strategy.
func (g *Grid) Place(ctx context.Context, items []catalog.Item, cfg PageConfig, s Surface) (Stats, error) {
	if g.Rows <= 0 || g.Cols <= 0 {
		return Stats{}, errors.New(errors.ErrCodeInvalidInput, "grid needs positive rows and columns, got %dx%d", g.Rows, g.Cols)
	}
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}

	var stats Stats
	availH := cfg.Content().Dy()

	var (
		rows      []pageRow
		usedH     int
		lastGroup string
	)
	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		if err := g.emit(s, cfg, rows, usedH, &stats); err != nil {
			return err
		}
		rows, usedH = nil, 0
		return nil
	}

	// Each chunk of ImagesPerPage items starts on a fresh page.
	chunks := [][]catalog.Item{items}
	if cfg.ImagesPerPage > 0 {
		chunks = slices.Collect(slices.Chunk(items, cfg.ImagesPerPage))
	}

	for _, chunk := range chunks {
		for _, u := range g.rows(chunk, cfg) {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			if u.fallback != nil {
				if err := flush(); err != nil {
					return stats, err
				}
				if err := placeFallback(s, cfg, *u.fallback, &stats); err != nil {
					return stats, err
				}
				continue
			}

			r := u.row
			groupChange := cfg.GroupBreak && len(rows) > 0 && r.group != lastGroup
			if groupChange && cfg.BreakType == BreakNewPage {
				if err := flush(); err != nil {
					return stats, err
				}
				groupChange = false
			}

			divider := groupChange && cfg.BreakType != BreakNewPage
			cost := rowCost(r, len(rows) > 0, divider, cfg)
			if len(rows) > 0 && (len(rows) >= g.Rows || usedH+cost > availH) {
				if err := flush(); err != nil {
					return stats, err
				}
				divider = false
				cost = rowCost(r, false, false, cfg)
			}

			rows = append(rows, pageRow{row: r, divider: divider})
			usedH += cost
			lastGroup = r.group
		}
		if err := flush(); err != nil {
			return stats, err
		}
	}

	cfg.logger().Debug("grid placement done", "pages", stats.Pages, "items", stats.Placed, "fallbacks", len(stats.Fallbacks))
	return stats, nil
}

func rowCost(r *gridRow, notFirst, divider bool, cfg PageConfig) int {
	cost := r.height
	if notFirst {
		cost += cfg.Spacing
	}
	if divider {
		cost += cfg.dividerCost()
	}
	return cost
}

// rows splits items into rows. The first item of a row is always accepted,
// so an item wider than the content area forms a row of its own.
func (g *Grid) rows(items []catalog.Item, cfg PageConfig) []gridUnit {
	availW := cfg.Content().Dx()

	var (
		units []gridUnit
		cur   *gridRow
	)
	closeRow := func() {
		if cur != nil {
			units = append(units, gridUnit{row: cur})
			cur = nil
		}
	}

	for _, it := range items {
		if !fits(it, cfg) {
			closeRow()
			units = append(units, gridUnit{fallback: &it})
			continue
		}
		if cur != nil {
			full := len(cur.items) >= g.Cols ||
				cur.width+cfg.Spacing+it.Width() > availW ||
				(cfg.GroupBreak && it.Group != cur.group)
			if full {
				closeRow()
			}
		}
		if cur == nil {
			cur = &gridRow{group: it.Group}
		} else {
			cur.width += cfg.Spacing
		}
		cur.items = append(cur.items, it)
		cur.width += it.Width()
		cur.height = max(cur.height, it.Height())
	}
	closeRow()
	return units
}

// emit writes one page: content is centered vertically, each row is
// centered horizontally and items are centered within their row.
func (g *Grid) emit(s Surface, cfg PageConfig, rows []pageRow, contentH int, stats *Stats) error {
	content := cfg.Content()
	y := content.Min.Y
	if contentH < content.Dy() {
		y += (content.Dy() - contentH) / 2
	}

	page := s.NewPage()
	stats.Pages++

	for i, pr := range rows {
		if i > 0 {
			y += cfg.Spacing
		}
		if pr.divider {
			y += DividerMargin
			if cfg.GroupHeaders {
				y += cfg.headerHeight()
			}
			th := max(1, cfg.DividerThickness)
			if err := s.Divider(page, dividerSpec(cfg, y+th/2, pr.row.group)); err != nil {
				return err
			}
			stats.Dividers++
			y += th + DividerMargin
		}

		r := pr.row
		x := max(0, content.Min.X+(content.Dx()-r.width)/2)
		for j, it := range r.items {
			if j > 0 {
				x += cfg.Spacing
			}
			iy := y + (r.height-it.Height())/2
			rect := image.Rect(x, iy, x+it.Width(), iy+it.Height())
			if err := s.Stamp(Placement{Item: it, Page: page, Rect: rect}); err != nil {
				return err
			}
			stats.Placed++
			x += it.Width()
		}
		y += r.height
	}

	cfg.logger().Info("placed page", "page", page+1, "items", countItems(rows))
	return nil
}

func dividerSpec(cfg PageConfig, y int, group string) render.DividerSpec {
	content := cfg.Content()
	pct := cfg.DividerWidthPercent
	if pct <= 0 || pct > 100 {
		pct = 100
	}
	w := int(float64(content.Dx()) * pct / 100)
	x0 := content.Min.X + (content.Dx()-w)/2
	d := render.DividerSpec{Y: y, X0: x0, X1: x0 + w, Thickness: max(1, cfg.DividerThickness)}
	if cfg.GroupHeaders {
		d.Label = group
		d.FontSize = cfg.HeaderFontSize
	}
	return d
}

func countItems(rows []pageRow) int {
	n := 0
	for _, r := range rows {
		n += len(r.row.items)
	}
	return n
}
