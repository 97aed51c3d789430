package layout

import (
	"image"

	"github.com/matzehuels/tavola/pkg/catalog"
	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/render"
)

// PlanEntry records one placement by item name.
type PlanEntry struct {
	Name string `json:"name"`
	Page int    `json:"page"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
}

// Rect returns the entry's rectangle.
func (e PlanEntry) Rect() image.Rectangle {
	return image.Rect(e.X, e.Y, e.X+e.W, e.Y+e.H)
}

// PlanDivider records one group divider. Before is the number of placements
// recorded ahead of it, which fixes its position in the replay order.
type PlanDivider struct {
	Before    int     `json:"before"`
	Page      int     `json:"page"`
	Y         int     `json:"y"`
	X0        int     `json:"x0"`
	X1        int     `json:"x1"`
	Thickness int     `json:"thickness"`
	Label     string  `json:"label,omitempty"`
	FontSize  float64 `json:"font_size,omitempty"`
}

// Plan is a Surface that records placements instead of rendering them. A
// plan serializes to JSON and can later be replayed onto a real Surface,
// which is how layouts are cached.
type Plan struct {
	Pages      int           `json:"pages"`
	Placements []PlanEntry   `json:"placements"`
	Dividers   []PlanDivider `json:"dividers,omitempty"`
	Fallbacks  []string      `json:"fallbacks,omitempty"`
}

// NewPage implements Surface.
func (p *Plan) NewPage() int {
	p.Pages++
	return p.Pages - 1
}

// Stamp implements Surface.
func (p *Plan) Stamp(pl Placement) error {
	if pl.Page < 0 || pl.Page >= p.Pages {
		return errors.New(errors.ErrCodeInternal, "placement on unknown page %d", pl.Page)
	}
	r := pl.Rect
	p.Placements = append(p.Placements, PlanEntry{
		Name: pl.Item.Name, Page: pl.Page,
		X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy(),
	})
	return nil
}

// Divider implements Surface.
func (p *Plan) Divider(page int, d render.DividerSpec) error {
	if page < 0 || page >= p.Pages {
		return errors.New(errors.ErrCodeInternal, "divider on unknown page %d", page)
	}
	p.Dividers = append(p.Dividers, PlanDivider{
		Before: len(p.Placements), Page: page, Y: d.Y, X0: d.X0, X1: d.X1,
		Thickness: d.Thickness, Label: d.Label, FontSize: d.FontSize,
	})
	return nil
}

// Stats reconstructs the placement summary of the recorded run.
func (p *Plan) Stats() Stats {
	return Stats{
		Pages:     p.Pages,
		Placed:    len(p.Placements),
		Dividers:  len(p.Dividers),
		Fallbacks: p.Fallbacks,
	}
}

// Replay sends the recorded run to s, looking items up by name. Every
// placement must name an item in items.
func (p *Plan) Replay(items []catalog.Item, s Surface) error {
	byName := make(map[string]catalog.Item, len(items))
	for _, it := range items {
		byName[it.Name] = it
	}

	pages := make([]int, p.Pages)
	for i := range pages {
		pages[i] = s.NewPage()
	}
	next := 0
	dividersBefore := func(n int) error {
		for ; next < len(p.Dividers) && p.Dividers[next].Before <= n; next++ {
			d := p.Dividers[next]
			if d.Page < 0 || d.Page >= len(pages) {
				return errors.New(errors.ErrCodeInternal, "plan divider on unknown page %d", d.Page)
			}
			spec := render.DividerSpec{Y: d.Y, X0: d.X0, X1: d.X1, Thickness: d.Thickness, Label: d.Label, FontSize: d.FontSize}
			if err := s.Divider(pages[d.Page], spec); err != nil {
				return err
			}
		}
		return nil
	}

	for i, e := range p.Placements {
		if err := dividersBefore(i); err != nil {
			return err
		}
		it, ok := byName[e.Name]
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "plan references unknown image %q", e.Name)
		}
		if e.Page < 0 || e.Page >= len(pages) {
			return errors.New(errors.ErrCodeInternal, "plan entry %q on unknown page %d", e.Name, e.Page)
		}
		if err := s.Stamp(Placement{Item: it, Page: pages[e.Page], Rect: e.Rect()}); err != nil {
			return err
		}
	}
	return dividersBefore(len(p.Placements))
}

// Tee returns a Surface that forwards every call to both a and b. Page
// indices are taken from a.
func Tee(a, b Surface) Surface {
	return &tee{a: a, b: b, pages: make(map[int]int)}
}

type tee struct {
	a, b  Surface
	pages map[int]int
}

func (t *tee) NewPage() int {
	i := t.a.NewPage()
	t.pages[i] = t.b.NewPage()
	return i
}

func (t *tee) Stamp(p Placement) error {
	if err := t.a.Stamp(p); err != nil {
		return err
	}
	p.Page = t.pages[p.Page]
	return t.b.Stamp(p)
}

func (t *tee) Divider(page int, d render.DividerSpec) error {
	if err := t.a.Divider(page, d); err != nil {
		return err
	}
	return t.b.Divider(t.pages[page], d)
}
