package layout

import (
	"cmp"
	"context"
	"image"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tavola/pkg/catalog"
	"github.com/matzehuels/tavola/pkg/layout/binpack"
)

// Puzzle packs items into pages with a rectangle bin packer, trading row
// order for density.
//
// When Grouped is set and group breaks are enabled, each primary group is
// packed into its own bins, so a group never shares a page with another.
// This can use more pages than packing everything together.
type Puzzle struct {
	Grouped bool
}

func (p *Puzzle) Mode() Mode { return ModePuzzle }

// Place implements Strategy. Chunks are packed concurrently; pages are then
// assigned serially in group order.
func (p *Puzzle) Place(ctx context.Context, items []catalog.Item, cfg PageConfig, s Surface) (Stats, error) {
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}

	chunks := p.chunks(items, cfg)
	content := cfg.Content()
	results := make([]binpack.Result, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sizes := make([]image.Point, len(chunk))
			for j, it := range chunk {
				sizes[j] = image.Pt(it.Width()+cfg.Spacing, it.Height()+cfg.Spacing)
			}
			results[i] = binpack.Pack(sizes, content.Dx(), content.Dy(), len(chunk))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	var stats Stats
	for i, chunk := range chunks {
		for _, bin := range results[i].Bins {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			slices.SortStableFunc(bin, func(a, b binpack.Packed) int {
				if c := cmp.Compare(a.Rect.Min.Y, b.Rect.Min.Y); c != 0 {
					return c
				}
				return cmp.Compare(a.Rect.Min.X, b.Rect.Min.X)
			})

			page := s.NewPage()
			stats.Pages++
			for _, pk := range bin {
				it := chunk[pk.Index]
				at := pk.Rect.Min.Add(content.Min)
				rect := image.Rectangle{Min: at, Max: at.Add(it.Size())}
				if err := s.Stamp(Placement{Item: it, Page: page, Rect: rect}); err != nil {
					return stats, err
				}
				stats.Placed++
			}
			cfg.logger().Info("placed page", "page", page+1, "items", len(bin))
		}
		for _, idx := range results[i].Unplaced {
			if err := placeFallback(s, cfg, chunk[idx], &stats); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

// chunks partitions items by group in first-seen order, then splits each
// group by ImagesPerPage.
func (p *Puzzle) chunks(items []catalog.Item, cfg PageConfig) [][]catalog.Item {
	var groups [][]catalog.Item
	if p.Grouped && cfg.GroupBreak {
		index := make(map[string]int)
		for _, it := range items {
			i, ok := index[it.Group]
			if !ok {
				i = len(groups)
				index[it.Group] = i
				groups = append(groups, nil)
			}
			groups[i] = append(groups[i], it)
		}
	} else if len(items) > 0 {
		groups = [][]catalog.Item{items}
	}

	if cfg.ImagesPerPage <= 0 {
		return groups
	}
	var out [][]catalog.Item
	for _, grp := range groups {
		out = append(out, slices.Collect(slices.Chunk(grp, cfg.ImagesPerPage))...)
	}
	return out
}
