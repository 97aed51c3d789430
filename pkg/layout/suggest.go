package layout

import (
	"fmt"
	"math"
)

// Summary describes a finished run for Suggest.
type Summary struct {
	Mode      Mode
	Scale     float64
	Items     int
	Pages     int
	Fallbacks int
	Rows      int
	Cols      int
	Columns   int
}

// minColumnWidth is the narrowest masonry column that still reads well.
const minColumnWidth = 150

// Suggest returns human-readable hints for improving a layout.
func Suggest(cfg PageConfig, s Summary) []string {
	var out []string

	if s.Fallbacks > 0 {
		out = append(out, fmt.Sprintf("%d image(s) did not fit a page and were downscaled onto their own page", s.Fallbacks))
		if s.Scale > 0.3 {
			out = append(out, fmt.Sprintf("try reducing the scale factor to %.2f", math.Max(0.1, s.Scale*0.7)))
		}
		if cfg.Margin > 20 {
			out = append(out, fmt.Sprintf("try reducing the margin to %dpx", max(10, cfg.Margin-20)))
		}
		if cfg.Spacing > 5 {
			out = append(out, fmt.Sprintf("try reducing the spacing to %dpx", max(2, cfg.Spacing-5)))
		}
		switch cfg.Size.Name {
		case "A4", "LETTER":
			out = append(out, "consider the A3 or HD page size for more room")
		}
		if s.Mode != ModePuzzle {
			out = append(out, "puzzle mode usually packs pages more densely")
		}
	}

	short := min(cfg.Size.Width, cfg.Size.Height)
	if short > 0 && float64(cfg.Margin) > 0.1*float64(short) {
		out = append(out, fmt.Sprintf("the margin takes more than 10%% of the page; %dpx would leave more room", short/20))
	}

	if cfg.ImagesPerPage == 0 && s.Pages > 0 && s.Items/s.Pages > 24 {
		out = append(out, "pages are crowded; set images per page to spread items out")
	}

	if s.Mode == ModeGrid && s.Rows > 0 && s.Cols > 0 && s.Pages > 1 {
		capacity := s.Rows * s.Cols
		if avg := float64(s.Items) / float64(s.Pages); avg < 0.5*float64(capacity) {
			out = append(out, fmt.Sprintf("grid pages hold %.1f of %d cells on average; a larger scale factor or fewer rows/columns would fill them", avg, capacity))
		}
	}

	if s.Mode == ModeMasonry && s.Columns > 0 {
		m := Masonry{Columns: s.Columns}
		if w := m.ColumnWidth(cfg); w < minColumnWidth {
			out = append(out, fmt.Sprintf("masonry columns are only %dpx wide; use fewer columns", w))
		}
	}

	return out
}
