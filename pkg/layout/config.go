package layout

import (
	"context"
	"image"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tavola/pkg/catalog"
	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/render"
)

// Mode selects a placement strategy.
type Mode string

const (
	ModeGrid    Mode = "grid"
	ModePuzzle  Mode = "puzzle"
	ModeMasonry Mode = "masonry"
)

// Modes lists the supported modes.
var Modes = []Mode{ModeGrid, ModePuzzle, ModeMasonry}

// ParseMode resolves a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Modes {
		if v == m {
			return m, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidMode, "unknown layout mode %q (use grid, puzzle or masonry)", s)
}

// BreakType controls what happens between primary groups.
type BreakType string

const (
	BreakDivider BreakType = "divider"
	BreakNewPage BreakType = "new_page"
)

// ParseBreakType resolves a break type name.
func ParseBreakType(s string) (BreakType, error) {
	switch b := BreakType(strings.ToLower(strings.TrimSpace(s))); b {
	case BreakDivider, BreakNewPage:
		return b, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown group break type %q (use divider or new_page)", s)
}

// DividerMargin is the vertical gap above and below a group divider.
const DividerMargin = 15

// PageConfig carries the page geometry and grouping rules shared by every
// strategy.
type PageConfig struct {
	Size          render.Size
	Margin        int
	Spacing       int
	ImagesPerPage int // 0 means no limit

	GroupBreak          bool
	BreakType           BreakType
	DividerThickness    int
	DividerWidthPercent float64
	GroupHeaders        bool
	HeaderFontSize      float64

	Logger *log.Logger
}

// Content returns the area inside the margin. It is empty when the margin
// meets or crosses the middle of the page.
func (c PageConfig) Content() image.Rectangle {
	if 2*c.Margin >= c.Size.Width || 2*c.Margin >= c.Size.Height {
		return image.Rectangle{}
	}
	return image.Rect(c.Margin, c.Margin, c.Size.Width-c.Margin, c.Size.Height-c.Margin)
}

// Validate rejects geometry no strategy can work with.
func (c PageConfig) Validate() error {
	if c.Size.Width <= 0 || c.Size.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidPageSize, "page size %dx%d is not positive", c.Size.Width, c.Size.Height)
	}
	if c.Margin < 0 || c.Spacing < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "margin and spacing must not be negative")
	}
	if 2*c.Margin >= c.Size.Width || 2*c.Margin >= c.Size.Height {
		return errors.New(errors.ErrCodeInvalidInput, "margin %d leaves no content area on a %s page", c.Margin, c.Size)
	}
	if c.ImagesPerPage < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "images per page must not be negative")
	}
	return nil
}

func (c PageConfig) logger() *log.Logger {
	if c.Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return c.Logger
}

func (c PageConfig) dividerCost() int {
	cost := max(1, c.DividerThickness) + 2*DividerMargin
	if c.GroupHeaders {
		cost += c.headerHeight()
	}
	return cost
}

func (c PageConfig) headerHeight() int {
	size := c.HeaderFontSize
	if size <= 0 {
		size = render.DefaultDividerFontSize
	}
	return int(size*1.3 + 0.5)
}

// Placement is an item positioned on a page.
type Placement = render.Placement

// Surface receives placements. Strategies only compute positions; a Surface
// decides what a placement turns into.
type Surface interface {
	NewPage() int
	Stamp(p Placement) error
	Divider(page int, d render.DividerSpec) error
}

// Stats summarizes one placement run.
type Stats struct {
	Pages     int
	Placed    int
	Dividers  int
	Fallbacks []string // names of items given a dedicated page
}

// Strategy places items onto pages of a Surface.
type Strategy interface {
	Mode() Mode
	Place(ctx context.Context, items []catalog.Item, cfg PageConfig, s Surface) (Stats, error)
}
