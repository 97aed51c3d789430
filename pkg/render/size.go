package render

import (
	"strconv"
	"strings"

	"github.com/matzehuels/tavola/pkg/errors"
)

// DefaultDPI is the resolution the presets are expressed in.
const DefaultDPI = 300

// maxPageSide bounds custom sizes; larger canvases exhaust memory long before
// they are useful for print.
const maxPageSide = 20000

// Size is a page size in pixels.
type Size struct {
	Name   string
	Width  int
	Height int
}

// Presets lists the named page sizes, in pixels at DefaultDPI.
var Presets = []Size{
	{Name: "A4", Width: 2480, Height: 3508},
	{Name: "A3", Width: 3508, Height: 4961},
	{Name: "HD", Width: 1920, Height: 1080},
	{Name: "4K", Width: 3840, Height: 2160},
	{Name: "LETTER", Width: 2550, Height: 3300},
}

// String returns the preset name, or WxH for custom sizes.
func (s Size) String() string {
	if s.Name != "" {
		return s.Name
	}
	return strconv.Itoa(s.Width) + "x" + strconv.Itoa(s.Height)
}

// ParseSize resolves a page size. name is a preset (case-insensitive), a
// WIDTHxHEIGHT pair, or "custom", in which case custom holds the pair.
func ParseSize(name, custom string) (Size, error) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "custom") {
		if strings.TrimSpace(custom) == "" {
			return Size{}, errors.New(errors.ErrCodeInvalidPageSize, "custom page size requires WIDTHxHEIGHT")
		}
		return parsePair(custom)
	}
	for _, p := range Presets {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	if _, _, ok := errors.MatchCustomSize(name); ok {
		return parsePair(name)
	}
	return Size{}, errors.New(errors.ErrCodeInvalidPageSize, "unsupported page format %q", name)
}

func parsePair(s string) (Size, error) {
	ws, hs, ok := errors.MatchCustomSize(s)
	if !ok {
		return Size{}, errors.New(errors.ErrCodeInvalidPageSize, "invalid custom size %q (want WIDTHxHEIGHT)", s)
	}
	w, err1 := strconv.Atoi(ws)
	h, err2 := strconv.Atoi(hs)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return Size{}, errors.New(errors.ErrCodeInvalidPageSize, "invalid custom size %q", s)
	}
	if w > maxPageSide || h > maxPageSide {
		return Size{}, errors.New(errors.ErrCodeInvalidPageSize, "custom size %q exceeds %d px", s, maxPageSide)
	}
	return Size{Width: w, Height: h}, nil
}
