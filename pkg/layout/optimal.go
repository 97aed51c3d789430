package layout

import (
	"math"

	"github.com/matzehuels/tavola/pkg/catalog"
)

// Bounds applied to the automatic scale factor.
const (
	MinOptimalScale = 0.1
	MaxOptimalScale = 5.0
)

// OptimalScale estimates the factor that makes about imagesPerPage items
// fill one page with strategy s. It averages the first imagesPerPage items
// and returns 1 when there is nothing to estimate from. Multiply the result
// with the user's own scale factor.
func OptimalScale(items []catalog.Item, cfg PageConfig, s Strategy, imagesPerPage int) float64 {
	n := min(imagesPerPage, len(items))
	if n <= 0 {
		return 1
	}

	var sumW, sumH, sumArea float64
	for _, it := range items[:n] {
		w, h := float64(it.Width()), float64(it.Height())
		sumW += w
		sumH += h
		sumArea += w * h
	}
	avgW, avgH := sumW/float64(n), sumH/float64(n)
	content := cfg.Content()
	availW, availH := float64(content.Dx()), float64(content.Dy())
	sp := float64(cfg.Spacing)

	var f float64
	switch st := s.(type) {
	case *Grid:
		cols := max(1, min(st.Cols, n))
		rows := max(1, min(st.Rows, (n+cols-1)/cols))
		cellW := (availW - float64(cols-1)*sp) / float64(cols)
		cellH := (availH - float64(rows-1)*sp) / float64(rows)
		f = math.Min(cellW/avgW, cellH/avgH) * 0.9
	case *Masonry:
		cols := max(1, st.Columns)
		colW := (availW - float64(cols-1)*sp) / float64(cols)
		f = colW / avgW * 0.95
	default:
		f = math.Sqrt(availW * availH * 0.85 / (sumArea * 1.15))
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 1
	}
	return math.Max(MinOptimalScale, math.Min(MaxOptimalScale, f))
}
