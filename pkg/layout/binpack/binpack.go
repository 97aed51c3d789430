// Package binpack packs rectangles into fixed-size bins with the MaxRects
// algorithm.
//
// Each bin keeps the list of maximal free rectangles. Placing a rectangle
// splits every free rectangle it overlaps into up to four strips, and strips
// contained in another are pruned. Candidates are chosen by best area fit,
// ties broken by best short side fit. Rotation is never applied: images keep
// their orientation.
package binpack

import (
	"cmp"
	"image"
	"slices"
)

// Packed is a rectangle assigned to a bin. Index refers to the input slice.
type Packed struct {
	Index int
	Rect  image.Rectangle
}

// Result holds the filled bins in creation order and the indices of
// rectangles that could not be placed.
type Result struct {
	Bins     [][]Packed
	Unplaced []int
}

// Packed returns the number of placed rectangles.
func (r Result) Placed() int {
	n := 0
	for _, b := range r.Bins {
		n += len(b)
	}
	return n
}

// Pack places sizes into at most maxBins bins of binW x binH. Larger
// rectangles are placed first; each goes into the first open bin with room,
// and a new bin is opened only when none has. Rectangles larger than an
// empty bin, or left over once maxBins is reached, are reported unplaced.
// A maxBins of zero or less means no limit.
func Pack(sizes []image.Point, binW, binH, maxBins int) Result {
	order := make([]int, len(sizes))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(area(sizes[b]), area(sizes[a]))
	})

	var (
		bins []*bin
		res  Result
	)
	for _, i := range order {
		s := sizes[i]
		if s.X <= 0 || s.Y <= 0 || s.X > binW || s.Y > binH {
			res.Unplaced = append(res.Unplaced, i)
			continue
		}

		placed := false
		for _, b := range bins {
			if r, ok := b.insert(s); ok {
				b.packed = append(b.packed, Packed{Index: i, Rect: r})
				placed = true
				break
			}
		}
		if placed {
			continue
		}
		if maxBins > 0 && len(bins) >= maxBins {
			res.Unplaced = append(res.Unplaced, i)
			continue
		}
		b := newBin(binW, binH)
		r, _ := b.insert(s)
		b.packed = append(b.packed, Packed{Index: i, Rect: r})
		bins = append(bins, b)
	}

	for _, b := range bins {
		res.Bins = append(res.Bins, b.packed)
	}
	slices.Sort(res.Unplaced)
	return res
}

type bin struct {
	free   []image.Rectangle
	packed []Packed
}

func newBin(w, h int) *bin {
	return &bin{free: []image.Rectangle{image.Rect(0, 0, w, h)}}
}

// insert places a rectangle of size s using best area fit and returns where
// it went.
func (b *bin) insert(s image.Point) (image.Rectangle, bool) {
	best := -1
	bestArea, bestShort := 0, 0
	for i, f := range b.free {
		if s.X > f.Dx() || s.Y > f.Dy() {
			continue
		}
		areaFit := area(f.Size()) - area(s)
		shortFit := min(f.Dx()-s.X, f.Dy()-s.Y)
		if best < 0 || areaFit < bestArea || (areaFit == bestArea && shortFit < bestShort) {
			best, bestArea, bestShort = i, areaFit, shortFit
		}
	}
	if best < 0 {
		return image.Rectangle{}, false
	}

	placed := image.Rectangle{Min: b.free[best].Min, Max: b.free[best].Min.Add(s)}
	b.split(placed)
	return placed, true
}

// split replaces every free rectangle overlapping placed by the maximal
// strips left around it.
func (b *bin) split(placed image.Rectangle) {
	var next []image.Rectangle
	for _, f := range b.free {
		if !f.Overlaps(placed) {
			next = append(next, f)
			continue
		}
		if placed.Min.X > f.Min.X {
			next = append(next, image.Rect(f.Min.X, f.Min.Y, placed.Min.X, f.Max.Y))
		}
		if placed.Max.X < f.Max.X {
			next = append(next, image.Rect(placed.Max.X, f.Min.Y, f.Max.X, f.Max.Y))
		}
		if placed.Min.Y > f.Min.Y {
			next = append(next, image.Rect(f.Min.X, f.Min.Y, f.Max.X, placed.Min.Y))
		}
		if placed.Max.Y < f.Max.Y {
			next = append(next, image.Rect(f.Min.X, placed.Max.Y, f.Max.X, f.Max.Y))
		}
	}
	b.free = pruneContained(next)
}

// pruneContained drops free rectangles that lie inside another one. Of two
// identical rectangles the first is kept.
func pruneContained(rects []image.Rectangle) []image.Rectangle {
	kept := make([]image.Rectangle, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i == j || !a.In(b) {
				continue
			}
			if a == b && j > i {
				continue
			}
			contained = true
			break
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}

func area(p image.Point) int { return p.X * p.Y }
