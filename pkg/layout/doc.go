// Package layout orders, scales and places catalogue items onto pages.
//
// # Strategies
//
// A [Strategy] computes positions only. Three are provided:
//
//   - [Grid]: rows of up to Cols items, pages of up to Rows rows, with
//     optional group dividers or page breaks between primary groups
//   - [Puzzle]: rectangle bin packing (see the binpack subpackage), one
//     bin per page
//   - [Masonry]: fixed-width columns filled shortest-first
//
// Every strategy writes to a [Surface]. render.Book is the surface that
// produces pages; [Plan] records the same calls so a layout can be cached
// and replayed later. [Tee] feeds both at once.
//
//	plan := new(layout.Plan)
//	stats, err := strategy.Place(ctx, items, cfg, layout.Tee(book, plan))
//
// An item that cannot fit an empty page is never dropped: it gets a page of
// its own, downscaled to the content area, at its position in the sequence.
//
// # Ordering and Scaling
//
// [Sort] applies a primary and a secondary key and tags items with their
// primary group, which drives group breaks. [Scale] resizes items in
// parallel; [OptimalScale] estimates a factor that fills pages.
package layout
