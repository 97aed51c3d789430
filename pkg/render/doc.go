// Package render turns placements into pages held in two synchronized forms:
// a flattened raster composite and an editable vector document.
//
// # Dual Rendering
//
// [Book] is the single sink every placement strategy writes to. [Book.Stamp]
// draws the baked item pixels onto the page raster and, from the same
// rectangle, emits vector elements: the clean photograph as an
// [ImageElement] referencing an external [Asset], and the caption lines as a
// [TextElement] that stays editable in vector tools.
//
//	book := render.NewBook(size, margin, fonts.NewResolver())
//	page := book.NewPage()
//	err := book.Stamp(render.Placement{Item: it, Page: page, Rect: r})
//
// # Captions
//
// [Composer] bakes caption text below an item image and records where the
// image and text sit inside the composite (see catalog.Caption), which is
// what lets the sink split them again for SVG.
//
// # Annotations
//
// [Overlay] adds a scale bar, a table number and a margin border per page.
// Each annotation is computed once and drawn into both renderings.
//
// # Output
//
// [Page.SVG] serializes the vector side with images, captions and
// annotations in separate groups. The raster is available through
// [Page.Image]; encoding it is left to the export package.
package render
