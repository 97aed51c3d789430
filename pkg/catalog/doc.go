// Package catalog holds the inputs of a layout run: decoded photographs and
// the metadata table describing them.
//
// # Items
//
// [Item] is an immutable value. Pipeline stages never mutate an item in
// place; they call [Item.WithImage], [Item.WithCaption], [Item.Resized] and
// friends and keep the returned copy. Once a caption is baked on, the
// original photograph survives untouched in [Caption.Clean] so the vector
// renderer can reference it as a separate asset.
//
// # Loading
//
// [LoadDir] scans a folder for supported images and decodes them in
// parallel. Files that fail to decode are skipped and reported, never fatal.
//
// [LoadTable] reads the metadata table from CSV, JSON or TOML. The first
// CSV column (or the table key) is the image filename; lookups also match
// the filename without its extension.
//
//	load, err := catalog.LoadDir(ctx, "photos/", logger)
//	table, err := catalog.LoadTable("sherds.csv")
//	items := table.Apply(load.Items)
package catalog
