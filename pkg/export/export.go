// Package export writes rendered pages to disk.
//
// The format follows the output extension:
//
//   - .pdf: one PDF, each page embedded as a JPEG raster at the page DPI
//   - .jpg, .jpeg, .png: the page raster; several pages go into a ZIP of
//     page_001.ext, page_002.ext, ...
//   - .svg: the editable vector page with its images in an images/ folder
//     next to it; several pages go into a ZIP with a shared images/ folder
//     and a README.txt
//
// A page whose SVG cannot be produced is written as a PNG raster instead and
// a warning is logged, so one bad page never loses the others.
package export

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/render"
)

// Format is an output format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatJPEG Format = "jpg"
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
)

// DefaultJPEGQuality is used when Options.Quality is unset.
const DefaultJPEGQuality = 95

// Options configures export.
type Options struct {
	DPI     int
	Quality int // JPEG quality, 1-100
	Title   string
	RunID   string // written to archive notes
	SVG     []render.SVGOption
	Logger  *log.Logger
}

func (o Options) dpi() int {
	if o.DPI <= 0 {
		return render.DefaultDPI
	}
	return o.DPI
}

func (o Options) quality() int {
	if o.Quality <= 0 || o.Quality > 100 {
		return DefaultJPEGQuality
	}
	return o.Quality
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return o.Logger
}

// FormatFor maps an output path to its format.
func FormatFor(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return FormatPDF, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".png":
		return FormatPNG, nil
	case ".svg":
		return FormatSVG, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q (use .pdf, .jpg, .png or .svg)", ext)
	}
}

// Save writes pages to path and returns the file actually written, which
// is a .zip next to path when a raster or SVG export spans several pages.
func Save(ctx context.Context, path string, pages []*render.Page, opts Options) (string, error) {
	if err := errors.ValidateOutputPath(path); err != nil {
		return "", err
	}
	format, err := FormatFor(path)
	if err != nil {
		return "", err
	}
	if len(pages) == 0 {
		return "", errors.New(errors.ErrCodeExport, "nothing to export: no pages")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", errors.Wrap(errors.ErrCodeExport, err, "create %s", dir)
		}
	}

	out := path
	if len(pages) > 1 && format != FormatPDF {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".zip"
	}

	switch {
	case format == FormatPDF:
		err = writeFile(out, func(w io.Writer) error { return WritePDF(ctx, w, pages, opts) })
	case format == FormatSVG && len(pages) == 1:
		out, err = saveSVG(path, pages[0], opts)
	case format == FormatSVG:
		err = writeFile(out, func(w io.Writer) error { return WriteSVGZip(ctx, w, pages, opts) })
	case len(pages) == 1:
		err = writeFile(out, func(w io.Writer) error { return WriteRaster(w, pages[0], format, opts) })
	default:
		err = writeFile(out, func(w io.Writer) error { return WriteRasterZip(ctx, w, pages, format, opts) })
	}
	if err != nil {
		return "", err
	}

	opts.logger().Info("exported", "path", out, "pages", len(pages), "format", format)
	return out, nil
}

// writeFile writes through a temporary file renamed into place, so a failed
// export never leaves a truncated file behind.
func writeFile(path string, fn func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "create %s", path)
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "rename %s", path)
	}
	return nil
}
