package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/render"
)

// WriteRaster encodes the page raster as JPEG or PNG.
func WriteRaster(w io.Writer, p *render.Page, format Format, opts Options) error {
	var err error
	switch format {
	case FormatJPEG:
		err = imaging.Encode(w, p.Image(), imaging.JPEG, imaging.JPEGQuality(opts.quality()))
	case FormatPNG:
		err = imaging.Encode(w, p.Image(), imaging.PNG)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "%s is not a raster format", format)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "encode page %d", p.Index+1)
	}
	return nil
}

// WriteRasterZip writes every page raster into a ZIP as page_NNN.ext.
func WriteRasterZip(ctx context.Context, w io.Writer, pages []*render.Page, format Format, opts Options) error {
	zw := zip.NewWriter(w)
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := zw.Create(pageName(p, string(format)))
		if err != nil {
			return errors.Wrap(errors.ErrCodeExport, err, "zip page %d", p.Index+1)
		}
		if err := WriteRaster(f, p, format, opts); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "finish zip")
	}
	return nil
}

func pageName(p *render.Page, ext string) string {
	return fmt.Sprintf("page_%03d.%s", p.Index+1, ext)
}
