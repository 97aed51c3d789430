package export

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"

	"github.com/matzehuels/tavola/pkg/buildinfo"
	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/render"
)

// WritePDF writes all pages into one PDF. Page sizes are converted from
// pixels to points at the export DPI, so a 2480x3508 page at 300 dpi
// prints as A4.
func WritePDF(ctx context.Context, w io.Writer, pages []*render.Page, opts Options) error {
	if len(pages) == 0 {
		return errors.New(errors.ErrCodeExport, "nothing to export: no pages")
	}
	dpi := float64(opts.dpi())
	toPt := func(px int) float64 { return float64(px) * 72 / dpi }

	first := pages[0]
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: toPt(first.Width), Ht: toPt(first.Height)},
	})
	pdf.SetCreator(buildinfo.Creator(), true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	imgOpts := gofpdf.ImageOptions{ImageType: "JPG"}
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, p.Image(), imaging.JPEG, imaging.JPEGQuality(opts.quality())); err != nil {
			return errors.Wrap(errors.ErrCodeExport, err, "encode page %d", p.Index+1)
		}

		// "P" keeps the size as given; "L" would swap it.
		wd, ht := toPt(p.Width), toPt(p.Height)
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: wd, Ht: ht})

		name := fmt.Sprintf("page-%d", p.Index+1)
		pdf.RegisterImageOptionsReader(name, imgOpts, &buf)
		pdf.ImageOptions(name, 0, 0, wd, ht, false, imgOpts, 0, "")
		if pdf.Err() {
			return errors.Wrap(errors.ErrCodeExport, pdf.Error(), "pdf page %d", p.Index+1)
		}
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "write pdf")
	}
	return nil
}
