package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/tavola/pkg/buildinfo"
	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/render"
)

// saveSVG writes a single page SVG with its assets in an images/ folder
// next to it. If the SVG cannot be produced, the raster is saved as PNG.
func saveSVG(path string, p *render.Page, opts Options) (string, error) {
	data, err := p.SVG(opts.SVG...)
	if err != nil {
		out := strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
		opts.logger().Warn("svg export failed, writing raster instead", "page", p.Index+1, "path", out, "err", err)
		return out, writeFile(out, func(w io.Writer) error { return WriteRaster(w, p, FormatPNG, opts) })
	}

	dir := filepath.Dir(path)
	for _, a := range p.Assets {
		dst := filepath.Join(dir, filepath.FromSlash(a.Key))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return "", errors.Wrap(errors.ErrCodeExport, err, "create asset folder")
		}
		if err := writeFile(dst, func(w io.Writer) error { return encodeAsset(w, a) }); err != nil {
			return "", err
		}
	}
	if err := writeFile(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}); err != nil {
		return "", err
	}
	return path, nil
}

// WriteSVGZip writes one SVG per page plus a shared images/ folder and a
// README.txt into a ZIP. Pages whose SVG fails are stored as PNG.
func WriteSVGZip(ctx context.Context, w io.Writer, pages []*render.Page, opts Options) error {
	zw := zip.NewWriter(w)

	var fallbacks []string
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := p.SVG(opts.SVG...)
		if err != nil {
			name := pageName(p, "png")
			opts.logger().Warn("svg export failed, writing raster instead", "page", p.Index+1, "file", name, "err", err)
			f, zerr := zw.Create(name)
			if zerr != nil {
				return errors.Wrap(errors.ErrCodeExport, zerr, "zip %s", name)
			}
			if err := WriteRaster(f, p, FormatPNG, opts); err != nil {
				return err
			}
			fallbacks = append(fallbacks, name)
			continue
		}

		f, err := zw.Create(pageName(p, "svg"))
		if err != nil {
			return errors.Wrap(errors.ErrCodeExport, err, "zip page %d", p.Index+1)
		}
		if _, err := f.Write(data); err != nil {
			return errors.Wrap(errors.ErrCodeExport, err, "zip page %d", p.Index+1)
		}
		for _, a := range p.Assets {
			af, err := zw.Create(a.Key)
			if err != nil {
				return errors.Wrap(errors.ErrCodeExport, err, "zip %s", a.Key)
			}
			if err := encodeAsset(af, a); err != nil {
				return err
			}
		}
	}

	rf, err := zw.Create("README.txt")
	if err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "zip README.txt")
	}
	if _, err := io.WriteString(rf, readme(len(pages), fallbacks, opts)); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "zip README.txt")
	}

	if err := zw.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "finish zip")
	}
	return nil
}

func encodeAsset(w io.Writer, a render.Asset) error {
	if err := imaging.Encode(w, a.Image, imaging.PNG); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "encode %s", a.Key)
	}
	return nil
}

func readme(pages int, fallbacks []string, opts Options) string {
	var b strings.Builder
	title := opts.Title
	if title == "" {
		title = "Catalogue plates"
	}
	fmt.Fprintf(&b, "%s\n\n", title)
	fmt.Fprintf(&b, "Pages: %d\n", pages)
	fmt.Fprintf(&b, "Created: %s by %s\n", time.Now().Format(time.DateTime), buildinfo.Creator())
	if opts.RunID != "" {
		fmt.Fprintf(&b, "Run: %s\n", opts.RunID)
	}
	b.WriteString(`
Each page_NNN.svg references its photographs in the images/ folder.
Extract the whole archive and keep images/ next to the SVG files, then
open a page in Inkscape, Illustrator or Affinity Designer. Images,
captions and annotations sit on separate layers; caption text stays
editable.
`)
	if len(fallbacks) > 0 {
		fmt.Fprintf(&b, "\nThese pages could not be written as SVG and were saved as PNG: %s\n", strings.Join(fallbacks, ", "))
	}
	return b.String()
}
