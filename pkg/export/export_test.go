package export

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/tavola/pkg/catalog"
	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/render"
)

func solid(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 120, G: 80, B: 40, A: 255})
		}
	}
	return img
}

// book returns n pages, each with one stamped item.
func book(t *testing.T, n int) []*render.Page {
	t.Helper()
	b := render.NewBook(render.Size{Width: 200, Height: 300}, 10, nil)
	for i := range n {
		page := b.NewPage()
		it := catalog.New("sherd_"+string(rune('a'+i))+".png", solid(40, 30))
		if err := b.Stamp(render.Placement{Item: it, Page: page, Rect: image.Rect(20, 20, 60, 50)}); err != nil {
			t.Fatalf("Stamp() error = %v", err)
		}
	}
	return b.Pages
}

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	slices.Sort(names)
	return names
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"out.pdf":  FormatPDF,
		"out.JPG":  FormatJPEG,
		"out.jpeg": FormatJPEG,
		"out.png":  FormatPNG,
		"out.svg":  FormatSVG,
	}
	for path, want := range tests {
		got, err := FormatFor(path)
		if err != nil {
			t.Fatalf("FormatFor(%q) error = %v", path, err)
		}
		if got != want {
			t.Errorf("FormatFor(%q) = %q, want %q", path, got, want)
		}
	}

	if _, err := FormatFor("out.tiff"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("FormatFor(.tiff) code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFormat)
	}
}

func TestSaveSingleRaster(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"plate.png", "plate.jpg"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			out, err := Save(context.Background(), path, book(t, 1), Options{})
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if out != path {
				t.Errorf("Save() path = %q, want %q", out, path)
			}
			f, err := os.Open(out)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			cfg, _, err := image.DecodeConfig(f)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if cfg.Width != 200 || cfg.Height != 300 {
				t.Errorf("size = %dx%d, want 200x300", cfg.Width, cfg.Height)
			}
		})
	}
}

func TestSaveMultiRasterZips(t *testing.T) {
	dir := t.TempDir()
	out, err := Save(context.Background(), filepath.Join(dir, "plates.png"), book(t, 3), Options{})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if want := filepath.Join(dir, "plates.zip"); out != want {
		t.Errorf("Save() path = %q, want %q", out, want)
	}
	want := []string{"page_001.png", "page_002.png", "page_003.png"}
	if diff := cmp.Diff(want, zipNames(t, out)); diff != "" {
		t.Errorf("zip entries mismatch (-want +got):\n%s", diff)
	}
}

func TestSavePDF(t *testing.T) {
	dir := t.TempDir()
	out, err := Save(context.Background(), filepath.Join(dir, "plates.pdf"), book(t, 2), Options{DPI: 150, Title: "Test"})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF: %q", data[:min(8, len(data))])
	}
}

func TestWritePDFNoPages(t *testing.T) {
	var buf bytes.Buffer
	err := WritePDF(context.Background(), &buf, nil, Options{})
	if !errors.Is(err, errors.ErrCodeExport) {
		t.Errorf("WritePDF() = %v, want code %s", err, errors.ErrCodeExport)
	}
	if buf.Len() != 0 {
		t.Errorf("WritePDF() wrote %d bytes for no pages", buf.Len())
	}
}

func TestSaveSingleSVG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plate.svg")
	out, err := Save(context.Background(), path, book(t, 1), Options{})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if out != path {
		t.Errorf("Save() path = %q, want %q", out, path)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `href="images/img_001_sherd_a.png"`) {
		t.Errorf("svg does not reference the asset:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "images", "img_001_sherd_a.png")); err != nil {
		t.Errorf("asset not written: %v", err)
	}
}

func TestSaveMultiSVGZips(t *testing.T) {
	dir := t.TempDir()
	out, err := Save(context.Background(), filepath.Join(dir, "plates.svg"), book(t, 2), Options{RunID: "run-1"})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	want := []string{
		"README.txt",
		"images/img_001_sherd_a.png",
		"images/img_002_sherd_b.png",
		"page_001.svg",
		"page_002.svg",
	}
	if diff := cmp.Diff(want, zipNames(t, out)); diff != "" {
		t.Errorf("zip entries mismatch (-want +got):\n%s", diff)
	}
}

func TestSVGFallsBackToPNG(t *testing.T) {
	p := render.NewPage(0, 100, 100, 0)
	p.Add(render.ImageElement{Rect: image.Rect(0, 0, 10, 10), Href: "../escape.png", Name: "escape.png"})

	dir := t.TempDir()
	out, err := Save(context.Background(), filepath.Join(dir, "bad.svg"), []*render.Page{p}, Options{})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if want := filepath.Join(dir, "bad.png"); out != want {
		t.Errorf("Save() path = %q, want %q", out, want)
	}

	var buf bytes.Buffer
	good := book(t, 1)[0]
	good.Index = 1
	if err := WriteSVGZip(context.Background(), &buf, []*render.Page{p, good}, Options{}); err != nil {
		t.Fatalf("WriteSVGZip() error = %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	for _, want := range []string{"page_001.png", "page_002.svg", "README.txt"} {
		if !slices.Contains(names, want) {
			t.Errorf("zip missing %s, have %v", want, names)
		}
	}
}

func TestSaveRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	if _, err := Save(context.Background(), filepath.Join(dir, "plate"), book(t, 1), Options{}); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("no extension: code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidPath)
	}
	if _, err := Save(context.Background(), filepath.Join(dir, "plate.png"), nil, Options{}); !errors.Is(err, errors.ErrCodeExport) {
		t.Errorf("no pages: code = %v, want %v", errors.GetCode(err), errors.ErrCodeExport)
	}
}
