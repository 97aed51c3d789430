package catalog

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	_ "golang.org/x/image/webp"

	"github.com/matzehuels/tavola/pkg/errors"
)

// SupportedExtensions lists the image file extensions LoadDir picks up.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tif", ".tiff", ".webp"}

// IsSupported reports whether name has a supported image extension.
func IsSupported(name string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(name)))
}

// Skip records an input file that could not be decoded.
type Skip struct {
	Name string
	Err  error
}

// Load is the result of scanning an input folder.
type Load struct {
	Items   []Item
	Skipped []Skip
}

// LoadDir decodes every supported image in dir, ordered by filename.
//
// A missing folder is a configuration error. A single file that fails to
// decode is skipped with a warning and reported in Load.Skipped; the rest of
// the batch proceeds. Decoding runs on a bounded worker pool.
func LoadDir(ctx context.Context, dir string, logger *log.Logger) (*Load, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInputNotFound, "input folder %q does not exist", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInputNotFound, err, "read %s", dir)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && IsSupported(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	logger.Info("loading images", "dir", dir, "files", len(names))

	items := make([]*Item, len(names))
	errs := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			it, err := loadFile(filepath.Join(dir, name))
			if err != nil {
				errs[i] = err
				return nil
			}
			items[i] = &it
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Load{}
	for i, name := range names {
		if errs[i] != nil {
			logger.Warn("could not load image, skipping", "name", name, "err", errs[i])
			res.Skipped = append(res.Skipped, Skip{Name: name, Err: errs[i]})
			continue
		}
		res.Items = append(res.Items, *items[i])
	}

	logger.Info("loaded images", "count", len(res.Items), "skipped", len(res.Skipped))
	return res, nil
}

func loadFile(path string) (Item, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return Item{}, errors.Wrap(errors.ErrCodeImageLoad, err, "decode %s", filepath.Base(path))
	}
	it := New(filepath.Base(path), img)
	it.Source = path
	if fi, err := os.Stat(path); err == nil {
		it.ModTime = fi.ModTime()
	}
	return it, nil
}
