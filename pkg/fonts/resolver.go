package fonts

import (
	"math"
	"os"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/matzehuels/tavola/pkg/errors"
)

// Resolver turns a point size into a drawable face. Renderers depend on this
// interface only and never touch the filesystem themselves.
type Resolver interface {
	Resolve(size float64) (font.Face, error)
}

// Option configures a Faces resolver.
type Option func(*Faces)

// WithSystemFont prefers the first installed font among names (file names
// such as "Arial.ttf"). Without names, DefaultSystemFonts is probed.
func WithSystemFont(names ...string) Option {
	return func(f *Faces) {
		if len(names) == 0 {
			names = DefaultSystemFonts
		}
		f.probe = names
	}
}

// WithFontFile loads the font from an explicit TrueType file.
func WithFontFile(path string) Option {
	return func(f *Faces) { f.file = path }
}

// Faces is the default Resolver. Faces are cached per size; a returned face
// must not be used from several goroutines at once.
type Faces struct {
	probe []string
	file  string

	once sync.Once
	font *truetype.Font
	name string
	err  error

	mu    sync.Mutex
	cache map[float64]font.Face
}

// NewResolver creates a resolver backed by the embedded Go font unless an
// option selects another source.
func NewResolver(opts ...Option) *Faces {
	f := &Faces{cache: make(map[float64]font.Face)}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Resolve returns the face for size points at 72 dpi, so one point maps to
// one pixel of the page canvas.
func (f *Faces) Resolve(size float64) (font.Face, error) {
	if size <= 0 || math.IsNaN(size) {
		return nil, errors.New(errors.ErrCodeFont, "invalid font size %v", size)
	}
	f.once.Do(f.load)
	if f.err != nil {
		return nil, f.err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.cache[size]; ok {
		return face, nil
	}
	face := truetype.NewFace(f.font, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	f.cache[size] = face
	return face, nil
}

// Name reports which font backs the resolver: a file path, or "goregular"
// for the embedded font.
func (f *Faces) Name() string {
	f.once.Do(f.load)
	return f.name
}

func (f *Faces) load() {
	if f.file != "" {
		ttf, err := f.parseFile(f.file)
		if err != nil {
			f.err = errors.Wrap(errors.ErrCodeFont, err, "load font %s", f.file)
			return
		}
		f.font, f.name = ttf, f.file
		return
	}
	for _, name := range f.probe {
		path, err := findfont.Find(name)
		if err != nil {
			continue
		}
		if ttf, err := f.parseFile(path); err == nil {
			f.font, f.name = ttf, path
			return
		}
	}
	f.font, f.name = Regular(), "goregular"
}

func (f *Faces) parseFile(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return truetype.Parse(data)
}
