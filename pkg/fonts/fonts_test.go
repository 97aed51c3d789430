package fonts

import (
	"path/filepath"
	"testing"

	"github.com/matzehuels/tavola/pkg/errors"
)

func TestEmbeddedFont(t *testing.T) {
	if Regular() == nil {
		t.Fatal("embedded font should parse")
	}
}

func TestResolveCachesPerSize(t *testing.T) {
	r := NewResolver()
	a, err := r.Resolve(12)
	if err != nil {
		t.Fatalf("Resolve(12): %v", err)
	}
	b, _ := r.Resolve(12)
	if a != b {
		t.Error("Resolve should return the cached face for the same size")
	}
	c, _ := r.Resolve(18)
	if a == c {
		t.Error("different sizes should yield different faces")
	}
	if got := r.Name(); got != "goregular" {
		t.Errorf("Name() = %q, want goregular", got)
	}
}

func TestResolveFaceMetrics(t *testing.T) {
	r := NewResolver()
	small, _ := r.Resolve(10)
	large, _ := r.Resolve(40)
	if small.Metrics().Height >= large.Metrics().Height {
		t.Errorf("10pt height %v should be below 40pt height %v",
			small.Metrics().Height, large.Metrics().Height)
	}
}

func TestResolveInvalidSize(t *testing.T) {
	for _, size := range []float64{0, -3} {
		if _, err := NewResolver().Resolve(size); !errors.Is(err, errors.ErrCodeFont) {
			t.Errorf("Resolve(%v) code = %v, want %v", size, errors.GetCode(err), errors.ErrCodeFont)
		}
	}
}

func TestSystemFontFallsBackToEmbedded(t *testing.T) {
	r := NewResolver(WithSystemFont("definitely-not-installed-4711.ttf"))
	if _, err := r.Resolve(12); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := r.Name(); got != "goregular" {
		t.Errorf("Name() = %q, want goregular", got)
	}
}

func TestFontFileMissing(t *testing.T) {
	r := NewResolver(WithFontFile(filepath.Join(t.TempDir(), "none.ttf")))
	if _, err := r.Resolve(12); !errors.Is(err, errors.ErrCodeFont) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeFont)
	}
}
