package layout

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tavola/pkg/catalog"
	"github.com/matzehuels/tavola/pkg/errors"
)

// MaxScale bounds the scale factor.
const MaxScale = 20

// ValidateScale rejects factors that are not positive, not finite or above
// MaxScale.
func ValidateScale(factor float64) error {
	if math.IsNaN(factor) || factor <= 0 || factor > MaxScale {
		return errors.New(errors.ErrCodeInvalidScale, "scale factor %v out of range (0, %d]", factor, MaxScale)
	}
	return nil
}

// Scale resizes every item by factor with Lanczos resampling, preserving
// order. A factor of exactly 1 returns items unchanged.
func Scale(ctx context.Context, items []catalog.Item, factor float64) ([]catalog.Item, error) {
	if err := ValidateScale(factor); err != nil {
		return nil, err
	}
	if factor == 1 {
		return items, nil
	}

	out := make([]catalog.Item, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, it := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w := max(1, int(math.Floor(float64(it.Width())*factor)))
			h := max(1, int(math.Floor(float64(it.Height())*factor)))
			out[i] = it.Resized(w, h)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
