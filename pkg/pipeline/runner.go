package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/tavola/pkg/buildinfo"
	"github.com/matzehuels/tavola/pkg/cache"
	"github.com/matzehuels/tavola/pkg/catalog"
	"github.com/matzehuels/tavola/pkg/errors"
	"github.com/matzehuels/tavola/pkg/export"
	"github.com/matzehuels/tavola/pkg/layout"
	"github.com/matzehuels/tavola/pkg/observability"
	"github.com/matzehuels/tavola/pkg/render"
)

// planKeyType labels plan entries in cache hooks.
const planKeyType = "plan"

// Runner encapsulates pipeline execution with plan caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, keys are scoped to the running release.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Name+":"+buildinfo.Version+":")
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute loads, arranges, places and annotates. The pages in the result
// are ready for Export.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	res := &Result{RunID: uuid.NewString()}
	opts.Logger = opts.Logger.With("run", res.RunID[:8])
	logger := opts.Logger

	// Stage 1: Load
	loadStart := time.Now()
	items, table, err := r.Load(ctx, &opts, res)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	res.Stats.LoadTime = time.Since(loadStart)
	inputs := Fingerprint(items)

	// Stage 2: Arrange
	items, strategy, scale, err := r.Arrange(ctx, &opts, items, table)
	if err != nil {
		return nil, fmt.Errorf("arrange: %w", err)
	}
	res.Items = items
	res.Scale = scale

	// Stage 3: Place
	if opts.Cacheable() {
		res.CacheInfo.Key = r.Keyer.PlanKey(inputs, opts.PlanKeyOpts(scale))
	} else {
		res.CacheInfo.Bypassed = true
		logger.Debug("plan cache bypassed", "reason", "random sort without seed")
	}
	placeStart := time.Now()
	book, plan, hit, err := r.Place(ctx, &opts, strategy, items, res.CacheInfo.Key)
	if err != nil {
		return nil, fmt.Errorf("place: %w", err)
	}
	res.Stats.PlaceTime = time.Since(placeStart)
	res.CacheInfo.PlanHit = hit
	res.Plan = plan

	// Stage 4: Annotate
	overlay := opts.Overlay(scale)
	for _, p := range book.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := overlay.Apply(p); err != nil {
			return nil, fmt.Errorf("annotate page %d: %w", p.Index+1, err)
		}
	}
	res.Pages = book.Pages

	res.Coverage = layout.Verify(items, plan)
	if !res.Coverage.Complete() {
		logger.Warn("not every image was placed exactly once",
			"expected", res.Coverage.Expected,
			"missing", res.Coverage.Missing,
			"duplicated", res.Coverage.Duplicated)
	}

	ps := plan.Stats()
	res.Stats.Items = len(items)
	res.Stats.Pages = ps.Pages
	res.Stats.Dividers = ps.Dividers
	res.Stats.Fallbacks = ps.Fallbacks
	res.Suggestions = layout.Suggest(opts.PageConfig(), layout.Summary{
		Mode:      opts.LayoutMode(),
		Scale:     scale,
		Items:     len(items),
		Pages:     ps.Pages,
		Fallbacks: len(ps.Fallbacks),
		Rows:      opts.Rows,
		Cols:      opts.Cols,
		Columns:   opts.MasonryColumns,
	})
	res.Stats.TotalTime = time.Since(start)

	logger.Info("layout complete",
		"items", len(items),
		"pages", ps.Pages,
		"fallbacks", len(ps.Fallbacks),
		"cached", hit,
		"duration", res.Stats.TotalTime)
	return res, nil
}

// Load decodes the input folder and attaches metadata. It returns the
// items and the metadata table (nil when none was given). Skipped files are
// recorded on res.
func (r *Runner) Load(ctx context.Context, opts *Options, res *Result) ([]catalog.Item, *catalog.Table, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Input)
	start := time.Now()

	loaded, err := catalog.LoadDir(ctx, opts.Input, opts.Logger)
	if err != nil {
		hooks.OnLoadComplete(ctx, opts.Input, 0, 0, time.Since(start), err)
		return nil, nil, err
	}
	res.Skipped = loaded.Skipped
	hooks.OnLoadComplete(ctx, opts.Input, len(loaded.Items), len(loaded.Skipped), time.Since(start), nil)

	if len(loaded.Items) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "no images could be loaded from %s", opts.Input)
	}

	items := loaded.Items
	var table *catalog.Table
	if opts.Metadata != "" {
		table, err = catalog.LoadTable(opts.Metadata)
		switch {
		case errors.Is(err, errors.ErrCodeFileNotFound), errors.Is(err, errors.ErrCodeInvalidFormat):
			return nil, nil, err
		case err != nil:
			opts.Logger.Warn("could not read metadata, continuing without it", "file", opts.Metadata, "err", err)
			table = nil
		default:
			items = table.Apply(items)
			opts.Logger.Info("loaded metadata", "file", opts.Metadata, "rows", table.Len(), "columns", len(table.Columns))
		}
	}
	return items, table, nil
}

// Arrange sorts, scales and captions items and returns them with the
// strategy to place them and the scale factor applied.
func (r *Runner) Arrange(ctx context.Context, opts *Options, items []catalog.Item, table *catalog.Table) ([]catalog.Item, layout.Strategy, float64, error) {
	var sortOpts []layout.SortOption
	if opts.Seed != nil {
		sortOpts = append(sortOpts, layout.WithSeed(*opts.Seed))
	}
	if !layout.IsBuiltinKey(opts.SortPrimary) && !table.HasColumn(opts.SortPrimary) {
		opts.Logger.Warn("sort key is not a metadata column, sorting alphabetically", "key", opts.SortPrimary)
	}
	items = layout.Sort(items, opts.SortPrimary, opts.SortSecondary, sortOpts...)

	cfg := opts.PageConfig()
	scale := opts.Scale
	if opts.ImagesPerPage > 0 {
		optimal := layout.OptimalScale(items, cfg, opts.Strategy(nil), opts.ImagesPerPage)
		scale = min(scale*optimal, layout.MaxScale)
		opts.Logger.Info("computed scale for images per page", "images_per_page", opts.ImagesPerPage, "optimal", optimal, "scale", scale)
	}

	items, err := layout.Scale(ctx, items, scale)
	if err != nil {
		return nil, nil, 0, err
	}

	var columns []string
	if table != nil {
		columns = table.Columns
	}
	composer := opts.Composer(columns)
	strategy := opts.Strategy(composer)

	if m, ok := strategy.(*layout.Masonry); ok {
		if items, err = m.Prepare(ctx, items, cfg); err != nil {
			return nil, nil, 0, err
		}
	} else if composer != nil {
		if items, err = composer.ComposeAll(ctx, items); err != nil {
			return nil, nil, 0, err
		}
	}

	opts.Logger.Debug("arranged items", "items", len(items), "mode", strategy.Mode(), "scale", scale, "captions", composer != nil)
	return items, strategy, scale, nil
}

// Place runs the strategy onto a fresh book, or replays the cached plan
// under key. An empty key disables the cache.
func (r *Runner) Place(ctx context.Context, opts *Options, strategy layout.Strategy, items []catalog.Item, key string) (*render.Book, *layout.Plan, bool, error) {
	newBook := func() *render.Book {
		return render.NewBook(opts.Size(), opts.Margin, opts.FontResolver())
	}

	if key != "" && !opts.Refresh {
		if plan, ok := r.cachedPlan(ctx, opts.Logger, key, items); ok {
			book := newBook()
			err := plan.Replay(items, book)
			if err == nil {
				opts.Logger.Info("reused cached layout", "pages", plan.Pages)
				return book, plan, true, nil
			}
			opts.Logger.Warn("cached layout could not be replayed, recomputing", "err", err)
		}
	}

	hooks := observability.Pipeline()
	mode := string(strategy.Mode())
	hooks.OnPlaceStart(ctx, mode, len(items))
	start := time.Now()

	book, plan := newBook(), &layout.Plan{}
	stats, err := strategy.Place(ctx, items, opts.PageConfig(), layout.Tee(book, plan))
	hooks.OnPlaceComplete(ctx, mode, stats.Pages, time.Since(start), err)
	if err != nil {
		return nil, nil, false, err
	}
	plan.Fallbacks = stats.Fallbacks

	if key != "" {
		r.storePlan(ctx, opts.Logger, key, plan)
	}
	return book, plan, false, nil
}

func (r *Runner) cachedPlan(ctx context.Context, logger *log.Logger, key string, items []catalog.Item) (*layout.Plan, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("plan cache unavailable", "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, planKeyType)
		return nil, false
	}

	var plan layout.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		logger.Debug("discarding unreadable cached plan", "err", err)
		observability.Cache().OnCacheMiss(ctx, planKeyType)
		return nil, false
	}
	if cov := layout.Verify(items, &plan); !cov.Complete() {
		logger.Debug("discarding cached plan that does not cover the inputs", "missing", len(cov.Missing))
		observability.Cache().OnCacheMiss(ctx, planKeyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, planKeyType)
	return &plan, true
}

func (r *Runner) storePlan(ctx context.Context, logger *log.Logger, key string, plan *layout.Plan) {
	data, err := json.Marshal(plan)
	if err != nil {
		logger.Warn("could not encode layout for cache", "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		logger.Warn("could not cache layout", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, planKeyType, len(data))
}

// Export writes the result pages to opts.Output and returns the path
// actually written.
func (r *Runner) Export(ctx context.Context, res *Result, opts Options) (string, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return "", err
	}
	if opts.Output == "" {
		return "", errors.New(errors.ErrCodeInvalidPath, "output path is required")
	}
	format, err := export.FormatFor(opts.Output)
	if err != nil {
		return "", err
	}

	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, string(format), len(res.Pages))
	start := time.Now()
	path, err := export.Save(ctx, opts.Output, res.Pages, opts.ExportOptions(res.RunID))
	hooks.OnExportComplete(ctx, string(format), path, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return path, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
