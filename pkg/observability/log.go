package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports pipeline and cache events as debug log lines.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks writing to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("trace")}
}

func (h *LogHooks) OnLoadStart(_ context.Context, dir string) {
	h.logger.Debug("load start", "dir", dir)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, dir string, loaded, skipped int, d time.Duration, err error) {
	h.logger.Debug("load done", "dir", dir, "loaded", loaded, "skipped", skipped, "took", d.Round(time.Millisecond), "err", err)
}

func (h *LogHooks) OnPlaceStart(_ context.Context, mode string, items int) {
	h.logger.Debug("place start", "mode", mode, "items", items)
}

func (h *LogHooks) OnPlaceComplete(_ context.Context, mode string, pages int, d time.Duration, err error) {
	h.logger.Debug("place done", "mode", mode, "pages", pages, "took", d.Round(time.Millisecond), "err", err)
}

func (h *LogHooks) OnExportStart(_ context.Context, format string, pages int) {
	h.logger.Debug("export start", "format", format, "pages", pages)
}

func (h *LogHooks) OnExportComplete(_ context.Context, format, path string, d time.Duration, err error) {
	h.logger.Debug("export done", "format", format, "path", path, "took", d.Round(time.Millisecond), "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
)
