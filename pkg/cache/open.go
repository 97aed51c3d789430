package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// redisPrefix namespaces plan entries in a shared Redis.
const redisPrefix = "tavola:"

// DefaultDir returns the per-user cache directory.
func DefaultDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "tavola", "plans")
	}
	return filepath.Join(os.TempDir(), "tavola", "plans")
}

// Open returns the cache described by url:
//   - "": a FileCache in DefaultDir
//   - "none" or "off": a NullCache
//   - "redis://..." or "rediss://...": a RedisCache
//   - "file://path" or a plain path: a FileCache in that directory
func Open(ctx context.Context, url string) (Cache, error) {
	switch {
	case url == "":
		return NewFileCache(DefaultDir())
	case url == "none" || url == "off":
		return NewNullCache(), nil
	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		return NewRedisCache(ctx, url, redisPrefix)
	default:
		return NewFileCache(strings.TrimPrefix(url, "file://"))
	}
}
