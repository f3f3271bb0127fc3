package weights

import (
	"context"
	"fmt"
	"strings"
)

// FetchFunc retrieves the raw bytes behind a resolved shard location.
type FetchFunc func(ctx context.Context, location string) ([]byte, error)

// ResolvePath joins a shard path from the manifest with the directory the
// manifest lives in. Absolute URLs and absolute paths pass through untouched.
func ResolvePath(baseDir, path string) string {
	if strings.Contains(path, "://") || strings.HasPrefix(path, "/") {
		return path
	}
	if baseDir == "" {
		return path
	}
	return strings.TrimSuffix(baseDir, "/") + "/" + path
}

// LoadGroups fetches every shard named by the manifest, in order, and returns
// their concatenation. Shard paths are resolved relative to baseDir. onProgress
// (optional) observes the fraction of shards fetched so far.
func LoadGroups(ctx context.Context, baseDir string, m Manifest, fetch FetchFunc, onProgress func(float64)) ([]byte, error) {
	paths := m.Paths()
	if len(paths) == 0 {
		return nil, ErrEmptyManifest
	}

	var data []byte
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		shard, err := fetch(ctx, ResolvePath(baseDir, path))
		if err != nil {
			return nil, fmt.Errorf("weights: fetching shard %q: %w", path, err)
		}
		data = append(data, shard...)

		if onProgress != nil {
			onProgress(float64(i+1) / float64(len(paths)))
		}
	}

	return data, nil
}
