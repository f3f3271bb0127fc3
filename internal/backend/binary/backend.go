// Package binary loads the legacy binary frozen-graph format: a serialized
// GraphDef plus a companion JSON weight manifest living next to it.
package binary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mturchin/tfjs-converter/internal/backend"
	"github.com/mturchin/tfjs-converter/internal/graph"
	"github.com/mturchin/tfjs-converter/internal/iohandler"
	"github.com/mturchin/tfjs-converter/internal/locator"
	"github.com/mturchin/tfjs-converter/internal/weights"
	"github.com/mturchin/tfjs-converter/internal/xfs"
)

// Backend implements backend.GraphBackend for the binary frozen graph.
type Backend struct{}

// NewBackend creates a binary frozen-graph backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Kind returns the locator kind this backend handles.
func (b *Backend) Kind() locator.Kind {
	return locator.KindBinary
}

// Load fetches the GraphDef and the weight manifest, then every shard the
// manifest names, and assembles the model.
func (b *Backend) Load(ctx context.Context, req *backend.Request) (*graph.Model, error) {
	fetch := fetchFuncFor(req)

	raw, err := fetch(ctx, req.Locator.URL)
	if err != nil {
		return nil, err
	}

	info, err := graph.ParseGraphDef(raw)
	if err != nil {
		return nil, fmt.Errorf("binary: %s: %w", req.Locator.URL, err)
	}

	manifestRaw, err := fetch(ctx, req.Locator.ManifestURL)
	if err != nil {
		return nil, err
	}

	manifest, err := weights.DecodeManifest(manifestRaw)
	if err != nil {
		return nil, fmt.Errorf("binary: %s: %w", req.Locator.ManifestURL, err)
	}

	baseDir := dirOf(req.Locator.ManifestURL)
	data, err := weights.LoadGroups(ctx, baseDir, manifest, fetch, req.OnProgress)
	if err != nil {
		return nil, err
	}

	return &graph.Model{
		Format:      graph.FormatFrozenModel,
		Source:      req.Locator.URL,
		Topology:    raw,
		GraphDef:    info,
		WeightSpecs: manifest.Specs(),
		WeightData:  data,
	}, nil
}

// fetchFuncFor returns a byte fetcher matching the locator's transport: the
// filesystem for local paths, HTTP otherwise.
func fetchFuncFor(req *backend.Request) weights.FetchFunc {
	if xfs.IsLocalPath(req.Locator.URL) {
		return func(ctx context.Context, location string) ([]byte, error) {
			path := strings.TrimPrefix(location, "file://")
			data, err := os.ReadFile(filepath.FromSlash(path))
			if err != nil {
				return nil, fmt.Errorf("binary: reading %s: %w", path, err)
			}
			return data, nil
		}
	}

	fetcher := iohandler.NewFetcher(req.RequestOptions, req.Client)
	return fetcher.Fetch
}

func dirOf(url string) string {
	idx := strings.LastIndex(url, "/")
	if idx < 0 {
		return ""
	}
	return url[:idx]
}
