// Package legacyjson serves the older JSON frozen-graph call shape. The
// payload is the same model.json document the modern path reads; the result
// is relabeled to the legacy format tag without transformation.
package legacyjson

import (
	"context"

	"github.com/mturchin/tfjs-converter/internal/backend"
	"github.com/mturchin/tfjs-converter/internal/backend/graphjson"
	"github.com/mturchin/tfjs-converter/internal/graph"
	"github.com/mturchin/tfjs-converter/internal/locator"
)

// Backend implements backend.GraphBackend for the legacy JSON shape.
type Backend struct {
	modern *graphjson.Backend
}

// NewBackend creates a legacy-json backend delegating to the modern loader.
func NewBackend() *Backend {
	return &Backend{modern: graphjson.NewBackend()}
}

// Kind returns the locator kind this backend handles.
func (b *Backend) Kind() locator.Kind {
	return locator.KindLegacyJSON
}

// Load delegates to the modern loader and relabels the result.
func (b *Backend) Load(ctx context.Context, req *backend.Request) (*graph.Model, error) {
	model, err := b.modern.Load(ctx, req)
	if err != nil {
		return nil, err
	}
	return model.Relabel(graph.FormatFrozenModel), nil
}
