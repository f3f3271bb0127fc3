// Package graphjson loads the current model.json graph format. It is the
// default, forward-looking path and the only one that accepts an abstract
// load handler in place of a URL.
package graphjson

import (
	"context"

	"github.com/mturchin/tfjs-converter/internal/backend"
	"github.com/mturchin/tfjs-converter/internal/graph"
	"github.com/mturchin/tfjs-converter/internal/iohandler"
	"github.com/mturchin/tfjs-converter/internal/locator"
	"github.com/mturchin/tfjs-converter/internal/xfs"
)

// Backend implements backend.GraphBackend for the model.json format.
type Backend struct{}

// NewBackend creates a graph-json backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Kind returns the locator kind this backend handles.
func (b *Backend) Kind() locator.Kind {
	return locator.KindGraphJSON
}

// Load resolves the artifacts through the appropriate handler and assembles
// the model.
func (b *Backend) Load(ctx context.Context, req *backend.Request) (*graph.Model, error) {
	handler := req.Locator.Handler
	source := req.Locator.URL
	if handler == nil {
		handler = handlerFor(source, req)
	} else {
		source = "handler"
	}

	artifacts, err := handler.Load(ctx)
	if err != nil {
		return nil, err
	}

	return backend.ModelFromArtifacts(graph.FormatGraphModel, source, artifacts)
}

func handlerFor(url string, req *backend.Request) iohandler.Handler {
	if xfs.IsLocalPath(url) {
		return iohandler.NewFileHandler(url, req.OnProgress)
	}
	return iohandler.NewHTTPHandler(url, req.RequestOptions, req.OnProgress, req.Client)
}
