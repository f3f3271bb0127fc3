// Package tfhub resolves TF-Hub module identifiers to their hosted
// model.json and loads them through the graph-json path.
package tfhub

import (
	"context"
	"strings"

	"github.com/mturchin/tfjs-converter/internal/backend"
	"github.com/mturchin/tfjs-converter/internal/backend/graphjson"
	"github.com/mturchin/tfjs-converter/internal/graph"
	"github.com/mturchin/tfjs-converter/internal/locator"
)

// Hosting convention for TF-Hub-published TF.js modules.
const (
	// DefaultModelName is the artifact name appended to a module URL.
	DefaultModelName = "model.json"

	// SearchParam asks the hub to serve the raw file rather than a tarball.
	SearchParam = "?tfjs-format=file"
)

// Backend implements backend.GraphBackend for TF-Hub modules.
type Backend struct {
	modern *graphjson.Backend
}

// NewBackend creates a TF-Hub backend.
func NewBackend() *Backend {
	return &Backend{modern: graphjson.NewBackend()}
}

// Kind returns the locator kind this backend handles.
func (b *Backend) Kind() locator.Kind {
	return locator.KindTFHub
}

// Load normalizes the module URL and delegates to the graph-json loader.
func (b *Backend) Load(ctx context.Context, req *backend.Request) (*graph.Model, error) {
	resolved := *req
	resolved.Locator.URL = NormalizeModuleURL(req.Locator.URL)
	resolved.Locator.Kind = locator.KindGraphJSON

	return b.modern.Load(ctx, &resolved)
}

// NormalizeModuleURL turns a TF-Hub module identifier into the URL of its
// hosted model.json. Already-normalized URLs pass through unchanged.
func NormalizeModuleURL(url string) string {
	if strings.HasSuffix(url, DefaultModelName+SearchParam) {
		return url
	}
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return url + DefaultModelName + SearchParam
}
