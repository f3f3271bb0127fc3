// Package graphmodel is the entry point for loading a trained computation
// graph into an in-process model handle.
//
// Given a model location (URL, local path, or an abstract load handler) and
// options, it determines which serialized-format variant the model uses,
// resolves the auxiliary resources it needs (most notably the weight
// manifest, derived by convention from the model's base path when omitted),
// and routes to the matching deserialization backend.
//
// Example usage:
//
//	model, err := graphmodel.LoadGraphModel(ctx, "https://host/dir/model.json", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Format: %s\n", model.Format)
//	fmt.Printf("Weights: %d (%d bytes)\n", model.NumWeights(), model.WeightBytes())
//
// Loading from TF-Hub:
//
//	model, err := graphmodel.LoadGraphModel(ctx,
//	    "https://tfhub.dev/google/model/1",
//	    &graphmodel.LoadOptions{FromTFHub: true})
package graphmodel

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mturchin/tfjs-converter/internal/backend"
	"github.com/mturchin/tfjs-converter/internal/backend/binary"
	"github.com/mturchin/tfjs-converter/internal/backend/graphjson"
	"github.com/mturchin/tfjs-converter/internal/backend/legacyjson"
	"github.com/mturchin/tfjs-converter/internal/backend/tfhub"
	"github.com/mturchin/tfjs-converter/internal/graph"
	"github.com/mturchin/tfjs-converter/internal/iohandler"
	"github.com/mturchin/tfjs-converter/internal/locator"
	"github.com/mturchin/tfjs-converter/internal/router"
)

// Model is the unified, format-agnostic handle returned by every load path.
type Model = graph.Model

// Format tags which serialization family a model came from.
type Format = graph.Format

// Format values.
const (
	FormatGraphModel  = graph.FormatGraphModel
	FormatFrozenModel = graph.FormatFrozenModel
)

// Signature is the serving signature of a model, when one was serialized.
type Signature = graph.Signature

// TensorInfo describes one tensor of a serving signature.
type TensorInfo = graph.TensorInfo

// Handler is an abstract capability that produces the serialized artifacts
// needed to build a model, decoupling loading from a concrete transport.
type Handler = iohandler.Handler

// RequestOptions carries transport configuration, forwarded verbatim to
// whichever backend performs the fetches.
type RequestOptions = iohandler.RequestOptions

// ProgressFunc observes load progress. It may be invoked zero or more times,
// with a non-decreasing fraction in [0, 1].
type ProgressFunc = iohandler.ProgressFunc

// HTTPClient executes HTTP requests. *http.Client satisfies it.
type HTTPClient = iohandler.Doer

// Invalid-argument errors, raised before any backend work starts.
var (
	// ErrNilLocator is returned when the model location is empty.
	ErrNilLocator = locator.ErrNilLocator

	// ErrHandlerFromTFHub is returned when a load handler is combined with
	// FromTFHub, which only accepts URL locators.
	ErrHandlerFromTFHub = locator.ErrHandlerFromTFHub
)

// LoadOptions configures a load call. The zero value is valid.
type LoadOptions struct {
	// FromTFHub routes the locator through TF-Hub resolution regardless of
	// its suffix.
	FromTFHub bool

	// RequestOptions is forwarded verbatim to the transport.
	RequestOptions *RequestOptions

	// OnProgress, if set, observes load progress.
	OnProgress ProgressFunc

	// HTTPClient overrides the client used for remote fetches. Nil means a
	// default client.
	HTTPClient HTTPClient
}

var (
	defaultRouter     *router.Router
	defaultRouterOnce sync.Once
)

// getRouter builds the process-wide router with all four backends registered.
func getRouter() *router.Router {
	defaultRouterOnce.Do(func() {
		defaultRouter = router.New(NewRegistry(), slog.Default())
	})
	return defaultRouter
}

// NewRegistry returns a backend registry with every known deserialization
// path registered. The graph-json backend serves both URL and handler
// locators.
func NewRegistry() *backend.Registry {
	registry := backend.NewRegistry()
	registry.Register(binary.NewBackend())
	registry.Register(legacyjson.NewBackend())
	registry.Register(tfhub.NewBackend())

	modern := graphjson.NewBackend()
	registry.Register(modern)
	registry.RegisterFor(locator.KindHandler, modern)

	return registry
}

// LoadGraphModel loads a graph model from a URL or local path.
//
// Classification, first match wins: opts.FromTFHub forces TF-Hub resolution;
// a ".pb" suffix takes the backward-compatible binary path with a
// synthesized weight-manifest URL; everything else takes the model.json
// path. An empty modelURL fails with ErrNilLocator before any backend runs.
//
// Exactly one backend is invoked per call. Backend failures are returned
// unchanged, without wrapping.
func LoadGraphModel(ctx context.Context, modelURL string, opts *LoadOptions) (*Model, error) {
	return getRouter().LoadGraphModel(ctx, modelURL, routerOptions(opts))
}

// LoadGraphModelFromHandler loads a graph model through an abstract load
// handler. Combining a handler with FromTFHub fails with
// ErrHandlerFromTFHub.
func LoadGraphModelFromHandler(ctx context.Context, h Handler, opts *LoadOptions) (*Model, error) {
	return getRouter().LoadFromHandler(ctx, h, routerOptions(opts))
}

// LoadFrozenModel loads a legacy frozen model.
//
// A modelURL ending in ".json" takes the legacy JSON path and manifestURL is
// ignored; otherwise the binary path is taken, and an empty manifestURL is
// synthesized from the model's directory. An advisory deprecation notice is
// logged on every call.
//
// Deprecated: use LoadGraphModel.
func LoadFrozenModel(ctx context.Context, modelURL, manifestURL string, opts *LoadOptions) (*Model, error) {
	return getRouter().LoadFrozenModel(ctx, modelURL, manifestURL, routerOptions(opts))
}

func routerOptions(opts *LoadOptions) *router.Options {
	if opts == nil {
		return nil
	}
	return &router.Options{
		FromTFHub:      opts.FromTFHub,
		RequestOptions: opts.RequestOptions,
		OnProgress:     opts.OnProgress,
		Client:         opts.HTTPClient,
	}
}
