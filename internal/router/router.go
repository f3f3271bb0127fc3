// Package router dispatches a classified load request to exactly one
// deserialization backend. It performs no retries, no fallback chaining and
// no caching; backend errors pass through untouched.
package router

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mturchin/tfjs-converter/internal/backend"
	"github.com/mturchin/tfjs-converter/internal/graph"
	"github.com/mturchin/tfjs-converter/internal/iohandler"
	"github.com/mturchin/tfjs-converter/internal/locator"
)

// Options carries the per-call configuration forwarded to the chosen backend.
type Options struct {
	// FromTFHub forces TF-Hub routing regardless of the locator's shape.
	FromTFHub bool

	// RequestOptions is forwarded verbatim to the transport.
	RequestOptions *iohandler.RequestOptions

	// OnProgress observes load progress; invoked by the backend at its own
	// cadence, possibly never.
	OnProgress iohandler.ProgressFunc

	// Client overrides the HTTP client for all fetches.
	Client iohandler.Doer
}

// Router routes load requests through a backend registry.
type Router struct {
	registry *backend.Registry
	log      *slog.Logger
}

// New creates a Router over a registry. A nil logger uses slog's default.
func New(registry *backend.Registry, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{registry: registry, log: log}
}

// LoadGraphModel loads a model via the current entry point rules.
func (r *Router) LoadGraphModel(ctx context.Context, modelURL string, opts *Options) (*graph.Model, error) {
	if opts == nil {
		opts = &Options{}
	}

	loc, err := locator.ClassifyModern(modelURL, opts.FromTFHub)
	if err != nil {
		return nil, err
	}
	return r.dispatch(ctx, loc, opts)
}

// LoadFromHandler loads a model produced by an abstract load handler.
func (r *Router) LoadFromHandler(ctx context.Context, h iohandler.Handler, opts *Options) (*graph.Model, error) {
	if opts == nil {
		opts = &Options{}
	}

	loc, err := locator.ClassifyHandler(h, opts.FromTFHub)
	if err != nil {
		return nil, err
	}
	return r.dispatch(ctx, loc, opts)
}

// LoadFrozenModel loads a model via the deprecated entry point rules. The
// advisory notice is emitted on every call.
func (r *Router) LoadFrozenModel(ctx context.Context, modelURL, manifestURL string, opts *Options) (*graph.Model, error) {
	r.log.Warn("LoadFrozenModel is deprecated, use LoadGraphModel instead")

	if opts == nil {
		opts = &Options{}
	}

	loc, err := locator.ClassifyLegacy(modelURL, manifestURL)
	if err != nil {
		return nil, err
	}
	return r.dispatch(ctx, loc, opts)
}

// dispatch forwards to the single backend registered for the locator's kind.
// The backend's result and error are returned as-is.
func (r *Router) dispatch(ctx context.Context, loc locator.Locator, opts *Options) (*graph.Model, error) {
	b, ok := r.registry.Get(loc.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", backend.ErrNotFound, loc.Kind)
	}

	r.log.Debug("dispatching model load", "kind", loc.Kind.String(), "url", loc.URL)

	return b.Load(ctx, &backend.Request{
		Locator:        loc,
		RequestOptions: opts.RequestOptions,
		OnProgress:     opts.OnProgress,
		Client:         opts.Client,
	})
}
