// Package backend defines the interface every deserialization path
// implements, and the registry the router dispatches through.
package backend

import (
	"context"
	"fmt"

	"github.com/mturchin/tfjs-converter/internal/graph"
	"github.com/mturchin/tfjs-converter/internal/iohandler"
	"github.com/mturchin/tfjs-converter/internal/locator"
)

// Request carries everything a backend needs to perform one load.
type Request struct {
	// Locator is the classified load target.
	Locator locator.Locator

	// RequestOptions is forwarded verbatim to the transport. May be nil.
	RequestOptions *iohandler.RequestOptions

	// OnProgress observes load progress. May be nil; may be called zero or
	// more times by the backend.
	OnProgress iohandler.ProgressFunc

	// Client overrides the HTTP client used for fetches. Nil means the
	// default client. Tests inject fakes here.
	Client iohandler.Doer
}

// GraphBackend deserializes one format family into a model handle.
type GraphBackend interface {
	// Kind returns the locator kind this backend handles.
	Kind() locator.Kind

	// Load fetches and deserializes the model.
	Load(ctx context.Context, req *Request) (*graph.Model, error)
}

// ModelFromArtifacts builds the unified model handle out of loaded artifacts.
// Shared by every artifacts-based backend.
func ModelFromArtifacts(format graph.Format, source string, a *iohandler.Artifacts) (*graph.Model, error) {
	sig, err := graph.DecodeSignature(a.Signature)
	if err != nil {
		return nil, fmt.Errorf("backend: decoding signature: %w", err)
	}

	return &graph.Model{
		Format:      format,
		Source:      source,
		GeneratedBy: a.GeneratedBy,
		ConvertedBy: a.ConvertedBy,
		Topology:    a.ModelTopology,
		Signature:   sig,
		WeightSpecs: a.WeightSpecs,
		WeightData:  a.WeightData,
	}, nil
}
