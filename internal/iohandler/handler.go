// Package iohandler abstracts how serialized model artifacts are produced:
// over HTTP, from the local filesystem, or through a caller-supplied handler.
package iohandler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mturchin/tfjs-converter/internal/weights"
)

// Error definitions for the iohandler package.
var (
	ErrEmptyURL        = errors.New("iohandler: url must not be empty")
	ErrRequestFailed   = errors.New("iohandler: request failed")
	ErrMissingTopology = errors.New("iohandler: model artifacts carry no topology")
)

// ProgressFunc observes load progress. It may be called zero or more times;
// fraction is in [0, 1] and never decreases within a single load.
type ProgressFunc func(fraction float64)

// RequestOptions carries transport configuration. It is forwarded verbatim to
// whichever transport performs the fetches; handlers that do not touch the
// network ignore it.
type RequestOptions struct {
	// Headers are added to every outgoing request.
	Headers map[string]string

	// WithCredentials stores cookies set by the server and sends them back
	// on subsequent requests within the same load.
	WithCredentials bool
}

// Artifacts is the serialized form of a model, independent of where the bytes
// came from.
type Artifacts struct {
	// Format identifies the serialization format, e.g. "graph-model".
	Format string

	// GeneratedBy and ConvertedBy record provenance, when known.
	GeneratedBy string
	ConvertedBy string

	// ModelTopology is the raw serialized computation graph. For JSON formats
	// this is the modelTopology document; for the binary format it is the raw
	// GraphDef bytes.
	ModelTopology json.RawMessage

	// Signature is the raw serving signature, if present.
	Signature json.RawMessage

	// WeightSpecs describe the tensors packed into WeightData, in order.
	WeightSpecs []weights.Spec

	// WeightData is the concatenation of all weight shards.
	WeightData []byte
}

// Handler produces the artifacts needed to build a model, decoupling loading
// from a concrete transport.
type Handler interface {
	Load(ctx context.Context) (*Artifacts, error)
}
