// Package locator classifies a model load request into the serialization
// path that must handle it. Classification happens once, at the API boundary;
// everything downstream matches on the resulting tag.
package locator

import (
	"errors"
	"strings"

	"github.com/mturchin/tfjs-converter/internal/iohandler"
)

// ManifestFilename is the conventional name of the weight manifest that sits
// next to a binary frozen graph.
const ManifestFilename = "weights_manifest.json"

// Suffixes that select the legacy serialization paths.
const (
	suffixBinary = ".pb"
	suffixJSON   = ".json"
)

// Error definitions for the locator package.
var (
	// ErrNilLocator indicates a load was requested without a model location.
	ErrNilLocator = errors.New("locator: model url must not be empty")

	// ErrHandlerFromTFHub indicates a load handler was combined with TF-Hub
	// routing, which only accepts URL locators.
	ErrHandlerFromTFHub = errors.New("locator: a load handler cannot be combined with TF-Hub routing")
)

// Kind identifies which backend must handle a load.
type Kind int

const (
	// KindBinary is the binary frozen graph plus companion weight manifest.
	KindBinary Kind = iota

	// KindLegacyJSON is the older JSON frozen-graph shape.
	KindLegacyJSON

	// KindGraphJSON is the current model.json graph format.
	KindGraphJSON

	// KindHandler is the current format produced by an abstract load handler.
	KindHandler

	// KindTFHub is a TF-Hub-hosted module.
	KindTFHub
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindBinary:
		return "binary"
	case KindLegacyJSON:
		return "legacy-json"
	case KindGraphJSON:
		return "graph-json"
	case KindHandler:
		return "handler"
	case KindTFHub:
		return "tfhub"
	default:
		return "unknown"
	}
}

// Locator is a classified load target. Exactly one of URL or Handler is set;
// ManifestURL is set only for KindBinary.
type Locator struct {
	Kind        Kind
	URL         string
	ManifestURL string
	Handler     iohandler.Handler
}

// ClassifyModern classifies a request to the current entry point. Rules, in
// order: the TF-Hub flag forces TF-Hub routing; a ".pb" suffix selects the
// backward-compatible binary path with a synthesized manifest URL; everything
// else takes the model.json path.
func ClassifyModern(url string, fromTFHub bool) (Locator, error) {
	if url == "" {
		return Locator{}, ErrNilLocator
	}

	if fromTFHub {
		return Locator{Kind: KindTFHub, URL: url}, nil
	}

	if strings.HasSuffix(url, suffixBinary) {
		return Locator{
			Kind:        KindBinary,
			URL:         url,
			ManifestURL: SynthesizeManifestURL(url),
		}, nil
	}

	return Locator{Kind: KindGraphJSON, URL: url}, nil
}

// ClassifyHandler classifies a request backed by an abstract load handler.
// Handlers only feed the current format; combining one with TF-Hub routing
// is rejected rather than miscast.
func ClassifyHandler(h iohandler.Handler, fromTFHub bool) (Locator, error) {
	if h == nil {
		return Locator{}, ErrNilLocator
	}
	if fromTFHub {
		return Locator{}, ErrHandlerFromTFHub
	}

	return Locator{Kind: KindHandler, Handler: h}, nil
}

// ClassifyLegacy classifies a request to the deprecated entry point. A
// ".json" suffix selects the legacy JSON path and the manifest URL argument
// is ignored; otherwise the binary path is taken, synthesizing the manifest
// URL when the caller omitted it.
func ClassifyLegacy(url, manifestURL string) (Locator, error) {
	if url == "" {
		return Locator{}, ErrNilLocator
	}

	if strings.HasSuffix(url, suffixJSON) {
		return Locator{Kind: KindLegacyJSON, URL: url}, nil
	}

	if manifestURL == "" {
		manifestURL = SynthesizeManifestURL(url)
	}
	return Locator{Kind: KindBinary, URL: url, ManifestURL: manifestURL}, nil
}

// SynthesizeManifestURL derives the conventional weight-manifest URL that
// sits in the same directory as the model. The derivation is purely lexical:
// no URL validation, and a base without any "/" yields "/weights_manifest.json".
// An empty base yields an empty result.
func SynthesizeManifestURL(base string) string {
	if base == "" {
		return ""
	}

	dir := ""
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		dir = base[:idx]
	}
	return dir + "/" + ManifestFilename
}
