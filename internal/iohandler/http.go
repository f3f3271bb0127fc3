package iohandler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/mturchin/tfjs-converter/internal/weights"
)

// Doer executes a single HTTP request. *http.Client satisfies it; tests
// substitute their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher performs raw byte fetches over HTTP, applying RequestOptions to
// every request.
type Fetcher struct {
	client Doer
	opts   *RequestOptions
}

// NewFetcher creates a Fetcher. A nil client falls back to a default one,
// with a cookie jar when opts.WithCredentials is set; a nil opts means no
// extra transport configuration.
func NewFetcher(opts *RequestOptions, client Doer) *Fetcher {
	if client == nil {
		client = defaultClient(opts)
	}
	return &Fetcher{client: client, opts: opts}
}

func defaultClient(opts *RequestOptions) Doer {
	if opts == nil || !opts.WithCredentials {
		return http.DefaultClient
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return http.DefaultClient
	}
	return &http.Client{Jar: jar}
}

// Fetch GETs a URL and returns the response body.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("iohandler: building request for %s: %w", url, err)
	}
	if f.opts != nil {
		for k, v := range f.opts.Headers {
			req.Header.Set(k, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("iohandler: fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrRequestFailed, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("iohandler: reading %s: %w", url, err)
	}
	return body, nil
}

// HTTPHandler loads graph-model artifacts from a model.json URL: the JSON
// document itself plus every weight shard its manifest names.
type HTTPHandler struct {
	url        string
	fetcher    *Fetcher
	onProgress ProgressFunc
}

// NewHTTPHandler creates a handler for a model.json URL.
func NewHTTPHandler(url string, opts *RequestOptions, onProgress ProgressFunc, client Doer) *HTTPHandler {
	return &HTTPHandler{
		url:        url,
		fetcher:    NewFetcher(opts, client),
		onProgress: onProgress,
	}
}

// Load fetches and assembles the model artifacts.
func (h *HTTPHandler) Load(ctx context.Context) (*Artifacts, error) {
	body, err := h.fetcher.Fetch(ctx, h.url)
	if err != nil {
		return nil, err
	}

	doc, err := decodeModelDocument(body)
	if err != nil {
		return nil, fmt.Errorf("iohandler: %s: %w", h.url, err)
	}

	artifacts := doc.artifacts()
	if len(doc.WeightsManifest) == 0 {
		return artifacts, nil
	}

	// Shard paths resolve against the model's directory; a query string on
	// the model URL (TF-Hub style) carries over to each shard.
	baseDir, query := splitQuery(h.url)
	baseDir = dirOf(baseDir)

	data, err := weights.LoadGroups(ctx, baseDir, doc.WeightsManifest,
		func(ctx context.Context, location string) ([]byte, error) {
			return h.fetcher.Fetch(ctx, location+query)
		},
		h.onProgress)
	if err != nil {
		return nil, err
	}

	artifacts.WeightData = data
	return artifacts, nil
}

// modelDocument is the wire shape of a model.json file.
type modelDocument struct {
	Format          string           `json:"format"`
	GeneratedBy     string           `json:"generatedBy"`
	ConvertedBy     string           `json:"convertedBy"`
	ModelTopology   json.RawMessage  `json:"modelTopology"`
	Signature       json.RawMessage  `json:"signature"`
	WeightsManifest weights.Manifest `json:"weightsManifest"`
}

func decodeModelDocument(data []byte) (*modelDocument, error) {
	var doc modelDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding model json: %w", err)
	}
	if len(doc.ModelTopology) == 0 {
		return nil, ErrMissingTopology
	}
	return &doc, nil
}

func (d *modelDocument) artifacts() *Artifacts {
	return &Artifacts{
		Format:        d.Format,
		GeneratedBy:   d.GeneratedBy,
		ConvertedBy:   d.ConvertedBy,
		ModelTopology: d.ModelTopology,
		Signature:     d.Signature,
		WeightSpecs:   d.WeightsManifest.Specs(),
	}
}

// dirOf returns everything before the final path separator, purely lexically.
func dirOf(url string) string {
	idx := strings.LastIndex(url, "/")
	if idx < 0 {
		return ""
	}
	return url[:idx]
}

// splitQuery separates a URL into its pre-query part and the query suffix
// (including the "?"), if any.
func splitQuery(url string) (base, query string) {
	if idx := strings.Index(url, "?"); idx >= 0 {
		return url[:idx], url[idx:]
	}
	return url, ""
}
