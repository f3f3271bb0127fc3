package router

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mturchin/tfjs-converter/internal/backend"
	"github.com/mturchin/tfjs-converter/internal/graph"
	"github.com/mturchin/tfjs-converter/internal/iohandler"
	"github.com/mturchin/tfjs-converter/internal/locator"
)

// --- Mock types ---

type MockBackend struct {
	mock.Mock
	kind locator.Kind
}

func (m *MockBackend) Kind() locator.Kind {
	return m.kind
}

func (m *MockBackend) Load(ctx context.Context, req *backend.Request) (*graph.Model, error) {
	args := m.Called(ctx, req)
	if model, ok := args.Get(0).(*graph.Model); ok {
		return model, args.Error(1)
	}
	return nil, args.Error(1)
}

type stubHandler struct{}

func (stubHandler) Load(ctx context.Context) (*iohandler.Artifacts, error) {
	return &iohandler.Artifacts{}, nil
}

// newTestRouter wires a mock backend for every kind and returns them keyed
// by kind.
func newTestRouter(t *testing.T) (*Router, map[locator.Kind]*MockBackend) {
	t.Helper()

	registry := backend.NewRegistry()
	mocks := make(map[locator.Kind]*MockBackend)
	for _, kind := range []locator.Kind{
		locator.KindBinary,
		locator.KindLegacyJSON,
		locator.KindGraphJSON,
		locator.KindHandler,
		locator.KindTFHub,
	} {
		b := &MockBackend{kind: kind}
		registry.Register(b)
		mocks[kind] = b
	}

	return New(registry, nil), mocks
}

// assertOnlyCalled verifies exactly one backend saw the request.
func assertOnlyCalled(t *testing.T, mocks map[locator.Kind]*MockBackend, called locator.Kind) {
	t.Helper()
	for kind, b := range mocks {
		if kind == called {
			b.AssertNumberOfCalls(t, "Load", 1)
		} else {
			b.AssertNumberOfCalls(t, "Load", 0)
		}
	}
}

// --- Tests ---

func TestLoadGraphModel_DefaultPath(t *testing.T) {
	r, mocks := newTestRouter(t)
	want := &graph.Model{Format: graph.FormatGraphModel}

	mocks[locator.KindGraphJSON].On("Load", mock.Anything, mock.MatchedBy(func(req *backend.Request) bool {
		return req.Locator.URL == "https://host/dir/model" && req.Locator.ManifestURL == ""
	})).Return(want, nil).Once()

	got, err := r.LoadGraphModel(context.Background(), "https://host/dir/model", nil)
	require.NoError(t, err)
	assert.Same(t, want, got)
	assertOnlyCalled(t, mocks, locator.KindGraphJSON)
}

func TestLoadGraphModel_BinaryCompatPath(t *testing.T) {
	r, mocks := newTestRouter(t)
	want := &graph.Model{Format: graph.FormatFrozenModel}

	mocks[locator.KindBinary].On("Load", mock.Anything, mock.MatchedBy(func(req *backend.Request) bool {
		return req.Locator.ManifestURL == "https://host/dir/weights_manifest.json"
	})).Return(want, nil).Once()

	got, err := r.LoadGraphModel(context.Background(), "https://host/dir/model.pb", nil)
	require.NoError(t, err)
	assert.Same(t, want, got)
	assertOnlyCalled(t, mocks, locator.KindBinary)
}

func TestLoadGraphModel_TFHubOverridesSuffix(t *testing.T) {
	r, mocks := newTestRouter(t)

	mocks[locator.KindTFHub].On("Load", mock.Anything, mock.Anything).
		Return(&graph.Model{}, nil).Once()

	_, err := r.LoadGraphModel(context.Background(), "https://host/dir/model.pb",
		&Options{FromTFHub: true})
	require.NoError(t, err)
	assertOnlyCalled(t, mocks, locator.KindTFHub)
}

func TestLoadGraphModel_EmptyURLFailsBeforeDispatch(t *testing.T) {
	r, mocks := newTestRouter(t)

	_, err := r.LoadGraphModel(context.Background(), "", nil)
	assert.ErrorIs(t, err, locator.ErrNilLocator)

	for _, b := range mocks {
		b.AssertNumberOfCalls(t, "Load", 0)
	}
}

func TestLoadGraphModel_BackendErrorUnwrapped(t *testing.T) {
	r, mocks := newTestRouter(t)
	backendErr := errors.New("manifest fetch failed")

	mocks[locator.KindGraphJSON].On("Load", mock.Anything, mock.Anything).
		Return(nil, backendErr).Once()

	_, err := r.LoadGraphModel(context.Background(), "https://host/model", nil)
	// The router adds no context: the backend's error comes back identically.
	assert.Equal(t, backendErr, err)
}

func TestLoadGraphModel_OptionsForwardedVerbatim(t *testing.T) {
	r, mocks := newTestRouter(t)

	reqOpts := &iohandler.RequestOptions{Headers: map[string]string{"Authorization": "Bearer x"}}
	var progress iohandler.ProgressFunc = func(float64) {}
	client := &http.Client{}

	mocks[locator.KindGraphJSON].On("Load", mock.Anything, mock.MatchedBy(func(req *backend.Request) bool {
		return req.RequestOptions == reqOpts && req.OnProgress != nil && req.Client == iohandler.Doer(client)
	})).Return(&graph.Model{}, nil).Once()

	_, err := r.LoadGraphModel(context.Background(), "https://host/model",
		&Options{RequestOptions: reqOpts, OnProgress: progress, Client: client})
	require.NoError(t, err)
	mocks[locator.KindGraphJSON].AssertExpectations(t)
}

func TestLoadFromHandler(t *testing.T) {
	r, mocks := newTestRouter(t)
	h := stubHandler{}

	mocks[locator.KindHandler].On("Load", mock.Anything, mock.MatchedBy(func(req *backend.Request) bool {
		return req.Locator.Handler == iohandler.Handler(h)
	})).Return(&graph.Model{}, nil).Once()

	_, err := r.LoadFromHandler(context.Background(), h, nil)
	require.NoError(t, err)
	assertOnlyCalled(t, mocks, locator.KindHandler)
}

func TestLoadFromHandler_TFHubRejected(t *testing.T) {
	r, mocks := newTestRouter(t)

	_, err := r.LoadFromHandler(context.Background(), stubHandler{}, &Options{FromTFHub: true})
	assert.ErrorIs(t, err, locator.ErrHandlerFromTFHub)

	for _, b := range mocks {
		b.AssertNumberOfCalls(t, "Load", 0)
	}
}

func TestLoadFrozenModel_JSONNeverHitsBinary(t *testing.T) {
	r, mocks := newTestRouter(t)

	mocks[locator.KindLegacyJSON].On("Load", mock.Anything, mock.Anything).
		Return(&graph.Model{}, nil).Twice()

	// With and without a manifest argument, .json routes to the legacy JSON
	// backend.
	_, err := r.LoadFrozenModel(context.Background(), "model.json", "", nil)
	require.NoError(t, err)
	_, err = r.LoadFrozenModel(context.Background(), "model.json", "https://host/m.json", nil)
	require.NoError(t, err)

	mocks[locator.KindBinary].AssertNumberOfCalls(t, "Load", 0)
	mocks[locator.KindLegacyJSON].AssertNumberOfCalls(t, "Load", 2)
}

func TestLoadFrozenModel_SynthesizesManifest(t *testing.T) {
	r, mocks := newTestRouter(t)

	mocks[locator.KindBinary].On("Load", mock.Anything, mock.MatchedBy(func(req *backend.Request) bool {
		return req.Locator.ManifestURL == "https://host/dir/weights_manifest.json"
	})).Return(&graph.Model{}, nil).Once()

	_, err := r.LoadFrozenModel(context.Background(), "https://host/dir/model.pb", "", nil)
	require.NoError(t, err)
	mocks[locator.KindBinary].AssertExpectations(t)
}

func TestLoadFrozenModel_BackendErrorUnwrapped(t *testing.T) {
	r, mocks := newTestRouter(t)
	backendErr := errors.New("bad graph")

	mocks[locator.KindBinary].On("Load", mock.Anything, mock.Anything).
		Return(nil, backendErr).Once()

	_, err := r.LoadFrozenModel(context.Background(), "https://host/dir/model.pb", "", nil)
	assert.Equal(t, backendErr, err)
}

func TestLoadFrozenModel_DeprecationNoticeEveryCall(t *testing.T) {
	registry := backend.NewRegistry()
	b := &MockBackend{kind: locator.KindBinary}
	b.On("Load", mock.Anything, mock.Anything).Return(&graph.Model{}, nil)
	registry.Register(b)

	var buf bytes.Buffer
	r := New(registry, slog.New(slog.NewTextHandler(&buf, nil)))

	for i := 0; i < 2; i++ {
		_, err := r.LoadFrozenModel(context.Background(), "https://host/dir/model.pb", "", nil)
		require.NoError(t, err)
	}

	// The advisory fires on every call, names the replacement, and never
	// blocks the load.
	notices := strings.Count(buf.String(), "LoadFrozenModel is deprecated")
	assert.Equal(t, 2, notices)
	assert.Contains(t, buf.String(), "LoadGraphModel")
}

func TestDispatch_MissingBackend(t *testing.T) {
	r := New(backend.NewRegistry(), nil)

	_, err := r.LoadGraphModel(context.Background(), "https://host/model", nil)
	assert.ErrorIs(t, err, backend.ErrNotFound)
}
