package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mturchin/tfjs-converter/internal/graph"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	var loads atomic.Int32
	reloaded := make(chan struct{}, 4)

	w, err := New(context.Background(), path,
		func(ctx context.Context) (*graph.Model, error) {
			loads.Add(1)
			return &graph.Model{}, nil
		},
		func(model *graph.Model, err error) {
			assert.NoError(t, err)
			reloaded <- struct{}{}
		})
	require.NoError(t, err)
	defer w.Close()

	// The initial load happens synchronously, before any reload.
	assert.Equal(t, int32(1), loads.Load())
	assert.Equal(t, uint32(0), w.Reloads())

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("reload did not fire after write")
	}

	assert.GreaterOrEqual(t, loads.Load(), int32(2))
	assert.GreaterOrEqual(t, w.Reloads(), uint32(1))
}

func TestWatcher_InitialLoadFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	_, err := New(context.Background(), path,
		func(ctx context.Context) (*graph.Model, error) {
			return nil, assert.AnError
		}, nil)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestWatcher_ReloadReportsLoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	var calls atomic.Int32
	gotErr := make(chan error, 4)

	w, err := New(context.Background(), path,
		func(ctx context.Context) (*graph.Model, error) {
			if calls.Add(1) == 1 {
				return &graph.Model{}, nil
			}
			return nil, assert.AnError
		},
		func(model *graph.Model, err error) {
			gotErr <- err
		})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))

	select {
	case err := <-gotErr:
		assert.ErrorIs(t, err, assert.AnError)
	case <-time.After(5 * time.Second):
		t.Fatal("reload did not fire after write")
	}
}
