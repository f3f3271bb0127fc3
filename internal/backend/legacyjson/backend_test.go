package legacyjson

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mturchin/tfjs-converter/internal/backend"
	"github.com/mturchin/tfjs-converter/internal/graph"
	"github.com/mturchin/tfjs-converter/internal/locator"
)

func TestBackend_RelabelsToLegacyFormat(t *testing.T) {
	const modelJSON = `{
	  "format": "graph-model",
	  "modelTopology": {"node": []},
	  "weightsManifest": [
	    {"paths": ["shard.bin"],
	     "weights": [{"name": "w", "shape": [2], "dtype": "float32"}]}
	  ]
	}`

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.json"), []byte(modelJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shard.bin"), make([]byte, 8), 0o644))

	b := NewBackend()
	model, err := b.Load(context.Background(), &backend.Request{
		Locator: locator.Locator{Kind: locator.KindLegacyJSON, URL: filepath.Join(dir, "model.json")},
	})
	require.NoError(t, err)

	// Same contents as the modern path, relabeled to the legacy shape.
	assert.Equal(t, graph.FormatFrozenModel, model.Format)
	assert.Equal(t, []string{"w"}, model.WeightNames())
	assert.Len(t, model.WeightData, 8)
}

func TestBackend_ErrorPropagates(t *testing.T) {
	b := NewBackend()
	_, err := b.Load(context.Background(), &backend.Request{
		Locator: locator.Locator{Kind: locator.KindLegacyJSON, URL: filepath.Join(t.TempDir(), "missing.json")},
	})
	assert.Error(t, err)
}
