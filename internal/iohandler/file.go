package iohandler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mturchin/tfjs-converter/internal/weights"
)

// FileHandler loads graph-model artifacts from a model.json on the local
// filesystem. Shards are read from the model's directory.
type FileHandler struct {
	path       string
	onProgress ProgressFunc
}

// NewFileHandler creates a handler for a local model.json path. A file://
// prefix is tolerated and stripped.
func NewFileHandler(path string, onProgress ProgressFunc) *FileHandler {
	return &FileHandler{
		path:       strings.TrimPrefix(path, "file://"),
		onProgress: onProgress,
	}
}

// Load reads and assembles the model artifacts.
func (h *FileHandler) Load(ctx context.Context) (*Artifacts, error) {
	body, err := os.ReadFile(h.path)
	if err != nil {
		return nil, fmt.Errorf("iohandler: reading %s: %w", h.path, err)
	}

	doc, err := decodeModelDocument(body)
	if err != nil {
		return nil, fmt.Errorf("iohandler: %s: %w", h.path, err)
	}

	artifacts := doc.artifacts()
	if len(doc.WeightsManifest) == 0 {
		return artifacts, nil
	}

	baseDir := filepath.Dir(h.path)
	data, err := weights.LoadGroups(ctx, baseDir, doc.WeightsManifest,
		func(ctx context.Context, location string) ([]byte, error) {
			return os.ReadFile(filepath.FromSlash(location))
		},
		h.onProgress)
	if err != nil {
		return nil, err
	}

	artifacts.WeightData = data
	return artifacts, nil
}
