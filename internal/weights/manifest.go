// Package weights models the weight manifest that accompanies a serialized
// graph: which shard files exist and how the tensors are laid out inside them.
package weights

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error definitions for the weights package.
var (
	ErrEmptyManifest = errors.New("weights: manifest has no groups")
	ErrUnknownDType  = errors.New("weights: unknown dtype")
)

// Quantization describes how a weight was quantized for storage.
type Quantization struct {
	DType string  `json:"dtype"`
	Scale float64 `json:"scale,omitempty"`
	Min   float64 `json:"min,omitempty"`
}

// Spec describes a single tensor inside a shard group.
type Spec struct {
	Name         string        `json:"name"`
	Shape        []int64       `json:"shape"`
	DType        string        `json:"dtype"`
	Quantization *Quantization `json:"quantization,omitempty"`
}

// Group is one entry of the manifest: an ordered list of shard files and the
// tensors packed into their concatenation.
type Group struct {
	Paths   []string `json:"paths"`
	Weights []Spec   `json:"weights"`
}

// Manifest is the full weight manifest document.
type Manifest []Group

// DecodeManifest parses a weight manifest JSON document.
func DecodeManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("weights: decoding manifest: %w", err)
	}
	if len(m) == 0 {
		return nil, ErrEmptyManifest
	}
	return m, nil
}

// Specs returns all tensor specs across groups, in manifest order.
func (m Manifest) Specs() []Spec {
	var specs []Spec
	for _, g := range m {
		specs = append(specs, g.Weights...)
	}
	return specs
}

// Paths returns all shard paths across groups, in manifest order.
func (m Manifest) Paths() []string {
	var paths []string
	for _, g := range m {
		paths = append(paths, g.Paths...)
	}
	return paths
}

// NumElements returns the element count of a spec's shape.
func (s Spec) NumElements() int64 {
	n := int64(1)
	for _, d := range s.Shape {
		n *= d
	}
	return n
}

// ByteSize returns the serialized size of the tensor, honoring quantization.
func (s Spec) ByteSize() (int64, error) {
	dtype := s.DType
	if s.Quantization != nil && s.Quantization.DType != "" {
		dtype = s.Quantization.DType
	}

	size, err := DTypeSize(dtype)
	if err != nil {
		return 0, err
	}
	return s.NumElements() * size, nil
}

// TotalByteSize returns the summed serialized size of all tensors in the
// manifest.
func (m Manifest) TotalByteSize() (int64, error) {
	var total int64
	for _, spec := range m.Specs() {
		n, err := spec.ByteSize()
		if err != nil {
			return 0, fmt.Errorf("%w (weight %q)", err, spec.Name)
		}
		total += n
	}
	return total, nil
}

// DTypeSize returns the per-element byte size of a manifest dtype.
func DTypeSize(dtype string) (int64, error) {
	switch dtype {
	case "float32", "int32":
		return 4, nil
	case "uint16", "float16":
		return 2, nil
	case "uint8", "bool":
		return 1, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownDType, dtype)
	}
}
