// Package graph defines the format-agnostic model handle produced by a load,
// plus decoding of the serialized topologies backing it.
package graph

import (
	"encoding/json"

	"github.com/mturchin/tfjs-converter/internal/weights"
)

// Format tags the serialization family a model was loaded from.
type Format string

const (
	// FormatGraphModel is the current model.json graph format.
	FormatGraphModel Format = "graph-model"

	// FormatFrozenModel is the legacy frozen-graph format (binary GraphDef or
	// the older JSON shape).
	FormatFrozenModel Format = "frozen-model"
)

// TensorInfo describes one tensor of a serving signature.
type TensorInfo struct {
	Name  string
	DType string
	Shape []int64
}

// Signature is the serving signature of a model, when one was serialized.
type Signature struct {
	Inputs  map[string]TensorInfo
	Outputs map[string]TensorInfo
}

// Model is the unified handle returned by every load path. Downstream users
// run inference against it; the loading code never interprets it beyond
// construction.
type Model struct {
	Format      Format
	Source      string
	GeneratedBy string
	ConvertedBy string

	// Topology is the raw serialized computation graph: JSON for the
	// model.json formats, GraphDef bytes for the binary format.
	Topology json.RawMessage

	// GraphDef holds the decoded node summary when Topology is binary.
	GraphDef *GraphDefInfo

	Signature   *Signature
	WeightSpecs []weights.Spec
	WeightData  []byte
}

// WeightNames returns the names of all loaded weights, in manifest order.
func (m *Model) WeightNames() []string {
	names := make([]string, 0, len(m.WeightSpecs))
	for _, s := range m.WeightSpecs {
		names = append(names, s.Name)
	}
	return names
}

// NumWeights returns the number of named weights.
func (m *Model) NumWeights() int {
	return len(m.WeightSpecs)
}

// WeightBytes returns the total size of the loaded weight data.
func (m *Model) WeightBytes() int64 {
	return int64(len(m.WeightData))
}

// Relabel returns a shallow copy of the model carrying a different format
// tag. The contents are not transformed.
func (m *Model) Relabel(f Format) *Model {
	clone := *m
	clone.Format = f
	return &clone
}

// sigTensor mirrors the proto-JSON encoding of a signature tensor, where
// dimension sizes arrive as strings.
type sigTensor struct {
	Name        string `json:"name"`
	DType       string `json:"dtype"`
	TensorShape struct {
		Dim []struct {
			Size json.Number `json:"size"`
		} `json:"dim"`
	} `json:"tensorShape"`
}

// DecodeSignature parses a raw serialized signature. A nil or empty input
// yields a nil signature without error.
func DecodeSignature(raw json.RawMessage) (*Signature, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var doc struct {
		Inputs  map[string]sigTensor `json:"inputs"`
		Outputs map[string]sigTensor `json:"outputs"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if len(doc.Inputs) == 0 && len(doc.Outputs) == 0 {
		return nil, nil
	}

	return &Signature{
		Inputs:  toTensorInfos(doc.Inputs),
		Outputs: toTensorInfos(doc.Outputs),
	}, nil
}

func toTensorInfos(in map[string]sigTensor) map[string]TensorInfo {
	out := make(map[string]TensorInfo, len(in))
	for key, t := range in {
		info := TensorInfo{Name: t.Name, DType: t.DType}
		for _, d := range t.TensorShape.Dim {
			size, err := d.Size.Int64()
			if err != nil {
				size = -1
			}
			info.Shape = append(info.Shape, size)
		}
		out[key] = info
	}
	return out
}
