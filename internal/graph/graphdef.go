package graph

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformedGraphDef indicates the binary topology is not a valid GraphDef.
var ErrMalformedGraphDef = errors.New("graph: malformed GraphDef")

// GraphDef field numbers (tensorflow.GraphDef).
const (
	graphDefNodeField     = 1
	graphDefVersionsField = 4
)

// NodeDef field numbers (tensorflow.NodeDef).
const (
	nodeDefNameField  = 1
	nodeDefOpField    = 2
	nodeDefInputField = 3
)

// VersionDef field numbers (tensorflow.VersionDef).
const versionDefProducerField = 1

// NodeDef is the decoded summary of one graph node.
type NodeDef struct {
	Name   string
	Op     string
	Inputs []string
}

// GraphDefInfo summarizes a binary GraphDef: its nodes and producer version.
type GraphDefInfo struct {
	Nodes    []NodeDef
	Producer int32
}

// InputNodes returns the names of Placeholder nodes, the graph's feed points.
func (g *GraphDefInfo) InputNodes() []string {
	var names []string
	for _, n := range g.Nodes {
		if n.Op == "Placeholder" || n.Op == "PlaceholderWithDefault" {
			names = append(names, n.Name)
		}
	}
	return names
}

// OutputNodes returns the names of nodes no other node consumes.
func (g *GraphDefInfo) OutputNodes() []string {
	consumed := make(map[string]bool)
	for _, n := range g.Nodes {
		for _, in := range n.Inputs {
			// Inputs may carry a ^control prefix or an :output suffix.
			name := in
			if len(name) > 0 && name[0] == '^' {
				name = name[1:]
			}
			for i := 0; i < len(name); i++ {
				if name[i] == ':' {
					name = name[:i]
					break
				}
			}
			consumed[name] = true
		}
	}

	var names []string
	for _, n := range g.Nodes {
		if !consumed[n.Name] {
			names = append(names, n.Name)
		}
	}
	return names
}

// ParseGraphDef scans a serialized tensorflow.GraphDef and extracts the node
// summary. It decodes only the wire format, so no generated bindings are
// needed; unknown fields are skipped.
func ParseGraphDef(data []byte) (*GraphDefInfo, error) {
	info := &GraphDefInfo{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: bad tag", ErrMalformedGraphDef)
		}
		data = data[n:]

		switch {
		case num == graphDefNodeField && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad node field", ErrMalformedGraphDef)
			}
			data = data[n:]

			node, err := parseNodeDef(raw)
			if err != nil {
				return nil, err
			}
			info.Nodes = append(info.Nodes, node)

		case num == graphDefVersionsField && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad versions field", ErrMalformedGraphDef)
			}
			data = data[n:]
			info.Producer = parseProducer(raw)

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad field %d", ErrMalformedGraphDef, num)
			}
			data = data[n:]
		}
	}

	if len(info.Nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrMalformedGraphDef)
	}
	return info, nil
}

func parseNodeDef(data []byte) (NodeDef, error) {
	var node NodeDef

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return node, fmt.Errorf("%w: bad node tag", ErrMalformedGraphDef)
		}
		data = data[n:]

		if typ == protowire.BytesType {
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return node, fmt.Errorf("%w: bad node value", ErrMalformedGraphDef)
			}
			data = data[n:]

			switch num {
			case nodeDefNameField:
				node.Name = string(raw)
			case nodeDefOpField:
				node.Op = string(raw)
			case nodeDefInputField:
				node.Inputs = append(node.Inputs, string(raw))
			}
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return node, fmt.Errorf("%w: bad node field %d", ErrMalformedGraphDef, num)
		}
		data = data[n:]
	}

	return node, nil
}

func parseProducer(data []byte) int32 {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return 0
		}
		data = data[n:]

		if num == versionDefProducerField && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return 0
			}
			return int32(v)
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return 0
		}
		data = data[n:]
	}
	return 0
}
