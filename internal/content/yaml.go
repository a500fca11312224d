package content

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/landing/pkg/denorm"
)

// decodeYAML walks the node tree rather than decoding into maps so mapping
// order is kept.
func decodeYAML(data []byte) (denorm.Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 {
		return nil, fmt.Errorf("empty YAML document")
	}
	return fromNode(&root, 0)
}

// maxAliasDepth bounds alias expansion so self-referencing anchors fail.
const maxAliasDepth = 64

func fromNode(n *yaml.Node, aliases int) (denorm.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return denorm.Null{}, nil
		}
		return fromNode(n.Content[0], aliases)
	case yaml.AliasNode:
		if aliases >= maxAliasDepth {
			return nil, fmt.Errorf("line %d: alias nesting too deep", n.Line)
		}
		return fromNode(n.Alias, aliases+1)
	case yaml.SequenceNode:
		arr := make(denorm.Array, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c, aliases)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.MappingNode:
		obj := denorm.NewObject(len(n.Content) / 2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			val, err := fromNode(v, aliases)
			if err != nil {
				return nil, err
			}
			obj.Set(k.Value, val)
		}
		return obj, nil
	case yaml.ScalarNode:
		return fromScalar(n)
	}
	return nil, fmt.Errorf("line %d: unexpected YAML node kind %d", n.Line, n.Kind)
}

func fromScalar(n *yaml.Node) (denorm.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return denorm.Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return denorm.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, err
		}
		return denorm.Number(strconv.FormatInt(i, 10)), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("line %d: %q: %w", n.Line, n.Value, ErrUnsupported)
		}
		return denorm.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	case "!!binary":
		return nil, fmt.Errorf("line %d: binary scalar: %w", n.Line, ErrUnsupported)
	}
	// Strings and timestamps keep their source text.
	return denorm.String(n.Value), nil
}
