package evalfile

import (
	"errors"

	yamlv3 "go.yaml.in/yaml/v3"
)

// parseYAML 遍历 yaml.Node 以保留键顺序；JSON 作为 YAML 子集同样适用。
func parseYAML(content []byte) ([]Entry, error) {
	var doc yamlv3.Node
	if err := yamlv3.Unmarshal(content, &doc); err != nil {
		return nil, err
	}

	root := &doc
	if root.Kind == yamlv3.DocumentNode {
		if len(root.Content) == 0 {
			return nil, nil
		}
		root = root.Content[0]
	}
	if root.Kind == 0 {
		return nil, nil
	}
	if root.Kind != yamlv3.MappingNode {
		return nil, errors.New("root must be a mapping")
	}

	var entries []Entry
	if err := walkMapping(root, "", &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

func walkMapping(node *yamlv3.Node, prefix string, entries *[]Entry) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := joinKey(prefix, node.Content[i].Value)
		val := node.Content[i+1]
		if val.Kind == yamlv3.AliasNode && val.Alias != nil {
			val = val.Alias
		}

		if val.Kind == yamlv3.MappingNode && len(val.Content) > 0 {
			if err := walkMapping(val, key, entries); err != nil {
				return err
			}
			continue
		}

		v, err := nodeValue(val)
		if err != nil {
			return err
		}
		*entries = append(*entries, Entry{Key: key, Value: v})
	}

	return nil
}

// nodeValue 字符串保持为模板，其余标量转为对应的 Go 类型。
func nodeValue(node *yamlv3.Node) (any, error) {
	if node.Kind != yamlv3.ScalarNode {
		var out any
		if err := node.Decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	}

	switch node.ShortTag() {
	case "!!str":
		return node.Value, nil
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			return nil, err
		}
		return n, nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!null":
		return nil, nil
	default:
		return node.Value, nil
	}
}
