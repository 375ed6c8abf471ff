package vfs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlNode is the authored shape of a node in a case file.
type yamlNode struct {
	Name     string            `yaml:"name"`
	Type     string            `yaml:"type"`
	Content  *string           `yaml:"content,omitempty"`
	Children []*Node           `yaml:"children,omitempty"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// nodeKeys are the keys a node may carry. Node.Decode does not inherit the
// outer decoder's KnownFields, so they are checked here.
var nodeKeys = map[string]bool{"name": true, "type": true, "content": true, "children": true, "metadata": true}

// UnmarshalYAML decodes a node and enforces the variant rules: files carry no
// children, directories carry no content, sibling names are unique.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			if k := value.Content[i]; !nodeKeys[k.Value] {
				return fmt.Errorf("line %d: field %s not found in file system node", k.Line, k.Value)
			}
		}
	}

	var raw yamlNode
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Name == "" {
		return fmt.Errorf("line %d: node has no name", value.Line)
	}

	switch raw.Type {
	case "file":
		if len(raw.Children) > 0 {
			return fmt.Errorf("line %d: file %q cannot have children", value.Line, raw.Name)
		}
		*n = Node{Name: raw.Name, Kind: KindFile, Metadata: raw.Metadata}
		if raw.Content != nil {
			n.Content = *raw.Content
		}
	case "directory", "dir":
		if raw.Content != nil {
			return fmt.Errorf("line %d: directory %q cannot have content", value.Line, raw.Name)
		}
		seen := make(map[string]bool, len(raw.Children))
		for _, c := range raw.Children {
			if c == nil {
				return fmt.Errorf("line %d: empty entry in directory %q", value.Line, raw.Name)
			}
			if seen[c.Name] {
				return fmt.Errorf("line %d: duplicate entry %q in directory %q", value.Line, c.Name, raw.Name)
			}
			seen[c.Name] = true
		}
		*n = *Dir(raw.Name, raw.Children...)
		n.Metadata = raw.Metadata
	default:
		return fmt.Errorf("line %d: node %q has unknown type %q", value.Line, raw.Name, raw.Type)
	}
	return nil
}

// MarshalYAML writes the node back in its authored shape.
func (n *Node) MarshalYAML() (interface{}, error) {
	raw := yamlNode{Name: n.Name, Type: n.Kind.String(), Metadata: n.Metadata}
	if n.IsDir() {
		raw.Children = n.Children
	} else {
		content := n.Content
		raw.Content = &content
	}
	return raw, nil
}
