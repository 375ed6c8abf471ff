// Package vfs models a case's simulated disk: an immutable tree of files and
// directories, plus the path arithmetic the terminal uses to move around it.
package vfs

import "strings"

// Kind distinguishes the two node variants.
type Kind int

const (
	KindFile Kind = iota
	KindDir
)

func (k Kind) String() string {
	if k == KindDir {
		return "directory"
	}
	return "file"
}

// Node is one entry of a simulated filesystem. A file carries Content and no
// Children; a directory carries Children (in authored order) and no Content.
// Trees are built once when a case is loaded and never mutated afterwards.
type Node struct {
	Name     string
	Kind     Kind
	Content  string
	Children []*Node
	Metadata map[string]string // display only: size, modified
}

// File returns a file node.
func File(name, content string) *Node {
	return &Node{Name: name, Kind: KindFile, Content: content}
}

// Dir returns a directory node holding children in the given order.
func Dir(name string, children ...*Node) *Node {
	if children == nil {
		children = []*Node{}
	}
	return &Node{Name: name, Kind: KindDir, Children: children}
}

// WithMeta sets a metadata attribute and returns n for chaining.
func (n *Node) WithMeta(key, value string) *Node {
	if n.Metadata == nil {
		n.Metadata = make(map[string]string)
	}
	n.Metadata[key] = value
	return n
}

// IsDir reports whether n is a directory.
func (n *Node) IsDir() bool {
	return n != nil && n.Kind == KindDir
}

// child returns the child called name. An exact match wins; otherwise the
// first case-insensitive match is returned, since the simulated volume is a
// Windows disk and the terminal lower-cases what the player types.
func (n *Node) child(name string) *Node {
	if !n.IsDir() {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	for _, c := range n.Children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}
