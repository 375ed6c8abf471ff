package vfs

import "strings"

// Lookup walks root along path and returns the node found there. It fails when
// an intermediate node is a file or a segment has no matching child.
func Lookup(root *Node, path string) (*Node, bool) {
	if root == nil {
		return nil, false
	}
	cur := root
	for _, seg := range Segments(Normalize(path)) {
		if !cur.IsDir() {
			return nil, false
		}
		next := cur.child(seg)
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// ListChildren returns the children of the directory at path. A missing path
// or a file yields an empty slice; an empty listing is a valid state, not an
// error.
func ListChildren(root *Node, path string) []*Node {
	n, ok := Lookup(root, path)
	if !ok || !n.IsDir() {
		return []*Node{}
	}
	return n.Children
}

// Canonical returns path spelled with the tree's own names, so that a
// case-insensitive spelling such as "/users/jsmith" becomes "/Users/jsmith".
func Canonical(root *Node, path string) (string, bool) {
	if root == nil {
		return "", false
	}
	cur := root
	var names []string
	for _, seg := range Segments(Normalize(path)) {
		if !cur.IsDir() {
			return "", false
		}
		next := cur.child(seg)
		if next == nil {
			return "", false
		}
		names = append(names, next.Name)
		cur = next
	}
	return Root + strings.Join(names, "/"), true
}

// WalkFunc is called for every node below the root with its canonical path.
type WalkFunc func(path string, n *Node) error

// Walk visits the tree depth-first in authored order. The root itself is not
// passed to fn. Walking stops at the first error fn returns.
func Walk(root *Node, fn WalkFunc) error {
	if root == nil {
		return nil
	}
	return walk(root, "", fn)
}

func walk(n *Node, prefix string, fn WalkFunc) error {
	for _, c := range n.Children {
		p := prefix + "/" + c.Name
		if err := fn(p, c); err != nil {
			return err
		}
		if c.IsDir() {
			if err := walk(c, p, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
