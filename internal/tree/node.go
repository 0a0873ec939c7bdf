package tree

import (
	"fmt"
	"strings"

	"github.com/jcb91/doorstop/internal/document"
)

// Node is one position in the document hierarchy. Requirements link
// upward, but the node keeps a parent back-reference as well because a
// bidirectional structure simplifies traversal and validation. The
// back-reference is for navigation only; children are the owning edge.
type Node struct {
	Document *document.Document

	parent   *Node
	children []*Node
}

// Parent returns the node's tree parent, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children in insertion order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// place tries to attach doc somewhere in the subtree rooted at n. The
// document is attached as a new child of the first node whose prefix
// matches the document's parent prefix, searching pre-order.
func (n *Node) place(doc *document.Document) error {
	if strings.EqualFold(doc.Parent(), n.Document.Prefix()) {
		n.children = append(n.children, &Node{Document: doc, parent: n})
		return nil
	}
	for _, child := range n.children {
		if err := child.place(doc); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %s wants parent %s", ErrNoParent, doc.Prefix(), doc.Parent())
}

// walk visits the subtree pre-order: the node itself, then each child
// subtree left to right.
func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.children {
		child.walk(fn)
	}
}

// size counts the nodes in the subtree.
func (n *Node) size() int {
	total := 1
	for _, child := range n.children {
		total += child.size()
	}
	return total
}

// String renders the subtree as "PREFIX" or "PREFIX <- [ CHILD, ... ]".
func (n *Node) String() string {
	if len(n.children) == 0 {
		return n.Document.Prefix()
	}
	parts := make([]string, len(n.children))
	for i, child := range n.children {
		parts[i] = child.String()
	}
	return fmt.Sprintf("%s <- [ %s ]", n.Document.Prefix(), strings.Join(parts, ", "))
}
