// Package tree assembles discovered documents into a single validated
// hierarchy and resolves item IDs across it.
package tree

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jcb91/doorstop/internal/document"
	"github.com/jcb91/doorstop/internal/editor"
	"github.com/jcb91/doorstop/internal/item"
)

// Tree is the assembled document hierarchy. It is not safe for
// concurrent mutation; callers serialize access.
type Tree struct {
	root *Node
	log  *slog.Logger

	// Collaborators, replaceable in tests.
	removeAll func(path string) error
	launch    func(path string) error
}

// Assemble builds a tree from an unordered set of documents.
//
// The first document with an empty parent prefix becomes the root.
// Remaining documents are placed with a fixed-point loop: each pass tries
// every unplaced document against the tree and keeps going as long as a
// pass attaches at least one. Parents may therefore appear after their
// children in the input. A pass that attaches nothing means the rest can
// never be placed, and assembly fails naming the first of them.
func Assemble(docs []*document.Document, log *slog.Logger) (*Tree, error) {
	if log == nil {
		log = slog.Default()
	}
	t := &Tree{
		log:       log,
		removeAll: os.RemoveAll,
		launch:    editor.Open,
	}

	seen := make(map[string]string, len(docs))
	for _, doc := range docs {
		key := strings.ToLower(doc.Prefix())
		if other, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: %s (%s and %s)", ErrDuplicatePrefix, doc.Prefix(), other, doc.Path())
		}
		seen[key] = doc.Path()
	}

	var unplaced []*document.Document
	for _, doc := range docs {
		if t.root == nil && doc.Parent() == "" {
			t.root = &Node{Document: doc}
			log.Info("root of tree", "prefix", doc.Prefix())
			continue
		}
		unplaced = append(unplaced, doc)
	}
	if t.root == nil {
		return nil, ErrNoRoot
	}

	for len(unplaced) > 0 {
		progress := false
		remaining := unplaced[:0]
		for _, doc := range unplaced {
			if err := t.root.place(doc); err != nil {
				log.Debug("document not yet placeable", "prefix", doc.Prefix(), "error", err)
				remaining = append(remaining, doc)
				continue
			}
			log.Info("document placed", "prefix", doc.Prefix(), "parent", doc.Parent())
			progress = true
		}
		unplaced = remaining
		if !progress {
			return nil, fmt.Errorf("%w: %s", ErrUnplaced, unplaced[0].Prefix())
		}
	}

	log.Debug("tree assembled", "tree", t.String(), "documents", t.Len())
	return t, nil
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Documents returns every document in pre-order.
func (t *Tree) Documents() []*document.Document {
	docs := make([]*document.Document, 0, t.Len())
	t.root.walk(func(n *Node) {
		docs = append(docs, n.Document)
	})
	return docs
}

// Len returns the number of documents in the tree.
func (t *Tree) Len() int { return t.root.size() }

// String renders the hierarchy, e.g. "REQ <- [ HLT, LLT ]".
func (t *Tree) String() string { return t.root.String() }

// Validate checks every document in pre-order, stopping at the first
// failure.
func (t *Tree) Validate() error {
	t.log.Info("checking tree", "documents", t.Len())
	for _, doc := range t.Documents() {
		if err := doc.Check(); err != nil {
			return err
		}
	}
	return nil
}

// CreateDocument creates a new document on disk and places it in the
// tree. When placement fails the just-created directory is removed again
// so a bad parent prefix leaves no orphaned storage; the placement error
// is returned either way.
func (t *Tree) CreateDocument(path, prefix, parent string, digits int) (*document.Document, error) {
	if t.FindDocument(prefix) != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePrefix, prefix)
	}
	doc, err := document.New(path, t.root.Document.Root(), prefix, parent, digits)
	if err != nil {
		return nil, err
	}
	if err := t.root.place(doc); err != nil {
		t.log.Warn("document rejected", "prefix", prefix, "parent", parent, "error", err)
		if rmErr := t.removeAll(doc.Path()); rmErr != nil {
			t.log.Error("rollback failed", "path", doc.Path(), "error", rmErr)
		}
		return nil, err
	}
	t.log.Info("document placed", "prefix", prefix, "parent", parent)
	return doc, nil
}

// FindDocument returns the first document whose prefix matches,
// case-insensitively and in pre-order, or nil.
func (t *Tree) FindDocument(prefix string) *document.Document {
	for _, doc := range t.Documents() {
		if strings.EqualFold(doc.Prefix(), prefix) {
			return doc
		}
	}
	return nil
}

// AddItem creates the next item in the document with the given prefix.
func (t *Tree) AddItem(prefix string) (*item.Item, error) {
	doc := t.FindDocument(prefix)
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMatchingDocument, prefix)
	}
	it, err := doc.Add()
	if err != nil {
		return nil, err
	}
	t.log.Info("item added", "id", it.ID(), "document", doc.Prefix())
	return it, nil
}

// ResolveItem looks up an item by composite ID. A missing document or
// number returns (nil, nil); only a malformed ID or an item read failure
// returns an error.
func (t *Tree) ResolveItem(id string) (*item.Item, error) {
	prefix, number, err := item.SplitID(id)
	if err != nil {
		return nil, err
	}
	doc := t.FindDocument(prefix)
	if doc == nil {
		return nil, nil
	}
	items, err := doc.Items()
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.Number() == number {
			return it, nil
		}
	}
	return nil, nil
}

// Link records a directed link from the child item to the parent item
// and returns both. When either side cannot be resolved nothing is
// mutated and the error names the failing side.
func (t *Tree) Link(childID, parentID string) (*item.Item, *item.Item, error) {
	child, err := t.ResolveItem(childID)
	if err == nil && child == nil {
		err = fmt.Errorf("%w: %s", ErrNoMatchingChild, childID)
	}
	if err != nil {
		return nil, nil, err
	}

	parent, err := t.ResolveItem(parentID)
	if err == nil && parent == nil {
		err = fmt.Errorf("%w: %s", ErrNoMatchingParent, parentID)
	}
	if err != nil {
		return nil, nil, err
	}

	if err := child.AddLink(parent.ID()); err != nil {
		return nil, nil, err
	}
	t.log.Info("items linked", "child", child.ID(), "parent", parent.ID())
	return child, parent, nil
}

// Edit resolves an item and, when launch is set, opens its file with the
// default editor. The launch is best effort; a failed launch is logged
// but the resolved item is still returned.
func (t *Tree) Edit(id string, launch bool) (*item.Item, error) {
	it, err := t.ResolveItem(id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMatchingItem, id)
	}
	if launch {
		if err := t.launch(it.Path()); err != nil {
			t.log.Warn("editor launch failed", "id", it.ID(), "error", err)
		}
	}
	return it, nil
}
