package tree

import "errors"

// Error kinds for tree assembly and ID resolution. Callers match them
// with errors.Is; the wrapped message names the offending document or ID.
var (
	// ErrNoRoot means no document in the input set has an empty parent prefix.
	ErrNoRoot = errors.New("no root document")

	// ErrUnplaced means assembly made a full pass without attaching any of
	// the remaining documents.
	ErrUnplaced = errors.New("unplaced document")

	// ErrNoParent means a document's parent prefix matched no node in the
	// tree. During assembly it is a retry signal, not a failure; it only
	// surfaces from CreateDocument.
	ErrNoParent = errors.New("no parent document")

	// ErrDuplicatePrefix means two documents in the input set share a
	// prefix (case-insensitively).
	ErrDuplicatePrefix = errors.New("duplicate document prefix")

	// ErrNoMatchingDocument means a prefix matched no document in the tree.
	ErrNoMatchingDocument = errors.New("no matching document prefix")

	// ErrNoMatchingChild means the child side of a link could not be resolved.
	ErrNoMatchingChild = errors.New("no matching child item")

	// ErrNoMatchingParent means the parent side of a link could not be resolved.
	ErrNoMatchingParent = errors.New("no matching parent item")

	// ErrNoMatchingItem means an item ID could not be resolved.
	ErrNoMatchingItem = errors.New("no matching item")
)
