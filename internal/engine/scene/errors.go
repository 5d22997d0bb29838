package scene

import "errors"

// Errors returned by tree operations.
var (
	// ErrHasParent indicates a node that is still attached was attached again.
	ErrHasParent = errors.New("node already has a parent")

	// ErrNotDetached indicates a detached node was expected.
	ErrNotDetached = errors.New("node is not detached")

	// ErrNotChild indicates a node is not a child of the given entity.
	ErrNotChild = errors.New("node is not a child")

	// ErrCycle indicates an entity would become its own ancestor.
	ErrCycle = errors.New("entity cannot be moved into its own subtree")

	// ErrDisposed indicates a disposed node was used.
	ErrDisposed = errors.New("node has been disposed")
)
