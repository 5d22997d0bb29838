package document

import "errors"

var (
	// ErrClosed indicates a command was submitted to a closed document.
	ErrClosed = errors.New("document closed")

	// ErrNotFound indicates no element matched a lookup.
	ErrNotFound = errors.New("element not found")
)
