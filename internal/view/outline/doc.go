// Package outline is a terminal view of a document's scene tree.
//
// The View is an observer of the document: any change marks it dirty and
// the next Render rebuilds the rows. Keys are turned into commands, so edits
// made in the outline go through the document history like any other.
//
//	up/down, k/j  move the cursor
//	space         toggle selection of the element under the cursor
//	d             delete the selection
//	h             hide the selection in a new group
//	u / r         undo / redo
//	q, esc        quit
package outline
