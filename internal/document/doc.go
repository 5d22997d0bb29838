// Package document provides the scene document that commands edit.
//
// A Document owns the world entity, the selection, the group list and the
// undo history, and it is the Subject through which every change reaches
// the views. All edits go through commands submitted to the document:
//
//	doc := document.New(document.WithHistoryLimit(500))
//	doc.Register(view)
//	doc.Submit(command.NewAddEntity(doc, ent, doc.Root(), true))
//	doc.Undo()
//
// The tree mutators (Insert, Remove and friends) and SetSelection change
// state without notifying anyone; the calling command sends the matching
// notification. Violating their preconditions panics with an
// *history.InvariantError.
package document
