// Package command provides the document edit commands.
//
// Every command captures what it needs at construction, performs the edit in
// Do and exactly reverses it in Undo. Constructors never edit the document.
// Commands are written against the Document interface, which
// *document.Document implements.
//
// Commands that create or remove scene nodes own the nodes while they are
// detached; when the history releases such a command, it disposes them.
package command
