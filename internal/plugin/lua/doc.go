// Package lua runs user scripts against a document.
//
// Scripts see a sandboxed gopher-lua runtime: the io, os, debug and package
// libraries are not opened, and file loading functions are removed. The
// document is reachable only through the global doc module, whose editing
// functions submit commands, so every change a script makes can be undone.
//
// # Runner
//
//	r := lua.NewRunner(d,
//	    lua.WithInstructionLimit(cfg.Script.InstructionLimit),
//	    lua.WithExecutionTimeout(cfg.Script.Timeout.Duration),
//	)
//	defer r.Close()
//
//	if err := r.RunFile(ctx, "build.lua"); err != nil {
//	    var se *lua.ScriptError
//	    if errors.As(err, &se) {
//	        log.Printf("%s:%d: %s", se.Script, se.Line, se.Message)
//	    }
//	}
//
// # The doc module
//
// Elements are passed to and from Lua as userdata with the methods id,
// name, kind, parent, children, primitives, origin and selected. Wherever a
// function takes an element it also accepts a name or an id string.
// Vectors are tables, either {x=1, y=2, z=3} or {1, 2, 3}.
//
//	local door = doc.entity("door", doc.world(), {64, 0, 0})
//	doc.primitive(door, "brush", "frame", {0, 0, 0}, {8, 0, 96})
//	doc.select(door)
//	doc.move_selection({0, 32, 0})
//	doc.transaction("Copy row", function()
//	    doc.clone_selection({128, 0, 0})
//	end)
//
// doc.on(event, fn) registers a Lua observer of the document and returns a
// function that unregisters it. Observers receive the event name and a
// payload table; they must not edit the document.
//
// # Limits
//
// Every call into doc is charged against the instruction limit. The
// execution timeout cancels pure Lua loops as well.
package lua
