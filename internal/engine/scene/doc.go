// Package scene provides the hierarchical scene model edited by a document.
//
// The tree is made of entities. Every entity has at most one parent, an
// ordered list of child entities and an ordered list of primitives. The
// root entity of a document is its world.
//
// # Elements
//
// Entities and primitives are both elements: the things that can be
// selected, grouped and named. Each element has a stable uuid identity.
//
//	world := scene.NewEntity("world")
//	door := scene.NewEntity("door")
//	world.AddChild(door, -1)
//	door.AddPrimitive(scene.NewPrimitive(scene.KindBrush, "frame"), -1)
//
// # Coordinates
//
// Entities store their origin and orientation relative to their parent, so
// moving an entity moves its whole subtree. Primitives store world-space
// geometry and do not follow their entity.
//
// # Ownership
//
// Nodes are created detached and become part of a tree only through
// AddChild and AddPrimitive. A node that is permanently discarded is
// disposed. Disposed nodes can never be attached again.
//
// The package is not safe for concurrent use.
package scene
