package app

import (
	"github.com/dshills/mapforge/internal/document"
	"github.com/dshills/mapforge/internal/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultDocumentName is the name of the starter document.
const DefaultDocumentName = "map"

// propsColor is the display color of the starter "props" group.
var propsColor = colorful.Color{R: 0.8, G: 0.55, B: 0.25}

// buildStarterScene fills an empty document with a small scene to edit.
// It bypasses the history so the document starts unmodified.
//
//	map
//	  floor (brush)
//	  house
//	    walls (brush)
//	    roof (brush)
//	    door
//	      frame (brush)
//	  light
//	  crate          [props]
//	    body (model) [props]
//	  tree
//	    oak (plant)
func buildStarterScene(doc *document.Document) {
	world := doc.Root()
	doc.InsertPrimitive(scene.NewPrimitive(scene.KindBrush, "floor",
		mgl32.Vec3{-16, -16, -1}, mgl32.Vec3{16, 16, 0}), world, -1)

	house := entityAt("house", mgl32.Vec3{0, 0, 0})
	doc.Insert(house, world, -1)
	doc.InsertPrimitive(scene.NewPrimitive(scene.KindBrush, "walls",
		mgl32.Vec3{-4, -4, 0}, mgl32.Vec3{4, 4, 6}), house, -1)
	doc.InsertPrimitive(scene.NewPrimitive(scene.KindBrush, "roof",
		mgl32.Vec3{-5, -5, 6}, mgl32.Vec3{5, 5, 8}), house, -1)

	door := entityAt("door", mgl32.Vec3{0, -4, 0})
	doc.Insert(door, house, -1)
	doc.InsertPrimitive(scene.NewPrimitive(scene.KindBrush, "frame",
		mgl32.Vec3{-1, -4.25, 0}, mgl32.Vec3{1, -3.75, 3}), door, -1)

	doc.Insert(entityAt("light", mgl32.Vec3{0, 0, 12}), world, -1)

	props := scene.NewGroupWithColor("props", propsColor)
	doc.InsertGroup(props, -1)
	crate := entityAt("crate", mgl32.Vec3{8, 2, 0})
	crate.SetGroup(props)
	doc.Insert(crate, world, -1)
	body := scene.NewPrimitive(scene.KindModel, "body", mgl32.Vec3{8, 2, 0})
	body.SetGroup(props)
	doc.InsertPrimitive(body, crate, -1)

	tree := entityAt("tree", mgl32.Vec3{-10, 6, 0})
	doc.Insert(tree, world, -1)
	doc.InsertPrimitive(scene.NewPrimitive(scene.KindPlant, "oak", mgl32.Vec3{-10, 6, 0}), tree, -1)
}

func entityAt(name string, origin mgl32.Vec3) *scene.Entity {
	e := scene.NewEntity(name)
	e.SetOriginPS(origin)
	return e
}
