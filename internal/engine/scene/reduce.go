package scene

// Split partitions elems into entities and primitives, keeping order.
func Split(elems []Element) ([]*Entity, []*Primitive) {
	var ents []*Entity
	var prims []*Primitive
	for _, e := range elems {
		switch x := e.(type) {
		case *Entity:
			ents = append(ents, x)
		case *Primitive:
			prims = append(prims, x)
		}
	}
	return ents, prims
}

// Reduce removes redundant members from elems before a structural edit.
//
// Entities without a parent and primitives without an owner are dropped. An entity is dropped when another
// candidate entity has it in its subtree, which also drops duplicates.
// Primitives are deduplicated and dropped when their owner is covered by a
// retained entity.
func Reduce(elems []Element) ([]*Entity, []*Primitive) {
	ents, prims := Split(elems)

	candidates := make([]*Entity, 0, len(ents))
	for _, e := range ents {
		if e.parent != nil {
			candidates = append(candidates, e)
		}
	}

	var keptEnts []*Entity
	for i, e := range candidates {
		covered := false
		for j, other := range candidates {
			if i == j || !other.Has(e) {
				continue
			}
			// Of two identical entries the first one survives.
			if other == e && j > i {
				continue
			}
			covered = true
			break
		}
		if !covered {
			keptEnts = append(keptEnts, e)
		}
	}

	var keptPrims []*Primitive
	seen := make(map[*Primitive]struct{}, len(prims))
	for _, p := range prims {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		if p.owner == nil || coveredBy(keptEnts, p.owner) {
			continue
		}
		keptPrims = append(keptPrims, p)
	}

	return keptEnts, keptPrims
}

// ReduceElements is Reduce with the result merged into one list:
// entities first, then primitives.
func ReduceElements(elems []Element) []Element {
	ents, prims := Reduce(elems)
	out := make([]Element, 0, len(ents)+len(prims))
	for _, e := range ents {
		out = append(out, e)
	}
	for _, p := range prims {
		out = append(out, p)
	}
	return out
}

func coveredBy(ents []*Entity, e *Entity) bool {
	if e == nil {
		return false
	}
	for _, x := range ents {
		if x.Has(e) {
			return true
		}
	}
	return false
}
