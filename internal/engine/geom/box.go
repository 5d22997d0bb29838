package geom

import "github.com/go-gl/mathgl/mgl32"

// Box is an axis-aligned bounding box. The zero value is empty.
type Box struct {
	Min, Max mgl32.Vec3
	valid    bool
}

// BoxAround returns the box spanning the given points.
func BoxAround(points ...mgl32.Vec3) Box {
	var b Box
	for _, p := range points {
		b = b.Extend(p)
	}
	return b
}

// IsEmpty reports whether the box contains no point.
func (b Box) IsEmpty() bool { return !b.valid }

// Extend returns b grown to contain p.
func (b Box) Extend(p mgl32.Vec3) Box {
	if !b.valid {
		return Box{Min: p, Max: p, valid: true}
	}
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

// Union returns the smallest box containing b and o.
func (b Box) Union(o Box) Box {
	if !o.valid {
		return b
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Grow returns b expanded by d in every direction.
func (b Box) Grow(d float32) Box {
	if !b.valid {
		return b
	}
	b.Min = b.Min.Sub(mgl32.Vec3{d, d, d})
	b.Max = b.Max.Add(mgl32.Vec3{d, d, d})
	return b
}

// Center returns the box center.
func (b Box) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}
