// Package geom provides the spatial transforms applied to scene elements.
//
// A Trafo is a world-space operation: a translation, a rotation or scale
// about a reference point, a mirror across an axis-aligned plane, or an
// arbitrary matrix. Points are transformed through Mat4; orientations only
// change under rotations.
package geom

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Kind identifies the type of a Trafo.
type Kind uint8

const (
	// KindIdentity leaves everything unchanged.
	KindIdentity Kind = iota
	KindTranslate
	KindRotate
	KindScale
	KindMirror
	KindMatrix
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindIdentity:
		return "identity"
	case KindTranslate:
		return "translate"
	case KindRotate:
		return "rotate"
	case KindScale:
		return "scale"
	case KindMirror:
		return "mirror"
	case KindMatrix:
		return "matrix"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Trafo is a world-space transform.
type Trafo struct {
	kind Kind

	delta  mgl32.Vec3 // translate
	pivot  mgl32.Vec3 // rotate, scale
	angles mgl32.Vec3 // rotate, degrees about X, Y and Z
	factor mgl32.Vec3 // scale
	axis   int        // mirror
	dist   float32    // mirror
	m      mgl32.Mat4 // matrix
}

// Identity returns the identity transform.
func Identity() Trafo {
	return Trafo{kind: KindIdentity}
}

// Translate returns a translation by delta.
func Translate(delta mgl32.Vec3) Trafo {
	return Trafo{kind: KindTranslate, delta: delta}
}

// Rotate returns a rotation about pivot. Angles are in degrees around the
// X, Y and Z axes, applied in that order.
func Rotate(pivot, angles mgl32.Vec3) Trafo {
	return Trafo{kind: KindRotate, pivot: pivot, angles: angles}
}

// Scale returns a scale about pivot.
func Scale(pivot, factor mgl32.Vec3) Trafo {
	return Trafo{kind: KindScale, pivot: pivot, factor: factor}
}

// Mirror returns a reflection across the plane where coordinate axis
// (0, 1 or 2) equals dist.
func Mirror(axis int, dist float32) Trafo {
	if axis < 0 || axis > 2 {
		panic(fmt.Sprintf("geom: mirror axis %d out of range", axis))
	}
	return Trafo{kind: KindMirror, axis: axis, dist: dist}
}

// Matrix returns a transform by an arbitrary matrix.
func Matrix(m mgl32.Mat4) Trafo {
	return Trafo{kind: KindMatrix, m: m}
}

// Kind returns the transform kind.
func (t Trafo) Kind() Kind { return t.kind }

// Delta returns the translation of a KindTranslate transform.
func (t Trafo) Delta() mgl32.Vec3 { return t.delta }

// IsIdentity reports whether t leaves every point unchanged.
func (t Trafo) IsIdentity() bool {
	switch t.kind {
	case KindIdentity:
		return true
	case KindTranslate:
		return t.delta == mgl32.Vec3{}
	case KindRotate:
		return t.angles == mgl32.Vec3{}
	case KindScale:
		return t.factor == mgl32.Vec3{1, 1, 1}
	case KindMatrix:
		return t.m == mgl32.Ident4()
	}
	return false
}

// Rotation returns the rotational part of t as a quaternion.
// Only KindRotate has one; all other kinds return the identity.
func (t Trafo) Rotation() mgl32.Quat {
	if t.kind != KindRotate {
		return mgl32.QuatIdent()
	}
	return mgl32.AnglesToQuat(
		mgl32.DegToRad(t.angles.X()),
		mgl32.DegToRad(t.angles.Y()),
		mgl32.DegToRad(t.angles.Z()),
		mgl32.XYZ,
	)
}

// Mat4 returns t as a homogeneous matrix.
func (t Trafo) Mat4() mgl32.Mat4 {
	switch t.kind {
	case KindTranslate:
		return mgl32.Translate3D(t.delta.X(), t.delta.Y(), t.delta.Z())
	case KindRotate:
		return t.aboutPivot(t.Rotation().Mat4())
	case KindScale:
		return t.aboutPivot(mgl32.Scale3D(t.factor.X(), t.factor.Y(), t.factor.Z()))
	case KindMirror:
		m := mgl32.Ident4()
		m.Set(t.axis, t.axis, -1)
		m.Set(t.axis, 3, 2*t.dist)
		return m
	case KindMatrix:
		return t.m
	}
	return mgl32.Ident4()
}

func (t Trafo) aboutPivot(m mgl32.Mat4) mgl32.Mat4 {
	to := mgl32.Translate3D(t.pivot.X(), t.pivot.Y(), t.pivot.Z())
	from := mgl32.Translate3D(-t.pivot.X(), -t.pivot.Y(), -t.pivot.Z())
	return to.Mul4(m).Mul4(from)
}

// Point transforms a world-space point.
func (t Trafo) Point(p mgl32.Vec3) mgl32.Vec3 {
	switch t.kind {
	case KindIdentity:
		return p
	case KindTranslate:
		return p.Add(t.delta)
	case KindMirror:
		p[t.axis] = t.dist - (p[t.axis] - t.dist)
		return p
	}
	return t.Mat4().Mul4x1(p.Vec4(1)).Vec3()
}

// Orientation transforms a world-space orientation.
func (t Trafo) Orientation(q mgl32.Quat) mgl32.Quat {
	if t.kind != KindRotate {
		return q
	}
	return t.Rotation().Mul(q).Normalize()
}

// String returns a short description of t.
func (t Trafo) String() string {
	switch t.kind {
	case KindTranslate:
		return fmt.Sprintf("translate %v", t.delta)
	case KindRotate:
		return fmt.Sprintf("rotate %v about %v", t.angles, t.pivot)
	case KindScale:
		return fmt.Sprintf("scale %v about %v", t.factor, t.pivot)
	case KindMirror:
		return fmt.Sprintf("mirror axis %d at %g", t.axis, t.dist)
	}
	return t.kind.String()
}
