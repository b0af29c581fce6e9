package impel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB2 is an axis-aligned bounding box in 2D.
type AABB2 struct {
	Lower, Upper mgl64.Vec2
}

// Center returns the midpoint of the box.
func (bb AABB2) Center() mgl64.Vec2 {
	return bb.Lower.Add(bb.Upper).Mul(0.5)
}

// Extents returns the half-widths of the box.
func (bb AABB2) Extents() mgl64.Vec2 {
	return bb.Upper.Sub(bb.Lower).Mul(0.5)
}

// Perimeter is the tree's cost metric in 2D.
func (bb AABB2) Perimeter() float64 {
	w := bb.Upper.Sub(bb.Lower)
	return 2.0 * (w.X() + w.Y())
}

// Union returns the smallest box containing both operands.
func (bb AABB2) Union(other AABB2) AABB2 {
	return AABB2{
		Lower: minVec2(bb.Lower, other.Lower),
		Upper: maxVec2(bb.Upper, other.Upper),
	}
}

// Contains reports whether other lies entirely inside the box.
func (bb AABB2) Contains(other AABB2) bool {
	return bb.Lower.X() <= other.Lower.X() &&
		bb.Lower.Y() <= other.Lower.Y() &&
		other.Upper.X() <= bb.Upper.X() &&
		other.Upper.Y() <= bb.Upper.Y()
}

// Expand grows the box by r in every direction.
func (bb AABB2) Expand(r float64) AABB2 {
	d := mgl64.Vec2{r, r}
	return AABB2{Lower: bb.Lower.Sub(d), Upper: bb.Upper.Add(d)}
}

// IsValid reports whether the box is finite and non-inverted. A zero-extent
// box is valid.
func (bb AABB2) IsValid() bool {
	d := bb.Upper.Sub(bb.Lower)
	return d.X() >= 0 && d.Y() >= 0 && IsValidVec2(bb.Lower) && IsValidVec2(bb.Upper)
}

// Overlap2 reports whether the boxes intersect, boundary contact included.
func Overlap2(a, b AABB2) bool {
	if b.Lower.X() > a.Upper.X() || b.Lower.Y() > a.Upper.Y() {
		return false
	}
	if a.Lower.X() > b.Upper.X() || a.Lower.Y() > b.Upper.Y() {
		return false
	}
	return true
}

// RayCastInput2 describes a ray from P1 toward P2, truncated at MaxFraction.
type RayCastInput2 struct {
	P1, P2      mgl64.Vec2
	MaxFraction float64
}

// RayCastOutput2 is a hit at P1 + Fraction*(P2-P1) with the surface normal.
type RayCastOutput2 struct {
	Normal   mgl64.Vec2
	Fraction float64
}

// RayCast intersects a ray with the box. From Real-Time Collision Detection,
// p179.
func (bb AABB2) RayCast(input RayCastInput2) (RayCastOutput2, bool) {
	tmin := -maxFloat
	tmax := maxFloat

	p := [2]float64{input.P1.X(), input.P1.Y()}
	d := [2]float64{input.P2.X() - input.P1.X(), input.P2.Y() - input.P1.Y()}
	lower := [2]float64{bb.Lower.X(), bb.Lower.Y()}
	upper := [2]float64{bb.Upper.X(), bb.Upper.Y()}

	var normal mgl64.Vec2

	for i := 0; i < 2; i++ {
		if math.Abs(d[i]) < Epsilon {
			// Parallel.
			if p[i] < lower[i] || upper[i] < p[i] {
				return RayCastOutput2{}, false
			}
			continue
		}

		invD := 1.0 / d[i]
		t1 := (lower[i] - p[i]) * invD
		t2 := (upper[i] - p[i]) * invD

		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1.0
		}

		if t1 > tmin {
			normal = mgl64.Vec2{}
			normal[i] = s
			tmin = t1
		}

		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return RayCastOutput2{}, false
		}
	}

	if tmin < 0.0 || input.MaxFraction < tmin {
		return RayCastOutput2{}, false
	}

	return RayCastOutput2{Normal: normal, Fraction: tmin}, true
}

// AABB3 is an axis-aligned bounding box in 3D.
type AABB3 struct {
	Lower, Upper mgl64.Vec3
}

// Center returns the midpoint of the box.
func (bb AABB3) Center() mgl64.Vec3 {
	return bb.Lower.Add(bb.Upper).Mul(0.5)
}

// Extents returns the half-widths of the box.
func (bb AABB3) Extents() mgl64.Vec3 {
	return bb.Upper.Sub(bb.Lower).Mul(0.5)
}

// SurfaceArea is the tree's cost metric in 3D.
func (bb AABB3) SurfaceArea() float64 {
	w := bb.Upper.Sub(bb.Lower)
	return 2.0 * (w.X()*w.Y() + w.Y()*w.Z() + w.Z()*w.X())
}

// Union returns the smallest box containing both operands.
func (bb AABB3) Union(other AABB3) AABB3 {
	return AABB3{
		Lower: minVec3(bb.Lower, other.Lower),
		Upper: maxVec3(bb.Upper, other.Upper),
	}
}

// Contains reports whether other lies entirely inside the box.
func (bb AABB3) Contains(other AABB3) bool {
	return bb.Lower.X() <= other.Lower.X() &&
		bb.Lower.Y() <= other.Lower.Y() &&
		bb.Lower.Z() <= other.Lower.Z() &&
		other.Upper.X() <= bb.Upper.X() &&
		other.Upper.Y() <= bb.Upper.Y() &&
		other.Upper.Z() <= bb.Upper.Z()
}

// Expand grows the box by r in every direction.
func (bb AABB3) Expand(r float64) AABB3 {
	d := mgl64.Vec3{r, r, r}
	return AABB3{Lower: bb.Lower.Sub(d), Upper: bb.Upper.Add(d)}
}

// IsValid reports whether the box is finite and non-inverted.
func (bb AABB3) IsValid() bool {
	d := bb.Upper.Sub(bb.Lower)
	return d.X() >= 0 && d.Y() >= 0 && d.Z() >= 0 &&
		IsValidVec3(bb.Lower) && IsValidVec3(bb.Upper)
}

// RayCastInput3 describes a ray from P1 toward P2, truncated at MaxFraction.
type RayCastInput3 struct {
	P1, P2      mgl64.Vec3
	MaxFraction float64
}

// RayCastOutput3 is a hit at P1 + Fraction*(P2-P1) with the surface normal.
type RayCastOutput3 struct {
	Normal   mgl64.Vec3
	Fraction float64
}

// RayCast intersects a ray with the box using the slab method.
func (bb AABB3) RayCast(input RayCastInput3) (RayCastOutput3, bool) {
	tmin := -maxFloat
	tmax := maxFloat

	var normal mgl64.Vec3

	for i := 0; i < 3; i++ {
		p := input.P1[i]
		d := input.P2[i] - input.P1[i]

		if math.Abs(d) < Epsilon {
			// Parallel.
			if p < bb.Lower[i] || bb.Upper[i] < p {
				return RayCastOutput3{}, false
			}
			continue
		}

		invD := 1.0 / d
		t1 := (bb.Lower[i] - p) * invD
		t2 := (bb.Upper[i] - p) * invD

		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1.0
		}

		if t1 > tmin {
			normal = mgl64.Vec3{}
			normal[i] = s
			tmin = t1
		}

		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return RayCastOutput3{}, false
		}
	}

	if tmin < 0.0 || input.MaxFraction < tmin {
		return RayCastOutput3{}, false
	}

	return RayCastOutput3{Normal: normal, Fraction: tmin}, true
}

// Overlap3 reports whether the boxes intersect, boundary contact included.
func Overlap3(a, b AABB3) bool {
	if b.Lower.X() > a.Upper.X() || b.Lower.Y() > a.Upper.Y() || b.Lower.Z() > a.Upper.Z() {
		return false
	}
	if a.Lower.X() > b.Upper.X() || a.Lower.Y() > b.Upper.Y() || a.Lower.Z() > b.Upper.Z() {
		return false
	}
	return true
}
