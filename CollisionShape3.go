package impel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape3Kind discriminates the closed set of 3D primitives.
type Shape3Kind uint8

const (
	Sphere3Kind Shape3Kind = iota
	Box3Kind
	Hull3Kind
	Capsule3Kind
	Plane3Kind

	shape3KindCount
)

// MaxHullVertices bounds the vertex count of a convex hull.
const MaxHullVertices = 64

// MassData3 holds the mass, center of mass and the local inertia tensor about
// the center of mass computed from a shape and a density.
type MassData3 struct {
	Mass   float64
	Center mgl64.Vec3
	I      mgl64.Mat3
}

// Shape3 is a 3D collision primitive. Shapes are immutable once constructed
// and may be shared by many entities.
type Shape3 interface {
	Kind() Shape3Kind
	AABB(xf Transform3) AABB3
	MassData(density float64) MassData3

	// Support returns the local-space point of the shape furthest along d.
	Support(d mgl64.Vec3) mgl64.Vec3

	Validate() bool
}

func diagMat3(x, y, z float64) mgl64.Mat3 {
	return mgl64.Mat3{
		x, 0, 0,
		0, y, 0,
		0, 0, z,
	}
}

// Sphere3 is a sphere centered on the body origin.
type Sphere3 struct {
	Radius float64
}

// MakeSphere3 builds a sphere of radius r.
func MakeSphere3(r float64) *Sphere3 {
	return &Sphere3{Radius: r}
}

func (s *Sphere3) Kind() Shape3Kind { return Sphere3Kind }

func (s *Sphere3) AABB(xf Transform3) AABB3 {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB3{Lower: xf.P.Sub(r), Upper: xf.P.Add(r)}
}

func (s *Sphere3) MassData(density float64) MassData3 {
	mass := density * (4.0 / 3.0) * math.Pi * s.Radius * s.Radius * s.Radius
	i := 0.4 * mass * s.Radius * s.Radius
	return MassData3{Mass: mass, I: diagMat3(i, i, i)}
}

func (s *Sphere3) Support(d mgl64.Vec3) mgl64.Vec3 {
	if d.LenSqr() < Epsilon*Epsilon {
		return mgl64.Vec3{s.Radius, 0, 0}
	}
	return d.Normalize().Mul(s.Radius)
}

func (s *Sphere3) Validate() bool {
	return s.Radius > 0 && IsValidFloat(s.Radius)
}

// Box3 is an oriented box described by half-extents; orientation comes from
// the pose.
type Box3 struct {
	HalfExtents mgl64.Vec3
}

// MakeBox3 builds a box from half-extents.
func MakeBox3(hx, hy, hz float64) *Box3 {
	return &Box3{HalfExtents: mgl64.Vec3{hx, hy, hz}}
}

func (b *Box3) Kind() Shape3Kind { return Box3Kind }

func (b *Box3) AABB(xf Transform3) AABB3 {
	// Project the rotated half-extents onto each world axis.
	m := QuatMat3(xf.Q)
	h := b.HalfExtents
	ext := mgl64.Vec3{
		math.Abs(m.At(0, 0))*h.X() + math.Abs(m.At(0, 1))*h.Y() + math.Abs(m.At(0, 2))*h.Z(),
		math.Abs(m.At(1, 0))*h.X() + math.Abs(m.At(1, 1))*h.Y() + math.Abs(m.At(1, 2))*h.Z(),
		math.Abs(m.At(2, 0))*h.X() + math.Abs(m.At(2, 1))*h.Y() + math.Abs(m.At(2, 2))*h.Z(),
	}
	return AABB3{Lower: xf.P.Sub(ext), Upper: xf.P.Add(ext)}
}

func (b *Box3) MassData(density float64) MassData3 {
	h := b.HalfExtents
	mass := density * 8.0 * h.X() * h.Y() * h.Z()
	k := mass / 3.0
	return MassData3{
		Mass: mass,
		I: diagMat3(
			k*(h.Y()*h.Y()+h.Z()*h.Z()),
			k*(h.X()*h.X()+h.Z()*h.Z()),
			k*(h.X()*h.X()+h.Y()*h.Y()),
		),
	}
}

func (b *Box3) Support(d mgl64.Vec3) mgl64.Vec3 {
	sign := func(x float64) float64 {
		if x >= 0 {
			return 1
		}
		return -1
	}
	return mgl64.Vec3{
		sign(d.X()) * b.HalfExtents.X(),
		sign(d.Y()) * b.HalfExtents.Y(),
		sign(d.Z()) * b.HalfExtents.Z(),
	}
}

func (b *Box3) Validate() bool {
	h := b.HalfExtents
	return h.X() > 0 && h.Y() > 0 && h.Z() > 0 && IsValidVec3(h)
}

// corners returns the eight local-space corner points.
func (b *Box3) corners() [8]mgl64.Vec3 {
	h := b.HalfExtents
	return [8]mgl64.Vec3{
		{-h.X(), -h.Y(), -h.Z()},
		{h.X(), -h.Y(), -h.Z()},
		{h.X(), h.Y(), -h.Z()},
		{-h.X(), h.Y(), -h.Z()},
		{-h.X(), -h.Y(), h.Z()},
		{h.X(), -h.Y(), h.Z()},
		{h.X(), h.Y(), h.Z()},
		{-h.X(), h.Y(), h.Z()},
	}
}

// Hull3 is a convex point cloud. Intersection tests use only the support
// function, so no face or edge topology is stored.
type Hull3 struct {
	Vertices []mgl64.Vec3
}

// MakeHull3 builds a convex hull shape from the given points. The points are
// assumed to already be convex; interior points only cost support time.
func MakeHull3(points []mgl64.Vec3) *Hull3 {
	n := len(points)
	if n > MaxHullVertices {
		n = MaxHullVertices
	}
	vs := make([]mgl64.Vec3, n)
	copy(vs, points[:n])
	return &Hull3{Vertices: vs}
}

func (h *Hull3) Kind() Shape3Kind { return Hull3Kind }

func (h *Hull3) AABB(xf Transform3) AABB3 {
	lower := xf.Apply(h.Vertices[0])
	upper := lower
	for _, v := range h.Vertices[1:] {
		w := xf.Apply(v)
		lower = minVec3(lower, w)
		upper = maxVec3(upper, w)
	}
	return AABB3{Lower: lower, Upper: upper}
}

func (h *Hull3) MassData(density float64) MassData3 {
	// Approximate with the bounding box of the point cloud; exact convex
	// polytope integrals are not worth the cost for a broad-purpose hull.
	lower := h.Vertices[0]
	upper := lower
	for _, v := range h.Vertices[1:] {
		lower = minVec3(lower, v)
		upper = maxVec3(upper, v)
	}
	half := upper.Sub(lower).Mul(0.5)
	center := lower.Add(half)
	box := Box3{HalfExtents: half}
	md := box.MassData(density)
	md.Center = center
	return md
}

func (h *Hull3) Support(d mgl64.Vec3) mgl64.Vec3 {
	best := 0
	bestDot := h.Vertices[0].Dot(d)
	for i := 1; i < len(h.Vertices); i++ {
		dot := h.Vertices[i].Dot(d)
		if dot > bestDot {
			bestDot = dot
			best = i
		}
	}
	return h.Vertices[best]
}

func (h *Hull3) Validate() bool {
	if len(h.Vertices) < 4 || len(h.Vertices) > MaxHullVertices {
		return false
	}
	for _, v := range h.Vertices {
		if !IsValidVec3(v) {
			return false
		}
	}
	return true
}

// Capsule3 is a line segment along the local y axis, inflated by a radius.
type Capsule3 struct {
	HalfLength float64
	Radius     float64
}

// MakeCapsule3 builds a capsule of total height 2*halfLength + 2*r.
func MakeCapsule3(halfLength, r float64) *Capsule3 {
	return &Capsule3{HalfLength: halfLength, Radius: r}
}

func (c *Capsule3) Kind() Shape3Kind { return Capsule3Kind }

func (c *Capsule3) AABB(xf Transform3) AABB3 {
	a := xf.Apply(mgl64.Vec3{0, -c.HalfLength, 0})
	b := xf.Apply(mgl64.Vec3{0, c.HalfLength, 0})
	r := mgl64.Vec3{c.Radius, c.Radius, c.Radius}
	return AABB3{
		Lower: minVec3(a, b).Sub(r),
		Upper: maxVec3(a, b).Add(r),
	}
}

func (c *Capsule3) MassData(density float64) MassData3 {
	r := c.Radius
	l := 2.0 * c.HalfLength

	cylMass := density * math.Pi * r * r * l
	capMass := density * (4.0 / 3.0) * math.Pi * r * r * r

	// Cylinder about its center plus two hemispherical caps shifted to the
	// segment ends (parallel axis).
	ixx := cylMass*(l*l/12.0+r*r/4.0) +
		capMass*(0.4*r*r+c.HalfLength*c.HalfLength+0.75*c.HalfLength*r)
	iyy := cylMass*(r*r/2.0) + capMass*(0.4*r*r)

	return MassData3{
		Mass: cylMass + capMass,
		I:    diagMat3(ixx, iyy, ixx),
	}
}

func (c *Capsule3) Support(d mgl64.Vec3) mgl64.Vec3 {
	var p mgl64.Vec3
	if d.Y() >= 0 {
		p = mgl64.Vec3{0, c.HalfLength, 0}
	} else {
		p = mgl64.Vec3{0, -c.HalfLength, 0}
	}
	if d.LenSqr() < Epsilon*Epsilon {
		return p
	}
	return p.Add(d.Normalize().Mul(c.Radius))
}

func (c *Capsule3) Validate() bool {
	return c.Radius > 0 && c.HalfLength >= 0 &&
		IsValidFloat(c.Radius) && IsValidFloat(c.HalfLength)
}

// Plane3 is the half-space of points p with dot(Normal, p) <= Offset, in
// local space. Intended for static geometry.
type Plane3 struct {
	Normal mgl64.Vec3
	Offset float64
}

// MakePlane3 builds a half-space from an outward normal and an offset along
// it. The normal is normalized.
func MakePlane3(normal mgl64.Vec3, offset float64) *Plane3 {
	return &Plane3{Normal: normal.Normalize(), Offset: offset}
}

func (p *Plane3) Kind() Shape3Kind { return Plane3Kind }

func (p *Plane3) AABB(xf Transform3) AABB3 {
	e := mgl64.Vec3{planeBoundsExtent, planeBoundsExtent, planeBoundsExtent}
	return AABB3{Lower: xf.P.Sub(e), Upper: xf.P.Add(e)}
}

func (p *Plane3) MassData(density float64) MassData3 {
	return MassData3{}
}

func (p *Plane3) Support(d mgl64.Vec3) mgl64.Vec3 {
	// Unbounded; the narrow phase never runs GJK against a half-space.
	return p.Normal.Mul(p.Offset)
}

func (p *Plane3) Validate() bool {
	return IsValidVec3(p.Normal) && IsValidFloat(p.Offset) &&
		math.Abs(p.Normal.Len()-1.0) < 1e-6
}
