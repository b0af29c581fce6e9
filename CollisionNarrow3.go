package impel

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// ContactPoint3 is one point of a contact manifold, in world space.
type ContactPoint3 struct {
	Point   mgl64.Vec3
	Depth   float64
	Feature uint32
}

// Manifold3 describes the overlap of two shapes. Normal points from shape A
// toward shape B and is unit length. Points are ordered deepest first, ties
// broken by lower feature index.
type Manifold3 struct {
	Normal mgl64.Vec3
	Points [MaxManifoldPoints3]ContactPoint3
	Count  int
}

func (m *Manifold3) flip() {
	m.Normal = m.Normal.Mul(-1)
}

func (m *Manifold3) sortPoints() {
	pts := m.Points[:m.Count]
	sort.SliceStable(pts, func(i, j int) bool {
		if pts[i].Depth != pts[j].Depth {
			return pts[i].Depth > pts[j].Depth
		}
		return pts[i].Feature < pts[j].Feature
	})
}

// Collide3 computes the contact manifold of two posed shapes. A zero Count
// means no contact. Plane-plane pairs never collide.
func Collide3(a Shape3, xfA Transform3, b Shape3, xfB Transform3) Manifold3 {
	if a.Kind() > b.Kind() {
		m := Collide3(b, xfB, a, xfA)
		m.flip()
		return m
	}

	var m Manifold3
	switch sa := a.(type) {
	case *Sphere3:
		switch sb := b.(type) {
		case *Sphere3:
			m = collideSpheres3(sa, xfA, sb, xfB)
		case *Box3:
			m = collideSphereBox3(sa, xfA, sb, xfB)
		case *Hull3:
			m = collideConvex3(sa, xfA, sb, xfB)
		case *Capsule3:
			m = collideSphereCapsule3(sa, xfA, sb, xfB)
		case *Plane3:
			m = collideSpherePlane3(sa, xfA, sb, xfB)
		}
	case *Box3:
		switch sb := b.(type) {
		case *Plane3:
			m = collideBoxPlane3(sa, xfA, sb, xfB)
		default:
			m = collideConvex3(sa, xfA, b, xfB)
		}
	case *Hull3:
		switch sb := b.(type) {
		case *Plane3:
			m = collideHullPlane3(sa, xfA, sb, xfB)
		default:
			m = collideConvex3(sa, xfA, b, xfB)
		}
	case *Capsule3:
		switch sb := b.(type) {
		case *Capsule3:
			m = collideCapsules3(sa, xfA, sb, xfB)
		case *Plane3:
			m = collideCapsulePlane3(sa, xfA, sb, xfB)
		}
	}

	m.sortPoints()
	return m
}

// sphereContact3 builds a one-point manifold between two world-space
// spheres.
func sphereContact3(pA mgl64.Vec3, rA float64, pB mgl64.Vec3, rB float64, feature uint32) Manifold3 {
	var m Manifold3

	d := pB.Sub(pA)
	distSqr := d.LenSqr()
	radius := rA + rB
	if distSqr > radius*radius {
		return m
	}

	var normal mgl64.Vec3
	dist := 0.0
	if distSqr > Epsilon*Epsilon {
		dist = math.Sqrt(distSqr)
		normal = d.Mul(1.0 / dist)
	} else {
		normal = mgl64.Vec3{1, 0, 0}
	}

	surfaceA := pA.Add(normal.Mul(rA))
	surfaceB := pB.Sub(normal.Mul(rB))

	m.Normal = normal
	m.Count = 1
	m.Points[0] = ContactPoint3{
		Point:   surfaceA.Add(surfaceB).Mul(0.5),
		Depth:   radius - dist,
		Feature: feature,
	}
	return m
}

func collideSpheres3(a *Sphere3, xfA Transform3, b *Sphere3, xfB Transform3) Manifold3 {
	return sphereContact3(xfA.P, a.Radius, xfB.P, b.Radius, 0)
}

func collideSphereBox3(a *Sphere3, xfA Transform3, b *Box3, xfB Transform3) Manifold3 {
	var m Manifold3

	// Sphere center in the box frame.
	cLocal := xfB.ApplyInv(xfA.P)
	h := b.HalfExtents

	closest := mgl64.Vec3{
		clampFloat(cLocal.X(), -h.X(), h.X()),
		clampFloat(cLocal.Y(), -h.Y(), h.Y()),
		clampFloat(cLocal.Z(), -h.Z(), h.Z()),
	}

	delta := cLocal.Sub(closest)
	distSqr := delta.LenSqr()

	if distSqr > Epsilon*Epsilon {
		// Center outside the box.
		if distSqr > a.Radius*a.Radius {
			return m
		}
		dist := math.Sqrt(distSqr)

		// Normal from A (sphere) toward B (box).
		outLocal := delta.Mul(1.0 / dist)
		m.Normal = QuatMat3(xfB.Q).Mul3x1(outLocal).Mul(-1)
		m.Count = 1
		m.Points[0] = ContactPoint3{
			Point: xfB.Apply(closest),
			Depth: a.Radius - dist,
		}
		return m
	}

	// Center inside the box: push out along the axis of least penetration.
	axis := 0
	sep := h.X() - math.Abs(cLocal.X())
	if d := h.Y() - math.Abs(cLocal.Y()); d < sep {
		sep = d
		axis = 1
	}
	if d := h.Z() - math.Abs(cLocal.Z()); d < sep {
		sep = d
		axis = 2
	}

	var outLocal mgl64.Vec3
	if cLocal[axis] >= 0 {
		outLocal[axis] = 1
		closest[axis] = h[axis]
	} else {
		outLocal[axis] = -1
		closest[axis] = -h[axis]
	}

	m.Normal = QuatMat3(xfB.Q).Mul3x1(outLocal).Mul(-1)
	m.Count = 1
	m.Points[0] = ContactPoint3{
		Point: xfB.Apply(closest),
		Depth: a.Radius + sep,
	}
	return m
}

func collideSphereCapsule3(a *Sphere3, xfA Transform3, b *Capsule3, xfB Transform3) Manifold3 {
	p1 := xfB.Apply(mgl64.Vec3{0, -b.HalfLength, 0})
	p2 := xfB.Apply(mgl64.Vec3{0, b.HalfLength, 0})
	closest := closestOnSegment3(xfA.P, p1, p2)
	return sphereContact3(xfA.P, a.Radius, closest, b.Radius, 0)
}

func collideSpherePlane3(a *Sphere3, xfA Transform3, b *Plane3, xfB Transform3) Manifold3 {
	var m Manifold3

	dist := planeDistance3(b, xfB, xfA.P)
	if dist > a.Radius {
		return m
	}

	outward := xfB.Q.Rotate(b.Normal)
	m.Normal = outward.Mul(-1)
	m.Count = 1
	m.Points[0] = ContactPoint3{
		Point: xfA.P.Add(m.Normal.Mul(a.Radius)),
		Depth: a.Radius - dist,
	}
	return m
}

// planeDistance3 is the signed distance of a world point above the plane's
// surface.
func planeDistance3(p *Plane3, xf Transform3, world mgl64.Vec3) float64 {
	return p.Normal.Dot(xf.ApplyInv(world)) - p.Offset
}

func collideBoxPlane3(a *Box3, xfA Transform3, b *Plane3, xfB Transform3) Manifold3 {
	corners := a.corners()
	world := make([]mgl64.Vec3, len(corners))
	for i, c := range corners {
		world[i] = xfA.Apply(c)
	}
	return pointsAgainstPlane3(world, b, xfB)
}

func collideHullPlane3(a *Hull3, xfA Transform3, b *Plane3, xfB Transform3) Manifold3 {
	world := make([]mgl64.Vec3, len(a.Vertices))
	for i, v := range a.Vertices {
		world[i] = xfA.Apply(v)
	}
	return pointsAgainstPlane3(world, b, xfB)
}

// pointsAgainstPlane3 keeps the deepest vertices below the plane surface, up
// to the manifold capacity.
func pointsAgainstPlane3(world []mgl64.Vec3, b *Plane3, xfB Transform3) Manifold3 {
	var m Manifold3

	outward := xfB.Q.Rotate(b.Normal)
	m.Normal = outward.Mul(-1)

	type candidate struct {
		point mgl64.Vec3
		depth float64
		index int
	}
	var cands []candidate
	for i, w := range world {
		dist := planeDistance3(b, xfB, w)
		if dist <= 0 {
			cands = append(cands, candidate{point: w, depth: -dist, index: i})
		}
	}
	if len(cands) == 0 {
		return m
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].depth != cands[j].depth {
			return cands[i].depth > cands[j].depth
		}
		return cands[i].index < cands[j].index
	})

	for i := 0; i < len(cands) && i < MaxManifoldPoints3; i++ {
		m.Points[m.Count] = ContactPoint3{
			Point:   cands[i].point,
			Depth:   cands[i].depth,
			Feature: uint32(cands[i].index),
		}
		m.Count++
	}
	return m
}

func collideCapsules3(a *Capsule3, xfA Transform3, b *Capsule3, xfB Transform3) Manifold3 {
	a1 := xfA.Apply(mgl64.Vec3{0, -a.HalfLength, 0})
	a2 := xfA.Apply(mgl64.Vec3{0, a.HalfLength, 0})
	b1 := xfB.Apply(mgl64.Vec3{0, -b.HalfLength, 0})
	b2 := xfB.Apply(mgl64.Vec3{0, b.HalfLength, 0})

	pA, pB := closestSegmentSegment3(a1, a2, b1, b2)
	return sphereContact3(pA, a.Radius, pB, b.Radius, 0)
}

func collideCapsulePlane3(a *Capsule3, xfA Transform3, b *Plane3, xfB Transform3) Manifold3 {
	var m Manifold3

	outward := xfB.Q.Rotate(b.Normal)
	m.Normal = outward.Mul(-1)

	ends := [2]mgl64.Vec3{
		xfA.Apply(mgl64.Vec3{0, -a.HalfLength, 0}),
		xfA.Apply(mgl64.Vec3{0, a.HalfLength, 0}),
	}
	for i, e := range ends {
		dist := planeDistance3(b, xfB, e)
		if dist <= a.Radius {
			m.Points[m.Count] = ContactPoint3{
				Point:   e.Add(m.Normal.Mul(a.Radius)),
				Depth:   a.Radius - dist,
				Feature: uint32(i),
			}
			m.Count++
		}
	}
	return m
}

// collideConvex3 is the general convex-convex fallback built on GJK and EPA.
// It produces a single contact point.
func collideConvex3(a Shape3, xfA Transform3, b Shape3, xfB Transform3) Manifold3 {
	var m Manifold3

	s, hit := GJK3(a, xfA, b, xfB)
	if !hit {
		return m
	}

	res, ok := EPA3(a, xfA, b, xfB, s)
	if !ok {
		return m
	}

	m.Normal = res.Normal
	m.Count = 1
	m.Points[0] = ContactPoint3{Point: res.Point, Depth: res.Depth}
	return m
}

// closestOnSegment3 projects p onto the segment ab.
func closestOnSegment3(p, a, b mgl64.Vec3) mgl64.Vec3 {
	e := b.Sub(a)
	lenSqr := e.LenSqr()
	if lenSqr < Epsilon*Epsilon {
		return a
	}
	t := clampFloat(p.Sub(a).Dot(e)/lenSqr, 0, 1)
	return a.Add(e.Mul(t))
}

// closestSegmentSegment3 returns the closest points between two segments.
// From Real-Time Collision Detection, p149.
func closestSegmentSegment3(p1, q1, p2, q2 mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)

	a := d1.LenSqr()
	e := d2.LenSqr()
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a < Epsilon && e < Epsilon:
		return p1, p2
	case a < Epsilon:
		t = clampFloat(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e < Epsilon {
			s = clampFloat(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom > Epsilon {
				s = clampFloat((b*f-c*e)/denom, 0, 1)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clampFloat(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = clampFloat((b-c)/a, 0, 1)
			}
		}
	}

	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}
