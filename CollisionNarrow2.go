package impel

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// ContactPoint2 is one point of a contact manifold, in world space. Depth is
// the penetration along the manifold normal, non-negative. Feature encodes
// the generating feature pair and breaks ties when depths are equal.
type ContactPoint2 struct {
	Point   mgl64.Vec2
	Depth   float64
	Feature uint32
}

// Manifold2 describes the overlap of two shapes. Normal points from shape A
// toward shape B and is unit length. Points are ordered deepest first, ties
// broken by lower feature index.
type Manifold2 struct {
	Normal mgl64.Vec2
	Points [MaxManifoldPoints2]ContactPoint2
	Count  int
}

func (m *Manifold2) flip() {
	m.Normal = m.Normal.Mul(-1)
}

func (m *Manifold2) sortPoints() {
	pts := m.Points[:m.Count]
	sort.SliceStable(pts, func(i, j int) bool {
		if pts[i].Depth != pts[j].Depth {
			return pts[i].Depth > pts[j].Depth
		}
		return pts[i].Feature < pts[j].Feature
	})
}

func clipFeature(indexA, indexB uint8) uint32 {
	return uint32(indexA)<<8 | uint32(indexB)
}

// Collide2 computes the contact manifold of two posed shapes. A zero Count
// means no contact. Plane-plane pairs never collide.
func Collide2(a Shape2, xfA Transform2, b Shape2, xfB Transform2) Manifold2 {
	// Canonicalize on kind order so each routine handles one arrangement.
	if a.Kind() > b.Kind() {
		m := Collide2(b, xfB, a, xfA)
		m.flip()
		return m
	}

	var m Manifold2
	switch sa := a.(type) {
	case *Circle2:
		switch sb := b.(type) {
		case *Circle2:
			m = collideCircles2(sa, xfA, sb, xfB)
		case *Polygon2:
			m = collideCirclePolygon2(sa, xfA, sb, xfB)
		case *Capsule2:
			m = collideCircleCapsule2(sa, xfA, sb, xfB)
		case *Plane2:
			m = collideCirclePlane2(sa, xfA, sb, xfB)
		}
	case *Polygon2:
		switch sb := b.(type) {
		case *Polygon2:
			m = collidePolygons2(sa, xfA, sb, xfB)
		case *Capsule2:
			m = collideConvex2(sa, xfA, sb, xfB)
		case *Plane2:
			m = collidePolygonPlane2(sa, xfA, sb, xfB)
		}
	case *Capsule2:
		switch sb := b.(type) {
		case *Capsule2:
			m = collideCapsules2(sa, xfA, sb, xfB)
		case *Plane2:
			m = collideCapsulePlane2(sa, xfA, sb, xfB)
		}
	}

	m.sortPoints()
	return m
}

func collideCircles2(a *Circle2, xfA Transform2, b *Circle2, xfB Transform2) Manifold2 {
	pA := xfA.Apply(a.P)
	pB := xfB.Apply(b.P)
	return circleContact2(pA, a.Radius, pB, b.Radius, 0)
}

// circleContact2 builds a one-point manifold between two world-space circles.
func circleContact2(pA mgl64.Vec2, rA float64, pB mgl64.Vec2, rB float64, feature uint32) Manifold2 {
	var m Manifold2

	d := pB.Sub(pA)
	distSqr := d.LenSqr()
	radius := rA + rB
	if distSqr > radius*radius {
		return m
	}

	var normal mgl64.Vec2
	dist := 0.0
	if distSqr > Epsilon*Epsilon {
		dist = math.Sqrt(distSqr)
		normal = d.Mul(1.0 / dist)
	} else {
		// Coincident centers; any direction works, pick a fixed one.
		normal = mgl64.Vec2{1, 0}
	}

	surfaceA := pA.Add(normal.Mul(rA))
	surfaceB := pB.Sub(normal.Mul(rB))

	m.Normal = normal
	m.Count = 1
	m.Points[0] = ContactPoint2{
		Point:   surfaceA.Add(surfaceB).Mul(0.5),
		Depth:   radius - dist,
		Feature: feature,
	}
	return m
}

func collideCirclePolygon2(a *Circle2, xfA Transform2, b *Polygon2, xfB Transform2) Manifold2 {
	var m Manifold2

	// Circle center in the polygon's frame.
	c := xfA.Apply(a.P)
	cLocal := xfB.ApplyInv(c)

	// Min separating edge.
	normalIndex := 0
	separation := -maxFloat
	r := a.Radius
	for i := 0; i < b.Count; i++ {
		s := b.Normals[i].Dot(cLocal.Sub(b.Vertices[i]))
		if s > r {
			return m
		}
		if s > separation {
			separation = s
			normalIndex = i
		}
	}

	i1 := normalIndex
	i2 := 0
	if i1+1 < b.Count {
		i2 = i1 + 1
	}
	v1 := b.Vertices[i1]
	v2 := b.Vertices[i2]

	// Outward normal of the polygon at the closest feature, in local frame.
	var localNormal mgl64.Vec2
	var depth float64
	if separation < Epsilon {
		// Center inside the polygon.
		localNormal = b.Normals[normalIndex]
		depth = r - separation
	} else {
		u1 := cLocal.Sub(v1).Dot(v2.Sub(v1))
		u2 := cLocal.Sub(v2).Dot(v1.Sub(v2))
		switch {
		case u1 <= 0:
			if cLocal.Sub(v1).LenSqr() > r*r {
				return m
			}
			localNormal = cLocal.Sub(v1).Normalize()
			depth = r - cLocal.Sub(v1).Len()
		case u2 <= 0:
			if cLocal.Sub(v2).LenSqr() > r*r {
				return m
			}
			localNormal = cLocal.Sub(v2).Normalize()
			depth = r - cLocal.Sub(v2).Len()
		default:
			faceCenter := v1.Add(v2).Mul(0.5)
			s := cLocal.Sub(faceCenter).Dot(b.Normals[i1])
			if s > r {
				return m
			}
			localNormal = b.Normals[i1]
			depth = r - s
		}
	}

	// World normal points from the polygon toward the circle; manifold
	// normal runs A (circle) to B (polygon).
	outward := xfB.Q.Rotate(localNormal)
	m.Normal = outward.Mul(-1)
	m.Count = 1
	m.Points[0] = ContactPoint2{
		Point:   c.Add(m.Normal.Mul(r - 0.5*depth)),
		Depth:   depth,
		Feature: uint32(normalIndex),
	}
	return m
}

func collideCircleCapsule2(a *Circle2, xfA Transform2, b *Capsule2, xfB Transform2) Manifold2 {
	c := xfA.Apply(a.P)

	p1 := xfB.Apply(mgl64.Vec2{-b.HalfLength, 0})
	p2 := xfB.Apply(mgl64.Vec2{b.HalfLength, 0})
	closest := closestOnSegment2(c, p1, p2)

	return circleContact2(c, a.Radius, closest, b.Radius, 0)
}

func collideCirclePlane2(a *Circle2, xfA Transform2, b *Plane2, xfB Transform2) Manifold2 {
	var m Manifold2

	c := xfA.Apply(a.P)
	dist := planeDistance2(b, xfB, c)
	if dist > a.Radius {
		return m
	}

	outward := xfB.Q.Rotate(b.Normal)
	m.Normal = outward.Mul(-1)
	m.Count = 1
	m.Points[0] = ContactPoint2{
		Point: c.Add(m.Normal.Mul(a.Radius)),
		Depth: a.Radius - dist,
	}
	return m
}

// planeDistance2 is the signed distance of a world point above the plane's
// surface.
func planeDistance2(p *Plane2, xf Transform2, world mgl64.Vec2) float64 {
	return p.Normal.Dot(xf.ApplyInv(world)) - p.Offset
}

type clipVertex2 struct {
	V       mgl64.Vec2
	Feature uint32
}

// clipSegmentToLine is Sutherland-Hodgman clipping of a two-vertex segment
// against a half-plane.
func clipSegmentToLine(vOut *[2]clipVertex2, vIn [2]clipVertex2, normal mgl64.Vec2, offset float64, indexA uint8) int {
	numOut := 0

	distance0 := normal.Dot(vIn[0].V) - offset
	distance1 := normal.Dot(vIn[1].V) - offset

	if distance0 <= 0 {
		vOut[numOut] = vIn[0]
		numOut++
	}
	if distance1 <= 0 {
		vOut[numOut] = vIn[1]
		numOut++
	}

	if distance0*distance1 < 0 {
		interp := distance0 / (distance0 - distance1)
		vOut[numOut] = clipVertex2{
			V:       vIn[0].V.Add(vIn[1].V.Sub(vIn[0].V).Mul(interp)),
			Feature: clipFeature(indexA, uint8(vIn[0].Feature)),
		}
		numOut++
	}

	return numOut
}

// findMaxSeparation finds the edge of poly1 with maximum separation from
// poly2, measured along poly1's edge normals.
func findMaxSeparation(poly1 *Polygon2, xf1 Transform2, poly2 *Polygon2, xf2 Transform2) (int, float64) {
	xf := xf2.MulT(xf1)

	bestIndex := 0
	maxSeparation := -maxFloat
	for i := 0; i < poly1.Count; i++ {
		// poly1's normal and vertex in poly2's frame.
		n := xf.Q.Rotate(poly1.Normals[i])
		v1 := xf.Apply(poly1.Vertices[i])

		si := maxFloat
		for j := 0; j < poly2.Count; j++ {
			sij := n.Dot(poly2.Vertices[j].Sub(v1))
			if sij < si {
				si = sij
			}
		}

		if si > maxSeparation {
			maxSeparation = si
			bestIndex = i
		}
	}

	return bestIndex, maxSeparation
}

// findIncidentEdge returns the edge of poly2 most anti-parallel to the
// reference edge of poly1, in world space.
func findIncidentEdge(poly1 *Polygon2, xf1 Transform2, edge1 int, poly2 *Polygon2, xf2 Transform2) [2]clipVertex2 {
	// Reference normal in poly2's frame.
	normal1 := xf2.Q.RotateInv(xf1.Q.Rotate(poly1.Normals[edge1]))

	index := 0
	minDot := maxFloat
	for i := 0; i < poly2.Count; i++ {
		dot := normal1.Dot(poly2.Normals[i])
		if dot < minDot {
			minDot = dot
			index = i
		}
	}

	i1 := index
	i2 := 0
	if i1+1 < poly2.Count {
		i2 = i1 + 1
	}

	return [2]clipVertex2{
		{V: xf2.Apply(poly2.Vertices[i1]), Feature: clipFeature(uint8(edge1), uint8(i1))},
		{V: xf2.Apply(poly2.Vertices[i2]), Feature: clipFeature(uint8(edge1), uint8(i2))},
	}
}

// collidePolygons2 clips the incident edge of one polygon against the
// reference face of the other, keeping up to two points behind the face.
func collidePolygons2(a *Polygon2, xfA Transform2, b *Polygon2, xfB Transform2) Manifold2 {
	var m Manifold2

	edgeA, separationA := findMaxSeparation(a, xfA, b, xfB)
	if separationA > 0 {
		return m
	}
	edgeB, separationB := findMaxSeparation(b, xfB, a, xfA)
	if separationB > 0 {
		return m
	}

	var poly1, poly2 *Polygon2
	var xf1, xf2 Transform2
	var edge1 int
	flip := false
	const tol = 0.1 * 0.005

	if separationB > separationA+tol {
		poly1, poly2 = b, a
		xf1, xf2 = xfB, xfA
		edge1 = edgeB
		flip = true
	} else {
		poly1, poly2 = a, b
		xf1, xf2 = xfA, xfB
		edge1 = edgeA
	}

	incident := findIncidentEdge(poly1, xf1, edge1, poly2, xf2)

	iv1 := edge1
	iv2 := 0
	if edge1+1 < poly1.Count {
		iv2 = edge1 + 1
	}

	v11 := xf1.Apply(poly1.Vertices[iv1])
	v12 := xf1.Apply(poly1.Vertices[iv2])

	tangent := v12.Sub(v11).Normalize()
	normal := CrossVec2Scalar(tangent, 1.0)

	frontOffset := normal.Dot(v11)
	sideOffset1 := -tangent.Dot(v11)
	sideOffset2 := tangent.Dot(v12)

	var clip1, clip2 [2]clipVertex2
	if clipSegmentToLine(&clip1, incident, tangent.Mul(-1), sideOffset1, uint8(iv1)) < 2 {
		return m
	}
	if clipSegmentToLine(&clip2, clip1, tangent, sideOffset2, uint8(iv2)) < 2 {
		return m
	}

	// Normal runs from the reference polygon toward the incident one.
	if flip {
		m.Normal = normal.Mul(-1)
	} else {
		m.Normal = normal
	}

	for i := 0; i < 2; i++ {
		separation := normal.Dot(clip2[i].V) - frontOffset
		if separation <= 0 {
			m.Points[m.Count] = ContactPoint2{
				Point:   clip2[i].V,
				Depth:   -separation,
				Feature: clip2[i].Feature,
			}
			m.Count++
		}
	}

	return m
}

// collideConvex2 is the general convex-convex fallback built on GJK and EPA.
// It produces a single contact point.
func collideConvex2(a Shape2, xfA Transform2, b Shape2, xfB Transform2) Manifold2 {
	var m Manifold2

	s, hit := GJK2(a, xfA, b, xfB)
	if !hit {
		return m
	}

	res, ok := EPA2(a, xfA, b, xfB, s)
	if !ok {
		return m
	}

	m.Normal = res.Normal
	m.Count = 1
	m.Points[0] = ContactPoint2{Point: res.Point, Depth: res.Depth}
	return m
}

func collidePolygonPlane2(a *Polygon2, xfA Transform2, b *Plane2, xfB Transform2) Manifold2 {
	var m Manifold2

	outward := xfB.Q.Rotate(b.Normal)
	m.Normal = outward.Mul(-1)

	// Gather every vertex below the surface; keep the two deepest.
	type candidate struct {
		point mgl64.Vec2
		depth float64
		index int
	}
	var cands []candidate
	for i := 0; i < a.Count; i++ {
		w := xfA.Apply(a.Vertices[i])
		dist := planeDistance2(b, xfB, w)
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

	for i := 0; i < len(cands) && i < MaxManifoldPoints2; i++ {
		m.Points[m.Count] = ContactPoint2{
			Point:   cands[i].point,
			Depth:   cands[i].depth,
			Feature: uint32(cands[i].index),
		}
		m.Count++
	}
	return m
}

func collideCapsules2(a *Capsule2, xfA Transform2, b *Capsule2, xfB Transform2) Manifold2 {
	a1 := xfA.Apply(mgl64.Vec2{-a.HalfLength, 0})
	a2 := xfA.Apply(mgl64.Vec2{a.HalfLength, 0})
	b1 := xfB.Apply(mgl64.Vec2{-b.HalfLength, 0})
	b2 := xfB.Apply(mgl64.Vec2{b.HalfLength, 0})

	pA, pB := closestSegmentSegment2(a1, a2, b1, b2)
	return circleContact2(pA, a.Radius, pB, b.Radius, 0)
}

func collideCapsulePlane2(a *Capsule2, xfA Transform2, b *Plane2, xfB Transform2) Manifold2 {
	var m Manifold2

	outward := xfB.Q.Rotate(b.Normal)
	m.Normal = outward.Mul(-1)

	ends := [2]mgl64.Vec2{
		xfA.Apply(mgl64.Vec2{-a.HalfLength, 0}),
		xfA.Apply(mgl64.Vec2{a.HalfLength, 0}),
	}
	for i, e := range ends {
		dist := planeDistance2(b, xfB, e)
		if dist <= a.Radius {
			m.Points[m.Count] = ContactPoint2{
				Point:   e.Add(m.Normal.Mul(a.Radius)),
				Depth:   a.Radius - dist,
				Feature: uint32(i),
			}
			m.Count++
		}
	}
	return m
}

// closestOnSegment2 projects p onto the segment ab.
func closestOnSegment2(p, a, b mgl64.Vec2) mgl64.Vec2 {
	e := b.Sub(a)
	lenSqr := e.LenSqr()
	if lenSqr < Epsilon*Epsilon {
		return a
	}
	t := clampFloat(p.Sub(a).Dot(e)/lenSqr, 0, 1)
	return a.Add(e.Mul(t))
}

// closestSegmentSegment2 returns the closest points between two segments.
// From Real-Time Collision Detection, p149.
func closestSegmentSegment2(p1, q1, p2, q2 mgl64.Vec2) (mgl64.Vec2, mgl64.Vec2) {
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
