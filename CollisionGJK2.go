package impel

import "github.com/go-gl/mathgl/mgl64"

// GJK builds a simplex in the Minkowski difference A-B and reports overlap
// when the simplex encloses the origin; EPA then expands the simplex into a
// polygon to recover the penetration normal and depth. Witness points on
// both shapes ride along with every Minkowski vertex so a world contact
// point falls out of the converged edge.

const (
	gjkMaxIterations = 32
	epaMaxIterations = 32
	epaTolerance     = 0.001
)

// minkowskiPoint2 is a vertex of the Minkowski difference with the support
// points on each shape that produced it.
type minkowskiPoint2 struct {
	P      mgl64.Vec2
	SA, SB mgl64.Vec2
}

func minkowskiSupport2(a Shape2, xfA Transform2, b Shape2, xfB Transform2, d mgl64.Vec2) minkowskiPoint2 {
	sa := xfA.Apply(a.Support(xfA.Q.RotateInv(d)))
	sb := xfB.Apply(b.Support(xfB.Q.RotateInv(d.Mul(-1))))
	return minkowskiPoint2{P: sa.Sub(sb), SA: sa, SB: sb}
}

type simplex2 struct {
	Points [3]minkowskiPoint2
	Count  int
}

// GJK2 reports whether two convex shapes overlap. On overlap the returned
// simplex is a triangle containing the origin, ready for EPA2.
func GJK2(a Shape2, xfA Transform2, b Shape2, xfB Transform2) (simplex2, bool) {
	var s simplex2

	direction := xfB.P.Sub(xfA.P)
	if direction.LenSqr() < Epsilon*Epsilon {
		direction = mgl64.Vec2{1, 0}
	}

	s.Points[0] = minkowskiSupport2(a, xfA, b, xfB, direction)
	s.Count = 1

	direction = s.Points[0].P.Mul(-1)
	if direction.LenSqr() < Epsilon*Epsilon {
		// Touching at a single point.
		return s, true
	}

	for i := 0; i < gjkMaxIterations; i++ {
		p := minkowskiSupport2(a, xfA, b, xfB, direction)

		// The new point does not pass the origin: proven separation.
		if p.P.Dot(direction) <= 0 {
			return s, false
		}

		s.Points[s.Count] = p
		s.Count++

		if simplexContainsOrigin2(&s, &direction) {
			return s, true
		}
	}

	return s, false
}

func simplexContainsOrigin2(s *simplex2, direction *mgl64.Vec2) bool {
	switch s.Count {
	case 2:
		return simplexLine2(s, direction)
	case 3:
		return simplexTriangle2(s, direction)
	}
	return false
}

// tripleProduct computes (a x b) x c lifted through 3D, giving a vector
// perpendicular to c in the plane of a and b.
func tripleProduct(a, b, c mgl64.Vec2) mgl64.Vec2 {
	z := Cross2(a, b)
	return mgl64.Vec2{-z * c.Y(), z * c.X()}
}

func simplexLine2(s *simplex2, direction *mgl64.Vec2) bool {
	a := s.Points[1].P
	b := s.Points[0].P
	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.LenSqr() < Epsilon*Epsilon {
		if ao.LenSqr() < Epsilon*Epsilon {
			return true
		}
		s.Points[0] = s.Points[1]
		s.Count = 1
		*direction = ao
		return false
	}

	// Voronoi region of A alone.
	if ab.Dot(ao) <= 0 {
		s.Points[0] = s.Points[1]
		s.Count = 1
		*direction = ao
		return false
	}

	perp := tripleProduct(ab, ao, ab)
	if perp.LenSqr() < Epsilon*Epsilon {
		// Origin lies on the segment.
		return true
	}

	*direction = perp
	return false
}

func simplexTriangle2(s *simplex2, direction *mgl64.Vec2) bool {
	a := s.Points[2].P
	b := s.Points[1].P
	c := s.Points[0].P

	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)

	abPerp := tripleProduct(ac, ab, ab)
	if abPerp.Dot(ao) > 0 {
		// Region past edge AB; drop C.
		s.Points[0] = s.Points[1]
		s.Points[1] = s.Points[2]
		s.Count = 2
		*direction = abPerp
		return false
	}

	acPerp := tripleProduct(ab, ac, ac)
	if acPerp.Dot(ao) > 0 {
		// Region past edge AC; drop B.
		s.Points[1] = s.Points[2]
		s.Count = 2
		*direction = acPerp
		return false
	}

	return true
}

// epaEdge2 is an edge of the expanding polytope with its outward normal and
// distance to the origin.
type epaEdge2 struct {
	Normal   mgl64.Vec2
	Distance float64
	Index    int
}

// EPAResult2 describes the overlap recovered by EPA: the minimum translation
// direction from A toward B, its magnitude, and a world contact point on the
// overlap region.
type EPAResult2 struct {
	Normal mgl64.Vec2
	Depth  float64
	Point  mgl64.Vec2
}

// EPA2 expands a GJK triangle containing the origin until the closest edge
// of the Minkowski boundary is found, yielding the penetration normal and
// depth.
func EPA2(a Shape2, xfA Transform2, b Shape2, xfB Transform2, s simplex2) (EPAResult2, bool) {
	if s.Count < 3 {
		// Degenerate simplex from a touching contact; synthesize a result
		// from the center line.
		n := xfB.P.Sub(xfA.P)
		if n.LenSqr() < Epsilon*Epsilon {
			n = mgl64.Vec2{1, 0}
		}
		n = n.Normalize()
		return EPAResult2{Normal: n, Depth: 0, Point: xfA.P}, true
	}

	polytope := make([]minkowskiPoint2, 0, 16)
	polytope = append(polytope, s.Points[0], s.Points[1], s.Points[2])

	// Enforce counter-clockwise winding so edge normals point outward.
	e1 := polytope[1].P.Sub(polytope[0].P)
	e2 := polytope[2].P.Sub(polytope[0].P)
	if Cross2(e1, e2) < 0 {
		polytope[1], polytope[2] = polytope[2], polytope[1]
	}

	for i := 0; i < epaMaxIterations; i++ {
		edge := closestEdge2(polytope)

		p := minkowskiSupport2(a, xfA, b, xfB, edge.Normal)
		d := p.P.Dot(edge.Normal)

		if d-edge.Distance < epaTolerance {
			return epaResultFromEdge2(polytope, edge), true
		}

		// Insert the new vertex between the edge endpoints.
		j := edge.Index + 1
		polytope = append(polytope, minkowskiPoint2{})
		copy(polytope[j+1:], polytope[j:])
		polytope[j] = p
	}

	edge := closestEdge2(polytope)
	return epaResultFromEdge2(polytope, edge), true
}

func closestEdge2(polytope []minkowskiPoint2) epaEdge2 {
	best := epaEdge2{Distance: maxFloat}

	for i := range polytope {
		j := (i + 1) % len(polytope)
		from := polytope[i].P
		to := polytope[j].P

		edge := to.Sub(from)
		n := mgl64.Vec2{edge.Y(), -edge.X()}
		if n.LenSqr() < Epsilon*Epsilon {
			continue
		}
		n = n.Normalize()

		dist := n.Dot(from)
		if dist < best.Distance {
			best = epaEdge2{Normal: n, Distance: dist, Index: i}
		}
	}

	return best
}

func epaResultFromEdge2(polytope []minkowskiPoint2, edge epaEdge2) EPAResult2 {
	i := edge.Index
	j := (i + 1) % len(polytope)
	p1 := polytope[i]
	p2 := polytope[j]

	// Barycentric coordinates of the origin's projection onto the edge give
	// the witness point interpolation.
	e := p2.P.Sub(p1.P)
	t := 0.0
	if e.LenSqr() > Epsilon*Epsilon {
		t = clampFloat(-p1.P.Dot(e)/e.LenSqr(), 0, 1)
	}

	wA := p1.SA.Add(p2.SA.Sub(p1.SA).Mul(t))
	wB := p1.SB.Add(p2.SB.Sub(p1.SB).Mul(t))

	depth := edge.Distance
	if depth < 0 {
		depth = 0
	}

	return EPAResult2{
		Normal: edge.Normal,
		Depth:  depth,
		Point:  wA.Add(wB).Mul(0.5),
	}
}
