package impel

import "github.com/go-gl/mathgl/mgl64"

// minkowskiPoint3 is a vertex of the Minkowski difference A-B with the
// support points on each shape that produced it.
type minkowskiPoint3 struct {
	P      mgl64.Vec3
	SA, SB mgl64.Vec3
}

func minkowskiSupport3(a Shape3, xfA Transform3, b Shape3, xfB Transform3, d mgl64.Vec3) minkowskiPoint3 {
	sa := xfA.Apply(a.Support(xfA.Q.Conjugate().Rotate(d)))
	sb := xfB.Apply(b.Support(xfB.Q.Conjugate().Rotate(d.Mul(-1))))
	return minkowskiPoint3{P: sa.Sub(sb), SA: sa, SB: sb}
}

// simplex3 holds 1-4 points of the Minkowski difference: point, line,
// triangle, tetrahedron.
type simplex3 struct {
	Points [4]minkowskiPoint3
	Count  int
}

// GJK3 reports whether two convex shapes overlap. On overlap the returned
// simplex is a tetrahedron containing the origin, ready for EPA3.
func GJK3(a Shape3, xfA Transform3, b Shape3, xfB Transform3) (simplex3, bool) {
	var s simplex3

	// Starting toward the other shape typically reduces iterations.
	direction := xfB.P.Sub(xfA.P)
	if direction.LenSqr() < 1e-8 {
		direction = mgl64.Vec3{1, 0, 0}
	}

	s.Points[0] = minkowskiSupport3(a, xfA, b, xfB, direction)
	s.Count = 1

	direction = s.Points[0].P.Mul(-1)
	if direction.LenSqr() < 1e-16 {
		// Shapes exactly touching at a point.
		return s, true
	}

	for i := 0; i < gjkMaxIterations; i++ {
		p := minkowskiSupport3(a, xfA, b, xfB, direction)

		// The new point does not pass the origin: proven separation.
		if p.P.Dot(direction) <= 0 {
			return s, false
		}

		s.Points[s.Count] = p
		s.Count++

		if simplexContainsOrigin3(&s, &direction) {
			return s, true
		}
	}

	return s, false
}

func simplexContainsOrigin3(s *simplex3, direction *mgl64.Vec3) bool {
	switch s.Count {
	case 2:
		return simplexLine3(s, direction)
	case 3:
		return simplexTriangle3(s, direction)
	case 4:
		return simplexTetrahedron3(s, direction)
	}
	return false
}

func simplexLine3(s *simplex3, direction *mgl64.Vec3) bool {
	a := s.Points[1]
	b := s.Points[0]
	ab := b.P.Sub(a.P)
	ao := a.P.Mul(-1)

	if ab.LenSqr() < 1e-8 {
		if ao.LenSqr() < 1e-8 {
			return true
		}
		s.Points[0] = a
		s.Count = 1
		*direction = ao
		return false
	}

	// Voronoi region of A alone.
	if ab.Dot(ao) <= 0 {
		s.Points[0] = a
		s.Count = 1
		*direction = ao
		return false
	}

	perp := ab.Cross(ao).Cross(ab)
	if perp.LenSqr() < 1e-8 {
		// Origin lies on the segment.
		return true
	}

	*direction = perp
	return false
}

func simplexTriangle3(s *simplex3, direction *mgl64.Vec3) bool {
	a := s.Points[2]
	b := s.Points[1]
	c := s.Points[0]

	ab := b.P.Sub(a.P)
	ac := c.P.Sub(a.P)
	ao := a.P.Mul(-1)

	abc := ab.Cross(ac)

	// Collinear points degenerate to a line.
	if abc.LenSqr() < 1e-10 {
		s.Points[0] = b
		s.Points[1] = a
		s.Count = 2
		return simplexLine3(s, direction)
	}

	// Region past edge AB.
	abPerp := ab.Cross(abc)
	if abPerp.Dot(ao) > 0 {
		s.Points[0] = b
		s.Points[1] = a
		s.Count = 2
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}

	// Region past edge AC.
	acPerp := abc.Cross(ac)
	if acPerp.Dot(ao) > 0 {
		s.Points[0] = c
		s.Points[1] = a
		s.Count = 2
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	if abc.Dot(ao) > 0 {
		*direction = abc
	} else {
		// Below the triangle; reverse winding.
		s.Points[0] = a
		s.Points[1] = c
		s.Points[2] = b
		*direction = abc.Mul(-1)
	}

	return false
}

func simplexTetrahedron3(s *simplex3, direction *mgl64.Vec3) bool {
	a := s.Points[3]
	b := s.Points[2]
	c := s.Points[1]
	d := s.Points[0]

	ab := b.P.Sub(a.P)
	ac := c.P.Sub(a.P)
	ad := d.P.Sub(a.P)
	ao := a.P.Mul(-1)

	// Face normals oriented away from the opposite vertex.
	abc := ab.Cross(ac)
	if abc.Dot(ad) > 0 {
		abc = abc.Mul(-1)
	}
	acd := ac.Cross(ad)
	if acd.Dot(ab) > 0 {
		acd = acd.Mul(-1)
	}
	adb := ad.Cross(ab)
	if adb.Dot(ac) > 0 {
		adb = adb.Mul(-1)
	}

	if abc.LenSqr() < 1e-10 || acd.LenSqr() < 1e-10 || adb.LenSqr() < 1e-10 {
		s.Points[0] = c
		s.Points[1] = b
		s.Points[2] = a
		s.Count = 3
		return simplexTriangle3(s, direction)
	}

	if abc.Dot(ao) > 0 {
		s.Points[0] = c
		s.Points[1] = b
		s.Points[2] = a
		s.Count = 3
		return simplexTriangle3(s, direction)
	}
	if acd.Dot(ao) > 0 {
		s.Points[0] = d
		s.Points[1] = c
		s.Points[2] = a
		s.Count = 3
		return simplexTriangle3(s, direction)
	}
	if adb.Dot(ao) > 0 {
		s.Points[0] = b
		s.Points[1] = d
		s.Points[2] = a
		s.Count = 3
		return simplexTriangle3(s, direction)
	}

	// The origin is inside the tetrahedron.
	return true
}
