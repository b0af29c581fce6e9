package impel

import "github.com/go-gl/mathgl/mgl64"

// EPA3 expands the tetrahedron produced by GJK3 face by face until it finds
// the facet of the Minkowski boundary closest to the origin. That facet's
// outward normal is the minimum translation direction from A toward B, its
// distance the penetration depth.

// epaMinFaceDistance rejects faces behind or through the origin as
// degenerate.
const epaMinFaceDistance = 0.0001

// EPAResult3 describes the overlap recovered by EPA: the minimum translation
// direction from A toward B, its magnitude, and a world contact point.
type EPAResult3 struct {
	Normal mgl64.Vec3
	Depth  float64
	Point  mgl64.Vec3
}

type epaFace3 struct {
	A, B, C  int
	Normal   mgl64.Vec3
	Distance float64
}

func makeFace3(verts []minkowskiPoint3, a, b, c int) (epaFace3, bool) {
	ab := verts[b].P.Sub(verts[a].P)
	ac := verts[c].P.Sub(verts[a].P)
	n := ab.Cross(ac)
	if n.LenSqr() < 1e-12 {
		return epaFace3{}, false
	}
	n = n.Normalize()

	dist := n.Dot(verts[a].P)
	if dist < 0 {
		// Flip winding so the normal points away from the enclosed origin.
		n = n.Mul(-1)
		dist = -dist
		b, c = c, b
	}

	return epaFace3{A: a, B: b, C: c, Normal: n, Distance: dist}, true
}

// EPA3 recovers penetration data from a GJK simplex that contains the
// origin. Degenerate simplices fall back to a center-line estimate.
func EPA3(a Shape3, xfA Transform3, b Shape3, xfB Transform3, s simplex3) (EPAResult3, bool) {
	if s.Count < 4 {
		return epaDegenerate3(xfA, xfB, s), true
	}

	verts := make([]minkowskiPoint3, 0, 16)
	verts = append(verts, s.Points[0], s.Points[1], s.Points[2], s.Points[3])

	faces := make([]epaFace3, 0, 32)
	for _, tri := range [4][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}} {
		if f, ok := makeFace3(verts, tri[0], tri[1], tri[2]); ok {
			faces = append(faces, f)
		}
	}
	if len(faces) == 0 {
		return epaDegenerate3(xfA, xfB, s), true
	}

	for i := 0; i < epaMaxIterations; i++ {
		closest := closestFace3(faces)
		face := faces[closest]

		if face.Distance < epaMinFaceDistance && len(faces) > 1 {
			faces = append(faces[:closest], faces[closest+1:]...)
			continue
		}

		p := minkowskiSupport3(a, xfA, b, xfB, face.Normal)
		d := p.P.Dot(face.Normal)

		if d-face.Distance < epaTolerance {
			return epaResultFromFace3(verts, face), true
		}

		verts = append(verts, p)
		faces = expandPolytope3(verts, faces, len(verts)-1)
		if len(faces) == 0 {
			return epaResultFromFace3(verts, face), true
		}
	}

	closest := closestFace3(faces)
	return epaResultFromFace3(verts, faces[closest]), true
}

func closestFace3(faces []epaFace3) int {
	best := 0
	bestDist := faces[0].Distance
	for i := 1; i < len(faces); i++ {
		if faces[i].Distance < bestDist {
			bestDist = faces[i].Distance
			best = i
		}
	}
	return best
}

// expandPolytope3 removes every face visible from the new vertex and
// re-triangulates the horizon against it.
func expandPolytope3(verts []minkowskiPoint3, faces []epaFace3, newIndex int) []epaFace3 {
	p := verts[newIndex].P

	type edge struct{ A, B int }
	horizon := make(map[edge]int)
	addEdge := func(a, b int) {
		// A shared edge appears once in each direction and cancels out.
		if _, ok := horizon[edge{b, a}]; ok {
			delete(horizon, edge{b, a})
			return
		}
		horizon[edge{a, b}]++
	}

	kept := faces[:0]
	for _, f := range faces {
		if f.Normal.Dot(p.Sub(verts[f.A].P)) > 0 {
			addEdge(f.A, f.B)
			addEdge(f.B, f.C)
			addEdge(f.C, f.A)
		} else {
			kept = append(kept, f)
		}
	}

	for e := range horizon {
		if f, ok := makeFace3(verts, e.A, e.B, newIndex); ok {
			kept = append(kept, f)
		}
	}

	return kept
}

func epaResultFromFace3(verts []minkowskiPoint3, face epaFace3) EPAResult3 {
	va := verts[face.A]
	vb := verts[face.B]
	vc := verts[face.C]

	// Project the origin onto the face plane and express it in barycentric
	// coordinates to interpolate the witness points.
	proj := face.Normal.Mul(face.Distance)
	u, v, w := barycentric3(proj, va.P, vb.P, vc.P)

	wA := va.SA.Mul(u).Add(vb.SA.Mul(v)).Add(vc.SA.Mul(w))
	wB := va.SB.Mul(u).Add(vb.SB.Mul(v)).Add(vc.SB.Mul(w))

	return EPAResult3{
		Normal: face.Normal,
		Depth:  face.Distance,
		Point:  wA.Add(wB).Mul(0.5),
	}
}

// barycentric3 returns the barycentric coordinates of p in triangle abc.
// From Real-Time Collision Detection, p47.
func barycentric3(p, a, b, c mgl64.Vec3) (float64, float64, float64) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	denom := d00*d11 - d01*d01
	if absFloat(denom) < 1e-12 {
		return 1, 0, 0
	}

	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	u := 1.0 - v - w
	return u, v, w
}

func epaDegenerate3(xfA, xfB Transform3, s simplex3) EPAResult3 {
	n := xfB.P.Sub(xfA.P)
	if n.LenSqr() < 1e-16 {
		n = mgl64.Vec3{0, 1, 0}
	} else {
		n = n.Normalize()
	}
	return EPAResult3{Normal: n, Depth: 0, Point: xfA.P}
}
