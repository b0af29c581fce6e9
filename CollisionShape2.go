package impel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape2Kind discriminates the closed set of 2D primitives.
type Shape2Kind uint8

const (
	Circle2Kind Shape2Kind = iota
	Polygon2Kind
	Capsule2Kind
	Plane2Kind

	shape2KindCount
)

// MassData2 holds the mass, center of mass and rotational inertia computed
// from a shape and a density. Inertia is about the body origin.
type MassData2 struct {
	Mass   float64
	Center mgl64.Vec2
	I      float64
}

// Shape2 is a 2D collision primitive. Shapes are immutable once constructed
// and may be shared by many entities; they carry no world-space state.
type Shape2 interface {
	Kind() Shape2Kind

	// AABB returns a box fully containing the shape under the pose.
	AABB(xf Transform2) AABB2

	// MassData computes mass properties for the given density.
	MassData(density float64) MassData2

	// Support returns the local-space point of the shape furthest along d.
	Support(d mgl64.Vec2) mgl64.Vec2

	// Validate reports whether the shape's parameters are usable. Entities
	// carrying an invalid shape are rejected for the tick, not simulated.
	Validate() bool
}

// planeBoundsExtent bounds the AABB of a half-plane. Half-planes are infinite;
// any finite conservative box must be clamped somewhere.
const planeBoundsExtent = 1e9

// Circle2 is a circle at a local-space center.
type Circle2 struct {
	P      mgl64.Vec2
	Radius float64
}

// MakeCircle2 builds a circle of radius r centered on the body origin.
func MakeCircle2(r float64) *Circle2 {
	return &Circle2{Radius: r}
}

func (c *Circle2) Kind() Shape2Kind { return Circle2Kind }

func (c *Circle2) AABB(xf Transform2) AABB2 {
	p := xf.Apply(c.P)
	r := mgl64.Vec2{c.Radius, c.Radius}
	return AABB2{Lower: p.Sub(r), Upper: p.Add(r)}
}

func (c *Circle2) MassData(density float64) MassData2 {
	mass := density * math.Pi * c.Radius * c.Radius
	return MassData2{
		Mass:   mass,
		Center: c.P,
		I:      mass * (0.5*c.Radius*c.Radius + c.P.Dot(c.P)),
	}
}

func (c *Circle2) Support(d mgl64.Vec2) mgl64.Vec2 {
	if d.LenSqr() < Epsilon*Epsilon {
		return c.P.Add(mgl64.Vec2{c.Radius, 0})
	}
	return c.P.Add(d.Normalize().Mul(c.Radius))
}

func (c *Circle2) Validate() bool {
	return c.Radius > 0 && IsValidFloat(c.Radius) && IsValidVec2(c.P)
}

// Polygon2 is a convex polygon in counter-clockwise winding. The interior is
// to the left of each edge.
type Polygon2 struct {
	Vertices [MaxPolygonVertices]mgl64.Vec2
	Normals  [MaxPolygonVertices]mgl64.Vec2
	Count    int
	Centroid mgl64.Vec2
}

// MakeBox2 builds an axis-aligned box polygon from half-widths.
func MakeBox2(hx, hy float64) *Polygon2 {
	p := &Polygon2{Count: 4}
	p.Vertices[0] = mgl64.Vec2{-hx, -hy}
	p.Vertices[1] = mgl64.Vec2{hx, -hy}
	p.Vertices[2] = mgl64.Vec2{hx, hy}
	p.Vertices[3] = mgl64.Vec2{-hx, hy}
	p.Normals[0] = mgl64.Vec2{0, -1}
	p.Normals[1] = mgl64.Vec2{1, 0}
	p.Normals[2] = mgl64.Vec2{0, 1}
	p.Normals[3] = mgl64.Vec2{-1, 0}
	return p
}

// MakePolygon2 builds the convex hull of the given points using gift
// wrapping. Collinear and welded (nearly coincident) points are dropped.
// Returns nil if fewer than three hull vertices remain.
func MakePolygon2(points []mgl64.Vec2) *Polygon2 {
	n := len(points)
	if n > MaxPolygonVertices {
		n = MaxPolygonVertices
	}

	// Weld nearly coincident points.
	var ps [MaxPolygonVertices]mgl64.Vec2
	welded := 0
	for i := 0; i < n; i++ {
		v := points[i]
		unique := true
		for j := 0; j < welded; j++ {
			if v.Sub(ps[j]).LenSqr() < 0.25*1e-6 {
				unique = false
				break
			}
		}
		if unique {
			ps[welded] = v
			welded++
		}
	}
	n = welded
	if n < 3 {
		return nil
	}

	// Right-most point is on the hull.
	i0 := 0
	x0 := ps[0].X()
	for i := 1; i < n; i++ {
		x := ps[i].X()
		if x > x0 || (x == x0 && ps[i].Y() < ps[i0].Y()) {
			i0 = i
			x0 = x
		}
	}

	var hull [MaxPolygonVertices]int
	m := 0
	ih := i0
	for {
		assert(m < MaxPolygonVertices)
		hull[m] = ih

		ie := 0
		for j := 1; j < n; j++ {
			if ie == ih {
				ie = j
				continue
			}
			r := ps[ie].Sub(ps[hull[m]])
			v := ps[j].Sub(ps[hull[m]])
			c := Cross2(r, v)
			if c < 0.0 {
				ie = j
			}
			if c == 0.0 && v.LenSqr() > r.LenSqr() {
				ie = j
			}
		}

		m++
		ih = ie
		if ie == i0 {
			break
		}
	}
	if m < 3 {
		return nil
	}

	p := &Polygon2{Count: m}
	for i := 0; i < m; i++ {
		p.Vertices[i] = ps[hull[i]]
	}
	for i := 0; i < m; i++ {
		i2 := 0
		if i+1 < m {
			i2 = i + 1
		}
		edge := p.Vertices[i2].Sub(p.Vertices[i])
		if edge.LenSqr() < Epsilon*Epsilon {
			return nil
		}
		p.Normals[i] = CrossVec2Scalar(edge, 1.0).Normalize()
	}
	p.Centroid = polygonCentroid(p.Vertices[:m])
	return p
}

func polygonCentroid(vs []mgl64.Vec2) mgl64.Vec2 {
	var c mgl64.Vec2
	area := 0.0

	// Reference point inside the polygon reduces rounding error.
	var ref mgl64.Vec2
	for _, v := range vs {
		ref = ref.Add(v)
	}
	ref = ref.Mul(1.0 / float64(len(vs)))

	const inv3 = 1.0 / 3.0
	for i := range vs {
		p2 := vs[i]
		p3 := vs[0]
		if i+1 < len(vs) {
			p3 = vs[i+1]
		}
		e1 := p2.Sub(ref)
		e2 := p3.Sub(ref)
		triArea := 0.5 * Cross2(e1, e2)
		area += triArea
		c = c.Add(ref.Add(p2).Add(p3).Mul(triArea * inv3))
	}

	assert(area > Epsilon)
	return c.Mul(1.0 / area)
}

func (p *Polygon2) Kind() Shape2Kind { return Polygon2Kind }

func (p *Polygon2) AABB(xf Transform2) AABB2 {
	lower := xf.Apply(p.Vertices[0])
	upper := lower
	for i := 1; i < p.Count; i++ {
		v := xf.Apply(p.Vertices[i])
		lower = minVec2(lower, v)
		upper = maxVec2(upper, v)
	}
	return AABB2{Lower: lower, Upper: upper}
}

func (p *Polygon2) MassData(density float64) MassData2 {
	assert(p.Count >= 3)

	var center mgl64.Vec2
	area := 0.0
	inertia := 0.0

	var s mgl64.Vec2
	for i := 0; i < p.Count; i++ {
		s = s.Add(p.Vertices[i])
	}
	s = s.Mul(1.0 / float64(p.Count))

	const inv3 = 1.0 / 3.0
	for i := 0; i < p.Count; i++ {
		e1 := p.Vertices[i].Sub(s)
		var e2 mgl64.Vec2
		if i+1 < p.Count {
			e2 = p.Vertices[i+1].Sub(s)
		} else {
			e2 = p.Vertices[0].Sub(s)
		}

		d := Cross2(e1, e2)
		triArea := 0.5 * d
		area += triArea
		center = center.Add(e1.Add(e2).Mul(triArea * inv3))

		intx2 := e1.X()*e1.X() + e2.X()*e1.X() + e2.X()*e2.X()
		inty2 := e1.Y()*e1.Y() + e2.Y()*e1.Y() + e2.Y()*e2.Y()
		inertia += (0.25 * inv3 * d) * (intx2 + inty2)
	}

	mass := density * area
	assert(area > Epsilon)
	center = center.Mul(1.0 / area)
	worldCenter := center.Add(s)

	// Shift inertia to the center of mass, then to the body origin.
	i := density * inertia
	i += mass * (worldCenter.Dot(worldCenter) - center.Dot(center))
	return MassData2{Mass: mass, Center: worldCenter, I: i}
}

func (p *Polygon2) Support(d mgl64.Vec2) mgl64.Vec2 {
	best := 0
	bestDot := p.Vertices[0].Dot(d)
	for i := 1; i < p.Count; i++ {
		dot := p.Vertices[i].Dot(d)
		if dot > bestDot {
			bestDot = dot
			best = i
		}
	}
	return p.Vertices[best]
}

func (p *Polygon2) Validate() bool {
	if p.Count < 3 || p.Count > MaxPolygonVertices {
		return false
	}
	for i := 0; i < p.Count; i++ {
		if !IsValidVec2(p.Vertices[i]) {
			return false
		}
		// Convexity: every other vertex lies left of each edge.
		i2 := 0
		if i+1 < p.Count {
			i2 = i + 1
		}
		e := p.Vertices[i2].Sub(p.Vertices[i])
		for j := 0; j < p.Count; j++ {
			if j == i || j == i2 {
				continue
			}
			if Cross2(e, p.Vertices[j].Sub(p.Vertices[i])) < 0.0 {
				return false
			}
		}
	}
	return true
}

// Capsule2 is a line segment along the local x axis, inflated by a radius.
type Capsule2 struct {
	HalfLength float64
	Radius     float64
}

// MakeCapsule2 builds a capsule of total length 2*halfLength + 2*r.
func MakeCapsule2(halfLength, r float64) *Capsule2 {
	return &Capsule2{HalfLength: halfLength, Radius: r}
}

func (c *Capsule2) Kind() Shape2Kind { return Capsule2Kind }

func (c *Capsule2) AABB(xf Transform2) AABB2 {
	a := xf.Apply(mgl64.Vec2{-c.HalfLength, 0})
	b := xf.Apply(mgl64.Vec2{c.HalfLength, 0})
	r := mgl64.Vec2{c.Radius, c.Radius}
	return AABB2{
		Lower: minVec2(a, b).Sub(r),
		Upper: maxVec2(a, b).Add(r),
	}
}

func (c *Capsule2) MassData(density float64) MassData2 {
	l := 2.0 * c.HalfLength
	r := c.Radius

	rectMass := density * l * 2.0 * r
	capMass := density * math.Pi * r * r

	// Rectangle inertia plus two half-disc caps offset to the segment ends.
	rectI := rectMass * (l*l + 4.0*r*r) / 12.0
	capI := capMass * (0.5*r*r + c.HalfLength*c.HalfLength)

	return MassData2{
		Mass: rectMass + capMass,
		I:    rectI + capI,
	}
}

func (c *Capsule2) Support(d mgl64.Vec2) mgl64.Vec2 {
	var p mgl64.Vec2
	if d.X() >= 0 {
		p = mgl64.Vec2{c.HalfLength, 0}
	} else {
		p = mgl64.Vec2{-c.HalfLength, 0}
	}
	if d.LenSqr() < Epsilon*Epsilon {
		return p
	}
	return p.Add(d.Normalize().Mul(c.Radius))
}

func (c *Capsule2) Validate() bool {
	return c.Radius > 0 && c.HalfLength >= 0 &&
		IsValidFloat(c.Radius) && IsValidFloat(c.HalfLength)
}

// Plane2 is the half-plane of points p with dot(Normal, p) <= Offset, in
// local space. Half-planes are intended for static geometry such as ground
// and walls.
type Plane2 struct {
	Normal mgl64.Vec2
	Offset float64
}

// MakePlane2 builds a half-plane from an outward normal and an offset along
// it. The normal is normalized.
func MakePlane2(normal mgl64.Vec2, offset float64) *Plane2 {
	return &Plane2{Normal: normal.Normalize(), Offset: offset}
}

func (p *Plane2) Kind() Shape2Kind { return Plane2Kind }

func (p *Plane2) AABB(xf Transform2) AABB2 {
	// A half-plane has no finite bounds; conservative containment clamps to
	// a large box so tree queries still see every potential partner.
	e := mgl64.Vec2{planeBoundsExtent, planeBoundsExtent}
	c := xf.P
	return AABB2{Lower: c.Sub(e), Upper: c.Add(e)}
}

func (p *Plane2) MassData(density float64) MassData2 {
	// Half-planes are static; mass is meaningless.
	return MassData2{}
}

func (p *Plane2) Support(d mgl64.Vec2) mgl64.Vec2 {
	// Unbounded; support is only meaningful against the boundary line. The
	// narrow phase never runs GJK against a half-plane.
	return p.Normal.Mul(p.Offset)
}

func (p *Plane2) Validate() bool {
	return IsValidVec2(p.Normal) && IsValidFloat(p.Offset) &&
		math.Abs(p.Normal.Len()-1.0) < 1e-6
}
