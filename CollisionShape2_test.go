package impel_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/impel-physics/impel"
)

func TestMakePolygon2Hull(t *testing.T) {
	// A square with an interior point and a duplicate vertex.
	points := []mgl64.Vec2{
		{-1, -1}, {1, -1}, {1, 1}, {-1, 1},
		{0, 0}, {1, 1},
	}
	p := impel.MakePolygon2(points)
	if p == nil {
		t.Fatal("hull construction failed")
	}
	if p.Count != 4 {
		t.Fatalf("hull has %d vertices, want 4", p.Count)
	}
	if p.Centroid.Len() > 1e-12 {
		t.Errorf("centroid = %v, want origin", p.Centroid)
	}
	// CCW winding: successive cross products stay positive.
	for i := 0; i < p.Count; i++ {
		a := p.Vertices[i]
		b := p.Vertices[(i+1)%p.Count]
		c := p.Vertices[(i+2)%p.Count]
		if impel.Cross2(b.Sub(a), c.Sub(b)) <= 0 {
			t.Errorf("winding not counter-clockwise at vertex %d", i)
		}
	}
}

func TestMakePolygon2Degenerate(t *testing.T) {
	collinear := []mgl64.Vec2{{0, 0}, {1, 0}, {2, 0}}
	if p := impel.MakePolygon2(collinear); p != nil {
		t.Error("collinear points produced a polygon")
	}
	if p := impel.MakePolygon2([]mgl64.Vec2{{0, 0}, {1, 1}}); p != nil {
		t.Error("two points produced a polygon")
	}
}

func TestCircle2MassData(t *testing.T) {
	c := impel.MakeCircle2(2)
	md := c.MassData(1)
	if math.Abs(md.Mass-math.Pi*4) > 1e-9 {
		t.Errorf("mass = %v, want %v", md.Mass, math.Pi*4)
	}
	// Solid disc: I = m r^2 / 2 about the center.
	if math.Abs(md.I-md.Mass*2) > 1e-9 {
		t.Errorf("inertia = %v, want %v", md.I, md.Mass*2)
	}
}

func TestBox2MassData(t *testing.T) {
	b := impel.MakeBox2(1, 2)
	md := b.MassData(3)
	if math.Abs(md.Mass-24) > 1e-9 {
		t.Errorf("mass = %v, want 24", md.Mass)
	}
	if md.Center.Len() > 1e-9 {
		t.Errorf("center = %v, want origin", md.Center)
	}
}

func TestShape2AABB(t *testing.T) {
	c := impel.MakeCircle2(0.5)
	aabb := c.AABB(at2(2, 3))
	if math.Abs(aabb.Lower.X()-1.5) > 1e-12 || math.Abs(aabb.Upper.Y()-3.5) > 1e-12 {
		t.Errorf("circle aabb = %v", aabb)
	}

	box := impel.MakeBox2(1, 0.5)
	xf := impel.MakeTransform2(mgl64.Vec2{0, 0}, math.Pi/2)
	aabb = box.AABB(xf)
	if math.Abs(aabb.Upper.X()-0.5) > 1e-9 || math.Abs(aabb.Upper.Y()-1) > 1e-9 {
		t.Errorf("rotated box aabb = %v", aabb)
	}

	cap2 := impel.MakeCapsule2(0.5, 0.25)
	aabb = cap2.AABB(identity2())
	if math.Abs(aabb.Upper.X()-0.75) > 1e-12 || math.Abs(aabb.Upper.Y()-0.25) > 1e-12 {
		t.Errorf("capsule aabb = %v", aabb)
	}
}

func TestShape2Support(t *testing.T) {
	box := impel.MakeBox2(1, 2)
	s := box.Support(mgl64.Vec2{1, 1})
	if s.X() != 1 || s.Y() != 2 {
		t.Errorf("box support = %v, want (1,2)", s)
	}

	c := impel.MakeCircle2(2)
	s = c.Support(mgl64.Vec2{0, -1})
	if math.Abs(s.Y()+2) > 1e-12 {
		t.Errorf("circle support = %v, want (0,-2)", s)
	}
}

func TestShape2Validate(t *testing.T) {
	if impel.MakeCircle2(-1).Validate() {
		t.Error("negative radius validated")
	}
	if impel.MakeCircle2(math.NaN()).Validate() {
		t.Error("NaN radius validated")
	}
	if !impel.MakeBox2(1, 1).Validate() {
		t.Error("unit box rejected")
	}
	if !impel.MakePlane2(mgl64.Vec2{0, 1}, 0).Validate() {
		t.Error("unit plane rejected")
	}
}
