package impel_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/impel-physics/impel"
)

func identity3() impel.Transform3 {
	return impel.Transform3Identity()
}

func at3(x, y, z float64) impel.Transform3 {
	return impel.MakeTransform3(mgl64.Vec3{x, y, z}, mgl64.QuatIdent())
}

func TestDisjointShapesNoContact3(t *testing.T) {
	shapes := []impel.Shape3{
		impel.MakeSphere3(0.5),
		impel.MakeBox3(0.5, 0.5, 0.5),
		impel.MakeCapsule3(0.5, 0.25),
	}

	far := at3(10, 10, 10)
	for i, a := range shapes {
		for j, b := range shapes {
			m := impel.Collide3(a, identity3(), b, far)
			if m.Count != 0 {
				t.Errorf("shapes %d,%d: expected no contact, got %d points", i, j, m.Count)
			}
		}
	}

	plane := impel.MakePlane3(mgl64.Vec3{0, 1, 0}, 0)
	for i, a := range shapes {
		m := impel.Collide3(a, at3(0, 10, 0), plane, identity3())
		if m.Count != 0 {
			t.Errorf("shape %d vs plane: expected no contact, got %d points", i, m.Count)
		}
	}
}

func TestCollideSpheres3(t *testing.T) {
	a := impel.MakeSphere3(1.0)
	b := impel.MakeSphere3(1.0)

	m := impel.Collide3(a, identity3(), b, at3(0.5, 0, 0))
	if m.Count != 1 {
		t.Fatalf("expected 1 contact point, got %d", m.Count)
	}
	if math.Abs(m.Normal.X()-1.0) > 1e-12 {
		t.Errorf("normal = %v, want (1,0,0)", m.Normal)
	}
	if math.Abs(m.Points[0].Depth-1.5) > 1e-12 {
		t.Errorf("depth = %v, want 1.5", m.Points[0].Depth)
	}
}

func TestCollideSphereBox3(t *testing.T) {
	sphere := impel.MakeSphere3(0.5)
	box := impel.MakeBox3(1, 1, 1)

	m := impel.Collide3(sphere, at3(0, 1.3, 0), box, identity3())
	if m.Count != 1 {
		t.Fatalf("expected 1 contact point, got %d", m.Count)
	}
	if m.Normal.Y() > -0.99 {
		t.Errorf("normal = %v, want pointing down", m.Normal)
	}
	if math.Abs(m.Points[0].Depth-0.2) > 1e-9 {
		t.Errorf("depth = %v, want 0.2", m.Points[0].Depth)
	}
}

func TestCollideSpherePlane3(t *testing.T) {
	sphere := impel.MakeSphere3(0.5)
	plane := impel.MakePlane3(mgl64.Vec3{0, 1, 0}, 0)

	m := impel.Collide3(sphere, at3(0, 0.3, 0), plane, identity3())
	if m.Count != 1 {
		t.Fatalf("expected 1 contact point, got %d", m.Count)
	}
	if math.Abs(m.Points[0].Depth-0.2) > 1e-12 {
		t.Errorf("depth = %v, want 0.2", m.Points[0].Depth)
	}
}

func TestCollideBoxPlane3(t *testing.T) {
	box := impel.MakeBox3(0.5, 0.5, 0.5)
	plane := impel.MakePlane3(mgl64.Vec3{0, 1, 0}, 0)

	m := impel.Collide3(box, at3(0, 0.4, 0), plane, identity3())
	if m.Count != 4 {
		t.Fatalf("expected 4 contact points, got %d", m.Count)
	}
	for i := 0; i < m.Count; i++ {
		if d := m.Points[i].Depth; math.Abs(d-0.1) > 1e-9 {
			t.Errorf("point %d depth = %v, want 0.1", i, d)
		}
	}
}

func TestCollideBoxes3(t *testing.T) {
	a := impel.MakeBox3(1, 1, 1)
	b := impel.MakeBox3(1, 1, 1)

	m := impel.Collide3(a, identity3(), b, at3(1.9, 0, 0))
	if m.Count != 1 {
		t.Fatalf("expected 1 contact point, got %d", m.Count)
	}
	if m.Normal.X() < 0.99 {
		t.Errorf("normal = %v, want (1,0,0)", m.Normal)
	}
	if d := m.Points[0].Depth; d < 0.05 || d > 0.15 {
		t.Errorf("depth = %v, want about 0.1", d)
	}
}

func TestCollideCapsules3(t *testing.T) {
	a := impel.MakeCapsule3(0.5, 0.25)
	b := impel.MakeCapsule3(0.5, 0.25)

	m := impel.Collide3(a, identity3(), b, at3(0.4, 0, 0))
	if m.Count != 1 {
		t.Fatalf("expected 1 contact point, got %d", m.Count)
	}
	if math.Abs(m.Normal.X()-1.0) > 1e-9 {
		t.Errorf("normal = %v, want (1,0,0)", m.Normal)
	}
	if math.Abs(m.Points[0].Depth-0.1) > 1e-9 {
		t.Errorf("depth = %v, want 0.1", m.Points[0].Depth)
	}
}

func TestCollideCapsulePlane3(t *testing.T) {
	capsule := impel.MakeCapsule3(0.5, 0.25)
	plane := impel.MakePlane3(mgl64.Vec3{0, 1, 0}, 0)

	// Upright capsule: only the lower cap touches.
	m := impel.Collide3(capsule, at3(0, 0.7, 0), plane, identity3())
	if m.Count != 1 {
		t.Fatalf("expected 1 contact point, got %d", m.Count)
	}
	if math.Abs(m.Points[0].Depth-0.05) > 1e-9 {
		t.Errorf("depth = %v, want 0.05", m.Points[0].Depth)
	}
}

func TestGJK3Separation(t *testing.T) {
	a := impel.MakeBox3(0.5, 0.5, 0.5)
	b := impel.MakeBox3(0.5, 0.5, 0.5)

	if _, hit := impel.GJK3(a, identity3(), b, at3(3, 0, 0)); hit {
		t.Error("GJK reported overlap for separated boxes")
	}
	if _, hit := impel.GJK3(a, identity3(), b, at3(0.5, 0, 0)); !hit {
		t.Error("GJK missed overlap of intersecting boxes")
	}
}
