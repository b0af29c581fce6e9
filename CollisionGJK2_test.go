package impel_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/impel-physics/impel"
)

func TestGJK2Separation(t *testing.T) {
	a := impel.MakeBox2(0.5, 0.5)
	b := impel.MakeBox2(0.5, 0.5)

	if _, hit := impel.GJK2(a, identity2(), b, at2(3, 0)); hit {
		t.Error("GJK reported overlap for separated boxes")
	}
	if _, hit := impel.GJK2(a, identity2(), b, at2(0.5, 0)); !hit {
		t.Error("GJK missed overlap of intersecting boxes")
	}
}

func TestGJK2Rotated(t *testing.T) {
	a := impel.MakeBox2(0.5, 0.5)
	b := impel.MakeBox2(0.5, 0.5)

	// Diamond orientation: corner reaches sqrt(2)/2 from center.
	xf := impel.MakeTransform2(mgl64.Vec2{1.2, 0}, math.Pi/4)
	if _, hit := impel.GJK2(a, identity2(), b, xf); !hit {
		t.Error("GJK missed overlap with rotated box")
	}
	xf = impel.MakeTransform2(mgl64.Vec2{1.3, 0}, math.Pi/4)
	if _, hit := impel.GJK2(a, identity2(), b, xf); hit {
		t.Error("GJK reported overlap for separated rotated box")
	}
}

func TestEPA2Depth(t *testing.T) {
	a := impel.MakeBox2(0.5, 0.5)
	b := impel.MakeBox2(0.5, 0.5)

	xf := at2(0.8, 0)
	simplex, hit := impel.GJK2(a, identity2(), b, xf)
	if !hit {
		t.Fatal("GJK missed overlap")
	}
	res, ok := impel.EPA2(a, identity2(), b, xf, simplex)
	if !ok {
		t.Fatal("EPA failed to converge")
	}
	if math.Abs(res.Depth-0.2) > 0.01 {
		t.Errorf("depth = %v, want 0.2", res.Depth)
	}
	if res.Normal.X() < 0.99 {
		t.Errorf("normal = %v, want (1,0)", res.Normal)
	}
}
