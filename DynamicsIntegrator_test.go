package impel_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/impel-physics/impel"
)

func TestIntegrateVelocity2Gravity(t *testing.T) {
	body := impel.MakeBody2(impel.DynamicBody)
	gravity := mgl64.Vec2{0, -10}

	impel.IntegrateVelocity2(&body, gravity, 0.1)
	if math.Abs(body.LinearVelocity.Y()+1) > 1e-12 {
		t.Errorf("velocity = %v, want (0,-1)", body.LinearVelocity)
	}
}

func TestIntegrateVelocity2ZeroDt(t *testing.T) {
	body := impel.MakeBody2(impel.DynamicBody)
	body.LinearVelocity = mgl64.Vec2{1, 2}
	body.AngularVelocity = 3

	impel.IntegrateVelocity2(&body, mgl64.Vec2{0, -10}, 0)
	if body.LinearVelocity != (mgl64.Vec2{1, 2}) || body.AngularVelocity != 3 {
		t.Error("zero dt changed velocity")
	}
}

func TestIntegrateVelocity2Static(t *testing.T) {
	body := impel.MakeBody2(impel.StaticBody)
	body.LinearVelocity = mgl64.Vec2{5, 5}

	impel.IntegrateVelocity2(&body, mgl64.Vec2{0, -10}, 0.1)
	if body.LinearVelocity.Len() != 0 {
		t.Errorf("static body kept velocity %v", body.LinearVelocity)
	}
}

func TestIntegrateVelocity2Kinematic(t *testing.T) {
	body := impel.MakeBody2(impel.KinematicBody)
	body.LinearVelocity = mgl64.Vec2{5, 0}

	impel.IntegrateVelocity2(&body, mgl64.Vec2{0, -10}, 0.1)
	if body.LinearVelocity != (mgl64.Vec2{5, 0}) {
		t.Errorf("kinematic body accelerated: %v", body.LinearVelocity)
	}
}

func TestIntegrateVelocity2Damping(t *testing.T) {
	body := impel.MakeBody2(impel.DynamicBody)
	body.LinearVelocity = mgl64.Vec2{10, 0}
	body.LinearDamping = 1

	impel.IntegrateVelocity2(&body, mgl64.Vec2{}, 0.5)
	// v / (1 + h*c)
	want := 10.0 / 1.5
	if math.Abs(body.LinearVelocity.X()-want) > 1e-12 {
		t.Errorf("velocity = %v, want %v", body.LinearVelocity.X(), want)
	}
}

func TestIntegratePose2(t *testing.T) {
	cfg := impel.DefaultConfig()
	body := impel.MakeBody2(impel.DynamicBody)
	body.LinearVelocity = mgl64.Vec2{1, 0}
	body.AngularVelocity = math.Pi

	pose := impel.Transform2Identity()
	impel.IntegratePose2(cfg, &pose, &body, 0.5)
	if math.Abs(pose.P.X()-0.5) > 1e-12 {
		t.Errorf("position = %v, want x 0.5", pose.P)
	}
	if math.Abs(pose.Q.Angle()-math.Pi/2) > 1e-9 {
		t.Errorf("angle = %v, want pi/2", pose.Q.Angle())
	}
}

func TestIntegratePose2ClampTranslation(t *testing.T) {
	cfg := impel.DefaultConfig()
	body := impel.MakeBody2(impel.DynamicBody)
	body.LinearVelocity = mgl64.Vec2{1000, 0}

	pose := impel.Transform2Identity()
	impel.IntegratePose2(cfg, &pose, &body, 1)
	if math.Abs(pose.P.X()-cfg.MaxTranslation) > 1e-12 {
		t.Errorf("translation = %v, want clamped to %v", pose.P.X(), cfg.MaxTranslation)
	}
}

func TestIntegratePose3Orientation(t *testing.T) {
	cfg := impel.DefaultConfig()
	body := impel.MakeBody3(impel.DynamicBody)
	body.AngularVelocity = mgl64.Vec3{0, 0, 1}

	pose := impel.Transform3Identity()
	for i := 0; i < 100; i++ {
		impel.IntegratePose3(cfg, &pose, &body, 0.01)
	}
	// Quaternion stays unit through repeated integration.
	if math.Abs(pose.Q.Len()-1) > 1e-9 {
		t.Errorf("orientation norm = %v, want 1", pose.Q.Len())
	}
	// About one radian around z after one second.
	axis := pose.Q.Rotate(mgl64.Vec3{1, 0, 0})
	angle := math.Atan2(axis.Y(), axis.X())
	if math.Abs(angle-1) > 0.01 {
		t.Errorf("rotation = %v rad, want about 1", angle)
	}
}

func TestBody2ApplyForce(t *testing.T) {
	body := impel.MakeBody2(impel.DynamicBody)
	body.ApplyForce(mgl64.Vec2{4, 0})

	impel.IntegrateVelocity2(&body, mgl64.Vec2{}, 0.5)
	if math.Abs(body.LinearVelocity.X()-2) > 1e-12 {
		t.Errorf("velocity = %v, want (2,0)", body.LinearVelocity)
	}

	body.ClearForces()
	impel.IntegrateVelocity2(&body, mgl64.Vec2{}, 0.5)
	if math.Abs(body.LinearVelocity.X()-2) > 1e-12 {
		t.Error("cleared force still accelerating")
	}
}

func TestBody2StaticIgnoresForces(t *testing.T) {
	body := impel.MakeBody2(impel.StaticBody)
	body.ApplyForce(mgl64.Vec2{4, 0})
	body.ApplyLinearImpulse(mgl64.Vec2{4, 0})
	if body.Force.Len() != 0 || body.LinearVelocity.Len() != 0 {
		t.Error("static body accepted force or impulse")
	}
}

func TestSetMassFromShape2(t *testing.T) {
	body := impel.MakeBody2(impel.DynamicBody)
	body.SetMassFromShape(impel.MakeBox2(1, 1), 2)

	if math.Abs(body.Mass-8) > 1e-9 {
		t.Errorf("mass = %v, want 8", body.Mass)
	}
	if math.Abs(body.InvMass-1.0/8) > 1e-12 {
		t.Errorf("invMass = %v, want 1/8", body.InvMass)
	}
	if body.I <= 0 || body.InvI <= 0 {
		t.Error("inertia not set")
	}
}
