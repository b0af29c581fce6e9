package impel

import "github.com/go-gl/mathgl/mgl64"

// Semi-implicit Euler: velocities integrate from forces first, poses then
// integrate from the already-updated velocities. The velocity solve runs in
// between, so contact impulses see the gravity of the current tick.

// IntegrateVelocity2 advances a body's velocity by dt from gravity and the
// accumulated force and torque, then applies damping. Static bodies keep
// zero velocity; kinematic bodies keep whatever velocity they were given.
func IntegrateVelocity2(body *Body2, gravity mgl64.Vec2, dt float64) {
	if dt == 0 {
		return
	}

	switch body.Type {
	case StaticBody:
		body.LinearVelocity = mgl64.Vec2{}
		body.AngularVelocity = 0
		return
	case KinematicBody:
		return
	}

	accel := gravity.Mul(body.GravityScale).Add(body.Force.Mul(body.InvMass))
	body.LinearVelocity = body.LinearVelocity.Add(accel.Mul(dt))
	body.AngularVelocity += dt * body.InvI * body.Torque

	// Pade approximation of exponential decay: v' = v / (1 + h*c).
	body.LinearVelocity = body.LinearVelocity.Mul(1.0 / (1.0 + dt*body.LinearDamping))
	body.AngularVelocity *= 1.0 / (1.0 + dt*body.AngularDamping)
}

// IntegratePose2 advances a pose by dt from the body's velocity, clamping
// the per-step translation and rotation to the configured limits.
func IntegratePose2(cfg Config, pose *Transform2, body *Body2, dt float64) {
	if dt == 0 || body.Type == StaticBody {
		return
	}

	translation := body.LinearVelocity.Mul(dt)
	if lenSqr := translation.LenSqr(); lenSqr > cfg.MaxTranslation*cfg.MaxTranslation {
		translation = translation.Mul(cfg.MaxTranslation / translation.Len())
	}

	rotation := body.AngularVelocity * dt
	rotation = clampFloat(rotation, -cfg.MaxRotation, cfg.MaxRotation)

	pose.P = pose.P.Add(translation)
	pose.Q = MakeRot2(pose.Q.Angle() + rotation)
}

// IntegrateVelocity3 is the 3D counterpart of IntegrateVelocity2. Angular
// acceleration goes through the world-frame inverse inertia tensor.
func IntegrateVelocity3(body *Body3, orientation mgl64.Quat, gravity mgl64.Vec3, dt float64) {
	if dt == 0 {
		return
	}

	switch body.Type {
	case StaticBody:
		body.LinearVelocity = mgl64.Vec3{}
		body.AngularVelocity = mgl64.Vec3{}
		return
	case KinematicBody:
		return
	}

	accel := gravity.Mul(body.GravityScale).Add(body.Force.Mul(body.InvMass))
	body.LinearVelocity = body.LinearVelocity.Add(accel.Mul(dt))

	invI := body.WorldInvInertia(orientation)
	body.AngularVelocity = body.AngularVelocity.Add(invI.Mul3x1(body.Torque).Mul(dt))

	body.LinearVelocity = body.LinearVelocity.Mul(1.0 / (1.0 + dt*body.LinearDamping))
	body.AngularVelocity = body.AngularVelocity.Mul(1.0 / (1.0 + dt*body.AngularDamping))
}

// IntegratePose3 advances a pose by dt from the body's velocity. The
// orientation integrates as q' = q + (dt/2)*omega*q and is renormalized to
// keep it a unit quaternion.
func IntegratePose3(cfg Config, pose *Transform3, body *Body3, dt float64) {
	if dt == 0 || body.Type == StaticBody {
		return
	}

	translation := body.LinearVelocity.Mul(dt)
	if lenSqr := translation.LenSqr(); lenSqr > cfg.MaxTranslation*cfg.MaxTranslation {
		translation = translation.Mul(cfg.MaxTranslation / translation.Len())
	}
	pose.P = pose.P.Add(translation)

	omega := body.AngularVelocity
	if speed := omega.Len() * dt; speed > cfg.MaxRotation {
		omega = omega.Mul(cfg.MaxRotation / speed)
	}

	spin := mgl64.Quat{W: 0, V: omega}
	dq := spin.Mul(pose.Q).Scale(0.5 * dt)
	pose.Q = pose.Q.Add(dq).Normalize()
}
