package impel

import "github.com/go-gl/mathgl/mgl64"

// BodyType classifies how a body participates in the simulation.
//
// Static bodies never move and collide only with non-static bodies.
// Kinematic bodies move under their own velocity but ignore forces and
// impulses. Dynamic bodies respond to gravity, forces and contacts.
type BodyType uint8

const (
	StaticBody BodyType = iota
	KinematicBody
	DynamicBody
)

// Body2 is the dynamic state of a 2D entity: velocities, mass properties,
// material coefficients and accumulated forces. Positions live in the pose,
// not here.
type Body2 struct {
	Type BodyType

	LinearVelocity  mgl64.Vec2
	AngularVelocity float64

	// Accumulated force and torque, cleared after each step.
	Force  mgl64.Vec2
	Torque float64

	Mass    float64
	InvMass float64
	I       float64
	InvI    float64

	Restitution float64
	Friction    float64

	GravityScale   float64
	LinearDamping  float64
	AngularDamping float64

	Filter Filter
}

// MakeBody2 constructs a body of the given type with unit mass and default
// material. Static and kinematic bodies get infinite mass.
func MakeBody2(bodyType BodyType) Body2 {
	b := Body2{
		Type:         bodyType,
		Friction:     0.5,
		GravityScale: 1.0,
		Filter:       DefaultFilter(),
	}
	if bodyType == DynamicBody {
		b.Mass = 1.0
		b.InvMass = 1.0
	}
	return b
}

// SetMassFromShape derives mass and rotational inertia from a shape and a
// density. Non-dynamic bodies keep infinite mass.
func (b *Body2) SetMassFromShape(shape Shape2, density float64) {
	if b.Type != DynamicBody {
		b.Mass, b.InvMass = 0, 0
		b.I, b.InvI = 0, 0
		return
	}

	md := shape.MassData(density)
	b.Mass = md.Mass
	b.InvMass = 0
	if b.Mass > 0 {
		b.InvMass = 1.0 / b.Mass
	}

	// Inertia about the body origin, not the shape centroid.
	b.I = md.I
	b.InvI = 0
	if b.I > 0 {
		b.InvI = 1.0 / b.I
	}
}

// ApplyForce accumulates a force through the center of mass for the next
// step.
func (b *Body2) ApplyForce(force mgl64.Vec2) {
	if b.Type != DynamicBody {
		return
	}
	b.Force = b.Force.Add(force)
}

// ApplyTorque accumulates a torque for the next step.
func (b *Body2) ApplyTorque(torque float64) {
	if b.Type != DynamicBody {
		return
	}
	b.Torque += torque
}

// ApplyLinearImpulse changes the velocity immediately.
func (b *Body2) ApplyLinearImpulse(impulse mgl64.Vec2) {
	if b.Type != DynamicBody {
		return
	}
	b.LinearVelocity = b.LinearVelocity.Add(impulse.Mul(b.InvMass))
}

// ClearForces zeroes the force and torque accumulators.
func (b *Body2) ClearForces() {
	b.Force = mgl64.Vec2{}
	b.Torque = 0
}

// IsValid reports whether all body state is finite and consistent.
func (b *Body2) IsValid() bool {
	if !IsValidVec2(b.LinearVelocity) || !IsValidFloat(b.AngularVelocity) {
		return false
	}
	if !IsValidVec2(b.Force) || !IsValidFloat(b.Torque) {
		return false
	}
	if b.Mass < 0 || b.I < 0 || b.Friction < 0 {
		return false
	}
	if b.Restitution < 0 || b.Restitution > 1 {
		return false
	}
	return true
}

// Body3 is the 3D counterpart of Body2. Rotational inertia is a tensor in
// the body frame; the world-frame inverse is conjugated by the orientation
// each time it is needed.
type Body3 struct {
	Type BodyType

	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3

	Force  mgl64.Vec3
	Torque mgl64.Vec3

	Mass    float64
	InvMass float64
	I       mgl64.Mat3
	InvI    mgl64.Mat3

	Restitution float64
	Friction    float64

	GravityScale   float64
	LinearDamping  float64
	AngularDamping float64

	Filter Filter
}

// MakeBody3 constructs a body of the given type with unit mass and default
// material.
func MakeBody3(bodyType BodyType) Body3 {
	b := Body3{
		Type:         bodyType,
		Friction:     0.5,
		GravityScale: 1.0,
		Filter:       DefaultFilter(),
	}
	if bodyType == DynamicBody {
		b.Mass = 1.0
		b.InvMass = 1.0
		b.I = mgl64.Ident3()
		b.InvI = mgl64.Ident3()
	}
	return b
}

// SetMassFromShape derives mass and the inertia tensor from a shape and a
// density.
func (b *Body3) SetMassFromShape(shape Shape3, density float64) {
	if b.Type != DynamicBody {
		b.Mass, b.InvMass = 0, 0
		b.I = mgl64.Mat3{}
		b.InvI = mgl64.Mat3{}
		return
	}

	md := shape.MassData(density)
	b.Mass = md.Mass
	b.InvMass = 0
	if b.Mass > 0 {
		b.InvMass = 1.0 / b.Mass
	}

	b.I = md.I
	if md.Mass > 0 && md.I.Det() != 0 {
		b.InvI = md.I.Inv()
	} else {
		b.InvI = mgl64.Mat3{}
	}
}

// WorldInvInertia conjugates the body-frame inverse inertia tensor into the
// world frame: R * I^-1 * R^T.
func (b *Body3) WorldInvInertia(q mgl64.Quat) mgl64.Mat3 {
	r := QuatMat3(q)
	return r.Mul3(b.InvI).Mul3(r.Transpose())
}

// ApplyForce accumulates a force through the center of mass for the next
// step.
func (b *Body3) ApplyForce(force mgl64.Vec3) {
	if b.Type != DynamicBody {
		return
	}
	b.Force = b.Force.Add(force)
}

// ApplyTorque accumulates a torque for the next step.
func (b *Body3) ApplyTorque(torque mgl64.Vec3) {
	if b.Type != DynamicBody {
		return
	}
	b.Torque = b.Torque.Add(torque)
}

// ApplyLinearImpulse changes the velocity immediately.
func (b *Body3) ApplyLinearImpulse(impulse mgl64.Vec3) {
	if b.Type != DynamicBody {
		return
	}
	b.LinearVelocity = b.LinearVelocity.Add(impulse.Mul(b.InvMass))
}

// ClearForces zeroes the force and torque accumulators.
func (b *Body3) ClearForces() {
	b.Force = mgl64.Vec3{}
	b.Torque = mgl64.Vec3{}
}

// IsValid reports whether all body state is finite and consistent.
func (b *Body3) IsValid() bool {
	if !IsValidVec3(b.LinearVelocity) || !IsValidVec3(b.AngularVelocity) {
		return false
	}
	if !IsValidVec3(b.Force) || !IsValidVec3(b.Torque) {
		return false
	}
	if b.Mass < 0 || b.Friction < 0 {
		return false
	}
	if b.Restitution < 0 || b.Restitution > 1 {
		return false
	}
	return true
}
