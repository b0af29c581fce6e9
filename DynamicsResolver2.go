package impel

import "github.com/go-gl/mathgl/mgl64"

// The resolver turns contact manifolds into velocity and position changes
// using sequential impulses with accumulated clamping. Contacts are solved
// in canonical pair order so the outcome is deterministic for a given input.

type velocityConstraintPoint2 struct {
	RA, RB mgl64.Vec2

	NormalImpulse  float64
	TangentImpulse float64
	NormalMass     float64
	TangentMass    float64
	VelocityBias   float64

	// Remaining penetration consumed by the position pass.
	Depth float64
}

// Contact2 is one solvable contact between two snapshot indices.
type Contact2 struct {
	Pair     Pair
	IndexA   int
	IndexB   int
	Manifold Manifold2

	Friction    float64
	Restitution float64

	points [MaxManifoldPoints2]velocityConstraintPoint2
}

// Resolver2 solves a batch of 2D contacts against a snapshot slice.
type Resolver2 struct {
	cfg      Config
	contacts []Contact2
	states   []Snapshot2
}

// MakeResolver2 prepares the constraint data for one solve: effective
// masses, restitution bias and contact arms.
func MakeResolver2(cfg Config, states []Snapshot2, contacts []Contact2) Resolver2 {
	r := Resolver2{cfg: cfg, contacts: contacts, states: states}
	r.initConstraints()
	return r
}

func (r *Resolver2) initConstraints() {
	for ci := range r.contacts {
		c := &r.contacts[ci]
		a := &r.states[c.IndexA]
		b := &r.states[c.IndexB]

		c.Friction = r.cfg.FrictionRule.Combine(a.Body.Friction, b.Body.Friction)
		c.Restitution = r.cfg.RestitutionRule.Combine(a.Body.Restitution, b.Body.Restitution)

		normal := c.Manifold.Normal
		tangent := CrossVec2Scalar(normal, 1.0)

		for pi := 0; pi < c.Manifold.Count; pi++ {
			mp := c.Manifold.Points[pi]
			vcp := &c.points[pi]

			vcp.RA = mp.Point.Sub(a.Pose.P)
			vcp.RB = mp.Point.Sub(b.Pose.P)
			vcp.Depth = mp.Depth

			rnA := Cross2(vcp.RA, normal)
			rnB := Cross2(vcp.RB, normal)
			kNormal := a.Body.InvMass + b.Body.InvMass +
				a.Body.InvI*rnA*rnA + b.Body.InvI*rnB*rnB
			if kNormal > 0 {
				vcp.NormalMass = 1.0 / kNormal
			}

			rtA := Cross2(vcp.RA, tangent)
			rtB := Cross2(vcp.RB, tangent)
			kTangent := a.Body.InvMass + b.Body.InvMass +
				a.Body.InvI*rtA*rtA + b.Body.InvI*rtB*rtB
			if kTangent > 0 {
				vcp.TangentMass = 1.0 / kTangent
			}

			// Restitution bias from the approach velocity.
			vRel := normal.Dot(r.relativeVelocity2(a, b, vcp))
			if vRel < -r.cfg.VelocityThreshold {
				vcp.VelocityBias = -c.Restitution * vRel
			}
		}
	}
}

func (r *Resolver2) relativeVelocity2(a, b *Snapshot2, vcp *velocityConstraintPoint2) mgl64.Vec2 {
	va := a.Body.LinearVelocity.Add(CrossScalarVec2(a.Body.AngularVelocity, vcp.RA))
	vb := b.Body.LinearVelocity.Add(CrossScalarVec2(b.Body.AngularVelocity, vcp.RB))
	return vb.Sub(va)
}

// SolveVelocity runs the configured number of sequential impulse iterations.
// Friction is solved before the normal so the friction clamp uses the
// previous iteration's normal impulse.
func (r *Resolver2) SolveVelocity() {
	for iter := 0; iter < r.cfg.VelocityIterations; iter++ {
		for ci := range r.contacts {
			c := &r.contacts[ci]
			a := &r.states[c.IndexA]
			b := &r.states[c.IndexB]

			normal := c.Manifold.Normal
			tangent := CrossVec2Scalar(normal, 1.0)

			for pi := 0; pi < c.Manifold.Count; pi++ {
				vcp := &c.points[pi]

				// Friction impulse, clamped by the friction cone.
				vt := tangent.Dot(r.relativeVelocity2(a, b, vcp))
				lambda := vcp.TangentMass * (-vt)

				maxFriction := c.Friction * vcp.NormalImpulse
				newImpulse := clampFloat(vcp.TangentImpulse+lambda, -maxFriction, maxFriction)
				lambda = newImpulse - vcp.TangentImpulse
				vcp.TangentImpulse = newImpulse

				r.applyImpulse2(a, b, vcp, tangent.Mul(lambda))

				// Normal impulse, accumulated and clamped non-negative.
				vn := normal.Dot(r.relativeVelocity2(a, b, vcp))
				lambda = -vcp.NormalMass * (vn - vcp.VelocityBias)

				newImpulse = vcp.NormalImpulse + lambda
				if newImpulse < 0 {
					newImpulse = 0
				}
				lambda = newImpulse - vcp.NormalImpulse
				vcp.NormalImpulse = newImpulse

				r.applyImpulse2(a, b, vcp, normal.Mul(lambda))
			}
		}
	}
}

func (r *Resolver2) applyImpulse2(a, b *Snapshot2, vcp *velocityConstraintPoint2, p mgl64.Vec2) {
	a.Body.LinearVelocity = a.Body.LinearVelocity.Sub(p.Mul(a.Body.InvMass))
	a.Body.AngularVelocity -= a.Body.InvI * Cross2(vcp.RA, p)
	b.Body.LinearVelocity = b.Body.LinearVelocity.Add(p.Mul(b.Body.InvMass))
	b.Body.AngularVelocity += b.Body.InvI * Cross2(vcp.RB, p)
}

// SolvePosition bleeds off penetration beyond the slop by translating the
// bodies along the contact normal, split by inverse mass. Bodies with
// infinite mass never move.
func (r *Resolver2) SolvePosition() {
	for iter := 0; iter < r.cfg.PositionIterations; iter++ {
		for ci := range r.contacts {
			c := &r.contacts[ci]
			a := &r.states[c.IndexA]
			b := &r.states[c.IndexB]

			invMassSum := a.Body.InvMass + b.Body.InvMass
			if invMassSum == 0 {
				continue
			}

			normal := c.Manifold.Normal
			for pi := 0; pi < c.Manifold.Count; pi++ {
				vcp := &c.points[pi]

				correction := r.cfg.Baumgarte * (vcp.Depth - r.cfg.LinearSlop)
				if correction <= 0 {
					continue
				}
				if correction > r.cfg.MaxLinearCorrection {
					correction = r.cfg.MaxLinearCorrection
				}
				vcp.Depth -= correction

				shift := normal.Mul(correction / invMassSum)
				a.Pose.P = a.Pose.P.Sub(shift.Mul(a.Body.InvMass))
				b.Pose.P = b.Pose.P.Add(shift.Mul(b.Body.InvMass))
			}
		}
	}
}
