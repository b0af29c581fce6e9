package impel

import "github.com/go-gl/mathgl/mgl64"

type velocityConstraintPoint3 struct {
	RA, RB mgl64.Vec3

	NormalImpulse  float64
	TangentImpulse [2]float64
	NormalMass     float64
	TangentMass    [2]float64
	VelocityBias   float64

	Depth float64
}

// Contact3 is one solvable contact between two snapshot indices.
type Contact3 struct {
	Pair     Pair
	IndexA   int
	IndexB   int
	Manifold Manifold3

	Friction    float64
	Restitution float64

	invIA, invIB mgl64.Mat3
	tangents     [2]mgl64.Vec3

	points [MaxManifoldPoints3]velocityConstraintPoint3
}

// Resolver3 solves a batch of 3D contacts against a snapshot slice. Friction
// uses two orthogonal tangent directions derived deterministically from the
// contact normal.
type Resolver3 struct {
	cfg      Config
	contacts []Contact3
	states   []Snapshot3
}

// MakeResolver3 prepares the constraint data for one solve.
func MakeResolver3(cfg Config, states []Snapshot3, contacts []Contact3) Resolver3 {
	r := Resolver3{cfg: cfg, contacts: contacts, states: states}
	r.initConstraints()
	return r
}

func (r *Resolver3) initConstraints() {
	for ci := range r.contacts {
		c := &r.contacts[ci]
		a := &r.states[c.IndexA]
		b := &r.states[c.IndexB]

		c.Friction = r.cfg.FrictionRule.Combine(a.Body.Friction, b.Body.Friction)
		c.Restitution = r.cfg.RestitutionRule.Combine(a.Body.Restitution, b.Body.Restitution)

		c.invIA = a.Body.WorldInvInertia(a.Pose.Q)
		c.invIB = b.Body.WorldInvInertia(b.Pose.Q)

		normal := c.Manifold.Normal
		c.tangents[0], c.tangents[1] = tangentBasis(normal)

		for pi := 0; pi < c.Manifold.Count; pi++ {
			mp := c.Manifold.Points[pi]
			vcp := &c.points[pi]

			vcp.RA = mp.Point.Sub(a.Pose.P)
			vcp.RB = mp.Point.Sub(b.Pose.P)
			vcp.Depth = mp.Depth

			vcp.NormalMass = effectiveMass3(a, b, c, vcp, normal)
			for ti := 0; ti < 2; ti++ {
				vcp.TangentMass[ti] = effectiveMass3(a, b, c, vcp, c.tangents[ti])
			}

			vRel := normal.Dot(r.relativeVelocity3(a, b, vcp))
			if vRel < -r.cfg.VelocityThreshold {
				vcp.VelocityBias = -c.Restitution * vRel
			}
		}
	}
}

// effectiveMass3 is the inverse of the constraint-space mass along dir.
func effectiveMass3(a, b *Snapshot3, c *Contact3, vcp *velocityConstraintPoint3, dir mgl64.Vec3) float64 {
	rnA := vcp.RA.Cross(dir)
	rnB := vcp.RB.Cross(dir)
	k := a.Body.InvMass + b.Body.InvMass +
		rnA.Dot(c.invIA.Mul3x1(rnA)) +
		rnB.Dot(c.invIB.Mul3x1(rnB))
	if k > 0 {
		return 1.0 / k
	}
	return 0
}

func (r *Resolver3) relativeVelocity3(a, b *Snapshot3, vcp *velocityConstraintPoint3) mgl64.Vec3 {
	va := a.Body.LinearVelocity.Add(a.Body.AngularVelocity.Cross(vcp.RA))
	vb := b.Body.LinearVelocity.Add(b.Body.AngularVelocity.Cross(vcp.RB))
	return vb.Sub(va)
}

// SolveVelocity runs the configured number of sequential impulse iterations.
func (r *Resolver3) SolveVelocity() {
	for iter := 0; iter < r.cfg.VelocityIterations; iter++ {
		for ci := range r.contacts {
			c := &r.contacts[ci]
			a := &r.states[c.IndexA]
			b := &r.states[c.IndexB]

			normal := c.Manifold.Normal

			for pi := 0; pi < c.Manifold.Count; pi++ {
				vcp := &c.points[pi]

				// Friction impulses along both tangents, clamped by the cone.
				for ti := 0; ti < 2; ti++ {
					tangent := c.tangents[ti]
					vt := tangent.Dot(r.relativeVelocity3(a, b, vcp))
					lambda := vcp.TangentMass[ti] * (-vt)

					maxFriction := c.Friction * vcp.NormalImpulse
					newImpulse := clampFloat(vcp.TangentImpulse[ti]+lambda, -maxFriction, maxFriction)
					lambda = newImpulse - vcp.TangentImpulse[ti]
					vcp.TangentImpulse[ti] = newImpulse

					r.applyImpulse3(a, b, c, vcp, tangent.Mul(lambda))
				}

				// Normal impulse, accumulated and clamped non-negative.
				vn := normal.Dot(r.relativeVelocity3(a, b, vcp))
				lambda := -vcp.NormalMass * (vn - vcp.VelocityBias)

				newImpulse := vcp.NormalImpulse + lambda
				if newImpulse < 0 {
					newImpulse = 0
				}
				lambda = newImpulse - vcp.NormalImpulse
				vcp.NormalImpulse = newImpulse

				r.applyImpulse3(a, b, c, vcp, normal.Mul(lambda))
			}
		}
	}
}

func (r *Resolver3) applyImpulse3(a, b *Snapshot3, c *Contact3, vcp *velocityConstraintPoint3, p mgl64.Vec3) {
	a.Body.LinearVelocity = a.Body.LinearVelocity.Sub(p.Mul(a.Body.InvMass))
	a.Body.AngularVelocity = a.Body.AngularVelocity.Sub(c.invIA.Mul3x1(vcp.RA.Cross(p)))
	b.Body.LinearVelocity = b.Body.LinearVelocity.Add(p.Mul(b.Body.InvMass))
	b.Body.AngularVelocity = b.Body.AngularVelocity.Add(c.invIB.Mul3x1(vcp.RB.Cross(p)))
}

// SolvePosition bleeds off penetration beyond the slop by translating the
// bodies along the contact normal, split by inverse mass.
func (r *Resolver3) SolvePosition() {
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
