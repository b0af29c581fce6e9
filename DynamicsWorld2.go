package impel

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Snapshot2 is the per-entity input and output of one 2D step: identity,
// geometry, pose and dynamic state. Shapes are immutable and may be shared
// between entities; everything else is owned by the entity.
type Snapshot2 struct {
	ID    EntityID
	Shape Shape2
	Pose  Transform2
	Scale float64
	Body  Body2
}

// MakeSnapshot2 assembles a snapshot with unit scale.
func MakeSnapshot2(id EntityID, shape Shape2, pose Transform2, body Body2) Snapshot2 {
	return Snapshot2{ID: id, Shape: shape, Pose: pose, Scale: 1.0, Body: body}
}

func (s *Snapshot2) valid() bool {
	return s.Shape != nil && s.Shape.Validate() &&
		s.Pose.IsValid() &&
		IsValidFloat(s.Scale) && s.Scale > 0 &&
		s.Body.IsValid()
}

// StepResult2 is the outcome of one tick. States carries every input entity
// back, updated where it simulated. Active is this tick's touching-pair set;
// the host passes it into the next Step for event diffing. Rejected lists
// entities excluded from this tick because their input failed validation.
type StepResult2 struct {
	States   []Snapshot2
	Events   []ContactEvent
	Active   PairSet
	Rejected []EntityID
}

// World2 runs the 2D pipeline: force integration, spatial index rebuild,
// broad phase, narrow phase, impulse resolution, pose integration and event
// diffing. The world itself holds only configuration; all simulation state
// flows through Step, so a world is safe to share across independent
// simulations.
type World2 struct {
	Cfg     Config
	Gravity mgl64.Vec2
}

// MakeWorld2 constructs a world with the default configuration.
func MakeWorld2(gravity mgl64.Vec2) World2 {
	return World2{Cfg: DefaultConfig(), Gravity: gravity}
}

// Step advances the simulation by dt. The previous tick's active set drives
// contact event lifecycle; pass nil on the first tick. A zero dt detects
// contacts and emits events but moves nothing.
func (w *World2) Step(snapshots []Snapshot2, prev PairSet, dt float64) StepResult2 {
	result := StepResult2{
		States: make([]Snapshot2, len(snapshots)),
		Active: make(PairSet),
	}
	copy(result.States, snapshots)

	// Validation: broken entities sit this tick out, everyone else runs.
	live := make([]int, 0, len(result.States))
	seen := make(map[EntityID]bool, len(result.States))
	for i := range result.States {
		s := &result.States[i]
		if !s.valid() || seen[s.ID] {
			result.Rejected = append(result.Rejected, s.ID)
			continue
		}
		seen[s.ID] = true
		live = append(live, i)
	}

	// Fixed iteration order regardless of input order.
	sort.Slice(live, func(i, j int) bool {
		return result.States[live[i]].ID < result.States[live[j]].ID
	})

	for _, i := range live {
		s := &result.States[i]
		IntegrateVelocity2(&s.Body, w.Gravity, dt)
	}

	// Index rebuild and broad phase.
	bp := MakeBroadPhase2()
	byID := make(map[EntityID]int, len(live))
	shapes := make(map[EntityID]Shape2, len(live))
	for _, i := range live {
		s := &result.States[i]
		shape := scaleShape2(s.Shape, s.Scale)
		shapes[s.ID] = shape
		byID[s.ID] = i
		bp.Add(s.ID, shape.AABB(s.Pose), s.Body.Filter, s.Body.Type == StaticBody)
	}
	pairs := bp.Pairs()

	// Narrow phase in canonical pair order.
	contacts := make([]Contact2, 0, len(pairs))
	for _, p := range pairs {
		ia, okA := byID[p.A]
		ib, okB := byID[p.B]
		if !okA || !okB {
			assert(false)
			continue
		}
		a := &result.States[ia]
		b := &result.States[ib]

		m := Collide2(shapes[p.A], a.Pose, shapes[p.B], b.Pose)
		if m.Count == 0 {
			continue
		}
		if m.Normal.LenSqr() < Epsilon*Epsilon {
			// Degenerate normal, skip the contact.
			continue
		}

		result.Active[p] = struct{}{}
		contacts = append(contacts, Contact2{
			Pair:     p,
			IndexA:   ia,
			IndexB:   ib,
			Manifold: m,
		})
	}

	// Resolve, then integrate poses, then bleed off remaining penetration.
	resolver := MakeResolver2(w.Cfg, result.States, contacts)
	resolver.SolveVelocity()

	for _, i := range live {
		s := &result.States[i]
		IntegratePose2(w.Cfg, &s.Pose, &s.Body, dt)
	}

	if dt > 0 {
		resolver.SolvePosition()
	}

	for _, i := range live {
		result.States[i].Body.ClearForces()
	}

	result.Events = DiffPairs(prev, result.Active)
	return result
}

// scaleShape2 returns shape with a uniform scale baked in. Unit scale
// returns the shared shape untouched.
func scaleShape2(s Shape2, k float64) Shape2 {
	if k == 1.0 {
		return s
	}
	switch sh := s.(type) {
	case *Circle2:
		return &Circle2{P: sh.P.Mul(k), Radius: sh.Radius * k}
	case *Polygon2:
		scaled := *sh
		for i := 0; i < sh.Count; i++ {
			scaled.Vertices[i] = sh.Vertices[i].Mul(k)
		}
		scaled.Centroid = sh.Centroid.Mul(k)
		return &scaled
	case *Capsule2:
		return &Capsule2{HalfLength: sh.HalfLength * k, Radius: sh.Radius * k}
	case *Plane2:
		return &Plane2{Normal: sh.Normal, Offset: sh.Offset * k}
	}
	return s
}
