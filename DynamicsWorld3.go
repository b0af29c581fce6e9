package impel

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Snapshot3 is the per-entity input and output of one 3D step.
type Snapshot3 struct {
	ID    EntityID
	Shape Shape3
	Pose  Transform3
	Scale float64
	Body  Body3
}

// MakeSnapshot3 assembles a snapshot with unit scale.
func MakeSnapshot3(id EntityID, shape Shape3, pose Transform3, body Body3) Snapshot3 {
	return Snapshot3{ID: id, Shape: shape, Pose: pose, Scale: 1.0, Body: body}
}

func (s *Snapshot3) valid() bool {
	return s.Shape != nil && s.Shape.Validate() &&
		s.Pose.IsValid() &&
		IsValidFloat(s.Scale) && s.Scale > 0 &&
		s.Body.IsValid()
}

// StepResult3 is the outcome of one 3D tick.
type StepResult3 struct {
	States   []Snapshot3
	Events   []ContactEvent
	Active   PairSet
	Rejected []EntityID
}

// World3 runs the 3D pipeline. Like World2 it holds only configuration; all
// simulation state flows through Step.
type World3 struct {
	Cfg     Config
	Gravity mgl64.Vec3
}

// MakeWorld3 constructs a world with the default configuration.
func MakeWorld3(gravity mgl64.Vec3) World3 {
	return World3{Cfg: DefaultConfig(), Gravity: gravity}
}

// Step advances the simulation by dt. The previous tick's active set drives
// contact event lifecycle; pass nil on the first tick.
func (w *World3) Step(snapshots []Snapshot3, prev PairSet, dt float64) StepResult3 {
	result := StepResult3{
		States: make([]Snapshot3, len(snapshots)),
		Active: make(PairSet),
	}
	copy(result.States, snapshots)

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

	sort.Slice(live, func(i, j int) bool {
		return result.States[live[i]].ID < result.States[live[j]].ID
	})

	for _, i := range live {
		s := &result.States[i]
		IntegrateVelocity3(&s.Body, s.Pose.Q, w.Gravity, dt)
	}

	bp := MakeBroadPhase3()
	byID := make(map[EntityID]int, len(live))
	shapes := make(map[EntityID]Shape3, len(live))
	for _, i := range live {
		s := &result.States[i]
		shape := scaleShape3(s.Shape, s.Scale)
		shapes[s.ID] = shape
		byID[s.ID] = i
		bp.Add(s.ID, shape.AABB(s.Pose), s.Body.Filter, s.Body.Type == StaticBody)
	}
	pairs := bp.Pairs()

	contacts := make([]Contact3, 0, len(pairs))
	for _, p := range pairs {
		ia, okA := byID[p.A]
		ib, okB := byID[p.B]
		if !okA || !okB {
			assert(false)
			continue
		}
		a := &result.States[ia]
		b := &result.States[ib]

		m := Collide3(shapes[p.A], a.Pose, shapes[p.B], b.Pose)
		if m.Count == 0 {
			continue
		}
		if m.Normal.LenSqr() < Epsilon*Epsilon {
			continue
		}

		result.Active[p] = struct{}{}
		contacts = append(contacts, Contact3{
			Pair:     p,
			IndexA:   ia,
			IndexB:   ib,
			Manifold: m,
		})
	}

	resolver := MakeResolver3(w.Cfg, result.States, contacts)
	resolver.SolveVelocity()

	for _, i := range live {
		s := &result.States[i]
		IntegratePose3(w.Cfg, &s.Pose, &s.Body, dt)
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

// scaleShape3 returns shape with a uniform scale baked in. Unit scale
// returns the shared shape untouched.
func scaleShape3(s Shape3, k float64) Shape3 {
	if k == 1.0 {
		return s
	}
	switch sh := s.(type) {
	case *Sphere3:
		return &Sphere3{Radius: sh.Radius * k}
	case *Box3:
		return &Box3{HalfExtents: sh.HalfExtents.Mul(k)}
	case *Hull3:
		scaled := &Hull3{Vertices: make([]mgl64.Vec3, len(sh.Vertices))}
		for i, v := range sh.Vertices {
			scaled.Vertices[i] = v.Mul(k)
		}
		return scaled
	case *Capsule3:
		return &Capsule3{HalfLength: sh.HalfLength * k, Radius: sh.Radius * k}
	case *Plane3:
		return &Plane3{Normal: sh.Normal, Offset: sh.Offset * k}
	}
	return s
}
