package impel_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/impel-physics/impel"
)

func groundSnapshot2(id impel.EntityID) impel.Snapshot2 {
	plane := impel.MakePlane2(mgl64.Vec2{0, 1}, 0)
	return impel.MakeSnapshot2(id, plane, identity2(), impel.MakeBody2(impel.StaticBody))
}

func TestWorld2FreeFall(t *testing.T) {
	world := impel.MakeWorld2(mgl64.Vec2{0, -10})
	dt := 1.0 / 60.0

	body := impel.MakeBody2(impel.DynamicBody)
	snapshots := []impel.Snapshot2{
		impel.MakeSnapshot2(1, impel.MakeCircle2(0.5), at2(0, 100), body),
	}

	var prev impel.PairSet
	for i := 0; i < 60; i++ {
		res := world.Step(snapshots, prev, dt)
		snapshots = res.States
		prev = res.Active
	}

	// One second of free fall from rest: v = -10, y ≈ 100 - 5.
	v := snapshots[0].Body.LinearVelocity.Y()
	if math.Abs(v+10) > 1e-9 {
		t.Errorf("velocity = %v, want -10", v)
	}
	y := snapshots[0].Pose.P.Y()
	if y > 95.1 || y < 94.8 {
		t.Errorf("height = %v, want about 95", y)
	}
}

func TestWorld2Restitution(t *testing.T) {
	world := impel.MakeWorld2(mgl64.Vec2{})

	body := impel.MakeBody2(impel.DynamicBody)
	body.Restitution = 1
	body.LinearVelocity = mgl64.Vec2{0, -5}

	// Restitution combines with the minimum rule, so the ground needs it too.
	ground := groundSnapshot2(2)
	ground.Body.Restitution = 1

	snapshots := []impel.Snapshot2{
		impel.MakeSnapshot2(1, impel.MakeCircle2(0.5), at2(0, 0.495), body),
		ground,
	}

	res := world.Step(snapshots, nil, 1.0/60.0)
	v := res.States[0].Body.LinearVelocity.Y()
	if math.Abs(v-5) > 1e-6 {
		t.Errorf("rebound velocity = %v, want 5", v)
	}
}

func TestWorld2RestingContact(t *testing.T) {
	world := impel.MakeWorld2(mgl64.Vec2{})

	// Touching within the slop, no velocity, no gravity: nothing may move.
	box := impel.MakeBox2(0.5, 0.5)
	start := at2(0, 0.495)
	snapshots := []impel.Snapshot2{
		impel.MakeSnapshot2(1, box, start, impel.MakeBody2(impel.DynamicBody)),
		groundSnapshot2(2),
	}

	var prev impel.PairSet
	for i := 0; i < 10; i++ {
		res := world.Step(snapshots, prev, 1.0/60.0)
		snapshots = res.States
		prev = res.Active
	}

	if snapshots[0].Pose != start {
		t.Errorf("resting pose drifted: %v", snapshots[0].Pose)
	}
	if snapshots[0].Body.LinearVelocity.Len() != 0 {
		t.Errorf("resting body gained velocity %v", snapshots[0].Body.LinearVelocity)
	}
}

func TestWorld2StaticNeverMoves(t *testing.T) {
	world := impel.MakeWorld2(mgl64.Vec2{0, -10})

	ground := groundSnapshot2(2)
	snapshots := []impel.Snapshot2{
		impel.MakeSnapshot2(1, impel.MakeBox2(0.5, 0.5), at2(0, 2), impel.MakeBody2(impel.DynamicBody)),
		ground,
	}

	var prev impel.PairSet
	for i := 0; i < 120; i++ {
		res := world.Step(snapshots, prev, 1.0/60.0)
		snapshots = res.States
		prev = res.Active

		if snapshots[1].Pose != ground.Pose {
			t.Fatalf("tick %d: static pose changed to %v", i, snapshots[1].Pose)
		}
		if snapshots[1].Body.LinearVelocity != (mgl64.Vec2{}) {
			t.Fatalf("tick %d: static body gained velocity", i)
		}
	}

	// And the dynamic box came to rest on the surface.
	y := snapshots[0].Pose.P.Y()
	if y < 0.4 || y > 0.6 {
		t.Errorf("box settled at %v, want about 0.5", y)
	}
}

func TestWorld2EventLifecycle(t *testing.T) {
	world := impel.MakeWorld2(mgl64.Vec2{})
	circle := impel.MakeCircle2(0.5)
	body := impel.MakeBody2(impel.DynamicBody)

	overlapping := []impel.Snapshot2{
		impel.MakeSnapshot2(1, circle, at2(0, 0.4), body),
		groundSnapshot2(2),
	}
	separated := []impel.Snapshot2{
		impel.MakeSnapshot2(1, circle, at2(0, 5), body),
		groundSnapshot2(2),
	}

	counts := make(map[impel.ContactState]int)
	var prev impel.PairSet
	for tick := 0; tick < 5; tick++ {
		input := overlapping
		if tick >= 3 {
			input = separated
		}
		res := world.Step(input, prev, 0)
		prev = res.Active
		for _, e := range res.Events {
			if e.Pair != impel.MakePair(1, 2) {
				t.Fatalf("unexpected pair %v", e.Pair)
			}
			counts[e.State]++
		}
	}

	if counts[impel.ContactBegan] != 1 ||
		counts[impel.ContactPersisted] != 2 ||
		counts[impel.ContactEnded] != 1 {
		t.Errorf("event counts = %v, want 1 began / 2 persisted / 1 ended", counts)
	}
}

func TestWorld2RejectsInvalid(t *testing.T) {
	world := impel.MakeWorld2(mgl64.Vec2{0, -10})

	bad := impel.MakeSnapshot2(7, impel.MakeCircle2(0.5), at2(0, 1), impel.MakeBody2(impel.DynamicBody))
	bad.Pose.P = mgl64.Vec2{math.NaN(), 0}
	good := impel.MakeSnapshot2(1, impel.MakeCircle2(0.5), at2(0, 1), impel.MakeBody2(impel.DynamicBody))
	dup := impel.MakeSnapshot2(1, impel.MakeCircle2(0.5), at2(3, 1), impel.MakeBody2(impel.DynamicBody))

	res := world.Step([]impel.Snapshot2{bad, good, dup}, nil, 1.0/60.0)

	if len(res.Rejected) != 2 {
		t.Fatalf("rejected = %v, want ids 7 and 1 (duplicate)", res.Rejected)
	}
	// Rejected entities pass through untouched.
	if res.States[0].Pose != bad.Pose || res.States[2].Pose != dup.Pose {
		t.Error("rejected snapshot was modified")
	}
	// The valid one still simulated.
	if res.States[1].Body.LinearVelocity.Y() >= 0 {
		t.Error("valid snapshot did not simulate")
	}
}

func TestWorld2ZeroDt(t *testing.T) {
	world := impel.MakeWorld2(mgl64.Vec2{0, -10})

	start := at2(0, 0.4)
	snapshots := []impel.Snapshot2{
		impel.MakeSnapshot2(1, impel.MakeCircle2(0.5), start, impel.MakeBody2(impel.DynamicBody)),
		groundSnapshot2(2),
	}

	res := world.Step(snapshots, nil, 0)
	if res.States[0].Pose != start {
		t.Error("zero dt moved an entity")
	}
	if res.States[0].Body.LinearVelocity != (mgl64.Vec2{}) {
		t.Error("zero dt changed a velocity")
	}
	// Contacts are still reported.
	if _, ok := res.Active[impel.MakePair(1, 2)]; !ok {
		t.Error("zero dt did not detect the contact")
	}
}

func TestWorld2ScaledShape(t *testing.T) {
	world := impel.MakeWorld2(mgl64.Vec2{})

	// Unit circle scaled down: no contact at a distance that the unscaled
	// shape would reach.
	small := impel.MakeSnapshot2(1, impel.MakeCircle2(1), at2(0, 1.5), impel.MakeBody2(impel.DynamicBody))
	small.Scale = 0.25
	snapshots := []impel.Snapshot2{small, groundSnapshot2(2)}

	res := world.Step(snapshots, nil, 0)
	if len(res.Active) != 0 {
		t.Error("scaled-down shape still collided")
	}

	big := small
	big.Scale = 2
	res = world.Step([]impel.Snapshot2{big, groundSnapshot2(2)}, nil, 0)
	if _, ok := res.Active[impel.MakePair(1, 2)]; !ok {
		t.Error("scaled-up shape missed the contact")
	}
}

func runStack2(t *testing.T) string {
	t.Helper()

	world := impel.MakeWorld2(mgl64.Vec2{0, -10})
	dt := 1.0 / 60.0

	box := impel.MakeBox2(0.5, 0.5)
	snapshots := []impel.Snapshot2{
		groundSnapshot2(1),
		impel.MakeSnapshot2(2, box, at2(0, 0.5), impel.MakeBody2(impel.DynamicBody)),
		impel.MakeSnapshot2(3, box, at2(0.05, 1.55), impel.MakeBody2(impel.DynamicBody)),
		impel.MakeSnapshot2(4, impel.MakeCircle2(0.4), at2(-0.1, 3), impel.MakeBody2(impel.DynamicBody)),
	}

	output := ""
	var prev impel.PairSet
	for i := 0; i < 60; i++ {
		res := world.Step(snapshots, prev, dt)
		snapshots = res.States
		prev = res.Active

		for _, s := range snapshots {
			output += fmt.Sprintf("%v(%v): %v %v %v\n",
				i, s.ID, s.Pose.P.X(), s.Pose.P.Y(), s.Pose.Q.Angle())
		}
		for _, e := range res.Events {
			output += fmt.Sprintf("%v: %v-%v %v\n", i, e.Pair.A, e.Pair.B, e.State)
		}
	}
	return output
}

// Two runs over identical input must agree bit for bit.
func TestWorld2Determinism(t *testing.T) {
	first := runStack2(t)
	second := runStack2(t)

	if first != second {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(first),
			B:        difflib.SplitLines(second),
			FromFile: "First",
			ToFile:   "Second",
			Context:  0,
		}
		text, err := difflib.GetUnifiedDiffString(diff)
		if err != nil {
			t.Fatal(err)
		}
		t.Fatalf("simulation diverged between identical runs:\n%s", text)
	}
}
