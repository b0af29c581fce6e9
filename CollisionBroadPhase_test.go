package impel_test

import (
	"testing"

	"github.com/impel-physics/impel"
)

func TestMakePairCanonical(t *testing.T) {
	a := impel.MakePair(7, 3)
	b := impel.MakePair(3, 7)
	if a != b {
		t.Errorf("pair not canonical: %v vs %v", a, b)
	}
	if a.A != 3 || a.B != 7 {
		t.Errorf("pair = %v, want {3 7}", a)
	}
}

func TestShouldCollide(t *testing.T) {
	def := impel.DefaultFilter()
	if !impel.ShouldCollide(def, def) {
		t.Error("default filters must collide")
	}

	player := impel.Filter{Layer: 0x0001, Mask: 0x0002}
	debris := impel.Filter{Layer: 0x0004, Mask: 0x0004}
	if impel.ShouldCollide(player, debris) {
		t.Error("disjoint layer/mask filters must not collide")
	}

	wall := impel.Filter{Layer: 0x0002, Mask: 0xFFFF}
	if !impel.ShouldCollide(player, wall) {
		t.Error("player should collide with wall")
	}
	// One-sided interest is not enough.
	ghost := impel.Filter{Layer: 0x0008, Mask: 0xFFFF}
	blind := impel.Filter{Layer: 0x0010, Mask: 0x0000}
	if impel.ShouldCollide(ghost, blind) {
		t.Error("collision requires both masks to accept")
	}
}

func TestBroadPhase2Pairs(t *testing.T) {
	bp := impel.MakeBroadPhase2()
	def := impel.DefaultFilter()

	bp.Add(1, box2At(0, 0, 1), def, false)
	bp.Add(2, box2At(1, 0, 1), def, false)
	bp.Add(3, box2At(50, 0, 1), def, false)

	pairs := bp.Pairs()
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1: %v", len(pairs), pairs)
	}
	if pairs[0] != impel.MakePair(1, 2) {
		t.Errorf("pair = %v, want {1 2}", pairs[0])
	}
}

func TestBroadPhase2StaticStatic(t *testing.T) {
	bp := impel.MakeBroadPhase2()
	def := impel.DefaultFilter()

	bp.Add(1, box2At(0, 0, 1), def, true)
	bp.Add(2, box2At(1, 0, 1), def, true)
	bp.Add(3, box2At(0.5, 0, 1), def, false)

	pairs := bp.Pairs()
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2: %v", len(pairs), pairs)
	}
	for _, p := range pairs {
		if p == impel.MakePair(1, 2) {
			t.Error("static-static pair must be culled")
		}
	}
}

func TestBroadPhase2Filtered(t *testing.T) {
	bp := impel.MakeBroadPhase2()

	a := impel.Filter{Layer: 0x0001, Mask: 0x0001}
	b := impel.Filter{Layer: 0x0002, Mask: 0x0002}
	bp.Add(1, box2At(0, 0, 1), a, false)
	bp.Add(2, box2At(0.5, 0, 1), b, false)

	if pairs := bp.Pairs(); len(pairs) != 0 {
		t.Errorf("filtered bodies produced pairs: %v", pairs)
	}
}

func TestBroadPhase2SortedOutput(t *testing.T) {
	bp := impel.MakeBroadPhase2()
	def := impel.DefaultFilter()

	// One cluster where everything overlaps everything.
	bp.Add(9, box2At(0, 0, 2), def, false)
	bp.Add(4, box2At(0.5, 0, 2), def, false)
	bp.Add(7, box2At(1, 0, 2), def, false)

	pairs := bp.Pairs()
	if len(pairs) != 3 {
		t.Fatalf("got %d pairs, want 3", len(pairs))
	}
	for i := 1; i < len(pairs); i++ {
		if !pairs[i-1].Less(pairs[i]) {
			t.Errorf("pairs out of order: %v", pairs)
		}
	}
}

// Every narrow-phase contact must come from a broad-phase candidate pair.
func TestBroadPhase2SupersetOfContacts(t *testing.T) {
	type entry struct {
		id    impel.EntityID
		shape impel.Shape2
		xf    impel.Transform2
	}
	entries := []entry{
		{1, impel.MakeCircle2(0.6), at2(0, 0)},
		{2, impel.MakeCircle2(0.6), at2(1, 0)},
		{3, impel.MakeBox2(0.5, 0.5), at2(0.4, 0.4)},
		{4, impel.MakeBox2(0.5, 0.5), at2(4, 4)},
		{5, impel.MakeCapsule2(0.5, 0.2), at2(4.4, 4)},
	}

	bp := impel.MakeBroadPhase2()
	def := impel.DefaultFilter()
	for _, e := range entries {
		bp.Add(e.id, e.shape.AABB(e.xf), def, false)
	}
	candidates := make(impel.PairSet)
	for _, p := range bp.Pairs() {
		candidates[p] = struct{}{}
	}

	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			m := impel.Collide2(entries[i].shape, entries[i].xf, entries[j].shape, entries[j].xf)
			if m.Count == 0 {
				continue
			}
			p := impel.MakePair(entries[i].id, entries[j].id)
			if _, ok := candidates[p]; !ok {
				t.Errorf("contact pair %v missing from broad phase", p)
			}
		}
	}
}
