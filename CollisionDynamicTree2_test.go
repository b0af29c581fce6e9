package impel_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/impel-physics/impel"
)

func box2At(x, y, ext float64) impel.AABB2 {
	return impel.AABB2{
		Lower: mgl64.Vec2{x - ext, y - ext},
		Upper: mgl64.Vec2{x + ext, y + ext},
	}
}

func queryIDs2(tree *impel.DynamicTree2, aabb impel.AABB2) map[int]bool {
	found := make(map[int]bool)
	tree.Query(func(proxy int) bool {
		found[tree.UserData(proxy).(int)] = true
		return true
	}, aabb)
	return found
}

func TestDynamicTree2Query(t *testing.T) {
	tree := impel.MakeDynamicTree2()

	proxies := make([]int, 10)
	for i := 0; i < 10; i++ {
		proxies[i] = tree.CreateProxy(box2At(float64(i)*3, 0, 0.5), i)
	}

	found := queryIDs2(&tree, box2At(3, 0, 1))
	if len(found) != 1 || !found[1] {
		t.Errorf("query found %v, want {1}", found)
	}

	// A wide window spanning entries 2..4.
	found = queryIDs2(&tree, impel.AABB2{Lower: mgl64.Vec2{5, -1}, Upper: mgl64.Vec2{13, 1}})
	for _, want := range []int{2, 3, 4} {
		if !found[want] {
			t.Errorf("query missed %d (found %v)", want, found)
		}
	}

	tree.DestroyProxy(proxies[1])
	found = queryIDs2(&tree, box2At(3, 0, 1))
	if len(found) != 0 {
		t.Errorf("query after destroy found %v, want empty", found)
	}
}

func TestDynamicTree2Move(t *testing.T) {
	tree := impel.MakeDynamicTree2()
	proxy := tree.CreateProxy(box2At(0, 0, 0.5), 0)

	// Small motion stays inside the fattened bounds.
	if tree.MoveProxy(proxy, box2At(0.01, 0, 0.5), mgl64.Vec2{0.01, 0}) {
		t.Error("small move reinserted the proxy")
	}
	if !tree.MoveProxy(proxy, box2At(5, 0, 0.5), mgl64.Vec2{5, 0}) {
		t.Error("large move did not reinsert the proxy")
	}

	found := queryIDs2(&tree, box2At(5, 0, 0.1))
	if !found[0] {
		t.Error("proxy not found at new position")
	}
}

func TestDynamicTree2Balance(t *testing.T) {
	tree := impel.MakeDynamicTree2()

	// A sorted insertion order is the worst case for a naive tree.
	n := 64
	for i := 0; i < n; i++ {
		tree.CreateProxy(box2At(float64(i), 0, 0.4), i)
	}
	if h := tree.Height(); h > 16 {
		t.Errorf("tree height %d after %d ordered inserts, want balanced", h, n)
	}

	found := queryIDs2(&tree, impel.AABB2{Lower: mgl64.Vec2{-1, -1}, Upper: mgl64.Vec2{float64(n), 1}})
	if len(found) != n {
		t.Errorf("query found %d proxies, want %d", len(found), n)
	}
}

func TestDynamicTree2Empty(t *testing.T) {
	tree := impel.MakeDynamicTree2()
	if found := queryIDs2(&tree, box2At(0, 0, 1)); len(found) != 0 {
		t.Errorf("query on empty tree found %v", found)
	}
	if h := tree.Height(); h != 0 {
		t.Errorf("empty tree height = %d", h)
	}
}

func TestDynamicTree2RayCast(t *testing.T) {
	tree := impel.MakeDynamicTree2()
	tree.CreateProxy(box2At(5, 0, 0.5), 0)
	tree.CreateProxy(box2At(5, 10, 0.5), 1)

	var hits []int
	tree.RayCast(func(input impel.RayCastInput2, proxy int) float64 {
		hits = append(hits, tree.UserData(proxy).(int))
		return input.MaxFraction
	}, impel.RayCastInput2{
		P1:          mgl64.Vec2{0, 0},
		P2:          mgl64.Vec2{10, 0},
		MaxFraction: 1,
	})

	if len(hits) != 1 || hits[0] != 0 {
		t.Errorf("ray hit %v, want [0]", hits)
	}
}
