package impel

import "sort"

// EntityID identifies an entity across ticks. IDs are assigned by the caller
// and must be unique within a step.
type EntityID uint64

// Filter controls which entity pairs the broad phase may report. Two
// entities collide only when each one's Layer intersects the other's Mask.
type Filter struct {
	Layer uint32
	Mask  uint32
}

// DefaultFilter collides with everything.
func DefaultFilter() Filter {
	return Filter{Layer: 0x0001, Mask: 0xFFFF}
}

// ShouldCollide applies the layer/mask test in both directions.
func ShouldCollide(a, b Filter) bool {
	return a.Layer&b.Mask != 0 && b.Layer&a.Mask != 0
}

// Pair is an unordered entity pair stored canonically with A < B.
type Pair struct {
	A, B EntityID
}

// MakePair canonicalizes an entity pair.
func MakePair(a, b EntityID) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Less orders pairs lexicographically, giving the deterministic order that
// the narrow phase and the resolver consume pairs in.
func (p Pair) Less(q Pair) bool {
	if p.A != q.A {
		return p.A < q.A
	}
	return p.B < q.B
}

// PairSet is the set of active pairs of one tick.
type PairSet map[Pair]struct{}

type broadRef struct {
	ID     EntityID
	Filter Filter
	Static bool
	Proxy  int
}

// BroadPhase2 collects candidate pairs from 2D bounds. It is rebuilt each
// tick: Add every entity, then call Pairs once.
type BroadPhase2 struct {
	tree DynamicTree2
	refs []broadRef
}

// MakeBroadPhase2 constructs an empty broad phase.
func MakeBroadPhase2() BroadPhase2 {
	return BroadPhase2{tree: MakeDynamicTree2()}
}

// Add registers an entity's bounds. Entities must be added in increasing id
// order for deterministic output; Pairs sorts regardless.
func (bp *BroadPhase2) Add(id EntityID, aabb AABB2, filter Filter, isStatic bool) {
	ref := broadRef{ID: id, Filter: filter, Static: isStatic}
	ref.Proxy = bp.tree.CreateProxy(aabb, len(bp.refs))
	bp.refs = append(bp.refs, ref)
}

// Pairs returns every candidate pair whose fat bounds overlap, passing the
// filter test, with static-static pairs rejected. The result is canonical,
// deduplicated and sorted.
func (bp *BroadPhase2) Pairs() []Pair {
	seen := make(PairSet)

	for i := range bp.refs {
		a := &bp.refs[i]
		bp.tree.Query(func(proxyID int) bool {
			j := bp.tree.UserData(proxyID).(int)
			if j == i {
				return true
			}
			b := &bp.refs[j]
			if a.Static && b.Static {
				return true
			}
			if !ShouldCollide(a.Filter, b.Filter) {
				return true
			}
			seen[MakePair(a.ID, b.ID)] = struct{}{}
			return true
		}, bp.tree.FatBounds(a.Proxy))
	}

	return sortPairs(seen)
}

// BroadPhase3 is the 3D counterpart of BroadPhase2.
type BroadPhase3 struct {
	tree DynamicTree3
	refs []broadRef
}

// MakeBroadPhase3 constructs an empty broad phase.
func MakeBroadPhase3() BroadPhase3 {
	return BroadPhase3{tree: MakeDynamicTree3()}
}

// Add registers an entity's bounds.
func (bp *BroadPhase3) Add(id EntityID, aabb AABB3, filter Filter, isStatic bool) {
	ref := broadRef{ID: id, Filter: filter, Static: isStatic}
	ref.Proxy = bp.tree.CreateProxy(aabb, len(bp.refs))
	bp.refs = append(bp.refs, ref)
}

// Pairs returns the candidate pairs, canonical, deduplicated and sorted.
func (bp *BroadPhase3) Pairs() []Pair {
	seen := make(PairSet)

	for i := range bp.refs {
		a := &bp.refs[i]
		bp.tree.Query(func(proxyID int) bool {
			j := bp.tree.UserData(proxyID).(int)
			if j == i {
				return true
			}
			b := &bp.refs[j]
			if a.Static && b.Static {
				return true
			}
			if !ShouldCollide(a.Filter, b.Filter) {
				return true
			}
			seen[MakePair(a.ID, b.ID)] = struct{}{}
			return true
		}, bp.tree.FatBounds(a.Proxy))
	}

	return sortPairs(seen)
}

func sortPairs(set PairSet) []Pair {
	pairs := make([]Pair, 0, len(set))
	for p := range set {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Less(pairs[j]) })
	return pairs
}
