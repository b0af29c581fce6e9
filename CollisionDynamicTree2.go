package impel

import "github.com/go-gl/mathgl/mgl64"

const nullNode = -1

// aabbMultiplier scales the predicted displacement when fattening a moved
// proxy so fast bodies do not thrash the tree.
const aabbMultiplier = 2.0

type treeNode2 struct {
	Bounds AABB2

	UserData interface{}

	// Parent doubles as the free-list next pointer.
	Parent int
	Child1 int
	Child2 int

	// Leaf = 0, free = -1.
	Height int
}

func (n *treeNode2) IsLeaf() bool {
	return n.Child1 == nullNode
}

// TreeQueryCallback2 is invoked for each proxy overlapping a query volume.
// Return false to terminate the query early.
type TreeQueryCallback2 func(proxyID int) bool

// TreeRayCastCallback2 is invoked for each proxy hit by a ray. The return
// value becomes the new max fraction; return 0 to terminate.
type TreeRayCastCallback2 func(input RayCastInput2, proxyID int) float64

// DynamicTree2 is a bounding volume hierarchy over fat AABBs, balanced with
// AVL rotations. Leaves hold client proxies; internal nodes hold unions of
// their children. Insertion descends by the surface area heuristic using
// AABB perimeter as the cost metric.
type DynamicTree2 struct {
	root int

	nodes    []treeNode2
	count    int
	capacity int
	freeList int
}

// MakeDynamicTree2 constructs an empty tree with a small node pool.
func MakeDynamicTree2() DynamicTree2 {
	t := DynamicTree2{
		root:     nullNode,
		capacity: 16,
	}
	t.nodes = make([]treeNode2, t.capacity)
	for i := 0; i < t.capacity-1; i++ {
		t.nodes[i].Parent = i + 1
		t.nodes[i].Height = -1
	}
	t.nodes[t.capacity-1].Parent = nullNode
	t.nodes[t.capacity-1].Height = -1
	t.freeList = 0
	return t
}

func (t *DynamicTree2) allocateNode() int {
	if t.freeList == nullNode {
		assert(t.count == t.capacity)

		t.nodes = append(t.nodes, make([]treeNode2, t.capacity)...)
		t.capacity *= 2
		for i := t.count; i < t.capacity-1; i++ {
			t.nodes[i].Parent = i + 1
			t.nodes[i].Height = -1
		}
		t.nodes[t.capacity-1].Parent = nullNode
		t.nodes[t.capacity-1].Height = -1
		t.freeList = t.count
	}

	id := t.freeList
	t.freeList = t.nodes[id].Parent
	t.nodes[id] = treeNode2{
		Parent: nullNode,
		Child1: nullNode,
		Child2: nullNode,
	}
	t.count++
	return id
}

func (t *DynamicTree2) freeNode(id int) {
	assert(0 <= id && id < t.capacity)
	assert(0 < t.count)
	t.nodes[id].Parent = t.freeList
	t.nodes[id].Height = -1
	t.nodes[id].UserData = nil
	t.freeList = id
	t.count--
}

// CreateProxy inserts a fattened copy of aabb as a leaf and returns its id.
func (t *DynamicTree2) CreateProxy(aabb AABB2, userData interface{}) int {
	id := t.allocateNode()

	r := mgl64.Vec2{aabbExtension, aabbExtension}
	t.nodes[id].Bounds = AABB2{
		Lower: aabb.Lower.Sub(r),
		Upper: aabb.Upper.Add(r),
	}
	t.nodes[id].UserData = userData

	t.insertLeaf(id)
	return id
}

// DestroyProxy removes a leaf created with CreateProxy.
func (t *DynamicTree2) DestroyProxy(proxyID int) {
	assert(0 <= proxyID && proxyID < t.capacity)
	assert(t.nodes[proxyID].IsLeaf())
	t.removeLeaf(proxyID)
	t.freeNode(proxyID)
}

// MoveProxy updates a leaf with a new AABB. Reports whether the proxy was
// reinserted; if the old fat AABB still contains the new bounds nothing
// happens.
func (t *DynamicTree2) MoveProxy(proxyID int, aabb AABB2, displacement mgl64.Vec2) bool {
	assert(0 <= proxyID && proxyID < t.capacity)
	assert(t.nodes[proxyID].IsLeaf())

	if t.nodes[proxyID].Bounds.Contains(aabb) {
		return false
	}

	t.removeLeaf(proxyID)

	r := mgl64.Vec2{aabbExtension, aabbExtension}
	b := AABB2{Lower: aabb.Lower.Sub(r), Upper: aabb.Upper.Add(r)}

	d := displacement.Mul(aabbMultiplier)
	if d.X() < 0 {
		b.Lower[0] += d.X()
	} else {
		b.Upper[0] += d.X()
	}
	if d.Y() < 0 {
		b.Lower[1] += d.Y()
	} else {
		b.Upper[1] += d.Y()
	}

	t.nodes[proxyID].Bounds = b
	t.insertLeaf(proxyID)
	return true
}

// UserData returns the client data stored with a proxy.
func (t *DynamicTree2) UserData(proxyID int) interface{} {
	assert(0 <= proxyID && proxyID < t.capacity)
	return t.nodes[proxyID].UserData
}

// FatBounds returns the fattened AABB of a proxy.
func (t *DynamicTree2) FatBounds(proxyID int) AABB2 {
	assert(0 <= proxyID && proxyID < t.capacity)
	return t.nodes[proxyID].Bounds
}

func (t *DynamicTree2) insertLeaf(leaf int) {
	if t.root == nullNode {
		t.root = leaf
		t.nodes[leaf].Parent = nullNode
		return
	}

	// Descend to the best sibling by the surface area heuristic.
	leafBounds := t.nodes[leaf].Bounds
	index := t.root
	for !t.nodes[index].IsLeaf() {
		child1 := t.nodes[index].Child1
		child2 := t.nodes[index].Child2

		area := t.nodes[index].Bounds.Perimeter()
		combinedArea := t.nodes[index].Bounds.Union(leafBounds).Perimeter()

		// Cost of creating a new parent for this node and the leaf.
		cost := 2.0 * combinedArea
		inheritanceCost := 2.0 * (combinedArea - area)

		descendCost := func(child int) float64 {
			merged := leafBounds.Union(t.nodes[child].Bounds)
			if t.nodes[child].IsLeaf() {
				return merged.Perimeter() + inheritanceCost
			}
			return merged.Perimeter() - t.nodes[child].Bounds.Perimeter() + inheritanceCost
		}
		cost1 := descendCost(child1)
		cost2 := descendCost(child2)

		if cost < cost1 && cost < cost2 {
			break
		}
		if cost1 < cost2 {
			index = child1
		} else {
			index = child2
		}
	}

	sibling := index

	oldParent := t.nodes[sibling].Parent
	newParent := t.allocateNode()
	t.nodes[newParent].Parent = oldParent
	t.nodes[newParent].Bounds = leafBounds.Union(t.nodes[sibling].Bounds)
	t.nodes[newParent].Height = t.nodes[sibling].Height + 1

	if oldParent != nullNode {
		if t.nodes[oldParent].Child1 == sibling {
			t.nodes[oldParent].Child1 = newParent
		} else {
			t.nodes[oldParent].Child2 = newParent
		}
	} else {
		t.root = newParent
	}
	t.nodes[newParent].Child1 = sibling
	t.nodes[newParent].Child2 = leaf
	t.nodes[sibling].Parent = newParent
	t.nodes[leaf].Parent = newParent

	// Walk back up fixing heights and bounds.
	index = t.nodes[leaf].Parent
	for index != nullNode {
		index = t.balance(index)

		child1 := t.nodes[index].Child1
		child2 := t.nodes[index].Child2
		assert(child1 != nullNode)
		assert(child2 != nullNode)

		t.nodes[index].Height = 1 + max(t.nodes[child1].Height, t.nodes[child2].Height)
		t.nodes[index].Bounds = t.nodes[child1].Bounds.Union(t.nodes[child2].Bounds)

		index = t.nodes[index].Parent
	}
}

func (t *DynamicTree2) removeLeaf(leaf int) {
	if leaf == t.root {
		t.root = nullNode
		return
	}

	parent := t.nodes[leaf].Parent
	grandParent := t.nodes[parent].Parent
	var sibling int
	if t.nodes[parent].Child1 == leaf {
		sibling = t.nodes[parent].Child2
	} else {
		sibling = t.nodes[parent].Child1
	}

	if grandParent != nullNode {
		if t.nodes[grandParent].Child1 == parent {
			t.nodes[grandParent].Child1 = sibling
		} else {
			t.nodes[grandParent].Child2 = sibling
		}
		t.nodes[sibling].Parent = grandParent
		t.freeNode(parent)

		index := grandParent
		for index != nullNode {
			index = t.balance(index)

			child1 := t.nodes[index].Child1
			child2 := t.nodes[index].Child2

			t.nodes[index].Bounds = t.nodes[child1].Bounds.Union(t.nodes[child2].Bounds)
			t.nodes[index].Height = 1 + max(t.nodes[child1].Height, t.nodes[child2].Height)

			index = t.nodes[index].Parent
		}
	} else {
		t.root = sibling
		t.nodes[sibling].Parent = nullNode
		t.freeNode(parent)
	}
}

// balance performs a left or right rotation if node iA is imbalanced and
// returns the index of the subtree's new root.
func (t *DynamicTree2) balance(iA int) int {
	assert(iA != nullNode)

	A := &t.nodes[iA]
	if A.IsLeaf() || A.Height < 2 {
		return iA
	}

	iB := A.Child1
	iC := A.Child2
	B := &t.nodes[iB]
	C := &t.nodes[iC]

	balance := C.Height - B.Height

	// Rotate C up.
	if balance > 1 {
		iF := C.Child1
		iG := C.Child2
		F := &t.nodes[iF]
		G := &t.nodes[iG]

		C.Child1 = iA
		C.Parent = A.Parent
		A.Parent = iC

		if C.Parent != nullNode {
			if t.nodes[C.Parent].Child1 == iA {
				t.nodes[C.Parent].Child1 = iC
			} else {
				t.nodes[C.Parent].Child2 = iC
			}
		} else {
			t.root = iC
		}

		if F.Height > G.Height {
			C.Child2 = iF
			A.Child2 = iG
			G.Parent = iA
			A.Bounds = B.Bounds.Union(G.Bounds)
			C.Bounds = A.Bounds.Union(F.Bounds)
			A.Height = 1 + max(B.Height, G.Height)
			C.Height = 1 + max(A.Height, F.Height)
		} else {
			C.Child2 = iG
			A.Child2 = iF
			F.Parent = iA
			A.Bounds = B.Bounds.Union(F.Bounds)
			C.Bounds = A.Bounds.Union(G.Bounds)
			A.Height = 1 + max(B.Height, F.Height)
			C.Height = 1 + max(A.Height, G.Height)
		}

		return iC
	}

	// Rotate B up.
	if balance < -1 {
		iD := B.Child1
		iE := B.Child2
		D := &t.nodes[iD]
		E := &t.nodes[iE]

		B.Child1 = iA
		B.Parent = A.Parent
		A.Parent = iB

		if B.Parent != nullNode {
			if t.nodes[B.Parent].Child1 == iA {
				t.nodes[B.Parent].Child1 = iB
			} else {
				t.nodes[B.Parent].Child2 = iB
			}
		} else {
			t.root = iB
		}

		if D.Height > E.Height {
			B.Child2 = iD
			A.Child1 = iE
			E.Parent = iA
			A.Bounds = C.Bounds.Union(E.Bounds)
			B.Bounds = A.Bounds.Union(D.Bounds)
			A.Height = 1 + max(C.Height, E.Height)
			B.Height = 1 + max(A.Height, D.Height)
		} else {
			B.Child2 = iE
			A.Child1 = iD
			D.Parent = iA
			A.Bounds = C.Bounds.Union(D.Bounds)
			B.Bounds = A.Bounds.Union(E.Bounds)
			A.Height = 1 + max(C.Height, D.Height)
			B.Height = 1 + max(A.Height, E.Height)
		}

		return iB
	}

	return iA
}

// Query invokes cb for each proxy whose fat bounds overlap aabb.
func (t *DynamicTree2) Query(cb TreeQueryCallback2, aabb AABB2) {
	stack := make([]int, 0, 64)
	stack = append(stack, t.root)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nullNode {
			continue
		}

		node := &t.nodes[id]
		if !Overlap2(node.Bounds, aabb) {
			continue
		}

		if node.IsLeaf() {
			if !cb(id) {
				return
			}
		} else {
			stack = append(stack, node.Child1, node.Child2)
		}
	}
}

// RayCast invokes cb for each proxy along the segment from input.P1 toward
// input.P2, in traversal order. The callback's return value clips the
// remaining ray.
func (t *DynamicTree2) RayCast(cb TreeRayCastCallback2, input RayCastInput2) {
	p1 := input.P1
	p2 := input.P2
	r := p2.Sub(p1)
	assert(r.LenSqr() > 0)
	r = r.Normalize()

	// v is perpendicular to the segment.
	v := CrossScalarVec2(1.0, r)
	absV := absVec2(v)

	maxFraction := input.MaxFraction

	segBounds := func(f float64) AABB2 {
		target := p1.Add(p2.Sub(p1).Mul(f))
		return AABB2{Lower: minVec2(p1, target), Upper: maxVec2(p1, target)}
	}
	bounds := segBounds(maxFraction)

	stack := make([]int, 0, 64)
	stack = append(stack, t.root)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nullNode {
			continue
		}

		node := &t.nodes[id]
		if !Overlap2(node.Bounds, bounds) {
			continue
		}

		// Separating axis: |dot(v, p1 - c)| > dot(|v|, h)
		c := node.Bounds.Center()
		h := node.Bounds.Extents()
		separation := absFloat(v.Dot(p1.Sub(c))) - absV.Dot(h)
		if separation > 0 {
			continue
		}

		if node.IsLeaf() {
			subInput := RayCastInput2{P1: p1, P2: p2, MaxFraction: maxFraction}
			value := cb(subInput, id)
			if value == 0 {
				return
			}
			if value > 0 {
				maxFraction = value
				bounds = segBounds(maxFraction)
			}
		} else {
			stack = append(stack, node.Child1, node.Child2)
		}
	}
}

// Height returns the height of the tree, zero when empty.
func (t *DynamicTree2) Height() int {
	if t.root == nullNode {
		return 0
	}
	return t.nodes[t.root].Height
}
