package impel

import "github.com/go-gl/mathgl/mgl64"

type treeNode3 struct {
	Bounds AABB3

	UserData interface{}

	Parent int
	Child1 int
	Child2 int

	Height int
}

func (n *treeNode3) IsLeaf() bool {
	return n.Child1 == nullNode
}

// TreeQueryCallback3 is invoked for each proxy overlapping a query volume.
// Return false to terminate the query early.
type TreeQueryCallback3 func(proxyID int) bool

// TreeRayCastCallback3 is invoked for each proxy hit by a ray. The return
// value becomes the new max fraction; return 0 to terminate.
type TreeRayCastCallback3 func(input RayCastInput3, proxyID int) float64

// DynamicTree3 is the 3D counterpart of DynamicTree2. Insertion descends by
// the surface area heuristic with AABB surface area as the cost metric.
type DynamicTree3 struct {
	root int

	nodes    []treeNode3
	count    int
	capacity int
	freeList int
}

// MakeDynamicTree3 constructs an empty tree with a small node pool.
func MakeDynamicTree3() DynamicTree3 {
	t := DynamicTree3{
		root:     nullNode,
		capacity: 16,
	}
	t.nodes = make([]treeNode3, t.capacity)
	for i := 0; i < t.capacity-1; i++ {
		t.nodes[i].Parent = i + 1
		t.nodes[i].Height = -1
	}
	t.nodes[t.capacity-1].Parent = nullNode
	t.nodes[t.capacity-1].Height = -1
	t.freeList = 0
	return t
}

func (t *DynamicTree3) allocateNode() int {
	if t.freeList == nullNode {
		assert(t.count == t.capacity)

		t.nodes = append(t.nodes, make([]treeNode3, t.capacity)...)
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
	t.nodes[id] = treeNode3{
		Parent: nullNode,
		Child1: nullNode,
		Child2: nullNode,
	}
	t.count++
	return id
}

func (t *DynamicTree3) freeNode(id int) {
	assert(0 <= id && id < t.capacity)
	assert(0 < t.count)
	t.nodes[id].Parent = t.freeList
	t.nodes[id].Height = -1
	t.nodes[id].UserData = nil
	t.freeList = id
	t.count--
}

// CreateProxy inserts a fattened copy of aabb as a leaf and returns its id.
func (t *DynamicTree3) CreateProxy(aabb AABB3, userData interface{}) int {
	id := t.allocateNode()

	t.nodes[id].Bounds = aabb.Expand(aabbExtension)
	t.nodes[id].UserData = userData

	t.insertLeaf(id)
	return id
}

// DestroyProxy removes a leaf created with CreateProxy.
func (t *DynamicTree3) DestroyProxy(proxyID int) {
	assert(0 <= proxyID && proxyID < t.capacity)
	assert(t.nodes[proxyID].IsLeaf())
	t.removeLeaf(proxyID)
	t.freeNode(proxyID)
}

// MoveProxy updates a leaf with a new AABB. Reports whether the proxy was
// reinserted.
func (t *DynamicTree3) MoveProxy(proxyID int, aabb AABB3, displacement mgl64.Vec3) bool {
	assert(0 <= proxyID && proxyID < t.capacity)
	assert(t.nodes[proxyID].IsLeaf())

	if t.nodes[proxyID].Bounds.Contains(aabb) {
		return false
	}

	t.removeLeaf(proxyID)

	b := aabb.Expand(aabbExtension)
	d := displacement.Mul(aabbMultiplier)
	for i := 0; i < 3; i++ {
		if d[i] < 0 {
			b.Lower[i] += d[i]
		} else {
			b.Upper[i] += d[i]
		}
	}

	t.nodes[proxyID].Bounds = b
	t.insertLeaf(proxyID)
	return true
}

// UserData returns the client data stored with a proxy.
func (t *DynamicTree3) UserData(proxyID int) interface{} {
	assert(0 <= proxyID && proxyID < t.capacity)
	return t.nodes[proxyID].UserData
}

// FatBounds returns the fattened AABB of a proxy.
func (t *DynamicTree3) FatBounds(proxyID int) AABB3 {
	assert(0 <= proxyID && proxyID < t.capacity)
	return t.nodes[proxyID].Bounds
}

func (t *DynamicTree3) insertLeaf(leaf int) {
	if t.root == nullNode {
		t.root = leaf
		t.nodes[leaf].Parent = nullNode
		return
	}

	leafBounds := t.nodes[leaf].Bounds
	index := t.root
	for !t.nodes[index].IsLeaf() {
		child1 := t.nodes[index].Child1
		child2 := t.nodes[index].Child2

		area := t.nodes[index].Bounds.SurfaceArea()
		combinedArea := t.nodes[index].Bounds.Union(leafBounds).SurfaceArea()

		cost := 2.0 * combinedArea
		inheritanceCost := 2.0 * (combinedArea - area)

		descendCost := func(child int) float64 {
			merged := leafBounds.Union(t.nodes[child].Bounds)
			if t.nodes[child].IsLeaf() {
				return merged.SurfaceArea() + inheritanceCost
			}
			return merged.SurfaceArea() - t.nodes[child].Bounds.SurfaceArea() + inheritanceCost
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

func (t *DynamicTree3) removeLeaf(leaf int) {
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

func (t *DynamicTree3) balance(iA int) int {
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
func (t *DynamicTree3) Query(cb TreeQueryCallback3, aabb AABB3) {
	stack := make([]int, 0, 64)
	stack = append(stack, t.root)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nullNode {
			continue
		}

		node := &t.nodes[id]
		if !Overlap3(node.Bounds, aabb) {
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

// RayCast invokes cb for each proxy whose bounds the segment from input.P1
// toward input.P2 intersects. The callback's return value clips the
// remaining ray.
func (t *DynamicTree3) RayCast(cb TreeRayCastCallback3, input RayCastInput3) {
	maxFraction := input.MaxFraction

	stack := make([]int, 0, 64)
	stack = append(stack, t.root)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nullNode {
			continue
		}

		node := &t.nodes[id]
		probe := RayCastInput3{P1: input.P1, P2: input.P2, MaxFraction: maxFraction}
		if _, hit := node.Bounds.RayCast(probe); !hit {
			continue
		}

		if node.IsLeaf() {
			value := cb(probe, id)
			if value == 0 {
				return
			}
			if value > 0 {
				maxFraction = value
			}
		} else {
			stack = append(stack, node.Child1, node.Child2)
		}
	}
}

// Height returns the height of the tree, zero when empty.
func (t *DynamicTree3) Height() int {
	if t.root == nullNode {
		return 0
	}
	return t.nodes[t.root].Height
}
