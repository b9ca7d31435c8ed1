package analyzer

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// IfRegion is a two-way conditional. False is the first normal edge of the
// block, True the second.
type IfRegion struct {
	True    NodeID
	False   NodeID
	Follow  NodeID
	Negated bool

	resolved bool
}

// IsElse reports whether both branches are real bodies rather than a
// direct jump to the join point.
func (r *IfRegion) IsElse() bool {
	return r.Follow != r.True && r.Follow != r.False
}

// branchSet returns the forward reach of a branch target. A target entered
// through a back edge contributes only itself.
func branchSet(g *Graph, bs *BranchSetAnalyzer, self, target NodeID) *roaring.Bitmap {
	if g.IsBackEdge(self, target) {
		single := roaring.New()
		single.Add(uint32(target))
		return single
	}
	return bs.Reachable(target)
}

// resolve computes the follow node and the static negation of the region.
// It runs at most once.
func (r *IfRegion) resolve(g *Graph, bs *BranchSetAnalyzer, self NodeID) {
	if r.resolved {
		return
	}
	r.resolved = true

	s0, s1 := r.False, r.True
	r0 := branchSet(g, bs, self, s0)
	r1 := branchSet(g, bs, self, s1)
	trueOnly := roaring.AndNot(r1, r0)
	falseOnly := roaring.AndNot(r0, r1)

	switch {
	case falseOnly.IsEmpty():
		// The false target is where the then-branch rejoins.
		r.Follow = s0
	case trueOnly.IsEmpty():
		r.Follow = s1
		r.Negated = true
		r.True, r.False = s0, s1
	default:
		r.Follow = spineFollow(g, bs, self, s0, s1, trueOnly, r0, r1)
	}
}

// spineFollow walks the leftmost spine of the true branch, removing each
// node from trueOnly, and returns the first node that falls outside it.
func spineFollow(g *Graph, bs *BranchSetAnalyzer, self, s0, s1 NodeID, trueOnly, r0, r1 *roaring.Bitmap) NodeID {
	pending := trueOnly.Clone()
	cur := s1
	for {
		if !pending.Contains(uint32(cur)) {
			if g.Order(cur) > g.Order(self) {
				return cur
			}
			break
		}
		pending.Remove(uint32(cur))

		next := NoNode
		for _, to := range g.NormalSuccessors(cur) {
			if !g.IsBackEdge(cur, to) {
				next = to
				break
			}
		}
		if next == NoNode {
			break
		}
		cur = next
	}

	// The spine died. Prefer the earliest node both branches reach.
	common := roaring.And(r0, r1)
	if follow := bs.lowest(common, func(id NodeID) bool { return g.Order(id) > g.Order(self) }); follow != NoNode {
		return follow
	}

	// A then-branch that leaves the method needs no else.
	if stmt, ok := unwrap(g.Node(cur).Content()).(*StatementRegion); ok && stmt.Terminator {
		return s0
	}
	return NoNode
}
