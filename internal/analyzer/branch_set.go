package analyzer

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// BranchSetAnalyzer computes, per node, the set of nodes reachable from it
// along forward normal edges. Back edges and exception edges leave the
// subgraph, so a loop body never reaches its own header.
type BranchSetAnalyzer struct {
	graph *Graph
	sets  []*roaring.Bitmap
}

// NewBranchSetAnalyzer creates an analyzer for an ordered graph
func NewBranchSetAnalyzer(g *Graph) *BranchSetAnalyzer {
	return &BranchSetAnalyzer{graph: g}
}

// Reachable returns the nodes reachable from id, id included. The returned
// bitmap is shared; callers must Clone before mutating it.
func (a *BranchSetAnalyzer) Reachable(id NodeID) *roaring.Bitmap {
	if a.sets == nil {
		a.computeAll()
	}
	if id < 0 || int(id) >= len(a.sets) || a.sets[id] == nil {
		return roaring.New()
	}
	return a.sets[id]
}

// computeAll fills the table in decreasing reverse post-order so every
// forward successor is complete before its predecessors read it.
func (a *BranchSetAnalyzer) computeAll() {
	g := a.graph
	a.sets = make([]*roaring.Bitmap, g.Size())

	ordered := g.ByOrder()
	for i := len(ordered) - 1; i >= 0; i-- {
		node := ordered[i]
		set := roaring.New()
		set.Add(uint32(node.ID))
		for _, to := range g.NormalSuccessors(node.ID) {
			if g.Order(to) <= node.Order {
				continue
			}
			set.Or(a.sets[to])
		}
		a.sets[node.ID] = set
	}
}

// Only returns the nodes reachable from `from` but not from `other`
func (a *BranchSetAnalyzer) Only(from, other NodeID) *roaring.Bitmap {
	return roaring.AndNot(a.Reachable(from), a.Reachable(other))
}

// Common returns the nodes reachable from every id in ids
func (a *BranchSetAnalyzer) Common(ids ...NodeID) *roaring.Bitmap {
	if len(ids) == 0 {
		return roaring.New()
	}
	out := a.Reachable(ids[0]).Clone()
	for _, id := range ids[1:] {
		out.And(a.Reachable(id))
	}
	return out
}

// lowest returns the member of set with the smallest order number that
// satisfies keep, or NoNode.
func (a *BranchSetAnalyzer) lowest(set *roaring.Bitmap, keep func(NodeID) bool) NodeID {
	best := NoNode
	it := set.Iterator()
	for it.HasNext() {
		id := NodeID(it.Next())
		if keep != nil && !keep(id) {
			continue
		}
		if best == NoNode || a.graph.Order(id) < a.graph.Order(best) {
			best = id
		}
	}
	return best
}
