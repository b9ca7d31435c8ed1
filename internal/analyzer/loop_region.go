package analyzer

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// LoopRegion wraps the region of a loop header. Kind and latch come from
// the loop tag; body and follow are derived from the graph.
type LoopRegion struct {
	Type  LoopKind
	Inner Region
	Latch NodeID

	// Follow is the first node after the loop, or NoNode
	Follow NodeID

	// Body is the natural loop of the header, header included
	Body *roaring.Bitmap

	resolved bool
}

// Contains reports whether id belongs to the loop body
func (r *LoopRegion) Contains(id NodeID) bool {
	return id != NoNode && r.Body != nil && r.Body.Contains(uint32(id))
}

// resolve computes body, latch and follow. A non-endless loop without a
// follow yields a warning diagnostic and keeps NoNode.
func (r *LoopRegion) resolve(g *Graph, self NodeID) []Diagnostic {
	if r.resolved {
		return nil
	}
	r.resolved = true

	var sources []NodeID
	for _, p := range g.Predecessors(self) {
		if g.IsBackEdge(p, self) {
			sources = append(sources, p)
		}
	}
	r.Body = naturalLoop(g, self, sources)

	if r.Latch == NoNode {
		r.Latch = self
		for _, s := range sources {
			if g.Order(s) > g.Order(r.Latch) {
				r.Latch = s
			}
		}
	}

	switch r.Type {
	case LoopPretest:
		r.Follow = r.exitOf(g, self)
	case LoopPosttest:
		r.Follow = r.exitOf(g, r.Latch)
	case LoopEndless:
		r.Follow = r.endlessFollow(g)
	}

	if r.Follow == NoNode && r.Type != LoopEndless {
		return []Diagnostic{{
			Severity: SeverityWarning,
			Err:      ErrMissingLoopFollow,
			Node:     self,
			Offset:   g.Node(self).Offset(),
			Message:  fmt.Sprintf("%s loop", r.Type),
		}}
	}
	return nil
}

// exitOf returns the single normal successor of a two-way node that leaves
// the body, or NoNode.
func (r *LoopRegion) exitOf(g *Graph, id NodeID) NodeID {
	succ := g.NormalSuccessors(id)
	if len(succ) != 2 {
		return NoNode
	}
	in0, in1 := r.Contains(succ[0]), r.Contains(succ[1])
	switch {
	case in0 && !in1:
		return succ[1]
	case in1 && !in0:
		return succ[0]
	default:
		return NoNode
	}
}

// endlessFollow picks the earliest branch target outside the body among all
// conditionals in the body.
func (r *LoopRegion) endlessFollow(g *Graph) NodeID {
	follow := NoNode
	it := r.Body.Iterator()
	for it.HasNext() {
		id := NodeID(it.Next())
		succ := g.NormalSuccessors(id)
		if len(succ) < 2 {
			continue
		}
		for _, to := range succ {
			if r.Contains(to) {
				continue
			}
			if follow == NoNode || g.Order(to) < g.Order(follow) {
				follow = to
			}
		}
	}
	return follow
}

// naturalLoop collects header plus every node that reaches a back-edge
// source without passing through header.
func naturalLoop(g *Graph, header NodeID, sources []NodeID) *roaring.Bitmap {
	body := roaring.New()
	body.Add(uint32(header))

	work := make([]NodeID, 0, len(sources))
	for _, s := range sources {
		if body.CheckedAdd(uint32(s)) {
			work = append(work, s)
		}
	}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		for _, p := range g.Predecessors(id) {
			if body.CheckedAdd(uint32(p)) {
				work = append(work, p)
			}
		}
	}
	return body
}
