package analyzer

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// CaseTarget is one distinct case body of a switch and the labels selecting it
type CaseTarget struct {
	Labels []int64
	Target NodeID
}

// SwitchRegion is a multi-way dispatch
type SwitchRegion struct {
	// Cases are the distinct targets in table order
	Cases   []CaseTarget
	Default NodeID
	Follow  NodeID

	resolved bool
}

// newSwitchRegion collects cases from the normal edges of a dispatch node.
// Unlabelled non-default edges are labelled by their table position.
func newSwitchRegion(g *Graph, id NodeID) *SwitchRegion {
	r := &SwitchRegion{Default: NoNode, Follow: NoNode}
	pos := 0
	for _, e := range g.Successors(id) {
		if e.Kind != EdgeNormal {
			continue
		}
		if e.Default {
			r.Default = e.To
		}
		switch {
		case len(e.Labels) > 0:
			r.Cases = append(r.Cases, CaseTarget{Labels: append([]int64(nil), e.Labels...), Target: e.To})
		case !e.Default:
			r.Cases = append(r.Cases, CaseTarget{Labels: []int64{int64(pos)}, Target: e.To})
		}
		pos++
	}
	return r
}

// Targets returns every case target followed by the default, if distinct
func (r *SwitchRegion) Targets() []NodeID {
	out := make([]NodeID, 0, len(r.Cases)+1)
	hasDefault := false
	for _, c := range r.Cases {
		out = append(out, c.Target)
		if c.Target == r.Default {
			hasDefault = true
		}
	}
	if r.Default != NoNode && !hasDefault {
		out = append(out, r.Default)
	}
	return out
}

// LabelsOf returns the case labels that select target
func (r *SwitchRegion) LabelsOf(target NodeID) []int64 {
	for _, c := range r.Cases {
		if c.Target == target {
			return c.Labels
		}
	}
	return nil
}

// resolve computes the follow node: the earliest node after the switch that
// every target reaches. Labelled case bodies only qualify when nothing else
// does. Without a common node, the earliest node reached from the largest
// number (at least two) of targets is used.
func (r *SwitchRegion) resolve(g *Graph, bs *BranchSetAnalyzer, self NodeID) {
	if r.resolved {
		return
	}
	r.resolved = true

	targets := r.Targets()
	if len(targets) == 0 {
		return
	}

	isCase := make(map[NodeID]bool, len(r.Cases))
	for _, c := range r.Cases {
		isCase[c.Target] = true
	}
	after := func(id NodeID) bool { return g.Order(id) > g.Order(self) }

	sets := make([]*roaring.Bitmap, len(targets))
	for i, t := range targets {
		sets[i] = branchSet(g, bs, self, t)
	}

	common := sets[0].Clone()
	for _, s := range sets[1:] {
		common.And(s)
	}
	if f := bs.lowest(common, func(id NodeID) bool { return after(id) && !isCase[id] }); f != NoNode {
		r.Follow = f
		return
	}
	if f := bs.lowest(common, after); f != NoNode {
		r.Follow = f
		return
	}

	counts := make(map[NodeID]int)
	for _, s := range sets {
		it := s.Iterator()
		for it.HasNext() {
			counts[NodeID(it.Next())]++
		}
	}
	best, bestCount := NoNode, 1
	for id, n := range counts {
		if isCase[id] || !after(id) {
			continue
		}
		if n > bestCount || (n == bestCount && best != NoNode && g.Order(id) < g.Order(best)) {
			best, bestCount = id, n
		}
	}
	r.Follow = best
}
