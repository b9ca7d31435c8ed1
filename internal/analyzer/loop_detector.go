package analyzer

// LoopDetector discovers natural loops for graphs whose producer did not
// tag loop headers. Headers that already carry a tag are left untouched.
type LoopDetector struct {
	graph *Graph
	idom  []NodeID
}

// NewLoopDetector creates a detector for an ordered graph
func NewLoopDetector(g *Graph) *LoopDetector {
	return &LoopDetector{graph: g}
}

// Dominators returns the immediate dominator of every node, computed with
// Cooper, Harvey and Kennedy's iterative algorithm. The entry and
// unordered nodes map to NoNode.
func (d *LoopDetector) Dominators() []NodeID {
	if d.idom != nil {
		return d.idom
	}
	g := d.graph
	idom := make([]NodeID, g.Size())
	for i := range idom {
		idom[i] = NoNode
	}
	rpo := g.ByOrder()
	if g.Entry == NoNode || len(rpo) == 0 {
		d.idom = idom
		return idom
	}

	intersect := func(a, b NodeID) NodeID {
		for a != b {
			for g.Order(a) > g.Order(b) {
				a = idom[a]
			}
			for g.Order(b) > g.Order(a) {
				b = idom[b]
			}
		}
		return a
	}

	// The entry dominates itself while iterating.
	idom[g.Entry] = g.Entry

	changed := true
	for changed {
		changed = false
		for _, node := range rpo[1:] {
			newIdom := NoNode
			for _, p := range g.Predecessors(node.ID) {
				if idom[p] == NoNode {
					continue
				}
				if newIdom == NoNode {
					newIdom = p
				} else {
					newIdom = intersect(p, newIdom)
				}
			}
			if newIdom != NoNode && idom[node.ID] != newIdom {
				idom[node.ID] = newIdom
				changed = true
			}
		}
	}

	idom[g.Entry] = NoNode
	d.idom = idom
	return idom
}

// Dominates reports whether a dominates b
func (d *LoopDetector) Dominates(a, b NodeID) bool {
	idom := d.Dominators()
	for cur := b; cur != NoNode; cur = idom[cur] {
		if cur == a {
			return true
		}
	}
	return false
}

// Detect tags every untagged loop header and returns the newly tagged
// headers in reverse post-order.
func (d *LoopDetector) Detect() []NodeID {
	g := d.graph
	var tagged []NodeID

	for _, header := range g.ByOrder() {
		if header.Loop != nil {
			continue
		}
		var sources []NodeID
		for _, p := range g.Predecessors(header.ID) {
			if d.Dominates(header.ID, p) {
				sources = append(sources, p)
			}
		}
		if len(sources) == 0 {
			continue
		}

		body := naturalLoop(g, header.ID, sources)
		latch := sources[0]
		for _, s := range sources[1:] {
			if g.Order(s) > g.Order(latch) {
				latch = s
			}
		}

		inBody := func(id NodeID) bool { return body.Contains(uint32(id)) }
		headSucc := g.NormalSuccessors(header.ID)
		headCond := len(headSucc) == 2
		headInside := headCond && inBody(headSucc[0]) && inBody(headSucc[1])
		latchCond := len(g.NormalSuccessors(latch)) == 2

		var kind LoopKind
		switch {
		case latchCond && headCond && !headInside:
			kind = LoopPretest
		case latchCond:
			kind = LoopPosttest
		case headCond && !headInside:
			kind = LoopPretest
		default:
			kind = LoopEndless
		}

		header.Loop = &LoopTag{Kind: kind, Latch: g.Node(latch).Block}
		tagged = append(tagged, header.ID)
	}
	return tagged
}
