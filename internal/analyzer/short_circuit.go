package analyzer

import (
	"log/slog"
)

// ShortCircuitMerger folds the branch chains that compiled && and || leave
// behind into single two-way nodes with a compound condition. It runs on a
// built graph before classification. With A's targets written as
// (false, true) and B the operand node:
//
//	A: (F, B)  B: (F, T)  ->  A && B
//	A: (T, B)  B: (F, T)  -> !A || B
//	A: (B, F)  B: (F, T)  -> !A && B
//	A: (B, T)  B: (F, T)  ->  A || B
//
// B must be a bare branch whose only predecessor is A, so merging never
// moves an instruction onto a path where it did not run.
type ShortCircuitMerger struct {
	graph  *Graph
	logger *slog.Logger
}

// NewShortCircuitMerger creates a merger for g
func NewShortCircuitMerger(g *Graph) *ShortCircuitMerger {
	return &ShortCircuitMerger{graph: g, logger: discardLogger()}
}

// SetLogger sets an optional logger
func (m *ShortCircuitMerger) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = discardLogger()
	}
	m.logger = logger
}

// Merge folds operands until no shape matches and returns the number of
// nodes absorbed. Absorbed nodes stay in the arena but leave the ordering.
func (m *ShortCircuitMerger) Merge() int {
	g := m.graph
	total := 0
	for {
		done := make(map[NodeID]bool)
		ordered := g.ByOrder()
		merged := 0
		// Post-order folds the innermost operand first, so a && b && c
		// becomes a && (b && c).
		for i := len(ordered) - 1; i >= 0; i-- {
			id := ordered[i].ID
			if done[id] {
				continue
			}
			done[id] = true
			if absorbed, ok := m.mergeAt(id); ok {
				done[absorbed] = true
				merged++
			}
		}
		if merged == 0 {
			return total
		}
		total += merged
		g.Reorder()
	}
}

// mergeAt tries the four shapes at a, operand on the true side first
func (m *ShortCircuitMerger) mergeAt(a NodeID) (NodeID, bool) {
	fls, tru, ok := m.twoWay(a)
	if !ok || fls == a || tru == a {
		return NoNode, false
	}

	if b := tru; m.absorbable(a, b) {
		bf, bt, _ := m.twoWay(b)
		switch {
		case bf == fls:
			m.fold(a, b, true, false, fls, bt)
			return b, true
		case bt == fls:
			m.fold(a, b, false, true, bf, fls)
			return b, true
		}
	}
	if b := fls; m.absorbable(a, b) {
		bf, bt, _ := m.twoWay(b)
		switch {
		case bf == tru:
			m.fold(a, b, true, true, tru, bt)
			return b, true
		case bt == tru:
			m.fold(a, b, false, false, bf, tru)
			return b, true
		}
	}
	return NoNode, false
}

// twoWay returns the false and true targets of a conditional node
func (m *ShortCircuitMerger) twoWay(id NodeID) (NodeID, NodeID, bool) {
	n := m.graph.Node(id)
	last := n.Block.Last()
	if last == nil || last.Kind() != InsBranch {
		return NoNode, NoNode, false
	}
	normal := m.graph.NormalSuccessors(id)
	if len(normal) != 2 {
		return NoNode, NoNode, false
	}
	return normal[0], normal[1], true
}

// absorbable reports whether b can become the right operand of a
func (m *ShortCircuitMerger) absorbable(a, b NodeID) bool {
	g := m.graph
	if a == b || b == g.Entry {
		return false
	}
	preds := g.Predecessors(b)
	if len(preds) != 1 || preds[0] != a {
		return false
	}
	bf, bt, ok := m.twoWay(b)
	if !ok || bf == b || bt == b {
		return false
	}
	node := g.Node(b)
	if node.Loop != nil || len(straightLine(node.Block)) > 0 {
		return false
	}

	handlers := make(map[NodeID]bool)
	for _, e := range g.Successors(a) {
		if e.Kind != EdgeException {
			continue
		}
		if e.To == b {
			return false
		}
		handlers[e.To] = true
	}
	for _, e := range g.Successors(b) {
		if e.Kind == EdgeException && !handlers[e.To] {
			return false
		}
	}
	return true
}

// fold rewires a to branch to (fls, tru) on the compound condition and
// detaches b.
func (m *ShortCircuitMerger) fold(a, b NodeID, and, negLeft bool, fls, tru NodeID) {
	g := m.graph
	left := g.BranchCondition(a)
	left.Negated = negLeft
	an := g.Node(a)
	an.cond = &Condition{
		Node:   a,
		Offset: an.Offset(),
		Compound: &CompoundCondition{
			And:   and,
			Left:  left,
			Right: g.BranchCondition(b),
		},
	}

	slot := 0
	edges := g.succ[a]
	for i := range edges {
		if edges[i].Kind != EdgeNormal {
			continue
		}
		if slot == 0 {
			edges[i].To = fls
		} else {
			edges[i].To = tru
		}
		slot++
	}

	for _, e := range g.succ[b] {
		g.pred[e.To] = removeNode(g.pred[e.To], b)
	}
	delete(g.succ, b)
	delete(g.pred, b)
	for _, to := range []NodeID{fls, tru} {
		if !containsNode(g.pred[to], a) {
			g.pred[to] = append(g.pred[to], a)
		}
	}

	// A latch that was the operand hands the back edge to a.
	bn := g.Node(b)
	for _, n := range g.nodes {
		if n.Loop != nil && n.Loop.Latch == bn.Block {
			n.Loop = &LoopTag{Kind: n.Loop.Kind, Latch: an.Block}
		}
	}

	op := "||"
	if and {
		op = "&&"
	}
	m.logger.Debug("merged short-circuit condition",
		slog.String("method", g.Name),
		slog.Int("offset", an.Offset()),
		slog.Int("operand", bn.Offset()),
		slog.String("op", op))
}

func removeNode(ids []NodeID, id NodeID) []NodeID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func containsNode(ids []NodeID, id NodeID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
