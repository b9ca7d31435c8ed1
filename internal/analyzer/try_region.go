package analyzer

// CatchRegion is one handler of a protected region
type CatchRegion struct {
	Type    string
	Handler NodeID
}

// TryRegion wraps a node protected by exception handlers. Straight-line
// successors guarded by the same handlers are merged into one try body.
type TryRegion struct {
	Inner   Region
	Catches []CatchRegion

	// Members is the chain of nodes forming the try body, self first
	Members []NodeID
	Follow  NodeID

	resolved bool
}

// resolve builds the member chain and the follow node
func (r *TryRegion) resolve(g *Graph, bs *BranchSetAnalyzer, self NodeID) {
	if r.resolved {
		return
	}
	r.resolved = true

	r.Members = []NodeID{self}
	cur, inner := self, r.Inner
	for {
		stmt, ok := inner.(*StatementRegion)
		if !ok || stmt.Next == NoNode || g.IsBackEdge(cur, stmt.Next) {
			break
		}
		next := g.Node(stmt.Next)
		other, ok := next.Content().(*TryRegion)
		if !ok || len(g.Predecessors(next.ID)) != 1 || !sameCatches(r.Catches, other.Catches) {
			break
		}
		r.Members = append(r.Members, next.ID)
		cur, inner = next.ID, other.Inner
	}

	switch v := inner.(type) {
	case *StatementRegion:
		r.Follow = v.Next
	case *IfRegion:
		v.resolve(g, bs, cur)
		r.Follow = v.Follow
	case *SwitchRegion:
		v.resolve(g, bs, cur)
		r.Follow = v.Follow
	default:
		r.Follow = NoNode
	}
}

// Last returns the final member of the try body
func (r *TryRegion) Last() NodeID {
	return r.Members[len(r.Members)-1]
}

func sameCatches(a, b []CatchRegion) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
