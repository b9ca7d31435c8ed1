package analyzer

// GraphStats summarises the shape of a structured method
type GraphStats struct {
	Blocks         int `json:"blocks" yaml:"blocks" msgpack:"blocks"`
	Edges          int `json:"edges" yaml:"edges" msgpack:"edges"`
	ExceptionEdges int `json:"exception_edges" yaml:"exception_edges" msgpack:"exception_edges"`
	BackEdges      int `json:"back_edges" yaml:"back_edges" msgpack:"back_edges"`
	Loops          int `json:"loops" yaml:"loops" msgpack:"loops"`
	Ifs            int `json:"ifs" yaml:"ifs" msgpack:"ifs"`
	Switches       int `json:"switches" yaml:"switches" msgpack:"switches"`
	Tries          int `json:"tries" yaml:"tries" msgpack:"tries"`
	Statements     int `json:"statements" yaml:"statements" msgpack:"statements"`
}

// statsVisitor implements GraphVisitor for statistics collection
type statsVisitor struct {
	graph *Graph
	stats GraphStats
}

// VisitNode counts the node and its region kinds
func (v *statsVisitor) VisitNode(node *Node) bool {
	v.stats.Blocks++
	r := node.Content()
	for r != nil {
		switch c := r.(type) {
		case *LoopRegion:
			v.stats.Loops++
			r = c.Inner
		case *TryRegion:
			v.stats.Tries++
			r = c.Inner
		case *IfRegion:
			v.stats.Ifs++
			r = nil
		case *SwitchRegion:
			v.stats.Switches++
			r = nil
		case *StatementRegion:
			v.stats.Statements++
			r = nil
		default:
			r = nil
		}
	}
	return true
}

// VisitEdge counts edges by kind and direction
func (v *statsVisitor) VisitEdge(from *Node, edge Edge) bool {
	v.stats.Edges++
	if edge.Kind == EdgeException {
		v.stats.ExceptionEdges++
	} else if v.graph.IsBackEdge(from.ID, edge.To) {
		v.stats.BackEdges++
	}
	return true
}

// CollectStats walks g and returns its statistics
func CollectStats(g *Graph) GraphStats {
	v := &statsVisitor{graph: g}
	g.Walk(v)
	return v.stats
}
