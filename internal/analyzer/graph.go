package analyzer

import (
	"fmt"
	"sort"
)

// NodeID indexes a node in the graph arena
type NodeID int

// NoNode marks an absent node (no follow, no default, no latch)
const NoNode NodeID = -1

// Edge is an outgoing edge between two arena nodes
type Edge struct {
	To      NodeID
	Kind    EdgeKind
	Labels  []int64
	Default bool
}

// Node wraps exactly one basic block and owns its region content
type Node struct {
	ID    NodeID
	Block *BasicBlock

	// Order is the reverse post-order number; -1 until ComputeOrder runs
	Order int

	// Loop is the loop tag of the block, or one added by loop detection
	Loop *LoopTag

	// cond is set once the node has absorbed a short-circuit operand
	cond *Condition

	content Region
}

// Offset returns the identity of the node: the start offset of its block
func (n *Node) Offset() int {
	return n.Block.Start
}

// Content returns the region assigned to the node, or nil
func (n *Node) Content() Region {
	return n.content
}

// SetContent assigns the region of the node. A node is classified exactly once.
func (n *Node) SetContent(r Region) error {
	if n.content != nil {
		return fmt.Errorf("%w: node at offset %d is already %s",
			ErrContentAlreadySet, n.Offset(), n.content.Kind())
	}
	n.content = r
	return nil
}

// String returns a string representation of the node
func (n *Node) String() string {
	return fmt.Sprintf("node(%d)%s", n.ID, n.Block)
}

// Graph is a method's node arena with successor and predecessor adjacency
type Graph struct {
	Name  string
	Entry NodeID

	nodes    []*Node
	succ     map[NodeID][]Edge
	pred     map[NodeID][]NodeID
	byOffset map[int]NodeID
	byBlock  map[*BasicBlock]NodeID
	ordered  bool
}

// NewGraph creates an empty graph
func NewGraph(name string) *Graph {
	return &Graph{
		Name:     name,
		Entry:    NoNode,
		nodes:    []*Node{},
		succ:     make(map[NodeID][]Edge),
		pred:     make(map[NodeID][]NodeID),
		byOffset: make(map[int]NodeID),
		byBlock:  make(map[*BasicBlock]NodeID),
	}
}

// addNode memoises one node per block, keyed by start offset
func (g *Graph) addNode(bb *BasicBlock) (NodeID, bool, error) {
	if id, ok := g.byBlock[bb]; ok {
		return id, false, nil
	}
	if other, ok := g.byOffset[bb.Start]; ok {
		return NoNode, false, fmt.Errorf("%w: offset %d is shared by %s and %s",
			ErrDuplicateBlock, bb.Start, g.nodes[other].Block, bb)
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &Node{ID: id, Block: bb, Order: -1, Loop: bb.Loop})
	g.byOffset[bb.Start] = id
	g.byBlock[bb] = id
	return id, true, nil
}

// addEdge wires an edge, merging duplicates of the same target and kind
func (g *Graph) addEdge(from NodeID, e Edge) {
	edges := g.succ[from]
	for i := range edges {
		if edges[i].To == e.To && edges[i].Kind == e.Kind {
			edges[i].Labels = append(edges[i].Labels, e.Labels...)
			edges[i].Default = edges[i].Default || e.Default
			return
		}
	}
	g.succ[from] = append(edges, e)

	for _, p := range g.pred[e.To] {
		if p == from {
			return
		}
	}
	g.pred[e.To] = append(g.pred[e.To], from)
}

// BranchCondition returns a fresh copy of the condition a two-way node
// branches on. Instruction is nil when the block has no branch instruction.
func (g *Graph) BranchCondition(id NodeID) *Condition {
	n := g.Node(id)
	if n.cond != nil {
		return n.cond.clone()
	}
	c := &Condition{Node: id, Offset: n.Offset()}
	if last := n.Block.Last(); last != nil && last.Kind() == InsBranch {
		c.Instruction = last
	}
	return c
}

// Node returns the node with the given ID, or nil
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Nodes returns all nodes in creation (breadth-first) order
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Size returns the number of nodes
func (g *Graph) Size() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges
func (g *Graph) EdgeCount() int {
	count := 0
	for _, edges := range g.succ {
		count += len(edges)
	}
	return count
}

// Successors returns the outgoing edges of a node in table order
func (g *Graph) Successors(id NodeID) []Edge {
	return g.succ[id]
}

// NormalSuccessors returns the targets of normal edges in table order
func (g *Graph) NormalSuccessors(id NodeID) []NodeID {
	var out []NodeID
	for _, e := range g.succ[id] {
		if e.Kind == EdgeNormal {
			out = append(out, e.To)
		}
	}
	return out
}

// Predecessors returns the nodes with an edge into id
func (g *Graph) Predecessors(id NodeID) []NodeID {
	return g.pred[id]
}

// Lookup returns the node whose block starts at offset
func (g *Graph) Lookup(offset int) (NodeID, bool) {
	id, ok := g.byOffset[offset]
	return id, ok
}

// LookupBlock returns the node wrapping bb
func (g *Graph) LookupBlock(bb *BasicBlock) (NodeID, bool) {
	if bb == nil {
		return NoNode, false
	}
	id, ok := g.byBlock[bb]
	return id, ok
}

// Order returns the reverse post-order number of a node, or -1 for NoNode
func (g *Graph) Order(id NodeID) int {
	if n := g.Node(id); n != nil {
		return n.Order
	}
	return -1
}

// IsBackEdge reports whether from -> to retreats in reverse post-order
func (g *Graph) IsBackEdge(from, to NodeID) bool {
	return g.Order(to) <= g.Order(from)
}

// Reorder discards the current numbering and computes it again. Nodes no
// longer reachable from the entry are left at -1.
func (g *Graph) Reorder() {
	for _, n := range g.nodes {
		n.Order = -1
	}
	g.ordered = false
	g.ComputeOrder()
}

// ComputeOrder numbers every node in reverse post-order with an iterative
// depth-first search over all edges, children in table order.
func (g *Graph) ComputeOrder() {
	if g.ordered || g.Entry == NoNode {
		return
	}

	type frame struct {
		id   NodeID
		next int
	}

	seen := make([]bool, len(g.nodes))
	post := make([]NodeID, 0, len(g.nodes))
	stack := []frame{{id: g.Entry}}
	seen[g.Entry] = true

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		edges := g.succ[top.id]
		if top.next < len(edges) {
			to := edges[top.next].To
			top.next++
			if !seen[to] {
				seen[to] = true
				stack = append(stack, frame{id: to})
			}
			continue
		}
		post = append(post, top.id)
		stack = stack[:len(stack)-1]
	}

	n := len(post)
	for i, id := range post {
		g.nodes[id].Order = n - 1 - i
	}
	g.ordered = true
}

// ByOrder returns the ordered nodes sorted by reverse post-order
func (g *Graph) ByOrder() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n.Order >= 0 {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// GraphVisitor defines the interface for visiting graph nodes
type GraphVisitor interface {
	// VisitNode is called for each node
	// Returns false to stop traversal
	VisitNode(node *Node) bool

	// VisitEdge is called for each outgoing edge
	// Returns false to stop traversal
	VisitEdge(from *Node, edge Edge) bool
}

// Walk visits every ordered node in reverse post-order
func (g *Graph) Walk(visitor GraphVisitor) {
	for _, node := range g.ByOrder() {
		if !visitor.VisitNode(node) {
			return
		}
		for _, e := range g.succ[node.ID] {
			if !visitor.VisitEdge(node, e) {
				return
			}
		}
	}
}

// BreadthFirstWalk performs a breadth-first traversal from the entry
func (g *Graph) BreadthFirstWalk(visitor GraphVisitor) {
	if g.Entry == NoNode {
		return
	}

	visited := make([]bool, len(g.nodes))
	queue := []NodeID{g.Entry}
	visited[g.Entry] = true

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		node := g.nodes[id]
		if !visitor.VisitNode(node) {
			return
		}

		for _, e := range g.succ[id] {
			if !visitor.VisitEdge(node, e) {
				return
			}
			if !visited[e.To] {
				visited[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
}

// String returns a string representation of the graph
func (g *Graph) String() string {
	return fmt.Sprintf("Graph(%s): %d nodes, %d edges", g.Name, g.Size(), g.EdgeCount())
}
