package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphBuilder_Build(t *testing.T) {
	f := newFixture(t)
	f.cond("A", "a")
	f.stmt("B")
	f.stmt("C")
	f.ret("D")
	f.branch("A", "C", "B")
	f.jump("B", "D")
	f.jump("C", "D")

	g := f.build("A")

	assert.Equal(t, 4, g.Size())
	assert.Equal(t, 4, g.EdgeCount())
	assert.Equal(t, f.id(g, "A"), g.Entry)

	t.Run("one node per block", func(t *testing.T) {
		d := f.id(g, "D")
		assert.ElementsMatch(t, []NodeID{f.id(g, "B"), f.id(g, "C")}, g.Predecessors(d))
	})

	t.Run("successors keep table order", func(t *testing.T) {
		assert.Equal(t, []NodeID{f.id(g, "C"), f.id(g, "B")}, g.NormalSuccessors(f.id(g, "A")))
	})

	t.Run("lookup by offset", func(t *testing.T) {
		id, ok := g.Lookup(f.get("C").Start)
		require.True(t, ok)
		assert.Equal(t, f.id(g, "C"), id)

		_, ok = g.Lookup(999)
		assert.False(t, ok)
	})

	t.Run("reverse post-order", func(t *testing.T) {
		assert.Equal(t, 0, g.Order(f.id(g, "A")))
		assert.Equal(t, 3, g.Order(f.id(g, "D")))
		assert.Less(t, g.Order(f.id(g, "B")), g.Order(f.id(g, "C")))
		assert.Equal(t, -1, g.Order(NoNode))
	})
}

func TestGraphBuilder_MergesDuplicateEdges(t *testing.T) {
	f := newFixture(t)
	f.dispatch("S", "x")
	f.ret("T")
	f.caseEdge("S", "T", 0)
	f.caseEdge("S", "T", 1)

	g := f.build("S")

	edges := g.Successors(f.id(g, "S"))
	require.Len(t, edges, 1)
	assert.Equal(t, []int64{0, 1}, edges[0].Labels)
	assert.Equal(t, []NodeID{f.id(g, "S")}, g.Predecessors(f.id(g, "T")))
}

func TestGraphBuilder_HandlerEdges(t *testing.T) {
	f := newFixture(t)
	f.stmt("T")
	f.stmt("H")
	f.ret("N")
	f.jump("T", "N")
	f.jump("H", "N")
	f.handler("T", "Exception", "H")

	g := f.build("T")

	require.Equal(t, 3, g.Size())
	edges := g.Successors(f.id(g, "T"))
	require.Len(t, edges, 2)
	assert.Equal(t, EdgeNormal, edges[0].Kind)
	assert.Equal(t, EdgeException, edges[1].Kind)
	assert.Equal(t, f.id(g, "H"), edges[1].To)
	assert.Equal(t, []NodeID{f.id(g, "N")}, g.NormalSuccessors(f.id(g, "T")))
}

func TestGraphBuilder_Errors(t *testing.T) {
	t.Run("nil entry", func(t *testing.T) {
		_, err := NewGraphBuilder().Build("m", nil)
		assert.ErrorIs(t, err, ErrNilEntry)
	})

	t.Run("distinct blocks sharing an offset", func(t *testing.T) {
		a := NewBasicBlock(0, 10)
		b := NewBasicBlock(10, 20)
		c := NewBasicBlock(10, 20)
		a.AddChild(b, EdgeNormal)
		a.AddChild(c, EdgeNormal)

		_, err := NewGraphBuilder().Build("m", a)
		assert.ErrorIs(t, err, ErrDuplicateBlock)
	})

	t.Run("edge without target is dropped", func(t *testing.T) {
		a := NewBasicBlock(0, 10)
		a.AddChild(nil, EdgeNormal)

		g, err := NewGraphBuilder().Build("m", a)
		require.NoError(t, err)
		assert.Equal(t, 0, g.EdgeCount())
	})
}

func TestNode_SetContent(t *testing.T) {
	n := &Node{ID: 0, Block: NewBasicBlock(0, 1)}

	require.NoError(t, n.SetContent(&StatementRegion{Next: NoNode}))
	err := n.SetContent(&StatementRegion{Next: NoNode})
	assert.ErrorIs(t, err, ErrContentAlreadySet)
	assert.Equal(t, RegionStatement, n.Content().Kind())
}

func TestGraph_Walk(t *testing.T) {
	f := newFixture(t)
	f.stmt("A")
	f.stmt("B")
	f.ret("C")
	f.jump("A", "B")
	f.jump("B", "C")

	g := f.build("A")

	var order []string
	g.BreadthFirstWalk(&recordingVisitor{names: &order})
	assert.Equal(t, []string{"A", "B", "C"}, order)

	order = nil
	g.Walk(&recordingVisitor{names: &order, limit: 2})
	assert.Equal(t, []string{"A", "B"}, order)
}

type recordingVisitor struct {
	names *[]string
	limit int
}

func (v *recordingVisitor) VisitNode(node *Node) bool {
	if v.limit > 0 && len(*v.names) == v.limit {
		return false
	}
	*v.names = append(*v.names, node.Block.Name)
	return true
}

func (v *recordingVisitor) VisitEdge(from *Node, edge Edge) bool {
	return true
}
