package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resolved classifies g and runs the metadata pass
func resolved(t *testing.T, g *Graph) []Diagnostic {
	t.Helper()
	require.NoError(t, ClassifyGraph(g))
	return ResolveRegions(g)
}

func members(ids ...NodeID) []uint32 {
	out := make([]uint32, 0, len(ids))
	for _, id := range ids {
		out = append(out, uint32(id))
	}
	return out
}

func TestBranchSetAnalyzer(t *testing.T) {
	t.Run("diamond", func(t *testing.T) {
		f := newFixture(t)
		f.cond("A", "a")
		f.stmt("B")
		f.stmt("C")
		f.ret("D")
		f.branch("A", "C", "B")
		f.jump("B", "D")
		f.jump("C", "D")
		g := f.build("A")
		a, b, c, d := f.id(g, "A"), f.id(g, "B"), f.id(g, "C"), f.id(g, "D")

		bs := NewBranchSetAnalyzer(g)
		assert.ElementsMatch(t, members(a, b, c, d), bs.Reachable(a).ToArray())
		assert.ElementsMatch(t, members(b, d), bs.Reachable(b).ToArray())
		assert.ElementsMatch(t, members(b), bs.Only(b, c).ToArray())
		assert.ElementsMatch(t, members(d), bs.Common(b, c).ToArray())
		assert.True(t, bs.Common().IsEmpty())
		assert.True(t, bs.Reachable(NoNode).IsEmpty())
	})

	t.Run("back edges are not followed", func(t *testing.T) {
		f := newFixture(t)
		f.cond("H", "h")
		f.stmt("B")
		f.ret("X")
		f.branch("H", "X", "B")
		f.jump("B", "H")
		g := f.build("H")
		h, b, x := f.id(g, "H"), f.id(g, "B"), f.id(g, "X")

		bs := NewBranchSetAnalyzer(g)
		assert.ElementsMatch(t, members(b), bs.Reachable(b).ToArray())
		assert.ElementsMatch(t, members(h, b, x), bs.Reachable(h).ToArray())
	})
}

func TestRegionClassifier(t *testing.T) {
	f := newFixture(t)
	f.cond("A", "a")
	f.dispatch("S", "x")
	f.stmt("B")
	f.stmt("C")
	f.stmt("E")
	f.ret("R")
	f.branch("A", "R", "S")
	f.caseEdge("S", "B", 1)
	f.caseEdge("S", "C", 2)
	f.defaultEdge("S", "E")
	f.jump("B", "R")
	f.jump("C", "R")
	f.jump("E", "R")

	g := f.build("A")
	require.NoError(t, ClassifyGraph(g))

	cond, ok := g.Node(f.id(g, "A")).Content().(*IfRegion)
	require.True(t, ok)
	assert.Equal(t, f.id(g, "R"), cond.False)
	assert.Equal(t, f.id(g, "S"), cond.True)

	sw, ok := g.Node(f.id(g, "S")).Content().(*SwitchRegion)
	require.True(t, ok)
	assert.Equal(t, f.id(g, "E"), sw.Default)
	assert.Equal(t, []int64{2}, sw.LabelsOf(f.id(g, "C")))
	assert.Equal(t, []NodeID{f.id(g, "B"), f.id(g, "C"), f.id(g, "E")}, sw.Targets())

	stmt, ok := g.Node(f.id(g, "B")).Content().(*StatementRegion)
	require.True(t, ok)
	assert.Equal(t, f.id(g, "R"), stmt.Next)
	assert.False(t, stmt.Terminator)

	ret, ok := g.Node(f.id(g, "R")).Content().(*StatementRegion)
	require.True(t, ok)
	assert.Equal(t, NoNode, ret.Next)
	assert.True(t, ret.Terminator)

	t.Run("two-edge switch", func(t *testing.T) {
		f := newFixture(t)
		f.dispatch("S", "x")
		f.stmt("B")
		f.ret("R")
		f.caseEdge("S", "B", 7)
		f.defaultEdge("S", "R")
		f.jump("B", "R")

		g := f.build("S")
		require.NoError(t, ClassifyGraph(g))
		assert.Equal(t, RegionSwitch, g.Node(f.id(g, "S")).Content().Kind())
	})

	t.Run("unlabelled switch edges are numbered", func(t *testing.T) {
		f := newFixture(t)
		f.dispatch("S", "x")
		f.ret("A")
		f.ret("B")
		f.ret("C")
		f.jump("S", "A")
		f.jump("S", "B")
		f.jump("S", "C")

		g := f.build("S")
		require.NoError(t, ClassifyGraph(g))
		sw := g.Node(f.id(g, "S")).Content().(*SwitchRegion)
		assert.Equal(t, []int64{2}, sw.LabelsOf(f.id(g, "C")))
		assert.Equal(t, NoNode, sw.Default)
	})

	t.Run("multi-catch handlers share a clause", func(t *testing.T) {
		f := newFixture(t)
		f.stmt("T")
		f.stmt("H")
		f.ret("N")
		f.jump("T", "N")
		f.jump("H", "N")
		f.handler("T", "IOException", "H")
		f.handler("T", "TimeoutException", "H")

		g := f.build("T")
		require.NoError(t, ClassifyGraph(g))
		try, ok := g.Node(f.id(g, "T")).Content().(*TryRegion)
		require.True(t, ok)
		require.Len(t, try.Catches, 1)
		assert.Equal(t, "IOException | TimeoutException", try.Catches[0].Type)
		assert.Equal(t, RegionStatement, try.Inner.Kind())
	})

	t.Run("classification runs once", func(t *testing.T) {
		f := newFixture(t)
		f.ret("R")
		g := f.build("R")
		require.NoError(t, ClassifyGraph(g))
		assert.ErrorIs(t, ClassifyGraph(g), ErrContentAlreadySet)
	})
}

func TestIfRegion_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		wire    func(f *fixture)
		follow  string
		isElse  bool
		negated bool
	}{
		{
			name: "diamond joins at the common successor",
			wire: func(f *fixture) {
				f.branch("A", "C", "B")
				f.jump("B", "D")
				f.jump("C", "D")
			},
			follow: "D",
			isElse: true,
		},
		{
			name: "false edge is the join",
			wire: func(f *fixture) {
				f.branch("A", "D", "B")
				f.jump("B", "D")
				f.jump("C", "D")
			},
			follow: "D",
		},
		{
			name: "true edge is the join",
			wire: func(f *fixture) {
				f.branch("A", "C", "D")
				f.jump("C", "D")
				f.jump("B", "D")
			},
			follow:  "D",
			negated: true,
		},
		{
			name: "returning then-branch",
			wire: func(f *fixture) {
				f.branch("A", "C", "B")
				f.jump("C", "D")
				f.jump("B", "R")
			},
			follow: "C",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.cond("A", "a")
			f.stmt("B")
			f.stmt("C")
			f.ret("D")
			f.ret("R")
			tt.wire(f)

			g := f.build("A")
			assert.Empty(t, resolved(t, g))

			r := g.Node(f.id(g, "A")).Content().(*IfRegion)
			assert.Equal(t, f.id(g, tt.follow), r.Follow)
			assert.Equal(t, tt.isElse, r.IsElse())
			assert.Equal(t, tt.negated, r.Negated)
		})
	}
}

func TestSwitchRegion_Resolve(t *testing.T) {
	f := newFixture(t)
	f.dispatch("S", "x")
	f.stmt("A")
	f.stmt("B")
	f.stmt("D")
	f.ret("J")
	f.caseEdge("S", "A", 0)
	f.caseEdge("S", "B", 1, 2)
	f.defaultEdge("S", "D")
	f.jump("A", "J")
	f.jump("B", "J")
	f.jump("D", "J")

	g := f.build("S")
	assert.Empty(t, resolved(t, g))

	r := g.Node(f.id(g, "S")).Content().(*SwitchRegion)
	assert.Equal(t, f.id(g, "J"), r.Follow)
	assert.Equal(t, f.id(g, "D"), r.Default)
	assert.Equal(t, []int64{1, 2}, r.LabelsOf(f.id(g, "B")))
	assert.Nil(t, r.LabelsOf(f.id(g, "J")))

	t.Run("fallthrough case is not the follow", func(t *testing.T) {
		f := newFixture(t)
		f.dispatch("S", "x")
		f.stmt("A")
		f.stmt("B")
		f.ret("J")
		f.caseEdge("S", "A", 0)
		f.caseEdge("S", "B", 1)
		f.defaultEdge("S", "J")
		f.jump("A", "B")
		f.jump("B", "J")

		g := f.build("S")
		resolved(t, g)
		r := g.Node(f.id(g, "S")).Content().(*SwitchRegion)
		assert.Equal(t, f.id(g, "J"), r.Follow)
	})
}

func TestLoopRegion_Resolve(t *testing.T) {
	t.Run("pretest", func(t *testing.T) {
		f := newFixture(t)
		f.cond("H", "h")
		f.stmt("B")
		f.ret("X")
		f.branch("H", "X", "B")
		f.jump("B", "H")
		f.loop("H", LoopPretest, "")

		g := f.build("H")
		assert.Empty(t, resolved(t, g))

		r := g.Node(f.id(g, "H")).Content().(*LoopRegion)
		assert.Equal(t, f.id(g, "X"), r.Follow)
		assert.Equal(t, f.id(g, "B"), r.Latch)
		assert.True(t, r.Contains(f.id(g, "B")))
		assert.True(t, r.Contains(f.id(g, "H")))
		assert.False(t, r.Contains(f.id(g, "X")))
		assert.False(t, r.Contains(NoNode))
		assert.Equal(t, RegionIf, r.Inner.Kind())
	})

	t.Run("posttest exits from the latch", func(t *testing.T) {
		f := newFixture(t)
		f.stmt("E")
		f.stmt("H")
		f.cond("L", "l")
		f.ret("X")
		f.jump("E", "H")
		f.jump("H", "L")
		f.branch("L", "X", "H")
		f.loop("H", LoopPosttest, "L")

		g := f.build("E")
		assert.Empty(t, resolved(t, g))

		r := g.Node(f.id(g, "H")).Content().(*LoopRegion)
		assert.Equal(t, f.id(g, "X"), r.Follow)
		assert.Equal(t, f.id(g, "L"), r.Latch)
		assert.Equal(t, uint64(2), r.Body.GetCardinality())
	})

	t.Run("endless loop leaves through a body conditional", func(t *testing.T) {
		f := newFixture(t)
		f.stmt("H")
		f.cond("B", "b")
		f.stmt("C")
		f.ret("X")
		f.jump("H", "B")
		f.branch("B", "C", "X")
		f.jump("C", "H")
		f.loop("H", LoopEndless, "C")

		g := f.build("H")
		assert.Empty(t, resolved(t, g))

		r := g.Node(f.id(g, "H")).Content().(*LoopRegion)
		assert.Equal(t, f.id(g, "X"), r.Follow)
	})

	t.Run("posttest without an exit warns", func(t *testing.T) {
		f := newFixture(t)
		f.stmt("H")
		f.stmt("L")
		f.jump("H", "L")
		f.jump("L", "H")
		f.loop("H", LoopPosttest, "L")

		g := f.build("H")
		diags := resolved(t, g)
		require.Len(t, diags, 1)
		assert.ErrorIs(t, diags[0].Err, ErrMissingLoopFollow)
		assert.Equal(t, SeverityWarning, diags[0].Severity)
		assert.Equal(t, f.id(g, "H"), diags[0].Node)
	})
}

func TestTryRegion_Resolve(t *testing.T) {
	f := newFixture(t)
	f.stmt("T")
	f.stmt("U")
	f.stmt("C")
	f.ret("N")
	f.jump("T", "U")
	f.jump("U", "N")
	f.jump("C", "N")
	f.handler("T", "Exception", "C")
	f.handler("U", "Exception", "C")

	g := f.build("T")
	assert.Empty(t, resolved(t, g))

	r := g.Node(f.id(g, "T")).Content().(*TryRegion)
	assert.Equal(t, []NodeID{f.id(g, "T"), f.id(g, "U")}, r.Members)
	assert.Equal(t, f.id(g, "U"), r.Last())
	assert.Equal(t, f.id(g, "N"), r.Follow)

	t.Run("different handlers end the chain", func(t *testing.T) {
		f := newFixture(t)
		f.stmt("T")
		f.stmt("U")
		f.stmt("C")
		f.stmt("D")
		f.ret("N")
		f.jump("T", "U")
		f.jump("U", "N")
		f.jump("C", "N")
		f.jump("D", "N")
		f.handler("T", "Exception", "C")
		f.handler("U", "Exception", "D")

		g := f.build("T")
		resolved(t, g)
		r := g.Node(f.id(g, "T")).Content().(*TryRegion)
		assert.Equal(t, []NodeID{f.id(g, "T")}, r.Members)
		assert.Equal(t, f.id(g, "U"), r.Follow)
	})
}

func TestResolveRegions_UnmarkedCycle(t *testing.T) {
	f := newFixture(t)
	f.stmt("H")
	f.cond("B", "b")
	f.ret("X")
	f.jump("H", "B")
	f.branch("B", "X", "H")

	g := f.build("H")
	diags := resolved(t, g)
	require.Len(t, diags, 1)
	assert.ErrorIs(t, diags[0].Err, ErrUnmarkedCycle)
	assert.Equal(t, f.id(g, "H"), diags[0].Node)
	assert.Contains(t, diags[0].String(), "offset")
}
