package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortCircuitMerger_Chain(t *testing.T) {
	f := newFixture(t)
	f.cond("A", "a")
	f.cond("B", "b")
	f.cond("C", "c")
	f.stmt("X")
	f.ret("Y")
	f.branch("A", "Y", "B")
	f.branch("B", "Y", "C")
	f.branch("C", "Y", "X")
	f.jump("X", "Y")

	g := f.build("A")
	a, b, c := f.id(g, "A"), f.id(g, "B"), f.id(g, "C")
	x, y := f.id(g, "X"), f.id(g, "Y")

	assert.Equal(t, 2, NewShortCircuitMerger(g).Merge())

	assert.Equal(t, []NodeID{y, x}, g.NormalSuccessors(a))
	assert.Equal(t, []NodeID{a}, g.Predecessors(x))
	assert.ElementsMatch(t, []NodeID{a, x}, g.Predecessors(y))
	assert.Equal(t, -1, g.Order(b))
	assert.Equal(t, -1, g.Order(c))
	assert.Len(t, g.ByOrder(), 3)

	cond := g.BranchCondition(a)
	require.NotNil(t, cond.Compound)
	assert.True(t, cond.Compound.And)
	assert.Equal(t, "a", cond.Compound.Left.Instruction.String())
	require.NotNil(t, cond.Compound.Right.Compound, "the inner pair folds first")
	assert.Equal(t, b, cond.Compound.Right.Node)

	// Callers get a copy they may negate.
	cond.Negated = true
	assert.False(t, g.BranchCondition(a).Negated)

	result, err := NewStructurer().StructureGraph(g)
	require.NoError(t, err)
	assert.Equal(t, lines(
		"if (a && (b && c)) {",
		"    X();",
		"}",
		"return;",
	), Source(result))
	assert.Equal(t, 1, emissions(result.Body)[x])
}

func TestShortCircuitMerger_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		build func(f *fixture)
	}{
		{
			name: "operand with instructions",
			build: func(f *fixture) {
				f.cond("A", "a")
				f.cond("B", "b", "x = load()")
				f.stmt("X")
				f.ret("Y")
				f.branch("A", "Y", "B")
				f.branch("B", "Y", "X")
				f.jump("X", "Y")
			},
		},
		{
			name: "operand with a second predecessor",
			build: func(f *fixture) {
				f.cond("A", "a")
				f.cond("B", "b")
				f.stmt("X")
				f.ret("Y")
				f.branch("A", "Y", "B")
				f.branch("B", "Y", "X")
				f.jump("X", "B")
			},
		},
		{
			name: "no shared target",
			build: func(f *fixture) {
				f.cond("A", "a")
				f.cond("B", "b")
				f.stmt("X")
				f.stmt("Z")
				f.ret("Y")
				f.branch("A", "Z", "B")
				f.branch("B", "Y", "X")
				f.jump("X", "Y")
				f.jump("Z", "Y")
			},
		},
		{
			name: "operand heads a loop",
			build: func(f *fixture) {
				f.cond("A", "a")
				f.cond("B", "b")
				f.stmt("X")
				f.ret("Y")
				f.branch("A", "Y", "B")
				f.branch("B", "Y", "X")
				f.jump("X", "Y")
				f.loop("B", LoopEndless, "")
			},
		},
		{
			name: "operand outside the protected region",
			build: func(f *fixture) {
				f.cond("A", "a")
				f.cond("B", "b")
				f.stmt("X")
				f.stmt("H", "recover()")
				f.ret("Y")
				f.branch("A", "Y", "B")
				f.branch("B", "Y", "X")
				f.jump("X", "Y")
				f.jump("H", "Y")
				f.handler("B", "", "H")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.build(f)
			g := f.build("A")
			before := g.NormalSuccessors(f.id(g, "A"))

			assert.Zero(t, NewShortCircuitMerger(g).Merge())
			assert.Equal(t, before, g.NormalSuccessors(f.id(g, "A")))
			assert.Nil(t, g.BranchCondition(f.id(g, "A")).Compound)
		})
	}
}
