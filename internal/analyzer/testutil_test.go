package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fixture builds small block graphs by name. Offsets are assigned in
// creation order, ten apart.
type fixture struct {
	t      *testing.T
	blocks map[string]*BasicBlock
	next   int
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, blocks: make(map[string]*BasicBlock)}
}

func (f *fixture) add(name string, ins ...Instruction) *BasicBlock {
	f.t.Helper()
	_, exists := f.blocks[name]
	require.False(f.t, exists, "block %s defined twice", name)
	bb := NewBasicBlock(f.next, f.next+10)
	bb.Name = name
	for _, i := range ins {
		bb.AddInstruction(i)
	}
	f.next += 10
	f.blocks[name] = bb
	return bb
}

// stmt adds a straight-line block; without text it calls name()
func (f *fixture) stmt(name string, text ...string) *BasicBlock {
	if len(text) == 0 {
		text = []string{name + "()"}
	}
	var ins []Instruction
	for _, s := range text {
		ins = append(ins, NewTextInstruction(InsPlain, s))
	}
	return f.add(name, ins...)
}

// ret adds a block ending in return
func (f *fixture) ret(name string, text ...string) *BasicBlock {
	var ins []Instruction
	for _, s := range text {
		ins = append(ins, NewTextInstruction(InsPlain, s))
	}
	ins = append(ins, NewTextInstruction(InsReturn, "return"))
	return f.add(name, ins...)
}

// cond adds a conditional block; pre instructions run before the branch
func (f *fixture) cond(name, expr string, pre ...string) *BasicBlock {
	var ins []Instruction
	for _, s := range pre {
		ins = append(ins, NewTextInstruction(InsPlain, s))
	}
	ins = append(ins, NewTextInstruction(InsBranch, expr))
	return f.add(name, ins...)
}

// dispatch adds a switch block
func (f *fixture) dispatch(name, subject string) *BasicBlock {
	return f.add(name, NewTextInstruction(InsSwitch, subject))
}

func (f *fixture) get(name string) *BasicBlock {
	f.t.Helper()
	bb, ok := f.blocks[name]
	require.True(f.t, ok, "unknown block %s", name)
	return bb
}

// jump adds a normal edge
func (f *fixture) jump(from, to string) {
	f.get(from).AddChild(f.get(to), EdgeNormal)
}

// branch wires a conditional: false edge first, true edge second
func (f *fixture) branch(from, ifFalse, ifTrue string) {
	f.jump(from, ifFalse)
	f.jump(from, ifTrue)
}

// caseEdge adds a switch edge selected by labels
func (f *fixture) caseEdge(from, to string, labels ...int64) {
	f.get(from).AddChild(f.get(to), EdgeNormal).Labels = labels
}

// defaultEdge adds the default edge of a switch
func (f *fixture) defaultEdge(from, to string) {
	f.get(from).AddChild(f.get(to), EdgeNormal).Default = true
}

// handler protects from with a catch block
func (f *fixture) handler(from, excType, to string) {
	f.get(from).AddHandler(excType, f.get(to))
}

// loop tags a header
func (f *fixture) loop(header string, kind LoopKind, latch string) {
	tag := &LoopTag{Kind: kind}
	if latch != "" {
		tag.Latch = f.get(latch)
	}
	f.get(header).Loop = tag
}

func (f *fixture) build(entry string) *Graph {
	f.t.Helper()
	g, err := NewGraphBuilder().Build("m", f.get(entry))
	require.NoError(f.t, err)
	return g
}

func (f *fixture) id(g *Graph, name string) NodeID {
	f.t.Helper()
	id, ok := g.LookupBlock(f.get(name))
	require.True(f.t, ok, "block %s is not in the graph", name)
	return id
}

func (f *fixture) structure(entry string, opts ...StructurerOption) *Structured {
	f.t.Helper()
	result, err := NewStructurer(opts...).Structure("m", f.get(entry))
	require.NoError(f.t, err)
	return result
}

// lines renders the expected source of method m from its body lines
func lines(body ...string) string {
	out := "m {\n"
	for _, l := range body {
		out += "    " + l + "\n"
	}
	return out + "}\n"
}

// emissions counts straight-line emissions per node over the whole tree
func emissions(b *Block) map[NodeID]int {
	counts := make(map[NodeID]int)
	work := []*Block{b}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		if cur == nil {
			continue
		}
		for _, s := range cur.Stmts {
			switch v := s.(type) {
			case *Block:
				work = append(work, v)
			case *BasicStmt:
				counts[v.Node]++
			case *IfStmt:
				work = append(work, v.Then, v.Else)
			case *WhileStmt:
				work = append(work, v.Body)
			case *DoWhileStmt:
				work = append(work, v.Body)
			case *LoopStmt:
				work = append(work, v.Body)
			case *SwitchStmt:
				for _, c := range v.Cases {
					work = append(work, c.Body)
				}
			case *TryStmt:
				work = append(work, v.Body)
				for _, c := range v.Catches {
					work = append(work, c.Body)
				}
			}
		}
	}
	return counts
}
