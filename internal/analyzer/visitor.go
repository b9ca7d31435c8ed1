package analyzer

import (
	"fmt"
	"log/slog"
)

// Structured is the result of structuring one method
type Structured struct {
	Name        string
	Body        *Block
	Diagnostics []Diagnostic
	Stats       GraphStats
}

// Warnings returns the number of warning diagnostics
func (s *Structured) Warnings() int {
	n := 0
	for _, d := range s.Diagnostics {
		if d.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// VisitorOption configures a StructuringVisitor
type VisitorOption func(*StructuringVisitor)

// WithLogger sets the logger used for structural warnings
func WithLogger(logger *slog.Logger) VisitorOption {
	return func(v *StructuringVisitor) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// StructuringVisitor walks a classified and resolved graph and emits the
// structured statement tree. Every call to Visit uses fresh traversal state,
// so one visitor may be reused but not shared between goroutines.
type StructuringVisitor struct {
	graph  *Graph
	logger *slog.Logger
}

// NewStructuringVisitor creates a visitor for g
func NewStructuringVisitor(g *Graph, opts ...VisitorOption) *StructuringVisitor {
	v := &StructuringVisitor{graph: g, logger: discardLogger()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Visit structures the graph from its entry node
func (v *StructuringVisitor) Visit() (*Structured, error) {
	g := v.graph
	if g == nil || g.Entry == NoNode {
		return nil, ErrNilEntry
	}

	t := newTraversal(g, v.logger)
	body := &Block{}
	t.schedule(t.visitTask(g.Entry, body))
	if err := t.run(); err != nil {
		return nil, fmt.Errorf("structuring %s: %w", g.Name, err)
	}

	return &Structured{
		Name:        g.Name,
		Body:        body,
		Diagnostics: t.diags,
	}, nil
}

// task is one unit of pending work on the traversal stack
type task func() error

// nodeStack is a pending-join stack
type nodeStack []NodeID

func (s *nodeStack) push(id NodeID) { *s = append(*s, id) }
func (s *nodeStack) pop()           { *s = (*s)[:len(*s)-1] }

func (s nodeStack) top() NodeID {
	if len(s) == 0 {
		return NoNode
	}
	return s[len(s)-1]
}

// traversal is the per-run state: visited set, the four pending-join
// stacks, the next switch case and the explicit work stack.
type traversal struct {
	g      *Graph
	logger *slog.Logger

	visited      []bool
	ifFollow     nodeStack
	loopFollow   nodeStack
	latch        nodeStack
	switchFollow nodeStack

	nextCase    NodeID
	fellThrough bool

	work  []task
	diags []Diagnostic
}

func newTraversal(g *Graph, logger *slog.Logger) *traversal {
	return &traversal{
		g:        g,
		logger:   logger,
		visited:  make([]bool, g.Size()),
		nextCase: NoNode,
	}
}

// schedule pushes tasks so that they run in the given order
func (t *traversal) schedule(tasks ...task) {
	for i := len(tasks) - 1; i >= 0; i-- {
		t.work = append(t.work, tasks[i])
	}
}

// run drains the work stack
func (t *traversal) run() error {
	for len(t.work) > 0 {
		n := len(t.work) - 1
		next := t.work[n]
		t.work[n] = nil
		t.work = t.work[:n]
		if err := next(); err != nil {
			return err
		}
	}
	return nil
}

// pending reports whether id is the top of any join stack
func (t *traversal) pending(id NodeID) bool {
	return id == t.ifFollow.top() ||
		id == t.loopFollow.top() ||
		id == t.latch.top() ||
		id == t.switchFollow.top()
}

func (t *traversal) visitTask(id NodeID, out *Block) task {
	return func() error { return t.visit(id, out) }
}

// followTask continues the enclosing sequence at id. Reaching the next case
// of an enclosing switch is a fallthrough, not a fresh visit.
func (t *traversal) followTask(id NodeID, out *Block) task {
	return func() error {
		if id != NoNode && id == t.nextCase && !t.pending(id) {
			t.fellThrough = true
			return nil
		}
		return t.visit(id, out)
	}
}

func pushTask(s *nodeStack, id NodeID) task {
	return func() error { s.push(id); return nil }
}

func popTask(s *nodeStack) task {
	return func() error { s.pop(); return nil }
}

// visit emits a node unless it is a pending join or already visited
func (t *traversal) visit(id NodeID, out *Block) error {
	if id == NoNode || t.pending(id) || t.visited[id] {
		return nil
	}
	t.visited[id] = true
	node := t.g.Node(id)
	return t.emit(node, node.Content(), out)
}

// emit dispatches on the region kind
func (t *traversal) emit(node *Node, r Region, out *Block) error {
	switch v := r.(type) {
	case *LoopRegion:
		return t.emitLoop(node, v, out)
	case *TryRegion:
		return t.emitTry(node, v, out)
	case *SwitchRegion:
		t.emitSwitch(node, v, out)
		return nil
	case *IfRegion:
		t.emitIf(node, v, out)
		return nil
	case *StatementRegion:
		t.emitStatement(node, v, out)
		return nil
	default:
		return fmt.Errorf("%w: node at offset %d has no region", ErrUnknownRegion, node.Offset())
	}
}

func (t *traversal) warn(node *Node, err error, msg string) {
	t.diags = append(t.diags, Diagnostic{
		Severity: SeverityWarning,
		Err:      err,
		Node:     node.ID,
		Offset:   node.Offset(),
		Message:  msg,
	})
	t.logger.Warn(msg,
		slog.String("method", t.g.Name),
		slog.Int("offset", node.Offset()),
		slog.String("error", err.Error()))
}

// straightLine returns the instructions of a block minus a trailing branch
// or switch instruction.
func straightLine(bb *BasicBlock) []Instruction {
	ins := bb.Instructions
	if n := len(ins); n > 0 {
		if k := ins[n-1].Kind(); k == InsBranch || k == InsSwitch {
			return ins[:n-1]
		}
	}
	return ins
}

// emitPre appends the straight-line part of a node as a statement
func (t *traversal) emitPre(node *Node, out *Block) {
	if ins := straightLine(node.Block); len(ins) > 0 {
		out.Append(&BasicStmt{Node: node.ID, Offset: node.Offset(), Instructions: ins})
	}
}

func (t *traversal) condition(node *Node, negated bool) *Condition {
	c := t.g.BranchCondition(node.ID)
	c.Negated = negated
	return c
}

// emitStatement writes the instructions of a straight-line node and
// continues with its successor.
func (t *traversal) emitStatement(node *Node, r *StatementRegion, out *Block) {
	t.emitPre(node, out)
	if r.Next == NoNode {
		return
	}
	if r.Next == t.loopFollow.top() {
		out.Append(&BreakStmt{})
		return
	}
	t.schedule(t.followTask(r.Next, out))
}

// emitIf applies the emission-time negation rules and writes the
// conditional with its branches.
func (t *traversal) emitIf(node *Node, r *IfRegion, out *Block) {
	t.emitPre(node, out)

	tgt, fls, follow, neg := r.True, r.False, r.Follow, r.Negated
	swap := func() {
		tgt, fls = fls, tgt
		neg = !neg
	}

	// A branch that leaves the innermost loop becomes a break guard.
	if exit := t.loopFollow.top(); exit != NoNode && (tgt == exit || fls == exit) {
		if fls == exit {
			swap()
		}
		out.Append(&IfStmt{
			Cond: t.condition(node, neg),
			Then: &Block{Stmts: []Statement{&BreakStmt{}}},
		})
		t.schedule(t.followTask(fls, out))
		return
	}

	forward := func() bool {
		return (tgt == t.nextCase && tgt != NoNode) || t.g.Order(tgt) > t.g.Order(fls)
	}

	if follow == NoNode {
		if forward() {
			swap()
		}
		ifs := &IfStmt{Cond: t.condition(node, neg), Then: &Block{}, Else: &Block{}}
		out.Append(ifs)
		t.schedule(
			t.visitTask(tgt, ifs.Then),
			t.visitTask(fls, ifs.Else),
			normalizeTask(ifs),
		)
		return
	}

	if tgt == follow || (fls != follow && forward()) {
		swap()
	}
	isElse := follow != tgt && follow != fls

	ifs := &IfStmt{Cond: t.condition(node, neg), Then: &Block{}}
	tasks := []task{pushTask(&t.ifFollow, follow), t.visitTask(tgt, ifs.Then)}
	if isElse {
		ifs.Else = &Block{}
		tasks = append(tasks, t.visitTask(fls, ifs.Else))
	}
	tasks = append(tasks,
		popTask(&t.ifFollow),
		normalizeTask(ifs),
		t.followTask(follow, out),
	)
	out.Append(ifs)
	t.schedule(tasks...)
}

// normalizeTask drops an empty else and turns an empty then into the
// negated else.
func normalizeTask(ifs *IfStmt) task {
	return func() error {
		if ifs.Then.Len() == 0 && ifs.Else.Len() > 0 {
			ifs.Cond.Negated = !ifs.Cond.Negated
			ifs.Then, ifs.Else = ifs.Else, nil
		}
		if ifs.Else.Len() == 0 {
			ifs.Else = nil
		}
		return nil
	}
}

// emitSwitch writes the cases in table order, binding the next case while
// each body is emitted.
func (t *traversal) emitSwitch(node *Node, r *SwitchRegion, out *Block) {
	t.emitPre(node, out)

	sw := &SwitchStmt{Node: node.ID, Offset: node.Offset()}
	if last := node.Block.Last(); last != nil && last.Kind() == InsSwitch {
		sw.Subject = last
	}
	out.Append(sw)

	follow := r.Follow
	savedNext, savedFell := t.nextCase, t.fellThrough
	emitted := make(map[NodeID]bool, len(r.Cases))

	tasks := []task{pushTask(&t.switchFollow, follow)}
	for i, c := range r.Cases {
		next := NoNode
		if i+1 < len(r.Cases) {
			next = r.Cases[i+1].Target
		}
		tasks = append(tasks, func() error {
			if t.visited[c.Target] {
				return nil
			}
			emitted[c.Target] = true
			clause := &CaseClause{
				Labels:    c.Labels,
				IsDefault: c.Target == r.Default && r.Default != follow,
				Body:      &Block{},
			}
			sw.Cases = append(sw.Cases, clause)
			t.nextCase, t.fellThrough = next, false
			t.schedule(t.visitTask(c.Target, clause.Body), breakTask(t, clause))
			return nil
		})
	}

	tasks = append(tasks, func() error {
		d := r.Default
		if d == NoNode || d == follow || emitted[d] || t.visited[d] {
			return nil
		}
		clause := &CaseClause{IsDefault: true, Body: &Block{}}
		sw.Cases = append(sw.Cases, clause)
		t.nextCase, t.fellThrough = NoNode, false
		t.schedule(t.visitTask(d, clause.Body))
		return nil
	})

	tasks = append(tasks,
		func() error {
			t.nextCase, t.fellThrough = savedNext, savedFell
			return nil
		},
		popTask(&t.switchFollow),
		t.followTask(follow, out),
	)
	t.schedule(tasks...)
}

// breakTask closes a case body unless it falls through or ends abruptly
func breakTask(t *traversal, clause *CaseClause) task {
	return func() error {
		if !t.fellThrough && !endsAbruptly(clause.Body) {
			clause.Body.Append(&BreakStmt{})
		}
		return nil
	}
}

// emitLoop writes a loop around the body of its header
func (t *traversal) emitLoop(node *Node, r *LoopRegion, out *Block) error {
	follow := r.Follow

	switch r.Type {
	case LoopPretest:
		succ := t.g.NormalSuccessors(node.ID)
		if _, ok := unwrap(r.Inner).(*IfRegion); !ok || len(succ) != 2 {
			return fmt.Errorf("%w: pretest loop header at offset %d is not a two-way branch",
				ErrUnknownRegion, node.Offset())
		}
		fls, tgt, neg := succ[0], succ[1], false
		if tgt == follow || (follow == NoNode && !r.Contains(tgt) && r.Contains(fls)) {
			tgt, fls = fls, tgt
			neg = true
		}
		ws := &WhileStmt{
			Pre:  straightLine(node.Block),
			Cond: t.condition(node, neg),
			Body: &Block{},
		}
		out.Append(ws)
		t.schedule(
			pushTask(&t.loopFollow, follow),
			t.visitTask(tgt, ws.Body),
			popTask(&t.loopFollow),
			t.followTask(follow, out),
		)

	case LoopPosttest:
		dw := &DoWhileStmt{Body: &Block{}}
		out.Append(dw)
		if r.Latch == node.ID {
			t.emitPre(node, dw.Body)
			dw.Cond = t.latchCondition(node, r)
			t.schedule(t.followTask(follow, out))
			return nil
		}
		t.schedule(
			pushTask(&t.loopFollow, follow),
			pushTask(&t.latch, r.Latch),
			func() error { return t.emit(node, r.Inner, dw.Body) },
			popTask(&t.latch),
			func() error {
				latch := t.g.Node(r.Latch)
				t.visited[latch.ID] = true
				t.emitPre(latch, dw.Body)
				dw.Cond = t.latchCondition(latch, r)
				return nil
			},
			popTask(&t.loopFollow),
			t.followTask(follow, out),
		)

	case LoopEndless:
		ls := &LoopStmt{Body: &Block{}}
		out.Append(ls)
		t.schedule(
			pushTask(&t.loopFollow, follow),
			func() error { return t.emit(node, r.Inner, ls.Body) },
			popTask(&t.loopFollow),
			t.followTask(follow, out),
		)

	default:
		return fmt.Errorf("%w: loop kind %d at offset %d", ErrUnknownRegion, r.Type, node.Offset())
	}
	return nil
}

// latchCondition builds the do-while condition: true when the loop repeats
func (t *traversal) latchCondition(latch *Node, r *LoopRegion) *Condition {
	succ := t.g.NormalSuccessors(latch.ID)
	if len(succ) != 2 {
		t.warn(latch, ErrUnknownRegion, "latch is not a two-way branch")
		return nil
	}
	repeatsOnTrue := r.Contains(succ[1])
	if r.Contains(succ[0]) && r.Contains(succ[1]) {
		repeatsOnTrue = succ[1] != r.Follow
	}
	return t.condition(latch, !repeatsOnTrue)
}

// emitTry writes the protected chain followed by its handlers
func (t *traversal) emitTry(node *Node, r *TryRegion, out *Block) error {
	ts := &TryStmt{Body: &Block{}}
	out.Append(ts)

	last, inner, follow := node, r.Inner, r.Follow
	for _, id := range r.Members[1:] {
		if t.visited[id] || t.pending(id) {
			follow = id
			break
		}
		t.emitPre(last, ts.Body)
		t.visited[id] = true
		last = t.g.Node(id)
		inner = last.Content().(*TryRegion).Inner
	}

	tasks := []task{
		pushTask(&t.ifFollow, follow),
		func() error { return t.emit(last, inner, ts.Body) },
	}
	for _, c := range r.Catches {
		clause := &CatchClause{Type: c.Type, Body: &Block{}}
		ts.Catches = append(ts.Catches, clause)
		tasks = append(tasks, t.catchTask(node, c.Handler, clause))
	}
	tasks = append(tasks, popTask(&t.ifFollow), t.followTask(follow, out))
	t.schedule(tasks...)
	return nil
}

// catchTask emits a handler body. A handler that an unrelated try already
// emitted keeps its clause empty and is reported.
func (t *traversal) catchTask(owner *Node, handler NodeID, clause *CatchClause) task {
	return func() error {
		if t.visited[handler] && !t.pending(handler) {
			t.warn(owner, ErrSharedHandler,
				fmt.Sprintf("handler at offset %d is emitted under an earlier try", t.g.Node(handler).Offset()))
			return nil
		}
		return t.visit(handler, clause.Body)
	}
}
