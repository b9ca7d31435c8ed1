package analyzer

// Statement is a node of the structured output tree. The set of
// implementations is closed.
type Statement interface {
	isStatement()
}

// Block is an ordered sequence of statements
type Block struct {
	Stmts []Statement
}

// Append adds a statement to the block
func (b *Block) Append(s Statement) {
	b.Stmts = append(b.Stmts, s)
}

// Len returns the number of statements
func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Stmts)
}

// Last returns the final statement, or nil
func (b *Block) Last() Statement {
	if b.Len() == 0 {
		return nil
	}
	return b.Stmts[len(b.Stmts)-1]
}

// BasicStmt holds the straight-line instructions of one node
type BasicStmt struct {
	Node         NodeID
	Offset       int
	Instructions []Instruction
}

// Condition is the branch instruction of a conditional node, or a
// short-circuit combination of two conditions when Compound is set.
type Condition struct {
	Node        NodeID
	Offset      int
	Instruction Instruction
	Negated     bool
	Compound    *CompoundCondition
}

// CompoundCondition is Left && Right, or Left || Right when And is false.
// Right is only evaluated when Left does not decide the result.
type CompoundCondition struct {
	And   bool
	Left  *Condition
	Right *Condition
}

// clone returns a deep copy so emission can negate it freely
func (c *Condition) clone() *Condition {
	if c == nil {
		return nil
	}
	out := *c
	if c.Compound != nil {
		out.Compound = &CompoundCondition{
			And:   c.Compound.And,
			Left:  c.Compound.Left.clone(),
			Right: c.Compound.Right.clone(),
		}
	}
	return &out
}

// IfStmt is if (Cond) { Then } else { Else }; Else may be nil
type IfStmt struct {
	Cond *Condition
	Then *Block
	Else *Block
}

// WhileStmt is a pretest loop. Pre holds the header instructions that run
// before every evaluation of the condition.
type WhileStmt struct {
	Pre  []Instruction
	Cond *Condition
	Body *Block
}

// DoWhileStmt is a posttest loop; a nil Cond loops forever
type DoWhileStmt struct {
	Body *Block
	Cond *Condition
}

// LoopStmt is an endless loop
type LoopStmt struct {
	Body *Block
}

// SwitchStmt is a multi-way dispatch
type SwitchStmt struct {
	Node    NodeID
	Offset  int
	Subject Instruction
	Cases   []*CaseClause
}

// CaseClause is one case body with its labels
type CaseClause struct {
	Labels    []int64
	IsDefault bool
	Body      *Block
}

// TryStmt is a protected body with its handlers
type TryStmt struct {
	Body    *Block
	Catches []*CatchClause
}

// CatchClause is one exception handler
type CatchClause struct {
	Type string
	Body *Block
}

// BreakStmt leaves the innermost loop or switch
type BreakStmt struct{}

func (*Block) isStatement()       {}
func (*BasicStmt) isStatement()   {}
func (*IfStmt) isStatement()      {}
func (*WhileStmt) isStatement()   {}
func (*DoWhileStmt) isStatement() {}
func (*LoopStmt) isStatement()    {}
func (*SwitchStmt) isStatement()  {}
func (*TryStmt) isStatement()     {}
func (*BreakStmt) isStatement()   {}

// endsAbruptly reports whether control cannot fall off the end of b
func endsAbruptly(b *Block) bool {
	for {
		switch s := b.Last().(type) {
		case *BreakStmt:
			return true
		case *BasicStmt:
			if len(s.Instructions) == 0 {
				return false
			}
			k := s.Instructions[len(s.Instructions)-1].Kind()
			return k == InsReturn || k == InsThrow
		case *Block:
			b = s
		default:
			return false
		}
	}
}
