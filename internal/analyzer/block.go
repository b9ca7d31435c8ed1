package analyzer

import (
	"fmt"
	"strings"
)

// EdgeKind represents the type of edge between basic blocks
type EdgeKind int

const (
	// EdgeNormal represents branch or fallthrough flow
	EdgeNormal EdgeKind = iota
	// EdgeException represents flow into an exception handler
	EdgeException
)

// String returns string representation of EdgeKind
func (e EdgeKind) String() string {
	switch e {
	case EdgeNormal:
		return "normal"
	case EdgeException:
		return "exception"
	default:
		return "unknown"
	}
}

// ParseEdgeKind converts a textual edge kind into an EdgeKind
func ParseEdgeKind(s string) (EdgeKind, error) {
	switch strings.ToLower(s) {
	case "", "normal":
		return EdgeNormal, nil
	case "exception":
		return EdgeException, nil
	default:
		return EdgeNormal, fmt.Errorf("unknown edge kind %q", s)
	}
}

// InstructionKind classifies an instruction by its effect on control flow
type InstructionKind int

const (
	// InsPlain is any instruction that falls through
	InsPlain InstructionKind = iota
	// InsReturn leaves the method
	InsReturn
	// InsThrow raises an exception
	InsThrow
	// InsBranch is a conditional branch; its text is the condition
	InsBranch
	// InsSwitch is a table or sparse switch; its text is the subject
	InsSwitch
)

// String returns string representation of InstructionKind
func (k InstructionKind) String() string {
	switch k {
	case InsPlain:
		return "plain"
	case InsReturn:
		return "return"
	case InsThrow:
		return "throw"
	case InsBranch:
		return "branch"
	case InsSwitch:
		return "switch"
	default:
		return "unknown"
	}
}

// ParseInstructionKind converts a textual instruction kind into an InstructionKind
func ParseInstructionKind(s string) (InstructionKind, error) {
	switch strings.ToLower(s) {
	case "", "plain":
		return InsPlain, nil
	case "return":
		return InsReturn, nil
	case "throw":
		return InsThrow, nil
	case "branch", "if", "cond":
		return InsBranch, nil
	case "switch":
		return InsSwitch, nil
	default:
		return InsPlain, fmt.Errorf("unknown instruction kind %q", s)
	}
}

// InstructionVisitor walks individual instructions. The structuring engine
// never interprets operands; it only hands instructions to a visitor.
type InstructionVisitor interface {
	VisitInstruction(ins Instruction)
}

// Instruction is a single decoded instruction of a basic block
type Instruction interface {
	// Accept dispatches the instruction to the visitor
	Accept(v InstructionVisitor)

	// Kind reports the control-flow effect of the instruction
	Kind() InstructionKind

	// String renders the instruction as pseudo-source
	String() string
}

// TextInstruction is an instruction whose rendering is already known
type TextInstruction struct {
	Op   InstructionKind
	Text string
}

// NewTextInstruction creates a text instruction of the given kind
func NewTextInstruction(kind InstructionKind, text string) *TextInstruction {
	return &TextInstruction{Op: kind, Text: text}
}

// Accept implements Instruction
func (i *TextInstruction) Accept(v InstructionVisitor) {
	v.VisitInstruction(i)
}

// Kind implements Instruction
func (i *TextInstruction) Kind() InstructionKind {
	return i.Op
}

// String implements Instruction
func (i *TextInstruction) String() string {
	return i.Text
}

// ChildEdge is an outgoing edge of a basic block
type ChildEdge struct {
	Kind   EdgeKind
	Target *BasicBlock

	// Labels holds the switch case values that select this edge
	Labels []int64

	// Default marks the default target of a switch
	Default bool
}

// ExceptionHandler describes one catch clause protecting a block
type ExceptionHandler struct {
	Type         string
	HandlerStart int
	Handler      *BasicBlock
}

// LoopKind identifies the shape of a loop
type LoopKind int

const (
	// LoopPretest is while(cond) { ... }
	LoopPretest LoopKind = iota
	// LoopPosttest is do { ... } while(cond)
	LoopPosttest
	// LoopEndless is while(true) { ... }
	LoopEndless
)

// String returns string representation of LoopKind
func (k LoopKind) String() string {
	switch k {
	case LoopPretest:
		return "pretest"
	case LoopPosttest:
		return "posttest"
	case LoopEndless:
		return "endless"
	default:
		return "unknown"
	}
}

// ParseLoopKind converts a textual loop kind into a LoopKind
func ParseLoopKind(s string) (LoopKind, error) {
	switch strings.ToLower(s) {
	case "pretest", "while":
		return LoopPretest, nil
	case "posttest", "do-while", "dowhile":
		return LoopPosttest, nil
	case "endless":
		return LoopEndless, nil
	default:
		return LoopEndless, fmt.Errorf("unknown loop kind %q", s)
	}
}

// LoopTag is attached to a loop header by a loop-detection pass
type LoopTag struct {
	Kind LoopKind

	// Latch is the block holding the back edge; required for posttest loops
	Latch *BasicBlock
}

// BasicBlock is the unit of input handed over by the CFG construction stage
type BasicBlock struct {
	// Name is an optional human-readable label
	Name string

	// Start and End are the instruction offsets covered by the block
	Start int
	End   int

	// Instructions in execution order
	Instructions []Instruction

	// Children are the outgoing edges in table order
	Children []ChildEdge

	// Handlers lists the exception regions protecting this block
	Handlers []ExceptionHandler

	// Loop is set when the block heads a loop
	Loop *LoopTag
}

// NewBasicBlock creates a basic block covering [start, end)
func NewBasicBlock(start, end int) *BasicBlock {
	return &BasicBlock{
		Start:        start,
		End:          end,
		Instructions: []Instruction{},
		Children:     []ChildEdge{},
	}
}

// AddInstruction appends an instruction to the block
func (bb *BasicBlock) AddInstruction(ins Instruction) {
	if ins != nil {
		bb.Instructions = append(bb.Instructions, ins)
	}
}

// AddChild adds an outgoing edge to another block
func (bb *BasicBlock) AddChild(to *BasicBlock, kind EdgeKind) *ChildEdge {
	bb.Children = append(bb.Children, ChildEdge{Kind: kind, Target: to})
	return &bb.Children[len(bb.Children)-1]
}

// AddHandler registers an exception handler for the block
func (bb *BasicBlock) AddHandler(excType string, handler *BasicBlock) {
	start := 0
	if handler != nil {
		start = handler.Start
	}
	bb.Handlers = append(bb.Handlers, ExceptionHandler{
		Type:         excType,
		HandlerStart: start,
		Handler:      handler,
	})
}

// Last returns the final instruction of the block, or nil
func (bb *BasicBlock) Last() Instruction {
	if len(bb.Instructions) == 0 {
		return nil
	}
	return bb.Instructions[len(bb.Instructions)-1]
}

// IsEmpty returns true if the block has no instructions
func (bb *BasicBlock) IsEmpty() bool {
	return len(bb.Instructions) == 0
}

// String returns a string representation of the basic block
func (bb *BasicBlock) String() string {
	if bb.Name != "" {
		return fmt.Sprintf("[%s@%d: %d ins]", bb.Name, bb.Start, len(bb.Instructions))
	}
	return fmt.Sprintf("[%d-%d: %d ins]", bb.Start, bb.End, len(bb.Instructions))
}
