package analyzer

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// DefaultIndent is the indentation unit of printed source
const DefaultIndent = "    "

// PrinterOption configures PrintSource
type PrinterOption func(*sourceWriter)

// WithIndent sets the indentation unit
func WithIndent(indent string) PrinterOption {
	return func(w *sourceWriter) {
		w.unit = indent
	}
}

// sourceWriter renders statements as bracketed pseudo-source and renders
// instructions through the InstructionVisitor contract.
type sourceWriter struct {
	w     io.Writer
	unit  string
	depth int
	err   error
	line  strings.Builder
}

// VisitInstruction implements InstructionVisitor
func (sw *sourceWriter) VisitInstruction(ins Instruction) {
	sw.line.WriteString(ins.String())
}

func (sw *sourceWriter) printf(format string, args ...interface{}) {
	if sw.err != nil {
		return
	}
	_, sw.err = fmt.Fprintf(sw.w, "%s"+format+"\n",
		append([]interface{}{strings.Repeat(sw.unit, sw.depth)}, args...)...)
}

// render returns the text an instruction visitor produces for ins
func (sw *sourceWriter) render(ins Instruction) string {
	sw.line.Reset()
	ins.Accept(sw)
	return sw.line.String()
}

func (sw *sourceWriter) condition(c *Condition, pre []Instruction) string {
	text := sw.expr(c, false)
	if len(pre) == 0 {
		return text
	}
	parts := make([]string, 0, len(pre)+1)
	for _, ins := range pre {
		parts = append(parts, sw.render(ins))
	}
	return strings.Join(append(parts, text), ", ")
}

// expr renders a condition, pushing an outer negation into compound
// operands: !(a && b) prints as !(a) || !(b).
func (sw *sourceWriter) expr(c *Condition, negate bool) string {
	negate = negate != c.Negated
	if cc := c.Compound; cc != nil {
		op := " || "
		if cc.And != negate {
			op = " && "
		}
		return sw.operand(cc.Left, negate) + op + sw.operand(cc.Right, negate)
	}

	var text string
	if c.Instruction != nil {
		text = sw.render(c.Instruction)
	} else {
		text = fmt.Sprintf("cond@%d", c.Offset)
	}
	if negate {
		text = "!(" + text + ")"
	}
	return text
}

func (sw *sourceWriter) operand(c *Condition, negate bool) string {
	if c.Compound != nil {
		return "(" + sw.expr(c, negate) + ")"
	}
	return sw.expr(c, negate)
}

func (sw *sourceWriter) statement(text string) {
	if strings.HasSuffix(text, ";") || strings.HasSuffix(text, "}") || strings.HasSuffix(text, ":") {
		sw.printf("%s", text)
		return
	}
	sw.printf("%s;", text)
}

func (sw *sourceWriter) block(b *Block) {
	if b == nil {
		return
	}
	sw.depth++
	for _, s := range b.Stmts {
		sw.stmt(s)
	}
	sw.depth--
}

func (sw *sourceWriter) stmt(s Statement) {
	switch v := s.(type) {
	case *Block:
		for _, inner := range v.Stmts {
			sw.stmt(inner)
		}
	case *BasicStmt:
		for _, ins := range v.Instructions {
			sw.statement(sw.render(ins))
		}
	case *IfStmt:
		sw.printf("if (%s) {", sw.condition(v.Cond, nil))
		sw.block(v.Then)
		if v.Else != nil {
			sw.printf("} else {")
			sw.block(v.Else)
		}
		sw.printf("}")
	case *WhileStmt:
		sw.printf("while (%s) {", sw.condition(v.Cond, v.Pre))
		sw.block(v.Body)
		sw.printf("}")
	case *DoWhileStmt:
		sw.printf("do {")
		sw.block(v.Body)
		if v.Cond == nil {
			sw.printf("} while (true);")
		} else {
			sw.printf("} while (%s);", sw.condition(v.Cond, nil))
		}
	case *LoopStmt:
		sw.printf("while (true) {")
		sw.block(v.Body)
		sw.printf("}")
	case *SwitchStmt:
		subject := fmt.Sprintf("switch@%d", v.Offset)
		if v.Subject != nil {
			subject = sw.render(v.Subject)
		}
		sw.printf("switch (%s) {", subject)
		sw.depth++
		for _, c := range v.Cases {
			for _, label := range c.Labels {
				sw.printf("case %d:", label)
			}
			if c.IsDefault {
				sw.printf("default:")
			}
			sw.block(c.Body)
		}
		sw.depth--
		sw.printf("}")
	case *TryStmt:
		sw.printf("try {")
		sw.block(v.Body)
		for _, c := range v.Catches {
			if c.Type == "" {
				sw.printf("} catch {")
			} else {
				sw.printf("} catch (%s) {", c.Type)
			}
			sw.block(c.Body)
		}
		sw.printf("}")
	case *BreakStmt:
		sw.printf("break;")
	}
}

// PrintSource writes the structured method as bracketed pseudo-source
func PrintSource(w io.Writer, s *Structured, opts ...PrinterOption) error {
	sw := &sourceWriter{w: w, unit: DefaultIndent}
	for _, opt := range opts {
		opt(sw)
	}
	sw.printf("%s {", s.Name)
	sw.block(s.Body)
	sw.printf("}")
	return sw.err
}

// Source renders the structured method to a string
func Source(s *Structured, opts ...PrinterOption) string {
	var buf bytes.Buffer
	_ = PrintSource(&buf, s, opts...)
	return buf.String()
}
