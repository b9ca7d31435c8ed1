package analyzer

import (
	"fmt"
	"log/slog"
)

// StructurerOption configures a Structurer
type StructurerOption func(*Structurer)

// WithStructurerLogger sets the logger shared by every stage
func WithStructurerLogger(logger *slog.Logger) StructurerOption {
	return func(s *Structurer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLoopDetection tags loop headers the input left untagged
func WithLoopDetection(enabled bool) StructurerOption {
	return func(s *Structurer) {
		s.detectLoops = enabled
	}
}

// Structurer runs the whole pipeline for one method: build, optional loop
// detection, short-circuit merging, classification, metadata and emission.
type Structurer struct {
	logger      *slog.Logger
	detectLoops bool
}

// NewStructurer creates a structurer
func NewStructurer(opts ...StructurerOption) *Structurer {
	s := &Structurer{logger: discardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Structure converts the blocks reachable from entry into a statement tree
func (s *Structurer) Structure(name string, entry *BasicBlock) (*Structured, error) {
	builder := NewGraphBuilder()
	builder.SetLogger(s.logger)
	g, err := builder.Build(name, entry)
	if err != nil {
		return nil, err
	}
	return s.StructureGraph(g)
}

// StructureGraph runs every stage after graph construction
func (s *Structurer) StructureGraph(g *Graph) (*Structured, error) {
	if s.detectLoops {
		found := NewLoopDetector(g).Detect()
		if len(found) > 0 {
			s.logger.Debug("tagged loops",
				slog.String("method", g.Name),
				slog.Int("count", len(found)))
		}
	}

	merger := NewShortCircuitMerger(g)
	merger.SetLogger(s.logger)
	if n := merger.Merge(); n > 0 {
		s.logger.Debug("merged short-circuit operands",
			slog.String("method", g.Name),
			slog.Int("count", n))
	}

	classifier := NewRegionClassifier(g)
	classifier.SetLogger(s.logger)
	if err := classifier.Classify(); err != nil {
		return nil, fmt.Errorf("classifying %s: %w", g.Name, err)
	}

	diags := ResolveRegions(g)
	for _, d := range diags {
		s.logger.Warn(d.Err.Error(),
			slog.String("method", g.Name),
			slog.Int("offset", d.Offset))
	}

	result, err := NewStructuringVisitor(g, WithLogger(s.logger)).Visit()
	if err != nil {
		return nil, err
	}
	result.Diagnostics = append(diags, result.Diagnostics...)
	result.Stats = CollectStats(g)
	return result, nil
}

// ResolveRegions is the metadata pass over a fully built and classified
// graph. It computes follow nodes, loop bodies and try chains, and reports
// back edges into nodes without a loop tag.
func ResolveRegions(g *Graph) []Diagnostic {
	bs := NewBranchSetAnalyzer(g)
	var diags []Diagnostic

	for _, node := range g.ByOrder() {
		diags = append(diags, resolveRegion(g, bs, node.ID, node.Content())...)
	}

	flagged := make(map[NodeID]bool)
	for _, node := range g.ByOrder() {
		for _, to := range g.NormalSuccessors(node.ID) {
			if !g.IsBackEdge(node.ID, to) || flagged[to] {
				continue
			}
			if _, ok := g.Node(to).Content().(*LoopRegion); ok {
				continue
			}
			flagged[to] = true
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Err:      ErrUnmarkedCycle,
				Node:     to,
				Offset:   g.Node(to).Offset(),
				Message:  fmt.Sprintf("from offset %d", node.Offset()),
			})
		}
	}
	return diags
}

func resolveRegion(g *Graph, bs *BranchSetAnalyzer, id NodeID, r Region) []Diagnostic {
	switch v := r.(type) {
	case *LoopRegion:
		diags := resolveRegion(g, bs, id, v.Inner)
		return append(diags, v.resolve(g, id)...)
	case *TryRegion:
		resolveRegion(g, bs, id, v.Inner)
		v.resolve(g, bs, id)
	case *IfRegion:
		v.resolve(g, bs, id)
	case *SwitchRegion:
		v.resolve(g, bs, id)
	}
	return nil
}
