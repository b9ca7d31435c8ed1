package analyzer

import (
	"fmt"
	"io"
	"log/slog"
)

// GraphBuilder builds a node graph from raw basic blocks. It only wires
// topology; no region metadata is computed here.
type GraphBuilder struct {
	// logger for structural warnings (optional)
	logger *slog.Logger
}

// NewGraphBuilder creates a new graph builder
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		logger: discardLogger(),
	}
}

// SetLogger sets an optional logger for warnings
func (b *GraphBuilder) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = discardLogger()
	}
	b.logger = logger
}

// Build traverses the blocks reachable from entry breadth-first, creating
// exactly one node per block and wiring successor/predecessor adjacency as
// edges are discovered.
func (b *GraphBuilder) Build(name string, entry *BasicBlock) (*Graph, error) {
	if entry == nil {
		return nil, fmt.Errorf("cannot build graph %q: %w", name, ErrNilEntry)
	}

	g := NewGraph(name)
	id, _, err := g.addNode(entry)
	if err != nil {
		return nil, err
	}
	g.Entry = id

	queue := []*BasicBlock{entry}
	for len(queue) > 0 {
		bb := queue[0]
		queue = queue[1:]
		from, _ := g.LookupBlock(bb)

		for _, child := range bb.Children {
			if child.Target == nil {
				b.logger.Warn("dropping edge without target",
					slog.String("method", name),
					slog.Int("offset", bb.Start))
				continue
			}
			to, created, err := g.addNode(child.Target)
			if err != nil {
				return nil, err
			}
			if created {
				queue = append(queue, child.Target)
			}
			g.addEdge(from, Edge{
				To:      to,
				Kind:    child.Kind,
				Labels:  append([]int64(nil), child.Labels...),
				Default: child.Default,
			})
		}

		// Handlers that the block does not list as exception children still
		// receive an exception edge so catch bodies are part of the graph.
		for _, h := range bb.Handlers {
			if h.Handler == nil {
				continue
			}
			to, created, err := g.addNode(h.Handler)
			if err != nil {
				return nil, err
			}
			if created {
				queue = append(queue, h.Handler)
			}
			g.addEdge(from, Edge{To: to, Kind: EdgeException})
		}
	}

	g.ComputeOrder()

	b.logger.Debug("graph built",
		slog.String("method", name),
		slog.Int("nodes", g.Size()),
		slog.Int("edges", g.EdgeCount()))

	return g, nil
}

// discardLogger returns a logger that drops every record
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
