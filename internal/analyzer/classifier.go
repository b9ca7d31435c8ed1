package analyzer

import (
	"fmt"
	"log/slog"
)

// RegionClassifier assigns every node of a built graph its region kind
type RegionClassifier struct {
	graph  *Graph
	logger *slog.Logger
}

// NewRegionClassifier creates a classifier for g
func NewRegionClassifier(g *Graph) *RegionClassifier {
	return &RegionClassifier{graph: g, logger: discardLogger()}
}

// SetLogger sets an optional logger
func (c *RegionClassifier) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = discardLogger()
	}
	c.logger = logger
}

// ClassifyGraph classifies every node of g with a discarding logger
func ClassifyGraph(g *Graph) error {
	return NewRegionClassifier(g).Classify()
}

// Classify inspects exception metadata and normal edge counts:
//
//	exception handlers present -> Try (around the region of its normal edges)
//	more than two normal edges -> Switch
//	exactly two normal edges   -> If
//	otherwise                  -> Statement
//
// Loop-tagged headers are wrapped in a LoopRegion around that result.
func (c *RegionClassifier) Classify() error {
	g := c.graph
	for _, node := range g.ByOrder() {
		region, err := c.classify(node)
		if err != nil {
			return err
		}
		if err := node.SetContent(region); err != nil {
			return err
		}
	}
	return nil
}

func (c *RegionClassifier) classify(node *Node) (Region, error) {
	g := c.graph
	region := c.classifyFlow(node)

	catches := c.catches(node)
	if len(catches) > 0 {
		region = &TryRegion{
			Inner:   region,
			Catches: catches,
			Follow:  NoNode,
		}
	}

	if tag := node.Loop; tag != nil {
		latch := NoNode
		if tag.Latch != nil {
			id, ok := g.LookupBlock(tag.Latch)
			if !ok {
				return nil, fmt.Errorf("%w: latch %s of loop at offset %d is not part of the graph",
					ErrUnknownRegion, tag.Latch, node.Offset())
			}
			latch = id
		}
		region = &LoopRegion{
			Type:   tag.Kind,
			Inner:  region,
			Latch:  latch,
			Follow: NoNode,
		}
	}

	c.logger.Debug("classified node",
		slog.String("method", g.Name),
		slog.Int("offset", node.Offset()),
		slog.String("region", region.Kind().String()))

	return region, nil
}

// classifyFlow classifies a node by its normal edges only
func (c *RegionClassifier) classifyFlow(node *Node) Region {
	g := c.graph
	normal := g.NormalSuccessors(node.ID)
	last := node.Block.Last()
	isSwitch := last != nil && last.Kind() == InsSwitch

	switch {
	case len(normal) > 2 || (isSwitch && len(normal) == 2):
		return newSwitchRegion(g, node.ID)
	case len(normal) == 2:
		return &IfRegion{
			False:  normal[0],
			True:   normal[1],
			Follow: NoNode,
		}
	default:
		next := NoNode
		if len(normal) == 1 {
			next = normal[0]
		}
		terminator := len(normal) == 0
		if last != nil && (last.Kind() == InsReturn || last.Kind() == InsThrow) {
			terminator = true
		}
		return &StatementRegion{Next: next, Terminator: terminator}
	}
}

// catches collects the handlers of a node in declaration order, followed by
// exception edges that carry no handler metadata.
func (c *RegionClassifier) catches(node *Node) []CatchRegion {
	g := c.graph
	var out []CatchRegion
	index := make(map[NodeID]int)

	for _, h := range node.Block.Handlers {
		id, ok := g.LookupBlock(h.Handler)
		if !ok {
			continue
		}
		// One clause per handler block; multi-catch types are joined.
		if i, dup := index[id]; dup {
			if h.Type != "" && out[i].Type != "" {
				out[i].Type += " | " + h.Type
			}
			continue
		}
		index[id] = len(out)
		out = append(out, CatchRegion{Type: h.Type, Handler: id})
	}
	for _, e := range g.Successors(node.ID) {
		if _, dup := index[e.To]; e.Kind != EdgeException || dup {
			continue
		}
		index[e.To] = len(out)
		out = append(out, CatchRegion{Handler: e.To})
	}
	return out
}
