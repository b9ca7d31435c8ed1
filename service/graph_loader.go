package service

import (
	"errors"
	"fmt"

	"github.com/ludo-technologies/dexstruct/domain"
	"github.com/ludo-technologies/dexstruct/internal/analyzer"
)

// ErrUnknownTarget is returned when an edge, handler, latch or entry names an
// offset that no block starts at
var ErrUnknownTarget = errors.New("offset does not start a block")

// LoadMethodGraph turns a method graph document into linked basic blocks
// and returns the entry block.
func LoadMethodGraph(method domain.MethodGraph) (*analyzer.BasicBlock, error) {
	entryOffset, ok := method.EntryOffset()
	if !ok {
		return nil, analyzer.ErrNilEntry
	}

	blocks := make(map[int]*analyzer.BasicBlock, len(method.Blocks))
	for _, def := range method.Blocks {
		if _, exists := blocks[def.Offset]; exists {
			return nil, fmt.Errorf("block at %d: %w", def.Offset, analyzer.ErrDuplicateBlock)
		}
		bb := analyzer.NewBasicBlock(def.Offset, def.End)
		bb.Name = def.Name
		for i, ins := range def.Instructions {
			kind, err := analyzer.ParseInstructionKind(ins.Kind)
			if err != nil {
				return nil, fmt.Errorf("block at %d, instruction %d: %w", def.Offset, i, err)
			}
			bb.AddInstruction(analyzer.NewTextInstruction(kind, ins.Text))
		}
		blocks[def.Offset] = bb
	}

	lookup := func(from, target int, what string) (*analyzer.BasicBlock, error) {
		bb, ok := blocks[target]
		if !ok {
			return nil, fmt.Errorf("block at %d: %s %d: %w", from, what, target, ErrUnknownTarget)
		}
		return bb, nil
	}

	for _, def := range method.Blocks {
		bb := blocks[def.Offset]

		for _, e := range def.Edges {
			kind, err := analyzer.ParseEdgeKind(e.Kind)
			if err != nil {
				return nil, fmt.Errorf("block at %d: %w", def.Offset, err)
			}
			target, err := lookup(def.Offset, e.Target, "edge target")
			if err != nil {
				return nil, err
			}
			child := bb.AddChild(target, kind)
			if len(e.Labels) > 0 {
				child.Labels = append([]int64(nil), e.Labels...)
			}
			child.Default = e.Default
		}

		for _, h := range def.Handlers {
			handler, err := lookup(def.Offset, h.Target, "handler")
			if err != nil {
				return nil, err
			}
			bb.AddHandler(h.Type, handler)
		}

		if def.Loop != nil {
			kind, err := analyzer.ParseLoopKind(def.Loop.Kind)
			if err != nil {
				return nil, fmt.Errorf("block at %d: %w", def.Offset, err)
			}
			tag := &analyzer.LoopTag{Kind: kind}
			if def.Loop.Latch != nil {
				latch, err := lookup(def.Offset, *def.Loop.Latch, "latch")
				if err != nil {
					return nil, err
				}
				tag.Latch = latch
			}
			bb.Loop = tag
		}
	}

	entry, ok := blocks[entryOffset]
	if !ok {
		return nil, fmt.Errorf("entry %d: %w", entryOffset, ErrUnknownTarget)
	}
	return entry, nil
}
