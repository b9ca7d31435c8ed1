package domain

// GraphDocument is the on-disk form of one or more method graphs, as handed
// over by a CFG construction stage. The same schema is read from JSON, YAML
// and msgpack.
type GraphDocument struct {
	// Source names the class or file the methods were decoded from
	Source  string        `json:"source,omitempty" yaml:"source,omitempty" msgpack:"source,omitempty"`
	Methods []MethodGraph `json:"methods" yaml:"methods" msgpack:"methods"`
}

// MethodGraph is the basic-block graph of a single method
type MethodGraph struct {
	Name string `json:"name" yaml:"name" msgpack:"name"`

	// Entry is the start offset of the entry block; the first block when nil
	Entry *int `json:"entry,omitempty" yaml:"entry,omitempty" msgpack:"entry,omitempty"`

	Blocks []BlockSpec `json:"blocks" yaml:"blocks" msgpack:"blocks"`
}

// BlockSpec describes one basic block. Blocks reference each other by
// start offset.
type BlockSpec struct {
	Offset       int               `json:"offset" yaml:"offset" msgpack:"offset"`
	End          int               `json:"end,omitempty" yaml:"end,omitempty" msgpack:"end,omitempty"`
	Name         string            `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	Instructions []InstructionSpec `json:"instructions,omitempty" yaml:"instructions,omitempty" msgpack:"instructions,omitempty"`
	Edges        []EdgeSpec        `json:"edges,omitempty" yaml:"edges,omitempty" msgpack:"edges,omitempty"`
	Handlers     []HandlerSpec     `json:"handlers,omitempty" yaml:"handlers,omitempty" msgpack:"handlers,omitempty"`
	Loop         *LoopSpec         `json:"loop,omitempty" yaml:"loop,omitempty" msgpack:"loop,omitempty"`
}

// InstructionSpec is a decoded instruction with its pseudo-source text.
// Kind is one of plain, return, throw, branch or switch.
type InstructionSpec struct {
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty" msgpack:"kind,omitempty"`
	Text string `json:"text" yaml:"text" msgpack:"text"`
}

// EdgeSpec is an outgoing edge in table order. For a conditional block the
// first normal edge is taken when the condition is false.
type EdgeSpec struct {
	Target  int     `json:"target" yaml:"target" msgpack:"target"`
	Kind    string  `json:"kind,omitempty" yaml:"kind,omitempty" msgpack:"kind,omitempty"`
	Labels  []int64 `json:"labels,omitempty" yaml:"labels,omitempty" msgpack:"labels,omitempty"`
	Default bool    `json:"default,omitempty" yaml:"default,omitempty" msgpack:"default,omitempty"`
}

// HandlerSpec is a catch clause protecting the block
type HandlerSpec struct {
	Type   string `json:"type,omitempty" yaml:"type,omitempty" msgpack:"type,omitempty"`
	Target int    `json:"target" yaml:"target" msgpack:"target"`
}

// LoopSpec tags a loop header. Latch is the start offset of the block
// holding the back edge.
type LoopSpec struct {
	Kind  string `json:"kind" yaml:"kind" msgpack:"kind"`
	Latch *int   `json:"latch,omitempty" yaml:"latch,omitempty" msgpack:"latch,omitempty"`
}

// EntryOffset returns the start offset of the entry block, or false for an
// empty method.
func (m *MethodGraph) EntryOffset() (int, bool) {
	if m.Entry != nil {
		return *m.Entry, true
	}
	if len(m.Blocks) == 0 {
		return 0, false
	}
	return m.Blocks[0].Offset, true
}

// IntPtr creates a pointer to an int value
func IntPtr(v int) *int {
	return &v
}
