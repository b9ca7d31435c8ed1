package analyzer

// RegionKind identifies the structural role of a node
type RegionKind int

const (
	RegionStatement RegionKind = iota
	RegionIf
	RegionSwitch
	RegionTry
	RegionLoop
)

// String returns string representation of RegionKind
func (k RegionKind) String() string {
	switch k {
	case RegionStatement:
		return "statement"
	case RegionIf:
		return "if"
	case RegionSwitch:
		return "switch"
	case RegionTry:
		return "try"
	case RegionLoop:
		return "loop"
	default:
		return "unknown"
	}
}

// Region is the content of a node. The set of implementations is closed:
// StatementRegion, IfRegion, SwitchRegion, TryRegion and LoopRegion.
type Region interface {
	Kind() RegionKind
	isRegion()
}

// StatementRegion is a straight-line block with at most one normal successor
type StatementRegion struct {
	Next NodeID

	// Terminator is set when the block ends in return or throw
	Terminator bool
}

// Kind implements Region
func (*StatementRegion) Kind() RegionKind { return RegionStatement }
func (*StatementRegion) isRegion()        {}

// Kind implements Region
func (*IfRegion) Kind() RegionKind { return RegionIf }
func (*IfRegion) isRegion()        {}

// Kind implements Region
func (*SwitchRegion) Kind() RegionKind { return RegionSwitch }
func (*SwitchRegion) isRegion()        {}

// Kind implements Region
func (*TryRegion) Kind() RegionKind { return RegionTry }
func (*TryRegion) isRegion()        {}

// Kind implements Region
func (*LoopRegion) Kind() RegionKind { return RegionLoop }
func (*LoopRegion) isRegion()        {}

// unwrap returns the region that decides the shape of a node's own code:
// the inner region of loop and try wrappers.
func unwrap(r Region) Region {
	for {
		switch v := r.(type) {
		case *LoopRegion:
			r = v.Inner
		case *TryRegion:
			r = v.Inner
		default:
			return r
		}
	}
}
