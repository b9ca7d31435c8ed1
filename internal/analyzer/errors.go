package analyzer

import (
	"errors"
	"fmt"
)

// Structuring errors. Builder and content errors are fatal for a method;
// ErrMissingLoopFollow, ErrUnmarkedCycle and ErrSharedHandler are reported
// as warnings.
var (
	ErrNilEntry          = errors.New("entry block is nil")
	ErrDuplicateBlock    = errors.New("duplicate block offset")
	ErrContentAlreadySet = errors.New("node content already set")
	ErrUnknownRegion     = errors.New("unknown region")
	ErrMissingLoopFollow = errors.New("loop has no follow")
	ErrUnmarkedCycle     = errors.New("back edge into node without loop tag")
	ErrSharedHandler     = errors.New("handler already emitted by another try")
)

// Severity of a diagnostic
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns string representation of Severity
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is a non-fatal finding recorded while structuring a method
type Diagnostic struct {
	Severity Severity
	Err      error
	Node     NodeID
	Offset   int
	Message  string
}

// String returns a one-line rendering of the diagnostic
func (d Diagnostic) String() string {
	if d.Message != "" {
		return fmt.Sprintf("%s at offset %d: %v (%s)", d.Severity, d.Offset, d.Err, d.Message)
	}
	return fmt.Sprintf("%s at offset %d: %v", d.Severity, d.Offset, d.Err)
}
