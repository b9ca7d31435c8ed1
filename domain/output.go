package domain

import (
	"context"
	"io"
)

// ReportWriter sends a rendered report to outputPath, or to writer when
// outputPath is empty.
type ReportWriter interface {
	Write(writer io.Writer, outputPath string, format OutputFormat, writeFunc func(io.Writer) error) error
}

// ProgressManager reports how many methods have been structured so far.
// Implementations must tolerate Increment from several goroutines.
type ProgressManager interface {
	Initialize(totalMethods int)
	Start()
	Increment()
	Complete(success bool)
	Close()
}

// MethodJob is one method graph waiting to be structured
type MethodJob struct {
	Name string
	Run  func(ctx context.Context) error
}

// MethodRunner fans method jobs out over a bounded set of workers.
// The returned error joins every job failure.
type MethodRunner interface {
	Run(ctx context.Context, jobs []MethodJob) error
}

// ErrorCategory groups failures by what the user can do about them
type ErrorCategory string

const (
	ErrorCategoryInput      ErrorCategory = "Input Error"
	ErrorCategoryConfig     ErrorCategory = "Configuration Error"
	ErrorCategoryProcessing ErrorCategory = "Processing Error"
	ErrorCategoryOutput     ErrorCategory = "Output Error"
	ErrorCategoryTimeout    ErrorCategory = "Timeout Error"
	ErrorCategoryUnknown    ErrorCategory = "Unknown Error"
)

// CategorizedError pairs a failure with its category
type CategorizedError struct {
	Category ErrorCategory
	Message  string
	Original error
}

func (e *CategorizedError) Error() string {
	if e.Original == nil {
		return e.Message
	}
	return e.Original.Error()
}

func (e *CategorizedError) Unwrap() error { return e.Original }

// ErrorCategorizer maps errors to categories and recovery hints for the CLI
type ErrorCategorizer interface {
	Categorize(err error) *CategorizedError
	GetRecoverySuggestions(category ErrorCategory) []string
}
