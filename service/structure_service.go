package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/zeebo/blake3"

	"github.com/ludo-technologies/dexstruct/domain"
	"github.com/ludo-technologies/dexstruct/internal/analyzer"
	"github.com/ludo-technologies/dexstruct/internal/version"
)

// StructureServiceImpl implements the StructureService interface
type StructureServiceImpl struct {
	reader   domain.GraphReader
	progress domain.ProgressManager
	logger   *slog.Logger
}

// NewStructureService creates a structure service. progress and logger may be nil.
func NewStructureService(reader domain.GraphReader, progress domain.ProgressManager, logger *slog.Logger) *StructureServiceImpl {
	if reader == nil {
		reader = NewGraphReader()
	}
	if progress == nil {
		progress = noopProgress{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &StructureServiceImpl{
		reader:   reader,
		progress: progress,
		logger:   logger,
	}
}

// Structure structures every method of the graph files in req.Paths. Files
// that cannot be read are reported in the response and skipped.
func (s *StructureServiceImpl) Structure(ctx context.Context, req domain.StructureRequest) (*domain.StructureResponse, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	type loaded struct {
		path string
		doc  *domain.GraphDocument
	}
	var docs []loaded
	var errs []string
	total := 0

	for _, path := range req.Paths {
		doc, err := s.reader.ReadDocument(path)
		if err != nil {
			s.logger.Warn("skipping graph file", slog.String("file", path), slog.Any("error", err))
			errs = append(errs, fmt.Sprintf("[%s] %v", path, err))
			continue
		}
		docs = append(docs, loaded{path: path, doc: doc})
		total += len(doc.Methods)
	}

	s.progress.Initialize(total)
	s.progress.Start()
	defer s.progress.Close()

	files := make([]domain.FileStructure, 0, len(docs))
	for _, d := range docs {
		fs, err := s.StructureDocument(ctx, d.path, d.doc, req)
		if err != nil {
			s.progress.Complete(false)
			return nil, err
		}
		files = append(files, *fs)
	}
	s.progress.Complete(true)

	return &domain.StructureResponse{
		Files:       files,
		Summary:     Summarize(files),
		Errors:      errs,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Version,
	}, nil
}

// StructureDocument structures the methods of one document in parallel.
// Results keep the document's method order.
func (s *StructureServiceImpl) StructureDocument(ctx context.Context, path string, doc *domain.GraphDocument, req domain.StructureRequest) (*domain.FileStructure, error) {
	results := make([]domain.MethodResult, len(doc.Methods))

	jobs := make([]domain.MethodJob, len(doc.Methods))
	for i, method := range doc.Methods {
		jobs[i] = domain.MethodJob{Name: method.Name, Run: func(ctx context.Context) error {
			results[i] = s.StructureMethod(ctx, method, req)
			s.progress.Increment()
			return nil
		}}
	}

	if err := NewWorkerPool(req.MaxGoroutines, 0).Run(ctx, jobs); err != nil {
		return nil, domain.NewAnalysisError(fmt.Sprintf("structuring %s was interrupted", path), err)
	}

	return &domain.FileStructure{
		FilePath: path,
		Source:   doc.Source,
		Methods:  results,
	}, nil
}

// StructureMethod structures a single method graph. Failures, including
// panics in the engine, are recorded on the result.
func (s *StructureServiceImpl) StructureMethod(ctx context.Context, method domain.MethodGraph, req domain.StructureRequest) (result domain.MethodResult) {
	result.Name = method.Name
	logger := s.logger.With(slog.String("method", method.Name))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("structuring panicked", slog.Any("panic", r))
			result.Source = ""
			result.Digest = ""
			result.Error = domain.NewStructureError(method.Name, fmt.Errorf("panic: %v", r)).Error()
		}
	}()

	if err := ctx.Err(); err != nil {
		result.Error = domain.NewStructureError(method.Name, err).Error()
		return result
	}

	source, structured, err := s.render(method, req, logger)
	if err != nil {
		logger.Debug("structuring failed", slog.Any("error", err))
		result.Error = domain.NewStructureError(method.Name, err).Error()
		return result
	}

	result.Source = source
	result.Digest = Digest(source)
	result.Stats = convertStats(structured.Stats)
	result.Diagnostics = convertDiagnostics(structured.Diagnostics)

	if req.VerifyDeterminism {
		again, _, err := s.render(method, req, logger)
		if err != nil || Digest(again) != result.Digest {
			logger.Error("structuring is not deterministic")
			result.Error = domain.NewNondeterministicError(method.Name).Error()
		}
	}

	return result
}

// render builds a fresh block graph from the document and prints it
func (s *StructureServiceImpl) render(method domain.MethodGraph, req domain.StructureRequest, logger *slog.Logger) (string, *analyzer.Structured, error) {
	entry, err := LoadMethodGraph(method)
	if err != nil {
		return "", nil, err
	}

	structurer := analyzer.NewStructurer(
		analyzer.WithStructurerLogger(logger),
		analyzer.WithLoopDetection(domain.BoolValue(req.DetectLoops, domain.DefaultDetectLoops)),
	)
	structured, err := structurer.Structure(method.Name, entry)
	if err != nil {
		return "", nil, err
	}

	indent := req.Indent
	if indent == "" {
		indent = domain.DefaultIndent
	}
	return analyzer.Source(structured, analyzer.WithIndent(indent)), structured, nil
}

// Digest returns the hex BLAKE3 hash of the pseudo-source
func Digest(source string) string {
	sum := blake3.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Summarize aggregates the per-method results
func Summarize(files []domain.FileStructure) domain.StructureSummary {
	summary := domain.StructureSummary{TotalFiles: len(files)}
	for _, f := range files {
		for _, m := range f.Methods {
			summary.TotalMethods++
			if m.Failed() {
				summary.FailedMethods++
				continue
			}
			summary.StructuredMethods++
			summary.TotalBlocks += m.Stats.Blocks
			summary.Loops += m.Stats.Loops
			summary.Ifs += m.Stats.Ifs
			summary.Switches += m.Stats.Switches
			summary.Tries += m.Stats.Tries
			for _, d := range m.Diagnostics {
				if d.Severity == domain.SeverityWarning {
					summary.Warnings++
				}
			}
		}
	}
	return summary
}

func convertStats(st analyzer.GraphStats) domain.MethodStats {
	return domain.MethodStats{
		Blocks:         st.Blocks,
		Edges:          st.Edges,
		ExceptionEdges: st.ExceptionEdges,
		BackEdges:      st.BackEdges,
		Loops:          st.Loops,
		Ifs:            st.Ifs,
		Switches:       st.Switches,
		Tries:          st.Tries,
		Statements:     st.Statements,
	}
}

func convertDiagnostics(diags []analyzer.Diagnostic) []domain.StructureDiagnostic {
	if len(diags) == 0 {
		return nil
	}
	out := make([]domain.StructureDiagnostic, 0, len(diags))
	for _, d := range diags {
		msg := d.Message
		if d.Err != nil {
			if msg != "" {
				msg = d.Err.Error() + ": " + msg
			} else {
				msg = d.Err.Error()
			}
		}
		out = append(out, domain.StructureDiagnostic{
			Severity: d.Severity.String(),
			Offset:   d.Offset,
			Message:  msg,
		})
	}
	return out
}
