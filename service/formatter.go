package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ludo-technologies/dexstruct/domain"
)

// StructureFormatterImpl renders structuring responses
type StructureFormatterImpl struct {
	utils *FormatUtils
}

// NewStructureFormatter creates a new structure formatter
func NewStructureFormatter() *StructureFormatterImpl {
	return &StructureFormatterImpl{utils: NewFormatUtils()}
}

// Format formats the response according to the specified format
func (f *StructureFormatterImpl) Format(response *domain.StructureResponse, format domain.OutputFormat) (string, error) {
	var buf bytes.Buffer
	if err := f.Write(response, format, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Write writes the formatted output to the writer
func (f *StructureFormatterImpl) Write(response *domain.StructureResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatText:
		_, err := io.WriteString(writer, f.formatText(response))
		if err != nil {
			return domain.NewOutputError("failed to write text output", err)
		}
		return nil
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		return f.writeCSV(response, writer)
	case domain.OutputFormatMsgpack:
		return WriteMsgpack(writer, response)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

func (f *StructureFormatterImpl) formatText(response *domain.StructureResponse) string {
	var b strings.Builder

	for _, file := range response.Files {
		title := "// " + file.FilePath
		if file.Source != "" {
			title += " (" + file.Source + ")"
		}
		b.WriteString(title + "\n\n")

		for _, m := range file.Methods {
			if m.Failed() {
				fmt.Fprintf(&b, "// %s: %s\n\n", m.Name, m.Error)
				continue
			}
			for _, d := range m.Diagnostics {
				fmt.Fprintf(&b, "// %s at offset %d: %s\n", d.Severity, d.Offset, d.Message)
			}
			b.WriteString(m.Source)
			b.WriteString("\n")
		}
	}

	if len(response.Errors) > 0 {
		b.WriteString(f.utils.FormatSectionHeader("Errors"))
		for _, e := range response.Errors {
			b.WriteString("  " + e + "\n")
		}
		b.WriteString("\n")
	}

	s := response.Summary
	b.WriteString(f.utils.FormatSectionHeader("Summary"))
	b.WriteString(f.utils.FormatLabel("Files", s.TotalFiles))
	b.WriteString(f.utils.FormatLabel("Methods", s.TotalMethods))
	b.WriteString(f.utils.FormatLabel("Structured", s.StructuredMethods))
	b.WriteString(f.utils.FormatLabel("Failed", s.FailedMethods))
	b.WriteString(f.utils.FormatLabel("Warnings", s.Warnings))
	b.WriteString(f.utils.FormatLabel("Blocks", s.TotalBlocks))
	b.WriteString(f.utils.FormatLabel("Regions", fmt.Sprintf("%d loops, %d ifs, %d switches, %d tries", s.Loops, s.Ifs, s.Switches, s.Tries)))

	return b.String()
}

var csvHeader = []string{
	"file", "method", "status", "blocks", "edges", "back_edges",
	"loops", "ifs", "switches", "tries", "warnings", "digest", "error",
}

func (f *StructureFormatterImpl) writeCSV(response *domain.StructureResponse, writer io.Writer) error {
	w := csv.NewWriter(writer)
	if err := w.Write(csvHeader); err != nil {
		return domain.NewOutputError("failed to write CSV header", err)
	}

	for _, file := range response.Files {
		for _, m := range file.Methods {
			status := "ok"
			if m.Failed() {
				status = "failed"
			}
			record := []string{
				file.FilePath,
				m.Name,
				status,
				strconv.Itoa(m.Stats.Blocks),
				strconv.Itoa(m.Stats.Edges),
				strconv.Itoa(m.Stats.BackEdges),
				strconv.Itoa(m.Stats.Loops),
				strconv.Itoa(m.Stats.Ifs),
				strconv.Itoa(m.Stats.Switches),
				strconv.Itoa(m.Stats.Tries),
				strconv.Itoa(len(m.Diagnostics)),
				m.Digest,
				m.Error,
			}
			if err := w.Write(record); err != nil {
				return domain.NewOutputError("failed to write CSV record", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return domain.NewOutputError("failed to flush CSV output", err)
	}
	return nil
}
