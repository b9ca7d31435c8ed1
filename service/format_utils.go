package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/dexstruct/domain"
)

// EncodeJSON returns an indented JSON string for the given value.
func EncodeJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", domain.NewOutputError("failed to marshal JSON", err)
	}
	return string(data), nil
}

// WriteJSON writes indented JSON for the given value to the writer.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode JSON", err)
	}
	return nil
}

// WriteYAML writes YAML for the given value to the writer.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode YAML", err)
	}
	return nil
}

// WriteMsgpack writes the msgpack encoding of v
func WriteMsgpack(w io.Writer, v interface{}) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode msgpack", err)
	}
	return nil
}

const (
	HeaderWidth   = 40
	LabelWidth    = 20
	SectionIndent = 2
)

// FormatUtils provides shared text formatting helpers
type FormatUtils struct{}

// NewFormatUtils creates a new format utilities instance
func NewFormatUtils() *FormatUtils {
	return &FormatUtils{}
}

// FormatMainHeader creates a title underlined with '='
func (f *FormatUtils) FormatMainHeader(title string) string {
	return title + "\n" + strings.Repeat("=", HeaderWidth) + "\n\n"
}

// FormatSectionHeader creates an upper-case title underlined with '-'
func (f *FormatUtils) FormatSectionHeader(title string) string {
	return strings.ToUpper(title) + "\n" + strings.Repeat("-", len(title)) + "\n"
}

// FormatLabel writes an indented, padded label and value
func (f *FormatUtils) FormatLabel(label string, value interface{}) string {
	return fmt.Sprintf("%s%-*s %v\n", strings.Repeat(" ", SectionIndent), LabelWidth, label+":", value)
}
