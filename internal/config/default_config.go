package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/ludo-technologies/dexstruct/domain"
)

//go:embed default_config.toml.tmpl
var defaultConfigTmpl string

// DefaultConfigValues holds the values rendered into .dexstruct.toml
type DefaultConfigValues struct {
	DetectLoops       bool
	VerifyDeterminism bool
	FailOnError       bool
	Indent            string

	Format string

	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	MaxGoroutines  int
	TimeoutSeconds int
}

// NewDefaultConfigValues returns the values of the domain defaults
func NewDefaultConfigValues() DefaultConfigValues {
	return DefaultConfigValues{
		DetectLoops:     domain.DefaultDetectLoops,
		Indent:          domain.DefaultIndent,
		Format:          string(domain.DefaultOutputFormat),
		Recursive:       true,
		IncludePatterns: domain.DefaultIncludePatterns(),
		ExcludePatterns: []string{},
		MaxGoroutines:   domain.DefaultMaxGoroutines,
		TimeoutSeconds:  domain.DefaultTimeoutSeconds,
	}
}

var templateFuncs = template.FuncMap{
	"quote": strconv.Quote,
	"quoteList": func(items []string) string {
		quoted := make([]string, len(items))
		for i, s := range items {
			quoted[i] = strconv.Quote(s)
		}
		return strings.Join(quoted, ", ")
	},
}

// RenderConfigTOML renders the config template with the given values
func RenderConfigTOML(values DefaultConfigValues) (string, error) {
	tmpl, err := template.New("default_config").Funcs(templateFuncs).Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse default config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		return "", fmt.Errorf("failed to render default config template: %w", err)
	}
	return buf.String(), nil
}

// GenerateDefaultConfigTOML renders the template with the domain defaults
func GenerateDefaultConfigTOML() (string, error) {
	return RenderConfigTOML(NewDefaultConfigValues())
}
