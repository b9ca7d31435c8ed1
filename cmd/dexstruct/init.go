package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/dexstruct/domain"
	"github.com/ludo-technologies/dexstruct/internal/config"
)

// InitCommand represents the init command
type InitCommand struct {
	force       bool
	interactive bool
	configPath  string
}

// NewInitCommand creates a new init command
func NewInitCommand() *InitCommand {
	return &InitCommand{
		configPath: domain.DefaultConfigFileName,
	}
}

// CreateCobraCommand creates the cobra command for configuration initialization
func (i *InitCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize dexstruct configuration file",
		Long: `Create a .dexstruct.toml file with every setting and its default value.

Use --interactive to choose the main settings in a terminal form.

Examples:
  dexstruct init
  dexstruct init --interactive
  dexstruct init --config graphs/.dexstruct.toml --force`,
		RunE: i.runInit,
	}

	cmd.Flags().BoolVarP(&i.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().BoolVarP(&i.interactive, "interactive", "i", false, "Choose settings interactively")
	cmd.Flags().StringVarP(&i.configPath, "config", "c", domain.DefaultConfigFileName, "Configuration file path")

	return cmd
}

func (i *InitCommand) runInit(cmd *cobra.Command, args []string) error {
	configPath, err := filepath.Abs(i.configPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil && !i.force {
		return fmt.Errorf("configuration file already exists: %s\nUse --force to overwrite", configPath)
	}

	values := config.NewDefaultConfigValues()
	if i.interactive {
		if err := promptConfigValues(&values); err != nil {
			return err
		}
	}

	content, err := config.RenderConfigTOML(values)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", configDir, err)
	}
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	relPath, err := filepath.Rel(".", configPath)
	if err != nil {
		relPath = configPath
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", relPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'dexstruct structure <paths>' to use it.\n")
	return nil
}

// promptConfigValues asks for the main settings in a terminal form
func promptConfigValues(values *config.DefaultConfigValues) error {
	formats := make([]huh.Option[string], 0, len(domain.SupportedOutputFormats()))
	for _, f := range domain.SupportedOutputFormats() {
		formats = append(formats, huh.NewOption(string(f), string(f)))
	}

	indentWidth := strconv.Itoa(len(values.Indent))
	jobs := strconv.Itoa(values.MaxGoroutines)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Output format").
				Options(formats...).
				Value(&values.Format),
			huh.NewConfirm().
				Title("Detect untagged loop headers?").
				Description("Enable when the graph producer does not tag loops").
				Value(&values.DetectLoops),
			huh.NewConfirm().
				Title("Verify determinism?").
				Description("Structure every method twice and compare the output").
				Value(&values.VerifyDeterminism),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Indent width in spaces").
				Validate(validateNonNegative).
				Value(&indentWidth),
			huh.NewInput().
				Title("Concurrent methods (0 = one per CPU)").
				Validate(validateNonNegative).
				Value(&jobs),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	width, _ := strconv.Atoi(strings.TrimSpace(indentWidth))
	values.Indent = strings.Repeat(" ", width)
	values.MaxGoroutines, _ = strconv.Atoi(strings.TrimSpace(jobs))
	return nil
}

func validateNonNegative(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a non-negative number")
	}
	return nil
}

// NewInitCmd creates and returns the init cobra command
func NewInitCmd() *cobra.Command {
	return NewInitCommand().CreateCobraCommand()
}
