package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/dexstruct/internal/version"
)

type versionOptions struct {
	short  bool
	asJSON bool
}

// NewVersionCmd returns the version subcommand
func NewVersionCmd() *cobra.Command {
	opts := &versionOptions{}
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Print the dexstruct release together with its build metadata.

Examples:
  dexstruct version
  dexstruct version --short
  dexstruct version --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.print(cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.short, "short", "s", false, "Print the version number only")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print build information as JSON")
	cmd.MarkFlagsMutuallyExclusive("short", "json")

	return cmd
}

func (o *versionOptions) print(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	switch {
	case o.short:
		_, err := fmt.Fprintln(out, version.Short())
		return err
	case o.asJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(version.Get())
	default:
		_, err := fmt.Fprintln(out, version.Info())
		return err
	}
}
