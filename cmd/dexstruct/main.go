package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/dexstruct/internal/version"
)

// NewRootCmd creates the dexstruct command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dexstruct",
		Short: "Structure decompiled control-flow graphs into nested source",
		Long: `dexstruct turns the basic-block graph of a decompiled method into
nested if/else, switch, loop and try/catch regions and prints them as
bracketed pseudo-source.

Graphs are read from JSON, YAML or msgpack documents produced by a
bytecode decoder. Loop headers may be tagged by the producer or detected
with --detect-loops.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewStructureCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// newLogger returns a text logger on the command's stderr. --verbose
// lowers the level to debug.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose, err := cmd.Flags().GetBool("verbose"); err == nil && verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
