package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ludo-technologies/dexstruct/service"
)

// newConfigLoader returns a loader that lets flags set on cmd override the
// config file, searching for that file from the first input path.
func newConfigLoader(cmd *cobra.Command, args []string) *service.ConfigurationLoaderImpl {
	explicit := make(map[string]bool)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		explicit[f.Name] = true
	})
	return service.NewConfigurationLoader(explicit).WithStartDir(configStartDir(args))
}

// configStartDir is the first input path, or its parent when it names a file
func configStartDir(args []string) string {
	if len(args) == 0 {
		return "."
	}
	if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
		return filepath.Dir(args[0])
	}
	return args[0]
}
