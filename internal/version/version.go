package version

import (
	"fmt"
	"runtime"
)

// Name is the program name shown in version output
const Name = "dexstruct"

// These variables are set via ldflags during build
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
	BuiltBy = "unknown"
)

// BuildInfo describes the running binary
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the build information of the running binary
func Get() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		BuiltBy:   BuiltBy,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Info returns version information as a formatted string
func Info() string {
	b := Get()
	return fmt.Sprintf("%s %s\nCommit: %s\nBuilt: %s\nGo: %s\nOS/Arch: %s",
		Name, b.Version, b.Commit, b.Date, b.GoVersion, b.Platform)
}

// Short returns just the version string
func Short() string {
	return Version
}
