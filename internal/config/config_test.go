package config

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dexstruct.yaml")
	writeFile(t, path, `structure:
  detect_loops: true
  fail_on_error: true
output:
  format: csv
input:
  exclude_patterns:
    - "fixtures/**"
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if !config.Structure.DetectLoops || !config.Structure.FailOnError {
		t.Errorf("Structure section not loaded: %+v", config.Structure)
	}
	if config.Output.Format != "csv" {
		t.Errorf("Expected csv, got %s", config.Output.Format)
	}
	if !reflect.DeepEqual(config.Input.ExcludePatterns, []string{"fixtures/**"}) {
		t.Errorf("Unexpected exclude patterns %v", config.Input.ExcludePatterns)
	}
	if config.Structure.Indent != DefaultConfig().Structure.Indent {
		t.Errorf("Expected default indent, got %q", config.Structure.Indent)
	}
}

func TestLoadConfig_TOMLByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, path, "[output]\nformat = \"msgpack\"\n")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if config.Output.Format != "msgpack" {
		t.Errorf("Expected msgpack, got %s", config.Output.Format)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dexstruct.yaml")
	writeFile(t, path, "performance:\n  max_goroutines: -2\n")

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected a validation error")
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()

	config, path, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	// A .dexstruct.toml may exist above the temp dir on the test host
	if path == "" && !reflect.DeepEqual(config, DefaultConfig()) {
		t.Error("Expected defaults without a config file")
	}

	writeFile(t, filepath.Join(dir, ".dexstruct.yml"), "output:\n  format: yaml\n")
	config, path, err = Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) == ".dexstruct.yml" && config.Output.Format != "yaml" {
		t.Errorf("Expected yaml from %s, got %s", path, config.Output.Format)
	}

	writeFile(t, filepath.Join(dir, ".dexstruct.toml"), "[output]\nformat = \"json\"\n")
	config, path, err = Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, ".dexstruct.toml") {
		t.Errorf("Expected the TOML file to win, got %s", path)
	}
	if config.Output.Format != "json" {
		t.Errorf("Expected json, got %s", config.Output.Format)
	}
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	config := DefaultConfig()
	config.Structure.DetectLoops = true
	config.Output.Format = "json"
	config.Input.ExcludePatterns = []string{"tmp/**"}

	if err := SaveConfig(config, path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}
	if !loaded.Structure.DetectLoops || loaded.Output.Format != "json" {
		t.Errorf("Saved values not reloaded: %+v", loaded)
	}
	if !reflect.DeepEqual(loaded.Input.ExcludePatterns, []string{"tmp/**"}) {
		t.Errorf("Unexpected exclude patterns %v", loaded.Input.ExcludePatterns)
	}
}

func TestExplicitFlags(t *testing.T) {
	ef := NewExplicitFlags(map[string]bool{"format": true, "jobs": false})

	if !ef.Has("format") {
		t.Error("Expected format to be explicit")
	}
	if ef.Has("jobs") {
		t.Error("Expected a false entry to count as unset")
	}
	if ef.Len() != 1 {
		t.Errorf("Expected 1 explicit flag, got %d", ef.Len())
	}

	if got := Pick(ef, "format", "text", "json"); got != "json" {
		t.Errorf("Expected the flag value, got %s", got)
	}
	if got := Pick(ef, "jobs", 4, 8); got != 4 {
		t.Errorf("Expected the config value for an unset flag, got %d", got)
	}
	if got := PickSlice(ef, "format", []string{"a"}, nil); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Expected the config value for an empty list, got %v", got)
	}
	if got := PickSlice(ef, "format", []string{"a"}, []string{"b"}); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Expected the flag list, got %v", got)
	}

	var none *ExplicitFlags
	if none.Has("format") || none.Len() != 0 {
		t.Error("A nil set has no flags")
	}
}
