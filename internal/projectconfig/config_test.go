package projectconfig

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_ReturnsAllDefaults(t *testing.T) {
	cfg := New()

	// Paths
	assertEqual(t, "Paths.Tests", "config/tests", cfg.Paths.Tests)
	assertEqual(t, "Paths.Resources", "", cfg.Paths.Resources)
	assertEqual(t, "Paths.Export", "", cfg.Paths.Export)
	assertEqual(t, "Paths.JUnit", "", cfg.Paths.JUnit)

	// Defaults
	assertEqual(t, "Defaults.Mode", "lenient", cfg.Defaults.Mode)
	assertEqualInt(t, "Defaults.Workers", 1, cfg.Defaults.Workers)
	assertDuration(t, "Defaults.Timeout", 0, cfg.Defaults.Timeout)
	assertEqual(t, "Defaults.UserAgent", "faircheck", cfg.Defaults.UserAgent)
	if len(cfg.Defaults.Filters) != 0 {
		t.Errorf("Defaults.Filters = %v, want empty", cfg.Defaults.Filters)
	}

	// Output
	assertBoolPtr(t, "Output.Color", true, cfg.Output.Color)
	assertBoolPtr(t, "Output.Summary", false, cfg.Output.Summary)
	assertBoolPtr(t, "Output.Quiet", false, cfg.Output.Quiet)

	// Metrics
	assertEqual(t, "Metrics.File", "", cfg.Metrics.File)
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
paths:
  tests: "indicators.csv"
  resources: "resources.txt"
  export: "out/results.csv.gz"
  junit: "out/junit.xml"
  html: "out/report.html"
defaults:
  mode: strict
  workers: 8
  timeout: 15s
  user_agent: "fair-bot/2"
  filters:
    - "has*"
    - "*/gen2_*"
output:
  color: false
  summary: true
  quiet: true
metrics:
  file: "/var/lib/node_exporter/faircheck.prom"
hooks:
  before_run:
    - command: "make fixtures"
      error_on_fail: true
  after_run:
    - command: "./publish.sh"
      working_directory: "out"
      exit_codes: [0, 3]
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	assertEqual(t, "Paths.Tests", "indicators.csv", cfg.Paths.Tests)
	assertEqual(t, "Paths.Resources", "resources.txt", cfg.Paths.Resources)
	assertEqual(t, "Paths.Export", "out/results.csv.gz", cfg.Paths.Export)
	assertEqual(t, "Paths.JUnit", "out/junit.xml", cfg.Paths.JUnit)
	assertEqual(t, "Paths.HTML", "out/report.html", cfg.Paths.HTML)

	assertEqual(t, "Defaults.Mode", "strict", cfg.Defaults.Mode)
	assertEqualInt(t, "Defaults.Workers", 8, cfg.Defaults.Workers)
	assertDuration(t, "Defaults.Timeout", 15*time.Second, cfg.Defaults.Timeout)
	assertEqual(t, "Defaults.UserAgent", "fair-bot/2", cfg.Defaults.UserAgent)
	if len(cfg.Defaults.Filters) != 2 || cfg.Defaults.Filters[1] != "*/gen2_*" {
		t.Errorf("Defaults.Filters = %v", cfg.Defaults.Filters)
	}

	assertBoolPtr(t, "Output.Color", false, cfg.Output.Color)
	assertBoolPtr(t, "Output.Summary", true, cfg.Output.Summary)
	assertBoolPtr(t, "Output.Quiet", true, cfg.Output.Quiet)

	assertEqual(t, "Metrics.File", "/var/lib/node_exporter/faircheck.prom", cfg.Metrics.File)

	if len(cfg.Hooks.BeforeRun) != 1 || !cfg.Hooks.BeforeRun[0].ErrorOnFail {
		t.Fatalf("Hooks.BeforeRun = %+v", cfg.Hooks.BeforeRun)
	}
	assertEqual(t, "Hooks.BeforeRun[0].Command", "make fixtures", cfg.Hooks.BeforeRun[0].Command)
	if len(cfg.Hooks.AfterRun) != 1 {
		t.Fatalf("Hooks.AfterRun = %+v", cfg.Hooks.AfterRun)
	}
	assertEqual(t, "Hooks.AfterRun[0].WorkingDirectory", "out", cfg.Hooks.AfterRun[0].WorkingDirectory)
	if got := cfg.Hooks.AfterRun[0].ExitCodes; len(got) != 2 || got[1] != 3 {
		t.Errorf("Hooks.AfterRun[0].ExitCodes = %v, want [0 3]", got)
	}
}

func TestLoad_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
defaults:
  workers: 4
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	assertEqualInt(t, "Defaults.Workers", 4, cfg.Defaults.Workers)
	// Everything else keeps its default.
	assertEqual(t, "Defaults.Mode", DefaultMode, cfg.Defaults.Mode)
	assertEqual(t, "Paths.Tests", DefaultTestsFile, cfg.Paths.Tests)
	assertDuration(t, "Defaults.Timeout", DefaultTimeout, cfg.Defaults.Timeout)
	assertBoolPtr(t, "Output.Color", true, cfg.Output.Color)
}

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	defaults := New()
	assertEqual(t, "Paths.Tests", defaults.Paths.Tests, cfg.Paths.Tests)
	assertEqual(t, "Defaults.Mode", defaults.Defaults.Mode, cfg.Defaults.Mode)
	assertEqualInt(t, "Defaults.Workers", defaults.Defaults.Workers, cfg.Defaults.Workers)
	assertDuration(t, "Defaults.Timeout", *defaults.Defaults.Timeout, cfg.Defaults.Timeout)
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
defaults:
  mode: [not valid yaml
    this is broken
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("Load() should return error for invalid YAML")
	}
}

func TestLoad_ZeroTimeoutDisablesDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
defaults:
  timeout: 0s
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	assertDuration(t, "Defaults.Timeout", 0, cfg.Defaults.Timeout)

	// A zero timeout also wins over a non-zero base.
	base := New()
	base.Defaults.Timeout = DurationPtr(time.Minute)
	mergeConfig(base, cfg)
	assertDuration(t, "Defaults.Timeout", 0, base.Defaults.Timeout)

	// An absent timeout keeps the base value.
	base.Defaults.Timeout = DurationPtr(time.Minute)
	mergeConfig(base, &ProjectConfig{})
	assertDuration(t, "Defaults.Timeout", time.Minute, base.Defaults.Timeout)
}

func TestLoad_InvalidTimeout_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
defaults:
  timeout: soon
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("Load() should return error for an unparsable duration")
	}
}

func TestLoad_WalksUpDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, `
defaults:
  mode: strict
`)

	child := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(child)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	assertEqual(t, "Defaults.Mode", "strict", cfg.Defaults.Mode)
	// Other defaults still populated
	assertEqual(t, "Paths.Tests", "config/tests", cfg.Paths.Tests)
}

func TestLoadFile(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "custom.yaml", `
paths:
  tests: "other/tests"
`)
		cfg, err := LoadFile(filepath.Join(dir, "custom.yaml"))
		if err != nil {
			t.Fatalf("LoadFile() error: %v", err)
		}
		assertEqual(t, "Paths.Tests", "other/tests", cfg.Paths.Tests)
		assertEqual(t, "Defaults.Mode", DefaultMode, cfg.Defaults.Mode)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if err == nil {
			t.Fatal("LoadFile() should fail for a missing file")
		}
	})
}

func TestBoolPointerFields(t *testing.T) {
	t.Run("defaults preserved when not set in YAML", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, FileName, `
defaults:
  mode: lenient
`)
		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		assertBoolPtr(t, "Output.Color", true, cfg.Output.Color)
		assertBoolPtr(t, "Output.Summary", false, cfg.Output.Summary)
	})

	t.Run("explicitly false", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, FileName, `
output:
  color: false
  quiet: false
`)
		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		assertBoolPtr(t, "Output.Color", false, cfg.Output.Color)
		assertBoolPtr(t, "Output.Quiet", false, cfg.Output.Quiet)
	})
}

// --- test helpers ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertEqual(t *testing.T, field, want, got string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %q, want %q", field, got, want)
	}
}

func assertEqualInt(t *testing.T, field string, want, got int) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %d, want %d", field, got, want)
	}
}

func assertDuration(t *testing.T, field string, want time.Duration, got *time.Duration) {
	t.Helper()
	if got == nil {
		t.Errorf("%s is nil, want %v", field, want)
		return
	}
	if *got != want {
		t.Errorf("%s = %v, want %v", field, *got, want)
	}
}

func assertBoolPtr(t *testing.T, field string, want bool, got *bool) {
	t.Helper()
	if got == nil {
		t.Errorf("%s is nil, want *%v", field, want)
		return
	}
	if *got != want {
		t.Errorf("%s = %v, want %v", field, *got, want)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	cfg := New()
	cfg.Defaults.Mode = "strict"
	cfg.Defaults.Timeout = DurationPtr(45 * time.Second)
	cfg.Output.Color = boolPtr(false)

	if err := Save(path, cfg, false); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	assertEqual(t, "Defaults.Mode", "strict", loaded.Defaults.Mode)
	assertDuration(t, "Defaults.Timeout", 45*time.Second, loaded.Defaults.Timeout)
	assertBoolPtr(t, "Output.Color", false, loaded.Output.Color)
	assertEqual(t, "Paths.Tests", DefaultTestsFile, loaded.Paths.Tests)
}

func TestSave_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "defaults:\n  mode: strict\n")
	path := filepath.Join(dir, FileName)

	if err := Save(path, New(), false); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("Save() error = %v, want fs.ErrExist", err)
	}
	if err := Save(path, New(), true); err != nil {
		t.Fatalf("Save(overwrite) error: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	assertEqual(t, "Defaults.Mode", DefaultMode, cfg.Defaults.Mode)
}
