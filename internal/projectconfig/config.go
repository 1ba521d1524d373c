// Package projectconfig provides the ProjectConfig struct and loader for
// .faircheck.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fairdata/faircheck/internal/hooks"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".faircheck.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultTestsFile = "config/tests"

	DefaultMode    = "lenient"
	DefaultWorkers = 1
	// DefaultTimeout of zero leaves calls bounded only by the HTTP client.
	DefaultTimeout time.Duration = 0

	DefaultUserAgent = "faircheck"
)

// PathsConfig holds input and output file locations.
type PathsConfig struct {
	Tests     string `yaml:"tests,omitempty"`
	Resources string `yaml:"resources,omitempty"`
	Export    string `yaml:"export,omitempty"`
	JUnit     string `yaml:"junit,omitempty"`
	HTML      string `yaml:"html,omitempty"`
}

// DefaultsConfig holds default execution parameters.
type DefaultsConfig struct {
	Mode      string         `yaml:"mode,omitempty"`
	Workers   int            `yaml:"workers,omitempty"`
	Timeout   *time.Duration `yaml:"timeout,omitempty"`
	UserAgent string         `yaml:"user_agent,omitempty"`
	Filters   []string       `yaml:"filters,omitempty"`
}

// OutputConfig holds console output settings.
type OutputConfig struct {
	Color   *bool `yaml:"color,omitempty"`
	Summary *bool `yaml:"summary,omitempty"`
	Quiet   *bool `yaml:"quiet,omitempty"`
}

// MetricsConfig holds Prometheus textfile settings.
type MetricsConfig struct {
	File string `yaml:"file,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .faircheck.yaml.
type ProjectConfig struct {
	Paths    PathsConfig       `yaml:"paths,omitempty"`
	Defaults DefaultsConfig    `yaml:"defaults,omitempty"`
	Output   OutputConfig      `yaml:"output,omitempty"`
	Metrics  MetricsConfig     `yaml:"metrics,omitempty"`
	Hooks    hooks.HooksConfig `yaml:"hooks,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Tests: DefaultTestsFile,
		},
		Defaults: DefaultsConfig{
			Mode:      DefaultMode,
			Workers:   DefaultWorkers,
			Timeout:   DurationPtr(DefaultTimeout),
			UserAgent: DefaultUserAgent,
		},
		Output: OutputConfig{
			Color:   boolPtr(true),
			Summary: boolPtr(false),
			Quiet:   boolPtr(false),
		},
	}
}

// Load finds .faircheck.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}
	return parse(data, FileName)
}

// LoadFile reads the configuration from an explicit path. Unlike Load, a
// missing file is an error.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return parse(data, path)
}

// Save writes cfg to path as YAML. An existing file is only replaced when
// overwrite is true.
func Save(path string, cfg *ProjectConfig, overwrite bool) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func parse(data []byte, name string) (*ProjectConfig, error) {
	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	cfg := New()
	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .faircheck.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Tests != "" {
		dst.Paths.Tests = src.Paths.Tests
	}
	if src.Paths.Resources != "" {
		dst.Paths.Resources = src.Paths.Resources
	}
	if src.Paths.Export != "" {
		dst.Paths.Export = src.Paths.Export
	}
	if src.Paths.JUnit != "" {
		dst.Paths.JUnit = src.Paths.JUnit
	}
	if src.Paths.HTML != "" {
		dst.Paths.HTML = src.Paths.HTML
	}

	// Defaults
	if src.Defaults.Mode != "" {
		dst.Defaults.Mode = src.Defaults.Mode
	}
	if src.Defaults.Workers != 0 {
		dst.Defaults.Workers = src.Defaults.Workers
	}
	// An explicit "0s" disables the timeout, so presence decides.
	if src.Defaults.Timeout != nil {
		dst.Defaults.Timeout = src.Defaults.Timeout
	}
	if src.Defaults.UserAgent != "" {
		dst.Defaults.UserAgent = src.Defaults.UserAgent
	}
	if len(src.Defaults.Filters) > 0 {
		dst.Defaults.Filters = src.Defaults.Filters
	}

	// Output
	if src.Output.Color != nil {
		dst.Output.Color = src.Output.Color
	}
	if src.Output.Summary != nil {
		dst.Output.Summary = src.Output.Summary
	}
	if src.Output.Quiet != nil {
		dst.Output.Quiet = src.Output.Quiet
	}

	// Metrics
	if src.Metrics.File != "" {
		dst.Metrics.File = src.Metrics.File
	}

	// Hooks
	if len(src.Hooks.BeforeRun) > 0 {
		dst.Hooks.BeforeRun = src.Hooks.BeforeRun
	}
	if len(src.Hooks.AfterRun) > 0 {
		dst.Hooks.AfterRun = src.Hooks.AfterRun
	}
}

func boolPtr(b bool) *bool {
	return &b
}

// DurationPtr returns a pointer to d.
func DurationPtr(d time.Duration) *time.Duration {
	return &d
}
