// Package config loads and validates the Docsmith site configuration.
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
)

// Config is the root application configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Source  SourceConfig  `yaml:"source"`
	Build   BuildConfig   `yaml:"build"`
	Output  OutputConfig  `yaml:"output"`
	Preview PreviewConfig `yaml:"preview"`
	History HistoryConfig `yaml:"history"`
	Notify  NotifyConfig  `yaml:"notify"`
}

// SiteConfig describes the site being built.
type SiteConfig struct {
	Title         string `yaml:"title"`
	Description   string `yaml:"description,omitempty"`
	BaseURL       string `yaml:"base_url,omitempty"`
	DefaultLayout string `yaml:"default_layout,omitempty"`
}

// SourceConfig points at the page sources: a local directory, optionally
// fetched from a git remote before each build.
type SourceConfig struct {
	Dir string           `yaml:"dir"`
	Git *GitSourceConfig `yaml:"git,omitempty"`
}

// GitSourceConfig describes a remote git repository holding the page sources.
type GitSourceConfig struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch,omitempty"`
	Depth  int    `yaml:"depth,omitempty"`
}

// BuildConfig tunes the build pipeline.
type BuildConfig struct {
	// Workers bounds per-page parse/render concurrency. 0 means NumCPU.
	Workers int `yaml:"workers,omitempty"`
	// Minify shrinks rendered HTML output.
	Minify bool `yaml:"minify,omitempty"`
	// Fingerprints enables skipping re-render of unchanged pages.
	Fingerprints bool `yaml:"fingerprints,omitempty"`
}

// OutputConfig controls where rendered documents land.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean,omitempty"`
}

// PreviewConfig controls the local preview server.
type PreviewConfig struct {
	Port       int  `yaml:"port,omitempty"`
	LiveReload bool `yaml:"live_reload,omitempty"`
	// RebuildEvery schedules periodic full rebuilds (e.g. "15m"); empty
	// disables the schedule. File-watch rebuilds are always on.
	RebuildEvery Duration `yaml:"rebuild_every,omitempty"`
	// Debounce coalesces bursts of file change events into one rebuild.
	Debounce Duration `yaml:"debounce,omitempty"`
}

// HistoryConfig controls the build history store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// NotifyConfig controls the optional build-completed NATS notifier.
type NotifyConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Duration wraps time.Duration with YAML string parsing ("30s", "15m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load reads, expands, and validates the configuration file. Environment
// variables from .env are loaded first (never overriding the process
// environment) and ${VAR} references in the YAML are expanded.
func Load(configPath string) (*Config, error) {
	loadDotEnv()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, ferrors.ConfigError("read configuration file").
			WithContext("path", configPath).
			Build()
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "parse configuration").
			WithContext("path", configPath).
			Build()
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "Documentation"
	}
	if c.Site.DefaultLayout == "" {
		c.Site.DefaultLayout = "default"
	}
	if c.Source.Dir == "" {
		c.Source.Dir = "./docs"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./site"
	}
	if c.Build.Workers <= 0 {
		c.Build.Workers = runtime.NumCPU()
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = 8080
	}
	if c.Preview.Debounce == 0 {
		c.Preview.Debounce = Duration(400 * time.Millisecond)
	}
	if c.History.Enabled && c.History.Path == "" {
		c.History.Path = "./docsmith-history.db"
	}
	if c.Notify.Enabled && c.Notify.Subject == "" {
		c.Notify.Subject = "docsmith.builds"
	}
}

// Validate checks invariants a build cannot start without.
func (c *Config) Validate() error {
	if c.Source.Git != nil && c.Source.Git.URL == "" {
		return ferrors.ConfigError("source.git.url is required when git source is set").Build()
	}
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return ferrors.ConfigError("preview.port out of range").
			WithContext("port", c.Preview.Port).
			Build()
	}
	if c.Notify.Enabled && c.Notify.URL == "" {
		return ferrors.ConfigError("notify.url is required when notify is enabled").Build()
	}
	return nil
}
