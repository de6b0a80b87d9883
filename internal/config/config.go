// internal/config/config.go
//
// This package handles configuration and the .whybot directory structure.
// Every project directory whybot runs in gets a .whybot/ folder holding the
// config file, the session log and exported images.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/whybot/internal/planner"
	"github.com/kingrea/whybot/internal/render"
	"github.com/kingrea/whybot/internal/weights"
)

const (
	// WhybotDir is the name of the directory we create in each project
	WhybotDir = ".whybot"

	defaultLayout = "random"
)

const defaultProjectConfigYAML = `# whybot configuration
version: 1

# Where the planning service listens. WHYBOT_PLANNER_URL and
# WHYBOT_PLANNER_TIMEOUT override these.
planner:
  url: http://127.0.0.1:8000
  timeout: 10s

# Slider starting values and bounds.
weights:
  defaults:
    time: 1.0
    risk: 1.0
    energy: 0.5
    uncertainty: 0.3
    memory: 1.0
  range:
    min: 0.0
    max: 5.0
    step: 0.1

# Board layout at startup: random, demo or empty. Set seed (or WHYBOT_SEED)
# to make random walls reproducible.
board:
  layout: random
  # seed: 42

# Pixel edge of one cell in exported PNGs.
render:
  cell_size: 24
`

// PlannerConfig describes how to reach the planning service.
type PlannerConfig struct {
	URL              string `yaml:"url"`
	Timeout          string `yaml:"timeout"`
	MaxResponseBytes int64  `yaml:"max_response_bytes,omitempty"`
}

// WeightsConfig holds the slider defaults and bounds.
type WeightsConfig struct {
	Defaults weights.Vector `yaml:"defaults"`
	Range    weights.Range  `yaml:"range"`
}

// BoardConfig picks the startup board.
type BoardConfig struct {
	Layout string `yaml:"layout"`
	Seed   *int64 `yaml:"seed,omitempty"`
}

// RenderConfig controls PNG export.
type RenderConfig struct {
	CellSize int `yaml:"cell_size"`
}

// ProjectConfig models .whybot/config.yaml.
type ProjectConfig struct {
	Version int           `yaml:"version"`
	Planner PlannerConfig `yaml:"planner"`
	Weights WeightsConfig `yaml:"weights"`
	Board   BoardConfig   `yaml:"board"`
	Render  RenderConfig  `yaml:"render"`
}

// Config holds the runtime configuration for whybot.
type Config struct {
	// ProjectDir is the directory whybot was started from
	ProjectDir string

	// WhybotProjectDir is ProjectDir/.whybot
	WhybotProjectDir string

	Project ProjectConfig
}

// InitWhybotDir creates the .whybot directory structure in the given project
// directory and writes a commented config file if none exists.
//
// Structure created:
// .whybot/
// ├── config.yaml
// ├── logs/      <- session.log
// └── exports/   <- PNG snapshots
func InitWhybotDir(projectDir string) error {
	whybotDir := filepath.Join(projectDir, WhybotDir)
	dirs := []string{
		filepath.Join(whybotDir, "logs"),
		filepath.Join(whybotDir, "exports"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	if err := ensureProjectConfig(filepath.Join(whybotDir, "config.yaml")); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// NewConfig loads the project configuration. A missing config file yields
// the defaults.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:       projectDir,
		WhybotProjectDir: filepath.Join(projectDir, WhybotDir),
		Project:          defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.WhybotProjectDir, "logs")
}

// LogPath returns the session log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "session.log")
}

// ExportsDir returns where PNG snapshots are written
func (c *Config) ExportsDir() string {
	return filepath.Join(c.WhybotProjectDir, "exports")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.WhybotProjectDir, "config.yaml")
}

// PlannerSettings builds client settings from the file, then lets the
// environment override them.
func (c *Config) PlannerSettings() (planner.Settings, error) {
	s := planner.DefaultSettings()
	pc := c.Project.Planner
	if pc.URL != "" {
		s.BaseURL = pc.URL
	}
	if d, err := parseTimeout(pc.Timeout); err == nil && d > 0 {
		s.Timeout = d
	}
	if pc.MaxResponseBytes > 0 {
		s.MaxResponseBytes = pc.MaxResponseBytes
	}
	s.ApplyEnvOverrides()
	s.Normalize()
	if err := s.Validate(); err != nil {
		return planner.Settings{}, fmt.Errorf("config: planner: %w", err)
	}
	return s, nil
}

// Seed returns the random-walls seed, if one is configured. WHYBOT_SEED
// wins over the file.
func (c *Config) Seed() (int64, bool) {
	if raw := strings.TrimSpace(os.Getenv("WHYBOT_SEED")); raw != "" {
		if seed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return seed, true
		}
	}
	if c.Project.Board.Seed == nil {
		return 0, false
	}
	return *c.Project.Board.Seed, true
}

// Layout returns the configured startup layout name.
func (c *Config) Layout() string {
	return c.Project.Board.Layout
}

// CellSize returns the PNG cell edge in pixels.
func (c *Config) CellSize() int {
	return c.Project.Render.CellSize
}

// SaveDefaultWeights stores v as the slider defaults and persists the value
// back to .whybot/config.yaml.
func (c *Config) SaveDefaultWeights(v weights.Vector) error {
	rng := c.Project.Weights.Range
	for _, crit := range weights.Criteria {
		v = v.With(crit, rng.Clamp(v.Get(crit)))
	}
	c.Project.Weights.Defaults = v
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	parsed := defaultProjectConfig()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Planner: PlannerConfig{
			URL:     planner.DefaultBaseURL,
			Timeout: planner.DefaultTimeout.String(),
		},
		Weights: WeightsConfig{
			Defaults: weights.Defaults(),
			Range:    weights.DefaultRange(),
		},
		Board:  BoardConfig{Layout: defaultLayout},
		Render: RenderConfig{CellSize: render.DefaultCellSize},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Render.CellSize == 0 {
		pc.Render.CellSize = render.DefaultCellSize
	}
	if strings.TrimSpace(pc.Planner.Timeout) == "" {
		pc.Planner.Timeout = planner.DefaultTimeout.String()
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Planner.URL = strings.TrimRight(strings.TrimSpace(pc.Planner.URL), "/")
	pc.Planner.Timeout = strings.TrimSpace(pc.Planner.Timeout)
	pc.Board.Layout = strings.ToLower(strings.TrimSpace(pc.Board.Layout))
	if pc.Board.Layout == "" {
		pc.Board.Layout = defaultLayout
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if d, err := parseTimeout(pc.Planner.Timeout); err != nil {
		return fmt.Errorf("planner.timeout: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("planner.timeout must be positive")
	}
	if err := pc.Weights.Range.Validate(); err != nil {
		return fmt.Errorf("weights.range: %w", err)
	}
	for _, c := range weights.Criteria {
		v := pc.Weights.Defaults.Get(c)
		if v < pc.Weights.Range.Min || v > pc.Weights.Range.Max {
			return fmt.Errorf("weights.defaults.%s: %.1f outside [%.1f, %.1f]",
				c.Key(), v, pc.Weights.Range.Min, pc.Weights.Range.Max)
		}
	}
	switch pc.Board.Layout {
	case "random", "demo", "empty":
	default:
		return fmt.Errorf("board.layout must be 'random', 'demo' or 'empty'")
	}
	if pc.Render.CellSize < 4 || pc.Render.CellSize > 128 {
		return fmt.Errorf("render.cell_size must be between 4 and 128")
	}
	return nil
}

func parseTimeout(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.WhybotProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure whybot dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
