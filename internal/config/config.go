package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vstore/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "vstore.json"

	// DefaultAddr is the default listen address of `vstore serve`.
	DefaultAddr = ":8080"

	// DefaultMetricsPath is the default Prometheus scrape path.
	DefaultMetricsPath = "/metrics"

	// DefaultIterations is the default number of updates run by `vstore bench`.
	DefaultIterations = 1000

	// DefaultInitialName is the name shown by `vstore demo` on start.
	DefaultInitialName = "Saiya"
)

// fileNames are the configuration files Load looks for, in order.
var fileNames = []string{ConfigFileName, "vstore.yaml", "vstore.yml"}

// Config represents the complete vstore configuration.
type Config struct {
	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// Serve contains configuration of the HTTP state server.
	Serve ServeConfig `json:"serve,omitempty" yaml:"serve,omitempty"`

	// Bench contains benchmark configuration.
	Bench BenchConfig `json:"bench,omitempty" yaml:"bench,omitempty"`

	// Demo contains terminal demo configuration.
	Demo DemoConfig `json:"demo,omitempty" yaml:"demo,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default: info).
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json (default: text).
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// ServeConfig contains HTTP state server settings.
type ServeConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// InitialState is a JSON file holding the initial store value.
	// Empty means an empty object.
	InitialState string `json:"initialState,omitempty" yaml:"initialState,omitempty"`

	// MetricsPath is where Prometheus metrics are exposed.
	MetricsPath string `json:"metricsPath,omitempty" yaml:"metricsPath,omitempty"`

	// StoreName labels the served store in logs and metrics.
	StoreName string `json:"storeName,omitempty" yaml:"storeName,omitempty"`
}

// BenchConfig contains benchmark settings.
type BenchConfig struct {
	// Iterations is the number of functional updates per run.
	Iterations int `json:"iterations,omitempty" yaml:"iterations,omitempty"`

	// Subscribers is the number of whole-store subscribers.
	Subscribers int `json:"subscribers,omitempty" yaml:"subscribers,omitempty"`

	// Selectors is the number of count*2 selectors.
	Selectors int `json:"selectors,omitempty" yaml:"selectors,omitempty"`
}

// DemoConfig contains terminal demo settings.
type DemoConfig struct {
	// InitialName is the initial value of the name store.
	InitialName string `json:"initialName,omitempty" yaml:"initialName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Serve: ServeConfig{
			Addr:        DefaultAddr,
			MetricsPath: DefaultMetricsPath,
			StoreName:   "state",
		},
		Bench: BenchConfig{
			Iterations:  DefaultIterations,
			Subscribers: 1,
			Selectors:   1,
		},
		Demo: DemoConfig{
			InitialName: DefaultInitialName,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for vstore.json, then vstore.yaml and vstore.yml.
func Load(dir string) (*Config, error) {
	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E040").
		WithDetail("No vstore.json or vstore.yaml found in " + dir).
		WithSuggestion("Create vstore.json or pass --config")
}

// LoadOrDefault is Load, falling back to New when dir holds no
// configuration file. Other errors are returned.
func LoadOrDefault(dir string) (*Config, error) {
	if !Exists(dir) {
		return New(), nil
	}
	return Load(dir)
}

// LoadFile reads configuration from the specified file path. The format is
// chosen by extension: .json, .yaml or .yml.
func LoadFile(path string) (*Config, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E040").WithDetail(path).Wrap(err)
	}

	cfg := New()
	switch format {
	case "json":
		err = json.Unmarshal(data, cfg)
	case "yaml":
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E041").
			WithDetail(filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid " + strings.ToUpper(format)).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func formatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	}
	return "", errors.New("E043").
		WithDetail(filepath.Base(path)).
		WithSuggestion("Use a .json, .yaml or .yml file")
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, in the format of
// its extension.
func (c *Config) SaveTo(path string) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	if format == "yaml" {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E041").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E040").WithDetail(path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in zero values left by a partial file.
func (c *Config) applyDefaults() {
	d := New()

	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = d.Serve.Addr
	}
	if c.Serve.MetricsPath == "" {
		c.Serve.MetricsPath = d.Serve.MetricsPath
	}
	if c.Serve.StoreName == "" {
		c.Serve.StoreName = d.Serve.StoreName
	}
	if c.Bench.Iterations == 0 {
		c.Bench.Iterations = d.Bench.Iterations
	}
	if c.Demo.InitialName == "" {
		c.Demo.InitialName = d.Demo.InitialName
	}

	// Relative state files are resolved against the config file.
	if c.Serve.InitialState != "" && !filepath.IsAbs(c.Serve.InitialState) && c.configPath != "" {
		c.Serve.InitialState = filepath.Join(c.Dir(), c.Serve.InitialState)
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format", c.Log.Format, `use "text" or "json"`)
	}
	if !strings.HasPrefix(c.Serve.MetricsPath, "/") {
		return invalid("serve.metricsPath", c.Serve.MetricsPath, `the path must start with "/"`)
	}
	if c.Bench.Iterations < 1 {
		return invalid("bench.iterations", strconv.Itoa(c.Bench.Iterations), "use a positive number")
	}
	if c.Bench.Subscribers < 0 || c.Bench.Selectors < 0 {
		return invalid("bench", "negative count", "subscribers and selectors cannot be negative")
	}
	return nil
}

func invalid(field, value, suggestion string) error {
	return errors.New("E042").
		WithDetail(field + " = " + value).
		WithSuggestion(suggestion)
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, invalid("log.level", l.Level, "use debug, info, warn or error")
	}
	return level, nil
}

// Exists checks if a configuration file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range fileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
