package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTargets are the generated groth16 key artifacts keysweep removes
// when no explicit target list is configured.
var DefaultTargets = []string{
	"proving_f10.key",
	"verifying_f10.key",
}

type PrometheusCfg struct {
	Port int `yaml:"port" json:"port"` // 0 disables the metrics server
}

type LoggingCfg struct {
	RotationDays int `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type ResourceLimits struct {
	MaxCPUPercent float64 `yaml:"max_cpu_percent" json:"max_cpu_percent"` // 0 = unthrottled
}

type Config struct {
	Root            string         `yaml:"root" json:"root"`                         // Scan root; empty = parent of executable dir
	Targets         []string       `yaml:"targets" json:"targets"`                   // Exact base filenames to delete
	IntervalMinutes int            `yaml:"interval_minutes" json:"interval_minutes"` // 0 = run once and exit
	DatabasePath    string         `yaml:"database_path" json:"database_path"`       // SQLite history; empty disables
	Prometheus      PrometheusCfg  `yaml:"prometheus" json:"prometheus"`
	Logging         LoggingCfg     `yaml:"logging" json:"logging"`
	ResourceLimits  ResourceLimits `yaml:"resource_limits" json:"resource_limits"`
	ProtectedPaths  []string       `yaml:"protected_paths" json:"protected_paths"` // Extra roots the validator must refuse
}

var (
	errInvalidTarget    = errors.New("target must be a bare filename")
	errInvalidRoot      = errors.New("root must be absolute")
	errNegativeInterval = errors.New("interval_minutes cannot be negative")
)

// Default returns the configuration used when no config file exists.
// A bare invocation of keysweep must work without any configuration.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.validateAndDefault()
	return cfg
}

// Load reads the configuration file at path. A missing file is not an
// error: defaults apply, matching the original tool's zero-config behavior.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if len(c.Targets) == 0 {
		c.Targets = append([]string(nil), DefaultTargets...)
	}
	for _, t := range c.Targets {
		if err := validateTarget(t); err != nil {
			return err
		}
	}

	if c.IntervalMinutes < 0 {
		return errNegativeInterval
	}

	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = 30 // Default: keep logs for 30 days
	}

	if c.Root != "" {
		cp, err := cleanAbsolute(c.Root)
		if err != nil {
			return err
		}
		c.Root = cp
	}

	return nil
}

// validateTarget rejects anything that is not a bare filename.
// The cleaner matches base names exactly, so globs and path segments
// would silently never match.
func validateTarget(t string) error {
	if t == "" || t == "." || t == ".." {
		return fmt.Errorf("%w: %q", errInvalidTarget, t)
	}
	if strings.ContainsRune(t, os.PathSeparator) {
		return fmt.Errorf("%w: %q contains a path separator", errInvalidTarget, t)
	}
	return nil
}

func cleanAbsolute(p string) (string, error) {
	cp := filepath.Clean(p)
	if !filepath.IsAbs(cp) {
		return "", fmt.Errorf("%w: %s", errInvalidRoot, p)
	}
	return cp, nil
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

func (c *Config) PrometheusAddress() string {
	return fmt.Sprintf(":%d", c.Prometheus.Port)
}
